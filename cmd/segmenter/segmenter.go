package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/api"
	"github.com/travigo/segmenter/pkg/consumer"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/dataimporter"
	"github.com/travigo/segmenter/pkg/export"
	"github.com/travigo/segmenter/pkg/processor"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	if os.Getenv("SEGMENTER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("SEGMENTER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "segmenter",
		Description: "Computes bus fare boarding and alighting segments for every stop",

		Commands: []*cli.Command{
			database.RegisterCLI(),
			dataimporter.RegisterCLI(),
			processor.RegisterCLI(),
			consumer.RegisterCLI(),
			export.RegisterCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
