package dataimporter

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/dataimporter/busimport"
	"github.com/travigo/segmenter/pkg/processor"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Import the merged bus route, stop and fare files",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Replace routes, stops and fare zones with the merged JSON files",
				Flags: append(processor.Flags(),
					&cli.StringFlag{
						Name:  "dir",
						Value: "data/merged",
						Usage: "directory holding the merged JSON files",
					},
					&cli.StringFlag{
						Name:  "bus-types",
						Usage: "bus type map (default bus_type_map.json in the rules directory)",
					},
					&cli.BoolFlag{
						Name:  "process",
						Usage: "compute segments for every route after importing",
					},
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat this import every X (Go duration)",
						Required: false,
					},
				),
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					repeatEvery := c.String("repeat-every")
					repeat := repeatEvery != ""
					var repeatDuration time.Duration
					if repeat {
						var err error
						repeatDuration, err = time.ParseDuration(repeatEvery)

						if err != nil {
							return err
						}
					}

					busTypesPath := c.String("bus-types")
					if busTypesPath == "" {
						busTypesPath = filepath.Join(processor.RulesDir(c.String("rules-dir")), busimport.BusTypeFile)
					}
					busTypes, err := busimport.LoadBusTypes(busTypesPath)
					if err != nil {
						return err
					}

					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					if err := db.EnsureSchema(ctx); err != nil {
						return err
					}

					importer := &busimport.Importer{
						Store:    db,
						BusTypes: busTypes,
						Dir:      c.String("dir"),
					}

					for {
						startTime := time.Now()

						if err := runImport(ctx, c, db, importer); err != nil {
							return err
						}
						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Operation took %s", executionDuration.String())

						waitTime := repeatDuration - executionDuration

						select {
						case <-ctx.Done():
							return nil
						case <-time.After(max(waitTime, 0)):
						}
					}

					return nil
				},
			},
		},
	}
}

func runImport(ctx context.Context, c *cli.Context, db *database.DB, importer *busimport.Importer) error {
	if _, err := importer.Import(ctx); err != nil {
		return err
	}

	if !c.Bool("process") {
		return nil
	}

	_, err := processor.RunFromCLI(c, db, nil, "")
	return err
}
