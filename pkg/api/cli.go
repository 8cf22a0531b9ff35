package api

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the read-only segment web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.BoolFlag{
						Name:  "cache",
						Usage: "cache route stop responses in Redis",
					},
				},
				Action: func(c *cli.Context) error {
					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					var redisClient *redis.Client
					if c.Bool("cache") {
						if err := redis_client.Connect(); err != nil {
							return err
						}
						redisClient = redis_client.Client
						log.Info().Msg("Caching route stops in Redis")
					}

					return SetupServer(c.String("listen"), db, redisClient)
				},
			},
		},
	}
}
