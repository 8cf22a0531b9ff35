package consumer

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/processor"
	"github.com/travigo/segmenter/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "Recompute segments of individual routes on demand",
		Subcommands: []*cli.Command{
			{
				Name:  "worker",
				Usage: "Consume the recompute queue",
				Flags: append(processor.Flags(),
					&cli.IntFlag{
						Name:  "consumers",
						Value: 2,
						Usage: "number of queue consumers",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 50,
						Usage: "route ids handled per batch",
					},
					&cli.StringFlag{
						Name:  "listen",
						Value: ":3333",
						Usage: "listen target for the stats server",
					},
				),
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					if err := db.EnsureSchema(ctx); err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					p, cleanup, err := processor.New(ctx, db, processor.Options{
						RulesDir:   c.String("rules-dir"),
						Workers:    c.Int("workers"),
						FlushEvery: c.Int("flush-every"),
						Mirror:     c.Bool("mirror"),

						InvalidateCache: true,
					})
					if err != nil {
						return err
					}
					defer cleanup()

					redisConsumer := &RedisConsumer{
						QueueName:       RecomputeQueue,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       c.Int("batch-size"),
						Timeout:         2 * time.Second,
						Consumer:        NewRecomputeConsumer(ctx, p),
					}
					if err := redisConsumer.Setup(); err != nil {
						return err
					}

					health := NewHealthHandler(map[string]Pinger{
						"sqlite": db.Conn(),
						"redis": PingerFunc(func(ctx context.Context) error {
							return redis_client.Client.Ping(ctx).Err()
						}),
					})
					statsServer := redisConsumer.StatsServer(health)

					go func() {
						<-ctx.Done()
						log.Info().Msg("Stopping recompute consumers")
						<-redis_client.QueueConnection.StopAllConsuming()
						statsServer.Shutdown()
					}()

					log.Info().Msgf("Stats server listening on %s", c.String("listen"))
					return statsServer.Listen(c.String("listen"))
				},
			},
			{
				Name:  "enqueue",
				Usage: "Queue routes for recomputation",
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{
						Name:     "route",
						Usage:    "route ids to recompute",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					routeIDs := c.Int64Slice("route")
					if err := Enqueue(routeIDs); err != nil {
						return err
					}

					log.Info().Int("routes", len(routeIDs)).Str("queue", RecomputeQueue).Msg("Queued routes")
					return nil
				},
			},
		},
	}
}
