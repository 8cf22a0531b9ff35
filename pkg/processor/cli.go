package processor

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/segmenter/pkg/database"
	"github.com/urfave/cli/v2"
)

const lockTTL = 2 * time.Hour

func optionsFromFlags(c *cli.Context) Options {
	return Options{
		RulesDir:   c.String("rules-dir"),
		Workers:    c.Int("workers"),
		FlushEvery: c.Int("flush-every"),
		Mirror:     c.Bool("mirror"),
		Lock:       c.Bool("lock"),

		InvalidateCache: c.Bool("invalidate-cache"),
	}
}

// Flags shared by every command that runs the processor.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "rules-dir",
			Usage: "directory holding the rule tables (default $SEGMENTER_RULES_DIR or data/static)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: DefaultWorkers,
			Usage: "number of routes computed concurrently",
		},
		&cli.IntFlag{
			Name:  "flush-every",
			Value: DefaultFlushEvery,
			Usage: "number of routes written per transaction",
		},
		&cli.BoolFlag{
			Name:  "mirror",
			Usage: "mirror results into MongoDB when SEGMENTER_MONGODB_CONNECTION is set",
		},
		&cli.BoolFlag{
			Name:  "lock",
			Usage: "hold a Redis lock so only one run executes at a time",
		},
		&cli.BoolFlag{
			Name:  "invalidate-cache",
			Usage: "drop cached web API stops responses of every recomputed route",
		},
	}
}

// RunFromCLI runs the processor over routeIDs, or every route of city when
// routeIDs is empty. SIGINT and SIGTERM stop the run after the current batch.
func RunFromCLI(c *cli.Context, db *database.DB, routeIDs []int64, city string) (*Summary, error) {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := New(ctx, db, optionsFromFlags(c))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if len(routeIDs) > 0 {
		return p.Run(ctx, routeIDs)
	}
	return p.RunAll(ctx, city)
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "segments",
		Usage: "Compute fare segments for bus routes",
		Subcommands: []*cli.Command{
			{
				Name:  "process",
				Usage: "Compute and store segments for all or selected routes",
				Flags: append(Flags(),
					&cli.StringFlag{
						Name:  "city",
						Usage: "only process routes of this city",
					},
					&cli.Int64SliceFlag{
						Name:  "route",
						Usage: "only process these route ids",
					},
				),
				Action: func(c *cli.Context) error {
					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					if err := db.EnsureSchema(c.Context); err != nil {
						return err
					}

					_, err = RunFromCLI(c, db, c.Int64Slice("route"), c.String("city"))
					return err
				},
			},
			{
				Name:  "explain",
				Usage: "Show how the segments of one route are derived",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "route",
						Usage:    "route id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "rules-dir",
						Usage: "directory holding the rule tables",
					},
				},
				Action: func(c *cli.Context) error {
					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					p, cleanup, err := New(c.Context, db, Options{RulesDir: c.String("rules-dir")})
					if err != nil {
						return err
					}
					defer cleanup()

					_, err = p.Explain(c.Context, c.Int64("route"), os.Stdout)
					return err
				},
			},
		},
	}
}
