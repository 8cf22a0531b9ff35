package database

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "database",
		Usage: "Manage the segment database",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the database schema",
				Action: func(c *cli.Context) error {
					db, err := Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					return db.EnsureSchema(c.Context)
				},
			},
			{
				Name:  "wal",
				Usage: "Switch the database to WAL mode and checkpoint the log",
				Action: func(c *cli.Context) error {
					db, err := Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					if err := db.EnableWAL(c.Context); err != nil {
						return err
					}

					mode, err := db.JournalMode(c.Context)
					if err != nil {
						return err
					}
					log.Info().Str("mode", mode).Msg("Journal mode")

					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "Show table row counts and the latest segment run",
				Action: func(c *cli.Context) error {
					db, err := Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					counts, err := db.CountRows(c.Context)
					if err != nil {
						return err
					}
					for table, count := range counts {
						log.Info().Str("table", table).Int64("rows", count).Msg("Table")
					}

					run, err := db.LatestRun(c.Context)
					if err != nil {
						return err
					}
					if run != nil {
						log.Info().
							Str("run", run.ID).
							Str("status", string(run.Status)).
							Int("total", run.RoutesTotal).
							Int("processed", run.RoutesProcessed).
							Int("failed", run.RoutesFailed).
							Msg("Latest run")
					}

					return nil
				},
			},
		},
	}
}
