package export

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export computed segments",
		Subcommands: []*cli.Command{
			{
				Name:  "csv",
				Usage: "Write stop segments as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "output file (default stdout)",
					},
					&cli.StringFlag{
						Name:  "city",
						Usage: "only export routes of this city",
					},
					&cli.Int64SliceFlag{
						Name:  "route",
						Usage: "only export these route ids",
					},
					&cli.IntFlag{
						Name:  "direction",
						Value: -1,
						Usage: "only export one direction (0 outbound, 1 inbound)",
					},
				},
				Action: func(c *cli.Context) error {
					options := Options{
						City:     c.String("city"),
						RouteIDs: c.Int64Slice("route"),
					}

					if c.Int("direction") >= 0 {
						direction := busdata.Direction(c.Int("direction"))
						if !direction.Valid() {
							return fmt.Errorf("invalid direction %d", c.Int("direction"))
						}
						options.Direction = &direction
					}

					db, err := database.Connect()
					if err != nil {
						return err
					}
					defer db.Close()

					var writer io.Writer = os.Stdout
					if output := c.String("output"); output != "" {
						file, err := os.Create(output)
						if err != nil {
							return err
						}
						defer file.Close()
						writer = file
					}

					count, err := WriteCSV(c.Context, db, options, writer)
					if err != nil {
						return err
					}

					log.Info().Int("rows", count).Msg("Exported segments")
					return nil
				},
			},
		},
	}
}
