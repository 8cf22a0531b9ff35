package busimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
)

const (
	RoutesFileName   = "merged_bus_routes.json"
	StopsFileName    = "merged_stops.json"
	FareListFileName = "merged_bus_route_fare_list.json"

	StopBatchSize = 10000
	FareBatchSize = 5000
)

type Store interface {
	ClearImportedData(ctx context.Context) error
	InsertRoutes(ctx context.Context, routes []busdata.Route) error
	InsertStops(ctx context.Context, stops []busdata.Stop) error
	InsertFareZones(ctx context.Context, records []busdata.FareZoneRecord) error
}

type Importer struct {
	Store    Store
	BusTypes *BusTypes

	// Directory holding the merged JSON files
	Dir string
}

type Summary struct {
	Routes    int
	Stops     int
	FareZones int
	FareStats map[string]FareStats
}

// parse opens one merged file. A missing file is logged and reported as false.
func parse(path string, parser interface{ ParseFile(r io.Reader) error }) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("File does not exist, skipping")
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer file.Close()

	if err := parser.ParseFile(file); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return true, nil
}

// Import replaces all routes, stops and fare zones with the merged files.
func (i *Importer) Import(ctx context.Context) (*Summary, error) {
	startTime := time.Now()
	summary := &Summary{FareStats: map[string]FareStats{}}

	if err := i.Store.ClearImportedData(ctx); err != nil {
		return nil, err
	}

	if err := i.importRoutes(ctx, summary); err != nil {
		return nil, err
	}
	if err := i.importStops(ctx, summary); err != nil {
		return nil, err
	}
	if err := i.importFareZones(ctx, summary); err != nil {
		return nil, err
	}

	log.Info().
		Int("routes", summary.Routes).
		Int("stops", summary.Stops).
		Int("farezones", summary.FareZones).
		Str("duration", time.Since(startTime).String()).
		Msg("Import finished")

	return summary, nil
}

func (i *Importer) importRoutes(ctx context.Context, summary *Summary) error {
	routesFile := &RoutesFile{}
	if ok, err := parse(filepath.Join(i.Dir, RoutesFileName), routesFile); !ok {
		return err
	}

	routes := routesFile.Routes(i.BusTypes)
	if err := i.Store.InsertRoutes(ctx, routes); err != nil {
		return err
	}
	summary.Routes = len(routes)

	log.Info().Int("length", len(routes)).Msg("Imported routes")
	return nil
}

func (i *Importer) importStops(ctx context.Context, summary *Summary) error {
	stopsFile := &StopsFile{}
	if ok, err := parse(filepath.Join(i.Dir, StopsFileName), stopsFile); !ok {
		return err
	}

	batch := make([]busdata.Stop, 0, StopBatchSize)
	flush := func() error {
		if err := i.Store.InsertStops(ctx, batch); err != nil {
			return err
		}
		summary.Stops += len(batch)
		batch = batch[:0]

		log.Info().Int("length", summary.Stops).Msg("Imported stops")
		return nil
	}

	err := stopsFile.EachStop(func(stop busdata.Stop) error {
		batch = append(batch, stop)
		if len(batch) >= StopBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return flush()
	}
	return nil
}

func (i *Importer) importFareZones(ctx context.Context, summary *Summary) error {
	fareListFile := &FareListFile{}
	if ok, err := parse(filepath.Join(i.Dir, FareListFileName), fareListFile); !ok {
		return err
	}

	return fareListFile.EachCity(func(city string, records []busdata.FareZoneRecord, stats FareStats) error {
		for start := 0; start < len(records); start += FareBatchSize {
			end := min(start+FareBatchSize, len(records))
			if err := i.Store.InsertFareZones(ctx, records[start:end]); err != nil {
				return err
			}
		}
		summary.FareZones += len(records)
		summary.FareStats[city] = stats

		log.Info().
			Str("city", city).
			Int("success", stats.Success).
			Int("nosection", stats.NoSection).
			Int("nobuffercontainer", stats.NoBufferContainer).
			Int("emptybuffer", stats.EmptyBuffer).
			Int("error", stats.Error).
			Msg("Imported fare zones")
		return nil
	})
}
