package export

import (
	"context"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/util"
)

type Store interface {
	ListRouteIDs(ctx context.Context, city string) ([]int64, error)
	GetRoute(ctx context.Context, routeID int64) (*busdata.Route, error)
	GetRouteStops(ctx context.Context, routeID int64) ([]busdata.Stop, error)
}

// SegmentRow is one stop of one route in the export.
type SegmentRow struct {
	RouteName string `csv:"route_name"`
	BusType   string `csv:"bus_type"`

	busdata.Stop
}

type Options struct {
	City     string
	RouteIDs []int64

	// Direction limits the export to one direction when set
	Direction *busdata.Direction
}

func Rows(ctx context.Context, store Store, options Options) ([]*SegmentRow, error) {
	routeIDs := options.RouteIDs
	if len(routeIDs) == 0 {
		var err error
		routeIDs, err = store.ListRouteIDs(ctx, options.City)
		if err != nil {
			return nil, err
		}
	}

	var rows []*SegmentRow
	for _, routeID := range routeIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		route, err := store.GetRoute(ctx, routeID)
		if err != nil {
			return nil, err
		}

		stops, err := store.GetRouteStops(ctx, routeID)
		if err != nil {
			return nil, err
		}

		if options.Direction != nil {
			util.InPlaceFilter(&stops, func(stop busdata.Stop) bool {
				return stop.Direction == *options.Direction
			})
		}

		for _, stop := range stops {
			rows = append(rows, &SegmentRow{
				RouteName: route.Name,
				BusType:   route.BusType,
				Stop:      stop,
			})
		}
	}

	return rows, nil
}

// WriteCSV writes the segments of the selected routes with a header row.
func WriteCSV(ctx context.Context, store Store, options Options, writer io.Writer) (int, error) {
	rows, err := Rows(ctx, store, options)
	if err != nil {
		return 0, err
	}

	return len(rows), gocsv.Marshal(rows, writer)
}
