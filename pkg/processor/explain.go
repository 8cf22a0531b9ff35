package processor

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kr/pretty"
	"github.com/travigo/segmenter/pkg/segments"
)

// Explain prints how the segments of one route were derived: the chosen
// source, the parsed ranges or zones, and the events and segments of every stop.
func (p *Processor) Explain(ctx context.Context, routeID int64, w io.Writer) (*segments.Result, error) {
	data, err := p.LoadRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	result, err := p.Engine.Process(data)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Route %d %s (%s -> %s)\n", data.Route.ID, data.Route.Name, data.Route.Departure, data.Route.Destination)
	fmt.Fprintf(w, "Buffer text: %q\n", data.Route.SegmentBufferText)
	fmt.Fprintf(w, "Ticket text: %q\n", data.Route.TicketPriceDescription)
	fmt.Fprintf(w, "Fare zone records: %d\n", len(data.FareZones))
	fmt.Fprintf(w, "Source: %s\n", result.Resolution.Source)

	if len(result.Resolution.Ranges) > 0 {
		pretty.Fprintf(w, "Ranges: %# v\n", result.Resolution.Ranges)
	}
	if len(result.Resolution.Zones) > 0 {
		pretty.Fprintf(w, "Zones: %# v\n", result.Resolution.Zones)
	}

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "POS\tDIR\tSEQ\tNAME\tEVENTS\tBOARD\tALIGHT")
	for pos, stop := range result.Stops {
		events := result.Events.At(pos).String()
		if result.Events.IsOfficial(pos) {
			events += " (official)"
		}

		fmt.Fprintf(table, "%d\t%s\t%d\t%s\t%s\t%d\t%d\n",
			pos, stop.Direction, stop.Sequence, stop.Name, events, stop.BoardingSegment, stop.AlightingSegment,
		)
	}

	return result, table.Flush()
}
