package segments

import (
	"fmt"

	"github.com/travigo/segmenter/pkg/busdata"
)

// AssignSegments walks the stops once in route order. Every opening tag on a
// stop raises the boarding segment before the stop is written and every
// closing tag raises the alighting segment after it, once per occurrence.
func AssignSegments(stops []busdata.Stop, events *EventMap) error {
	if events.Len() != len(stops) {
		return fmt.Errorf("event map covers %d stops, route has %d", events.Len(), len(stops))
	}

	boarding, alighting := 1, 1

	for i := range stops {
		stopEvents := events.At(i)

		boarding += stopEvents.Openings()

		stops[i].BoardingSegment = boarding
		stops[i].AlightingSegment = alighting

		alighting += stopEvents.Closings()
	}

	return nil
}
