package segments

import (
	"fmt"

	"github.com/travigo/segmenter/pkg/busdata"
)

// Zone is a buffer zone already resolved to stop positions in full route order.
type Zone struct {
	Start int
	End   int
}

func (z Zone) String() string {
	return fmt.Sprintf("%d-%d", z.Start, z.End)
}

type stopKey struct {
	id        int64
	direction busdata.Direction
}

// MapFareZones resolves official fare zone records against the route's stops.
// Records with an endpoint that is not on the route in the recorded direction
// are dropped.
func MapFareZones(stops []busdata.Stop, records []busdata.FareZoneRecord) []Zone {
	if len(records) == 0 {
		return nil
	}

	positions := make(map[stopKey]int, len(stops))
	for i, stop := range stops {
		positions[stopKey{id: stop.ID, direction: stop.Direction}] = i
	}

	var zones []Zone
	for _, record := range records {
		start, okStart := positions[stopKey{id: record.OriginStopID, direction: record.Direction}]
		end, okEnd := positions[stopKey{id: record.DestinationStopID, direction: record.Direction}]

		if okStart && okEnd {
			zones = append(zones, Zone{Start: start, End: end})
		}
	}

	return zones
}
