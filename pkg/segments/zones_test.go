package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/segmenter/pkg/busdata"
)

func TestMapFareZones(t *testing.T) {
	stops := buildStops([]string{"A", "B", "C"}, []string{"C", "B", "A"})

	zones := MapFareZones(stops, []busdata.FareZoneRecord{
		{Direction: busdata.DirectionOutbound, OriginStopID: 100, DestinationStopID: 102},
		{Direction: busdata.DirectionInbound, OriginStopID: 201, DestinationStopID: 202},
		{Direction: busdata.DirectionInbound, OriginStopID: 100, DestinationStopID: 202},
		{Direction: busdata.DirectionOutbound, OriginStopID: 100, DestinationStopID: 555},
	})

	assert.Equal(t, []Zone{{Start: 0, End: 2}, {Start: 4, End: 5}}, zones)
	assert.Nil(t, MapFareZones(stops, nil))
}
