package segments

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/rules"
)

func buildStops(outbound []string, inbound []string) []busdata.Stop {
	var stops []busdata.Stop
	for i, name := range outbound {
		stops = append(stops, busdata.Stop{
			ID:        int64(100 + i),
			RouteID:   1,
			Name:      name,
			Sequence:  i + 1,
			Direction: busdata.DirectionOutbound,
		})
	}
	for i, name := range inbound {
		stops = append(stops, busdata.Stop{
			ID:        int64(200 + i),
			RouteID:   1,
			Name:      name,
			Sequence:  i + 1,
			Direction: busdata.DirectionInbound,
		})
	}
	return stops
}

func computeText(t *testing.T, stops []busdata.Stop, text string, routeName string, tables *rules.Tables) *EventMap {
	t.Helper()

	events, err := ComputeEvents(stops, Resolution{Source: SourceBufferText, Ranges: ParseRanges(text)}, routeName, tables)
	require.NoError(t, err)

	return events
}

type segmentPair struct {
	boarding  int
	alighting int
}

func segmentsOf(t *testing.T, stops []busdata.Stop, events *EventMap) []segmentPair {
	t.Helper()

	require.NoError(t, AssignSegments(stops, events))

	pairs := make([]segmentPair, len(stops))
	for i, stop := range stops {
		pairs[i] = segmentPair{boarding: stop.BoardingSegment, alighting: stop.AlightingSegment}
	}
	return pairs
}

func requireMonotonic(t *testing.T, stops []busdata.Stop) {
	t.Helper()

	for i, stop := range stops {
		require.GreaterOrEqual(t, stop.BoardingSegment, 1, "boarding at %d", i)
		require.GreaterOrEqual(t, stop.AlightingSegment, 1, "alighting at %d", i)
		if i > 0 {
			require.GreaterOrEqual(t, stop.BoardingSegment, stops[i-1].BoardingSegment, "boarding at %d", i)
			require.GreaterOrEqual(t, stop.AlightingSegment, stops[i-1].AlightingSegment, "alighting at %d", i)
		}
	}
}
