package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/rules"
)

func routeData(bufferText string, ticketText string, records []busdata.FareZoneRecord) *RouteData {
	return &RouteData{
		Route: busdata.Route{
			ID:                     1,
			Name:                   "1",
			SegmentBufferText:      bufferText,
			TicketPriceDescription: ticketText,
		},
		Stops:     buildStops([]string{"A", "B", "C", "D"}, []string{"E", "F", "G"}),
		FareZones: records,
	}
}

func TestResolveCascade(t *testing.T) {
	resolvable := []busdata.FareZoneRecord{
		{RouteID: 1, Direction: busdata.DirectionOutbound, OriginStopID: 101, DestinationStopID: 102},
	}
	unresolvable := []busdata.FareZoneRecord{
		{RouteID: 1, Direction: busdata.DirectionInbound, OriginStopID: 101, DestinationStopID: 102},
	}

	tests := []struct {
		name     string
		data     *RouteData
		expected Source
	}{
		{"buffer text wins", routeData("B-C", "E-F", resolvable), SourceBufferText},
		{"fare zones when text is empty", routeData("", "E-F", resolvable), SourceFareZones},
		{"fare zones when text is unparseable", routeData("---", "E-F", resolvable), SourceFareZones},
		{"ticket text when zones do not resolve", routeData("", "E-F", unresolvable), SourceTicketText},
		{"turnaround only when nothing is usable", routeData("；", "", unresolvable), SourceTurnaroundOnly},
		{"single segment skips everything", routeData("B-C", "全程一段票", resolvable), SourceSingleSegment},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resolution := Resolve(test.data, DefaultResolvers())
			assert.Equal(t, test.expected, resolution.Source)
			assert.False(t, len(resolution.Ranges) > 0 && len(resolution.Zones) > 0)
		})
	}
}

func TestResolveFareZonesResolution(t *testing.T) {
	data := routeData("", "", []busdata.FareZoneRecord{
		{Direction: busdata.DirectionOutbound, OriginStopID: 101, DestinationStopID: 102},
		{Direction: busdata.DirectionInbound, OriginStopID: 200, DestinationStopID: 201},
		{Direction: busdata.DirectionInbound, OriginStopID: 200, DestinationStopID: 999},
	})

	resolution := Resolve(data, DefaultResolvers())
	assert.Equal(t, SourceFareZones, resolution.Source)
	assert.Equal(t, []Zone{{Start: 1, End: 2}, {Start: 4, End: 5}}, resolution.Zones)
	assert.Empty(t, resolution.Ranges)
}

func TestEngineSingleSegmentKeepsTurnaround(t *testing.T) {
	data := routeData("B-C", "一段票", nil)
	data.Stops = buildStops([]string{"A", "B", "C"}, []string{"C", "B", "A"})

	result, err := NewEngine(&rules.Tables{}).Process(data)
	require.NoError(t, err)

	assert.Equal(t, SourceSingleSegment, result.Resolution.Source)
	assert.Equal(t, 0, result.Events.Total(EventStart))
	assert.Equal(t, 0, result.Events.Total(EventEnd))
	assert.Equal(t, 1, result.Events.Total(EventEndOfGo))
	assert.Equal(t, 1, result.Events.Total(EventStartOfBack))
}

func TestEngineWithoutAnySourceStillAssignsSegments(t *testing.T) {
	data := routeData("", "", nil)

	result, err := NewEngine(nil).Process(data)
	require.NoError(t, err)

	assert.Equal(t, SourceTurnaroundOnly, result.Resolution.Source)
	require.Len(t, result.Stops, len(data.Stops))
	requireMonotonic(t, result.Stops)

	for _, stop := range data.Stops {
		assert.Zero(t, stop.BoardingSegment, "input stops are not modified")
	}
}

func TestEngineIsDeterministic(t *testing.T) {
	tables := &rules.Tables{
		Corrections: rules.OfficialDataCorrections{IgnoreSameTerminal: []string{"232"}},
	}
	data := &RouteData{
		Route: busdata.Route{ID: 232, Name: "232", SegmentBufferText: "去程：A-B、P-Q；回程：F-B"},
		Stops: buildStops(
			[]string{"A", "B", "國道1號(虛擬站不停靠)", "C", "D", "E"},
			[]string{"E", "F", "B", "A"},
		),
	}

	engine := NewEngine(tables)

	first, err := engine.Process(data)
	require.NoError(t, err)
	second, err := engine.Process(data)
	require.NoError(t, err)

	assert.Equal(t, first.Stops, second.Stops)
	assert.Equal(t, first.Events, second.Events)
	requireMonotonic(t, first.Stops)
}

func TestEngineReportsUnsortedStops(t *testing.T) {
	data := routeData("", "", nil)
	data.Stops[0], data.Stops[1] = data.Stops[1], data.Stops[0]

	_, err := NewEngine(nil).Process(data)
	assert.ErrorIs(t, err, ErrUnsortedStops)
}

func TestSegmentsNeverDecrease(t *testing.T) {
	tables := &rules.Tables{
		DualTerminals: rules.DualTerminalConfig{FuzzyMatch: []string{"幹線"}},
	}

	scenarios := []struct {
		name     string
		route    string
		text     string
		outbound []string
		inbound  []string
	}{
		{"plain", "1", "A-B", []string{"A", "B", "C"}, []string{"C", "B", "A"}},
		{"dual terminal", "忠孝幹線", "B-C", []string{"A", "B", "C"}, []string{"D", "E", "F"}},
		{"loop", "2", "A-D、E-F", []string{"A", "B", "C", "D"}, []string{"E", "F", "B", "A"}},
		{"virtual", "3", "X-Y、Z-W", []string{"A", "國道(虛擬站不停靠)", "B"}, []string{"B", "國道(虛擬站不停靠)", "A"}},
		{"outbound only", "4", "A-C", []string{"A", "B", "C"}, nil},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			stops := buildStops(scenario.outbound, scenario.inbound)
			events := computeText(t, stops, scenario.text, scenario.route, tables)

			require.NoError(t, AssignSegments(stops, events))
			requireMonotonic(t, stops)
		})
	}
}
