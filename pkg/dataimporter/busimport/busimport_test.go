package busimport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/segmenter/pkg/busdata"
)

const routesJSON = `{
	"Taipei": {
		"EssentialInfo": {"UpdateTime": "2024-01-01"},
		"BusInfo": [
			{"Id": 10132, "nameZh": "307", "departureZh": "板橋", "destinationZh": "撫遠街",
			 "ticketPriceDescriptionZh": "二段票", "segmentBufferZh": "捷運府中站-台北車站"},
			{"Id": "10133", "nameZh": "藍-頂埔", "departureZh": "A", "destinationZh": "B"},
			{"nameZh": "no id"}
		]
	},
	"NewTaipei": {
		"BusInfo": [
			{"Id": 20001, "nameZh": "F501", "ticketPriceDescriptionZh": "一段票"}
		]
	},
	"Keelung": null
}`

const stopsJSON = `{
	"Taipei": {
		"BusInfo": [
			{"Id": 1, "routeId": 10132, "nameZh": "板橋", "seqNo": 1, "goBack": "0", "longitude": "121.46", "latitude": 25.01, "address": "文化路"},
			{"Id": 2, "routeId": 10132, "nameZh": "撫遠街", "seqNo": 2, "goBack": 0},
			{"Id": 3, "routeId": 10132, "nameZh": "撫遠街", "seqNo": 1, "goBack": "x"},
			{"Id": 4, "routeId": 10132, "nameZh": "板橋", "seqNo": 2, "goBack": 1},
			{"Id": 5, "nameZh": "orphan", "seqNo": 1}
		]
	}
}`

const faresJSON = `{
	"Taipei": [
		{"EssentialInfo": {}},
		{"RouteFare": [
			{"RouteID": "10132", "FarePricingType": "SectionFare", "SectionFare": {"BufferZones": {"BufferZone": [
				{"Direction": 0, "SectionSequence": 1, "FareBufferZoneOrigin": {"OriginStopID": "1"}, "FareBufferZoneDestination": {"DestinationStopID": "2"}},
				{"Direction": 1, "SectionSequence": 1, "FareBufferZoneOrigin": {"OriginStopID": 3}, "FareBufferZoneDestination": {"DestinationStopID": 4}}
			]}}},
			{"RouteID": 10133, "FarePricingType": "SectionFare", "SectionFare": {"BufferZones": {"BufferZone":
				{"Direction": 0, "SectionSequence": 2, "FareBufferZoneOrigin": {"OriginStopID": 7}, "FareBufferZoneDestination": {"DestinationStopID": 8}}
			}}},
			{"RouteID": 1, "FarePricingType": "DistanceFare"},
			{"RouteID": 2, "FarePricingType": "SectionFare", "SectionFare": {}},
			{"RouteID": 3, "FarePricingType": "SectionFare", "SectionFare": {"BufferZones": ""}},
			{"RouteID": 4, "FarePricingType": "SectionFare", "SectionFare": {"BufferZones": {"BufferZone": []}}},
			"not an object"
		]}
	],
	"Keelung": []
}`

type fakeStore struct {
	cleared   bool
	routes    []busdata.Route
	stops     []busdata.Stop
	fareZones []busdata.FareZoneRecord

	stopBatches int
}

func (s *fakeStore) ClearImportedData(_ context.Context) error {
	s.cleared = true
	return nil
}

func (s *fakeStore) InsertRoutes(_ context.Context, routes []busdata.Route) error {
	s.routes = append(s.routes, routes...)
	return nil
}

func (s *fakeStore) InsertStops(_ context.Context, stops []busdata.Stop) error {
	s.stopBatches++
	s.stops = append(s.stops, stops...)
	return nil
}

func (s *fakeStore) InsertFareZones(_ context.Context, records []busdata.FareZoneRecord) error {
	s.fareZones = append(s.fareZones, records...)
	return nil
}

func writeFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RoutesFileName), []byte(routesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StopsFileName), []byte(stopsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FareListFileName), []byte(faresJSON), 0o644))

	return dir
}

func TestImport(t *testing.T) {
	store := &fakeStore{}
	importer := &Importer{
		Store:    store,
		BusTypes: &BusTypes{},
		Dir:      writeFixtures(t),
	}

	summary, err := importer.Import(context.Background())
	require.NoError(t, err)

	assert.True(t, store.cleared)
	assert.Equal(t, 3, summary.Routes)
	assert.Equal(t, 4, summary.Stops)
	assert.Equal(t, 3, summary.FareZones)

	require.Len(t, store.routes, 3)
	assert.Equal(t, "NewTaipei", store.routes[0].City)
	assert.Equal(t, BusTypeNewTaipei, store.routes[0].BusType)
	assert.Equal(t, int64(10133), store.routes[2].ID)
	assert.Equal(t, BusTypeLeapfrog, store.routes[2].BusType)
	assert.Equal(t, "捷運府中站-台北車站", store.routes[1].SegmentBufferText)

	require.Len(t, store.stops, 4)
	require.NotNil(t, store.stops[0].Location)
	assert.Equal(t, 121.46, store.stops[0].Location.Longitude)
	assert.Nil(t, store.stops[1].Location)
	assert.Equal(t, busdata.DirectionOutbound, store.stops[2].Direction)
	assert.Equal(t, busdata.DirectionInbound, store.stops[3].Direction)
	assert.Equal(t, "Taipei", store.stops[3].City)

	assert.Equal(t, FareStats{NoSection: 2, NoBufferContainer: 1, EmptyBuffer: 1, Success: 3, Error: 1}, summary.FareStats["Taipei"])
	assert.NotContains(t, summary.FareStats, "Keelung")

	assert.Equal(t, busdata.FareZoneRecord{
		RouteID: 10132, Direction: busdata.DirectionInbound, SectionSequence: 1,
		OriginStopID: 3, DestinationStopID: 4, Description: fareZoneDescription, City: "Taipei",
	}, store.fareZones[1])
	assert.Equal(t, int64(10133), store.fareZones[2].RouteID)
}

func TestImportMissingFiles(t *testing.T) {
	store := &fakeStore{}
	importer := &Importer{Store: store, BusTypes: &BusTypes{}, Dir: t.TempDir()}

	summary, err := importer.Import(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Routes)
	assert.Zero(t, store.stopBatches)
}

func TestImportBatchesStops(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"Taipei": {"BusInfo": [`)
	total := StopBatchSize + 5
	for i := 0; i < total; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"Id": 1, "routeId": 1, "seqNo": 1}`)
	}
	b.WriteString(`]}}`)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StopsFileName), []byte(b.String()), 0o644))

	store := &fakeStore{}
	importer := &Importer{Store: store, BusTypes: &BusTypes{}, Dir: dir}

	summary, err := importer.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, total, summary.Stops)
	assert.Equal(t, 2, store.stopBatches)
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RoutesFileName), []byte(`{"Taipei": [`), 0o644))

	importer := &Importer{Store: &fakeStore{}, BusTypes: &BusTypes{}, Dir: dir}

	_, err := importer.Import(context.Background())
	assert.ErrorContains(t, err, RoutesFileName)
}

func TestBusTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), BusTypeFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"幹線公車": ["忠孝幹線"], "快速公車": ["1501"]}`), 0o644))

	busTypes, err := LoadBusTypes(path)
	require.NoError(t, err)

	tests := map[string]string{
		"忠孝幹線":       "幹線公車",
		"1501":       "快速公車",
		"F501":       BusTypeNewTaipei,
		"藍-頂埔":       BusTypeLeapfrog,
		"12-1":       BusTypeRegular,
		"台灣好行-皇冠北海岸": BusTypeRegular,
		"307":        BusTypeRegular,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, busTypes.Classify(name), name)
	}

	missing, err := LoadBusTypes(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, BusTypeRegular, missing.Classify("307"))
}
