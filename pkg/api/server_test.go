package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/database"
)

type fakeStore struct {
	routes  []*busdata.Route
	stops   map[int64][]busdata.Stop
	pingErr error
}

func (s *fakeStore) ListRoutes(_ context.Context) ([]*busdata.Route, error) {
	return s.routes, nil
}

func (s *fakeStore) FindRoutesByName(_ context.Context, name string) ([]*busdata.Route, error) {
	var found []*busdata.Route
	for _, route := range s.routes {
		if route.Name == name {
			found = append(found, route)
		}
	}
	return found, nil
}

func (s *fakeStore) GetRoute(_ context.Context, routeID int64) (*busdata.Route, error) {
	for _, route := range s.routes {
		if route.ID == routeID {
			return route, nil
		}
	}
	return nil, fmt.Errorf("route %d: %w", routeID, database.ErrRouteNotFound)
}

func (s *fakeStore) GetRouteStops(_ context.Context, routeID int64) ([]busdata.Stop, error) {
	return s.stops[routeID], nil
}

func (s *fakeStore) PingContext(_ context.Context) error {
	return s.pingErr
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routes: []*busdata.Route{
			{ID: 10, Name: "307", Departure: "板橋", Destination: "撫遠街", SegmentBufferText: "捷運府中站-台北車站"},
			{ID: 11, Name: "棕9"},
		},
		stops: map[int64][]busdata.Stop{
			10: {
				{ID: 1, RouteID: 10, Name: "板橋", Sequence: 1, BoardingSegment: 1, AlightingSegment: 1, Address: "x"},
				{ID: 2, RouteID: 10, Name: "撫遠街", Sequence: 2, BoardingSegment: 1, AlightingSegment: 2, Address: "y"},
			},
		},
	}
}

func request(t *testing.T, store *fakeStore, target string) (int, []byte) {
	t.Helper()

	resp, err := NewApp(store, nil).Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func TestVersion(t *testing.T) {
	code, body := request(t, newFakeStore(), "/core/version")
	assert.Equal(t, 200, code)
	assert.JSONEq(t, `{"version":"v0.1"}`, string(body))
}

func TestHealth(t *testing.T) {
	store := newFakeStore()

	code, _ := request(t, store, "/core/health")
	assert.Equal(t, 200, code)

	store.pingErr = errors.New("database is locked")
	code, body := request(t, store, "/core/health")
	assert.Equal(t, 503, code)
	assert.Contains(t, string(body), "database is locked")
}

func TestListRoutes(t *testing.T) {
	code, body := request(t, newFakeStore(), "/core/routes?name=307")
	require.Equal(t, 200, code)

	var routes []map[string]any
	require.NoError(t, json.Unmarshal(body, &routes))
	require.Len(t, routes, 1)
	assert.Equal(t, "307", routes[0]["name"])
	assert.NotContains(t, routes[0], "segment_buffer")

	code, body = request(t, newFakeStore(), "/core/routes")
	require.Equal(t, 200, code)
	require.NoError(t, json.Unmarshal(body, &routes))
	assert.Len(t, routes, 2)
}

func TestGetRoute(t *testing.T) {
	code, body := request(t, newFakeStore(), "/core/routes/10")
	require.Equal(t, 200, code)

	var route map[string]any
	require.NoError(t, json.Unmarshal(body, &route))
	assert.Equal(t, "撫遠街", route["destination"])
	assert.Equal(t, "捷運府中站-台北車站", route["segment_buffer"])

	code, _ = request(t, newFakeStore(), "/core/routes/99")
	assert.Equal(t, 404, code)

	code, _ = request(t, newFakeStore(), "/core/routes/abc")
	assert.Equal(t, 400, code)
}

func TestGetRouteStops(t *testing.T) {
	code, body := request(t, newFakeStore(), "/core/routes/10/stops")
	require.Equal(t, 200, code)

	var stops []map[string]any
	require.NoError(t, json.Unmarshal(body, &stops))
	require.Len(t, stops, 2)
	assert.Equal(t, float64(2), stops[1]["segment_alighting"])
	assert.NotContains(t, stops[0], "address")

	code, body = request(t, newFakeStore(), "/core/routes/10/stops?detailed=true")
	require.Equal(t, 200, code)
	require.NoError(t, json.Unmarshal(body, &stops))
	assert.Equal(t, "y", stops[1]["address"])

	code, _ = request(t, newFakeStore(), "/core/routes/99/stops")
	assert.Equal(t, 404, code)
}
