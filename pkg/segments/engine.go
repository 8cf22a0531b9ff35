package segments

import (
	"fmt"
	"slices"

	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/rules"
)

type Engine struct {
	tables    *rules.Tables
	resolvers []Resolver
}

// NewEngine creates an engine over the given rule tables. With no resolvers
// the default fallback order is used.
func NewEngine(tables *rules.Tables, resolvers ...Resolver) *Engine {
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers()
	}

	return &Engine{
		tables:    tables,
		resolvers: resolvers,
	}
}

type Result struct {
	RouteID    int64
	Resolution Resolution
	Events     *EventMap

	// Stops is a copy of the input stops with both segment fields filled in.
	Stops []busdata.Stop
}

func (e *Engine) Process(data *RouteData) (*Result, error) {
	resolution := Resolve(data, e.resolvers)
	stops := slices.Clone(data.Stops)

	events, err := ComputeEvents(stops, resolution, data.Route.Name, e.tables)
	if err != nil {
		return nil, fmt.Errorf("route %d: %w", data.Route.ID, err)
	}

	if err := AssignSegments(stops, events); err != nil {
		return nil, fmt.Errorf("route %d: %w", data.Route.ID, err)
	}

	return &Result{
		RouteID:    data.Route.ID,
		Resolution: resolution,
		Events:     events,
		Stops:      stops,
	}, nil
}
