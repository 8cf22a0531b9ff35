package segments

import "github.com/travigo/segmenter/pkg/busdata"

// Source names where a route's buffer zones came from.
type Source int

const (
	SourceTurnaroundOnly Source = iota
	SourceSingleSegment
	SourceBufferText
	SourceFareZones
	SourceTicketText
)

func (s Source) String() string {
	switch s {
	case SourceSingleSegment:
		return "single_segment"
	case SourceBufferText:
		return "buffer_text"
	case SourceFareZones:
		return "fare_zones"
	case SourceTicketText:
		return "ticket_text"
	default:
		return "turnaround_only"
	}
}

// Resolution is the buffer zone input chosen for one route. At most one of
// Ranges and Zones is set.
type Resolution struct {
	Source Source
	Ranges []Range
	Zones  []Zone
}

func (r Resolution) Empty() bool {
	return len(r.Ranges) == 0 && len(r.Zones) == 0
}

// RouteData is everything the engine needs to know about one route.
type RouteData struct {
	Route     busdata.Route
	Stops     []busdata.Stop
	FareZones []busdata.FareZoneRecord
}

type Resolver interface {
	Resolve(data *RouteData) (Resolution, bool)
}

type ResolverFunc func(data *RouteData) (Resolution, bool)

func (f ResolverFunc) Resolve(data *RouteData) (Resolution, bool) {
	return f(data)
}

var (
	BufferTextResolver Resolver = ResolverFunc(func(data *RouteData) (Resolution, bool) {
		ranges := ParseRanges(data.Route.SegmentBufferText)
		return Resolution{Source: SourceBufferText, Ranges: ranges}, len(ranges) > 0
	})

	FareZoneResolver Resolver = ResolverFunc(func(data *RouteData) (Resolution, bool) {
		zones := MapFareZones(data.Stops, data.FareZones)
		return Resolution{Source: SourceFareZones, Zones: zones}, len(zones) > 0
	})

	TicketTextResolver Resolver = ResolverFunc(func(data *RouteData) (Resolution, bool) {
		ranges := ParseRanges(data.Route.TicketPriceDescription)
		return Resolution{Source: SourceTicketText, Ranges: ranges}, len(ranges) > 0
	})
)

// DefaultResolvers is the fallback order: buffer description, official fare
// zones, then the ticket price description.
func DefaultResolvers() []Resolver {
	return []Resolver{BufferTextResolver, FareZoneResolver, TicketTextResolver}
}

// Resolve picks the first resolver with a non-empty result. Single segment
// routes and routes with no usable source get an empty resolution, so only
// the turnaround pass marks them.
func Resolve(data *RouteData, resolvers []Resolver) Resolution {
	if data.Route.IsSingleSegment() {
		return Resolution{Source: SourceSingleSegment}
	}

	for _, resolver := range resolvers {
		if resolution, ok := resolver.Resolve(data); ok && !resolution.Empty() {
			return resolution
		}
	}

	return Resolution{Source: SourceTurnaroundOnly}
}
