package busimport

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/travigo/segmenter/pkg/busdata"
)

type routeRecord struct {
	ID                     flexInt `json:"Id"`
	NameZh                 string  `json:"nameZh"`
	DepartureZh            string  `json:"departureZh"`
	DestinationZh          string  `json:"destinationZh"`
	TicketPriceDescription string  `json:"ticketPriceDescriptionZh"`
	SegmentBuffer          string  `json:"segmentBufferZh"`
}

type cityRoutes struct {
	BusInfo []routeRecord `json:"BusInfo"`
}

// RoutesFile is merged_bus_routes.json: route lists keyed by city.
type RoutesFile struct {
	Cities map[string]*cityRoutes
}

func (r *RoutesFile) ParseFile(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(&r.Cities)
}

// Routes converts the file into routes, skipping records without an id.
func (r *RoutesFile) Routes(busTypes *BusTypes) []busdata.Route {
	var routes []busdata.Route

	for _, city := range sortedKeys(r.Cities) {
		cityData := r.Cities[city]
		if cityData == nil {
			continue
		}

		for _, record := range cityData.BusInfo {
			if !record.ID.Valid {
				continue
			}

			routes = append(routes, busdata.Route{
				ID:                     record.ID.Value,
				Name:                   record.NameZh,
				Departure:              record.DepartureZh,
				Destination:            record.DestinationZh,
				City:                   city,
				BusType:                busTypes.Classify(record.NameZh),
				TicketPriceDescription: record.TicketPriceDescription,
				SegmentBufferText:      record.SegmentBuffer,
			})
		}
	}

	return routes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}
