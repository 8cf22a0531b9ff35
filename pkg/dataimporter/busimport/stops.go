package busimport

import (
	"encoding/json"
	"io"

	"github.com/travigo/segmenter/pkg/busdata"
)

type stopRecord struct {
	ID        flexInt   `json:"Id"`
	RouteID   flexInt   `json:"routeId"`
	NameZh    string    `json:"nameZh"`
	SeqNo     flexInt   `json:"seqNo"`
	GoBack    flexInt   `json:"goBack"`
	Longitude flexFloat `json:"longitude"`
	Latitude  flexFloat `json:"latitude"`
	Address   string    `json:"address"`
}

type cityStops struct {
	BusInfo []stopRecord `json:"BusInfo"`
}

// StopsFile is merged_stops.json: per route stop lists keyed by city.
type StopsFile struct {
	Cities map[string]*cityStops
}

func (s *StopsFile) ParseFile(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(&s.Cities)
}

// EachStop calls fn for every stop with a route id. A missing or unreadable
// direction is taken as outbound.
func (s *StopsFile) EachStop(fn func(stop busdata.Stop) error) error {
	for _, city := range sortedKeys(s.Cities) {
		cityData := s.Cities[city]
		if cityData == nil {
			continue
		}

		for _, record := range cityData.BusInfo {
			if !record.RouteID.Valid {
				continue
			}

			stop := busdata.Stop{
				ID:        record.ID.Value,
				RouteID:   record.RouteID.Value,
				Name:      record.NameZh,
				Sequence:  int(record.SeqNo.Value),
				Direction: busdata.Direction(record.GoBack.Value),
				Address:   record.Address,
				City:      city,
			}
			if record.Longitude.Valid && record.Latitude.Valid {
				stop.Location = &busdata.Location{
					Longitude: record.Longitude.Value,
					Latitude:  record.Latitude.Value,
				}
			}

			if err := fn(stop); err != nil {
				return err
			}
		}
	}

	return nil
}
