package busimport

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
)

const sectionFarePricing = "SectionFare"

const fareZoneDescription = "Buffer Zone"

type bufferZone struct {
	Direction       flexInt `json:"Direction"`
	SectionSequence flexInt `json:"SectionSequence"`
	Origin          struct {
		OriginStopID flexInt `json:"OriginStopID"`
	} `json:"FareBufferZoneOrigin"`
	Destination struct {
		DestinationStopID flexInt `json:"DestinationStopID"`
	} `json:"FareBufferZoneDestination"`
}

type routeFare struct {
	RouteID     flexInt         `json:"RouteID"`
	PricingType string          `json:"FarePricingType"`
	SectionFare json.RawMessage `json:"SectionFare"`
}

type fareListItem struct {
	RouteFare []json.RawMessage `json:"RouteFare"`
}

// FareStats counts what happened to the fare records of one city.
type FareStats struct {
	NoSection         int
	NoBufferContainer int
	EmptyBuffer       int
	Success           int
	Error             int
}

// FareListFile is merged_bus_route_fare_list.json.
type FareListFile struct {
	Cities map[string]json.RawMessage
}

func (f *FareListFile) ParseFile(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(&f.Cities)
}

// cityRouteFares finds the RouteFare list inside a city's item list.
func cityRouteFares(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	for _, item := range items {
		var listItem fareListItem
		if err := json.Unmarshal(item, &listItem); err == nil && listItem.RouteFare != nil {
			return listItem.RouteFare
		}
	}

	return nil
}

// EachCity calls fn with the fare zones and stats of every city.
func (f *FareListFile) EachCity(fn func(city string, records []busdata.FareZoneRecord, stats FareStats) error) error {
	for _, city := range sortedKeys(f.Cities) {
		routeFares := cityRouteFares(f.Cities[city])
		if len(routeFares) == 0 {
			log.Warn().Str("city", city).Msg("No RouteFare list found")
			continue
		}

		records, stats := parseRouteFares(city, routeFares)
		if err := fn(city, records, stats); err != nil {
			return err
		}
	}

	return nil
}

func parseRouteFares(city string, routeFares []json.RawMessage) ([]busdata.FareZoneRecord, FareStats) {
	var records []busdata.FareZoneRecord
	var stats FareStats

	for _, raw := range routeFares {
		var fare routeFare
		if err := json.Unmarshal(raw, &fare); err != nil {
			stats.Error++
			continue
		}

		if fare.PricingType != sectionFarePricing || isEmptyJSON(fare.SectionFare) {
			stats.NoSection++
			continue
		}

		var sectionFare struct {
			BufferZones json.RawMessage `json:"BufferZones"`
		}
		if err := json.Unmarshal(fare.SectionFare, &sectionFare); err != nil {
			stats.Error++
			continue
		}

		if isEmptyJSON(sectionFare.BufferZones) || sectionFare.BufferZones[0] != '{' {
			stats.NoBufferContainer++
			continue
		}

		var container struct {
			BufferZone json.RawMessage `json:"BufferZone"`
		}
		if err := json.Unmarshal(sectionFare.BufferZones, &container); err != nil {
			stats.Error++
			continue
		}

		zones, err := oneOrMany[bufferZone](container.BufferZone)
		if err != nil {
			stats.Error++
			continue
		}
		if len(zones) == 0 {
			stats.EmptyBuffer++
			continue
		}

		for _, zone := range zones {
			records = append(records, busdata.FareZoneRecord{
				RouteID:           fare.RouteID.Value,
				Direction:         busdata.Direction(zone.Direction.Value),
				SectionSequence:   int(zone.SectionSequence.Value),
				OriginStopID:      zone.Origin.OriginStopID.Value,
				DestinationStopID: zone.Destination.DestinationStopID.Value,
				Description:       fareZoneDescription,
				City:              city,
			})
			stats.Success++
		}
	}

	return records, stats
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "{}", "[]", `""`:
		return true
	}
	return false
}
