package busdata

import (
	"fmt"
	"strconv"
)

type Direction int

const (
	DirectionOutbound Direction = 0
	DirectionInbound  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "outbound"
	case DirectionInbound:
		return "inbound"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// MarshalCSV keeps the numeric form in CSV output.
func (d Direction) MarshalCSV() (string, error) {
	return strconv.Itoa(int(d)), nil
}

func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionInbound
}

type Stop struct {
	ID       int64  `json:"stop_id" groups:"basic" csv:"stop_id"`
	RouteID  int64  `json:"route_id" groups:"basic" csv:"route_id"`
	Name     string `json:"name" groups:"basic" csv:"name"`
	Sequence int    `json:"seq_no" groups:"basic" csv:"seq_no"`

	Direction Direction `json:"go_back" groups:"basic" csv:"go_back"`

	Location *Location `json:"location,omitempty" groups:"detailed" csv:"-"`
	Address  string    `json:"address" groups:"detailed" csv:"address"`
	City     string    `json:"city" groups:"detailed" csv:"city"`

	BoardingSegment  int `json:"segment_boarding" groups:"basic" csv:"segment_boarding"`
	AlightingSegment int `json:"segment_alighting" groups:"basic" csv:"segment_alighting"`
}

// Before reports whether s comes before other in full route order
// (outbound before inbound, then by sequence number).
func (s *Stop) Before(other *Stop) bool {
	if s.Direction != other.Direction {
		return s.Direction < other.Direction
	}

	return s.Sequence < other.Sequence
}
