package busdata

import "strings"

// SingleSegmentMarker marks a ticket description that charges one flat fare for the whole route.
const SingleSegmentMarker = "一段票"

type Route struct {
	ID   int64  `json:"route_id" groups:"basic"`
	Name string `json:"name" groups:"basic"`

	Departure   string `json:"departure" groups:"basic"`
	Destination string `json:"destination" groups:"basic"`

	City    string `json:"city" groups:"basic"`
	BusType string `json:"bus_type" groups:"basic"`

	TicketPriceDescription string `json:"ticket_price_description" groups:"detailed"`
	SegmentBufferText      string `json:"segment_buffer" groups:"detailed"`
}

func (r *Route) IsSingleSegment() bool {
	return strings.Contains(r.TicketPriceDescription, SingleSegmentMarker)
}
