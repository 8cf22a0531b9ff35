package busdata

// FareZoneRecord is one officially published buffer zone of a sectioned fare.
type FareZoneRecord struct {
	RouteID         int64
	Direction       Direction
	SectionSequence int

	OriginStopID      int64
	DestinationStopID int64

	Description string
	City        string
}
