package busdata

type Location struct {
	Longitude float64 `json:"longitude" groups:"detailed"`
	Latitude  float64 `json:"latitude" groups:"detailed"`
}
