package busimport

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexInt accepts a JSON number, a numeric string or null.
type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = flexInt{}
		return nil
	}

	text := strings.Trim(string(data), `"`)
	if text == "" {
		*f = flexInt{}
		return nil
	}

	if value, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = flexInt{Value: value, Valid: true}
		return nil
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*f = flexInt{}
		return nil
	}
	*f = flexInt{Value: int64(value), Valid: true}

	return nil
}

type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if text == "" || text == "null" {
		*f = flexFloat{}
		return nil
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{Value: value, Valid: true}

	return nil
}

// oneOrMany decodes either a single JSON object or a list of them.
func oneOrMany[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var items []T
		err := json.Unmarshal(raw, &items)
		return items, err
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return []T{item}, nil
}
