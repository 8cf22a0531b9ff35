package busimport

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/util"
)

const (
	BusTypeFile = "bus_type_map.json"

	BusTypeRegular     = "一般公車"
	BusTypeNewTaipei   = "新北市新巴士"
	BusTypeLeapfrog    = "跳蛙公車"
	taiwanTripPrefix   = "台灣好行-"
	newTaipeiRouteMark = "F"
)

// BusTypes classifies routes by name. Explicit lists from the bus type map
// win over the naming heuristics.
type BusTypes struct {
	types  []string
	routes map[string][]string
}

func LoadBusTypes(path string) (*BusTypes, error) {
	busTypes := &BusTypes{routes: map[string][]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Bus type map not found, using name heuristics only")
		return busTypes, nil
	} else if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &busTypes.routes); err != nil {
		return nil, err
	}

	for busType := range busTypes.routes {
		busTypes.types = append(busTypes.types, busType)
	}
	slices.Sort(busTypes.types)

	return busTypes, nil
}

func (b *BusTypes) Classify(routeName string) string {
	for _, busType := range b.types {
		if util.ContainsString(b.routes[busType], routeName) {
			return busType
		}
	}

	if strings.Contains(routeName, newTaipeiRouteMark) {
		return BusTypeNewTaipei
	}

	if isLeapfrog(routeName) {
		return BusTypeLeapfrog
	}

	return BusTypeRegular
}

// isLeapfrog reports route names with a dash that is neither part of a
// numbered variant ("12-1") nor the Taiwan Trip prefix.
func isLeapfrog(routeName string) bool {
	if strings.Contains(routeName, taiwanTripPrefix) {
		return false
	}

	index := strings.Index(routeName, "-")
	if index < 0 {
		return false
	}
	if index > 0 && routeName[index-1] >= '0' && routeName[index-1] <= '9' {
		return false
	}

	return true
}
