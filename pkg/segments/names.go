package segments

import "strings"

const (
	// VirtualStopMarker annotates placeholder stops that buses pass without serving.
	VirtualStopMarker = "(虛擬站不停靠)"

	// AlternativeSeparator joins alternative names inside one range token.
	AlternativeSeparator = "&"

	stationSuffix = "站"
)

var nameReplacer = strings.NewReplacer(
	"（", "(",
	"）", ")",
	"臺", "台",
)

// CleanName folds fullwidth parentheses and the legacy 臺 character so names
// from different sources compare equal.
func CleanName(name string) string {
	return strings.TrimSpace(nameReplacer.Replace(name))
}

func IsVirtualStop(name string) bool {
	return strings.Contains(CleanName(name), VirtualStopMarker)
}

type nameForms struct {
	full string
	base string
}

func formsOf(name string) nameForms {
	clean := CleanName(name)

	base := clean
	if i := strings.Index(clean, "("); i >= 0 {
		base = clean[:i]
	}

	return nameForms{
		full: strings.TrimSuffix(strings.TrimSpace(clean), stationSuffix),
		base: strings.TrimSuffix(strings.TrimSpace(base), stationSuffix),
	}
}

func (f nameForms) matches(other nameForms) bool {
	if f.full != "" && f.full == other.full {
		return true
	}
	return f.base != "" && f.base == other.base
}

// NamesMatch reports whether stopName is the stop a range token refers to.
// The token may list alternatives joined by AlternativeSeparator.
func NamesMatch(stopName string, token string) bool {
	stop := formsOf(stopName)

	for _, alternative := range strings.Split(token, AlternativeSeparator) {
		if strings.TrimSpace(alternative) == "" {
			continue
		}
		if formsOf(alternative).matches(stop) {
			return true
		}
	}

	return false
}
