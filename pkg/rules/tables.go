package rules

import (
	"strings"

	"github.com/travigo/segmenter/pkg/util"
)

// SpecialTurnaroundRule describes a turnaround that can only be recognised by
// its exact run of stop names across the outbound/inbound join.
type SpecialTurnaroundRule struct {
	Name        string   `yaml:"rule_name" validate:"required"`
	Sequence    []string `yaml:"sequence" validate:"min=3,dive,required"`
	TriggerStop string   `yaml:"trigger_stop" validate:"required"`
}

type LoopRange struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

type DualTerminalRoute struct {
	Route     string     `yaml:"route" validate:"required"`
	LoopRange *LoopRange `yaml:"loop_range" validate:"omitempty"`
}

type DualTerminalConfig struct {
	ExactMatch []DualTerminalRoute `yaml:"exact_match" validate:"dive"`
	FuzzyMatch []string            `yaml:"fuzzy_match" validate:"dive,required"`
}

type OfficialDataCorrections struct {
	IgnoreSameTerminal []string `yaml:"ignore_same_terminal" validate:"dive,required"`
}

// Tables is loaded once at startup and never mutated afterwards.
type Tables struct {
	SpecialTurnarounds []SpecialTurnaroundRule
	DualTerminals      DualTerminalConfig
	Corrections        OfficialDataCorrections
}

// DualTerminal reports whether routeName is configured as a disconnected
// dual-terminal route. Exact entries are checked first and may carry a custom
// loop range; fuzzy entries never do.
func (t *Tables) DualTerminal(routeName string) (bool, *LoopRange) {
	if t == nil {
		return false, nil
	}

	for _, entry := range t.DualTerminals.ExactMatch {
		if entry.Route == routeName {
			return true, entry.LoopRange
		}
	}

	for _, pattern := range t.DualTerminals.FuzzyMatch {
		if strings.Contains(routeName, pattern) {
			return true, nil
		}
	}

	return false, nil
}

func (t *Tables) IgnoresSameTerminal(routeName string) bool {
	if t == nil {
		return false
	}

	return util.ContainsString(t.Corrections.IgnoreSameTerminal, routeName)
}
