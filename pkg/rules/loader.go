package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	SpecialTurnaroundFile = "special_turnaround_rules.yaml"
	DualTerminalFile      = "dual_terminal_routes.yaml"
	CorrectionsFile       = "official_data_corrections.yaml"
)

// Load reads the three rule tables from dir. A missing file leaves its table
// empty; a malformed or invalid file is an error.
func Load(dir string) (*Tables, error) {
	tables := &Tables{}
	validate := validator.New()

	if err := loadFile(filepath.Join(dir, SpecialTurnaroundFile), &tables.SpecialTurnarounds); err != nil {
		return nil, err
	}
	for i, rule := range tables.SpecialTurnarounds {
		if err := validate.Struct(rule); err != nil {
			return nil, fmt.Errorf("special turnaround rule %d (%s): %w", i, rule.Name, err)
		}
		if !util.ContainsString(rule.Sequence, rule.TriggerStop) {
			return nil, fmt.Errorf("special turnaround rule %d (%s): trigger stop %q is not part of the sequence", i, rule.Name, rule.TriggerStop)
		}
	}

	if err := loadFile(filepath.Join(dir, DualTerminalFile), &tables.DualTerminals); err != nil {
		return nil, err
	}
	if err := validate.Struct(tables.DualTerminals); err != nil {
		return nil, fmt.Errorf("dual terminal routes: %w", err)
	}

	if err := loadFile(filepath.Join(dir, CorrectionsFile), &tables.Corrections); err != nil {
		return nil, err
	}
	if err := validate.Struct(tables.Corrections); err != nil {
		return nil, fmt.Errorf("official data corrections: %w", err)
	}

	log.Info().
		Str("dir", dir).
		Int("special_turnarounds", len(tables.SpecialTurnarounds)).
		Int("dual_terminal_exact", len(tables.DualTerminals.ExactMatch)).
		Int("dual_terminal_fuzzy", len(tables.DualTerminals.FuzzyMatch)).
		Int("ignore_same_terminal", len(tables.Corrections.IgnoreSameTerminal)).
		Msg("Loaded rule tables")

	return tables, nil
}

func loadFile(path string, out interface{}) error {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Rule table not found, using empty table")
		return nil
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(contents, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}
