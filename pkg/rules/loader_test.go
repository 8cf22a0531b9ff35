package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, dir string, name string, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()

	writeRuleFile(t, dir, SpecialTurnaroundFile, `
- rule_name: 捷運劍潭站迴轉
  sequence: [士林官邸, 捷運劍潭站, 捷運劍潭站, 士林官邸]
  trigger_stop: 捷運劍潭站
`)
	writeRuleFile(t, dir, DualTerminalFile, `
exact_match:
  - "307"
  - route: 棕9
    loop_range:
      start: 捷運大坪林站
      end: 新店區公所
fuzzy_match:
  - 幹線
`)
	writeRuleFile(t, dir, CorrectionsFile, `
ignore_same_terminal:
  - "232"
`)

	tables, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, tables.SpecialTurnarounds, 1)
	assert.Equal(t, "捷運劍潭站", tables.SpecialTurnarounds[0].TriggerStop)

	dual, loopRange := tables.DualTerminal("307")
	assert.True(t, dual)
	assert.Nil(t, loopRange)

	dual, loopRange = tables.DualTerminal("棕9")
	assert.True(t, dual)
	require.NotNil(t, loopRange)
	assert.Equal(t, "捷運大坪林站", loopRange.Start)

	dual, loopRange = tables.DualTerminal("敦化幹線")
	assert.True(t, dual)
	assert.Nil(t, loopRange)

	dual, _ = tables.DualTerminal("306")
	assert.False(t, dual)

	assert.True(t, tables.IgnoresSameTerminal("232"))
	assert.False(t, tables.IgnoresSameTerminal("2320"))
}

func TestLoadLegacyDualTerminalList(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, DualTerminalFile, `["307", "藍1"]`)

	tables, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []DualTerminalRoute{{Route: "307"}, {Route: "藍1"}}, tables.DualTerminals.ExactMatch)
	assert.Empty(t, tables.DualTerminals.FuzzyMatch)
}

func TestLoadMissingFilesGivesEmptyTables(t *testing.T) {
	tables, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, tables.SpecialTurnarounds)
	assert.Empty(t, tables.DualTerminals.ExactMatch)
	assert.Empty(t, tables.Corrections.IgnoreSameTerminal)
}

func TestLoadInvalidTables(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{"malformed yaml", CorrectionsFile, "ignore_same_terminal: [[["},
		{"trigger outside sequence", SpecialTurnaroundFile, "- {rule_name: r, sequence: [A, B, C], trigger_stop: D}"},
		{"short sequence", SpecialTurnaroundFile, "- {rule_name: r, sequence: [A, B], trigger_stop: A}"},
		{"missing rule name", SpecialTurnaroundFile, "- {sequence: [A, B, C], trigger_stop: B}"},
		{"loop range without end", DualTerminalFile, "exact_match: [{route: R, loop_range: {start: A}}]"},
		{"scalar dual terminal config", DualTerminalFile, "307"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			writeRuleFile(t, dir, test.file, test.contents)

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestNilTables(t *testing.T) {
	var tables *Tables

	dual, loopRange := tables.DualTerminal("307")
	assert.False(t, dual)
	assert.Nil(t, loopRange)
	assert.False(t, tables.IgnoresSameTerminal("232"))
}
