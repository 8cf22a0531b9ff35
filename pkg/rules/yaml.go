package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts both the legacy bare route name and the mapping form
// with an optional loop_range.
func (d *DualTerminalRoute) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		d.Route = node.Value
		d.LoopRange = nil
		return nil
	case yaml.MappingNode:
		type plain DualTerminalRoute
		var decoded plain
		if err := node.Decode(&decoded); err != nil {
			return err
		}
		*d = DualTerminalRoute(decoded)
		return nil
	default:
		return fmt.Errorf("line %d: dual terminal entry must be a route name or a mapping", node.Line)
	}
}

// UnmarshalYAML accepts a bare list of entries as shorthand for exact_match.
func (c *DualTerminalConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var exact []DualTerminalRoute
		if err := node.Decode(&exact); err != nil {
			return err
		}
		c.ExactMatch = exact
		c.FuzzyMatch = nil
		return nil
	}

	type plain DualTerminalConfig
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*c = DualTerminalConfig(decoded)
	return nil
}
