package segments

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/rules"
)

var (
	ErrUnsortedStops   = errors.New("stops are not in route order")
	ErrMixedResolution = errors.New("resolution carries both text ranges and fare zones")
)

// ValidateStopOrder checks that stops are outbound before inbound and strictly
// increasing by sequence inside each direction.
func ValidateStopOrder(stops []busdata.Stop) error {
	for i := range stops {
		if !stops[i].Direction.Valid() {
			return fmt.Errorf("%w: stop %d has %s", ErrUnsortedStops, stops[i].ID, stops[i].Direction)
		}
		if i > 0 && !stops[i-1].Before(&stops[i]) {
			return fmt.Errorf("%w: stop %d (%s #%d) follows stop %d (%s #%d)", ErrUnsortedStops,
				stops[i].ID, stops[i].Direction, stops[i].Sequence,
				stops[i-1].ID, stops[i-1].Direction, stops[i-1].Sequence)
		}
	}
	return nil
}

type computer struct {
	routeName string
	tables    *rules.Tables

	stops  []busdata.Stop
	names  []string
	events *EventMap

	outbound []int
	inbound  []int
}

// ComputeEvents runs the boundary passes over a route's stops and returns the
// events of every stop position. stops must be in full route order.
func ComputeEvents(stops []busdata.Stop, resolution Resolution, routeName string, tables *rules.Tables) (*EventMap, error) {
	if err := ValidateStopOrder(stops); err != nil {
		return nil, err
	}
	if len(resolution.Ranges) > 0 && len(resolution.Zones) > 0 {
		return nil, ErrMixedResolution
	}

	c := &computer{
		routeName: routeName,
		tables:    tables,
		stops:     stops,
		names:     make([]string, len(stops)),
		events:    NewEventMap(len(stops)),
	}
	for i, stop := range stops {
		c.names[i] = CleanName(stop.Name)
		if stop.Direction == busdata.DirectionOutbound {
			c.outbound = append(c.outbound, i)
		} else {
			c.inbound = append(c.inbound, i)
		}
	}

	c.applySpecialRules()

	var unmatched []Range
	if len(resolution.Zones) > 0 {
		c.applyZones(resolution.Zones)
	} else if len(resolution.Ranges) > 0 {
		unmatched = c.applyRanges(resolution.Ranges)
	}

	if len(unmatched) > 0 {
		c.applyVirtualStops(unmatched)
	}

	c.applyTurnaround()

	return c.events, nil
}

func (c *computer) direction(d busdata.Direction) []int {
	if d == busdata.DirectionOutbound {
		return c.outbound
	}
	return c.inbound
}

func (c *computer) markOfficial(pos int, e Event) {
	if c.events.AddOnce(pos, e) {
		c.events.markOfficial(pos)
	}
}

func (c *computer) isDirectionTransition(pos int) bool {
	if pos > 0 && c.stops[pos].Direction == busdata.DirectionInbound && c.stops[pos-1].Direction == busdata.DirectionOutbound {
		return true
	}
	if pos < len(c.stops)-1 && c.stops[pos].Direction == busdata.DirectionOutbound && c.stops[pos+1].Direction == busdata.DirectionInbound {
		return true
	}
	return false
}

func (c *computer) applySpecialRules() {
	if c.tables == nil {
		return
	}

	for _, rule := range c.tables.SpecialTurnarounds {
		window := make([]string, len(rule.Sequence))
		for i, name := range rule.Sequence {
			window[i] = CleanName(name)
		}

		trigger := slices.Index(window, CleanName(rule.TriggerStop))
		if trigger < 0 || len(window) == 0 {
			continue
		}

		for i := 0; i+len(window) <= len(c.names); i++ {
			if !slices.Equal(c.names[i:i+len(window)], window) {
				continue
			}
			if !c.isDirectionTransition(i + trigger) {
				continue
			}

			log.Debug().Str("route", c.routeName).Str("rule", rule.Name).Int("position", i+trigger).Msg("Special turnaround rule applied")

			for pos := i + 1; pos < i+len(window)-1; pos++ {
				c.events.AddOnce(pos, EventStart)
				c.events.AddOnce(pos, EventEnd)
				c.events.markOfficial(pos)
			}
		}
	}
}

func (c *computer) applyZones(zones []Zone) {
	for _, zone := range zones {
		if zone.Start < 0 || zone.End >= len(c.stops) || zone.Start > zone.End {
			continue
		}
		c.markOfficial(zone.Start, EventStart)
		c.markOfficial(zone.End, EventEnd)
	}
}

// applyRanges tags each range in every direction it applies to and returns
// the ranges that matched no direction at all.
func (c *computer) applyRanges(ranges []Range) []Range {
	var unmatched []Range

	for _, r := range ranges {
		matched := false

		for _, direction := range []busdata.Direction{busdata.DirectionOutbound, busdata.DirectionInbound} {
			if !r.AppliesTo(direction) {
				continue
			}

			first, last := -1, -1
			foundStart, foundEnd := false, false
			widen := func(pos int) {
				if first < 0 || pos < first {
					first = pos
				}
				if pos > last {
					last = pos
				}
			}

			for _, pos := range c.direction(direction) {
				if NamesMatch(c.stops[pos].Name, r.Start) {
					foundStart = true
					widen(pos)
				}
				if NamesMatch(c.stops[pos].Name, r.End) {
					foundEnd = true
					widen(pos)
				}
			}

			if !foundStart || !foundEnd {
				continue
			}

			matched = true
			c.markOfficial(first, EventStart)
			c.markOfficial(last, EventEnd)
		}

		if !matched {
			unmatched = append(unmatched, r)
		}
	}

	return unmatched
}

// applyVirtualStops anchors ranges that matched no named stop on runs of
// virtual stops. Extra ranges pile onto the last run and every one of them
// counts as its own boundary.
func (c *computer) applyVirtualStops(unmatched []Range) {
	for _, direction := range []busdata.Direction{busdata.DirectionOutbound, busdata.DirectionInbound} {
		runs := c.virtualRuns(c.direction(direction))
		if len(runs) == 0 {
			continue
		}

		for i, r := range unmatched {
			anchor := runs[min(i, len(runs)-1)][0]

			log.Debug().Str("route", c.routeName).Str("range", r.String()).Int("position", anchor).Msg("Range anchored on virtual stop")

			c.events.Add(anchor, EventStart)
			c.events.Add(anchor, EventEnd)
			c.events.markOfficial(anchor)
		}
	}
}

func (c *computer) virtualRuns(positions []int) [][]int {
	var runs [][]int
	previous := -2

	for i, pos := range positions {
		if !IsVirtualStop(c.stops[pos].Name) {
			continue
		}
		if i == previous+1 && len(runs) > 0 {
			runs[len(runs)-1] = append(runs[len(runs)-1], pos)
		} else {
			runs = append(runs, []int{pos})
		}
		previous = i
	}

	return runs
}
