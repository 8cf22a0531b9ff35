package segments

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/rules"
)

// applyTurnaround marks where the outbound path turns into the inbound path.
func (c *computer) applyTurnaround() {
	if len(c.outbound) == 0 || len(c.inbound) == 0 {
		return
	}

	lastGo := c.outbound[len(c.outbound)-1]
	firstBack := c.inbound[0]

	goNames := c.namePositions(c.outbound)
	backNames := c.namePositions(c.inbound)

	dualTerminal, loopRange := c.tables.DualTerminal(c.routeName)
	sameTerminal := c.names[lastGo] == c.names[firstBack]

	switch {
	case dualTerminal:
		c.markDualTerminal(lastGo, firstBack, loopRange)
	case sameTerminal && c.tables.IgnoresSameTerminal(c.routeName):
		c.markCorrectedLoop(lastGo, firstBack, goNames, backNames)
	case sameTerminal:
		c.markDualTerminal(lastGo, firstBack, nil)
	default:
		c.markContinuousLoop(lastGo, firstBack, goNames, backNames)
	}
}

// namePositions maps each cleaned name to its last position among positions.
func (c *computer) namePositions(positions []int) map[string]int {
	names := make(map[string]int, len(positions))
	for _, pos := range positions {
		names[c.names[pos]] = pos
	}
	return names
}

func (c *computer) markDualTerminal(lastGo int, firstBack int, loopRange *rules.LoopRange) {
	if loopRange != nil {
		start, end := c.findLoopRange(loopRange)
		if start >= 0 && end >= 0 && start <= end {
			log.Debug().Str("route", c.routeName).Int("start", start).Int("end", end).Msg("Custom loop range")
			c.markOfficial(start, EventStartOfLoop)
			c.markOfficial(end, EventEndOfLoop)
			return
		}
	}

	c.markOfficial(lastGo, EventEndOfGo)
	c.markOfficial(firstBack, EventStartOfBack)
}

// findLoopRange returns the first stop matching the start pattern and the
// last stop matching the end pattern, -1 when not found.
func (c *computer) findLoopRange(loopRange *rules.LoopRange) (int, int) {
	startPattern := CleanName(loopRange.Start)
	endPattern := CleanName(loopRange.End)

	start, end := -1, -1
	for pos, name := range c.names {
		if start < 0 && loopNameMatches(name, startPattern) {
			start = pos
		}
		if loopNameMatches(name, endPattern) {
			end = pos
		}
	}

	return start, end
}

func loopNameMatches(name string, pattern string) bool {
	if name == "" || pattern == "" {
		return false
	}
	return strings.Contains(name, pattern) || strings.Contains(pattern, name)
}

// markCorrectedLoop handles routes whose raw data repeats the terminal name at
// the join by mistake. The loop spans from just after the last outbound stop
// that is also served inbound to just before the first inbound stop that is
// also served outbound.
func (c *computer) markCorrectedLoop(lastGo int, firstBack int, goNames map[string]int, backNames map[string]int) {
	terminal := c.names[lastGo]

	start := lastGo
	for i := len(c.outbound) - 2; i >= 0; i-- {
		if _, ok := backNames[c.names[c.outbound[i]]]; ok {
			start = c.outbound[i+1]
			break
		}
	}

	end := firstBack
	for i := 1; i < len(c.inbound); i++ {
		name := c.names[c.inbound[i]]
		if name == terminal {
			continue
		}
		if _, ok := goNames[name]; ok {
			end = c.inbound[i] - 1
			break
		}
	}

	if start <= end {
		log.Debug().Str("route", c.routeName).Int("start", start).Int("end", end).Msg("Corrected same-terminal loop")
		c.markOfficial(start, EventStartOfLoop)
		c.markOfficial(end, EventEndOfLoop)
	}
}

// markContinuousLoop finds the first inbound stop that rejoins the outbound
// path and marks the stretch served in one direction only as the loop.
func (c *computer) markContinuousLoop(lastGo int, firstBack int, goNames map[string]int, backNames map[string]int) {
	for _, pos := range c.inbound {
		matchGo, ok := goNames[c.names[pos]]
		if !ok {
			continue
		}

		start := -1
		for _, candidate := range c.outbound {
			if candidate <= matchGo {
				continue
			}
			if _, bidirectional := backNames[c.names[candidate]]; bidirectional {
				continue
			}
			start = candidate
			break
		}
		if start < 0 && matchGo == lastGo {
			start = firstBack
		}
		if start < 0 {
			continue
		}

		end := pos - 1
		for end >= start {
			_, inGo := goNames[c.names[end]]
			_, inBack := backNames[c.names[end]]
			if !inGo || !inBack {
				break
			}
			end--
		}

		if start > end || c.interferes(start, end) {
			continue
		}

		log.Debug().Str("route", c.routeName).Int("start", start).Int("end", end).Msg("Continuous loop")
		c.events.AddOnce(start, EventStartOfLoop)
		c.events.AddOnce(end, EventEndOfLoop)
		return
	}
}

// interferes checks the open interval (start, end) for boundaries a loop
// cannot be laid over. Only a single buffer zone closing before a single one
// opens is tolerated. Any other mix, or any disconnected-turnaround tag, is
// rejected.
func (c *computer) interferes(start int, end int) bool {
	var ends, starts []int

	for pos := start + 1; pos < end; pos++ {
		events := c.events.At(pos)
		if events.Has(EventEnd) {
			ends = append(ends, pos)
		}
		if events.Has(EventStart) {
			starts = append(starts, pos)
		}
		for _, e := range events {
			if e.Blocks() {
				return true
			}
		}
	}

	if len(ends) == 0 && len(starts) == 0 {
		return false
	}

	return !(len(ends) == 1 && len(starts) == 1 && ends[0] < starts[0])
}
