package segments

import (
	"fmt"
	"strings"
)

// Event is a boundary tag attached to a stop position.
type Event uint8

const (
	EventStart Event = iota + 1
	EventEnd
	EventStartOfBack
	EventEndOfGo
	EventStartOfLoop
	EventEndOfLoop
)

var eventNames = map[Event]string{
	EventStart:       "start",
	EventEnd:         "end",
	EventStartOfBack: "start_of_back",
	EventEndOfGo:     "end_of_go",
	EventStartOfLoop: "start_of_loop",
	EventEndOfLoop:   "end_of_loop",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// OpensSegment is true for tags that advance the boarding counter.
func (e Event) OpensSegment() bool {
	return e == EventStart || e == EventStartOfBack || e == EventStartOfLoop
}

// ClosesSegment is true for tags that advance the alighting counter.
func (e Event) ClosesSegment() bool {
	return e == EventEnd || e == EventEndOfGo || e == EventEndOfLoop
}

// Blocks is true for the disconnected-turnaround tags that forbid a loop
// from being laid over them.
func (e Event) Blocks() bool {
	return e == EventEndOfGo || e == EventStartOfBack
}

// Events is the ordered multiset of tags on one stop. The same tag may appear
// several times and every occurrence counts.
type Events []Event

func (es Events) Has(e Event) bool {
	for _, x := range es {
		if x == e {
			return true
		}
	}
	return false
}

func (es Events) Count(e Event) int {
	n := 0
	for _, x := range es {
		if x == e {
			n++
		}
	}
	return n
}

func (es Events) Openings() int {
	n := 0
	for _, x := range es {
		if x.OpensSegment() {
			n++
		}
	}
	return n
}

func (es Events) Closings() int {
	n := 0
	for _, x := range es {
		if x.ClosesSegment() {
			n++
		}
	}
	return n
}

func (es Events) String() string {
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// EventMap holds the events of every stop of one route, indexed by the stop's
// position in full route order.
type EventMap struct {
	events   []Events
	official map[int]bool
}

func NewEventMap(size int) *EventMap {
	return &EventMap{
		events:   make([]Events, size),
		official: map[int]bool{},
	}
}

func (m *EventMap) Len() int {
	return len(m.events)
}

func (m *EventMap) At(pos int) Events {
	return m.events[pos]
}

// Add appends e to pos unconditionally. Repeated calls stack.
func (m *EventMap) Add(pos int, e Event) {
	m.events[pos] = append(m.events[pos], e)
}

// AddOnce appends e to pos only if pos does not already carry it.
func (m *EventMap) AddOnce(pos int, e Event) bool {
	if m.events[pos].Has(e) {
		return false
	}
	m.events[pos] = append(m.events[pos], e)
	return true
}

func (m *EventMap) markOfficial(pos int) {
	m.official[pos] = true
}

// IsOfficial reports whether pos was tagged by a special rule or a resolved
// buffer zone.
func (m *EventMap) IsOfficial(pos int) bool {
	return m.official[pos]
}

// Total counts every occurrence of e across the route.
func (m *EventMap) Total(e Event) int {
	n := 0
	for _, es := range m.events {
		n += es.Count(e)
	}
	return n
}
