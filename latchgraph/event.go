package latchgraph

import (
	"fmt"

	"github.com/katalvlaran/clocksched/netlist"
)

// EventKind names a clock edge position.
type EventKind uint8

const (
	EventZero EventKind = iota // time origin, Host only
	EventRise
	EventFall
)

// Event is a clock edge of one phase. Offset counts whole cycles: an
// LSL latch opens at the fall of its phase one cycle earlier (Offset -1).
type Event struct {
	Kind   EventKind
	Phase  int
	Offset int
}

func (e Event) String() string {
	switch e.Kind {
	case EventZero:
		return "zero"
	case EventRise:
		return fmt.Sprintf("r%d%+d", e.Phase, e.Offset)
	}

	return fmt.Sprintf("f%d%+d", e.Phase, e.Offset)
}

// Time returns the position of e given the phase positions (1-based slices, index 0 unused).
func (e Event) Time(c float64, rise, fall []float64) float64 {
	switch e.Kind {
	case EventRise:
		return rise[e.Phase] + float64(e.Offset)*c
	case EventFall:
		return fall[e.Phase] + float64(e.Offset)*c
	}

	return 0
}

// rank orders events of one phase inside a cycle: f-c < r < f.
func (e Event) rank() int {
	switch {
	case e.Kind == EventFall && e.Offset < 0:
		return 0
	case e.Kind == EventRise:
		return 1
	}

	return 2
}

// Open returns the event at which data may leave v.
//
//	FFR: r   FFF: f   LSH: r   LSL: f-c
func (v *Vertex) Open() Event {
	if v.IsHost() {
		return Event{Kind: EventZero}
	}
	switch v.Kind {
	case netlist.RisingEdgeFF, netlist.LevelSensitiveHigh:
		return Event{Kind: EventRise, Phase: v.Phase}
	case netlist.FallingEdgeFF:
		return Event{Kind: EventFall, Phase: v.Phase}
	}

	return Event{Kind: EventFall, Phase: v.Phase, Offset: -1}
}

// Close returns the event at which v captures data.
//
//	FFR: r   FFF: f   LSH: f   LSL: r
func (v *Vertex) Close() Event {
	if v.IsHost() {
		return Event{Kind: EventZero}
	}
	switch v.Kind {
	case netlist.RisingEdgeFF, netlist.LevelSensitiveLow:
		return Event{Kind: EventRise, Phase: v.Phase}
	}

	return Event{Kind: EventFall, Phase: v.Phase}
}

// SkewOf returns the (min, max) skew of event e for v.
func (v *Vertex) SkewOf(e Event) (float64, float64) {
	switch e.Kind {
	case EventRise:
		return v.Skew.RiseMin, v.Skew.RiseMax
	case EventFall:
		return v.Skew.FallMin, v.Skew.FallMax
	}

	return 0, 0
}

// cycleCrossing computes K for an edge u->v.
func cycleCrossing(u, v *Vertex) int {
	if u.IsHost() {
		return 0
	}
	if u.Phase == v.Phase {
		if u.Kind == v.Kind || u.Open().rank() >= v.Close().rank() {
			return 1
		}
		return 0
	}
	if u.Phase > v.Phase {
		return 1
	}

	return 0
}
