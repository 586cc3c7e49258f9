// Package schedule defines the clock schedule exchanged between the solvers,
// the verifier and the netlist clock-parameter store.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/latchgraph"
)

// ErrPhaseMismatch is returned when a schedule does not cover the phases of a graph.
var ErrPhaseMismatch = errors.New("schedule: phases do not match")

// PhaseTiming is the nominal rise and fall position of one phase.
type PhaseTiming struct {
	Name string  `yaml:"name"`
	Rise float64 `yaml:"rise"`
	Fall float64 `yaml:"fall"`
}

// Schedule is a cycle time plus the positions of every phase, in phase order.
type Schedule struct {
	CycleTime float64       `yaml:"cycle"`
	Phases    []PhaseTiming `yaml:"phases"`
}

// Phase returns the timing of the named phase.
func (s *Schedule) Phase(name string) (PhaseTiming, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}

	return PhaseTiming{}, false
}

// PhaseOrder returns the phase names by ascending fall, then rise. Phases
// sharing both positions keep their listed order, which FromPositions
// writes in phase order.
func (s *Schedule) PhaseOrder() []string {
	ps := append([]PhaseTiming(nil), s.Phases...)
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Fall != ps[j].Fall {
			return ps[i].Fall < ps[j].Fall
		}
		return ps[i].Rise < ps[j].Rise
	})
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}

	return names
}

// String renders the schedule on one line, e.g. "c=5 clk[0,5]".
func (s *Schedule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "c=%g", s.CycleTime)
	for _, p := range s.Phases {
		fmt.Fprintf(&b, " %s[%g,%g]", p.Name, p.Rise, p.Fall)
	}

	return b.String()
}

// FromPositions reads a schedule off clock graph potentials at period c.
// Positions within tol of 0 or c are snapped to the bound.
func FromPositions(lg *latchgraph.Graph, c float64, pos []float64, tol float64) *Schedule {
	snap := func(x float64) float64 {
		switch {
		case math.Abs(x) <= tol:
			return 0
		case math.Abs(x-c) <= tol:
			return c
		}
		return x
	}
	s := &Schedule{CycleTime: c, Phases: make([]PhaseTiming, len(lg.Phases))}
	for i, ph := range lg.Phases {
		s.Phases[i] = PhaseTiming{
			Name: ph.Clock.Name,
			Rise: snap(pos[clockgraph.RiseNode(ph.Index)]),
			Fall: snap(pos[clockgraph.FallNode(ph.Index)]),
		}
	}

	return s
}

// Align returns rise and fall positions indexed by phase (index 0 unused),
// matching schedule phases to lg phases by clock name.
func (s *Schedule) Align(lg *latchgraph.Graph) (rise, fall []float64, err error) {
	rise = make([]float64, len(lg.Phases)+1)
	fall = make([]float64, len(lg.Phases)+1)
	for _, ph := range lg.Phases {
		t, ok := s.Phase(ph.Clock.Name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: no timing for clock %q", ErrPhaseMismatch, ph.Clock.Name)
		}
		rise[ph.Index], fall[ph.Index] = t.Rise, t.Fall
	}

	return rise, fall, nil
}
