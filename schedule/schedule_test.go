package schedule_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/netlist/netlisttest"
	"github.com/katalvlaran/clocksched/schedule"
)

func TestFromPositionsAndAlign(t *testing.T) {
	lg, err := latchgraph.Build(netlisttest.TwoPhase(), netlist.DelayLibrary)
	require.NoError(t, err)

	// Zero, r1, f1, r2, f2
	s := schedule.FromPositions(lg, 7, []float64{0, 1e-12, 3, 3.5, 7 - 1e-12}, 1e-9)
	assert.Equal(t, []schedule.PhaseTiming{
		{Name: "phi1", Rise: 0, Fall: 3},
		{Name: "phi2", Rise: 3.5, Fall: 7},
	}, s.Phases)

	rise, fall, err := s.Align(lg)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 3.5}, rise)
	assert.Equal(t, []float64{0, 3, 7}, fall)

	p, ok := s.Phase("phi2")
	require.True(t, ok)
	assert.Equal(t, 3.5, p.Rise)

	_, _, err = (&schedule.Schedule{CycleTime: 7}).Align(lg)
	assert.ErrorIs(t, err, schedule.ErrPhaseMismatch)
}

func TestPhaseOrder(t *testing.T) {
	s := &schedule.Schedule{CycleTime: 6, Phases: []schedule.PhaseTiming{
		{Name: "b", Rise: 6, Fall: 6},
		{Name: "a", Rise: 3, Fall: 6},
		{Name: "x", Rise: 0, Fall: 2},
		{Name: "y", Rise: 0, Fall: 2},
	}}
	assert.Equal(t, []string{"x", "y", "a", "b"}, s.PhaseOrder())
	assert.Equal(t, "b", s.Phases[0].Name, "phases are not reordered in place")
	assert.Empty(t, (&schedule.Schedule{}).PhaseOrder())
}

func ExampleSchedule_String() {
	s := &schedule.Schedule{CycleTime: 5, Phases: []schedule.PhaseTiming{{Name: "clk", Rise: 0, Fall: 2.5}}}
	fmt.Println(s)
	// Output: c=5 clk[0,2.5]
}
