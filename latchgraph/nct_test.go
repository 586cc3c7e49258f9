package latchgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/netlist/netlisttest"
)

const eps = 1e-9

func graphs(t *testing.T) map[string]*latchgraph.Graph {
	t.Helper()
	out := make(map[string]*latchgraph.Graph)
	for name, nl := range map[string]*netlist.Netlist{
		"ring":      netlisttest.Ring(),
		"two-phase": netlisttest.TwoPhase(),
		"pipeline":  netlisttest.Pipeline(),
	} {
		g, err := latchgraph.Build(nl, netlist.DelayLibrary)
		require.NoError(t, err, name)
		out[name] = g
	}

	return out
}

func TestLowerBound(t *testing.T) {
	gs := graphs(t)
	// the ring cycle carries 9 units of delay over two crossings
	assert.Equal(t, 4.5, latchgraph.LowerBound(gs["ring"]))
	assert.Equal(t, 7.0, latchgraph.LowerBound(gs["two-phase"]))
	// no cycle: Host path of 8 over one crossing
	assert.Equal(t, 4.0, latchgraph.LowerBound(gs["pipeline"]))
}

func TestLowerBound_Empty(t *testing.T) {
	g := &latchgraph.Graph{Vertices: []latchgraph.Vertex{{ID: latchgraph.Host}}}
	assert.Equal(t, 0.0, latchgraph.LowerBound(g))
}

func TestTestPeriod_LowerBoundIsValid(t *testing.T) {
	for name, g := range graphs(t) {
		lb := latchgraph.LowerBound(g)
		assert.False(t, latchgraph.TestPeriod(g, lb-0.01, eps), name)
		assert.False(t, latchgraph.TestPeriodQueued(g, lb-0.01, eps), name)
		assert.True(t, latchgraph.TestPeriod(g, lb, eps), name)
		assert.True(t, latchgraph.TestPeriodQueued(g, lb, eps), name)
	}
}

func TestTestPeriod_Monotonic(t *testing.T) {
	for name, g := range graphs(t) {
		seen := false
		for c := 0.25; c <= 20; c += 0.25 {
			ok := latchgraph.TestPeriod(g, c, eps)
			assert.Equal(t, ok, latchgraph.TestPeriodQueued(g, c, eps), "%s at %g", name, c)
			if seen {
				assert.True(t, ok, "%s feasible below %g but not at it", name, c)
			}
			seen = seen || ok
		}
		assert.True(t, seen, name)
	}
}

func TestTestPeriod_SetupAndSkew(t *testing.T) {
	nl, err := netlist.NewBuilder().
		Input("clk").
		Gate("g1", netlist.NonInverting, []string{"l1"}, netlist.Uniform(5, 3)).
		Gate("g2", netlist.NonInverting, []string{"l2"}, netlist.Uniform(4, 2)).
		Latch("l1", netlist.RisingEdgeFF, "g2", "clk").
		Latch("l2", netlist.RisingEdgeFF, "g1", "clk").
		Clock("clk", unset(), netlist.Skew{RiseMin: -0.5, RiseMax: 0.5}).
		Build()
	require.NoError(t, err)

	g, err := latchgraph.Build(nl, netlist.DelayLibrary, latchgraph.WithSetup(1))
	require.NoError(t, err)
	// departures start 0.5 late and must arrive 1.5 before the nominal edge
	assert.False(t, latchgraph.TestPeriod(g, 3.4, eps))
	assert.True(t, latchgraph.TestPeriod(g, 4.5, eps))
}
