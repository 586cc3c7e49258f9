package clockgraph_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/netlist/netlisttest"
)

const eps = 1e-9

var (
	r1 = clockgraph.RiseNode(1)
	f1 = clockgraph.FallNode(1)
	r2 = clockgraph.RiseNode(2)
	f2 = clockgraph.FallNode(2)
)

func latches(t *testing.T, nl *netlist.Netlist) *latchgraph.Graph {
	t.Helper()
	lg, err := latchgraph.Build(nl, netlist.DelayLibrary)
	require.NoError(t, err)

	return lg
}

func longPath(t *testing.T, g *clockgraph.Graph, a, b clockgraph.NodeID) map[int]float64 {
	t.Helper()
	e, ok := g.Edge(a, b)
	require.True(t, ok, "edge %d->%d", a, b)

	return e.LongPath()
}

func TestNodeNumbering(t *testing.T) {
	assert.Equal(t, clockgraph.NodeID(1), r1)
	assert.Equal(t, clockgraph.NodeID(2), f1)
	assert.Equal(t, clockgraph.NodeID(3), r2)
	assert.Equal(t, clockgraph.NodeID(4), f2)
	assert.Equal(t, 5, clockgraph.New(2).NumNodes())
}

func TestBuild_Ring(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.Ring()), 4.5)
	require.NoError(t, err)
	require.Equal(t, 1, g.NumPhases())

	if diff := cmp.Diff(map[int]float64{1: 5}, longPath(t, g, r1, r1)); diff != "" {
		t.Fatalf("long path (-want +got):\n%s", diff)
	}
	self, _ := g.Edge(r1, r1)
	hold, ok := self.ShortPath(0)
	require.True(t, ok)
	assert.Equal(t, 2.0, hold)
	_, ok = self.ShortPath(1)
	assert.False(t, ok)

	w, coef, ok := self.Eval(5)
	require.True(t, ok)
	assert.Equal(t, 0.0, w)
	assert.Equal(t, 1.0, coef)

	pos, ok := g.Feasible(5, eps)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 5, 5}, pos)

	_, ok = g.Feasible(4.9, eps)
	assert.False(t, ok)
}

func TestBuild_Pipeline(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.Pipeline()), 4)
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{0: 2}, longPath(t, g, r1, clockgraph.Zero))
	assert.Equal(t, map[int]float64{1: 6}, longPath(t, g, r1, r1))

	host, ok := g.Edge(clockgraph.Zero, r1)
	require.True(t, ok)
	v, ok := host.ShortPath(1)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = g.Feasible(5.5, eps)
	assert.False(t, ok)
	pos, ok := g.Feasible(6, eps)
	require.True(t, ok)
	assert.GreaterOrEqual(t, pos[r1], 2.0)
	assert.Equal(t, 6.0, pos[f1])
}

func TestBuild_TwoPhaseTransparency(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.TwoPhase()), 7)
	require.NoError(t, err)

	want := map[[2]clockgraph.NodeID]map[int]float64{
		{f2, r1}: {0: 3},
		{f1, r1}: {1: 7},
		{f1, r2}: {1: 4},
		{f2, r2}: {1: 7},
	}
	for k, lp := range want {
		assert.Equal(t, lp, longPath(t, g, k[0], k[1]), "%d->%d", k[0], k[1])
	}

	pos, ok := g.Feasible(7, eps)
	require.True(t, ok)
	assert.Equal(t, 7.0, pos[f2])
	assert.LessOrEqual(t, pos[f1], pos[f2])
	assert.LessOrEqual(t, pos[r1], pos[r2])
}

func TestBuild_SeedBelowCycleRatio(t *testing.T) {
	_, err := clockgraph.Build(latches(t, netlisttest.TwoPhase()), 6)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)
}

func TestBuild_Separation(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.Ring()), 5, clockgraph.WithSeparation(0.5, 0.5))
	require.NoError(t, err)

	pos, ok := g.Feasible(5, eps)
	require.True(t, ok)
	assert.InDelta(t, 2.5, pos[f1]-pos[r1], 1e-12)
}

func TestBuild_PhaseInverted(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.TwoPhase()), 7, clockgraph.WithPhaseInverted(true))
	require.NoError(t, err)

	pos, ok := g.Feasible(8, eps)
	require.True(t, ok)
	assert.Equal(t, 0.0, pos[r1])
	assert.Equal(t, pos[f1], pos[r2])

	var buf bytes.Buffer
	_, err = clockgraph.Build(latches(t, netlisttest.Ring()), 5,
		clockgraph.WithPhaseInverted(true),
		clockgraph.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "inverted phases need exactly two phases")
}

func TestEdge_EvalPieces(t *testing.T) {
	g := clockgraph.New(1)
	g.AddFixed(r1, f1, 5)
	g.AddShortPath(r1, f1, 1, 0)
	g.AddLongPath(r1, f1, 2, 1)
	g.AddLongPath(r1, f1, 2, 4) // larger value wins per count
	g.AddDuty(f1, r1, 0.5)
	g.AddDuty(f1, r1, 0.25)

	e, ok := g.Edge(r1, f1)
	require.True(t, ok)
	assert.False(t, e.Inert())

	// 5 (fixed) ties with 0+5 (short), smaller coefficient wins; long: -4+10 = 6
	w, coef, ok := e.Eval(5)
	require.True(t, ok)
	assert.Equal(t, 5.0, w)
	assert.Equal(t, 0.0, coef)

	// at c=1: fixed 5, short 1, long -2 -> long
	w, coef, _ = e.Eval(1)
	assert.Equal(t, -2.0, w)
	assert.Equal(t, 2.0, coef)

	d, ok := g.Edge(f1, r1)
	require.True(t, ok)
	duty, _ := d.Duty()
	assert.Equal(t, 0.25, duty)

	ws := g.Evaluate(4)
	require.Len(t, ws, 2)
	assert.Equal(t, clockgraph.Weighted{From: f1, To: r1, Weight: 1, Coef: 0.25}, ws[1])
}

func TestBuild_LowLoop(t *testing.T) {
	g, err := clockgraph.Build(latches(t, netlisttest.LowLoop()), 2)
	require.NoError(t, err)
	require.Equal(t, 2, g.NumPhases())

	// l1 opens at f2 of the previous cycle and launches into l0, closing at f1.
	e, ok := g.Edge(f2, f1)
	require.True(t, ok)
	hold, ok := e.ShortPath(-1)
	require.True(t, ok)
	assert.Equal(t, 1.0, hold)
	_, ok = e.ShortPath(0)
	assert.False(t, ok)

	pos, ok := g.Feasible(2, eps)
	require.True(t, ok)
	assert.Equal(t, 2.0, pos[f2])
	assert.LessOrEqual(t, pos[f1], 1.0+eps)
	assert.True(t, g.Unbounded(eps))
}

func TestEdge_Asymptote(t *testing.T) {
	g := clockgraph.New(1)
	g.AddFixed(r1, f1, -3)
	g.AddLongPath(r1, f1, 1, 4)
	g.AddShortPath(r1, f1, -1, 9)

	e, _ := g.Edge(r1, f1)
	w0, coef, ok := e.Asymptote()
	require.True(t, ok)
	assert.Equal(t, 9.0, w0)
	assert.Equal(t, -1.0, coef)

	w, coef, _ := e.Eval(4)
	assert.Equal(t, -3.0, w)
	assert.Equal(t, 0.0, coef)

	_, _, ok = (&clockgraph.Edge{}).Asymptote()
	assert.False(t, ok)
}

func TestUnbounded(t *testing.T) {
	loop := func(add func(g *clockgraph.Graph)) *clockgraph.Graph {
		g := clockgraph.New(1)
		g.AddFixed(clockgraph.Zero, r1, 0)
		g.AddFixed(r1, clockgraph.Zero, 0)
		add(g)
		return g
	}
	cases := []struct {
		name string
		g    *clockgraph.Graph
		want bool
	}{
		{"no cycle", loop(func(*clockgraph.Graph) {}), true},
		{"hold self loop", loop(func(g *clockgraph.Graph) { g.AddShortPath(r1, r1, 0, -0.5) }), false},
		{"long self loop", loop(func(g *clockgraph.Graph) { g.AddLongPath(r1, r1, 1, 5) }), true},
		{"hold beats long", loop(func(g *clockgraph.Graph) {
			g.AddLongPath(r1, r1, 1, 5)
			g.AddShortPath(r1, r1, 0, -0.5)
		}), false},
		{"shrinking with c", loop(func(g *clockgraph.Graph) {
			g.AddShortPath(r1, f1, -1, 10)
			g.AddFixed(f1, r1, 0)
		}), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.g.Unbounded(eps), tc.name)
	}

	g, err := clockgraph.Build(latches(t, netlisttest.Ring()), 4.5)
	require.NoError(t, err)
	assert.True(t, g.Unbounded(eps))
}

func TestGraph_ShortPathRange(t *testing.T) {
	g := clockgraph.New(1)
	assert.NotPanics(t, func() { g.AddShortPath(r1, f1, -1, 2) })
	e, ok := g.Edge(r1, f1)
	require.True(t, ok)
	assert.False(t, e.Inert())
	w, coef, _ := e.Eval(5)
	assert.Equal(t, -3.0, w)
	assert.Equal(t, -1.0, coef)
	_, ok = e.ShortPath(2)
	assert.False(t, ok)
	assert.Panics(t, func() { g.AddShortPath(r1, f1, -2, 0) })
}

func TestGraph_Panics(t *testing.T) {
	g := clockgraph.New(1)
	assert.Panics(t, func() { g.AddShortPath(r1, f1, 2, 0) })
	assert.Panics(t, func() { g.AddFixed(r1, r2, 0) })
	_, ok := g.Edge(r1, f1)
	assert.False(t, ok)
}
