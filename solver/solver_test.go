package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/netlist/netlisttest"
	"github.com/katalvlaran/clocksched/solver"
)

func TestBisect(t *testing.T) {
	atLeast := func(x float64) solver.Oracle { return func(c float64) bool { return c >= x } }
	opts := solver.BisectOptions{Width: 1e-3, MaxDoublings: 10}

	br, err := solver.Bisect(1, atLeast(3.3), opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, br.Hi, 3.3)
	assert.Less(t, br.Lo, 3.3)
	assert.Less(t, br.Hi-br.Lo, 1e-3)

	br, err = solver.Bisect(4, atLeast(3.3), opts)
	require.NoError(t, err)
	assert.Equal(t, solver.Bracket{Lo: 4, Hi: 4}, br)

	br, err = solver.Bisect(0, atLeast(0.25), opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, br.Hi, 1e-3)

	_, err = solver.Bisect(1, atLeast(1e9), opts)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)
}

// SolveSuite runs both strategies on the reference circuits.
type SolveSuite struct {
	suite.Suite
}

func (s *SolveSuite) clockGraph(nl *netlist.Netlist) (*clockgraph.Graph, float64) {
	lg, err := latchgraph.Build(nl, netlist.DelayLibrary)
	s.Require().NoError(err)
	br, err := solver.Bisect(latchgraph.LowerBound(lg), func(c float64) bool {
		return latchgraph.TestPeriod(lg, c, 1e-9)
	}, solver.BisectOptions{Width: 1e-4, MaxDoublings: 64})
	s.Require().NoError(err)
	g, err := clockgraph.Build(lg, br.Hi)
	s.Require().NoError(err)

	return g, br.Hi
}

func (s *SolveSuite) TestRing() {
	g, seed := s.clockGraph(netlisttest.Ring())
	s.Equal(4.5, seed)

	ext, err := solver.NewExterior().Solve(g, seed)
	s.Require().NoError(err)
	s.Equal(5.0, ext.CycleTime)
	s.Equal([]float64{0, 5, 5}, ext.Positions)

	bis, err := solver.NewBisection().Solve(g, seed)
	s.Require().NoError(err)
	s.GreaterOrEqual(bis.CycleTime, 5.0-1e-9)
	s.Less(bis.CycleTime, 5.0+1e-4)
}

func (s *SolveSuite) TestPipeline() {
	g, seed := s.clockGraph(netlisttest.Pipeline())
	s.Equal(4.0, seed)

	res, err := solver.CrossCheck(g, seed)
	s.Require().NoError(err)
	s.Equal(6.0, res.CycleTime)
}

func (s *SolveSuite) TestTwoPhase() {
	g, seed := s.clockGraph(netlisttest.TwoPhase())
	s.Equal(7.0, seed)

	for _, strategy := range []solver.Strategy{solver.StrategyExterior, solver.StrategyBisection} {
		sv, err := solver.New(strategy)
		s.Require().NoError(err)
		res, err := sv.Solve(g, seed)
		s.Require().NoError(err, string(strategy))
		s.InDelta(7.0, res.CycleTime, 1e-9, string(strategy))
	}
}

func TestSolveSuite(t *testing.T) {
	suite.Run(t, new(SolveSuite))
}

func TestInfeasibleCycle(t *testing.T) {
	r1, f1 := clockgraph.RiseNode(1), clockgraph.FallNode(1)
	g := clockgraph.New(1)
	g.AddFixed(clockgraph.Zero, r1, 0)
	g.AddFixed(r1, f1, -1)
	g.AddFixed(f1, r1, 0)

	_, err := solver.NewExterior().Solve(g, 1)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)

	_, err = solver.NewBisection(solver.WithMaxDoublings(8)).Solve(g, 1)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)

	_, err = solver.CrossCheck(g, 1, solver.WithMaxDoublings(8))
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)
}

func TestInfeasibleAtEveryPeriod(t *testing.T) {
	// A hold requirement no period can meet: r1 - r1 <= -0.5.
	r1, f1 := clockgraph.RiseNode(1), clockgraph.FallNode(1)
	g := clockgraph.New(1)
	g.AddFixed(r1, clockgraph.Zero, 0)
	g.AddFixed(f1, r1, 0)
	g.AddDuty(clockgraph.Zero, f1, 1)
	g.AddDuty(f1, clockgraph.Zero, -1)
	g.AddLongPath(r1, r1, 1, 1)
	g.AddShortPath(r1, r1, 0, -0.5)

	_, err := solver.NewExterior().Solve(g, 0.5)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)

	_, err = solver.NewBisection().Solve(g, 0.5)
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)

	assert.NotPanics(t, func() {
		_, err = solver.CrossCheck(g, 0.5)
	})
	assert.ErrorIs(t, err, latchgraph.ErrInfeasible)
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := solver.New("simplex")
	assert.ErrorIs(t, err, solver.ErrUnknownStrategy)

	sv, err := solver.New("")
	require.NoError(t, err)
	assert.IsType(t, &solver.Exterior{}, sv)
}

func TestClosure(t *testing.T) {
	ws := []clockgraph.Weighted{
		{From: 0, To: 1, Weight: 2, Coef: 0},
		{From: 1, To: 2, Weight: -1, Coef: 1},
		{From: 2, To: 0, Weight: -3, Coef: 0},
	}
	i, neg := solver.Closure(3, ws, 1e-9)
	assert.True(t, neg)
	assert.GreaterOrEqual(t, i, 0)

	ws[2].Weight = -1
	_, neg = solver.Closure(3, ws, 1e-9)
	assert.False(t, neg)

	bad := []clockgraph.Weighted{
		{From: 0, To: 1, Weight: 1, Coef: math.Inf(1)},
		{From: 1, To: 2, Weight: 1, Coef: 0},
	}
	assert.Panics(t, func() { solver.Closure(3, bad, 1e-9) })
}
