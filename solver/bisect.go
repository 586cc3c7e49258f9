package solver

import (
	"fmt"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/latchgraph"
)

// Oracle reports whether period c is feasible. It must be monotone in c.
type Oracle func(c float64) bool

// Bracket encloses the smallest feasible period: Lo is infeasible (or the
// starting bound), Hi is feasible.
type Bracket struct {
	Lo, Hi float64
}

// BisectOptions bounds the search.
type BisectOptions struct {
	Width        float64
	MaxDoublings int
}

// Bisect doubles from lower until oracle succeeds, then halves the bracket
// until it is narrower than Width. A feasible lower returns {lower, lower}.
// A lower <= 0 starts the doubling from 1 with Lo = 0.
func Bisect(lower float64, oracle Oracle, opts BisectOptions) (Bracket, error) {
	lo, hi := lower, 2*lower
	if lower <= 0 {
		lo, hi = 0, 1
	} else if oracle(lower) {
		return Bracket{Lo: lower, Hi: lower}, nil
	}

	// 1. Doubling.
	for d := 0; !oracle(hi); d++ {
		if d >= opts.MaxDoublings {
			return Bracket{Lo: lo, Hi: hi}, fmt.Errorf("%w: no feasible period up to %g", latchgraph.ErrInfeasible, hi)
		}
		lo, hi = hi, 2*hi
	}

	// 2. Halving.
	for hi-lo >= opts.Width {
		mid := lo + (hi-lo)/2
		if mid == lo || mid == hi {
			break
		}
		if oracle(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	return Bracket{Lo: lo, Hi: hi}, nil
}

// Bisection solves a clock graph by bisecting on Feasible. It assumes
// feasibility is monotone in c; a graph infeasible at lower whose large
// periods are infeasible too is rejected up front through Unbounded.
type Bisection struct {
	opts Options
}

// NewBisection returns the bisection strategy.
func NewBisection(opts ...Option) *Bisection { return &Bisection{opts: build(opts)} }

// Solve implements Solver.
func (b *Bisection) Solve(g *clockgraph.Graph, lower float64) (*Result, error) {
	log := b.opts.Logger.With("component", "solver", "strategy", StrategyBisection)
	// Doubling past a period-independent negative cycle ends in rounding noise.
	if _, ok := g.Feasible(lower, b.opts.Epsilon); !ok && !g.Unbounded(b.opts.Epsilon) {
		return nil, fmt.Errorf("%w: infeasible at %g and at every large period", latchgraph.ErrInfeasible, lower)
	}
	probes := 0
	br, err := Bisect(lower, func(c float64) bool {
		probes++
		_, ok := g.Feasible(c, b.opts.Epsilon)
		return ok
	}, BisectOptions{Width: b.opts.Width, MaxDoublings: b.opts.MaxDoublings})
	if err != nil {
		return nil, err
	}
	res := settle(g, br.Hi, b.opts.Epsilon)
	log.Debug("solved", "cycle", res.CycleTime, "lo", br.Lo, "probes", probes)

	return res, nil
}
