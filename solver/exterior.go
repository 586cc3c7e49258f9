// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"math"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/latchgraph"
)

// Exterior solves a clock graph with a parametric Floyd-Warshall.
type Exterior struct {
	opts Options
}

// NewExterior returns the exterior-path strategy.
func NewExterior(opts ...Option) *Exterior { return &Exterior{opts: build(opts)} }

// Solve implements Solver.
//
// Every cell of the all-pairs matrix is an affine function of c. With lo the
// current trial period:
//
//  1. A cycle of negative weight w < 0 and coefficient a > 0 vanishes at
//     lo - w/a: lo moves there and the closure restarts.
//  2. A negative cycle with a <= 0 never vanishes: infeasible.
//  3. Without negative cycles, every cycle with a < 0 caps the period at
//     lo + w/(-a); lo above that cap is infeasible, otherwise lo is the answer.
func (x *Exterior) Solve(g *clockgraph.Graph, lower float64) (*Result, error) {
	log := x.opts.Logger.With("component", "solver", "strategy", StrategyExterior)
	eps := x.opts.Epsilon
	lo, hi := lower, math.Inf(1)

	for restart := 0; restart <= x.opts.MaxRestarts; restart++ {
		m := newAffine(g.NumNodes(), g.Evaluate(lo))
		if i, neg := m.closure(eps); neg {
			w, a := m.diag(i)
			if a <= eps {
				return nil, fmt.Errorf("%w: cycle through node %d stays negative (%g) as the period grows", latchgraph.ErrInfeasible, i, w)
			}
			lo -= w / a
			log.Debug("restart", "node", i, "lo", lo)
			continue
		}

		for i := 0; i < m.n; i++ {
			if w, a := m.diag(i); a < -eps {
				hi = math.Min(hi, lo+w/(-a))
			}
		}
		if lo > hi+eps {
			return nil, fmt.Errorf("%w: lower bound %g above upper bound %g", latchgraph.ErrInfeasible, lo, hi)
		}
		res := settle(g, lo, eps)
		log.Debug("solved", "cycle", res.CycleTime, "restarts", restart, "hi", hi)

		return res, nil
	}

	return nil, fmt.Errorf("%w: no convergence after %d restarts", latchgraph.ErrInfeasible, x.opts.MaxRestarts)
}
