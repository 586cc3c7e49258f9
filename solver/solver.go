package solver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/katalvlaran/clocksched/clockgraph"
)

// Strategy names a Solver implementation.
type Strategy string

const (
	StrategyExterior  Strategy = "exterior"
	StrategyBisection Strategy = "bisection"
)

// ErrUnknownStrategy is returned by New for an unrecognized strategy.
var ErrUnknownStrategy = errors.New("solver: unknown strategy")

// Result is a solved period with the clock graph potentials at that period.
type Result struct {
	CycleTime float64
	Positions []float64 // indexed by clockgraph.NodeID, Zero at 0
}

// Solver finds the smallest period >= lower at which a clock graph is feasible.
type Solver interface {
	Solve(g *clockgraph.Graph, lower float64) (*Result, error)
}

// Options configures both strategies.
type Options struct {
	Epsilon      float64 // feasibility slack
	Width        float64 // bisection bracket width
	MaxDoublings int     // bisection doubling cap
	MaxRestarts  int     // exterior Floyd-Warshall restart cap
	Logger       *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns Epsilon 1e-9, Width 1e-4, 64 doublings, 1000 restarts.
func DefaultOptions() Options {
	return Options{
		Epsilon:      1e-9,
		Width:        1e-4,
		MaxDoublings: 64,
		MaxRestarts:  1000,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithEpsilon sets the feasibility slack.
func WithEpsilon(eps float64) Option { return func(o *Options) { o.Epsilon = eps } }

// WithWidth sets the bisection bracket width.
func WithWidth(w float64) Option { return func(o *Options) { o.Width = w } }

// WithMaxDoublings caps the doubling phase of bisection.
func WithMaxDoublings(n int) Option { return func(o *Options) { o.MaxDoublings = n } }

// WithMaxRestarts caps exterior restarts.
func WithMaxRestarts(n int) Option { return func(o *Options) { o.MaxRestarts = n } }

// WithLogger routes diagnostics to l. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func build(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// New returns the solver for strategy.
func New(strategy Strategy, opts ...Option) (Solver, error) {
	switch strategy {
	case StrategyExterior, "":
		return NewExterior(opts...), nil
	case StrategyBisection:
		return NewBisection(opts...), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// CrossCheck solves g with both strategies and returns the exterior result.
// It panics when the strategies disagree on feasibility or on the period by
// more than Width + Epsilon: either outcome is a solver defect.
func CrossCheck(g *clockgraph.Graph, lower float64, opts ...Option) (*Result, error) {
	o := build(opts)
	ext, errE := NewExterior(opts...).Solve(g, lower)
	bis, errB := NewBisection(opts...).Solve(g, lower)
	switch {
	case errE != nil && errB != nil:
		return nil, errE
	case errE != nil || errB != nil:
		panic(fmt.Sprintf("solver: strategies disagree on feasibility: exterior %v, bisection %v", errE, errB))
	}
	if d := math.Abs(ext.CycleTime - bis.CycleTime); d > o.Width+o.Epsilon {
		panic(fmt.Sprintf("solver: exterior %g and bisection %g differ by %g", ext.CycleTime, bis.CycleTime, d))
	}
	o.Logger.With("component", "solver").Debug("cross-check passed", "exterior", ext.CycleTime, "bisection", bis.CycleTime)

	return ext, nil
}

// settle reads positions at c. A period computed in floating point may sit a
// hair below the true root, so a few small bumps are tried before giving up.
func settle(g *clockgraph.Graph, c, eps float64) *Result {
	for _, bump := range []float64{0, 1, 10, 100, 1000} {
		cc := c + bump*eps
		if pos, ok := g.Feasible(cc, eps); ok {
			return &Result{CycleTime: cc, Positions: pos}
		}
	}
	panic(fmt.Sprintf("solver: solved period %g is not feasible", c))
}
