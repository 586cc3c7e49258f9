package verify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/schedule"
)

// Sentinel errors. Every check failure matches ErrVerification.
var (
	ErrVerification   = errors.New("verify: clocking verification failed")
	ErrSetupViolation = fmt.Errorf("%w: setup violation", ErrVerification)
	ErrHoldViolation  = fmt.Errorf("%w: hold violation", ErrVerification)
	ErrNotConverged   = fmt.Errorf("%w: arrival times did not converge", ErrVerification)

	// ErrInvalidSchedule rejects schedules that cannot be checked at all.
	ErrInvalidSchedule = errors.New("verify: invalid schedule")
)

// Hop is one step of a reconstructed violation path. Edge is the latch graph
// edge entering Vertex, or -1 at the launching vertex. Each hop carries the
// arrival and departure of the round the path passed through it; Arrival is
// -Inf when the launching vertex had none yet.
type Hop struct {
	Vertex    latchgraph.VertexID
	Name      string
	Edge      int
	Departure float64
	Arrival   float64
}

// Failure describes a failed check. It unwraps to Reason.
type Failure struct {
	Reason   error
	Latch    latchgraph.VertexID
	Name     string
	Round    int
	Arrival  float64
	Required float64
	Path     []Hop // launch first; setup violations only
}

func (f *Failure) Error() string {
	if errors.Is(f.Reason, ErrNotConverged) {
		return fmt.Sprintf("%v after %d rounds (last change at %q)", f.Reason, f.Round, f.Name)
	}

	return fmt.Sprintf("%v at %q (round %d): arrival %g, required %g", f.Reason, f.Name, f.Round, f.Arrival, f.Required)
}

// Unwrap returns Reason.
func (f *Failure) Unwrap() error { return f.Reason }

// Options configures Check.
type Options struct {
	Tolerance float64
	Logger    *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns Tolerance 1e-6 and a discarding logger.
func DefaultOptions() Options {
	return Options{Tolerance: 1e-6, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithTolerance sets the comparison slack.
func WithTolerance(tol float64) Option { return func(o *Options) { o.Tolerance = tol } }

// WithLogger routes diagnostics to l. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// checker holds the state of one Check call.
type checker struct {
	g   *latchgraph.Graph
	c   float64
	tol float64
	log *slog.Logger

	open, close []float64 // event times
	launch      []float64 // latest departure at the open event
	depMax      []float64
	depMin      []float64
	arrMax      []float64
	arrMin      []float64
	setupReq    []float64
	holdReq     []float64
	pred        []int // edge giving arrMax
	level       []bool
	hist        [][]stamp
}

// stamp records a latest arrival and its edge from round on.
type stamp struct {
	round int
	arr   float64
	pred  int
}

// Check verifies schedule s against g and returns nil on success.
//
// Steps:
//  1. Validate the schedule and place every open/close event.
//  2. Round 0: earliest arrivals against hold requirements.
//  3. Every round: departures (flip-flops at open, transparent latches at
//     max(open, arrival)), then latest arrivals against setup requirements.
//  4. Pass on the first round after 0 without change; |E|+1 rounds without
//     settling fail with ErrNotConverged.
//
// Setup failures carry the path that produced the violating arrival.
func Check(g *latchgraph.Graph, s *schedule.Schedule, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	k, err := newChecker(g, s, o)
	if err != nil {
		return err
	}

	// 2. Hold.
	if f := k.checkHold(); f != nil {
		return f
	}

	// 3. Fixed point.
	last := latchgraph.Host
	for round := 0; round <= len(g.Edges); round++ {
		k.depart()
		changed, v := k.arrive(round)
		if changed {
			last = v
		}
		if f := k.checkSetup(round); f != nil {
			return f
		}
		if round > 0 && !changed {
			k.log.Debug("pass", "rounds", round+1, "cycle", k.c)
			return nil
		}
	}

	return &Failure{Reason: ErrNotConverged, Latch: last, Name: g.Vertices[last].Name, Round: len(g.Edges) + 1}
}

func newChecker(g *latchgraph.Graph, s *schedule.Schedule, o Options) (*checker, error) {
	c, tol := s.CycleTime, o.Tolerance
	if !(c > 0) || math.IsInf(c, 0) {
		return nil, fmt.Errorf("%w: cycle time %g", ErrInvalidSchedule, c)
	}
	rise, fall, err := s.Align(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	for _, ph := range g.Phases {
		r, f := rise[ph.Index], fall[ph.Index]
		if r < -tol || f > c+tol || r > f+tol {
			return nil, fmt.Errorf("%w: phase %q rise %g fall %g outside [0, %g]", ErrInvalidSchedule, ph.Clock.Name, r, f, c)
		}
	}

	n := len(g.Vertices)
	k := &checker{
		g:        g,
		c:        c,
		tol:      tol,
		log:      o.Logger.With("component", "verify"),
		open:     make([]float64, n),
		close:    make([]float64, n),
		launch:   make([]float64, n),
		depMax:   make([]float64, n),
		depMin:   make([]float64, n),
		arrMax:   make([]float64, n),
		arrMin:   make([]float64, n),
		setupReq: make([]float64, n),
		holdReq:  make([]float64, n),
		pred:     make([]int, n),
		level:    make([]bool, n),
		hist:     make([][]stamp, n),
	}

	// 1. Event placement.
	for i := range g.Vertices {
		v := &g.Vertices[i]
		k.pred[i] = -1
		k.arrMax[i] = math.Inf(-1)
		if v.IsHost() {
			continue
		}
		oe, ce := v.Open(), v.Close()
		k.open[i] = oe.Time(c, rise, fall)
		k.close[i] = ce.Time(c, rise, fall)
		oMin, oMax := v.SkewOf(oe)
		cMin, cMax := v.SkewOf(ce)
		k.launch[i] = k.open[i] + oMax
		k.depMin[i] = k.open[i] + oMin
		k.setupReq[i] = k.close[i] + cMin - v.Setup
		k.holdReq[i] = k.close[i] + cMax - c + v.Hold
		k.level[i] = v.Kind.IsLevelSensitive()
	}

	return k, nil
}

// checkHold compares earliest arrivals, launched at the earliest open, against hold.
func (k *checker) checkHold() *Failure {
	for i := 1; i < len(k.g.Vertices); i++ {
		v := &k.g.Vertices[i]
		if len(v.In) == 0 {
			continue
		}
		a := math.Inf(1)
		for _, ei := range v.In {
			e := &k.g.Edges[ei]
			a = math.Min(a, k.depMin[e.From]+e.DelayMin-float64(e.K)*k.c)
		}
		k.arrMin[i] = a
		if a+k.tol < k.holdReq[i] {
			return &Failure{Reason: ErrHoldViolation, Latch: v.ID, Name: v.Name, Arrival: a, Required: k.holdReq[i]}
		}
	}

	return nil
}

func (k *checker) depart() {
	for i := 1; i < len(k.g.Vertices); i++ {
		k.depMax[i] = k.launch[i]
		if k.level[i] && k.arrMax[i] > k.launch[i] {
			k.depMax[i] = k.arrMax[i]
		}
	}
}

// arrive recomputes latest arrivals and reports whether any moved by more
// than the tolerance, with the last vertex that did.
func (k *checker) arrive(round int) (bool, latchgraph.VertexID) {
	changed, last := false, latchgraph.Host
	for i := 1; i < len(k.g.Vertices); i++ {
		a, p := math.Inf(-1), -1
		for _, ei := range k.g.Vertices[i].In {
			e := &k.g.Edges[ei]
			if cand := k.depMax[e.From] + e.DelayMax - float64(e.K)*k.c; cand > a {
				a, p = cand, ei
			}
		}
		if p < 0 {
			continue
		}
		if math.IsInf(k.arrMax[i], -1) || math.Abs(a-k.arrMax[i]) > k.tol {
			changed, last = true, latchgraph.VertexID(i)
		}
		if a != k.arrMax[i] || p != k.pred[i] {
			k.hist[i] = append(k.hist[i], stamp{round: round, arr: a, pred: p})
		}
		k.arrMax[i], k.pred[i] = a, p
	}

	return changed, last
}

func (k *checker) checkSetup(round int) *Failure {
	for i := 1; i < len(k.g.Vertices); i++ {
		if k.pred[i] < 0 || k.arrMax[i] <= k.setupReq[i]+k.tol {
			continue
		}
		v := &k.g.Vertices[i]
		f := &Failure{
			Reason:   ErrSetupViolation,
			Latch:    v.ID,
			Name:     v.Name,
			Round:    round,
			Arrival:  k.arrMax[i],
			Required: k.setupReq[i],
			Path:     k.trace(v.ID, round),
		}
		k.log.Info("setup violation", "latch", v.Name, "round", round, "arrival", f.Arrival, "required", f.Required)
		for _, h := range f.Path {
			k.log.Info("path", "latch", h.Name, "edge", h.Edge, "departure", h.Departure, "arrival", h.Arrival)
		}
		return f
	}

	return nil
}

// arrival returns the latest arrival at v as of round r.
func (k *checker) arrival(v latchgraph.VertexID, r int) (stamp, bool) {
	h := k.hist[v]
	i := sort.Search(len(h), func(i int) bool { return h[i].round > r }) - 1
	if i < 0 {
		return stamp{arr: math.Inf(-1), pred: -1}, false
	}

	return h[i], true
}

// departure returns the latest departure of v used in round r, and whether
// v departed at its own open event.
func (k *checker) departure(v latchgraph.VertexID, r int) (float64, bool) {
	if k.level[v] && r > 0 {
		if s, ok := k.arrival(v, r-1); ok && s.arr > k.launch[v] {
			return s.arr, false
		}
	}

	return k.launch[v], true
}

// trace rebuilds the path behind the arrival at v in round r. A latch that
// passed data through departed on its arrival of the round before, so each
// such step back also steps back one round. The walk stops at a vertex that
// departed at its own open event: Host, a flip-flop, or a latch whose data
// arrived before it opened.
func (k *checker) trace(v latchgraph.VertexID, r int) []Hop {
	end, _ := k.arrival(v, r)
	dep, _ := k.departure(v, r+1)
	path := []Hop{{Vertex: v, Name: k.g.Vertices[v].Name, Edge: end.pred, Departure: dep, Arrival: end.arr}}
	cur := end
	for steps := 0; steps < len(k.g.Vertices) && cur.pred >= 0; steps++ {
		u := k.g.Edges[cur.pred].From
		dep, launched := k.departure(u, r)
		prev, _ := k.arrival(u, r-1)
		h := Hop{Vertex: u, Name: k.g.Vertices[u].Name, Edge: prev.pred, Departure: dep, Arrival: prev.arr}
		if launched {
			h.Edge = -1
			path = append(path, h)
			break
		}
		path = append(path, h)
		cur, r = prev, r-1
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
