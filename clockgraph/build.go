package clockgraph

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/katalvlaran/clocksched/latchgraph"
)

// Options configures Build.
type Options struct {
	MinSep        float64 // minimum (fall - rise) / c per phase
	MaxSep        float64 // maximum (fall - rise) / c per phase
	PhaseInverted bool    // two-phase clocks with r2 = f1 and r1 = 0
	Epsilon       float64 // domination slack of the long-path extraction
	Logger        *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns MinSep 0, MaxSep 1, Epsilon 1e-9 and a discarding logger.
func DefaultOptions() Options {
	return Options{
		MaxSep:  1,
		Epsilon: 1e-9,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSeparation bounds the duty cycle of every phase.
func WithSeparation(min, max float64) Option {
	return func(o *Options) { o.MinSep, o.MaxSep = min, max }
}

// WithPhaseInverted ties a two-phase clock to its inverse.
func WithPhaseInverted(on bool) Option { return func(o *Options) { o.PhaseInverted = on } }

// WithEpsilon sets the domination slack.
func WithEpsilon(eps float64) Option { return func(o *Options) { o.Epsilon = eps } }

// WithLogger routes diagnostics to l. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// EventNode maps a latch graph event to its clock graph node.
func EventNode(e latchgraph.Event) NodeID {
	switch e.Kind {
	case latchgraph.EventRise:
		return RiseNode(e.Phase)
	case latchgraph.EventFall:
		return FallNode(e.Phase)
	}

	return Zero
}

// Build derives the clock graph of lg. Long-path entries dominated at the
// seed period are pruned, so the graph is exact for every period >= seed.
// Seed must pass latchgraph.TestPeriod; otherwise extraction hits its key or
// work cap and returns latchgraph.ErrInfeasible.
func Build(lg *latchgraph.Graph, seed float64, opts ...Option) (*Graph, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.Logger.With("component", "cgraph")
	g := New(lg.NumPhases())

	// 1. Frame, duty and ordering constraints.
	g.addStructure(o, log)

	// 2. Hold constraints.
	for i := range lg.Edges {
		g.addShortPath(lg, &lg.Edges[i])
	}

	// 3. Setup constraints.
	x := &extractor{lg: lg, g: g, seed: seed, eps: o.Epsilon}
	for _, grp := range groupLaunches(lg) {
		n, err := x.run(grp)
		if err != nil {
			return nil, err
		}
		log.Debug("long paths", "launch", grp.node, "offset", grp.offset, "members", len(grp.members), "entries", n)
	}

	log.Debug("clock graph built", "nodes", g.NumNodes(), "edges", len(g.edges), "seed", seed)

	return g, nil
}

func (g *Graph) addStructure(o Options, log *slog.Logger) {
	p := g.phases
	v0 := FallNode(p)
	for v := NodeID(1); v < NodeID(g.NumNodes()); v++ {
		g.AddFixed(v, Zero, 0)
		if v != v0 {
			g.AddFixed(v0, v, 0)
		}
	}
	g.AddDuty(Zero, v0, 1)
	g.AddDuty(v0, Zero, -1)
	for i := 1; i <= p; i++ {
		g.AddDuty(FallNode(i), RiseNode(i), -o.MinSep)
		g.AddDuty(RiseNode(i), FallNode(i), o.MaxSep)
		if i < p {
			g.AddDuty(FallNode(i+1), FallNode(i), 0)
			g.AddDuty(RiseNode(i+1), RiseNode(i), 0)
		}
	}
	if !o.PhaseInverted {
		return
	}
	if p != 2 {
		log.Warn("inverted phases need exactly two phases, ignored", "phases", p)
		return
	}
	g.AddFixed(FallNode(1), RiseNode(2), 0)
	g.AddFixed(RiseNode(2), FallNode(1), 0)
	g.AddFixed(Zero, RiseNode(1), 0)
}

// addShortPath encodes the hold check of one latch edge u->v:
//
//	open(u) + minSkew + dmin - K*c >= close(v) + maxSkew - c + hold
func (g *Graph) addShortPath(lg *latchgraph.Graph, e *latchgraph.Edge) {
	u, v := &lg.Vertices[e.From], &lg.Vertices[e.To]
	open, close := u.Open(), v.Close()
	j := 1 - e.K + open.Offset
	if j < -1 || j > 1 {
		panic(fmt.Sprintf("clockgraph: edge %s->%s yields short path coefficient %d", u.Name, v.Name, j))
	}
	minOpen, _ := u.SkewOf(open)
	_, maxClose := v.SkewOf(close)
	g.AddShortPath(EventNode(open), EventNode(close), j, e.DelayMin+minOpen-v.Hold-maxClose)
}

// launch is a group of vertices sharing one open event.
type launch struct {
	node    NodeID
	offset  int
	members []latchgraph.VertexID
}

// groupLaunches returns Host's group followed by one group per distinct
// (open node, offset) in vertex order.
func groupLaunches(lg *latchgraph.Graph) []launch {
	out := []launch{{node: Zero, members: []latchgraph.VertexID{latchgraph.Host}}}
	idx := make(map[latchgraph.Event]int)
	for i := 1; i < len(lg.Vertices); i++ {
		ev := lg.Vertices[i].Open()
		k, ok := idx[ev]
		if !ok {
			k = len(out)
			idx[ev] = k
			out = append(out, launch{node: EventNode(ev), offset: ev.Offset})
		}
		out[k].members = append(out[k].members, latchgraph.VertexID(i))
	}

	return out
}

// extractor runs the incremental long-path propagation.
type extractor struct {
	lg   *latchgraph.Graph
	g    *Graph
	seed float64
	eps  float64
}

// run propagates departures from one launch group keyed by cycle count.
//
// At each key: black (K=0) edges are relaxed to a fixed point, arrivals are
// recorded as long-path entries close(v) -> launch, then red (K=1) edges carry
// departures into key+1. Only level-sensitive latches pass departures on.
// An entry whose value normalized by the seed period does not beat the best
// one seen for its vertex is dropped; this bounds the number of keys.
func (x *extractor) run(grp launch) (int, error) {
	n := len(x.lg.Vertices)
	ninf := math.Inf(-1)
	fill := func(s []float64, v float64) {
		for i := range s {
			s[i] = v
		}
	}
	dep := make([]float64, n)
	arr := make([]float64, n)
	next := make([]float64, n)
	bestDep := make([]float64, n)
	bestArr := make([]float64, n)
	fill(next, ninf)
	fill(bestDep, ninf)
	fill(bestArr, ninf)

	maxKeys := 2*n + 2
	maxWork := n * (len(x.lg.Edges) + 1)
	entries := 0
	for key := 0; ; key++ {
		if key > maxKeys {
			return entries, fmt.Errorf("%w: long paths from %d did not settle after %d cycles", latchgraph.ErrInfeasible, grp.node, maxKeys)
		}
		shift := float64(key) * x.seed
		fill(dep, ninf)
		copy(arr, next)
		fill(next, ninf)

		// 1. Departures at this key: seeds, then transparent latches fed by red edges.
		var queue []latchgraph.VertexID
		depart := func(v latchgraph.VertexID, t float64) {
			if t <= dep[v]+x.eps || t-shift <= bestDep[v]+x.eps {
				return
			}
			dep[v] = t
			bestDep[v] = t - shift
			queue = append(queue, v)
		}
		if key == 0 {
			for _, m := range grp.members {
				vx := &x.lg.Vertices[m]
				_, late := vx.SkewOf(vx.Open())
				depart(m, late)
			}
		}
		for i := 1; i < n; i++ {
			if arr[i] > ninf && x.lg.Vertices[i].Kind.IsLevelSensitive() {
				depart(latchgraph.VertexID(i), arr[i])
			}
		}

		// 2. Black closure.
		for work := 0; len(queue) > 0; work++ {
			if work > maxWork {
				return entries, fmt.Errorf("%w: same-cycle paths from %d do not settle", latchgraph.ErrInfeasible, grp.node)
			}
			u := queue[0]
			queue = queue[1:]
			for _, ei := range x.lg.Vertices[u].Out {
				e := &x.lg.Edges[ei]
				if e.K != 0 {
					continue
				}
				a := dep[u] + e.DelayMax
				if a > arr[e.To] {
					arr[e.To] = a
				}
				if x.lg.Vertices[e.To].Kind.IsLevelSensitive() {
					depart(e.To, a)
				}
			}
		}

		// 3. Record arrivals.
		for i := 1; i < n; i++ {
			if arr[i] == ninf || arr[i]-shift <= bestArr[i]+x.eps {
				continue
			}
			bestArr[i] = arr[i] - shift
			v := &x.lg.Vertices[i]
			closeEv := v.Close()
			early, _ := v.SkewOf(closeEv)
			x.g.AddLongPath(EventNode(closeEv), grp.node, key-grp.offset, arr[i]+v.Setup-early)
			entries++
		}

		// 4. Red edges into the next key.
		advanced := false
		for i := 0; i < n; i++ {
			if dep[i] == ninf {
				continue
			}
			for _, ei := range x.lg.Vertices[i].Out {
				e := &x.lg.Edges[ei]
				if e.K != 1 {
					continue
				}
				if a := dep[i] + e.DelayMax; a > next[e.To] {
					next[e.To] = a
					advanced = true
				}
			}
		}
		if !advanced {
			return entries, nil
		}
	}
}
