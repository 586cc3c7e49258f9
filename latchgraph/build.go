package latchgraph

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/katalvlaran/clocksched/netlist"
)

// bounds is the departure window of a node relative to one source:
// latest rise, latest fall, earliest rise, earliest fall.
type bounds struct {
	maxR, maxF, minR, minF float64
}

var unreached = bounds{math.Inf(-1), math.Inf(-1), math.Inf(1), math.Inf(1)}

func (b bounds) reached() bool { return !math.IsInf(b.maxR, -1) || !math.IsInf(b.maxF, -1) }

// through returns the bounds at a gate output produced by input bounds b over pin delay p.
func (b bounds) through(pol netlist.Polarity, p netlist.PinDelay) bounds {
	switch pol {
	case netlist.Inverting:
		return bounds{b.maxF + p.MaxRise, b.maxR + p.MaxFall, b.minF + p.MinRise, b.minR + p.MinFall}
	case netlist.Binate:
		hi, lo := math.Max(b.maxR, b.maxF), math.Min(b.minR, b.minF)
		return bounds{hi + p.MaxRise, hi + p.MaxFall, lo + p.MinRise, lo + p.MinFall}
	}

	return bounds{b.maxR + p.MaxRise, b.maxF + p.MaxFall, b.minR + p.MinRise, b.minF + p.MinFall}
}

func (b bounds) merge(o bounds) bounds {
	return bounds{math.Max(b.maxR, o.maxR), math.Max(b.maxF, o.maxF), math.Min(b.minR, o.minR), math.Min(b.minF, o.minF)}
}

// builder carries the per-call state of Build.
type builder struct {
	c       Circuit
	model   netlist.DelayModel
	opts    Options
	g       *Graph
	clockOf map[netlist.NodeID]int // clock node -> index in c.Clocks()
	kind    map[netlist.NodeID]netlist.LatchKind
	clock   map[netlist.NodeID]int // latch node -> clock index
	phase   map[netlist.NodeID]int // latch node -> phase index
	strip   []bool                 // clock cone, excluded from data traversal
	topo    []netlist.NodeID       // data gates in topological order
	pins    [][]netlist.PinDelay   // pin delays of data gates
	vertex  map[netlist.NodeID]VertexID
}

// Build validates the circuit topology and returns its latch graph.
//
// Steps:
//  1. Resolve the clock behind every latch control pin (inverters flip the kind).
//  2. Reject mixed kinds on one control signal.
//  3. Reject clocks that leak into data logic or primary outputs; strip the clock cone.
//  4. Order the phases.
//  5. Sort data gates topologically and resolve their pin delays.
//  6. Propagate delay bounds from Host and from every latch output, emitting edges.
//
// All failures match ErrInvalidTopology. No partial graph is returned.
func Build(c Circuit, model netlist.DelayModel, opts ...Option) (*Graph, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{
		c:       c,
		model:   model,
		opts:    o,
		clockOf: make(map[netlist.NodeID]int),
		kind:    make(map[netlist.NodeID]netlist.LatchKind),
		clock:   make(map[netlist.NodeID]int),
		phase:   make(map[netlist.NodeID]int),
		vertex:  make(map[netlist.NodeID]VertexID),
	}
	log := o.Logger.With("component", "lgraph")

	if len(c.Latches()) == 0 {
		return nil, ErrNoMemoryElements
	}
	for i, clk := range c.Clocks() {
		b.clockOf[clk.Node] = i
	}

	// 1. Control paths.
	for _, l := range c.Latches() {
		if err := b.traceControl(l); err != nil {
			return nil, err
		}
	}

	// 2. Mixed kinds per control signal.
	if err := b.checkKinds(); err != nil {
		return nil, err
	}

	// 3. Clock leakage.
	if err := b.stripClocks(); err != nil {
		return nil, err
	}

	// 4. Phases.
	b.g = &Graph{}
	b.assignPhases(log)

	// 5. Data gates.
	if err := b.sortGates(); err != nil {
		return nil, err
	}

	// 6. Vertices and edges.
	b.addVertices()
	if err := b.propagate(); err != nil {
		return nil, err
	}

	log.Debug("latch graph built", "vertices", len(b.g.Vertices), "edges", len(b.g.Edges), "phases", len(b.g.Phases))

	return b.g, nil
}

// traceControl walks back from the control pin of latch l to its clock.
func (b *builder) traceControl(l netlist.NodeID) error {
	nd := b.c.Node(l)
	kind := nd.LatchKind
	cur := nd.Control
	for steps := 0; ; steps++ {
		if steps > b.c.Len() {
			return fmt.Errorf("%w: control path of %q", ErrCombinationalCycle, nd.Name)
		}
		if ci, ok := b.clockOf[cur]; ok {
			b.kind[l] = kind
			b.clock[l] = ci
			return nil
		}
		src := b.c.Node(cur)
		switch src.Kind {
		case netlist.Gate:
			if len(src.Fanin) != 1 {
				if b.clocksBehind(cur) > 1 {
					return fmt.Errorf("%w: latch %q via gate %q", ErrMultipleClocks, nd.Name, src.Name)
				}
				return fmt.Errorf("%w: latch %q via gate %q", ErrGatedClock, nd.Name, src.Name)
			}
			switch src.Polarity {
			case netlist.Inverting:
				kind = kind.Invert()
			case netlist.Binate:
				return fmt.Errorf("%w: latch %q via binate gate %q", ErrGatedClock, nd.Name, src.Name)
			}
			cur = src.Fanin[0]
		case netlist.Latch:
			return fmt.Errorf("%w: latch %q controlled by latch %q", ErrGatedClock, nd.Name, src.Name)
		default:
			return fmt.Errorf("%w: latch %q controlled by %q", ErrMissingClock, nd.Name, src.Name)
		}
	}
}

// clocksBehind counts the distinct clocks in the backward gate cone of id.
func (b *builder) clocksBehind(id netlist.NodeID) int {
	seen := map[netlist.NodeID]bool{id: true}
	stack := []netlist.NodeID{id}
	found := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := b.clockOf[cur]; ok {
			found++
			continue
		}
		nd := b.c.Node(cur)
		if nd.Kind != netlist.Gate {
			continue
		}
		for _, f := range nd.Fanin {
			if !seen[f] {
				seen[f] = true
				stack = append(stack, f)
			}
		}
	}

	return found
}

func (b *builder) checkKinds() error {
	first := make(map[netlist.NodeID]netlist.NodeID)
	for _, l := range b.c.Latches() {
		nd := b.c.Node(l)
		prev, ok := first[nd.Control]
		if !ok {
			first[nd.Control] = l
			continue
		}
		if p := b.c.Node(prev); p.LatchKind != nd.LatchKind {
			return fmt.Errorf("%w: %q is %s, %q is %s", ErrMixedLatchKinds, p.Name, p.LatchKind, nd.Name, nd.LatchKind)
		}
	}

	return nil
}

func (b *builder) stripClocks() error {
	b.strip = make([]bool, b.c.Len())
	for _, clk := range b.c.Clocks() {
		b.strip[clk.Node] = true
		for _, id := range b.c.TransitiveFanout(clk.Node) {
			nd := b.c.Node(id)
			switch nd.Kind {
			case netlist.PrimaryOutput:
				return fmt.Errorf("%w: clock %q reaches %q", ErrClockReachesOutput, clk.Name, nd.Name)
			case netlist.Latch:
				return fmt.Errorf("%w: clock %q reaches %q", ErrClockDrivesData, clk.Name, nd.Name)
			}
			b.strip[id] = true
		}
	}

	return nil
}

func (b *builder) assignPhases(log *slog.Logger) {
	clocks := b.c.Clocks()
	used := make([]bool, len(clocks))
	for _, ci := range b.clock {
		used[ci] = true
	}
	var active []netlist.Clock
	for i, clk := range clocks {
		if !used[i] {
			log.Warn("clock drives no latch", "clock", clk.Name)
			continue
		}
		active = append(active, clk)
	}
	ordered := OrderPhases(active, b.opts.Logger)
	if len(b.opts.PhaseOrder) > 0 {
		rank := make(map[string]int, len(b.opts.PhaseOrder))
		for i, name := range b.opts.PhaseOrder {
			rank[name] = i
		}
		at := func(clk netlist.Clock) int {
			if r, ok := rank[clk.Name]; ok {
				return r
			}
			return len(rank)
		}
		sort.SliceStable(ordered, func(i, j int) bool { return at(ordered[i]) < at(ordered[j]) })
	}
	phaseOf := make(map[netlist.NodeID]int, len(active))
	for i, clk := range ordered {
		b.g.Phases = append(b.g.Phases, Phase{Index: i + 1, Clock: clk})
		phaseOf[clk.Node] = i + 1
	}
	for l, ci := range b.clock {
		b.phase[l] = phaseOf[clocks[ci].Node]
	}
}

// sortGates orders the non-stripped gates with Kahn's algorithm.
func (b *builder) sortGates() error {
	n := b.c.Len()
	indeg := make([]int, n)
	var queue []netlist.NodeID
	gates := 0
	for i := 0; i < n; i++ {
		id := netlist.NodeID(i)
		nd := b.c.Node(id)
		if nd.Kind != netlist.Gate || b.strip[id] {
			continue
		}
		gates++
		for _, f := range nd.Fanin {
			if b.c.Node(f).Kind == netlist.Gate && !b.strip[f] {
				indeg[id]++
			}
		}
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	b.pins = make([][]netlist.PinDelay, n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		b.topo = append(b.topo, id)
		nd := b.c.Node(id)
		b.pins[id] = make([]netlist.PinDelay, len(nd.Fanin))
		for p := range nd.Fanin {
			d, err := b.c.PinDelay(b.model, id, p)
			if err != nil {
				return fmt.Errorf("%w: %q: %w", ErrUnmappedNode, nd.Name, err)
			}
			b.pins[id][p] = d
		}
		for _, out := range b.c.Fanout(id) {
			if b.c.Node(out).Kind != netlist.Gate || b.strip[out] {
				continue
			}
			indeg[out]--
			if indeg[out] == 0 {
				queue = append(queue, out)
			}
		}
	}
	if len(b.topo) != gates {
		return fmt.Errorf("%w: %d of %d gates unordered", ErrCombinationalCycle, gates-len(b.topo), gates)
	}

	return nil
}

func (b *builder) addVertices() {
	b.g.Vertices = append(b.g.Vertices, Vertex{ID: Host, Name: "host", Node: netlist.NoNode})
	for _, l := range b.c.Latches() {
		nd := b.c.Node(l)
		ph := b.phase[l]
		v := Vertex{
			ID:    VertexID(len(b.g.Vertices)),
			Name:  nd.Name,
			Kind:  b.kind[l],
			Phase: ph,
			Node:  l,
			Setup: math.Max(nd.Setup, b.opts.Setup),
			Hold:  math.Max(nd.Hold, b.opts.Hold),
			Skew:  b.g.Phases[ph-1].Clock.Skew,
		}
		b.vertex[l] = v.ID
		b.g.Vertices = append(b.g.Vertices, v)
	}
}

// propagate runs one forward traversal per source vertex.
func (b *builder) propagate() error {
	var hostSeeds []netlist.NodeID
	for _, in := range b.c.Inputs() {
		if !b.strip[in] {
			hostSeeds = append(hostSeeds, in)
		}
	}
	at := make([]bounds, b.c.Len())
	for s := range b.g.Vertices {
		src := VertexID(s)
		seeds := hostSeeds
		if src != Host {
			seeds = []netlist.NodeID{b.g.Vertices[s].Node}
		}
		if len(seeds) == 0 {
			continue
		}
		for i := range at {
			at[i] = unreached
		}
		for _, id := range seeds {
			at[id] = bounds{}
		}
		b.forward(at)
		for _, l := range b.c.Latches() {
			d := at[b.c.Node(l).Fanin[0]]
			if !d.reached() {
				continue
			}
			if err := b.connect(src, b.vertex[l], d); err != nil {
				return err
			}
		}
	}

	return nil
}

// forward pushes bounds through the data gates in topological order.
func (b *builder) forward(at []bounds) {
	for _, id := range b.topo {
		nd := b.c.Node(id)
		out := unreached
		for p, f := range nd.Fanin {
			if in := at[f]; in.reached() {
				out = out.merge(in.through(nd.Polarity, b.pins[id][p]))
			}
		}
		at[id] = out
	}
}

func (b *builder) connect(from, to VertexID, d bounds) error {
	u, v := &b.g.Vertices[from], &b.g.Vertices[to]
	if !u.IsHost() && u.Phase == v.Phase && u.Kind == v.Kind && u.Kind.IsLevelSensitive() {
		return fmt.Errorf("%w: %q -> %q (%s, phase %d)", ErrSamePhaseLevelEdge, u.Name, v.Name, u.Kind, u.Phase)
	}
	b.g.addEdge(from, to, math.Max(d.maxR, d.maxF), math.Min(d.minR, d.minF), cycleCrossing(u, v))

	return nil
}
