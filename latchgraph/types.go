package latchgraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/katalvlaran/clocksched/netlist"
)

// Sentinel errors. Every topology failure matches ErrInvalidTopology with errors.Is.
var (
	ErrInvalidTopology = errors.New("latchgraph: invalid topology")

	ErrNoMemoryElements   = fmt.Errorf("%w: no memory elements", ErrInvalidTopology)
	ErrMissingClock       = fmt.Errorf("%w: latch control reaches no clock", ErrInvalidTopology)
	ErrMultipleClocks     = fmt.Errorf("%w: latch control reaches more than one clock", ErrInvalidTopology)
	ErrGatedClock         = fmt.Errorf("%w: gated clock", ErrInvalidTopology)
	ErrMixedLatchKinds    = fmt.Errorf("%w: mixed latch kinds on one control signal", ErrInvalidTopology)
	ErrClockReachesOutput = fmt.Errorf("%w: clock reaches a primary output", ErrInvalidTopology)
	ErrClockDrivesData    = fmt.Errorf("%w: clock reaches a latch data pin", ErrInvalidTopology)
	ErrCombinationalCycle = fmt.Errorf("%w: combinational cycle", ErrInvalidTopology)
	ErrUnmappedNode       = fmt.Errorf("%w: gate has no library delay", ErrInvalidTopology)
	ErrSamePhaseLevelEdge = fmt.Errorf("%w: same-phase edge between level-sensitive latches of one kind", ErrInvalidTopology)

	// ErrInfeasible reports that no clock period satisfies the constraints.
	ErrInfeasible = errors.New("latchgraph: infeasible")
)

// Circuit is the netlist contract consumed by Build. *netlist.Netlist implements it.
type Circuit interface {
	Len() int
	Node(id netlist.NodeID) netlist.Node
	Fanout(id netlist.NodeID) []netlist.NodeID
	TransitiveFanout(id netlist.NodeID) []netlist.NodeID
	Inputs() []netlist.NodeID
	Outputs() []netlist.NodeID
	Latches() []netlist.NodeID
	Clocks() []netlist.Clock
	PinDelay(model netlist.DelayModel, id netlist.NodeID, pin int) (netlist.PinDelay, error)
}

// VertexID indexes Graph.Vertices.
type VertexID int

// Host is the vertex standing for every non-clock primary input.
const Host VertexID = 0

// Vertex is the Host or one latch.
type Vertex struct {
	ID    VertexID
	Name  string
	Kind  netlist.LatchKind // effective kind, after control-path inversions
	Phase int               // 1..P; 0 for Host
	Node  netlist.NodeID    // netlist.NoNode for Host
	Setup float64
	Hold  float64
	Skew  netlist.Skew
	Out   []int // outgoing edge indices
	In    []int // incoming edge indices
}

// IsHost reports whether v is the Host vertex.
func (v *Vertex) IsHost() bool { return v.ID == Host }

// Edge is a combinational path between two vertices crossing no latch.
type Edge struct {
	ID       int
	From, To VertexID
	DelayMax float64
	DelayMin float64
	K        int // 1 if the path is charged against the next cycle
}

// Phase binds a phase index to its clock.
type Phase struct {
	Index int
	Clock netlist.Clock
}

// Graph is the latch-to-latch timing graph. Vertices[0] is Host.
type Graph struct {
	Vertices []Vertex
	Edges    []Edge
	Phases   []Phase // Phases[i].Index == i+1
}

// NumPhases returns P.
func (g *Graph) NumPhases() int { return len(g.Phases) }

// addEdge appends an edge and links it into both endpoint lists.
// It panics when dmax < dmin, which only a builder bug can produce.
func (g *Graph) addEdge(from, to VertexID, dmax, dmin float64, k int) {
	if dmax < dmin {
		panic(fmt.Sprintf("latchgraph: edge %d->%d delay max %g < min %g", from, to, dmax, dmin))
	}
	if to == Host {
		panic("latchgraph: edge targets Host")
	}
	id := len(g.Edges)
	g.Edges = append(g.Edges, Edge{ID: id, From: from, To: to, DelayMax: dmax, DelayMin: dmin, K: k})
	g.Vertices[from].Out = append(g.Vertices[from].Out, id)
	g.Vertices[to].In = append(g.Vertices[to].In, id)
}

// Options configures Build.
type Options struct {
	Setup  float64 // global setup time; a latch uses max(own, global)
	Hold   float64 // global hold time; a latch uses max(own, global)
	Logger *slog.Logger

	// PhaseOrder names clocks in the phase order to use; listed clocks come
	// first in that order, the rest follow in OrderPhases order.
	PhaseOrder []string
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns zero setup/hold and a discarding logger.
func DefaultOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithSetup sets the global setup time.
func WithSetup(t float64) Option { return func(o *Options) { o.Setup = t } }

// WithHold sets the global hold time.
func WithHold(t float64) Option { return func(o *Options) { o.Hold = t } }

// WithPhaseOrder pins the phase order, typically to the order of a stored
// schedule whose edge positions tie.
func WithPhaseOrder(names ...string) Option {
	return func(o *Options) { o.PhaseOrder = append([]string(nil), names...) }
}

// WithLogger routes diagnostics to l. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
