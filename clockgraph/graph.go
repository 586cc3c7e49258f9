package clockgraph

import (
	"fmt"
	"math"
	"sort"
)

// NodeID addresses a clock event node.
type NodeID int

// Zero is the time origin.
const Zero NodeID = 0

// RiseNode returns the rise event node of phase p (1-based).
func RiseNode(p int) NodeID { return NodeID(2*p - 1) }

// FallNode returns the fall event node of phase p (1-based).
func FallNode(p int) NodeID { return NodeID(2 * p) }

// Edge a->b carries the constraint pos(b) - pos(a) <= weight(c), where weight
// is the minimum over every attached piece. An edge with no piece is inert.
type Edge struct {
	From, To NodeID

	fixed    float64
	hasFixed bool
	duty     float64
	hasDuty  bool
	long     map[int]float64 // cycle count -> largest path value
	short    [3]float64 // indexed by j+1
	hasShort [3]bool
}

// Fixed returns the constant piece.
func (e *Edge) Fixed() (float64, bool) { return e.fixed, e.hasFixed }

// Duty returns the factor d of the d*c piece.
func (e *Edge) Duty() (float64, bool) { return e.duty, e.hasDuty }

// ShortPath returns the value of the val + j*c piece, j in {-1, 0, 1}.
func (e *Edge) ShortPath(j int) (float64, bool) {
	if j < -1 || j > 1 {
		return 0, false
	}

	return e.short[j+1], e.hasShort[j+1]
}

// LongPath returns a copy of the count -> value map of -val + count*c pieces.
func (e *Edge) LongPath() map[int]float64 {
	out := make(map[int]float64, len(e.long))
	for k, v := range e.long {
		out[k] = v
	}

	return out
}

// Inert reports whether no piece is attached.
func (e *Edge) Inert() bool {
	return !e.hasFixed && !e.hasDuty && len(e.long) == 0 && e.hasShort == [3]bool{}
}

// Eval returns the weight at period c and the coefficient of c of the piece
// attaining it. Equal weights prefer the smaller coefficient. ok is false for
// an inert edge.
func (e *Edge) Eval(c float64) (w, coef float64, ok bool) {
	w, coef = math.Inf(1), 0
	take := func(pw, pc float64) {
		if pw < w || (pw == w && pc < coef) {
			w, coef = pw, pc
		}
		ok = true
	}
	e.pieces(func(w0, pc float64) { take(w0+pc*c, pc) })

	return w, coef, ok
}

// Asymptote returns the piece that is smallest once c grows without bound:
// the smallest coefficient, then the smallest constant.
func (e *Edge) Asymptote() (w0, coef float64, ok bool) {
	e.pieces(func(pw, pc float64) {
		if !ok || pc < coef || (pc == coef && pw < w0) {
			w0, coef, ok = pw, pc, true
		}
	})

	return w0, coef, ok
}

// pieces calls fn with the constant and the coefficient of c of every piece.
func (e *Edge) pieces(fn func(w0, coef float64)) {
	if e.hasFixed {
		fn(e.fixed, 0)
	}
	if e.hasDuty {
		fn(0, e.duty)
	}
	for _, cnt := range e.longCounts() {
		fn(-e.long[cnt], float64(cnt))
	}
	for i, has := range e.hasShort {
		if has {
			fn(e.short[i], float64(i-1))
		}
	}
}

func (e *Edge) longCounts() []int {
	keys := make([]int, 0, len(e.long))
	for k := range e.long {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}

// Graph is the clock constraint graph over Zero and one rise/fall pair per phase.
type Graph struct {
	phases int
	index  map[[2]NodeID]int
	edges  []*Edge
}

// New returns an empty graph over P phases.
func New(phases int) *Graph {
	return &Graph{phases: phases, index: make(map[[2]NodeID]int)}
}

// NumPhases returns P.
func (g *Graph) NumPhases() int { return g.phases }

// NumNodes returns 2P+1.
func (g *Graph) NumNodes() int { return 2*g.phases + 1 }

// Edge returns the edge a->b if one was created.
func (g *Graph) Edge(a, b NodeID) (*Edge, bool) {
	i, ok := g.index[[2]NodeID{a, b}]
	if !ok {
		return nil, false
	}

	return g.edges[i], true
}

// Edges returns every edge in creation order. The slice must not be modified.
func (g *Graph) Edges() []*Edge { return g.edges }

func (g *Graph) edge(a, b NodeID) *Edge {
	n := NodeID(g.NumNodes())
	if a < 0 || a >= n || b < 0 || b >= n {
		panic(fmt.Sprintf("clockgraph: edge %d->%d outside %d nodes", a, b, n))
	}
	if i, ok := g.index[[2]NodeID{a, b}]; ok {
		return g.edges[i]
	}
	e := &Edge{From: a, To: b}
	g.index[[2]NodeID{a, b}] = len(g.edges)
	g.edges = append(g.edges, e)

	return e
}

// AddFixed attaches pos(b) - pos(a) <= w.
func (g *Graph) AddFixed(a, b NodeID, w float64) {
	e := g.edge(a, b)
	if !e.hasFixed || w < e.fixed {
		e.fixed, e.hasFixed = w, true
	}
}

// AddDuty attaches pos(b) - pos(a) <= d*c.
func (g *Graph) AddDuty(a, b NodeID, d float64) {
	e := g.edge(a, b)
	if !e.hasDuty || d < e.duty {
		e.duty, e.hasDuty = d, true
	}
}

// AddLongPath attaches pos(b) - pos(a) <= -val + count*c, keeping the largest val per count.
func (g *Graph) AddLongPath(a, b NodeID, count int, val float64) {
	e := g.edge(a, b)
	if e.long == nil {
		e.long = make(map[int]float64)
	}
	if old, ok := e.long[count]; !ok || val > old {
		e.long[count] = val
	}
}

// AddShortPath attaches pos(b) - pos(a) <= val + j*c for j in {-1, 0, 1},
// keeping the smallest val. j is -1 when a level-sensitive-low latch, opening
// in the previous cycle, launches into the next cycle.
func (g *Graph) AddShortPath(a, b NodeID, j int, val float64) {
	if j < -1 || j > 1 {
		panic(fmt.Sprintf("clockgraph: short path coefficient %d", j))
	}
	e := g.edge(a, b)
	if i := j + 1; !e.hasShort[i] || val < e.short[i] {
		e.short[i], e.hasShort[i] = val, true
	}
}
