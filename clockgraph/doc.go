// Package clockgraph holds the clock constraint graph and the constraint
// extraction from a latch graph.
//
// Nodes are Zero (the time origin) and, per phase p, RiseNode(p) and FallNode(p).
// An edge a->b stands for pos(b) - pos(a) <= weight(c), with weight the minimum of:
//
//	Fixed(w)      w
//	Duty(d)       d*c
//	LongPath      -val + count*c, per count
//	ShortPath     val[j] + j*c, j in {-1,0,1}
//
// Build attaches:
//
//   - Fixed: 0 <= pos(v) <= pos(v0), with v0 the fall of the last phase.
//   - Duty:  pos(v0) - pos(Zero) == c; MinSep*c <= fall-rise <= MaxSep*c; rises and
//     falls ordered by phase.
//   - ShortPath: one hold constraint per latch edge.
//   - LongPath: setup constraints from incremental (Szymanski) propagation per launch event.
//   - Optional inverted two-phase clocks: r1 = 0, r2 = f1.
//
// Evaluate reduces the graph at a trial period; Feasible runs Bellman-Ford on it and
// returns the phase positions. Unbounded asks whether large periods are feasible at all.
//
// Complexity:
//
//   - Build:    O(G * K * V * E) for G launch groups and K cycle keys (K <= 2V+2).
//   - Feasible, Unbounded: O(V * E) on 2P+1 nodes.
package clockgraph
