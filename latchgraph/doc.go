// Package latchgraph builds and analyses the latch-to-latch timing graph of a
// clocked circuit.
//
// What:
//
//   - Build: validates the clock network of a Circuit, strips it, and traverses the data
//     logic from Host (every non-clock primary input) and from every latch output. Each
//     path reaching a latch data pin becomes an Edge with DelayMax, DelayMin and the
//     cycle-crossing flag K.
//   - OrderPhases: assigns phase indices 1..P by nominal fall position.
//   - LowerBound: DFS cycle-ratio and path bound on the minimum clock period.
//   - TestPeriod / TestPeriodQueued: negative-cycle feasibility oracle for a trial period.
//
// Timing model (per phase p, 0 <= r_p <= f_p <= c):
//
//	kind  open   close
//	FFR   r      r
//	FFF   f      f
//	LSH   r      f
//	LSL   f-c    r
//
// Flip-flops depart at open; level-sensitive latches depart at max(open, arrival).
// Arrival over an edge is departure + delay - K*c.
//
// Complexity:
//
//   - Build:      O(S * (N + E_n)) for S sources over a netlist of N nodes and E_n pins.
//   - LowerBound: O(V + E).
//   - TestPeriod: O(V * E).
//
// Errors:
//
//   - ErrInvalidTopology and its refinements (ErrNoMemoryElements, ErrGatedClock, ...).
//   - ErrInfeasible is shared with the solvers built on top of this package.
//
// A same-phase edge between two level-sensitive latches of one kind is reported as
// ErrSamePhaseLevelEdge instead of being emitted.
package latchgraph
