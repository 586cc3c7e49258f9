// Package clocksched computes and verifies clock schedules of multi-phase
// sequential circuits built from flip-flops and level-sensitive latches.
//
// What:
//
//   - Optimize: smallest cycle time and phase positions meeting every setup and
//     hold constraint. The result is written back into the circuit's clocks.
//   - Verify: checks a fully specified schedule by simulating arrival times.
//   - ScheduleOf: reads the schedule currently stored in a circuit's clocks.
//
// Pipeline of Optimize:
//
//	netlist -> latchgraph.Build -> LowerBound -> Bisect(TestPeriod)
//	        -> clockgraph.Build(seed) -> solver -> schedule
//
// Subpackages:
//
//	netlist/    circuit model, YAML loader, delay models
//	latchgraph/ latch-to-latch timing graph, lower bound, negative-cycle test
//	clockgraph/ difference constraints between clock edges, affine in the period
//	solver/     bisection and exterior-path strategies
//	verify/     fixed-point arrival simulation
//	config/     run configuration
//
// Errors:
//
//   - latchgraph.ErrInvalidTopology and refinements for unsupported circuits.
//   - latchgraph.ErrInfeasible when no period works.
//   - verify.ErrVerification for a failed check.
package clocksched
