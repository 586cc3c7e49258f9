// Package netlist is the in-memory circuit model consumed by the clock scheduler.
//
// What:
//
//   - Primary inputs, primary outputs, combinational gates and latches addressed by dense NodeID.
//   - Named clocks (primary inputs) carrying a cycle time, nominal rise/fall positions and edge skew.
//   - Per-pin delay bounds under two models: DelayLibrary (characterized per pin) and
//     DelayUnitFanout (one unit per 2-input level plus a fanout load term).
//   - Data fanout, control fanout and transitive fanout queries.
//
// A Netlist is built once through Builder (or Load/Parse for YAML fixtures) and is
// read-only afterwards, except for the clock-parameter store updated by SetClockParams.
//
// Errors:
//
//   - ErrDuplicateName, ErrUnknownName: name resolution failures while building.
//   - ErrBadDelay: a pin delay with min > max or negative bounds.
//   - ErrNoLibraryDelay: DelayLibrary requested for a pin without characterization.
//   - ErrUnknownClock: SetClockParams on a clock that does not exist.
//
// Construction errors carry context through github.com/pkg/errors and still match
// their sentinel with errors.Is.
package netlist
