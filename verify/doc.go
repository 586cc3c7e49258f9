// Package verify checks a clock schedule against a latch graph by simulating
// latest and earliest data arrival times to a fixed point.
//
// What:
//
//   - Check: hold on the earliest arrivals, then setup on the latest arrivals of every
//     round until no arrival moves. Level-sensitive latches pass late data through.
//
// A setup Failure carries the path of departures and arrivals that produced the
// violating time, launch point first. Arrivals are kept per round, so a hop through
// a transparent latch reports the earlier round its data left in. The path is also
// logged at Info level.
//
// Complexity:
//
//   - O((|E|+1) * (V + E)) rounds of relaxation in the worst case.
//
// Errors:
//
//   - *Failure wrapping ErrSetupViolation, ErrHoldViolation or ErrNotConverged, all of
//     which match ErrVerification.
//   - ErrInvalidSchedule for a non-positive period, a missing phase, or a phase whose
//     positions fall outside 0 <= rise <= fall <= c.
package verify
