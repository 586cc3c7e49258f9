package clocksched

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/katalvlaran/clocksched/clockgraph"
	"github.com/katalvlaran/clocksched/config"
	"github.com/katalvlaran/clocksched/latchgraph"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/schedule"
	"github.com/katalvlaran/clocksched/solver"
	"github.com/katalvlaran/clocksched/verify"
)

// ErrNoSchedule is returned by ScheduleOf when a clock has no stored position.
var ErrNoSchedule = errors.New("clocksched: circuit has no complete schedule")

// Circuit is a netlist whose clock parameters can be written back.
// *netlist.Netlist implements it.
type Circuit interface {
	latchgraph.Circuit
	SetClockParams(name string, p netlist.ClockParams) error
}

func runLogger(cfg config.Config, op string) *slog.Logger {
	return cfg.Logger.With("run", uuid.NewString(), "op", op)
}

func latches(c latchgraph.Circuit, model netlist.DelayModel, cfg config.Config, log *slog.Logger, extra ...latchgraph.Option) (*latchgraph.Graph, error) {
	opts := append([]latchgraph.Option{
		latchgraph.WithSetup(cfg.Setup),
		latchgraph.WithHold(cfg.Hold),
		latchgraph.WithLogger(log),
	}, extra...)

	return latchgraph.Build(c, model, opts...)
}

// Optimize finds the minimum cycle time of c and the positions of its phases,
// stores them in c's clocks and returns them.
//
// Steps:
//  1. Build the latch graph and its cycle-ratio lower bound.
//  2. Bisect the negative-cycle test from the lower bound. The upper end of
//     the bracket passes the test and seeds the clock graph.
//  3. Extract the clock graph at the seed and solve it with cfg.Strategy
//     (both strategies under cfg.CrossCheck).
//  4. Read the schedule off the potentials and write it back.
func Optimize(c Circuit, model netlist.DelayModel, cfg config.Config) (*schedule.Schedule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := runLogger(cfg, "optimize")

	// 1. Latch graph.
	lg, err := latches(c, model, cfg, log)
	if err != nil {
		return nil, err
	}
	lb := latchgraph.LowerBound(lg)
	log.Debug("lower bound", "component", "bound", "cycle", lb)

	// 2. Seed.
	br, err := solver.Bisect(lb, func(p float64) bool {
		return latchgraph.TestPeriod(lg, p, cfg.Epsilon)
	}, solver.BisectOptions{Width: cfg.BisectWidth, MaxDoublings: cfg.MaxDoublings})
	if err != nil {
		return nil, fmt.Errorf("seeding from lower bound %g: %w", lb, err)
	}
	seed := math.Max(lb, br.Hi)
	log.Debug("negative-cycle test", "component", "nct", "lo", br.Lo, "hi", br.Hi)

	// 3. Clock graph and solve.
	cg, err := clockgraph.Build(lg, seed,
		clockgraph.WithSeparation(cfg.MinSep, cfg.MaxSep),
		clockgraph.WithPhaseInverted(cfg.PhaseInverted),
		clockgraph.WithEpsilon(cfg.Epsilon),
		clockgraph.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	var res *solver.Result
	if cfg.CrossCheck {
		res, err = solver.CrossCheck(cg, seed, cfg.SolverOptions()...)
	} else {
		var sv solver.Solver
		if sv, err = solver.New(cfg.Strategy, cfg.SolverOptions()...); err == nil {
			res, err = sv.Solve(cg, seed)
		}
	}
	if err != nil {
		return nil, err
	}

	// 4. Schedule and write-back.
	s := schedule.FromPositions(lg, res.CycleTime, res.Positions, cfg.Tolerance)
	for _, p := range s.Phases {
		if err := c.SetClockParams(p.Name, netlist.ClockParams{CycleTime: s.CycleTime, Rise: p.Rise, Fall: p.Fall}); err != nil {
			return nil, err
		}
	}
	log.Info("optimized", "schedule", s.String(), "lower_bound", lb, "seed", seed)

	return s, nil
}

// Verify checks schedule s against c. Phases are numbered by the positions
// in s (see schedule.PhaseOrder), not by the positions stored in c.
// It returns nil, a *verify.Failure, or a configuration, topology or
// schedule error.
func Verify(c latchgraph.Circuit, model netlist.DelayModel, s *schedule.Schedule, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: no schedule", verify.ErrInvalidSchedule)
	}
	log := runLogger(cfg, "verify")
	lg, err := latches(c, model, cfg, log, latchgraph.WithPhaseOrder(s.PhaseOrder()...))
	if err != nil {
		return err
	}
	if err := verify.Check(lg, s, verify.WithTolerance(cfg.Tolerance), verify.WithLogger(log)); err != nil {
		log.Info("verification failed", "schedule", s.String(), "error", err)
		return err
	}
	log.Info("verified", "schedule", s.String())

	return nil
}

// ScheduleOf collects the positions stored in c's clocks in phase order (see
// latchgraph.OrderPhases). A clock without a cycle time takes the latest fall
// of all clocks. Clocks sharing both edge positions stay in declaration order
// and may not reproduce the phase order they were optimized under.
func ScheduleOf(c latchgraph.Circuit) (*schedule.Schedule, error) {
	clocks := latchgraph.OrderPhases(c.Clocks(), nil)
	s := &schedule.Schedule{Phases: make([]schedule.PhaseTiming, 0, len(clocks))}
	for _, k := range clocks {
		if !k.Params.IsSet() {
			return nil, fmt.Errorf("%w: clock %q", ErrNoSchedule, k.Name)
		}
		s.CycleTime = math.Max(s.CycleTime, math.Max(k.Params.CycleTime, k.Params.Fall))
		s.Phases = append(s.Phases, schedule.PhaseTiming{Name: k.Name, Rise: k.Params.Rise, Fall: k.Params.Fall})
	}
	if len(s.Phases) == 0 {
		return nil, fmt.Errorf("%w: no clocks", ErrNoSchedule)
	}

	return s, nil
}
