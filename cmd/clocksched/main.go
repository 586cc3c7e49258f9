// Command clocksched optimizes or verifies the clock schedule of a circuit
// described in YAML.
//
//	clocksched optimize ring.yaml --solver bisection
//	clocksched verify ring.yaml schedule.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/clocksched"
	"github.com/katalvlaran/clocksched/config"
	"github.com/katalvlaran/clocksched/netlist"
	"github.com/katalvlaran/clocksched/schedule"
	"github.com/katalvlaran/clocksched/solver"
	"github.com/katalvlaran/clocksched/verify"
)

// flags holds every command-line setting of one invocation.
type flags struct {
	configPath string
	delayModel string
	verbose    int
	setup      float64
	hold       float64

	minSep     float64
	maxSep     float64
	inverted   bool
	strategy   string
	crossCheck bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "clocksched",
		Short:         "Clock schedule optimizer and verifier for latch-based circuits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&f.delayModel, "delay-model", "library", "Gate delay model: library or unit")
	pf.CountVarP(&f.verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.Float64Var(&f.setup, "setup", 0, "Global latch setup time")
	pf.Float64Var(&f.hold, "hold", 0, "Global latch hold time")

	optimizeCmd := &cobra.Command{
		Use:   "optimize <circuit.yaml>",
		Short: "Compute the minimum cycle time and phase positions",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runOptimize(cmd, f, args[0]) },
	}
	of := optimizeCmd.Flags()
	of.Float64Var(&f.minSep, "min-sep", 0, "Minimum phase width as a fraction of the cycle")
	of.Float64Var(&f.maxSep, "max-sep", 1, "Maximum phase width as a fraction of the cycle")
	of.BoolVar(&f.inverted, "inverted", false, "Tie two phases together as complements")
	of.StringVar(&f.strategy, "solver", string(solver.StrategyExterior), "Period solver: exterior or bisection")
	of.BoolVar(&f.crossCheck, "cross-check", false, "Run both solvers and compare")

	verifyCmd := &cobra.Command{
		Use:   "verify <circuit.yaml> [schedule.yaml]",
		Short: "Check a schedule, or the one stored in the circuit's clocks",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched := ""
			if len(args) == 2 {
				sched = args[1]
			}
			return runVerify(cmd, f, args[0], sched)
		},
	}

	root.AddCommand(optimizeCmd, verifyCmd)

	return root
}

func parseDelayModel(s string) (netlist.DelayModel, error) {
	switch s {
	case "library", "":
		return netlist.DelayLibrary, nil
	case "unit", "unit-fanout":
		return netlist.DelayUnitFanout, nil
	}

	return 0, fmt.Errorf("unknown delay model %q", s)
}

// loadConfig starts from --config (or the defaults) and applies every flag
// the user set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	level := slog.LevelWarn
	switch {
	case f.verbose >= 2:
		level = slog.LevelDebug
	case f.verbose == 1:
		level = slog.LevelInfo
	}
	opts := []config.Option{
		config.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))),
	}

	set := cmd.Flags().Changed
	if set("setup") {
		opts = append(opts, config.WithSetup(f.setup))
	}
	if set("hold") {
		opts = append(opts, config.WithHold(f.hold))
	}
	if set("min-sep") || set("max-sep") {
		opts = append(opts, config.WithSeparation(f.minSep, f.maxSep))
	}
	if set("inverted") {
		opts = append(opts, config.WithPhaseInverted(f.inverted))
	}
	if set("solver") {
		opts = append(opts, config.WithStrategy(solver.Strategy(f.strategy)))
	}
	if set("cross-check") {
		opts = append(opts, config.WithCrossCheck(f.crossCheck))
	}

	if f.configPath != "" {
		return config.Load(f.configPath, opts...)
	}
	c := config.New(opts...)

	return c, c.Validate()
}

func prepare(cmd *cobra.Command, f *flags, circuit string) (*netlist.Netlist, netlist.DelayModel, config.Config, error) {
	model, err := parseDelayModel(f.delayModel)
	if err != nil {
		return nil, 0, config.Config{}, err
	}
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return nil, 0, config.Config{}, err
	}
	nl, err := netlist.Load(circuit)
	if err != nil {
		return nil, 0, config.Config{}, err
	}

	return nl, model, cfg, nil
}

func runOptimize(cmd *cobra.Command, f *flags, circuit string) error {
	nl, model, cfg, err := prepare(cmd, f, circuit)
	if err != nil {
		return err
	}
	s, err := clocksched.Optimize(nl, model, cfg)
	if err != nil {
		return err
	}

	return writeSchedule(cmd.OutOrStdout(), s)
}

func runVerify(cmd *cobra.Command, f *flags, circuit, schedPath string) error {
	nl, model, cfg, err := prepare(cmd, f, circuit)
	if err != nil {
		return err
	}
	var s *schedule.Schedule
	if schedPath == "" {
		s, err = clocksched.ScheduleOf(nl)
	} else {
		s, err = readSchedule(schedPath)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	err = clocksched.Verify(nl, model, s, cfg)
	var fail *verify.Failure
	if errors.As(err, &fail) {
		fmt.Fprintf(out, "FAIL %s\n", s)
		for _, h := range fail.Path {
			fmt.Fprintf(out, "  %-12s depart %-8g arrive %g\n", h.Name, h.Departure, h.Arrival)
		}
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "PASS %s\n", s)

	return nil
}

func readSchedule(path string) (*schedule.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	var s schedule.Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schedule %s: %w", path, err)
	}

	return &s, nil
}

func writeSchedule(w io.Writer, s *schedule.Schedule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}

	return enc.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
