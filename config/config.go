// Package config holds the tunables shared by Optimize and Verify: global
// setup and hold times, phase separation bounds, solver choice and the
// numeric tolerances. A Config is an explicit value passed to each run.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/clocksched/solver"
)

// ErrInvalidConfig is returned by Validate and Load.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config parameterizes one Optimize or Verify run.
type Config struct {
	Setup         float64         `yaml:"setup"`
	Hold          float64         `yaml:"hold"`
	MinSep        float64         `yaml:"min_sep"` // lower bound on f-r, as a fraction of c
	MaxSep        float64         `yaml:"max_sep"` // upper bound on f-r, as a fraction of c
	PhaseInverted bool            `yaml:"phase_inverted"`
	Strategy      solver.Strategy `yaml:"strategy"`
	CrossCheck    bool            `yaml:"cross_check"`
	Epsilon       float64         `yaml:"epsilon"`
	Tolerance     float64         `yaml:"tolerance"` // verifier comparison slack
	BisectWidth   float64         `yaml:"bisect_width"`
	MaxDoublings  int             `yaml:"max_doublings"`

	Logger *slog.Logger `yaml:"-"`
}

// Option mutates a Config.
type Option func(*Config)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		MaxSep:       1,
		Strategy:     solver.StrategyExterior,
		Epsilon:      1e-9,
		Tolerance:    1e-6,
		BisectWidth:  1e-4,
		MaxDoublings: 64,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// New applies opts to Default.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithSetup sets the global setup time.
func WithSetup(t float64) Option { return func(c *Config) { c.Setup = t } }

// WithHold sets the global hold time.
func WithHold(t float64) Option { return func(c *Config) { c.Hold = t } }

// WithSeparation bounds every phase width to [lo*c, hi*c].
func WithSeparation(lo, hi float64) Option {
	return func(c *Config) { c.MinSep, c.MaxSep = lo, hi }
}

// WithPhaseInverted forces the two phases of a two-phase design to complement each other.
func WithPhaseInverted(on bool) Option { return func(c *Config) { c.PhaseInverted = on } }

// WithStrategy selects the period solver.
func WithStrategy(s solver.Strategy) Option { return func(c *Config) { c.Strategy = s } }

// WithCrossCheck runs both solvers and panics when they disagree.
func WithCrossCheck(on bool) Option { return func(c *Config) { c.CrossCheck = on } }

// WithEpsilon sets the solver feasibility slack.
func WithEpsilon(eps float64) Option { return func(c *Config) { c.Epsilon = eps } }

// WithTolerance sets the verifier comparison slack.
func WithTolerance(tol float64) Option { return func(c *Config) { c.Tolerance = tol } }

// WithBisectWidth sets the bracket width of both bisections.
func WithBisectWidth(w float64) Option { return func(c *Config) { c.BisectWidth = w } }

// WithLogger routes diagnostics to l. A nil logger keeps the current one.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Setup < 0 || c.Hold < 0:
		return fmt.Errorf("%w: negative setup %g or hold %g", ErrInvalidConfig, c.Setup, c.Hold)
	case c.MinSep < 0 || c.MaxSep > 1 || c.MinSep > c.MaxSep:
		return fmt.Errorf("%w: separation [%g, %g] not within [0, 1]", ErrInvalidConfig, c.MinSep, c.MaxSep)
	case !(c.Epsilon > 0) || !(c.Tolerance > 0) || !(c.BisectWidth > 0):
		return fmt.Errorf("%w: epsilon, tolerance and bisect width must be positive", ErrInvalidConfig)
	case c.MaxDoublings <= 0:
		return fmt.Errorf("%w: max doublings %d", ErrInvalidConfig, c.MaxDoublings)
	}
	if _, err := solver.New(c.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// SolverOptions translates c into solver options.
func (c Config) SolverOptions() []solver.Option {
	return []solver.Option{
		solver.WithEpsilon(c.Epsilon),
		solver.WithWidth(c.BisectWidth),
		solver.WithMaxDoublings(c.MaxDoublings),
		solver.WithLogger(c.Logger),
	}
}

// Load reads a YAML file over Default, then applies opts and validates.
// Fields absent from the file keep their default values.
func Load(path string, opts ...Option) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c, c.Validate()
}
