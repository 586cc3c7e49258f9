package netlist

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrBadFile is returned for YAML documents that do not describe a circuit.
var ErrBadFile = errors.New("netlist: malformed circuit file")

type fileCircuit struct {
	Name    string       `yaml:"name"`
	Inputs  []string     `yaml:"inputs"`
	Outputs []fileOutput `yaml:"outputs"`
	Gates   []fileGate   `yaml:"gates"`
	Latches []fileLatch  `yaml:"latches"`
	Clocks  []fileClock  `yaml:"clocks"`
}

type fileOutput struct {
	Name   string `yaml:"name"`
	Driver string `yaml:"driver"`
}

type fileGate struct {
	Name     string     `yaml:"name"`
	Polarity string     `yaml:"polarity"`
	Fanin    []string   `yaml:"fanin"`
	Pins     []PinDelay `yaml:"pins"`
}

type fileLatch struct {
	Name    string  `yaml:"name"`
	Kind    string  `yaml:"kind"`
	Data    string  `yaml:"data"`
	Control string  `yaml:"control"`
	Setup   float64 `yaml:"setup"`
	Hold    float64 `yaml:"hold"`
}

type fileClock struct {
	Name  string   `yaml:"name"`
	Cycle float64  `yaml:"cycle"`
	Rise  *float64 `yaml:"rise"`
	Fall  *float64 `yaml:"fall"`
	Skew  Skew     `yaml:"skew"`
}

// Load reads a YAML circuit description from path.
func Load(path string) (*Netlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read circuit")
	}
	nl, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	return nl, nil
}

// Parse decodes a YAML circuit description:
//
//	name: ring
//	inputs: [clk]
//	gates:
//	  - {name: g1, polarity: noninverting, fanin: [l1], pins: [{max_rise: 5, max_fall: 5, min_rise: 3, min_fall: 3}]}
//	latches:
//	  - {name: l1, kind: FFR, data: g1, control: clk}
//	clocks:
//	  - {name: clk, fall: 5}
//
// Clock rise/fall keys that are absent decode as Unset.
func Parse(data []byte) (*Netlist, error) {
	var f fileCircuit
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(ErrBadFile, err.Error())
	}

	b := NewBuilder().Named(f.Name)
	for _, in := range f.Inputs {
		b.Input(in)
	}
	for _, o := range f.Outputs {
		b.Output(o.Name, o.Driver)
	}
	for _, g := range f.Gates {
		pol, err := ParsePolarity(g.Polarity)
		if err != nil {
			return nil, errors.Wrapf(err, "gate %q", g.Name)
		}
		b.Gate(g.Name, pol, g.Fanin, g.Pins...)
	}
	for _, l := range f.Latches {
		kind, err := ParseLatchKind(l.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "latch %q", l.Name)
		}
		b.Latch(l.Name, kind, l.Data, l.Control, WithLatchSetup(l.Setup), WithLatchHold(l.Hold))
	}
	for _, c := range f.Clocks {
		p := ClockParams{CycleTime: c.Cycle, Rise: Unset, Fall: Unset}
		if c.Rise != nil {
			p.Rise = *c.Rise
		}
		if c.Fall != nil {
			p.Fall = *c.Fall
		}
		b.Clock(c.Name, p, c.Skew)
	}

	return b.Build()
}

// ParseLatchKind accepts FFF, FFR, LSH, LSL (case-insensitive) and the long names.
func ParseLatchKind(s string) (LatchKind, error) {
	switch strings.ToLower(s) {
	case "fff", "falling", "fallingedgeff":
		return FallingEdgeFF, nil
	case "ffr", "rising", "risingedgeff":
		return RisingEdgeFF, nil
	case "lsh", "high", "levelsensitivehigh":
		return LevelSensitiveHigh, nil
	case "lsl", "low", "levelsensitivelow":
		return LevelSensitiveLow, nil
	}

	return 0, errors.Wrapf(ErrBadFile, "unknown latch kind %q", s)
}

// ParsePolarity accepts noninverting (default when empty), inverting and binate.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(s) {
	case "", "noninverting", "positive", "buf":
		return NonInverting, nil
	case "inverting", "negative", "inv":
		return Inverting, nil
	case "binate":
		return Binate, nil
	}

	return 0, errors.Wrapf(ErrBadFile, "unknown polarity %q", s)
}
