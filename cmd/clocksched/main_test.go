package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/clocksched/config"
	"github.com/katalvlaran/clocksched/verify"
)

const ring = "../../netlist/testdata/ring.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

func TestOptimizeCommand(t *testing.T) {
	out, err := run(t, "optimize", ring)
	require.NoError(t, err)
	assert.Contains(t, out, "cycle: 5")
	assert.Contains(t, out, "name: clk")

	out, err = run(t, "optimize", ring, "--solver", "bisection", "--setup", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "cycle: 6")

	_, err = run(t, "optimize", ring, "--solver", "simplex")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = run(t, "optimize", ring, "--delay-model", "wire")
	assert.Error(t, err)
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("cycle: 5\nphases:\n  - {name: clk, rise: 0, fall: 5}\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("cycle: 4\nphases:\n  - {name: clk, rise: 0, fall: 4}\n"), 0o600))

	out, err := run(t, "verify", ring, good)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS c=5 clk[0,5]")

	out, err = run(t, "verify", ring, bad)
	assert.ErrorIs(t, err, verify.ErrSetupViolation)
	assert.Contains(t, out, "FAIL c=4 clk[0,4]")
	assert.Contains(t, out, "l1")
	assert.Contains(t, out, "l2")

	// ring.yaml leaves the rise unset.
	_, err = run(t, "verify", ring)
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("setup: 1\nstrategy: exterior\n"), 0o600))

	out, err := run(t, "--config", path, "optimize", ring)
	require.NoError(t, err)
	assert.Contains(t, out, "cycle: 6")
}

func TestParseDelayModel(t *testing.T) {
	for in, want := range map[string]string{"library": "library", "": "library", "unit": "unit", "unit-fanout": "unit"} {
		m, err := parseDelayModel(in)
		require.NoError(t, err)
		assert.Equal(t, want, m.String())
	}
}
