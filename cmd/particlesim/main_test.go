package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runID(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if id, ok := strings.CutPrefix(line, "run id: "); ok {
			return strings.TrimSpace(id)
		}
	}
	t.Fatalf("no run id in output:\n%s", output)
	return ""
}

func TestRunListExport(t *testing.T) {
	data := t.TempDir()

	out, err := execute(t, "run", "oscillator", "--time", "1", "--data", data)
	require.NoError(t, err, out)
	assert.Contains(t, out, "running oscillator with rk4")
	assert.Contains(t, out, "steps: 100")
	assert.Contains(t, out, "energy_drift")
	id := runID(t, out)
	assert.True(t, strings.HasPrefix(id, "oscillator_"))

	out, err = execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "ok")

	out, err = execute(t, "export-json", id, "--data", data)
	require.NoError(t, err)
	var exported struct {
		System    string          `json:"system"`
		Positions [][][3]float64 `json:"positions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, "oscillator", exported.System)
	assert.Len(t, exported.Positions, 101)

	svg := filepath.Join(t.TempDir(), "frame.svg")
	out, err = execute(t, "export", id, "--svg", svg, "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, `"system": "oscillator"`)
	content, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")
	assert.Equal(t, 1, strings.Count(string(content), "<line "))
}

func TestPlotAndAnalyze(t *testing.T) {
	data := t.TempDir()

	out, err := execute(t, "run", "oscillator", "--time", "5", "--data", data)
	require.NoError(t, err, out)
	id := runID(t, out)

	out, err = execute(t, "plot", id, "--axis", "x", "--particle", "1", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "particle 1 x vs time")
	assert.Contains(t, out, "total energy")

	out, err = execute(t, "analyze", id, "--axis", "x", "--portrait", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "dominant frequency")
	assert.Contains(t, out, "particle 1 path")
	assert.Contains(t, out, "max deviation from exact solution")

	_, err = execute(t, "plot", id, "--axis", "w", "--data", data)
	assert.Error(t, err)
	_, err = execute(t, "plot", "missing", "--data", data)
	assert.Error(t, err)
}

func TestRunWithConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: rotation\nstepper: euler\nduration: 1\n"), 0644))

	out, err := execute(t, "run", "--config", path, "--stepper", "trapezoidal", "--data", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "running rotation with trapezoidal")
	assert.Contains(t, out, "norm_drift")
}

func TestRunRejectsBadInput(t *testing.T) {
	data := t.TempDir()

	_, err := execute(t, "run", "oscillator", "--stepper", "rk45", "--data", data)
	assert.Error(t, err)

	_, err = execute(t, "run", "cloth", "--preset", "nope", "--data", data)
	assert.ErrorContains(t, err, "unknown preset")

	_, err = execute(t, "run", "cloth", "--dt", "0", "--data", data)
	assert.Error(t, err)
}

func TestRunPreset(t *testing.T) {
	out, err := execute(t, "run", "cloth", "--preset", "curtain", "--time", "0.2", "--data", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "64 particles")
	assert.Contains(t, out, "max_stretch")
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	for _, s := range []string{"cloth", "pendulum", "oscillator", "rotation"} {
		assert.Contains(t, out, "presets for "+s)
	}

	out, err = execute(t, "presets", "lorenz")
	require.NoError(t, err)
	assert.Contains(t, out, "no presets for system: lorenz")
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "compare", "oscillator", "euler", "rk4", "--time", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "euler")
	assert.Contains(t, out, "rk4")
	assert.NotContains(t, out, "trapezoidal")

	_, err = execute(t, "compare", "oscillator", "leapfrog", "--time", "1")
	assert.Error(t, err)
}

func TestConverge(t *testing.T) {
	out, err := execute(t, "converge", "rk4", "--levels", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "estimated order")

	_, err = execute(t, "converge", "rk4", "--levels", "1")
	assert.Error(t, err)
}

func TestBench(t *testing.T) {
	out, err := execute(t, "bench", "rotation")
	require.NoError(t, err)
	assert.Contains(t, out, "STEPS/SEC")
	assert.Contains(t, out, "5000")
}

func TestSweep(t *testing.T) {
	out, err := execute(t, "sweep", "oscillator", "--preset", "undamped", "--time", "2",
		"--param", "oscillator.drag=0,2", "--metric", "energy")
	require.NoError(t, err, out)
	assert.Contains(t, out, "sweeping oscillator.drag on oscillator")
	assert.Contains(t, out, "best: oscillator.drag=2")

	_, err = execute(t, "sweep", "oscillator")
	assert.ErrorContains(t, err, "--param")

	_, err = execute(t, "sweep", "oscillator", "--param", "oscillator.drag")
	assert.Error(t, err)

	_, err = execute(t, "sweep", "oscillator", "--param", "oscillator.drag=a,b")
	assert.Error(t, err)
}

func TestRunLive(t *testing.T) {
	out, err := execute(t, "run", "oscillator", "--time", "0.1", "--live", "--fps", "0", "--data", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "oscillator  t=0.10s")
	assert.Contains(t, out, "particles=2")
	assert.Contains(t, out, "steps: 10")
}

func TestWatchRejectsBadInput(t *testing.T) {
	_, err := execute(t, "watch", "jelly")
	assert.Error(t, err)

	_, err = execute(t, "watch", "oscillator", "--stepper", "leapfrog")
	assert.Error(t, err)
}
