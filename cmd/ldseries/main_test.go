package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expsim/internal/config"
	"expsim/internal/exporter"
	"expsim/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: ldseries")

	code, _, stderr = runCLI(t, "plot")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "plot"`)

	code, _, stderr = runCLI(t, "report", "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "-resample-mode")

	code, _, _ = runCLI(t, "report", "-stride", "many")
	assert.Equal(t, 2, code)
}

func TestRunReport(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteSeriesCSV(t, dir, "load_deflection.csv", testutil.ScenarioRows())
	out := filepath.Join(dir, "out")

	code, stdout, stderr := runCLI(t, "report",
		"-file", input,
		"-out", out,
		"-stride", "1",
		"-resample", "3",
		"-points", "3",
	)
	require.Equal(t, 0, code, stderr)

	for _, name := range []string{"canonical.csv", "resampled.csv", "grid.csv", exporter.WorkbookName, "metrics.prom"} {
		assert.FileExists(t, filepath.Join(out, name))
		assert.Contains(t, stdout, filepath.Join(out, name))
	}
	assert.Regexp(t, `peak_force\s+10\n`, stdout)
	assert.Regexp(t, `discarded_count\s+2\n`, stdout)
	assert.Regexp(t, `"msg":"report written".*"trace_id":"[0-9a-f-]{36}"`, stderr)

	grid, err := os.ReadFile(filepath.Join(out, "grid.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(grid), "3;8;3;5;1")
}

func TestRunReportDecimalPoint(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteSeriesCSV(t, dir, "load_deflection.csv", testutil.ScenarioRows())
	out := filepath.Join(dir, "out")

	code, _, stderr := runCLI(t, "report", "-file", input, "-out", out, "-stride", "1", "-decimal", "point", "-points", "3")
	require.Equal(t, 0, code, stderr)

	grid, err := os.ReadFile(filepath.Join(out, "grid.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(grid), "3,8,3,5,1")
}

func TestRunReportDirectoryConvention(t *testing.T) {
	base := t.TempDir()
	testutil.WriteSeriesCSV(t, base, filepath.Join("specimen_7", "load_deflection", "load_deflection.csv"), testutil.ScenarioRows())
	out := filepath.Join(base, "out")

	code, stdout, stderr := runCLI(t, "report", "-base", base, "-dir", "specimen_7", "-out", out, "-stride", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "raw_count")
}

func TestRunReportFailures(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteSeriesCSV(t, dir, "load_deflection.csv", testutil.ScenarioRows())

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing file", []string{"-file", filepath.Join(dir, "nope.csv")}, "not found"},
		{"no input", nil, "either a file or a test directory name is required"},
		{"zero stride", []string{"-file", input, "-stride", "0"}, "validation"},
		{"bad descending end", []string{"-file", input, "-descending", "sideways"}, "validation"},
		{"bad decimal", []string{"-file", input, "-decimal", "dot"}, "unknown decimal separator"},
		{"start beyond data", []string{"-file", input, "-stride", "1", "-start", "99"}, "EMPTY_SERIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"report", "-out", filepath.Join(dir, "out")}, tt.args...)
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, strings.ToLower(stderr), strings.ToLower(tt.wantErr))
		})
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	fs, flags := newFlagSet("serve", &bytes.Buffer{})
	require.NoError(t, fs.Parse([]string{"-stride", "3", "-addr", "127.0.0.1:9000"}))

	cfg := config.Default()
	cfg.Series.ResampleCount = 250
	cfg.Series.DescendingEnd = "post-peak"
	flags.apply(fs, cfg)

	assert.Equal(t, 3, cfg.Series.Stride)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 250, cfg.Series.ResampleCount)
	assert.Equal(t, "post-peak", cfg.Series.DescendingEnd)
}

func TestParseNumberFormat(t *testing.T) {
	f, err := parseNumberFormat("comma")
	require.NoError(t, err)
	assert.Equal(t, exporter.DecimalComma, f)

	f, err = parseNumberFormat("point")
	require.NoError(t, err)
	assert.Equal(t, exporter.DecimalPoint, f)

	_, err = parseNumberFormat("")
	assert.Error(t, err)
}
