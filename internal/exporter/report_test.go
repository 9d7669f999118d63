package exporter

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expsim/internal/deflection"
	"expsim/internal/shared/testutil"
)

func scenarioReport(t *testing.T) *Report {
	t.Helper()
	opts := deflection.DefaultOptions()
	opts.Stride = 1
	opts.InterpolationPoints = 3
	opts.ResampleCount = 3

	csv := testutil.FormatSeriesCSV(testutil.ScenarioRows())
	s, err := deflection.New(opts, deflection.WithSource(func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(csv)), nil
	}))
	require.NoError(t, err)

	report, err := BuildReport(context.Background(), s)
	require.NoError(t, err)
	return report
}

func TestBuildReport(t *testing.T) {
	report := scenarioReport(t)

	assert.Equal(t, 10.0, report.Summary.PeakForce)
	assert.Equal(t, 5, report.Canonical.Len())
	assert.Equal(t, 3, report.Resampled.Len())
	assert.Equal(t, 3, report.Grid.Len())
	assert.Equal(t, []float64{0, 5, 8, 10, 1}, report.Canonical.Columns[1])
	assert.Len(t, report.Grid.Headers, len(report.Grid.Columns))
}

func TestSummaryRecords(t *testing.T) {
	records := SummaryRecords(scenarioReport(t).Summary, DecimalComma)

	values := make(map[string]string, len(records))
	for _, r := range records {
		values[r[0]] = r[1]
	}
	assert.Equal(t, "10", values["peak_force"])
	assert.Equal(t, "5", values["peak_force_time"])
	assert.Equal(t, "3", values["peak_force_index"])
	assert.Equal(t, "2", values["discarded_count"])
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	report := scenarioReport(t)

	files, err := report.WriteAll(dir, DecimalComma, nil)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
		assert.FileExists(t, f)
	}
	assert.Equal(t, []string{"canonical.csv", "resampled.csv", "grid.csv", WorkbookName}, names)

	lines := readLines(t, filepath.Join(dir, "grid.csv"))
	assert.Equal(t, "time;force_at_time;displacement_at_time;force;time_at_force", lines[0])
	assert.Equal(t, "3;8;3;5;1", lines[2])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkbookName)
	require.NoError(t, WriteWorkbook(path, scenarioReport(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, CanonicalTable, ResampledTable, GridTable}, f.GetSheetList())

	rows, err := f.GetRows(CanonicalTable)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"time", "force", "displacement"}, rows[0])
	assert.Equal(t, []string{"5", "10", "5"}, rows[4])

	peak, err := f.GetCellValue(SummarySheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "10", peak)
	label, err := f.GetCellValue(SummarySheet, "A9")
	require.NoError(t, err)
	assert.Equal(t, "peak_force", label)
}
