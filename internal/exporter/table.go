package exporter

import (
	"expsim/internal/deflection"
)

// Table names, also used as CSV file and sheet names
const (
	CanonicalTable = "canonical"
	ResampledTable = "resampled"
	GridTable      = "grid"
	SummarySheet   = "summary"
)

// Table is a named set of equally long numeric columns
type Table struct {
	Name    string
	Headers []string
	Columns [][]float64
}

// Len returns the number of rows
func (t Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Records formats the table row by row
func (t Table) Records(format NumberFormat) [][]string {
	records := make([][]string, t.Len())
	for i := range records {
		record := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			record[j] = formatFloat(col[i], format)
		}
		records[i] = record
	}
	return records
}

// SeriesTable tabulates time, force and displacement columns
func SeriesTable(name string, cols deflection.Columns) Table {
	return Table{
		Name:    name,
		Headers: []string{"time", "force", "displacement"},
		Columns: [][]float64{cols.Time, cols.Force, cols.Displacement},
	}
}

// GridToTable tabulates both interpolation grids side by side
func GridToTable(g deflection.Grid) Table {
	return Table{
		Name:    GridTable,
		Headers: []string{"time", "force_at_time", "displacement_at_time", "force", "time_at_force"},
		Columns: [][]float64{g.Time, g.Force, g.Displacement, g.AscendingForce, g.AscendingTime},
	}
}

// SummaryRecords lists the summary as name/value pairs
func SummaryRecords(s deflection.Summary, format NumberFormat) [][]string {
	return [][]string{
		{"raw_count", formatInt(s.RawCount)},
		{"sample_count", formatInt(s.SampleCount)},
		{"ascending_count", formatInt(s.AscendingCount)},
		{"descending_count", formatInt(s.DescendingCount)},
		{"discarded_count", formatInt(s.DiscardedCount)},
		{"time_start", formatFloat(s.TimeStart, format)},
		{"time_end", formatFloat(s.TimeEnd, format)},
		{"peak_force", formatFloat(s.PeakForce, format)},
		{"peak_force_time", formatFloat(s.PeakForceTime, format)},
		{"peak_force_index", formatInt(s.PeakForceIndex)},
		{"source_peak_index", formatInt(s.SourcePeakIndex)},
		{"displacement_at_peak", formatFloat(s.DisplacementAtPeak, format)},
		{"max_displacement", formatFloat(s.MaxDisplacement, format)},
		{"max_displacement_time", formatFloat(s.MaxDisplacementTime, format)},
	}
}
