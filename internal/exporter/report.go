package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"expsim/internal/deflection"
)

// WorkbookName is the XLSX file written next to the CSV tables
const WorkbookName = "load_deflection.xlsx"

// Report collects everything written for one series
type Report struct {
	Summary   deflection.Summary
	Canonical Table
	Resampled Table
	Grid      Table
}

// Tables returns the numeric tables in output order
func (r *Report) Tables() []Table {
	return []Table{r.Canonical, r.Resampled, r.Grid}
}

// BuildReport computes every table of a series
func BuildReport(ctx context.Context, s *deflection.Series) (*Report, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	canonical, err := s.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("canonical series: %w", err)
	}
	resampled, err := s.Resampled(ctx)
	if err != nil {
		return nil, fmt.Errorf("resampled series: %w", err)
	}
	grid, err := s.Grid(ctx)
	if err != nil {
		return nil, fmt.Errorf("interpolation grid: %w", err)
	}

	return &Report{
		Summary:   summary,
		Canonical: SeriesTable(CanonicalTable, canonical),
		Resampled: SeriesTable(ResampledTable, resampled),
		Grid:      GridToTable(grid),
	}, nil
}

// WriteAll writes every table as CSV and the workbook into dir and returns
// the written paths.
func (r *Report) WriteAll(dir string, format NumberFormat, logger *slog.Logger) ([]string, error) {
	writer := NewCSVWriter(dir, format, logger)

	var written []string
	for _, table := range r.Tables() {
		path, err := writer.WriteTable(table)
		if err != nil {
			return written, fmt.Errorf("write %s table: %w", table.Name, err)
		}
		written = append(written, path)
	}

	workbook := filepath.Join(dir, WorkbookName)
	if err := WriteWorkbook(workbook, r); err != nil {
		return written, err
	}
	return append(written, workbook), nil
}
