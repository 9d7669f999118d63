package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes the report to an XLSX file: a summary sheet holding
// the load-deflection chart, then one sheet per table.
func WriteWorkbook(path string, r *Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename first sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, r, headerStyle); err != nil {
		return err
	}
	for _, table := range r.Tables() {
		if err := writeTableSheet(f, table, headerStyle); err != nil {
			return fmt.Errorf("write %s sheet: %w", table.Name, err)
		}
	}
	if err := addLoadDeflectionChart(f, r); err != nil {
		return fmt.Errorf("add chart: %w", err)
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *Report, headerStyle int) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &[]interface{}{"quantity", "value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	s := r.Summary
	rows := [][]interface{}{
		{"raw_count", s.RawCount},
		{"sample_count", s.SampleCount},
		{"ascending_count", s.AscendingCount},
		{"descending_count", s.DescendingCount},
		{"discarded_count", s.DiscardedCount},
		{"time_start", s.TimeStart},
		{"time_end", s.TimeEnd},
		{"peak_force", s.PeakForce},
		{"peak_force_time", s.PeakForceTime},
		{"peak_force_index", s.PeakForceIndex},
		{"source_peak_index", s.SourcePeakIndex},
		{"displacement_at_peak", s.DisplacementAtPeak},
		{"max_displacement", s.MaxDisplacement},
		{"max_displacement_time", s.MaxDisplacementTime},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func writeTableSheet(f *excelize.File, table Table, headerStyle int) error {
	if _, err := f.NewSheet(table.Name); err != nil {
		return err
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(table.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i := 0; i < table.Len(); i++ {
		row := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = col[i]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// addLoadDeflectionChart plots force over displacement for the canonical and
// resampled series. Both sheets store time, force, displacement in A, B, C.
func addLoadDeflectionChart(f *excelize.File, r *Report) error {
	var series []excelize.ChartSeries
	for _, table := range []Table{r.Canonical, r.Resampled} {
		if table.Len() == 0 {
			continue
		}
		last := table.Len() + 1
		series = append(series, excelize.ChartSeries{
			Name:       table.Name,
			Categories: fmt.Sprintf("'%s'!$C$2:$C$%d", table.Name, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", table.Name, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 3},
		})
	}
	if len(series) == 0 {
		return nil
	}

	title := fmt.Sprintf("Load-deflection: F_max = %.4g at w = %.4g",
		r.Summary.PeakForce, r.Summary.DisplacementAtPeak)

	return f.AddChart(SummarySheet, "D2", &excelize.Chart{
		Type:   excelize.Scatter,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "displacement w"}},
		},
		YAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "force F"}},
		},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 400},
	})
}
