// Package exporter writes load-deflection results to files.
//
// Table holds one numeric result set (canonical series, resampled series,
// interpolation grid). CSVWriter writes tables as CSV in either decimal
// format, and WriteWorkbook writes all tables plus a summary sheet and a
// load-deflection scatter chart to one XLSX workbook.
//
// Example usage:
//
//	report, err := exporter.BuildReport(ctx, series)
//	if err != nil {
//	    return err
//	}
//	files, err := report.WriteAll(outputDir, exporter.DecimalComma, logger)
package exporter
