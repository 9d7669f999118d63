// Package deflection prepares load-deflection measurements for analysis.
//
// A measurement is a CSV file of time, force and displacement recorded while
// a specimen is loaded to failure. Raw load-cell data is noisy: force drops
// and plateaus on the way up and the trace keeps running after the test
// ends. This package turns such a file into a canonical series and derives
// everything a report or plot needs from it.
//
// # Pipeline
//
//   - loader.go: CSV parsing with decimal comma, row stride, force sign flip
//     and start-time truncation
//   - segment.go: ascending envelope before the peak force and the descending
//     portion from the peak to the maximum displacement
//   - interpolate.go: piecewise-linear force/time/displacement interpolators
//   - resample.go: fixed-size subset covering both portions
//   - series.go: memoized accessors over a set of Options
//
// # Usage Example
//
//	opts := deflection.DefaultOptions()
//	opts.FilePath = "load_deflection.csv"
//	opts.StartTime = 2.5
//
//	series, err := deflection.New(opts, deflection.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	peak, err := series.PeakForce(ctx)
//	timeAt, err := series.TimeAtForce(ctx)
//	t, err := timeAt.Eval(peak / 2)
//
// Every accessor is computed on first use and cached until an option changes.
// Accessors return copies, so callers may modify the results freely.
package deflection
