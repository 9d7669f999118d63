package main

import (
	"flag"
	"fmt"
	"io"

	"expsim/internal/config"
	"expsim/internal/exporter"
)

// cliFlags holds every flag; only flags set on the command line override
// the loaded configuration.
type cliFlags struct {
	configFile string

	file      string
	baseDir   string
	dirName   string
	outputDir string

	startTime    float64
	stride       int
	resample     int
	points       int
	delimiter    string
	descending   string
	truncation   string
	resampleMode string

	decimal  string
	logLevel string
	addr     string
}

func newFlagSet(command string, stderr io.Writer) (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet("ldseries "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.configFile, "config", "", "YAML config file (defaults to ldseries.yaml or configs/ldseries.yaml when present)")
	fs.StringVar(&f.file, "file", "", "load-deflection CSV; overrides -base/-dir")
	fs.StringVar(&f.baseDir, "base", "", "base directory of the test database (defaults to ~/simdb/data/shear_zone)")
	fs.StringVar(&f.dirName, "dir", "", "test directory name under the base directory")
	fs.Float64Var(&f.startTime, "start", 0, "discard rows before this time; 0 keeps every row")
	fs.IntVar(&f.stride, "stride", 10, "keep every n-th data row")
	fs.IntVar(&f.resample, "resample", 100, "number of resampled points")
	fs.IntVar(&f.points, "points", 30, "interpolation grid size")
	fs.StringVar(&f.delimiter, "delimiter", "", "field delimiter: semicolon, comma or tab (detected when empty)")
	fs.StringVar(&f.descending, "descending", "full", "descending end: full or post-peak")
	fs.StringVar(&f.truncation, "truncation", "strict", "start time beyond the data: strict or lenient")
	fs.StringVar(&f.resampleMode, "resample-mode", "proportional", "resampling: proportional or uniform")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	switch command {
	case "report":
		fs.StringVar(&f.outputDir, "out", "out", "output directory for CSV, XLSX and metrics files")
		fs.StringVar(&f.decimal, "decimal", "comma", "decimal separator in CSV output: comma or point")
	case "serve":
		fs.StringVar(&f.addr, "addr", ":8080", "listen address")
	}
	return fs, f
}

// apply copies explicitly set flags into cfg
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "file":
			cfg.Paths.File = f.file
		case "base":
			cfg.Paths.BaseDir = f.baseDir
		case "dir":
			cfg.Paths.DirName = f.dirName
		case "out":
			cfg.Paths.OutputDir = f.outputDir
		case "start":
			cfg.Series.StartTime = f.startTime
		case "stride":
			cfg.Series.Stride = f.stride
		case "resample":
			cfg.Series.ResampleCount = f.resample
		case "points":
			cfg.Series.InterpolationPoints = f.points
		case "delimiter":
			cfg.Series.Delimiter = f.delimiter
		case "descending":
			cfg.Series.DescendingEnd = f.descending
		case "truncation":
			cfg.Series.Truncation = f.truncation
		case "resample-mode":
			cfg.Series.ResampleMode = f.resampleMode
		case "log-level":
			cfg.Logging.Level = f.logLevel
		case "addr":
			cfg.Server.Addr = f.addr
		}
	})
}

func parseNumberFormat(s string) (exporter.NumberFormat, error) {
	switch s {
	case "comma":
		return exporter.DecimalComma, nil
	case "point":
		return exporter.DecimalPoint, nil
	default:
		return 0, fmt.Errorf("unknown decimal separator %q", s)
	}
}
