// Command ldseries prepares a load-deflection series from a test rig CSV.
//
//	ldseries report [flags]   write canonical, resampled and grid tables as
//	                          CSV plus an XLSX workbook with an F-w chart
//	ldseries serve [flags]    serve the series as a read-only JSON API
//
// Configuration comes from LDS_* environment variables and an optional YAML
// file; flags set on the command line override both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"expsim/internal/app"
	"expsim/internal/config"
	"expsim/internal/deflection"
	"expsim/internal/exporter"
	"expsim/internal/infrastructure"
)

const usage = `usage: ldseries <command> [flags]

commands:
  report   write CSV tables, an XLSX workbook and a metrics textfile
  serve    serve the series over HTTP

run "ldseries <command> -h" for the flags of a command
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	command := args[0]
	if command != "report" && command != "serve" {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}

	fs, flags := newFlagSet(command, stderr)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "ldseries: %v\n", err)
		return 1
	}
	flags.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ldseries: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "ldseries: %v\n", err)
		return 1
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	switch command {
	case "report":
		err = runReport(ctx, cfg, flags, logger, stdout)
	case "serve":
		err = runServe(ctx, cfg, logger)
	}
	if err != nil {
		logger.ErrorContext(ctx, command+" failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "ldseries: %v\n", err)
		return 1
	}
	return 0
}

// newLogger writes console logs to stderr and defers file output to the
// global logger.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, error) {
	if strings.EqualFold(cfg.Output, "console") {
		return infrastructure.NewLogger(cfg, stderr), nil
	}
	return infrastructure.InitializeLogger(cfg)
}

func newSeries(cfg *config.Config, logger *slog.Logger) (*deflection.Series, error) {
	file, err := cfg.Paths.SeriesFile()
	if err != nil {
		return nil, err
	}
	opts, err := deflection.OptionsFromConfig(file, cfg.Series)
	if err != nil {
		return nil, err
	}
	return deflection.New(opts, deflection.WithLogger(logger))
}

func runReport(ctx context.Context, cfg *config.Config, flags *cliFlags, logger *slog.Logger, stdout io.Writer) (err error) {
	format, err := parseNumberFormat(flags.decimal)
	if err != nil {
		return err
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, providers.Shutdown(context.WithoutCancel(ctx)))
	}()

	series, err := newSeries(cfg, logger)
	if err != nil {
		return err
	}
	report, err := exporter.BuildReport(ctx, series)
	if err != nil {
		return err
	}

	dir, err := cfg.Paths.EnsureOutputDir()
	if err != nil {
		return err
	}
	written, err := report.WriteAll(dir, format, logger)
	if err != nil {
		return err
	}
	if cfg.Telemetry.EnableMetrics && cfg.Telemetry.MetricsFile != "" {
		metricsPath := cfg.Telemetry.MetricsFile
		if !filepath.IsAbs(metricsPath) {
			metricsPath = filepath.Join(dir, metricsPath)
		}
		if err := providers.WriteMetricsFile(metricsPath); err != nil {
			return err
		}
		written = append(written, metricsPath)
	}

	logger.InfoContext(ctx, "report written",
		slog.String("file", series.Options().FilePath),
		slog.String("output_dir", dir),
		slog.Int("files", len(written)))

	return printSummary(stdout, report.Summary, written)
}

// printSummary writes the summary as an aligned name/value table followed
// by the written files.
func printSummary(w io.Writer, summary deflection.Summary, written []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rec := range exporter.SummaryRecords(summary, exporter.DecimalPoint) {
		fmt.Fprintf(tw, "%s\t%s\n", rec[0], rec[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, path := range written {
		if _, err := fmt.Fprintf(w, "wrote %s\n", path); err != nil {
			return err
		}
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}

	series, err := newSeries(cfg, logger)
	if err != nil {
		return errors.Join(err, providers.Shutdown(ctx))
	}

	application, err := app.NewApplication(cfg, series, logger, providers)
	if err != nil {
		return errors.Join(err, providers.Shutdown(ctx))
	}
	return application.Run(ctx)
}
