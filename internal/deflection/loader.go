package deflection

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "expsim/internal/errors"
)

// Load reads a load-deflection CSV file.
//
// The file has one header row followed by rows of time, force and
// displacement with a decimal comma. Only every Stride-th data row is kept,
// force is negated and rows up to StartTime are dropped.
func Load(ctx context.Context, path string, opts Options) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path, err)
		}
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(ctx, file, opts)
}

// LoadFromReader parses CSV content in the same layout as Load
func LoadFromReader(ctx context.Context, r io.Reader, opts Options) ([]Sample, error) {
	ctx, span := tracer.Start(ctx, "deflection.Load")
	defer span.End()

	samples, err := loadSamples(ctx, r, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("deflection.rows", len(samples)))
	instruments().rowsLoaded.Add(ctx, int64(len(samples)))
	return samples, nil
}

func loadSamples(ctx context.Context, r io.Reader, opts Options) ([]Sample, error) {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}

	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(header) == "" {
		return nil, apperrors.NewDataFormatError(1, "missing header row", nil)
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = detectDelimiter(header)
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var (
		samples []Sample
		row     int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, apperrors.NewDataFormatError(parseErr.Line+1, "malformed CSV row", err)
			}
			return nil, fmt.Errorf("read series rows: %w", err)
		}

		keep := row%stride == 0
		row++
		if !keep {
			continue
		}

		line, _ := reader.FieldPos(0)
		sample, err := parseSample(record, line+1)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, apperrors.NewEmptySeriesError("no data rows after stride")
	}

	first, err := truncateIndex(samples, opts.StartTime, opts.Truncation)
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("deflection.data_rows", row),
		attribute.String("deflection.delimiter", string(delimiter)),
		attribute.Int("deflection.truncated", first),
	)

	return samples[first:], nil
}

// parseSample converts the first three cells of a record
func parseSample(record []string, line int) (Sample, error) {
	if len(record) < 3 {
		return Sample{}, apperrors.NewDataFormatError(line,
			fmt.Sprintf("expected at least 3 columns, got %d", len(record)), nil)
	}

	var values [3]float64
	names := [3]string{"time", "force", "displacement"}
	for i := range values {
		v, err := parseDecimal(record[i])
		if err != nil {
			return Sample{}, apperrors.NewDataFormatError(line,
				fmt.Sprintf("parse %s %q", names[i], record[i]), err)
		}
		values[i] = v
	}

	return Sample{
		Time:         values[0],
		Force:        -values[1],
		Displacement: values[2],
	}, nil
}

// parseDecimal parses a number written with either a decimal comma or point
func parseDecimal(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errors.New("empty cell")
	}
	v, err := cast.ToFloat64E(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// detectDelimiter picks the separator of the header row, trying semicolon,
// then tab, then comma.
func detectDelimiter(header string) rune {
	for _, d := range []rune{';', '\t'} {
		if strings.ContainsRune(header, d) {
			return d
		}
	}
	return ','
}

// truncateIndex returns the first index whose time is strictly greater than
// start. A zero start keeps every row.
func truncateIndex(samples []Sample, start float64, policy Truncation) (int, error) {
	if start == 0 {
		return 0, nil
	}
	for i, s := range samples {
		if s.Time > start {
			return i, nil
		}
	}
	if policy == TruncateLenient {
		return 0, nil
	}
	return 0, apperrors.NewEmptySeriesError(fmt.Sprintf("no sample after start time %g", start))
}
