package deflection

import (
	"fmt"
	"hash/fnv"

	"github.com/go-playground/validator/v10"

	"expsim/internal/config"
	apperrors "expsim/internal/errors"
)

// Options holds every input the derived series quantities depend on
type Options struct {
	// FilePath is the CSV source. It may be empty when the series reads
	// from a custom source.
	FilePath string
	// StartTime drops every row up to and including this time. Zero keeps
	// all rows.
	StartTime           float64 `validate:"gte=0"`
	Stride              int     `validate:"gte=1"`
	ResampleCount       int     `validate:"gte=2"`
	InterpolationPoints int     `validate:"gte=2"`
	// Delimiter is the CSV field separator; zero detects it from the header.
	Delimiter     rune          `validate:"oneof=0 9 44 59"`
	DescendingEnd DescendingEnd `validate:"oneof=0 1"`
	Truncation    Truncation    `validate:"oneof=0 1"`
	ResampleMode  ResampleMode  `validate:"oneof=0 1"`
}

var validate = validator.New()

// DefaultOptions returns the options used by the original test rig
func DefaultOptions() Options {
	return Options{
		Stride:              10,
		ResampleCount:       100,
		InterpolationPoints: 30,
	}
}

// Validate checks every field constraint
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return apperrors.NewValidationError("invalid series options", err)
	}
	return nil
}

// fingerprint identifies an option set for memo keys
func (o Options) fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%#v", o)
	return fmt.Sprintf("%016x", h.Sum64())
}

// OptionsFromConfig maps the series section of the configuration onto Options
func OptionsFromConfig(file string, sc config.SeriesConfig) (Options, error) {
	delimiter, err := ParseDelimiter(sc.Delimiter)
	if err != nil {
		return Options{}, apperrors.NewValidationError("series delimiter", err)
	}
	end, err := ParseDescendingEnd(sc.DescendingEnd)
	if err != nil {
		return Options{}, apperrors.NewValidationError("series descending end", err)
	}
	truncation, err := ParseTruncation(sc.Truncation)
	if err != nil {
		return Options{}, apperrors.NewValidationError("series truncation", err)
	}
	mode, err := ParseResampleMode(sc.ResampleMode)
	if err != nil {
		return Options{}, apperrors.NewValidationError("series resample mode", err)
	}

	opts := Options{
		FilePath:            file,
		StartTime:           sc.StartTime,
		Stride:              sc.Stride,
		ResampleCount:       sc.ResampleCount,
		InterpolationPoints: sc.InterpolationPoints,
		Delimiter:           delimiter,
		DescendingEnd:       end,
		Truncation:          truncation,
		ResampleMode:        mode,
	}
	return opts, opts.Validate()
}
