package deflection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apperrors "expsim/internal/errors"
)

// Memo keys, one per derived value
const (
	keyRaw       = "raw"
	keyCanonical = "canonical"
	keyResampled = "resampled"
	keyGrid      = "grid"
	keySummary   = "summary"
)

// Series is a load-deflection measurement with lazily computed, memoized
// derived values. Every value is a pure function of the options; any setter
// drops everything computed so far.
//
// A Series is safe for concurrent reads. Values computed concurrently for the
// same options may be computed more than once.
type Series struct {
	mu          sync.RWMutex
	opts        Options
	fingerprint string
	version     uint64

	memo   *cache.Cache
	source func() (io.ReadCloser, error)
	logger *slog.Logger
}

// SeriesOption configures a Series
type SeriesOption func(*Series)

// WithLogger sets the logger; nil keeps slog.Default()
func WithLogger(logger *slog.Logger) SeriesOption {
	return func(s *Series) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource reads the CSV from open instead of Options.FilePath
func WithSource(open func() (io.ReadCloser, error)) SeriesOption {
	return func(s *Series) {
		s.source = open
	}
}

// New creates a series for opts. Nothing is read until the first accessor.
func New(opts Options, options ...SeriesOption) (*Series, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Series{
		opts:        opts,
		fingerprint: opts.fingerprint(),
		memo:        cache.New(cache.NoExpiration, 0),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.source == nil && opts.FilePath == "" {
		return nil, apperrors.NewValidationError("series needs a file path or a source", nil)
	}
	return s, nil
}

// Options returns the current options
func (s *Series) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Version increases every time the memoized values are dropped
func (s *Series) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Invalidate drops every memoized value so the next access recomputes
func (s *Series) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

func (s *Series) invalidateLocked() {
	s.memo.Flush()
	s.version++
	s.logger.Debug("series invalidated", "version", s.version, "fingerprint", s.fingerprint)
}

// Configure replaces all options at once
func (s *Series) Configure(opts Options) error {
	return s.update(func(o *Options) { *o = opts })
}

// SetFilePath changes the CSV source path
func (s *Series) SetFilePath(path string) error {
	return s.update(func(o *Options) { o.FilePath = path })
}

// SetStartTime changes the truncation time
func (s *Series) SetStartTime(t float64) error {
	return s.update(func(o *Options) { o.StartTime = t })
}

// SetStride changes the row subsampling stride
func (s *Series) SetStride(stride int) error {
	return s.update(func(o *Options) { o.Stride = stride })
}

// SetResampleCount changes the resampler target count
func (s *Series) SetResampleCount(n int) error {
	return s.update(func(o *Options) { o.ResampleCount = n })
}

// SetInterpolationPoints changes the grid size
func (s *Series) SetInterpolationPoints(n int) error {
	return s.update(func(o *Options) { o.InterpolationPoints = n })
}

// SetDescendingEnd changes where the descending portion stops
func (s *Series) SetDescendingEnd(end DescendingEnd) error {
	return s.update(func(o *Options) { o.DescendingEnd = end })
}

// SetTruncation changes the policy for a start time past the last sample
func (s *Series) SetTruncation(policy Truncation) error {
	return s.update(func(o *Options) { o.Truncation = policy })
}

// SetResampleMode changes how the resampled subset is chosen
func (s *Series) SetResampleMode(mode ResampleMode) error {
	return s.update(func(o *Options) { o.ResampleMode = mode })
}

// update applies change, validates the result and invalidates on success.
// Setting an option to its current value keeps the memo.
func (s *Series) update(change func(*Options)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.opts
	change(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if next == s.opts {
		return nil
	}
	if s.source == nil && next.FilePath == "" {
		return apperrors.NewValidationError("series needs a file path or a source", nil)
	}

	s.opts = next
	s.fingerprint = next.fingerprint()
	s.invalidateLocked()
	return nil
}

// view pins the options one accessor call computes against, so nested
// values of a single call never mix two configurations.
type view struct {
	opts        Options
	fingerprint string
	version     uint64
}

func (s *Series) view() view {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{opts: s.opts, fingerprint: s.fingerprint, version: s.version}
}

// memoize returns the cached value for name or computes and stores it. Errors
// are not cached. Keys carry the version so a computation that finishes after
// an invalidation stores a value nobody can read.
func memoize[T any](ctx context.Context, s *Series, v view, name string, compute func(context.Context) (T, error)) (T, error) {
	key := fmt.Sprintf("%s/%d/%s", v.fingerprint, v.version, name)

	if cached, ok := s.memo.Get(key); ok {
		instruments().cacheHits.Add(ctx, 1, metricName(name))
		return cached.(T), nil
	}
	instruments().cacheMisses.Add(ctx, 1, metricName(name))

	ctx, span := tracer.Start(ctx, "deflection."+name,
		trace.WithAttributes(attribute.String("deflection.fingerprint", v.fingerprint)))
	defer span.End()

	value, err := compute(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, err
	}

	s.memo.Set(key, value, cache.NoExpiration)
	return value, nil
}

// Raw returns the loaded samples after stride and truncation
func (s *Series) Raw(ctx context.Context) ([]Sample, error) {
	raw, err := s.raw(ctx, s.view())
	if err != nil {
		return nil, err
	}
	return append([]Sample(nil), raw...), nil
}

func (s *Series) raw(ctx context.Context, v view) ([]Sample, error) {
	opts := v.opts
	return memoize(ctx, s, v, keyRaw, func(ctx context.Context) ([]Sample, error) {
		var (
			samples []Sample
			err     error
		)
		if s.source != nil {
			var rc io.ReadCloser
			rc, err = s.source()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			samples, err = LoadFromReader(ctx, rc, opts)
		} else {
			samples, err = Load(ctx, opts.FilePath, opts)
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "series load failed",
				"file", opts.FilePath,
				"error", err,
			)
			return nil, err
		}

		s.logger.InfoContext(ctx, "series loaded",
			"file", opts.FilePath,
			"samples", len(samples),
			"stride", opts.Stride,
			"start_time", opts.StartTime,
		)
		return samples, nil
	})
}

// Canonical returns a copy of the canonical series
func (s *Series) Canonical(ctx context.Context) (*Canonical, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (s *Series) canonical(ctx context.Context, v view) (*Canonical, error) {
	return memoize(ctx, s, v, keyCanonical, func(ctx context.Context) (*Canonical, error) {
		raw, err := s.raw(ctx, v)
		if err != nil {
			return nil, err
		}

		c, err := Segment(raw, v.opts.DescendingEnd)
		if err != nil {
			s.logger.ErrorContext(ctx, "series segmentation failed", "error", err)
			return nil, err
		}

		discarded := len(raw) - c.Len()
		instruments().samplesDiscarded.Add(ctx, int64(discarded))
		s.logger.InfoContext(ctx, "series segmented",
			"ascending", c.AscendingLen,
			"descending", c.DescendingLen,
			"discarded", discarded,
			"peak_index", c.SourcePeakIndex,
			"descending_end", v.opts.DescendingEnd.String(),
		)
		return c, nil
	})
}

// Columns returns the canonical series column-wise
func (s *Series) Columns(ctx context.Context) (Columns, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return Columns{}, err
	}
	return c.Columns(), nil
}

// SampleCount returns the number of canonical samples
func (s *Series) SampleCount(ctx context.Context) (int, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, err
	}
	return c.Len(), nil
}

// TimeRange returns the first and last canonical times
func (s *Series) TimeRange(ctx context.Context) (start, end float64, err error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, 0, err
	}
	return c.Samples[0].Time, c.Samples[c.Len()-1].Time, nil
}

// PeakForceIndex returns the index of the maximum force in the canonical series
func (s *Series) PeakForceIndex(ctx context.Context) (int, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, err
	}
	return c.PeakIndex(), nil
}

// SourcePeakIndex returns the index of the maximum force in the truncated
// series before segmentation
func (s *Series) SourcePeakIndex(ctx context.Context) (int, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, err
	}
	return c.SourcePeakIndex, nil
}

// PeakForce returns the maximum force
func (s *Series) PeakForce(ctx context.Context) (float64, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, err
	}
	return c.Samples[c.PeakIndex()].Force, nil
}

// PeakForceTime returns the time of the maximum force
func (s *Series) PeakForceTime(ctx context.Context) (float64, error) {
	c, err := s.canonical(ctx, s.view())
	if err != nil {
		return 0, err
	}
	return c.Samples[c.PeakIndex()].Time, nil
}

// ForceAtTime returns force as a function of time; zero outside the time range
func (s *Series) ForceAtTime(ctx context.Context) (*Interpolator, error) {
	return s.interpolator(ctx, s.view(), ForceAtTimeName)
}

// TimeAtForce returns time as a function of force over the ascending portion
// up to the peak
func (s *Series) TimeAtForce(ctx context.Context) (*Interpolator, error) {
	return s.interpolator(ctx, s.view(), TimeAtForceName)
}

// DisplacementAtTime returns displacement as a function of time
func (s *Series) DisplacementAtTime(ctx context.Context) (*Interpolator, error) {
	return s.interpolator(ctx, s.view(), DisplacementAtTimeName)
}

// TimeAtDisplacement returns time as a function of displacement
func (s *Series) TimeAtDisplacement(ctx context.Context) (*Interpolator, error) {
	return s.interpolator(ctx, s.view(), TimeAtDisplacementName)
}

// Interpolator returns one of the interpolators by name
func (s *Series) Interpolator(ctx context.Context, name string) (*Interpolator, error) {
	return s.interpolator(ctx, s.view(), name)
}

func (s *Series) interpolator(ctx context.Context, v view, name string) (*Interpolator, error) {
	return memoize(ctx, s, v, "interp."+name, func(ctx context.Context) (*Interpolator, error) {
		c, err := s.canonical(ctx, v)
		if err != nil {
			return nil, err
		}
		in, err := buildInterpolator(c, name)
		if err != nil {
			s.logger.WarnContext(ctx, "interpolator unavailable", "name", name, "error", err)
			return nil, err
		}
		return in, nil
	})
}

// Resampled returns about ResampleCount samples spread over both portions
func (s *Series) Resampled(ctx context.Context) (Columns, error) {
	v := s.view()
	cols, err := memoize(ctx, s, v, keyResampled, func(ctx context.Context) (Columns, error) {
		c, err := s.canonical(ctx, v)
		if err != nil {
			return Columns{}, err
		}
		return Resample(c, c.PeakIndex(), v.opts.ResampleCount, v.opts.ResampleMode)
	})
	if err != nil {
		return Columns{}, err
	}
	return cols.clone(), nil
}

// Grid evaluates the interpolators on uniform grids of InterpolationPoints
func (s *Series) Grid(ctx context.Context) (Grid, error) {
	v := s.view()
	g, err := memoize(ctx, s, v, keyGrid, func(ctx context.Context) (Grid, error) {
		n := v.opts.InterpolationPoints
		forceAt, err := s.interpolator(ctx, v, ForceAtTimeName)
		if err != nil {
			return Grid{}, err
		}
		dispAt, err := s.interpolator(ctx, v, DisplacementAtTimeName)
		if err != nil {
			return Grid{}, err
		}
		timeAt, err := s.interpolator(ctx, v, TimeAtForceName)
		if err != nil {
			return Grid{}, err
		}

		g := Grid{Time: linspace(lo(forceAt), hi(forceAt), n)}
		if g.Force, err = forceAt.EvalAll(g.Time); err != nil {
			return Grid{}, err
		}
		if g.Displacement, err = dispAt.EvalAll(g.Time); err != nil {
			return Grid{}, err
		}
		g.AscendingForce = linspace(lo(timeAt), hi(timeAt), n)
		if g.AscendingTime, err = timeAt.EvalAll(g.AscendingForce); err != nil {
			return Grid{}, err
		}
		return g, nil
	})
	if err != nil {
		return Grid{}, err
	}
	return g.clone(), nil
}

// Summary returns the scalar results of the series
func (s *Series) Summary(ctx context.Context) (Summary, error) {
	v := s.view()
	return memoize(ctx, s, v, keySummary, func(ctx context.Context) (Summary, error) {
		raw, err := s.raw(ctx, v)
		if err != nil {
			return Summary{}, err
		}
		c, err := s.canonical(ctx, v)
		if err != nil {
			return Summary{}, err
		}

		peak := c.PeakIndex()
		maxDisp := argmax(c.Samples, func(x Sample) float64 { return x.Displacement })
		return Summary{
			RawCount:            len(raw),
			SampleCount:         c.Len(),
			AscendingCount:      c.AscendingLen,
			DescendingCount:     c.DescendingLen,
			DiscardedCount:      len(raw) - c.Len(),
			TimeStart:           c.Samples[0].Time,
			TimeEnd:             c.Samples[c.Len()-1].Time,
			PeakForce:           c.Samples[peak].Force,
			PeakForceTime:       c.Samples[peak].Time,
			PeakForceIndex:      peak,
			SourcePeakIndex:     c.SourcePeakIndex,
			DisplacementAtPeak:  c.Samples[peak].Displacement,
			MaxDisplacement:     c.Samples[maxDisp].Displacement,
			MaxDisplacementTime: c.Samples[maxDisp].Time,
		}, nil
	})
}

func lo(in *Interpolator) float64 {
	l, _ := in.Domain()
	return l
}

func hi(in *Interpolator) float64 {
	_, h := in.Domain()
	return h
}

func metricName(name string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("value", name))
}

func (c Columns) clone() Columns {
	return Columns{
		Time:         append([]float64(nil), c.Time...),
		Force:        append([]float64(nil), c.Force...),
		Displacement: append([]float64(nil), c.Displacement...),
	}
}

func (g Grid) clone() Grid {
	return Grid{
		Time:           append([]float64(nil), g.Time...),
		Force:          append([]float64(nil), g.Force...),
		Displacement:   append([]float64(nil), g.Displacement...),
		AscendingForce: append([]float64(nil), g.AscendingForce...),
		AscendingTime:  append([]float64(nil), g.AscendingTime...),
	}
}
