package deflection

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "expsim/internal/errors"
)

// Golden tests pin the results for small hand-checked traces

// scenarioCSV is a noisy loading curve with force drops at t=2 and t=4, the
// peak at t=5 and one unloading sample.
const scenarioCSV = "time;force;displacement\n" +
	"0,0;0,0;0,0\n" +
	"1,0;-5,0;1,0\n" +
	"2,0;-3,0;2,0\n" +
	"3,0;-8,0;3,0\n" +
	"4,0;-2,0;4,0\n" +
	"5,0;-10,0;5,0\n" +
	"6,0;-1,0;6,0\n"

func scenarioSamples() []Sample {
	forces := []float64{0, 5, 3, 8, 2, 10, 1}
	samples := make([]Sample, len(forces))
	for i, f := range forces {
		samples[i] = Sample{Time: float64(i), Force: f, Displacement: float64(i)}
	}
	return samples
}

func newScenarioSeries(t *testing.T, mutate func(*Options)) *Series {
	t.Helper()
	opts := DefaultOptions()
	opts.Stride = 1
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts, WithSource(func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(scenarioCSV)), nil
	}))
	require.NoError(t, err)
	return s
}

func forcesOf(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Force
	}
	return out
}

func timesOf(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Time
	}
	return out
}

func TestGoldenSegmentDiscardsNoisyDrops(t *testing.T) {
	c, err := Segment(scenarioSamples(), FullRange)
	require.NoError(t, err)

	assert.Equal(t, 5, c.SourcePeakIndex)
	assert.Equal(t, 7, c.SourceLen)
	assert.Equal(t, []float64{0, 1, 3}, timesOf(c.Ascending()))
	assert.Equal(t, []float64{5, 6}, timesOf(c.Descending()))
	assert.Equal(t, []float64{0, 5, 8, 10, 1}, forcesOf(c.Samples))
	assert.Equal(t, 3, c.PeakIndex())
	assert.Equal(t, c.Len(), c.AscendingLen+c.DescendingLen)
}

func TestGoldenStrideAndSignFlip(t *testing.T) {
	csv := "t;F;w\n" +
		"0,0;0,0;0,0\n" +
		"1,0;-1,0;0,1\n" +
		"2,0;-5,0;0,2\n" +
		"3,0;-4,0;0,3\n" +
		"4,0;-7,0;0,4\n" +
		"5,0;-6,0;0,5\n"

	samples, err := LoadFromReader(context.Background(), strings.NewReader(csv), loaderOptions(2, 0))
	require.NoError(t, err)

	assert.Len(t, samples, 3)
	assert.Equal(t, []float64{0, 2, 4}, timesOf(samples))
	assert.Equal(t, 5.0, samples[1].Force)
	assert.Equal(t, 7.0, samples[2].Force)
}

func TestGoldenSeriesScalars(t *testing.T) {
	ctx := context.Background()
	s := newScenarioSeries(t, nil)

	peak, err := s.PeakForce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, peak)

	peakTime, err := s.PeakForceTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, peakTime)

	peakIndex, err := s.PeakForceIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, peakIndex)

	sourcePeak, err := s.SourcePeakIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, sourcePeak)

	n, err := s.SampleCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	start, end, err := s.TimeRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 6.0, end)

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		RawCount:            7,
		SampleCount:         5,
		AscendingCount:      3,
		DescendingCount:     2,
		DiscardedCount:      2,
		TimeStart:           0,
		TimeEnd:             6,
		PeakForce:           10,
		PeakForceTime:       5,
		PeakForceIndex:      3,
		SourcePeakIndex:     5,
		DisplacementAtPeak:  5,
		MaxDisplacement:     6,
		MaxDisplacementTime: 6,
	}, summary)
}

func TestGoldenInterpolators(t *testing.T) {
	ctx := context.Background()
	s := newScenarioSeries(t, nil)

	forceAt, err := s.ForceAtTime(ctx)
	require.NoError(t, err)
	timeAt, err := s.TimeAtForce(ctx)
	require.NoError(t, err)
	dispAt, err := s.DisplacementAtTime(ctx)
	require.NoError(t, err)
	timeAtDisp, err := s.TimeAtDisplacement(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   *Interpolator
		x    float64
		want float64
	}{
		{"force between samples", forceAt, 4, 9},
		{"force at sample", forceAt, 3, 8},
		{"force before start is zero", forceAt, -1, 0},
		{"force after end is zero", forceAt, 7, 0},
		{"time at force", timeAt, 6.5, 2},
		{"time at peak force", timeAt, 10, 5},
		{"displacement at time", dispAt, 2, 2},
		{"time at displacement", timeAtDisp, 5.5, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Eval(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	lo, hi := timeAt.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)
}

func TestGoldenTimeAtForceOutsideDomain(t *testing.T) {
	s := newScenarioSeries(t, nil)
	timeAt, err := s.TimeAtForce(context.Background())
	require.NoError(t, err)

	for _, f := range []float64{-0.5, 10.5} {
		_, err := timeAt.Eval(f)
		assert.ErrorIs(t, err, apperrors.ErrDomain, "force %g", f)
	}
}

func TestGoldenResampleRejectsSingleSample(t *testing.T) {
	c, err := Segment(scenarioSamples(), FullRange)
	require.NoError(t, err)

	_, err = Resample(c, c.PeakIndex(), 1, Proportional)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSampleCount)

	_, err = Resample(c, c.PeakIndex(), 1, Uniform)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSampleCount)
}

func TestGoldenGridAndResampled(t *testing.T) {
	ctx := context.Background()
	s := newScenarioSeries(t, func(o *Options) {
		o.InterpolationPoints = 3
		o.ResampleCount = 3
	})

	grid, err := s.Grid(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 6}, grid.Time)
	assert.Equal(t, []float64{0, 8, 1}, grid.Force)
	assert.Equal(t, []float64{0, 3, 6}, grid.Displacement)
	assert.Equal(t, []float64{0, 5, 10}, grid.AscendingForce)
	assert.Equal(t, []float64{0, 1, 5}, grid.AscendingTime)

	resampled, err := s.Resampled(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 5}, resampled.Time)
	assert.Equal(t, []float64{0, 8, 10}, resampled.Force)
}
