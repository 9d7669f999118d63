package deflection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "expsim/internal/errors"
)

func TestInterpolatorEval(t *testing.T) {
	in, err := NewInterpolator("test", []float64{0, 1, 3}, []float64{10, 20, 0})
	require.NoError(t, err)

	tests := []struct {
		x    float64
		want float64
	}{
		{0, 10},
		{0.5, 15},
		{1, 20},
		{2, 10},
		{3, 0},
	}
	for _, tt := range tests {
		got, err := in.Eval(tt.x)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "x=%g", tt.x)
	}

	all, err := in.EvalAll([]float64{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10}, all)
}

func TestInterpolatorBounds(t *testing.T) {
	xs := []float64{1, 2}
	ys := []float64{5, 6}

	strict, err := NewInterpolator("strict", xs, ys)
	require.NoError(t, err)
	filled, err := NewInterpolator("filled", xs, ys, WithFill(0))
	require.NoError(t, err)

	for _, x := range []float64{0.999, 2.001, math.NaN(), math.Inf(1)} {
		_, err := strict.Eval(x)
		assert.ErrorIs(t, err, apperrors.ErrDomain, "x=%g", x)

		got, err := filled.Eval(x)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	}

	_, err = strict.EvalAll([]float64{1.5, 3})
	assert.ErrorIs(t, err, apperrors.ErrDomain)
}

func TestInterpolatorDomainErrorContext(t *testing.T) {
	in, err := NewInterpolator(TimeAtForceName, []float64{0, 10}, []float64{0, 5})
	require.NoError(t, err)

	_, err = in.Eval(12)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 12.0, appErr.Context["x"])
	assert.Equal(t, 0.0, appErr.Context["lo"])
	assert.Equal(t, 10.0, appErr.Context["hi"])
	assert.Contains(t, appErr.Error(), TimeAtForceName)
}

func TestNewInterpolatorValidation(t *testing.T) {
	tests := []struct {
		name      string
		xs, ys    []float64
		wantErr   error
		wantIndex int
	}{
		{name: "empty", wantErr: apperrors.ErrEmptySeries},
		{name: "length mismatch", xs: []float64{1, 2}, ys: []float64{1}, wantErr: apperrors.ErrValidation},
		{name: "repeated x", xs: []float64{0, 1, 1, 2}, ys: []float64{0, 1, 2, 3}, wantErr: apperrors.ErrNonMonotonicInput, wantIndex: 2},
		{name: "turns back", xs: []float64{0, 1, 2, 1.5}, ys: []float64{0, 1, 2, 3}, wantErr: apperrors.ErrNonMonotonicInput, wantIndex: 3},
		{name: "decreasing then flat", xs: []float64{3, 2, 2}, ys: []float64{0, 1, 2}, wantErr: apperrors.ErrNonMonotonicInput, wantIndex: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInterpolator(tt.name, tt.xs, tt.ys)
			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantErr == apperrors.ErrNonMonotonicInput {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantIndex, appErr.Context["index"])
			}
		})
	}
}

func TestInterpolatorDecreasingInput(t *testing.T) {
	in, err := NewInterpolator("decreasing", []float64{3, 2, 0}, []float64{30, 20, 0})
	require.NoError(t, err)

	lo, hi := in.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 3.0, hi)

	got, err := in.Eval(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-12)
}

func TestInterpolatorSinglePoint(t *testing.T) {
	in, err := NewInterpolator("single", []float64{4}, []float64{7})
	require.NoError(t, err)

	got, err := in.Eval(4)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	_, err = in.Eval(4.5)
	assert.ErrorIs(t, err, apperrors.ErrDomain)
}

func TestInterpolatorCopiesInput(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	in, err := NewInterpolator("copy", xs, ys)
	require.NoError(t, err)

	ys[1] = 100
	got, err := in.Eval(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestLinspace(t *testing.T) {
	assert.Nil(t, linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, linspace(2, 5, 1))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, linspace(0, 1, 5))

	grid := linspace(0.1, 0.7, 7)
	assert.Equal(t, 0.7, grid[len(grid)-1])
}
