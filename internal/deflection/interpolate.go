package deflection

import (
	"math"
	"sort"

	apperrors "expsim/internal/errors"
)

// Interpolator names used in errors, logs and the HTTP API
const (
	ForceAtTimeName        = "force-at-time"
	TimeAtForceName        = "time-at-force"
	DisplacementAtTimeName = "displacement-at-time"
	TimeAtDisplacementName = "time-at-displacement"
)

// Interpolator is a piecewise-linear function through a set of points with
// strictly monotonic x. It is immutable and safe for concurrent use.
type Interpolator struct {
	name    string
	xs      []float64
	ys      []float64
	hasFill bool
	fill    float64
}

// InterpolatorOption configures out-of-domain behaviour
type InterpolatorOption func(*Interpolator)

// WithFill returns v for queries outside the domain instead of an error
func WithFill(v float64) InterpolatorOption {
	return func(in *Interpolator) {
		in.hasFill = true
		in.fill = v
	}
}

// NewInterpolator builds an interpolator through (xs[i], ys[i]). The x values
// must be strictly increasing or strictly decreasing; decreasing input is
// stored reversed.
func NewInterpolator(name string, xs, ys []float64, opts ...InterpolatorOption) (*Interpolator, error) {
	if len(xs) != len(ys) {
		return nil, apperrors.NewValidationError("interpolator "+name+": x and y lengths differ", nil).
			WithContext("x_len", len(xs)).
			WithContext("y_len", len(ys))
	}
	if len(xs) == 0 {
		return nil, apperrors.NewEmptySeriesError("interpolator " + name + ": no points")
	}

	in := &Interpolator{
		name: name,
		xs:   append([]float64(nil), xs...),
		ys:   append([]float64(nil), ys...),
	}
	for _, opt := range opts {
		opt(in)
	}

	if len(in.xs) > 1 && in.xs[1] < in.xs[0] {
		if i := firstNotBelow(in.xs); i >= 0 {
			return nil, apperrors.NewNonMonotonicError(name, i)
		}
		reverse(in.xs)
		reverse(in.ys)
		return in, nil
	}
	if i := firstNotAbove(in.xs); i >= 0 {
		return nil, apperrors.NewNonMonotonicError(name, i)
	}
	return in, nil
}

// Name returns the interpolator name
func (in *Interpolator) Name() string {
	return in.name
}

// Domain returns the smallest and largest x
func (in *Interpolator) Domain() (lo, hi float64) {
	return in.xs[0], in.xs[len(in.xs)-1]
}

// Len returns the number of points
func (in *Interpolator) Len() int {
	return len(in.xs)
}

// Eval returns the interpolated value at x
func (in *Interpolator) Eval(x float64) (float64, error) {
	lo, hi := in.Domain()
	if math.IsNaN(x) || x < lo || x > hi {
		if in.hasFill {
			return in.fill, nil
		}
		return 0, apperrors.NewDomainError(in.name, x, lo, hi)
	}

	i := sort.SearchFloat64s(in.xs, x)
	if in.xs[i] == x {
		return in.ys[i], nil
	}
	x0, x1 := in.xs[i-1], in.xs[i]
	y0, y1 := in.ys[i-1], in.ys[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0), nil
}

// EvalAll evaluates every x and stops at the first error
func (in *Interpolator) EvalAll(xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		y, err := in.Eval(x)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// firstNotAbove returns the first index i with xs[i] <= xs[i-1], or -1
func firstNotAbove(xs []float64) int {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return i
		}
	}
	return -1
}

// firstNotBelow returns the first index i with xs[i] >= xs[i-1], or -1
func firstNotBelow(xs []float64) int {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] < xs[i-1]) {
			return i
		}
	}
	return -1
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// buildInterpolator builds the named interpolator over a canonical series
func buildInterpolator(c *Canonical, name string) (*Interpolator, error) {
	cols := c.Columns()
	switch name {
	case ForceAtTimeName:
		return NewInterpolator(name, cols.Time, cols.Force, WithFill(0))
	case TimeAtForceName:
		peak := c.PeakIndex()
		return NewInterpolator(name, cols.Force[:peak+1], cols.Time[:peak+1])
	case DisplacementAtTimeName:
		return NewInterpolator(name, cols.Time, cols.Displacement)
	case TimeAtDisplacementName:
		return NewInterpolator(name, cols.Displacement, cols.Time)
	default:
		return nil, apperrors.NewValidationError("unknown interpolator "+name, nil)
	}
}

// InterpolatorNames lists the interpolators a series provides
func InterpolatorNames() []string {
	return []string{ForceAtTimeName, TimeAtForceName, DisplacementAtTimeName, TimeAtDisplacementName}
}

// linspace returns n evenly spaced values from lo to hi inclusive
func linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
