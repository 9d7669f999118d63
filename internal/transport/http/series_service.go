package http

import (
	"context"

	"expsim/internal/deflection"
)

// SeriesService is the read side of a deflection.Series used by the handlers
type SeriesService interface {
	Summary(ctx context.Context) (deflection.Summary, error)
	Canonical(ctx context.Context) (*deflection.Canonical, error)
	Resampled(ctx context.Context) (deflection.Columns, error)
	Grid(ctx context.Context) (deflection.Grid, error)
	Interpolator(ctx context.Context, name string) (*deflection.Interpolator, error)
	Version() uint64
}

var _ SeriesService = (*deflection.Series)(nil)
