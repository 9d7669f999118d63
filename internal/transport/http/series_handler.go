package http

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"expsim/internal/deflection"
	apperrors "expsim/internal/errors"
)

// SeriesHandler serves the derived quantities of one series as JSON
type SeriesHandler struct {
	series       SeriesService
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// CanonicalResponse is the canonical series in column form
type CanonicalResponse struct {
	deflection.Columns
	AscendingLen    int `json:"ascending_len"`
	DescendingLen   int `json:"descending_len"`
	PeakIndex       int `json:"peak_index"`
	SourcePeakIndex int `json:"source_peak_index"`
	SourceLen       int `json:"source_len"`
}

// InterpolationResponse holds one or more evaluations of a named interpolator
type InterpolationResponse struct {
	Name   string     `json:"name"`
	Domain [2]float64 `json:"domain"`
	X      []float64  `json:"x"`
	Y      []float64  `json:"y"`
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(series SeriesService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *SeriesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesHandler{
		series:       series,
		logger:       logger.With(slog.String("component", "series_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the series routes
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/canonical", h.GetCanonical)
	r.Get("/resampled", h.GetResampled)
	r.Get("/grid", h.GetGrid)
	r.Get("/interpolate/{name}", h.Interpolate)

	return r
}

// GetSummary handles GET /api/series/summary
func (h *SeriesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.series.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetCanonical handles GET /api/series/canonical
func (h *SeriesHandler) GetCanonical(w http.ResponseWriter, r *http.Request) {
	c, err := h.series.Canonical(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, CanonicalResponse{
		Columns:         c.Columns(),
		AscendingLen:    c.AscendingLen,
		DescendingLen:   c.DescendingLen,
		PeakIndex:       c.PeakIndex(),
		SourcePeakIndex: c.SourcePeakIndex,
		SourceLen:       c.SourceLen,
	})
}

// GetResampled handles GET /api/series/resampled
func (h *SeriesHandler) GetResampled(w http.ResponseWriter, r *http.Request) {
	cols, err := h.series.Resampled(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cols)
}

// GetGrid handles GET /api/series/grid
func (h *SeriesHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	g, err := h.series.Grid(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, g)
}

// Interpolate handles GET /api/series/interpolate/{name}?x=...
// The x parameter may repeat; every value must lie inside the domain.
func (h *SeriesHandler) Interpolate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["x"]
	if len(raw) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.NewValidationError("query parameter x is required", nil))
		return
	}
	xs := make([]float64, len(raw))
	for i, s := range raw {
		x, err := cast.ToFloat64E(s)
		if err != nil {
			h.errorHandler.HandleError(w, r,
				apperrors.NewValidationError("query parameter x is not a number", err).WithContext("x", s))
			return
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			h.errorHandler.HandleError(w, r,
				apperrors.NewValidationError("query parameter x is not a finite number", nil).WithContext("x", s))
			return
		}
		xs[i] = x
	}

	in, err := h.series.Interpolator(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	ys, err := in.EvalAll(xs)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	lo, hi := in.Domain()
	h.logger.DebugContext(r.Context(), "interpolated",
		slog.String("name", in.Name()),
		slog.Int("points", len(xs)))

	render.JSON(w, r, InterpolationResponse{
		Name:   in.Name(),
		Domain: [2]float64{lo, hi},
		X:      xs,
		Y:      ys,
	})
}
