package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	version string
	series  SeriesService
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	SeriesVersion uint64    `json:"series_version"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, series SeriesService) *HealthHandler {
	return &HealthHandler{version: version, series: series}
}

// Healthz handles GET /healthz. It never touches the input file.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:        "ok",
		Version:       h.version,
		SeriesVersion: h.series.Version(),
		Timestamp:     time.Now().UTC(),
	})
}
