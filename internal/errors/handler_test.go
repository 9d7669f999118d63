package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expsim/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	tests := []struct {
		name         string
		err          error
		expectStatus int
		expectType   string
		expectCode   string
	}{
		{"domain", NewDomainError("time_at_force", 11, 0, 10), http.StatusBadRequest, TypeDomain, "DOMAIN"},
		{"sample count", NewInvalidSampleCountError(1), http.StatusBadRequest, TypeSampleCount, "INVALID_SAMPLE_COUNT"},
		{"not found", NewFileNotFoundError("/x.csv", nil), http.StatusNotFound, TypeNotFound, "NOT_FOUND"},
		{"data format", NewDataFormatError(2, "bad", nil), http.StatusUnprocessableEntity, TypeDataFormat, "PARSING"},
		{"empty series", NewEmptySeriesError("none"), http.StatusUnprocessableEntity, TypeEmptySeries, "EMPTY_SERIES"},
		{"invalid series", NewInvalidSeriesError("bad"), http.StatusUnprocessableEntity, TypeInvalidSeries, "INVALID_SERIES"},
		{"non monotonic", NewNonMonotonicError("f", 2), http.StatusUnprocessableEntity, TypeNonMonotonic, "NON_MONOTONIC"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, TypeInternal, ""},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/series/summary", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.expectStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectType, body["type"])
			assert.Equal(t, float64(tt.expectStatus), body["status"])
			if tt.expectCode != "" {
				assert.Equal(t, tt.expectCode, body["error_code"])
			}
		})
	}
}

func TestErrorHandler_LogsErrorType(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/api/series/interpolate/time-at-force?x=12", nil)
	handler.HandleError(httptest.NewRecorder(), req, fmt.Errorf("evaluate: %w", NewDomainError("time_at_force", 12, 0, 10)))

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
	assert.True(t, logs.ContainsAttr("error_type", "DOMAIN"))
}

func TestErrorHandler_NilError(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_NotFound(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeNotFound)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeDomain, "Bad Request", "outside", "/p").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.Equal(t, "outside", body["detail"])
	assert.Equal(t, "/p", body["instance"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	rec := httptest.NewRecorder()

	handler.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/series/grid", nil), "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "/api/series/grid", body["instance"])
}
