package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/server/responses"
)

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	startTime    time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(startTime time.Time, logger *slog.Logger) *MonitoringHandlers {
	return &MonitoringHandlers{
		startTime:    startTime,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorAdapter.WriteErrorResponse(w, r, methodNotAllowed(r, http.MethodGet))
		return
	}

	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, encodeFailure(r, err))
	}
}

func methodNotAllowed(r *http.Request, allowed string) error {
	return errors.New(errors.KindValidation).
		Field("method").
		Message("invalid HTTP method").
		WithContext(r.Context()).
		With("method", r.Method).
		With("allowed_method", allowed).
		Build()
}

func encodeFailure(r *http.Request, err error) error {
	return errors.New(errors.KindInternal).
		Message("failed to write response").
		Source(err).
		WithContext(r.Context()).
		Build()
}
