package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"corsproxy-go/internal/model"
)

// Version is a string type for dependency injection of the build version.
type Version string

// StatusHandler serves the status and liveness endpoints.
type StatusHandler struct {
	version Version
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(v Version) *StatusHandler {
	return &StatusHandler{version: v}
}

// Status serves POST /status with the static operational envelope.
func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSONPretty(http.StatusOK, &model.ServiceStatus{
		Status:    "running",
		Version:   string(h.version),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, jsonIndent)
}

// Healthz returns a simple OK response for liveness probes.
func (h *StatusHandler) Healthz(c echo.Context) error {
	return c.JSONPretty(http.StatusOK, map[string]string{
		"status": "ok",
	}, jsonIndent)
}
