package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"corsproxy-go/internal/config"
	"corsproxy-go/internal/model"
	"corsproxy-go/internal/service"
)

// selfTestRequest is the expected body of POST /test.
type selfTestRequest struct {
	URL string `json:"url"`
}

// SelfTestHandler serves the self-test endpoint.
type SelfTestHandler struct {
	selftest *service.SelfTestService
	cfg      *config.Config
	logger   *slog.Logger
}

// NewSelfTestHandler creates a SelfTestHandler.
func NewSelfTestHandler(st *service.SelfTestService, cfg *config.Config, logger *slog.Logger) *SelfTestHandler {
	return &SelfTestHandler{
		selftest: st,
		cfg:      cfg,
		logger:   logger.With("component", "selftest_handler"),
	}
}

// Handle serves POST /test. The body must be JSON with a url field; the
// handler then fetches that URL through the service's own proxy endpoint and
// re-wraps the envelope into a TestResult.
func (h *SelfTestHandler) Handle(c echo.Context) error {
	var req selfTestRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		h.logger.Error("self-test body parse failed", "err", err)
		return c.JSONPretty(http.StatusInternalServerError, model.NewErrorReply(err.Error()), jsonIndent)
	}

	if req.URL == "" {
		return c.JSONPretty(http.StatusBadRequest, model.NewErrorReply("Missing 'url' parameter in request body"), jsonIndent)
	}

	result := h.selftest.Run(c.Request().Context(), req.URL, h.originBase(c))
	return c.JSONPretty(http.StatusOK, result, jsonIndent)
}

// originBase resolves the base URL for the loopback call: the configured
// public URL when set, otherwise the inbound request's scheme and host.
func (h *SelfTestHandler) originBase(c echo.Context) string {
	if h.cfg.Server.PublicURL != "" {
		return h.cfg.Server.PublicURL
	}
	return c.Scheme() + "://" + c.Request().Host
}
