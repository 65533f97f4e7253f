package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"corsproxy-go/internal/model"
	"corsproxy-go/internal/service"
)

// jsonIndent is the indentation used for every JSON response body.
const jsonIndent = "  "

// ProxyHandler serves the proxy endpoint: one upstream fetch per request,
// translated into a JSON envelope.
type ProxyHandler struct {
	fetch  *service.FetchService
	logger *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(fetch *service.FetchService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		fetch:  fetch,
		logger: logger.With("component", "proxy_handler"),
	}
}

// Handle serves GET /. With a url query parameter it fetches that URL and
// returns the result envelope; without one it returns the usage envelope.
// All fetch failures produce a 500 with the error envelope; the envelope's
// own status_code is likewise fixed at 500 regardless of cause.
func (h *ProxyHandler) Handle(c echo.Context) error {
	targetURL := c.QueryParam("url")
	if targetURL == "" {
		return c.JSONPretty(http.StatusOK, usage(), jsonIndent)
	}

	result, err := h.fetch.Fetch(c.Request().Context(), targetURL)
	if err != nil {
		h.logger.Error("fetch failed", "url", targetURL, "err", err)
		return c.JSONPretty(http.StatusInternalServerError, model.NewFetchError(targetURL, err.Error()), jsonIndent)
	}

	return c.JSONPretty(http.StatusOK, result, jsonIndent)
}

func usage() *model.Usage {
	return &model.Usage{
		Status:  model.StatusSuccess,
		Message: "Pass a url query parameter to fetch a page through the proxy.",
		Example: "/?url=https%3A%2F%2Fexample.com",
		Endpoints: map[string]string{
			"GET /?url=<encoded URL>": "fetch the URL server-side and return its content in a JSON envelope",
			"POST /test":              "fetch a URL through the proxy's own endpoint and report the result",
			"POST /status":            "operational status",
		},
	}
}
