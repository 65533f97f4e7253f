package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"corsproxy-go/internal/model"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, proxy *ProxyHandler, selftest *SelfTestHandler, status *StatusHandler) {
	e.GET("/", proxy.Handle)
	e.POST("/test", selftest.Handle)
	e.POST("/status", status.Status)
	e.GET("/healthz", status.Healthz)
}

// HTTPErrorHandler translates routing failures into the JSON error envelope
// the rest of the API uses. Disallowed methods get 405; any unmatched GET or
// POST path gets 404 (echo reports POST on a GET-only path as 405, but the
// API contract treats every unknown POST path as not found).
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}

		method := c.Request().Method
		switch {
		case method != http.MethodGet && method != http.MethodPost && method != http.MethodOptions:
			code = http.StatusMethodNotAllowed
			message = "Method not allowed"
		case code == http.StatusNotFound || code == http.StatusMethodNotAllowed:
			code = http.StatusNotFound
			message = "Endpoint not found"
		}

		logger.Error("request error",
			"method", method,
			"path", c.Request().URL.Path,
			"status", code,
			"err", err,
		)

		if jsonErr := c.JSONPretty(code, model.NewErrorReply(message), jsonIndent); jsonErr != nil {
			logger.Error("writing error response", "err", jsonErr)
		}
	}
}
