package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestResponseHeaders(t *testing.T) {
	e := echo.New()
	e.Use(ResponseHeaders())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	tests := []struct {
		header string
		want   string
	}{
		{"Access-Control-Allow-Origin", "*"},
		{"Cache-Control", "no-cache, no-store, must-revalidate"},
		{"X-Content-Type-Options", "nosniff"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := rec.Header().Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestResponseHeaders_StripsHopByHop(t *testing.T) {
	e := echo.New()
	e.Use(ResponseHeaders())

	var gotConnection string
	e.GET("/", func(c echo.Context) error {
		gotConnection = c.Request().Header.Get("Keep-Alive")
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Keep-Alive", "timeout=5")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if gotConnection != "" {
		t.Errorf("Keep-Alive header = %q, want stripped", gotConnection)
	}
}
