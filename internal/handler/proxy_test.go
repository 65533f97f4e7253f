package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"corsproxy-go/internal/client"
	"corsproxy-go/internal/config"
	"corsproxy-go/internal/middleware"
	"corsproxy-go/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.UpstreamConfig{
			TimeoutSeconds:  10,
			IdleConnections: 10,
			CacheTTLSeconds: 300,
			UserAgent:       "Mozilla/5.0 (test)",
		},
	}
}

// newTestApp builds an echo instance with the same middleware and routes the
// real server uses.
func newTestApp(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := client.NewUpstreamClient(cfg, logger, nil)
	fetch := service.NewFetchService(uc, logger)
	selftest := service.NewSelfTestService(cfg, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = HTTPErrorHandler(logger)
	e.Use(middleware.ResponseHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxAge:       86400,
	}))

	RegisterRoutes(e,
		NewProxyHandler(fetch, logger),
		NewSelfTestHandler(selftest, cfg, logger),
		NewStatusHandler("1.0.0"),
	)
	return e
}

func TestProxy_FetchSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>remote</html>"))
	}))
	defer upstream.Close()

	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/?url="+strings.ReplaceAll(upstream.URL, ":", "%3A"), http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		Status      string            `json:"status"`
		URL         string            `json:"url"`
		Content     string            `json:"content"`
		ContentType string            `json:"content_type"`
		StatusCode  int               `json:"status_code"`
		Headers     map[string]string `json:"headers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "success" {
		t.Errorf("status = %q, want %q", body.Status, "success")
	}
	if body.Content != "<html>remote</html>" {
		t.Errorf("content = %q, want %q", body.Content, "<html>remote</html>")
	}
	if body.ContentType != "text/html" {
		t.Errorf("content_type = %q, want %q", body.ContentType, "text/html")
	}
	if body.StatusCode != http.StatusOK {
		t.Errorf("status_code = %d, want %d", body.StatusCode, http.StatusOK)
	}
	if len(body.Headers) == 0 {
		t.Error("headers snapshot should not be empty")
	}
}

func TestProxy_FetchFailure(t *testing.T) {
	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/?url=http%3A%2F%2F127.0.0.1%3A1%2F", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body struct {
		Status     string `json:"status"`
		URL        string `json:"url"`
		Error      string `json:"error"`
		StatusCode int    `json:"status_code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "error" {
		t.Errorf("status = %q, want %q", body.Status, "error")
	}
	if body.StatusCode != 500 {
		t.Errorf("status_code = %d, want fixed 500", body.StatusCode)
	}
	if body.Error == "" {
		t.Error("error message should not be empty")
	}
}

func TestProxy_UpstreamErrorStatusCollapses(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/?url="+strings.ReplaceAll(upstream.URL, ":", "%3A"), http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d (all upstream failures collapse)", rec.Code, http.StatusInternalServerError)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "error" {
		t.Errorf("status = %v, want %q", body["status"], "error")
	}
}

func TestProxy_Usage(t *testing.T) {
	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "https%3A%2F%2Fexample.com") {
		t.Errorf("usage body should contain the encoded example URL; got: %s", rec.Body.String())
	}

	var body struct {
		Example   string            `json:"example"`
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Example == "" {
		t.Error("example field should be present")
	}
	if len(body.Endpoints) == 0 {
		t.Error("endpoints list should be present")
	}
}

func TestProxy_ContractHeaders(t *testing.T) {
	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-cache, no-store, must-revalidate")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestProxy_PrettyPrintedJSON(t *testing.T) {
	e := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "\n  \"") {
		t.Errorf("body should be pretty-printed with 2-space indent; got: %s", rec.Body.String())
	}
}
