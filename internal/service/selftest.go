package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"corsproxy-go/internal/config"
	"corsproxy-go/internal/model"
)

// loopbackEnvelope is the union of the proxy's own success and error envelope
// fields, used to parse the response of the loopback call.
type loopbackEnvelope struct {
	Status      string `json:"status"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	StatusCode  int    `json:"status_code"`
	Error       string `json:"error"`
}

// SelfTestService exercises the proxy path end to end by calling the
// service's own proxy endpoint over the network. The loopback is intentional:
// it validates routing, translation, and serialization exactly as an external
// client would see them, so it must not be shortcut into an in-process call.
type SelfTestService struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSelfTestService creates a SelfTestService with its own loopback client.
func NewSelfTestService(cfg *config.Config, logger *slog.Logger) *SelfTestService {
	return &SelfTestService{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger: logger.With("component", "selftest_service"),
	}
}

// Run fetches testURL through the proxy endpoint at originBase and re-wraps
// the proxy's envelope into a TestResult. Outcomes:
//   - proxy envelope "success"  → proxy_status "working"
//   - proxy envelope "error"    → proxy_status "error"
//   - loopback call failed      → proxy_status "failed"
func (s *SelfTestService) Run(ctx context.Context, testURL, originBase string) *model.TestResult {
	proxyURL := ProxyURL(originBase, testURL)

	s.logger.Debug("self-test loopback", "proxy_url", proxyURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, http.NoBody)
	if err != nil {
		return failedResult(testURL, fmt.Errorf("build loopback request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return failedResult(testURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env loopbackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return failedResult(testURL, fmt.Errorf("parse loopback envelope: %w", err))
	}

	if env.Status != model.StatusSuccess {
		return &model.TestResult{
			Status:      model.StatusError,
			URL:         testURL,
			StatusCode:  env.StatusCode,
			ProxyStatus: model.ProxyError,
			Error:       env.Error,
		}
	}

	return &model.TestResult{
		Status:        model.StatusSuccess,
		URL:           testURL,
		ContentLength: len(env.Content),
		StatusCode:    env.StatusCode,
		ContentType:   env.ContentType,
		ProxyStatus:   model.ProxyWorking,
	}
}

// ProxyURL builds the loopback URL for fetching target through the proxy
// endpoint rooted at originBase.
func ProxyURL(originBase, target string) string {
	return strings.TrimSuffix(originBase, "/") + "/?url=" + url.QueryEscape(target)
}

func failedResult(testURL string, err error) *model.TestResult {
	return &model.TestResult{
		Status:      model.StatusError,
		URL:         testURL,
		ProxyStatus: model.ProxyFailed,
		Error:       err.Error(),
	}
}
