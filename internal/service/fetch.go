// Package service implements the fetch translation and self-test logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"corsproxy-go/internal/client"
	"corsproxy-go/internal/model"
)

// FetchService performs the upstream fetch for a proxy request and translates
// its outcome. Transport failures and non-success upstream statuses are
// deliberately collapsed into one error kind; the handler wraps any returned
// error into a FetchError envelope with the message verbatim.
type FetchService struct {
	client *client.UpstreamClient
	logger *slog.Logger
}

// NewFetchService creates a FetchService.
func NewFetchService(c *client.UpstreamClient, logger *slog.Logger) *FetchService {
	return &FetchService{
		client: c,
		logger: logger.With("component", "fetch_service"),
	}
}

// Fetch issues exactly one outbound GET against targetURL and returns a
// success envelope. Any failure, whether transport-level or a non-2xx/3xx
// upstream status, is returned as an error.
func (s *FetchService) Fetch(ctx context.Context, targetURL string) (*model.FetchSuccess, error) {
	page, err := s.client.Fetch(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	if !page.OK {
		return nil, fmt.Errorf("upstream returned status %d", page.StatusCode)
	}

	s.logger.Debug("fetch complete",
		"url", targetURL,
		"status", page.StatusCode,
		"bytes", len(page.Body),
	)

	return model.NewFetchSuccess(targetURL, page.Body, page.ContentType, page.StatusCode, page.Headers), nil
}
