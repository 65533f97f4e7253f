// Package client provides the outbound HTTP fetcher for target URLs.
package client

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"corsproxy-go/internal/config"
	"corsproxy-go/internal/metrics"
	"corsproxy-go/internal/model"
)

// browserHeaders is the fixed header set presented to upstream servers so the
// fetch looks like an ordinary browser navigation. User-Agent comes from
// config; Accept-Encoding is mirrored here so the decoder below must handle
// every encoding we advertise.
var browserHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Accept-Encoding": "gzip, deflate, br",
}

// UpstreamClient fetches target URLs on behalf of proxy requests.
type UpstreamClient struct {
	httpClient *http.Client
	userAgent  string
	cacheHint  string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		// Advertising Accept-Encoding ourselves means the transport will not
		// decode response bodies; decodeBody below does.
		DisableCompression: true,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		userAgent: cfg.Upstream.UserAgent,
		cacheHint: fmt.Sprintf("max-age=%d", cfg.Upstream.CacheTTLSeconds),
		logger:    logger.With("component", "upstream_client"),
		metrics:   m,
	}
}

// Fetch issues a single GET against the target URL and returns the decoded
// page. A non-nil error means the transport failed (DNS, refused connection,
// timeout) or the body could not be read; status-level failures are reported
// through the page's OK flag, not as errors.
func (c *UpstreamClient) Fetch(ctx context.Context, targetURL string) (*model.UpstreamPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Cache-Control", c.cacheHint)

	c.logger.Debug("upstream fetch", "url", targetURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues("error").Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues("ok").Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	return &model.UpstreamPage{
		StatusCode:  resp.StatusCode,
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 400,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
		Headers:     flattenHeaders(resp.Header),
	}, nil
}

// decodeBody reads the full response body, reversing any Content-Encoding we
// advertised in Accept-Encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "deflate":
		// The HTTP deflate coding is a zlib stream (RFC 9110 §8.4.1.2),
		// but some servers send raw DEFLATE. Sniff the zlib header and
		// accept both, the way browsers do.
		body := bufio.NewReader(resp.Body)
		if head, peekErr := body.Peek(2); peekErr == nil && isZlibHeader(head) {
			zr, err := zlib.NewReader(body)
			if err != nil {
				return nil, fmt.Errorf("deflate: %w", err)
			}
			defer func() { _ = zr.Close() }()
			reader = zr
		} else {
			fl := flate.NewReader(body)
			defer func() { _ = fl.Close() }()
			reader = fl
		}
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(reader)
}

// isZlibHeader reports whether head opens a zlib stream: compression method
// 8 (deflate) and a CMF/FLG pair that passes the header checksum.
func isZlibHeader(head []byte) bool {
	return len(head) == 2 && head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0
}

// flattenHeaders snapshots response headers into a flat map; multi-valued
// headers are joined with ", ".
func flattenHeaders(src http.Header) map[string]string {
	dst := make(map[string]string, len(src))
	for key, vals := range src {
		dst[key] = strings.Join(vals, ", ")
	}
	return dst
}
