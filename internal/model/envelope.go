// Package model defines the JSON envelopes returned by the proxy.
package model

// Status discriminator values carried by every envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Self-test proxy_status values.
const (
	ProxyWorking = "working"
	ProxyError   = "error"
	ProxyFailed  = "failed"
)

// FetchSuccess is the envelope for a completed upstream fetch. The headers
// map is a flat snapshot of the upstream response headers; status_code echoes
// the upstream status.
type FetchSuccess struct {
	Status      string            `json:"status"`
	URL         string            `json:"url"`
	Content     string            `json:"content"`
	ContentType string            `json:"content_type"`
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers"`
}

// FetchError is the envelope for any failed fetch. All failure causes
// (transport errors and non-success upstream statuses) collapse into this one
// shape with StatusCode fixed at 500.
type FetchError struct {
	Status     string `json:"status"`
	URL        string `json:"url"`
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// NewFetchSuccess builds a success envelope for the given upstream page.
func NewFetchSuccess(url, content, contentType string, statusCode int, headers map[string]string) *FetchSuccess {
	return &FetchSuccess{
		Status:      StatusSuccess,
		URL:         url,
		Content:     content,
		ContentType: contentType,
		StatusCode:  statusCode,
		Headers:     headers,
	}
}

// NewFetchError builds an error envelope carrying the failure message verbatim.
func NewFetchError(url, message string) *FetchError {
	return &FetchError{
		Status:     StatusError,
		URL:        url,
		Error:      message,
		StatusCode: 500,
	}
}

// TestResult is the envelope produced by the self-test endpoint, re-wrapping
// the proxy's own envelope after a loopback call.
type TestResult struct {
	Status        string `json:"status"`
	URL           string `json:"url"`
	ContentLength int    `json:"content_length"`
	StatusCode    int    `json:"status_code"`
	ContentType   string `json:"content_type,omitempty"`
	ProxyStatus   string `json:"proxy_status"`
	Error         string `json:"error,omitempty"`
}

// Usage is the help envelope returned by GET / when no url parameter is given.
type Usage struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Example   string            `json:"example"`
	Endpoints map[string]string `json:"endpoints"`
}

// ServiceStatus is the static operational envelope for POST /status.
type ServiceStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ErrorReply is the generic envelope for routing and request errors
// (404, 405, 400, malformed bodies).
type ErrorReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewErrorReply builds a generic error envelope.
func NewErrorReply(message string) *ErrorReply {
	return &ErrorReply{Status: StatusError, Error: message}
}
