package model

// UpstreamPage is the decoded result of one outbound fetch: the full body as
// text plus the metadata the envelopes echo back to the client.
type UpstreamPage struct {
	StatusCode  int
	OK          bool // status in 200–399
	ContentType string
	Body        string
	Headers     map[string]string
}
