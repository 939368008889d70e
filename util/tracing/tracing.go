package tracing

// Context carries request identifiers through handlers and logs.
type Context struct {
	RequestID     string `json:"request_id"`
	RequestSource string `json:"request_source"`
}
