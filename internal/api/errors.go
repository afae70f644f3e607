package api

import (
	"fmt"
	"net/http"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("api error: %d", e.Status)
	default:
		return "api error"
	}
}

// SourceUnavailable reports whether the server failed to load the sheet.
func (e *APIError) SourceUnavailable() bool {
	return e != nil && (e.Code == "source_unavailable" || e.Status == http.StatusServiceUnavailable)
}

// Throttled reports whether the request was rejected by a concurrency limit.
func (e *APIError) Throttled() bool {
	return e != nil && e.Status == http.StatusTooManyRequests
}
