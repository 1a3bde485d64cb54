package maytapi

import (
	"fmt"
	"strings"
)

const bodySnippetLimit = 512

// RequestError reports a transport failure: no response was obtained.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("maytapi: request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusError reports a response whose status code is outside 2xx.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if snippet := bodySnippet(e.Body); snippet != "" {
		return fmt.Sprintf("maytapi: response status %d: %s", e.StatusCode, snippet)
	}
	return fmt.Sprintf("maytapi: response status %d", e.StatusCode)
}

// ParseError reports a successful status with a body that is not a JSON object.
type ParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maytapi: decode response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > bodySnippetLimit {
		body = body[:bodySnippetLimit]
	}
	return strings.TrimSpace(string(body))
}
