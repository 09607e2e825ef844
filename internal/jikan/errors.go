package jikan

import (
	"fmt"
	"strings"
)

// HTTPStatusError means Jikan answered with a non-2xx status
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "jikan: HTTP status error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("jikan: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("jikan: HTTP %d: %s", e.StatusCode, msg)
}

// HTTPStatus lets the health tracker read the code without importing this package
func (e *HTTPStatusError) HTTPStatus() int {
	return e.StatusCode
}
