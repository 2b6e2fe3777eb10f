package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError represents a transport or provider failure, preserving the
// original cause for diagnostics.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryableError reports whether an error is worth retrying. Typed
// checks first; string fallback only for untyped errors from third-party
// libraries.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"rate limit",
		"connection refused",
		"connection reset",
		"eof",
		"tls handshake",
		"no such host",
		"timeout",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
