package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxBodyBytes caps how much of a response body is read
const MaxBodyBytes = 8 << 20

// HTTPError represents a response with a non-2xx status code
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// EnsureSuccess returns an *HTTPError unless the status code is 2xx
func EnsureSuccess(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}

// CloseBody closes a response body and logs a failure
func CloseBody(resp *http.Response) {
	if closeErr := resp.Body.Close(); closeErr != nil {
		slog.Error("Failed to close response body", "error", closeErr)
	}
}

// ReadResponseBody reads at most MaxBodyBytes and closes the HTTP response body
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	defer CloseBody(resp)
	return io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
}
