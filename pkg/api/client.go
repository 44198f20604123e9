// Package api provides JSON API helpers on top of the shared HTTP client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httputil "github.com/apodervinskas/Veteran-TestBot/pkg/http"
)

// ErrorEnvelope is the error body returned by Graph-style JSON APIs
type ErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// GetAndDecode performs a single HTTP GET request and decodes the JSON response.
// Non-2xx responses are returned as *httputil.HTTPError, carrying the API's
// own error message when the body has one.
func GetAndDecode(ctx context.Context, client *httputil.Client, url string, target any, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	res, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		logAPICall(req, duration, err)
		return fmt.Errorf("failed to perform GET request: %w", err)
	}

	body, err := httputil.ReadResponseBody(res)
	if err != nil {
		logAPICall(req, duration, err)
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := httputil.EnsureSuccess(res); err != nil {
		var httpErr *httputil.HTTPError
		if errors.As(err, &httpErr) {
			if msg := apiErrorMessage(body); msg != "" {
				httpErr.Message = msg
			}
		}
		logAPICall(req, duration, err)
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		logAPICall(req, duration, err)
		return fmt.Errorf("failed to decode json response: %w", err)
	}

	logAPICall(req, duration, nil)
	return nil
}

// apiErrorMessage extracts the message of a JSON error envelope, if any
func apiErrorMessage(body []byte) string {
	var envelope ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return ""
	}
	return envelope.Error.Message
}

// logAPICall logs API call statistics without the query string, which may carry credentials
func logAPICall(req *http.Request, duration time.Duration, err error) {
	endpoint := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	if err != nil {
		slog.Warn("API call failed", "endpoint", endpoint, "duration", duration, "error", err)
		return
	}
	slog.Debug("API call completed", "endpoint", endpoint, "duration", duration)
}
