package fitbit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgstrings "fitexport/pkg/strings"
)

// APIErrorDetail is one entry of the "errors" array Fitbit returns on failure.
type APIErrorDetail struct {
	ErrorType string `json:"errorType"`
	FieldName string `json:"fieldName,omitempty"`
	Message   string `json:"message"`
}

// APIError is a non-2xx response from the Fitbit API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Errors     []APIErrorDetail
	// Body is the raw response body, kept when it could not be parsed.
	Body string
	// RetryAfter is set on 429 responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	var details []string
	for _, d := range e.Errors {
		details = append(details, fmt.Sprintf("%s: %s", d.ErrorType, d.Message))
	}
	msg := strings.Join(details, "; ")
	if msg == "" {
		msg = pkgstrings.OneLine(e.Body, pkgstrings.DefaultMaxLen)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Fitbit API error: %s (status: %d, endpoint: %s)", msg, e.StatusCode, e.Endpoint)
}

// IsUnauthorized reports whether the token was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRateLimited reports whether the hourly quota was exhausted.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// retryAfter reads the standard Retry-After header, falling back to the
// Fitbit-Rate-Limit-Reset header (seconds until the quota resets).
func retryAfter(h http.Header) time.Duration {
	for _, name := range []string{"Retry-After", "Fitbit-Rate-Limit-Reset"} {
		if v := h.Get(name); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}
