package fitbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"fitexport/pkg/logging"
)

const (
	// DefaultBaseURL is the base URL for the Fitbit Web API.
	DefaultBaseURL = "https://api.fitbit.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerHour is Fitbit's per-user quota.
	DefaultRequestsPerHour = 150

	// maxResponseBytes caps the payload read from the API.
	maxResponseBytes = 64 << 20
)

// Client is a Fitbit Web API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithRateLimit sets the client-side request budget per hour.
func WithRateLimit(requestsPerHour int) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(requestsPerHour)
	}
}

func newLimiter(requestsPerHour int) *rate.Limiter {
	if requestsPerHour <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Hour/time.Duration(requestsPerHour)), 1)
}

// NewClient creates a Fitbit client. httpClient must authorize its requests;
// if it has no timeout, DefaultTimeout is applied.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	if hc.Timeout == 0 {
		hc.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: hc,
		limiter:    newLimiter(DefaultRequestsPerHour),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IntradayTimeSeries fetches one day of intraday data and returns the JSON
// payload untouched.
func (c *Client) IntradayTimeSeries(ctx context.Context, params IntradayParams) (json.RawMessage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return c.get(ctx, params.Path())
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en_US")

	logging.Debug("Fitbit", "GET %s", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, path, body)
	}

	if !json.Valid(body) {
		return nil, errors.New("failed to decode response: body is not valid JSON")
	}

	logging.Debug("Fitbit", "GET %s returned %d bytes", path, len(body))
	return json.RawMessage(body), nil
}

func newAPIError(resp *http.Response, path string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   path,
		RetryAfter: retryAfter(resp.Header),
	}

	var payload struct {
		Errors []APIErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Errors = payload.Errors
	} else {
		apiErr.Body = string(body)
	}
	return apiErr
}
