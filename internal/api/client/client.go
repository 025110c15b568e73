// Package client is an HTTP client for the catalog and recommendation API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	segueerrors "github.com/tessro/segue/internal/errors"
)

const (
	// DefaultBaseURL is the API root of a locally running server.
	DefaultBaseURL = "http://localhost:8000/api/v1/"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	baseRetryWait     = 500 * time.Millisecond

	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit  float64
	HTTPClient *http.Client
	Log        logrus.FieldLogger
}

// Client talks to the catalog API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	maxRetries int
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        logrus.FieldLogger
}

// New creates a client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", segueerrors.ErrInvalidConfig, err)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	c := &Client{
		httpClient: opts.HTTPClient,
		baseURL:    base,
		maxRetries: opts.MaxRetries,
		log:        opts.Log.WithField("component", "api"),
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog-api",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Client errors mean the service is up.
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.StatusCode < 500) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})

	return c, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

func (c *Client) request(ctx context.Context, method, path string, body any, result any) error {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	fullURL := c.baseURL.ResolveReference(ref).String()

	requestID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"url":        fullURL,
	})

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, log, requestID, method, fullURL, jsonBody)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", segueerrors.ErrServiceUnavailable, err)
		}
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, log logrus.FieldLogger, requestID, method, fullURL string, jsonBody []byte) ([]byte, error) {
	log.Debug("api request")

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			log.WithError(lastErr).WithField("attempt", attempt).Debugf("retrying after %v", wait)
			select {
			case <-ctx.Done():
				return nil, wrapContextErr(ctx.Err())
			case <-time.After(wait):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, wrapContextErr(err)
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, wrapContextErr(ctx.Err())
			}
			lastErr = classifyTransportErr(err)
			log.WithError(err).Debug("network error")
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %w", segueerrors.ErrNetworkError, err)
			continue
		}

		log.WithField("status", resp.StatusCode).Debug("api response")

		if resp.StatusCode == http.StatusNoContent {
			return nil, nil
		}

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = newAPIError(resp.StatusCode, respBody)
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return nil, newAPIError(resp.StatusCode, respBody)
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

func wrapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", segueerrors.ErrTimeout, err)
	}
	return err
}

func classifyTransportErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", segueerrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", segueerrors.ErrNetworkError, err)
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Detail == "" {
		apiErr.Detail = strings.TrimSpace(string(body))
		if apiErr.Detail == "" || len(apiErr.Detail) > 200 {
			apiErr.Detail = http.StatusText(status)
		}
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Detail)
}

// Is maps well-known statuses onto the shared sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case segueerrors.ErrTrackNotFound:
		return e.StatusCode == http.StatusNotFound
	case segueerrors.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case segueerrors.ErrInvalidConfig:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// IsNotFound checks if an error is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
