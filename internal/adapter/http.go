// Package adapter wraps outbound I/O used by the upstream clients.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTTPClient performs upstream HTTP calls, retrying rate-limited responses.
type HTTPClient interface {
	// Get performs a GET request and returns the response body
	Get(ctx context.Context, url string) ([]byte, error)

	// PostJSON encodes body as JSON, POSTs it and returns the response body
	PostJSON(ctx context.Context, url string, body interface{}) ([]byte, error)
}

// StatusError is returned for non-200 responses that are not retried.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// ErrRateLimited is returned when retries on 429 responses are exhausted.
var ErrRateLimited = errors.New("rate limited (429)")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// BackOffFactory builds the retry policy for one request.
type BackOffFactory func() backoff.BackOff

// DefaultBackOff retries for up to a minute with jittered exponential delays.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = time.Minute
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	return b
}

// RealHTTPClient implements HTTPClient using net/http and cenkalti/backoff.
type RealHTTPClient struct {
	client     *http.Client
	newBackOff BackOffFactory
	logger     *zap.Logger
}

// HTTPOption configures RealHTTPClient.
type HTTPOption func(*RealHTTPClient)

// WithBackOff overrides the retry policy.
func WithBackOff(f BackOffFactory) HTTPOption {
	return func(c *RealHTTPClient) {
		c.newBackOff = f
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l *zap.Logger) HTTPOption {
	return func(c *RealHTTPClient) {
		c.logger = l
	}
}

// NewHTTPClient creates a new HTTP client with the given per-attempt timeout.
func NewHTTPClient(timeout time.Duration, opts ...HTTPOption) *RealHTTPClient {
	c := &RealHTTPClient{
		client:     &http.Client{Timeout: timeout},
		newBackOff: DefaultBackOff,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request. 429 responses and network errors are retried.
func (c *RealHTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	return c.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
}

// PostJSON performs a POST request with a JSON body. 429 responses and network errors are retried.
func (c *RealHTTPClient) PostJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// doWithRetry builds a fresh request per attempt so bodies can be replayed.
func (c *RealHTTPClient) doWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) ([]byte, error) {
	var respBody []byte

	operation := func() error {
		req, err := newRequest()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				c.logger.Warn("failed to close response body", zap.Error(err), zap.String("url", req.URL.String()))
			}
		}()

		if resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("rate limited, retrying with backoff", zap.String("url", req.URL.String()))
			return ErrRateLimited
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return respBody, nil
}

var _ HTTPClient = (*RealHTTPClient)(nil)
