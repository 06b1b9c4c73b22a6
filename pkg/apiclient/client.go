// Package apiclient talks to the invoice platform's REST API. It owns auth
// header injection, timeouts, retry and circuit-breaking policy, and error
// normalization; the core model packages never touch the network.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 200 * time.Millisecond
	defaultRateLimit   = 20 // requests per second
)

// TokenSource supplies the bearer token for authenticated requests.
// session.Manager satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// APIError is a normalized server error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the platform API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*http.Response]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource attaches the session token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMaxAttempts bounds the retry loop, including the first attempt.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the base backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// NewClient constructs a platform API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "platform-api",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends the request described by build, retrying transport failures and
// retryable statuses, and decodes a 2xx body into out when out is non-nil.
// build is invoked per attempt so request bodies can be replayed.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := build()
		if err != nil {
			return err
		}
		c.addAuthHeader(req)

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode >= 500 {
				// surface as failure to the breaker, decoded below
				return resp, errServerStatus
			}
			return resp, nil
		})
		if err != nil && resp == nil {
			lastErr = err
			if retryableTransportError(ctx, err) {
				continue
			}
			return err
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp)
			resp.Body.Close()
			lastErr = apiErr
			if retryableStatus(resp.StatusCode) {
				continue
			}
			return apiErr
		}

		err = decodeBody(resp, out)
		resp.Body.Close()
		return err
	}
	return lastErr
}

var errServerStatus = errors.New("server status")

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout ||
		status == http.StatusInternalServerError
}

func retryableTransportError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, errServerStatus)
}

func decodeAPIError(resp *http.Response) *APIError {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
	msg := payload.Detail
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) addAuthHeader(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, body any) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
}
