package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/rigwall/pkg/buildinfo"
	"github.com/matzehuels/rigwall/pkg/observability"
)

// Sentinel errors returned by [Client.Get].
var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")
)

// DefaultMaxBytes caps how much of a response body Get reads.
const DefaultMaxBytes = 8 << 20

// Client performs GET requests with retries and default headers.
type Client struct {
	HTTP     *http.Client
	Headers  map[string]string
	Attempts int
	Delay    time.Duration
	MaxBytes int64
}

// NewClient returns a client with a 10s request timeout and the default
// retry policy.
func NewClient() *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Headers:  map[string]string{"User-Agent": "rigwall/" + buildinfo.Version},
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		MaxBytes: DefaultMaxBytes,
	}
}

// Get fetches url and returns at most MaxBytes of its body, retrying
// transient failures.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		data, err = c.do(ctx, url)
		return err
	})
	return data, err
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := CheckStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return data, nil
}

// CheckStatus maps an HTTP status to nil, ErrNotFound, a retryable
// ErrNetwork (5xx and 429) or a permanent ErrNetwork.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500, code == http.StatusTooManyRequests:
		return Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
