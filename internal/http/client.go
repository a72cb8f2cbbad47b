package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes bounds every response body read into memory.
const maxResponseBytes = 8 << 20

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.Code, e.URL, e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Config holds HTTP client settings.
type Config struct {
	// Timeout is the overall timeout of a single request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxRetries is the number of attempts made by GetJSONWithRetry.
	MaxRetries int

	// RetryCooldown is the first retry delay in seconds.
	RetryCooldown float64

	// RetryExponent multiplies the delay after each failed attempt.
	RetryExponent float64
}

// DefaultConfig returns the default client settings.
func DefaultConfig() Config {
	return Config{
		Timeout:       15 * time.Second,
		UserAgent:     "TuneTracer",
		MaxRetries:    3,
		RetryCooldown: 0.2,
		RetryExponent: 4.0,
	}
}

// Client wraps HTTP operations shared by the catalog and preview backends.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - JSON decoding with a bounded body size
//   - Form POSTs for OAuth token exchanges
//   - Retry with exponential backoff for catalog calls
//
// Example usage:
//
//	client := NewClient(DefaultConfig())
//
//	var page searchResponse
//	err := client.GetJSON(ctx, "https://api.example.com/search?q=x", nil, &page)
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient creates a new HTTP client.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// NewClientWith wraps an existing *http.Client, e.g. httptest.Server.Client().
func NewClientWith(hc *http.Client, cfg Config) *Client {
	c := NewClient(cfg)
	c.httpClient = hc
	return c
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *StatusError if the response status is not 2xx.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, header)
}

// GetJSON performs a GET request and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

// GetJSONWithRetry is GetJSON with retries on transport errors and 5xx/429 responses.
//
// The delay before attempt n+1 is RetryCooldown * RetryExponent^n seconds.
// Other 4xx responses are returned immediately.
func (c *Client) GetJSONWithRetry(ctx context.Context, rawURL string, header http.Header, out any) error {
	var err error
	for tries := 0; tries < c.cfg.MaxRetries; tries++ {
		err = c.GetJSON(ctx, rawURL, header, out)
		if err == nil || !retryable(err) {
			return err
		}
		if tries+1 < c.cfg.MaxRetries {
			c.waitForRetry(ctx, tries)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// PostForm sends a form-encoded POST request and decodes the JSON body into out.
func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

// DownloadBytes downloads a small file, like cover art, into memory.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.Get(ctx, rawURL, nil)
}

func (c *Client) do(req *http.Request, header http.Header) ([]byte, error) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: req.URL.Redacted()}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

func (c *Client) waitForRetry(ctx context.Context, tries int) {
	cooldown := c.cfg.RetryCooldown * math.Pow(c.cfg.RetryExponent, float64(tries))
	timer := time.NewTimer(time.Duration(cooldown * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
