package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RetryConfig bounds the attempts and backoff of Do.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry is used by the price and rate clients.
var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    10 * time.Second,
}

// backoff returns the wait before the given (1-based) retry.
func (c RetryConfig) backoff(retry int) time.Duration {
	d := c.BaseDelay << uint(retry-1)
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		return c.MaxDelay
	}
	return d
}

// StatusError is a 5xx answer that was still failing on the last attempt.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Code)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err carries a final upstream status equal to code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// NewClient builds an HTTP client with a hard timeout and optional proxy.
func NewClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// attempt performs one request. A non-nil response is final; otherwise the
// returned error is worth retrying.
func attempt(client *http.Client, buildReq func() (*http.Request, error)) (resp *http.Response, retry bool, err error) {
	req, err := buildReq()
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	resp, err = client.Do(req)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode < http.StatusInternalServerError {
		return resp, false, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	return nil, true, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Do sends the request built by buildReq, retrying network errors and 5xx
// answers with exponential backoff. Responses below 500 are returned as-is for
// the caller to interpret. A final 5xx is reported as *StatusError.
func Do(ctx context.Context, client *http.Client, cfg RetryConfig, log *slog.Logger, buildReq func() (*http.Request, error)) (*http.Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var lastErr error
	for n := 1; ; n++ {
		resp, retry, err := attempt(client, buildReq)
		if !retry {
			return resp, err
		}
		lastErr = err
		if n == cfg.MaxAttempts {
			break
		}

		delay := cfg.backoff(n)
		log.Warn("request failed, retrying",
			"attempt", n, "max_attempts", cfg.MaxAttempts, "delay", delay, "err", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry aborted after %d attempts: %w", n, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
