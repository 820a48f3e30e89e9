// Package fetch implements the HTTP fetch collaborator for the pipeline.
//
// A Client wraps net/http with a fixed User-Agent, a request timeout and
// bounded exponential-backoff retries. The pipeline treats every failure as
// a FetchError and skips the unit (event link or whole site) it was fetching
// for; nothing above this package retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/logger"
)

// FetchError reports that a URL could not be retrieved after all retries.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches pages with retries.
type Client struct {
	client     *http.Client
	userAgent  string
	maxRetries uint64
}

// New creates a Client from the fetch section of the configuration.
func New(cfg config.FetchConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// Get retrieves url and returns the response body as text. It retries
// transient failures with exponential backoff up to the configured number of
// attempts; client errors (4xx) are not retried. On failure the returned
// error is a *FetchError.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var body string

	op := func() error {
		b, err := c.getOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Debug("retrying fetch", logger.Fields{
			"url":  url,
			"wait": wait.String(),
		})
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		if fe, ok := err.(*FetchError); ok {
			return "", fe
		}
		return "", &FetchError{URL: url, Err: err}
	}

	logger.IncrCounter("fetch.pages")
	return body, nil
}

// getOnce performs a single attempt.
func (c *Client) getOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(&FetchError{URL: url, Err: err})
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fe := &FetchError{URL: url, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(fe)
		}
		return "", fe
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	return string(data), nil
}
