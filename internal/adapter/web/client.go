package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxPageBytes bounds a single page read.
const maxPageBytes = 4 << 20

// ErrPageTooLarge is returned for a response body over maxPageBytes.
var ErrPageTooLarge = errors.New("page too large")

// Fetcher returns the raw bytes served at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client fetches pages over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates an HTTP page client with a per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "covid-timeseries-etl/1.0",
		logger:    logger,
	}
}

// Fetch issues a GET and returns the body of a 200 response.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrPageTooLarge, url, maxPageBytes)
	}
	c.logger.Debug("page fetched", "url", url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
