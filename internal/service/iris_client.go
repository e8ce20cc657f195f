package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://iris.thegiin.org"
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	initialBackoff   = 2 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; irisplus-scraper/1.0)"
)

// ErrUnexpectedStatus is wrapped by fetch errors caused by a non-200 response
var ErrUnexpectedStatus = errors.New("unexpected status code")

// ClientOptions configures an IrisClient. Zero values fall back to defaults,
// except Delay where zero disables request spacing.
type ClientOptions struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	// Delay is the minimum spacing between requests
	Delay time.Duration
}

// IrisClient handles communication with the IRIS+ catalog website
type IrisClient struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	backoff    time.Duration
	delay      time.Duration
	limiter    *rate.Limiter
}

// NewIrisClient creates a new IRIS+ catalog client
func NewIrisClient(opts ClientOptions) *IrisClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = initialBackoff
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &IrisClient{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		backoff:    opts.InitialBackoff,
		delay:      opts.Delay,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// BaseURL returns the catalog root the client talks to
func (c *IrisClient) BaseURL() string {
	return c.baseURL
}

// CatalogPageURL returns the URL of one page of the metric catalog
func (c *IrisClient) CatalogPageURL(page int) string {
	return fmt.Sprintf("%s/metrics/?page=%d", c.baseURL, page)
}

// DetailURL returns the detail page URL of a metric for a catalog version.
// The version may be given with or without its leading "v".
func (c *IrisClient) DetailURL(version, dataID string) string {
	return fmt.Sprintf("%s/metric/%s/%s/", c.baseURL, strings.TrimPrefix(version, "v"), strings.ToLower(dataID))
}

// FetchCatalogPage retrieves the HTML of one catalog page
func (c *IrisClient) FetchCatalogPage(ctx context.Context, page int) ([]byte, error) {
	body, err := c.fetchWithRetry(ctx, c.CatalogPageURL(page))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}
	return body, nil
}

// FetchDetailPage retrieves the HTML of a metric detail page
func (c *IrisClient) FetchDetailPage(ctx context.Context, url string) ([]byte, error) {
	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail page %s: %w", url, err)
	}
	return body, nil
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *IrisClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Debug("request failed", "url", url, "attempt", attempt+1, "error", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			log.Debug("rate limited", "url", url, "attempt", attempt+1)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// Delay returns the configured spacing between requests
func (c *IrisClient) Delay() time.Duration {
	return c.delay
}
