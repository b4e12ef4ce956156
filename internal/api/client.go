// Package api talks to the participation-report data service and the
// registry's REST API.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"partrep/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultCacheSize = 256
	maxBodyBytes     = 16 << 20
)

// Options configures a Client
type Options struct {
	Timeout   time.Duration
	CacheSize int
	Logger    *slog.Logger
}

// Client fetches report data. Responses are immutable for a given URL,
// so bodies are kept in an LRU cache keyed by the full request URL.
type Client struct {
	BaseURL     string
	RegistryURL string
	HTTPClient  *http.Client

	cache  *lru.Cache[string, []byte]
	logger *slog.Logger
}

// NewClient creates a client for the given data service and registry
func NewClient(baseURL, registryURL string, opts Options) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	return &Client{
		BaseURL:     baseURL,
		RegistryURL: registryURL,
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		cache:       cache,
		logger:      opts.Logger.With("component", "api"),
	}, nil
}

// ParticipationSummary fetches the coverage summary for a member,
// optionally narrowed to a date range and a title
func (c *Client) ParticipationSummary(ctx context.Context, memberID string, q domain.SummaryQuery) (*domain.Summary, error) {
	const op = "participation-summary"
	params := url.Values{}
	params.Set("op", op)
	params.Set("memberid", memberID)
	if q.PubYear != "" {
		params.Set("pubyear", q.PubYear)
	}
	if q.PubID != "" {
		params.Set("pubid", q.PubID)
	}

	body, err := c.get(ctx, op, c.BaseURL, params)
	if err != nil {
		return nil, err
	}
	summary, err := parseSummary(body)
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: c.BaseURL, Err: err}
	}
	return summary, nil
}

// Publications lists the titles a member registered for a content type
func (c *Client) Publications(ctx context.Context, memberID, contentType string) ([]domain.TitleRecord, error) {
	const op = "publications"
	params := url.Values{}
	params.Set("op", op)
	params.Set("memberid", memberID)
	params.Set("contenttype", contentType)

	body, err := c.get(ctx, op, c.BaseURL, params)
	if err != nil {
		return nil, err
	}
	titles, err := parsePublications(body)
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: c.BaseURL, Err: err}
	}
	return titles, nil
}

// get performs a GET and returns the body, serving repeats from cache
func (c *Client) get(ctx context.Context, op, base string, params url.Values) ([]byte, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: base, Err: err}
	}
	if params != nil {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	target := u.String()

	if body, ok := c.cache.Get(target); ok {
		c.logger.Debug("cache_hit", "op", op, "url", target)
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("request_failed", "op", op, "url", target, "error", err)
		return nil, &domain.FetchError{Op: op, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected_status", "op", op, "url", target, "status", resp.StatusCode)
		return nil, &domain.FetchError{Op: op, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: target, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	c.logger.Debug("request_completed", "op", op, "url", target, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
	c.cache.Add(target, body)
	return body, nil
}
