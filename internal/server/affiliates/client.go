// Package affiliates proxies the Rainbet affiliates API.
package affiliates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Skandeerkefi/luckywData/internal/common"
	"github.com/Skandeerkefi/luckywData/internal/logging"
)

const maxBodySize = 10 << 20

// Cache stores upstream response bodies. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Client fetches affiliate data for a time range. Every failure is reported
// as common.ErrUpstream; the API key never appears in returned errors.
type Client struct {
	baseURL  string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   logging.Logger
}

type Option func(*Client)

// WithCache enables response caching for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		http:    http.DefaultClient,
		logger:  logger.With("module", "affiliates"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cacheKey query-escapes both bounds so ranges containing ':' cannot collide.
func cacheKey(startAt, endAt string) string {
	return "affiliates:" + url.Values{"start_at": {startAt}, "end_at": {endAt}}.Encode()
}

// Fetch returns the upstream JSON document for [startAt, endAt].
func (c *Client) Fetch(ctx context.Context, startAt, endAt string) (json.RawMessage, error) {
	key := cacheKey(startAt, endAt)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn(ctx, "Cache read failed", "error", err)
		case ok:
			return body, nil
		}
	}

	body, err := c.fetch(ctx, startAt, endAt)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn(ctx, "Cache write failed", "error", err)
		}
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, startAt, endAt string) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base url", common.ErrUpstream)
	}
	q := u.Query()
	q.Set("start_at", startAt)
	q.Set("end_at", endAt)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request", common.ErrUpstream)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, which carries the key
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", common.ErrUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", common.ErrUpstream)
	}

	return body, nil
}
