// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package esi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	"github.com/tomtom215/standingsync/internal/validation"
)

// maxRetryDelay caps server-requested backoff.
const maxRetryDelay = 2 * time.Minute

// Client talks to ESI. It is safe for concurrent use.
type Client struct {
	baseURL        string
	userAgent      string
	httpClient     *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[*response]
	cache          *ETagCache
	maxRetries     int
	retryBaseDelay time.Duration
}

// response is a successful ESI response with its page count.
type response struct {
	status int
	pages  int
	body   []byte
}

// request describes one ESI call.
type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any

	// endpoint is the path template used as the metrics label.
	endpoint string
}

// New creates an ESI client. cache may be nil to disable ETag revalidation.
func New(cfg *config.ESIConfig, cache *ETagCache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		breaker:        newBreaker(cfg.BreakerFailureThreshold, cfg.BreakerTimeout),
		cache:          cache,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: baseDelay,
	}
}

// do executes req through the circuit breaker.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	return c.execute(func() (*response, error) {
		return c.doWithRetry(ctx, req)
	})
}

// doWithRetry performs req, retrying on error-limit, rate-limit and gateway
// responses. GET responses are revalidated against the ETag cache.
func (c *Client) doWithRetry(ctx context.Context, req request) (*response, error) {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	fullURL := c.baseURL + req.path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	cacheable := req.method == http.MethodGet && c.cache != nil
	var cached cachedResponse
	var haveCached bool
	if cacheable {
		var err error
		if cached, haveCached, err = c.cache.Get(fullURL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("url", fullURL).Msg("ETag cache read failed")
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			httpReq.Header.Set("User-Agent", c.userAgent)
		}
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if req.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+req.token)
		}
		if haveCached {
			httpReq.Header.Set("If-None-Match", cached.ETag)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			metrics.RecordESIRequest(req.endpoint, 0, time.Since(start))
			return nil, fmt.Errorf("ESI %s %s: %w", req.method, req.endpoint, err)
		}
		metrics.RecordESIRequest(req.endpoint, resp.StatusCode, time.Since(start))

		if resp.StatusCode == http.StatusNotModified && haveCached {
			_, _ = io.Copy(io.Discard, resp.Body)
			closeBody(resp)
			metrics.RecordESICache(true)
			return &response{status: http.StatusOK, pages: cached.Pages, body: cached.Body}, nil
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			data, err := io.ReadAll(resp.Body)
			closeBody(resp)
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}
			out := &response{status: resp.StatusCode, pages: parsePages(resp.Header), body: data}
			if cacheable {
				metrics.RecordESICache(false)
				entry := cachedResponse{ETag: resp.Header.Get("ETag"), Pages: out.pages, Body: data}
				if err := c.cache.Set(fullURL, entry); err != nil {
					logging.Ctx(ctx).Warn().Err(err).Str("url", fullURL).Msg("ETag cache write failed")
				}
			}
			return out, nil
		}

		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Endpoint:   req.endpoint,
			Body:       string(readBodyForError(resp.Body)),
		}
		closeBody(resp)

		if !isRetryableStatus(resp.StatusCode) || attempt >= c.maxRetries {
			return nil, httpErr
		}

		delay := c.retryDelay(resp.Header, attempt)
		logging.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", req.endpoint).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("ESI request throttled or failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryDelay prefers the server's hint, then falls back to exponential
// backoff from retryBaseDelay.
func (c *Client) retryDelay(h http.Header, attempt int) time.Duration {
	for _, name := range []string{"Retry-After", "X-Esi-Error-Limit-Reset"} {
		if v := h.Get(name); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return min(time.Duration(secs)*time.Second, maxRetryDelay)
			}
		}
	}
	return min(c.retryBaseDelay*time.Duration(1<<attempt), maxRetryDelay)
}

func parsePages(h http.Header) int {
	pages, err := strconv.Atoi(h.Get("X-Pages"))
	if err != nil || pages < 1 {
		return 1
	}
	return pages
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close ESI response body")
	}
}

// getJSON fetches one resource and decodes it into T.
func getJSON[T any](ctx context.Context, c *Client, req request) (T, error) {
	var out T
	req.method = http.MethodGet
	resp, err := c.do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", req.endpoint, err)
	}
	return out, nil
}

// getPaged fetches every page of a paginated resource. The page count comes
// from the X-Pages header of the first page.
func getPaged[T any](ctx context.Context, c *Client, req request) ([]T, error) {
	req.method = http.MethodGet
	var all []T
	pages := 1
	for page := 1; page <= pages; page++ {
		q := url.Values{}
		for k, v := range req.query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		pageReq := req
		pageReq.query = q

		resp, err := c.do(ctx, pageReq)
		if err != nil {
			return nil, err
		}
		var items []T
		if err := json.Unmarshal(resp.body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s page %d: %w", req.endpoint, page, err)
		}
		all = append(all, items...)
		if page == 1 {
			pages = resp.pages
		}
	}
	return all, nil
}

// validateAll runs struct validation on every element of items.
func validateAll[T any](endpoint string, items []T) error {
	for i := range items {
		if err := validation.ValidateStruct(&items[i]); err != nil {
			return fmt.Errorf("invalid payload from %s at index %d: %w", endpoint, i, err)
		}
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
