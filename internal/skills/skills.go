// Package skills holds the capability handlers the router dispatches to. Each
// skill is a router.Handler; failures are returned as errors and turned into
// spoken apologies by the router.
package skills

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"zara/internal/resolver"
)

// ErrNotConfigured means a skill is missing its API key or server settings.
var ErrNotConfigured = errors.New("skill not configured")

type FactStore interface {
	Fact(ctx context.Context, key string) (string, bool, error)
	SetFact(ctx context.Context, key, value string) error
}

type Resolver interface {
	Resolve(phrase string) (resolver.Target, error)
}

const userAgent = "zara-assistant/1.0"

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// getJSON fetches url and returns the parsed body together with the status
// code. Non-2xx responses are returned without error so callers can map them.
func getJSON(ctx context.Context, c *http.Client, url string, header http.Header) (gjson.Result, int, error) {
	body, status, err := get(ctx, c, url, header)
	if err != nil {
		return gjson.Result{}, 0, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, status, fmt.Errorf("invalid json from %s (status %d)", redact(url), status)
	}
	return gjson.ParseBytes(body), status, nil
}

func get(ctx context.Context, c *http.Client, url string, header http.Header) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := defaultClient(c).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", redact(url), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// redact drops the query string, which may carry API keys, from logged URLs.
func redact(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}
