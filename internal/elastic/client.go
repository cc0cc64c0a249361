// Package elastic is the HTTP transport to an Elasticsearch-compatible
// endpoint: mapping fetch plus the scroll API for paginated document
// retrieval.
package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Client issues requests against one configured endpoint. Safe for
// concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a Client from a Config.
func NewClient(cfg Config) *Client {
	transport := http.DefaultTransport
	if cfg.UseSSL && !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// Host returns the configured host.
func (c *Client) Host() string { return c.cfg.Host }

// Port returns the configured port.
func (c *Client) Port() int { return c.cfg.Port }

func (c *Client) baseURL() string {
	scheme := "http"
	if c.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.cfg.Host, c.cfg.Port)
}

// do performs one request with retries for transient failures. Each
// attempt carries a fresh X-Opaque-Id so server-side slow logs can be
// correlated with client retries.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	interval := c.cfg.RetryInterval
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interval):
			}
			interval = time.Duration(float64(interval) * c.cfg.RetryBackoff)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Opaque-Id", uuid.NewString())
		if c.cfg.Username != "" {
			req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(respBody, 512))
		}
		return respBody, nil
	}
	return nil, fmt.Errorf("%s %s: retries exhausted: %w", method, path, lastErr)
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// GetMapping fetches the raw mapping response for an index pattern.
func (c *Client) GetMapping(ctx context.Context, index string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(index)+"/_mapping", nil)
	if err != nil {
		return nil, fmt.Errorf("get mapping for %q: %w", index, err)
	}
	return body, nil
}

// Page is one page of scroll results.
type Page struct {
	ScrollID string
	Hits     []Hit
}

// Hit is one returned document.
type Hit struct {
	ID     string
	Source json.RawMessage
}

func parsePage(body []byte) (*Page, error) {
	var raw struct {
		ScrollID string `json:"_scroll_id"`
		Hits     struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	page := &Page{ScrollID: raw.ScrollID, Hits: make([]Hit, len(raw.Hits.Hits))}
	for i, h := range raw.Hits.Hits {
		page.Hits[i] = Hit{ID: h.ID, Source: h.Source}
	}
	return page, nil
}

// ScrollSearch opens a scroll over an index pattern. body is the full
// search request document (query, projection, size).
func (c *Client) ScrollSearch(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*Page, error) {
	path := fmt.Sprintf("/%s/_search?scroll=%s", url.PathEscape(index), scrollTime(keepAlive))
	respBody, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("scroll search on %q: %w", index, err)
	}
	return parsePage(respBody)
}

// ScrollNext advances a scroll.
func (c *Client) ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (*Page, error) {
	body, err := json.Marshal(map[string]string{
		"scroll":    scrollTime(keepAlive),
		"scroll_id": scrollID,
	})
	if err != nil {
		return nil, err
	}
	respBody, err := c.do(ctx, http.MethodPost, "/_search/scroll", body)
	if err != nil {
		return nil, fmt.Errorf("scroll next: %w", err)
	}
	return parsePage(respBody)
}

// ClearScroll releases a scroll's server-side resources.
func (c *Client) ClearScroll(ctx context.Context, scrollID string) error {
	body, err := json.Marshal(map[string][]string{"scroll_id": {scrollID}})
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodDelete, "/_search/scroll", body); err != nil {
		return fmt.Errorf("clear scroll: %w", err)
	}
	return nil
}

// scrollTime renders a keep-alive duration in the store's time-unit
// syntax.
func scrollTime(d time.Duration) string {
	if d <= 0 {
		return "1m"
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
