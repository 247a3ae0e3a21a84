// Package content fetches and prepares the HTML payloads shown inside
// expanded panels.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
)

// ErrStatus is matched by errors for non-success HTTP responses.
var ErrStatus = errors.New("content: unexpected status")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: GET %s: status %d", e.URL, e.Code)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the URL page paths resolve against, e.g. "https://example.org/"
	// or "file:///" together with a file transport.
	BaseURL string

	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// Cache memoizes pages by resolved URL. If nil, a new cache is created.
	Cache *Cache

	Logger *slog.Logger
}

// Client fetches panel pages with no-cache semantics and memoizes them.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	cache      *Cache
	markdown   goldmark.Markdown
	logger     *slog.Logger
}

// NewClient creates a page client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("content: BaseURL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("content: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cache := config.Cache
	if cache == nil {
		cache = NewCache()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:       base,
		httpClient: httpClient,
		cache:      cache,
		markdown:   newMarkdown(),
		logger:     logger,
	}, nil
}

// Cache returns the client's page cache.
func (c *Client) Cache() *Cache { return c.cache }

// Resolve returns the absolute URL for a page path.
func (c *Client) Resolve(pagePath string) (string, error) {
	ref, err := url.Parse(pagePath)
	if err != nil {
		return "", fmt.Errorf("content: invalid page path %q: %w", pagePath, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Fetch returns the HTML for a page path, from the cache when present.
// Markdown pages (.md) are rendered to HTML before caching.
func (c *Client) Fetch(ctx context.Context, pagePath string) (string, error) {
	resolved, err := c.Resolve(pagePath)
	if err != nil {
		return "", err
	}
	if page, ok := c.cache.Get(resolved); ok {
		return page, nil
	}

	body, err := c.get(ctx, resolved)
	if err != nil {
		return "", err
	}

	page := string(body)
	if isMarkdown(pagePath) {
		var buf bytes.Buffer
		if err := c.markdown.Convert(body, &buf); err != nil {
			return "", fmt.Errorf("content: rendering %s: %w", resolved, err)
		}
		page = buf.String()
	}

	// A concurrent fetch may have stored first; both hold the same page.
	page = c.cache.Put(resolved, page)
	c.logger.Debug("page fetched", "url", resolved, "bytes", len(page))
	return page, nil
}

func (c *Client) get(ctx context.Context, resolved string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("content: building request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "text/html, text/markdown;q=0.9, */*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: GET %s: %w", resolved, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: resolved, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("content: reading %s: %w", resolved, err)
	}
	return body, nil
}

func isMarkdown(pagePath string) bool {
	ext := strings.ToLower(path.Ext(strings.SplitN(pagePath, "?", 2)[0]))
	return ext == ".md" || ext == ".markdown"
}
