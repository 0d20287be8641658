// Package catalog is the HTTP client for the external product catalog API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client forwards the caller's bearer token to the catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// ListCategories fetches every catalog category. The API answers either with
// a bare array or with {"categories": [...]}.
func (c *Client) ListCategories(ctx context.Context, bearer string) ([]domain.CatalogCategory, error) {
	body, err := c.get(ctx, bearer, "/categories")
	if err != nil {
		return nil, err
	}

	var categories []domain.CatalogCategory
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		err = json.Unmarshal(body, &categories)
	} else {
		var wrapped struct {
			Categories []domain.CatalogCategory `json:"categories"`
		}
		err = json.Unmarshal(body, &wrapped)
		categories = wrapped.Categories
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode categories: %v", domain.ErrUpstream, err)
	}

	for i := range categories {
		categories[i].Slug = strings.ToLower(strings.TrimSpace(categories[i].Slug))
	}
	return categories, nil
}

// ProductsByCategory returns the upstream product payload for slug unchanged.
func (c *Client) ProductsByCategory(ctx context.Context, bearer, slug string) (json.RawMessage, error) {
	body, err := c.get(ctx, bearer, "/products/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: products response is not JSON", domain.ErrUpstream)
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, bearer, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrUpstream, path, resp.StatusCode)
	}
	return body, nil
}
