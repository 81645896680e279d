package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"price-compare-storefront/internal/domain"
)

// DefaultAPIURL is used when no base URL is configured.
const DefaultAPIURL = "http://localhost:5000"

// APIClient reads the catalog from the price-compare REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for baseURL. An empty baseURL falls back to
// DefaultAPIURL; a nil httpClient gets a client with a 15s timeout.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{baseURL: baseURL, httpClient: httpClient}
}

// BaseURL returns the normalized API root.
func (c *APIClient) BaseURL() string { return c.baseURL }

// ListProducts calls GET /products?limit=N and returns the "data" array.
func (c *APIClient) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var payload struct {
		Data []domain.Product `json:"data"`
	}
	if err := c.getJSON(ctx, "/products", q, &payload); err != nil {
		return nil, fmt.Errorf("store: ListProducts: %w", err)
	}
	if payload.Data == nil {
		return []domain.Product{}, nil
	}
	return payload.Data, nil
}

// ListCategories calls GET /categories and returns the "categories" array.
func (c *APIClient) ListCategories(ctx context.Context) ([]string, error) {
	var payload struct {
		Categories []string `json:"categories"`
	}
	if err := c.getJSON(ctx, "/categories", nil, &payload); err != nil {
		return nil, fmt.Errorf("store: ListCategories: %w", err)
	}
	if payload.Categories == nil {
		return []string{}, nil
	}
	return payload.Categories, nil
}

// ListStores calls GET /stores and returns the "stores" array.
func (c *APIClient) ListStores(ctx context.Context) ([]string, error) {
	var payload struct {
		Stores []string `json:"stores"`
	}
	if err := c.getJSON(ctx, "/stores", nil, &payload); err != nil {
		return nil, fmt.Errorf("store: ListStores: %w", err)
	}
	if payload.Stores == nil {
		return []string{}, nil
	}
	return payload.Stores, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// Drain a little of the body so the connection can be reused.
		_, _ = io.CopyN(io.Discard, res.Body, 4<<10)
		return fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrDecodeResponse, path, err)
	}
	return nil
}
