package store

import (
	"context"
	"errors"

	"price-compare-storefront/internal/domain"
)

// Predefined errors for store operations
var (
	ErrUnexpectedStatus = errors.New("store: unexpected response status")
	ErrDecodeResponse   = errors.New("store: malformed response body")
	ErrUnknownDriver    = errors.New("store: unknown sql driver")
)

// CatalogReader is a read-only source of the storefront catalog.
// Implementations must be safe for concurrent use: the startup fetch
// calls all three methods in parallel.
type CatalogReader interface {
	ListProducts(ctx context.Context, limit int) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListStores(ctx context.Context) ([]string, error)
}
