package domain

import "errors"

var (
	ErrFetchFailed      = errors.New("catalog: failed to load products")
	ErrCapacityExceeded = errors.New("catalog: maximum 5 products can be compared")
	ErrProductNotFound  = errors.New("catalog: product not found")
	ErrCatalogLoading   = errors.New("catalog: still loading")
)

// User facing messages.
const (
	FetchFailureMessage = "Failed to load products. Please try again later."
	CapacityMessage     = "Maximum 5 products can be compared"
	EmptyResultsMessage = "No products found matching your criteria."
)
