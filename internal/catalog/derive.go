package catalog

import (
	"cmp"
	"slices"
	"strings"

	"price-compare-storefront/internal/domain"
)

// Derive computes the visible list for products under s. It never modifies
// products and always returns a new slice; equal inputs give equal outputs.
func Derive(products []domain.Product, s State) []domain.Product {
	f := s.Filters.Normalize()
	query := strings.ToLower(strings.TrimSpace(s.Search))

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if query != "" && !matchesSearch(p, query) {
			continue
		}
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.Store != nil && p.Store != *f.Store {
			continue
		}
		if p.Price < f.MinPrice || p.Price > f.MaxPrice {
			continue
		}
		if p.Rating < f.MinRating {
			continue
		}
		result = append(result, p)
	}

	slices.SortStableFunc(result, comparator(domain.ParseSortKey(string(s.Sort))))
	return result
}

func matchesSearch(p domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.DescriptionText()), query)
}

func comparator(key domain.SortKey) func(a, b domain.Product) int {
	switch key {
	case domain.SortPriceLow:
		return func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceHigh:
		return func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortRating:
		return func(a, b domain.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	default:
		return func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt.Time) }
	}
}
