package domain

import (
	"math"
	"strings"
)

const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 10000
	MaxRating       = 5
)

// RatingThresholds are the minimum-rating choices offered by the filter panel.
var RatingThresholds = []float64{0, 3, 3.5, 4, 4.5}

// FilterCriteria is the conjunctive predicate set narrowing the visible list.
// A nil Category or Store means "no filter".
type FilterCriteria struct {
	Category  *string `json:"category"`
	Store     *string `json:"store"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	MinRating float64 `json:"min_rating"`
}

// DefaultCriteria returns the criteria a fresh session starts with.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
	}
}

// Normalize returns a copy that satisfies MinPrice <= MaxPrice.
// Non-finite bounds fall back to the defaults, negative bounds clamp to 0
// and a reversed range is swapped. Empty category/store strings clear the filter.
func (f FilterCriteria) Normalize() FilterCriteria {
	if math.IsNaN(f.MinPrice) || math.IsInf(f.MinPrice, 0) {
		f.MinPrice = DefaultMinPrice
	}
	if math.IsNaN(f.MaxPrice) || math.IsInf(f.MaxPrice, 0) {
		f.MaxPrice = DefaultMaxPrice
	}
	f.MinPrice = math.Max(f.MinPrice, 0)
	f.MaxPrice = math.Max(f.MaxPrice, 0)
	if f.MinPrice > f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	if math.IsNaN(f.MinRating) || f.MinRating < 0 {
		f.MinRating = 0
	}
	if f.Category != nil && *f.Category == "" {
		f.Category = nil
	}
	if f.Store != nil && *f.Store == "" {
		f.Store = nil
	}
	return f
}

// ActiveCount counts the filters narrowing the list: category, store,
// a price range other than the default one, and a rating threshold.
func (f FilterCriteria) ActiveCount() int {
	n := 0
	if f.Category != nil {
		n++
	}
	if f.Store != nil {
		n++
	}
	if f.MinPrice > DefaultMinPrice || f.MaxPrice < DefaultMaxPrice {
		n++
	}
	if f.MinRating > 0 {
		n++
	}
	return n
}

// SortKey is the ordering rule applied to the filtered list.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

// SortKeys lists the keys in the order the filter panel shows them.
var SortKeys = []SortKey{SortNewest, SortPriceLow, SortPriceHigh, SortRating}

// ParseSortKey maps s to a SortKey. Unknown keys fall back to newest.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceLow, SortPriceHigh, SortRating:
		return k
	default:
		return SortNewest
	}
}

// Label is the human readable name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortPriceLow:
		return "Price: Low to High"
	case SortPriceHigh:
		return "Price: High to Low"
	case SortRating:
		return "Highest Rated"
	default:
		return "Newest"
	}
}
