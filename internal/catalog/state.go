// Package catalog holds the storefront controller: session UI state, the
// pure transitions over it, and the derivation of the visible product list.
package catalog

import (
	"price-compare-storefront/internal/domain"
)

// State is the session-local UI state. It is a value: every transition
// returns a new State and leaves the receiver untouched.
type State struct {
	Search         string
	Filters        domain.FilterCriteria
	Sort           domain.SortKey
	Comparison     domain.ComparisonSet
	ShowComparison bool
}

// DefaultState is the state of a fresh session.
func DefaultState() State {
	return State{
		Filters: domain.DefaultCriteria(),
		Sort:    domain.SortNewest,
	}
}

func (s State) WithSearch(query string) State {
	s.Search = query
	return s
}

// WithFilters replaces the whole criteria after normalizing it.
func (s State) WithFilters(f domain.FilterCriteria) State {
	s.Filters = f.Normalize()
	return s
}

func (s State) WithPriceRange(minPrice, maxPrice float64) State {
	f := s.Filters
	f.MinPrice, f.MaxPrice = minPrice, maxPrice
	return s.WithFilters(f)
}

func (s State) WithSort(key domain.SortKey) State {
	s.Sort = domain.ParseSortKey(string(key))
	return s
}

// ToggleCategory selects category, or clears the filter when it is already selected.
func (s State) ToggleCategory(category string) State {
	s.Filters.Category = toggleValue(s.Filters.Category, category)
	return s
}

// ToggleStore selects store, or clears the filter when it is already selected.
func (s State) ToggleStore(store string) State {
	s.Filters.Store = toggleValue(s.Filters.Store, store)
	return s
}

// ToggleMinRating sets the rating threshold, or resets it to 0 when
// the same threshold is chosen again.
func (s State) ToggleMinRating(rating float64) State {
	if s.Filters.MinRating == rating {
		s.Filters.MinRating = 0
	} else {
		s.Filters.MinRating = rating
	}
	s.Filters = s.Filters.Normalize()
	return s
}

// ResetFilters restores default criteria, clears the search and sorts by newest.
// The comparison set is kept.
func (s State) ResetFilters() State {
	s.Filters = domain.DefaultCriteria()
	s.Search = ""
	s.Sort = domain.SortNewest
	return s
}

// ToggleComparison adds or removes p. On domain.ErrCapacityExceeded the
// returned state equals the receiver.
func (s State) ToggleComparison(p domain.Product) (State, error) {
	set, err := s.Comparison.Toggle(p)
	if err != nil {
		return s, err
	}
	s.Comparison = set
	return s, nil
}

func (s State) ClearComparison() State {
	s.Comparison = domain.ComparisonSet{}
	return s
}

// ToggleComparisonView flips between the grid and the comparison table.
func (s State) ToggleComparisonView() State {
	s.ShowComparison = !s.ShowComparison
	return s
}

// ComparisonVisible reports whether the comparison table replaces the grid.
func (s State) ComparisonVisible() bool {
	return s.ShowComparison && s.Comparison.Len() > 0
}

func toggleValue(current *string, value string) *string {
	if value == "" || (current != nil && *current == value) {
		return nil
	}
	return &value
}
