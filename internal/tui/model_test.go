package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func testProducts() []domain.Product {
	day := func(d int) domain.Timestamp {
		return domain.Timestamp{Time: time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)}
	}
	return []domain.Product{
		{ID: "1", Name: "Phone A", Description: ptr("Flagship phone"), Price: 500, OriginalPrice: ptr(650.0), DiscountPercentage: ptr(23.1), Rating: 4.2, Category: "Phones", Store: "X", CreatedAt: day(1), Availability: domain.InStock},
		{ID: "2", Name: "Laptop B", Price: 1200, Rating: 3.8, Category: "Laptops", Store: "Y", CreatedAt: day(2), Availability: domain.OutOfStock},
		{ID: "3", Name: "Earbuds C", Price: 80, Rating: 4.6, Category: "Audio", Store: "X", CreatedAt: day(3), Availability: domain.InStock},
		{ID: "4", Name: "Tablet D", Price: 300, Rating: 4.0, Category: "Tablets", Store: "Y", CreatedAt: day(4), Availability: domain.InStock},
		{ID: "5", Name: "Watch E", Price: 250, Rating: 3.1, Category: "Wearables", Store: "Z", CreatedAt: day(5), Availability: domain.InStock},
		{ID: "6", Name: "Camera F", Price: 900, Rating: 4.9, Category: "Cameras", Store: "Z", CreatedAt: day(6), Availability: domain.InStock},
	}
}

func readySnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Catalog: domain.Catalog{
			Products:   testProducts(),
			Categories: []string{"Audio", "Cameras", "Laptops", "Phones", "Tablets", "Wearables"},
			Stores:     []string{"X", "Y", "Z"},
		},
		Status: catalog.StatusReady,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msgs through Update in order and returns the final model.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok, "Update returned %T", next)
	}
	return m
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := New(readySnapshot, PlainStyles())
	return send(t, m, catalogLoadedMsg{snap: readySnapshot()})
}

func visibleIDs(m Model) []domain.ProductID {
	var ids []domain.ProductID
	for _, p := range m.Controller().Visible() {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestModel_LoadingView(t *testing.T) {
	m := New(readySnapshot, PlainStyles())
	assert.Equal(t, catalog.StatusLoading, m.Controller().Status())
	assert.Contains(t, m.View(), "Loading products...")
	assert.NotContains(t, m.View(), "Products (")
	assert.NotNil(t, m.Init())
}

func TestModel_CatalogLoaded(t *testing.T) {
	m := loadedModel(t)

	assert.Equal(t, []domain.ProductID{"6", "5", "4", "3", "2", "1"}, visibleIDs(m))
	assert.Len(t, m.grid.Rows(), 6)
	view := m.View()
	assert.Contains(t, view, "Products (6)")
	assert.Contains(t, view, "Camera F")
}

func TestModel_FailedFetchShowsBanner(t *testing.T) {
	m := New(readySnapshot, PlainStyles())
	m = send(t, m, catalogLoadedMsg{snap: catalog.FailedSnapshot(errors.New("dial tcp: refused"))})

	view := m.View()
	assert.Contains(t, view, domain.FetchFailureMessage)
	assert.Empty(t, visibleIDs(m))
	assert.Empty(t, m.grid.Rows())
}

func TestModel_SortCycle(t *testing.T) {
	m := loadedModel(t)

	m = send(t, m, keyRunes("s"))
	assert.Equal(t, domain.SortPriceLow, m.Controller().State().Sort)
	assert.Equal(t, []domain.ProductID{"3", "5", "4", "1", "6", "2"}, visibleIDs(m))

	m = send(t, m, keyRunes("s"), keyRunes("s"))
	assert.Equal(t, domain.SortRating, m.Controller().State().Sort)

	m = send(t, m, keyRunes("s"))
	assert.Equal(t, domain.SortNewest, m.Controller().State().Sort)
}

func TestModel_FilterKeys(t *testing.T) {
	m := loadedModel(t)

	m = send(t, m, keyRunes("c"))
	require.NotNil(t, m.Controller().State().Filters.Category)
	assert.Equal(t, "Audio", *m.Controller().State().Filters.Category)
	assert.Equal(t, []domain.ProductID{"3"}, visibleIDs(m))

	m = send(t, m, keyRunes("t"), keyRunes("t"))
	assert.Equal(t, "Y", *m.Controller().State().Filters.Store)
	assert.Empty(t, visibleIDs(m))
	assert.Contains(t, m.View(), domain.EmptyResultsMessage)

	m = send(t, m, keyRunes("R"))
	assert.Equal(t, domain.DefaultCriteria(), m.Controller().State().Filters)
	assert.Len(t, visibleIDs(m), 6)

	m = send(t, m, keyRunes("r"), keyRunes("r"), keyRunes("r"))
	assert.Equal(t, 4.0, m.Controller().State().Filters.MinRating)
	assert.Equal(t, []domain.ProductID{"6", "4", "3", "1"}, visibleIDs(m))
}

func TestModel_SearchMode(t *testing.T) {
	m := loadedModel(t)

	m = send(t, m, keyRunes("/"), keyRunes("lap"))
	assert.Equal(t, modeSearch, m.mode)
	assert.Equal(t, "lap", m.Controller().State().Search)
	assert.Equal(t, []domain.ProductID{"2"}, visibleIDs(m))

	// Keys go to the input while searching, so "s" does not change the sort.
	m = send(t, m, keyRunes("s"))
	assert.Equal(t, domain.SortNewest, m.Controller().State().Sort)
	assert.Equal(t, "laps", m.Controller().State().Search)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "lap", m.Controller().State().Search)

	m = send(t, m, keyRunes("R"))
	assert.Empty(t, m.Controller().State().Search)
	assert.Empty(t, m.search.Value())
}

func TestModel_PriceMode(t *testing.T) {
	m := loadedModel(t)

	m = send(t, m, keyRunes("p"), keyRunes("100-600"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, m.mode)
	f := m.Controller().State().Filters
	assert.Equal(t, 100.0, f.MinPrice)
	assert.Equal(t, 600.0, f.MaxPrice)
	assert.Equal(t, []domain.ProductID{"5", "4", "1"}, visibleIDs(m))

	m = send(t, m, keyRunes("p"), tea.KeyMsg{Type: tea.KeyCtrlU}, keyRunes("abc"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, errPriceRange.Error(), m.notice)
	assert.Equal(t, 100.0, m.Controller().State().Filters.MinPrice, "a bad range leaves the filter alone")
}

func TestModel_ComparisonCapacity(t *testing.T) {
	m := loadedModel(t)

	down := tea.KeyMsg{Type: tea.KeyDown}
	space := tea.KeyMsg{Type: tea.KeySpace}
	for i := 0; i < domain.MaxComparison; i++ {
		m = send(t, m, space, down)
	}
	assert.Equal(t, domain.MaxComparison, m.Controller().State().Comparison.Len())
	assert.Empty(t, m.notice)
	assert.Contains(t, m.View(), "View Comparison (5/5)")

	m = send(t, m, space)
	assert.Equal(t, domain.CapacityMessage, m.notice)
	assert.Equal(t, domain.MaxComparison, m.Controller().State().Comparison.Len())
	assert.Contains(t, m.View(), domain.CapacityMessage)

	// The next key clears the notice.
	m = send(t, m, keyRunes("v"))
	assert.Empty(t, m.notice)
	assert.True(t, m.Controller().State().ComparisonVisible())
	assert.Contains(t, m.View(), "Product Comparison (5)")

	m = send(t, m, keyRunes("x"))
	assert.Zero(t, m.Controller().State().Comparison.Len())
	assert.False(t, m.Controller().State().ComparisonVisible())
}

func TestModel_ToggleRemovesCompared(t *testing.T) {
	m := loadedModel(t)
	space := tea.KeyMsg{Type: tea.KeySpace}

	m = send(t, m, space)
	assert.True(t, m.Controller().State().Comparison.Contains("6"))
	assert.Equal(t, compareMark, m.grid.Rows()[0][0])

	m = send(t, m, space)
	assert.False(t, m.Controller().State().Comparison.Contains("6"))
	assert.Empty(t, m.grid.Rows()[0][0])
}

func TestModel_CursorClampedWhenListShrinks(t *testing.T) {
	m := loadedModel(t)
	for i := 0; i < 5; i++ {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, 5, m.grid.Cursor())

	m = send(t, m, keyRunes("c"))
	assert.Equal(t, 0, m.grid.Cursor())
}

func TestModel_Quit(t *testing.T) {
	m := loadedModel(t)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSize(t *testing.T) {
	m := loadedModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	assert.Equal(t, 160, m.width)
	cols := m.grid.Columns()
	require.Len(t, cols, len(gridHeaders))
	assert.Equal(t, 48, cols[len(cols)-1].Width)
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		in      string
		wantMin float64
		wantMax float64
		wantErr bool
	}{
		{"10-250", 10, 250, false},
		{" $10 - $250 ", 10, 250, false},
		{"-500", domain.DefaultMinPrice, 500, false},
		{"100-", 100, domain.DefaultMaxPrice, false},
		{"-", domain.DefaultMinPrice, domain.DefaultMaxPrice, false},
		{"19.99-49.5", 19.99, 49.5, false},
		{"300-100", 300, 100, false},
		{"250", 0, 0, true},
		{"a-b", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lo, hi, err := ParsePriceRange(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errPriceRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, lo)
			assert.Equal(t, tt.wantMax, hi)
		})
	}
}

func TestNextOption(t *testing.T) {
	opts := []string{"A", "B"}

	first := nextOption(nil, opts)
	require.NotNil(t, first)
	assert.Equal(t, "A", *first)

	*first = "mutated"
	assert.Equal(t, "A", opts[0], "returned pointer must not alias the options")

	second := nextOption(ptr("A"), opts)
	require.NotNil(t, second)
	assert.Equal(t, "B", *second)

	assert.Nil(t, nextOption(ptr("B"), opts))
	assert.Nil(t, nextOption(ptr("gone"), opts))
	assert.Nil(t, nextOption(nil, nil))
}

func TestNextRatingAndSort(t *testing.T) {
	assert.Equal(t, 3.0, nextRating(0))
	assert.Equal(t, 4.5, nextRating(4))
	assert.Equal(t, 0.0, nextRating(4.5))
	assert.Equal(t, 0.0, nextRating(2))

	assert.Equal(t, domain.SortPriceLow, nextSortKey(domain.SortNewest))
	assert.Equal(t, domain.SortNewest, nextSortKey(domain.SortRating))
	assert.Equal(t, domain.SortNewest, nextSortKey("bogus"))
}
