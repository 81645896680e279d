package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/domain"
)

const compareMark = "✓"

// RenderFilterBar summarizes the search, sort and filter state on one line.
func RenderFilterBar(s catalog.State, styles Styles) string {
	parts := []string{
		"Sort: " + styles.Active.Render(s.Sort.Label()),
		"Category: " + optionLabel(s.Filters.Category, "All"),
		"Store: " + optionLabel(s.Filters.Store, "All"),
		fmt.Sprintf("Price: %s-%s", catalog.FormatPrice(s.Filters.MinPrice), catalog.FormatPrice(s.Filters.MaxPrice)),
		"Rating: " + ratingLabel(s.Filters.MinRating),
	}
	if s.Search != "" {
		parts = append([]string{fmt.Sprintf("Search: %q", s.Search)}, parts...)
	}
	if n := s.Filters.ActiveCount(); n > 0 {
		parts = append(parts, styles.Badge.Render(fmt.Sprintf("%d active", n)))
	}
	return strings.Join(parts, "  ")
}

// RenderGrid draws the visible products as a table, marking compared rows.
func RenderGrid(products []domain.Product, compared domain.ComparisonSet, styles Styles) string {
	if len(products) == 0 {
		return styles.Muted.Render(domain.EmptyResultsMessage)
	}
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = gridRow(p, compared)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(gridHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})
	return t.Render()
}

// RenderComparison draws the comparison table, one line per product in
// the order they were added.
func RenderComparison(products []domain.Product, styles Styles) string {
	title := styles.Title.Render(fmt.Sprintf("Product Comparison (%d)", len(products)))
	if len(products) == 0 {
		return title
	}
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			p.Name,
			catalog.FormatPrice(p.Price),
			p.Store,
			"★ " + catalog.FormatRating(p.Rating),
			catalog.AvailabilityLabel(p),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Product", "Price", "Store", "Rating", "Availability").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Header
			case col == 4 && products[row].InStock():
				return styles.Cell.Inherit(styles.InStock)
			case col == 4:
				return styles.Cell.Inherit(styles.OutStock)
			default:
				return styles.Cell
			}
		})
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render())
}

// RenderComparisonBar is the footer line advertising the comparison set.
func RenderComparisonBar(set domain.ComparisonSet, styles Styles) string {
	if set.Len() == 0 {
		return ""
	}
	return styles.Badge.Render(fmt.Sprintf("View Comparison (%d/%d)", set.Len(), domain.MaxComparison))
}

// RenderSnapshot renders a whole page without interaction: the banner on
// failure, the filter bar, the result count and the grid or comparison.
func RenderSnapshot(ctrl *catalog.Controller, styles Styles) string {
	var sb strings.Builder
	if banner := ctrl.Snapshot().Banner(); banner != "" {
		sb.WriteString(styles.Banner.Render(banner))
		sb.WriteString("\n")
	}
	s := ctrl.State()
	sb.WriteString(RenderFilterBar(s, styles))
	sb.WriteString("\n")

	if s.ComparisonVisible() {
		sb.WriteString(RenderComparison(s.Comparison.Products(), styles))
		sb.WriteString("\n")
		return sb.String()
	}

	visible := ctrl.Visible()
	sb.WriteString(styles.Title.Render(fmt.Sprintf("Products (%d)", len(visible))))
	sb.WriteString("\n")
	sb.WriteString(RenderGrid(visible, s.Comparison, styles))
	sb.WriteString("\n")
	if bar := RenderComparisonBar(s.Comparison, styles); bar != "" {
		sb.WriteString(bar)
		sb.WriteString("\n")
	}
	return sb.String()
}

var gridHeaders = []string{"", "Name", "Category", "Store", "Price", "Deal", "Rating", "Stock", "Description"}

func gridRow(p domain.Product, compared domain.ComparisonSet) []string {
	mark := ""
	if compared.Contains(p.ID) {
		mark = compareMark
	}
	deal := ""
	if p.Discounted() {
		deal = "was " + catalog.FormatPrice(*p.OriginalPrice)
	}
	if pct, ok := catalog.DiscountBadge(p); ok {
		deal = strings.TrimSpace(fmt.Sprintf("%s -%d%%", deal, pct))
	}
	return []string{
		mark,
		p.Name,
		p.Category,
		p.Store,
		catalog.FormatPrice(p.Price),
		deal,
		"★ " + catalog.FormatRating(p.Rating),
		catalog.AvailabilityLabel(p),
		catalog.ShortDescription(p),
	}
}

func optionLabel(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func ratingLabel(r float64) string {
	if r <= 0 {
		return "Any"
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "+"
}
