package catalog

import (
	"fmt"
	"math"
	"strings"

	"price-compare-storefront/internal/domain"
)

const (
	PlaceholderImage      = "https://via.placeholder.com/300x300?text=No+Image"
	shortDescriptionRunes = 60
)

// ShortDescription is the card teaser: the first 60 characters followed by
// "...", or "" when the product has no description.
func ShortDescription(p domain.Product) string {
	d := p.DescriptionText()
	if d == "" {
		return ""
	}
	r := []rune(d)
	if len(r) > shortDescriptionRunes {
		r = r[:shortDescriptionRunes]
	}
	return string(r) + "..."
}

// DiscountBadge returns the rounded discount percentage; ok is false when
// there is no discount to show.
func DiscountBadge(p domain.Product) (percent int, ok bool) {
	d := p.Discount()
	if d <= 0 {
		return 0, false
	}
	return int(math.Round(d)), true
}

// ImageURL falls back to the placeholder image.
func ImageURL(p domain.Product) string {
	if p.Image == nil || strings.TrimSpace(*p.Image) == "" {
		return PlaceholderImage
	}
	return *p.Image
}

func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func FormatRating(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// AvailabilityLabel is the short stock label shown in the comparison table.
func AvailabilityLabel(p domain.Product) string {
	if p.InStock() {
		return "In Stock"
	}
	return "Out of Stock"
}
