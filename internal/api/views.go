package api

import (
	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/domain"
)

// ProductCard is a product as the grid shows it.
type ProductCard struct {
	Product           domain.Product `json:"product"`
	InStock           bool           `json:"in_stock"`
	DiscountBadge     *int           `json:"discount_badge,omitempty"`
	ShowOriginalPrice bool           `json:"show_original_price"`
	ShortDescription  string         `json:"short_description,omitempty"`
	ImageURL          string         `json:"image_url"`
	InComparison      bool           `json:"in_comparison"`
}

// ViewResponse is the full storefront view of one session.
type ViewResponse struct {
	SessionID      string                `json:"session_id"`
	Status         catalog.Status        `json:"status"`
	Error          string                `json:"error,omitempty"`
	Search         string                `json:"search"`
	Filters        domain.FilterCriteria `json:"filters"`
	SortBy         domain.SortKey        `json:"sort_by"`
	ActiveFilters  int                   `json:"active_filters"`
	Count          int                   `json:"count"`
	Products       []ProductCard         `json:"products"`
	Comparison     []domain.ProductID    `json:"comparison"`
	ShowComparison bool                  `json:"show_comparison"`
	EmptyMessage   string                `json:"empty_message,omitempty"`
}

// ComparisonRow is one line of the comparison table.
type ComparisonRow struct {
	ID                domain.ProductID    `json:"id"`
	Name              string              `json:"name"`
	ImageURL          string              `json:"image_url,omitempty"`
	Price             float64             `json:"price"`
	PriceLabel        string              `json:"price_label"`
	Store             string              `json:"store"`
	Rating            float64             `json:"rating"`
	Availability      domain.Availability `json:"availability"`
	AvailabilityLabel string              `json:"availability_label"`
}

// ComparisonResponse is the comparison table of one session.
type ComparisonResponse struct {
	SessionID string          `json:"session_id"`
	Count     int             `json:"count"`
	Max       int             `json:"max"`
	Visible   bool            `json:"visible"`
	Items     []ComparisonRow `json:"items"`
}

// CatalogResponse describes the startup fetch outcome.
type CatalogResponse struct {
	Status       catalog.Status `json:"status"`
	Error        string         `json:"error,omitempty"`
	Categories   []string       `json:"categories"`
	Stores       []string       `json:"stores"`
	ProductCount int            `json:"product_count"`
	SortOptions  []SortOption   `json:"sort_options"`
	RatingSteps  []float64      `json:"rating_steps"`
}

type SortOption struct {
	Value domain.SortKey `json:"value"`
	Label string         `json:"label"`
}

func newProductCard(p domain.Product, inComparison bool) ProductCard {
	card := ProductCard{
		Product:           p,
		InStock:           p.InStock(),
		ShowOriginalPrice: p.Discounted(),
		ShortDescription:  catalog.ShortDescription(p),
		ImageURL:          catalog.ImageURL(p),
		InComparison:      inComparison,
	}
	if pct, ok := catalog.DiscountBadge(p); ok {
		card.DiscountBadge = &pct
	}
	return card
}

func newViewResponse(sessionID string, c *catalog.Controller) ViewResponse {
	st := c.State()
	visible := c.Visible()
	cards := make([]ProductCard, len(visible))
	for i, p := range visible {
		cards[i] = newProductCard(p, st.Comparison.Contains(p.ID))
	}

	v := ViewResponse{
		SessionID:      sessionID,
		Status:         c.Status(),
		Error:          c.Snapshot().Banner(),
		Search:         st.Search,
		Filters:        st.Filters,
		SortBy:         st.Sort,
		ActiveFilters:  st.Filters.ActiveCount(),
		Count:          len(cards),
		Products:       cards,
		Comparison:     st.Comparison.IDs(),
		ShowComparison: st.ComparisonVisible(),
	}
	if len(cards) == 0 && c.Ready() {
		v.EmptyMessage = domain.EmptyResultsMessage
	}
	return v
}

func newComparisonResponse(sessionID string, c *catalog.Controller) ComparisonResponse {
	st := c.State()
	products := st.Comparison.Products()
	rows := make([]ComparisonRow, len(products))
	for i, p := range products {
		row := ComparisonRow{
			ID:                p.ID,
			Name:              p.Name,
			Price:             p.Price,
			PriceLabel:        catalog.FormatPrice(p.Price),
			Store:             p.Store,
			Rating:            p.Rating,
			Availability:      p.Availability,
			AvailabilityLabel: catalog.AvailabilityLabel(p),
		}
		if p.Image != nil {
			row.ImageURL = *p.Image
		}
		rows[i] = row
	}
	return ComparisonResponse{
		SessionID: sessionID,
		Count:     len(rows),
		Max:       domain.MaxComparison,
		Visible:   st.ComparisonVisible(),
		Items:     rows,
	}
}

func newCatalogResponse(snap catalog.Snapshot) CatalogResponse {
	opts := make([]SortOption, len(domain.SortKeys))
	for i, k := range domain.SortKeys {
		opts[i] = SortOption{Value: k, Label: k.Label()}
	}
	categories := snap.Catalog.Categories
	if categories == nil {
		categories = []string{}
	}
	stores := snap.Catalog.Stores
	if stores == nil {
		stores = []string{}
	}
	return CatalogResponse{
		Status:       snap.Status,
		Error:        snap.Banner(),
		Categories:   categories,
		Stores:       stores,
		ProductCount: len(snap.Catalog.Products),
		SortOptions:  opts,
		RatingSteps:  domain.RatingThresholds,
	}
}
