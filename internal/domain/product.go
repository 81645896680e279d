package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProductID identifies a product. The catalog API emits numeric ids,
// other sources may emit strings, so both decode into the same type.
type ProductID string

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("domain: invalid product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("domain: invalid product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// ProductIDFromInt formats a numeric database id.
func ProductIDFromInt(n int64) ProductID {
	return ProductID(strconv.FormatInt(n, 10))
}

// Availability is the stock state reported by the store.
type Availability string

const (
	InStock    Availability = "in_stock"
	OutOfStock Availability = "out_of_stock"
)

// UnmarshalJSON maps an absent or empty availability to in_stock, the backend default.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain: invalid availability: %w", err)
	}
	if s == nil || *s == "" {
		*a = InStock
		return nil
	}
	*a = Availability(*s)
	return nil
}

// Timestamp is a creation time that tolerates the formats the catalog
// backends emit. Anything unparseable becomes the zero time, which sorts
// as the oldest entry.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseTimestamp parses s with the known layouts; ok is false when none matched.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		// Epoch seconds are accepted too.
		var secs float64
		if numErr := json.Unmarshal(data, &secs); numErr == nil {
			*t = Timestamp{Time: time.Unix(int64(secs), 0).UTC()}
			return nil
		}
		*t = Timestamp{}
		return nil
	}
	if s == nil {
		*t = Timestamp{}
		return nil
	}
	parsed, _ := ParseTimestamp(*s)
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Product represents one item offered by one store.
// The json tags follow the catalog API payload.
type Product struct {
	ID                 ProductID    `json:"id"`
	Name               string       `json:"name"`
	Description        *string      `json:"description,omitempty"`
	Category           string       `json:"category"`
	Store              string       `json:"store"`
	Price              float64      `json:"price"`
	OriginalPrice      *float64     `json:"original_price,omitempty"`
	DiscountPercentage *float64     `json:"discount_percentage,omitempty"`
	Rating             float64      `json:"rating"`
	Availability       Availability `json:"availability"`
	CreatedAt          Timestamp    `json:"created_at"`
	Image              *string      `json:"image,omitempty"`
	Link               *string      `json:"link,omitempty"`
}

// UnmarshalJSON applies the missing-field defaults: absent rating and price
// decode as 0, absent availability as in_stock.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Price  *float64 `json:"price"`
		Rating *float64 `json:"rating"`
	}{plain: (*plain)(p)}
	p.Availability = InStock
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Price = 0
	if aux.Price != nil {
		p.Price = *aux.Price
	}
	p.Rating = 0
	if aux.Rating != nil {
		p.Rating = *aux.Rating
	}
	return nil
}

// DescriptionText returns the description or "" when absent.
func (p Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// InStock reports whether the product can be bought.
func (p Product) InStock() bool {
	return p.Availability == InStock
}

// Discounted reports whether an original price above the current one is known.
func (p Product) Discounted() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// Discount returns the discount percentage, or 0 when none is known.
func (p Product) Discount() float64 {
	if p.DiscountPercentage == nil {
		return 0
	}
	return *p.DiscountPercentage
}

// Catalog is the result of the startup fetch. It is treated as immutable.
type Catalog struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
	Stores     []string  `json:"stores"`
}

// Find returns the product with the given id.
func (c Catalog) Find(id ProductID) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
