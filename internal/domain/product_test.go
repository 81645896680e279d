package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalJSON_FullPayload(t *testing.T) {
	payload := `{
		"id": 42,
		"name": "Wireless Mouse",
		"description": "Ergonomic 2.4GHz mouse",
		"category": "Electronics",
		"store": "Amazon",
		"price": 19.99,
		"original_price": 29.99,
		"discount_percentage": 33.3,
		"rating": 4.4,
		"availability": "out_of_stock",
		"created_at": "2024-03-01T10:00:00Z",
		"image": "https://img.example/mouse.png",
		"link": "https://shop.example/mouse"
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	assert.Equal(t, ProductID("42"), p.ID)
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.Equal(t, "Ergonomic 2.4GHz mouse", p.DescriptionText())
	assert.Equal(t, 19.99, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 29.99, *p.OriginalPrice)
	assert.Equal(t, 33.3, p.Discount())
	assert.Equal(t, 4.4, p.Rating)
	assert.Equal(t, OutOfStock, p.Availability)
	assert.False(t, p.InStock())
	assert.True(t, p.Discounted())
	assert.True(t, p.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestProduct_UnmarshalJSON_MissingFieldsUseDefaults(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","name":"Bare"}`), &p))

	assert.Equal(t, ProductID("abc"), p.ID)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Rating)
	assert.Equal(t, InStock, p.Availability)
	assert.True(t, p.CreatedAt.IsZero())
	assert.Empty(t, p.DescriptionText())
	assert.False(t, p.Discounted())
	assert.Zero(t, p.Discount())
}

func TestProduct_UnmarshalJSON_NullsUseDefaults(t *testing.T) {
	var p Product
	payload := `{"id":7,"name":"N","price":null,"rating":null,"availability":null,"created_at":null,"description":null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	assert.Zero(t, p.Price)
	assert.Zero(t, p.Rating)
	assert.Equal(t, InStock, p.Availability)
	assert.True(t, p.CreatedAt.IsZero())
	assert.Nil(t, p.Description)
}

func TestProduct_UnmarshalJSON_InvalidID(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"id":{"nested":true}}`), &p)
	assert.Error(t, err)
}

func TestTimestamp_Formats(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2024-05-06T07:08:09Z"`, want},
		{"sqlite datetime", `"2024-05-06 07:08:09"`, want},
		{"python isoformat", `"2024-05-06T07:08:09.000000"`, want},
		{"rfc1123 from flask", `"Mon, 06 May 2024 07:08:09 GMT"`, want},
		{"epoch seconds", `1714979289`, want},
		{"garbage", `"yesterday"`, time.Time{}},
		{"wrong type", `true`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, ts.Equal(tt.want), "got %v", ts.Time)
		})
	}
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	zero, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(zero))

	set, err := json.Marshal(Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-02T03:04:05Z"`, string(set))
}

func TestCatalog_Find(t *testing.T) {
	c := Catalog{Products: []Product{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}}

	p, ok := c.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Two", p.Name)

	_, ok = c.Find("3")
	assert.False(t, ok)
}

func TestProductIDFromInt(t *testing.T) {
	assert.Equal(t, ProductID("1234"), ProductIDFromInt(1234))
}
