package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-compare-storefront/internal/domain"
)

// Helper function to create a mock DB and SQLStore for testing
func newMockDBAndStore(t *testing.T, driver string) (*sql.DB, sqlmock.Sqlmock, *SQLStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store, err := NewSQLStore(db, driver)
	require.NoError(t, err)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

var productRowColumns = []string{
	"id", "name", "description", "category", "store", "price", "original_price",
	"discount_percentage", "rating", "availability", "created_at", "image", "link",
}

func TestSQLStore_ListProducts_Postgres(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverPostgres)
	defer db.Close()

	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC LIMIT $1`)

	rows := sqlmock.NewRows(productRowColumns).
		AddRow(1, "Phone A", "Flagship phone", "Phones", "X", 500.0, 650.0, 23.1, 4.2, "in_stock", created, "https://img/a.png", "https://x/a").
		AddRow(2, "Laptop B", nil, "Laptops", "Y", 1200.0, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(query).WithArgs(100).WillReturnRows(rows)

	products, err := store.ListProducts(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, products, 2)

	a := products[0]
	assert.Equal(t, domain.ProductID("1"), a.ID)
	assert.Equal(t, "Flagship phone", a.DescriptionText())
	require.NotNil(t, a.OriginalPrice)
	assert.Equal(t, 650.0, *a.OriginalPrice)
	assert.Equal(t, 23.1, a.Discount())
	assert.Equal(t, 4.2, a.Rating)
	assert.True(t, a.CreatedAt.Equal(created))
	require.NotNil(t, a.Link)

	b := products[1]
	assert.Nil(t, b.Description)
	assert.Nil(t, b.OriginalPrice)
	assert.Zero(t, b.Rating)
	assert.Equal(t, domain.InStock, b.Availability)
	assert.True(t, b.CreatedAt.IsZero())
	assert.Nil(t, b.Image)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestSQLStore_ListProducts_SQLiteNoLimit(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverSQLite)
	defer db.Close()

	query := regexp.QuoteMeta(`ORDER BY created_at DESC`) + `$`
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(7, "Headphones", "Noise cancelling", "Audio", "eBay", 99.5, nil, nil, 4.8, "out_of_stock", "2024-01-05 08:00:00", nil, nil)
	mock.ExpectQuery(query).WillReturnRows(rows)

	products, err := store.ListProducts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.OutOfStock, products[0].Availability)
	assert.Equal(t, 2024, products[0].CreatedAt.Year())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListProducts_SQLitePlaceholder(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverSQLite)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT ?`)).WithArgs(5).WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := store.ListProducts(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListProducts_QueryError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverPostgres)
	defer db.Close()

	dbErr := errors.New("relation \"products\" does not exist")
	mock.ExpectQuery(`FROM products`).WillReturnError(dbErr)

	_, err := store.ListProducts(context.Background(), 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListCategoriesAndStores(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverPostgres)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Laptops").AddRow("Phones"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT store FROM products WHERE store IS NOT NULL ORDER BY store`)).
		WillReturnRows(sqlmock.NewRows([]string{"store"}))

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptops", "Phones"}, categories)

	stores, err := store.ListStores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, stores)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListStores_ScanError(t *testing.T) {
	db, mock, store := newMockDBAndStore(t, DriverPostgres)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT store`).
		WillReturnRows(sqlmock.NewRows([]string{"store"}).AddRow("X").RowError(0, errors.New("connection reset")))

	_, err := store.ListStores(context.Background())
	assert.Error(t, err)
}

func TestSQLStore_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	store, err := NewSQLStore(db, DriverSQLite)
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLStore_UnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLStore(db, "mysql")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
