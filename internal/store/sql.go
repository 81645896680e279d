package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"price-compare-storefront/internal/domain"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLStore reads the catalog straight from the backend's products table.
// It never writes.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore wraps an open database handle. driver selects the placeholder syntax.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// OpenSQLStore opens and pings the database. The ping returns once ctx is
// done even if the driver is still stuck in its connection handshake.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}
	s, err := NewSQLStore(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	done := make(chan error, 1)
	go func() { done <- db.PingContext(ctx) }()
	select {
	case err := <-done:
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const productColumns = `id, name, description, category, store, price, original_price,
		discount_percentage, rating, availability, created_at, image, link`

// ListProducts returns up to limit products, newest first. limit <= 0 means no limit.
func (s *SQLStore) ListProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT " + s.placeholder(1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, nil
}

// ListCategories returns the distinct categories ordered by name.
func (s *SQLStore) ListCategories(ctx context.Context) ([]string, error) {
	names, err := s.distinct(ctx, "category")
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories: %w", err)
	}
	return names, nil
}

// ListStores returns the distinct store names ordered by name.
func (s *SQLStore) ListStores(ctx context.Context) ([]string, error) {
	names, err := s.distinct(ctx, "store")
	if err != nil {
		return nil, fmt.Errorf("store: ListStores: %w", err)
	}
	return names, nil
}

// distinct is only called with the fixed column names above.
func (s *SQLStore) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM products WHERE %[1]s IS NOT NULL ORDER BY %[1]s", column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", column, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s iteration error: %w", column, err)
	}
	return names, nil
}

// Ping checks the connection, used by the health endpoint.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		p                              domain.Product
		id                             int64
		description, availability      sql.NullString
		image, link, createdAt         sql.NullString
		price, originalPrice, discount sql.NullFloat64
		rating                         sql.NullFloat64
	)
	err := rows.Scan(&id, &p.Name, &description, &p.Category, &p.Store, &price, &originalPrice,
		&discount, &rating, &availability, &createdAt, &image, &link)
	if err != nil {
		return domain.Product{}, err
	}

	p.ID = domain.ProductIDFromInt(id)
	p.Description = nullString(description)
	p.Price = price.Float64
	p.OriginalPrice = nullFloat(originalPrice)
	p.DiscountPercentage = nullFloat(discount)
	p.Rating = rating.Float64
	p.Availability = domain.InStock
	if availability.Valid && strings.TrimSpace(availability.String) != "" {
		p.Availability = domain.Availability(availability.String)
	}
	if createdAt.Valid {
		p.CreatedAt, _ = domain.ParseTimestamp(createdAt.String)
	}
	p.Image = nullString(image)
	p.Link = nullString(link)
	return p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
