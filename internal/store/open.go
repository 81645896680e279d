package store

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"price-compare-storefront/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the CatalogReader selected by cfg.Catalog.Source. The
// returned closer releases the database handle for SQL sources and is
// never nil.
func Open(ctx context.Context, cfg *config.Config) (CatalogReader, io.Closer, error) {
	switch cfg.Catalog.Source {
	case config.SourceAPI, "":
		return NewAPIClient(cfg.Catalog.APIURL, &http.Client{Timeout: cfg.Catalog.FetchTimeout}), nopCloser{}, nil
	case config.SourcePostgres:
		s, err := OpenSQLStore(ctx, DriverPostgres, cfg.Postgres.DSN())
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	case config.SourceSQLite:
		s, err := OpenSQLStore(ctx, DriverSQLite, cfg.SQLite.DSN())
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("store: unknown catalog source %q", cfg.Catalog.Source)
	}
}
