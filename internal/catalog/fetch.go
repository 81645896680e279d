package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"price-compare-storefront/internal/domain"
	"price-compare-storefront/internal/store"
)

// Status is the load state of the startup fetch.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Snapshot is the outcome of the startup fetch as the UI sees it.
type Snapshot struct {
	Catalog domain.Catalog
	Status  Status
	Err     error
}

// LoadingSnapshot is the snapshot before the fetch completes.
func LoadingSnapshot() Snapshot {
	return Snapshot{Status: StatusLoading}
}

// Banner is the user visible error message, empty unless the fetch failed.
func (s Snapshot) Banner() string {
	if s.Status == StatusFailed {
		return domain.FetchFailureMessage
	}
	return ""
}

// Fetch requests products, categories and stores concurrently. The first
// failure cancels the other requests and is returned wrapped in
// domain.ErrFetchFailed. There is no retry.
func Fetch(ctx context.Context, reader store.CatalogReader, limit int) (domain.Catalog, error) {
	var (
		products   []domain.Product
		categories []string
		stores     []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = reader.ListProducts(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = reader.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = reader.ListStores(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	return domain.Catalog{
		Products:   nonNil(products),
		Categories: nonNil(categories),
		Stores:     nonNil(stores),
	}, nil
}

// Load runs Fetch and folds the result into a Snapshot. A failed fetch
// leaves the catalog empty.
func Load(ctx context.Context, reader store.CatalogReader, limit int) Snapshot {
	cat, err := Fetch(ctx, reader, limit)
	if err != nil {
		return FailedSnapshot(err)
	}
	return Snapshot{Catalog: cat, Status: StatusReady}
}

// FailedSnapshot is the snapshot of a fetch that could not complete.
func FailedSnapshot(err error) Snapshot {
	if !errors.Is(err, domain.ErrFetchFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	return Snapshot{
		Catalog: domain.Catalog{Products: []domain.Product{}, Categories: []string{}, Stores: []string{}},
		Status:  StatusFailed,
		Err:     err,
	}
}

// Loader publishes the snapshot of a single startup fetch to concurrent readers.
type Loader struct {
	current atomic.Pointer[Snapshot]
}

func NewLoader() *Loader {
	l := &Loader{}
	snap := LoadingSnapshot()
	l.current.Store(&snap)
	return l
}

// Run performs the fetch and publishes its result. It is meant to be called once.
func (l *Loader) Run(ctx context.Context, reader store.CatalogReader, limit int) Snapshot {
	snap := Load(ctx, reader, limit)
	l.current.Store(&snap)
	return snap
}

// Fail publishes a failed snapshot without fetching, for sources that could
// not even be opened.
func (l *Loader) Fail(err error) Snapshot {
	snap := FailedSnapshot(err)
	l.current.Store(&snap)
	return snap
}

func (l *Loader) Snapshot() Snapshot {
	return *l.current.Load()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
