package catalog

import (
	"price-compare-storefront/internal/domain"
)

// Controller pairs a catalog snapshot with one session's State and keeps
// the derived visible list current. Every mutating method applies a
// transition and then recomputes the list.
//
// A Controller has a single mutator; callers sharing one across goroutines
// must serialize access.
type Controller struct {
	snapshot Snapshot
	state    State
	visible  []domain.Product
}

// NewController returns a controller in the loading state.
func NewController() *Controller {
	return NewControllerFrom(LoadingSnapshot())
}

// NewControllerFrom returns a controller over an already fetched snapshot.
func NewControllerFrom(snap Snapshot) *Controller {
	c := &Controller{snapshot: snap, state: DefaultState()}
	c.recompute()
	return c
}

// Attach installs the snapshot produced by the startup fetch.
func (c *Controller) Attach(snap Snapshot) {
	c.snapshot = snap
	c.recompute()
}

func (c *Controller) Snapshot() Snapshot { return c.snapshot }

func (c *Controller) Status() Status { return c.snapshot.Status }

func (c *Controller) Ready() bool { return c.snapshot.Status == StatusReady }

func (c *Controller) State() State { return c.state }

func (c *Controller) Categories() []string { return c.snapshot.Catalog.Categories }

func (c *Controller) Stores() []string { return c.snapshot.Catalog.Stores }

// Product looks up a catalog product by id.
func (c *Controller) Product(id domain.ProductID) (domain.Product, bool) {
	return c.snapshot.Catalog.Find(id)
}

// Visible returns a copy of the derived list.
func (c *Controller) Visible() []domain.Product {
	out := make([]domain.Product, len(c.visible))
	copy(out, c.visible)
	return out
}

// Apply runs an arbitrary transition.
func (c *Controller) Apply(transition func(State) State) {
	c.state = transition(c.state)
	c.recompute()
}

func (c *Controller) SetSearch(query string) {
	c.Apply(func(s State) State { return s.WithSearch(query) })
}

func (c *Controller) SetFilters(f domain.FilterCriteria) {
	c.Apply(func(s State) State { return s.WithFilters(f) })
}

func (c *Controller) SetPriceRange(minPrice, maxPrice float64) {
	c.Apply(func(s State) State { return s.WithPriceRange(minPrice, maxPrice) })
}

func (c *Controller) SetSort(key domain.SortKey) {
	c.Apply(func(s State) State { return s.WithSort(key) })
}

func (c *Controller) ToggleCategory(category string) {
	c.Apply(func(s State) State { return s.ToggleCategory(category) })
}

func (c *Controller) ToggleStore(store string) {
	c.Apply(func(s State) State { return s.ToggleStore(store) })
}

func (c *Controller) ToggleMinRating(rating float64) {
	c.Apply(func(s State) State { return s.ToggleMinRating(rating) })
}

func (c *Controller) ResetFilters() {
	c.Apply(State.ResetFilters)
}

func (c *Controller) ClearComparison() {
	c.Apply(State.ClearComparison)
}

func (c *Controller) ToggleComparisonView() {
	c.Apply(State.ToggleComparisonView)
}

// ToggleComparison adds or removes the product with the given id.
// It fails with domain.ErrCatalogLoading while the fetch is running,
// domain.ErrProductNotFound for unknown ids and domain.ErrCapacityExceeded
// when a sixth product is added.
func (c *Controller) ToggleComparison(id domain.ProductID) error {
	if c.snapshot.Status == StatusLoading {
		return domain.ErrCatalogLoading
	}
	p, ok := c.snapshot.Catalog.Find(id)
	if !ok {
		return domain.ErrProductNotFound
	}
	next, err := c.state.ToggleComparison(p)
	if err != nil {
		return err
	}
	c.state = next
	c.recompute()
	return nil
}

func (c *Controller) recompute() {
	c.visible = Derive(c.snapshot.Catalog.Products, c.state)
}
