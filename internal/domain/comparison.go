package domain

// MaxComparison is the capacity of a ComparisonSet.
const MaxComparison = 5

// ComparisonSet is a bounded, insertion-ordered set of products keyed by ID.
// The zero value is an empty set. Methods never modify the receiver.
type ComparisonSet struct {
	items []Product
}

// NewComparisonSet builds a set from products, dropping duplicates and
// anything past capacity.
func NewComparisonSet(products ...Product) ComparisonSet {
	var s ComparisonSet
	for _, p := range products {
		if s.Contains(p.ID) || s.Len() >= MaxComparison {
			continue
		}
		s.items = append(s.items, p)
	}
	return s
}

func (s ComparisonSet) Len() int { return len(s.items) }

func (s ComparisonSet) Contains(id ProductID) bool {
	for _, p := range s.items {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Toggle removes p when present, appends it when there is room, and
// returns ErrCapacityExceeded with the set unchanged otherwise.
func (s ComparisonSet) Toggle(p Product) (ComparisonSet, error) {
	if s.Contains(p.ID) {
		next := make([]Product, 0, len(s.items)-1)
		for _, item := range s.items {
			if item.ID != p.ID {
				next = append(next, item)
			}
		}
		return ComparisonSet{items: next}, nil
	}
	if len(s.items) >= MaxComparison {
		return s, ErrCapacityExceeded
	}
	next := make([]Product, len(s.items), len(s.items)+1)
	copy(next, s.items)
	return ComparisonSet{items: append(next, p)}, nil
}

// Products returns the members in insertion order.
func (s ComparisonSet) Products() []Product {
	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out
}

// IDs returns the member ids in insertion order.
func (s ComparisonSet) IDs() []ProductID {
	ids := make([]ProductID, len(s.items))
	for i, p := range s.items {
		ids[i] = p.ID
	}
	return ids
}
