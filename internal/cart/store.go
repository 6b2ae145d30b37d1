package cart

import (
	"sync"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/pricing"
	"github.com/quickkart/storefront-gateway/pkg/money"
)

// Line is one cart entry. Quantity is always at least 1; a line that would
// reach zero is removed instead.
type Line struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice money.Paise `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

// Snapshot is an immutable point-in-time copy of the cart, captured before a
// submission attempt. Total is derived from the lines at capture time.
type Snapshot struct {
	Lines []Line      `json:"lines"`
	Total money.Paise `json:"total"`
}

// Empty reports whether the snapshot holds no lines.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Store holds the cart for one checkout session. Mutations are serialized
// through a single mutex so rapid successive gestures apply one at a time.
type Store struct {
	mu    sync.Mutex
	lines map[string]*Line
	order []string
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// AddOrIncrement inserts a new line with quantity 1, or bumps the quantity of
// an existing line. A product whose price cannot be resolved is rejected and
// the cart is left untouched.
func (s *Store) AddOrIncrement(product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if line, ok := s.lines[product.ID]; ok {
		line.Quantity++
		return nil
	}

	unitPrice, err := pricing.Resolve(product)
	if err != nil {
		return err
	}
	s.lines[product.ID] = &Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: unitPrice,
		Quantity:  1,
	}
	s.order = append(s.order, product.ID)
	return nil
}

// DecrementOrRemove lowers a line's quantity by one, removing the line when it
// would hit zero. Missing lines are a no-op.
func (s *Store) DecrementOrRemove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return
	}
	if line.Quantity <= 1 {
		s.removeLocked(productID)
		return
	}
	line.Quantity--
}

// Remove drops the line unconditionally. Idempotent.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

// Clear empties the cart. Called after a successful checkout or an explicit
// cancel.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[string]*Line)
	s.order = nil
}

// Snapshot returns the lines in first-added order plus the derived total.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Lines: make([]Line, 0, len(s.order))}
	for _, id := range s.order {
		line := s.lines[id]
		snap.Lines = append(snap.Lines, *line)
		snap.Total += line.UnitPrice.Mul(line.Quantity)
	}
	return snap
}

func (s *Store) removeLocked(productID string) {
	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
