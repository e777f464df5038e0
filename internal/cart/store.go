// Package cart keeps per-customer carts in memory and applies the ledger
// operations (add, update, remove, clear, checkout) to them.
package cart

import (
	"sync"
	"time"

	"github.com/gvbsvv/eshop-cart/internal/metrics"
	"github.com/gvbsvv/eshop-cart/internal/models"
	"github.com/shopspring/decimal"
)

type entry struct {
	mu   sync.Mutex
	cart models.Cart
}

// Store owns every cart for the lifetime of the process. Carts are created on
// first reference and are never persisted or expired.
type Store struct {
	mu    sync.Mutex
	carts map[string]*entry
	now   func() time.Time
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{
		carts: make(map[string]*entry),
		now:   time.Now,
	}
}

func (s *Store) getOrCreate(cartID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[cartID]
	if !ok {
		now := s.now()
		e = &entry{cart: models.Cart{
			ID:         cartID,
			Items:      []models.CartItem{},
			TotalPrice: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}}
		s.carts[cartID] = e
		metrics.CartsActive.Set(float64(len(s.carts)))
	}
	return e
}

// With runs fn against a working copy of the cart while holding that cart's
// lock, creating the cart first if needed. The copy replaces the stored cart
// only when fn succeeds, so a failed operation never leaves a partial change.
// The returned cart is a snapshot safe to hand to callers.
func (s *Store) With(cartID string, fn func(c *models.Cart) error) (models.Cart, error) {
	e := s.getOrCreate(cartID)

	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.cart.Clone()
	if err := fn(&work); err != nil {
		return e.cart.Clone(), err
	}
	e.cart = work
	return e.cart.Clone(), nil
}

// Snapshot returns a copy of the cart, creating it if absent
func (s *Store) Snapshot(cartID string) models.Cart {
	c, _ := s.With(cartID, func(*models.Cart) error { return nil })
	return c
}

// Len returns the number of carts held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
