package catalog

import (
	"context"
	"errors"

	"github.com/avolkov/go_retail/internal/domain"
)

// Common errors returned by the catalog store
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store is the authoritative keyed collection of products and their stock
// counters. DecrementStock must be atomic: it re-validates the requested
// quantity against current stock at the moment of decrement, even when an
// earlier cart-time check already passed.
type Store interface {
	// Get returns the product for id, or ErrProductNotFound.
	Get(id int64) (domain.Product, error)

	// Upsert inserts or replaces a product. Negative stock is clamped to 0.
	Upsert(p domain.Product)

	// DecrementStock atomically subtracts qty from the product's stock.
	// Fails with ErrInsufficientStock if qty exceeds current stock and
	// leaves the counter untouched.
	DecrementStock(id int64, qty int32) error

	// Snapshot returns a copy of every product, for bulk persistence.
	Snapshot() []domain.Product
}

// Persister writes and reads the whole catalog wholesale, last-write-wins.
// No per-record locking is offered or needed.
type Persister interface {
	Save(ctx context.Context, products []domain.Product) error
	Load(ctx context.Context) ([]domain.Product, error)
}
