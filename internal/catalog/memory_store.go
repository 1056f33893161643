package catalog

import (
	"sync"

	"github.com/avolkov/go_retail/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Stock counters are
// the one piece of state shared across customer sessions, so every mutation
// happens under the lock.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

// NewMemoryStore creates an empty in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]domain.Product),
	}
}

func (s *MemoryStore) Get(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *MemoryStore) Upsert(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Stock < 0 {
		p.Stock = 0
	}
	s.products[p.ID] = p
}

// DecrementStock is the compare-and-decrement step of checkout completion.
// The check against current stock runs under the same lock as the write, so
// a stock change between cart validation and this call is always observed.
func (s *MemoryStore) DecrementStock(id int64, qty int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}

	p.Stock -= qty
	s.products[id] = p
	return nil
}

func (s *MemoryStore) Snapshot() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	return result
}
