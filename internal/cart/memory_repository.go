package cart

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
)

// MemoryRepository keeps carts per session in memory. Carts are transient:
// they live until checkout succeeds or the session ends, so a durable store
// is not required here.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*domain.Cart)}
}

func (m *MemoryRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}

	// Copy so callers never mutate stored state directly
	c := *cart
	c.Items = append([]domain.LineItem(nil), cart.Items...)
	return &c, nil
}

func (m *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	c := *cart
	c.Items = append([]domain.LineItem(nil), cart.Items...)
	m.carts[cart.UserID] = &c
	return nil
}

func (m *MemoryRepository) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userID)
	return nil
}
