package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore simulates the durable store: three independent keyed
// collections, each record written wholesale, last-write-wins.
type MemoryStore struct {
	mu        sync.RWMutex
	orders    map[uuid.UUID]*domain.Order
	payments  map[uuid.UUID]*domain.Payment
	customers map[string]*domain.Customer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:    make(map[uuid.UUID]*domain.Order),
		payments:  make(map[uuid.UUID]*domain.Payment),
		customers: make(map[string]*domain.Customer),
	}
}

func (m *MemoryStore) SaveOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *order
	copied.Items = append([]domain.SnapshotLine(nil), order.Items...)
	m.orders[order.ID] = &copied
	return nil
}

func (m *MemoryStore) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.SnapshotLine(nil), order.Items...)
	return &copied, nil
}

func (m *MemoryStore) ListOrdersByCustomerID(_ context.Context, customerID string) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var orders []*domain.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			copied := *o
			copied.Items = append([]domain.SnapshotLine(nil), o.Items...)
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// SavePayment stores the payment record without its one-time code; the
// code is ephemeral and must not survive the process.
func (m *MemoryStore) SavePayment(_ context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *payment
	copied.Code = ""
	m.payments[payment.ID] = &copied
	return nil
}

func (m *MemoryStore) GetPaymentByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payment, ok := m.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *MemoryStore) SaveCustomer(_ context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *customer
	copied.Orders = append([]uuid.UUID(nil), customer.Orders...)
	m.customers[customer.ID] = &copied
	return nil
}

func (m *MemoryStore) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, ok := m.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	copied := *customer
	copied.Orders = append([]uuid.UUID(nil), customer.Orders...)
	return &copied, nil
}

func (m *MemoryStore) Close() error { return nil }
