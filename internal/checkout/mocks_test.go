package checkout

import (
	"context"
	"sync"

	"github.com/avolkov/go_retail/internal/cache"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
)

// noopCache satisfies cache.CartCache without caching anything.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) Set(context.Context, string, *domain.Cart) error { return nil }
func (noopCache) Delete(context.Context, string) error            { return nil }

// captureDispatcher records dispatched codes so tests can answer the OTP
// prompt correctly.
type captureDispatcher struct {
	mu        sync.Mutex
	lastCode  string
	sendCount int
	err       error
}

func (d *captureDispatcher) Send(_ context.Context, _, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sendCount++
	d.lastCode = code
	return nil
}

// dispatchedCode answers every attempt with the last dispatched code.
type dispatchedCode struct {
	d     *captureDispatcher
	calls int
}

func (r *dispatchedCode) ReadCode(context.Context, int) (string, error) {
	r.calls++
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.lastCode, nil
}

// wrongThenRight serves wrong codes for the first n attempts, then the
// dispatched one.
type wrongThenRight struct {
	d     *captureDispatcher
	wrong int
	calls int
}

func (r *wrongThenRight) ReadCode(_ context.Context, attempt int) (string, error) {
	r.calls++
	if attempt <= r.wrong {
		return "000000", nil
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return r.d.lastCode, nil
}

// mockStore implements repository.Store in memory with error injection.
type mockStore struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
	orders    map[uuid.UUID]*domain.Order
	payments  map[uuid.UUID]*domain.Payment

	savePaymentErr  error
	saveOrderErr    error
	saveCustomerErr error
	getCustomerErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		customers: make(map[string]*domain.Customer),
		orders:    make(map[uuid.UUID]*domain.Order),
		payments:  make(map[uuid.UUID]*domain.Payment),
	}
}

func (m *mockStore) SaveOrder(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveOrderErr != nil {
		return m.saveOrderErr
	}
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *mockStore) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errOrderNotFoundForTest
	}
	copied := *o
	return &copied, nil
}

func (m *mockStore) ListOrdersByCustomerID(_ context.Context, customerID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockStore) SavePayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savePaymentErr != nil {
		return m.savePaymentErr
	}
	copied := *p
	copied.Code = "" // durable copy never carries the code
	m.payments[p.ID] = &copied
	return nil
}

func (m *mockStore) GetPaymentByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, errPaymentNotFoundForTest
	}
	copied := *p
	return &copied, nil
}

func (m *mockStore) SaveCustomer(_ context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveCustomerErr != nil {
		return m.saveCustomerErr
	}
	copied := *c
	copied.Orders = append([]uuid.UUID(nil), c.Orders...)
	m.customers[c.ID] = &copied
	return nil
}

func (m *mockStore) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getCustomerErr != nil {
		return nil, m.getCustomerErr
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, errCustomerNotFoundForTest
	}
	copied := *c
	copied.Orders = append([]uuid.UUID(nil), c.Orders...)
	return &copied, nil
}

func (m *mockStore) Close() error { return nil }

// mockEvents records published events.
type mockEvents struct {
	mu            sync.Mutex
	placed        []*domain.Order
	statusChanges []*domain.Order
}

func (m *mockEvents) OrderPlaced(_ context.Context, o *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed = append(m.placed, o)
}

func (m *mockEvents) OrderStatusChanged(_ context.Context, o *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusChanges = append(m.statusChanges, o)
}
