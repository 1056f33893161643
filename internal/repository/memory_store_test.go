package repository

import (
	"context"
	"testing"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_OrderRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	order := &domain.Order{
		ID:         uuid.New(),
		CustomerID: "cust-1",
		Items: []domain.SnapshotLine{
			{ProductID: 1, ProductName: "ThinkBook 14", Quantity: 2, UnitPrice: 10, Subtotal: 20},
		},
		Subtotal:    20,
		TaxAmount:   1.2,
		FinalAmount: 21.2,
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.SaveOrder(ctx, order))

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.FinalAmount, got.FinalAmount)

	// stored record is a copy, not an alias
	got.Status = domain.OrderStatusShipped
	again, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, again.Status)
}

func TestMemoryStore_GetOrder_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetOrderByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryStore_ListOrders_NewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	older := &domain.Order{ID: uuid.New(), CustomerID: "cust-1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.Order{ID: uuid.New(), CustomerID: "cust-1", CreatedAt: time.Now()}
	other := &domain.Order{ID: uuid.New(), CustomerID: "cust-2", CreatedAt: time.Now()}
	require.NoError(t, store.SaveOrder(ctx, older))
	require.NoError(t, store.SaveOrder(ctx, newer))
	require.NoError(t, store.SaveOrder(ctx, other))

	orders, err := store.ListOrdersByCustomerID(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestMemoryStore_SavePayment_DropsCode(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payment := &domain.Payment{
		ID:     uuid.New(),
		Code:   "123456",
		Status: domain.PaymentStatusCompleted,
	}
	require.NoError(t, store.SavePayment(ctx, payment))

	got, err := store.GetPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Code)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
}

func TestMemoryStore_CustomerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	customer := &domain.Customer{ID: "cust-1", Name: "Ada", Role: domain.RoleCustomer}
	require.NoError(t, store.SaveCustomer(ctx, customer))

	got, err := store.GetCustomerByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = store.GetCustomerByID(ctx, "cust-9")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
