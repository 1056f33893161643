package order

import (
	"testing"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedPayment() *domain.Payment {
	return &domain.Payment{
		ID:     uuid.New(),
		Status: domain.PaymentStatusCompleted,
	}
}

func snapshot() *domain.CartSnapshot {
	return &domain.CartSnapshot{
		Items: []domain.SnapshotLine{
			{ProductID: 1, ProductName: "ThinkBook 14", Quantity: 2, UnitPrice: 10.00, Subtotal: 20.00},
			{ProductID: 2, ProductName: "MX Vertical", Quantity: 1, UnitPrice: 5.00, Subtotal: 5.00},
		},
		TotalAmount: 25.00,
		Currency:    "USD",
		CapturedAt:  time.Now(),
	}
}

func TestCreate_ComputesTaxAndFinalAmount(t *testing.T) {
	engine := NewEngine()

	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.InDelta(t, 25.00, o.Subtotal, 1e-9)
	assert.InDelta(t, 1.50, o.TaxAmount, 1e-9)
	assert.InDelta(t, 26.50, o.FinalAmount, 1e-9)
	assert.Equal(t, "12 Elm St", o.ShippingAddress)
	assert.Len(t, o.Items, 2)
}

func TestCreate_RequiresCompletedPayment(t *testing.T) {
	engine := NewEngine()

	for _, status := range []domain.PaymentStatus{
		domain.PaymentStatusPending,
		domain.PaymentStatusOTPSent,
		domain.PaymentStatusFailedOTP,
		domain.PaymentStatusFailed,
	} {
		_, err := engine.Create("cust-1", snapshot(), "12 Elm St", &domain.Payment{Status: status})
		assert.ErrorIs(t, err, ErrPaymentNotCompleted, "status %s", status)
	}

	_, err := engine.Create("cust-1", snapshot(), "12 Elm St", nil)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
}

func TestCreate_SnapshotIsIndependent(t *testing.T) {
	engine := NewEngine()
	snap := snapshot()

	o, err := engine.Create("cust-1", snap, "12 Elm St", completedPayment())
	require.NoError(t, err)

	// Mutating the source snapshot must not reach the order
	snap.Items[0].Quantity = 99
	assert.Equal(t, int32(2), o.Items[0].Quantity)
}

func TestAdvance_OneStepAtATime(t *testing.T) {
	engine := NewEngine()
	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)

	want := []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCompleted,
	}
	for _, expected := range want {
		before := o.LastUpdated
		require.True(t, engine.Advance(o))
		assert.Equal(t, expected, o.Status)
		assert.False(t, o.LastUpdated.Before(before))
	}

	// Completed orders no longer advance; reported, not an error
	assert.False(t, engine.Advance(o))
	assert.Equal(t, domain.OrderStatusCompleted, o.Status)
}

func TestAdvance_FalseWhenCancelled(t *testing.T) {
	engine := NewEngine()
	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)

	require.True(t, engine.Cancel(o))
	assert.False(t, engine.Advance(o))
	assert.Equal(t, domain.OrderStatusCancelled, o.Status)
}

func TestCancel_OnlyPendingOrProcessing(t *testing.T) {
	engine := NewEngine()

	// PENDING
	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)
	assert.True(t, engine.Cancel(o))

	// PROCESSING
	o, _ = engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.True(t, engine.Advance(o))
	assert.True(t, engine.Cancel(o))
}

func TestCancel_FalseOnceShipped(t *testing.T) {
	engine := NewEngine()
	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)

	require.True(t, engine.Advance(o)) // PROCESSING
	require.True(t, engine.Advance(o)) // SHIPPED

	assert.False(t, engine.Cancel(o))
	assert.Equal(t, domain.OrderStatusShipped, o.Status)
}

func TestCreate_AmountsNeverRecomputed(t *testing.T) {
	engine := NewEngine()
	o, err := engine.Create("cust-1", snapshot(), "12 Elm St", completedPayment())
	require.NoError(t, err)

	final := o.FinalAmount
	engine.Advance(o)
	engine.Advance(o)
	assert.Equal(t, final, o.FinalAmount)
}
