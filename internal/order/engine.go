package order

import (
	"errors"
	"time"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
)

// TaxRate is the fixed surcharge applied to the subtotal when an order is
// created. Amounts are frozen at creation; a later rate change never
// touches existing orders.
const TaxRate = 0.06

var ErrPaymentNotCompleted = errors.New("payment is not completed")

// Engine creates orders from cart snapshots and drives the order status
// state machine.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Create snapshots the cart lines into a new PENDING order. The payment
// must already be COMPLETED; tax and final amounts are computed here and
// never again.
func (e *Engine) Create(customerID string, snapshot *domain.CartSnapshot, shippingAddress string, pay *domain.Payment) (*domain.Order, error) {
	if pay == nil || pay.Status != domain.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}

	subtotal := snapshot.TotalAmount
	taxAmount := subtotal * TaxRate

	now := time.Now()
	o := &domain.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Items:           append([]domain.SnapshotLine(nil), snapshot.Items...),
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		FinalAmount:     subtotal + taxAmount,
		Currency:        snapshot.Currency,
		ShippingAddress: shippingAddress,
		PaymentID:       pay.ID,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	return o, nil
}

// Advance moves the order exactly one step forward along
// PENDING -> PROCESSING -> SHIPPED -> DELIVERED -> COMPLETED. It reports
// false, without error, once the order is COMPLETED or CANCELLED.
func (e *Engine) Advance(o *domain.Order) bool {
	next, ok := o.Status.Next()
	if !ok {
		return false
	}
	o.Status = next
	o.LastUpdated = time.Now()
	return true
}

// Cancel succeeds only while the order is PENDING or PROCESSING. Shipped
// and later orders are immutable to cancellation.
func (e *Engine) Cancel(o *domain.Order) bool {
	if !o.Status.Cancellable() {
		return false
	}
	o.Status = domain.OrderStatusCancelled
	o.LastUpdated = time.Now()
	return true
}
