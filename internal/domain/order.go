package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderSequence is the fixed forward path an order moves along, one step
// per Advance call.
var orderSequence = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
	OrderStatusDelivered:  OrderStatusCompleted,
}

// Next returns the single following status and whether one exists.
// COMPLETED and CANCELLED have no successor.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := orderSequence[s]
	return next, ok
}

// Cancellable reports whether an order in this status may still be
// cancelled. Shipped and later orders are immutable to cancellation.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is an immutable snapshot of a cart taken at checkout time. Amounts
// are fixed at creation and never recomputed; only Status and LastUpdated
// change afterwards.
type Order struct {
	ID              uuid.UUID      `json:"id"`
	CustomerID      string         `json:"customer_id"`
	Items           []SnapshotLine `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	TaxAmount       float64        `json:"tax_amount"`
	FinalAmount     float64        `json:"final_amount"`
	Currency        string         `json:"currency"`
	ShippingAddress string         `json:"shipping_address"`
	PaymentID       uuid.UUID      `json:"payment_id"`
	Status          OrderStatus    `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	LastUpdated     time.Time      `json:"last_updated"`
}
