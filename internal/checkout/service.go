package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avolkov/go_retail/internal/cart"
	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/domain"
	"github.com/avolkov/go_retail/internal/order"
	"github.com/avolkov/go_retail/internal/payment"
	"github.com/avolkov/go_retail/internal/repository"
	"github.com/avolkov/go_retail/pkg/metrics"
	"github.com/google/uuid"
)

// OTPReader supplies candidate one-time codes collected from the customer,
// one per attempt.
type OTPReader interface {
	ReadCode(ctx context.Context, attempt int) (string, error)
}

// StaticCodes is an OTPReader serving pre-collected candidate codes in
// order.
type StaticCodes []string

func (c StaticCodes) ReadCode(_ context.Context, attempt int) (string, error) {
	if attempt > len(c) {
		return "", fmt.Errorf("no code for attempt %d", attempt)
	}
	return c[attempt-1], nil
}

// EventPublisher emits order lifecycle events. Best-effort by contract.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, o *domain.Order)
	OrderStatusChanged(ctx context.Context, o *domain.Order)
}

// Service sequences cart validation, payment, order creation, stock
// decrement and persistence. It is the sole writer that keeps those
// mutations coherent; everything it touches is either fully applied or
// fully unapplied up to the failing sub-step.
type Service struct {
	carts     *cart.Service
	catalog   catalog.Store
	persister catalog.Persister
	payments  *payment.Engine
	orders    *order.Engine
	store     repository.Store
	events    EventPublisher
	metrics   *metrics.CheckoutMetrics
}

func NewService(
	carts *cart.Service,
	cat catalog.Store,
	persister catalog.Persister,
	payments *payment.Engine,
	orders *order.Engine,
	store repository.Store,
	events EventPublisher,
	m *metrics.CheckoutMetrics,
) *Service {
	return &Service{
		carts:     carts,
		catalog:   cat,
		persister: persister,
		payments:  payments,
		orders:    orders,
		store:     store,
		events:    events,
		metrics:   m,
	}
}

// Checkout converts the customer's cart plus a verified payment into a
// persisted order with decremented stock. Any failure before completion
// leaves the cart and the catalog untouched.
func (s *Service) Checkout(ctx context.Context, customerID, shippingAddress string, method domain.PaymentMethod, codes OTPReader) (*domain.Order, error) {
	started := time.Now()

	customer, err := s.store.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer %s: %w", customerID, err)
	}

	snapshot, err := s.carts.Snapshot(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}
	if len(snapshot.Items) == 0 {
		s.countOutcome("empty_cart")
		return nil, ErrEmptyCart
	}

	pay, err := s.initiatePayment(ctx, customer, snapshot.TotalAmount, method)
	if err != nil {
		s.countOutcome("initiation_failed")
		return nil, err
	}

	if err := s.verifyPayment(ctx, pay, codes); err != nil {
		s.countOutcome("verification_failed")
		return nil, err
	}

	placed, err := s.complete(ctx, customer, snapshot, shippingAddress, pay)
	if err != nil {
		s.countOutcome("completion_failed")
		return nil, err
	}

	s.countOutcome("completed")
	if s.metrics != nil {
		s.metrics.LatencyMS.Observe(float64(time.Since(started).Milliseconds()))
	}
	return placed, nil
}

// AdvanceOrder moves the order one step forward and persists the change.
// Returns false without error once the order is COMPLETED or CANCELLED.
func (s *Service) AdvanceOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, bool, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	if !s.orders.Advance(o) {
		return o, false, nil
	}

	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, false, fmt.Errorf("failed to persist order status: %w", err)
	}
	s.publishStatusChanged(ctx, o)
	return o, true, nil
}

// CancelOrder cancels the order if it is still PENDING or PROCESSING.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, bool, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	if !s.orders.Cancel(o) {
		return o, false, nil
	}

	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, false, fmt.Errorf("failed to persist order status: %w", err)
	}
	s.publishStatusChanged(ctx, o)
	return o, true, nil
}

// ListOrders returns the customer's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return s.store.ListOrdersByCustomerID(ctx, customerID)
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.Checkouts.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, o *domain.Order) {
	if s.events != nil {
		s.events.OrderStatusChanged(ctx, o)
	}
}

func (s *Service) logStep(step, detail string) {
	log.Printf("checkout %s: %s", step, detail)
}
