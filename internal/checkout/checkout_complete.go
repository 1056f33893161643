package checkout

import (
	"context"
	"fmt"

	"github.com/avolkov/go_retail/internal/domain"
)

// complete runs the post-verification sub-steps in a fixed order: persist
// payment, persist order, decrement stock, persist catalog, clear cart,
// persist customer. The order matters: a crash mid-way must always be
// resumable as "stock not yet decremented for an already-paid order",
// never as a double charge.
func (s *Service) complete(ctx context.Context, customer *domain.Customer, snapshot *domain.CartSnapshot, shippingAddress string, pay *domain.Payment) (*domain.Order, error) {
	o, err := s.orders.Create(customer.ID, snapshot, shippingAddress, pay)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	pay.OrderRef = o.ID.String()

	if err := s.store.SavePayment(ctx, pay); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// Decrement against the authoritative catalog copy, re-validating
	// stock even though cart-time checks already passed: stock may have
	// moved between validation and now
	for _, line := range o.Items {
		if err := s.catalog.DecrementStock(line.ProductID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, err)
		}
	}

	if s.persister != nil {
		if err := s.persister.Save(ctx, s.catalog.Snapshot()); err != nil {
			return nil, fmt.Errorf("failed to persist catalog: %w", err)
		}
	}

	if err := s.carts.Clear(ctx, customer.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	customer.Orders = append(customer.Orders, o.ID)
	if err := s.store.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to persist customer: %w", err)
	}

	if s.events != nil {
		s.events.OrderPlaced(ctx, o)
	}

	s.logStep("complete", fmt.Sprintf("order %s placed for customer %s", o.ID, customer.ID))
	return o, nil
}
