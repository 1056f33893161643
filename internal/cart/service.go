package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avolkov/go_retail/internal/cache"
	"github.com/avolkov/go_retail/internal/catalog"
	"github.com/avolkov/go_retail/internal/domain"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrOutOfStock      = errors.New("requested quantity exceeds current stock")
	ErrLineNotFound    = errors.New("line item not found in cart")
)

// Service owns cart mutations. Every mutation re-validates quantities
// against the catalog's current stock; totals are derived from current
// catalog prices at query time, never stored.
type Service struct {
	repo    Repository
	catalog catalog.Store
	cache   cache.CartCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cat catalog.Store, cartCache cache.CartCache) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		cache:   cartCache,
	}
}

// GetCart returns the customer's cart, an empty one if none exists yet.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, err := s.cache.Get(ctx, userID)
		if err == nil {
			return c, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		c, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, c); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return c, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine adds quantity of the product to the cart. An existing line for
// the same product is incremented, never duplicated; the combined quantity
// is re-validated against current stock.
func (s *Service) AddLine(ctx context.Context, userID string, productID int64, quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.Get(productID)
	if err != nil {
		return fmt.Errorf("failed to look up product %d: %w", productID, err)
	}

	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	requested := quantity
	if line := c.Line(productID); line != nil {
		requested += line.Quantity
		if requested < quantity { // int32 wraparound
			return ErrOutOfStock
		}
	}
	if requested > product.Stock {
		return ErrOutOfStock
	}

	if line := c.Line(productID); line != nil {
		line.Quantity = requested
	} else {
		c.Items = append(c.Items, domain.LineItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// UpdateQuantity sets the line's quantity. A non-positive quantity removes
// the line instead.
func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int32) error {
	if quantity <= 0 {
		return s.RemoveLine(ctx, userID, productID)
	}

	product, err := s.catalog.Get(productID)
	if err != nil {
		return fmt.Errorf("failed to look up product %d: %w", productID, err)
	}
	if quantity > product.Stock {
		return ErrOutOfStock
	}

	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	line := c.Line(productID)
	if line == nil {
		return ErrLineNotFound
	}
	line.Quantity = quantity

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// RemoveLine deletes the line for productID. Removing an absent line is a
// no-op, not an error.
func (s *Service) RemoveLine(ctx context.Context, userID string, productID int64) error {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			if errUpsert := s.repo.UpsertCart(ctx, c); errUpsert != nil {
				return errUpsert
			}
			s.invalidateCache(userID)
			return nil
		}
	}
	return nil
}

// Clear empties the cart. Clearing an empty or absent cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// Total computes the cart total from current catalog prices.
func (s *Service) Total(ctx context.Context, userID string) (float64, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	return snapshot.TotalAmount, nil
}

// Snapshot freezes the cart's lines with prices fetched from the catalog at
// this moment. The checkout path orders from the snapshot, so later cart
// mutations cannot retroactively alter a placed order.
func (s *Service) Snapshot(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.CartSnapshot{
		Items:      make([]domain.SnapshotLine, 0, len(c.Items)),
		Currency:   "USD",
		CapturedAt: time.Now(),
	}

	var totalAmount float64
	for _, item := range c.Items {
		product, errGet := s.catalog.Get(item.ProductID)
		if errGet != nil {
			return nil, fmt.Errorf("failed to get product %d: %w", item.ProductID, errGet)
		}

		subtotal := product.Price * float64(item.Quantity)
		snapshot.Items = append(snapshot.Items, domain.SnapshotLine{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		totalAmount += subtotal
	}

	snapshot.TotalAmount = totalAmount
	return snapshot, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
