package cart

import (
	"context"
	"errors"

	"github.com/avolkov/go_retail/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository defines cart storage. Consumers define this interface, not the
// implementation.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
