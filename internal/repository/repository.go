package repository

import (
	"context"
	"errors"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateOrder   = errors.New("order already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OrderRepository persists orders wholesale by id; a save replaces the
// whole record.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error)
}

// PaymentRepository persists payment records. The one-time code is never
// written: it is ephemeral and must not survive a restart.
type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *domain.Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// CustomerRepository persists customer records including order history.
type CustomerRepository interface {
	SaveCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
}

// Store is the combined persistence surface the checkout flow writes to.
type Store interface {
	OrderRepository
	PaymentRepository
	CustomerRepository
	Close() error
}
