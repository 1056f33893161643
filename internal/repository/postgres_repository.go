package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/go_retail/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "retail_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// SaveOrder writes the whole order record, replacing any previous version.
// Status transitions reuse the same path as creation.
func (r *Repository) SaveOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders
	            (id, customer_id, items, subtotal, tax_amount, final_amount,
	             currency, shipping_address, payment_id, status, created_at, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          ON CONFLICT (id) DO UPDATE
	            SET status = EXCLUDED.status, last_updated = EXCLUDED.last_updated`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		itemsJSON,
		order.Subtotal,
		order.TaxAmount,
		order.FinalAmount,
		order.Currency,
		order.ShippingAddress,
		order.PaymentID,
		order.Status,
		order.CreatedAt,
		order.LastUpdated)

	if insertErr != nil {
		return fmt.Errorf("save order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, customer_id, items, subtotal, tax_amount, final_amount,
	                 currency, shipping_address, payment_id, status, created_at, last_updated
	          FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := `SELECT id, customer_id, items, subtotal, tax_amount, final_amount,
	                 currency, shipping_address, payment_id, status, created_at, last_updated
	          FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan order row: %w", scanErr)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	if err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&itemsJSON,
		&order.Subtotal,
		&order.TaxAmount,
		&order.FinalAmount,
		&order.Currency,
		&order.ShippingAddress,
		&order.PaymentID,
		&order.Status,
		&order.CreatedAt,
		&order.LastUpdated,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}

// SavePayment upserts the payment record. The one-time code column does not
// exist: the code never reaches durable storage.
func (r *Repository) SavePayment(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments
	            (id, order_ref, payer_id, amount, method, status, transaction_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (id) DO UPDATE
	            SET status = EXCLUDED.status, transaction_id = EXCLUDED.transaction_id`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrderRef,
		payment.PayerID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (r *Repository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT id, order_ref, payer_id, amount, method, status, transaction_id, created_at
	          FROM payments WHERE id = $1`

	var payment domain.Payment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.OrderRef,
		&payment.PayerID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.TransactionID,
		&payment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment by id: %w", err)
	}
	return &payment, nil
}

func (r *Repository) SaveCustomer(ctx context.Context, customer *domain.Customer) error {
	ordersJSON, err := json.Marshal(customer.Orders)
	if err != nil {
		return fmt.Errorf("failed to marshal order history: %w", err)
	}

	query := `INSERT INTO customers (id, name, contact, role, address, orders, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (id) DO UPDATE
	            SET name = EXCLUDED.name, contact = EXCLUDED.contact,
	                address = EXCLUDED.address, orders = EXCLUDED.orders`

	_, execErr := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Name,
		customer.Contact,
		customer.Role,
		customer.Address,
		ordersJSON,
		customer.CreatedAt)
	if execErr != nil {
		return fmt.Errorf("save customer: %w", execErr)
	}
	return nil
}

func (r *Repository) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT id, name, contact, role, address, orders, created_at
	          FROM customers WHERE id = $1`

	var customer domain.Customer
	var ordersJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Contact,
		&customer.Role,
		&customer.Address,
		&ordersJSON,
		&customer.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer by id: %w", err)
	}

	if err := json.Unmarshal(ordersJSON, &customer.Orders); err != nil {
		return nil, fmt.Errorf("unmarshal order history: %w", err)
	}
	return &customer, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
