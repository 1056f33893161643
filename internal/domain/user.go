package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role discriminates the closed set of user variants.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Customer is the user record the checkout flow reads and writes. Contact
// is where payment one-time codes are dispatched. Orders holds the order
// history as plain identifiers, resolved on demand by the store.
type Customer struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Contact   string      `json:"contact" bson:"contact"`
	Role      Role        `json:"role" bson:"role"`
	Address   string      `json:"address" bson:"address"`
	Orders    []uuid.UUID `json:"orders" bson:"orders"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
