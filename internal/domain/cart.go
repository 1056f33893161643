package domain

import "time"

// Cart holds one customer's pending line items. Prices are not frozen here:
// unit price and subtotal are re-derived from the current catalog price at
// display and checkout time, so the cart never aliases a stale Product.
type Cart struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Items     []LineItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// LineItem is a (product, quantity) pair. At most one line per product.
type LineItem struct {
	ProductID int64     `json:"product_id" bson:"product_id"`
	Quantity  int32     `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Line returns the line for productID, or nil if absent.
func (c *Cart) Line(productID int64) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// SnapshotLine is one cart line with the price captured at snapshot time.
type SnapshotLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// CartSnapshot is the full cart state frozen at checkout time. Later cart
// mutations cannot alter it.
type CartSnapshot struct {
	Items       []SnapshotLine `json:"items"`
	TotalAmount float64        `json:"total_amount"`
	Currency    string         `json:"currency"`
	CapturedAt  time.Time      `json:"captured_at"`
}
