package campaign

import (
	"time"

	"postlift/domain/core"
)

// LineItem is one purchased product line inside an order
type LineItem struct {
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is an immutable, already-normalized commerce order.
// The attribution engine never mutates orders; they are inputs only.
type Order struct {
	ID            core.OrderID `json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	TotalPrice    float64      `json:"total_price"`
	CustomerEmail string       `json:"customer_email,omitempty"` // empty when the shop did not capture one
	LineItems     []LineItem   `json:"line_items"`
}

// HasEmail reports whether the order carries a customer email
func (o Order) HasEmail() bool {
	return o.CustomerEmail != ""
}
