package domain

import "time"

// Feedback is a rating left for an order. ProductID is nil for order-level
// feedback, which counts toward every product in the order; product-level
// reviews carry the product they target.
type Feedback struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID *string   `json:"product_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
