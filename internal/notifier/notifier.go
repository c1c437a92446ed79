package notifier

import (
	"context"
)

// Notification types emitted by the order lifecycle.
const (
	TypeOrderConfirmed     = "order.confirmed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Notification is a customer-facing message about an order.
type Notification struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier defines the interface for delivering customer notifications.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}
