package domain

import "time"

// Order status constants.
const (
	OrderStatusPending        = "pending"
	OrderStatusPaid           = "paid"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// Order is a committed customer order. Orders only exist after a successful
// charge; a declined payment never produces one.
type Order struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Status      string        `json:"status"`
	Items       []OrderItem   `json:"items"`
	Address     string        `json:"address"`
	Phone       string        `json:"phone"`
	TotalAmount int64         `json:"total_amount"`
	Payment     PaymentResult `json:"payment"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusPreparing,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid.
// delivered -> paid covers cash orders settled after delivery.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:        {OrderStatusPaid, OrderStatusPreparing, OrderStatusCancelled},
		OrderStatusPaid:           {OrderStatusPreparing, OrderStatusOutForDelivery, OrderStatusCancelled},
		OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
		OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
		OrderStatusDelivered:      {OrderStatusPaid},
		OrderStatusCancelled:      {},
	}
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
