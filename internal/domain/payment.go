package domain

// Payment method constants.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

// IsValidPaymentMethod checks if a payment method string is supported.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// PaymentResult is the processor outcome snapshot embedded in an order.
// Details only ever carries non-sensitive echoes (last four digits, VPA
// handle), never full instrument data.
type PaymentResult struct {
	Method        string            `json:"method"`
	Success       bool              `json:"success"`
	TransactionID string            `json:"transaction_id"`
	Amount        int64             `json:"amount"`
	Details       map[string]string `json:"details,omitempty"`
}
