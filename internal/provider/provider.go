package provider

import (
	"context"
)

// ChargeInput holds the parameters for charging a payment.
type ChargeInput struct {
	Amount      int64
	Method      string
	Description string
	Metadata    map[string]string
}

// ChargeResult holds the result of a charge attempt from the processor.
type ChargeResult struct {
	TransactionID string
	Status        string // "succeeded" or "failed"
	FailureReason string
}

// Charge statuses returned by processors.
const (
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusFailed    = "failed"
)

// Processor defines the interface for payment processor integrations.
type Processor interface {
	// Name returns the processor name (e.g., "sim").
	Name() string

	// Charge processes a payment charge through the processor.
	Charge(ctx context.Context, input *ChargeInput) (*ChargeResult, error)
}
