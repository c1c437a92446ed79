package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/provider"
)

// Config holds the simulated processor's behavior knobs.
type Config struct {
	// Delay is the simulated processing time per charge.
	Delay time.Duration

	// SuccessRate is the probability in [0, 1] that a card or UPI charge
	// succeeds. Cash charges always succeed.
	SuccessRate float64
}

// Processor is a simulated payment processor. Card and UPI charges succeed
// with the configured probability after a short delay; cash charges are
// collected on delivery and always succeed immediately.
type Processor struct {
	cfg Config
	rng func() float64
}

// NewProcessor creates a new simulated payment processor.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		cfg: cfg,
		rng: rand.Float64,
	}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sim"
}

// Charge simulates a payment charge.
func (p *Processor) Charge(ctx context.Context, input *provider.ChargeInput) (*provider.ChargeResult, error) {
	// Cash is settled at the door, not charged online.
	if input.Method == domain.PaymentMethodCash {
		return &provider.ChargeResult{
			TransactionID: "txn_" + uuid.New().String(),
			Status:        provider.ChargeStatusSucceeded,
		}, nil
	}

	// Simulate processing delay, honoring cancellation.
	select {
	case <-time.After(p.cfg.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if p.rng() >= p.cfg.SuccessRate {
		return &provider.ChargeResult{
			Status:        provider.ChargeStatusFailed,
			FailureReason: "charge declined by issuer",
		}, nil
	}

	return &provider.ChargeResult{
		TransactionID: "txn_" + uuid.New().String(),
		Status:        provider.ChargeStatusSucceeded,
	}, nil
}
