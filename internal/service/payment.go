package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/provider"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

var (
	cvvPattern = regexp.MustCompile(`^\d{3,4}$`)
	vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z]{3,}$`)
)

// CardDetails holds card payment parameters. The number and CVV are
// validated and discarded, never persisted.
type CardDetails struct {
	Number string `json:"number" validate:"required"`
	Holder string `json:"holder" validate:"required"`
	Expiry string `json:"expiry" validate:"required"` // MM/YY
	CVV    string `json:"cvv" validate:"required"`
}

// UPIDetails holds UPI payment parameters.
type UPIDetails struct {
	VPA  string `json:"vpa" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// PaymentInput holds the payment method and its details for a checkout.
type PaymentInput struct {
	Method string       `json:"method" validate:"required,oneof=cash card upi"`
	Card   *CardDetails `json:"card,omitempty"`
	UPI    *UPIDetails  `json:"upi,omitempty"`
}

// PaymentService validates payment details and charges through a processor.
type PaymentService struct {
	processor provider.Processor
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(processor provider.Processor, timeout time.Duration, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		processor: processor,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Pay validates the payment details and charges the given amount. A
// declined charge returns ErrPaymentDeclined; a processor deadline
// returns ErrProcessorTimeout.
func (s *PaymentService) Pay(ctx context.Context, input *PaymentInput, amount int64) (*domain.PaymentResult, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("payment input is required")
	}
	if !domain.IsValidPaymentMethod(input.Method) {
		return nil, apperrors.InvalidInput("payment method must be one of cash, card, upi")
	}
	if amount <= 0 {
		return nil, apperrors.InvalidInput("payment amount must be positive")
	}

	details, err := s.validateDetails(input)
	if err != nil {
		return nil, err
	}

	chargeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		chargeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.processor.Charge(chargeCtx, &provider.ChargeInput{
		Amount:   amount,
		Method:   input.Method,
		Metadata: details,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.ErrorContext(ctx, "payment processor timed out",
				slog.String("processor", s.processor.Name()),
				slog.Int64("amount", amount),
			)
			return nil, apperrors.ProcessorTimeout("payment processor did not respond in time")
		}
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	if result.Status != provider.ChargeStatusSucceeded {
		s.logger.InfoContext(ctx, "payment declined",
			slog.String("method", input.Method),
			slog.Int64("amount", amount),
			slog.String("reason", result.FailureReason),
		)
		return nil, apperrors.PaymentDeclined(result.FailureReason)
	}

	return &domain.PaymentResult{
		Method:        input.Method,
		Success:       true,
		TransactionID: result.TransactionID,
		Amount:        amount,
		Details:       details,
	}, nil
}

// validateDetails checks method-specific fields and returns the
// non-sensitive subset safe to store with the order.
func (s *PaymentService) validateDetails(input *PaymentInput) (map[string]string, error) {
	switch input.Method {
	case domain.PaymentMethodCash:
		return nil, nil

	case domain.PaymentMethodCard:
		if input.Card == nil {
			return nil, apperrors.InvalidInput("card details are required for card payments")
		}
		number := strings.ReplaceAll(input.Card.Number, " ", "")
		if len(number) < 16 || !isAllDigits(number) {
			return nil, apperrors.InvalidInput("card number must be at least 16 digits")
		}
		if strings.TrimSpace(input.Card.Holder) == "" {
			return nil, apperrors.InvalidInput("card holder name is required")
		}
		if err := s.validateExpiry(input.Card.Expiry); err != nil {
			return nil, err
		}
		if !cvvPattern.MatchString(input.Card.CVV) {
			return nil, apperrors.InvalidInput("cvv must be 3 or 4 digits")
		}
		return map[string]string{
			"card_last4":  number[len(number)-4:],
			"card_holder": strings.TrimSpace(input.Card.Holder),
		}, nil

	case domain.PaymentMethodUPI:
		if input.UPI == nil {
			return nil, apperrors.InvalidInput("upi details are required for upi payments")
		}
		if !vpaPattern.MatchString(input.UPI.VPA) {
			return nil, apperrors.InvalidInput("upi id is not valid")
		}
		if len(strings.TrimSpace(input.UPI.Name)) < 2 {
			return nil, apperrors.InvalidInput("account holder name must be at least 2 characters")
		}
		return map[string]string{
			"upi_vpa": input.UPI.VPA,
		}, nil
	}

	return nil, apperrors.InvalidInput("unsupported payment method")
}

// validateExpiry parses an MM/YY expiry and rejects past dates. A card
// expiring this month is still valid.
func (s *PaymentService) validateExpiry(expiry string) error {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return apperrors.InvalidInput("card expiry must be in MM/YY format")
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return apperrors.InvalidInput("card expiry month is not valid")
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return apperrors.InvalidInput("card expiry year is not valid")
	}
	year += 2000

	now := s.now().UTC()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return apperrors.InvalidInput("card has expired")
	}

	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
