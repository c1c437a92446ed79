package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/event"
	"github.com/beanhouse/cafe-backend/internal/notifier"
	"github.com/beanhouse/cafe-backend/internal/repository"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

// asyncTimeout bounds the detached goroutines that publish events and
// send notifications after a checkout commits.
const asyncTimeout = 10 * time.Second

// CheckoutService orchestrates a checkout: validate the cart, charge the
// payment, and commit the order atomically.
type CheckoutService struct {
	cart        *CartService
	payment     *PaymentService
	orders      *OrderService
	idempotency repository.IdempotencyStore
	producer    *event.Producer
	notifier    notifier.Notifier
	dedupWindow time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cart *CartService,
	payment *PaymentService,
	orders *OrderService,
	idempotency repository.IdempotencyStore,
	producer *event.Producer,
	n notifier.Notifier,
	dedupWindow time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		cart:        cart,
		payment:     payment,
		orders:      orders,
		idempotency: idempotency,
		producer:    producer,
		notifier:    n,
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// CheckoutInput holds the full checkout request.
type CheckoutInput struct {
	Cart    ValidateCartInput `json:"cart"`
	Payment PaymentInput      `json:"payment"`
}

// Checkout runs the full pipeline. A duplicate submission of the same
// cart inside the dedup window returns a conflict instead of a second
// charge; a failed payment releases the key so the user can retry
// immediately.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, input *CheckoutInput) (*domain.Order, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("checkout input is required")
	}

	draft, err := s.cart.ValidateCart(ctx, userID, &input.Cart)
	if err != nil {
		return nil, err
	}

	key := s.idempotencyKey(userID, draft)
	reserved, err := s.idempotency.Reserve(ctx, key, s.dedupWindow)
	if err != nil {
		return nil, fmt.Errorf("reserve checkout key: %w", err)
	}
	if !reserved {
		return nil, apperrors.Conflict("DUPLICATE_CHECKOUT", "an identical order was just placed, please wait a moment")
	}

	payment, err := s.payment.Pay(ctx, &input.Payment, draft.TotalAmount)
	if err != nil {
		// Free the key so the user can retry with another method.
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release checkout key after payment failure",
				slog.String("user_id", userID),
				slog.String("error", relErr.Error()),
			)
		}
		return nil, err
	}

	order, err := s.orders.Commit(ctx, draft, payment)
	if err != nil {
		return nil, err
	}

	// Event and confirmation go out asynchronously; the order is already
	// durable and the customer should not wait on Kafka or a webhook.
	go s.afterCommit(order)

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.String("payment_method", payment.Method),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// afterCommit publishes the order.created event and sends the order
// confirmation, both best-effort.
func (s *CheckoutService) afterCommit(order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
	defer cancel()

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	msg := &notifier.Notification{
		UserID:  order.UserID,
		OrderID: order.ID,
		Type:    notifier.TypeOrderConfirmed,
		Subject: "Your order is confirmed",
		Body:    fmt.Sprintf("Order %s is confirmed. We are getting it ready.", order.ID),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send order confirmation",
			slog.String("order_id", order.ID),
			slog.String("notifier", s.notifier.Name()),
			slog.String("error", err.Error()),
		)
	}
}

// idempotencyKey derives a stable fingerprint from the user, the sorted
// cart contents, and a coarse time bucket. Identical carts submitted
// within the same window map to the same key.
func (s *CheckoutService) idempotencyKey(userID string, draft *domain.OrderDraft) string {
	lines := make([]string, len(draft.Items))
	for i, item := range draft.Items {
		lines[i] = fmt.Sprintf("%s:%d", item.ProductID, item.Quantity)
	}
	sort.Strings(lines)

	// Bucket in milliseconds; sub-second windows would truncate to a
	// zero divisor in whole seconds.
	window := s.dedupWindow.Milliseconds()
	if window < 1 {
		window = 1
	}
	bucket := s.now().UTC().UnixMilli() / window

	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", userID, bucket)
	for _, line := range lines {
		fmt.Fprintf(h, "|%s", line)
	}

	return hex.EncodeToString(h.Sum(nil))
}
