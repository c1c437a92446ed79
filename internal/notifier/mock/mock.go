package mock

import (
	"context"
	"log/slog"
	"time"

	"github.com/beanhouse/cafe-backend/internal/notifier"
)

// Notifier logs notifications and always succeeds. It simulates a 10ms
// delay to mimic real delivery latency.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a new mock notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Name returns the name of this notifier.
func (n *Notifier) Name() string {
	return "mock"
}

// Send logs the notification details and simulates a delivery delay.
func (n *Notifier) Send(ctx context.Context, msg *notifier.Notification) error {
	// Simulate delivery delay.
	time.Sleep(10 * time.Millisecond)

	n.logger.InfoContext(ctx, "mock notifier: notification sent",
		slog.String("user_id", msg.UserID),
		slog.String("order_id", msg.OrderID),
		slog.String("type", msg.Type),
		slog.String("subject", msg.Subject),
	)

	return nil
}
