package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/beanhouse/cafe-backend/internal/notifier"
	"github.com/beanhouse/cafe-backend/pkg/httpclient"
)

// Notifier delivers notifications by POSTing them as JSON to a configured
// webhook URL. Calls go through a circuit breaker so a dead endpoint does
// not stall order processing.
type Notifier struct {
	url    string
	client *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewNotifier creates a webhook notifier targeting the given URL.
func NewNotifier(url string, logger *slog.Logger) *Notifier {
	client := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("notifier-webhook"), logger)

	return &Notifier{
		url:    url,
		client: cb,
		logger: logger,
	}
}

// Name returns the name of this notifier.
func (n *Notifier) Name() string {
	return "webhook"
}

// Send POSTs the notification to the webhook endpoint.
func (n *Notifier) Send(ctx context.Context, msg *notifier.Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	resp, err := n.client.Post(ctx, n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return httpclient.ParseResponseError(resp, "notification webhook")
	}

	n.logger.DebugContext(ctx, "notification delivered",
		slog.String("order_id", msg.OrderID),
		slog.String("type", msg.Type),
	)

	return nil
}
