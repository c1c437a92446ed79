package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/beanhouse/cafe-backend/internal/domain"
	pkgkafka "github.com/beanhouse/cafe-backend/pkg/kafka"
)

// Kafka topics for cafe domain events.
const (
	TopicOrders   = "cafe.orders"
	TopicFeedback = "cafe.feedback"
)

// Event types carried on the topics.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeFeedbackSubmitted  = "feedback.submitted"
)

// Aggregate type constants.
const (
	AggregateTypeOrder    = "order"
	AggregateTypeFeedback = "feedback"
)

// Source identifier for events originating from this service.
const Source = "cafe-backend"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Status        string          `json:"status"`
	Items         []OrderItemData `json:"items"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	TotalAmount   int64           `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// FeedbackSubmittedData is the payload for a feedback.submitted event.
type FeedbackSubmittedData struct {
	FeedbackID string  `json:"feedback_id"`
	OrderID    string  `json:"order_id"`
	UserID     string  `json:"user_id"`
	ProductID  *string `json:"product_id,omitempty"`
	Rating     int     `json:"rating"`
}

// Producer publishes cafe domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		Items:         items,
		Address:       order.Address,
		Phone:         order.Phone,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.Payment.Method,
		TransactionID: order.Payment.TransactionID,
		PaidAt:        order.PaidAt,
	}

	event, err := pkgkafka.NewEvent(TypeOrderCreated, order.ID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrders, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TypeOrderStatusChanged, orderID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrders, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishFeedbackSubmitted publishes a feedback.submitted event.
func (p *Producer) PublishFeedbackSubmitted(ctx context.Context, fb *domain.Feedback) error {
	data := FeedbackSubmittedData{
		FeedbackID: fb.ID,
		OrderID:    fb.OrderID,
		UserID:     fb.UserID,
		ProductID:  fb.ProductID,
		Rating:     fb.Rating,
	}

	event, err := pkgkafka.NewEvent(TypeFeedbackSubmitted, fb.ID, AggregateTypeFeedback, Source, data)
	if err != nil {
		return fmt.Errorf("create feedback.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFeedback, event); err != nil {
		return fmt.Errorf("publish feedback.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published feedback.submitted event",
		slog.String("feedback_id", fb.ID),
		slog.String("order_id", fb.OrderID),
	)

	return nil
}
