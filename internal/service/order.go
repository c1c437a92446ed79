package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/event"
	"github.com/beanhouse/cafe-backend/internal/notifier"
	"github.com/beanhouse/cafe-backend/internal/repository"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
	"github.com/beanhouse/cafe-backend/pkg/pagination"
)

// RoleAdmin marks staff users who may manage any order.
const RoleAdmin = "admin"

// OrderService implements the business logic for order lifecycle operations.
type OrderService struct {
	orders   repository.OrderRepository
	producer *event.Producer
	notifier notifier.Notifier
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, producer *event.Producer, n notifier.Notifier, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		producer: producer,
		notifier: n,
		logger:   logger,
	}
}

// Commit persists a charged order draft atomically. Cash orders start as
// pending and settle on delivery; card and UPI orders start as paid.
func (s *OrderService) Commit(ctx context.Context, draft *domain.OrderDraft, payment *domain.PaymentResult) (*domain.Order, error) {
	if draft == nil || len(draft.Items) == 0 {
		return nil, apperrors.InvalidInput("order draft is empty")
	}
	if payment == nil || !payment.Success {
		return nil, apperrors.InvalidInput("order requires a successful payment")
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	order := &domain.Order{
		ID:          orderID,
		UserID:      draft.UserID,
		Status:      domain.OrderStatusPaid,
		Address:     draft.Address,
		Phone:       draft.Phone,
		TotalAmount: draft.TotalAmount,
		Payment:     *payment,
		PaidAt:      &now,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       make([]domain.OrderItem, len(draft.Items)),
	}

	if payment.Method == domain.PaymentMethodCash {
		order.Status = domain.OrderStatusPending
		order.PaidAt = nil
	}

	for i, item := range draft.Items {
		order.Items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// The charge already went through. Flag for manual reconciliation
		// against the processor's transaction log.
		s.logger.ErrorContext(ctx, "order persist failed after successful charge, needs reconciliation",
			slog.String("order_id", orderID),
			slog.String("user_id", draft.UserID),
			slog.String("transaction_id", payment.TransactionID),
			slog.Int64("amount", payment.Amount),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.InfoContext(ctx, "order committed",
		slog.String("order_id", orderID),
		slog.String("user_id", draft.UserID),
		slog.String("status", order.Status),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// Get retrieves an order. Customers can only see their own orders;
// admins can see any.
func (s *OrderService) Get(ctx context.Context, orderID, userID, role string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if role != RoleAdmin && order.UserID != userID {
		// Hide the order's existence from other customers.
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

// List returns a page of orders, newest first. Customers only ever see
// their own orders; admins see all and may filter by user.
func (s *OrderService) List(ctx context.Context, userID, role string, filter repository.OrderFilter) (*pagination.Result[domain.Order], error) {
	if role != RoleAdmin {
		filter.UserID = &userID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := pagination.NewResult(orders, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}

// UpdateStatus moves an order through its lifecycle. Transitions outside
// the allowed graph are rejected; moving into paid stamps the settlement
// time for cash orders.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*domain.Order, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status: %s", newStatus))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidTransition(order.Status, newStatus)
	}

	var paidAt *time.Time
	if newStatus == domain.OrderStatusPaid && order.PaidAt == nil {
		now := time.Now().UTC()
		paidAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus, paidAt); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	oldStatus := order.Status
	order.Status = newStatus
	if paidAt != nil {
		order.PaidAt = paidAt
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishOrderStatusChanged(ctx, orderID, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.notifyStatusChange(ctx, order, oldStatus)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return order, nil
}

// notifyStatusChange sends a best-effort customer notification.
func (s *OrderService) notifyStatusChange(ctx context.Context, order *domain.Order, oldStatus string) {
	msg := &notifier.Notification{
		UserID:  order.UserID,
		OrderID: order.ID,
		Type:    notifier.TypeOrderStatusChanged,
		Subject: fmt.Sprintf("Your order is now %s", order.Status),
		Body:    fmt.Sprintf("Order %s moved from %s to %s.", order.ID, oldStatus, order.Status),
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send status notification",
			slog.String("order_id", order.ID),
			slog.String("notifier", s.notifier.Name()),
			slog.String("error", err.Error()),
		)
	}
}
