package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/event"
	"github.com/beanhouse/cafe-backend/internal/notifier"
	"github.com/beanhouse/cafe-backend/internal/provider"
	"github.com/beanhouse/cafe-backend/internal/repository"
	pkgkafka "github.com/beanhouse/cafe-backend/pkg/kafka"
)

// --- Mock Repositories ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error {
	args := m.Called(ctx, id, status, paidAt)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.Product, error) {
	args := m.Called(ctx, onlyAvailable)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	args := m.Called(ctx, id, average, count)
	return args.Error(0)
}

type mockFeedbackRepository struct {
	mock.Mock
}

func (m *mockFeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

func (m *mockFeedbackRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Feedback), args.Int(1), args.Error(2)
}

func (m *mockFeedbackRepository) ListRecentForProduct(ctx context.Context, productID string, limit int) ([]domain.Feedback, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]domain.Feedback), args.Error(1)
}

func (m *mockFeedbackRepository) RatingMassForProduct(ctx context.Context, productID string) (repository.RatingMass, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(repository.RatingMass), args.Error(1)
}

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Mock Processor and Notifier ---

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Name() string {
	return "mock"
}

func (m *mockProcessor) Charge(ctx context.Context, input *provider.ChargeInput) (*provider.ChargeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeResult), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Name() string {
	return "mock"
}

func (m *mockNotifier) Send(ctx context.Context, n *notifier.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEventProducer returns a producer whose publishes fail silently
// because no broker is listening. Services log and continue on publish
// errors, so tests exercise that path.
func newTestEventProducer(t *testing.T) *event.Producer {
	t.Helper()
	logger := newTestLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"127.0.0.1:1"}), logger)
	t.Cleanup(func() { kafkaProducer.Close() })
	return event.NewProducer(kafkaProducer, logger)
}

func strPtr(s string) *string {
	return &s
}
