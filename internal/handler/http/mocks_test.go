package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/event"
	notifiermock "github.com/beanhouse/cafe-backend/internal/notifier/mock"
	"github.com/beanhouse/cafe-backend/internal/provider/sim"
	"github.com/beanhouse/cafe-backend/internal/repository"
	"github.com/beanhouse/cafe-backend/internal/service"
	"github.com/beanhouse/cafe-backend/pkg/httputil"
	pkgkafka "github.com/beanhouse/cafe-backend/pkg/kafka"
	"github.com/beanhouse/cafe-backend/pkg/middleware"
)

// --- Mock repositories ---

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
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	args := m.Called(ctx, id, average, count)
	return args.Error(0)
}

type mockFeedbackRepository struct {
	mock.Mock
}

func (m *mockFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *mockFeedbackRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Feedback), args.Int(1), args.Error(2)
}

func (m *mockFeedbackRepository) ListRecentForProduct(ctx context.Context, productID string, limit int) ([]domain.Feedback, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// --- Test helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEventProducer points at a closed local port so publishes fail fast;
// the services only log producer failures.
func testEventProducer(t *testing.T) *event.Producer {
	t.Helper()
	logger := testLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"127.0.0.1:1"}), logger)
	t.Cleanup(func() { _ = kafkaProducer.Close() })
	return event.NewProducer(kafkaProducer, logger)
}

func testCartService(products *mockProductRepository) *service.CartService {
	return service.NewCartService(products, 0, testLogger())
}

func testOrderService(t *testing.T, orders *mockOrderRepository) *service.OrderService {
	t.Helper()
	return service.NewOrderService(orders, testEventProducer(t), notifiermock.NewNotifier(testLogger()), testLogger())
}

func testFeedbackService(t *testing.T, feedback *mockFeedbackRepository, orders *mockOrderRepository, products *mockProductRepository) *service.FeedbackService {
	t.Helper()
	return service.NewFeedbackService(feedback, orders, products, testEventProducer(t), testLogger())
}

func testCheckoutService(
	t *testing.T,
	products *mockProductRepository,
	orders *mockOrderRepository,
	idem *mockIdempotencyStore,
) *service.CheckoutService {
	t.Helper()
	logger := testLogger()
	processor := sim.NewProcessor(sim.Config{Delay: time.Millisecond, SuccessRate: 1.0})
	payment := service.NewPaymentService(processor, time.Second, logger)
	orderSvc := testOrderService(t, orders)
	return service.NewCheckoutService(
		testCartService(products),
		payment,
		orderSvc,
		idem,
		testEventProducer(t),
		notifiermock.NewNotifier(logger),
		30*time.Second,
		logger,
	)
}

// authedRequest stamps the request context the way the auth middleware
// would for a validated token.
func authedRequest(r *http.Request, userID, role string) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), userID, role))
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
