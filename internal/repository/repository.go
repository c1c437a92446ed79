package repository

import (
	"context"
	"time"

	"github.com/beanhouse/cafe-backend/internal/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts an order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order including its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes an order's status, optionally stamping PaidAt.
	UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error
}

// ProductRepository defines catalog read and rating write-back operations.
type ProductRepository interface {
	// GetByID retrieves a product by ID.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByIDs retrieves products for the given IDs, keyed by ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)

	// List returns the catalog ordered by name.
	List(ctx context.Context, onlyAvailable bool) ([]domain.Product, error)

	// UpdateRating writes the displayed rating aggregates back to a product.
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

// RatingMass is the real-feedback contribution to a product's rating.
type RatingMass struct {
	Sum   float64
	Count int
}

// FeedbackRepository defines feedback persistence and rating aggregation.
type FeedbackRepository interface {
	// Create inserts a feedback row. Duplicate (order, user[, product])
	// submissions return ErrDuplicateFeedback.
	Create(ctx context.Context, fb *domain.Feedback) error

	// ListByUser returns a user's feedback, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Feedback, int, error)

	// ListRecentForProduct returns recent reviews counting toward a product.
	ListRecentForProduct(ctx context.Context, productID string, limit int) ([]domain.Feedback, error)

	// RatingMassForProduct computes the feedback mass counting toward a
	// product: product-level rows for it plus order-level rows whose order
	// contains it.
	RatingMassForProduct(ctx context.Context, productID string) (RatingMass, error)
}

// IdempotencyStore guards checkout against duplicate submissions.
type IdempotencyStore interface {
	// Reserve claims the key for the window. It returns false when the key
	// is already held.
	Reserve(ctx context.Context, key string, window time.Duration) (bool, error)

	// Release frees a reserved key so a failed checkout can be retried.
	Release(ctx context.Context, key string) error
}
