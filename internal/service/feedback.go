package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/event"
	"github.com/beanhouse/cafe-backend/internal/repository"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
	"github.com/beanhouse/cafe-backend/pkg/pagination"
)

// recentReviewsLimit caps the reviews returned with a product rating.
const recentReviewsLimit = 10

// FeedbackService implements feedback submission and rating aggregation.
type FeedbackService struct {
	feedback repository.FeedbackRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(
	feedback repository.FeedbackRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		orders:   orders,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// SubmitFeedbackInput holds the parameters for submitting feedback. A nil
// ProductID rates the whole order; otherwise it rates one item in it.
type SubmitFeedbackInput struct {
	OrderID   string  `json:"order_id" validate:"required"`
	ProductID *string `json:"product_id,omitempty"`
	Rating    int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string  `json:"comment" validate:"max=2000"`
}

// Submit records feedback on an order the user owns and recomputes the
// affected product ratings. Order-level feedback counts toward every
// product in the order.
func (s *FeedbackService) Submit(ctx context.Context, userID string, input *SubmitFeedbackInput) (*domain.Feedback, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("feedback input is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for feedback: %w", err)
	}
	if order.UserID != userID {
		// Hide the order's existence from other customers.
		return nil, apperrors.NotFound("order", input.OrderID)
	}

	affected := make([]string, 0, len(order.Items))
	if input.ProductID != nil {
		found := false
		for _, item := range order.Items {
			if item.ProductID == *input.ProductID {
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.InvalidInput("product is not part of this order")
		}
		affected = append(affected, *input.ProductID)
	} else {
		seen := make(map[string]struct{}, len(order.Items))
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			affected = append(affected, item.ProductID)
		}
	}

	fb := &domain.Feedback{
		ID:        uuid.New().String(),
		OrderID:   input.OrderID,
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	// Recompute displayed ratings for every product the feedback touches.
	// Failures here leave the stored aggregates stale, not wrong: the next
	// submission recomputes from the full feedback mass.
	for _, productID := range affected {
		if err := s.recomputeRating(ctx, productID); err != nil {
			s.logger.WarnContext(ctx, "failed to recompute product rating",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishFeedbackSubmitted(ctx, fb); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish feedback.submitted event",
			slog.String("feedback_id", fb.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "feedback submitted",
		slog.String("feedback_id", fb.ID),
		slog.String("order_id", fb.OrderID),
		slog.Int("rating", fb.Rating),
	)

	return fb, nil
}

// recomputeRating rebuilds a product's displayed rating from its seed
// mass plus the full real-feedback mass. The computation is idempotent,
// so replays and retries converge on the same value.
func (s *FeedbackService) recomputeRating(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product for rating recompute: %w", err)
	}

	mass, err := s.feedback.RatingMassForProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("compute rating mass: %w", err)
	}

	avg, count := domain.BlendedRating(product.SeedRatingAvg, product.SeedRatingCount, mass.Sum, mass.Count)
	if err := s.products.UpdateRating(ctx, productID, avg, count); err != nil {
		return fmt.Errorf("store recomputed rating: %w", err)
	}

	return nil
}

// ProductRating is the public rating view for a product.
type ProductRating struct {
	ProductID     string            `json:"product_id"`
	Name          string            `json:"name"`
	AverageRating float64           `json:"average_rating"`
	ReviewCount   int               `json:"review_count"`
	RecentReviews []domain.Feedback `json:"recent_reviews"`
}

// GetProductRating returns a product's blended rating with its most
// recent reviews. Public, no authentication required.
func (s *FeedbackService) GetProductRating(ctx context.Context, productID string) (*ProductRating, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product rating: %w", err)
	}

	reviews, err := s.feedback.ListRecentForProduct(ctx, productID, recentReviewsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}

	return &ProductRating{
		ProductID:     product.ID,
		Name:          product.Name,
		AverageRating: product.AverageRating,
		ReviewCount:   product.ReviewCount,
		RecentReviews: reviews,
	}, nil
}

// ListUserFeedback returns a page of the user's feedback, newest first.
func (s *FeedbackService) ListUserFeedback(ctx context.Context, userID string, page pagination.Params) (*pagination.Result[domain.Feedback], error) {
	offset := 0
	if page.Page > 1 {
		offset = (page.Page - 1) * page.PerPage
	}

	feedback, total, err := s.feedback.ListByUser(ctx, userID, page.PerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("list user feedback: %w", err)
	}

	result := pagination.NewResult(feedback, total, page)
	return &result, nil
}
