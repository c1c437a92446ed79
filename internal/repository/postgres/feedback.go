package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/repository"
	"github.com/beanhouse/cafe-backend/pkg/database"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// FeedbackRepository implements repository.FeedbackRepository using PostgreSQL.
type FeedbackRepository struct {
	pool database.DBTX
}

// NewFeedbackRepository creates a new PostgreSQL-backed feedback repository.
func NewFeedbackRepository(pool database.DBTX) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// Create inserts a new feedback row. The partial unique indexes on
// (order_id, user_id) and (order_id, user_id, product_id) enforce one
// submission per order and per order item.
func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateFeedback", "INSERT INTO feedback")
	defer func() { end(err) }()

	query := `
		INSERT INTO feedback (id, order_id, user_id, product_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		fb.ID,
		fb.OrderID,
		fb.UserID,
		fb.ProductID,
		fb.Rating,
		fb.Comment,
		fb.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.DuplicateFeedback("feedback already submitted for this order")
		}
		return fmt.Errorf("insert feedback: %w", err)
	}

	return nil
}

// ListByUser returns a user's feedback, newest first, with the total count.
func (r *FeedbackRepository) ListByUser(ctx context.Context, userID string, limit, offset int) (_ []domain.Feedback, _ int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListUserFeedback", "SELECT FROM feedback WHERE user_id")
	defer func() { end(err) }()

	query := `
		SELECT id, order_id, user_id, product_id, rating, comment, created_at,
			   count(*) OVER() AS total_count
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var totalCount int
	feedback := make([]domain.Feedback, 0)

	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.OrderID,
			&fb.UserID,
			&fb.ProductID,
			&fb.Rating,
			&fb.Comment,
			&fb.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan feedback row: %w", err)
		}
		feedback = append(feedback, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate feedback rows: %w", err)
	}

	return feedback, totalCount, nil
}

// ListRecentForProduct returns recent reviews counting toward a product:
// rows targeting it directly plus order-level rows whose order contains it.
func (r *FeedbackRepository) ListRecentForProduct(ctx context.Context, productID string, limit int) (_ []domain.Feedback, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProductReviews", "SELECT FROM feedback JOIN order_items")
	defer func() { end(err) }()

	query := `
		SELECT f.id, f.order_id, f.user_id, f.product_id, f.rating, f.comment, f.created_at
		FROM feedback f
		WHERE (f.product_id = $1 OR f.product_id IS NULL)
		  AND EXISTS (
			SELECT 1 FROM order_items oi
			WHERE oi.order_id = f.order_id AND oi.product_id = $1
		  )
		ORDER BY f.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}
	defer rows.Close()

	feedback := make([]domain.Feedback, 0)
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(
			&fb.ID,
			&fb.OrderID,
			&fb.UserID,
			&fb.ProductID,
			&fb.Rating,
			&fb.Comment,
			&fb.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		feedback = append(feedback, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return feedback, nil
}

// RatingMassForProduct computes the real-feedback contribution to a
// product's rating in a single query. Order-level feedback counts toward
// every product in the order.
func (r *FeedbackRepository) RatingMassForProduct(ctx context.Context, productID string) (_ repository.RatingMass, err error) {
	ctx, end := database.TraceQuery(ctx, "ProductRatingMass", "SELECT SUM(rating) FROM feedback")
	defer func() { end(err) }()

	query := `
		SELECT COALESCE(SUM(f.rating), 0)::float8, COUNT(*)
		FROM feedback f
		WHERE (f.product_id = $1 OR f.product_id IS NULL)
		  AND EXISTS (
			SELECT 1 FROM order_items oi
			WHERE oi.order_id = f.order_id AND oi.product_id = $1
		  )`

	var mass repository.RatingMass
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&mass.Sum, &mass.Count); err != nil {
		return repository.RatingMass{}, fmt.Errorf("aggregate product rating: %w", err)
	}

	return mass, nil
}
