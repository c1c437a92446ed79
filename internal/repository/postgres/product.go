package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/pkg/database"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, description, price, available, seed_rating_avg, seed_rating_count, average_rating, review_count, created_at, updated_at`

func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Available,
		&p.SeedRatingAvg,
		&p.SeedRatingCount,
		&p.AverageRating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", "SELECT FROM products WHERE id")
	defer func() { end(err) }()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves products for the given IDs, keyed by ID. Missing IDs
// are simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (_ map[string]*domain.Product, err error) {
	if len(ids) == 0 {
		return map[string]*domain.Product{}, nil
	}

	ctx, end := database.TraceQuery(ctx, "GetProducts", "SELECT FROM products WHERE id = ANY")
	defer func() { end(err) }()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]*domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products[p.ID] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// List returns the catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context, onlyAvailable bool) (_ []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", "SELECT FROM products")
	defer func() { end(err) }()

	query := `SELECT ` + productColumns + ` FROM products`
	if onlyAvailable {
		query += ` WHERE available = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// UpdateRating writes the displayed rating aggregates back to a product.
func (r *ProductRepository) UpdateRating(ctx context.Context, id string, average float64, count int) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateProductRating", "UPDATE products SET average_rating")
	defer func() { end(err) }()

	query := `
		UPDATE products
		SET average_rating = $1, review_count = $2, updated_at = NOW()
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, average, count, id)
	if err != nil {
		return fmt.Errorf("update product rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}
