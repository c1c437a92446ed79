package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/repository"
	"github.com/beanhouse/cafe-backend/pkg/database"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateOrder", "INSERT INTO orders, order_items")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	detailsJSON, err := json.Marshal(o.Payment.Details)
	if err != nil {
		return fmt.Errorf("marshal payment details: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, address, phone, total_amount, payment_method, payment_success, payment_txn_id, payment_details, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.Address,
		o.Phone,
		o.TotalAmount,
		o.Payment.Method,
		o.Payment.Success,
		o.Payment.TransactionID,
		detailsJSON,
		o.PaidAt,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "GetOrder", "SELECT FROM orders LEFT JOIN order_items")
	defer func() { end(err) }()

	// Fetch order and items in a single query using LEFT JOIN + JSONB_AGG
	// to avoid a second round trip for the items.
	orderQuery := `
		SELECT
			o.id, o.user_id, o.status, o.address, o.phone, o.total_amount,
			o.payment_method, o.payment_success, o.payment_txn_id, o.payment_details,
			o.paid_at, o.created_at, o.updated_at,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', oi.id,
						'order_id', oi.order_id,
						'product_id', oi.product_id,
						'name', oi.name,
						'unit_price', oi.unit_price,
						'quantity', oi.quantity
					) ORDER BY oi.id
				) FILTER (WHERE oi.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id, o.user_id, o.status, o.address, o.phone, o.total_amount,
			o.payment_method, o.payment_success, o.payment_txn_id, o.payment_details,
			o.paid_at, o.created_at, o.updated_at`

	var (
		o           domain.Order
		detailsJSON []byte
		itemsJSON   []byte
	)

	err = r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Address,
		&o.Phone,
		&o.TotalAmount,
		&o.Payment.Method,
		&o.Payment.Success,
		&o.Payment.TransactionID,
		&detailsJSON,
		&o.PaidAt,
		&o.CreatedAt,
		&o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.Payment.Amount = o.TotalAmount

	if len(detailsJSON) > 0 && string(detailsJSON) != "null" {
		if err := json.Unmarshal(detailsJSON, &o.Payment.Details); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
	}

	if len(itemsJSON) > 0 && string(itemsJSON) != "null" && string(itemsJSON) != "[]" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	} else {
		o.Items = []domain.OrderItem{}
	}

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (_ []domain.Order, _ int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListOrders", "SELECT FROM orders")
	defer func() { end(err) }()

	var (
		conditions []string
		args       []any
		argIndex   int = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() returns the total alongside each row in one query.
	query := fmt.Sprintf(`
		SELECT id, user_id, status, address, phone, total_amount,
			   payment_method, payment_success, payment_txn_id, payment_details,
			   paid_at, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o           domain.Order
			detailsJSON []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.Address,
			&o.Phone,
			&o.TotalAmount,
			&o.Payment.Method,
			&o.Payment.Success,
			&o.Payment.TransactionID,
			&detailsJSON,
			&o.PaidAt,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		o.Payment.Amount = o.TotalAmount

		if len(detailsJSON) > 0 && string(detailsJSON) != "null" {
			if err := json.Unmarshal(detailsJSON, &o.Payment.Details); err != nil {
				return nil, 0, fmt.Errorf("unmarshal payment details: %w", err)
			}
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, name, unit_price, quantity
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Name,
				&item.UnitPrice,
				&item.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus changes the status of an order. A non-nil paidAt stamps the
// settlement time, used when an order moves into the paid status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", "UPDATE orders SET status")
	defer func() { end(err) }()

	query := `
		UPDATE orders
		SET status = $1, paid_at = COALESCE($2, paid_at), updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, status, paidAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}
