package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/beanhouse/cafe-backend/internal/domain"
	"github.com/beanhouse/cafe-backend/internal/repository"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// CartService validates cart submissions against the catalog and builds
// priced order drafts.
type CartService struct {
	products       repository.ProductRepository
	priceTolerance int64
	logger         *slog.Logger
}

// NewCartService creates a new cart service. priceTolerance is the
// maximum per-unit deviation in minor units allowed between a submitted
// price and the catalog price.
func NewCartService(products repository.ProductRepository, priceTolerance int64, logger *slog.Logger) *CartService {
	return &CartService{
		products:       products,
		priceTolerance: priceTolerance,
		logger:         logger,
	}
}

// CartItemInput represents a single item in a cart submission.
type CartItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// ValidateCartInput holds the parameters for validating a cart.
type ValidateCartInput struct {
	Items   []CartItemInput `json:"items" validate:"required,min=1,dive"`
	Address string          `json:"address" validate:"required"`
	Phone   string          `json:"phone" validate:"required"`
}

// ValidateCart checks a cart submission against the catalog and returns a
// priced order draft. Line prices always come from the catalog; submitted
// prices beyond the tolerance are rejected so a stale menu cannot
// underpay.
func (s *CartService) ValidateCart(ctx context.Context, userID string, input *ValidateCartInput) (*domain.OrderDraft, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input == nil {
		return nil, apperrors.InvalidInput("cart input is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("cart must contain at least one item")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, apperrors.InvalidInput("delivery address is required")
	}
	if !phonePattern.MatchString(input.Phone) {
		return nil, apperrors.InvalidInput("phone must be a 10-digit number")
	}

	for i, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: product_id is required", i))
		}
		if item.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
	}

	ids := make([]string, len(input.Items))
	for i, item := range input.Items {
		ids[i] = item.ProductID
	}

	catalog, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load catalog for cart: %w", err)
	}

	draft := &domain.OrderDraft{
		UserID:  userID,
		Items:   make([]domain.DraftItem, 0, len(input.Items)),
		Address: strings.TrimSpace(input.Address),
		Phone:   input.Phone,
	}

	for _, item := range input.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, apperrors.NotFound("product", item.ProductID)
		}
		if !product.Available {
			return nil, apperrors.NotFound("product", item.ProductID)
		}

		if diff := item.UnitPrice - product.Price; diff > s.priceTolerance || diff < -s.priceTolerance {
			s.logger.WarnContext(ctx, "cart price disagrees with catalog",
				slog.String("product_id", item.ProductID),
				slog.Int64("submitted_price", item.UnitPrice),
				slog.Int64("catalog_price", product.Price),
			)
			return nil, apperrors.PriceMismatch(
				fmt.Sprintf("price for %s has changed, refresh the menu and try again", product.Name),
			)
		}

		lineTotal := product.Price * int64(item.Quantity)
		draft.Items = append(draft.Items, domain.DraftItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		draft.TotalAmount += lineTotal
	}

	s.logger.DebugContext(ctx, "cart validated",
		slog.String("user_id", userID),
		slog.Int("items", len(draft.Items)),
		slog.Int64("total_amount", draft.TotalAmount),
	)

	return draft, nil
}

// Menu returns the orderable products, name order.
func (s *CartService) Menu(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	return products, nil
}
