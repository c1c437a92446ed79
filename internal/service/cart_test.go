package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beanhouse/cafe-backend/internal/domain"
	apperrors "github.com/beanhouse/cafe-backend/pkg/errors"
)

func newCartService(products *mockProductRepository, tolerance int64) *CartService {
	return NewCartService(products, tolerance, newTestLogger())
}

func cafeCatalog() map[string]*domain.Product {
	return map[string]*domain.Product{
		"prod-latte": {
			ID:        "prod-latte",
			Name:      "Oat Milk Latte",
			Price:     24900,
			Available: true,
		},
		"prod-croissant": {
			ID:        "prod-croissant",
			Name:      "Almond Croissant",
			Price:     18500,
			Available: true,
		},
		"prod-retired": {
			ID:        "prod-retired",
			Name:      "Pumpkin Spice Latte",
			Price:     27900,
			Available: false,
		},
	}
}

func validCartInput() *ValidateCartInput {
	return &ValidateCartInput{
		Items: []CartItemInput{
			{ProductID: "prod-latte", UnitPrice: 24900, Quantity: 2},
			{ProductID: "prod-croissant", UnitPrice: 18500, Quantity: 1},
		},
		Address: "12 Bean Street, Pune",
		Phone:   "9876543210",
	}
}

func TestValidateCart_Success(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("GetByIDs", ctx, []string{"prod-latte", "prod-croissant"}).Return(cafeCatalog(), nil)

	draft, err := svc.ValidateCart(ctx, "user-001", validCartInput())
	require.NoError(t, err)

	assert.Equal(t, "user-001", draft.UserID)
	assert.Equal(t, "12 Bean Street, Pune", draft.Address)
	require.Len(t, draft.Items, 2)
	assert.Equal(t, int64(49800), draft.Items[0].LineTotal) // 24900 * 2
	assert.Equal(t, int64(18500), draft.Items[1].LineTotal)
	assert.Equal(t, int64(68300), draft.TotalAmount)

	products.AssertExpectations(t)
}

func TestValidateCart_EmptyCart(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	input := validCartInput()
	input.Items = nil

	draft, err := svc.ValidateCart(context.Background(), "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCart_NilInput(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	draft, err := svc.ValidateCart(context.Background(), "user-001", nil)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCart_MissingUserID(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	draft, err := svc.ValidateCart(context.Background(), "", validCartInput())
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCart_BlankAddress(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	input := validCartInput()
	input.Address = "   "

	draft, err := svc.ValidateCart(context.Background(), "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCart_InvalidPhone(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	for _, phone := range []string{"", "12345", "98765432101", "98765abcde", "+919876543210"} {
		input := validCartInput()
		input.Phone = phone

		draft, err := svc.ValidateCart(context.Background(), "user-001", input)
		assert.Nil(t, draft, "phone %q", phone)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "phone %q", phone)
	}
}

func TestValidateCart_ZeroQuantity(t *testing.T) {
	svc := newCartService(new(mockProductRepository), 0)

	input := validCartInput()
	input.Items[0].Quantity = 0

	draft, err := svc.ValidateCart(context.Background(), "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidateCart_UnknownProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("GetByIDs", ctx, mock.Anything).Return(cafeCatalog(), nil)

	input := validCartInput()
	input.Items[0].ProductID = "prod-ghost"

	draft, err := svc.ValidateCart(ctx, "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestValidateCart_UnavailableProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("GetByIDs", ctx, mock.Anything).Return(cafeCatalog(), nil)

	input := validCartInput()
	input.Items[0] = CartItemInput{ProductID: "prod-retired", UnitPrice: 27900, Quantity: 1}

	draft, err := svc.ValidateCart(ctx, "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestValidateCart_StalePriceRejected(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("GetByIDs", ctx, mock.Anything).Return(cafeCatalog(), nil)

	// Menu price went up since the client cached it.
	input := validCartInput()
	input.Items[0].UnitPrice = 22900

	draft, err := svc.ValidateCart(ctx, "user-001", input)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRICE_MISMATCH", appErr.Code)
}

func TestValidateCart_PriceWithinTolerance(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 100)
	ctx := context.Background()

	products.On("GetByIDs", ctx, mock.Anything).Return(cafeCatalog(), nil)

	input := validCartInput()
	input.Items[0].UnitPrice = 24850 // 50 under, inside tolerance

	draft, err := svc.ValidateCart(ctx, "user-001", input)
	require.NoError(t, err)

	// The catalog price wins regardless of the submitted one.
	assert.Equal(t, int64(24900), draft.Items[0].UnitPrice)
	assert.Equal(t, int64(49800), draft.Items[0].LineTotal)
}

func TestValidateCart_CatalogLookupFails(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("GetByIDs", ctx, mock.Anything).Return(nil, errors.New("database timeout"))

	draft, err := svc.ValidateCart(ctx, "user-001", validCartInput())
	assert.Nil(t, draft)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog for cart")
}

func TestMenu_OnlyAvailableProducts(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	menu := []domain.Product{
		{ID: "prod-croissant", Name: "Butter Croissant", Price: 18500, Available: true},
		{ID: "prod-latte", Name: "Oat Milk Latte", Price: 24900, Available: true},
	}
	products.On("List", ctx, true).Return(menu, nil)

	got, err := svc.Menu(ctx)
	require.NoError(t, err)
	assert.Equal(t, menu, got)

	products.AssertExpectations(t)
}

func TestMenu_RepositoryError(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCartService(products, 0)
	ctx := context.Background()

	products.On("List", ctx, true).Return([]domain.Product(nil), errors.New("database timeout"))

	_, err := svc.Menu(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "load menu")
}
