package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/beanhouse/cafe-backend/internal/service"
	"github.com/beanhouse/cafe-backend/pkg/httputil"
	"github.com/beanhouse/cafe-backend/pkg/middleware"
	"github.com/beanhouse/cafe-backend/pkg/validator"
)

// CartHandler handles HTTP requests for menu and cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CartItemRequest is the JSON request body for a single cart line.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// ValidateCartRequest is the JSON request body for validating a cart.
type ValidateCartRequest struct {
	Items   []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Address string            `json:"address" validate:"required"`
	Phone   string            `json:"phone" validate:"required,len=10,numeric"`
}

// --- Handlers ---

// ValidateCart handles POST /api/v1/cart/validate
func (h *CartHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ValidateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	items := make([]service.CartItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CartItemInput{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	input := service.ValidateCartInput{
		Items:   items,
		Address: req.Address,
		Phone:   req.Phone,
	}

	draft, err := h.service.ValidateCart(r.Context(), middleware.UserIDFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// ListMenu handles GET /api/v1/products
func (h *CartHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Menu(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}
