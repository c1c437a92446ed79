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

// CheckoutHandler handles HTTP requests for the checkout endpoint.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CardDetailsRequest is the JSON request body for card payment details.
type CardDetailsRequest struct {
	Number string `json:"number" validate:"required"`
	Holder string `json:"holder" validate:"required"`
	Expiry string `json:"expiry" validate:"required"`
	CVV    string `json:"cvv" validate:"required"`
}

// UPIDetailsRequest is the JSON request body for UPI payment details.
type UPIDetailsRequest struct {
	VPA  string `json:"vpa" validate:"required"`
	Name string `json:"name" validate:"required,min=2"`
}

// PaymentRequest is the JSON request body for the payment half of a checkout.
type PaymentRequest struct {
	Method string              `json:"method" validate:"required,oneof=cash card upi"`
	Card   *CardDetailsRequest `json:"card,omitempty" validate:"omitempty"`
	UPI    *UPIDetailsRequest  `json:"upi,omitempty" validate:"omitempty"`
}

// CheckoutRequest is the JSON request body for placing an order.
type CheckoutRequest struct {
	Cart    ValidateCartRequest `json:"cart" validate:"required"`
	Payment PaymentRequest      `json:"payment" validate:"required"`
}

// --- Handlers ---

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CheckoutRequest
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

	items := make([]service.CartItemInput, len(req.Cart.Items))
	for i, item := range req.Cart.Items {
		items[i] = service.CartItemInput{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	input := service.CheckoutInput{
		Cart: service.ValidateCartInput{
			Items:   items,
			Address: req.Cart.Address,
			Phone:   req.Cart.Phone,
		},
		Payment: service.PaymentInput{
			Method: req.Payment.Method,
		},
	}
	if req.Payment.Card != nil {
		input.Payment.Card = &service.CardDetails{
			Number: req.Payment.Card.Number,
			Holder: req.Payment.Card.Holder,
			Expiry: req.Payment.Card.Expiry,
			CVV:    req.Payment.Card.CVV,
		}
	}
	if req.Payment.UPI != nil {
		input.Payment.UPI = &service.UPIDetails{
			VPA:  req.Payment.UPI.VPA,
			Name: req.Payment.UPI.Name,
		}
	}

	order, err := h.service.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}
