package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beanhouse/cafe-backend/internal/service"
	"github.com/beanhouse/cafe-backend/pkg/httputil"
	"github.com/beanhouse/cafe-backend/pkg/middleware"
	"github.com/beanhouse/cafe-backend/pkg/pagination"
	"github.com/beanhouse/cafe-backend/pkg/validator"
)

// FeedbackHandler handles HTTP requests for feedback and rating endpoints.
type FeedbackHandler struct {
	service *service.FeedbackService
	logger  *slog.Logger
}

// NewFeedbackHandler creates a new feedback HTTP handler.
func NewFeedbackHandler(svc *service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// OrderFeedbackRequest is the JSON request body for rating a whole order.
type OrderFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ProductReviewRequest is the JSON request body for reviewing one product
// from a past order.
type ProductReviewRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// --- Handlers ---

// SubmitOrderFeedback handles POST /api/v1/orders/{id}/feedback
func (h *FeedbackHandler) SubmitOrderFeedback(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req OrderFeedbackRequest
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

	input := service.SubmitFeedbackInput{
		OrderID: orderID.String(),
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	feedback, err := h.service.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: feedback})
}

// SubmitProductReview handles POST /api/v1/products/{id}/reviews
func (h *FeedbackHandler) SubmitProductReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ProductReviewRequest
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

	pid := productID.String()
	input := service.SubmitFeedbackInput{
		OrderID:   req.OrderID,
		ProductID: &pid,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	feedback, err := h.service.Submit(r.Context(), middleware.UserIDFromContext(r.Context()), &input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: feedback})
}

// GetProductRating handles GET /api/v1/products/{id}/rating
func (h *FeedbackHandler) GetProductRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	rating, err := h.service.GetProductRating(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rating})
}

// ListMyFeedback handles GET /api/v1/feedback
func (h *FeedbackHandler) ListMyFeedback(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	result, err := h.service.ListUserFeedback(r.Context(), middleware.UserIDFromContext(r.Context()), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(result.Data, result.TotalCount, result.Page, result.PerPage))
}
