package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tushank99/mern-ecommerce/internal/domain"
	"github.com/tushank99/mern-ecommerce/internal/service"
	"github.com/tushank99/mern-ecommerce/pkg/httputil"
	"github.com/tushank99/mern-ecommerce/pkg/middleware"
	"github.com/tushank99/mern-ecommerce/pkg/pagination"
	"github.com/tushank99/mern-ecommerce/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for submitting a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=255"`
	Comment string `json:"comment" validate:"required"`
}

// MarkHelpfulRequest is the JSON request body for a helpful vote.
type MarkHelpfulRequest struct {
	ReviewID string `json:"review_id" validate:"required,uuid"`
}

// productIDParam validates the productId path parameter. A malformed id can
// never reference a stored product, so it gets the same 404 a missing one
// does rather than leaking a database type error.
func (h *ReviewHandler) productIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	productID := chi.URLParam(r, "productId")
	if _, err := uuid.Parse(productID); err != nil {
		httputil.WriteError(w, r, service.ErrProductNotFound(), h.logger)
		return "", false
	}
	return productID, true
}

// --- Handlers ---

// CheckEligibility handles GET /api/v1/products/{productId}/reviews/eligibility
// @Summary Check review eligibility
// @Description Reports whether the authenticated user may review the product
// @Tags reviews
// @Produce json
// @Param productId path string true "Product UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/reviews/eligibility [get]
func (h *ReviewHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	userID := middleware.UserIDFromContext(r.Context())

	// A malformed id answers the same way a missing product does.
	eligibility := &domain.Eligibility{Eligible: false, Reason: domain.ReasonProductNotFound}
	if _, err := uuid.Parse(productID); err == nil {
		var canErr error
		eligibility, canErr = h.service.CanReview(r.Context(), productID, userID)
		if canErr != nil {
			httputil.WriteError(w, r, canErr, h.logger)
			return
		}
	}

	// A missing product is a 404, not an ineligible-but-present answer.
	status := http.StatusOK
	if eligibility.Reason == domain.ReasonProductNotFound {
		status = http.StatusNotFound
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: map[string]any{
		"can_review": eligibility.Eligible,
		"reason":     eligibility.Reason,
		"message":    eligibility.Message(),
	}})
}

// ListReviews handles GET /api/v1/products/{productId}/reviews
// @Summary List product reviews
// @Description Returns paginated reviews for a product with its rating summary
// @Tags reviews
// @Produce json
// @Param productId path string true "Product UUID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}
	params := pagination.FromRequest(r)

	reviews, total, summary, err := h.service.ListReviews(r.Context(), productID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := pagination.NewResult(reviews, total, params)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"data":        result.Data,
		"summary":     summary,
		"total_count": result.TotalCount,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// CreateReview handles POST /api/v1/products/{productId}/reviews
// @Summary Submit a product review
// @Description Submits a review for a purchased product. Requires authentication.
// @Tags reviews
// @Accept json
// @Produce json
// @Param productId path string true "Product UUID"
// @Param request body CreateReviewRequest true "Review to submit"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	input := &service.SubmitReviewInput{
		ProductID: productID,
		UserID:    middleware.UserIDFromContext(r.Context()),
		Author:    middleware.UserNameFromContext(r.Context()),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	}

	review, err := h.service.SubmitReview(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// MarkHelpful handles POST /api/v1/products/{productId}/reviews/helpful
// @Summary Mark a review as helpful
// @Description Adds one helpful vote to a review and returns the new count
// @Tags reviews
// @Accept json
// @Produce json
// @Param productId path string true "Product UUID"
// @Param request body MarkHelpfulRequest true "Review to vote on"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{productId}/reviews/helpful [post]
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req MarkHelpfulRequest
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

	votes, err := h.service.MarkHelpful(r.Context(), productID, req.ReviewID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{
		"helpful_votes": votes,
	}})
}
