package handlers

import (
	"net/http"
	"strconv"

	"product-review/internal/models"
	"product-review/internal/services"

	"github.com/rs/zerolog"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	logger        zerolog.Logger
}

func NewReviewHandler(reviewService *services.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// GetReviews lists reviews; ?product_id= narrows to one product.
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	productID := 0
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product_id")
			return
		}
		productID = id
	}
	limit, offset := pagination(r)

	reviews, err := h.reviewService.ListReviews(r.Context(), productID, limit, offset)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	review, err := h.reviewService.GetReview(r.Context(), reviewID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := h.reviewService.UpdateReview(r.Context(), reviewID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(r.Context(), reviewID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
