package handlers

import (
	"fmt"
	"net/http"

	"product-review/internal/models"
	"product-review/internal/services"

	"github.com/rs/zerolog"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          zerolog.Logger
}

func NewCategoryHandler(categoryService *services.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	categories, err := h.categoryService.ListCategories(r.Context(), limit, offset)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.GetCategory(r.Context(), categoryID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.categoryService.CreateCategory(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/categories/%d", category.ID))
	respondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.categoryService.DeleteCategory(r.Context(), categoryID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type SellerHandler struct {
	sellerService *services.SellerService
	logger        zerolog.Logger
}

func NewSellerHandler(sellerService *services.SellerService, logger zerolog.Logger) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
		logger:        logger,
	}
}

func (h *SellerHandler) GetSellers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	sellers, err := h.sellerService.ListSellers(r.Context(), limit, offset)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sellers)
}

func (h *SellerHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	seller, err := h.sellerService.GetSeller(r.Context(), sellerID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, seller)
}

func (h *SellerHandler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req models.SellerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	seller, err := h.sellerService.CreateSeller(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/sellers/%d", seller.ID))
	respondWithJSON(w, http.StatusCreated, seller)
}

func (h *SellerHandler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.SellerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	seller, err := h.sellerService.UpdateSeller(r.Context(), sellerID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, seller)
}

func (h *SellerHandler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.sellerService.DeleteSeller(r.Context(), sellerID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
