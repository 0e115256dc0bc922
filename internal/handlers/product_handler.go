package handlers

import (
	"fmt"
	"net/http"

	"product-review/internal/models"
	"product-review/internal/services"

	"github.com/rs/zerolog"
)

type ProductHandler struct {
	productService *services.ProductService
	logger         zerolog.Logger
}

func NewProductHandler(productService *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	products, err := h.productService.ListProducts(r.Context(), limit, offset)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	limit, offset := pagination(r)
	products, err := h.productService.ListByCategory(r.Context(), categoryID, limit, offset)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CompareProducts(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	products, err := h.productService.Compare(r.Context(), req.ProductIDs)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/products/%d", product.ID))
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), productID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) UpdateProductImages(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var images []models.ImageRequest
	if !decodeJSON(w, r, &images) {
		return
	}

	product, err := h.productService.ReplaceImages(r.Context(), productID, images)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) AssignSeller(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.AssignSellerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	listing, err := h.productService.AssignSeller(r.Context(), productID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, listing)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	var req models.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.productService.AddReview(r.Context(), caller, productID, req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/reviews/%d", review.ID))
	respondWithJSON(w, http.StatusCreated, review)
}

func (h *ProductHandler) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.productService.ProductReviews(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ProductHandler) GetProductRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rating, err := h.productService.ProductRating(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rating)
}
