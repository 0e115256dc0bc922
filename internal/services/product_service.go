package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"product-review/internal/metrics"
	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/rs/zerolog"
)

// CatalogStores groups the repositories the catalog services read and
// write.
type CatalogStores struct {
	Products   repository.Store[models.Product]
	Categories repository.Store[models.Category]
	Sellers    repository.Store[models.Seller]
	Images     repository.Store[models.ProductImage]
	Listings   repository.Store[models.SellerProduct]
	Reviews    repository.Store[models.Review]
}

type ProductService struct {
	stores  CatalogStores
	metrics *metrics.Metrics
	logger  zerolog.Logger

	// locks serialises check-then-write sequences within this process.
	// Keys hash onto a fixed set of stripes. Separate processes still race.
	locks [lockStripes]sync.Mutex
}

const lockStripes = 64

func NewProductService(stores CatalogStores, m *metrics.Metrics, logger zerolog.Logger) *ProductService {
	return &ProductService{
		stores:  stores,
		metrics: m,
		logger:  logger,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]models.ProductView, error) {
	products, err := s.stores.Products.List(ctx,
		repository.Include(models.ProductGraph...),
		repository.OrderBy("id"),
		repository.Page(limit, offset),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}
	return newProductViews(products), nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID int) (*models.ProductView, error) {
	product, err := s.stores.Products.Get(ctx, productID, repository.Include(models.ProductGraph...))
	if err != nil {
		return nil, err
	}
	view := newProductView(*product)
	return &view, nil
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID, limit, offset int) ([]models.ProductView, error) {
	products, err := s.stores.Products.List(ctx,
		repository.Eq("category_id", categoryID),
		repository.Include(models.ProductGraph...),
		repository.OrderBy("id"),
		repository.Page(limit, offset),
	)
	if err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error listing products by category")
		return nil, err
	}
	return newProductViews(products), nil
}

// Compare returns the views of at least two distinct products that share
// a category, in the order requested.
func (s *ProductService) Compare(ctx context.Context, productIDs []int) ([]models.ProductView, error) {
	ids := make([]int, 0, len(productIDs))
	seen := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return nil, models.Errorf(models.ErrValidation, "at least two distinct product ids are required")
	}

	products, err := s.stores.Products.List(ctx,
		repository.In("id", ids),
		repository.Include(models.ProductGraph...),
	)
	if err != nil {
		s.logger.Error().Err(err).Ints("product_ids", ids).Msg("Error loading products to compare")
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, models.Errorf(models.ErrValidation, "one or more products were not found")
	}

	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		if p.CategoryID != products[0].CategoryID {
			return nil, models.Errorf(models.ErrValidation, "all products must belong to the same category")
		}
		byID[p.ID] = p
	}

	views := make([]models.ProductView, 0, len(ids))
	for _, id := range ids {
		views = append(views, newProductView(byID[id]))
	}
	return views, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if err := s.stores.Products.Add(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	s.logger.Info().Int("product_id", product.ID).Int("category_id", product.CategoryID).Msg("Product created")
	return product, nil
}

// UpdateProduct replaces the scalar fields of a product. A body id, when
// given, must match the path id.
func (s *ProductService) UpdateProduct(ctx context.Context, productID int, req models.ProductRequest) (*models.Product, error) {
	if req.ID != 0 && req.ID != productID {
		return nil, models.Errorf(models.ErrValidation, "body id %d does not match path id %d", req.ID, productID)
	}
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != req.CategoryID {
		if err := s.requireCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.CategoryID = req.CategoryID
	if err := s.stores.Products.Update(ctx, product); err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error updating product")
		return nil, err
	}
	return product, nil
}

// ReplaceImages swaps the product's image set for the given URLs.
func (s *ProductService) ReplaceImages(ctx context.Context, productID int, images []models.ImageRequest) (*models.ProductView, error) {
	for i, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, models.Errorf(models.ErrValidation, "image %d has no url", i)
		}
	}
	if _, err := s.stores.Products.Get(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.stores.Images.List(ctx, repository.Eq("product_id", productID))
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if err := s.stores.Images.Delete(ctx, &existing[i]); err != nil {
			s.logger.Error().Err(err).Int("image_id", existing[i].ID).Msg("Error removing product image")
			return nil, err
		}
	}
	for _, img := range images {
		image := &models.ProductImage{URL: strings.TrimSpace(img.URL), ProductID: productID}
		if err := s.stores.Images.Add(ctx, image); err != nil {
			s.logger.Error().Err(err).Int("product_id", productID).Msg("Error adding product image")
			return nil, err
		}
	}

	s.logger.Info().Int("product_id", productID).Int("images", len(images)).Msg("Product images replaced")
	return s.GetProduct(ctx, productID)
}

// AssignSeller records the seller's price for the product. A second
// assignment by the same seller updates the price.
func (s *ProductService) AssignSeller(ctx context.Context, productID int, req models.AssignSellerRequest) (*models.SellerProduct, error) {
	if req.SellerID <= 0 {
		return nil, models.Errorf(models.ErrValidation, "seller_id is required")
	}
	if req.Price < 0 {
		return nil, models.Errorf(models.ErrValidation, "price must not be negative")
	}

	if _, err := s.stores.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.stores.Sellers.Get(ctx, req.SellerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Errorf(models.ErrValidation, "seller %d does not exist", req.SellerID)
		}
		return nil, err
	}

	mu := s.getMutex(fmt.Sprintf("listing:%d:%d", productID, req.SellerID))
	mu.Lock()
	defer mu.Unlock()

	current, err := s.stores.Listings.List(ctx,
		repository.Eq("product_id", productID),
		repository.Eq("seller_id", req.SellerID),
	)
	if err != nil {
		return nil, err
	}

	if len(current) > 0 {
		listing := &current[0]
		listing.Price = req.Price
		if err := s.stores.Listings.Update(ctx, listing); err != nil {
			return nil, err
		}
		return listing, nil
	}

	listing := &models.SellerProduct{SellerID: req.SellerID, ProductID: productID, Price: req.Price}
	if err := s.stores.Listings.Add(ctx, listing); err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Int("seller_id", req.SellerID).Msg("Error assigning seller")
		return nil, err
	}
	return listing, nil
}

// AddReview stores the caller's review of a product. Each user may review
// a product once; the check and the insert are separate statements, held
// under a per product and user lock.
func (s *ProductService) AddReview(ctx context.Context, caller models.Identity, productID int, req models.ReviewRequest) (*models.ReviewView, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	if _, err := s.stores.Products.Get(ctx, productID); err != nil {
		return nil, err
	}

	mu := s.getMutex(fmt.Sprintf("review:%d:%d", productID, caller.UserID))
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.stores.Reviews.Count(ctx,
		repository.Eq("product_id", productID),
		repository.Eq("user_id", caller.UserID),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error checking existing review")
		return nil, err
	}
	if existing > 0 {
		return nil, models.Errorf(models.ErrConflict, "you have already reviewed this product")
	}

	review := &models.Review{
		Rating:    req.Rating,
		Comment:   req.Comment,
		UserID:    caller.UserID,
		ProductID: productID,
	}
	if err := s.stores.Reviews.Add(ctx, review); err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error adding review")
		return nil, err
	}

	s.metrics.ReviewCreated()
	s.logger.Info().Int("review_id", review.ID).Int("product_id", productID).Int("user_id", caller.UserID).Msg("Review added")
	view := newReviewView(*review)
	return &view, nil
}

func (s *ProductService) ProductReviews(ctx context.Context, productID int) ([]models.ReviewView, error) {
	reviews, err := s.productReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	return newReviewViews(reviews), nil
}

func (s *ProductService) ProductRating(ctx context.Context, productID int) (*models.ProductRating, error) {
	reviews, err := s.productReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &models.ProductRating{
		ProductID:     productID,
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
	}, nil
}

// DeleteProduct removes the product; its images, listings and reviews go
// with it through the foreign keys.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int) error {
	product, err := s.stores.Products.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.stores.Products.Delete(ctx, product); err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error deleting product")
		return err
	}
	s.logger.Info().Int("product_id", productID).Msg("Product deleted")
	return nil
}

func (s *ProductService) getMutex(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *ProductService) productReviews(ctx context.Context, productID int) ([]models.Review, error) {
	if _, err := s.stores.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.stores.Reviews.List(ctx, repository.Eq("product_id", productID), repository.OrderBy("id"))
}

func (s *ProductService) requireCategory(ctx context.Context, categoryID int) error {
	if _, err := s.stores.Categories.Get(ctx, categoryID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Errorf(models.ErrValidation, "category %d does not exist", categoryID)
		}
		return err
	}
	return nil
}

func validateProduct(req models.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return models.Errorf(models.ErrValidation, "name is required")
	}
	if req.CategoryID <= 0 {
		return models.Errorf(models.ErrValidation, "category_id is required")
	}
	return nil
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.Errorf(models.ErrValidation, "rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
}
