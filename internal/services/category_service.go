package services

import (
	"context"
	"strings"

	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/rs/zerolog"
)

type CategoryService struct {
	categories repository.Store[models.Category]
	products   repository.Store[models.Product]
	logger     zerolog.Logger
}

func NewCategoryService(stores CatalogStores, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		categories: stores.Categories,
		products:   stores.Products,
		logger:     logger,
	}
}

func (s *CategoryService) ListCategories(ctx context.Context, limit, offset int) ([]models.CategoryView, error) {
	categories, err := s.categories.List(ctx, repository.OrderBy("id"), repository.Page(limit, offset))
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing categories")
		return nil, err
	}
	views := make([]models.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, models.CategoryView{ID: c.ID, Name: c.Name})
	}
	return views, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID int) (*models.CategoryView, error) {
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return &models.CategoryView{ID: category.ID, Name: category.Name}, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.CategoryView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Errorf(models.ErrValidation, "name is required")
	}

	category := &models.Category{Name: name}
	if err := s.categories.Add(ctx, category); err != nil {
		s.logger.Error().Err(err).Msg("Error creating category")
		return nil, err
	}

	s.logger.Info().Int("category_id", category.ID).Str("name", name).Msg("Category created")
	return &models.CategoryView{ID: category.ID, Name: category.Name}, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID int, req models.CategoryRequest) (*models.CategoryView, error) {
	if req.ID != 0 && req.ID != categoryID {
		return nil, models.Errorf(models.ErrValidation, "body id %d does not match path id %d", req.ID, categoryID)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Errorf(models.ErrValidation, "name is required")
	}

	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error updating category")
		return nil, err
	}
	return &models.CategoryView{ID: category.ID, Name: category.Name}, nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID int) error {
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return err
	}

	inUse, err := s.products.Count(ctx, repository.Eq("category_id", categoryID))
	if err != nil {
		return err
	}
	if inUse > 0 {
		return models.Errorf(models.ErrConflict, "category %d is used by %d product(s)", categoryID, inUse)
	}

	if err := s.categories.Delete(ctx, category); err != nil {
		s.logger.Error().Err(err).Int("category_id", categoryID).Msg("Error deleting category")
		return err
	}
	s.logger.Info().Int("category_id", categoryID).Msg("Category deleted")
	return nil
}
