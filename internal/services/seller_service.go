package services

import (
	"context"
	"strings"

	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/rs/zerolog"
)

type SellerService struct {
	sellers repository.Store[models.Seller]
	logger  zerolog.Logger
}

func NewSellerService(sellers repository.Store[models.Seller], logger zerolog.Logger) *SellerService {
	return &SellerService{
		sellers: sellers,
		logger:  logger,
	}
}

func (s *SellerService) ListSellers(ctx context.Context, limit, offset int) ([]models.SellerView, error) {
	sellers, err := s.sellers.List(ctx,
		repository.Include(models.SellerListings),
		repository.OrderBy("id"),
		repository.Page(limit, offset),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing sellers")
		return nil, err
	}
	views := make([]models.SellerView, 0, len(sellers))
	for _, seller := range sellers {
		views = append(views, newSellerView(seller))
	}
	return views, nil
}

func (s *SellerService) GetSeller(ctx context.Context, sellerID int) (*models.SellerView, error) {
	seller, err := s.sellers.Get(ctx, sellerID, repository.Include(models.SellerListings))
	if err != nil {
		return nil, err
	}
	view := newSellerView(*seller)
	return &view, nil
}

func (s *SellerService) CreateSeller(ctx context.Context, req models.SellerRequest) (*models.SellerView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Errorf(models.ErrValidation, "seller name is required")
	}

	seller := &models.Seller{Name: name}
	if err := s.sellers.Add(ctx, seller); err != nil {
		s.logger.Error().Err(err).Msg("Error creating seller")
		return nil, err
	}

	s.logger.Info().Int("seller_id", seller.ID).Str("name", name).Msg("Seller created")
	view := newSellerView(*seller)
	return &view, nil
}

func (s *SellerService) UpdateSeller(ctx context.Context, sellerID int, req models.SellerRequest) (*models.SellerView, error) {
	if req.ID != 0 && req.ID != sellerID {
		return nil, models.Errorf(models.ErrValidation, "body id %d does not match path id %d", req.ID, sellerID)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Errorf(models.ErrValidation, "seller name is required")
	}

	seller, err := s.sellers.Get(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	seller.Name = name
	if err := s.sellers.Update(ctx, seller); err != nil {
		s.logger.Error().Err(err).Int("seller_id", sellerID).Msg("Error updating seller")
		return nil, err
	}
	view := newSellerView(*seller)
	return &view, nil
}

// DeleteSeller removes the seller together with its price listings.
func (s *SellerService) DeleteSeller(ctx context.Context, sellerID int) error {
	seller, err := s.sellers.Get(ctx, sellerID)
	if err != nil {
		return err
	}
	if err := s.sellers.Delete(ctx, seller); err != nil {
		s.logger.Error().Err(err).Int("seller_id", sellerID).Msg("Error deleting seller")
		return err
	}
	s.logger.Info().Int("seller_id", sellerID).Msg("Seller deleted")
	return nil
}
