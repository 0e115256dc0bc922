package services

import (
	"context"

	"product-review/internal/metrics"
	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	reviews repository.Store[models.Review]
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewReviewService(reviews repository.Store[models.Review], m *metrics.Metrics, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		metrics: m,
		logger:  logger,
	}
}

// ListReviews returns reviews, optionally narrowed to one product when
// productID is positive.
func (s *ReviewService) ListReviews(ctx context.Context, productID, limit, offset int) ([]models.ReviewView, error) {
	opts := []repository.Option{repository.OrderBy("id"), repository.Page(limit, offset)}
	if productID > 0 {
		opts = append(opts, repository.Eq("product_id", productID))
	}

	reviews, err := s.reviews.List(ctx, opts...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing reviews")
		return nil, err
	}
	return newReviewViews(reviews), nil
}

func (s *ReviewService) GetReview(ctx context.Context, reviewID int) (*models.ReviewView, error) {
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	view := newReviewView(*review)
	return &view, nil
}

// UpdateReview rewrites a review's rating and comment. Authorship and
// product are never changed.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID int, req models.ReviewRequest) (*models.ReviewView, error) {
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := s.reviews.Update(ctx, review); err != nil {
		s.logger.Error().Err(err).Int("review_id", reviewID).Msg("Error updating review")
		return nil, err
	}

	view := newReviewView(*review)
	return &view, nil
}

// DeleteReview flags the review as deleted; it disappears from every
// listing and from product averages.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID int) error {
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review); err != nil {
		s.logger.Error().Err(err).Int("review_id", reviewID).Msg("Error deleting review")
		return err
	}

	s.metrics.ReviewDeleted()
	s.logger.Info().Int("review_id", reviewID).Msg("Review deleted")
	return nil
}
