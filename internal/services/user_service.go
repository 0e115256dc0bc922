package services

import (
	"context"

	"product-review/internal/models"
	"product-review/internal/repository"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  repository.Store[models.User]
	logger zerolog.Logger
}

func NewUserService(users repository.Store[models.User], logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.users.List(ctx, repository.OrderBy("id"), repository.Page(limit, offset))
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}
	return users, nil
}

// GetUser returns the account with the given id. Users may only read
// their own account; admins may read any.
func (s *UserService) GetUser(ctx context.Context, caller models.Identity, userID int) (*models.User, error) {
	if !caller.IsAdmin() && caller.UserID != userID {
		return nil, models.Errorf(models.ErrForbidden, "you can only view your own profile")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}
