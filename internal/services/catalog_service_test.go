package services

import (
	"context"
	"testing"

	"product-review/internal/models"
	"product-review/internal/repository/repotest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService(t *testing.T) {
	f := newCatalogFixture()
	f.reviews = repotest.NewMemory(
		models.Review{ID: 1, Rating: 4, UserID: 10, ProductID: 1},
		models.Review{ID: 2, Rating: 2, UserID: 10, ProductID: 2},
	)
	svc := NewReviewService(f.reviews, f.metrics, zerolog.Nop())
	ctx := context.Background()

	all, err := svc.ListReviews(ctx, 0, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	forProduct, err := svc.ListReviews(ctx, 2, 0, 0)
	require.NoError(t, err)
	require.Len(t, forProduct, 1)
	assert.Equal(t, 2, forProduct[0].ID)

	updated, err := svc.UpdateReview(ctx, 1, models.ReviewRequest{Rating: 5, Comment: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, 10, updated.UserID)

	_, err = svc.UpdateReview(ctx, 1, models.ReviewRequest{Rating: 9})
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, svc.DeleteReview(ctx, 1))
	_, err = svc.GetReview(ctx, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteReview(ctx, 1), models.ErrNotFound)
}

func TestCategoryService(t *testing.T) {
	f := newCatalogFixture()
	svc := NewCategoryService(f.stores(), zerolog.Nop())
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, models.CategoryRequest{Name: "Garden"})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)

	_, err = svc.CreateCategory(ctx, models.CategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateCategory(ctx, 3, models.CategoryRequest{ID: 1, Name: "Garden"})
	assert.ErrorIs(t, err, models.ErrValidation)

	renamed, err := svc.UpdateCategory(ctx, 3, models.CategoryRequest{ID: 3, Name: "Outdoor"})
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", renamed.Name)

	t.Run("referenced category cannot be deleted", func(t *testing.T) {
		err := svc.DeleteCategory(ctx, 1)
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.Zero(t, f.categories.Deletes)
	})

	require.NoError(t, svc.DeleteCategory(ctx, 3))
	_, err = svc.GetCategory(ctx, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSellerService(t *testing.T) {
	f := newCatalogFixture()
	f.sellers = repotest.NewMemory(models.Seller{
		ID:   1,
		Name: "Acme",
		SellerProducts: []models.SellerProduct{
			{ID: 1, SellerID: 1, ProductID: 1, Price: 30},
			{ID: 2, SellerID: 1, ProductID: 2, Price: 10},
		},
	})
	svc := NewSellerService(f.sellers, zerolog.Nop())
	ctx := context.Background()

	seller, err := svc.GetSeller(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seller.SellerProducts, 2)
	assert.Equal(t, 10.0, seller.SellerProducts[0].Price)

	created, err := svc.CreateSeller(ctx, models.SellerRequest{Name: "Initech"})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)
	assert.NotNil(t, created.SellerProducts)

	_, err = svc.UpdateSeller(ctx, 2, models.SellerRequest{ID: 5, Name: "Initech"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateSeller(ctx, 9, models.SellerRequest{Name: "Nobody"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.DeleteSeller(ctx, 2))
	sellers, err := svc.ListSellers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, sellers, 1)
}

func TestUserService_GetUser(t *testing.T) {
	users := repotest.NewMemory(
		models.User{ID: 1, Username: "root", Role: models.RoleAdmin},
		models.User{ID: 2, Username: "bob", Role: models.RoleUser},
	)
	svc := NewUserService(users, zerolog.Nop())
	ctx := context.Background()

	self, err := svc.GetUser(ctx, models.Identity{UserID: 2, Role: models.RoleUser}, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", self.Username)

	_, err = svc.GetUser(ctx, models.Identity{UserID: 2, Role: models.RoleUser}, 1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	other, err := svc.GetUser(ctx, models.Identity{UserID: 1, Role: models.RoleAdmin}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, other.ID)

	list, err := svc.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Username)
}
