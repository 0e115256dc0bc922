package router

import (
	"product-review/internal/metrics"
	"product-review/internal/models"
	"product-review/internal/repository"
	"product-review/internal/services"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// NewStores instantiates one repository per entity kind on the database.
func NewStores(gdb *gorm.DB) (repository.Store[models.User], services.CatalogStores) {
	return repository.New[models.User](gdb), services.CatalogStores{
		Products:   repository.New[models.Product](gdb),
		Categories: repository.New[models.Category](gdb),
		Sellers:    repository.New[models.Seller](gdb),
		Images:     repository.New[models.ProductImage](gdb),
		Listings:   repository.New[models.SellerProduct](gdb),
		Reviews:    repository.New[models.Review](gdb),
	}
}

func NewServices(users repository.Store[models.User], stores services.CatalogStores, tokens services.TokenSettings, m *metrics.Metrics, logger zerolog.Logger) (*Services, error) {
	auth, err := services.NewAuthService(users, tokens, logger)
	if err != nil {
		return nil, err
	}
	return &Services{
		Auth:       auth,
		Users:      services.NewUserService(users, logger),
		Products:   services.NewProductService(stores, m, logger),
		Categories: services.NewCategoryService(stores, logger),
		Sellers:    services.NewSellerService(stores.Sellers, logger),
		Reviews:    services.NewReviewService(stores.Reviews, m, logger),
	}, nil
}
