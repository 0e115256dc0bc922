package router

import (
	"context"
	"net/http"
	"time"

	"product-review/internal/handlers"
	"product-review/internal/metrics"
	"product-review/internal/middleware"
	"product-review/internal/models"
	"product-review/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Services are the application services the routes dispatch to.
type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Products   *services.ProductService
	Categories *services.CategoryService
	Sellers    *services.SellerService
	Reviews    *services.ReviewService
}

type Options struct {
	CORSOrigins          []string
	RateLimit            float64
	RateBurst            int
	SlowRequestThreshold time.Duration
	// HealthCheck, when set, is run by /health.
	HealthCheck func(ctx context.Context) error
}

func SetupRouter(svc *Services, opts Options, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Auth, m, logger)
	userHandler := handlers.NewUserHandler(svc.Users, logger)
	productHandler := handlers.NewProductHandler(svc.Products, logger)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, logger)
	sellerHandler := handlers.NewSellerHandler(svc.Sellers, logger)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews, logger)

	r := mux.NewRouter()
	r.Use(middleware.Metrics(m))
	r.Use(middleware.PerformanceMonitoring(opts.SlowRequestThreshold, logger))

	r.HandleFunc("/health", healthHandler(opts.HealthCheck, logger)).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestValidation())

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/signup", authHandler.SignUp).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Authentication(svc.Auth, logger))
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(models.RoleAdmin)(h)
	}

	protected.HandleFunc("/auth/roles", authHandler.Roles).Methods("GET")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	protected.Handle("/users", admin(userHandler.GetUsers)).Methods("GET")
	protected.HandleFunc("/users/{id:[0-9]+}", userHandler.GetUser).Methods("GET")

	protected.HandleFunc("/products", productHandler.GetProducts).Methods("GET")
	protected.Handle("/products", admin(productHandler.CreateProduct)).Methods("POST")
	protected.HandleFunc("/products/compare", productHandler.CompareProducts).Methods("POST")
	protected.HandleFunc("/products/category/{categoryId:[0-9]+}", productHandler.GetProductsByCategory).Methods("GET")
	protected.HandleFunc("/products/{id:[0-9]+}", productHandler.GetProduct).Methods("GET")
	protected.Handle("/products/{id:[0-9]+}", admin(productHandler.UpdateProduct)).Methods("PUT")
	protected.Handle("/products/{id:[0-9]+}", admin(productHandler.DeleteProduct)).Methods("DELETE")
	protected.Handle("/products/{id:[0-9]+}/images", admin(productHandler.UpdateProductImages)).Methods("PUT")
	protected.Handle("/products/{id:[0-9]+}/sellers", admin(productHandler.AssignSeller)).Methods("PUT")
	protected.HandleFunc("/products/{id:[0-9]+}/reviews", productHandler.GetProductReviews).Methods("GET")
	protected.HandleFunc("/products/{id:[0-9]+}/reviews", productHandler.AddReview).Methods("POST")
	protected.HandleFunc("/products/{id:[0-9]+}/rating", productHandler.GetProductRating).Methods("GET")

	protected.HandleFunc("/categories", categoryHandler.GetCategories).Methods("GET")
	protected.Handle("/categories", admin(categoryHandler.CreateCategory)).Methods("POST")
	protected.HandleFunc("/categories/{id:[0-9]+}", categoryHandler.GetCategory).Methods("GET")
	protected.Handle("/categories/{id:[0-9]+}", admin(categoryHandler.UpdateCategory)).Methods("PUT")
	protected.Handle("/categories/{id:[0-9]+}", admin(categoryHandler.DeleteCategory)).Methods("DELETE")

	protected.HandleFunc("/sellers", sellerHandler.GetSellers).Methods("GET")
	protected.Handle("/sellers", admin(sellerHandler.CreateSeller)).Methods("POST")
	protected.HandleFunc("/sellers/{id:[0-9]+}", sellerHandler.GetSeller).Methods("GET")
	protected.Handle("/sellers/{id:[0-9]+}", admin(sellerHandler.UpdateSeller)).Methods("PUT")
	protected.Handle("/sellers/{id:[0-9]+}", admin(sellerHandler.DeleteSeller)).Methods("DELETE")

	protected.HandleFunc("/reviews", reviewHandler.GetReviews).Methods("GET")
	protected.HandleFunc("/reviews/{id:[0-9]+}", reviewHandler.GetReview).Methods("GET")
	protected.Handle("/reviews/{id:[0-9]+}", admin(reviewHandler.UpdateReview)).Methods("PUT")
	protected.Handle("/reviews/{id:[0-9]+}", admin(reviewHandler.DeleteReview)).Methods("DELETE")

	rateLimit := rate.Inf
	if opts.RateLimit > 0 {
		rateLimit = rate.Limit(opts.RateLimit)
	}
	rateLimiter := middleware.NewRateLimiter(rateLimit, max(opts.RateBurst, 1))

	// Outer middleware also covers unmatched routes and CORS preflight.
	var h http.Handler = r
	h = rateLimiter.Middleware()(h)
	h = middleware.CORS(opts.CORSOrigins)(h)
	h = middleware.SecurityHeaders()(h)
	h = middleware.RequestLogging(logger)(h)
	h = middleware.ErrorHandling(logger)(h)
	return h
}

func healthHandler(check func(ctx context.Context) error, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Error().Err(err).Msg("Health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
