package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-review/internal/config"
	"product-review/internal/db"
	"product-review/internal/logger"
	"product-review/internal/metrics"
	"product-review/internal/router"
	"product-review/internal/services"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("port", cfg.Port).Str("db_driver", cfg.DBDriver).Msg("Application starting")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Application stopped with error")
	}
	log.Info().Msg("Server stopped")
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.InitDB(cfg.DBDriver, cfg.DBUrl, log)
	if err != nil {
		return err
	}
	defer db.Close(database)

	if err := db.RunMigrations(database, log); err != nil {
		return err
	}

	m := metrics.New("product_review")
	users, stores := router.NewStores(database)
	svc, err := router.NewServices(users, stores, services.TokenSettings{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}, m, log)
	if err != nil {
		return err
	}

	if cfg.AdminUsername != "" {
		if err := svc.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.SetupRouter(svc, router.Options{
			CORSOrigins:          cfg.CORSOrigins,
			RateLimit:            cfg.RateLimit,
			RateBurst:            cfg.RateBurst,
			SlowRequestThreshold: cfg.SlowRequestThreshold,
			HealthCheck:          pinger(database),
		}, m, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
			return err
		}
		return nil
	})
	return g.Wait()
}

func pinger(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
