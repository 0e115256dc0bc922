package db

import (
	"database/sql"
	"fmt"
	"time"

	"product-review/internal/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the relational store named by driver ("mysql" or
// "postgres") and verifies it answers.
func InitDB(driver, dbURL string, logger zerolog.Logger) (*gorm.DB, error) {
	sqlDB, dialector, err := open(driver, dbURL)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", driver, err)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 NewGormLogger(logger, 200*time.Millisecond),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db: open gorm: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("Connected to database")
	return gdb, nil
}

func open(driver, dbURL string) (*sql.DB, gorm.Dialector, error) {
	switch driver {
	case "mysql":
		cfg, err := mysqldriver.ParseDSN(dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC

		connector, err := mysqldriver.NewConnector(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("db: mysql connector: %w", err)
		}
		sqlDB := sql.OpenDB(connector)
		return sqlDB, mysql.New(mysql.Config{Conn: sqlDB}), nil

	case "postgres":
		cfg, err := pgx.ParseConfig(dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: parse postgres url: %w", err)
		}
		sqlDB := stdlib.OpenDB(*cfg)
		return sqlDB, postgres.New(postgres.Config{Conn: sqlDB}), nil

	default:
		return nil, nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunMigrations creates or alters every table the API uses.
func RunMigrations(gdb *gorm.DB, logger zerolog.Logger) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Seller{},
		&models.Product{},
		&models.ProductImage{},
		&models.SellerProduct{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	logger.Info().Msg("Migrations completed")
	return nil
}
