package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	DBDriver string `mapstructure:"DB_DRIVER"`
	DBUrl    string `mapstructure:"DB_URL"`

	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTIssuer   string        `mapstructure:"JWT_ISSUER"`
	JWTAudience string        `mapstructure:"JWT_AUDIENCE"`
	TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	RateLimit            float64       `mapstructure:"RATE_LIMIT"`
	RateBurst            int           `mapstructure:"RATE_BURST"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	ShutdownTimeout      time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	SlowRequestThreshold time.Duration `mapstructure:"SLOW_REQUEST_THRESHOLD"`
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"DB_DRIVER":              "mysql",
	"DB_URL":                 "",
	"JWT_SECRET":             "",
	"JWT_ISSUER":             "product-review",
	"JWT_AUDIENCE":           "product-review",
	"TOKEN_TTL":              "24h",
	"ADMIN_USERNAME":         "",
	"ADMIN_PASSWORD":         "",
	"LOG_LEVEL":              "info",
	"LOG_PRETTY":             true,
	"RATE_LIMIT":             10.0,
	"RATE_BURST":             20,
	"CORS_ORIGINS":           "*",
	"SHUTDOWN_TIMEOUT":       "5s",
	"SLOW_REQUEST_THRESHOLD": "1s",
}

// LoadConfig reads .env (if present) and the process environment. The
// result is treated as immutable for the life of the process.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment and defaults")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DB_URL is required"))
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
