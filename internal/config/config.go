package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSecret = "dev-secret-change-in-production"

var (
	ErrMissingSecret    = errors.New("JWT_SECRET must not be empty")
	ErrInsecureSecret   = errors.New("JWT_SECRET must be set in production environment")
	ErrUnknownStore     = errors.New("STORE_DRIVER must be one of: mongo, mysql")
	ErrInvalidExpiry    = errors.New("JWT_EXPIRY must be positive")
	ErrInvalidRateLimit = errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
)

// Store drivers.
const (
	StoreMongo = "mongo"
	StoreMySQL = "mysql"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"devconnector"`
	MySQLDSN      string `env:"MYSQL_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/devconnector?parseTime=true"`

	// JWT_EXPIRY defaults to 360000s, the lifetime tokens have always had.
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"100h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"devconnector"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load parses the process environment into a Config and validates it.
// A .env file, if any, must already have been loaded by the caller.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first setting that would leave the server unable to
// issue tokens or reach its store.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.IsProduction() && c.JWTSecret == devSecret {
		return ErrInsecureSecret
	}
	if c.JWTExpiry <= 0 {
		return ErrInvalidExpiry
	}
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMySQL {
		return ErrUnknownStore
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
