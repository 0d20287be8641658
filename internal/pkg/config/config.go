package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port          string   `env:"PORT,            default=5001"`
	Env           string   `env:"ENV,             default=development"`
	LogLevel      string   `env:"LOG_LEVEL,       default=info"`
	StoreBackend  string   `env:"STORE_BACKEND,   default=mongo"`
	SeedDemoUsers bool     `env:"SEED_DEMO_USERS, default=false"`
	CORSOrigins   []string `env:"CORS_ORIGINS,    default=*"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Catalog CatalogConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	JWTTTL     time.Duration `env:"JWT_TTL,     default=24h"`
	JWTIssuer  string        `env:"JWT_ISSUER,  default=catalog-auth"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog_auth"`
}

// RedisConfig is optional; an empty Addr disables the category cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,           default=0"`
	CacheTTL time.Duration `env:"CATEGORY_CACHE_TTL, default=1h"`
}

type CatalogConfig struct {
	BaseURL string        `env:"CATALOG_API_URL, default=http://localhost:8000"`
	Timeout time.Duration `env:"CATALOG_TIMEOUT, default=10s"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads a .env file when present, then the environment, and validates
// the result. Variables already set in the environment win over .env.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	switch c.StoreBackend {
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("MONGO_URI and MONGO_DB are required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreBackend)
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("CATALOG_API_URL is required")
	}
	return nil
}
