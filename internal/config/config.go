package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Catalog sources.
const (
	SourceAPI      = "api"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` name the environment variable,
// `default:""` provides the value used when it is unset.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Catalog    CatalogConfig
	Postgres   PostgresConfig
	SQLite     SQLiteConfig
	Session    SessionConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// CatalogConfig describes where the startup fetch reads from.
type CatalogConfig struct {
	Source       string        `envconfig:"CATALOG_SOURCE" default:"api"` // api, postgres, sqlite
	APIURL       string        `envconfig:"API_URL" default:"http://localhost:5000"`
	ProductLimit int           `envconfig:"CATALOG_PRODUCT_LIMIT" default:"100"`
	FetchTimeout time.Duration `envconfig:"CATALOG_FETCH_TIMEOUT" default:"10s"`
}

// PostgresConfig holds PostgreSQL connection details. Only needed when
// CATALOG_SOURCE=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// SQLiteConfig points at the backend's sqlite file. Only needed when
// CATALOG_SOURCE=sqlite.
type SQLiteConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"products.db"`
}

// DSN opens the file read-only.
func (sc *SQLiteConfig) DSN() string {
	return "file:" + sc.Path + "?mode=ro"
}

// SessionConfig bounds the in-memory storefront sessions.
type SessionConfig struct {
	IdleTTL     time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	MaxSessions int           `envconfig:"SESSION_MAX" default:"1000"`
}

// CORSConfig lists the browser origins allowed to call the storefront.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// LoadDotEnv loads the given .env files (or ./.env) into the process
// environment. Without arguments a missing ./.env is not an error, the
// environment may be set some other way; a malformed one still is.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil || (len(files) == 0 && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("config: load env file: %w", err)
}

// Load initializes the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields whose requirements depend on other fields.
func (c *Config) Validate() error {
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	switch c.Catalog.Source {
	case SourceAPI:
		if strings.TrimSpace(c.Catalog.APIURL) == "" {
			return fmt.Errorf("%w: API_URL is empty", ErrInvalidConfig)
		}
	case SourcePostgres:
		var missing []string
		for name, v := range map[string]string{
			"POSTGRES_HOST":   c.Postgres.Host,
			"POSTGRES_USER":   c.Postgres.User,
			"POSTGRES_DBNAME": c.Postgres.DBName,
		} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("%w: CATALOG_SOURCE=postgres requires %s", ErrInvalidConfig, strings.Join(missing, ", "))
		}
	case SourceSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("%w: SQLITE_PATH is empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown CATALOG_SOURCE %q", ErrInvalidConfig, c.Catalog.Source)
	}
	if c.Catalog.ProductLimit < 0 {
		return fmt.Errorf("%w: CATALOG_PRODUCT_LIMIT must not be negative", ErrInvalidConfig)
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("%w: CATALOG_FETCH_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("%w: SESSION_MAX must be positive", ErrInvalidConfig)
	}
	return nil
}
