package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBURL       string `env:"DB_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"kashpages.db"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB" envDefault:"kashpages"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"72h"`

	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`

	GoogleClientID         string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL      string `env:"GOOGLE_REDIRECT_URL"`
	GoogleFrontendRedirect string `env:"GOOGLE_FRONTEND_REDIRECT"`

	PublicBaseURL     string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	RequireModeration bool   `env:"REQUIRE_MODERATION" envDefault:"true"`

	// AutosaveSpec is a cron spec; "off" disables autosave.
	AutosaveSpec   string        `env:"AUTOSAVE_SPEC" envDefault:"@every 30s"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	WorkerCount    int           `env:"WORKER_COUNT" envDefault:"4"`

	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogMode string `env:"LOG_MODE" envDefault:"development"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return Parse(env.Options{})
}

// Parse builds a Config from the environment using opts; tests pass Environment directly.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if strings.EqualFold(cfg.AutosaveSpec, "off") {
		cfg.AutosaveSpec = ""
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing required environment variable: JWT_SECRET"))
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBURL == "" {
			errs = append(errs, errors.New("missing required environment variable: DB_URL"))
		}
	case DriverSQLite, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, errors.New("WORKER_COUNT must be at least 1"))
	}
	return errors.Join(errs...)
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}
