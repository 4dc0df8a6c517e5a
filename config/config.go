package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORE_DRIVER.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Environment    string
	Port           string
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	DBUrl          string
	RequestTimeout time.Duration
	CORSOrigins    []string
	Email          EmailConfig
}

// EmailConfig selects and configures the outgoing mailer.
type EmailConfig struct {
	Provider        string
	FromAddress     string
	FromName        string
	AWSRegion       string
	AWSAccessKeyID  string
	AWSSecretKey    string
	InsecureSkipTLS bool
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production the environment is the only source.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:    env,
		Port:           getenv("PORT", "8080"),
		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  getenv("MONGODB_DATABASE", "eventhub"),
		DBUrl:          os.Getenv("DATABASE_URL"),
		RequestTimeout: 10 * time.Second,
		CORSOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Email: EmailConfig{
			Provider:        getenv("EMAIL_PROVIDER", "noop"),
			FromAddress:     os.Getenv("EMAIL_FROM_ADDRESS"),
			FromName:        os.Getenv("EMAIL_FROM_NAME"),
			AWSRegion:       getenv("AWS_REGION", "us-east-1"),
			AWSAccessKeyID:  os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			InsecureSkipTLS: os.Getenv("SES_INSECURE_SKIP_VERIFY") == "true",
		},
	}

	switch cfg.StoreDriver {
	case StoreMongo, StorePostgres:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StorePostgres, cfg.StoreDriver)
	}

	if s := os.Getenv("REQUEST_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration, got %q", s)
		}
		cfg.RequestTimeout = d
	}

	// Connection strings are deliberately left unchecked here: an empty one
	// is reported by the connection cache the first time it is needed.
	return cfg, nil
}

// ConnectionString returns the connection string for the selected store.
func (c *Config) ConnectionString() string {
	if c.StoreDriver == StorePostgres {
		return c.DBUrl
	}
	return c.MongoURI
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
