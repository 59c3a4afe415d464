package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration parameters for the service.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL wins over the discrete DB_* settings.
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DBHost       string `envconfig:"DB_HOST"`
	DBPort       int    `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER" default:"postgres"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	DBName       string `envconfig:"DB_NAME" default:"programs"`
	DBSSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxRetries int    `envconfig:"DB_MAX_RETRIES" default:"5"`

	JWTSecret   string `envconfig:"JWT_SECRET"`
	JWTIssuer   string `envconfig:"JWT_ISSUER"`
	JWTAudience string `envconfig:"JWT_AUDIENCE"`

	S3Bucket      string `envconfig:"PROGRAMS_S3_BUCKET"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"eu-central-1"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Banner cleanup job.
	SecretsARN         string        `envconfig:"SECRETS_ARN"`
	BannerCleanupGrace time.Duration `envconfig:"BANNER_CLEANUP_GRACE" default:"1h"`
	MetricNamespace    string        `envconfig:"METRIC_NAMESPACE" default:"Programs/BannerCleanup"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
}

// Database returns the store connection settings.
func (c *Config) Database() db.Config {
	return db.Config{
		URL:        c.DatabaseURL,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		MaxRetries: c.DBMaxRetries,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
