package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/beanhouse/cafe-backend/pkg/config"
)

// Config holds all configuration for the cafe backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"cafe"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"cafe_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"cafe_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"10"`
	SlowQueryThresholdMs  int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis (checkout idempotency store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// Payment simulation
	PaymentDelayMs     int           `env:"PAYMENT_DELAY_MS" envDefault:"150"`
	PaymentSuccessRate float64       `env:"PAYMENT_SUCCESS_RATE" envDefault:"0.9"`
	PaymentTimeout     time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"10s"`

	// Checkout
	CheckoutDedupWindow  time.Duration `env:"CHECKOUT_DEDUP_WINDOW" envDefault:"30s"`
	PriceToleranceMinor  int64         `env:"PRICE_TOLERANCE_MINOR" envDefault:"0"`
	CheckoutRateLimitRPS int           `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"5"`
	CheckoutRateBurst    int           `env:"CHECKOUT_RATE_BURST" envDefault:"10"`

	// CORS (browser clients)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Notifications
	NotifierWebhookURL string `env:"NOTIFIER_WEBHOOK_URL" envDefault:""`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return fmt.Errorf("payment success rate must be in [0, 1], got %f", c.PaymentSuccessRate)
	}
	if c.CheckoutDedupWindow <= 0 {
		return fmt.Errorf("checkout dedup window must be positive, got %s", c.CheckoutDedupWindow)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
