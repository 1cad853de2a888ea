// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/tripsplit/tripsplit-backend/logger"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	// Validation constants
	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	JwtSecretKey   string      `mapstructure:"JWT_SECRET_KEY" yaml:"jwt_secret_key"`
	// JwksURL enables RS256/ES256 tokens from an external identity provider.
	// HS256 tokens signed with JwtSecretKey keep working.
	JwksURL string `mapstructure:"JWKS_URL" yaml:"jwks_url"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored entirely.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	// RequestTimeoutSeconds bounds summary computation per request.
	RequestTimeoutSeconds int `mapstructure:"REQUEST_TIMEOUT_SECONDS" yaml:"request_timeout_seconds"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and pgx.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// EmailConfig holds configuration for sending trip summary emails.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// WorkerPoolConfig holds configuration for the notification worker pool.
type WorkerPoolConfig struct {
	// MaxWorkers is the number of concurrent workers (default: 10)
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending jobs (default: 1000)
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// ShutdownTimeoutSeconds is the max time to wait for workers during shutdown (default: 30)
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// CurrencyConfig drives conversion into the reference currency and rate ingestion.
type CurrencyConfig struct {
	ReferenceCurrency  string `mapstructure:"REFERENCE_CURRENCY" yaml:"reference_currency"`
	FeedURL            string `mapstructure:"FEED_URL" yaml:"feed_url"`
	FeedTimeoutSeconds int    `mapstructure:"FEED_TIMEOUT_SECONDS" yaml:"feed_timeout_seconds"`
	Schedule           string `mapstructure:"SCHEDULE" yaml:"schedule"`
	SchedulerEnabled   bool   `mapstructure:"SCHEDULER_ENABLED" yaml:"scheduler_enabled"`
	CacheTTLSeconds    int    `mapstructure:"CACHE_TTL_SECONDS" yaml:"cache_ttl_seconds"`
}

// SettlementConfig tunes the settlement calculator.
type SettlementConfig struct {
	// ConversionConcurrency caps in-flight rate lookups per summary.
	ConversionConcurrency int `mapstructure:"CONVERSION_CONCURRENCY" yaml:"conversion_concurrency"`
}

// OutboxConfig controls how the notification outbox is drained.
type OutboxConfig struct {
	PollIntervalSeconds   int `mapstructure:"POLL_INTERVAL_SECONDS" yaml:"poll_interval_seconds"`
	BatchSize             int `mapstructure:"BATCH_SIZE" yaml:"batch_size"`
	MaxAttempts           int `mapstructure:"MAX_ATTEMPTS" yaml:"max_attempts"`
	InitialBackoffSeconds int `mapstructure:"INITIAL_BACKOFF_SECONDS" yaml:"initial_backoff_seconds"`
	MaxBackoffSeconds     int `mapstructure:"MAX_BACKOFF_SECONDS" yaml:"max_backoff_seconds"`
}

// StorageConfig points at the S3-compatible bucket settlement reports are
// archived in. Archiving is off when Bucket is empty.
type StorageConfig struct {
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"USE_PATH_STYLE" yaml:"use_path_style"`
	URLTTLSeconds   int    `mapstructure:"URL_TTL_SECONDS" yaml:"url_ttl_seconds"`
}

// Enabled reports whether reports should be archived.
func (c *StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum trip close requests per window and client IP
	CloseRequestsPerWindow int `mapstructure:"CLOSE_REQUESTS_PER_WINDOW" yaml:"close_requests_per_window"`
	WindowSeconds          int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email      EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	WorkerPool WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Currency   CurrencyConfig   `mapstructure:"CURRENCY" yaml:"currency"`
	Settlement SettlementConfig `mapstructure:"SETTLEMENT" yaml:"settlement"`
	Outbox     OutboxConfig     `mapstructure:"OUTBOX" yaml:"outbox"`
	RateLimit  RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Storage    StorageConfig    `mapstructure:"STORAGE" yaml:"storage"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("SERVER.JWKS_URL", "")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "tripsplit_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.FROM_ADDRESS", "")
	v.SetDefault("EMAIL.FROM_NAME", "TripSplit")
	v.SetDefault("EMAIL.RESEND_API_KEY", "")
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 10)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 1000)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("CURRENCY.REFERENCE_CURRENCY", "PLN")
	v.SetDefault("CURRENCY.FEED_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml")
	v.SetDefault("CURRENCY.FEED_TIMEOUT_SECONDS", 10)
	v.SetDefault("CURRENCY.SCHEDULE", "0 6 * * 1-6")
	v.SetDefault("CURRENCY.SCHEDULER_ENABLED", true)
	v.SetDefault("CURRENCY.CACHE_TTL_SECONDS", 3600)
	v.SetDefault("SETTLEMENT.CONVERSION_CONCURRENCY", 4)
	v.SetDefault("OUTBOX.POLL_INTERVAL_SECONDS", 5)
	v.SetDefault("OUTBOX.BATCH_SIZE", 50)
	v.SetDefault("OUTBOX.MAX_ATTEMPTS", 5)
	v.SetDefault("OUTBOX.INITIAL_BACKOFF_SECONDS", 30)
	v.SetDefault("OUTBOX.MAX_BACKOFF_SECONDS", 3600)
	v.SetDefault("RATE_LIMIT.CLOSE_REQUESTS_PER_WINDOW", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("STORAGE.BUCKET", "")
	v.SetDefault("STORAGE.REGION", "auto")
	v.SetDefault("STORAGE.ENDPOINT", "")
	v.SetDefault("STORAGE.ACCESS_KEY_ID", "")
	v.SetDefault("STORAGE.SECRET_ACCESS_KEY", "")
	v.SetDefault("STORAGE.USE_PATH_STYLE", false)
	v.SetDefault("STORAGE.URL_TTL_SECONDS", 300)
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
		{"SERVER.JWKS_URL", "JWKS_URL"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		{"SERVER.REQUEST_TIMEOUT_SECONDS", "REQUEST_TIMEOUT_SECONDS"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
		{"DATABASE.MAX_IDLE_CONNS", "DB_MAX_IDLE_CONNS"},
		{"DATABASE.CONN_MAX_LIFE", "DB_CONN_MAX_LIFE"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Email config
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		// WorkerPool config
		{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
		{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
		{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
		// Currency config
		{"CURRENCY.REFERENCE_CURRENCY", "REFERENCE_CURRENCY"},
		{"CURRENCY.FEED_URL", "CURRENCY_FEED_URL"},
		{"CURRENCY.FEED_TIMEOUT_SECONDS", "CURRENCY_FEED_TIMEOUT_SECONDS"},
		{"CURRENCY.SCHEDULE", "CURRENCY_SCHEDULE"},
		{"CURRENCY.SCHEDULER_ENABLED", "CURRENCY_SCHEDULER_ENABLED"},
		{"CURRENCY.CACHE_TTL_SECONDS", "CURRENCY_CACHE_TTL_SECONDS"},
		// Settlement config
		{"SETTLEMENT.CONVERSION_CONCURRENCY", "SETTLEMENT_CONVERSION_CONCURRENCY"},
		// Outbox config
		{"OUTBOX.POLL_INTERVAL_SECONDS", "OUTBOX_POLL_INTERVAL_SECONDS"},
		{"OUTBOX.BATCH_SIZE", "OUTBOX_BATCH_SIZE"},
		{"OUTBOX.MAX_ATTEMPTS", "OUTBOX_MAX_ATTEMPTS"},
		{"OUTBOX.INITIAL_BACKOFF_SECONDS", "OUTBOX_INITIAL_BACKOFF_SECONDS"},
		{"OUTBOX.MAX_BACKOFF_SECONDS", "OUTBOX_MAX_BACKOFF_SECONDS"},
		// Rate limit config
		{"RATE_LIMIT.CLOSE_REQUESTS_PER_WINDOW", "RATE_LIMIT_CLOSE_REQUESTS_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		// Report storage config
		{"STORAGE.BUCKET", "REPORT_BUCKET"},
		{"STORAGE.REGION", "REPORT_REGION"},
		{"STORAGE.ENDPOINT", "REPORT_ENDPOINT"},
		{"STORAGE.ACCESS_KEY_ID", "REPORT_ACCESS_KEY_ID"},
		{"STORAGE.SECRET_ACCESS_KEY", "REPORT_SECRET_ACCESS_KEY"},
		{"STORAGE.USE_PATH_STYLE", "REPORT_USE_PATH_STYLE"},
		{"STORAGE.URL_TTL_SECONDS", "REPORT_URL_TTL_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"reference_currency", v.GetString("CURRENCY.REFERENCE_CURRENCY"),
		"currency_schedule", v.GetString("CURRENCY.SCHEDULE"),
		"worker_pool_max_workers", v.GetInt("WORKER_POOL.MAX_WORKERS"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	cfg.Currency.ReferenceCurrency = strings.ToUpper(strings.TrimSpace(cfg.Currency.ReferenceCurrency))

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	// Validate Server Config
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if len(cfg.Server.JwtSecretKey) < minJWTLength {
		return fmt.Errorf("JWT secret key must be at least %d characters long", minJWTLength)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if cfg.Server.JwksURL != "" {
		u, err := url.ParseRequestURI(cfg.Server.JwksURL)
		if err != nil {
			return fmt.Errorf("invalid JWKS URL: %w", err)
		}
		if cfg.Server.Environment == EnvProduction && u.Scheme != "https" {
			return fmt.Errorf("JWKS URL must use https in production")
		}
	}

	// Validate Database Config
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	// Validate Redis Config
	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validateEmailConfig(&cfg.Email, cfg.Server.Environment, log); err != nil {
		return err
	}

	// Validate WorkerPool config
	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	if err := validateCurrencyConfig(&cfg.Currency); err != nil {
		return err
	}

	if cfg.Settlement.ConversionConcurrency <= 0 {
		return fmt.Errorf("settlement conversion concurrency must be positive")
	}

	// Validate Outbox config
	if cfg.Outbox.PollIntervalSeconds <= 0 {
		return fmt.Errorf("outbox poll interval must be positive")
	}
	if cfg.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox batch size must be positive")
	}
	if cfg.Outbox.MaxAttempts <= 0 {
		return fmt.Errorf("outbox max attempts must be positive")
	}
	if cfg.Outbox.InitialBackoffSeconds <= 0 || cfg.Outbox.MaxBackoffSeconds < cfg.Outbox.InitialBackoffSeconds {
		return fmt.Errorf("outbox backoff must be positive and max must not be below initial")
	}

	// Validate RateLimit config
	if cfg.RateLimit.CloseRequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit close requests per window must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return validateStorageConfig(&cfg.Storage)
}

// validateEmailConfig requires Resend credentials in production only.
// Elsewhere a missing key switches the sender to log-only mode.
func validateEmailConfig(cfg *EmailConfig, env Environment, log *zap.SugaredLogger) error {
	if env == EnvProduction {
		if cfg.FromAddress == "" {
			return fmt.Errorf("email from address is required")
		}
		if cfg.ResendAPIKey == "" {
			return fmt.Errorf("resend API key is required")
		}
		return nil
	}
	if cfg.ResendAPIKey == "" {
		log.Warn("Resend API key not set, summary emails will only be logged")
	}
	return nil
}

func validateStorageConfig(cfg *StorageConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.Region == "" {
		return fmt.Errorf("report storage region is required")
	}
	if cfg.Endpoint != "" {
		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return fmt.Errorf("invalid report storage endpoint: %w", err)
		}
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return fmt.Errorf("report storage access key id and secret must be set together")
	}
	if cfg.URLTTLSeconds <= 0 {
		return fmt.Errorf("report URL TTL must be positive")
	}
	return nil
}

func validateCurrencyConfig(cfg *CurrencyConfig) error {
	if len(cfg.ReferenceCurrency) != 3 {
		return fmt.Errorf("reference currency must be a 3-letter ISO 4217 code, got %q", cfg.ReferenceCurrency)
	}
	if cfg.CacheTTLSeconds <= 0 {
		return fmt.Errorf("currency cache TTL must be positive")
	}
	if cfg.FeedTimeoutSeconds <= 0 {
		return fmt.Errorf("currency feed timeout must be positive")
	}
	if _, err := url.ParseRequestURI(cfg.FeedURL); err != nil {
		return fmt.Errorf("invalid currency feed URL: %w", err)
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid currency schedule %q: %w", cfg.Schedule, err)
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
