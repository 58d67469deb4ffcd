// Package config handles loading and validation of application configuration
// from environment variables and an optional per-environment YAML file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/models/roster"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	// Validation constants
	minJWTLength           = 32
	minAdminPasswordLength = 8
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// Timezone is used to interpret calendar days in date-range filters.
	Timezone string `mapstructure:"TIMEZONE" yaml:"timezone"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored entirely.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// Location returns the configured timezone, falling back to UTC.
func (s ServerConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

// URL returns a postgres:// connection URL suitable for golang-migrate and other
// URL-based database tools.
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

// EmailConfig holds configuration for sending notification emails.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	// AdminRecipients receive the "new feedback" and "form link" notifications.
	AdminRecipients []string `mapstructure:"ADMIN_RECIPIENTS" yaml:"admin_recipients"`
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	JWTSecretKey    string `mapstructure:"JWT_SECRET_KEY" yaml:"jwt_secret_key"`
	TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES" yaml:"token_ttl_minutes"`
	// AdminEmail and AdminPassword seed the first administrator on startup.
	// Seeding is skipped when the account already exists.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL" yaml:"admin_email"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD" yaml:"admin_password"`
}

// TokenTTL returns the lifetime of issued admin tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// FeaturesConfig selects which optional form fields are active.
type FeaturesConfig struct {
	// Preset is one of basic, standard or full; individual FEATURE_* variables
	// override it.
	Preset string `mapstructure:"PRESET" yaml:"preset"`
}

// RosterConfig controls list management and the roster cache.
type RosterConfig struct {
	DuplicatePolicy string `mapstructure:"DUPLICATE_POLICY" yaml:"duplicate_policy"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS" yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the roster cache lifetime; zero disables caching.
func (r RosterConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum requests per window for public submission endpoints
	SubmitRequestsPerWindow int `mapstructure:"SUBMIT_REQUESTS_PER_WINDOW" yaml:"submit_requests_per_window"`
	// Maximum requests per window for the admin login endpoint
	AuthRequestsPerWindow int `mapstructure:"AUTH_REQUESTS_PER_WINDOW" yaml:"auth_requests_per_window"`
	// Window duration in seconds for rate limiting
	WindowSeconds int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Window returns the rate limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// WorkerPoolConfig holds configuration for the email worker pool.
type WorkerPoolConfig struct {
	// MaxWorkers is the number of concurrent workers (default: 4)
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending jobs (default: 100)
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// JobTimeoutSeconds bounds a single job (default: 30)
	JobTimeoutSeconds int `mapstructure:"JOB_TIMEOUT_SECONDS" yaml:"job_timeout_seconds"`
	// ShutdownTimeoutSeconds is the max time to wait for workers during shutdown (default: 30)
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// ExportConfig configures CSV uploads to S3-compatible object storage.
type ExportConfig struct {
	Enabled           bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Bucket            string `mapstructure:"BUCKET" yaml:"bucket"`
	Endpoint          string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	Region            string `mapstructure:"REGION" yaml:"region"`
	AccessKeyID       string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey   string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	KeyPrefix         string `mapstructure:"KEY_PREFIX" yaml:"key_prefix"`
	PresignTTLMinutes int    `mapstructure:"PRESIGN_TTL_MINUTES" yaml:"presign_ttl_minutes"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email      EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	Auth       AuthConfig       `mapstructure:"AUTH" yaml:"auth"`
	Features   FeaturesConfig   `mapstructure:"FEATURES" yaml:"features"`
	Roster     RosterConfig     `mapstructure:"ROSTER" yaml:"roster"`
	RateLimit  RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	WorkerPool WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Export     ExportConfig     `mapstructure:"EXPORT" yaml:"export"`

	// Resolved during validation.
	Capabilities    types.Capabilities     `mapstructure:"-" yaml:"-"`
	DuplicatePolicy roster.DuplicatePolicy `mapstructure:"-" yaml:"-"`
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
	v.SetDefault("SERVER.PORT", "8083")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TIMEZONE", "UTC")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "feedback_dev")
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
	v.SetDefault("EMAIL.ENABLED", true)
	v.SetDefault("EMAIL.FROM_NAME", "Client Feedback")
	v.SetDefault("EMAIL.ADMIN_RECIPIENTS", []string{})
	v.SetDefault("AUTH.TOKEN_TTL_MINUTES", 12*60)
	v.SetDefault("FEATURES.PRESET", PresetFull)
	v.SetDefault("ROSTER.DUPLICATE_POLICY", string(roster.DuplicatesAllow))
	v.SetDefault("ROSTER.CACHE_TTL_SECONDS", 300)
	v.SetDefault("RATE_LIMIT.SUBMIT_REQUESTS_PER_WINDOW", 20)
	v.SetDefault("RATE_LIMIT.AUTH_REQUESTS_PER_WINDOW", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POOL.JOB_TIMEOUT_SECONDS", 30)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("EXPORT.ENABLED", false)
	v.SetDefault("EXPORT.REGION", "auto")
	v.SetDefault("EXPORT.KEY_PREFIX", "exports/")
	v.SetDefault("EXPORT.PRESIGN_TTL_MINUTES", 60)
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "SERVER_VERSION"},
	{"SERVER.TIMEZONE", "SERVER_TIMEZONE"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	// Database config
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
	{"DATABASE.MAX_IDLE_CONNS", "DB_MAX_IDLE_CONNS"},
	// Redis config
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	// Email config
	{"EMAIL.ENABLED", "EMAIL_ENABLED"},
	{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
	{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
	{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
	{"EMAIL.ADMIN_RECIPIENTS", "EMAIL_ADMIN_RECIPIENTS"},
	// Auth config
	{"AUTH.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
	{"AUTH.TOKEN_TTL_MINUTES", "AUTH_TOKEN_TTL_MINUTES"},
	{"AUTH.ADMIN_EMAIL", "ADMIN_EMAIL"},
	{"AUTH.ADMIN_PASSWORD", "ADMIN_PASSWORD"},
	// Features and roster
	{"FEATURES.PRESET", "FEATURES_PRESET"},
	{"ROSTER.DUPLICATE_POLICY", "ROSTER_DUPLICATE_POLICY"},
	{"ROSTER.CACHE_TTL_SECONDS", "ROSTER_CACHE_TTL_SECONDS"},
	// Rate limit config
	{"RATE_LIMIT.SUBMIT_REQUESTS_PER_WINDOW", "RATE_LIMIT_SUBMIT_REQUESTS_PER_WINDOW"},
	{"RATE_LIMIT.AUTH_REQUESTS_PER_WINDOW", "RATE_LIMIT_AUTH_REQUESTS_PER_WINDOW"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	// WorkerPool config
	{"WORKER_POOL.MAX_WORKERS", "WORKER_POOL_MAX_WORKERS"},
	{"WORKER_POOL.QUEUE_SIZE", "WORKER_POOL_QUEUE_SIZE"},
	{"WORKER_POOL.JOB_TIMEOUT_SECONDS", "WORKER_POOL_JOB_TIMEOUT_SECONDS"},
	{"WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", "WORKER_POOL_SHUTDOWN_TIMEOUT_SECONDS"},
	// Export config
	{"EXPORT.ENABLED", "EXPORT_ENABLED"},
	{"EXPORT.BUCKET", "EXPORT_BUCKET"},
	{"EXPORT.ENDPOINT", "EXPORT_ENDPOINT"},
	{"EXPORT.REGION", "EXPORT_REGION"},
	{"EXPORT.ACCESS_KEY_ID", "EXPORT_ACCESS_KEY_ID"},
	{"EXPORT.SECRET_ACCESS_KEY", "EXPORT_SECRET_ACCESS_KEY"},
	{"EXPORT.KEY_PREFIX", "EXPORT_KEY_PREFIX"},
	{"EXPORT.PRESIGN_TTL_MINUTES", "EXPORT_PRESIGN_TTL_MINUTES"},
}

// LoadConfig loads configuration from environment variables using Viper,
// merges the per-environment YAML file when one exists, unmarshals the
// configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	env := Environment(v.GetString("SERVER.ENVIRONMENT"))
	if path, ok := configFileForEnv(env); ok {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Infow("Merged configuration file", "path", path)
	}

	log.Infow("Configuration loaded",
		"environment", env,
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"allowed_origins", v.GetStringSlice("SERVER.ALLOWED_ORIGINS"),
		"features_preset", v.GetString("FEATURES.PRESET"),
		"export_enabled", v.GetBool("EXPORT.ENABLED"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration validated successfully", "capabilities", cfg.Capabilities)
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid and
// resolves derived settings.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if cfg.Server.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
			return fmt.Errorf("invalid server timezone %q: %w", cfg.Server.Timezone, err)
		}
	}

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

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if len(cfg.Auth.JWTSecretKey) < minJWTLength {
		return fmt.Errorf("JWT secret key must be at least %d characters long", minJWTLength)
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token TTL must be positive")
	}
	if cfg.Auth.AdminEmail != "" && len(cfg.Auth.AdminPassword) < minAdminPasswordLength {
		return fmt.Errorf("admin seed password must be at least %d characters long", minAdminPasswordLength)
	}

	validateEmailConfig(&cfg.Email, log)

	caps, err := ResolveCapabilities(cfg.Features.Preset)
	if err != nil {
		return err
	}
	cfg.Capabilities = caps

	policy, err := roster.ParsePolicy(cfg.Roster.DuplicatePolicy)
	if err != nil {
		return err
	}
	cfg.DuplicatePolicy = policy
	if cfg.Roster.CacheTTLSeconds < 0 {
		return fmt.Errorf("roster cache TTL must not be negative")
	}

	if cfg.RateLimit.SubmitRequestsPerWindow <= 0 || cfg.RateLimit.AuthRequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit request counts must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.JobTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool job timeout must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	return validateExportConfig(&cfg.Export, log)
}

// validateEmailConfig auto-disables email when it cannot be sent.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" {
		log.Warn("Resend API key or from address not set, auto-disabling email notifications")
		cfg.Enabled = false
		return
	}
	if len(cfg.AdminRecipients) == 0 {
		log.Warn("No admin recipients configured; only submitter notifications will be sent")
	}
}

// validateExportConfig checks the object storage settings. If enabled but
// missing credentials, it auto-disables uploads with a warning.
func validateExportConfig(cfg *ExportConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		log.Warn("Export bucket or credentials not set, auto-disabling export uploads")
		cfg.Enabled = false
		return nil
	}
	if cfg.Endpoint != "" {
		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return fmt.Errorf("invalid export endpoint: %w", err)
		}
	}
	if cfg.PresignTTLMinutes <= 0 {
		return fmt.Errorf("export presign TTL must be positive")
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
