package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	Telemetry    TelemetryConfig
	Admission    AdmissionConfig
	Escrow       EscrowConfig
	Outbox       OutboxConfig
	Tracking     TrackingConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Concurrency  ConcurrencyConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	SwaggerEnabled   bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int  // in minutes
	ConnMaxIdleTime int  // in minutes
	AutoMigrate     bool // Apply embedded migrations on server startup

	// SlowQueryThreshold marks statements logged as slow; LogFullSQL keeps bound values in SQL logs
	SlowQueryThreshold time.Duration
	LogFullSQL         bool
}

// RedisConfig holds Redis connection settings. An empty Host disables Redis
// and the in-process lock and idempotency store are used instead.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating bearer tokens issued by the identity service
type JWTConfig struct {
	Secret string
	Issuer string
	// Leeway tolerates clock skew when checking exp and nbf
	Leeway time.Duration
	// MaxTokenTTL is the longest lifetime the identity service issues; revocations are kept this long
	MaxTokenTTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
	// File rotation, used when Output is a file path
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// TelemetryConfig holds OpenTelemetry and Prometheus configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to export traces
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // Non-TLS collector connection (development only)
	LogExportEnabled  bool // Bridge zap logs to the OTLP collector
	MetricsEnabled    bool // Serve /metrics
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
}

// AdmissionConfig tunes the admission gates
type AdmissionConfig struct {
	PaymentOnTimeFloor float64
	// Trust score weights; they must sum to 1
	WeightPaymentReliability float64
	WeightDisputeHistory     float64
	WeightBehavioral         float64
	WeightCompliance         float64
	// Escalation switches turning a manual review into a reject
	RejectOnCriticalFlag            bool
	RejectOnHighRiskWithLatePayment bool
	AllowBlacklistOverride          bool
	LockTTL                         time.Duration
}

// EscrowConfig holds escrow defaults
type EscrowConfig struct {
	DefaultAdvancePercentage float64
}

// OutboxConfig holds outbox processing configuration
type OutboxConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	IdempotencyTTL   time.Duration
}

// TrackingConfig configures the carrier tracking client
type TrackingConfig struct {
	Enabled        bool
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	CacheTTL       time.Duration
	RatePerSecond  float64
	Burst          int
	BreakerTimeout time.Duration
}

// NotificationConfig selects the notifier
type NotificationConfig struct {
	WebhookURL     string // empty logs notifications instead of posting them
	Timeout        time.Duration
	BreakerTimeout time.Duration
}

// RateLimitConfig holds per-client HTTP rate limiting
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// ConcurrencyConfig bounds optimistic-locking retries
type ConcurrencyConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Load loads configuration from config.yaml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with TRADEWAVE_ prefix (e.g., TRADEWAVE_DATABASE_PASSWORD)
// 2. config.yaml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tradewave")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRADEWAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			SwaggerEnabled:   v.GetBool("http.swagger_enabled"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),

			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
			LogFullSQL:         v.GetBool("database.log_full_sql"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("jwt.secret"),
			Issuer:      v.GetString("jwt.issuer"),
			Leeway:      v.GetDuration("jwt.leeway"),
			MaxTokenTTL: v.GetDuration("jwt.max_token_ttl"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogExportEnabled:  v.GetBool("telemetry.log_export_enabled"),
			MetricsEnabled:    !v.IsSet("telemetry.metrics_enabled") || v.GetBool("telemetry.metrics_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Admission: AdmissionConfig{
			PaymentOnTimeFloor:              v.GetFloat64("admission.payment_on_time_floor"),
			WeightPaymentReliability:        v.GetFloat64("admission.weight_payment_reliability"),
			WeightDisputeHistory:            v.GetFloat64("admission.weight_dispute_history"),
			WeightBehavioral:                v.GetFloat64("admission.weight_behavioral"),
			WeightCompliance:                v.GetFloat64("admission.weight_compliance"),
			RejectOnCriticalFlag:            !v.IsSet("admission.reject_on_critical_flag") || v.GetBool("admission.reject_on_critical_flag"),
			RejectOnHighRiskWithLatePayment: v.GetBool("admission.reject_on_high_risk_with_late_payment"),
			AllowBlacklistOverride:          v.GetBool("admission.allow_blacklist_override"),
			LockTTL:                         v.GetDuration("admission.lock_ttl"),
		},
		Escrow: EscrowConfig{
			DefaultAdvancePercentage: v.GetFloat64("escrow.default_advance_percentage"),
		},
		Outbox: OutboxConfig{
			ProcessorEnabled: !v.IsSet("outbox.processor_enabled") || v.GetBool("outbox.processor_enabled"),
			BatchSize:        v.GetInt("outbox.batch_size"),
			PollInterval:     v.GetDuration("outbox.poll_interval"),
			MaxRetries:       v.GetInt("outbox.max_retries"),
			RetryBaseDelay:   v.GetDuration("outbox.retry_base_delay"),
			RetryMaxDelay:    v.GetDuration("outbox.retry_max_delay"),
			CleanupEnabled:   v.GetBool("outbox.cleanup_enabled"),
			CleanupRetention: v.GetDuration("outbox.cleanup_retention"),
			IdempotencyTTL:   v.GetDuration("outbox.idempotency_ttl"),
		},
		Tracking: TrackingConfig{
			Enabled:        v.GetBool("tracking.enabled"),
			BaseURL:        v.GetString("tracking.base_url"),
			APIKey:         v.GetString("tracking.api_key"),
			Timeout:        v.GetDuration("tracking.timeout"),
			CacheTTL:       v.GetDuration("tracking.cache_ttl"),
			RatePerSecond:  v.GetFloat64("tracking.rate_per_second"),
			Burst:          v.GetInt("tracking.burst"),
			BreakerTimeout: v.GetDuration("tracking.breaker_timeout"),
		},
		Notification: NotificationConfig{
			WebhookURL:     v.GetString("notification.webhook_url"),
			Timeout:        v.GetDuration("notification.timeout"),
			BreakerTimeout: v.GetDuration("notification.breaker_timeout"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("ratelimit.enabled"),
			RequestsPerSecond: v.GetFloat64("ratelimit.requests_per_second"),
			Burst:             v.GetInt("ratelimit.burst"),
		},
		Concurrency: ConcurrencyConfig{
			MaxRetries: v.GetInt("concurrency.max_retries"),
			BaseDelay:  v.GetDuration("concurrency.base_delay"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tradewave-admission"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tradewave"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}

	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "tradewave-identity"
	}
	if cfg.JWT.Leeway == 0 {
		cfg.JWT.Leeway = 30 * time.Second
	}
	if cfg.JWT.MaxTokenTTL == 0 {
		cfg.JWT.MaxTokenTTL = 24 * time.Hour
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.Admission.PaymentOnTimeFloor == 0 {
		cfg.Admission.PaymentOnTimeFloor = 80
	}
	if cfg.Admission.WeightPaymentReliability == 0 && cfg.Admission.WeightDisputeHistory == 0 &&
		cfg.Admission.WeightBehavioral == 0 && cfg.Admission.WeightCompliance == 0 {
		cfg.Admission.WeightPaymentReliability = 0.25
		cfg.Admission.WeightDisputeHistory = 0.25
		cfg.Admission.WeightBehavioral = 0.25
		cfg.Admission.WeightCompliance = 0.25
	}
	if cfg.Admission.LockTTL == 0 {
		cfg.Admission.LockTTL = 10 * time.Second
	}

	if cfg.Escrow.DefaultAdvancePercentage == 0 {
		cfg.Escrow.DefaultAdvancePercentage = 30
	}

	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 2 * time.Second
	}
	if cfg.Outbox.MaxRetries == 0 {
		cfg.Outbox.MaxRetries = 5
	}
	if cfg.Outbox.RetryBaseDelay == 0 {
		cfg.Outbox.RetryBaseDelay = time.Second
	}
	if cfg.Outbox.RetryMaxDelay == 0 {
		cfg.Outbox.RetryMaxDelay = 5 * time.Minute
	}
	if cfg.Outbox.CleanupRetention == 0 {
		cfg.Outbox.CleanupRetention = 168 * time.Hour
	}
	if cfg.Outbox.IdempotencyTTL == 0 {
		cfg.Outbox.IdempotencyTTL = 24 * time.Hour
	}

	if cfg.Tracking.Timeout == 0 {
		cfg.Tracking.Timeout = 5 * time.Second
	}
	if cfg.Tracking.CacheTTL == 0 {
		cfg.Tracking.CacheTTL = 10 * time.Minute
	}
	if cfg.Tracking.RatePerSecond == 0 {
		cfg.Tracking.RatePerSecond = 5
	}
	if cfg.Tracking.Burst == 0 {
		cfg.Tracking.Burst = 10
	}
	if cfg.Tracking.BreakerTimeout == 0 {
		cfg.Tracking.BreakerTimeout = 30 * time.Second
	}

	if cfg.Notification.Timeout == 0 {
		cfg.Notification.Timeout = 5 * time.Second
	}
	if cfg.Notification.BreakerTimeout == 0 {
		cfg.Notification.BreakerTimeout = 30 * time.Second
	}

	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 20
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 40
	}

	if cfg.Concurrency.MaxRetries == 0 {
		cfg.Concurrency.MaxRetries = 3
	}
	if cfg.Concurrency.BaseDelay == 0 {
		cfg.Concurrency.BaseDelay = 20 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host is required in production for the admission lock")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Admission.PaymentOnTimeFloor < 0 || c.Admission.PaymentOnTimeFloor > 100 {
		return fmt.Errorf("admission.payment_on_time_floor must be between 0 and 100")
	}
	if c.Escrow.DefaultAdvancePercentage < 0 || c.Escrow.DefaultAdvancePercentage > 100 {
		return fmt.Errorf("escrow.default_advance_percentage must be between 0 and 100")
	}
	if c.Tracking.Enabled && c.Tracking.BaseURL == "" {
		return fmt.Errorf("tracking.base_url is required when tracking is enabled")
	}
	if c.Concurrency.MaxRetries < 0 {
		return fmt.Errorf("concurrency.max_retries cannot be negative")
	}
	if c.Outbox.RetryMaxDelay < c.Outbox.RetryBaseDelay {
		return fmt.Errorf("outbox.retry_max_delay (%s) cannot be shorter than outbox.retry_base_delay (%s)",
			c.Outbox.RetryMaxDelay, c.Outbox.RetryBaseDelay)
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
