// Package config defines all configuration structures for SiteTrack.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimitRPS    int           `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for change-event publishing.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MinIOConfig holds object-storage parameters for document content.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// AuthConfig holds JWT signing parameters.
type AuthConfig struct {
	// Secret is the HS256 signing key; required outside test mode.
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// SMTPConfig holds the outgoing-mail parameters for the email channel.
type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// DispatchConfig holds the notification dispatcher's horizons and schedules.
type DispatchConfig struct {
	// WarningHorizonDays is the shared classification horizon, the single
	// knob behind every warning predicate in the product.
	WarningHorizonDays  int `mapstructure:"warning_horizon_days"`
	UrgentHorizonDays   int `mapstructure:"urgent_horizon_days"`
	UpcomingHorizonDays int `mapstructure:"upcoming_horizon_days"`

	// Sweep intervals.
	OverdueInterval  time.Duration `mapstructure:"overdue_interval"`
	UpcomingInterval time.Duration `mapstructure:"upcoming_interval"`
	ReminderInterval time.Duration `mapstructure:"reminder_interval"`

	// TaskUpcomingWindow bounds the task upcoming sweep (24h observed);
	// IssueWarningWindowDays bounds the issue sweep (3 days observed).
	TaskUpcomingWindow     time.Duration `mapstructure:"task_upcoming_window"`
	IssueWarningWindowDays int           `mapstructure:"issue_warning_window_days"`

	// StrictTransitions suppresses repeat notifications for an unchanged
	// classification; turning it off restores notify-every-tick.
	StrictTransitions bool `mapstructure:"strict_transitions"`

	// UrgentAboveHigh ranks the task-only urgent priority above high in list
	// ordering; off reproduces the legacy unknown-bucket ranking.
	UrgentAboveHigh bool `mapstructure:"urgent_above_high"`
}

// Config is the root configuration for all SiteTrack binaries.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Log      logging.Config `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Auth.Secret == "" && c.Server.Mode != "test" {
		return fmt.Errorf("config: auth.secret is required outside test mode")
	}

	if c.Dispatch.WarningHorizonDays < 0 {
		return fmt.Errorf("config: dispatch.warning_horizon_days must not be negative")
	}
	if c.Dispatch.UrgentHorizonDays > c.Dispatch.WarningHorizonDays {
		return fmt.Errorf("config: dispatch.urgent_horizon_days must not exceed warning_horizon_days")
	}
	if c.Dispatch.OverdueInterval <= 0 || c.Dispatch.UpcomingInterval <= 0 || c.Dispatch.ReminderInterval <= 0 {
		return fmt.Errorf("config: dispatch intervals must be positive")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers is required when kafka is enabled")
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return fmt.Errorf("config: smtp.host is required when smtp is enabled")
	}

	return nil
}
