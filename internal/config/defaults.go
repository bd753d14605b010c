package config

import (
	"time"

	"github.com/buildmind/sitetrack/internal/domain/schedule"
)

const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 100

	DefaultDBHost   = "localhost"
	DefaultDBPort   = 5432
	DefaultDBName   = "sitetrack"
	DefaultDBUser   = "sitetrack"
	DefaultSSLMode  = "disable"
	DefaultMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisTTL  = 5 * time.Minute
	DefaultKeyPrefix = "sitetrack:"

	DefaultKafkaTopicPrefix = "sitetrack"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "sitetrack-documents"
	DefaultPresignExpiry = 15 * time.Minute

	DefaultTokenTTL   = 24 * time.Hour
	DefaultAuthIssuer = "sitetrack"

	DefaultSMTPPort = 587

	// Sweep cadence: overdue hourly, upcoming every six hours, calendar
	// reminders every minute.
	DefaultOverdueInterval  = time.Hour
	DefaultUpcomingInterval = 6 * time.Hour
	DefaultReminderInterval = time.Minute

	DefaultTaskUpcomingWindow     = 24 * time.Hour
	DefaultIssueWarningWindowDays = 3

	DefaultMigrationPath = "migrations"
)

// NewDefault returns a Config populated entirely with defaults, suitable for
// tests and for local development without a config file.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the platform
// default. Explicitly configured values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultMaxConns
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}

	// Kafka
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}

	// MinIO
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultPresignExpiry
	}

	// Auth
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = DefaultAuthIssuer
	}

	// SMTP
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = DefaultSMTPPort
	}

	// Dispatch. The horizon defaults live with the classifier so that every
	// consumer of the policy shares one source of truth.
	if cfg.Dispatch.WarningHorizonDays == 0 {
		cfg.Dispatch.WarningHorizonDays = schedule.DefaultWarningHorizonDays
	}
	if cfg.Dispatch.UrgentHorizonDays == 0 {
		cfg.Dispatch.UrgentHorizonDays = schedule.DefaultUrgentHorizonDays
	}
	if cfg.Dispatch.UpcomingHorizonDays == 0 {
		cfg.Dispatch.UpcomingHorizonDays = schedule.DefaultUpcomingHorizonDays
	}
	if cfg.Dispatch.OverdueInterval == 0 {
		cfg.Dispatch.OverdueInterval = DefaultOverdueInterval
	}
	if cfg.Dispatch.UpcomingInterval == 0 {
		cfg.Dispatch.UpcomingInterval = DefaultUpcomingInterval
	}
	if cfg.Dispatch.ReminderInterval == 0 {
		cfg.Dispatch.ReminderInterval = DefaultReminderInterval
	}
	if cfg.Dispatch.TaskUpcomingWindow == 0 {
		cfg.Dispatch.TaskUpcomingWindow = DefaultTaskUpcomingWindow
	}
	if cfg.Dispatch.IssueWarningWindowDays == 0 {
		cfg.Dispatch.IssueWarningWindowDays = DefaultIssueWarningWindowDays
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Classifier builds the shared deadline classifier from the dispatch section.
func (c *Config) Classifier() schedule.Classifier {
	return schedule.Classifier{
		WarningHorizonDays:  c.Dispatch.WarningHorizonDays,
		UrgentHorizonDays:   c.Dispatch.UrgentHorizonDays,
		UpcomingHorizonDays: c.Dispatch.UpcomingHorizonDays,
	}
}

// Comparator builds the shared presentation comparator from the dispatch
// section.
func (c *Config) Comparator() schedule.Comparator {
	if c.Dispatch.UrgentAboveHigh {
		return schedule.NewComparator(c.Classifier())
	}
	return schedule.NewLegacyComparator(c.Classifier())
}
