// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// RedisConfig provides Redis connection settings for the record store
// fallback and the task queue.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	RedisConfig
	GetQueueName() string
	GetWorkerConcurrency() int
	GetFollowUpDelay() time.Duration
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
	IsAuthEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// EmailConfig provides settings for dispatch and follow-up email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetDispatchEmail() string
}

// DialogueConfig provides settings for the dialogue engine.
type DialogueConfig interface {
	GetBusinessName() string
	GetTemplatesPath() string
}

// SessionConfig provides settings for live call sessions.
type SessionConfig interface {
	GetSessionIdleTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	RedisURL          string
	QueueName         string
	WorkerConcurrency int
	FollowUpDelay     time.Duration
	JWTAccessSecret   string
	CORSAllowAll      bool
	CORSOrigins       []string
	RateLimitRPS      float64
	RateLimitBurst    int
	EmailEnabled      bool
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	EmailFromName     string
	EmailFromAddress  string
	DispatchEmail     string
	BusinessName      string
	TemplatesPath     string
	SessionIdleTTL    time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// SchedulerConfig implementation
func (c *Config) GetQueueName() string            { return c.QueueName }
func (c *Config) GetWorkerConcurrency() int       { return c.WorkerConcurrency }
func (c *Config) GetFollowUpDelay() time.Duration { return c.FollowUpDelay }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAuthEnabled() bool        { return c.JWTAccessSecret != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetDispatchEmail() string    { return c.DispatchEmail }

// DialogueConfig implementation
func (c *Config) GetBusinessName() string  { return c.BusinessName }
func (c *Config) GetTemplatesPath() string { return c.TemplatesPath }

// SessionConfig implementation
func (c *Config) GetSessionIdleTTL() time.Duration { return c.SessionIdleTTL }

// Load reads configuration from environment variables.
// DATABASE_URL and REDIS_URL are optional: when absent, the call record
// store falls back to the in-memory backend so the demo stays runnable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true") && smtpHost != ""

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		QueueName:         getEnv("ASYNQ_QUEUE", "calls"),
		WorkerConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		FollowUpDelay:     mustDuration(getEnv("FOLLOW_UP_DELAY", "24h")),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		RateLimitRPS:      mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:    mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		EmailEnabled:      emailEnabled,
		SMTPHost:          smtpHost,
		SMTPPort:          mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Premium Roofing Solutions"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		DispatchEmail:     getEnv("DISPATCH_EMAIL", ""),
		BusinessName:      getEnv("BUSINESS_NAME", "Premium Roofing Solutions"),
		TemplatesPath:     getEnv("DIALOGUE_TEMPLATES_PATH", ""),
		SessionIdleTTL:    mustDuration(getEnv("SESSION_IDLE_TTL", "30m")),
	}

	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.EmailEnabled && cfg.DispatchEmail == "" {
		return nil, fmt.Errorf("DISPATCH_EMAIL is required when email is enabled")
	}
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 10
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
