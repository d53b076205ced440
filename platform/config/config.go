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
}

// RedisConfig provides Redis connection settings for the cache and the
// background task queue.
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// JWTConfig provides JWT validation settings for the platform admin surface.
type JWTConfig interface {
	GetJWTAccessSecret() string
	GetAccessTokenTTL() time.Duration
}

// AgentConfig provides settings for the LLM agent runtime.
type AgentConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetAgentModel() string
	GetAgentTimeout() time.Duration
	GetAgentMaxToolIterations() int
}

// CacheConfig provides TTL settings for tenant configuration caching.
type CacheConfig interface {
	GetPromptCacheTTL() time.Duration
	GetKnowledgeCacheTTL() time.Duration
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetHandoffNotifyAddress() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SweepConfig provides settings for the conversation abandon sweep.
type SweepConfig interface {
	GetAbandonAfter() time.Duration
}

// TenantModeConfig selects between multi-tenant header authentication and
// the single-tenant legacy mode that resolves every request to one
// configured default tenant.
type TenantModeConfig interface {
	GetMultiTenantEnabled() bool
	GetDefaultTenantSlug() string
}

// SchedulerConfig provides settings for the asynq background worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSweepInterval() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	RedisURL               string
	JWTAccessSecret        string
	AccessTokenTTL         time.Duration
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	AppBaseURL             string
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	AgentModel             string
	AgentTimeout           time.Duration
	AgentMaxToolIterations int
	PromptCacheTTL         time.Duration
	KnowledgeCacheTTL      time.Duration
	AbandonAfter           time.Duration
	SweepInterval          time.Duration
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	MultiTenantEnabled     bool
	DefaultTenantSlug      string
	EmailEnabled           bool
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	EmailFromName          string
	EmailFromAddress       string
	HandoffNotifyAddress   string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// AgentConfig implementation
func (c *Config) GetOpenAIAPIKey() string           { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string          { return c.OpenAIBaseURL }
func (c *Config) GetAgentModel() string             { return c.AgentModel }
func (c *Config) GetAgentTimeout() time.Duration    { return c.AgentTimeout }
func (c *Config) GetAgentMaxToolIterations() int    { return c.AgentMaxToolIterations }

// CacheConfig implementation
func (c *Config) GetPromptCacheTTL() time.Duration    { return c.PromptCacheTTL }
func (c *Config) GetKnowledgeCacheTTL() time.Duration { return c.KnowledgeCacheTTL }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string           { return c.AppBaseURL }
func (c *Config) GetHandoffNotifyAddress() string { return c.HandoffNotifyAddress }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// TenantModeConfig implementation
func (c *Config) GetMultiTenantEnabled() bool  { return c.MultiTenantEnabled }
func (c *Config) GetDefaultTenantSlug() string { return c.DefaultTenantSlug }

// SweepConfig implementation
func (c *Config) GetAbandonAfter() time.Duration { return c.AbandonAfter }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string        { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int         { return c.AsynqConcurrency }
func (c *Config) GetSweepInterval() time.Duration  { return c.SweepInterval }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		JWTAccessSecret:        getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:         mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:             getEnv("APP_BASE_URL", "http://localhost:4200"),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", ""),
		AgentModel:             getEnv("AGENT_MODEL", "gpt-4o-mini"),
		AgentTimeout:           mustDuration(getEnv("AGENT_TIMEOUT", "120s")),
		AgentMaxToolIterations: mustInt(getEnv("AGENT_MAX_TOOL_ITERATIONS", "15")),
		PromptCacheTTL:         mustDuration(getEnv("PROMPT_CACHE_TTL", "10m")),
		KnowledgeCacheTTL:      mustDuration(getEnv("KNOWLEDGE_CACHE_TTL", "30m")),
		AbandonAfter:           mustDuration(getEnv("CONVERSATION_ABANDON_AFTER", "72h")),
		SweepInterval:          mustDuration(getEnv("CONVERSATION_SWEEP_INTERVAL", "1h")),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MultiTenantEnabled:     strings.EqualFold(getEnv("MULTI_TENANT_ENABLED", "true"), "true"),
		DefaultTenantSlug:      getEnv("DEFAULT_TENANT_SLUG", ""),
		EmailEnabled:           emailEnabled && smtpHost != "",
		SMTPHost:               smtpHost,
		SMTPPort:               mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "WorkHub AI"),
		EmailFromAddress:       getEnv("EMAIL_FROM_ADDRESS", ""),
		HandoffNotifyAddress:   getEnv("HANDOFF_NOTIFY_ADDRESS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if !cfg.MultiTenantEnabled && cfg.DefaultTenantSlug == "" {
		return nil, fmt.Errorf("DEFAULT_TENANT_SLUG is required when MULTI_TENANT_ENABLED is false")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
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
