package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	BotToken string
	GuildID  string
	RoleID   string // granted on successful verification

	AllowedOrigins []string // CORS allowed origins
	StaticDir      string   // verification page assets; empty disables

	// TrustProxyHeaders keys per-IP limits on X-Forwarded-For / X-Real-Ip.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	CodeTTL         time.Duration
	ChallengeTTL    time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	SweepInterval   time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	AuditTable         string // empty disables the audit log
	AuditRetentionDays int
	SNSAlertTopicARN   string // empty disables operator alerts
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BotToken: getEnv("BOT_TOKEN", ""),
		GuildID:  getEnv("GUILD_ID", ""),
		RoleID:   getEnv("ROLE_ID", ""),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		StaticDir:      getEnv("STATIC_DIR", "public"),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),

		CodeTTL:         getEnvDuration("CODE_TTL", 3*time.Minute),
		ChallengeTTL:    getEnvDuration("CHALLENGE_TTL", 5*time.Minute),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 3),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", time.Minute),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AuditTable:         getEnv("DYNAMO_TABLE_VERIFICATION_AUDIT", ""),
		AuditRetentionDays: getEnvInt("AUDIT_RETENTION_DAYS", 90),
		SNSAlertTopicARN:   getEnv("SNS_ALERT_TOPIC_ARN", ""),
	}
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.GuildID == "" {
		errs = append(errs, errors.New("GUILD_ID is required"))
	}
	if c.RoleID == "" {
		errs = append(errs, errors.New("ROLE_ID is required"))
	}
	if c.RateLimitMax < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be at least 1"))
	}
	return errors.Join(errs...)
}

// AuditTTL is how long audit records are kept before DynamoDB expires them.
func (c *Config) AuditTTL() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
