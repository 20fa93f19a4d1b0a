package config

import (
	"os"
	"strconv"
	"strings"

	"instacord/internal/constants"
	"instacord/internal/models"
)

var (
	ErrMissingUsername = models.ConfigError{Message: "missing IG_USERNAME"}
	ErrMissingPassword = models.ConfigError{Message: "missing IG_PASSWORD"}
	ErrMissingToken    = models.ConfigError{Message: "missing DISCORD_TOKEN"}
)

// Load reads configuration from the process environment. Source
// credentials and the destination token are required; everything else
// has a default or degrades a feature when absent.
func Load() (*models.Config, error) {
	cfg := &models.Config{
		Instagram: models.Instagram{
			Username:   os.Getenv("IG_USERNAME"),
			Password:   os.Getenv("IG_PASSWORD"),
			APIBaseURL: os.Getenv("IG_API_BASE_URL"),
		},
		Discord: models.Discord{
			Token:      os.Getenv("DISCORD_TOKEN"),
			GuildID:    os.Getenv("DISCORD_GUILD_ID"),
			CategoryID: os.Getenv("DISCORD_CATEGORY_ID"),
		},
		Database: models.Database{
			Path: getEnv("DB_PATH", "instacord.db"),
		},
		Retry: models.RetryConfig{
			InitialBackoffMs: getEnvInt("RETRY_INITIAL_BACKOFF_MS", constants.DefaultRetryBackoffMs),
			MaxBackoffMs:     getEnvInt("RETRY_MAX_BACKOFF_MS", constants.DefaultMaxBackoffMs),
			MaxAttempts:      getEnvInt("RETRY_MAX_ATTEMPTS", constants.DefaultMaxAttempts),
		},
		Tracing: models.TracingConfig{
			Enabled:      os.Getenv("TRACING_ENABLED") == "true",
			UseStdout:    os.Getenv("TRACING_STDOUT") == "true",
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "instacord"),
			Environment:  getEnv("TRACING_ENVIRONMENT", "production"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		TargetUsernames: parseTargets(os.Getenv("TARGET_USERNAMES")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RetentionDays:   getEnvInt("RETENTION_DAYS", constants.DefaultRetentionDays),
		ServerPort:      getEnvInt("SERVER_PORT", constants.DefaultServerPort),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(c *models.Config) error {
	if c.Instagram.Username == "" {
		return ErrMissingUsername
	}
	if c.Instagram.Password == "" {
		return ErrMissingPassword
	}
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// parseTargets splits a comma-separated allow-list, lowercasing and
// dropping empty entries. An empty result means all senders.
func parseTargets(raw string) []string {
	if raw == "" {
		return nil
	}
	var targets []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			targets = append(targets, part)
		}
	}
	return targets
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
