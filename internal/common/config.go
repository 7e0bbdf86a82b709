package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all ambient application configuration. Publication-specific
// settings (page ranges, heuristics, rule files) live in the profile, not here.
type Config struct {
	HTTP   HTTPConfig
	Lookup LookupConfig
}

// HTTPConfig holds settings shared by the outbound API clients.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// LookupConfig holds settings for the enrichment stages.
type LookupConfig struct {
	MatchDelay  time.Duration
	StatsDelay  time.Duration
	JournalPath string
	Languages   []string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
			UserAgent: getEnv("USER_AGENT", "kirjailijat-pipeline/1.0 (projektfredrika.fi)"),
		},
		Lookup: LookupConfig{
			MatchDelay:  getEnvAsDuration("MATCH_DELAY", 500*time.Millisecond),
			StatsDelay:  getEnvAsDuration("STATS_DELAY", 200*time.Millisecond),
			JournalPath: getEnv("MATCH_JOURNAL", ""),
			Languages:   []string{"sv", "fi", "en"},
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
