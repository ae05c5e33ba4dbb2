package config

import (
	"os"
	"strconv"

	"thoughtcap/internal/models"
)

// ProviderConfig describes one OpenAI-compatible LLM endpoint. Primary and
// fallback providers are both expressed this way; any vendor with a
// /chat/completions surface works.
type ProviderConfig struct {
	Name           string
	BaseURL        string
	APIKey         string
	ClassifyModel  string // full model used for classification
	PicksModel     string // cheaper model used for picks rationale
	SupportsVision bool
	TimeoutSeconds int
}

// Configured reports whether the provider has enough settings to be used.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != "" && p.ClassifyModel != ""
}

// Config holds all application configuration
type Config struct {
	Port       string
	MongoURI   string
	RedisURL   string
	Production bool

	Primary  ProviderConfig
	Fallback ProviderConfig

	// Scheduler defaults; per-user config overrides these
	DailyPicksTime string // "HH:MM"
	DecayDays      int

	// Picks defaults
	PicksTargetCount int // 3-5
	PicksMaxMinutes  int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "3001"),
		MongoURI:   getEnv("MONGODB_URI", "mongodb://localhost:27017/thoughtcap"),
		RedisURL:   getEnv("REDIS_URL", ""),
		Production: getEnv("ENVIRONMENT", "") == "production",

		Primary: ProviderConfig{
			Name:           getEnv("LLM_PRIMARY_NAME", "primary"),
			BaseURL:        getEnv("LLM_PRIMARY_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         getEnv("LLM_PRIMARY_API_KEY", ""),
			ClassifyModel:  getEnv("LLM_PRIMARY_CLASSIFY_MODEL", "gpt-4o"),
			PicksModel:     getEnv("LLM_PRIMARY_PICKS_MODEL", "gpt-4o-mini"),
			SupportsVision: getBoolEnv("LLM_PRIMARY_VISION", true),
			TimeoutSeconds: getIntEnv("LLM_PRIMARY_TIMEOUT_SECONDS", 60),
		},
		Fallback: ProviderConfig{
			Name:           getEnv("LLM_FALLBACK_NAME", "fallback"),
			BaseURL:        getEnv("LLM_FALLBACK_BASE_URL", ""),
			APIKey:         getEnv("LLM_FALLBACK_API_KEY", ""),
			ClassifyModel:  getEnv("LLM_FALLBACK_CLASSIFY_MODEL", ""),
			PicksModel:     getEnv("LLM_FALLBACK_PICKS_MODEL", ""),
			SupportsVision: getBoolEnv("LLM_FALLBACK_VISION", false),
			TimeoutSeconds: getIntEnv("LLM_FALLBACK_TIMEOUT_SECONDS", 60),
		},

		DailyPicksTime: getEnv("DAILY_PICKS_TIME", "08:00"),
		DecayDays:      getIntEnv("DECAY_DAYS", 30),

		PicksTargetCount: getIntEnv("DAILY_PICKS_TARGET_COUNT", 4),
		PicksMaxMinutes:  getIntEnv("DAILY_PICKS_MAX_MINUTES", 180),
	}
}

// UserDefaults maps per-user config keys to the effective value that applies
// when the user has not set one. Reads of unset keys answer from this map.
func (c *Config) UserDefaults() map[string]string {
	return map[string]string{
		models.ConfigKeyUserBackground:      "",
		models.ConfigKeyClassifyPrompt:      "",
		models.ConfigKeyDecayDays:           strconv.Itoa(c.DecayDays),
		models.ConfigKeyDailyPicksTime:      c.DailyPicksTime,
		models.ConfigKeyPicksTargetCount:    strconv.Itoa(c.PicksTargetCount),
		models.ConfigKeyPicksMaxMinutes:     strconv.Itoa(c.PicksMaxMinutes),
		models.ConfigKeyNotificationEnabled: "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
