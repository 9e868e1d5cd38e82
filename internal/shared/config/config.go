package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"nutricoach-backend/internal/shared/telemetry"
)

const (
	defaultPrimaryURL    = "https://api.openai.com/v1/chat/completions"
	defaultPrimaryModel  = "gpt-4o"
	defaultLightModel    = "gpt-4o-mini"
	defaultFallbackURL   = "https://api.ollamahub.com/v1/chat/completions"
	defaultFallbackModel = "llama3:8b"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	RedisURL        string
	HistoryAPIToken string
	CacheTTL        time.Duration

	PrimaryLLMURL         string
	PrimaryLLMAPIKey      string
	PrimaryLLMModel       string
	PrimaryLLMLightModel  string
	PrimaryLLMTemperature float64

	FallbackLLMURL         string
	FallbackLLMAPIKey      string
	FallbackLLMModel       string
	FallbackLLMTemperature float64
	FallbackLLMMaxTokens   int

	LLMTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	primaryKey := getEnv("PRIMARY_LLM_API_KEY", os.Getenv("OPENAI_API_KEY"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		DatabaseURL:     dbURL,
		RedisURL:        getEnv("REDIS_URL", ""),
		HistoryAPIToken: getEnv("HISTORY_API_TOKEN", ""),
		CacheTTL:        getDuration("LLM_CACHE_TTL", 0),

		PrimaryLLMURL:         getEnv("PRIMARY_LLM_URL", defaultPrimaryURL),
		PrimaryLLMAPIKey:      primaryKey,
		PrimaryLLMModel:       getEnv("PRIMARY_LLM_MODEL", defaultPrimaryModel),
		PrimaryLLMLightModel:  getEnv("PRIMARY_LLM_LIGHT_MODEL", defaultLightModel),
		PrimaryLLMTemperature: getFloat("PRIMARY_LLM_TEMPERATURE", 0.4),

		FallbackLLMURL:         getEnv("FALLBACK_LLM_URL", defaultFallbackURL),
		FallbackLLMAPIKey:      getEnv("FALLBACK_LLM_API_KEY", ""),
		FallbackLLMModel:       getEnv("FALLBACK_LLM_MODEL", defaultFallbackModel),
		FallbackLLMTemperature: getFloat("FALLBACK_LLM_TEMPERATURE", 0.4),
		FallbackLLMMaxTokens:   getInt("FALLBACK_LLM_MAX_TOKENS", 3000),

		LLMTimeout: time.Duration(getInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

// IsDevLike reports whether env tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key})
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key})
		return def
	}
	return val
}

// getDuration accepts Go durations ("10m") or bare seconds ("600").
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
