package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort string

	UpstreamBaseURL string
	UpstreamAuthURL string
	UpstreamAPIKey  string

	JWTSecret    string
	TokenExpires time.Duration

	OrderPollInterval time.Duration
	SurveyPromptDelay time.Duration
	BadgePollInterval time.Duration
	BadgeStaleWindow  time.Duration

	TaxRatePercent float64
	OpeningTime    string
	ClosingTime    string

	TelegramBotToken  string
	TelegramAdminChat string
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		UpstreamBaseURL:   getEnv("UPSTREAM_BASE_URL", "http://localhost:9000/api"),
		UpstreamAuthURL:   getEnv("UPSTREAM_AUTH_URL", "http://localhost:9000/api/auth/token"),
		UpstreamAPIKey:    getEnv("UPSTREAM_API_KEY", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenExpires:      getEnvDuration("JWT_TTL_HOURS", 24) * time.Hour,
		OrderPollInterval: getEnvDuration("ORDER_POLL_SECONDS", 5) * time.Second,
		SurveyPromptDelay: getEnvDuration("SURVEY_PROMPT_DELAY_SECONDS", 3) * time.Second,
		BadgePollInterval: getEnvDuration("BADGE_POLL_SECONDS", 30) * time.Second,
		BadgeStaleWindow:  getEnvDuration("BADGE_STALE_SECONDS", 25) * time.Second,
		TaxRatePercent:    getEnvFloat("TAX_RATE_PERCENT", 10),
		OpeningTime:       getEnv("OPENING_TIME", "09:00"),
		ClosingTime:       getEnv("CLOSING_TIME", "23:00"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
