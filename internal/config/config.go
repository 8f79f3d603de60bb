package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	MongoDB  string
	Port     string
	GinMode  string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OpenAIKey        string
	OpenAIBaseURL    string
	EmbeddingModel   string
	VectorIndex      string
	VectorCandidates int

	ExpoPushURL     string
	ExpoAccessToken string

	AdminJWTSecret string
	AdminJWTIssuer string

	DeepLinkScheme string
	AppStoreURL    string
	PlayStoreURL   string
	WebFallbackURL string

	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads the environment, loading a local .env first when one exists.
// The returned note describes where values came from so the caller can log it.
func LoadConfig() (*Config, string) {
	note := "using system environment variables"
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			note = "error loading .env file: " + err.Error()
		} else {
			note = ".env file loaded"
		}
	}

	return &Config{
		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "gruby"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),

		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		VectorIndex:      getEnv("VECTOR_INDEX", ""),
		VectorCandidates: getEnvInt("VECTOR_CANDIDATES", 500),

		ExpoPushURL:     getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		ExpoAccessToken: getEnv("EXPO_ACCESS_TOKEN", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWTIssuer: getEnv("ADMIN_JWT_ISSUER", ""),

		DeepLinkScheme: getEnv("DEEP_LINK_SCHEME", "gruby"),
		AppStoreURL:    getEnv("APP_STORE_URL", "https://apps.apple.com/app/gruby"),
		PlayStoreURL:   getEnv("PLAY_STORE_URL", "https://play.google.com/store/apps/details?id=com.gruby.app"),
		WebFallbackURL: getEnv("WEB_FALLBACK_URL", "https://gruby.app"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}, note
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is required")
	}
	if c.VectorCandidates < 1 {
		return errors.New("VECTOR_CANDIDATES must be positive")
	}
	return nil
}

// EmbeddingsEnabled is false when no embedding API key is configured.
func (c *Config) EmbeddingsEnabled() bool {
	return c.OpenAIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
