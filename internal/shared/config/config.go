package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	SerpAPIKey  string
	SerpBaseURL string

	GeminiAPIKey     string
	GeminiModelFlash string
	GeminiModelPro   string

	ChromeBin       string
	PhotoCheckLimit int

	ReviewsTimeout time.Duration
	SocialTimeout  time.Duration
	PhotosTimeout  time.Duration

	ScreenshotStore string
	ScreenshotDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}
	if os.Getenv("SERP_API_KEY") == "" {
		log.Printf("SERP_API_KEY is empty; startup will fail without it")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,

		SerpAPIKey:  os.Getenv("SERP_API_KEY"),
		SerpBaseURL: getEnv("SERPAPI_BASE_URL", "https://serpapi.com/search.json"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModelFlash: getEnv("GEMINI_MODEL_FLASH", "gemini-1.5-flash"),
		GeminiModelPro:   getEnv("GEMINI_MODEL_PRO", "gemini-1.5-pro"),

		ChromeBin:       getEnv("CHROME_BIN", ""),
		PhotoCheckLimit: getEnvInt("PHOTO_CHECK_LIMIT", 100),

		ReviewsTimeout: getEnvDuration("REVIEWS_TIMEOUT", 60*time.Second),
		SocialTimeout:  getEnvDuration("SOCIAL_TIMEOUT", 30*time.Second),
		PhotosTimeout:  getEnvDuration("PHOTOS_TIMEOUT", 300*time.Second),

		ScreenshotStore: normalizeStoreType(getEnv("SCREENSHOT_STORE", "local")),
		ScreenshotDir:   getEnv("SCREENSHOT_DIR", "./data/screenshots"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
