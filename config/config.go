package config

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	CORS_ORIGIN     string
	PUBLIC_BASE_URL string
	APP_URL         string

	UPLOAD_DIR string
	GCS_BUCKET string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
	ADMIN_EMAILS             []string

	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_FROM     string
	SMTP_PASSWORD string
	ADMIN_EMAIL   string

	NATS_URL  string
	LOG_LEVEL string

	BOOTSTRAP_ADMIN_USERNAME string
	BOOTSTRAP_ADMIN_PASSWORD string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")
	PUBLIC_BASE_URL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+PORT), "/")
	APP_URL = strings.TrimRight(getEnv("APP_URL", CORS_ORIGIN), "/")

	UPLOAD_DIR = getEnv("UPLOAD_DIR", "./uploads")
	GCS_BUCKET = getEnv("GCS_BUCKET", "")

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")

	// Google sign-in is optional for the console
	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")
	ADMIN_EMAILS = splitList(getEnv("ADMIN_EMAILS", ""))

	SMTP_HOST = getEnv("SMTP_HOST", "")
	SMTP_PORT = getEnv("SMTP_PORT", "587")
	SMTP_FROM = getEnv("SMTP_FROM", "")
	SMTP_PASSWORD = getEnv("SMTP_PASSWORD", "")
	ADMIN_EMAIL = getEnv("ADMIN_EMAIL", "")

	NATS_URL = getEnv("NATS_URL", "")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")

	BOOTSTRAP_ADMIN_USERNAME = getEnv("BOOTSTRAP_ADMIN_USERNAME", "")
	BOOTSTRAP_ADMIN_PASSWORD = getEnv("BOOTSTRAP_ADMIN_PASSWORD", "")
}

// GoogleEnabled reports whether the Google sign-in routes should be served.
func GoogleEnabled() bool {
	return GOOGLE_CLIENT_ID != "" && GOOGLE_CLIENT_SECRET != "" && GOOGLE_REDIRECT_URL != ""
}

// IsAdminEmail checks the Google sign-in allow-list.
func IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range ADMIN_EMAILS {
		if e == email {
			return true
		}
	}
	return false
}

func LogLevel() slog.Level {
	switch strings.ToLower(LOG_LEVEL) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
