package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AuthProviderJWT    = "jwt"
	AuthProviderGoogle = "google"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Auth
	AuthProvider   string
	JWTSecret      string
	GoogleClientID string
	AdminEmail     string

	// Limits
	SubmitRateLimit int
	WorkerCount     int

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "development"),
		DatabaseURL:     mustGetEnv("DATABASE_URL"),
		RedisURL:        mustGetEnv("REDIS_URL"),
		AuthProvider:    strings.ToLower(getEnvOrDefault("AUTH_PROVIDER", AuthProviderJWT)),
		AdminEmail:      getEnvOrDefault("ADMIN_EMAIL", "admin@example.com"),
		SubmitRateLimit: getEnvAsIntOrDefault("SUBMIT_RATE_LIMIT", 30),
		WorkerCount:     getEnvAsIntOrDefault("WORKER_COUNT", 2),
		SMTPHost:        getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:        getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:        getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:        getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:        getEnvOrDefault("SMTP_FROM", "noreply@quizhub.app"),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	switch cfg.AuthProvider {
	case AuthProviderJWT:
		cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	case AuthProviderGoogle:
		cfg.GoogleClientID = mustGetEnv("GOOGLE_CLIENT_ID")
	default:
		panic(fmt.Sprintf("unsupported AUTH_PROVIDER %q", cfg.AuthProvider))
	}

	return cfg
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
