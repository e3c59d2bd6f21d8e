package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string
	JWTExpiry time.Duration

	FedaPaySecretKey   string
	FedaPayEnvironment string
	FedaPayTimeout     time.Duration

	CORSAllowedOrigins []string
}

// LoadEnv reads configuration from the environment (and .env when present).
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBUser: getEnv("DB_USER", "root"),
		DBPass: getEnv("DB_PASS", ""),
		DBHost: getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName: getEnv("DB_NAME", "busbenin"),

		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),

		FedaPaySecretKey:   getEnv("FEDAPAY_SECRET_KEY", ""),
		FedaPayEnvironment: getEnv("FEDAPAY_ENV", "sandbox"),
		FedaPayTimeout:     parseDuration(getEnv("FEDAPAY_TIMEOUT", "30s"), 30*time.Second),

		CORSAllowedOrigins: parseStringList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseStringList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
