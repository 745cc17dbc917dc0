package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	PortalBaseURL string
	PortalTimeout time.Duration
	PortalRetries int

	RedisAddr        string
	RateLimitBackend string
	RateLimitPerMin  int

	CORSOrigins []string

	// ServiceAuthKey enables the bearer-token gate on /v1 when non-empty.
	ServiceAuthKey    string
	ServiceAuthIssuer string
	ServiceAuthTTL    time.Duration
}

// Load returns application config populated from environment variables with
// sensible defaults. A .env file is honored when present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8082"),

		PortalBaseURL: getEnv("PORTAL_BASE_URL", "https://kiet.cybervidya.net/api"),
		PortalTimeout: durationEnv("PORTAL_TIMEOUT", 10*time.Second),
		PortalRetries: intEnv("PORTAL_RETRIES", 2),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 30),

		CORSOrigins: splitEnv("CORS_ORIGINS", "http://localhost:3000"),

		ServiceAuthKey:    getEnv("SERVICE_AUTH_KEY", ""),
		ServiceAuthIssuer: getEnv("SERVICE_AUTH_ISSUER", "campuslens"),
		ServiceAuthTTL:    durationEnv("SERVICE_AUTH_TTL", 12*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
