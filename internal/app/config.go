package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer        string // Issuer claim for minted tokens (default: ecjtu-api)
	MasterKeyFile string // Path to the token signing master key file (default: ./master.key)
	DatabaseFile  string // Path to SQLite database file (default: ./ecjtu.db)

	AccessTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)
	CacheTTL   time.Duration // Resource response cache lifetime (default: 5m)

	// CASBaseURL / JWXTBaseURL point the portal client at alternate hosts
	// (staging, test doubles). Empty means production.
	CASBaseURL  string
	JWXTBaseURL string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:        getEnvOrDefault("ECJTU_ISSUER", "ecjtu-api"),
		MasterKeyFile: getEnvOrDefault("ECJTU_MASTER_KEY_FILE", "master.key"),
		DatabaseFile:  getEnvOrDefault("ECJTU_DATABASE_FILE", "ecjtu.db"),

		AccessTTL:  getEnvDurationOrDefault("ECJTU_ACCESS_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("ECJTU_REFRESH_TTL", 7*24*time.Hour),
		CacheTTL:   getEnvDurationOrDefault("ECJTU_CACHE_TTL", 5*time.Minute),

		CASBaseURL:  os.Getenv("ECJTU_CAS_BASE_URL"),
		JWXTBaseURL: os.Getenv("ECJTU_JWXT_BASE_URL"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are taken as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
