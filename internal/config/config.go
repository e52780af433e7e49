package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Blockchain RPC
	RPCWebsocketURL string
	RPCHTTPURL      string
	PackageAddress  string
	PollInterval    time.Duration
	EventBatchSize  int

	// Reconciliation sweep
	ReconcileCron    string
	ReconcileWorkers int

	// Sentry
	SentryDSN string

	// Server
	Host        string
	Port        string
	CORSOrigins string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "social_indexer"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RPCWebsocketURL: getEnv("RPC_WS_URL", "ws://localhost:9000"),
		RPCHTTPURL:      getEnv("RPC_HTTP_URL", "http://localhost:9000"),
		PackageAddress:  getEnv("PACKAGE_ADDRESS", ""),
		PollInterval:    parseDuration(getEnv("POLL_INTERVAL", "5s"), 5*time.Second),
		EventBatchSize:  getEnvInt("EVENT_BATCH_SIZE", 50),

		ReconcileCron:    getEnv("RECONCILE_CRON", "@every 10m"),
		ReconcileWorkers: getEnvInt("RECONCILE_WORKERS", 8),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
