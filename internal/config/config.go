package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Addr string

	// Public base URL used in join links and QR codes
	BaseURL string

	// Storage
	StoreBackend string // "memory" or "sqlite"
	SQLitePath   string

	// Game pacing
	TotalRounds       int
	PlanningSeconds   int
	ResolutionSeconds int
	WarningSeconds    int

	// Housekeeping
	IdleExpiry    time.Duration
	SweepInterval time.Duration

	// Static catalogs
	DataDir string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:    envStr("ADDR", ":8080"),
		BaseURL: envStr("BASE_URL", "http://localhost:8080"),

		StoreBackend: envStr("STORE_BACKEND", "memory"),
		SQLitePath:   envStr("SQLITE_PATH", "postmaster.db"),

		TotalRounds:       envInt("TOTAL_ROUNDS", 3),
		PlanningSeconds:   envInt("PLANNING_SECONDS", 300),
		ResolutionSeconds: envInt("RESOLUTION_SECONDS", 120),
		WarningSeconds:    envInt("WARNING_SECONDS", 15),

		IdleExpiry:    envDuration("IDLE_EXPIRY", 2*time.Hour),
		SweepInterval: envDuration("SWEEP_INTERVAL", 5*time.Minute),

		DataDir: envStr("DATA_DIR", "data"),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
