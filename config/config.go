package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
// CLI flags in cmd/prep default to these values, so env sets the baseline and
// flags override per run.
type Config struct {
	// Batch inputs
	ManifestPath string
	InputDir     string
	OutputDir    string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	ProgressAddr  string
	WebhookURL    string

	// Pipeline
	Workers int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ManifestPath: getEnv("MANIFEST_PATH", "data/manifest.txt"),
		InputDir:     getEnv("INPUT_DIR", "data/raw"),
		OutputDir:    getEnv("OUTPUT_DIR", "data/prepared"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/bars.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		ProgressAddr:  getEnv("PROGRESS_ADDR", ""),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),

		Workers: getEnvInt("WORKERS", 1),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
