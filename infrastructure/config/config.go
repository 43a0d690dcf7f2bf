package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the board needs at startup. Behavioral constants
// of the refresh cycle (cadence, thresholds, caps) are fixed in the board
// package and deliberately not configurable.
type Config struct {
	Addr       string
	SQLitePath string

	DispatchAPIBaseURL string
	DispatchAPIToken   string
	FactoryCode        string

	HTTPTimeout   time.Duration
	HTTPRetries   int
	FrameInterval time.Duration

	TrendPoints int
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:       getEnv("BOARD_ADDR", ":8080"),
		SQLitePath: getEnv("SQLITE_PATH", "dispatchboard.db"),

		DispatchAPIBaseURL: getEnv("DISPATCH_API_BASE_URL", ""),
		DispatchAPIToken:   getEnv("DISPATCH_API_TOKEN", ""),
		FactoryCode:        getEnv("FACTORY_CODE", ""),

		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		HTTPRetries:   getEnvInt("HTTP_RETRIES", 3),
		FrameInterval: time.Duration(getEnvInt("FRAME_INTERVAL_MS", 50)) * time.Millisecond,

		TrendPoints: getEnvInt("TREND_POINTS", 48),
	}

	if cfg.DispatchAPIBaseURL == "" {
		return Config{}, fmt.Errorf("DISPATCH_API_BASE_URL is required")
	}
	if cfg.HTTPRetries < 1 {
		cfg.HTTPRetries = 1
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 50 * time.Millisecond
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
