package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultForecastHours = 8

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath string

	// Seed fixes the jitter sequence of every run. Zero means a fresh seed
	// per call.
	Seed                 int64
	DefaultForecastHours int
	SnapshotPath         string
	HTTPAddr             string
	EnableMermaidCharts  bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir), nil
}

func fromEnv(exeDir string) *AppConfig {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	seed, err := strconv.ParseInt(getEnv("SIM_SEED", "0"), 10, 64)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed SIM_SEED")
		seed = 0
	}

	hours := getEnvInt("DEFAULT_FORECAST_HOURS", defaultForecastHours)
	if hours < 1 || hours > 24 {
		log.Warn().Int("hours", hours).Msg("DEFAULT_FORECAST_HOURS outside 1-24, using default")
		hours = defaultForecastHours
	}

	snapshot := getEnv("SNAPSHOT_PATH", "")
	if snapshot != "" && !filepath.IsAbs(snapshot) {
		snapshot = filepath.Join(dataPath, snapshot)
	}

	return &AppConfig{
		DataPath:             dataPath,
		Seed:                 seed,
		DefaultForecastHours: hours,
		SnapshotPath:         snapshot,
		HTTPAddr:             getEnv("HTTP_ADDR", ":8000"),
		EnableMermaidCharts:  getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
