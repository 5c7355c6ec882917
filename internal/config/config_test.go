package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestFromEnv_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	for _, key := range []string{"SIM_SEED", "DEFAULT_FORECAST_HOURS", "SNAPSHOT_PATH", "HTTP_ADDR", "ENABLE_MERMAID_CHARTS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := fromEnv("")

	if cfg.DataPath != dir {
		t.Errorf("unexpected data path: %+v", cfg)
	}
	if cfg.Seed != 0 || cfg.DefaultForecastHours != 8 || cfg.HTTPAddr != ":8000" || cfg.EnableMermaidCharts {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	// log files belong to LOGS_FOLDER, read by logging.Init
	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Errorf("config created a log directory: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SIM_SEED", "1234")
	t.Setenv("DEFAULT_FORECAST_HOURS", "12")
	t.Setenv("SNAPSHOT_PATH", "state.json")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")

	cfg := fromEnv("")

	if cfg.Seed != 1234 || cfg.DefaultForecastHours != 12 {
		t.Errorf("seed/hours = %d/%d", cfg.Seed, cfg.DefaultForecastHours)
	}
	if cfg.SnapshotPath != filepath.Join(dir, "state.json") {
		t.Errorf("snapshot path = %s", cfg.SnapshotPath)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" || !cfg.EnableMermaidCharts {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}

func TestFromEnv_RejectsOutOfRangeHorizon(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("DEFAULT_FORECAST_HOURS", "48")
	t.Setenv("SIM_SEED", "not-a-number")

	cfg := fromEnv("")
	if cfg.DefaultForecastHours != 8 {
		t.Errorf("expected fallback to 8, got %d", cfg.DefaultForecastHours)
	}
	if cfg.Seed != 0 {
		t.Errorf("expected malformed seed to be ignored, got %d", cfg.Seed)
	}
}

func TestGodotenvQuoting(t *testing.T) {
	content := `SNAPSHOT_PATH='queues "night shift".json'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `queues "night shift".json`
	if env["SNAPSHOT_PATH"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["SNAPSHOT_PATH"])
	}
}
