package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukerupert/calorie-tracker/internal/parser"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil), "/home/alex")
	if err != nil {
		t.Fatalf("from env: %v", err)
	}

	if cfg.DataDir != filepath.Join("/home/alex", ".daily-calorie-tracker") {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join(cfg.DataDir, "calories.db") {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.Backup.Dir != filepath.Join(cfg.DataDir, "backups") {
		t.Errorf("backup dir = %q", cfg.Backup.Dir)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MatchMode != parser.MatchCatalogOrder {
		t.Errorf("match mode = %q, want %q", cfg.MatchMode, parser.MatchCatalogOrder)
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("location = %q, want UTC", cfg.Location)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"CALORIE_TRACKER_DATA_DIR":          "/data",
		"CALORIE_TRACKER_LOG_LEVEL":         "debug",
		"CALORIE_TRACKER_LOG_FORMAT":        "json",
		"CALORIE_TRACKER_MATCH_MODE":        "leftmost",
		"CALORIE_TRACKER_BACKUP_PASSPHRASE": "secret",
		"CALORIE_TRACKER_BACKUP_S3_BUCKET":  "meals",
		"CALORIE_TRACKER_BACKUP_S3_REGION":  "eu-west-1",
	}), "/home/alex")
	if err != nil {
		t.Fatalf("from env: %v", err)
	}

	if cfg.DBPath != filepath.Join("/data", "calories.db") {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MatchMode != parser.MatchLeftmostLongest {
		t.Errorf("match mode = %q, want %q", cfg.MatchMode, parser.MatchLeftmostLongest)
	}
	if cfg.Backup.Passphrase != "secret" || cfg.Backup.S3.Bucket != "meals" || cfg.Backup.S3.Region != "eu-west-1" {
		t.Errorf("backup = %+v", cfg.Backup)
	}
}

func TestFromEnvExplicitDBPath(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"CALORIE_TRACKER_DB_PATH": "/tmp/meals.db",
	}), "/home/alex")
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.DBPath != "/tmp/meals.db" {
		t.Errorf("db path = %q, want /tmp/meals.db", cfg.DBPath)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []map[string]string{
		{"CALORIE_TRACKER_MATCH_MODE": "fuzzy"},
		{"CALORIE_TRACKER_TZ": "Mars/Olympus_Mons"},
	}
	for _, env := range tests {
		if _, err := FromEnv(envMap(env), "/home/alex"); err == nil {
			t.Errorf("FromEnv(%v) expected error", env)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "CALORIE_TRACKER_LOG_LEVEL=warn\nCALORIE_TRACKER_DB_PATH=/srv/meals.db\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CALORIE_TRACKER_ENV_FILE", envFile)
	t.Setenv("CALORIE_TRACKER_LOG_LEVEL", "")
	t.Setenv("CALORIE_TRACKER_DB_PATH", "")
	os.Unsetenv("CALORIE_TRACKER_LOG_LEVEL")
	os.Unsetenv("CALORIE_TRACKER_DB_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q, want warn", cfg.LogLevel)
	}
	if cfg.DBPath != "/srv/meals.db" {
		t.Errorf("db path = %q, want /srv/meals.db", cfg.DBPath)
	}
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	t.Setenv("CALORIE_TRACKER_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	if _, err := Load(); err != nil {
		t.Fatalf("load without env file: %v", err)
	}
}
