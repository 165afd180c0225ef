package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/calorie-tracker/internal/parser"
)

const (
	envPrefix      = "CALORIE_TRACKER_"
	defaultDirName = ".daily-calorie-tracker"
	dbFileName     = "calories.db"
	backupDirName  = "backups"
)

type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type BackupConfig struct {
	Dir        string
	Passphrase string
	S3         S3Config
}

type Config struct {
	DataDir   string
	DBPath    string
	LogLevel  string
	LogFormat string
	MatchMode parser.MatchMode
	Location  *time.Location
	Backup    BackupConfig
}

// Load reads an optional .env file (CALORIE_TRACKER_ENV_FILE, default ./.env)
// and then builds the config from the environment. Variables already set in
// the environment win over the file.
func Load() (Config, error) {
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return FromEnv(os.Getenv, home)
}

// FromEnv builds the config from getenv, resolving defaults against home.
func FromEnv(getenv func(string) string, home string) (Config, error) {
	get := func(key string) string { return getenv(envPrefix + key) }

	cfg := Config{
		DataDir:   get("DATA_DIR"),
		DBPath:    get("DB_PATH"),
		LogLevel:  get("LOG_LEVEL"),
		LogFormat: get("LOG_FORMAT"),
		Backup: BackupConfig{
			Dir:        get("BACKUP_DIR"),
			Passphrase: get("BACKUP_PASSPHRASE"),
			S3: S3Config{
				Endpoint:  get("BACKUP_S3_ENDPOINT"),
				Bucket:    get("BACKUP_S3_BUCKET"),
				Region:    get("BACKUP_S3_REGION"),
				AccessKey: get("BACKUP_S3_ACCESS_KEY"),
				SecretKey: get("BACKUP_S3_SECRET_KEY"),
			},
		},
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(home, defaultDirName)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, dbFileName)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = filepath.Join(cfg.DataDir, backupDirName)
	}
	if cfg.Backup.S3.Region == "" {
		cfg.Backup.S3.Region = "us-east-1"
	}

	mode, ok := parser.ParseMatchMode(get("MATCH_MODE"))
	if !ok {
		return Config{}, fmt.Errorf("%sMATCH_MODE must be %q or %q", envPrefix, parser.MatchCatalogOrder, parser.MatchLeftmostLongest)
	}
	cfg.MatchMode = mode

	tz := get("TZ")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}
