package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "fuel-tracker/internal/log"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds runtime configuration for the application.
type Config struct {
	Backend         string
	DataFile        string
	BackupDir       string
	SQLitePath      string
	ListenAddr      string
	Location        *time.Location
	RecentLimit     int
	LogLevel        slog.Level
	LogFormat       string
	TsnetEnabled    bool
	TsnetDir        string
	TsnetHostname   string
	TsnetAuthKey    string
	TsnetListenAddr string
}

const (
	defaultDataFile    = "data/fuel.json"
	defaultBackupDir   = "data/backups"
	defaultSQLitePath  = "data/fuel.db"
	defaultListenAddr  = "127.0.0.1:8080"
	defaultTimezone    = "Local"
	defaultRecentLimit = 3
	defaultTsnetDir    = "data/tsnet"
	defaultTsnetListen = ":443"
	maxRecentLimit     = 100
)

// LoadDotEnv reads KEY=value pairs from path into the environment. Variables
// that are already set win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from environment variables, falling back to defaults
// when values are not provided.
func Load() (*Config, error) {
	cfg := &Config{
		Backend:         strings.ToLower(getEnv("FUEL_BACKEND", BackendJSON)),
		DataFile:        getEnv("FUEL_DATA_FILE", defaultDataFile),
		BackupDir:       getEnv("FUEL_BACKUP_DIR", defaultBackupDir),
		SQLitePath:      getEnv("FUEL_SQLITE_PATH", defaultSQLitePath),
		ListenAddr:      getEnv("FUEL_LISTEN_ADDR", defaultListenAddr),
		TsnetDir:        getEnv("FUEL_TSNET_DIR", defaultTsnetDir),
		TsnetHostname:   getEnv("FUEL_TSNET_HOSTNAME", "fuel"),
		TsnetListenAddr: getEnv("FUEL_TSNET_LISTEN_ADDR", defaultTsnetListen),
		TsnetAuthKey:    os.Getenv("FUEL_TSNET_AUTHKEY"),
	}

	switch cfg.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return nil, fmt.Errorf("invalid value for FUEL_BACKEND: %q", cfg.Backend)
	}

	loc, err := loadLocation(getEnv("FUEL_TIMEZONE", defaultTimezone))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	limit, err := parseRecentLimit(os.Getenv("FUEL_RECENT_LIMIT"))
	if err != nil {
		return nil, err
	}
	cfg.RecentLimit = limit

	if cfg.LogLevel, err = applog.ParseLevel(os.Getenv("FUEL_LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("invalid value for FUEL_LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat, err = applog.ParseFormat(os.Getenv("FUEL_LOG_FORMAT")); err != nil {
		return nil, fmt.Errorf("invalid value for FUEL_LOG_FORMAT: %w", err)
	}

	if env := os.Getenv("FUEL_TSNET_ENABLED"); env != "" {
		enabled, err := parseBool(env)
		if err != nil {
			return nil, fmt.Errorf("invalid value for FUEL_TSNET_ENABLED: %q", env)
		}
		cfg.TsnetEnabled = enabled
	}

	if err := ensurePaths(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid value for FUEL_TIMEZONE: %w", err)
	}
	return loc, nil
}

func parseRecentLimit(value string) (int, error) {
	if value == "" {
		return defaultRecentLimit, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > maxRecentLimit {
		return 0, fmt.Errorf("invalid value for FUEL_RECENT_LIMIT: %q (want 1-%d)", value, maxRecentLimit)
	}
	return n, nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "1", "true", "TRUE", "True", "yes", "YES":
		return true, nil
	case "0", "false", "FALSE", "False", "no", "NO":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", value)
	}
}

func ensurePaths(cfg *Config) error {
	switch cfg.Backend {
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return fmt.Errorf("ensure sqlite dir: %w", err)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
			return fmt.Errorf("ensure data dir: %w", err)
		}
		if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
			return fmt.Errorf("ensure backup dir: %w", err)
		}
	}
	if cfg.TsnetEnabled && cfg.TsnetDir != "" {
		if err := os.MkdirAll(cfg.TsnetDir, 0o700); err != nil {
			return fmt.Errorf("ensure tsnet dir: %w", err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
