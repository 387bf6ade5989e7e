// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Location      *time.Location
	DatabasePath  string
	SettingsPath  string
	LogPath       string
	LogLevel      string
	MetricsAddr   string
	SaveTimeout   time.Duration
	DevTools      bool
	Notifications bool
}

// Default values
const (
	defaultSaveTimeout = 5 * time.Second
	defaultLogLevel    = "info"
	appDirName         = "coinflip"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	loc, err := parseLocation(getEnvString("TIMEZONE", ""))
	if err != nil {
		return nil, err
	}

	dir := getDefaultDataDir()
	cfg := &Config{
		Location:      loc,
		DatabasePath:  getEnvString("DATABASE_PATH", filepath.Join(dir, "coinflip.db")),
		SettingsPath:  getEnvString("SETTINGS_PATH", filepath.Join(dir, "settings.json")),
		LogPath:       getEnvString("LOG_PATH", filepath.Join(dir, "coinflip.log")),
		LogLevel:      getEnvString("LOG_LEVEL", defaultLogLevel),
		MetricsAddr:   getEnvString("METRICS_ADDR", ""),
		SaveTimeout:   getEnvDuration("SAVE_TIMEOUT", defaultSaveTimeout),
		DevTools:      getEnvBool("DEV_TOOLS", false),
		Notifications: getEnvBool("NOTIFICATIONS", true),
	}

	for _, p := range []string{cfg.DatabasePath, cfg.SettingsPath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
		)
	}

	return paths
}

// getDefaultDataDir returns the directory holding the database, settings and log.
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", appDirName)
}

// parseLocation resolves an IANA zone name. Empty means the system zone.
func parseLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts strconv.ParseBool values plus "yes"/"no" and "on"/"off".
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
