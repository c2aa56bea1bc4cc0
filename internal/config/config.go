package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel    slog.Level
	LogFormat   string   // "text" or "json"
	Extension   string   // File name suffix of Markdown files
	JournalPath string   // SQLite journal; empty disables the journal
	SkipDirs    []string // Directory names not descended into
	KeepGoing   bool     // Continue with other files after a failure
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent directory, it is loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Extension:   getEnv("ANCHORNORM_EXT", ".md"),
		JournalPath: getEnv("ANCHORNORM_JOURNAL", ""),
		SkipDirs:    splitList(getEnv("ANCHORNORM_SKIP_DIRS", "")),
	}

	level, err := ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	keepGoing, err := strconv.ParseBool(getEnv("ANCHORNORM_KEEP_GOING", "false"))
	if err != nil {
		return nil, fmt.Errorf("ANCHORNORM_KEEP_GOING must be a boolean: %w", err)
	}
	cfg.KeepGoing = keepGoing

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureJournalDir(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that may have been overridden after Load.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return fmt.Errorf("markdown extension must start with a dot, got %q", c.Extension)
	}
	return nil
}

// EnsureJournalDir creates the parent directory of the journal database, if a
// journal is configured.
func (c *Config) EnsureJournalDir() error {
	if c.JournalPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.JournalPath), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	return nil
}

// ParseLevel parses a log level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
