// Package config reads yard CLI defaults from YARD_* environment variables
// and optional .env files.
package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/syn-ce/os/internal/logging"
	"github.com/syn-ce/os/internal/trace"
)

// Config holds defaults for the yard CLI. Command-line flags override it.
type Config struct {
	// DB is the audit database path from YARD_DB. Empty disables persistence.
	DB string `env:"YARD_DB"`
	// LogLevel is the logging level from YARD_LOG_LEVEL.
	LogLevel string `env:"YARD_LOG_LEVEL" envDefault:"info"`
	// Format is the output format from YARD_FORMAT (text or json).
	Format string `env:"YARD_FORMAT" envDefault:"text"`
	// Table is the action table style from YARD_TABLE (ascii or markdown).
	Table string `env:"YARD_TABLE" envDefault:"ascii"`
}

// Load parses the configuration. Variables in the env files are applied in
// order, later files overriding earlier ones; the process environment wins
// over all files.
func Load(envFiles ...string) (Config, error) {
	fileVars, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	return FromVars(mergeVars(fileVars, osVars()))
}

// FromVars parses the configuration from an explicit variable set.
func FromVars(vars map[string]string) (Config, error) {
	var cfg Config
	if err := envparse.ParseWithOptions(&cfg, envparse.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("YARD_FORMAT: must be text or json, got %q", c.Format)
	}
	if _, err := trace.ParseMode(c.Table); err != nil {
		return fmt.Errorf("YARD_TABLE: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// TableMode returns the parsed table style.
func (c Config) TableMode() trace.Mode {
	m, _ := trace.ParseMode(c.Table)
	return m
}

func readEnvFiles(paths []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, path := range paths {
		if path == "" {
			continue
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		maps.Copy(out, vars)
	}
	return out, nil
}

func osVars() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

// mergeVars merges variable sets, later sets overriding earlier keys.
func mergeVars(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, s := range sets {
		maps.Copy(out, s)
	}
	return out
}
