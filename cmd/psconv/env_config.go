package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-psconv/internal/config"
)

// ErrInvalidEnvValue is returned when a PSCONV_* variable cannot be parsed.
var ErrInvalidEnvValue = errors.New("invalid environment variable")

// envFileVar names an explicit .env file to load instead of ./.env.
const envFileVar = "PSCONV_ENV_FILE"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // PSCONV_CONFIG: config file name or path
	Format     string // PSCONV_FORMAT: pdf, ps
	Workers    int    // PSCONV_WORKERS: parallel Ghostscript processes
	Timeout    string // PSCONV_TIMEOUT: per-file timeout

	// Tier 2 - Engine location
	Binary         string // PSCONV_GS: gs executable
	Library        string // PSCONV_LIBGS: libgs path
	AcquireTimeout string // PSCONV_ACQUIRE_TIMEOUT: max wait for a slot

	// Tier 3 - Output and logging
	OutputDir string // PSCONV_OUTPUT_DIR: default output directory
	PaperSize string // PSCONV_PAPER_SIZE: letter, a4, ...
	LogLevel  string // PSCONV_LOG_LEVEL: debug, info, warn, error
	LogFormat string // PSCONV_LOG_FORMAT: console, json
}

// knownEnvVars lists valid PSCONV_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"PSCONV_CONFIG":  true,
	"PSCONV_FORMAT":  true,
	"PSCONV_WORKERS": true,
	"PSCONV_TIMEOUT": true,
	// Tier 2 - Engine location
	"PSCONV_GS":              true,
	"PSCONV_LIBGS":           true,
	"PSCONV_ACQUIRE_TIMEOUT": true,
	// Tier 3 - Output and logging
	"PSCONV_OUTPUT_DIR": true,
	"PSCONV_PAPER_SIZE": true,
	"PSCONV_LOG_LEVEL":  true,
	"PSCONV_LOG_FORMAT": true,
	// Read by loadDotEnv
	envFileVar: true,
}

// loadDotEnv loads PSCONV_ENV_FILE, or ./.env when that is unset, into the
// process environment. Variables already set are never overridden.
// A missing ./.env is silently ignored; any other failure is a warning.
func loadDotEnv(w io.Writer) {
	path := os.Getenv(envFileVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return
	}
	fmt.Fprintf(w, "warning: loading %s: %v\n", path, err)
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized PSCONV_* values.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("PSCONV_CONFIG"),
		Format:     os.Getenv("PSCONV_FORMAT"),
		Timeout:    os.Getenv("PSCONV_TIMEOUT"),
		// Tier 2
		Binary:         os.Getenv("PSCONV_GS"),
		Library:        os.Getenv("PSCONV_LIBGS"),
		AcquireTimeout: os.Getenv("PSCONV_ACQUIRE_TIMEOUT"),
		// Tier 3
		OutputDir: os.Getenv("PSCONV_OUTPUT_DIR"),
		PaperSize: os.Getenv("PSCONV_PAPER_SIZE"),
		LogLevel:  os.Getenv("PSCONV_LOG_LEVEL"),
		LogFormat: os.Getenv("PSCONV_LOG_FORMAT"),
	}

	// Parse int for workers
	if workers := os.Getenv("PSCONV_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("%w: PSCONV_WORKERS=%q (must be a non-negative integer)", ErrInvalidEnvValue, workers)
		}
		cfg.Workers = w
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized PSCONV_* variables.
// Helps catch typos like PSCONV_WORKER instead of PSCONV_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PSCONV_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Any variable that is set replaces the config file value, giving:
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Timeout != "" {
		cfg.Engine.Timeout = env.Timeout
	}

	// Tier 2
	if env.Binary != "" {
		cfg.Engine.Binary = env.Binary
	}
	if env.Library != "" {
		cfg.Engine.Library = env.Library
	}
	if env.AcquireTimeout != "" {
		cfg.Engine.AcquireTimeout = env.AcquireTimeout
	}

	// Tier 3
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PaperSize != "" {
		cfg.Document.PaperSize = env.PaperSize
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
