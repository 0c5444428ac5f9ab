package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-psconv/internal/fileutil"
	"github.com/alnah/go-psconv/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxPaperSizeLength = 20   // "executive", "11x17"
	MaxDeviceLength    = 64   // Ghostscript device names are short
	MaxExtraArgLength  = 1024 // One -d/-s switch
	MaxExtraArgs       = 64
	MaxWorkers         = 256
)

// Accepted values for enumerated fields.
const (
	FormatPDF = "pdf"
	FormatPS  = "ps"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration for the psconv command.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Workers  int            `yaml:"workers"` // 0 = auto, 1 = in-process
	Output   OutputConfig   `yaml:"output"`
	Document DocumentConfig `yaml:"document"`
	Log      LogConfig      `yaml:"log"`
}

// EngineConfig locates Ghostscript and bounds its runs.
type EngineConfig struct {
	Binary         string `yaml:"binary"`         // gs executable (empty = gs in PATH)
	Library        string `yaml:"library"`        // libgs path for in-process mode (empty = system default)
	Timeout        string `yaml:"timeout"`        // Per-file limit, Go duration (empty = none)
	AcquireTimeout string `yaml:"acquireTimeout"` // Max wait for a free slot (empty = unbounded)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Format     string `yaml:"format"`     // "pdf" or "ps" (default: "pdf")
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// DocumentConfig holds per-document engine settings.
type DocumentConfig struct {
	PaperSize     string    `yaml:"paperSize"`     // "letter", "a4", ... (default: "letter")
	Device        string    `yaml:"device"`        // Override the format's output device
	LanguageLevel int       `yaml:"languageLevel"` // PostScript output, 1-3 (0 = 3)
	ExtraArgs     []string  `yaml:"extraArgs"`     // Extra -d/-s switches
	PDF           PDFConfig `yaml:"pdf"`
}

// PDFConfig holds settings that only apply to PDF output.
type PDFConfig struct {
	CompatibilityLevel string `yaml:"compatibilityLevel"` // "1.4" by default
	Settings           string `yaml:"settings"`           // screen, ebook, printer, prepress, default
	ColorModel         string `yaml:"colorModel"`         // rgb, cmyk, gray
	AutoRotate         string `yaml:"autoRotate"`         // none, all, pagebypage, off
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: "info")
	Format string `yaml:"format"` // console, json (default: "console")
}

// Validate checks field lengths and enumerated values. Values that need the
// converter's own tables (paper sizes, PDF presets) are checked when the
// command builds conversion options.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("engine.binary", c.Engine.Binary, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("engine.library", c.Engine.Library, MaxPathLength); err != nil {
		return err
	}
	if _, err := parseDuration("engine.timeout", c.Engine.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("engine.acquireTimeout", c.Engine.AcquireTimeout); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	// Validate output fields
	if c.Output.Format != "" {
		switch strings.ToLower(c.Output.Format) {
		case FormatPDF, FormatPS:
			// valid
		default:
			return fmt.Errorf("%w: output.format: %q (must be pdf or ps)", ErrInvalidValue, c.Output.Format)
		}
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	// Validate document fields
	if err := validateFieldLength("document.paperSize", c.Document.PaperSize, MaxPaperSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.device", c.Document.Device, MaxDeviceLength); err != nil {
		return err
	}
	if c.Document.LanguageLevel < 0 || c.Document.LanguageLevel > 3 {
		return fmt.Errorf("%w: document.languageLevel: must be between 1 and 3, got %d", ErrInvalidValue, c.Document.LanguageLevel)
	}
	if len(c.Document.ExtraArgs) > MaxExtraArgs {
		return fmt.Errorf("%w: document.extraArgs: %d entries (max %d)", ErrInvalidValue, len(c.Document.ExtraArgs), MaxExtraArgs)
	}
	for i, arg := range c.Document.ExtraArgs {
		if err := validateFieldLength(fmt.Sprintf("document.extraArgs[%d]", i), arg, MaxExtraArgLength); err != nil {
			return err
		}
	}

	// Validate log fields
	if c.Log.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: log.level: %q (must be one of %s)", ErrInvalidValue, c.Log.Level, strings.Join(logLevels, ", "))
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case LogFormatConsole, LogFormatJSON:
			// valid
		default:
			return fmt.Errorf("%w: log.format: %q (must be console or json)", ErrInvalidValue, c.Log.Format)
		}
	}

	return nil
}

// Timeout returns engine.timeout as a duration (0 when unset).
// The config must have passed Validate.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration("engine.timeout", c.Engine.Timeout)
	return d
}

// AcquireTimeout returns engine.acquireTimeout as a duration (0 when unset).
// The config must have passed Validate.
func (c *Config) AcquireTimeout() time.Duration {
	d, _ := parseDuration("engine.acquireTimeout", c.Engine.AcquireTimeout)
	return d
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func parseDuration(fieldName, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, fieldName, value)
	}
	return d, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Workers:  0,
		Output:   OutputConfig{Format: FormatPDF},
		Document: DocumentConfig{PaperSize: "letter"},
		Log:      LogConfig{Level: "info", Format: LogFormatConsole},
	}
}

// Marshal renders the config as YAML, suitable for a config file.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := yamlutil.ReadStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-psconv/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-psconv", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
