// =============================================================================
// CSV Comma Stripper - Configuration Module
// =============================================================================
//
// This module is responsible for loading and merging the run configuration.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Built-in defaults
//   2. YAML config file (csvstrip.yaml or --config)
//   3. Environment variables (optionally loaded from a .env file)
//   4. Command-line flags (applied by the cmd package)
//
// The configuration is always passed explicitly into the stripper; nothing in
// the core reads global state.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config path used when --config is not given.
// It is allowed to be absent.
const DefaultConfigFile = "csvstrip.yaml"

// DefaultColumn is the header targeted when no column is configured.
const DefaultColumn = "Description"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CSVSTRIP_"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the settings for one stripper run.
type Config struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputPath is a single file to process when no paths are given on the
	// command line.
	InputPath string `yaml:"input_path"`

	// InputDir is scanned for files matching FilePattern when neither
	// command-line paths nor InputPath are given.
	InputDir string `yaml:"input_dir"`

	// FilePattern is the glob used with InputDir.
	// Default: "*.csv"
	FilePattern string `yaml:"file_pattern"`

	// ColumnName is the header of the column whose commas are removed.
	// Matched exactly: case-sensitive, no trimming.
	// Default: "Description"
	ColumnName string `yaml:"column_name"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputSuffix is inserted between the input file's stem and extension.
	// Default: "_no-<column>-commas", lowercased with spaces turned to dashes,
	// which gives "_no-description-commas" for the default column.
	OutputSuffix string `yaml:"output_suffix"`

	// OutputDir receives the output files. Empty means next to the input.
	OutputDir string `yaml:"output_dir"`

	// UseCRLF terminates CSV output lines with \r\n.
	// Default: true
	UseCRLF *bool `yaml:"use_crlf"`

	// SummaryDir, when set, receives a processing summary after each run.
	SummaryDir string `yaml:"summary_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds how many files are processed at once.
	// A single file is always processed sequentially.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the slog handler: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// SeqURL, when set, also ships log records to a Seq server.
	SeqURL string `yaml:"seq_url"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the YAML config at path, applies environment overrides and
// defaults, and validates the result.
//
// A missing file is tolerated only when path is DefaultConfigFile or empty;
// an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFile:
		// No config file; defaults and environment only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ApplyEnv(cfg, os.LookupEnv)
	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

// ApplyEnv overrides cfg fields from CSVSTRIP_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	str("INPUT_PATH", &cfg.InputPath)
	str("INPUT_DIR", &cfg.InputDir)
	str("FILE_PATTERN", &cfg.FilePattern)
	str("COLUMN_NAME", &cfg.ColumnName)
	str("OUTPUT_SUFFIX", &cfg.OutputSuffix)
	str("OUTPUT_DIR", &cfg.OutputDir)
	str("SUMMARY_DIR", &cfg.SummaryDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("SEQ_URL", &cfg.SeqURL)

	if v, ok := lookup(EnvPrefix + "USE_CRLF"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseCRLF = &b
		}
	}
	if v, ok := lookup(EnvPrefix + "MAX_CONCURRENCY"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrency = n
		}
	}
}

// ApplyDefaults sets default values for any unset configuration options.
// OutputSuffix is left empty so that Suffix follows later column overrides.
func ApplyDefaults(cfg *Config) {
	if cfg.ColumnName == "" {
		cfg.ColumnName = DefaultColumn
	}
	if cfg.FilePattern == "" {
		cfg.FilePattern = "*.csv"
	}
	if cfg.UseCRLF == nil {
		crlf := true
		cfg.UseCRLF = &crlf
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

// SuffixFor builds the default output suffix for a column name.
//
// EXAMPLE:
//
//	SuffixFor("Description")  -> "_no-description-commas"
//	SuffixFor("Job Summary")  -> "_no-job-summary-commas"
func SuffixFor(column string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(column)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "column"
	}
	return "_no-" + slug + "-commas"
}

// Suffix returns the configured output suffix, or the one derived from the
// column name.
func (c *Config) Suffix() string {
	if c.OutputSuffix != "" {
		return c.OutputSuffix
	}
	return SuffixFor(c.ColumnName)
}

// CRLF reports whether CSV output uses \r\n line endings.
func (c *Config) CRLF() bool {
	return c.UseCRLF == nil || *c.UseCRLF
}

// Validate checks the configuration for values the stripper cannot run with.
func (c *Config) Validate() error {
	if c.ColumnName == "" {
		return fmt.Errorf("column_name must not be empty")
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("output_suffix %q must not contain a path separator", c.OutputSuffix)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q is not one of text, json", c.LogFormat)
	}

	return nil
}
