// Package config loads the reconciler settings from an optional YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, config file, environment variables.
// A .env file may seed the environment; it never overrides variables that are already set.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/core/reconciliation"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given and it exists.
const DefaultPath = "config.yaml"

// Config holds every setting of the service and the CLI.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Storage        StorageConfig        `yaml:"storage"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Log            LogConfig            `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
	// MaxUploadMB is the largest accepted upload body. Larger requests get 413.
	// It also bounds the multipart memory; the rest of an accepted upload spills to disk.
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

// StorageConfig controls where uploads and results are kept.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
	// RetainFiles keeps per-run files after the response has been sent.
	RetainFiles bool `yaml:"retain_files"`
}

// ReconciliationConfig tunes the matching engine.
type ReconciliationConfig struct {
	// Tolerance is kept as text so it is parsed exactly as a decimal.
	Tolerance       string              `yaml:"tolerance"`
	Strategy        string              `yaml:"strategy"`
	HeaderScanLimit int                 `yaml:"header_scan_limit"`
	Synonyms        map[string][]string `yaml:"synonyms"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads the config file at path, or DefaultPath when path is empty and the
// file exists, then applies defaults and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Storage.UploadDir == "" {
		cfg.Storage.UploadDir = "uploads"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "downloads"
	}
	if cfg.Reconciliation.Tolerance == "" {
		cfg.Reconciliation.Tolerance = reconciliation.DefaultTolerance.String()
	}
	if cfg.Reconciliation.Strategy == "" {
		cfg.Reconciliation.Strategy = reconciliation.StrategyFirst
	}
	if cfg.Reconciliation.HeaderScanLimit == 0 {
		cfg.Reconciliation.HeaderScanLimit = reconciliation.DefaultScanLimit
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnv(cfg *Config) error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"RECO_PORT", &cfg.Server.Port},
		{"RECO_UPLOAD_DIR", &cfg.Storage.UploadDir},
		{"RECO_OUTPUT_DIR", &cfg.Storage.OutputDir},
		{"RECO_LOG_LEVEL", &cfg.Log.Level},
		{"RECO_TOLERANCE", &cfg.Reconciliation.Tolerance},
		{"RECO_STRATEGY", &cfg.Reconciliation.Strategy},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(v) != "" {
			*o.dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("RECO_RETAIN_FILES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RECO_RETAIN_FILES %q: %w", v, err)
		}
		cfg.Storage.RetainFiles = b
	}
	return nil
}

func validate(cfg *Config) error {
	tol, err := decimal.NewFromString(cfg.Reconciliation.Tolerance)
	if err != nil {
		return fmt.Errorf("tolerance %q is not a number", cfg.Reconciliation.Tolerance)
	}
	if tol.IsNegative() {
		return fmt.Errorf("tolerance must not be negative, got %s", tol)
	}
	if _, err := reconciliation.SelectorByName(cfg.Reconciliation.Strategy); err != nil {
		return err
	}
	if cfg.Reconciliation.HeaderScanLimit < 0 {
		return fmt.Errorf("header_scan_limit must not be negative (0 means the default of %d), got %d",
			reconciliation.DefaultScanLimit, cfg.Reconciliation.HeaderScanLimit)
	}
	for canonical := range cfg.Reconciliation.Synonyms {
		if !reconciliation.IsCanonical(canonical) {
			return fmt.Errorf("synonyms: unknown canonical column %q", canonical)
		}
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.Server.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must not be negative (0 means the default of 32), got %d", cfg.Server.MaxUploadMB)
	}
	return nil
}

// ReconciliationOptions converts the validated settings into engine options.
func (c *Config) ReconciliationOptions() reconciliation.Options {
	opts := reconciliation.DefaultOptions()
	if tol, err := decimal.NewFromString(c.Reconciliation.Tolerance); err == nil {
		opts.Tolerance = tol
	}
	opts.Strategy = c.Reconciliation.Strategy
	opts.ScanLimit = c.Reconciliation.HeaderScanLimit
	opts.Synonyms = reconciliation.Synonyms(c.Reconciliation.Synonyms)
	return opts
}

// LoadEnvFile sets variables from a KEY=VALUE file. Missing files are ignored and
// variables already present in the environment win.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
