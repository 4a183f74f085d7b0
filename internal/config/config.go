package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultQuarantineDir  = "failed_outputs"
	DefaultConverterFlags = "--silent"
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "console"
)

// Config holds the run configuration.
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`
	QuarantineDir  string        `yaml:"quarantineDir"`
	ConverterFlags string        `yaml:"converterFlags"`
	LogLevel       string        `yaml:"logLevel"`
	LogFormat      string        `yaml:"logFormat"`
	Progress       bool          `yaml:"progress"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	cfg := Config{Timeout: DefaultTimeout}
	applyDefaults(&cfg)
	return cfg
}

// Load reads a YAML config file over the defaults. Keys absent from the file
// keep their default; an explicit zero timeout disables the bound.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults refills string fields the file set to empty.
func applyDefaults(cfg *Config) {
	if cfg.QuarantineDir == "" {
		cfg.QuarantineDir = DefaultQuarantineDir
	}
	if cfg.ConverterFlags == "" {
		cfg.ConverterFlags = DefaultConverterFlags
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
}

// Validate checks values that defaults cannot repair.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := c.ConverterArgs(); err != nil {
		return err
	}
	return nil
}

// ConverterArgs splits ConverterFlags into the arguments that precede the
// input and output paths on every converter invocation.
func (c Config) ConverterArgs() ([]string, error) {
	args, err := shlex.Split(c.ConverterFlags)
	if err != nil {
		return nil, fmt.Errorf("parse converterFlags %q: %w", c.ConverterFlags, err)
	}
	if len(args) == 0 {
		return nil, errors.New("converterFlags must contain at least one argument")
	}
	return args, nil
}
