// Package config loads the CLI and server configuration from an optional
// YAML file, environment variables and defaults, in that order of
// precedence from lowest to highest: defaults, file, environment. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Config is the root configuration document.
type Config struct {
	Log         log.Config    `yaml:"log"`
	Server      ServerConfig  `yaml:"server"`
	Compile     CompileConfig `yaml:"compile"`
	Lint        LintConfig    `yaml:"lint"`
	Interpreter string        `yaml:"interpreter"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// CompileConfig tunes the step compiler.
type CompileConfig struct {
	TextareaRows int    `yaml:"textareaRows"`
	SubmitText   string `yaml:"submitText"`
}

// LintConfig tunes authoring checks.
type LintConfig struct {
	MaxFileSizeMB float64 `yaml:"maxFileSizeMB"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (when set), fills defaults, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := log.DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = defaults.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Format
	}
	if c.Log.Output == nil {
		c.Log.Output = defaults.Output
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 8 << 20
	}
	if c.Compile.TextareaRows <= 0 {
		c.Compile.TextareaRows = compiler.DefaultTextRows
	}
	if c.Compile.SubmitText == "" {
		c.Compile.SubmitText = compiler.DefaultSubmit
	}
	if c.Lint.MaxFileSizeMB <= 0 {
		c.Lint.MaxFileSizeMB = validation.DefaultMaxFileSizeMB
	}
	if c.Interpreter == "" {
		c.Interpreter = interp.NameCEL
	}
}

// loadFromEnv applies FORMFLOW_* overrides.
func (c *Config) loadFromEnv() {
	logCfg := log.FromEnv(&c.Log)
	c.Log = *logCfg
	if addr := os.Getenv("FORMFLOW_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if name := os.Getenv("FORMFLOW_INTERPRETER"); name != "" {
		c.Interpreter = strings.ToLower(name)
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case log.FormatJSON, log.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	if _, err := interp.ByName(c.Interpreter); err != nil {
		errs = append(errs, fmt.Errorf("interpreter: %w", err))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Lint.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("lint.maxFileSizeMB must be positive, got %g", c.Lint.MaxFileSizeMB))
	}
	return errors.Join(errs...)
}

// CompilerOptions returns the compiler options described by the config.
func (c *Config) CompilerOptions() []compiler.Option {
	return []compiler.Option{
		compiler.WithTextareaRows(c.Compile.TextareaRows),
		compiler.WithSubmitText(c.Compile.SubmitText),
	}
}

// LintOptions returns the lint options described by the config.
func (c *Config) LintOptions() []validation.LintOption {
	return []validation.LintOption{validation.WithMaxFileSize(c.Lint.MaxFileSizeMB)}
}
