// Package config loads postview settings. Values come from defaults,
// then an optional YAML file, then POSTVIEW_* environment variables.
// Command-line flags are applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/elizafairlady/go-postview/data"
)

// Environment variables read by Load.
const (
	EnvBaseURL      = "POSTVIEW_BASE_URL"
	EnvLogLevel     = "POSTVIEW_LOG_LEVEL"
	EnvDiscardStale = "POSTVIEW_DISCARD_STALE"
)

// Config is the full set of settings.
type Config struct {
	BaseURL      string        `yaml:"base_url" validate:"required,http_url"`
	DiscardStale bool          `yaml:"discard_stale"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"` // per request; 0 means none
	Log          Log           `yaml:"log"`
	Trace        Trace         `yaml:"trace"`
}

// Log configures the logger.
type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// Trace configures span export.
type Trace struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file" validate:"required_if=Enabled true"`
}

var validate = validator.New()

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		BaseURL: data.DefaultBaseURL,
		Log:     Log{Level: "info"},
	}
}

// Load reads path, if not empty, over the defaults, applies the
// environment and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if err := c.decode(f); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvDiscardStale); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvDiscardStale, err)
		}
		c.DiscardStale = b
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewLogger builds the logger described by c. With quiet set and no
// file configured, logging is discarded; this keeps interactive
// sessions from writing over the screen.
func (c Log) NewLogger(quiet bool) (*zap.Logger, error) {
	if quiet && c.File == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc.Level = lvl
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
		zc.ErrorOutputPaths = []string{c.File}
	}
	return zc.Build()
}
