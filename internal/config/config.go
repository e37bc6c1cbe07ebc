// Package config loads process settings from defaults, an optional config
// file, and KCURVE_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment variable the process reads.
const envPrefix = "KCURVE_"

// configPathVar names the optional config file. Its extension picks the
// parser: .toml, .yaml, or .yml.
const configPathVar = "KCURVE_CONFIG"

// Config holds all process settings.
type Config struct {
	// CatalogPath points at a crop catalog document. Empty selects the
	// embedded FAO-56 dataset.
	CatalogPath string `koanf:"catalog_path"`

	// ClimatePath points at a climate document that overrides the
	// catalog's own climate section. Empty keeps the catalog climate.
	ClimatePath string `koanf:"climate_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler, text or json.
	LogFormat string `koanf:"log_format"`
}

// New returns the defaults every configuration layer builds on.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (TOML or YAML) if KCURVE_CONFIG is set
//  3. env (prefix KCURVE_)
//
// A .env file in the working directory, when present, is folded into the
// environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(configPathVar); path != "" {
		parser, err := parserForPath(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Map env keys like KCURVE_LOG_LEVEL -> log_level. Underscores stay,
	// matching the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
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

func parserForPath(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("config file %s: unsupported extension", path)
	}
}
