// Package config loads panotour settings from defaults, an optional
// panotour.yaml, PANOTOUR_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/navigation"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix       = "PANOTOUR_"
	DefaultFileName = "panotour.yaml"
)

type Config struct {
	DBPath             string `koanf:"db_path"`
	Tier               string `koanf:"tier"`
	Addr               string `koanf:"addr"`
	LogLevel           string `koanf:"log_level"`
	LogFormat          string `koanf:"log_format"`
	EdgePolicy         string `koanf:"edge_policy"`
	PreviewLoadDelayMS int    `koanf:"preview_load_delay_ms"`

	// File is the config file that was read, or "" when none was found.
	File string `koanf:"-"`
}

func defaults() (map[string]any, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("finding home directory: %w", err)
	}
	return map[string]any{
		"db_path":               filepath.Join(home, ".panotour", "panotour.db"),
		"tier":                  string(limits.TierLite),
		"addr":                  ":8080",
		"log_level":             "info",
		"log_format":            "text",
		"edge_policy":           string(navigation.EdgeClamp),
		"preview_load_delay_ms": 150,
	}, nil
}

// Load builds the configuration. cfgFile may be empty, in which case
// panotour.yaml in the working directory is used if present. Only flags the
// user actually set override lower layers; flag names map to keys by
// replacing dashes with underscores.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defs, err := defaults()
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(defs, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// PANOTOUR_DB_PATH -> db_path
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

func (c *Config) validate() error {
	if _, err := limits.ParseTier(c.Tier); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := navigation.ParseEdgePolicy(c.EdgePolicy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: log_format must be text or json, got %q", c.LogFormat)
	}
	if c.PreviewLoadDelayMS < 0 {
		return fmt.Errorf("invalid config: preview_load_delay_ms must not be negative")
	}
	return nil
}

// Policy returns the limit policy for the configured tier.
func (c *Config) Policy() limits.Policy {
	t, _ := limits.ParseTier(c.Tier)
	return limits.MustPolicy(t)
}

func (c *Config) Edge() navigation.EdgePolicy {
	e, _ := navigation.ParseEdgePolicy(c.EdgePolicy)
	return e
}

func (c *Config) PreviewLoadDelay() time.Duration {
	return time.Duration(c.PreviewLoadDelayMS) * time.Millisecond
}
