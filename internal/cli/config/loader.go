package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with the cli package via LoggerKey().
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > polars.yaml > polars.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("polars.yaml"); err == nil {
		return "polars.yaml"
	}
	if _, err := os.Stat("polars.yml"); err == nil {
		return "polars.yml"
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithProfile(cfgFile, "", flags)
}

// LoadConfigWithProfile loads configuration and applies a named generation
// profile on top of the base generate section. Profile values override the
// config file and env vars; flags still override the profile.
func LoadConfigWithProfile(cfgFile string, profile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"seed":        uint64(0),
		"verbose":     false,
		"out_dir":     DefaultOutDir,
		"corpus_path": DefaultCorpusFile,

		"generate.rows":             -1,
		"generate.min_rows":         -1,
		"generate.max_rows":         -1,
		"generate.cols":             -1,
		"generate.min_cols":         -1,
		"generate.max_cols":         -1,
		"generate.lazy":             false,
		"generate.chunked":          "",
		"generate.null_probability": 0.0,
		"generate.allow_infinity":   true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (POLARS_ prefix)
	// Transform: POLARS_OUT_DIR -> out_dir
	if err := k.Load(env.Provider("POLARS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "POLARS_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Apply the requested profile over the base generate section.
	// A profile only overrides the keys it sets; everything else is
	// inherited from generate.
	if profile != "" {
		if !k.Exists("profiles." + profile) {
			return nil, fmt.Errorf("unknown profile %q", profile)
		}
		if err := k.MergeAt(k.Cut("profiles."+profile), "generate"); err != nil {
			return nil, fmt.Errorf("failed to apply profile %s: %w", profile, err)
		}
	}

	// 5. Load flags (highest priority - overrides everything else)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: short flag names onto their config keys,
			// and generation flags onto the generate section
			switch key {
			case "corpus":
				return "corpus_path", posflag.FlagVal(flags, f)
			case "out":
				return "out_dir", posflag.FlagVal(flags, f)
			case "rows", "min_rows", "max_rows", "cols", "min_cols", "max_cols",
				"lazy", "chunked", "null_probability", "allow_infinity":
				return "generate." + key, posflag.FlagVal(flags, f)
			case "dtypes":
				return "generate.allowed_dtypes", posflag.FlagVal(flags, f)
			case "exclude":
				return "generate.excluded_dtypes", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithProfile is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
