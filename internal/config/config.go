// Package config loads promptdeck settings from flags, a YAML file and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/promptdeck/internal/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g. PROMPTDECK_WINDOW_DAYS.
const EnvPrefix = "PROMPTDECK_"

// Config holds every tunable of the CLI and the HTTP server.
type Config struct {
	DB       string `koanf:"db" validate:"required"`
	LogLevel string `koanf:"log-level" validate:"oneof=debug info warn error"`
	ReposDir string `koanf:"repos-dir" validate:"required"`
	Addr     string `koanf:"addr" validate:"required"`

	WindowDays     int      `koanf:"window-days" validate:"min=1"`
	Cooldown       int      `koanf:"cooldown" validate:"min=0"`
	TechnicalCount int      `koanf:"technical-count" validate:"min=0"`
	IncludeAlways  bool     `koanf:"include-always"`
	AllowedSuits   []string `koanf:"allowed-suits"`
	AllowedLevels  []string `koanf:"allowed-levels"`

	// Optional catalog files replacing the embedded decks.
	PracticeCatalog string `koanf:"practice-catalog"`
	ImprovCatalog   string `koanf:"improv-catalog"`
}

// RegisterFlags adds the configuration flags and their defaults to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("db", "promptdeck.db", "Path to the SQLite database file")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("repos-dir", "repos", "Directory git sources are cloned into")
	fs.String("addr", ":8080", "Listen address for serve")
	fs.Int("window-days", 14, "Days of history considered by the weighted draw")
	fs.Int("cooldown", 1, "Penalize the most recently drawn suit when > 0")
	fs.Int("technical-count", 1, "Number of technical cards in an improv draw")
	fs.Bool("include-always", true, "Include an always-include card in improv draws")
	fs.StringSlice("allowed-suits", []string{"form", "time", "pitch", "position"}, "Suits allowed in improv draws")
	fs.StringSlice("allowed-levels", []string{"beginner", "intermediate", "advanced"}, "Levels allowed in improv draws")
	fs.String("practice-catalog", "", "YAML catalog replacing the built-in practice deck")
	fs.String("improv-catalog", "", "YAML catalog replacing the built-in improv deck")
}

// Load layers the config file, the environment and fs, which must have been
// set up with RegisterFlags and parsed. Flags left unset only supply
// defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := domain.Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envValue maps PROMPTDECK_ALLOWED_SUITS=form,time to
// allowed-suits: [form time].
func envValue(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", "-")
	if key == "config" {
		return "", nil
	}
	if key == "allowed-suits" || key == "allowed-levels" {
		var parts []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return key, parts
	}
	return key, value
}

// Bias returns the weighted draw settings.
func (c Config) Bias() domain.BiasConfig {
	return domain.BiasConfig{WindowDays: c.WindowDays, MinSuitCooldown: c.Cooldown}
}

// Settings returns the default improv draw settings.
func (c Config) Settings() domain.Settings {
	return domain.Settings{
		AllowedSuits:   c.AllowedSuits,
		AllowedLevels:  c.AllowedLevels,
		TechnicalCount: c.TechnicalCount,
		IncludeAlways:  c.IncludeAlways,
	}
}

// SlogLevel converts LogLevel for slog.HandlerOptions.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
