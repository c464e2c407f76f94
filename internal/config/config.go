// Package config loads settings from, in increasing precedence: flag
// defaults, an optional YAML file, STUDYDECK_* environment variables, and
// command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "STUDYDECK_"

// Config is the full runtime configuration.
type Config struct {
	// User selects the persistence partition for this session.
	User string `koanf:"user" validate:"required"`

	// Store picks the persistence backend.
	Store   string `koanf:"store" validate:"required,oneof=sqlite snapshot"`
	DBPath  string `koanf:"db" validate:"required_if=Store sqlite"`
	DataDir string `koanf:"data-dir" validate:"required_if=Store snapshot"`

	// CacheDir holds local mirrors of git deck sources.
	CacheDir string `koanf:"cache-dir" validate:"required"`

	// Sources are directories or git URLs scanned during sync.
	Sources []string `koanf:"sources"`

	// Listen is the web UI address.
	Listen string `koanf:"listen" validate:"required"`

	// Modes. Default (both false) prints the due summary.
	Sync  bool `koanf:"sync"`
	Serve bool `koanf:"serve"`
}

// Load parses the given command-line arguments (excluding the program
// name) and merges all configuration layers.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("studydeck", pflag.ContinueOnError)
	flags.String("config", "", "Path to a YAML config file")
	flags.String("user", "default", "User key selecting the card collection")
	flags.String("store", "sqlite", "Persistence backend: sqlite or snapshot")
	flags.String("db", "studydeck.db", "Path to the SQLite database file")
	flags.String("data-dir", "data", "Directory for JSON snapshot files")
	flags.String("cache-dir", "repos", "Directory for mirrored git deck sources")
	flags.StringSlice("sources", nil, "Deck source directories or git URLs")
	flags.String("listen", ":8080", "Web UI listen address")
	flags.Bool("sync", false, "Reconcile deck sources and exit")
	flags.Bool("serve", false, "Start the web UI")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps STUDYDECK_DATA_DIR to data-dir.
func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
