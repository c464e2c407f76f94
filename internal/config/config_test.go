package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned an unexpected error: %v", err)
	}

	if cfg.User != "default" {
		t.Errorf("Expected default user, but got %q", cfg.User)
	}
	if cfg.Store != "sqlite" || cfg.DBPath != "studydeck.db" {
		t.Errorf("Expected sqlite defaults, but got store=%q db=%q", cfg.Store, cfg.DBPath)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Expected default listen address, but got %q", cfg.Listen)
	}
	if cfg.Sync || cfg.Serve {
		t.Error("Expected both modes off by default")
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{
		"--user", "alice",
		"--store", "snapshot",
		"--data-dir", "/tmp/decks",
		"--sources", "/decks/go,/decks/math",
		"--sync",
	})
	if err != nil {
		t.Fatalf("Load returned an unexpected error: %v", err)
	}

	if cfg.User != "alice" || cfg.Store != "snapshot" || cfg.DataDir != "/tmp/decks" {
		t.Errorf("Unexpected config from flags: %+v", cfg)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != "/decks/go" {
		t.Errorf("Expected two sources, but got %v", cfg.Sources)
	}
	if !cfg.Sync {
		t.Error("Expected sync mode on")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "user: fileuser\nlisten: \":9999\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("STUDYDECK_USER", "envuser")

	cfg, err := Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load returned an unexpected error: %v", err)
	}

	if cfg.User != "envuser" {
		t.Errorf("Expected the environment to override the file, but got %q", cfg.User)
	}
	if cfg.Listen != ":9999" {
		t.Errorf("Expected the file value for listen, but got %q", cfg.Listen)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("STUDYDECK_USER", "envuser")

	cfg, err := Load([]string{"--user", "flaguser"})
	if err != nil {
		t.Fatalf("Load returned an unexpected error: %v", err)
	}
	if cfg.User != "flaguser" {
		t.Errorf("Expected the flag to override the environment, but got %q", cfg.User)
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	if _, err := Load([]string{"--store", "postgres"}); err == nil {
		t.Error("Expected validation to reject an unknown store backend")
	}
}
