package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Dataset.Source != "file" {
		t.Errorf("Expected default source 'file', got %q", cfg.Dataset.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Missing config should yield defaults, got port %d", cfg.Server.Port)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".jokebox"), 0755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Dataset.Path = "custom.yaml"
	cfg.Dataset.Format = "yaml"
	cfg.Auth.Enabled = true

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("Port not preserved: %d", loaded.Server.Port)
	}
	if loaded.Dataset.Path != "custom.yaml" || loaded.Dataset.Format != "yaml" {
		t.Errorf("Dataset config not preserved: %+v", loaded.Dataset)
	}
	if !loaded.Auth.Enabled {
		t.Error("Auth.Enabled not preserved")
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".jokebox")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	// Only the server section; everything else should keep defaults
	partial := `{"version": 1, "server": {"host": "0.0.0.0", "port": 3000}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(partial), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 3000 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server section not applied: %+v", cfg.Server)
	}
	if cfg.Dataset.Path != "jokes.json" {
		t.Errorf("Omitted dataset section should keep defaults, got %+v", cfg.Dataset)
	}
	if !cfg.Compression.Enabled || cfg.Compression.MinSizeBytes != 1024 {
		t.Errorf("Omitted compression section should keep defaults, got %+v", cfg.Compression)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 2 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"bad format", func(c *Config) { c.Dataset.Format = "xml" }},
		{"bad source", func(c *Config) { c.Dataset.Source = "redis" }},
		{"sqlite source without storage", func(c *Config) {
			c.Dataset.Source = "sqlite"
			c.Storage.Enabled = false
		}},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
