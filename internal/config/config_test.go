package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want \"out\"", cfg.Output.Dir)
	}
	if cfg.Fetch.MaxRetries != 3 {
		t.Errorf("Fetch.MaxRetries = %d, want 3", cfg.Fetch.MaxRetries)
	}
	if cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 20s", cfg.Fetch.Timeout)
	}
	if cfg.Discovery.EventPathPattern != `^\d+$` {
		t.Errorf("Discovery.EventPathPattern = %q", cfg.Discovery.EventPathPattern)
	}
	if cfg.Feed.Language != "da-DK" {
		t.Errorf("Feed.Language = %q, want \"da-DK\"", cfg.Feed.Language)
	}
	if cfg.Provider.Title != "NemTilmeld Aps" {
		t.Errorf("Provider.Title = %q", cfg.Provider.Title)
	}
	if cfg.Org.ID != "16571" {
		t.Errorf("Org.ID = %q", cfg.Org.ID)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want default", cfg.Output.Dir)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tilmeld-feeds.yaml")
	yaml := `
output:
  dir: /var/feeds
fetch:
  max_retries: 5
discovery:
  event_path_pattern: "^event-\\d+$"
feed:
  combined_title: Alt på ét sted
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Output.Dir != "/var/feeds" {
		t.Errorf("Output.Dir = %q, want override", cfg.Output.Dir)
	}
	if cfg.Fetch.MaxRetries != 5 {
		t.Errorf("Fetch.MaxRetries = %d, want 5", cfg.Fetch.MaxRetries)
	}
	if !cfg.EventPathRegexp().MatchString("event-42") {
		t.Error("custom event path pattern not applied")
	}
	if cfg.Feed.CombinedTitle != "Alt på ét sted" {
		t.Errorf("Feed.CombinedTitle = %q", cfg.Feed.CombinedTitle)
	}
	// Untouched sections keep their defaults.
	if cfg.Provider.Title != "NemTilmeld Aps" {
		t.Errorf("Provider.Title = %q, want default", cfg.Provider.Title)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("discovery:\n  event_path_pattern: \"[\"\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestEventPathRegexp_LazyCompile(t *testing.T) {
	cfg := DefaultConfig()
	re := cfg.EventPathRegexp()
	if !re.MatchString("12345") {
		t.Error("default pattern should match a numeric segment")
	}
	if re.MatchString("abc") {
		t.Error("default pattern should not match letters")
	}
}
