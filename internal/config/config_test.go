package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sheaf/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "sheaf")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if len(cfg.Merge.KeyColumns) != 2 || cfg.Merge.KeyColumns[0] != "game_id" || cfg.Merge.KeyColumns[1] != "play_id" {
		t.Fatalf("unexpected key columns: %v", cfg.Merge.KeyColumns)
	}
	if cfg.Strip.PlaceholderPrefix != "Unnamed" {
		t.Fatalf("unexpected placeholder prefix: %q", cfg.Strip.PlaceholderPrefix)
	}
	if cfg.Dialect.SampleBytes != 8192 {
		t.Fatalf("unexpected sample bytes: %d", cfg.Dialect.SampleBytes)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.HistoryDBPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history db path: %q", cfg.HistoryDBPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sheaf.toml")

	type payload struct {
		Merge struct {
			KeyColumns []string `toml:"key_columns"`
		} `toml:"merge"`
		Strip struct {
			PlaceholderPrefix string `toml:"placeholder_prefix"`
		} `toml:"strip"`
		Dialect struct {
			SampleBytes int `toml:"sample_bytes"`
		} `toml:"dialect"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Merge.KeyColumns = []string{"event_id"}
	custom.Strip.PlaceholderPrefix = "Column"
	custom.Dialect.SampleBytes = 4096
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "DEBUG"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Merge.KeyColumns) != 1 || cfg.Merge.KeyColumns[0] != "event_id" {
		t.Fatalf("expected key columns from file, got %v", cfg.Merge.KeyColumns)
	}
	if cfg.Strip.PlaceholderPrefix != "Column" {
		t.Fatalf("expected prefix from file, got %q", cfg.Strip.PlaceholderPrefix)
	}
	if cfg.Dialect.SampleBytes != 4096 {
		t.Fatalf("expected sample bytes from file, got %d", cfg.Dialect.SampleBytes)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected format lowered to json, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level lowered to debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsBlankKeyColumnEntries(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sheaf.toml")
	contents := "[merge]\nkey_columns = [\"game_id\", \"  \"]\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for blank key column entry")
	} else if !strings.Contains(err.Error(), "key_columns") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "key_columns") {
		t.Fatalf("sample config missing key_columns: %s", contents)
	}
	if !strings.Contains(string(contents), "placeholder_prefix") {
		t.Fatalf("sample config missing placeholder_prefix: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Merge.KeyColumns = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty key columns")
	}

	cfg = config.Default()
	cfg.Strip.PlaceholderPrefix = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty placeholder prefix")
	}

	cfg = config.Default()
	cfg.Dialect.SampleBytes = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative sample bytes")
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
