package testsupport

import (
	"path/filepath"
	"testing"

	"sheaf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithKeyColumns overrides the dedup key columns on the test config.
func WithKeyColumns(columns ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Merge.KeyColumns = columns
	}
}

// WithPlaceholderPrefix overrides the placeholder column prefix on the test
// config.
func WithPlaceholderPrefix(prefix string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Strip.PlaceholderPrefix = prefix
	}
}
