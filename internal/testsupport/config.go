package testsupport

import (
	"path/filepath"
	"testing"

	"rigprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "logs", "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOverwrite sets the export overwrite policy on the test config.
func WithOverwrite(allow bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Export.OverwriteExisting = allow
	}
}

// WithRootName overrides the canonical skeleton root name.
func WithRootName(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rig.RootName = name
	}
}
