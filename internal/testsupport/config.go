// Package testsupport provides shared builders for package tests: seeded
// configurations, sized fixture files, and book directory layouts.
package testsupport

import (
	"path/filepath"
	"testing"

	"bookbinder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Lookup.Enabled = false
	cfg.Cleanup.DeleteOriginals = false

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithDeleteOriginals enables guarded cleanup on the test config.
func WithDeleteOriginals() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cleanup.DeleteOriginals = true
	}
}

// WithLookup points the lookup client at a test server.
func WithLookup(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Lookup.Enabled = true
		cfg.Lookup.BaseURL = baseURL
	}
}
