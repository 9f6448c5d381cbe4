// Package testsupport provides shared fixtures for engine tests: a config
// seeded with per-test temp directories and a scriptable fake media source.
package testsupport

import (
	"path/filepath"
	"testing"

	"dayreel/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.SessionDir = filepath.Join(base, "sessions")
	cfg.Paths.ThumbnailDir = filepath.Join(base, "thumbnails")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
