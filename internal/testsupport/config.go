package testsupport

import (
	"path/filepath"
	"testing"

	"clipper/internal/config"
)

// NewConfig returns the default config rooted in a per-test temp directory:
// downloads/, exports/, bin/, logs/, and voices/ under one base. Package
// installs are off and release downloads point at a closed port so no test
// reaches the network by accident. Mutators run last.
func NewConfig(t testing.TB, mutate ...func(*config.Config)) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "downloads")
	cfg.Paths.OutputDir = filepath.Join(base, "exports")
	cfg.Paths.BinDir = filepath.Join(base, "bin")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.VoiceCacheDir = filepath.Join(base, "voices")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Bootstrap.PackageInstall = false
	cfg.Bootstrap.ReleaseBaseURL = "http://127.0.0.1:1/releases"
	for _, fn := range mutate {
		fn(&cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory backing a NewConfig result.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
