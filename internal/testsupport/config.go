package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"hyperspectral/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "Level_1")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOverwrite toggles conversion.overwrite.
func WithOverwrite(overwrite bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Overwrite = overwrite
	}
}

// WithServices points the Clowder and BETYdb clients at url and enables them.
func WithServices(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Clowder.Enabled = true
		b.cfg.Clowder.URL = url
		b.cfg.Clowder.Key = "clowder-test-key"
		b.cfg.Clowder.Space = "space-1"
		b.cfg.BETYdb.Enabled = true
		b.cfg.BETYdb.URL = url + "/bety/api/beta/traits.csv"
		b.cfg.BETYdb.Key = "bety-test-key"
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the configured shell is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Conversion.Shell}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithWorkflowScript writes an empty workflow script into the base
// directory and points conversion.script at it.
func WithWorkflowScript() ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, "hyperspectral_workflow.sh")
		if err := os.WriteFile(target, []byte("#!/bin/bash\nexit 0\n"), 0o755); err != nil {
			b.t.Fatalf("write workflow script: %v", err)
		}
		b.cfg.Conversion.Script = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
