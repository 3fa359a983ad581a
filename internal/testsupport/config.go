// Package testsupport provides shared helpers for package tests: temp-dir
// configs, store openers, and stub external binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"zcomx/internal/config"
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
	cfgVal.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfgVal.Paths.ArchiveRoot = filepath.Join(base, "archive")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.PIDFile = filepath.Join(base, "logs", "zcomxd.pid")

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

// WithStubbedBinaries writes stub executables for the provided names into a
// temp bin dir and points the matching config fields at them. Stubs exit 0
// and create any file named by a -o/--output style final argument when asked
// via WithStubScript.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"7z", "mktorrent", "zc-p2p", "zc-indicia"}
		}
		for _, name := range names {
			path := writeStub(b.t, b.baseDir, name, "exit 0\n")
			assignBinary(b.cfg, name, path)
		}
	}
}

// WithStubScript installs a stub with a custom shell body for one binary.
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		path := writeStub(b.t, b.baseDir, name, body)
		assignBinary(b.cfg, name, path)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.UploadsDir)
}

func writeStub(t testing.TB, baseDir, name, body string) string {
	t.Helper()
	binDir := filepath.Join(baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func assignBinary(cfg *config.Config, name, path string) {
	switch name {
	case "7z":
		cfg.Binaries.SevenZip = path
	case "mktorrent":
		cfg.Binaries.Mktorrent = path
	case "convert":
		cfg.Binaries.Convert = path
	case "zc-p2p":
		cfg.Binaries.ZcP2P = path
	case "zc-indicia":
		cfg.Binaries.IndiciaScript = path
	case "nice":
		cfg.Binaries.Nice = path
	case "zcomx":
		cfg.Binaries.Zcomx = path
	}
}
