package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"proxymill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The renderer directory is populated with placeholder jar and template files
// so preflight passes, and the catalog is an empty JSON array.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CatalogPath = filepath.Join(base, "cards.json")
	cfgVal.Paths.RendererDir = filepath.Join(base, "proximity")
	cfgVal.Paths.OutputDir = filepath.Join(base, "proxies")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Renderer.Passes = []string{config.PassStandard}
	cfgVal.Ledger.Path = filepath.Join(base, "logs", "ledger.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	WriteFile(t, cfgVal.Paths.CatalogPath, "[]")
	WriteFile(t, cfgVal.JarPath(), "jar")
	WriteFile(t, cfgVal.TemplatePath(config.PassStandard), "template")
	for _, dir := range append([]string{cfgVal.ArtDir()}, cfgVal.RawOutputPaths()...) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxCardCount overrides the batch size.
func WithMaxCardCount(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.MaxCardCount = n
	}
}

// WithMaxRetries overrides the retry ceiling.
func WithMaxRetries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.MaxRetries = n
	}
}

// WithSubset restricts derivation to the named cards.
func WithSubset(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cards.Subset = names
	}
}

// WithPasses enables the given passes and writes a placeholder template for
// each one that lacks a configured asset.
func WithPasses(passes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.Passes = passes
		for _, pass := range passes {
			if b.cfg.Renderer.Templates[pass] == "" {
				b.cfg.Renderer.Templates[pass] = filepath.Join("templates", pass+".zip")
			}
			WriteFile(b.t, b.cfg.TemplatePath(pass), "template")
		}
	}
}

// WithCatalog replaces the catalog file with the given entries.
func WithCatalog(entries ...map[string]any) ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Paths.CatalogPath, entries...)
	}
}

// WithStubbedJava installs an executable shell script as the renderer's java
// binary. body runs under /bin/sh with the renderer arguments in "$@".
func WithStubbedJava(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "bin", "java")
		WriteExecutable(b.t, path, "#!/bin/sh\n"+body+"\n")
		b.cfg.Renderer.JavaBinary = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, java is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"java"}
		}
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteExecutable(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
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

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RendererDir)
}
