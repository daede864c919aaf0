package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Pass names accepted in renderer.passes and renderer.templates.
const (
	PassStandard      = "standard"
	PassSketch        = "sketch"
	PassDoubleFeature = "double_feature"
)

// Paths contains filesystem locations.
type Paths struct {
	CatalogPath   string   `toml:"catalog_path"`
	RendererDir   string   `toml:"renderer_dir"`
	OutputDir     string   `toml:"output_dir"`
	LogDir        string   `toml:"log_dir"`
	RawOutputDirs []string `toml:"raw_output_dirs"`
}

// Renderer contains configuration for the external rendering tool.
type Renderer struct {
	JavaBinary      string            `toml:"java_binary"`
	JarFile         string            `toml:"jar_file"`
	Templates       map[string]string `toml:"templates"`
	Passes          []string          `toml:"passes"`
	ArtDir          string            `toml:"art_dir"`
	SetSymbol       string            `toml:"set_symbol"`
	ArtSource       string            `toml:"art_source"`
	UseCardBack     bool              `toml:"use_card_back"`
	MaxCardCount    int               `toml:"max_card_count"`
	MaxRetries      int               `toml:"max_retries"`
	DeleteDiscarded bool              `toml:"delete_discarded"`
}

// ArtistOverride replaces the catalog artist for one face of a card.
type ArtistOverride struct {
	Card   string `toml:"card"`
	Face   string `toml:"face"`
	Artist string `toml:"artist"`
}

// Cards contains catalog filtering and per-card correction settings.
type Cards struct {
	ArtFileExtension string           `toml:"art_file_extension"`
	RarityOverride   string           `toml:"rarity_override"`
	IllegalSetCodes  []string         `toml:"illegal_set_codes"`
	ExcludedSetTypes []string         `toml:"excluded_set_types"`
	Subset           []string         `toml:"subset"`
	UpdatesOnly      bool             `toml:"updates_only"`
	ArtistOverrides  []ArtistOverride `toml:"artist_overrides"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Ledger contains configuration for the run history database.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains ntfy delivery settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NotifyOnStart  bool   `toml:"notify_on_start"`
}

// Config encapsulates all configuration values for proxymill.
//
// Configuration sections by subsystem:
//   - Paths: catalog, renderer working directory, outputs, logs
//   - Renderer: external tool invocation, batching and retry limits
//   - Cards: filtering rules, subset mode, manual corrections
//   - Logging: log format, level, and retention
//   - Ledger: SQLite run history
//   - Notifications: ntfy run summaries
type Config struct {
	Paths    Paths    `toml:"paths"`
	Renderer Renderer `toml:"renderer"`
	Cards    Cards    `toml:"cards"`
	Logging  Logging  `toml:"logging"`
	Ledger   Ledger   `toml:"ledger"`

	Notifications Notifications `toml:"notifications"`

	// Warnings lists corrections applied during normalization.
	Warnings []string `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("proxymill.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JarPath returns the absolute path of the renderer executable archive.
func (c *Config) JarPath() string {
	return filepath.Join(c.Paths.RendererDir, c.Renderer.JarFile)
}

// TemplatePath returns the template asset for a pass, or "" when none is configured.
func (c *Config) TemplatePath(pass string) string {
	rel := strings.TrimSpace(c.Renderer.Templates[pass])
	if rel == "" {
		return ""
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Paths.RendererDir, rel)
}

// ArtDir returns the directory holding per-face art crops.
func (c *Config) ArtDir() string {
	if filepath.IsAbs(c.Renderer.ArtDir) {
		return c.Renderer.ArtDir
	}
	return filepath.Join(c.Paths.RendererDir, c.Renderer.ArtDir)
}

// RawOutputPaths returns the renderer output folders scanned during reconciliation.
func (c *Config) RawOutputPaths() []string {
	paths := make([]string, 0, len(c.Paths.RawOutputDirs))
	for _, dir := range c.Paths.RawOutputDirs {
		if filepath.IsAbs(dir) {
			paths = append(paths, dir)
			continue
		}
		paths = append(paths, filepath.Join(c.Paths.RendererDir, dir))
	}
	return paths
}

// RerunPath returns where the list of cards needing a manual rerun is written.
func (c *Config) RerunPath() string {
	return filepath.Join(c.Paths.LogDir, "rerun.toml")
}

// LockPath returns the lock file guarding the renderer working directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.RendererDir, ".proxymill.lock")
}

// UseSubset reports whether only the configured allow-list should be derived.
func (c *Config) UseSubset() bool {
	return len(c.Cards.Subset) > 0
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
