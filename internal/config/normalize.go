package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	c.Warnings = nil
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRenderer()
	c.normalizeCards()
	c.normalizeLogging()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeNotifications()
	return nil
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		if value, ok := os.LookupEnv("PROXYMILL_CATALOG"); ok {
			c.Paths.CatalogPath = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.RendererDir) == "" {
		if value, ok := os.LookupEnv("PROXYMILL_RENDERER_DIR"); ok {
			c.Paths.RendererDir = strings.TrimSpace(value)
		}
	}

	var err error
	if c.Paths.CatalogPath, err = expandPath(strings.TrimSpace(c.Paths.CatalogPath)); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if c.Paths.RendererDir, err = expandPath(strings.TrimSpace(c.Paths.RendererDir)); err != nil {
		return fmt.Errorf("paths.renderer_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	dirs := make([]string, 0, len(c.Paths.RawOutputDirs))
	for _, dir := range c.Paths.RawOutputDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if strings.HasPrefix(dir, "~") {
			if dir, err = expandPath(dir); err != nil {
				return fmt.Errorf("paths.raw_output_dirs: %w", err)
			}
		}
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		dirs = []string{"images/fronts", "images/backs"}
	}
	c.Paths.RawOutputDirs = dirs
	return nil
}

func (c *Config) normalizeRenderer() {
	c.Renderer.JavaBinary = strings.TrimSpace(c.Renderer.JavaBinary)
	if c.Renderer.JavaBinary == "" {
		c.Renderer.JavaBinary = defaultJavaBinary
	}
	c.Renderer.JarFile = strings.TrimSpace(c.Renderer.JarFile)
	if c.Renderer.JarFile == "" {
		c.Renderer.JarFile = defaultJarFile
	}
	c.Renderer.ArtDir = strings.TrimSpace(c.Renderer.ArtDir)
	if c.Renderer.ArtDir == "" {
		c.Renderer.ArtDir = defaultArtDir
	}
	c.Renderer.SetSymbol = strings.TrimSpace(c.Renderer.SetSymbol)
	if c.Renderer.SetSymbol == "" {
		c.Renderer.SetSymbol = defaultSetSymbol
	}
	c.Renderer.ArtSource = strings.TrimSpace(c.Renderer.ArtSource)
	if c.Renderer.ArtSource == "" {
		c.Renderer.ArtSource = defaultArtSource
	}

	templates := make(map[string]string, len(c.Renderer.Templates))
	for pass, path := range c.Renderer.Templates {
		pass = strings.ToLower(strings.TrimSpace(pass))
		path = strings.TrimSpace(path)
		if pass == "" || path == "" {
			continue
		}
		templates[pass] = path
	}
	c.Renderer.Templates = templates

	passes := make([]string, 0, len(c.Renderer.Passes))
	for _, pass := range c.Renderer.Passes {
		pass = strings.ToLower(strings.TrimSpace(pass))
		if pass == "" || slices.Contains(passes, pass) {
			continue
		}
		passes = append(passes, pass)
	}
	if len(passes) == 0 {
		passes = []string{PassStandard}
	}
	c.Renderer.Passes = passes[:0]
	for _, pass := range passes {
		if pass != PassStandard && slices.Contains(validPasses, pass) && templates[pass] == "" {
			c.warnf("renderer.passes: %q has no entry in renderer.templates; skipping that pass", pass)
			continue
		}
		c.Renderer.Passes = append(c.Renderer.Passes, pass)
	}

	if c.Renderer.MaxCardCount <= 0 {
		c.Renderer.MaxCardCount = defaultMaxCardCount
	}
	if c.Renderer.MaxRetries < 0 {
		c.Renderer.MaxRetries = 0
	}
}

func (c *Config) normalizeCards() {
	ext := strings.ToLower(strings.TrimSpace(c.Cards.ArtFileExtension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !slices.Contains(validArtExtensions, ext) {
		if ext != "" {
			c.warnf("cards.art_file_extension %q is not one of %v; using %s", c.Cards.ArtFileExtension, validArtExtensions, defaultArtFileExtension)
		}
		ext = defaultArtFileExtension
	}
	c.Cards.ArtFileExtension = ext

	rarity := strings.ToLower(strings.TrimSpace(c.Cards.RarityOverride))
	if rarity != "" && !slices.Contains(validRarities, rarity) {
		c.warnf("cards.rarity_override %q is not one of %v; leaving rarity unchanged", c.Cards.RarityOverride, validRarities)
		rarity = ""
	}
	c.Cards.RarityOverride = rarity

	c.Cards.IllegalSetCodes = normalizeList(c.Cards.IllegalSetCodes, strings.ToLower)
	c.Cards.ExcludedSetTypes = normalizeList(c.Cards.ExcludedSetTypes, strings.ToLower)
	subset := normalizeList(c.Cards.Subset, nil)
	c.Cards.Subset = nil
	for _, name := range subset {
		if !strings.Contains(name, "//") {
			c.warnf("cards.subset entry %q is not a double-faced name (missing //); ignoring", name)
			continue
		}
		c.Cards.Subset = append(c.Cards.Subset, name)
	}

	overrides := make([]ArtistOverride, 0, len(c.Cards.ArtistOverrides))
	for _, override := range c.Cards.ArtistOverrides {
		override.Card = strings.TrimSpace(override.Card)
		override.Artist = strings.TrimSpace(override.Artist)
		override.Face = strings.ToLower(strings.TrimSpace(override.Face))
		if override.Card == "" || override.Artist == "" {
			c.warnf("cards.artist_overrides entry %q is missing a card or artist; ignoring", override.Card)
			continue
		}
		if override.Face != "front" && override.Face != "back" {
			c.warnf("cards.artist_overrides entry %q has face %q (want front or back); using back", override.Card, override.Face)
			override.Face = "back"
		}
		overrides = append(overrides, override)
	}
	c.Cards.ArtistOverrides = overrides
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeLedger() error {
	path := strings.TrimSpace(c.Ledger.Path)
	if path == "" {
		c.Ledger.Path = c.Paths.LogDir + string(os.PathSeparator) + defaultLedgerFile
		return nil
	}
	var err error
	if c.Ledger.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if topic := strings.TrimSpace(os.Getenv("PROXYMILL_NTFY_TOPIC")); topic != "" {
			c.Notifications.NtfyTopic = topic
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

// normalizeList trims entries, drops blanks, and removes case-insensitive duplicates.
func normalizeList(values []string, transform func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if transform != nil {
			value = transform(value)
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}
