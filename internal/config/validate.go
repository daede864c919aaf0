package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.CatalogPath == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("paths.catalog_path is required. Set PROXYMILL_CATALOG env var or edit %s (create with 'proxymill config init')", defaultPath)
	}
	if c.Paths.RendererDir == "" {
		return errors.New("paths.renderer_dir is required. Set PROXYMILL_RENDERER_DIR env var or edit the config file")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if c.Renderer.MaxCardCount <= 0 {
		return errors.New("renderer.max_card_count must be positive")
	}
	if c.Renderer.MaxCardCount%2 != 0 {
		return fmt.Errorf("renderer.max_card_count must be even so double-faced pairs stay together (got %d)", c.Renderer.MaxCardCount)
	}
	if c.Renderer.MaxRetries < 0 {
		return errors.New("renderer.max_retries must be non-negative")
	}
	for _, pass := range c.Renderer.Passes {
		if !slices.Contains(validPasses, pass) {
			return fmt.Errorf("renderer.passes: unknown pass %q (valid: %s)", pass, strings.Join(validPasses, ", "))
		}
		if pass == PassStandard && strings.TrimSpace(c.Renderer.Templates[pass]) == "" {
			return fmt.Errorf("renderer.templates.%s must be set when %q is listed in renderer.passes", pass, pass)
		}
	}
	for pass := range c.Renderer.Templates {
		if !slices.Contains(validPasses, pass) {
			return fmt.Errorf("renderer.templates: unknown pass %q (valid: %s)", pass, strings.Join(validPasses, ", "))
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q (valid: %s)", c.Logging.Level, strings.Join(validLogLevels, ", "))
	}
	return nil
}
