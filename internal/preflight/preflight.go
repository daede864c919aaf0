package preflight

import (
	"fmt"
	"strings"

	"proxymill/internal/config"
	"proxymill/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckFile("Catalog", cfg.Paths.CatalogPath))
	results = append(results, CheckDirectoryAccess("Renderer directory", cfg.Paths.RendererDir))
	results = append(results, CheckFile("Renderer jar", cfg.JarPath()))
	for _, pass := range cfg.Renderer.Passes {
		results = append(results, CheckFile(fmt.Sprintf("Template (%s)", pass), cfg.TemplatePath(pass)))
	}
	results = append(results, CheckDirectoryReadable("Art directory", cfg.ArtDir()))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Resolved
		}
		results = append(results, result)
	}
	return results
}

// Err summarizes failed required checks as a configuration error, or nil when
// every required check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed || r.Optional {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(failed, "; "), nil)
}
