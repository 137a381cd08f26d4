package preflight

import (
	"context"
	"path/filepath"

	"songshift/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config. outputDir
// overrides paths.output_dir when non-empty.
func RunAll(ctx context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	results := []Result{CheckCreatableDirectory("Output directory", outputDir)}

	if cfg.History.Enabled {
		results = append(results, CheckCreatableDirectory("History directory", filepath.Dir(cfg.History.Path)))
	}
	if cfg.Logging.File {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}
	return results
}
