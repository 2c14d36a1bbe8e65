package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gotranscribe/internal/config"
)

// MinFreeBytes is the free space required in the work directory for
// extracted audio.
const MinFreeBytes = 512 * 1024 * 1024

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local checks (no network) for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckFreeSpace("Work directory space", cfg.Paths.WorkDir, MinFreeBytes),
		CheckAPIKey(cfg),
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Path}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err folds failed results into a single error, or nil when all passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return errors.New("preflight failed: " + strings.Join(parts, "; "))
}
