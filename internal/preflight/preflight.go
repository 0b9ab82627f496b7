package preflight

import (
	"context"
	"fmt"
	"strings"

	"albumus/internal/config"
	"albumus/internal/deps"
	"albumus/internal/faults"
	"albumus/internal/project"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the project directory and binary checks. Binary checks run
// only when cfg is set.
func RunAll(ctx context.Context, layout project.Layout, cfg *config.Project) []Result {
	results := []Result{
		CheckDirectoryAccess("Project directory", layout.Root, ReadWrite),
		CheckDirectoryAccess("Input directory", layout.In, ReadOnly),
		CheckFile("Project config", layout.Config),
	}
	if cfg == nil {
		return results
	}
	return append(results, FromDeps(deps.CheckBinaries(ctx,
		deps.FFmpegRequirements(cfg.FFmpeg.Binary, cfg.FFmpeg.ProbeBinary),
	))...)
}

// Failed returns an error naming every required check that did not pass.
func Failed(results []Result) error {
	var failed []string
	for _, result := range results {
		if !result.Passed && !result.Optional {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrPreflight, "preflight", "", strings.Join(failed, "; "), nil)
}
