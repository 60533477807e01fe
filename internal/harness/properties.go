package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// DirResult summarizes a run over a directory of scenario files.
type DirResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure is one failed scenario with its mismatch messages.
type ScenarioFailure struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Messages []string `json:"messages"`
}

// RunDir loads and runs every *.yaml scenario under dir in lexicographic
// order. Scenario failures are collected, not fatal; the error return is
// reserved for an unreadable directory or a harness fault.
func RunDir(ctx context.Context, dir string) (*DirResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("harness: scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	out := &DirResult{}
	for _, path := range paths {
		out.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			out.Failed++
			out.Failures = append(out.Failures, ScenarioFailure{
				Path:     path,
				Messages: []string{err.Error()},
			})
			continue
		}

		result, err := Run(ctx, scenario)
		if err != nil {
			out.Failed++
			out.Failures = append(out.Failures, ScenarioFailure{
				Name:     scenario.Name,
				Path:     path,
				Messages: []string{err.Error()},
			})
			continue
		}

		if !result.Pass {
			out.Failed++
			out.Failures = append(out.Failures, ScenarioFailure{
				Name:     scenario.Name,
				Path:     path,
				Messages: result.Failures,
			})
			continue
		}
		out.Passed++
	}
	return out, nil
}
