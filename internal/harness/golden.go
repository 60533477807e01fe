package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/radolang/rado/ast"
)

// RunWithGolden executes a scenario and compares its canonical trace
// against testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already-computed result's trace against the
// named golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	events := make(ast.Arr, len(result.Trace))
	for i, e := range result.Trace {
		events[i] = e
	}
	data, err := ast.MarshalCanonical(ast.Obj{
		"scenario": name,
		"trace":    events,
	})
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
