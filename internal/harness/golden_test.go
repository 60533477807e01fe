package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radolang/rado/ast"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return scenario
}

func TestGolden_ConsumableSharedStock(t *testing.T) {
	scenario := loadTestScenario(t, "consumable_shared_stock")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestGolden_RecursiveFunction(t *testing.T) {
	scenario := loadTestScenario(t, "recursive_function")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestTrace_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "consumable_shared_stock")

	first := canonicalTrace(t, scenario)
	second := canonicalTrace(t, scenario)
	assert.Equal(t, string(first), string(second))
}

func canonicalTrace(t *testing.T, scenario *Scenario) []byte {
	t.Helper()
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	events := make(ast.Arr, len(result.Trace))
	for i, e := range result.Trace {
		events[i] = e
	}
	data, err := ast.MarshalCanonical(ast.Obj{"scenario": scenario.Name, "trace": events})
	require.NoError(t, err)
	return data
}
