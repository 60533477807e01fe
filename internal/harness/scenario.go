package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test case: inline logic sources, the query
// inputs, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Sources are inline logic files in the loader's serialized form.
	// They are written to a scratch directory under their given names,
	// so the names control load order.
	Sources []SourceFile `yaml:"sources"`

	// Configsets activate in listed order before the merge.
	Configsets []string `yaml:"configsets,omitempty"`

	// Inventory is the starting inventory, applied in sorted path order.
	Inventory map[string]int64 `yaml:"inventory,omitempty"`

	// Random picks choice indices for random declarations. Unlisted
	// declarations default to index 0.
	Random map[string]int `yaml:"random,omitempty"`

	// Placement overrides location supply schedules, location to item.
	Placement map[string]string `yaml:"placement,omitempty"`

	// MaxSteps caps the evaluation step budget. Zero uses the default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Expect is the outcome the scenario asserts.
	Expect Expectation `yaml:"expect"`
}

// SourceFile is one inline logic source.
type SourceFile struct {
	Name  string `yaml:"name"`
	Logic string `yaml:"logic"`
}

// Expectation is either an error outcome (code, optionally the stage
// that raises it) or a set of per-path outcomes and a final inventory
// subset.
type Expectation struct {
	// Error is the expected pipeline error code. When set, the outcome
	// lists must be empty.
	Error string `yaml:"error,omitempty"`

	// Stage pins the pipeline stage expected to raise the error:
	// load, config, merge, graph, or reach.
	Stage string `yaml:"stage,omitempty"`

	// Accessible and Inaccessible list paths by required reachability.
	Accessible   []string `yaml:"accessible,omitempty"`
	Inaccessible []string `yaml:"inaccessible,omitempty"`

	// Visible and Hidden list paths by required visibility.
	Visible []string `yaml:"visible,omitempty"`
	Hidden  []string `yaml:"hidden,omitempty"`

	// Inventory is a subset match against the final inventory.
	Inventory map[string]int64 `yaml:"inventory,omitempty"`
}

// Pipeline stage names for Expectation.Stage and Result.Stage.
const (
	StageLoad   = "load"
	StageConfig = "config"
	StageMerge  = "merge"
	StageGraph  = "graph"
	StageReach  = "reach"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, so typos fail loudly instead of silently dropping a clause.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Sources) == 0 {
		return fmt.Errorf("sources list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if strings.ContainsAny(src.Name, `/\`) {
			return fmt.Errorf("sources[%d]: name %q must be a bare file name", i, src.Name)
		}
		if src.Logic == "" {
			return fmt.Errorf("sources[%d]: logic is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		seen[src.Name] = true
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	for path, idx := range s.Random {
		if idx < 0 {
			return fmt.Errorf("random[%s]: choice index must be non-negative", path)
		}
	}

	return validateExpectation(&s.Expect)
}

func validateExpectation(e *Expectation) error {
	if e.Stage != "" {
		if e.Error == "" {
			return fmt.Errorf("expect: stage requires error")
		}
		switch e.Stage {
		case StageLoad, StageConfig, StageMerge, StageGraph, StageReach:
		default:
			return fmt.Errorf("expect: unknown stage %q", e.Stage)
		}
	}

	hasOutcomes := len(e.Accessible) > 0 || len(e.Inaccessible) > 0 ||
		len(e.Visible) > 0 || len(e.Hidden) > 0 || len(e.Inventory) > 0

	if e.Error != "" && hasOutcomes {
		return fmt.Errorf("expect: error excludes outcome lists")
	}
	if e.Error == "" && !hasOutcomes {
		return fmt.Errorf("expect: needs an error code or at least one outcome")
	}
	return nil
}
