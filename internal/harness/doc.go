// Package harness runs conformance scenarios against the full analysis
// pipeline: load, configuration resolution, declaration merge, graph
// build, and the accessibility query.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	sources:
//	  - name: 01_world.cue
//	    logic: |
//	      stmts: [
//	        {stmt: "decl", kind: "item", name: "Sword"},
//	      ]
//	configsets: [Casual]
//	inventory:
//	  Sword: 1
//	random:
//	  Field.Pick: 1
//	placement:
//	  Field.Chest: Bomb
//	max_steps: 1000
//	expect:
//	  accessible: [Field, Field.Chest]
//	  inaccessible: [Keep.Vault]
//	  inventory:
//	    Sword: 1
//
// Sources hold inline logic in the loader's serialized form; the runner
// writes them to a scratch directory under their given names, so the
// names control load order. An expectation is either a set of per-path
// outcomes or an error:
//
//	expect:
//	  error: RECURSIVE_FUNCTION
//	  stage: graph
//
// Pipeline errors are scenario outcomes, not harness failures; only
// infrastructure problems (unreadable files, scratch dirs) surface as
// errors from Run.
//
// # Golden Traces
//
// Every run produces a canonical trace of the pipeline's observable
// results: the resolved configuration, graph shape, per-node outcomes in
// binding order, and the final inventory. Golden files under
// testdata/golden pin these traces byte for byte, so drift in ordering
// or formatting fails the suite even when per-path expectations still
// hold. Regenerate with:
//
//	go test ./internal/harness -update
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/keys.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Failures {
//	        log.Println(msg)
//	    }
//	}
package harness
