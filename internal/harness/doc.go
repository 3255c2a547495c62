// Package harness runs YAML scenarios against a live engine.
//
// Each scenario gets a fresh in-memory store, a step clock and sequential
// IDs, so runs are reproducible. Steps go through the engine's public
// command methods exactly as the API and CLI do; the harness records each
// step's outcome and the engine revision after it.
//
// Scenario format:
//
//	name: lifecycle
//	description: create, reorder, toggle, clear
//	setup:
//	  - op: create
//	    title: A
//	    as: a
//	flow:
//	  - op: toggle
//	    ref: a
//	    completed: true
//	  - op: delete
//	    ref: ghost
//	    expect_error: NOT_FOUND
//	assertions:
//	  - type: view
//	    filter: completed
//	    titles: [A]
//
// Refs name todos created earlier with "as"; an unknown ref is passed
// through as a literal ID.
//
// RunWithGolden compares the trace and final state with a snapshot under
// testdata/golden. Regenerate snapshots with:
//
//	go test ./internal/harness -update
package harness
