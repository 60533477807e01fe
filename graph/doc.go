// Package graph compiles a merged declaration tree and a resolved
// configuration snapshot into an immutable logic graph.
//
// The graph is the unit the accessibility engine runs against: regions and
// locations become arena nodes carrying compiled requirement, visibility,
// supply, and effect data; items become records with caps, group
// membership, and shared consumable pools; links become directed edges.
// A child node's effective requirement is the conjunction of its own
// requires clauses and every ancestor's.
//
// Building is atomic and front-loads every static failure: unresolved
// references, recursive functions, and schema violations surface here, at
// build time, never during a query. A built graph is read-only and safe
// for concurrent queries.
package graph
