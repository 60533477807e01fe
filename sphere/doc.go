// Package sphere answers accessibility queries over a compiled logic
// graph: which locations can be reached, and which are visible, given a
// starting inventory.
//
// The core query is a monotone fixed point ("sphere search") run twice.
// The optimistic phase relaxes every negated requirement term to true and
// expands until no node can be added; anything it cannot reach is
// unreachable outright. The real phase re-runs the same expansion from the
// true starting inventory with exact evaluation, and its flags are the
// answer for everything the optimistic phase reached. Two phases are
// needed because negated terms are anti-monotone: inventory growth can
// falsify them, so a single pass could reject nodes that a different visit
// order would have admitted.
//
// A requirement set in which nodes block each other through negation has
// no order-independent answer. The engine detects such circular negative
// dependence after the real phase stalls and reports it as a
// negative-cycle error instead of picking a winner.
//
// Graphs and configuration snapshots are immutable, so one graph may serve
// concurrent queries; each call carries its own inventory and working
// state. Queries take a context and a step budget so a host can bound
// pathological expansions.
package sphere
