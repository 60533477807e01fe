// Package merge folds an ordered list of sources into a single declaration
// tree.
//
// The fold is pure: sources in, tree out, no global registry. Load order is
// semantic; later sources modify, override, or delete what earlier sources
// declared, and reordering sources may change the result. The fold is also
// atomic: any error yields no tree at all, and extending an existing tree
// never touches it (the new tree is built by replaying all sources).
//
// Declarations live in a flat arena keyed by full dotted path; nesting is
// recorded as parent/child path references, not ownership, so modify and
// override statements can address any depth directly. Deletion tombstones
// a path: the name stays occupied, later references and rebinds both fail.
//
// Merge-time conditionals are static. They are evaluated against the
// resolved configuration snapshot only; a condition that reaches for
// anything else (items, functions, unknown names) is a non-static
// condition error.
package merge
