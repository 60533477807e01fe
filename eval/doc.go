// Package eval implements the rado expression evaluator.
//
// Evaluation is pure: an expression plus an environment yields a value or a
// structured error, with no mutation of either. Arithmetic is exact over
// rationals; there is no floating point in any path. Short-circuit rules
// are part of the semantics: and/or evaluate left to right and stop early,
// if evaluates only the taken branch, match stops at the first arm whose
// pattern equals the subject's path identity.
//
// The same evaluator serves merge-time static conditionals (environment
// restricted to configuration and enum variants), graph-build constant
// folding, and the accessibility fixed point (environment carrying an
// inventory view, optionally with the optimistic not-relaxation).
package eval
