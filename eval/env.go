package eval

import "github.com/radolang/rado/ast"

// ItemView is the evaluator's read-only view of an inventory. Unlock flags
// live in the same space as items, as 0/1 quantities.
type ItemView interface {
	// Held returns how many copies of the path are held.
	Held(p ast.Path) int

	// Covers reports whether the path names an item or flag this view
	// tracks, held or not.
	Covers(p ast.Path) bool
}

// Env is an evaluation environment. Name resolution order: function
// parameters, declaration-local vals, configuration, enum variants,
// inventory paths (held >= 1 reads as a boolean), declaration identities.
// Anything else is an unresolved path.
//
// Environments are read-only to the evaluator. The zero value resolves
// nothing.
type Env struct {
	// Config is the total resolved configuration snapshot.
	Config map[ast.Path]ast.Value

	// Params holds positional function arguments bound by parameter name.
	Params map[string]ast.Value

	// Vals holds declaration-local named expressions, evaluated on lookup
	// in this same environment.
	Vals map[ast.Path]ast.Expr

	// Fns is the function table for calls.
	Fns map[ast.Path]*ast.FnDecl

	// Variants marks enum variant paths, which evaluate to their own
	// identity.
	Variants map[ast.Path]bool

	// Items is the inventory view; nil in static contexts, where any
	// inventory reference is unresolved.
	Items ItemView

	// Idents marks non-item declaration identities (regions, locations,
	// links) referenced by match patterns and identity comparisons.
	Idents map[ast.Path]bool

	// Choices maps random declarations to their externally chosen
	// alternative.
	Choices map[ast.Path]ast.Expr

	// Optimistic relaxes every not-term to true without evaluating it.
	// Only the first phase of the accessibility fixed point sets this.
	Optimistic bool

	// valStack guards against re-entrant val lookups during evaluation.
	valStack map[ast.Path]bool
}

// WithParams returns a copy of the environment carrying only the given
// parameter frame: config, functions, variants, inventory, identities, and
// the relaxation flag persist, the caller's params and vals do not leak.
func (env *Env) WithParams(params map[string]ast.Value) *Env {
	return &Env{
		Config:     env.Config,
		Params:     params,
		Fns:        env.Fns,
		Variants:   env.Variants,
		Items:      env.Items,
		Idents:     env.Idents,
		Choices:    env.Choices,
		Optimistic: env.Optimistic,
	}
}
