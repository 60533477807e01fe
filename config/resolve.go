package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/eval"
)

// ResolveOption configures resolution.
type ResolveOption func(*resolver)

// WithLogger installs a logger for debug traces of configset application.
func WithLogger(logger *slog.Logger) ResolveOption {
	return func(r *resolver) {
		r.log = logger
	}
}

// Resolve evaluates defaults in declaration order, then applies each
// activated configset in activation order. Within a set, entries apply in
// listed order; an included set's entries splice in place. The last
// applied assignment to a path wins, so activation order is semantic.
//
// Two calls with equal declarations and activation lists produce equal
// snapshots.
func Resolve(d *Decls, active []string, opts ...ResolveOption) (*Snapshot, error) {
	r := &resolver{
		decls: d,
		log:   slog.Default(),
		values: make(map[ast.Path]ast.Value, len(d.order)),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.applyDefaults(); err != nil {
		return nil, err
	}
	for _, name := range active {
		p := ast.Path(name)
		set, ok := d.sets[p]
		if !ok {
			return nil, &Error{
				Code:    ErrCodeUnknownReference,
				Message: "activated configset is not declared",
				Path:    p,
			}
		}
		if err := r.applySet(p, set, nil); err != nil {
			return nil, err
		}
	}

	snap := &Snapshot{
		values:   r.values,
		variants: d.variants,
		paths:    slices.Clone(r.paths),
	}
	slices.Sort(snap.paths)
	return snap, nil
}

type resolver struct {
	decls  *Decls
	log    *slog.Logger
	values map[ast.Path]ast.Value
	paths  []ast.Path
}

// env returns the evaluation environment over the snapshot built so far.
// Defaults and assignments see earlier values and enum variants, nothing
// else; any other reference is non-static by construction.
func (r *resolver) env() *eval.Env {
	return &eval.Env{
		Config:   r.values,
		Variants: r.decls.variants,
	}
}

func (r *resolver) applyDefaults() error {
	for _, p := range r.decls.order {
		info := r.decls.configs[p]
		v, err := eval.Evaluate(info.def, r.env())
		if err != nil {
			return fmt.Errorf("default for %s: %w", p, err)
		}
		if err := checkType(p, info.typ, v, r.decls); err != nil {
			return err
		}
		r.values[p] = v
		r.paths = append(r.paths, p)
	}
	return nil
}

// applySet applies one configset. The stack carries the inclusion chain
// for cycle detection.
func (r *resolver) applySet(p ast.Path, set *ast.ConfigsetDecl, stack []ast.Path) error {
	for _, seen := range stack {
		if seen == p {
			return &Error{
				Code:    ErrCodeConfigCycle,
				Message: "configset includes itself",
				Path:    p,
				Cycle:   append(slices.Clone(stack), p),
			}
		}
	}
	stack = append(stack, p)

	for _, entry := range set.Entries {
		switch e := entry.(type) {
		case ast.ConfigsetAssign:
			info, ok := r.decls.configs[e.Target]
			if !ok {
				return &Error{
					Code:    ErrCodeUnknownReference,
					Message: fmt.Sprintf("configset %s assigns an undeclared config", p),
					Path:    e.Target,
				}
			}
			v, err := eval.Evaluate(e.Value, r.env())
			if err != nil {
				return fmt.Errorf("configset %s, assignment to %s: %w", p, e.Target, err)
			}
			if err := checkType(e.Target, info.typ, v, r.decls); err != nil {
				return err
			}
			r.log.Debug("configset assignment",
				slog.String("set", string(p)),
				slog.String("target", string(e.Target)),
				slog.String("value", v.String()))
			r.values[e.Target] = v

		case ast.ConfigsetInclude:
			inc, ok := r.decls.sets[e.Set]
			if !ok {
				return &Error{
					Code:    ErrCodeUnknownReference,
					Message: fmt.Sprintf("configset %s includes an undeclared set", p),
					Path:    e.Set,
				}
			}
			if err := r.applySet(e.Set, inc, stack); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkType verifies a resolved value against the config's declared type.
// Enum-typed configs additionally require the value to be one of the
// enum's variants.
func checkType(p ast.Path, typ ast.TypeRef, v ast.Value, d *Decls) error {
	switch typ.Kind {
	case ast.TypeNum:
		if _, ok := v.(ast.NumValue); ok {
			return nil
		}
	case ast.TypeBool:
		if _, ok := v.(ast.BoolValue); ok {
			return nil
		}
	case ast.TypeEnum:
		pv, ok := v.(ast.PathValue)
		if !ok {
			break
		}
		if slices.Contains(d.enums[typ.Enum], ast.Path(pv)) {
			return nil
		}
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: fmt.Sprintf("%s is not a variant of %s", pv, typ.Enum),
			Path:    p,
		}
	}
	return &Error{
		Code:    ErrCodeSchemaViolation,
		Message: fmt.Sprintf("config expects %s, got %s", typ, v),
		Path:    p,
	}
}
