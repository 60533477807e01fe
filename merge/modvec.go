package merge

import (
	"slices"

	"github.com/radolang/rado/ast"
)

// listState tracks one list-valued property during the fold. set
// distinguishes "never written" from "written empty": only the former
// rejects patches.
type listState[T any] struct {
	set   bool
	items []T
}

// applyVec applies a ModVec to the list. A replacement installs a fresh
// list. A patch appends additions in order and deletes, per removal, the
// first prior element eq matches; removing an absent element is a no-op.
// Survivors keep their original order. A patch with no base list fails.
func applyVec[T any](state *listState[T], vec ast.ModVec[T], eq func(a, b T) bool) error {
	if vec.Replace {
		state.set = true
		state.items = slices.Clone(vec.Items)
		return nil
	}
	if !state.set {
		return &Error{
			Code:    ErrCodeModifyListBaseMissing,
			Message: "list patch has no prior list to modify",
		}
	}
	for _, op := range vec.Ops {
		if !op.Remove {
			state.items = append(state.items, op.Item)
			continue
		}
		for i, it := range state.items {
			if eq(it, op.Item) {
				state.items = slices.Delete(state.items, i, i+1)
				break
			}
		}
	}
	return nil
}

// Equality functions for the list-valued properties. Avail removals match
// on the target path so a patch can drop a site's supply without repeating
// its quantity; the same goes for start-with entries.

func eqPath(a, b ast.Path) bool { return a == b }

func eqName(a, b ast.Name) bool { return a.Ident == b.Ident }

func eqGrant(a, b ast.GrantEntry) bool {
	return a.Negate == b.Negate && a.Target == b.Target
}

func eqAvail(a, b ast.AvailEntry) bool { return a.Target == b.Target }

func eqStartItem(a, b ast.StartItem) bool { return a.Target == b.Target }
