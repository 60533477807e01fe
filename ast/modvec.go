package ast

// ModVec is a modifiable list value: either a replacement list or an
// incremental patch against the prior value of the same property.
//
// Replacement sets the list outright. A patch appends additions in order
// and deletes removals; applying a patch to a path that has no prior list
// value is a modify-list-base-missing error. Application lives in the merge
// resolver; this type only carries the data.
type ModVec[T any] struct {
	Replace bool
	Items   []T       // replacement list when Replace is set
	Ops     []ModOp[T] // patch operations otherwise
}

// ModOp is one patch operation: add Item, or remove the first prior
// element matching it.
type ModOp[T any] struct {
	Remove bool
	Item   T
}

// NewVec builds a replacement ModVec.
func NewVec[T any](items ...T) ModVec[T] {
	return ModVec[T]{Replace: true, Items: items}
}

// PatchVec builds a patch ModVec from operations.
func PatchVec[T any](ops ...ModOp[T]) ModVec[T] {
	return ModVec[T]{Ops: ops}
}

// Add builds an addition operation.
func Add[T any](item T) ModOp[T] {
	return ModOp[T]{Item: item}
}

// Del builds a removal operation.
func Del[T any](item T) ModOp[T] {
	return ModOp[T]{Remove: true, Item: item}
}

// IsZero reports whether the ModVec carries nothing: not a replacement and
// no operations. Distinct from an empty replacement, which clears the list.
func (v ModVec[T]) IsZero() bool {
	return !v.Replace && len(v.Ops) == 0
}
