package store

import (
	"fmt"

	"github.com/radolang/rado/ast"
)

// Divergence describes the first disagreement between a recorded run and
// a fresh recomputation of it.
type Divergence struct {
	// Seq is the position of the diverging result, or -1 when the result
	// lists have different lengths.
	Seq      int
	Path     ast.Path
	Recorded string
	Fresh    string
}

func (d *Divergence) String() string {
	if d.Seq < 0 {
		return fmt.Sprintf("result count: recorded %s, fresh %s", d.Recorded, d.Fresh)
	}
	return fmt.Sprintf("result %d (%s): recorded %s, fresh %s", d.Seq, d.Path, d.Recorded, d.Fresh)
}

// Verify compares recorded results against freshly computed ones.
// Returns nil when they agree, otherwise the first divergence in
// sequence order.
func Verify(recorded, fresh []Result) *Divergence {
	if len(recorded) != len(fresh) {
		return &Divergence{
			Seq:      -1,
			Recorded: fmt.Sprintf("%d results", len(recorded)),
			Fresh:    fmt.Sprintf("%d results", len(fresh)),
		}
	}
	for i := range recorded {
		r, f := recorded[i], fresh[i]
		if r.Path != f.Path {
			return &Divergence{Seq: i, Path: r.Path, Recorded: string(r.Path), Fresh: string(f.Path)}
		}
		if r.Accessible != f.Accessible || r.Visible != f.Visible {
			return &Divergence{
				Seq:      i,
				Path:     r.Path,
				Recorded: fmt.Sprintf("accessible=%t visible=%t", r.Accessible, r.Visible),
				Fresh:    fmt.Sprintf("accessible=%t visible=%t", f.Accessible, f.Visible),
			}
		}
	}
	return nil
}
