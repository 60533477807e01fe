package sphere

import (
	"slices"

	"github.com/radolang/rado/ast"
	"github.com/radolang/rado/graph"
)

// Inventory is a caller-owned multiset over inventory space: concrete
// items, progressive group counters, and unlock flags. Queries read it and
// never mutate it; the caller must not mutate it while a query over it is
// in flight.
type Inventory struct {
	counts map[ast.Path]int64
	order  []ast.Path
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{counts: make(map[ast.Path]int64)}
}

// Add adds n copies of a path and returns the inventory for chaining.
// Adding to a progressive group path advances its shared counter; adding a
// member of a progressive group does the same.
func (inv *Inventory) Add(p ast.Path, n int64) *Inventory {
	if _, ok := inv.counts[p]; !ok {
		inv.order = append(inv.order, p)
	}
	inv.counts[p] += n
	return inv
}

// Count returns how many copies of a path the inventory holds.
func (inv *Inventory) Count(p ast.Path) int64 {
	return inv.counts[p]
}

// Paths returns the held paths in first-added order.
func (inv *Inventory) Paths() []ast.Path {
	return slices.Clone(inv.order)
}

// Len returns how many distinct paths are held.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// Clone returns an independent copy.
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{
		counts: make(map[ast.Path]int64, len(inv.counts)),
		order:  slices.Clone(inv.order),
	}
	for p, n := range inv.counts {
		out.counts[p] = n
	}
	return out
}

// state is one phase's working inventory. It implements eval.ItemView:
// requirement evaluation reads through it, and visiting nodes writes
// acquisitions and flag effects into it.
type state struct {
	g *graph.Graph

	// counts holds concrete item copies, progressive group counters, and
	// flags as 0/1 entries. Progressive members are folded into their
	// group's counter and have no entry of their own.
	counts map[ast.Path]int64

	// remaining tracks each consumable's shared pool for this phase.
	remaining map[ast.Path]int64

	// providers indexes count-aliasing: target path to the items whose
	// held copies also count toward it.
	providers map[ast.Path][]*graph.Item

	// optimistic suppresses flag clears, which are anti-monotone.
	optimistic bool
}

func newState(g *graph.Graph, providers map[ast.Path][]*graph.Item, optimistic bool) *state {
	s := &state{
		g:          g,
		counts:     make(map[ast.Path]int64),
		remaining:  make(map[ast.Path]int64),
		providers:  providers,
		optimistic: optimistic,
	}
	for _, it := range g.Items() {
		if it.Consumable && !it.PoolUnlimited {
			s.remaining[it.Path] = it.Pool
		}
	}
	return s
}

// buildProviders indexes item provides aliases once per query. Aliasing is
// first-order: held copies of an item count toward its provides targets,
// and no further.
func buildProviders(g *graph.Graph) map[ast.Path][]*graph.Item {
	out := make(map[ast.Path][]*graph.Item)
	for _, it := range g.Items() {
		for _, target := range it.Provides {
			out[target] = append(out[target], it)
		}
	}
	return out
}

// Covers reports whether the path lives in inventory space.
func (s *state) Covers(p ast.Path) bool {
	return s.g.Tracks(p)
}

// Held returns how many copies of a path the state holds. A progressive
// member reads as one copy once the group counter reaches its tier; a
// plain group reads as the sum of its members.
func (s *state) Held(p ast.Path) int {
	if it, ok := s.g.Item(p); ok {
		return clampInt(s.heldItem(it))
	}
	return clampInt(s.counts[p] + s.aliased(p))
}

func (s *state) heldItem(it *graph.Item) int64 {
	switch {
	case it.Kind == ast.KindItems && !it.Progressive:
		total := s.aliased(it.Path)
		for _, m := range it.Members {
			total += s.counts[m] + s.aliased(m)
		}
		return total
	case it.Kind == ast.KindItems:
		return s.counts[it.Path] + s.aliased(it.Path)
	case it.Tier >= 0:
		held := int64(0)
		if s.counts[it.Group]+s.aliased(it.Group) >= int64(it.Tier)+1 {
			held = 1
		}
		return held + s.aliased(it.Path)
	default:
		return s.counts[it.Path] + s.aliased(it.Path)
	}
}

// aliased sums provides contributions into a path from held provider
// copies.
func (s *state) aliased(p ast.Path) int64 {
	total := int64(0)
	for _, it := range s.providers[p] {
		total += s.copiesOf(it)
	}
	return total
}

// copiesOf returns an item's raw copy count without alias contributions,
// so provider chains cannot loop.
func (s *state) copiesOf(it *graph.Item) int64 {
	switch {
	case it.Kind == ast.KindItems:
		return s.counts[it.Path]
	case it.Tier >= 0:
		if s.counts[it.Group] >= int64(it.Tier)+1 {
			return 1
		}
		return 0
	default:
		return s.counts[it.Path]
	}
}

// acquire adds n copies of an item and fires the item's own acquisition
// effects. Progressive members advance their group's counter; max caps
// clip, never error.
func (s *state) acquire(it *graph.Item, n int64) {
	if n <= 0 {
		return
	}
	if it.Tier >= 0 {
		if grp, ok := s.g.Item(it.Group); ok && grp.Progressive {
			s.bump(grp.Path, n, grp.Max)
			s.fireItemEffects(it)
			return
		}
	}
	s.bump(it.Path, n, it.Max)
	s.fireItemEffects(it)
}

// fireItemEffects applies the unlock and grant effects an item carries on
// acquisition. Clears only apply in the real phase.
func (s *state) fireItemEffects(it *graph.Item) {
	for _, f := range it.Unlocks {
		s.setFlag(f)
	}
	for _, gr := range it.Grants {
		if gr.Clear {
			if !s.optimistic {
				s.clearFlag(gr.Flag)
			}
			continue
		}
		s.setFlag(gr.Flag)
	}
}

func (s *state) bump(p ast.Path, n, max int64) {
	c := s.counts[p] + n
	if max > 0 && c > max {
		c = max
	}
	s.counts[p] = c
}

func (s *state) setFlag(p ast.Path) {
	if s.counts[p] < 1 {
		s.counts[p] = 1
	}
}

func (s *state) clearFlag(p ast.Path) {
	delete(s.counts, p)
}

// yield applies one supply entry at a visited site: clip to the shared
// remaining pool for consumables, then acquire.
func (s *state) yield(av graph.Avail) {
	it, ok := s.g.Item(av.Item)
	if !ok {
		return
	}
	want := av.Count
	if av.Unlimited {
		want = saturation(s.g, it)
	}
	if it.Consumable && !it.PoolUnlimited {
		rem := s.remaining[it.Path]
		if want > rem {
			want = rem
		}
		s.remaining[it.Path] = rem - want
	}
	s.acquire(it, want)
}

// saturation is how many copies an unlimited site needs to dispense to
// flip every read the item can influence: a full counter for progressive
// groups, one copy otherwise.
func saturation(g *graph.Graph, it *graph.Item) int64 {
	if it.Kind == ast.KindItems {
		return max(int64(len(it.Members)), 1)
	}
	if it.Tier >= 0 {
		if grp, ok := g.Item(it.Group); ok {
			return max(int64(len(grp.Members)), 1)
		}
	}
	return 1
}

// addInitial folds one caller inventory entry into the state.
func (s *state) addInitial(p ast.Path, n int64) error {
	if n < 0 {
		return &Error{
			Code:    ErrCodeSchemaViolation,
			Message: "inventory count must be non-negative",
			Path:    p,
		}
	}
	if n == 0 {
		return nil
	}
	if it, ok := s.g.Item(p); ok {
		if it.Kind == ast.KindItems && !it.Progressive {
			return &Error{
				Code:    ErrCodeSchemaViolation,
				Message: "inventory cannot count a plain item group",
				Path:    p,
			}
		}
		s.acquire(it, n)
		return nil
	}
	if s.g.Tracks(p) {
		s.setFlag(p)
		return nil
	}
	return &Error{
		Code:    ErrCodeUnknownReference,
		Message: "inventory references a path the graph does not track",
		Path:    p,
	}
}

// snapshot converts the final working counts back into a caller-facing
// inventory, in sorted path order.
func (s *state) snapshot() *Inventory {
	paths := make([]ast.Path, 0, len(s.counts))
	for p, n := range s.counts {
		if n > 0 {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	inv := NewInventory()
	for _, p := range paths {
		inv.Add(p, s.counts[p])
	}
	return inv
}

func clampInt(n int64) int {
	if n < 0 {
		return 0
	}
	if n > int64(maxInt) {
		return maxInt
	}
	return int(n)
}

const maxInt = int(^uint(0) >> 1)
