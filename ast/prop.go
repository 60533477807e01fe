package ast

// Prop is the sealed property interface. Properties attach to declaration
// bodies; repeated scalar properties follow per-property rules (requires and
// visible conjoin, max and start-in take the last write), list-valued
// properties carry ModVec patch semantics.
type Prop interface {
	prop() // Sealed - only the types below implement it
}

// RequiresProp gates access to the declaring node. Multiple occurrences
// conjoin; children additionally inherit every ancestor's requirement.
type RequiresProp struct {
	Cond Expr
}

func (RequiresProp) prop() {}

// VisibleProp gates whether the node's contents can be seen before they are
// accessible. Absent, visibility defaults to the effective requirement.
type VisibleProp struct {
	Cond Expr
}

func (VisibleProp) prop() {}

// UnlockProp lists unlock flags set when the declaring node is visited or
// acquired. Flags live in inventory space as 0/1 quantities and read as
// booleans in expressions.
type UnlockProp struct {
	Flags ModVec[Path]
}

func (UnlockProp) prop() {}

// GrantEntry is one grants effect: set the target flag, or clear it when
// negated.
type GrantEntry struct {
	Negate bool
	Target Path
}

// GrantsProp is the negatable unlock list applied on visit/acquisition.
// Clearing entries are anti-monotone and only apply in the real phase of
// the accessibility fixed point.
type GrantsProp struct {
	Entries ModVec[GrantEntry]
}

func (GrantsProp) prop() {}

// ProvidesProp makes held copies of the declaring item also count toward
// each listed path.
type ProvidesProp struct {
	Items ModVec[Path]
}

func (ProvidesProp) prop() {}

// TagProp attaches classification paths to the declaration. Tags carry no
// engine semantics; they are queryable metadata on graph nodes.
type TagProp struct {
	Tags ModVec[Path]
}

func (TagProp) prop() {}

// AliasProp attaches alternate display names.
type AliasProp struct {
	Aliases ModVec[Name]
}

func (AliasProp) prop() {}

// ProgressiveProp marks an item group as progressive (ordered tiers over a
// shared copy counter).
type ProgressiveProp struct{}

func (ProgressiveProp) prop() {}

// ValProp binds a declaration-local named expression, visible to
// expressions within the same declaration subtree.
type ValProp struct {
	Name  Name
	Value Expr
}

func (ValProp) prop() {}

// MaxProp caps how many copies of the declaring item can be acquired. The
// expression must be configuration-static.
type MaxProp struct {
	Count Expr
}

func (MaxProp) prop() {}

// ConsumableProp marks an item as drawing from a shared remaining-uses pool
// across every site that avails it.
type ConsumableProp struct{}

func (ConsumableProp) prop() {}

// AvailEntry is one supply entry at a site: the target item and either a
// finite quantity (configuration-static, must be positive) or unlimited.
// A negated entry removes the site's earlier supply for the same target.
type AvailEntry struct {
	Negate    bool
	Target    Path
	Count     Expr
	Unlimited bool
}

// AvailProp is a site's supply schedule.
type AvailProp struct {
	Entries ModVec[AvailEntry]
}

func (AvailProp) prop() {}

// StartItem is one starting-inventory contribution.
type StartItem struct {
	Target Path
	Count  Expr
}

// StartWithProp contributes items to the initial inventory.
type StartWithProp struct {
	Items ModVec[StartItem]
}

func (StartWithProp) prop() {}

// StartInProp fixes the starting region. The last write across the merged
// tree wins.
type StartInProp struct {
	Region Path
}

func (StartInProp) prop() {}
