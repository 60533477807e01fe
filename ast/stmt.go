package ast

// Source is one named logic file's statement list. Sources are merged in
// load order; the order is semantic (later sources see and patch earlier
// declarations).
type Source struct {
	Name  string
	Stmts []Stmt
}

// Stmt is the sealed statement interface. Only DeclStmt, DeleteStmt,
// PropStmt, and CondStmt implement it.
type Stmt interface {
	stmt() // Sealed - only these types implement it
}

// DeclOp selects how a DeclStmt applies its declaration to the merged tree.
type DeclOp int

const (
	// OpBind introduces a fresh declaration. Rebinding an occupied path is
	// a duplicate-declaration error.
	OpBind DeclOp = iota
	// OpModify appends the declaration's body to an existing declaration of
	// the same kind.
	OpModify
	// OpOverride replaces an existing declaration's body wholesale while
	// preserving its path identity.
	OpOverride
)

func (op DeclOp) String() string {
	switch op {
	case OpBind:
		return "bind"
	case OpModify:
		return "modify"
	case OpOverride:
		return "override"
	default:
		return "unknown"
	}
}

// DeclStmt binds, modifies, or overrides one declaration.
type DeclStmt struct {
	Op   DeclOp
	Decl Decl
}

func (DeclStmt) stmt() {}

// DeleteStmt removes a declaration and tombstones its path; the tombstone
// keeps the path occupied, so later references and rebinds both fail.
type DeleteStmt struct {
	Target Name
}

func (DeleteStmt) stmt() {}

// PropStmt attaches one property to the enclosing declaration's body.
type PropStmt struct {
	Prop Prop
}

func (PropStmt) stmt() {}

// CondStmt is a merge-time conditional. The condition must be static
// (configuration values and enum variants only); the chosen branch is
// spliced inline during merge and the other branch is discarded.
type CondStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (CondStmt) stmt() {}

// Decl is the sealed declaration interface. DeclName returns the
// declaration's own name; its full path is determined by nesting depth at
// merge time.
type Decl interface {
	decl() // Sealed - only the types below implement it
	DeclName() Name
}

// DeclKind identifies a declaration variant for kind checks and reporting.
type DeclKind int

const (
	KindRegion DeclKind = iota
	KindLocation
	KindItem
	KindItems
	KindLink
	KindFn
	KindEnum
	KindConfig
	KindConfigEnum
	KindConfigs
	KindConfigset
	KindRandom
)

func (k DeclKind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindLocation:
		return "location"
	case KindItem:
		return "item"
	case KindItems:
		return "items"
	case KindLink:
		return "link"
	case KindFn:
		return "fn"
	case KindEnum:
		return "enum"
	case KindConfig:
		return "config"
	case KindConfigEnum:
		return "config enum"
	case KindConfigs:
		return "configs"
	case KindConfigset:
		return "configset"
	case KindRandom:
		return "random"
	default:
		return "unknown"
	}
}

// KindOf returns the variant tag for a declaration.
func KindOf(d Decl) DeclKind {
	switch d.(type) {
	case *RegionDecl:
		return KindRegion
	case *LocationDecl:
		return KindLocation
	case *ItemDecl:
		return KindItem
	case *ItemsDecl:
		return KindItems
	case *LinkDecl:
		return KindLink
	case *FnDecl:
		return KindFn
	case *EnumDecl:
		return KindEnum
	case *ConfigDecl:
		return KindConfig
	case *ConfigEnumDecl:
		return KindConfigEnum
	case *ConfigsDecl:
		return KindConfigs
	case *ConfigsetDecl:
		return KindConfigset
	case *RandomDecl:
		return KindRandom
	default:
		panic("ast: unknown declaration type")
	}
}

// RegionDecl is a traversable area. Its body may nest regions, locations,
// and links; children inherit the region's requirement.
type RegionDecl struct {
	Name Name
	Body []Stmt
}

func (*RegionDecl) decl()            {}
func (d *RegionDecl) DeclName() Name { return d.Name }

// LocationDecl is an item site inside a region.
type LocationDecl struct {
	Name Name
	Body []Stmt
}

func (*LocationDecl) decl()            {}
func (d *LocationDecl) DeclName() Name { return d.Name }

// ItemDecl is a single collectible item.
type ItemDecl struct {
	Name Name
	Body []Stmt
}

func (*ItemDecl) decl()            {}
func (d *ItemDecl) DeclName() Name { return d.Name }

// ItemsDecl is a named item group. Members are ItemDecls in its body.
//
// A plain group acts as a class: the group path counts as held when any
// member is held. A progressive group (progressive property in the body)
// holds one shared copy counter instead, and member N counts as held when
// the counter is at least N+1 (ordered tiers).
type ItemsDecl struct {
	Name Name
	Body []Stmt
}

func (*ItemsDecl) decl()            {}
func (d *ItemsDecl) DeclName() Name { return d.Name }

// LinkDir is a link's traversal direction relative to its declaring scope.
type LinkDir int

const (
	LinkTo   LinkDir = iota // forward only
	LinkFrom                // reverse only
	LinkWith                // bidirectional
)

func (d LinkDir) String() string {
	switch d {
	case LinkTo:
		return "to"
	case LinkFrom:
		return "from"
	case LinkWith:
		return "with"
	default:
		return "unknown"
	}
}

// LinkDecl connects its enclosing region or location to each endpoint.
// The endpoint list is modifiable; the link's requirement gates traversal.
type LinkDecl struct {
	Name      Name
	Dir       LinkDir
	Endpoints ModVec[Path]
	Body      []Stmt
}

func (*LinkDecl) decl()            {}
func (d *LinkDecl) DeclName() Name { return d.Name }

// TypeKind tags the small static type system: numbers, booleans, and
// declared enums.
type TypeKind int

const (
	TypeNum TypeKind = iota
	TypeBool
	TypeEnum
)

// TypeRef names a value type. Enum carries the enum declaration's path when
// Kind is TypeEnum.
type TypeRef struct {
	Kind TypeKind
	Enum Path
}

func (t TypeRef) String() string {
	switch t.Kind {
	case TypeNum:
		return "num"
	case TypeBool:
		return "bool"
	case TypeEnum:
		return string(t.Enum)
	default:
		return "unknown"
	}
}

// Param is one positional function parameter.
type Param struct {
	Name Name
	Type TypeRef
}

// FnDecl is a named expression function. Calls bind arguments positionally;
// recursion is rejected statically at graph build.
type FnDecl struct {
	Name   Name
	Params []Param
	Result TypeRef
	Body   Expr
}

func (*FnDecl) decl()            {}
func (d *FnDecl) DeclName() Name { return d.Name }

// EnumDecl declares a closed set of identity values. A variant's path is
// the enum path plus the variant identifier.
type EnumDecl struct {
	Name     Name
	Variants []Name
}

func (*EnumDecl) decl()            {}
func (d *EnumDecl) DeclName() Name { return d.Name }

// ConfigDecl is a single typed configuration value with a default.
type ConfigDecl struct {
	Name    Name
	Type    TypeRef
	Default Expr
}

func (*ConfigDecl) decl()            {}
func (d *ConfigDecl) DeclName() Name { return d.Name }

// ConfigEnumDecl is an enum-typed configuration value. Default names one of
// the enum's variant paths.
type ConfigEnumDecl struct {
	Name    Name
	Enum    Path
	Default Path
}

func (*ConfigEnumDecl) decl()            {}
func (d *ConfigEnumDecl) DeclName() Name { return d.Name }

// ConfigsDecl is a batch of same-typed configs. It has no name of its own;
// the merge binds each entry individually at the enclosing scope.
type ConfigsDecl struct {
	Type    TypeRef
	Entries []ConfigDecl
}

func (*ConfigsDecl) decl()          {}
func (*ConfigsDecl) DeclName() Name { return Name{} }

// ConfigsetEntry is one effect inside a configset: an assignment or an
// inclusion of another set.
type ConfigsetEntry interface {
	configsetEntry() // Sealed
}

// ConfigsetAssign overwrites one configuration path with the value of a
// static expression evaluated against the snapshot built so far.
type ConfigsetAssign struct {
	Target Path
	Value  Expr
}

func (ConfigsetAssign) configsetEntry() {}

// ConfigsetInclude splices another configset's entries in place. Inclusion
// cycles are a config-cycle error.
type ConfigsetInclude struct {
	Set Path
}

func (ConfigsetInclude) configsetEntry() {}

// ConfigsetDecl is a named bundle of configuration assignments, activated
// by name when resolving configuration.
type ConfigsetDecl struct {
	Name    Name
	Entries []ConfigsetEntry
}

func (*ConfigsetDecl) decl()            {}
func (d *ConfigsetDecl) DeclName() Name { return d.Name }

// RandomDecl is a set of alternative expressions; exactly one is chosen
// externally at graph build time. References evaluate the chosen
// alternative.
type RandomDecl struct {
	Name    Name
	Choices []Expr
}

func (*RandomDecl) decl()            {}
func (d *RandomDecl) DeclName() Name { return d.Name }
