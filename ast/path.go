package ast

import "strings"

// Path is a dotted chain of declaration identifiers, rooted at a source's
// top level: "Overworld.EastPalace.BigChest". The empty path is the root.
//
// Paths are compared byte-wise. Identifier text is NFC-normalized at the
// input boundary (the loader), so equal-looking identifiers are equal bytes
// by the time they reach this package.
type Path string

// Root is the empty path, parent of every top-level declaration.
const Root Path = ""

// JoinPath appends one identifier segment to a parent path.
func JoinPath(parent Path, ident string) Path {
	if parent == Root {
		return Path(ident)
	}
	return parent + "." + Path(ident)
}

// Parent returns the path with its last segment removed, or Root for
// top-level paths.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '.')
	if i < 0 {
		return Root
	}
	return p[:i]
}

// Base returns the last segment of the path, or "" for Root.
func (p Path) Base() string {
	i := strings.LastIndexByte(string(p), '.')
	return string(p[i+1:])
}

// Segments splits the path into its identifier segments. Root yields nil.
func (p Path) Segments() []string {
	if p == Root {
		return nil
	}
	return strings.Split(string(p), ".")
}

// IsDescendantOf reports whether p is strictly below anc in the tree.
func (p Path) IsDescendantOf(anc Path) bool {
	if anc == Root {
		return p != Root
	}
	return len(p) > len(anc)+1 && strings.HasPrefix(string(p), string(anc)+".")
}

// Name is a declaration name: a stable identifier used in paths plus an
// optional human-readable label for display.
type Name struct {
	Ident string `json:"ident"`
	Label string `json:"label,omitempty"`
}

// N builds a Name with no label. Shorthand for construction sites.
func N(ident string) Name {
	return Name{Ident: ident}
}

// NL builds a Name with a display label.
func NL(ident, label string) Name {
	return Name{Ident: ident, Label: label}
}

// Display returns the label when present, the identifier otherwise.
func (n Name) Display() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Ident
}
