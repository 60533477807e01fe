// Package loader decodes serialized statement sets into ast sources.
//
// The surface-syntax parser is a separate toolchain stage; what reaches this
// repo is its output, a statement tree serialized as CUE files. Each .cue
// file in the source directory is one ast.Source; files load in
// lexicographic name order, which is the semantic load order for merging.
//
// A file is a struct with an optional source name and a statement list:
//
//	name:  "overworld"
//	stmts: [...]
//
// Every node is a tagged object. Statements carry a stmt tag:
//
//	{stmt: "decl", op: "bind", kind: "region", name: "Field", body: [...]}
//	{stmt: "delete", target: "OldGate"}
//	{stmt: "prop", prop: "requires", cond: {...}}
//	{stmt: "cond", cond: {...}, then: [...], else: [...]}
//
// Declarations carry a kind tag (region, location, item, items, link, fn,
// enum, config, config_enum, configs, configset, random), expressions an
// expr tag (num, bool, name, call, builtin, not, bin, and, or, if, match).
// Modifiable lists are either {replace: [...]} or {patch: [{add: ...},
// {del: ...}]}.
//
// Numbers decode exactly: integer tokens and strings like "2/3" become
// rationals; float tokens are a SCHEMA_VIOLATION. Identifier and label
// strings are NFC-normalized on decode so the core's byte-wise path
// comparison matches the language's normalization contract.
package loader
