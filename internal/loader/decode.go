package loader

import (
	"fmt"
	"math/big"

	"cuelang.org/go/cue"
	"golang.org/x/text/unicode/norm"

	"github.com/radolang/rado/ast"
)

// decoder turns tagged CUE objects into ast statements. Errors accumulate
// in errs; under fail-fast the caller stops at the first one.
type decoder struct {
	mode LoadMode
	errs []*Error
}

func schemaErr(v cue.Value, format string, args ...any) *Error {
	return &Error{Code: ErrCodeSchemaViolation, Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
}

// nfc normalizes identifier, label, and path text at the input boundary.
// Everything past the loader compares bytes.
func nfc(s string) string {
	return norm.NFC.String(s)
}

// source decodes one file value. Under collect-all every statement that
// decodes cleanly is kept; broken top-level statements are skipped.
func (d *decoder) source(v cue.Value, fallback string) ast.Source {
	src := ast.Source{Name: fallback}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			d.errs = append(d.errs, schemaErr(nameVal, "name must be a string: %v", err))
			if d.mode == LoadModeFailFast {
				return src
			}
		} else {
			src.Name = nfc(s)
		}
	}

	stmtsVal := v.LookupPath(cue.ParsePath("stmts"))
	if !stmtsVal.Exists() {
		d.errs = append(d.errs, schemaErr(v, "missing stmts list"))
		return src
	}
	iter, err := stmtsVal.List()
	if err != nil {
		d.errs = append(d.errs, schemaErr(stmtsVal, "stmts must be a list: %v", err))
		return src
	}
	for iter.Next() {
		st, serr := d.stmt(iter.Value())
		if serr != nil {
			d.errs = append(d.errs, serr)
			if d.mode == LoadModeFailFast {
				return src
			}
			continue
		}
		src.Stmts = append(src.Stmts, st)
	}
	return src
}

func (d *decoder) stmt(v cue.Value) (ast.Stmt, *Error) {
	tag, err := d.str(v, "stmt")
	if err != nil {
		return nil, err
	}
	switch tag {
	case "decl":
		return d.declStmt(v)
	case "delete":
		target, err := d.nameField(v, "target")
		if err != nil {
			return nil, err
		}
		return ast.DeleteStmt{Target: target}, nil
	case "prop":
		p, err := d.prop(v)
		if err != nil {
			return nil, err
		}
		return ast.PropStmt{Prop: p}, nil
	case "cond":
		return d.condStmt(v)
	default:
		return nil, schemaErr(v, "unknown stmt tag %q", tag)
	}
}

func (d *decoder) condStmt(v cue.Value) (ast.Stmt, *Error) {
	cond, err := d.exprField(v, "cond")
	if err != nil {
		return nil, err
	}
	then, err := d.stmtList(v, "then")
	if err != nil {
		return nil, err
	}
	var elseStmts []ast.Stmt
	if ev := v.LookupPath(cue.ParsePath("else")); ev.Exists() {
		elseStmts, err = d.stmtList(v, "else")
		if err != nil {
			return nil, err
		}
	}
	return ast.CondStmt{Cond: cond, Then: then, Else: elseStmts}, nil
}

func (d *decoder) declStmt(v cue.Value) (ast.Stmt, *Error) {
	op := ast.OpBind
	if opVal := v.LookupPath(cue.ParsePath("op")); opVal.Exists() {
		s, err := opVal.String()
		if err != nil {
			return nil, schemaErr(opVal, "op must be a string: %v", err)
		}
		switch s {
		case "bind":
			op = ast.OpBind
		case "modify":
			op = ast.OpModify
		case "override":
			op = ast.OpOverride
		default:
			return nil, schemaErr(opVal, "unknown decl op %q", s)
		}
	}

	kind, err := d.str(v, "kind")
	if err != nil {
		return nil, err
	}
	decl, err := d.decl(v, kind)
	if err != nil {
		return nil, err
	}
	return ast.DeclStmt{Op: op, Decl: decl}, nil
}

func (d *decoder) decl(v cue.Value, kind string) (ast.Decl, *Error) {
	switch kind {
	case "region":
		name, body, err := d.nameAndBody(v)
		if err != nil {
			return nil, err
		}
		return &ast.RegionDecl{Name: name, Body: body}, nil
	case "location":
		name, body, err := d.nameAndBody(v)
		if err != nil {
			return nil, err
		}
		return &ast.LocationDecl{Name: name, Body: body}, nil
	case "item":
		name, body, err := d.nameAndBody(v)
		if err != nil {
			return nil, err
		}
		return &ast.ItemDecl{Name: name, Body: body}, nil
	case "items":
		name, body, err := d.nameAndBody(v)
		if err != nil {
			return nil, err
		}
		return &ast.ItemsDecl{Name: name, Body: body}, nil
	case "link":
		return d.linkDecl(v)
	case "fn":
		return d.fnDecl(v)
	case "enum":
		return d.enumDecl(v)
	case "config":
		return d.configDecl(v)
	case "config_enum":
		return d.configEnumDecl(v)
	case "configs":
		return d.configsDecl(v)
	case "configset":
		return d.configsetDecl(v)
	case "random":
		return d.randomDecl(v)
	default:
		return nil, schemaErr(v, "unknown decl kind %q", kind)
	}
}

func (d *decoder) nameAndBody(v cue.Value) (ast.Name, []ast.Stmt, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return ast.Name{}, nil, err
	}
	var body []ast.Stmt
	if bv := v.LookupPath(cue.ParsePath("body")); bv.Exists() {
		body, err = d.stmtList(v, "body")
		if err != nil {
			return ast.Name{}, nil, err
		}
	}
	return name, body, nil
}

func (d *decoder) linkDecl(v cue.Value) (ast.Decl, *Error) {
	name, body, err := d.nameAndBody(v)
	if err != nil {
		return nil, err
	}
	dirStr, err := d.str(v, "dir")
	if err != nil {
		return nil, err
	}
	var dir ast.LinkDir
	switch dirStr {
	case "to":
		dir = ast.LinkTo
	case "from":
		dir = ast.LinkFrom
	case "with":
		dir = ast.LinkWith
	default:
		return nil, schemaErr(v, "unknown link dir %q", dirStr)
	}
	endpointsVal := v.LookupPath(cue.ParsePath("endpoints"))
	if !endpointsVal.Exists() {
		return nil, schemaErr(v, "link %s: missing endpoints", name.Ident)
	}
	endpoints, err := decodeVec(d, endpointsVal, "endpoints", d.path)
	if err != nil {
		return nil, err
	}
	return &ast.LinkDecl{Name: name, Dir: dir, Endpoints: endpoints, Body: body}, nil
}

func (d *decoder) fnDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	var params []ast.Param
	if pv := v.LookupPath(cue.ParsePath("params")); pv.Exists() {
		iter, lerr := pv.List()
		if lerr != nil {
			return nil, schemaErr(pv, "params must be a list: %v", lerr)
		}
		for iter.Next() {
			elem := iter.Value()
			pname, perr := d.nameField(elem, "name")
			if perr != nil {
				return nil, perr
			}
			ptype, perr := d.typeField(elem, "type")
			if perr != nil {
				return nil, perr
			}
			params = append(params, ast.Param{Name: pname, Type: ptype})
		}
	}
	result, err := d.typeField(v, "result")
	if err != nil {
		return nil, err
	}
	body, err := d.exprField(v, "body")
	if err != nil {
		return nil, err
	}
	return &ast.FnDecl{Name: name, Params: params, Result: result, Body: body}, nil
}

func (d *decoder) enumDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	vv := v.LookupPath(cue.ParsePath("variants"))
	if !vv.Exists() {
		return nil, schemaErr(v, "enum %s: missing variants", name.Ident)
	}
	iter, lerr := vv.List()
	if lerr != nil {
		return nil, schemaErr(vv, "variants must be a list: %v", lerr)
	}
	var variants []ast.Name
	for iter.Next() {
		variant, err := d.name(iter.Value())
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return &ast.EnumDecl{Name: name, Variants: variants}, nil
}

func (d *decoder) configDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	typ, err := d.typeField(v, "type")
	if err != nil {
		return nil, err
	}
	def, err := d.exprField(v, "default")
	if err != nil {
		return nil, err
	}
	return &ast.ConfigDecl{Name: name, Type: typ, Default: def}, nil
}

func (d *decoder) configEnumDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	enum, err := d.pathField(v, "enum")
	if err != nil {
		return nil, err
	}
	def, err := d.pathField(v, "default")
	if err != nil {
		return nil, err
	}
	return &ast.ConfigEnumDecl{Name: name, Enum: enum, Default: def}, nil
}

func (d *decoder) configsDecl(v cue.Value) (ast.Decl, *Error) {
	typ, err := d.typeField(v, "type")
	if err != nil {
		return nil, err
	}
	ev := v.LookupPath(cue.ParsePath("entries"))
	if !ev.Exists() {
		return nil, schemaErr(v, "configs: missing entries")
	}
	iter, lerr := ev.List()
	if lerr != nil {
		return nil, schemaErr(ev, "entries must be a list: %v", lerr)
	}
	var entries []ast.ConfigDecl
	for iter.Next() {
		elem := iter.Value()
		name, err := d.nameField(elem, "name")
		if err != nil {
			return nil, err
		}
		def, err := d.exprField(elem, "default")
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.ConfigDecl{Name: name, Type: typ, Default: def})
	}
	return &ast.ConfigsDecl{Type: typ, Entries: entries}, nil
}

func (d *decoder) configsetDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	ev := v.LookupPath(cue.ParsePath("entries"))
	if !ev.Exists() {
		return nil, schemaErr(v, "configset %s: missing entries", name.Ident)
	}
	iter, lerr := ev.List()
	if lerr != nil {
		return nil, schemaErr(ev, "entries must be a list: %v", lerr)
	}
	var entries []ast.ConfigsetEntry
	for iter.Next() {
		elem := iter.Value()
		switch {
		case elem.LookupPath(cue.ParsePath("assign")).Exists():
			av := elem.LookupPath(cue.ParsePath("assign"))
			target, err := d.pathField(av, "target")
			if err != nil {
				return nil, err
			}
			value, err := d.exprField(av, "value")
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.ConfigsetAssign{Target: target, Value: value})
		case elem.LookupPath(cue.ParsePath("include")).Exists():
			set, err := d.pathField(elem, "include")
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.ConfigsetInclude{Set: set})
		default:
			return nil, schemaErr(elem, "configset entry needs assign or include")
		}
	}
	return &ast.ConfigsetDecl{Name: name, Entries: entries}, nil
}

func (d *decoder) randomDecl(v cue.Value) (ast.Decl, *Error) {
	name, err := d.nameField(v, "name")
	if err != nil {
		return nil, err
	}
	cv := v.LookupPath(cue.ParsePath("choices"))
	if !cv.Exists() {
		return nil, schemaErr(v, "random %s: missing choices", name.Ident)
	}
	iter, lerr := cv.List()
	if lerr != nil {
		return nil, schemaErr(cv, "choices must be a list: %v", lerr)
	}
	var choices []ast.Expr
	for iter.Next() {
		choice, err := d.expr(iter.Value())
		if err != nil {
			return nil, err
		}
		choices = append(choices, choice)
	}
	return &ast.RandomDecl{Name: name, Choices: choices}, nil
}

func (d *decoder) prop(v cue.Value) (ast.Prop, *Error) {
	tag, err := d.str(v, "prop")
	if err != nil {
		return nil, err
	}
	switch tag {
	case "requires":
		cond, err := d.exprField(v, "cond")
		if err != nil {
			return nil, err
		}
		return ast.RequiresProp{Cond: cond}, nil
	case "visible":
		cond, err := d.exprField(v, "cond")
		if err != nil {
			return nil, err
		}
		return ast.VisibleProp{Cond: cond}, nil
	case "unlock":
		flags, err := vecField(d, v, "flags", d.path)
		if err != nil {
			return nil, err
		}
		return ast.UnlockProp{Flags: flags}, nil
	case "grants":
		entries, err := vecField(d, v, "entries", d.grantEntry)
		if err != nil {
			return nil, err
		}
		return ast.GrantsProp{Entries: entries}, nil
	case "provides":
		items, err := vecField(d, v, "items", d.path)
		if err != nil {
			return nil, err
		}
		return ast.ProvidesProp{Items: items}, nil
	case "tag":
		tags, err := vecField(d, v, "tags", d.path)
		if err != nil {
			return nil, err
		}
		return ast.TagProp{Tags: tags}, nil
	case "alias":
		aliases, err := vecField(d, v, "aliases", d.name)
		if err != nil {
			return nil, err
		}
		return ast.AliasProp{Aliases: aliases}, nil
	case "progressive":
		return ast.ProgressiveProp{}, nil
	case "val":
		name, err := d.nameField(v, "name")
		if err != nil {
			return nil, err
		}
		value, err := d.exprField(v, "value")
		if err != nil {
			return nil, err
		}
		return ast.ValProp{Name: name, Value: value}, nil
	case "max":
		count, err := d.exprField(v, "count")
		if err != nil {
			return nil, err
		}
		return ast.MaxProp{Count: count}, nil
	case "consumable":
		return ast.ConsumableProp{}, nil
	case "avail":
		entries, err := vecField(d, v, "entries", d.availEntry)
		if err != nil {
			return nil, err
		}
		return ast.AvailProp{Entries: entries}, nil
	case "start_with":
		items, err := vecField(d, v, "items", d.startItem)
		if err != nil {
			return nil, err
		}
		return ast.StartWithProp{Items: items}, nil
	case "start_in":
		region, err := d.pathField(v, "region")
		if err != nil {
			return nil, err
		}
		return ast.StartInProp{Region: region}, nil
	default:
		return nil, schemaErr(v, "unknown prop tag %q", tag)
	}
}

func (d *decoder) grantEntry(v cue.Value) (ast.GrantEntry, *Error) {
	target, err := d.pathField(v, "target")
	if err != nil {
		return ast.GrantEntry{}, err
	}
	negate, err := d.boolOpt(v, "negate")
	if err != nil {
		return ast.GrantEntry{}, err
	}
	return ast.GrantEntry{Negate: negate, Target: target}, nil
}

func (d *decoder) availEntry(v cue.Value) (ast.AvailEntry, *Error) {
	target, err := d.pathField(v, "target")
	if err != nil {
		return ast.AvailEntry{}, err
	}
	negate, err := d.boolOpt(v, "negate")
	if err != nil {
		return ast.AvailEntry{}, err
	}
	unlimited, err := d.boolOpt(v, "unlimited")
	if err != nil {
		return ast.AvailEntry{}, err
	}
	entry := ast.AvailEntry{Negate: negate, Target: target, Unlimited: unlimited}
	if cv := v.LookupPath(cue.ParsePath("count")); cv.Exists() {
		if unlimited {
			return ast.AvailEntry{}, schemaErr(v, "avail entry has both count and unlimited")
		}
		count, err := d.expr(cv)
		if err != nil {
			return ast.AvailEntry{}, err
		}
		entry.Count = count
	} else if !unlimited && !negate {
		return ast.AvailEntry{}, schemaErr(v, "avail entry needs count or unlimited")
	}
	return entry, nil
}

func (d *decoder) startItem(v cue.Value) (ast.StartItem, *Error) {
	target, err := d.pathField(v, "target")
	if err != nil {
		return ast.StartItem{}, err
	}
	count, err := d.exprField(v, "count")
	if err != nil {
		return ast.StartItem{}, err
	}
	return ast.StartItem{Target: target, Count: count}, nil
}

func (d *decoder) expr(v cue.Value) (ast.Expr, *Error) {
	tag, err := d.str(v, "expr")
	if err != nil {
		return nil, err
	}
	switch tag {
	case "num":
		nv := v.LookupPath(cue.ParsePath("value"))
		if !nv.Exists() {
			return nil, schemaErr(v, "num expr: missing value")
		}
		r, err := d.rat(nv)
		if err != nil {
			return nil, err
		}
		return &ast.NumLit{Value: r}, nil
	case "bool":
		bv := v.LookupPath(cue.ParsePath("value"))
		if !bv.Exists() {
			return nil, schemaErr(v, "bool expr: missing value")
		}
		b, berr := bv.Bool()
		if berr != nil {
			return nil, schemaErr(bv, "bool expr: %v", berr)
		}
		return &ast.BoolLit{Value: b}, nil
	case "name":
		p, err := d.pathField(v, "path")
		if err != nil {
			return nil, err
		}
		return ast.Ref(p), nil
	case "call":
		fn, err := d.pathField(v, "fn")
		if err != nil {
			return nil, err
		}
		args, err := d.exprList(v, "args")
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Fn: fn, Args: args}, nil
	case "builtin":
		opStr, err := d.str(v, "op")
		if err != nil {
			return nil, err
		}
		op, ok := builtinOps[opStr]
		if !ok {
			return nil, schemaErr(v, "unknown builtin %q", opStr)
		}
		args, err := d.exprList(v, "args")
		if err != nil {
			return nil, err
		}
		return &ast.BuiltinExpr{Op: op, Args: args}, nil
	case "not":
		x, err := d.exprField(v, "x")
		if err != nil {
			return nil, err
		}
		return ast.Not(x), nil
	case "bin":
		opStr, err := d.str(v, "op")
		if err != nil {
			return nil, err
		}
		op, ok := binOps[opStr]
		if !ok {
			return nil, schemaErr(v, "unknown binary op %q", opStr)
		}
		l, err := d.exprField(v, "l")
		if err != nil {
			return nil, err
		}
		r, err := d.exprField(v, "r")
		if err != nil {
			return nil, err
		}
		return ast.Bin(op, l, r), nil
	case "and":
		terms, err := d.exprList(v, "terms")
		if err != nil {
			return nil, err
		}
		return &ast.AndExpr{Terms: terms}, nil
	case "or":
		terms, err := d.exprList(v, "terms")
		if err != nil {
			return nil, err
		}
		return &ast.OrExpr{Terms: terms}, nil
	case "if":
		cond, err := d.exprField(v, "cond")
		if err != nil {
			return nil, err
		}
		then, err := d.exprField(v, "then")
		if err != nil {
			return nil, err
		}
		els, err := d.exprField(v, "else")
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: then, Else: els}, nil
	case "match":
		subject, err := d.exprField(v, "subject")
		if err != nil {
			return nil, err
		}
		av := v.LookupPath(cue.ParsePath("arms"))
		if !av.Exists() {
			return nil, schemaErr(v, "match expr: missing arms")
		}
		iter, lerr := av.List()
		if lerr != nil {
			return nil, schemaErr(av, "arms must be a list: %v", lerr)
		}
		var arms []ast.MatchArm
		for iter.Next() {
			elem := iter.Value()
			pattern, err := d.pathField(elem, "pattern")
			if err != nil {
				return nil, err
			}
			body, err := d.exprField(elem, "body")
			if err != nil {
				return nil, err
			}
			arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		}
		return &ast.MatchExpr{Subject: subject, Arms: arms}, nil
	default:
		return nil, schemaErr(v, "unknown expr tag %q", tag)
	}
}

var builtinOps = map[string]ast.Builtin{
	"count": ast.BuiltinCount,
	"min":   ast.BuiltinMin,
	"max":   ast.BuiltinMax,
	"sum":   ast.BuiltinSum,
}

var binOps = map[string]ast.BinOp{
	"+":  ast.OpAdd,
	"-":  ast.OpSub,
	"*":  ast.OpMul,
	"/":  ast.OpDiv,
	"%":  ast.OpMod,
	"==": ast.OpEq,
	"!=": ast.OpNe,
	"<":  ast.OpLt,
	"<=": ast.OpLe,
	">":  ast.OpGt,
	">=": ast.OpGe,
}

// rat decodes an exact rational: an integer token of any width, or a string
// big.Rat can parse ("2/3", "7"). Float tokens are the parser stage leaking
// inexact arithmetic and are rejected.
func (d *decoder) rat(v cue.Value) (*big.Rat, *Error) {
	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int(nil)
		if err != nil {
			return nil, schemaErr(v, "bad integer: %v", err)
		}
		return new(big.Rat).SetInt(n), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, schemaErr(v, "float literals are forbidden; write the number as a string")
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, schemaErr(v, "bad number string: %v", err)
		}
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, schemaErr(v, "bad rational %q", s)
		}
		return r, nil
	default:
		return nil, schemaErr(v, "number must be an integer or a rational string")
	}
}

func (d *decoder) typeField(v cue.Value, field string) (ast.TypeRef, *Error) {
	tv := v.LookupPath(cue.ParsePath(field))
	if !tv.Exists() {
		return ast.TypeRef{}, schemaErr(v, "missing %s", field)
	}
	if s, err := tv.String(); err == nil {
		switch s {
		case "num":
			return ast.TypeRef{Kind: ast.TypeNum}, nil
		case "bool":
			return ast.TypeRef{Kind: ast.TypeBool}, nil
		default:
			return ast.TypeRef{}, schemaErr(tv, "unknown type %q", s)
		}
	}
	enum, err := d.pathField(tv, "enum")
	if err != nil {
		return ast.TypeRef{}, schemaErr(tv, "type must be \"num\", \"bool\", or {enum: path}")
	}
	return ast.TypeRef{Kind: ast.TypeEnum, Enum: enum}, nil
}

// name decodes a declaration name: a plain string identifier or
// {ident, label}.
func (d *decoder) name(v cue.Value) (ast.Name, *Error) {
	if s, err := v.String(); err == nil {
		return ast.Name{Ident: nfc(s)}, nil
	}
	iv := v.LookupPath(cue.ParsePath("ident"))
	if !iv.Exists() {
		return ast.Name{}, schemaErr(v, "name must be a string or {ident, label}")
	}
	ident, err := iv.String()
	if err != nil {
		return ast.Name{}, schemaErr(iv, "ident must be a string: %v", err)
	}
	name := ast.Name{Ident: nfc(ident)}
	if lv := v.LookupPath(cue.ParsePath("label")); lv.Exists() {
		label, err := lv.String()
		if err != nil {
			return ast.Name{}, schemaErr(lv, "label must be a string: %v", err)
		}
		name.Label = nfc(label)
	}
	return name, nil
}

func (d *decoder) nameField(v cue.Value, field string) (ast.Name, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return ast.Name{}, schemaErr(v, "missing %s", field)
	}
	return d.name(fv)
}

func (d *decoder) path(v cue.Value) (ast.Path, *Error) {
	s, err := v.String()
	if err != nil {
		return "", schemaErr(v, "path must be a string: %v", err)
	}
	return ast.Path(nfc(s)), nil
}

func (d *decoder) pathField(v cue.Value, field string) (ast.Path, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", schemaErr(v, "missing %s", field)
	}
	return d.path(fv)
}

func (d *decoder) str(v cue.Value, field string) (string, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", schemaErr(v, "missing %s", field)
	}
	s, err := fv.String()
	if err != nil {
		return "", schemaErr(fv, "%s must be a string: %v", field, err)
	}
	return s, nil
}

func (d *decoder) boolOpt(v cue.Value, field string) (bool, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, schemaErr(fv, "%s must be a bool: %v", field, err)
	}
	return b, nil
}

func (d *decoder) exprField(v cue.Value, field string) (ast.Expr, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, schemaErr(v, "missing %s", field)
	}
	return d.expr(fv)
}

func (d *decoder) exprList(v cue.Value, field string) ([]ast.Expr, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, schemaErr(v, "missing %s", field)
	}
	iter, err := fv.List()
	if err != nil {
		return nil, schemaErr(fv, "%s must be a list: %v", field, err)
	}
	var exprs []ast.Expr
	for iter.Next() {
		e, eerr := d.expr(iter.Value())
		if eerr != nil {
			return nil, eerr
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (d *decoder) stmtList(v cue.Value, field string) ([]ast.Stmt, *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, schemaErr(v, "missing %s", field)
	}
	iter, err := fv.List()
	if err != nil {
		return nil, schemaErr(fv, "%s must be a list: %v", field, err)
	}
	var stmts []ast.Stmt
	for iter.Next() {
		st, serr := d.stmt(iter.Value())
		if serr != nil {
			return nil, serr
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

// vecField decodes a required modifiable-list field.
func vecField[T any](d *decoder, v cue.Value, field string, elem func(cue.Value) (T, *Error)) (ast.ModVec[T], *Error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return ast.ModVec[T]{}, schemaErr(v, "missing %s", field)
	}
	return decodeVec(d, fv, field, elem)
}

// decodeVec decodes a modifiable list: {replace: [...]} sets the list,
// {patch: [{add: x}, {del: y}]} edits the prior value.
func decodeVec[T any](d *decoder, v cue.Value, what string, elem func(cue.Value) (T, *Error)) (ast.ModVec[T], *Error) {
	if rv := v.LookupPath(cue.ParsePath("replace")); rv.Exists() {
		iter, err := rv.List()
		if err != nil {
			return ast.ModVec[T]{}, schemaErr(rv, "%s replace must be a list: %v", what, err)
		}
		vec := ast.ModVec[T]{Replace: true}
		for iter.Next() {
			item, e := elem(iter.Value())
			if e != nil {
				return vec, e
			}
			vec.Items = append(vec.Items, item)
		}
		return vec, nil
	}
	if pv := v.LookupPath(cue.ParsePath("patch")); pv.Exists() {
		iter, err := pv.List()
		if err != nil {
			return ast.ModVec[T]{}, schemaErr(pv, "%s patch must be a list: %v", what, err)
		}
		var vec ast.ModVec[T]
		for iter.Next() {
			opVal := iter.Value()
			switch {
			case opVal.LookupPath(cue.ParsePath("add")).Exists():
				item, e := elem(opVal.LookupPath(cue.ParsePath("add")))
				if e != nil {
					return vec, e
				}
				vec.Ops = append(vec.Ops, ast.Add(item))
			case opVal.LookupPath(cue.ParsePath("del")).Exists():
				item, e := elem(opVal.LookupPath(cue.ParsePath("del")))
				if e != nil {
					return vec, e
				}
				vec.Ops = append(vec.Ops, ast.Del(item))
			default:
				return vec, schemaErr(opVal, "%s patch op needs add or del", what)
			}
		}
		return vec, nil
	}
	return ast.ModVec[T]{}, schemaErr(v, "%s must have replace or patch", what)
}
