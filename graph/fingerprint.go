package graph

import (
	"slices"

	"github.com/radolang/rado/ast"
)

// fingerprint encodes the compiled graph canonically and hashes it under
// the graph domain. Everything semantically load-bearing is included:
// nodes, items, edges, flags, start state, random choices, and the
// configuration the graph was compiled against.
func fingerprint(g *Graph) (string, error) {
	nodes := make(ast.Arr, 0, len(g.order))
	for _, p := range g.order {
		nodes = append(nodes, nodeObj(g.nodes[p]))
	}

	items := make(ast.Arr, 0, len(g.itemPick))
	for _, p := range g.itemPick {
		items = append(items, itemObj(g.items[p]))
	}

	edges := make(ast.Arr, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, ast.Obj{
			"link":        e.Link,
			"from":        e.From,
			"to":          e.To,
			"requirement": ast.FormatExpr(e.Requirement),
		})
	}

	flags := make(ast.Arr, 0, len(g.flagPick))
	for _, p := range g.flagPick {
		flags = append(flags, p)
	}

	startItems := make(ast.Arr, 0, len(g.start.Items))
	for _, si := range g.start.Items {
		startItems = append(startItems, ast.Obj{
			"item":  si.Item,
			"count": si.Count,
		})
	}

	choices := ast.Obj{}
	for p, e := range g.choices {
		choices[string(p)] = ast.FormatExpr(e)
	}

	cfg := ast.Obj{}
	for p, v := range g.cfg.Values() {
		cfg[string(p)] = v
	}
	variants := make(ast.Arr, 0, len(g.variants))
	for _, p := range sortedPaths(g.variants) {
		variants = append(variants, p)
	}

	return ast.HashCanonical(ast.DomainGraph, ast.Obj{
		"nodes":    nodes,
		"items":    items,
		"edges":    edges,
		"flags":    flags,
		"start":    ast.Obj{"region": g.start.Region, "items": startItems},
		"choices":  choices,
		"config":   cfg,
		"variants": variants,
	})
}

func nodeObj(n *Node) ast.Obj {
	obj := ast.Obj{
		"path":        n.Path,
		"kind":        n.Kind.String(),
		"parent":      n.Parent,
		"requirement": ast.FormatExpr(n.Requirement),
		"visibility":  ast.FormatExpr(n.Visibility),
		"placeable":   n.Placeable,
	}
	if len(n.Avail) > 0 {
		avail := make(ast.Arr, 0, len(n.Avail))
		for _, av := range n.Avail {
			entry := ast.Obj{"item": av.Item}
			if av.Unlimited {
				entry["unlimited"] = true
			} else {
				entry["count"] = av.Count
			}
			avail = append(avail, entry)
		}
		obj["avail"] = avail
	}
	addEffects(obj, n.Provides, n.Unlocks, n.Grants)
	addMeta(obj, n.Tags, n.Aliases)
	addVals(obj, n.Vals)
	return obj
}

func itemObj(it *Item) ast.Obj {
	obj := ast.Obj{
		"path": it.Path,
		"kind": it.Kind.String(),
	}
	if it.Group != "" {
		obj["group"] = it.Group
	}
	if it.Tier >= 0 {
		obj["tier"] = int64(it.Tier)
	}
	if it.Progressive {
		obj["progressive"] = true
	}
	if len(it.Members) > 0 {
		members := make(ast.Arr, 0, len(it.Members))
		for _, m := range it.Members {
			members = append(members, m)
		}
		obj["members"] = members
	}
	if it.Consumable {
		obj["consumable"] = true
	}
	if it.Max > 0 {
		obj["max"] = it.Max
	}
	if it.PoolUnlimited {
		obj["pool"] = "unlimited"
	} else if it.Pool > 0 {
		obj["pool"] = it.Pool
	}
	addEffects(obj, it.Provides, it.Unlocks, it.Grants)
	addMeta(obj, it.Tags, it.Aliases)
	addVals(obj, it.Vals)
	return obj
}

func addEffects(obj ast.Obj, provides, unlocks []ast.Path, grants []Grant) {
	if len(provides) > 0 {
		obj["provides"] = pathArr(provides)
	}
	if len(unlocks) > 0 {
		obj["unlocks"] = pathArr(unlocks)
	}
	if len(grants) > 0 {
		arr := make(ast.Arr, 0, len(grants))
		for _, gr := range grants {
			arr = append(arr, ast.Obj{"flag": gr.Flag, "clear": gr.Clear})
		}
		obj["grants"] = arr
	}
}

func addMeta(obj ast.Obj, tags []ast.Path, aliases []ast.Name) {
	if len(tags) > 0 {
		obj["tags"] = pathArr(tags)
	}
	if len(aliases) > 0 {
		arr := make(ast.Arr, 0, len(aliases))
		for _, a := range aliases {
			arr = append(arr, a.Ident)
		}
		obj["aliases"] = arr
	}
}

func addVals(obj ast.Obj, vals map[ast.Path]ast.Expr) {
	if len(vals) == 0 {
		return
	}
	v := ast.Obj{}
	for p, e := range vals {
		v[string(p)] = ast.FormatExpr(e)
	}
	obj["vals"] = v
}

func pathArr(paths []ast.Path) ast.Arr {
	arr := make(ast.Arr, 0, len(paths))
	for _, p := range paths {
		arr = append(arr, p)
	}
	return arr
}

func sortedPaths(set map[ast.Path]bool) []ast.Path {
	out := make([]ast.Path, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
