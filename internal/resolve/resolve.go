// Package resolve performs the two-pass semantic resolution that
// follows NEST grafting: ID indexing, then reference resolution.
package resolve

import (
	"sort"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
)

// Index maps a type name to its entity IDs and the line each was
// first declared on.
type Index map[string]map[string]int

// Run builds the ID index (pass A) and resolves every Reference value
// reachable from doc (pass B), returning the index for reuse by
// converters that need ID lookups.
func Run(doc *document.Document) (Index, error) {
	idx := make(Index)
	if err := doc.Walk(func(n *document.Node) error {
		byID, ok := idx[n.TypeName]
		if !ok {
			byID = make(map[string]int)
			idx[n.TypeName] = byID
		}
		if otherLine, exists := byID[n.ID]; exists {
			return herr.CollisionErr(n.Line, otherLine, n.TypeName, n.ID)
		}
		byID[n.ID] = n.Line
		return nil
	}); err != nil {
		return nil, err
	}

	if err := resolveObject(doc.Root, idx); err != nil {
		return nil, err
	}
	if err := doc.Walk(func(n *document.Node) error {
		for i, v := range n.Fields {
			resolved, err := resolveValue(v, idx, n.Line)
			if err != nil {
				return err
			}
			n.Fields[i] = resolved
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return idx, nil
}

func resolveObject(obj document.Object, idx Index) error {
	for key, it := range obj {
		switch it.Kind {
		case document.ItemScalar:
			resolved, err := resolveValue(it.Scalar, idx, it.Line)
			if err != nil {
				return err
			}
			obj[key] = document.ScalarItemAt(resolved, it.Line)
		case document.ItemObject:
			if err := resolveObject(it.Object, idx); err != nil {
				return err
			}
		case document.ItemList:
			// Matrix-list rows are resolved via doc.Walk in Run, once
			// grafting has settled their final position in the tree.
		}
	}
	return nil
}

// resolveValue validates (and, for an unqualified reference, leaves
// unchanged) any Reference carried by v. Resolution never rewrites an
// unqualified reference into a qualified one.
func resolveValue(v document.Value, idx Index, line int) (document.Value, error) {
	if v.Kind != document.KindReference {
		return v, nil
	}
	r := v.Ref
	if r.Qualified() {
		if _, ok := idx[r.Type][r.ID]; !ok {
			return v, herr.UnresolvedReference(line, r.Type, r.ID)
		}
		return v, nil
	}

	var candidates []string
	for typeName, byID := range idx {
		if _, ok := byID[r.ID]; ok {
			candidates = append(candidates, typeName)
		}
	}
	switch len(candidates) {
	case 0:
		return v, herr.UnresolvedReference(line, "", r.ID)
	case 1:
		return v, nil
	default:
		sort.Strings(candidates)
		return v, herr.AmbiguousReference(line, r.ID, candidates)
	}
}
