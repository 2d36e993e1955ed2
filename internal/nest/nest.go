// Package nest reorganizes the provisional object tree built by
// internal/body according to the %NEST table: each child row is
// reparented onto the nearest preceding node of the parent type, in
// document order.
package nest

import (
	"sort"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/limits"
)

type listRef struct {
	container document.Object
	key       string
	list      *document.MatrixList
}

// Graft reparents every node whose type is a NEST child onto the
// nearest preceding node of the declared parent type, in ascending
// source-line order, then removes any matrix list left fully emptied
// by grafting.
func Graft(doc *document.Document, lim limits.Limits) error {
	childToParent := make(map[string]string, len(doc.Nests))
	for parent, child := range doc.Nests {
		childToParent[child] = parent
	}
	if len(childToParent) == 0 {
		return nil
	}

	var refs []listRef
	collectLists(doc.Root, &refs)

	type rowRef struct {
		node *document.Node
		list *document.MatrixList
		key  string
	}
	var rows []rowRef
	for _, r := range refs {
		for _, n := range r.list.Rows {
			rows = append(rows, rowRef{node: n, list: r.list, key: r.key})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].node.Line < rows[j].node.Line })

	lastSeen := make(map[string]*document.Node)
	grafted := make(map[*document.Node]bool)
	depth := make(map[*document.Node]int)

	for _, rr := range rows {
		n := rr.node
		if parentType, isChild := childToParent[n.TypeName]; isChild {
			parent, ok := lastSeen[parentType]
			if !ok {
				return herr.OrphanRowErr(n.Line, n.TypeName)
			}
			d := depth[parent] + 1
			if lim.MaxIndentDepth > 0 && d > lim.MaxIndentDepth {
				return herr.At(herr.Security, n.Line, "NEST graft depth exceeds the configured maximum")
			}
			depth[n] = d
			if parent.Children == nil {
				parent.Children = make(map[string][]*document.Node)
			}
			parent.Children[rr.key] = append(parent.Children[rr.key], n)
			if n.ChildCountHint == nil && rr.list.CountHint != nil {
				if parent.ChildCountHint == nil {
					parent.ChildCountHint = make(map[string]*int)
				}
				parent.ChildCountHint[rr.key] = rr.list.CountHint
			}
			grafted[n] = true
		}
		lastSeen[n.TypeName] = n
	}

	for _, r := range refs {
		if _, isChild := childToParent[r.list.TypeName]; !isChild {
			continue
		}
		remaining := r.list.Rows[:0]
		for _, n := range r.list.Rows {
			if !grafted[n] {
				remaining = append(remaining, n)
			}
		}
		r.list.Rows = remaining
		if len(r.list.Rows) == 0 {
			delete(r.container, r.key)
		}
	}

	return nil
}

// collectLists recursively gathers every matrix list reachable from
// obj, regardless of nesting depth, so that %NEST may graft across
// lists declared inside nested objects as well as at the root.
func collectLists(obj document.Object, out *[]listRef) {
	for key, it := range obj {
		switch it.Kind {
		case document.ItemList:
			*out = append(*out, listRef{container: obj, key: key, list: it.List})
		case document.ItemObject:
			collectLists(it.Object, out)
		}
	}
}
