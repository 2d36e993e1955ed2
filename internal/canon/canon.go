// Package canon deterministically re-serializes a Document to its
// canonical byte form: sorted directives, ASCII-ordered object keys,
// fixed two-space indentation, ditto compression, and re-flattened
// NEST hierarchies.
package canon

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/internal/expr"
)

// Render produces the canonical byte sequence for doc: header
// directives in fixed order, `---`, then the body at 2-space
// indentation, ASCII key order throughout.
func Render(doc *document.Document) []byte {
	var b strings.Builder

	b.WriteString("%VERSION: ")
	b.WriteString(doc.Version.String())
	b.WriteString("\n")

	writeGroup(&b, doc.AliasKeys(), func(key string) string {
		val, _ := doc.ExpandAlias(key)
		return "%ALIAS: %" + key + ": " + quoteString(val)
	})
	writeGroup(&b, doc.StructKeys(), func(typeName string) string {
		cols, _ := doc.Schema(typeName)
		return "%STRUCT: " + typeName + ": [" + strings.Join(cols, ", ") + "]"
	})
	writeGroup(&b, doc.NestKeys(), func(parent string) string {
		child, _ := doc.ChildType(parent)
		return "%NEST: " + parent + " > " + child
	})

	b.WriteString("---\n")

	writeObject(&b, doc.Root, doc, 0)

	return []byte(b.String())
}

func writeGroup(b *strings.Builder, keys []string, render func(string) string) {
	if len(keys) == 0 {
		return
	}
	b.WriteString("\n")
	for _, k := range keys {
		b.WriteString(render(k))
		b.WriteString("\n")
	}
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func writeObject(b *strings.Builder, obj document.Object, doc *document.Document, depth int) {
	for _, key := range obj.SortedKeys() {
		item := obj[key]
		switch item.Kind {
		case document.ItemScalar:
			indent(b, depth)
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(renderScalar(item.Scalar))
			b.WriteString("\n")

		case document.ItemObject:
			indent(b, depth)
			b.WriteString(key)
			b.WriteString(":\n")
			writeObject(b, item.Object, doc, depth+1)

		case document.ItemList:
			writeList(b, key, item.List, doc, depth)
		}
	}
}

// writeList emits a matrix list. A list that carries NEST-grafted
// children on any of its rows is re-flattened one row per block,
// interleaving each row's children immediately afterward, so that
// re-parsing the canonical form regrafts every child onto the same
// parent row (the "nearest preceding node of the parent type" rule is
// order-sensitive per row, not per block). Blocks after the first use
// suffixed keys (key_2, key_3, ...), so the re-parsed document holds
// one list per row rather than the original single list.
func writeList(b *strings.Builder, key string, list *document.MatrixList, doc *document.Document, depth int) {
	if !anyRowHasChildren(list.Rows) {
		writeListHeader(b, key, list, depth)
		var prev *document.Node
		for _, row := range list.Rows {
			writeRow(b, row, list.Schema, prev, depth+1)
			prev = row
		}
		return
	}

	for i, row := range list.Rows {
		blockKey := key
		if i > 0 {
			blockKey = key + "_" + strconv.Itoa(i+1)
		}
		var hint *int
		if i == 0 {
			hint = list.CountHint
		}
		writeListHeader(b, blockKey, &document.MatrixList{TypeName: list.TypeName, CountHint: hint}, depth)
		writeRow(b, row, list.Schema, nil, depth+1)

		for _, childKey := range sortedChildKeys(row.Children) {
			children := row.Children[childKey]
			if len(children) == 0 {
				continue
			}
			suffixedChildKey := childKey
			if i > 0 {
				suffixedChildKey = childKey + "_" + strconv.Itoa(i+1)
			}
			childSchema, _ := doc.Schema(children[0].TypeName)
			var childHint *int
			if row.ChildCountHint != nil {
				childHint = row.ChildCountHint[childKey]
			}
			writeList(b, suffixedChildKey, &document.MatrixList{
				TypeName:  children[0].TypeName,
				Schema:    childSchema,
				Rows:      children,
				CountHint: childHint,
			}, doc, depth)
		}
	}
}

func writeListHeader(b *strings.Builder, key string, list *document.MatrixList, depth int) {
	indent(b, depth)
	b.WriteString(key)
	if list.CountHint != nil {
		b.WriteString("(")
		b.WriteString(strconv.Itoa(*list.CountHint))
		b.WriteString(")")
	}
	b.WriteString(": @")
	b.WriteString(list.TypeName)
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, row *document.Node, schema []string, prev *document.Node, depth int) {
	indent(b, depth)
	b.WriteString("| ")
	for i := range schema {
		if i > 0 {
			b.WriteString(", ")
		}
		if i > 0 && prev != nil && i < len(prev.Fields) && i < len(row.Fields) && row.Fields[i].Equal(prev.Fields[i]) {
			b.WriteString("^")
			continue
		}
		b.WriteString(renderScalar(row.Fields[i]))
	}
	b.WriteString("\n")
}

func anyRowHasChildren(rows []*document.Node) bool {
	for _, r := range rows {
		if len(r.Children) > 0 {
			return true
		}
	}
	return false
}

func sortedChildKeys(children map[string][]*document.Node) []string {
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderScalar(v document.Value) string {
	switch v.Kind {
	case document.KindNull:
		return "~"
	case document.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case document.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case document.KindFloat:
		return document.FormatFloat(v.Float)
	case document.KindString:
		return quoteString(v.Str)
	case document.KindReference:
		return v.Ref.String()
	case document.KindExpression:
		return expr.Render(v.Expr)
	case document.KindTensor:
		return renderTensor(v.Tens)
	default:
		return "~"
	}
}

func renderTensor(t document.Tensor) string {
	if t.Kind == document.TensorScalar {
		if t.IsInt {
			return strconv.FormatInt(t.Int, 10)
		}
		return document.FormatFloat(t.Float)
	}
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = renderTensor(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// quoteString renders s as a HEDL string literal, escaping only the
// characters the lexer understands: unlike strconv.Quote, it leaves
// non-ASCII and other control runes as-is.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
