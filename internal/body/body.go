// Package body assembles the indented key/value object tree and
// matrix-list blocks that follow the `---` separator. A frame is
// pushed on `key:` / `key(n): @Type`, popped on dedent; an object
// frame must hold at least one child before it may close.
package body

import (
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/csvlex"
	"github.com/dweve-ai/hedl/internal/preprocess"
	"github.com/dweve-ai/hedl/internal/regions"
	"github.com/dweve-ai/hedl/internal/valuelex"
	"github.com/dweve-ai/hedl/limits"
)

type frameKind uint8

const (
	frameObject frameKind = iota
	frameList
)

type frame struct {
	kind     frameKind
	depth    int // indentation depth of this frame's children
	openLine int
	obj      document.Object    // populated when kind == frameObject
	list     *document.MatrixList // populated when kind == frameList
}

type counters struct {
	nodes     int
	totalKeys int
	fields    int
}

// Parse consumes lines[start:] (the body, immediately after `---`) and
// populates doc.Root, doc.Structs-typed matrix lists included.
func Parse(lines []preprocess.Line, start int, doc *document.Document, lim limits.Limits) error {
	stack := []*frame{{kind: frameObject, depth: 0, obj: doc.Root}}
	var cnt counters

	resolveAlias := func(name string) (string, bool) { return doc.ExpandAlias(name) }

	for _, ln := range lines[start:] {
		stripped := regions.StripComment(ln.Text)
		if preprocess.IsBlank(stripped) {
			continue
		}

		depth, content, err := splitIndent(stripped, ln.Num, lim)
		if err != nil {
			return err
		}

		for len(stack) > 1 && stack[len(stack)-1].depth > depth {
			if err := closeFrame(stack[len(stack)-1]); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		if top.depth != depth {
			return herr.BadIndent(ln.Num)
		}

		if top.kind == frameList {
			if !strings.HasPrefix(content, "|") {
				return herr.At(herr.Syntax, ln.Num, "expected a matrix row starting with '|'")
			}
			if err := parseRow(content[1:], ln.Num, top.list, resolveAlias, lim, &cnt); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(content, "|") {
			return herr.At(herr.Syntax, ln.Num, "row line not permitted outside a matrix list")
		}

		next, err := parseKeyLine(content, ln.Num, top.obj, doc, resolveAlias, lim, &cnt)
		if err != nil {
			return err
		}
		if next != nil {
			next.depth = depth + 1
			next.openLine = ln.Num
			stack = append(stack, next)
		}
	}

	for len(stack) > 1 {
		if err := closeFrame(stack[len(stack)-1]); err != nil {
			return err
		}
		stack = stack[:len(stack)-1]
	}
	return nil
}

func closeFrame(f *frame) error {
	if f.kind == frameObject && len(f.obj) == 0 {
		return herr.TruncatedObject(f.openLine)
	}
	return nil
}

// splitIndent validates and strips the leading-space indentation of
// line, returning the resulting depth and the remaining content.
func splitIndent(line string, num int, lim limits.Limits) (int, string, error) {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	if i < len(line) && line[i] == '\t' {
		return 0, "", herr.BadIndent(num)
	}
	if i%2 != 0 {
		return 0, "", herr.BadIndent(num)
	}
	depth := i / 2
	if lim.MaxIndentDepth > 0 && depth > lim.MaxIndentDepth {
		return 0, "", herr.IndentTooDeep(num)
	}
	return depth, line[i:], nil
}

// parseKeyLine handles one non-row line inside an open object: a
// scalar assignment, an object opener, or a matrix-list opener. It
// returns the frame to push for an opener, or nil for a scalar.
func parseKeyLine(content string, num int, obj document.Object, doc *document.Document, resolveAlias valuelex.AliasResolver, lim limits.Limits, cnt *counters) (*frame, error) {
	colon := strings.IndexByte(content, ':')
	if colon == -1 {
		return nil, herr.At(herr.Syntax, num, "expected ':' after key")
	}
	keyPart := content[:colon]
	rest := strings.TrimSpace(content[colon+1:])

	name, countHint, err := splitCountHint(keyPart, num)
	if err != nil {
		return nil, err
	}
	if !isKeyName(name) {
		return nil, herr.At(herr.Syntax, num, "invalid key name "+strconv.Quote(name))
	}
	if _, exists := obj[name]; exists {
		return nil, herr.DuplicateKey(num, name)
	}

	if rest == "" {
		newObj := make(document.Object)
		obj[name] = document.ObjectItem(newObj)
		if err := checkKeyCounts(obj, cnt, lim, num); err != nil {
			return nil, err
		}
		return &frame{kind: frameObject, obj: newObj}, nil
	}

	if typeName, ok := bareTypeRef(rest); ok {
		schema, ok := doc.Schema(typeName)
		if !ok {
			return nil, herr.At(herr.Schema, num, "matrix list references undefined type "+strconv.Quote(typeName))
		}
		list := &document.MatrixList{Key: name, TypeName: typeName, Schema: schema, CountHint: countHint, Line: num}
		obj[name] = document.ListItem(list)
		if err := checkKeyCounts(obj, cnt, lim, num); err != nil {
			return nil, err
		}
		return &frame{kind: frameList, list: list}, nil
	}

	fields, err := csvlex.Lex(rest, num)
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, herr.At(herr.Syntax, num, "expected a single scalar value")
	}
	if !fields[0].IsQuoted && fields[0].Value == "^" {
		return nil, herr.DittoOutsideMatrix(num)
	}
	val, err := valuelex.Decode(fields[0], num, resolveAlias, lim)
	if err != nil {
		return nil, err
	}
	obj[name] = document.ScalarItemAt(val, num)
	if err := checkKeyCounts(obj, cnt, lim, num); err != nil {
		return nil, err
	}
	return nil, nil
}

// checkKeyCounts enforces the per-object and whole-document key caps
// after a key has been inserted into obj.
func checkKeyCounts(obj document.Object, cnt *counters, lim limits.Limits, num int) error {
	cnt.totalKeys++
	if lim.MaxTotalKeys > 0 && cnt.totalKeys > lim.MaxTotalKeys {
		return herr.At(herr.Security, num, "total key count exceeds the configured maximum")
	}
	if lim.MaxObjectKeys > 0 && len(obj) > lim.MaxObjectKeys {
		return herr.At(herr.Security, num, "object key count exceeds the configured maximum")
	}
	return nil
}

// splitCountHint splits `key` or `key(n)` into the bare name and an
// optional count hint.
func splitCountHint(s string, num int) (string, *int, error) {
	s = strings.TrimSpace(s)
	p := strings.IndexByte(s, '(')
	if p == -1 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, herr.At(herr.Syntax, num, "malformed count hint")
	}
	name := s[:p]
	hint := s[p+1 : len(s)-1]
	if hint == "" || (len(hint) > 1 && hint[0] == '0') {
		return "", nil, herr.At(herr.Syntax, num, "malformed count hint")
	}
	n, err := strconv.Atoi(hint)
	if err != nil || n < 0 {
		return "", nil, herr.At(herr.Syntax, num, "malformed count hint")
	}
	return name, &n, nil
}

// bareTypeRef reports whether rest is exactly a bare type reference
// (`@TypeName`, with no `:id` suffix), the marker for a matrix-list
// opener, as distinct from a qualified scalar reference (`@Type:id`).
func bareTypeRef(rest string) (string, bool) {
	if !strings.HasPrefix(rest, "@") {
		return "", false
	}
	name := rest[1:]
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return "", false
	}
	for _, r := range name {
		if !isAlnum(r) {
			return "", false
		}
	}
	return name, true
}

func isKeyName(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// parseRow lexes and decodes one matrix row, appending the resulting
// Node to list, applying ditto (^) substitution.
func parseRow(payload string, num int, list *document.MatrixList, resolveAlias valuelex.AliasResolver, lim limits.Limits, cnt *counters) error {
	fields, err := csvlex.Lex(payload, num)
	if err != nil {
		return err
	}
	if len(fields) != len(list.Schema) {
		return herr.RowShapeMismatch(num, len(list.Schema), len(fields))
	}

	cnt.nodes++
	if lim.MaxNodes > 0 && cnt.nodes > lim.MaxNodes {
		return herr.At(herr.Security, num, "node count exceeds the configured maximum")
	}
	cnt.fields += len(fields)
	if lim.MaxFieldCount > 0 && cnt.fields > lim.MaxFieldCount {
		return herr.At(herr.Security, num, "field count exceeds the configured maximum")
	}

	var prev *document.Node
	if len(list.Rows) > 0 {
		prev = list.Rows[len(list.Rows)-1]
	}

	values := make([]document.Value, len(fields))
	for i, f := range fields {
		if !f.IsQuoted && f.Value == "^" {
			if i == 0 {
				return herr.DittoInIDColumn(num)
			}
			if prev == nil {
				return herr.DittoFirstRow(num)
			}
			values[i] = prev.Fields[i]
			continue
		}
		v, err := valuelex.Decode(f, num, resolveAlias, lim)
		if err != nil {
			return err
		}
		values[i] = v
	}

	id := values[0]
	if id.IsNull() {
		return herr.NullID(num)
	}
	if id.Kind != document.KindString {
		return herr.At(herr.Semantic, num, "entity ID must be a bare identifier")
	}

	node := &document.Node{TypeName: list.TypeName, ID: id.Str, Fields: values, Line: num}
	list.Rows = append(list.Rows, node)
	return nil
}
