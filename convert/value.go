// Package convert implements HEDL's converter contract: a pair of
// pure functions per backend, `ToX(*document.Document, Config)
// ([]byte, error)` and `FromX([]byte, Config) (*document.Document,
// error)`, sharing a common plain-value intermediate representation so
// each backend only has to marshal/unmarshal that representation.
package convert

import (
	"sort"
	"strconv"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/expr"
	"github.com/dweve-ai/hedl/limits"
)

// Config carries the shared converter options, including an optional
// schema cache shared across repeated FromJSON/FromYAML calls.
type Config struct {
	Limits limits.Limits
	Cache  *SchemaCache
}

// DefaultConfig returns a Config built over limits.Default() with a
// fresh 100-entry schema cache.
func DefaultConfig() Config {
	return Config{Limits: limits.Default(), Cache: NewSchemaCache(100)}
}

// toPlainDocument converts doc's root object into the plain
// map[string]interface{} tree every backend marshals from.
func toPlainDocument(doc *document.Document) map[string]interface{} {
	return toPlainObject(doc.Root)
}

func toPlainObject(obj document.Object) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for _, key := range obj.SortedKeys() {
		out[key] = toPlainItem(obj[key])
	}
	return out
}

func toPlainItem(it document.Item) interface{} {
	switch it.Kind {
	case document.ItemScalar:
		return toPlainValue(it.Scalar)
	case document.ItemObject:
		return toPlainObject(it.Object)
	case document.ItemList:
		return toPlainList(it.List)
	default:
		return nil
	}
}

func toPlainList(list *document.MatrixList) []interface{} {
	rows := make([]interface{}, len(list.Rows))
	for i, n := range list.Rows {
		rows[i] = toPlainNode(n, list.Schema)
	}
	return rows
}

func toPlainNode(n *document.Node, schema []string) map[string]interface{} {
	row := make(map[string]interface{}, len(schema)+len(n.Children))
	for i, col := range schema {
		if i < len(n.Fields) {
			row[col] = toPlainValue(n.Fields[i])
		}
	}
	for key, children := range n.Children {
		if len(children) == 0 {
			continue
		}
		childSchema := inferSchemaFromNodes(children)
		rows := make([]interface{}, len(children))
		for i, c := range children {
			rows[i] = toPlainNode(c, childSchema)
		}
		row[key] = rows
	}
	return row
}

func inferSchemaFromNodes(nodes []*document.Node) []string {
	maxLen := 0
	for _, n := range nodes {
		if len(n.Fields) > maxLen {
			maxLen = len(n.Fields)
		}
	}
	cols := make([]string, maxLen)
	for i := range cols {
		if i == 0 {
			cols[i] = "id"
		} else {
			cols[i] = "field" + strconv.Itoa(i)
		}
	}
	return cols
}

func toPlainValue(v document.Value) interface{} {
	switch v.Kind {
	case document.KindNull:
		return nil
	case document.KindBool:
		return v.Bool
	case document.KindInt:
		return v.Int
	case document.KindFloat:
		return v.Float
	case document.KindString:
		return v.Str
	case document.KindReference:
		return map[string]interface{}{"@ref": v.Ref.String()}
	case document.KindExpression:
		return map[string]interface{}{"@expr": expr.Render(v.Expr)}
	case document.KindTensor:
		return toPlainTensor(v.Tens)
	default:
		return nil
	}
}

func toPlainTensor(t document.Tensor) interface{} {
	if t.Kind == document.TensorScalar {
		if t.IsInt {
			return t.Int
		}
		return t.Float
	}
	elems := make([]interface{}, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = toPlainTensor(e)
	}
	return elems
}

// fromPlainDocument builds a Document from a generic decoded value
// tree (as produced by encoding/json or yaml.v3). It has no header
// metadata to draw on: the struct table is synthesized from the
// inferred list schemas; the alias and nest tables stay empty.
func fromPlainDocument(root map[string]interface{}, cfg Config) (*document.Document, error) {
	doc := document.New()
	doc.Version = document.Version{Major: 1, Minor: 0}
	obj, err := fromPlainObject(root, doc, cfg)
	if err != nil {
		return nil, err
	}
	doc.Root = obj
	return doc, nil
}

func fromPlainObject(m map[string]interface{}, doc *document.Document, cfg Config) (document.Object, error) {
	out := make(document.Object, len(m))
	for key, raw := range m {
		item, err := fromPlainField(key, raw, doc, cfg)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

func fromPlainField(key string, raw interface{}, doc *document.Document, cfg Config) (document.Item, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		if ref, ok := v["@ref"]; ok {
			s, ok := ref.(string)
			if !ok {
				return document.Item{}, herr.New(herr.Conversion, "malformed @ref value")
			}
			return document.ScalarItem(document.RefValue(parseRefString(s))), nil
		}
		if exprText, ok := v["@expr"]; ok {
			s, ok := exprText.(string)
			if !ok {
				return document.Item{}, herr.New(herr.Conversion, "malformed @expr value")
			}
			node, err := expr.Parse(s, 0, cfg.Limits)
			if err != nil {
				return document.Item{}, herr.Wrap(herr.Conversion, 0, "invalid @expr value", err)
			}
			return document.ScalarItem(document.ExprValue(node)), nil
		}
		obj, err := fromPlainObject(v, doc, cfg)
		if err != nil {
			return document.Item{}, err
		}
		return document.ObjectItem(obj), nil

	case []interface{}:
		list, err := fromPlainArray(key, v, doc, cfg)
		if err != nil {
			return document.Item{}, err
		}
		return document.ListItem(list), nil

	default:
		return document.ScalarItem(fromPlainScalar(raw)), nil
	}
}

// fromPlainArray infers a matrix-list schema from a uniform array of
// objects that each carry an "id" field. Any other array shape is a
// Conversion error: HEDL has no untyped-array value case.
func fromPlainArray(key string, arr []interface{}, doc *document.Document, cfg Config) (*document.MatrixList, error) {
	if len(arr) == 0 {
		return nil, herr.New(herr.Conversion, "cannot infer a matrix-list schema from an empty array for "+key)
	}
	rowMaps := make([]map[string]interface{}, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]interface{})
		if !ok {
			return nil, herr.New(herr.Conversion, "array elements for "+key+" must be objects to become a matrix list")
		}
		if _, ok := m["id"]; !ok {
			return nil, herr.New(herr.Conversion, "array elements for "+key+" must carry an \"id\" field")
		}
		rowMaps[i] = m
	}
	schema := inferSchema(rowMaps, cfg.Cache)
	typeName := pascalCase(key)
	doc.Structs[typeName] = schema

	rows := make([]*document.Node, len(rowMaps))
	for i, m := range rowMaps {
		fields := make([]document.Value, len(schema))
		for j, col := range schema {
			fields[j] = fromPlainScalarOrRef(m[col], doc, cfg)
		}
		rows[i] = &document.Node{TypeName: typeName, ID: fields[0].Str, Fields: fields}
	}
	return &document.MatrixList{Key: key, TypeName: typeName, Schema: schema, Rows: rows}, nil
}

func fromPlainScalarOrRef(raw interface{}, doc *document.Document, cfg Config) document.Value {
	item, err := fromPlainField("", raw, doc, cfg)
	if err != nil || item.Kind != document.ItemScalar {
		return document.Null()
	}
	return item.Scalar
}

// inferSchema derives the column ordering for a batch of sampled row
// maps, consulting and populating cache when one is supplied so that
// repeated array shapes elsewhere in the same document skip
// re-inference.
func inferSchema(rows []map[string]interface{}, cache *SchemaCache) []string {
	fieldSet := map[string]bool{}
	for _, r := range rows {
		for k := range r {
			fieldSet[k] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}

	if cache != nil {
		key := NewSchemaCacheKey(fields)
		if schema, ok := cache.Get(key); ok {
			return schema
		}
		schema := inferSchemaKeys(rows)
		cache.Insert(key, schema)
		return schema
	}
	return inferSchemaKeys(rows)
}

func inferSchemaKeys(rows []map[string]interface{}) []string {
	seen := map[string]bool{"id": true}
	keys := []string{"id"}
	for _, r := range rows {
		for k := range r {
			if k == "id" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys[1:])
	return keys
}

func fromPlainScalar(raw interface{}) document.Value {
	switch v := raw.(type) {
	case nil:
		return document.Null()
	case bool:
		return document.BoolValue(v)
	case string:
		return document.StringValue(v)
	case int:
		return document.IntValue(int64(v))
	case int64:
		return document.IntValue(v)
	case float64:
		return document.FloatValue(v)
	default:
		return document.Null()
	}
}

func parseRefString(s string) document.Reference {
	if len(s) > 0 && s[0] == '@' {
		s = s[1:]
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return document.Reference{Type: s[:i], ID: s[i+1:]}
		}
	}
	return document.Reference{ID: s}
}

func pascalCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 32
	}
	return string(r)
}
