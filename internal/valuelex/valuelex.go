// Package valuelex classifies and decodes a lexed CSV field into a
// document.Value: null, bool, int, float, string, reference,
// expression, or tensor.
package valuelex

import (
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/csvlex"
	"github.com/dweve-ai/hedl/internal/expr"
	"github.com/dweve-ai/hedl/limits"
)

// AliasResolver looks up an alias's literal text by name, as recorded
// by the header parser.
type AliasResolver func(name string) (string, bool)

// Decode classifies and decodes f into a document.Value, resolving
// alias tokens via resolveAlias before reclassifying their expansion.
func Decode(f csvlex.Field, line int, resolveAlias AliasResolver, lim limits.Limits) (document.Value, error) {
	if f.IsQuoted {
		return document.StringValue(f.Value), nil
	}

	text := f.Value
	if text == "" {
		return document.Null(), nil
	}

	if strings.HasPrefix(text, "%") && resolveAlias != nil {
		if expanded, ok := resolveAlias(text[1:]); ok {
			return Decode(csvlex.Field{Value: expanded}, line, nil, lim)
		}
	}

	if strings.HasPrefix(text, "@") {
		return decodeReference(text, line)
	}

	if strings.HasPrefix(text, "$(") {
		node, err := expr.Parse(text, line, lim)
		if err != nil {
			return document.Value{}, err
		}
		return document.ExprValue(node), nil
	}

	if strings.HasPrefix(text, "[") {
		t, rest, err := decodeTensor(text, line, 0, lim)
		if err != nil {
			return document.Value{}, err
		}
		if strings.TrimSpace(rest) != "" {
			return document.Value{}, herr.At(herr.Syntax, line, "trailing content after tensor literal")
		}
		return document.TensorValue(t), nil
	}

	lower := strings.ToLower(text)
	if lower == "~" || lower == "null" {
		return document.Null(), nil
	}
	if lower == "true" {
		return document.BoolValue(true), nil
	}
	if lower == "false" {
		return document.BoolValue(false), nil
	}

	if iv, ok := parseInt(text); ok {
		return document.IntValue(iv), nil
	}
	if fv, ok := parseFloat(text); ok {
		return document.FloatValue(fv), nil
	}

	return document.StringValue(text), nil
}

func decodeReference(text string, line int) (document.Value, error) {
	rest := text[1:]
	if rest == "" {
		return document.Value{}, herr.At(herr.Syntax, line, "empty reference")
	}
	if idx := strings.IndexByte(rest, ':'); idx != -1 {
		typeName := rest[:idx]
		id := rest[idx+1:]
		if !isTypeName(typeName) {
			return document.Value{}, herr.At(herr.Syntax, line, "invalid type name in qualified reference")
		}
		if !isEntityID(id) {
			return document.Value{}, herr.At(herr.Syntax, line, "invalid entity id in reference")
		}
		return document.RefValue(document.Reference{Type: typeName, ID: id}), nil
	}
	if !isEntityID(rest) {
		return document.Value{}, herr.At(herr.Syntax, line, "invalid entity id in reference")
	}
	return document.RefValue(document.Reference{ID: rest}), nil
}

func isTypeName(s string) bool {
	if s == "" || !isUpper(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

func isEntityID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlnum(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlnum(r rune) bool { return isUpper(r) || isLower(r) || isDigit(r) }

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(s string) (float64, bool) {
	if !strings.ContainsAny(s, ".eE") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// decodeTensor recursively parses a tensor literal `[ ... ]` starting
// at the beginning of text and returns the parsed Tensor along with
// any unconsumed trailing text. depth tracks nesting for
// lim.MaxRecursionDepth.
func decodeTensor(text string, line int, depth int, lim limits.Limits) (document.Tensor, string, error) {
	if lim.MaxRecursionDepth > 0 && depth > lim.MaxRecursionDepth {
		return document.Tensor{}, "", herr.At(herr.Security, line, "tensor nesting exceeds the configured maximum recursion depth")
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") {
		return document.Tensor{}, "", herr.At(herr.Syntax, line, "expected tensor literal")
	}
	rest := strings.TrimSpace(text[1:])
	var elems []document.Tensor
	if strings.HasPrefix(rest, "]") {
		return document.TensorOf(elems...), rest[1:], nil
	}
	for {
		rest = strings.TrimSpace(rest)
		var elem document.Tensor
		var err error
		if strings.HasPrefix(rest, "[") {
			elem, rest, err = decodeTensor(rest, line, depth+1, lim)
			if err != nil {
				return document.Tensor{}, "", err
			}
		} else {
			isInt, iv, fv, tail, ok := takeNumber(rest)
			if !ok {
				return document.Tensor{}, "", herr.At(herr.Syntax, line, "invalid tensor element")
			}
			if isInt {
				elem = document.TensorIntLeaf(iv)
			} else {
				elem = document.TensorFloatLeaf(fv)
			}
			rest = tail
		}
		elems = append(elems, elem)
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, "]") {
			return document.TensorOf(elems...), rest[1:], nil
		}
		return document.Tensor{}, "", herr.At(herr.Syntax, line, "malformed tensor literal")
	}
}

// takeNumber consumes a leading numeric literal from s, reporting
// whether it looked like an integer (no '.', 'e', or 'E') so that the
// caller can preserve that distinction in the resulting Tensor leaf.
func takeNumber(s string) (isInt bool, iv int64, fv float64, rest string, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	looksInt := true
	for i < len(s) && (isDigit(rune(s[i])) || s[i] == '.' || s[i] == 'e' || s[i] == 'E' ||
		((s[i] == '+' || s[i] == '-') && i > start && (s[i-1] == 'e' || s[i-1] == 'E'))) {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'E' {
			looksInt = false
		}
		i++
	}
	if i == start {
		return false, 0, 0, s, false
	}
	lit := s[:i]
	if looksInt {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return false, 0, 0, s, false
		}
		return true, n, 0, s[i:], true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return false, 0, 0, s, false
	}
	return false, 0, f, s[i:], true
}
