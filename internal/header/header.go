// Package header parses the HEDL header: %VERSION, %STRUCT, %ALIAS,
// and %NEST directives, up to the `---` separator.
package header

import (
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/preprocess"
	"github.com/dweve-ai/hedl/limits"
)

// Result carries the parsed header tables plus the index (into the
// input Line slice) of the first body line, immediately after `---`.
type Result struct {
	Doc       *document.Document
	BodyStart int
}

// Parse scans lines for header directives and returns the populated
// Document tables and the body start index.
func Parse(lines []preprocess.Line, lim limits.Limits) (*Result, error) {
	doc := document.New()

	sawVersion := false
	aliasCount := 0

	for i, ln := range lines {
		text := ln.Text

		if preprocess.IsBlank(text) || preprocess.IsComment(text) {
			continue
		}

		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(text, "---") {
			if len(strings.TrimSpace(text)) != 3 {
				return nil, herr.At(herr.Syntax, ln.Num, "--- separator must appear alone on its line")
			}
			if !sawVersion {
				return nil, herr.At(herr.Version, ln.Num, "%VERSION directive is required before ---")
			}
			return &Result{Doc: doc, BodyStart: i + 1}, nil
		}

		if !strings.HasPrefix(trimmed, "%") {
			return nil, herr.At(herr.Syntax, ln.Num, "header lines must be blank, a comment, or begin with %")
		}

		switch {
		case strings.HasPrefix(trimmed, "%VERSION"):
			if sawVersion {
				return nil, herr.At(herr.Version, ln.Num, "duplicate %VERSION directive")
			}
			v, err := parseVersion(trimmed, ln.Num)
			if err != nil {
				return nil, err
			}
			doc.Version = v
			sawVersion = true

		case strings.HasPrefix(trimmed, "%STRUCT"):
			if !sawVersion {
				return nil, herr.At(herr.Version, ln.Num, "%VERSION must be the first directive")
			}
			name, cols, err := parseStruct(trimmed, ln.Num, lim)
			if err != nil {
				return nil, err
			}
			if existing, ok := doc.Structs[name]; ok {
				_ = existing
				return nil, herr.At(herr.Schema, ln.Num, "duplicate_struct: "+name+" already defined")
			}
			doc.Structs[name] = cols

		case strings.HasPrefix(trimmed, "%ALIAS"):
			if !sawVersion {
				return nil, herr.At(herr.Version, ln.Num, "%VERSION must be the first directive")
			}
			key, val, err := parseAlias(trimmed, ln.Num)
			if err != nil {
				return nil, err
			}
			if _, ok := doc.Aliases[key]; ok {
				return nil, herr.At(herr.Alias, ln.Num, "duplicate alias %"+key)
			}
			aliasCount++
			if lim.MaxAliasCount > 0 && aliasCount > lim.MaxAliasCount {
				return nil, herr.At(herr.Security, ln.Num, "alias count exceeds the configured maximum")
			}
			doc.Aliases[key] = val

		case strings.HasPrefix(trimmed, "%NEST"):
			if !sawVersion {
				return nil, herr.At(herr.Version, ln.Num, "%VERSION must be the first directive")
			}
			parent, child, err := parseNest(trimmed, ln.Num)
			if err != nil {
				return nil, err
			}
			if _, ok := doc.Structs[parent]; !ok {
				return nil, herr.At(herr.Schema, ln.Num, "NEST parent type "+parent+" is not defined by %STRUCT")
			}
			if _, ok := doc.Structs[child]; !ok {
				return nil, herr.At(herr.Schema, ln.Num, "NEST child type "+child+" is not defined by %STRUCT")
			}
			if _, ok := doc.Nests[parent]; ok {
				return nil, herr.At(herr.Schema, ln.Num, "duplicate %NEST for parent "+parent)
			}
			doc.Nests[parent] = child

		default:
			return nil, herr.At(herr.Syntax, ln.Num, "unrecognized header directive")
		}
	}

	return nil, herr.At(herr.Syntax, 0, "missing --- header/body separator")
}

func parseVersion(line string, num int) (document.Version, error) {
	rest, ok := afterColon(line, "%VERSION")
	if !ok {
		return document.Version{}, herr.At(herr.Version, num, "malformed %VERSION directive")
	}
	rest = strings.TrimSpace(rest)
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return document.Version{}, herr.At(herr.Version, num, "%VERSION must be of the form M.N")
	}
	major, err := parseUintNoLeadingZero(parts[0])
	if err != nil {
		return document.Version{}, herr.At(herr.Version, num, "invalid %VERSION major component")
	}
	minor, err := parseUintNoLeadingZero(parts[1])
	if err != nil {
		return document.Version{}, herr.At(herr.Version, num, "invalid %VERSION minor component")
	}
	if major != 1 || minor != 0 {
		return document.Version{}, herr.At(herr.Version, num, "unsupported HEDL version; only 1.0 is accepted")
	}
	return document.Version{Major: major, Minor: minor}, nil
}

func parseUintNoLeadingZero(s string) (uint32, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func afterColon(line, directive string) (string, bool) {
	if !strings.HasPrefix(line, directive) {
		return "", false
	}
	rest := line[len(directive):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return rest[1:], true
}

// parseStruct parses `%STRUCT: Type[(n)]: [col1, col2, ...]`.
func parseStruct(line string, num int, lim limits.Limits) (string, []string, error) {
	rest, ok := afterColon(line, "%STRUCT")
	if !ok {
		return "", nil, herr.At(herr.Schema, num, "malformed %STRUCT directive")
	}
	rest = strings.TrimSpace(rest)

	colonIdx := strings.IndexByte(rest, ':')
	if colonIdx == -1 {
		return "", nil, herr.At(herr.Schema, num, "%STRUCT missing column list")
	}
	head := strings.TrimSpace(rest[:colonIdx])
	tail := strings.TrimSpace(rest[colonIdx+1:])

	name := head
	if p := strings.IndexByte(head, '('); p != -1 {
		if !strings.HasSuffix(head, ")") {
			return "", nil, herr.At(herr.Schema, num, "malformed count hint in %STRUCT")
		}
		name = strings.TrimSpace(head[:p])
		hint := head[p+1 : len(head)-1]
		if _, err := parseUintNoLeadingZero(hint); err != nil {
			return "", nil, herr.At(herr.Schema, num, "malformed count hint in %STRUCT")
		}
	}
	if !isTypeName(name) {
		return "", nil, herr.At(herr.Schema, num, "%STRUCT type name must be PascalCase")
	}

	if !strings.HasPrefix(tail, "[") || !strings.HasSuffix(tail, "]") {
		return "", nil, herr.At(herr.Schema, num, "%STRUCT column list must be bracketed")
	}
	inner := strings.TrimSpace(tail[1 : len(tail)-1])
	if inner == "" {
		return "", nil, herr.At(herr.Schema, num, "%STRUCT column list must not be empty")
	}
	rawCols := strings.Split(inner, ",")
	cols := make([]string, 0, len(rawCols))
	seen := make(map[string]bool, len(rawCols))
	for _, c := range rawCols {
		c = strings.TrimSpace(c)
		if !isColumnName(c) {
			return "", nil, herr.At(herr.Schema, num, "invalid column name "+c+" in %STRUCT")
		}
		if seen[c] {
			return "", nil, herr.At(herr.Schema, num, "duplicate column name "+c+" in %STRUCT")
		}
		seen[c] = true
		cols = append(cols, c)
	}
	if lim.MaxColumnCount > 0 && len(cols) > lim.MaxColumnCount {
		return "", nil, herr.At(herr.Security, num, "column count exceeds the configured maximum")
	}
	return name, cols, nil
}

// parseAlias parses `%ALIAS: %key: "value"`.
func parseAlias(line string, num int) (string, string, error) {
	rest, ok := afterColon(line, "%ALIAS")
	if !ok {
		return "", "", herr.At(herr.Alias, num, "malformed %ALIAS directive")
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "%") {
		return "", "", herr.At(herr.Alias, num, "%ALIAS key must begin with %")
	}
	rest = rest[1:]
	colonIdx := strings.IndexByte(rest, ':')
	if colonIdx == -1 {
		return "", "", herr.At(herr.Alias, num, "%ALIAS missing value")
	}
	key := strings.TrimSpace(rest[:colonIdx])
	if !isIdentifier(key) {
		return "", "", herr.At(herr.Alias, num, "malformed %ALIAS key")
	}
	val := strings.TrimSpace(rest[colonIdx+1:])
	if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
		return "", "", herr.At(herr.Alias, num, "%ALIAS value must be a quoted string")
	}
	unquoted, err := unquoteSimple(val)
	if err != nil {
		return "", "", herr.At(herr.Alias, num, "malformed %ALIAS string value")
	}
	return key, unquoted, nil
}

// parseNest parses `%NEST: Parent > Child`.
func parseNest(line string, num int) (string, string, error) {
	rest, ok := afterColon(line, "%NEST")
	if !ok {
		return "", "", herr.At(herr.Schema, num, "malformed %NEST directive")
	}
	parts := strings.SplitN(rest, ">", 2)
	if len(parts) != 2 {
		return "", "", herr.At(herr.Schema, num, "%NEST must be of the form Parent > Child")
	}
	parent := strings.TrimSpace(parts[0])
	child := strings.TrimSpace(parts[1])
	if !isTypeName(parent) || !isTypeName(child) {
		return "", "", herr.At(herr.Schema, num, "%NEST parent/child must be PascalCase type names")
	}
	return parent, child, nil
}

func unquoteSimple(s string) (string, error) {
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			switch inner[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte('\\')
				b.WriteByte(inner[i+1])
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func isTypeName(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for _, r := range s {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for _, r := range s {
		if !isLowerAlnum(r) {
			return false
		}
	}
	return true
}

func isColumnName(s string) bool { return isIdentifier(s) }

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}
