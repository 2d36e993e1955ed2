// Package csvlex tokenizes the payload of a matrix row into an
// ordered vector of fields, tracking quoted strings, $(...)
// expressions, and bracketed tensor literals so that commas inside
// them do not split fields.
package csvlex

import (
	"strings"

	"github.com/dweve-ai/hedl/herr"
)

// Field is one lexed matrix-row cell.
type Field struct {
	Value    string
	IsQuoted bool
}

// Lex tokenizes row (the payload after the leading '|') into an
// ordered list of Fields.
func Lex(row string, line int) ([]Field, error) {
	if strings.HasSuffix(strings.TrimRight(row, " \t"), ",") {
		return nil, herr.TrailingComma(line)
	}

	runes := []rune(row)
	var fields []Field
	i := 0
	n := len(runes)

	for {
		for i < n && isSpace(runes[i]) {
			i++
		}
		if i >= n {
			break
		}

		f, next, err := parseField(runes, i, line)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		i = next

		for i < n && isSpace(runes[i]) {
			i++
		}
		if i < n {
			if runes[i] == ',' {
				i++
			} else {
				return nil, herr.At(herr.Syntax, line, "expected comma or end of line")
			}
		}
	}

	return fields, nil
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

func parseField(runes []rune, start, line int) (Field, int, error) {
	if start >= len(runes) {
		return Field{}, start, nil
	}
	if runes[start] == '"' {
		return parseQuotedField(runes, start, line)
	}
	return parseUnquotedField(runes, start, line)
}

func parseQuotedField(runes []rune, start, line int) (Field, int, error) {
	i := start + 1
	var b strings.Builder
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			return Field{Value: b.String(), IsQuoted: true}, i + 1, nil
		case c == '\\' && i+1 < len(runes):
			next := runes[i+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
				i += 2
			case 't':
				b.WriteByte('\t')
				i += 2
			case 'r':
				b.WriteByte('\r')
				i += 2
			case '\\':
				b.WriteByte('\\')
				i += 2
			case '"':
				b.WriteByte('"')
				i += 2
			default:
				b.WriteRune(c)
				i++
			}
		default:
			b.WriteRune(c)
			i++
		}
	}
	return Field{}, i, herr.UnclosedQuote(line)
}

func parseUnquotedField(runes []rune, start, line int) (Field, int, error) {
	i := start
	var b strings.Builder
	exprDepth := 0
	bracketDepth := 0
	inExprQuotes := false

	for i < len(runes) {
		c := runes[i]

		if c == ',' && exprDepth == 0 && bracketDepth == 0 {
			break
		}

		if c == '$' && i+1 < len(runes) && runes[i+1] == '(' {
			exprDepth++
			b.WriteRune(c)
			b.WriteRune(runes[i+1])
			i += 2
			continue
		}

		if exprDepth == 0 && c == '[' {
			bracketDepth++
			b.WriteRune(c)
			i++
			continue
		}
		if bracketDepth > 0 && c == ']' {
			bracketDepth--
			b.WriteRune(c)
			i++
			continue
		}

		if exprDepth > 0 {
			if c == '"' {
				if inExprQuotes {
					if i+1 < len(runes) && runes[i+1] == '"' {
						b.WriteString(`""`)
						i += 2
						continue
					}
					inExprQuotes = false
				} else {
					inExprQuotes = true
				}
			} else if !inExprQuotes {
				if c == '(' {
					exprDepth++
				} else if c == ')' {
					exprDepth--
				}
			}
			b.WriteRune(c)
			i++
			continue
		}

		if c == '"' {
			return Field{}, i, herr.At(herr.Syntax, line, "unexpected '\"' in unquoted field")
		}

		b.WriteRune(c)
		i++
	}

	if exprDepth > 0 {
		return Field{}, i, herr.UnclosedExpression(line)
	}
	if bracketDepth > 0 {
		return Field{}, i, herr.At(herr.Syntax, line, "unclosed tensor literal")
	}

	return Field{Value: strings.TrimSpace(b.String()), IsQuoted: false}, i, nil
}
