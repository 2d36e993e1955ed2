package herr

import "strconv"

// This file centralizes the error-message strings used across the
// parser packages: one source of truth per error kind.

func FileTooLarge(limit int) *Error {
	return New(Security, "file too large: exceeds the configured size limit")
}

func LineTooLong(line, limit int) *Error {
	return At(Security, line, "line too long: exceeds the configured line length limit")
}

func InvalidUTF8() *Error {
	return At(Syntax, 1, "invalid UTF-8 encoding")
}

func ControlChar(line int) *Error {
	return At(Syntax, line, "control character not allowed")
}

func BareCR(line int) *Error {
	return At(Syntax, line, "bare CR (U+000D) not allowed - use LF or CRLF")
}

func TrailingComma(line int) *Error {
	return At(Syntax, line, "trailing comma not allowed in matrix row")
}

func UnclosedQuote(line int) *Error {
	return At(Syntax, line, "unclosed quoted field")
}

func UnclosedExpression(line int) *Error {
	return At(Syntax, line, "unclosed expression")
}

func BadIndent(line int) *Error {
	return At(Syntax, line, "indentation must be a non-negative multiple of 2 spaces")
}

func IndentTooDeep(line int) *Error {
	return At(Security, line, "indentation exceeds the configured maximum depth")
}

func TruncatedObject(line int) *Error {
	return At(Syntax, line, "object has no children")
}

func DuplicateKey(line int, key string) *Error {
	return At(Syntax, line, "duplicate object key "+quote(key))
}

func RowShapeMismatch(line, want, got int) *Error {
	return At(Shape, line, "row has "+strconv.Itoa(got)+" cell(s), schema requires "+strconv.Itoa(want))
}

func DittoInIDColumn(line int) *Error {
	return At(Semantic, line, "ditto (^) is not permitted in the ID column")
}

func DittoOutsideMatrix(line int) *Error {
	return At(Semantic, line, "ditto (^) is only permitted inside a matrix row")
}

func DittoFirstRow(line int) *Error {
	return At(Semantic, line, "ditto (^) is not permitted in the first row of a list")
}

func NullID(line int) *Error {
	return At(Semantic, line, "entity ID must not be null")
}

func OrphanRowErr(line int, typeName string) *Error {
	return At(OrphanRow, line, "row of type "+quote(typeName)+" has no NEST parent in scope")
}

func CollisionErr(line, otherLine int, typeName, id string) *Error {
	return At(Collision, line, "duplicate id "+quote(id)+" for type "+quote(typeName)+" (first defined at line "+strconv.Itoa(otherLine)+")")
}

func UnresolvedReference(line int, typeName, id string) *Error {
	if typeName != "" {
		return At(Reference, line, "reference "+quote("@"+typeName+":"+id)+" does not resolve to any node")
	}
	return At(Reference, line, "reference "+quote("@"+id)+" does not resolve to any node")
}

func AmbiguousReference(line int, id string, candidates []string) *Error {
	msg := "reference " + quote("@"+id) + " is ambiguous among types ["
	for i, c := range candidates {
		if i > 0 {
			msg += ", "
		}
		msg += c
	}
	msg += "]"
	return At(Reference, line, msg)
}

func quote(s string) string { return "\"" + s + "\"" }
