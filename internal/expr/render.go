package expr

import (
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
)

// Render produces the canonical `$( ... )` textual form of an
// expression AST. Canonical rendering is required to be byte-
// identical to this fixed pretty-printing so that expressions
// round-trip.
func Render(n *document.ExprNode) string {
	return "$(" + render(n, 0) + ")"
}

func precedence(n *document.ExprNode) int {
	switch n.Kind {
	case document.ExprBinary:
		if n.Op == "+" || n.Op == "-" {
			return 1
		}
		return 2
	case document.ExprUnary:
		return 3
	default:
		return 4
	}
}

// render renders n, parenthesizing it if its own precedence is lower
// than minPrec. Binary right-hand operands are always rendered with
// minPrec one higher than the operator's own precedence: since the
// AST is built strictly left-associatively (internal/expr/expr.go:
// sum/product fold left), a right child whose precedence is not higher
// than its parent's must have come from an explicit parenthesized
// group in the source, and this guarantees it is re-parenthesized on
// the way back out. A right child of higher precedence (b * c in
// a + b * c) renders without parentheses.
func render(n *document.ExprNode, minPrec int) string {
	var s string
	switch n.Kind {
	case document.ExprNumber:
		if n.IsInt {
			s = strconv.FormatInt(n.IntLit, 10)
		} else {
			s = document.FormatFloat(n.FloatLit)
		}
	case document.ExprString:
		s = strconv.Quote(n.StrLit)
	case document.ExprIdent:
		s = n.Ident
	case document.ExprUnary:
		inner := render(n.Operand, 3)
		if n.Op == "not" {
			s = "not " + inner
		} else {
			s = n.Op + inner
		}
	case document.ExprBinary:
		left := render(n.Left, precedence(n))
		right := render(n.Right, precedence(n)+1)
		s = left + " " + n.Op + " " + right
	case document.ExprCall:
		callee := render(n.Callee, 4)
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = render(a, 1)
		}
		s = callee + "(" + strings.Join(args, ", ") + ")"
	case document.ExprIndex:
		s = render(n.Target, 4) + "[" + render(n.Index, 1) + "]"
	case document.ExprField:
		s = render(n.Base, 4) + "." + n.Field
	}

	if precedence(n) < minPrec {
		return "(" + s + ")"
	}
	return s
}
