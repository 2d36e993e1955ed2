package expr

import (
	"strconv"
	"strings"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/limits"
)

// Parse parses a full `$( ... )` field (including its delimiters) into
// an opaque document.ExprNode AST, enforcing lim's paren-depth and
// recursion-depth caps.
func Parse(text string, line int, lim limits.Limits) (*document.ExprNode, error) {
	inner, err := unwrap(text, line)
	if err != nil {
		return nil, err
	}

	if lim.MaxExprParenDepth > 0 {
		if err := checkParenDepth(inner, line, lim.MaxExprParenDepth); err != nil {
			return nil, err
		}
	}

	ast, err := exprParser.ParseString("", inner)
	if err != nil {
		return nil, herr.Wrap(herr.Syntax, line, "invalid expression", err)
	}

	c := &converter{line: line, maxDepth: lim.MaxRecursionDepth}
	return c.sum(ast, 0)
}

// unwrap validates that text is a well-balanced `$( ... )` wrapper and
// returns its inner content.
func unwrap(text string, line int) (string, error) {
	if !strings.HasPrefix(text, "$(") {
		return "", herr.At(herr.Syntax, line, "expression must start with $(")
	}
	depth := 0
	inQuotes := false
	body := text[1:] // starting at '('
	end := -1
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			if inQuotes {
				if i+1 < len(body) && body[i+1] == '"' {
					i++
					continue
				}
				inQuotes = false
			} else {
				inQuotes = true
			}
			continue
		}
		if inQuotes {
			continue
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				end = i
				break
			}
		}
	}
	if end == -1 {
		return "", herr.UnclosedExpression(line)
	}
	if end != len(body)-1 {
		return "", herr.At(herr.Syntax, line, "trailing content after expression")
	}
	return body[1:end], nil
}

func checkParenDepth(inner string, line, max int) error {
	depth := 0
	inQuotes := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '"' {
			if inQuotes && i+1 < len(inner) && inner[i+1] == '"' {
				i++
				continue
			}
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch c {
		case '(', '[':
			depth++
			if depth > max {
				return herr.At(herr.Security, line, "expression nesting exceeds the configured maximum paren depth")
			}
		case ')', ']':
			depth--
		}
	}
	return nil
}

type converter struct {
	line     int
	maxDepth int
}

func (c *converter) enter(depth int) error {
	if c.maxDepth > 0 && depth > c.maxDepth {
		return herr.At(herr.Security, c.line, "expression exceeds the configured maximum recursion depth")
	}
	return nil
}

func (c *converter) sum(n *sumAST, depth int) (*document.ExprNode, error) {
	if err := c.enter(depth); err != nil {
		return nil, err
	}
	left, err := c.product(n.Left, depth+1)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := c.product(r.Product, depth+1)
		if err != nil {
			return nil, err
		}
		left = &document.ExprNode{Kind: document.ExprBinary, Op: r.Op, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) product(n *productAST, depth int) (*document.ExprNode, error) {
	if err := c.enter(depth); err != nil {
		return nil, err
	}
	left, err := c.unary(n.Left, depth+1)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := c.unary(r.Unary, depth+1)
		if err != nil {
			return nil, err
		}
		left = &document.ExprNode{Kind: document.ExprBinary, Op: r.Op, Left: left, Right: right}
	}
	return left, nil
}

func (c *converter) unary(n *unaryAST, depth int) (*document.ExprNode, error) {
	if err := c.enter(depth); err != nil {
		return nil, err
	}
	if n.Op != "" {
		operand, err := c.unary(n.Operand, depth+1)
		if err != nil {
			return nil, err
		}
		return &document.ExprNode{Kind: document.ExprUnary, Op: n.Op, Operand: operand}, nil
	}
	return c.postfix(n.Postfix, depth+1)
}

func (c *converter) postfix(n *postfixAST, depth int) (*document.ExprNode, error) {
	if err := c.enter(depth); err != nil {
		return nil, err
	}
	node, err := c.primary(n.Primary, depth+1)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		switch {
		case op.Call != nil:
			var args []*document.ExprNode
			for _, a := range op.Call.Args {
				arg, err := c.sum(a, depth+1)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			node = &document.ExprNode{Kind: document.ExprCall, Callee: node, Args: args}
		case op.Index != nil:
			idx, err := c.sum(op.Index.Index, depth+1)
			if err != nil {
				return nil, err
			}
			node = &document.ExprNode{Kind: document.ExprIndex, Target: node, Index: idx}
		case op.Field != nil:
			node = &document.ExprNode{Kind: document.ExprField, Base: node, Field: *op.Field}
		}
	}
	return node, nil
}

func (c *converter) primary(n *primaryAST, depth int) (*document.ExprNode, error) {
	if err := c.enter(depth); err != nil {
		return nil, err
	}
	switch {
	case n.Float != nil:
		return &document.ExprNode{Kind: document.ExprNumber, FloatLit: *n.Float}, nil
	case n.Int != nil:
		return &document.ExprNode{Kind: document.ExprNumber, IsInt: true, IntLit: *n.Int}, nil
	case n.String != nil:
		s, err := unquote(*n.String)
		if err != nil {
			return nil, herr.At(herr.Syntax, c.line, "invalid string literal in expression")
		}
		return &document.ExprNode{Kind: document.ExprString, StrLit: s}, nil
	case n.Ident != nil:
		return &document.ExprNode{Kind: document.ExprIdent, Ident: *n.Ident}, nil
	case n.Paren != nil:
		return c.sum(n.Paren, depth+1)
	}
	return nil, herr.At(herr.Syntax, c.line, "empty expression primary")
}

func unquote(lit string) (string, error) {
	return strconv.Unquote(lit)
}
