// Package expr implements HEDL's expression grammar: a
// recursive-descent arithmetic/call/index grammar whose result is
// retained as an opaque AST (document.ExprNode) and never evaluated.
package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+([eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/%().,\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// sumAST / productAST / unaryAST / postfixAST / primaryAST mirror the
// expression grammar's productions exactly, one struct each.
type sumAST struct {
	Left *productAST  `parser:"@@"`
	Rest []*opProduct `parser:"@@*"`
}

type opProduct struct {
	Op      string      `parser:"@('+' | '-')"`
	Product *productAST `parser:"@@"`
}

type productAST struct {
	Left *unaryAST  `parser:"@@"`
	Rest []*opUnary `parser:"@@*"`
}

type opUnary struct {
	Op    string    `parser:"@('*' | '/' | '%')"`
	Unary *unaryAST `parser:"@@"`
}

type unaryAST struct {
	Op      string      `parser:"( @('+' | '-' | 'not')"`
	Operand *unaryAST   `parser:"  @@ )"`
	Postfix *postfixAST `parser:"| @@"`
}

type postfixAST struct {
	Primary *primaryAST  `parser:"@@"`
	Ops     []*postfixOp `parser:"@@*"`
}

type postfixOp struct {
	Call  *callOp  `parser:"  @@"`
	Index *indexOp `parser:"| @@"`
	Field *string  `parser:"| '.' @Ident"`
}

type callOp struct {
	Args []*sumAST `parser:"'(' (@@ (',' @@)*)? ')'"`
}

type indexOp struct {
	Index *sumAST `parser:"'[' @@ ']'"`
}

type primaryAST struct {
	Float  *float64 `parser:"  @Float"`
	Int    *int64   `parser:"| @Int"`
	String *string  `parser:"| @String"`
	Ident  *string  `parser:"| @Ident"`
	Paren  *sumAST  `parser:"| '(' @@ ')'"`
}

var exprParser = participle.MustBuild[sumAST](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)
