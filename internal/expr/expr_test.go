package expr

import (
	"testing"

	"github.com/dweve-ai/hedl/limits"
)

func mustParse(t *testing.T, text string) string {
	t.Helper()
	node, err := Parse(text, 1, limits.Default())
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", text, err)
	}
	return Render(node)
}

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{
		`$(1 + 2)`,
		`$(a * b + c)`,
		`$(a + b * c)`,
		`$(-x)`,
		`$(not flag)`,
		`$(f(a, b))`,
	}
	for _, c := range cases {
		if got := mustParse(t, c); got != c {
			t.Errorf("round-trip %q, got %q", c, got)
		}
	}
}

func TestParsePreservesExplicitParens(t *testing.T) {
	got := mustParse(t, `$((a + b) * c)`)
	if got != `$((a + b) * c)` {
		t.Errorf("expected parens preserved on re-render, got %q", got)
	}
}

func TestParseRejectsMissingDollarParen(t *testing.T) {
	if _, err := Parse("1 + 2", 1, limits.Default()); err == nil {
		t.Fatal("expected an error for an expression missing the $( wrapper")
	}
}

func TestParseEnforcesParenDepthLimit(t *testing.T) {
	lim := limits.Default(limits.WithMaxExprParenDepth(1))
	if _, err := Parse("$(((1)))", 1, lim); err == nil {
		t.Fatal("expected an error for nesting beyond the configured paren depth")
	}
}

func TestParseUnbalancedParensRejected(t *testing.T) {
	if _, err := Parse("$(1 + 2", 1, limits.Default()); err == nil {
		t.Fatal("expected an error for an unbalanced expression")
	}
}
