package regions

import "testing"

func TestScanFindsQuoteAndExpressionRegions(t *testing.T) {
	line := `name: "a, b" value: $(1 + 2)`
	rs := Scan(line)
	if len(rs) != 2 {
		t.Fatalf("expected 2 regions, got %d: %+v", len(rs), rs)
	}
	if rs[0].Type != Quote {
		t.Errorf("first region = %+v, want Quote", rs[0])
	}
	if rs[1].Type != Expression {
		t.Errorf("second region = %+v, want Expression", rs[1])
	}
}

func TestScanHandlesEscapedQuoteInsideRegion(t *testing.T) {
	line := `"a ""quoted"" b"`
	rs := Scan(line)
	if len(rs) != 1 || rs[0].Start != 0 || rs[0].End != len(line) {
		t.Errorf("expected one region spanning the whole line, got %+v", rs)
	}
}

func TestScanUnclosedQuoteExtendsToEndOfLine(t *testing.T) {
	line := `name: "unterminated`
	rs := Scan(line)
	if len(rs) != 1 || rs[0].End != len(line) {
		t.Errorf("expected the unclosed quote region to extend to end of line, got %+v", rs)
	}
}

func TestScanExpressionTracksNestedParenDepth(t *testing.T) {
	line := `$(f(1, g(2, 3)) + 4) tail`
	rs := Scan(line)
	if len(rs) != 1 {
		t.Fatalf("expected 1 region, got %d: %+v", len(rs), rs)
	}
	want := `$(f(1, g(2, 3)) + 4)`
	if line[rs[0].Start:rs[0].End] != want {
		t.Errorf("region = %q, want %q", line[rs[0].Start:rs[0].End], want)
	}
}

func TestScanExpressionIgnoresParensInsideNestedQuotes(t *testing.T) {
	line := `$(f("(") + 1) tail`
	rs := Scan(line)
	if len(rs) != 1 {
		t.Fatalf("expected 1 region, got %d: %+v", len(rs), rs)
	}
	want := `$(f("(") + 1)`
	if line[rs[0].Start:rs[0].End] != want {
		t.Errorf("region = %q, want %q", line[rs[0].Start:rs[0].End], want)
	}
}

func TestStripCommentFastPathNoHash(t *testing.T) {
	if got := StripComment("age: 30  "); got != "age: 30" {
		t.Errorf("StripComment = %q, want %q", got, "age: 30")
	}
}

func TestStripCommentFastPathHashBeforeAnyRegion(t *testing.T) {
	if got := StripComment(`age: 30 # a trailing note`); got != "age: 30" {
		t.Errorf("StripComment = %q, want %q", got, "age: 30")
	}
}

func TestStripCommentIgnoresHashInsideQuotedString(t *testing.T) {
	got := StripComment(`name: "a # b" # real comment`)
	want := `name: "a # b"`
	if got != want {
		t.Errorf("StripComment = %q, want %q", got, want)
	}
}

func TestStripCommentIgnoresHashInsideExpression(t *testing.T) {
	got := StripComment(`value: $(a # not a comment) # real comment`)
	want := `value: $(a # not a comment)`
	if got != want {
		t.Errorf("StripComment = %q, want %q", got, want)
	}
}

func TestStripCommentHashAfterUnclosedQuoteStaysProtected(t *testing.T) {
	got := StripComment(`name: "unterminated # still inside`)
	want := `name: "unterminated # still inside`
	if got != want {
		t.Errorf("StripComment = %q, want %q", got, want)
	}
}
