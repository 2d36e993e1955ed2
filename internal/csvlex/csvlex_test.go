package csvlex

import "testing"

func TestLexUnquotedFields(t *testing.T) {
	fields, err := Lex("alice, 30, true", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alice", "30", "true"}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for i, w := range want {
		if fields[i].Value != w || fields[i].IsQuoted {
			t.Errorf("field %d = %+v, want unquoted %q", i, fields[i], w)
		}
	}
}

func TestLexQuotedFieldEscapes(t *testing.T) {
	fields, err := Lex(`"line\nbreak", "tab\there", "quote\"here"`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"line\nbreak", "tab\there", "quote\"here"}
	for i, w := range want {
		if !fields[i].IsQuoted || fields[i].Value != w {
			t.Errorf("field %d = %+v, want quoted %q", i, fields[i], w)
		}
	}
}

func TestLexTrailingCommaRejected(t *testing.T) {
	if _, err := Lex("alice, 30,", 1); err == nil {
		t.Fatal("expected an error for a trailing comma")
	}
}

func TestLexUnclosedQuoteRejected(t *testing.T) {
	if _, err := Lex(`"unterminated`, 1); err == nil {
		t.Fatal("expected an error for an unclosed quote")
	}
}

func TestLexExpressionAwareField(t *testing.T) {
	fields, err := Lex(`$(a + b), plain`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].Value != "$(a + b)" {
		t.Errorf("expression field = %q, want %q", fields[0].Value, "$(a + b)")
	}
	if fields[1].Value != "plain" {
		t.Errorf("second field = %q, want %q", fields[1].Value, "plain")
	}
}

func TestLexCommaInsideExpressionDoesNotSplitField(t *testing.T) {
	fields, err := Lex(`$(f(a, b)), next`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2 (comma inside expression must not split)", len(fields))
	}
	if fields[0].Value != "$(f(a, b))" {
		t.Errorf("expression field = %q", fields[0].Value)
	}
}
