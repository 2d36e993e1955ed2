package header

import (
	"strings"
	"testing"

	"github.com/dweve-ai/hedl/internal/preprocess"
	"github.com/dweve-ai/hedl/limits"
)

func lex(t *testing.T, text string) []preprocess.Line {
	t.Helper()
	lines, err := preprocess.Run([]byte(text), limits.Default())
	if err != nil {
		t.Fatalf("preprocess error: %v", err)
	}
	return lines
}

func TestParseVersionStructAliasNest(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Author: [id, name]
%STRUCT: Post: [id, title]
%ALIAS: %greeting: "hi"
%NEST: Author > Post
---
body line
`
	res, err := Parse(lex(t, input), limits.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Doc.Version.Major != 1 || res.Doc.Version.Minor != 0 {
		t.Errorf("version = %+v", res.Doc.Version)
	}
	if _, ok := res.Doc.Structs["Author"]; !ok {
		t.Error("expected Author struct")
	}
	if res.Doc.Aliases["greeting"] != "hi" {
		t.Errorf("alias greeting = %q", res.Doc.Aliases["greeting"])
	}
	if res.Doc.Nests["Author"] != "Post" {
		t.Errorf("nest Author -> %q, want Post", res.Doc.Nests["Author"])
	}
	if !strings.HasPrefix(lex(t, input)[res.BodyStart].Text, "body") {
		t.Errorf("BodyStart points at %q", lex(t, input)[res.BodyStart].Text)
	}
}

func TestParseRejectsDuplicateStruct(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id]
%STRUCT: User: [id, name]
---
`
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected a duplicate-struct error")
	}
}

func TestParseRejectsLeadingZeroInVersion(t *testing.T) {
	input := "%VERSION: 01.0\n---\n"
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected an error for a leading zero in %VERSION")
	}
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	input := "%VERSION: 2.0\n---\n"
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}

func TestParseNestRequiresDefinedTypes(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: Author: [id, name]
%NEST: Author > Post
---
`
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected an error for a NEST referencing an undefined child type")
	}
}

func TestParseRequiresVersionBeforeSeparator(t *testing.T) {
	input := "---\n"
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected an error when --- appears before %VERSION")
	}
}

func TestParseRejectsDuplicateAlias(t *testing.T) {
	input := `%VERSION: 1.0
%ALIAS: %x: "1"
%ALIAS: %x: "2"
---
`
	if _, err := Parse(lex(t, input), limits.Default()); err == nil {
		t.Fatal("expected a duplicate-alias error")
	}
}

func TestParseStructColumnCountLimitEnforced(t *testing.T) {
	lim := limits.Default(limits.WithMaxColumnCount(2))
	input := "%VERSION: 1.0\n%STRUCT: User: [id, a, b]\n---\n"
	if _, err := Parse(lex(t, input), lim); err == nil {
		t.Fatal("expected an error for exceeding the configured column count limit")
	}
}
