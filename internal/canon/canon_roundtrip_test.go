package canon_test

// Round-trips that must survive a full Parse -> Render -> Parse cycle.
// Kept as an external test package so it can call the public hedl.Parse
// entry point without an import cycle back into internal/canon.

import (
	"testing"

	"github.com/dweve-ai/hedl"
	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/internal/canon"
)

// TestRenderSuffixesChildBlocksAcrossMultipleParentRows builds a list
// whose rows each carry their own NEST-grafted children - the shape
// %NEST grafting itself produces whenever a child block's rows land
// between two declarations of the parent type (each post attaches to
// whichever author block most recently preceded it). Render must give
// every parent row's child block a distinct key, or the output fails
// to re-parse with a duplicate-key error at the root.
func TestRenderSuffixesChildBlocksAcrossMultipleParentRows(t *testing.T) {
	doc := document.New()
	doc.Version = document.Version{Major: 1, Minor: 0}
	doc.Structs["Author"] = []string{"id", "name"}
	doc.Structs["Post"] = []string{"id", "title"}
	doc.Nests["Author"] = "Post"

	a1 := &document.Node{
		TypeName: "Author", ID: "a1",
		Fields: []document.Value{document.StringValue("a1"), document.StringValue("Ada")},
		Children: map[string][]*document.Node{
			"posts": {{
				TypeName: "Post", ID: "p1",
				Fields: []document.Value{document.StringValue("p1"), document.StringValue("Hello")},
			}},
		},
	}
	a2 := &document.Node{
		TypeName: "Author", ID: "a2",
		Fields: []document.Value{document.StringValue("a2"), document.StringValue("Bea")},
		Children: map[string][]*document.Node{
			"posts": {{
				TypeName: "Post", ID: "p2",
				Fields: []document.Value{document.StringValue("p2"), document.StringValue("World")},
			}},
		},
	}
	doc.Root["authors"] = document.ListItem(&document.MatrixList{
		Key: "authors", TypeName: "Author", Schema: []string{"id", "name"},
		Rows: []*document.Node{a1, a2},
	})

	out := canon.Render(doc)

	reparsed, err := hedl.Parse(out)
	if err != nil {
		t.Fatalf("re-parsing canonicalized output failed: %v\noutput:\n%s", err, out)
	}

	authors, ok := reparsed.Get("authors")
	if !ok || authors.Kind != document.ItemList || len(authors.List.Rows) != 1 {
		t.Fatalf("expected a single-row 'authors' block, got %+v", authors)
	}
	if got := authors.List.Rows[0]; got.ID != "a1" || len(got.Children["posts"]) != 1 || got.Children["posts"][0].ID != "p1" {
		t.Errorf("a1 should keep its own post p1, got %+v", got)
	}

	authors2, ok := reparsed.Get("authors_2")
	if !ok || authors2.Kind != document.ItemList || len(authors2.List.Rows) != 1 {
		t.Fatalf("expected a single-row 'authors_2' block, got %+v", authors2)
	}
	if got := authors2.List.Rows[0]; got.ID != "a2" || len(got.Children["posts_2"]) != 1 || got.Children["posts_2"][0].ID != "p2" {
		t.Errorf("a2 should keep its own post p2 under a distinct key, got %+v", got)
	}

	reRendered := canon.Render(reparsed)
	if string(reRendered) != string(out) {
		t.Errorf("re-canonicalizing the re-parsed document is not a fixpoint:\nfirst:\n%s\nsecond:\n%s", out, reRendered)
	}
}

// TestCanonicalizeTwoNestedAuthorsRoundTrips exercises the same shape
// starting from source text, with the posts interleaved between two
// Author declarations so each graft attaches to a different parent -
// the ordinary two-author extension of the NEST example.
func TestCanonicalizeTwoNestedAuthorsRoundTrips(t *testing.T) {
	input := "%VERSION: 1.0\n" +
		"%STRUCT: Author: [id, name]\n" +
		"%STRUCT: Post: [id, title]\n" +
		"%NEST: Author > Post\n" +
		"---\n" +
		"authors: @Author\n" +
		"  | a1, Ada\n" +
		"posts: @Post\n" +
		"  | p1, Hello\n" +
		"authors_2: @Author\n" +
		"  | a2, Bea\n" +
		"posts_2: @Post\n" +
		"  | p2, World\n"

	doc, err := hedl.Parse([]byte(input))
	if err != nil {
		t.Fatalf("initial parse failed: %v", err)
	}

	out := hedl.Canonicalize(doc)
	reparsed, err := hedl.Parse(out)
	if err != nil {
		t.Fatalf("re-parsing canonicalized output failed: %v\noutput:\n%s", err, out)
	}

	authors, _ := reparsed.Get("authors")
	authors2, _ := reparsed.Get("authors_2")
	if len(authors.List.Rows) != 1 || authors.List.Rows[0].Children["posts"][0].ID != "p1" {
		t.Errorf("expected a1 to keep post p1, got %+v", authors)
	}
	if len(authors2.List.Rows) != 1 || authors2.List.Rows[0].Children["posts_2"][0].ID != "p2" {
		t.Errorf("expected a2 to keep post p2, got %+v", authors2)
	}

	if second := hedl.Canonicalize(reparsed); string(second) != string(out) {
		t.Errorf("canonicalize is not idempotent:\nfirst:\n%s\nsecond:\n%s", out, second)
	}
}
