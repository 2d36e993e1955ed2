package herr

import (
	"strconv"
	"strings"
	"testing"
)

// A Security message must contain neither the exact overage nor the
// exact input size; these factories satisfy that by never mentioning
// the configured limit value at all.
func TestSecurityMessagesDoNotLeakTheConfiguredLimit(t *testing.T) {
	const limit = 123456
	factories := []*Error{
		FileTooLarge(limit),
		LineTooLong(1, limit),
		IndentTooDeep(1),
	}
	needle := strconv.Itoa(limit)
	for _, e := range factories {
		if e.Kind != Security {
			t.Errorf("%v: Kind = %v, want Security", e, e.Kind)
		}
		if strings.Contains(e.Message, needle) {
			t.Errorf("message leaks the configured limit %d: %q", limit, e.Message)
		}
	}
}

func TestFileTooLargeLine(t *testing.T) {
	e := FileTooLarge(10)
	if e.Line != 0 {
		t.Errorf("FileTooLarge should carry no line, got %d", e.Line)
	}
}

func TestLineTooLongCarriesLine(t *testing.T) {
	e := LineTooLong(42, 10)
	if e.Line != 42 {
		t.Errorf("Line = %d, want 42", e.Line)
	}
}

func TestDuplicateKeyQuotesTheKeyName(t *testing.T) {
	e := DuplicateKey(3, "name")
	if !strings.Contains(e.Error(), `duplicate object key "name"`) {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestRowShapeMismatchReportsBothCounts(t *testing.T) {
	e := RowShapeMismatch(5, 3, 2)
	if !strings.Contains(e.Message, "2") || !strings.Contains(e.Message, "3") {
		t.Errorf("message should mention both counts, got %q", e.Message)
	}
}

func TestAmbiguousReferenceListsCandidates(t *testing.T) {
	e := AmbiguousReference(9, "x", []string{"User", "Org"})
	want := `reference "@x" is ambiguous among types [User, Org]`
	if !strings.Contains(e.Message, want) {
		t.Errorf("message = %q, want to contain %q", e.Message, want)
	}
}

func TestUnresolvedReferenceQualifiedVsUnqualified(t *testing.T) {
	qualified := UnresolvedReference(1, "User", "x")
	if !strings.Contains(qualified.Message, `"@User:x"`) {
		t.Errorf("qualified message = %q", qualified.Message)
	}
	unqualified := UnresolvedReference(1, "", "x")
	if !strings.Contains(unqualified.Message, `"@x"`) {
		t.Errorf("unqualified message = %q", unqualified.Message)
	}
}

func TestCollisionErrMentionsFirstDefinitionLine(t *testing.T) {
	e := CollisionErr(10, 2, "User", "alice")
	if !strings.Contains(e.Message, "first defined at line 2") {
		t.Errorf("message = %q", e.Message)
	}
}
