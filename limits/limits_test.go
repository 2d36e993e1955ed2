package limits

import "testing"

func TestDefaultIsPermissive(t *testing.T) {
	l := Default()
	if l.MaxFileSize <= 0 || l.MaxNodes <= 0 || l.MaxIndentDepth <= 0 {
		t.Errorf("Default() should have large positive caps, got %+v", l)
	}
	if l.Timeout != 0 {
		t.Errorf("Default() should carry no deadline by default, got %v", l.Timeout)
	}
}

func TestStrictIsMoreConservativeThanDefault(t *testing.T) {
	d, s := Default(), Strict()
	if s.MaxFileSize >= d.MaxFileSize {
		t.Errorf("Strict().MaxFileSize = %d, want less than Default()'s %d", s.MaxFileSize, d.MaxFileSize)
	}
	if s.MaxIndentDepth >= d.MaxIndentDepth {
		t.Errorf("Strict().MaxIndentDepth = %d, want less than Default()'s %d", s.MaxIndentDepth, d.MaxIndentDepth)
	}
	if s.MaxNodes >= d.MaxNodes {
		t.Errorf("Strict().MaxNodes = %d, want less than Default()'s %d", s.MaxNodes, d.MaxNodes)
	}
}

func TestOptionsOverridePresetFields(t *testing.T) {
	l := Default(
		WithMaxFileSize(10),
		WithMaxLineLength(20),
		WithMaxNodes(30),
		WithMaxIndentDepth(4),
		WithMaxObjectKeys(5),
		WithMaxTotalKeys(6),
		WithMaxColumnCount(7),
		WithMaxAliasCount(8),
		WithMaxBlockStringSize(9),
		WithMaxExprParenDepth(2),
		WithMaxRecursionDepth(3),
		WithMaxFieldCount(11),
	)
	want := Limits{
		MaxFileSize: 10, MaxLineLength: 20, MaxNodes: 30, MaxIndentDepth: 4,
		MaxObjectKeys: 5, MaxTotalKeys: 6, MaxColumnCount: 7, MaxAliasCount: 8,
		MaxBlockStringSize: 9, MaxExprParenDepth: 2, MaxRecursionDepth: 3, MaxFieldCount: 11,
	}
	if l != want {
		t.Errorf("Default(opts...) = %+v, want %+v", l, want)
	}
}

func TestOptionsApplyOverStrictToo(t *testing.T) {
	l := Strict(WithMaxFileSize(1))
	if l.MaxFileSize != 1 {
		t.Errorf("MaxFileSize = %d, want 1", l.MaxFileSize)
	}
	if l.MaxIndentDepth != Strict().MaxIndentDepth {
		t.Errorf("unrelated field MaxIndentDepth changed: got %d, want %d", l.MaxIndentDepth, Strict().MaxIndentDepth)
	}
}

func TestWithTimeoutSetsDeadline(t *testing.T) {
	l := Default(WithTimeout(5))
	if l.Timeout != 5 {
		t.Errorf("Timeout = %v, want 5", l.Timeout)
	}
}
