// Package limits defines the resource caps enforced throughout HEDL
// parsing, as a plain struct with functional options.
package limits

import "time"

// Limits bounds every unbounded structural count the parser tracks.
// All fields are resolved once at entry points and
// passed by value; there is no global, mutable limit state.
type Limits struct {
	MaxFileSize        int
	MaxLineLength      int
	MaxNodes           int
	MaxIndentDepth     int
	MaxObjectKeys      int
	MaxTotalKeys       int
	MaxColumnCount     int
	MaxAliasCount      int
	MaxBlockStringSize int
	MaxExprParenDepth  int
	MaxRecursionDepth  int
	MaxFieldCount      int

	// Timeout is an optional wall-clock parsing deadline. Zero means
	// no deadline.
	Timeout time.Duration
}

// Option mutates a Limits being constructed by Default or Strict.
type Option func(*Limits)

func WithMaxFileSize(n int) Option        { return func(l *Limits) { l.MaxFileSize = n } }
func WithMaxLineLength(n int) Option      { return func(l *Limits) { l.MaxLineLength = n } }
func WithMaxNodes(n int) Option           { return func(l *Limits) { l.MaxNodes = n } }
func WithMaxIndentDepth(n int) Option     { return func(l *Limits) { l.MaxIndentDepth = n } }
func WithMaxObjectKeys(n int) Option      { return func(l *Limits) { l.MaxObjectKeys = n } }
func WithMaxTotalKeys(n int) Option       { return func(l *Limits) { l.MaxTotalKeys = n } }
func WithMaxColumnCount(n int) Option     { return func(l *Limits) { l.MaxColumnCount = n } }
func WithMaxAliasCount(n int) Option      { return func(l *Limits) { l.MaxAliasCount = n } }
func WithMaxBlockStringSize(n int) Option { return func(l *Limits) { l.MaxBlockStringSize = n } }
func WithMaxExprParenDepth(n int) Option  { return func(l *Limits) { l.MaxExprParenDepth = n } }
func WithMaxRecursionDepth(n int) Option  { return func(l *Limits) { l.MaxRecursionDepth = n } }
func WithMaxFieldCount(n int) Option      { return func(l *Limits) { l.MaxFieldCount = n } }
func WithTimeout(d time.Duration) Option  { return func(l *Limits) { l.Timeout = d } }

// Default returns limits suitable for trusted input: large caps that
// exist to catch runaway input rather than to restrict legitimate
// documents.
func Default(opts ...Option) Limits {
	l := Limits{
		MaxFileSize:        100 * 1024 * 1024,
		MaxLineLength:      1 << 20,
		MaxNodes:           10_000_000,
		MaxIndentDepth:     10_000,
		MaxObjectKeys:      1_000_000,
		MaxTotalKeys:       10_000_000,
		MaxColumnCount:     10_000,
		MaxAliasCount:      100_000,
		MaxBlockStringSize: 100 * 1024 * 1024,
		MaxExprParenDepth:  1_000,
		MaxRecursionDepth:  10_000,
		MaxFieldCount:      10_000_000,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Strict returns a conservative preset appropriate for untrusted
// input: 64 KB block strings, 32 levels of nesting, 10^3 fields.
func Strict(opts ...Option) Limits {
	l := Limits{
		MaxFileSize:        4 * 1024 * 1024,
		MaxLineLength:      4096,
		MaxNodes:           100_000,
		MaxIndentDepth:     32,
		MaxObjectKeys:      1_000,
		MaxTotalKeys:       10_000,
		MaxColumnCount:     256,
		MaxAliasCount:      256,
		MaxBlockStringSize: 64 * 1024,
		MaxExprParenDepth:  32,
		MaxRecursionDepth:  256,
		MaxFieldCount:      1_000,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
