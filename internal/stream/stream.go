// Package stream implements HEDL's event-based, single-pass streaming
// parser. It reuses the region scanner, CSV row lexer, value lexer,
// expression parser, and header parser, but never materializes a full
// Document: body decoding happens one line at a time and whole-
// document invariants (ID uniqueness, reference resolution, NEST
// grafting) are not enforced in this mode.
package stream

import (
	"strings"
	"time"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/csvlex"
	"github.com/dweve-ai/hedl/internal/header"
	"github.com/dweve-ai/hedl/internal/preprocess"
	"github.com/dweve-ai/hedl/internal/regions"
	"github.com/dweve-ai/hedl/internal/valuelex"
	"github.com/dweve-ai/hedl/limits"
)

// EventKind discriminates the streaming parser's tagged event union.
type EventKind uint8

const (
	EventHeaderStart EventKind = iota
	EventDirective
	EventHeaderEnd
	EventObjectStart
	EventObjectEnd
	EventScalar
	EventListStart
	EventRow
	EventListEnd
	EventError
	EventTimeout
)

// DirectiveKind distinguishes the four header directives carried by
// an EventDirective.
type DirectiveKind uint8

const (
	DirectiveVersion DirectiveKind = iota
	DirectiveAlias
	DirectiveStruct
	DirectiveNest
)

// Event is one item of the streaming parser's pull sequence. Exactly
// the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind
	Line int

	DirectiveKind DirectiveKind
	Version       document.Version
	AliasKey      string
	AliasValue    string
	StructType    string
	StructColumns []string
	NestParent    string
	NestChild     string

	Key       string
	Value     document.Value
	TypeName  string
	Schema    []string
	CountHint *int
	Row       *document.Node

	Err     *herr.Error
	Elapsed time.Duration
	Limit   time.Duration
}

type frameKind uint8

const (
	frameObject frameKind = iota
	frameList
)

type frame struct {
	kind     frameKind
	depth    int
	schema   []string
	typeName string
	prevRow  *document.Node
}

// Stream is a pull iterator over a HEDL document's events.
type Stream struct {
	lines []preprocess.Line
	lim   limits.Limits
	doc   *document.Document

	idx           int
	started       time.Time
	stack         []*frame
	pending       []Event
	headerEmitted bool
	done          bool
}

// New preprocesses and header-parses input, then returns a Stream
// ready to emit body events one at a time.
func New(input []byte, lim limits.Limits) (*Stream, error) {
	lines, err := preprocess.Run(input, lim)
	if err != nil {
		return nil, err
	}
	res, err := header.Parse(lines, lim)
	if err != nil {
		return nil, err
	}
	return &Stream{
		lines:   lines,
		lim:     lim,
		doc:     res.Doc,
		idx:     res.BodyStart,
		started: time.Time{},
		stack:   []*frame{{kind: frameObject, depth: 0}},
	}, nil
}

// Next returns the next event, or (nil, false) once the stream is
// exhausted. After an Error or Timeout event, the stream is done and
// subsequent calls return (nil, false).
func (s *Stream) Next() (*Event, bool) {
	if !s.headerEmitted {
		s.emitHeader()
		s.headerEmitted = true
	}
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return &ev, true
	}
	if s.done {
		return nil, false
	}

	for len(s.pending) == 0 && !s.done {
		s.step()
	}
	if len(s.pending) == 0 {
		return nil, false
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return &ev, true
}

func (s *Stream) emitHeader() {
	s.pending = append(s.pending, Event{Kind: EventHeaderStart})
	s.pending = append(s.pending, Event{Kind: EventDirective, DirectiveKind: DirectiveVersion, Version: s.doc.Version})
	for _, k := range s.doc.AliasKeys() {
		v, _ := s.doc.ExpandAlias(k)
		s.pending = append(s.pending, Event{Kind: EventDirective, DirectiveKind: DirectiveAlias, AliasKey: k, AliasValue: v})
	}
	for _, t := range s.doc.StructKeys() {
		cols, _ := s.doc.Schema(t)
		s.pending = append(s.pending, Event{Kind: EventDirective, DirectiveKind: DirectiveStruct, StructType: t, StructColumns: cols})
	}
	for _, p := range s.doc.NestKeys() {
		c, _ := s.doc.ChildType(p)
		s.pending = append(s.pending, Event{Kind: EventDirective, DirectiveKind: DirectiveNest, NestParent: p, NestChild: c})
	}
	s.pending = append(s.pending, Event{Kind: EventHeaderEnd})
}

func (s *Stream) fail(err error) {
	he, ok := err.(*herr.Error)
	if !ok {
		he = herr.New(herr.IO, err.Error())
	}
	s.pending = append(s.pending, Event{Kind: EventError, Err: he})
	s.done = true
}

func (s *Stream) checkDeadline(num int) bool {
	if s.lim.Timeout <= 0 {
		return true
	}
	if s.started.IsZero() {
		s.started = time.Now()
		return true
	}
	elapsed := time.Since(s.started)
	if elapsed > s.lim.Timeout {
		s.pending = append(s.pending, Event{Kind: EventTimeout, Line: num, Elapsed: elapsed, Limit: s.lim.Timeout})
		s.done = true
		return false
	}
	return true
}

// step consumes exactly one input line, appending zero or more events
// to s.pending.
func (s *Stream) step() {
	if s.idx >= len(s.lines) {
		for len(s.stack) > 1 {
			s.popFrame()
		}
		s.done = true
		return
	}
	ln := s.lines[s.idx]
	s.idx++

	if !s.checkDeadline(ln.Num) {
		return
	}

	stripped := regions.StripComment(ln.Text)
	if preprocess.IsBlank(stripped) {
		return
	}

	depth, content, err := splitIndent(stripped, ln.Num, s.lim)
	if err != nil {
		s.fail(err)
		return
	}

	for len(s.stack) > 1 && s.stack[len(s.stack)-1].depth > depth {
		s.popFrame()
	}
	top := s.stack[len(s.stack)-1]
	if top.depth != depth {
		s.fail(herr.BadIndent(ln.Num))
		return
	}

	if top.kind == frameList {
		if !strings.HasPrefix(content, "|") {
			s.fail(herr.At(herr.Syntax, ln.Num, "expected a matrix row starting with '|'"))
			return
		}
		row, err := s.decodeRow(content[1:], ln.Num, top)
		if err != nil {
			s.fail(err)
			return
		}
		top.prevRow = row
		s.pending = append(s.pending, Event{Kind: EventRow, Line: ln.Num, Row: row})
		return
	}

	if strings.HasPrefix(content, "|") {
		s.fail(herr.At(herr.Syntax, ln.Num, "row line not permitted outside a matrix list"))
		return
	}

	s.stepKeyLine(content, ln.Num, depth)
}

func (s *Stream) popFrame() {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if f.kind == frameObject {
		s.pending = append(s.pending, Event{Kind: EventObjectEnd})
	} else {
		s.pending = append(s.pending, Event{Kind: EventListEnd})
	}
}

func (s *Stream) resolveAlias(name string) (string, bool) { return s.doc.ExpandAlias(name) }

func (s *Stream) stepKeyLine(content string, num, depth int) {
	colon := strings.IndexByte(content, ':')
	if colon == -1 {
		s.fail(herr.At(herr.Syntax, num, "expected ':' after key"))
		return
	}
	keyPart := content[:colon]
	rest := strings.TrimSpace(content[colon+1:])
	name := strings.TrimSpace(stripCountHintKey(keyPart))

	if rest == "" {
		s.pending = append(s.pending, Event{Kind: EventObjectStart, Key: name, Line: num})
		s.stack = append(s.stack, &frame{kind: frameObject, depth: depth + 1})
		return
	}

	if typeName, ok := bareTypeRef(rest); ok {
		schema, ok := s.doc.Schema(typeName)
		if !ok {
			s.fail(herr.At(herr.Schema, num, "matrix list references undefined type "+typeName))
			return
		}
		hint := parseCountHint(keyPart)
		s.pending = append(s.pending, Event{Kind: EventListStart, Key: name, TypeName: typeName, Schema: schema, CountHint: hint, Line: num})
		s.stack = append(s.stack, &frame{kind: frameList, depth: depth + 1, schema: schema, typeName: typeName})
		return
	}

	fields, err := csvlex.Lex(rest, num)
	if err != nil {
		s.fail(err)
		return
	}
	if len(fields) != 1 {
		s.fail(herr.At(herr.Syntax, num, "expected a single scalar value"))
		return
	}
	if !fields[0].IsQuoted && fields[0].Value == "^" {
		s.fail(herr.DittoOutsideMatrix(num))
		return
	}
	val, err := valuelex.Decode(fields[0], num, s.resolveAlias, s.lim)
	if err != nil {
		s.fail(err)
		return
	}
	s.pending = append(s.pending, Event{Kind: EventScalar, Key: name, Value: val, Line: num})
}

func (s *Stream) decodeRow(payload string, num int, top *frame) (*document.Node, error) {
	fields, err := csvlex.Lex(payload, num)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(top.schema) {
		return nil, herr.RowShapeMismatch(num, len(top.schema), len(fields))
	}
	values := make([]document.Value, len(fields))
	for i, f := range fields {
		if !f.IsQuoted && f.Value == "^" {
			if i == 0 {
				return nil, herr.DittoInIDColumn(num)
			}
			if top.prevRow == nil {
				return nil, herr.DittoFirstRow(num)
			}
			values[i] = top.prevRow.Fields[i]
			continue
		}
		v, err := valuelex.Decode(f, num, s.resolveAlias, s.lim)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	if values[0].IsNull() {
		return nil, herr.NullID(num)
	}
	if values[0].Kind != document.KindString {
		return nil, herr.At(herr.Semantic, num, "entity ID must be a bare identifier")
	}
	return &document.Node{TypeName: top.typeName, ID: values[0].Str, Fields: values, Line: num}, nil
}

func splitIndent(line string, num int, lim limits.Limits) (int, string, error) {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	if i < len(line) && line[i] == '\t' {
		return 0, "", herr.BadIndent(num)
	}
	if i%2 != 0 {
		return 0, "", herr.BadIndent(num)
	}
	depth := i / 2
	if lim.MaxIndentDepth > 0 && depth > lim.MaxIndentDepth {
		return 0, "", herr.IndentTooDeep(num)
	}
	return depth, line[i:], nil
}

func stripCountHintKey(s string) string {
	s = strings.TrimSpace(s)
	if p := strings.IndexByte(s, '('); p != -1 {
		return s[:p]
	}
	return s
}

func parseCountHint(s string) *int {
	s = strings.TrimSpace(s)
	p := strings.IndexByte(s, '(')
	if p == -1 || !strings.HasSuffix(s, ")") {
		return nil
	}
	n := 0
	for _, r := range s[p+1 : len(s)-1] {
		if r < '0' || r > '9' {
			return nil
		}
		n = n*10 + int(r-'0')
	}
	return &n
}

func bareTypeRef(rest string) (string, bool) {
	if !strings.HasPrefix(rest, "@") {
		return "", false
	}
	name := rest[1:]
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return "", false
	}
	for _, r := range name {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return "", false
		}
	}
	return name, true
}
