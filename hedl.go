// Package hedl implements the Hierarchical Entity Data Language: an
// indentation-sensitive, typed, CSV-flavored data format with
// cross-entity references and automatic parent/child reparenting.
//
// The public surface is deliberately small: Parse, Canonicalize, and
// Stream, over an internal, component-per-stage pipeline.
package hedl

import (
	"time"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/internal/body"
	"github.com/dweve-ai/hedl/internal/canon"
	"github.com/dweve-ai/hedl/internal/header"
	"github.com/dweve-ai/hedl/internal/nest"
	"github.com/dweve-ai/hedl/internal/preprocess"
	"github.com/dweve-ai/hedl/internal/resolve"
	"github.com/dweve-ai/hedl/internal/stream"
	"github.com/dweve-ai/hedl/limits"
)

// Parse runs the full batch pipeline (preprocess, header, body, NEST
// graft, resolve) over input, returning a fully resolved, immutable
// Document. lim defaults to limits.Default() when omitted.
func Parse(input []byte, lim ...limits.Limits) (*document.Document, error) {
	l := resolveLimits(lim)
	deadline := newDeadline(l)

	lines, err := preprocess.Run(input, l)
	if err != nil {
		return nil, err
	}
	if err := deadline.check(); err != nil {
		return nil, err
	}
	res, err := header.Parse(lines, l)
	if err != nil {
		return nil, err
	}
	doc := res.Doc
	if err := deadline.check(); err != nil {
		return nil, err
	}
	if err := body.Parse(lines, res.BodyStart, doc, l); err != nil {
		return nil, err
	}
	if err := deadline.check(); err != nil {
		return nil, err
	}
	if err := nest.Graft(doc, l); err != nil {
		return nil, err
	}
	if err := deadline.check(); err != nil {
		return nil, err
	}
	if _, err := resolve.Run(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// deadline is the batch parser's coarse wall-clock cutoff, checked at
// each pipeline stage boundary rather than per line.
type deadline struct {
	start time.Time
	limit time.Duration
}

func newDeadline(l limits.Limits) deadline {
	if l.Timeout <= 0 {
		return deadline{}
	}
	return deadline{start: time.Now(), limit: l.Timeout}
}

func (d deadline) check() error {
	if d.limit <= 0 {
		return nil
	}
	if time.Since(d.start) > d.limit {
		return herr.New(herr.Security, "parse deadline exceeded: configured timeout of "+d.limit.String())
	}
	return nil
}

// Canonicalize renders doc's unique canonical byte form. The result
// is a fixed point: re-canonicalizing Parse(Canonicalize(doc))
// reproduces the same bytes. That parse equals doc except where a
// matrix list of more than one row carries NEST-grafted children:
// such a list is written one row per block under suffixed keys (key,
// key_2, ...), so the re-parsed Document holds one root list per row,
// each row keeping its own grafted children.
func Canonicalize(doc *document.Document) []byte {
	return canon.Render(doc)
}

// Stream returns a pull iterator of parse events over input, without
// materializing a full Document. Whole-document invariants
// (ID uniqueness, reference resolution, NEST grafting) are not
// enforced in this mode.
func Stream(input []byte, lim ...limits.Limits) (*stream.Stream, error) {
	return stream.New(input, resolveLimits(lim))
}

func resolveLimits(lim []limits.Limits) limits.Limits {
	if len(lim) > 0 {
		return lim[0]
	}
	return limits.Default()
}
