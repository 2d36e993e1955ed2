package stream

import (
	"testing"

	"github.com/dweve-ai/hedl/limits"
)

func collectEvents(t *testing.T, s *Stream) []Event {
	t.Helper()
	var events []Event
	for {
		ev, ok := s.Next()
		if !ok {
			break
		}
		events = append(events, *ev)
		if ev.Kind == EventError || ev.Kind == EventTimeout {
			break
		}
	}
	return events
}

func TestStreamEmitsHeaderThenBodyEvents(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
---
users: @User
  | alice, Alice
  | bob, Bob
`
	s, err := New([]byte(input), limits.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := collectEvents(t, s)

	wantPrefix := []EventKind{EventHeaderStart, EventDirective, EventDirective, EventHeaderEnd, EventListStart, EventRow, EventRow, EventListEnd}
	if len(events) < len(wantPrefix) {
		t.Fatalf("got %d events, want at least %d", len(events), len(wantPrefix))
	}
	for i, k := range wantPrefix {
		if events[i].Kind != k {
			t.Errorf("event[%d].Kind = %v, want %v", i, events[i].Kind, k)
		}
	}
	var rows int
	for _, ev := range events {
		if ev.Kind == EventRow {
			rows++
		}
	}
	if rows != 2 {
		t.Errorf("got %d EventRow events, want 2", rows)
	}
}

func TestStreamEmitsObjectStartAndEnd(t *testing.T) {
	input := "%VERSION: 1.0\n---\nouter:\n  leaf: 1\n"
	s, err := New([]byte(input), limits.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := collectEvents(t, s)

	var sawStart, sawScalar, sawEnd bool
	for _, ev := range events {
		switch ev.Kind {
		case EventObjectStart:
			sawStart = true
		case EventScalar:
			sawScalar = true
		case EventObjectEnd:
			sawEnd = true
		}
	}
	if !sawStart || !sawScalar || !sawEnd {
		t.Errorf("missing object lifecycle events: start=%v scalar=%v end=%v", sawStart, sawScalar, sawEnd)
	}
}

func TestStreamEmitsErrorOnMalformedRow(t *testing.T) {
	input := `%VERSION: 1.0
%STRUCT: User: [id, name]
---
users: @User
  | alice
`
	s, err := New([]byte(input), limits.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := collectEvents(t, s)

	last := events[len(events)-1]
	if last.Kind != EventError {
		t.Fatalf("expected a final EventError, got %v", last.Kind)
	}
	if last.Err == nil {
		t.Error("expected Err to be populated on an EventError")
	}
}

func TestStreamEmitsTimeoutWhenDeadlineExceeded(t *testing.T) {
	input := "%VERSION: 1.0\n---\na: 1\nb: 2\nc: 3\n"
	lim := limits.Default(limits.WithTimeout(1))
	s, err := New([]byte(input), lim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The deadline starts on the first body line checked, so with a 1ns
	// timeout, any subsequent line's elapsed time exceeds it.
	events := collectEvents(t, s)

	var sawTimeout bool
	for _, ev := range events {
		if ev.Kind == EventTimeout {
			sawTimeout = true
		}
	}
	if !sawTimeout {
		t.Error("expected an EventTimeout once the configured deadline elapsed")
	}
}
