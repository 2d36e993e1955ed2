package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestExitCodeForUserError(t *testing.T) {
	err := userError(errors.New("bad input"))
	if got := exitCodeFor(err); got != exitUser {
		t.Errorf("exitCodeFor(userError) = %d, want %d", got, exitUser)
	}
}

func TestExitCodeForIOError(t *testing.T) {
	err := ioError(errors.New("disk full"))
	if got := exitCodeFor(err); got != exitIO {
		t.Errorf("exitCodeFor(ioError) = %d, want %d", got, exitIO)
	}
}

func TestExitCodeForInternalError(t *testing.T) {
	err := internalError(errors.New("panic recovered"))
	if got := exitCodeFor(err); got != exitInternal {
		t.Errorf("exitCodeFor(internalError) = %d, want %d", got, exitInternal)
	}
}

func TestExitCodeForUnwrappedErrorDefaultsToInternal(t *testing.T) {
	if got := exitCodeFor(errors.New("plain")); got != exitInternal {
		t.Errorf("exitCodeFor(plain error) = %d, want %d", got, exitInternal)
	}
}

func TestReadInputFromNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.hedl")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	data, err := readInput([]string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("readInput = %q, want %q", data, "content")
	}
}

func TestReadInputMissingFileIsIOError(t *testing.T) {
	_, err := readInput([]string{"/nonexistent/path/doc.hedl"})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var ee *exitError
	if e, ok := err.(*exitError); ok {
		ee = e
	}
	if ee == nil || ee.code != exitIO {
		t.Errorf("expected an ioError, got %v", err)
	}
}

func TestWriteOutputToNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("output", "o", "", "")
	if err := flags.Set("output", path); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := writeOutput(flags, []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back output: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("output file contents = %q, want %q", got, "hello")
	}
}

func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"parse", "validate", "canonicalize", "convert", "stats"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected a %q subcommand to be registered", name)
		}
	}
}
