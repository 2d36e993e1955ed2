// Package preprocess turns raw input bytes into a validated,
// line-indexed text buffer: BOM strip, UTF-8 validation,
// control-character scan, CRLF normalization with bare-CR rejection,
// and size/line-length caps.
package preprocess

import (
	"strings"
	"unicode/utf8"

	"github.com/dweve-ai/hedl/herr"
	"github.com/dweve-ai/hedl/limits"
)

// Line is one 1-based-numbered line of normalized text (LF stripped).
type Line struct {
	Num  int
	Text string
}

const bom = "\ufeff"

// Run validates and normalizes raw input bytes into a sequence of
// lines, applying the size, encoding, and control-character rules.
func Run(input []byte, lim limits.Limits) ([]Line, error) {
	if lim.MaxFileSize > 0 && len(input) > lim.MaxFileSize {
		return nil, herr.FileTooLarge(lim.MaxFileSize)
	}

	if !utf8.Valid(input) {
		return nil, herr.InvalidUTF8()
	}
	text := string(input)
	text = stripBOM(text)

	if err := scanControlChars(text); err != nil {
		return nil, err
	}

	normalized, err := normalizeLineEndings(text)
	if err != nil {
		return nil, err
	}

	return splitLines(normalized, lim)
}

func stripBOM(s string) string {
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

// scanControlChars rejects any byte < 0x20 other than tab, LF, CR,
// tracking the current line number by counting LF bytes as it goes.
func scanControlChars(s string) error {
	line := 1
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\n' {
			line++
			continue
		}
		if b < 0x20 && b != '\t' && b != '\r' {
			return herr.ControlChar(line)
		}
	}
	return nil
}

// normalizeLineEndings converts CRLF to LF and rejects any remaining
// bare CR, reporting the precise line number it occurs on.
func normalizeLineEndings(s string) (string, error) {
	if strings.IndexByte(s, '\r') == -1 {
		return s, nil
	}

	out := make([]byte, 0, len(s))
	line := 1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			if i+1 < len(s) && s[i+1] == '\n' {
				out = append(out, '\n')
				i++
				line++
				continue
			}
			return "", herr.BareCR(line)
		}
		if c == '\n' {
			line++
		}
		out = append(out, c)
	}
	return string(out), nil
}

// splitLines splits normalized (LF-only) text into Lines, enforcing
// the per-line length cap. A missing trailing newline still yields a
// final line.
func splitLines(s string, lim limits.Limits) ([]Line, error) {
	var lines []Line
	start := 0
	num := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if lim.MaxLineLength > 0 && i-start > lim.MaxLineLength {
				return nil, herr.LineTooLong(num, lim.MaxLineLength)
			}
			lines = append(lines, Line{Num: num, Text: s[start:i]})
			start = i + 1
			num++
		}
	}
	if start <= len(s) {
		if lim.MaxLineLength > 0 && len(s)-start > lim.MaxLineLength {
			return nil, herr.LineTooLong(num, lim.MaxLineLength)
		}
		// A trailing newline yields one more (empty) trailing line
		// entry, same as an absent trailing newline does.
		lines = append(lines, Line{Num: num, Text: s[start:]})
	}
	return lines, nil
}

// IsBlank reports whether line consists only of whitespace.
func IsBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}

// IsComment reports whether line's first non-whitespace character is '#'.
func IsComment(line string) bool {
	for _, r := range line {
		if r == ' ' || r == '\t' {
			continue
		}
		return r == '#'
	}
	return false
}
