// Package document provides the in-memory text buffer that decorations and
// reverts operate on, addressed by rune offsets.
package document

import "strings"

// Document is a mutable text buffer. All offsets are rune offsets (not byte
// offsets), half-open where a range is involved.
//
// Invariants:
//   - 0 <= offset <= Len() for every offset accepted or returned.
//   - Line numbers are 1-based. Line n starts right after the (n-1)-th '\n'.
type Document struct {
	runes []rune
}

// New returns a Document holding text.
func New(text string) *Document {
	return &Document{runes: []rune(text)}
}

// Text returns the full document text.
func (d *Document) Text() string {
	return string(d.runes)
}

// Len returns the document length in runes.
func (d *Document) Len() int {
	return len(d.runes)
}

// Slice returns the text in [start, end). Out-of-range bounds are clamped.
func (d *Document) Slice(start, end int) string {
	start = clamp(start, 0, len(d.runes))
	end = clamp(end, 0, len(d.runes))
	if end <= start {
		return ""
	}
	return string(d.runes[start:end])
}

// RuneAt returns the rune at off. ok is false if off is out of range.
func (d *Document) RuneAt(off int) (r rune, ok bool) {
	if off < 0 || off >= len(d.runes) {
		return 0, false
	}
	return d.runes[off], true
}

// LineCount returns the number of lines. An empty document has one line; a
// trailing '\n' starts a final empty line.
func (d *Document) LineCount() int {
	return strings.Count(string(d.runes), "\n") + 1
}

// OffsetOfLine returns the offset of the start of the n-th line (1-based).
// It operates on the whole document; there is no view restriction to honor.
// For n past the last line it returns Len().
func (d *Document) OffsetOfLine(n int) int {
	if n <= 1 {
		return 0
	}
	line := 1
	for i, r := range d.runes {
		if r != '\n' {
			continue
		}
		line++
		if line == n {
			return i + 1
		}
	}
	return len(d.runes)
}

// NextLineStart returns the offset of the start of the line following the one
// containing off, or Len() if off is on the last line.
func (d *Document) NextLineStart(off int) int {
	if off < 0 {
		off = 0
	}
	for i := off; i < len(d.runes); i++ {
		if d.runes[i] == '\n' {
			return i + 1
		}
	}
	return len(d.runes)
}

// Position returns the 1-based line and 0-based rune column of off.
func (d *Document) Position(off int) (line, col int) {
	off = clamp(off, 0, len(d.runes))
	line = 1
	lineStart := 0
	for i := 0; i < off; i++ {
		if d.runes[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, off - lineStart
}

// Replace substitutes the text in [start, end) with text. Out-of-range bounds
// are clamped. Replace with start == end is an insertion.
func (d *Document) Replace(start, end int, text string) {
	start = clamp(start, 0, len(d.runes))
	end = clamp(end, start, len(d.runes))
	next := make([]rune, 0, len(d.runes)-(end-start)+len(text))
	next = append(next, d.runes[:start]...)
	next = append(next, []rune(text)...)
	next = append(next, d.runes[end:]...)
	d.runes = next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
