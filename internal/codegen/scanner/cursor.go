package scanner

import (
	"bytes"
	"strings"
)

// Cursor walks the lines of one file and tracks the 1-based number of the
// last line returned. Block scanners share the cursor of the file scanner so
// line numbers stay accurate across nested scans.
type Cursor struct {
	file  string
	lines []string
	line  int
}

// NewCursor splits src into lines of any length. A trailing \r is dropped
// from each line and a final newline does not start an extra line. file is
// used for error positions only.
func NewCursor(file string, src []byte) *Cursor {
	src = bytes.TrimSuffix(src, []byte("\n"))
	var lines []string
	if len(src) > 0 {
		for _, l := range bytes.Split(src, []byte("\n")) {
			lines = append(lines, string(bytes.TrimSuffix(l, []byte("\r"))))
		}
	}
	return &Cursor{file: file, lines: lines}
}

// Next returns the next line with surrounding whitespace trimmed.
func (c *Cursor) Next() (string, bool) {
	if c.line >= len(c.lines) {
		return "", false
	}
	c.line++
	return strings.TrimSpace(c.lines[c.line-1]), true
}

// Line is the number of the line most recently returned by Next.
func (c *Cursor) Line() int { return c.line }

// File is the identifier the cursor was created with.
func (c *Cursor) File() string { return c.file }
