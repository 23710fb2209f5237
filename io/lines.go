package io

import (
	"strings"
	"unicode/utf8"
)

const (
	LINES_DEFAULT_LIMIT = 20 // Default number of complete lines kept.
)

// Lines records the most recent lines of output text.
type Lines struct {
	Limit int // Complete lines kept. Zero uses LINES_DEFAULT_LIMIT.

	lines   []string
	current []byte
}

// WriteByte appends a byte of output as a Latin-1 character, keeping the
// record valid UTF-8. A newline completes the current line.
func (ln *Lines) WriteByte(value byte) error {
	if value != '\n' {
		ln.current = utf8.AppendRune(ln.current, rune(value))
		return nil
	}

	limit := ln.Limit
	if limit <= 0 {
		limit = LINES_DEFAULT_LIMIT
	}

	ln.lines = append(ln.lines, string(ln.current))
	if len(ln.lines) > limit {
		ln.lines = ln.lines[len(ln.lines)-limit:]
	}
	ln.current = ln.current[:0]

	return nil
}

// Lines returns the recorded complete lines, oldest first.
func (ln *Lines) Lines() []string {
	return ln.lines
}

// Current returns the incomplete last line.
func (ln *Lines) Current() string {
	return string(ln.current)
}

// String returns the recorded text: the complete lines and the current
// line, joined by newlines.
func (ln *Lines) String() string {
	return strings.Join(append(ln.lines[:len(ln.lines):len(ln.lines)], string(ln.current)), "\n")
}

// Restore replaces the record with text as returned by String.
func (ln *Lines) Restore(text string) {
	ln.Reset()

	parts := strings.Split(text, "\n")
	ln.lines = parts[:len(parts)-1]
	ln.current = append(ln.current, parts[len(parts)-1]...)
}

// Reset forgets all recorded output.
func (ln *Lines) Reset() {
	ln.lines = nil
	ln.current = nil
}
