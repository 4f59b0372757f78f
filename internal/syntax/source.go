package syntax

import (
	"io"
	"unicode/utf8"
)

// source is a character reader with position tracking.
// It reads the whole translation unit into memory and hands out one
// character at a time.
type source struct {
	// Input
	buf []byte

	// Position tracking
	filename string
	line     uint32 // current line number (1-based)
	col      uint32 // current column number (1-based, byte offset)

	// Current state
	ch   rune // current character, -1 for EOF
	offs int  // current byte offset in buf

	// bol is set while only blanks have been read on the current line;
	// a '#' seen in that state starts a preprocessor directive.
	bol bool

	// Error handling
	errh func(line, col uint32, msg string)
}

// newSource creates a new source from an io.Reader.
// The errh function is called for each error; if nil, errors are silently ignored.
func newSource(filename string, src io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{
		filename: filename,
		line:     1,
		col:      0,  // incremented to 1 by the first nextch()
		ch:       -1, // "before first char", prevents a line bump
		bol:      true,
		errh:     errh,
	}

	var err error
	s.buf, err = io.ReadAll(src)
	if err != nil {
		s.error("error reading source file: " + err.Error())
		s.ch = -1
		return s
	}

	s.nextch()
	return s
}

// nextch reads the next character from the source and updates position.
// Sets s.ch to -1 at EOF.
//
// (line, col) always refers to the position of s.ch after nextch() returns.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
		s.bol = true
	} else {
		if s.ch >= 0 && !isWhitespace(s.ch) {
			s.bol = false
		}
		s.col++
	}

	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}

	r, width := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && width == 1 {
		s.error("invalid UTF-8 encoding")
	}

	s.ch = r
	s.offs += width
}

// peek returns the character following s.ch without consuming it.
func (s *source) peek() rune {
	if s.offs >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.offs:])
	return r
}

// pos returns the current position (position of current character).
func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

// error reports a lexical error at the current position.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

// Character classification helpers

// isLetter reports whether r is a letter (a-z, A-Z, or _).
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

// isDigit reports whether r is a decimal digit (0-9).
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isHexDigit reports whether r is a hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= lower(r) && lower(r) <= 'f'
}

// lower returns the lowercase version of r if r is an ASCII letter,
// otherwise returns r unchanged.
func lower(r rune) rune {
	return ('a' - 'A') | r
}

// isWhitespace reports whether r is a blank other than newline.
func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v'
}

// isOperatorStart reports whether r can start an operator or delimiter.
func isOperatorStart(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '&', '|', '^', '<', '>', '=', '!', '~', '?', ':',
		'(', ')', '[', ']', '{', '}', ',', ';', '.':
		return true
	}
	return false
}
