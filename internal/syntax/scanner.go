package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on C source code.
//
// Preprocessing is not performed: a line whose first non-blank character
// is '#' is returned whole as a single _Directive token, with backslash
// line splices joined.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token   // token type
	lit    string  // token literal (identifier name, number, string content)
	kind   LitKind // literal kind (only valid when tok == _Literal)
	tokPos Pos     // token start position

	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{
		source: *newSource(filename, src, errh),
	}
}

// Next advances to the next token.
func (s *Scanner) Next() {
redo:
	s.skipWhitespace()

	s.tokPos = s.pos()

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case s.ch == '#' && s.bol:
		s.scanDirective()

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch) || s.ch == '.' && isDigit(s.peek()):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	case s.ch == '\'':
		s.scanChar()

	case isOperatorStart(s.ch):
		if s.scanOperator() {
			// a comment was skipped
			goto redo
		}

	default:
		s.error(fmt.Sprintf("unexpected character %q", s.ch))
		s.nextch()
		goto redo
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's literal value.
func (s *Scanner) Literal() string {
	return s.lit
}

// LitKind returns the current literal's kind (only valid when Token() == _Literal).
func (s *Scanner) LitKind() LitKind {
	return s.kind
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// skipWhitespace skips blanks and newlines.
func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) || s.ch == '\n' {
		s.nextch()
	}
}

// scanDirective reads a preprocessor line. The literal is the directive
// text after '#', with splices joined and surrounding blanks trimmed.
func (s *Scanner) scanDirective() {
	s.nextch() // skip #
	s.litBuf.Reset()
	for s.ch >= 0 && s.ch != '\n' {
		if s.ch == '\\' && s.peek() == '\n' {
			s.nextch()
			s.nextch()
			s.litBuf.WriteRune(' ')
			continue
		}
		if s.ch == '/' && s.peek() == '/' {
			for s.ch >= 0 && s.ch != '\n' {
				s.nextch()
			}
			break
		}
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.tok = _Directive
	s.lit = strings.TrimSpace(s.litBuf.String())
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	for isLetter(s.ch) || isDigit(s.ch) {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans an integer or floating constant, including the C
// suffixes (u, l, f) and hexadecimal prefixes.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.kind = IntLit

	if s.ch == '0' && lower(s.peek()) == 'x' {
		s.continueLit() // 0
		s.continueLit() // x
		if !isHexDigit(s.ch) {
			s.error("invalid hex digit")
		}
		for isHexDigit(s.ch) {
			s.continueLit()
		}
	} else {
		for isDigit(s.ch) {
			s.continueLit()
		}
		if s.ch == '.' {
			s.kind = FloatLit
			s.continueLit()
			for isDigit(s.ch) {
				s.continueLit()
			}
		}
		if lower(s.ch) == 'e' {
			s.kind = FloatLit
			s.continueLit()
			if s.ch == '+' || s.ch == '-' {
				s.continueLit()
			}
			if !isDigit(s.ch) {
				s.error("exponent has no digits")
			}
			for isDigit(s.ch) {
				s.continueLit()
			}
		}
	}

	for {
		switch lower(s.ch) {
		case 'u', 'l':
			s.continueLit()
			continue
		case 'f':
			s.kind = FloatLit
			s.continueLit()
			continue
		}
		break
	}
	if isLetter(s.ch) || isDigit(s.ch) {
		s.error(fmt.Sprintf("invalid suffix %q on numeric constant", s.ch))
		for isLetter(s.ch) || isDigit(s.ch) {
			s.continueLit()
		}
	}

	s.lit = s.litBuf.String()
	s.tok = _Literal
}

// continueLit appends the current character to the literal and advances.
func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
	s.nextch()
}

// scanString scans a string literal. The literal is the raw content
// between the quotes; escape sequences are validated but kept as written.
func (s *Scanner) scanString() {
	s.nextch() // skip opening "
	s.lit = s.scanQuoted('"')
	s.tok = _Literal
	s.kind = StringLit
}

// scanChar scans a character constant such as 'a' or '\n'.
func (s *Scanner) scanChar() {
	s.nextch() // skip opening '
	s.lit = s.scanQuoted('\'')
	if s.lit == "" {
		s.error("empty character constant")
	}
	s.tok = _Literal
	s.kind = CharLit
}

func (s *Scanner) scanQuoted(quote rune) string {
	var b strings.Builder
	for {
		switch {
		case s.ch == quote:
			s.nextch()
			return b.String()

		case s.ch == '\\':
			b.WriteRune(s.ch)
			s.nextch()
			if s.ch < 0 {
				continue
			}
			b.WriteRune(s.ch)
			s.nextch()

		case s.ch == '\n' || s.ch < 0:
			if quote == '"' {
				s.error("string not terminated")
			} else {
				s.error("character constant not terminated")
			}
			return b.String()

		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanOperator scans an operator or delimiter.
// Returns true if a comment was skipped (caller should rescan).
func (s *Scanner) scanOperator() bool {
	ch := s.ch
	s.nextch()

	// op sets the token for an operator that may be followed by '='
	// to form a compound assignment.
	op := func(tok Token, lit string) {
		if s.ch == '=' {
			s.nextch()
			s.tok = _AssignOp
			s.lit = lit + "="
			return
		}
		s.tok = tok
		s.lit = lit
	}

	switch ch {
	case '+':
		if s.ch == '+' {
			s.nextch()
			s.tok, s.lit = _Inc, "++"
			break
		}
		op(_Add, "+")
	case '-':
		switch s.ch {
		case '-':
			s.nextch()
			s.tok, s.lit = _Dec, "--"
		case '>':
			s.nextch()
			s.tok, s.lit = _Arrow, "->"
		default:
			op(_Sub, "-")
		}
	case '*':
		op(_Mul, "*")
	case '/':
		switch s.ch {
		case '/':
			s.skipLineComment()
			return true
		case '*':
			s.skipBlockComment()
			return true
		}
		op(_Div, "/")
	case '%':
		op(_Rem, "%")
	case '&':
		if s.ch == '&' {
			s.nextch()
			s.tok, s.lit = _AndAnd, "&&"
			break
		}
		op(_And, "&")
	case '|':
		if s.ch == '|' {
			s.nextch()
			s.tok, s.lit = _OrOr, "||"
			break
		}
		op(_Or, "|")
	case '^':
		op(_Xor, "^")
	case '<':
		switch s.ch {
		case '=':
			s.nextch()
			s.tok, s.lit = _Leq, "<="
		case '<':
			s.nextch()
			op(_Shl, "<<")
		default:
			s.tok, s.lit = _Lss, "<"
		}
	case '>':
		switch s.ch {
		case '=':
			s.nextch()
			s.tok, s.lit = _Geq, ">="
		case '>':
			s.nextch()
			op(_Shr, ">>")
		default:
			s.tok, s.lit = _Gtr, ">"
		}
	case '=':
		if s.ch == '=' {
			s.nextch()
			s.tok, s.lit = _Eql, "=="
		} else {
			s.tok, s.lit = _Assign, "="
		}
	case '!':
		if s.ch == '=' {
			s.nextch()
			s.tok, s.lit = _Neq, "!="
		} else {
			s.tok, s.lit = _Not, "!"
		}
	case '~':
		s.tok, s.lit = _Tilde, "~"
	case '?':
		s.tok, s.lit = _Question, "?"
	case ':':
		s.tok, s.lit = _Colon, ":"
	case '(':
		s.tok, s.lit = _Lparen, "("
	case ')':
		s.tok, s.lit = _Rparen, ")"
	case '[':
		s.tok, s.lit = _Lbrack, "["
	case ']':
		s.tok, s.lit = _Rbrack, "]"
	case '{':
		s.tok, s.lit = _Lbrace, "{"
	case '}':
		s.tok, s.lit = _Rbrace, "}"
	case ',':
		s.tok, s.lit = _Comma, ","
	case ';':
		s.tok, s.lit = _Semi, ";"
	case '.':
		if s.ch == '.' && s.peek() == '.' {
			s.nextch()
			s.nextch()
			s.tok, s.lit = _Ellipsis, "..."
		} else {
			s.tok, s.lit = _Dot, "."
		}
	}

	return false
}

// skipLineComment skips a line comment (from // to end of line).
func (s *Scanner) skipLineComment() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// skipBlockComment skips a /* ... */ comment. The opening "/*" has been
// partially consumed: s.ch is the '*'.
func (s *Scanner) skipBlockComment() {
	s.nextch() // skip *
	for s.ch >= 0 {
		if s.ch == '*' && s.peek() == '/' {
			s.nextch()
			s.nextch()
			return
		}
		s.nextch()
	}
	s.error("comment not terminated")
}
