// Package syntax implements lexical and syntactic analysis for the C subset
// accepted by mpicoll.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF       Token = iota // end of file
	_Error                  // lexical error
	_Directive              // preprocessor line; literal is the text after '#'

	// Literals
	_Name    // identifier: rank, MPI_Barrier
	_Literal // literal value (used with LitKind)

	// Assignment
	_Assign   // =
	_AssignOp // += -= *= /= %= &= |= ^= <<= >>= (literal holds the operator)

	// Conditional
	_Question // ?

	// Binary operators (ordered by precedence, low to high)
	_OrOr   // ||
	_AndAnd // &&
	_Or     // |
	_Xor    // ^
	_And    // &
	_Eql    // ==
	_Neq    // !=
	_Lss    // <
	_Leq    // <=
	_Gtr    // >
	_Geq    // >=
	_Shl    // <<
	_Shr    // >>
	_Add    // +
	_Sub    // -
	_Mul    // *
	_Div    // /
	_Rem    // %

	// Unary operators
	_Not   // !
	_Tilde // ~
	_Inc   // ++
	_Dec   // --

	// Delimiters
	_Lparen   // (
	_Rparen   // )
	_Lbrack   // [
	_Rbrack   // ]
	_Lbrace   // {
	_Rbrace   // }
	_Comma    // ,
	_Semi     // ;
	_Colon    // :
	_Dot      // .
	_Arrow    // ->
	_Ellipsis // ...

	// Keywords
	_Break
	_Case
	_Continue
	_Default
	_Do
	_Else
	_Enum
	_For
	_Goto
	_If
	_Return
	_Sizeof
	_Struct
	_Switch
	_Typedef
	_Union
	_While

	// Type specifiers, qualifiers and storage classes share one token;
	// the literal holds the keyword.
	_TypeKw

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:       "EOF",
	_Error:     "ERROR",
	_Directive: "DIRECTIVE",

	_Name:    "NAME",
	_Literal: "LITERAL",

	_Assign:   "=",
	_AssignOp: "op=",
	_Question: "?",

	_OrOr:   "||",
	_AndAnd: "&&",
	_Or:     "|",
	_Xor:    "^",
	_And:    "&",
	_Eql:    "==",
	_Neq:    "!=",
	_Lss:    "<",
	_Leq:    "<=",
	_Gtr:    ">",
	_Geq:    ">=",
	_Shl:    "<<",
	_Shr:    ">>",
	_Add:    "+",
	_Sub:    "-",
	_Mul:    "*",
	_Div:    "/",
	_Rem:    "%",

	_Not:   "!",
	_Tilde: "~",
	_Inc:   "++",
	_Dec:   "--",

	_Lparen:   "(",
	_Rparen:   ")",
	_Lbrack:   "[",
	_Rbrack:   "]",
	_Lbrace:   "{",
	_Rbrace:   "}",
	_Comma:    ",",
	_Semi:     ";",
	_Colon:    ":",
	_Dot:      ".",
	_Arrow:    "->",
	_Ellipsis: "...",

	_Break:    "break",
	_Case:     "case",
	_Continue: "continue",
	_Default:  "default",
	_Do:       "do",
	_Else:     "else",
	_Enum:     "enum",
	_For:      "for",
	_Goto:     "goto",
	_If:       "if",
	_Return:   "return",
	_Sizeof:   "sizeof",
	_Struct:   "struct",
	_Switch:   "switch",
	_Typedef:  "typedef",
	_Union:    "union",
	_While:    "while",

	_TypeKw: "TYPE",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Precedence returns the operator precedence for binary operators.
// Returns 0 for non-operators.
//
//	1: ||
//	2: &&
//	3: |
//	4: ^
//	5: &
//	6: == !=
//	7: < <= > >=
//	8: << >>
//	9: + -
//	10: * / %
func (t Token) Precedence() int {
	switch t {
	case _OrOr:
		return 1
	case _AndAnd:
		return 2
	case _Or:
		return 3
	case _Xor:
		return 4
	case _And:
		return 5
	case _Eql, _Neq:
		return 6
	case _Lss, _Leq, _Gtr, _Geq:
		return 7
	case _Shl, _Shr:
		return 8
	case _Add, _Sub:
		return 9
	case _Mul, _Div, _Rem:
		return 10
	}
	return 0
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Break && t <= _TypeKw
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t >= _Assign && t <= _Dec
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// IsBreak reports whether t is the break keyword.
func (t Token) IsBreak() bool {
	return t == _Break
}

// IsLogical reports whether t is a short-circuit operator (&& or ||).
func (t Token) IsLogical() bool {
	return t == _AndAnd || t == _OrOr
}

// IsOrOr reports whether t is the || operator.
func (t Token) IsOrOr() bool {
	return t == _OrOr
}

// LitKind represents the kind of a literal token.
type LitKind uint8

const (
	IntLit    LitKind = iota // 123, 0x1F, 017, 10UL
	FloatLit                 // 3.14, 1e10, 2.5f
	CharLit                  // 'a', '\n'
	StringLit                // "hello\n"
)

// litKindNames maps literal kinds to their string representation.
var litKindNames = [...]string{
	IntLit:    "int",
	FloatLit:  "float",
	CharLit:   "char",
	StringLit: "string",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if k <= StringLit {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// keywords maps keyword strings to their token type.
var keywords = map[string]Token{
	"break":    _Break,
	"case":     _Case,
	"continue": _Continue,
	"default":  _Default,
	"do":       _Do,
	"else":     _Else,
	"enum":     _Enum,
	"for":      _For,
	"goto":     _Goto,
	"if":       _If,
	"return":   _Return,
	"sizeof":   _Sizeof,
	"struct":   _Struct,
	"switch":   _Switch,
	"typedef":  _Typedef,
	"union":    _Union,
	"while":    _While,

	"void":     _TypeKw,
	"char":     _TypeKw,
	"short":    _TypeKw,
	"int":      _TypeKw,
	"long":     _TypeKw,
	"float":    _TypeKw,
	"double":   _TypeKw,
	"signed":   _TypeKw,
	"unsigned": _TypeKw,
	"_Bool":    _TypeKw,
	"const":    _TypeKw,
	"volatile": _TypeKw,
	"restrict": _TypeKw,
	"static":   _TypeKw,
	"extern":   _TypeKw,
	"register": _TypeKw,
	"auto":     _TypeKw,
	"inline":   _TypeKw,
}

// LookupKeyword returns the token for the given identifier string.
// If the identifier is a keyword, returns the keyword token.
// Otherwise, returns _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}
