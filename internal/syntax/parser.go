package syntax

import (
	"io"
	"strings"
)

// Maximum number of errors before aborting parse.
const maxErrors = 10

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// builtinTypes are identifiers treated as type names without a visible
// typedef. Headers are not read, so the common library types are listed here.
var builtinTypes = map[string]bool{
	"size_t":    true,
	"ssize_t":   true,
	"ptrdiff_t": true,
	"FILE":      true,
	"va_list":   true,
	"bool":      true,

	"MPI_Comm":       true,
	"MPI_Datatype":   true,
	"MPI_Op":         true,
	"MPI_Status":     true,
	"MPI_Request":    true,
	"MPI_Group":      true,
	"MPI_Win":        true,
	"MPI_File":       true,
	"MPI_Info":       true,
	"MPI_Aint":       true,
	"MPI_Offset":     true,
	"MPI_Count":      true,
	"MPI_Errhandler": true,
	"MPI_Message":    true,
	"MPI_Fint":       true,
}

// baseTypes are the type keywords that complete a type specifier; a name
// following one of them is a declarator, not a typedef name.
var baseTypes = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true, "_Bool": true,
}

// Parser performs syntax analysis on C source code.
type Parser struct {
	scanner *Scanner

	// Current token info (cached from scanner)
	tok Token
	lit string
	pos Pos

	// Error handling
	errh   func(pos Pos, msg string)
	errcnt int
	first  error // first error encountered
	abort  bool  // set to true when error limit reached

	// Context tracking
	fnest    int             // function nesting depth (0 = file scope)
	pragmas  []*Pragma       // collected #pragma directives
	typedefs map[string]bool // names declared by typedef so far
}

// NewParser creates a new Parser for the given source.
func NewParser(filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	scanErrh := func(line, col uint32, msg string) {
		if errh != nil {
			errh(NewPos(filename, line, col), msg)
		}
	}

	p := &Parser{
		scanner:  NewScanner(filename, src, scanErrh),
		errh:     errh,
		typedefs: make(map[string]bool),
	}
	p.next() // prime the parser with first token
	return p
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token. Directives are consumed here so that
// they may appear between any two tokens.
func (p *Parser) next() {
	if p.abort {
		p.tok = _EOF
		return
	}
	for {
		p.scanner.Next()
		p.tok = p.scanner.Token()
		p.lit = p.scanner.Literal()
		p.pos = p.scanner.Pos()
		if p.tok != _Directive {
			return
		}
		p.directive()
	}
}

// directive records a #pragma line; other directives are ignored.
func (p *Parser) directive() {
	rest, ok := strings.CutPrefix(p.lit, "pragma")
	if !ok || rest != "" && !isWhitespace(rune(rest[0])) {
		return
	}
	pr := &Pragma{Text: strings.TrimSpace(rest), InFunc: p.fnest > 0}
	pr.pos = p.pos
	p.pragmas = append(p.pragmas, pr)
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise, reports an error.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String())
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports a syntax error at the current position.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

// syntaxErrorAt reports a syntax error at a specific position.
func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++

	if p.errh != nil {
		p.errh(pos, msg)
	}

	p.errorLimitCheck(pos)
}

// errorLimitCheck aborts parsing if too many errors have occurred.
func (p *Parser) errorLimitCheck(pos Pos) {
	if p.errcnt >= maxErrors {
		p.abort = true
		if p.errh != nil {
			p.errh(pos, "too many errors; aborting parse")
		}
		p.tok = _EOF
	}
}

// advance skips tokens until it finds a synchronization point.
// This is used for error recovery.
func (p *Parser) advance() {
	sync := map[Token]bool{
		_Semi:     true, // statement terminator
		_Rbrace:   true, // block end
		_Rparen:   true, // param list end
		_Rbrack:   true, // index end
		_If:       true,
		_For:      true,
		_While:    true,
		_Do:       true,
		_Switch:   true,
		_Return:   true,
		_Break:    true,
		_Continue: true,
		_EOF:      true,
	}

	for p.tok != _EOF && !sync[p.tok] {
		p.next()
	}

	// Consume sync point to avoid repeated errors at the same position
	if p.tok != _EOF {
		p.next()
	}
}

// Errors returns the number of errors encountered during parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses a complete translation unit and returns the AST.
func (p *Parser) Parse() *File {
	f := &File{}
	f.pos = p.pos

	for !p.abort && p.tok != _EOF {
		if p.got(_Semi) {
			continue
		}
		if d := p.decl(); d != nil {
			f.Decls = append(f.Decls, d)
		}
	}

	f.Pragmas = p.pragmas
	return f
}

// ----------------------------------------------------------------------------
// Helper methods

// name parses an identifier and returns a Name node.
func (p *Parser) name() *Name {
	if p.tok != _Name {
		p.syntaxError("expected identifier")
		// Return a placeholder for error recovery
		n := &Name{Value: "_"}
		n.pos = p.pos
		return n
	}
	n := &Name{Value: p.lit}
	n.pos = p.pos
	p.next()
	return n
}

// isTypeName reports whether name denotes a type in the current scope.
func (p *Parser) isTypeName(name string) bool {
	return p.typedefs[name] || builtinTypes[name] || strings.HasSuffix(name, "_t")
}

// isTypeStart reports whether the current token can start a declaration.
func (p *Parser) isTypeStart() bool {
	switch p.tok {
	case _TypeKw, _Typedef, _Struct, _Union, _Enum:
		return true
	case _Name:
		return p.isTypeName(p.lit)
	}
	return false
}

// typeString renders a declared type: "char **", "int[]".
func typeString(base string, ptrs, dims int) string {
	s := base
	if ptrs > 0 {
		s += " " + strings.Repeat("*", ptrs)
	}
	return s + strings.Repeat("[]", dims)
}

// ----------------------------------------------------------------------------
// Declarations

// decl parses a file-scope declaration or function definition.
func (p *Parser) decl() Decl {
	pos := p.pos
	typ, typedef, ok := p.declSpecs(true)
	if !ok {
		p.syntaxError("expected declaration")
		p.advance()
		return nil
	}

	if p.got(_Semi) {
		d := &VarDecl{Type: typ, Typedef: typedef}
		d.pos = pos
		return d
	}

	first := p.declarator()
	if first.Func && !typedef && (p.tok == _Lbrace || p.tok == _Semi) {
		return p.funcDecl(pos, typ, first)
	}
	return p.varDeclRest(pos, typ, typedef, first)
}

// declSpecs parses declaration specifiers and returns the base type text.
// At file scope and in parameter lists a leading identifier is always a type
// name; in a function body it must be a known one.
func (p *Parser) declSpecs(anyName bool) (typ string, typedef, ok bool) {
	var words []string
	base := false
	for {
		switch p.tok {
		case _Typedef:
			typedef, ok = true, true
			p.next()

		case _TypeKw:
			if baseTypes[p.lit] {
				base = true
			}
			words = append(words, p.lit)
			ok = true
			p.next()

		case _Struct, _Union, _Enum:
			words = append(words, p.tagType())
			base, ok = true, true

		case _Name:
			if base || !anyName && !p.isTypeName(p.lit) {
				return strings.Join(words, " "), typedef, ok
			}
			words = append(words, p.lit)
			base, ok = true, true
			p.next()

		default:
			return strings.Join(words, " "), typedef, ok
		}
	}
}

// tagType parses struct/union/enum [Tag] [{ ... }]. Member lists are
// skipped.
func (p *Parser) tagType() string {
	s := p.lit
	p.next()
	if p.tok == _Name {
		s += " " + p.lit
		p.next()
	}
	if p.tok == _Lbrace {
		p.skipBraces()
	}
	return s
}

// skipBraces consumes a balanced { ... } sequence.
func (p *Parser) skipBraces() {
	depth := 0
	for p.tok != _EOF {
		switch p.tok {
		case _Lbrace:
			depth++
		case _Rbrace:
			depth--
		}
		p.next()
		if depth == 0 {
			return
		}
	}
	p.syntaxError("unexpected EOF, expected }")
}

// declarator parses a possibly abstract declarator:
//
//	{ '*' qualifiers } [ Name | '(' declarator ')' ] { '[' [expr] ']' | '(' params ')' }
func (p *Parser) declarator() *Declarator {
	d := &Declarator{}
	d.pos = p.pos

	for p.got(_Mul) {
		d.Ptrs++
		for p.tok == _TypeKw && !baseTypes[p.lit] {
			p.next()
		}
	}

	nested := false
	switch p.tok {
	case _Name:
		d.Name = p.name()
	case _Lparen:
		// (*fp)(int), (*a)[4]
		p.next()
		inner := p.declarator()
		p.want(_Rparen)
		d.Name = inner.Name
		d.Ptrs += inner.Ptrs
		nested = true
	}

	for {
		switch p.tok {
		case _Lbrack:
			p.next()
			var dim Expr
			if p.tok != _Rbrack {
				dim = p.condExpr(nil)
			}
			p.want(_Rbrack)
			d.Dims = append(d.Dims, dim)

		case _Lparen:
			params, variadic := p.paramList()
			if !d.Func && !nested {
				d.Func, d.Params, d.Variadic = true, params, variadic
			}

		default:
			return d
		}
	}
}

// paramList parses (p1, p2, ...). "(void)" yields no parameters.
func (p *Parser) paramList() (params []*Field, variadic bool) {
	p.want(_Lparen)

	for p.tok != _Rparen && p.tok != _EOF {
		if p.got(_Ellipsis) {
			variadic = true
			break
		}
		params = append(params, p.param())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rparen)

	if len(params) == 1 && params[0].Name == nil && params[0].Type == "void" {
		params = nil
	}
	return params, variadic
}

// param parses one parameter declaration.
func (p *Parser) param() *Field {
	f := &Field{}
	f.pos = p.pos

	typ, _, ok := p.declSpecs(true)
	if !ok {
		p.syntaxError("expected parameter type")
		for p.tok != _Comma && p.tok != _Rparen && p.tok != _EOF {
			p.next()
		}
		f.Type = "_"
		return f
	}

	d := p.declarator()
	f.Name = d.Name
	f.Type = typeString(typ, d.Ptrs, len(d.Dims))
	return f
}

// funcDecl finishes a function definition or prototype whose declarator
// has been parsed.
func (p *Parser) funcDecl(pos Pos, typ string, d *Declarator) *FuncDecl {
	fd := &FuncDecl{
		Type:     typeString(typ, d.Ptrs, 0),
		Name:     d.Name,
		Params:   d.Params,
		Variadic: d.Variadic,
	}
	fd.pos = pos

	if fd.Name == nil {
		p.syntaxErrorAt(d.pos, "missing function name")
		fd.Name = &Name{Value: "_"}
		fd.Name.pos = d.pos
	}

	if p.got(_Semi) {
		return fd
	}
	fd.Body = p.funcBody()
	return fd
}

// varDeclRest parses the remaining init-declarators of a declaration whose
// specifiers and first declarator have been read, through the final ';'.
func (p *Parser) varDeclRest(pos Pos, typ string, typedef bool, first *Declarator) *VarDecl {
	d := &VarDecl{Type: typ, Typedef: typedef}
	d.pos = pos

	v := first
	for {
		if p.got(_Assign) {
			v.Init = p.initializer()
		}
		d.Vars = append(d.Vars, v)
		if typedef && v.Name != nil {
			p.typedefs[v.Name.Value] = true
		}
		if !p.got(_Comma) {
			break
		}
		v = p.declarator()
	}

	p.want(_Semi)
	return d
}

// initializer parses an assignment expression or a brace initializer.
func (p *Parser) initializer() Expr {
	if p.tok == _Lbrace {
		return p.initList()
	}
	return p.assignExpr(nil)
}

// initList parses { [designator =] init, ... }.
func (p *Parser) initList() *InitListExpr {
	l := &InitListExpr{}
	l.pos = p.pos

	p.want(_Lbrace)
	for p.tok != _Rbrace && p.tok != _EOF {
		p.designator()
		l.Elems = append(l.Elems, p.initializer())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rbrace)
	return l
}

// designator skips .name and [index] designators and the following '='.
func (p *Parser) designator() {
	if p.tok != _Dot && p.tok != _Lbrack {
		return
	}
	for p.tok == _Dot || p.tok == _Lbrack {
		if p.got(_Dot) {
			p.name()
			continue
		}
		p.next()
		p.condExpr(nil)
		p.want(_Rbrack)
	}
	p.want(_Assign)
}

// typeName parses a type name as used in casts and sizeof.
func (p *Parser) typeName() string {
	typ, _, _ := p.declSpecs(false)
	d := p.declarator()
	if d.Name != nil {
		p.syntaxErrorAt(d.Name.Pos(), "unexpected name in type")
	}
	return typeString(typ, d.Ptrs, len(d.Dims))
}

// ----------------------------------------------------------------------------
// Statements

// funcBody parses a function body. The nesting depth is raised before the
// opening brace is consumed and dropped before the closing one, so that
// directives are attributed to the right scope.
func (p *Parser) funcBody() *BlockStmt {
	b := &BlockStmt{}
	b.pos = p.pos

	p.fnest++
	p.want(_Lbrace)
	for p.tok != _Rbrace && p.tok != _EOF {
		b.Stmts = append(b.Stmts, p.stmt())
	}
	b.Rbrace = p.pos
	p.fnest--
	p.want(_Rbrace)

	return b
}

// stmt parses a statement.
func (p *Parser) stmt() Stmt {
	switch p.tok {
	case _Lbrace:
		return p.blockStmt()

	case _If:
		return p.ifStmt()

	case _While:
		return p.whileStmt()

	case _Do:
		return p.doStmt()

	case _For:
		return p.forStmt()

	case _Switch:
		return p.switchStmt()

	case _Case, _Default:
		return p.caseStmt()

	case _Return:
		return p.returnStmt()

	case _Break, _Continue:
		return p.branchStmt()

	case _Goto:
		return p.gotoStmt()

	case _Semi:
		s := &EmptyStmt{}
		s.pos = p.pos
		p.next()
		return s

	default:
		return p.simpleStmt()
	}
}

// simpleStmt parses a declaration, labeled statement or expression statement.
func (p *Parser) simpleStmt() Stmt {
	switch {
	case p.isTypeStart():
		return p.declStmt()
	case p.tok == _Name:
		return p.nameStmt()
	}
	return p.exprStmt(nil)
}

// declStmt parses a block-scope declaration.
func (p *Parser) declStmt() Stmt {
	pos := p.pos
	typ, typedef, _ := p.declSpecs(false)

	var d *VarDecl
	if p.got(_Semi) {
		d = &VarDecl{Type: typ, Typedef: typedef}
		d.pos = pos
	} else {
		d = p.varDeclRest(pos, typ, typedef, p.declarator())
	}

	s := &DeclStmt{Decl: d}
	s.pos = pos
	return s
}

// nameStmt parses a statement starting with an identifier that is not a
// known type: a label, a declaration with an unknown type name
// ("Name Name ..."), or an expression statement.
func (p *Parser) nameStmt() Stmt {
	n := p.name()

	switch p.tok {
	case _Colon:
		p.next()
		s := &LabeledStmt{Label: n}
		s.pos = n.pos
		s.Stmt = p.labeledBody()
		return s

	case _Name:
		d := p.varDeclRest(n.pos, n.Value, false, p.declarator())
		s := &DeclStmt{Decl: d}
		s.pos = n.pos
		return s
	}

	return p.exprStmt(n)
}

// exprStmt parses an expression statement. If x is non-nil it is the
// already parsed leading operand.
func (p *Parser) exprStmt(x Expr) Stmt {
	pos := p.pos
	if x != nil {
		pos = x.Pos()
	}
	s := &ExprStmt{X: p.exprFrom(x)}
	s.pos = pos
	p.want(_Semi)
	return s
}

// labeledBody parses the statement following a label. A label directly
// before '}' labels an empty statement.
func (p *Parser) labeledBody() Stmt {
	if p.tok == _Rbrace {
		s := &EmptyStmt{}
		s.pos = p.pos
		return s
	}
	return p.stmt()
}

// blockStmt parses { stmts... }
func (p *Parser) blockStmt() *BlockStmt {
	b := &BlockStmt{}
	b.pos = p.pos

	p.want(_Lbrace)

	for p.tok != _Rbrace && p.tok != _EOF {
		b.Stmts = append(b.Stmts, p.stmt())
	}

	b.Rbrace = p.pos
	p.want(_Rbrace)

	return b
}

// parenExpr parses ( expr ).
func (p *Parser) parenExpr() Expr {
	p.want(_Lparen)
	x := p.expr()
	p.want(_Rparen)
	return x
}

// ifStmt parses: if (cond) then [else else]
func (p *Parser) ifStmt() Stmt {
	s := &IfStmt{}
	s.pos = p.pos

	p.want(_If)
	s.Cond = p.parenExpr()
	s.Then = p.stmt()

	if p.got(_Else) {
		s.Else = p.stmt()
	}

	return s
}

// whileStmt parses: while (cond) body
func (p *Parser) whileStmt() Stmt {
	s := &WhileStmt{}
	s.pos = p.pos

	p.want(_While)
	s.Cond = p.parenExpr()
	s.Body = p.stmt()
	return s
}

// doStmt parses: do body while (cond);
func (p *Parser) doStmt() Stmt {
	s := &DoStmt{}
	s.pos = p.pos

	p.want(_Do)
	s.Body = p.stmt()
	p.want(_While)
	s.Cond = p.parenExpr()
	p.want(_Semi)
	return s
}

// forStmt parses: for ([init]; [cond]; [post]) body
func (p *Parser) forStmt() Stmt {
	s := &ForStmt{}
	s.pos = p.pos

	p.want(_For)
	p.want(_Lparen)

	if !p.got(_Semi) {
		s.Init = p.simpleStmt() // consumes ';'
	}
	if p.tok != _Semi {
		s.Cond = p.expr()
	}
	p.want(_Semi)
	if p.tok != _Rparen {
		s.Post = p.expr()
	}
	p.want(_Rparen)

	s.Body = p.stmt()
	return s
}

// switchStmt parses: switch (tag) body
func (p *Parser) switchStmt() Stmt {
	s := &SwitchStmt{}
	s.pos = p.pos

	p.want(_Switch)
	s.Tag = p.parenExpr()
	s.Body = p.stmt()
	return s
}

// caseStmt parses: case value: stmt or default: stmt
func (p *Parser) caseStmt() Stmt {
	s := &CaseStmt{}
	s.pos = p.pos

	if p.got(_Default) {
		p.want(_Colon)
	} else {
		p.want(_Case)
		s.Value = p.condExpr(nil)
		p.want(_Colon)
	}

	s.Stmt = p.labeledBody()
	return s
}

// returnStmt parses: return [expr];
func (p *Parser) returnStmt() Stmt {
	s := &ReturnStmt{}
	s.pos = p.pos

	p.want(_Return)

	if p.tok != _Semi && p.tok != _Rbrace && p.tok != _EOF {
		s.Result = p.expr()
	}

	p.want(_Semi)
	return s
}

// branchStmt parses: break; or continue;
func (p *Parser) branchStmt() Stmt {
	s := &BranchStmt{Tok: p.tok}
	s.pos = p.pos
	p.next()
	p.want(_Semi)
	return s
}

// gotoStmt parses: goto label;
func (p *Parser) gotoStmt() Stmt {
	s := &GotoStmt{}
	s.pos = p.pos
	p.want(_Goto)
	s.Label = p.name()
	p.want(_Semi)
	return s
}

// ----------------------------------------------------------------------------
// Expressions
//
// The expression functions taking an Expr accept an already parsed leading
// operand (used after nameStmt has consumed an identifier); nil means start
// from the current token.

// expr parses a comma expression.
func (p *Parser) expr() Expr {
	return p.exprFrom(nil)
}

func (p *Parser) exprFrom(x Expr) Expr {
	x = p.assignExpr(x)
	if p.tok != _Comma {
		return x
	}

	l := &ListExpr{List: []Expr{x}}
	l.pos = x.Pos()
	for p.got(_Comma) {
		l.List = append(l.List, p.assignExpr(nil))
	}
	return l
}

// assignExpr parses an assignment expression (right associative).
func (p *Parser) assignExpr(x Expr) Expr {
	x = p.condExpr(x)
	if p.tok != _Assign && p.tok != _AssignOp {
		return x
	}

	a := &AssignExpr{Op: p.lit, LHS: x}
	a.pos = x.Pos()
	p.next()
	a.RHS = p.assignExpr(nil)
	return a
}

// condExpr parses cond ? x : y.
func (p *Parser) condExpr(x Expr) Expr {
	x = p.binaryExpr(x, 0)
	if p.tok != _Question {
		return x
	}

	c := &CondExpr{Cond: x}
	c.pos = x.Pos()
	p.next()
	c.X = p.expr()
	p.want(_Colon)
	c.Y = p.condExpr(nil)
	return c
}

// binaryExpr parses a binary expression with minimum precedence prec.
// Implements Pratt parsing / precedence climbing.
func (p *Parser) binaryExpr(x Expr, prec int) Expr {
	if x == nil {
		x = p.unaryExpr()
	} else {
		x = p.postfix(x)
	}

	for {
		// Check if current token is a binary operator with sufficient precedence
		oprec := p.tok.Precedence()
		if oprec <= prec {
			return x
		}

		// Binary expression position starts at the left operand.
		op := &Operation{Op: p.tok, X: x}
		op.pos = x.Pos()

		p.next() // consume operator

		// Parse right operand with higher precedence (left associative)
		op.Y = p.binaryExpr(nil, oprec)
		x = op
	}
}

// unaryExpr parses a unary expression, including casts.
func (p *Parser) unaryExpr() Expr {
	switch p.tok {
	case _Not, _Tilde, _Add, _Sub, _Mul, _And:
		op := &Operation{Op: p.tok}
		op.pos = p.pos
		p.next()
		op.X = p.unaryExpr()
		return op

	case _Inc, _Dec:
		e := &IncDecExpr{Op: p.tok}
		e.pos = p.pos
		p.next()
		e.X = p.unaryExpr()
		return e

	case _Sizeof:
		return p.sizeofExpr()

	default:
		return p.postfix(p.operand())
	}
}

// sizeofExpr parses sizeof x or sizeof(type).
func (p *Parser) sizeofExpr() Expr {
	s := &SizeofExpr{}
	s.pos = p.pos
	p.want(_Sizeof)

	if p.tok != _Lparen {
		s.X = p.unaryExpr()
		return s
	}

	pos := p.pos
	p.next()
	if p.isTypeStart() {
		s.Type = p.typeName()
		p.want(_Rparen)
		return s
	}
	paren := &ParenExpr{X: p.expr()}
	paren.pos = pos
	p.want(_Rparen)
	s.X = p.postfix(paren)
	return s
}

// postfix parses calls, index, member selection and postfix ++/--.
func (p *Parser) postfix(x Expr) Expr {
	for {
		switch p.tok {
		case _Lparen: // function call
			x = p.callExpr(x)

		case _Lbrack: // index expression
			x = p.indexExpr(x)

		case _Dot, _Arrow: // member selection
			x = p.selectorExpr(x)

		case _Inc, _Dec:
			e := &IncDecExpr{Op: p.tok, X: x, Postfix: true}
			e.pos = x.Pos()
			p.next()
			x = e

		default:
			return x
		}
	}
}

// operand parses an operand (the base of primary expressions).
func (p *Parser) operand() Expr {
	switch p.tok {
	case _Name:
		n := &Name{Value: p.lit}
		n.pos = p.pos
		p.next()
		return n

	case _Literal:
		lit := &BasicLit{Value: p.lit, Kind: p.scanner.LitKind()}
		lit.pos = p.pos
		p.next()
		// adjacent string literals are concatenated
		for lit.Kind == StringLit && p.tok == _Literal && p.scanner.LitKind() == StringLit {
			lit.Value += p.lit
			p.next()
		}
		return lit

	case _Lparen: // parenthesized expression, cast or compound literal
		pos := p.pos
		p.next()
		if p.isTypeStart() {
			typ := p.typeName()
			p.want(_Rparen)
			if p.tok == _Lbrace {
				l := p.initList()
				l.Type = typ
				l.pos = pos
				return l
			}
			c := &CastExpr{Type: typ}
			c.pos = pos
			c.X = p.unaryExpr()
			return c
		}
		x := p.expr()
		p.want(_Rparen)
		paren := &ParenExpr{X: x}
		paren.pos = pos
		return paren

	default:
		p.syntaxError("expected operand")
		n := &Name{Value: "_"} // error recovery
		n.pos = p.pos
		return n
	}
}

// callExpr parses Fun(args...)
func (p *Parser) callExpr(fun Expr) Expr {
	call := &CallExpr{Fun: fun}
	call.pos = fun.Pos()

	p.want(_Lparen)
	if p.tok != _Rparen {
		call.Args = p.argList()
	}
	p.want(_Rparen)

	return call
}

// indexExpr parses X[Index]
func (p *Parser) indexExpr(x Expr) Expr {
	idx := &IndexExpr{X: x}
	idx.pos = x.Pos()

	p.want(_Lbrack)
	idx.Index = p.expr()
	p.want(_Rbrack)

	return idx
}

// selectorExpr parses X.Sel or X->Sel
func (p *Parser) selectorExpr(x Expr) Expr {
	sel := &SelectorExpr{X: x, Arrow: p.tok == _Arrow}
	sel.pos = x.Pos()

	p.next()
	sel.Sel = p.name()

	return sel
}

// argList parses a comma-separated list of assignment expressions.
func (p *Parser) argList() []Expr {
	list := []Expr{p.assignExpr(nil)}
	for p.got(_Comma) {
		list = append(list, p.assignExpr(nil))
	}
	return list
}
