package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 3 main classes of nodes: Expressions, Statements, and Declarations.
// All nodes implement the Node interface. Expression, Statement, and Declaration
// nodes further implement their respective interfaces.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// Decl is the interface for all declaration nodes.
type Decl interface {
	Node
	aDecl()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// expr is embedded in all expression nodes.
type expr struct{ node }

func (*expr) aExpr() {}

// stmt is embedded in all statement nodes.
type stmt struct{ node }

func (*stmt) aStmt() {}

// decl is embedded in all declaration nodes.
type decl struct{ node }

func (*decl) aDecl() {}

// ----------------------------------------------------------------------------
// Files and Declarations

// File represents a translation unit.
type File struct {
	node
	Decls   []Decl    // top-level declarations
	Pragmas []*Pragma // every #pragma line, in source order
}

// Pragma is a "#pragma" directive. Other directives are dropped by the parser.
type Pragma struct {
	node
	Text   string // text after "pragma", blanks trimmed
	InFunc bool   // directive occurred inside a function body
}

// FuncDecl represents a function definition or prototype.
//
//	Type Name(Params) { Body }
type FuncDecl struct {
	decl
	Type     string     // return type as written: "int", "static void"
	Name     *Name      // function name
	Params   []*Field   // parameter list; nil for "(void)" and "()"
	Variadic bool       // parameter list ends in "..."
	Body     *BlockStmt // nil for a prototype
}

// VarDecl represents an object or typedef declaration.
// A declaration without declarators (e.g. "struct s { ... };") has no Vars.
type VarDecl struct {
	decl
	Type    string        // base type: "unsigned int", "struct point", "MPI_Comm"
	Typedef bool          // declaration introduces type names
	Vars    []*Declarator // declared names
}

// Declarator is one name introduced by a declaration, with its
// pointer/array/function suffixes and optional initializer.
type Declarator struct {
	node
	Name     *Name    // nil for abstract declarators
	Ptrs     int      // number of '*'
	Dims     []Expr   // array dimensions; nil entries for "[]"
	Func     bool     // function declarator
	Params   []*Field // parameters when Func is set
	Variadic bool     // parameter list ends in "..."
	Init     Expr     // initializer (nil if none)
}

// Field represents a function parameter.
type Field struct {
	node
	Name *Name  // parameter name (nil for unnamed parameters)
	Type string // parameter type as written, including '*' and "[]"
}

// ----------------------------------------------------------------------------
// Expressions

// Name represents an identifier.
type Name struct {
	expr
	Value string // identifier string
}

// BasicLit represents a literal value (int, float, char, string).
type BasicLit struct {
	expr
	Value string  // literal text, without quotes for chars and strings
	Kind  LitKind // IntLit, FloatLit, CharLit, StringLit
}

// Operation represents a unary or binary operation.
// For unary operations, Y is nil.
// For binary operations, both X and Y are set.
type Operation struct {
	expr
	Op Token // operator token
	X  Expr  // left operand (or only operand for unary)
	Y  Expr  // right operand (nil for unary)
}

// IncDecExpr represents ++X, --X, X++ or X--.
type IncDecExpr struct {
	expr
	Op      Token // _Inc or _Dec
	X       Expr
	Postfix bool
}

// AssignExpr represents an assignment: LHS = RHS or LHS op= RHS.
type AssignExpr struct {
	expr
	Op  string // "=", "+=", "<<=", ...
	LHS Expr
	RHS Expr
}

// CondExpr represents Cond ? X : Y.
type CondExpr struct {
	expr
	Cond Expr
	X    Expr
	Y    Expr
}

// CallExpr represents a function call: Fun(Args...)
type CallExpr struct {
	expr
	Fun  Expr   // function expression
	Args []Expr // argument list
}

// IndexExpr represents an index expression: X[Index]
type IndexExpr struct {
	expr
	X     Expr // indexed expression (array or pointer)
	Index Expr // index expression
}

// SelectorExpr represents X.Sel or X->Sel.
type SelectorExpr struct {
	expr
	X     Expr  // operand
	Sel   *Name // member name
	Arrow bool  // selected through "->"
}

// ParenExpr represents a parenthesized expression: (X)
type ParenExpr struct {
	expr
	X Expr // inner expression
}

// CastExpr represents (Type) X.
type CastExpr struct {
	expr
	Type string
	X    Expr
}

// SizeofExpr represents sizeof X or sizeof(Type). Exactly one of Type and X is set.
type SizeofExpr struct {
	expr
	Type string
	X    Expr
}

// ListExpr represents a comma expression: X, Y, ...
type ListExpr struct {
	expr
	List []Expr
}

// InitListExpr represents a brace initializer { a, b, ... }, also used for
// compound literals. Designators are dropped.
type InitListExpr struct {
	expr
	Type  string // compound literal type, empty for plain initializers
	Elems []Expr
}

// ----------------------------------------------------------------------------
// Statements

// EmptyStmt represents an empty statement (just a semicolon).
type EmptyStmt struct {
	stmt
}

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	stmt
	X Expr // expression
}

// DeclStmt wraps a declaration as a statement.
type DeclStmt struct {
	stmt
	Decl *VarDecl // the wrapped declaration
}

// BlockStmt represents a compound statement: { Stmts... }
type BlockStmt struct {
	stmt
	Stmts  []Stmt // statements
	Rbrace Pos    // position of closing brace
}

// IfStmt represents if (Cond) Then [else Else].
type IfStmt struct {
	stmt
	Cond Expr // condition expression
	Then Stmt // then branch
	Else Stmt // else branch (nil if absent)
}

// WhileStmt represents while (Cond) Body.
type WhileStmt struct {
	stmt
	Cond Expr
	Body Stmt
}

// DoStmt represents do Body while (Cond);
type DoStmt struct {
	stmt
	Body Stmt
	Cond Expr
}

// ForStmt represents for (Init; Cond; Post) Body. Any of Init, Cond and
// Post may be nil.
type ForStmt struct {
	stmt
	Init Stmt // *ExprStmt or *DeclStmt
	Cond Expr
	Post Expr
	Body Stmt
}

// SwitchStmt represents switch (Tag) Body.
type SwitchStmt struct {
	stmt
	Tag  Expr
	Body Stmt
}

// CaseStmt represents "case Value: Stmt" or, with a nil Value, "default: Stmt".
type CaseStmt struct {
	stmt
	Value Expr
	Stmt  Stmt
}

// ReturnStmt represents a return statement: return [Result];
type ReturnStmt struct {
	stmt
	Result Expr // return value (nil for bare return)
}

// BranchStmt represents a break or continue statement.
type BranchStmt struct {
	stmt
	Tok Token // _Break or _Continue
}

// GotoStmt represents goto Label;
type GotoStmt struct {
	stmt
	Label *Name
}

// LabeledStmt represents Label: Stmt.
type LabeledStmt struct {
	stmt
	Label *Name
	Stmt  Stmt
}
