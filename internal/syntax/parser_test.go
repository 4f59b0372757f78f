package syntax

import (
	"bytes"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Test helpers

func parseFile(t *testing.T, src string) *File {
	t.Helper()
	f, errs := parseFileWithErrors(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors:\n%s", strings.Join(errs, "\n"))
	}
	return f
}

func parseFileWithErrors(t *testing.T, src string) (*File, []string) {
	t.Helper()
	var errs []string
	errh := func(pos Pos, msg string) {
		errs = append(errs, pos.String()+": "+msg)
	}
	p := NewParser("test.c", strings.NewReader(src), errh)
	f := p.Parse()
	if f == nil {
		t.Fatal("Parse returned nil")
	}
	return f, errs
}

// funcBody returns the body statements of the named function.
func funcBody(t *testing.T, f *File, name string) []Stmt {
	t.Helper()
	for _, d := range f.Decls {
		if fd, ok := d.(*FuncDecl); ok && fd.Name.Value == name && fd.Body != nil {
			return fd.Body.Stmts
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

// ----------------------------------------------------------------------------
// Declarations

func TestParseFuncDecl(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantName   string
		wantType   string
		wantParams string
		wantBody   bool
	}{
		{"void_params", "int main(void) { return 0; }", "main", "int", "(void)", true},
		{"argv", "int main(int argc, char **argv) {}", "main", "int", "(int argc, char ** argv)", true},
		{"mpi_types", "void f(MPI_Comm comm, int rank) {}", "f", "void", "(MPI_Comm comm, int rank)", true},
		{"prototype", "static double g(double);", "g", "static double", "(double)", false},
		{"variadic", "int log_msg(const char *fmt, ...);", "log_msg", "int", "(const char * fmt, ...)", false},
		{"pointer_result", "char *dup(const char *s) { return 0; }", "dup", "char *", "(const char * s)", true},
		{"array_param", "void fill(int a[], int n) {}", "fill", "void", "(int[] a, int n)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFile(t, tt.src)
			if len(f.Decls) != 1 {
				t.Fatalf("got %d decls, want 1", len(f.Decls))
			}
			fd, ok := f.Decls[0].(*FuncDecl)
			if !ok {
				t.Fatalf("decl is %T, want *FuncDecl", f.Decls[0])
			}
			if fd.Name.Value != tt.wantName {
				t.Errorf("Name = %q, want %q", fd.Name.Value, tt.wantName)
			}
			if fd.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", fd.Type, tt.wantType)
			}
			if got := paramString(fd.Params, fd.Variadic); got != tt.wantParams {
				t.Errorf("Params = %q, want %q", got, tt.wantParams)
			}
			if (fd.Body != nil) != tt.wantBody {
				t.Errorf("has body = %v, want %v", fd.Body != nil, tt.wantBody)
			}
		})
	}
}

func TestParseFileScopeDecls(t *testing.T) {
	src := `
typedef struct { int x, y; } point_s;
typedef int handle;
struct node { struct node *next; };
static int counter = 0, *ptr;
handle h;
enum color { RED, GREEN };
int main(void) { handle k = 1; return k; }
`
	f := parseFile(t, src)
	if len(f.Decls) != 7 {
		t.Fatalf("got %d decls, want 7", len(f.Decls))
	}

	td := f.Decls[0].(*VarDecl)
	if !td.Typedef || td.Type != "struct" || td.Vars[0].Name.Value != "point_s" {
		t.Errorf("typedef decl = %+v", td)
	}

	vd := f.Decls[3].(*VarDecl)
	if vd.Type != "static int" || len(vd.Vars) != 2 {
		t.Fatalf("var decl = %q with %d vars", vd.Type, len(vd.Vars))
	}
	if vd.Vars[0].Init == nil || vd.Vars[1].Ptrs != 1 {
		t.Errorf("declarators not parsed: %+v %+v", vd.Vars[0], vd.Vars[1])
	}

	// "handle" became a type name through the typedef, so the body
	// statement is a declaration.
	body := funcBody(t, f, "main")
	if _, ok := body[0].(*DeclStmt); !ok {
		t.Errorf("body[0] is %T, want *DeclStmt", body[0])
	}
}

// ----------------------------------------------------------------------------
// Statements

func TestParseStmts(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		want string // %T of the statement
	}{
		{"call", "MPI_Barrier(MPI_COMM_WORLD);", "*syntax.ExprStmt"},
		{"assign", "x = y + 1;", "*syntax.ExprStmt"},
		{"builtin_type_decl", "MPI_Status st;", "*syntax.DeclStmt"},
		{"unknown_type_decl", "my_struct s;", "*syntax.DeclStmt"},
		{"decl_with_call", "int r = MPI_Comm_rank(comm, &rank);", "*syntax.DeclStmt"},
		{"if", "if (rank == 0) MPI_Barrier(comm);", "*syntax.IfStmt"},
		{"while", "while (i < n) i++;", "*syntax.WhileStmt"},
		{"do", "do { i--; } while (i);", "*syntax.DoStmt"},
		{"for", "for (int i = 0; i < n; i++) {}", "*syntax.ForStmt"},
		{"for_empty", "for (;;) break;", "*syntax.ForStmt"},
		{"switch", "switch (x) { case 1: break; default: ; }", "*syntax.SwitchStmt"},
		{"return", "return;", "*syntax.ReturnStmt"},
		{"goto", "goto out;", "*syntax.GotoStmt"},
		{"label", "out: return;", "*syntax.LabeledStmt"},
		{"block", "{ ; }", "*syntax.BlockStmt"},
		{"empty", ";", "*syntax.EmptyStmt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFile(t, "void f(void) { "+tt.stmt+" }")
			body := funcBody(t, f, "f")
			if len(body) != 1 {
				t.Fatalf("got %d statements, want 1", len(body))
			}
			if got := nodeKind(body[0]); got != tt.want {
				t.Errorf("stmt is %s, want %s", got, tt.want)
			}
		})
	}
}

func nodeKind(n Node) string {
	var b bytes.Buffer
	Fprint(&b, n)
	// the first word of the dump is the node kind
	kind, _, _ := strings.Cut(b.String(), " ")
	switch kind {
	case "DefaultStmt":
		kind = "CaseStmt"
	case "TypedefDecl":
		kind = "VarDecl"
	}
	return "*syntax." + kind
}

func TestParseIfElseChain(t *testing.T) {
	f := parseFile(t, `
void f(int r) {
	if (r == 0)
		a();
	else if (r == 1)
		b();
	else {
		c();
	}
}`)
	s := funcBody(t, f, "f")[0].(*IfStmt)
	elif, ok := s.Else.(*IfStmt)
	if !ok {
		t.Fatalf("Else is %T, want *IfStmt", s.Else)
	}
	if _, ok := elif.Else.(*BlockStmt); !ok {
		t.Errorf("inner Else is %T, want *BlockStmt", elif.Else)
	}
}

func TestParseSwitchCases(t *testing.T) {
	f := parseFile(t, `
void f(int x) {
	switch (x) {
	case 0:
	case 1:
		g();
		break;
	default:
		h();
	}
}`)
	sw := funcBody(t, f, "f")[0].(*SwitchStmt)
	body := sw.Body.(*BlockStmt)
	if len(body.Stmts) != 3 {
		t.Fatalf("switch body has %d stmts, want 3", len(body.Stmts))
	}
	c0 := body.Stmts[0].(*CaseStmt)
	if _, ok := c0.Stmt.(*CaseStmt); !ok {
		t.Errorf("case 0 should label case 1, got %T", c0.Stmt)
	}
	def := body.Stmts[2].(*CaseStmt)
	if def.Value != nil {
		t.Errorf("default has value %v", def.Value)
	}
}

// ----------------------------------------------------------------------------
// Expressions

func TestParseExprShapes(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"precedence", "a + b * c", "(a + (b * c))"},
		{"left_assoc", "a - b - c", "((a - b) - c)"},
		{"logical", "a || b && c", "(a || (b && c))"},
		{"compare", "a < b == c", "((a < b) == c)"},
		{"assign_right", "a = b = c", "(a = (b = c))"},
		{"compound", "a += f(x)", "(a += f(x))"},
		{"ternary", "a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"unary", "-*p", "(-(*p))"},
		{"cast", "(double)n / 2", "(((double)n) / 2)"},
		{"sizeof_type", "sizeof(MPI_Comm)", "sizeof(MPI_Comm)"},
		{"sizeof_expr", "sizeof x", "sizeof(x)"},
		{"postfix", "a[i].b->c++", "(((a[i]).b)->c)++"},
		{"call_args", "MPI_Bcast(&x, 1, MPI_INT, 0, comm)", "MPI_Bcast((&x), 1, MPI_INT, 0, comm)"},
		{"comma", "i++, j++", "(i++, j++)"},
		{"nested_call", "f(g(h()))", "f(g(h()))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseFile(t, "void t(void) { "+tt.expr+"; }")
			x := funcBody(t, f, "t")[0].(*ExprStmt).X
			if got := exprString(x); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// exprString renders an expression fully parenthesized.
func exprString(e Expr) string {
	switch x := e.(type) {
	case *Name:
		return x.Value
	case *BasicLit:
		return x.Value
	case *Operation:
		if x.Y == nil {
			return "(" + x.Op.String() + exprString(x.X) + ")"
		}
		return "(" + exprString(x.X) + " " + x.Op.String() + " " + exprString(x.Y) + ")"
	case *IncDecExpr:
		if x.Postfix {
			return exprString(x.X) + x.Op.String()
		}
		return x.Op.String() + exprString(x.X)
	case *AssignExpr:
		return "(" + exprString(x.LHS) + " " + x.Op + " " + exprString(x.RHS) + ")"
	case *CondExpr:
		return "(" + exprString(x.Cond) + " ? " + exprString(x.X) + " : " + exprString(x.Y) + ")"
	case *CallExpr:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = exprString(a)
		}
		return exprString(x.Fun) + "(" + strings.Join(args, ", ") + ")"
	case *IndexExpr:
		return "(" + exprString(x.X) + "[" + exprString(x.Index) + "])"
	case *SelectorExpr:
		op := "."
		if x.Arrow {
			op = "->"
		}
		return "(" + exprString(x.X) + op + x.Sel.Value + ")"
	case *ParenExpr:
		return exprString(x.X)
	case *CastExpr:
		return "((" + x.Type + ")" + exprString(x.X) + ")"
	case *SizeofExpr:
		if x.X == nil {
			return "sizeof(" + x.Type + ")"
		}
		return "sizeof(" + exprString(x.X) + ")"
	case *ListExpr:
		parts := make([]string, len(x.List))
		for i, l := range x.List {
			parts[i] = exprString(l)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "?"
}

// ----------------------------------------------------------------------------
// Pragmas

func TestParsePragmas(t *testing.T) {
	src := `#include <mpi.h>
#pragma mpicoll check (f, main)
#pragma once
int f(void) {
#pragma mpicoll check g
	return 0;
}
#pragma mpicoll check h
`
	f := parseFile(t, src)

	want := []struct {
		text   string
		inFunc bool
		line   uint32
	}{
		{"mpicoll check (f, main)", false, 2},
		{"once", false, 3},
		{"mpicoll check g", true, 5},
		{"mpicoll check h", false, 8},
	}
	if len(f.Pragmas) != len(want) {
		t.Fatalf("got %d pragmas, want %d", len(f.Pragmas), len(want))
	}
	for i, w := range want {
		pr := f.Pragmas[i]
		if pr.Text != w.text || pr.InFunc != w.inFunc || pr.Pos().Line() != w.line {
			t.Errorf("pragma[%d] = {%q %v line %d}, want {%q %v line %d}",
				i, pr.Text, pr.InFunc, pr.Pos().Line(), w.text, w.inFunc, w.line)
		}
	}
}

// ----------------------------------------------------------------------------
// Errors

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing_semi", "void f(void) { x = 1 }", "expected ;"},
		{"missing_paren", "void f(void) { if (x { } }", "expected )"},
		{"bad_operand", "void f(void) { x = ; }", "expected operand"},
		{"unexpected_eof", "void f(void) {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parseFileWithErrors(t, tt.src)
			if tt.want == "" {
				return
			}
			if len(errs) == 0 {
				t.Fatal("expected errors")
			}
			if !strings.Contains(errs[0], tt.want) {
				t.Errorf("first error = %q, want substring %q", errs[0], tt.want)
			}
		})
	}
}

func TestParseErrorLimit(t *testing.T) {
	src := "void f(void) {" + strings.Repeat(" x = ;", 50) + " }"
	_, errs := parseFileWithErrors(t, src)
	if len(errs) != maxErrors+1 {
		t.Errorf("got %d errors, want %d (limit plus abort message)", len(errs), maxErrors+1)
	}
	if last := errs[len(errs)-1]; !strings.Contains(last, "too many errors") {
		t.Errorf("last error = %q", last)
	}
}

func TestWalkVisitsCalls(t *testing.T) {
	f := parseFile(t, `
int main(int argc, char **argv) {
	int rank = 0;
	MPI_Init(&argc, &argv);
	if (rank == 0)
		MPI_Barrier(MPI_COMM_WORLD);
	for (int i = 0; i < g(rank); i++)
		MPI_Bcast(&rank, 1, MPI_INT, 0, MPI_COMM_WORLD);
	return MPI_Finalize();
}`)

	var calls []string
	Inspect(f, func(n Node) bool {
		if c, ok := n.(*CallExpr); ok {
			calls = append(calls, c.Fun.(*Name).Value)
		}
		return true
	})
	want := "MPI_Init MPI_Barrier g MPI_Bcast MPI_Finalize"
	if got := strings.Join(calls, " "); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}
