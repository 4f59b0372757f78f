package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// child prints an optional labelled sub-node one level deeper.
func (p *printer) child(label string, n Node) {
	if isNil(n) {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	p.print(n)
	p.indent--
}

func (p *printer) print(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		p.printf("File %s\n", n.pos)
		p.indent++
		for _, pr := range n.Pragmas {
			p.printf("Pragma %s %q", pr.pos, pr.Text)
			if pr.InFunc {
				fmt.Fprint(p.w, " (in function)")
			}
			fmt.Fprintln(p.w)
		}
		for _, d := range n.Decls {
			p.print(d)
		}
		p.indent--

	case *VarDecl:
		if n.Typedef {
			p.printf("TypedefDecl %s %s\n", n.pos, n.Type)
		} else {
			p.printf("VarDecl %s %s\n", n.pos, n.Type)
		}
		p.indent++
		for _, d := range n.Vars {
			p.print(d)
		}
		p.indent--

	case *Declarator:
		name := "<abstract>"
		if n.Name != nil {
			name = n.Name.Value
		}
		p.printf("Declarator %s %s%s%s\n", n.pos, strings.Repeat("*", n.Ptrs), name, strings.Repeat("[]", len(n.Dims)))
		p.indent++
		if n.Func {
			p.printf("Params: %s\n", paramString(n.Params, n.Variadic))
		}
		p.child("Init", n.Init)
		p.indent--

	case *FuncDecl:
		p.printf("FuncDecl %s\n", n.pos)
		p.indent++
		p.printf("Name: %s\n", n.Name.Value)
		p.printf("Type: %s\n", n.Type)
		p.printf("Params: %s\n", paramString(n.Params, n.Variadic))
		if n.Body == nil {
			p.printf("Prototype\n")
		}
		p.child("Body", n.Body)
		p.indent--

	case *Field:
		p.printf("Field %s %s\n", n.pos, fieldString(n))

	case *BlockStmt:
		p.printf("BlockStmt %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.child("Then", n.Then)
		p.child("Else", n.Else)
		p.indent--

	case *WhileStmt:
		p.printf("WhileStmt %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.child("Body", n.Body)
		p.indent--

	case *DoStmt:
		p.printf("DoStmt %s\n", n.pos)
		p.indent++
		p.child("Body", n.Body)
		p.child("Cond", n.Cond)
		p.indent--

	case *ForStmt:
		p.printf("ForStmt %s\n", n.pos)
		p.indent++
		p.child("Init", n.Init)
		p.child("Cond", n.Cond)
		p.child("Post", n.Post)
		p.child("Body", n.Body)
		p.indent--

	case *SwitchStmt:
		p.printf("SwitchStmt %s\n", n.pos)
		p.indent++
		p.child("Tag", n.Tag)
		p.child("Body", n.Body)
		p.indent--

	case *CaseStmt:
		if n.Value == nil {
			p.printf("DefaultStmt %s\n", n.pos)
		} else {
			p.printf("CaseStmt %s\n", n.pos)
		}
		p.indent++
		p.child("Value", n.Value)
		p.print(n.Stmt)
		p.indent--

	case *ReturnStmt:
		p.printf("ReturnStmt %s\n", n.pos)
		if n.Result != nil {
			p.indent++
			p.print(n.Result)
			p.indent--
		}

	case *BranchStmt:
		p.printf("BranchStmt %s %s\n", n.pos, n.Tok)

	case *GotoStmt:
		p.printf("GotoStmt %s %s\n", n.pos, n.Label.Value)

	case *LabeledStmt:
		p.printf("LabeledStmt %s %s\n", n.pos, n.Label.Value)
		p.indent++
		p.print(n.Stmt)
		p.indent--

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *DeclStmt:
		p.printf("DeclStmt %s\n", n.pos)
		p.indent++
		p.print(n.Decl)
		p.indent--

	case *EmptyStmt:
		p.printf("EmptyStmt %s\n", n.pos)

	case *Name:
		p.printf("Name %s %q\n", n.pos, n.Value)

	case *BasicLit:
		p.printf("BasicLit %s %s %q\n", n.pos, n.Kind, n.Value)

	case *Operation:
		if n.Y == nil {
			p.printf("UnaryOp %s %s\n", n.pos, n.Op)
			p.indent++
			p.print(n.X)
			p.indent--
		} else {
			p.printf("BinaryOp %s %s\n", n.pos, n.Op)
			p.indent++
			p.child("X", n.X)
			p.child("Y", n.Y)
			p.indent--
		}

	case *IncDecExpr:
		fix := "prefix"
		if n.Postfix {
			fix = "postfix"
		}
		p.printf("IncDec %s %s %s\n", n.pos, n.Op, fix)
		p.indent++
		p.print(n.X)
		p.indent--

	case *AssignExpr:
		p.printf("AssignExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.child("LHS", n.LHS)
		p.child("RHS", n.RHS)
		p.indent--

	case *CondExpr:
		p.printf("CondExpr %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.child("X", n.X)
		p.child("Y", n.Y)
		p.indent--

	case *CallExpr:
		p.printf("CallExpr %s\n", n.pos)
		p.indent++
		p.child("Fun", n.Fun)
		if len(n.Args) > 0 {
			p.printf("Args:\n")
			p.indent++
			for _, a := range n.Args {
				p.print(a)
			}
			p.indent--
		}
		p.indent--

	case *IndexExpr:
		p.printf("IndexExpr %s\n", n.pos)
		p.indent++
		p.child("X", n.X)
		p.child("Index", n.Index)
		p.indent--

	case *SelectorExpr:
		op := "."
		if n.Arrow {
			op = "->"
		}
		p.printf("SelectorExpr %s %s%s\n", n.pos, op, n.Sel.Value)
		p.indent++
		p.print(n.X)
		p.indent--

	case *ParenExpr:
		p.printf("ParenExpr %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *CastExpr:
		p.printf("CastExpr %s (%s)\n", n.pos, n.Type)
		p.indent++
		p.print(n.X)
		p.indent--

	case *SizeofExpr:
		if n.X == nil {
			p.printf("SizeofExpr %s (%s)\n", n.pos, n.Type)
			break
		}
		p.printf("SizeofExpr %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *ListExpr:
		p.printf("ListExpr %s\n", n.pos)
		p.indent++
		for _, e := range n.List {
			p.print(e)
		}
		p.indent--

	case *InitListExpr:
		if n.Type != "" {
			p.printf("InitListExpr %s (%s)\n", n.pos, n.Type)
		} else {
			p.printf("InitListExpr %s\n", n.pos)
		}
		p.indent++
		for _, e := range n.Elems {
			p.print(e)
		}
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// fieldString renders a parameter as "type name".
func fieldString(f *Field) string {
	if f.Name == nil {
		return f.Type
	}
	return f.Type + " " + f.Name.Value
}

// paramString renders a parameter list: "(int argc, char ** argv)".
func paramString(params []*Field, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, f := range params {
		parts = append(parts, fieldString(f))
	}
	if variadic {
		parts = append(parts, "...")
	}
	if len(parts) == 0 {
		return "(void)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
