package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
// Children are visited in source order.
func Walk(node Node, v Visitor) {
	if isNil(node) || !v(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, d := range n.Decls {
			Walk(d, v)
		}

	case *VarDecl:
		for _, d := range n.Vars {
			Walk(d, v)
		}

	case *Declarator:
		for _, d := range n.Dims {
			Walk(d, v)
		}
		Walk(n.Init, v)

	case *FuncDecl:
		Walk(n.Name, v)
		for _, p := range n.Params {
			Walk(p, v)
		}
		Walk(n.Body, v)

	case *Field:
		Walk(n.Name, v)

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, v)
		}

	case *IfStmt:
		Walk(n.Cond, v)
		Walk(n.Then, v)
		Walk(n.Else, v)

	case *WhileStmt:
		Walk(n.Cond, v)
		Walk(n.Body, v)

	case *DoStmt:
		Walk(n.Body, v)
		Walk(n.Cond, v)

	case *ForStmt:
		Walk(n.Init, v)
		Walk(n.Cond, v)
		Walk(n.Post, v)
		Walk(n.Body, v)

	case *SwitchStmt:
		Walk(n.Tag, v)
		Walk(n.Body, v)

	case *CaseStmt:
		Walk(n.Value, v)
		Walk(n.Stmt, v)

	case *ReturnStmt:
		Walk(n.Result, v)

	case *GotoStmt:
		Walk(n.Label, v)

	case *LabeledStmt:
		Walk(n.Label, v)
		Walk(n.Stmt, v)

	case *ExprStmt:
		Walk(n.X, v)

	case *DeclStmt:
		Walk(n.Decl, v)

	case *Operation:
		Walk(n.X, v)
		Walk(n.Y, v)

	case *IncDecExpr:
		Walk(n.X, v)

	case *AssignExpr:
		Walk(n.LHS, v)
		Walk(n.RHS, v)

	case *CondExpr:
		Walk(n.Cond, v)
		Walk(n.X, v)
		Walk(n.Y, v)

	case *CallExpr:
		Walk(n.Fun, v)
		for _, a := range n.Args {
			Walk(a, v)
		}

	case *IndexExpr:
		Walk(n.X, v)
		Walk(n.Index, v)

	case *SelectorExpr:
		Walk(n.X, v)
		Walk(n.Sel, v)

	case *ParenExpr:
		Walk(n.X, v)

	case *CastExpr:
		Walk(n.X, v)

	case *SizeofExpr:
		Walk(n.X, v)

	case *ListExpr:
		for _, e := range n.List {
			Walk(e, v)
		}

	case *InitListExpr:
		for _, e := range n.Elems {
			Walk(e, v)
		}

	// Leaf nodes: Name, BasicLit, EmptyStmt, BranchStmt
	// No children to visit
	}
}

// isNil reports whether n is nil or a typed nil pointer, so that optional
// children can be passed to Walk unchecked.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Name:
		return n == nil
	case *BlockStmt:
		return n == nil
	case *VarDecl:
		return n == nil
	}
	return false
}

// Inspect traverses an AST and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, Visitor(f))
}
