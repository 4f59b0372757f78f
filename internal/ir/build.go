package ir

import (
	"fmt"

	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// BuildError reports a construct the CFG builder cannot lower.
type BuildError struct {
	Pos Pos
	Msg string
}

func (e *BuildError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// builder holds the state for lowering a single function body to a CFG.
type builder struct {
	fn *Func  // current function
	b  *Block // current block (nil = unreachable)

	breakTarget    *Block // innermost loop or switch exit
	continueTarget *Block // innermost loop continuation
	sw             *switchCtx

	err *BuildError // first error
}

// switchCtx is the innermost enclosing switch.
type switchCtx struct {
	head       *Block
	hasDefault bool
}

// BuildFile builds a Func for every function definition in the file.
// Functions that fail to build are reported in errs and left out.
func BuildFile(file *syntax.File) (funcs []*Func, errs []error) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*syntax.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		fn, err := BuildFunc(fd)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		funcs = append(funcs, fn)
	}
	return funcs, errs
}

// BuildFunc lowers a function definition to a CFG. Unreachable blocks are
// removed, so every block but the exit is reachable from the entry.
func BuildFunc(fd *syntax.FuncDecl) (*Func, error) {
	fn := NewFunc(fd.Name.Value, fd.Pos())

	b := &builder{fn: fn}
	first := fn.NewBlock(BlockPlain)
	fn.Entry.AddSucc(first)
	b.b = first

	b.stmts(fd.Body.Stmts)

	// Falling off the end is an implicit return.
	if b.b != nil {
		b.b.Kind = BlockReturn
		b.b.TermPos = fd.Body.Rbrace
		b.b.AddSucc(fn.Exit)
	}

	if b.err != nil {
		return nil, b.err
	}

	fn.removeUnreachable()
	return fn, nil
}

func (b *builder) errorf(pos Pos, format string, args ...interface{}) {
	if b.err == nil {
		b.err = &BuildError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}
}

// emit appends a statement to the current block.
func (b *builder) emit(op Op, callee string, pos Pos) {
	if b.b == nil {
		return
	}
	b.b.Stmts = append(b.b.Stmts, &Stmt{Op: op, Callee: callee, Pos: pos})
}

// stmts lowers a list of statements.
func (b *builder) stmts(list []syntax.Stmt) {
	for _, s := range list {
		b.stmt(s)
	}
}

// stmt dispatches a statement to the appropriate lowering method.
// Code after a jump is skipped, except for case labels that make it
// reachable again.
func (b *builder) stmt(s syntax.Stmt) {
	if b.b == nil && !hasCaseLabel(s) {
		return
	}

	switch s := s.(type) {
	case *syntax.EmptyStmt:
		// no-op

	case *syntax.ExprStmt:
		b.expr(s.X)
		if _, isCall := unparen(s.X).(*syntax.CallExpr); !isCall {
			b.emit(OpEval, "", s.Pos())
		}

	case *syntax.DeclStmt:
		b.varDecl(s.Decl)

	case *syntax.BlockStmt:
		b.stmts(s.Stmts)

	case *syntax.IfStmt:
		b.ifStmt(s)

	case *syntax.WhileStmt:
		b.whileStmt(s)

	case *syntax.DoStmt:
		b.doStmt(s)

	case *syntax.ForStmt:
		b.forStmt(s)

	case *syntax.SwitchStmt:
		b.switchStmt(s)

	case *syntax.CaseStmt:
		b.caseStmt(s)

	case *syntax.ReturnStmt:
		b.returnStmt(s)

	case *syntax.BranchStmt:
		b.branchStmt(s)

	case *syntax.LabeledStmt:
		// Labels are only meaningful as goto targets, which are rejected.
		b.stmt(s.Stmt)

	case *syntax.GotoStmt:
		b.errorf(s.Pos(), "goto is not supported")
		b.b = nil

	default:
		panic(fmt.Sprintf("ir.builder.stmt: unhandled %T", s))
	}
}

// hasCaseLabel reports whether s is, or directly contains, a case label.
func hasCaseLabel(s syntax.Stmt) bool {
	switch s := s.(type) {
	case *syntax.CaseStmt:
		return true
	case *syntax.LabeledStmt:
		return hasCaseLabel(s.Stmt)
	case *syntax.BlockStmt:
		for _, x := range s.Stmts {
			if hasCaseLabel(x) {
				return true
			}
		}
	}
	return false
}

// varDecl lowers the initializers of a block-scope declaration.
func (b *builder) varDecl(d *syntax.VarDecl) {
	for _, v := range d.Vars {
		for _, dim := range v.Dims {
			b.expr(dim)
		}
		if v.Init != nil {
			b.expr(v.Init)
			b.emit(OpEval, "", v.Pos())
		}
	}
}

// cond lowers a branch condition and ends in If blocks with successors
// then and els. && and || branch after their left operand, so the right
// operand gets its own block.
func (b *builder) cond(x syntax.Expr, then, els *Block) {
	if op, ok := unparen(x).(*syntax.Operation); ok && op.Y != nil && op.Op.IsLogical() {
		bRight := b.fn.NewBlock(BlockPlain)
		if op.Op.IsOrOr() {
			b.cond(op.X, then, bRight)
		} else {
			b.cond(op.X, bRight, els)
		}
		b.b = bRight
		b.cond(op.Y, then, els)
		return
	}

	b.expr(x)
	b.b.Kind = BlockIf
	b.b.TermPos = x.Pos()
	b.b.AddSucc(then)
	b.b.AddSucc(els)
}

// jump ends the current block with an edge to target, if it is reachable.
func (b *builder) jump(target *Block) {
	if b.b != nil {
		b.b.AddSucc(target)
	}
	b.b = nil
}

// ifStmt handles: if (cond) then [else els]
func (b *builder) ifStmt(s *syntax.IfStmt) {
	bThen := b.fn.NewBlock(BlockPlain)
	bDone := b.fn.NewBlock(BlockPlain)
	bElse := bDone
	if s.Else != nil {
		bElse = b.fn.NewBlock(BlockPlain)
	}

	b.cond(s.Cond, bThen, bElse)

	b.b = bThen
	b.stmt(s.Then)
	b.jump(bDone)

	if s.Else != nil {
		b.b = bElse
		b.stmt(s.Else)
		b.jump(bDone)
	}

	if len(bDone.Preds) > 0 {
		b.b = bDone
	}
}

// loop lowers a loop body with the given break and continue targets.
func (b *builder) loop(body syntax.Stmt, bBody, bExit, bCont *Block) {
	savedBreak, savedContinue := b.breakTarget, b.continueTarget
	b.breakTarget, b.continueTarget = bExit, bCont

	b.b = bBody
	b.stmt(body)
	b.jump(bCont)

	b.breakTarget, b.continueTarget = savedBreak, savedContinue
}

// header starts a loop header block and branches on cond. A missing or
// constant nonzero condition jumps to the body unconditionally.
func (b *builder) header(cond syntax.Expr, bHeader, bBody, bExit *Block) {
	b.b = bHeader
	if cond == nil || isConstTrue(cond) {
		if cond != nil {
			b.expr(cond)
		}
		b.b.AddSucc(bBody)
		return
	}
	b.cond(cond, bBody, bExit)
}

// whileStmt handles: while (cond) body
func (b *builder) whileStmt(s *syntax.WhileStmt) {
	bHeader := b.fn.NewBlock(BlockPlain)
	bBody := b.fn.NewBlock(BlockPlain)
	bExit := b.fn.NewBlock(BlockPlain)

	b.jump(bHeader)
	b.header(s.Cond, bHeader, bBody, bExit)
	b.loop(s.Body, bBody, bExit, bHeader)
	b.continueAt(bExit)
}

// doStmt handles: do body while (cond);
func (b *builder) doStmt(s *syntax.DoStmt) {
	bBody := b.fn.NewBlock(BlockPlain)
	bCond := b.fn.NewBlock(BlockPlain)
	bExit := b.fn.NewBlock(BlockPlain)

	b.jump(bBody)
	b.loop(s.Body, bBody, bExit, bCond)
	if len(bCond.Preds) > 0 {
		b.header(s.Cond, bCond, bBody, bExit)
	}
	b.continueAt(bExit)
}

// forStmt handles: for (init; cond; post) body
func (b *builder) forStmt(s *syntax.ForStmt) {
	if s.Init != nil {
		b.stmt(s.Init)
	}

	bHeader := b.fn.NewBlock(BlockPlain)
	bBody := b.fn.NewBlock(BlockPlain)
	bPost := b.fn.NewBlock(BlockPlain)
	bExit := b.fn.NewBlock(BlockPlain)

	b.jump(bHeader)
	b.header(s.Cond, bHeader, bBody, bExit)
	b.loop(s.Body, bBody, bExit, bPost)

	if len(bPost.Preds) > 0 {
		b.b = bPost
		if s.Post != nil {
			b.expr(s.Post)
			b.emit(OpEval, "", s.Post.Pos())
		}
		b.jump(bHeader)
	}
	b.continueAt(bExit)
}

// continueAt makes bExit the current block if anything reaches it.
func (b *builder) continueAt(bExit *Block) {
	b.b = nil
	if len(bExit.Preds) > 0 {
		b.b = bExit
	}
}

// switchStmt handles: switch (tag) body
// The head block gets one successor per case label in source order,
// followed by the exit when there is no default label.
func (b *builder) switchStmt(s *syntax.SwitchStmt) {
	b.expr(s.Tag)
	head := b.b
	head.Kind = BlockSwitch
	head.TermPos = s.Tag.Pos()

	bExit := b.fn.NewBlock(BlockPlain)

	savedBreak, savedSw := b.breakTarget, b.sw
	b.breakTarget = bExit
	b.sw = &switchCtx{head: head}

	b.b = nil // code before the first label is unreachable
	b.stmt(s.Body)
	b.jump(bExit)

	if !b.sw.hasDefault {
		head.AddSucc(bExit)
	}
	b.breakTarget, b.sw = savedBreak, savedSw

	b.continueAt(bExit)
}

// caseStmt handles a case or default label inside a switch body.
func (b *builder) caseStmt(s *syntax.CaseStmt) {
	if b.sw == nil {
		if s.Value == nil {
			b.errorf(s.Pos(), "'default' label not within a switch statement")
		} else {
			b.errorf(s.Pos(), "case label not within a switch statement")
		}
		return
	}

	target := b.fn.NewBlock(BlockPlain)
	b.jump(target) // fallthrough from the previous case
	b.sw.head.AddSucc(target)
	if s.Value == nil {
		b.sw.hasDefault = true
	}

	b.b = target
	b.stmt(s.Stmt)
}

// returnStmt handles: return [expr];
func (b *builder) returnStmt(s *syntax.ReturnStmt) {
	if s.Result != nil {
		b.expr(s.Result)
	}
	b.b.Kind = BlockReturn
	b.b.TermPos = s.Pos()
	b.jump(b.fn.Exit)
}

// branchStmt handles break and continue.
func (b *builder) branchStmt(s *syntax.BranchStmt) {
	if s.Tok.IsBreak() {
		if b.breakTarget == nil {
			b.errorf(s.Pos(), "break statement not within loop or switch")
		}
		b.jumpTo(b.breakTarget)
		return
	}
	if b.continueTarget == nil {
		b.errorf(s.Pos(), "continue statement not within a loop")
	}
	b.jumpTo(b.continueTarget)
}

// jumpTo is jump for a possibly missing target.
func (b *builder) jumpTo(target *Block) {
	if target == nil {
		b.b = nil
		return
	}
	b.jump(target)
}

// ----------------------------------------------------------------------------
// Expressions

// expr emits the calls of x in evaluation order: operands left to right,
// arguments before the call itself. Short-circuit and conditional
// operators branch, and the current block is their join afterwards.
func (b *builder) expr(x syntax.Expr) {
	if b.b == nil {
		return
	}

	switch x := x.(type) {
	case nil:

	case *syntax.CallExpr:
		b.expr(x.Fun)
		for _, a := range x.Args {
			b.expr(a)
		}
		b.emit(OpCall, calleeName(x.Fun), x.Pos())

	case *syntax.Operation:
		if x.Y != nil && x.Op.IsLogical() {
			b.logical(x)
			return
		}
		b.expr(x.X)
		b.expr(x.Y)

	case *syntax.IncDecExpr:
		b.expr(x.X)

	case *syntax.AssignExpr:
		b.expr(x.LHS)
		b.expr(x.RHS)

	case *syntax.CondExpr:
		b.condExpr(x)

	case *syntax.IndexExpr:
		b.expr(x.X)
		b.expr(x.Index)

	case *syntax.SelectorExpr:
		b.expr(x.X)

	case *syntax.ParenExpr:
		b.expr(x.X)

	case *syntax.CastExpr:
		b.expr(x.X)

	case *syntax.SizeofExpr:
		// operand is not evaluated

	case *syntax.ListExpr:
		for _, e := range x.List {
			b.expr(e)
		}

	case *syntax.InitListExpr:
		for _, e := range x.Elems {
			b.expr(e)
		}

	case *syntax.Name, *syntax.BasicLit:
		// leaves
	}
}

// logical lowers x && y and x || y used as a value. y is evaluated in
// its own block.
func (b *builder) logical(x *syntax.Operation) {
	bRight := b.fn.NewBlock(BlockPlain)
	bDone := b.fn.NewBlock(BlockPlain)

	if x.Op.IsOrOr() {
		b.cond(x.X, bDone, bRight)
	} else {
		b.cond(x.X, bRight, bDone)
	}

	b.b = bRight
	b.expr(x.Y)
	b.jump(bDone)
	b.b = bDone
}

// condExpr lowers cond ? x : y like an if statement.
func (b *builder) condExpr(x *syntax.CondExpr) {
	bThen := b.fn.NewBlock(BlockPlain)
	bDone := b.fn.NewBlock(BlockPlain)
	bElse := b.fn.NewBlock(BlockPlain)

	b.cond(x.Cond, bThen, bElse)

	b.b = bThen
	b.expr(x.X)
	b.jump(bDone)

	b.b = bElse
	b.expr(x.Y)
	b.jump(bDone)

	b.b = bDone
}

// calleeName returns the identifier called by fun, or "" for calls
// through expressions.
func calleeName(fun syntax.Expr) string {
	if n, ok := unparen(fun).(*syntax.Name); ok {
		return n.Value
	}
	return ""
}

// unparen strips enclosing parentheses.
func unparen(x syntax.Expr) syntax.Expr {
	for {
		p, ok := x.(*syntax.ParenExpr)
		if !ok {
			return x
		}
		x = p.X
	}
}

// isConstTrue reports whether x is a nonzero integer constant, as in
// while (1).
func isConstTrue(x syntax.Expr) bool {
	lit, ok := unparen(x).(*syntax.BasicLit)
	if !ok || lit.Kind != syntax.IntLit {
		return false
	}
	for _, c := range lit.Value {
		if c >= '1' && c <= '9' {
			return true
		}
		if c == 'x' || c == 'X' {
			// hex: any nonzero digit after the prefix
			continue
		}
		if c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' {
			return true
		}
	}
	return false
}
