package ir

import (
	"strings"
	"testing"

	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// buildFromSource parses and builds CFGs for the given source.
// It calls t.Fatal on any parse or build errors.
// Each returned function is verified with Verify.
func buildFromSource(t *testing.T, src string) []*Func {
	t.Helper()

	var parseErrs []string
	errh := func(pos syntax.Pos, msg string) {
		parseErrs = append(parseErrs, pos.String()+": "+msg)
	}

	p := syntax.NewParser("test.c", strings.NewReader(src), errh)
	file := p.Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors:\n%s", strings.Join(parseErrs, "\n"))
	}

	funcs, errs := BuildFile(file)
	if len(errs) > 0 {
		t.Fatalf("build errors: %v", errs)
	}
	for _, fn := range funcs {
		if err := Verify(fn); err != nil {
			t.Fatalf("Verify(%s) failed:\n%v\nCFG:\n%s", fn.Name, err, Sprint(fn))
		}
	}
	return funcs
}

// buildErrors parses src and returns the build errors.
func buildErrors(t *testing.T, src string) ([]*Func, []error) {
	t.Helper()
	p := syntax.NewParser("test.c", strings.NewReader(src), func(pos syntax.Pos, msg string) {
		t.Fatalf("parse error: %s: %s", pos, msg)
	})
	return BuildFile(p.Parse())
}

// getFunc returns the function with the given name from a list, or calls t.Fatal.
func getFunc(t *testing.T, funcs []*Func, name string) *Func {
	t.Helper()
	for _, fn := range funcs {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

// callees lists the callees of the call statements in b.
func callees(b *Block) []string {
	var list []string
	for _, s := range b.Stmts {
		if s.IsCall() {
			list = append(list, s.Callee)
		}
	}
	return list
}

func checkSuccs(t *testing.T, b *Block, want ...*Block) {
	t.Helper()
	if len(b.Succs) != len(want) {
		t.Fatalf("%s.Succs = [%s], want %d blocks", b, blockList(b.Succs), len(want))
	}
	for i := range want {
		if b.Succs[i] != want[i] {
			t.Errorf("%s.Succs[%d] = %s, want %s", b, i, b.Succs[i], want[i])
		}
	}
}

// --- Basic tests ---

func TestBuildEmptyFunc(t *testing.T) {
	src := `void f(void) {
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")

	if fn.NumBlocks() != 3 {
		t.Fatalf("got %d blocks, want 3:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	b := fn.Blocks[2]
	checkSuccs(t, fn.Entry, b)
	if b.Kind != BlockReturn {
		t.Errorf("body kind = %s, want ret", b.Kind)
	}
	checkSuccs(t, b, fn.Exit)
	if got := b.TermPos.String(); got != "test.c:2:1" {
		t.Errorf("implicit return pos = %s, want test.c:2:1", got)
	}
}

func TestBuildPrototypesSkipped(t *testing.T) {
	src := `int g(int);
int x = 3;
void f(void) { g(x); }
`
	funcs := buildFromSource(t, src)
	if len(funcs) != 1 || funcs[0].Name != "f" {
		t.Fatalf("got %d funcs, want only f", len(funcs))
	}
}

func TestBuildCallOrder(t *testing.T) {
	src := `void f(int x) {
    MPI_Barrier(c);
    g(h(x), x + k(x));
    x = 3;
    int y = m();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	b := fn.Blocks[2]

	got := callees(b)
	want := []string{"MPI_Barrier", "h", "k", "g", "m"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("callees = %v, want %v", got, want)
	}

	ops := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		ops[i] = s.Op.String()
	}
	if got := strings.Join(ops, " "); got != "call call call call eval call eval" {
		t.Errorf("ops = %s", got)
	}

	if got := b.Stmts[0].Pos.String(); got != "test.c:2:5" {
		t.Errorf("MPI_Barrier pos = %s, want test.c:2:5", got)
	}
}

func TestBuildIndirectCall(t *testing.T) {
	src := `void f(int *fp) {
    (*fp)();
    (fp)();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	got := callees(fn.Blocks[2])
	if len(got) != 2 || got[0] != "" || got[1] != "fp" {
		t.Errorf("callees = %q, want [\"\" \"fp\"]", got)
	}
	if s := fn.Blocks[2].Stmts[0].String(); !strings.HasPrefix(s, "call <indirect>") {
		t.Errorf("indirect call prints as %q", s)
	}
}

// --- Control flow ---

func TestBuildIfElse(t *testing.T) {
	src := `void f(int x) {
    if (x)
        a();
    else
        b();
    c();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	head, then, done, els := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4], fn.Blocks[5]

	if head.Kind != BlockIf {
		t.Fatalf("head kind = %s, want if", head.Kind)
	}
	checkSuccs(t, head, then, els)
	if head.EdgeFlags(0) != EdgeTrue || head.EdgeFlags(1) != EdgeFalse {
		t.Errorf("edge flags = %v %v", head.EdgeFlags(0), head.EdgeFlags(1))
	}
	if got := head.TermPos.String(); got != "test.c:2:9" {
		t.Errorf("if pos = %s, want test.c:2:9", got)
	}
	checkSuccs(t, then, done)
	checkSuccs(t, els, done)
	if len(done.Preds) != 2 {
		t.Errorf("join has %d preds, want 2", len(done.Preds))
	}
	if got := callees(done); len(got) != 1 || got[0] != "c" {
		t.Errorf("join callees = %v", got)
	}
	if done.Kind != BlockReturn {
		t.Errorf("join kind = %s, want ret", done.Kind)
	}
}

func TestBuildConditionShortCircuit(t *testing.T) {
	src := `void f(int r) {
    if (MPI_Test(r) && g())
        a();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	head, then, done, right := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4], fn.Blocks[5]

	if head.Kind != BlockIf || right.Kind != BlockIf {
		t.Fatalf("kinds = %s %s, want if if", head.Kind, right.Kind)
	}
	checkSuccs(t, head, right, done)
	checkSuccs(t, right, then, done)
	checkSuccs(t, then, done)
	if got := callees(head); len(got) != 1 || got[0] != "MPI_Test" {
		t.Errorf("head callees = %v, want [MPI_Test]", got)
	}
	if got := callees(right); len(got) != 1 || got[0] != "g" {
		t.Errorf("right callees = %v, want [g]", got)
	}
	if got := right.TermPos.String(); got != "test.c:2:24" {
		t.Errorf("right operand pos = %s, want test.c:2:24", got)
	}
}

func TestBuildConditionOr(t *testing.T) {
	src := `void f(int x, int y) {
    if (x || y)
        a();
    else
        b();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	head, then, els, right := fn.Blocks[2], fn.Blocks[3], fn.Blocks[5], fn.Blocks[6]

	checkSuccs(t, head, then, right)
	checkSuccs(t, right, then, els)
}

func TestBuildLogicalValue(t *testing.T) {
	tests := []struct {
		name string
		src  string
		// successors of the first block: right operand first for &&
		andAnd bool
		fork   string
	}{
		{"and", "void f(int x) {\n    x && a();\n    c();\n}\n", true, "test.c:2:5"},
		{"or", "void f(int x) {\n    x = a() || b();\n    c();\n}\n", false, "test.c:2:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := getFunc(t, buildFromSource(t, tt.src), "f")
			if fn.NumBlocks() != 5 {
				t.Fatalf("got %d blocks, want 5:\n%s", fn.NumBlocks(), Sprint(fn))
			}
			head, right, done := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4]

			if head.Kind != BlockIf {
				t.Fatalf("head kind = %s, want if", head.Kind)
			}
			if tt.andAnd {
				checkSuccs(t, head, right, done)
			} else {
				checkSuccs(t, head, done, right)
			}
			checkSuccs(t, right, done)
			if got := callees(done); len(got) != 1 || got[0] != "c" {
				t.Errorf("join callees = %v, want [c]", got)
			}
			if got := head.TermPos.String(); got != tt.fork {
				t.Errorf("fork pos = %s, want %s", got, tt.fork)
			}
		})
	}
}

func TestBuildCondExpr(t *testing.T) {
	src := `void f(int r) {
    r ? a() : b();
    c();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	head, then, done, els := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4], fn.Blocks[5]

	checkSuccs(t, head, then, els)
	checkSuccs(t, then, done)
	checkSuccs(t, els, done)
	if got := callees(then); len(got) != 1 || got[0] != "a" {
		t.Errorf("then callees = %v", got)
	}
	if got := callees(els); len(got) != 1 || got[0] != "b" {
		t.Errorf("else callees = %v", got)
	}
	if got := callees(done); len(got) != 1 || got[0] != "c" {
		t.Errorf("join callees = %v", got)
	}
}

func TestBuildWhile(t *testing.T) {
	src := `void f(int n) {
    while (n)
        MPI_Barrier(c);
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	pre, header, body, exit := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4], fn.Blocks[5]

	checkSuccs(t, pre, header)
	checkSuccs(t, header, body, exit)
	checkSuccs(t, body, header)
	if len(header.Preds) != 2 || header.Preds[1] != body {
		t.Errorf("header preds = [%s], want back edge from %s", blockList(header.Preds), body)
	}
	checkSuccs(t, exit, fn.Exit)
}

func TestBuildInfiniteLoopConst(t *testing.T) {
	src := `void f(int x) {
    while (1) {
        if (x)
            break;
    }
    g();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	header := fn.Blocks[3]
	if header.Kind != BlockPlain {
		t.Errorf("while (1) header kind = %s, want plain", header.Kind)
	}
	if fn.Exit.NumPreds() != 1 {
		t.Errorf("exit has %d preds, want 1", fn.Exit.NumPreds())
	}
}

func TestBuildForContinue(t *testing.T) {
	src := `void f(int n) {
    int i;
    for (i = 0; i < n; i++) {
        if (i)
            continue;
        g();
    }
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 9 {
		t.Fatalf("got %d blocks, want 9:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	pre, header, body, post, exit := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4], fn.Blocks[5], fn.Blocks[6]
	cont, rest := fn.Blocks[7], fn.Blocks[8]

	if len(pre.Stmts) != 1 || pre.Stmts[0].Op != OpEval {
		t.Errorf("init not lowered into the preheader: %v", pre.Stmts)
	}
	checkSuccs(t, header, body, exit)
	checkSuccs(t, body, cont, rest)
	checkSuccs(t, cont, post)
	checkSuccs(t, rest, post)
	checkSuccs(t, post, header)
	if len(post.Stmts) != 1 || post.Stmts[0].Op != OpEval {
		t.Errorf("post statement missing from latch: %v", post.Stmts)
	}
}

func TestBuildDoWhile(t *testing.T) {
	src := `void f(int n) {
    do {
        g();
    } while (n);
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	body, cond, exit := fn.Blocks[3], fn.Blocks[4], fn.Blocks[5]

	checkSuccs(t, fn.Blocks[2], body)
	checkSuccs(t, body, cond)
	checkSuccs(t, cond, body, exit)
	if cond.Kind != BlockIf {
		t.Errorf("cond kind = %s, want if", cond.Kind)
	}
}

func TestBuildSwitch(t *testing.T) {
	src := `void f(int x) {
    switch (x) {
    case 1:
        a();
    case 2:
        b();
        break;
    default:
        c();
    }
    d();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 7 {
		t.Fatalf("got %d blocks, want 7:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	head, exit := fn.Blocks[2], fn.Blocks[3]
	c1, c2, def := fn.Blocks[4], fn.Blocks[5], fn.Blocks[6]

	if head.Kind != BlockSwitch {
		t.Fatalf("head kind = %s, want switch", head.Kind)
	}
	checkSuccs(t, head, c1, c2, def)
	if head.EdgeFlags(0) != 0 {
		t.Errorf("switch edge flags = %v, want 0", head.EdgeFlags(0))
	}
	checkSuccs(t, c1, c2) // fallthrough
	checkSuccs(t, c2, exit)
	checkSuccs(t, def, exit)
	if got := callees(exit); len(got) != 1 || got[0] != "d" {
		t.Errorf("exit callees = %v", got)
	}
}

func TestBuildSwitchNoDefault(t *testing.T) {
	src := `void f(int x) {
    switch (x) {
    case 1:
        a();
        break;
    }
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	head, exit, c1 := fn.Blocks[2], fn.Blocks[3], fn.Blocks[4]
	checkSuccs(t, head, c1, exit)
}

func TestBuildReturns(t *testing.T) {
	src := `int f(int x) {
    if (x)
        return 1;
    g();
    return 0;
    h();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 5 {
		t.Fatalf("got %d blocks, want 5:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	if fn.Exit.NumPreds() != 2 {
		t.Errorf("exit has %d preds, want 2", fn.Exit.NumPreds())
	}
	for _, b := range fn.Exit.Preds {
		if b.Kind != BlockReturn {
			t.Errorf("%s kind = %s, want ret", b, b.Kind)
		}
	}
	for _, b := range fn.Blocks {
		for _, c := range callees(b) {
			if c == "h" {
				t.Errorf("unreachable call h kept in %s", b)
			}
		}
	}
}

func TestBuildRemovesUnreachable(t *testing.T) {
	src := `void f(void) {
    for (;;)
        g();
    h();
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	if fn.NumBlocks() != 6 {
		t.Fatalf("got %d blocks, want 6:\n%s", fn.NumBlocks(), Sprint(fn))
	}
	if fn.Exit.NumPreds() != 0 {
		t.Errorf("exit has %d preds, want 0", fn.Exit.NumPreds())
	}
	for i, b := range fn.Blocks {
		if int(b.ID) != i {
			t.Errorf("Blocks[%d].ID = %d", i, b.ID)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"break", "break;", "break statement not within loop or switch"},
		{"continue", "switch (x) { case 1: continue; }", "continue statement not within a loop"},
		{"goto", "goto out; out: ;", "goto is not supported"},
		{"case", "case 1: g();", "case label not within a switch statement"},
		{"default", "default: g();", "'default' label not within a switch statement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "void ok(void) { g(); }\nvoid bad(int x) { " + tt.body + " }\n"
			funcs, errs := buildErrors(t, src)
			if len(funcs) != 1 || funcs[0].Name != "ok" {
				t.Errorf("got %d funcs, want only ok", len(funcs))
			}
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tt.want) {
				t.Errorf("error = %q, want %q", errs[0], tt.want)
			}
			if _, ok := errs[0].(*BuildError); !ok {
				t.Errorf("error type = %T, want *BuildError", errs[0])
			}
		})
	}
}

func TestIsConstTrue(t *testing.T) {
	tests := []struct {
		lit  string
		want bool
	}{
		{"1", true},
		{"0", false},
		{"010", true},
		{"0x0", false},
		{"0x10", true},
		{"0xff", true},
		{"1u", true},
		{"0L", false},
	}
	for _, tt := range tests {
		x := &syntax.BasicLit{Value: tt.lit, Kind: syntax.IntLit}
		if got := isConstTrue(x); got != tt.want {
			t.Errorf("isConstTrue(%s) = %v, want %v", tt.lit, got, tt.want)
		}
	}
	if isConstTrue(&syntax.Name{Value: "n"}) {
		t.Error("isConstTrue(n) = true")
	}
}
