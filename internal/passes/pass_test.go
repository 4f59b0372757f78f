package passes

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/you-not-fish/mpicoll/internal/ir"
	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// retFunc returns the smallest valid function: entry → ret → exit.
func retFunc() *ir.Func {
	f := ir.NewFunc("f", syntax.NoPos)
	b := f.NewBlock(ir.BlockReturn)
	f.Entry.AddSucc(b)
	b.AddSucc(f.Exit)
	return f
}

func TestRunEmpty(t *testing.T) {
	err := Run(context.Background(), retFunc(), nil, Config{})
	if err != nil {
		t.Fatalf("Run with no passes: %v", err)
	}
}

func TestRunSinglePass(t *testing.T) {
	called := false
	passes := []Pass{
		{Name: "test", Fn: func(ctx context.Context, fn *ir.Func) error { called = true; return nil }},
	}

	err := Run(context.Background(), retFunc(), passes, Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called {
		t.Error("pass was not called")
	}
}

func TestRunMultiplePasses(t *testing.T) {
	var order []string
	passes := []Pass{
		{Name: "first", Fn: func(ctx context.Context, fn *ir.Func) error { order = append(order, "first"); return nil }},
		{Name: "second", Fn: func(ctx context.Context, fn *ir.Func) error { order = append(order, "second"); return nil }},
	}

	err := Run(context.Background(), retFunc(), passes, Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("pass order = %v, want [first second]", order)
	}
}

func TestRunStopsOnError(t *testing.T) {
	errBoom := errors.New("boom")
	ran := false
	passes := []Pass{
		{Name: "bad", Fn: func(ctx context.Context, fn *ir.Func) error { return errBoom }},
		{Name: "never", Fn: func(ctx context.Context, fn *ir.Func) error { ran = true; return nil }},
	}

	err := Run(context.Background(), retFunc(), passes, Config{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "pass bad") {
		t.Errorf("err = %q, want pass name", err)
	}
	if ran {
		t.Error("pass after a failure was run")
	}
}

func TestRunWithVerify(t *testing.T) {
	passes := []Pass{
		{Name: "noop", Fn: func(ctx context.Context, fn *ir.Func) error { return nil }},
		{Name: "corrupt", Fn: func(ctx context.Context, fn *ir.Func) error {
			fn.Blocks[2].Kind = ir.BlockIf
			return nil
		}},
	}

	err := Run(context.Background(), retFunc(), passes, Config{Verify: true})
	if err == nil || !strings.Contains(err.Error(), "verify after corrupt") {
		t.Fatalf("err = %v, want verify failure after corrupt", err)
	}
}

func TestRunDump(t *testing.T) {
	var buf bytes.Buffer
	passes := []Pass{
		{Name: "a", Fn: func(ctx context.Context, fn *ir.Func) error { return nil }},
		{Name: "b", Fn: func(ctx context.Context, fn *ir.Func) error { return nil }},
	}

	err := Run(context.Background(), retFunc(), passes, Config{DumpBefore: "b", DumpAfter: "*", Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"--- after a (f) ---", "--- before b (f) ---", "--- after b (f) ---", "func f:"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in dump:\n%s", want, out)
		}
	}
	if strings.Contains(out, "--- before a") {
		t.Error("dumped before a")
	}

	buf.Reset()
	err = Run(context.Background(), retFunc(), passes, Config{DumpAfter: "*", DumpFunc: "g", Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("dump not restricted to g:\n%s", buf.String())
	}
}
