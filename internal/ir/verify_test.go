package ir

import (
	"strings"
	"testing"

	"github.com/you-not-fish/mpicoll/internal/syntax"
)

func TestVerifyValid(t *testing.T) {
	f, _, _, _, _ := diamond()
	if err := Verify(f); err != nil {
		t.Fatal(err)
	}
}

func TestVerifyViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Func, b2, b3 *Block)
		want   string
	}{
		{
			name:   "if arity",
			mutate: func(f *Func, b2, b3 *Block) { b2.Succs = b2.Succs[:1] },
			want:   "If block has 1 successors, want 2",
		},
		{
			name:   "asymmetric edge",
			mutate: func(f *Func, b2, b3 *Block) { b3.Preds = nil },
			want:   "does not list it as predecessor",
		},
		{
			name:   "dense ids",
			mutate: func(f *Func, b2, b3 *Block) { b3.ID = 7 },
			want:   "block at index 3",
		},
		{
			name:   "return target",
			mutate: func(f *Func, b2, b3 *Block) { b3.Kind = BlockReturn },
			want:   "Return block must have the exit as its only successor",
		},
		{
			name:   "entry preds",
			mutate: func(f *Func, b2, b3 *Block) { b3.Succs[0] = f.Entry; f.Entry.Preds = append(f.Entry.Preds, b3) },
			want:   "entry block b0 has 1 predecessors",
		},
		{
			name:   "invalid kind",
			mutate: func(f *Func, b2, b3 *Block) { b3.Kind = BlockInvalid },
			want:   "invalid kind",
		},
		{
			name:   "nil stmt",
			mutate: func(f *Func, b2, b3 *Block) { b3.Stmts = append(b3.Stmts, nil) },
			want:   "stmt[0] is nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, b2, b3, _, _ := diamond()
			tt.mutate(f, b2, b3)
			err := Verify(f)
			if err == nil {
				t.Fatal("Verify succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v\nwant substring %q", err, tt.want)
			}
		})
	}
}

func TestSprint(t *testing.T) {
	src := `void f(int x) {
    if (x)
        MPI_Barrier(c);
}
`
	fn := getFunc(t, buildFromSource(t, src), "f")
	ComputeDom(fn)
	ComputePostDom(fn)

	got := Sprint(fn)
	for _, want := range []string{
		"func f:\n",
		"  b0: (entry) ipdom=b2\n",
		"  b1: (exit) <- b4 idom=b4\n",
		"    If test.c:2:9 -> b3 b4\n",
		"    call MPI_Barrier test.c:3:9\n",
		"    Return test.c:4:1\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestBuildErrorString(t *testing.T) {
	err := &BuildError{Pos: syntax.NewPos("a.c", 3, 7), Msg: "goto is not supported"}
	if got := err.Error(); got != "a.c:3:7: goto is not supported" {
		t.Errorf("Error() = %q", got)
	}
}
