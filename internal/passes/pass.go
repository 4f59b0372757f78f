// Package passes runs named per-function passes over a CFG with optional
// dumping and verification between them.
package passes

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Pass describes a single analysis or transformation step.
type Pass struct {
	Name string
	Fn   func(ctx context.Context, f *ir.Func) error
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string    // dump the CFG before this pass ("*" for all)
	DumpAfter  string    // dump the CFG after this pass ("*" for all)
	Verify     bool      // verify the CFG before/after each pass
	DumpFunc   string    // restrict dumps to this function name
	Out        io.Writer // dump destination; nil means os.Stderr
}

// Run executes the given passes on f in order and stops at the first
// failing pass.
func Run(ctx context.Context, f *ir.Func, passes []Pass, cfg Config) error {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	tr := tlog.SpanFromContext(ctx)

	for _, p := range passes {
		if shouldDump(cfg.DumpBefore, p.Name) && matchFunc(cfg.DumpFunc, f.Name) {
			fmt.Fprintf(out, "--- before %s (%s) ---\n", p.Name, f.Name)
			ir.Fprint(out, f)
			fmt.Fprintln(out)
		}

		if cfg.Verify {
			if err := ir.Verify(f); err != nil {
				return errors.Wrap(err, "verify before %v", p.Name)
			}
		}

		tr.V("passes").Printw("run pass", "pass", p.Name, "func", f.Name, "blocks", f.NumBlocks())

		if err := p.Fn(ctx, f); err != nil {
			return errors.Wrap(err, "pass %v", p.Name)
		}

		if cfg.Verify {
			if err := ir.Verify(f); err != nil {
				return errors.Wrap(err, "verify after %v", p.Name)
			}
		}

		if shouldDump(cfg.DumpAfter, p.Name) && matchFunc(cfg.DumpFunc, f.Name) {
			fmt.Fprintf(out, "--- after %s (%s) ---\n", p.Name, f.Name)
			ir.Fprint(out, f)
			fmt.Fprintln(out)
		}
	}
	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchFunc(filter, name string) bool {
	return filter == "" || filter == name
}
