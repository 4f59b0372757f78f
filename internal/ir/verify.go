package ir

import (
	"fmt"
	"strings"
)

// Verify checks the structural integrity of a function CFG.
// It returns an error describing all violations found, or nil if valid.
func Verify(f *Func) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if f.Entry == nil || f.Exit == nil {
		add("func %s: missing entry or exit block", f.Name)
		return combineErrors(errs)
	}

	if len(f.Blocks) < 2 {
		add("func %s: %d blocks, want at least 2", f.Name, len(f.Blocks))
		return combineErrors(errs)
	}

	if f.Blocks[0] != f.Entry {
		add("func %s: Blocks[0] is not the entry block", f.Name)
	}
	if f.Blocks[1] != f.Exit {
		add("func %s: Blocks[1] is not the exit block", f.Name)
	}

	// 1. Entry has no predecessors and a single successor.
	if len(f.Entry.Preds) != 0 {
		add("func %s: entry block %s has %d predecessors, want 0",
			f.Name, f.Entry, len(f.Entry.Preds))
	}
	if len(f.Entry.Succs) != 1 || len(f.Entry.Stmts) != 0 {
		add("func %s: entry block %s must be an empty block with one successor", f.Name, f.Entry)
	}

	// 2. Exit has no successors or statements.
	if f.Exit.Kind != BlockExit || len(f.Exit.Succs) != 0 || len(f.Exit.Stmts) != 0 {
		add("func %s: exit block %s must be an empty Exit block without successors", f.Name, f.Exit)
	}

	blockSet := make(map[*Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		blockSet[b] = true
	}

	for i, b := range f.Blocks {
		// 3. IDs are dense.
		if int(b.ID) != i {
			add("func %s, %s: block at index %d", f.Name, b, i)
		}

		// 4. Block's Func pointer matches.
		if b.Func != f {
			add("func %s, %s: block Func pointer mismatch", f.Name, b)
		}

		// 5. Successor count matches the kind.
		switch b.Kind {
		case BlockPlain:
			if len(b.Succs) != 1 {
				add("func %s, %s: Plain block has %d successors, want 1", f.Name, b, len(b.Succs))
			}
		case BlockIf:
			if len(b.Succs) != 2 {
				add("func %s, %s: If block has %d successors, want 2", f.Name, b, len(b.Succs))
			}
		case BlockSwitch:
			if len(b.Succs) == 0 {
				add("func %s, %s: Switch block has no successors", f.Name, b)
			}
		case BlockReturn:
			if len(b.Succs) != 1 || b.Succs[0] != f.Exit {
				add("func %s, %s: Return block must have the exit as its only successor", f.Name, b)
			}
		case BlockExit:
			if b != f.Exit {
				add("func %s, %s: Exit block is not the function exit", f.Name, b)
			}
		default:
			add("func %s, %s: block has invalid kind", f.Name, b)
		}

		for j, s := range b.Stmts {
			if s == nil {
				add("func %s, %s: stmt[%d] is nil", f.Name, b, j)
			}
		}

		// 6. Succs/Preds are symmetric and stay inside f.
		for _, s := range b.Succs {
			if !blockSet[s] {
				add("func %s, %s: successor %s is not in the function", f.Name, b, s)
				continue
			}
			if countBlock(s.Preds, b) != countBlock(b.Succs, s) {
				add("func %s, %s: successor %s does not list it as predecessor", f.Name, b, s)
			}
		}
		for _, p := range b.Preds {
			if !blockSet[p] {
				add("func %s, %s: predecessor %s is not in the function", f.Name, b, p)
				continue
			}
			if countBlock(p.Succs, b) != countBlock(b.Preds, p) {
				add("func %s, %s: predecessor %s does not list it as successor", f.Name, b, p)
			}
		}
	}

	return combineErrors(errs)
}

// countBlock counts the occurrences of b in list.
func countBlock(list []*Block, b *Block) int {
	n := 0
	for _, x := range list {
		if x == b {
			n++
		}
	}
	return n
}

// VerifyPostDom checks the post-dominator tree of f.
// ComputePostDom must have been called before this.
// It calls Verify first.
func VerifyPostDom(f *Func) error {
	if err := Verify(f); err != nil {
		return err
	}

	var errs []string
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if f.Exit.Ipdom != nil {
		add("func %s: exit %s has non-nil Ipdom %s", f.Name, f.Exit, f.Exit.Ipdom)
	}

	for _, b := range f.Blocks {
		if b == f.Exit || b.Ipdom == nil {
			continue
		}
		if b.Ipdom == b {
			add("func %s, %s: block is its own Ipdom", f.Name, b)
			continue
		}
		// The immediate post-dominator post-dominates every successor
		// that can reach the exit.
		for _, s := range b.Succs {
			if (s == f.Exit || s.Ipdom != nil) && !b.Ipdom.PostDominates(s) {
				add("func %s, %s: Ipdom %s does not post-dominate successor %s",
					f.Name, b, b.Ipdom, s)
			}
		}
	}

	return combineErrors(errs)
}

// combineErrors creates an error from a list of error strings, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("CFG verification failed:\n  %s", strings.Join(errs, "\n  "))
}
