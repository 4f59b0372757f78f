package ir

import (
	"sort"

	"github.com/nikandfor/errors"
)

// ErrFrozen is returned by editing operations on a read-only Func.
var ErrFrozen = errors.New("function CFG is read-only")

// Func represents one function's control flow graph.
//
// Blocks[0] is the entry block and Blocks[1] the exit block. Both are
// statement-free sentinels: the entry has a single successor, and every
// return edge leads to the exit.
type Func struct {
	// Name is the function name.
	Name string

	// Pos is the position of the function definition.
	Pos Pos

	// Blocks is the list of basic blocks, indexed by ID.
	Blocks []*Block

	// Entry and Exit are the sentinel blocks.
	Entry *Block
	Exit  *Block

	// Frozen marks the CFG read-only; SplitAfter fails with ErrFrozen.
	Frozen bool
}

// NewFunc creates a new function with the given name.
// The entry and exit sentinels are automatically created.
func NewFunc(name string, pos Pos) *Func {
	f := &Func{
		Name: name,
		Pos:  pos,
	}
	f.Entry = f.NewBlock(BlockPlain)
	f.Exit = f.NewBlock(BlockExit)
	return f
}

// NewBlock creates a new basic block with the given kind and appends it to the function.
func (f *Func) NewBlock(kind BlockKind) *Block {
	b := &Block{
		ID:   ID(len(f.Blocks)),
		Kind: kind,
		Func: f,
	}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NumBlocks returns the number of blocks in the function.
func (f *Func) NumBlocks() int { return len(f.Blocks) }

// SplitAfter splits b after statement i. Statements i+1.., the terminator
// and all outgoing edges move to a new block, which becomes b's only
// successor. Dominator information is invalidated.
func (f *Func) SplitAfter(b *Block, i int) (*Block, error) {
	if f.Frozen {
		return nil, errors.Wrap(ErrFrozen, "split %v", b)
	}
	if b.Func != f || i < 0 || i >= len(b.Stmts) {
		return nil, errors.New("split %v after %d: no such statement", b, i)
	}

	nb := f.NewBlock(b.Kind)
	nb.Stmts = append([]*Stmt(nil), b.Stmts[i+1:]...)
	nb.TermPos = b.TermPos
	nb.Succs = b.Succs
	for _, s := range nb.Succs {
		for j, p := range s.Preds {
			if p == b {
				s.Preds[j] = nb
			}
		}
	}

	b.Stmts = b.Stmts[:i+1]
	b.TermPos = Pos{}
	b.Kind = BlockPlain
	b.Succs = nil
	b.AddSucc(nb)

	f.clearDom()
	return nb, nil
}

// clearDom drops dominator and post-dominator trees.
func (f *Func) clearDom() {
	for _, b := range f.Blocks {
		b.Idom, b.Dominees = nil, nil
		b.Ipdom, b.PostDominees = nil, nil
	}
}

// PostDominated returns b and every block it strictly post-dominates,
// ordered by ID. ComputePostDom must have been called.
func (f *Func) PostDominated(b *Block) []*Block {
	var list []*Block
	var walk func(x *Block)
	walk = func(x *Block) {
		list = append(list, x)
		for _, c := range x.PostDominees {
			walk(c)
		}
	}
	walk(b)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// removeUnreachable deletes blocks not reachable from the entry (the
// exit is always kept) and renumbers the survivors densely.
func (f *Func) removeUnreachable() {
	reachable := make([]bool, len(f.Blocks))
	var walk func(b *Block)
	walk = func(b *Block) {
		if reachable[b.ID] {
			return
		}
		reachable[b.ID] = true
		for _, s := range b.Succs {
			walk(s)
		}
	}
	walk(f.Entry)
	reachable[f.Exit.ID] = true

	live := f.Blocks[:0]
	for _, b := range f.Blocks {
		if reachable[b.ID] {
			live = append(live, b)
		}
	}
	for _, b := range live {
		preds := b.Preds[:0]
		for _, p := range b.Preds {
			if reachable[p.ID] {
				preds = append(preds, p)
			}
		}
		b.Preds = preds
	}
	for i := len(live); i < len(f.Blocks); i++ {
		f.Blocks[i] = nil
	}
	f.Blocks = live
	for i, b := range f.Blocks {
		b.ID = ID(i)
	}
}
