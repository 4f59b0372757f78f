// Package ir provides the intraprocedural control flow graph that the
// collective analysis runs on: functions made of basic blocks holding
// flattened call statements, with dominator and post-dominator trees.
package ir

import "fmt"

// ID is a dense block index within a Func: f.Blocks[b.ID] == b.
type ID int

// BlockKind describes how a basic block terminates.
type BlockKind int

const (
	BlockInvalid BlockKind = iota
	BlockPlain             // unconditional jump to Succs[0]
	BlockIf                // conditional branch: Succs[0] on true, Succs[1] on false
	BlockSwitch            // multiway branch, one successor per case label (+ default)
	BlockReturn            // function return; Succs[0] is the exit block
	BlockExit              // the exit sentinel; no successors
)

// blockKindNames maps BlockKind to its string representation.
var blockKindNames = [...]string{
	BlockInvalid: "invalid",
	BlockPlain:   "plain",
	BlockIf:      "if",
	BlockSwitch:  "switch",
	BlockReturn:  "ret",
	BlockExit:    "exit",
}

// String returns the string representation of the block kind.
func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// EdgeFlags describes a CFG edge.
type EdgeFlags uint8

const (
	EdgeFallthru EdgeFlags = 1 << iota // unconditional edge
	EdgeTrue                           // taken when the condition holds
	EdgeFalse                          // taken when the condition fails
)

// Block represents a basic block in the control flow graph.
type Block struct {
	// ID is the block's index in Func.Blocks.
	ID ID

	// Kind describes how this block terminates.
	Kind BlockKind

	// Stmts is the ordered list of statements in this block.
	Stmts []*Stmt

	// TermPos is the source position of the terminator: the controlling
	// expression of an if/loop/switch, or the return statement.
	TermPos Pos

	// Succs lists the successor blocks in the CFG.
	Succs []*Block

	// Preds lists the predecessor blocks in the CFG.
	Preds []*Block

	// Func is the function containing this block.
	Func *Func

	// Dominance tree fields, set by ComputeDom.
	Idom     *Block
	Dominees []*Block

	// Post-dominance tree fields, set by ComputePostDom.
	Ipdom        *Block
	PostDominees []*Block
}

// String returns a short string representation (e.g., "b3").
func (b *Block) String() string {
	return fmt.Sprintf("b%d", b.ID)
}

// AddSucc adds a successor block, updating both Succs and the successor's Preds.
func (b *Block) AddSucc(succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// EdgeFlags returns the flags of the edge b -> b.Succs[i].
func (b *Block) EdgeFlags(i int) EdgeFlags {
	switch b.Kind {
	case BlockIf:
		if i == 0 {
			return EdgeTrue
		}
		return EdgeFalse
	case BlockSwitch:
		return 0
	}
	return EdgeFallthru
}

// PostDominates reports whether b post-dominates c. Every block
// post-dominates itself. ComputePostDom must have been called.
func (b *Block) PostDominates(c *Block) bool {
	for x := c; x != nil; x = x.Ipdom {
		if x == b {
			return true
		}
	}
	return false
}

// Dominates reports whether b dominates c. ComputeDom must have been called.
func (b *Block) Dominates(c *Block) bool {
	for x := c; x != nil; x = x.Idom {
		if x == b {
			return true
		}
	}
	return false
}

// NumSuccs returns the number of successor blocks.
func (b *Block) NumSuccs() int { return len(b.Succs) }

// NumPreds returns the number of predecessor blocks.
func (b *Block) NumPreds() int { return len(b.Preds) }
