package mpicoll

import "github.com/you-not-fish/mpicoll/internal/ir"

// Tags maps block IDs to the collective code of the block.
type Tags []Code

// Tag scans every block of f in statement order and records the code of
// the last collective call in it, or None. Codes outside the table are
// recorded as None.
func Tag(f *ir.Func, cls Classifier) Tags {
	tags := make(Tags, f.NumBlocks())
	for _, b := range f.Blocks {
		tags[b.ID] = None
		for _, s := range b.Stmts {
			if c := cls.Classify(s); c != None {
				tags[b.ID] = c
			}
		}
		if !cls.Table.Valid(tags[b.ID]) {
			tags[b.ID] = None
		}
	}
	return tags
}

// Has reports whether block id holds a collective.
func (t Tags) Has(id ir.ID) bool {
	return int(id) < len(t) && t[id] != None
}

// Count returns the number of collective blocks.
func (t Tags) Count() int {
	n := 0
	for _, c := range t {
		if c != None {
			n++
		}
	}
	return n
}

// collectives returns the indices of the collective calls in b.
func collectives(b *ir.Block, cls Classifier) []int {
	var idx []int
	for i, s := range b.Stmts {
		if cls.Classify(s) != None {
			idx = append(idx, i)
		}
	}
	return idx
}

// Location returns the position of the collective call in b, or an
// invalid position if b holds none.
func Location(b *ir.Block, cls Classifier) ir.Pos {
	for _, s := range b.Stmts {
		if cls.Classify(s) != None {
			return s.Pos
		}
	}
	return ir.Pos{}
}
