package mpicoll

import (
	"github.com/willf/bitset"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// PostDomFrontier computes the post-dominance frontier of every block,
// indexed by block ID, following Cytron et al. on the post-dominator tree:
// for each branch b and each successor p, every block on the Ipdom chain
// from p up to (excluding) Ipdom(b) has b in its frontier.
//
// ir.ComputePostDom must have been called. A branch without an immediate
// post-dominator fails with ErrMalformedCFG.
func PostDomFrontier(f *ir.Func) ([]*bitset.BitSet, error) {
	n := uint(f.NumBlocks())
	pdf := make([]*bitset.BitSet, n)
	for i := range pdf {
		pdf[i] = bitset.New(n)
	}

	for _, b := range f.Blocks {
		if len(b.Succs) < 2 {
			continue
		}
		if b.Ipdom == nil {
			return nil, malformed("%v of %v has %d successors but no immediate post-dominator",
				b, f.Name, len(b.Succs))
		}
		for _, p := range b.Succs {
			for r := p; r != nil && r != b.Ipdom; r = r.Ipdom {
				pdf[r.ID].Set(uint(b.ID))
			}
		}
	}
	return pdf, nil
}

// GroupPostDom computes, for every block x, the set of group indices
// that post-dominate x.
//
// A group is seeded on every block one of its members post-dominates,
// then a block also gets every group present on all its successors,
// until nothing changes.
func GroupPostDom(f *ir.Func, groups []*Group) []*bitset.BitSet {
	ng := uint(len(groups))
	pdom := make([]*bitset.BitSet, f.NumBlocks())
	for i := range pdom {
		pdom[i] = bitset.New(ng)
	}

	for gi, g := range groups {
		for id, ok := g.Blocks.NextSet(0); ok; id, ok = g.Blocks.NextSet(id + 1) {
			for _, x := range f.PostDominated(f.Blocks[id]) {
				pdom[x.ID].Set(uint(gi))
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, x := range f.Blocks {
			if len(x.Succs) == 0 {
				continue
			}
			meet := pdom[x.Succs[0].ID].Clone()
			for _, s := range x.Succs[1:] {
				meet.InPlaceIntersection(pdom[s.ID])
			}
			before := pdom[x.ID].Count()
			pdom[x.ID].InPlaceUnion(meet)
			if pdom[x.ID].Count() != before {
				changed = true
			}
		}
	}
	return pdom
}

// GroupFrontier computes the post-dominance frontier of every group: the
// blocks not post-dominated by the group with a successor that is.
func GroupFrontier(f *ir.Func, groups []*Group, pdom []*bitset.BitSet) []*bitset.BitSet {
	n := uint(f.NumBlocks())
	gpdf := make([]*bitset.BitSet, len(groups))
	for gi := range groups {
		gpdf[gi] = bitset.New(n)
	}

	for _, b := range f.Blocks {
		for gi := range groups {
			if pdom[b.ID].Test(uint(gi)) {
				continue
			}
			for _, s := range b.Succs {
				if pdom[s.ID].Test(uint(gi)) {
					gpdf[gi].Set(uint(b.ID))
					break
				}
			}
		}
	}
	return gpdf
}
