package mpicoll

import (
	"github.com/willf/bitset"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Ranks holds, for each rank k, the IDs of the collective blocks that are
// the k-th collective (counting from 0) on some acyclic path from the
// entry. A block reached by paths with different collective counts is in
// several ranks.
type Ranks []*bitset.BitSet

// Rank computes the ranks of the collective blocks of f over CFG'.
//
// Blocks are processed in topological order, each one carrying the set of
// collective counts it can be reached with. This visits every block once
// instead of once per path.
func Rank(f *ir.Func, a *Acyclic, tags Tags) (Ranks, error) {
	n := len(a.Succs)

	indeg := make([]int, n)
	for _, s := range a.Succs {
		for v, ok := s.NextSet(0); ok; v, ok = s.NextSet(v + 1) {
			indeg[v]++
		}
	}

	var ranks Ranks
	counts := make([]*bitset.BitSet, n)
	counts[f.Entry.ID] = bitset.New(1).Set(0)

	reached, done := 1, 0
	queue := []ir.ID{f.Entry.ID}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		done++

		out := counts[b]
		if tags.Has(b) {
			out = bitset.New(out.Len() + 1)
			for k, ok := counts[b].NextSet(0); ok; k, ok = counts[b].NextSet(k + 1) {
				for uint(len(ranks)) <= k {
					ranks = append(ranks, bitset.New(uint(n)))
				}
				ranks[k].Set(uint(b))
				out.Set(k + 1)
			}
		}

		s := a.Succs[b]
		for v, ok := s.NextSet(0); ok; v, ok = s.NextSet(v + 1) {
			if counts[v] == nil {
				counts[v] = bitset.New(out.Len())
				reached++
			}
			counts[v].InPlaceUnion(out)
			if indeg[v]--; indeg[v] == 0 {
				queue = append(queue, ir.ID(v))
			}
		}
	}

	if done != reached {
		return nil, malformed("CFG' of %v has a cycle through %d blocks", f.Name, reached-done)
	}
	return ranks, nil
}

// Depth returns the number of ranks.
func (r Ranks) Depth() int { return len(r) }
