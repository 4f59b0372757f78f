package mpicoll

import (
	"fmt"
	"io"
	"strings"

	"github.com/willf/bitset"
)

// Fprint writes the intermediate results of a check to w:
//
//	func name:
//	  5 blocks, 5 cfg' edges, 3 ranks
//	  b2: MPI_Barrier
//	  cfg' b0: b2
//	  post-dominance frontier b3: b2
//	  rank 0: b2
//	  group 0 rank 0 MPI_Barrier: b2 frontier: - iterated: -
func Fprint(w io.Writer, r *Result, t Table) {
	f := r.Func
	fmt.Fprintf(w, "func %s:\n", f.Name)

	edges := 0
	if r.Acyclic != nil {
		edges = r.Acyclic.NumEdges()
	}
	fmt.Fprintf(w, "  %d blocks, %d cfg' edges, %d ranks\n", f.NumBlocks(), edges, r.Ranks.Depth())

	for id, c := range r.Tags {
		if c != None {
			fmt.Fprintf(w, "  b%d: %s\n", id, t.Name(c))
		}
	}
	if r.Acyclic != nil {
		for id, s := range r.Acyclic.Succs {
			fmt.Fprintf(w, "  cfg' b%d: %s\n", id, blocks(s))
		}
	}
	for id, s := range r.PDF {
		if s.Any() {
			fmt.Fprintf(w, "  post-dominance frontier b%d: %s\n", id, blocks(s))
		}
	}
	for k, s := range r.Ranks {
		fmt.Fprintf(w, "  rank %d: %s\n", k, blocks(s))
	}
	for gi, g := range r.Groups {
		fmt.Fprintf(w, "  group %d rank %d %s: %s frontier: %s iterated: %s\n",
			gi, g.Rank, t.Name(g.Code), blocks(g.Blocks),
			blocks(r.GroupPDF[gi]), blocks(r.IPDF[gi]))
	}
}

// blocks formats a set of block IDs as "b1 b4", or "-" when empty.
func blocks(s *bitset.BitSet) string {
	if s == nil || s.None() {
		return "-"
	}
	var list []string
	for id, ok := s.NextSet(0); ok; id, ok = s.NextSet(id + 1) {
		list = append(list, fmt.Sprintf("b%d", id))
	}
	return strings.Join(list, " ")
}
