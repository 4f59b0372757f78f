package mpicoll

import (
	"fmt"

	"github.com/nikandfor/errors"
	"github.com/willf/bitset"
)

// ClosureMode selects how far a group frontier is iterated.
type ClosureMode int

const (
	// ClosureSingle adds the frontier of each block of the group frontier
	// once.
	ClosureSingle ClosureMode = iota

	// ClosureFixpoint keeps adding frontiers of added blocks until the set
	// stops growing.
	ClosureFixpoint
)

func (m ClosureMode) String() string {
	switch m {
	case ClosureSingle:
		return "single"
	case ClosureFixpoint:
		return "fixpoint"
	}
	return fmt.Sprintf("ClosureMode(%d)", int(m))
}

// ParseClosureMode parses "single" or "fixpoint".
func ParseClosureMode(s string) (ClosureMode, error) {
	switch s {
	case "single":
		return ClosureSingle, nil
	case "fixpoint":
		return ClosureFixpoint, nil
	}
	return 0, errors.New("unknown closure mode %q (want single or fixpoint)", s)
}

// IteratedFrontier extends every group frontier with the post-dominance
// frontiers of its blocks. gpdf is left unchanged.
func IteratedFrontier(gpdf, pdf []*bitset.BitSet, mode ClosureMode) []*bitset.BitSet {
	ipdf := make([]*bitset.BitSet, len(gpdf))
	for gi, front := range gpdf {
		set := front.Clone()
		from := front
		for {
			before := set.Count()
			for x, ok := from.NextSet(0); ok; x, ok = from.NextSet(x + 1) {
				set.InPlaceUnion(pdf[x])
			}
			if mode != ClosureFixpoint || set.Count() == before {
				break
			}
			from = set.Clone()
		}
		ipdf[gi] = set
	}
	return ipdf
}
