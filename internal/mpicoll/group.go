package mpicoll

import "github.com/willf/bitset"

// Group is a set of collective blocks sharing a rank and a collective.
type Group struct {
	Rank   int
	Code   Code
	Blocks *bitset.BitSet
}

// MakeGroups partitions each rank by collective code. Groups are created
// in ascending rank order, then ascending block ID, and a group never
// spans two ranks.
func MakeGroups(ranks Ranks, tags Tags) []*Group {
	var groups []*Group
	for k, r := range ranks {
		start := len(groups)
		for b, ok := r.NextSet(0); ok; b, ok = r.NextSet(b + 1) {
			code := tags[b]

			var g *Group
			for _, x := range groups[start:] {
				if x.Code == code {
					g = x
					break
				}
			}
			if g == nil {
				g = &Group{Rank: k, Code: code, Blocks: bitset.New(uint(len(tags)))}
				groups = append(groups, g)
			}
			g.Blocks.Set(b)
		}
	}
	return groups
}
