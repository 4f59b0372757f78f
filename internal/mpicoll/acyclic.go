package mpicoll

import (
	"github.com/willf/bitset"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Acyclic is CFG': the CFG edges left after dropping every edge that
// leads back to an ancestor on the breadth-first discovery path.
type Acyclic struct {
	// Succs[id] holds the successor IDs of block id kept in CFG'.
	Succs []*bitset.BitSet
}

// BuildAcyclic computes CFG' by breadth-first search from the entry.
// Each block inherits the ancestor set of the block that discovered it
// first, plus that block. An edge u→v is kept unless v is u or one of
// u's ancestors.
func BuildAcyclic(f *ir.Func) *Acyclic {
	n := uint(f.NumBlocks())
	a := &Acyclic{Succs: make([]*bitset.BitSet, n)}
	for i := range a.Succs {
		a.Succs[i] = bitset.New(n)
	}

	anc := make([]*bitset.BitSet, n)
	anc[f.Entry.ID] = bitset.New(n)

	queue := []*ir.Block{f.Entry}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range u.Succs {
			if v == u || anc[u.ID].Test(uint(v.ID)) {
				continue
			}
			a.Succs[u.ID].Set(uint(v.ID))

			if anc[v.ID] == nil {
				anc[v.ID] = anc[u.ID].Clone().Set(uint(u.ID))
				queue = append(queue, v)
			}
		}
	}

	return a
}

// Has reports whether the edge u→v is in CFG'.
func (a *Acyclic) Has(u, v ir.ID) bool {
	return a.Succs[u].Test(uint(v))
}

// NumEdges returns the number of edges in CFG'.
func (a *Acyclic) NumEdges() int {
	n := 0
	for _, s := range a.Succs {
		n += int(s.Count())
	}
	return n
}

// Graph returns CFG' as a gonum directed graph with one node per block,
// node IDs equal to block IDs.
func (a *Acyclic) Graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for u := range a.Succs {
		g.AddNode(simple.Node(u))
	}
	for u, s := range a.Succs {
		for v, ok := s.NextSet(0); ok; v, ok = s.NextSet(v + 1) {
			g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
		}
	}
	return g
}

// Verify checks that CFG' has no cycle and that every block reachable
// from the entry in f is still reachable in CFG'.
func (a *Acyclic) Verify(f *ir.Func) error {
	if _, err := topo.Sort(a.Graph()); err != nil {
		return malformed("CFG' of %v has a cycle: %v", f.Name, err)
	}

	hasPred := make([]bool, len(a.Succs))
	for _, s := range a.Succs {
		for v, ok := s.NextSet(0); ok; v, ok = s.NextSet(v + 1) {
			hasPred[v] = true
		}
	}
	for _, b := range ir.ReversePostOrder(f) {
		if b != f.Entry && !hasPred[b.ID] {
			return malformed("%v of %v is unreachable in CFG'", b, f.Name)
		}
	}
	return nil
}
