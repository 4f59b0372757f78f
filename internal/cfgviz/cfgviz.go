// Package cfgviz writes function CFGs in Graphviz dot format.
//
// Nodes are named N<block id> and labelled with the block's collective, or
// its ID when it has none. Edges are red and labelled "true" or "false"
// for conditional branches.
package cfgviz

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/nikandfor/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Labeler returns the collective name of b, or "" if it has none.
type Labeler func(b *ir.Block) string

// EdgeFilter reports whether the edge b → b.Succs[i] is drawn.
type EdgeFilter func(b *ir.Block, i int) bool

type node struct {
	id    int64
	label string
}

func (n node) ID() int64      { return n.id }
func (n node) DOTID() string  { return "N" + strconv.FormatInt(n.id, 10) }
func (n node) String() string { return n.DOTID() }

func (n node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: n.label},
		{Key: "shape", Value: "ellipse"},
	}
}

// line is one CFG edge. A block may branch to itself, so edges are
// lines of a multigraph.
type line struct {
	from, to node
	id       int64
	label    string
}

func (l line) From() graph.Node         { return l.from }
func (l line) To() graph.Node           { return l.to }
func (l line) ID() int64                { return l.id }
func (l line) ReversedLine() graph.Line { return line{from: l.to, to: l.from, id: l.id, label: l.label} }

func (l line) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "color", Value: "red"},
		{Key: "label", Value: l.label},
	}
}

// Graph builds the dot graph of f. A nil keep draws every edge.
func Graph(f *ir.Func, label Labeler, keep EdgeFilter) *multi.DirectedGraph {
	g := multi.NewDirectedGraph()

	nodes := make([]node, f.NumBlocks())
	for _, b := range f.Blocks {
		n := node{id: int64(b.ID), label: strconv.Itoa(int(b.ID))}
		if label != nil {
			if name := label(b); name != "" {
				n.label = name
			}
		}
		nodes[b.ID] = n
		g.AddNode(n)
	}

	var id int64
	for _, b := range f.Blocks {
		for i, s := range b.Succs {
			if keep != nil && !keep(b, i) {
				continue
			}
			g.SetLine(line{from: nodes[b.ID], to: nodes[s.ID], id: id, label: edgeLabel(b.EdgeFlags(i))})
			id++
		}
	}
	return g
}

func edgeLabel(fl ir.EdgeFlags) string {
	switch fl {
	case ir.EdgeTrue:
		return "true"
	case ir.EdgeFalse:
		return "false"
	}
	return ""
}

// Write writes the dot graph of f, named G, to w.
func Write(w io.Writer, f *ir.Func, label Labeler, keep EdgeFilter) error {
	data, err := dot.MarshalMulti(Graph(f, label, keep), "G", "", "\t")
	if err != nil {
		return errors.Wrap(err, "cfgviz: %v", f.Name)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Filename returns the dump file name for f:
// <func>_<source base name>_<start line>_<suffix>.dot.
func Filename(f *ir.Func, suffix string) string {
	base := filepath.Base(f.Pos.Filename())
	return fmt.Sprintf("%s_%s_%d_%s.dot", f.Name, base, f.Pos.Line(), suffix)
}
