package ir

// ReversePostOrder returns the blocks of f in reverse post-order,
// starting from f.Entry. Unreachable blocks are excluded.
func ReversePostOrder(f *Func) []*Block {
	return reversePostOrder(f.Entry, func(b *Block) []*Block { return b.Succs })
}

// reversePostOrder walks the graph given by next from root.
func reversePostOrder(root *Block, next func(*Block) []*Block) []*Block {
	visited := make(map[*Block]bool)
	var order []*Block

	var dfs func(b *Block)
	dfs = func(b *Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range next(b) {
			dfs(s)
		}
		order = append(order, b)
	}
	dfs(root)

	// Reverse the post-order to get RPO.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ComputeDom computes the immediate dominator tree for f using
// Cooper, Harvey, and Kennedy's "A Simple, Fast Dominance Algorithm".
// It populates Block.Idom and Block.Dominees for all reachable blocks.
func ComputeDom(f *Func) {
	idom := dominators(f, f.Entry,
		func(b *Block) []*Block { return b.Succs },
		func(b *Block) []*Block { return b.Preds })

	for _, b := range f.Blocks {
		b.Idom, b.Dominees = idom[b.ID], nil
	}
	for _, b := range f.Blocks {
		if b.Idom != nil {
			b.Idom.Dominees = append(b.Idom.Dominees, b)
		}
	}
}

// ComputePostDom computes the immediate post-dominator tree for f: the
// dominator tree of the reversed CFG rooted at f.Exit. It populates
// Block.Ipdom and Block.PostDominees. Blocks that cannot reach the exit,
// such as the bodies of loops without a way out, keep a nil Ipdom.
func ComputePostDom(f *Func) {
	ipdom := dominators(f, f.Exit,
		func(b *Block) []*Block { return b.Preds },
		func(b *Block) []*Block { return b.Succs })

	for _, b := range f.Blocks {
		b.Ipdom, b.PostDominees = ipdom[b.ID], nil
	}
	for _, b := range f.Blocks {
		if b.Ipdom != nil {
			b.Ipdom.PostDominees = append(b.Ipdom.PostDominees, b)
		}
	}
}

// dominators runs the CHK iteration over the graph given by succs and
// preds, rooted at root. The result is indexed by block ID; the root and
// blocks unreachable from it map to nil.
func dominators(f *Func, root *Block, succs, preds func(*Block) []*Block) []*Block {
	idom := make([]*Block, len(f.Blocks))
	rpo := reversePostOrder(root, succs)

	rpoNum := make(map[*Block]int, len(rpo))
	for i, b := range rpo {
		rpoNum[b] = i
	}

	// intersect finds the closest common dominator.
	intersect := func(b1, b2 *Block) *Block {
		for b1 != b2 {
			for rpoNum[b1] > rpoNum[b2] {
				b1 = idom[b1.ID]
			}
			for rpoNum[b2] > rpoNum[b1] {
				b2 = idom[b2.ID]
			}
		}
		return b1
	}

	// The root dominates itself while iterating.
	idom[root.ID] = root

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom *Block
			for _, p := range preds(b) {
				if idom[p.ID] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != nil && idom[b.ID] != newIdom {
				idom[b.ID] = newIdom
				changed = true
			}
		}
	}

	idom[root.ID] = nil
	return idom
}
