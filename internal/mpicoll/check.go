package mpicoll

import (
	"context"

	"github.com/nikandfor/tlog"
	"github.com/willf/bitset"

	"github.com/you-not-fish/mpicoll/internal/diag"
	"github.com/you-not-fish/mpicoll/internal/ir"
	"github.com/you-not-fish/mpicoll/internal/passes"
)

// Config controls the check.
type Config struct {
	// Table lists the recognized collectives. Nil means DefaultTable.
	Table Table

	// Match selects exact or prefix matching of callee names.
	Match MatchMode

	// Closure selects how group frontiers are iterated.
	Closure ClosureMode

	// Verify checks the invariants of intermediate results (at most one
	// collective per block after splitting, CFG' acyclic and covering)
	// and fails with ErrMalformedCFG when one does not hold.
	Verify bool

	// Passes controls CFG dumps and verification between stages.
	Passes passes.Config
}

// Classifier returns the call classifier described by c.
func (c Config) Classifier() Classifier {
	t := c.Table
	if t == nil {
		t = DefaultTable
	}
	return Classifier{Table: t, Match: c.Match}
}

// Result holds the intermediate results of a check, indexed by block ID
// or group index.
type Result struct {
	Func   *ir.Func
	Splits int // blocks split to isolate collectives

	Tags    Tags
	Acyclic *Acyclic
	Ranks   Ranks
	Groups  []*Group

	PDF       []*bitset.BitSet // per block: post-dominance frontier
	GroupPDom []*bitset.BitSet // per block: groups post-dominating it
	GroupPDF  []*bitset.BitSet // per group: post-dominance frontier
	IPDF      []*bitset.BitSet // per group: iterated frontier

	Diags diag.List // diagnostics delivered to the sink
}

// Check runs the collective check on f and reports possible deadlocks to
// sink. f may be modified: blocks holding several collectives are split.
//
// Diagnostics are only delivered once every stage succeeded; on error
// nothing reaches sink. Errors wrap ErrHostCapability or ErrMalformedCFG
// when f cannot be checked.
func Check(ctx context.Context, f *ir.Func, cfg Config, sink diag.Sink) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "mpicoll: check", "func", f.Name)
	defer tr.Finish("err", &err)

	cls := cfg.Classifier()
	r := &Result{Func: f}

	pipeline := []passes.Pass{
		{Name: "split", Fn: func(ctx context.Context, f *ir.Func) (err error) {
			r.Splits, err = Split(f, cls)
			if err != nil {
				return err
			}
			if cfg.Verify {
				if n := MaxPerBlock(f, cls); n > 1 {
					return malformed("%v still has a block with %d collectives", f.Name, n)
				}
			}
			return nil
		}},
		{Name: "tag", Fn: func(ctx context.Context, f *ir.Func) error {
			r.Tags = Tag(f, cls)
			return nil
		}},
		{Name: "postdom", Fn: func(ctx context.Context, f *ir.Func) error {
			ir.ComputeDom(f)
			ir.ComputePostDom(f)
			return nil
		}},
		{Name: "acyclic", Fn: func(ctx context.Context, f *ir.Func) error {
			r.Acyclic = BuildAcyclic(f)
			if cfg.Verify {
				return r.Acyclic.Verify(f)
			}
			return nil
		}},
		{Name: "rank", Fn: func(ctx context.Context, f *ir.Func) (err error) {
			r.Ranks, err = Rank(f, r.Acyclic, r.Tags)
			return err
		}},
		{Name: "group", Fn: func(ctx context.Context, f *ir.Func) error {
			r.Groups = MakeGroups(r.Ranks, r.Tags)
			return nil
		}},
		{Name: "pdf", Fn: func(ctx context.Context, f *ir.Func) (err error) {
			r.PDF, err = PostDomFrontier(f)
			return err
		}},
		{Name: "gpdf", Fn: func(ctx context.Context, f *ir.Func) error {
			r.GroupPDom = GroupPostDom(f, r.Groups)
			r.GroupPDF = GroupFrontier(f, r.Groups, r.GroupPDom)
			return nil
		}},
		{Name: "ipdf", Fn: func(ctx context.Context, f *ir.Func) error {
			r.IPDF = IteratedFrontier(r.GroupPDF, r.PDF, cfg.Closure)
			return nil
		}},
		{Name: "emit", Fn: func(ctx context.Context, f *ir.Func) error {
			Emit(f, r.Groups, r.IPDF, cls, &r.Diags)
			return nil
		}},
	}

	if err = passes.Run(ctx, f, pipeline, cfg.Passes); err != nil {
		return nil, err
	}

	if tr.If("mpicoll_ranks") {
		for k, s := range r.Ranks {
			tr.Printw("rank", "k", k, "blocks", s.String())
		}
		for gi, g := range r.Groups {
			tr.Printw("group", "group", gi, "rank", g.Rank, "collective", cls.Table.Name(g.Code), "blocks", g.Blocks.String())
		}
	}
	if tr.If("mpicoll_pdf") {
		for gi := range r.Groups {
			tr.Printw("group frontier", "group", gi, "gpdf", r.GroupPDF[gi].String(), "ipdf", r.IPDF[gi].String())
		}
	}

	tr.V("mpicoll").Printw("checked", "blocks", f.NumBlocks(), "splits", r.Splits, "edges", r.Acyclic.NumEdges(), "ranks", r.Ranks.Depth(),
		"groups", len(r.Groups), "diagnostics", len(r.Diags))

	r.Diags.Flush(sink)
	return r, nil
}
