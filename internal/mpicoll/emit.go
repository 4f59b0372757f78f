package mpicoll

import (
	"github.com/willf/bitset"

	"github.com/you-not-fish/mpicoll/internal/diag"
	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Diagnostic messages.
const (
	MsgDeadlock = "possible MPI deadlock"
	MsgFork     = "fork here"
)

// Emit reports every group whose iterated frontier is not empty: a
// warning at the collective call of each member block, then a note at the
// terminator of each frontier block. Groups with an empty frontier report
// nothing. It returns the number of groups reported.
func Emit(f *ir.Func, groups []*Group, ipdf []*bitset.BitSet, cls Classifier, sink diag.Sink) int {
	reported := 0
	for gi, g := range groups {
		front := ipdf[gi]
		if front.None() {
			continue
		}
		reported++

		for id, ok := g.Blocks.NextSet(0); ok; id, ok = g.Blocks.NextSet(id + 1) {
			sink.Report(diag.Diagnostic{
				Pos:      Location(f.Blocks[id], cls),
				Severity: diag.Warning,
				Msg:      MsgDeadlock,
			})
		}
		for id, ok := front.NextSet(0); ok; id, ok = front.NextSet(id + 1) {
			sink.Report(diag.Diagnostic{
				Pos:      f.Blocks[id].TermPos,
				Severity: diag.Info,
				Msg:      MsgFork,
			})
		}
	}
	return reported
}
