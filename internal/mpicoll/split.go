package mpicoll

import (
	"github.com/nikandfor/errors"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Split splits the blocks of f until none holds more than one collective
// call. A block is cut right after its first collective; the tail is
// visited again since it may still hold several. It returns the number
// of splits made.
//
// A read-only f fails with ErrHostCapability before any block changes.
func Split(f *ir.Func, cls Classifier) (int, error) {
	splits := 0
	// Blocks appended by SplitAfter are picked up by the loop.
	for i := 0; i < f.NumBlocks(); i++ {
		b := f.Blocks[i]
		for {
			idx := collectives(b, cls)
			if len(idx) < 2 {
				break
			}
			nb, err := f.SplitAfter(b, idx[0])
			if errors.Is(err, ir.ErrFrozen) {
				return splits, errors.Wrap(ErrHostCapability, "split %v of %v: CFG is read-only", b, f.Name)
			}
			if err != nil {
				return splits, errors.Wrap(err, "split %v of %v", b, f.Name)
			}
			splits++
			b = nb
		}
	}
	return splits, nil
}

// MaxPerBlock returns the largest number of collective calls in a block.
func MaxPerBlock(f *ir.Func, cls Classifier) int {
	most := 0
	for _, b := range f.Blocks {
		if n := len(collectives(b, cls)); n > most {
			most = n
		}
	}
	return most
}
