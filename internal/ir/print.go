package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the CFG of a function to w.
//
// Format:
//
//	func name:
//	  b0: (entry)
//	    Plain -> b2
//	  b1: (exit) <- b3
//	    Exit
//	  b2: <- b0
//	    call MPI_Barrier 3:5
//	    Plain -> b3
//
// Immediate dominators are appended to the block header once computed.
func Fprint(w io.Writer, f *Func) {
	fmt.Fprintf(w, "func %s:\n", f.Name)
	for _, b := range f.Blocks {
		fprintBlock(w, b, f)
	}
}

// fprintBlock writes a single block to w.
func fprintBlock(w io.Writer, b *Block, f *Func) {
	label := ""
	switch b {
	case f.Entry:
		label = " (entry)"
	case f.Exit:
		label = " (exit)"
	}

	predsStr := ""
	if len(b.Preds) > 0 {
		predsStr = " <- " + blockList(b.Preds)
	}

	domStr := ""
	if b.Idom != nil {
		domStr += " idom=" + b.Idom.String()
	}
	if b.Ipdom != nil {
		domStr += " ipdom=" + b.Ipdom.String()
	}

	fmt.Fprintf(w, "  %s:%s%s%s\n", b, label, predsStr, domStr)

	for _, s := range b.Stmts {
		fmt.Fprintf(w, "    %s\n", s)
	}

	fmt.Fprintf(w, "    %s\n", formatTerminator(b))
}

// formatTerminator formats a block terminator.
func formatTerminator(b *Block) string {
	switch b.Kind {
	case BlockPlain:
		if len(b.Succs) > 0 {
			return fmt.Sprintf("Plain -> %s", b.Succs[0])
		}
		return "Plain"
	case BlockIf:
		if len(b.Succs) >= 2 {
			return fmt.Sprintf("If %s -> %s %s", b.TermPos, b.Succs[0], b.Succs[1])
		}
		return "If (malformed)"
	case BlockSwitch:
		return fmt.Sprintf("Switch %s -> %s", b.TermPos, blockList(b.Succs))
	case BlockReturn:
		return fmt.Sprintf("Return %s", b.TermPos)
	case BlockExit:
		return "Exit"
	default:
		return "???"
	}
}

func blockList(list []*Block) string {
	s := make([]string, len(list))
	for i, b := range list {
		s[i] = b.String()
	}
	return strings.Join(s, " ")
}

// Sprint returns the CFG of a function as a string.
func Sprint(f *Func) string {
	var sb strings.Builder
	Fprint(&sb, f)
	return sb.String()
}
