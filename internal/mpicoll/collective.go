// Package mpicoll detects possible deadlocks caused by MPI collective
// operations issued in different orders on different ranks.
//
// The check works on one function CFG at a time. Blocks are split so that
// each holds at most one collective call, then every collective is given a
// rank: its position, counted in collectives, along the acyclic paths from
// the entry. Blocks with the same rank and collective form a group, and a
// group whose iterated post-dominance frontier is not empty may be reached
// by some processes and skipped by others. Each such group is reported at
// its collective calls, together with the branches that decide it.
package mpicoll

import (
	"fmt"
	"strings"

	"github.com/nikandfor/errors"

	"github.com/you-not-fish/mpicoll/internal/ir"
)

// Code identifies a collective operation: its index in the Table in use.
type Code int

// None marks a block without a collective.
const None Code = -1

// Collective is a collective table entry.
type Collective struct {
	Name string // callee identifier, e.g. "MPI_Barrier"
}

// Table is the ordered list of recognized collectives. Codes are indices
// into the table, so the order must stay stable.
type Table []Collective

// DefaultTable lists the MPI collectives recognized by default.
var DefaultTable = Table{
	{"MPI_Barrier"},
	{"MPI_Bcast"},
	{"MPI_Reduce"},
	{"MPI_Gather"},
	{"MPI_Scatter"},
	{"MPI_Allgather"},
	{"MPI_Allreduce"},
	{"MPI_Alltoall"},
	{"MPI_Scan"},
	{"MPI_Exscan"},
	{"MPI_Reduce_scatter"},
	{"MPI_Gatherv"},
	{"MPI_Scatterv"},
	{"MPI_Allgatherv"},
	{"MPI_Alltoallv"},
}

// Valid reports whether c names an entry of t.
func (t Table) Valid(c Code) bool {
	return c >= 0 && int(c) < len(t)
}

// Name returns the collective name for c, or "NONE".
func (t Table) Name(c Code) string {
	if !t.Valid(c) {
		return "NONE"
	}
	return t[c].Name
}

// MatchMode selects how callee identifiers are compared with table names.
type MatchMode int

const (
	// MatchExact requires the identifier to equal the table name.
	MatchExact MatchMode = iota

	// MatchPrefix accepts any identifier starting with a table name, so
	// MPI_Barrier_ext counts as MPI_Barrier. Earlier entries win.
	MatchPrefix
)

func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	}
	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// ParseMatchMode parses "exact" or "prefix".
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "exact":
		return MatchExact, nil
	case "prefix":
		return MatchPrefix, nil
	}
	return 0, errors.New("unknown match mode %q (want exact or prefix)", s)
}

// Classifier maps call statements to collective codes.
type Classifier struct {
	Table Table
	Match MatchMode
}

// normalize trims blanks and maps the profiling interface PMPI_x to MPI_x.
func normalize(callee string) string {
	callee = strings.TrimSpace(callee)
	if strings.HasPrefix(callee, "PMPI_") {
		callee = callee[1:]
	}
	return callee
}

// Lookup returns the code of the collective named callee, or None.
func (c Classifier) Lookup(callee string) Code {
	callee = normalize(callee)
	if callee == "" {
		return None
	}
	for i, coll := range c.Table {
		switch c.Match {
		case MatchPrefix:
			if strings.HasPrefix(callee, coll.Name) {
				return Code(i)
			}
		default:
			if callee == coll.Name {
				return Code(i)
			}
		}
	}
	return None
}

// Classify returns the collective code of s, or None for anything but a
// direct call to a collective.
func (c Classifier) Classify(s *ir.Stmt) Code {
	if !s.IsCall() {
		return None
	}
	return c.Lookup(s.Callee)
}
