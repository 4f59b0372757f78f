package ir

import (
	"fmt"

	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// Pos is a source position.
type Pos = syntax.Pos

// Op is a statement opcode.
type Op uint8

const (
	OpInvalid Op = iota
	OpCall       // function call; Callee is empty for calls through pointers
	OpEval       // any other expression statement or initialization
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpCall:    "call",
	OpEval:    "eval",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// Stmt is one statement of a basic block. Calls are flattened out of
// expressions in evaluation order, so a source statement may produce
// several Stmts.
type Stmt struct {
	Op     Op
	Callee string // callee identifier for OpCall
	Pos    Pos
}

// IsCall reports whether s is a call statement.
func (s *Stmt) IsCall() bool { return s.Op == OpCall }

func (s *Stmt) String() string {
	if s.Op == OpCall {
		callee := s.Callee
		if callee == "" {
			callee = "<indirect>"
		}
		return fmt.Sprintf("call %s %s", callee, s.Pos)
	}
	return fmt.Sprintf("%s %s", s.Op, s.Pos)
}
