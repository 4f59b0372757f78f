// Package diag defines the diagnostic records produced by the checker and
// the sinks that collect them.
package diag

import (
	"fmt"
	"io"

	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Info
)

var severityNames = [...]string{
	Error:   "error",
	Warning: "warning",
	Info:    "info",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", s)
}

// Diagnostic is a single message tied to a source location.
type Diagnostic struct {
	Pos      syntax.Pos
	Severity Severity
	Msg      string
}

// String formats d the way C compilers do: "file:line:col: warning: msg".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Msg)
}

// Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// List is a Sink that records diagnostics in arrival order.
type List []Diagnostic

// Report appends d to the list.
func (l *List) Report(d Diagnostic) { *l = append(*l, d) }

// Count returns the number of diagnostics with severity s.
func (l List) Count(s Severity) int {
	n := 0
	for _, d := range l {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Flush delivers the recorded diagnostics to sink in order.
func (l List) Flush(sink Sink) {
	if sink == nil {
		return
	}
	for _, d := range l {
		sink.Report(d)
	}
}

// Printer is a Sink that writes diagnostics to W as they arrive and
// counts them by severity.
type Printer struct {
	W      io.Writer
	counts [len(severityNames)]int
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w}
}

// Report prints d.
func (p *Printer) Report(d Diagnostic) {
	if int(d.Severity) < len(p.counts) {
		p.counts[d.Severity]++
	}
	fmt.Fprintln(p.W, d)
}

// Count returns the number of printed diagnostics with severity s.
func (p *Printer) Count(s Severity) int {
	if int(s) < len(p.counts) {
		return p.counts[s]
	}
	return 0
}
