// Package pragma handles the "#pragma mpicoll check" directive, which
// names the functions the collective checker should analyze.
//
// Accepted forms, at file scope only:
//
//	#pragma mpicoll check name[, name...]
//	#pragma mpicoll check (name[, name...])
package pragma

import (
	"strings"
	"text/scanner"

	"github.com/nikandfor/errors"

	"github.com/you-not-fish/mpicoll/internal/diag"
	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// Namespace is the pragma namespace handled by this package.
const Namespace = "mpicoll"

// Directive is a parsed "#pragma mpicoll check" line.
type Directive struct {
	Names []string // function names, first occurrence order, no duplicates
	Dups  []string // names repeated within the directive
}

// Parse parses the text following "#pragma". It returns nil, nil for
// pragmas of other namespaces.
func Parse(text string) (*Directive, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(text))
	s.Mode = scanner.ScanIdents
	s.Error = func(*scanner.Scanner, string) {}

	if s.Scan() != scanner.Ident || s.TokenText() != Namespace {
		return nil, nil
	}
	if s.Scan() != scanner.Ident || s.TokenText() != "check" {
		return nil, errors.New("missing 'check' after '#pragma mpicoll'")
	}

	tok := s.Scan()
	paren := tok == '('
	if paren {
		tok = s.Scan()
	}

	d := &Directive{}
	seen := make(map[string]bool)
	for {
		if tok != scanner.Ident {
			return nil, errors.New("expected function name, found %s", describe(&s, tok))
		}
		name := s.TokenText()
		if seen[name] {
			d.Dups = append(d.Dups, name)
		} else {
			seen[name] = true
			d.Names = append(d.Names, name)
		}

		tok = s.Scan()
		if tok != ',' {
			break
		}
		tok = s.Scan()
	}

	if paren {
		if tok != ')' {
			return nil, errors.New("missing ')' in '#pragma mpicoll check'")
		}
		tok = s.Scan()
	}
	if tok != scanner.EOF {
		return nil, errors.New("unexpected %s after function names", describe(&s, tok))
	}
	return d, nil
}

// describe names tok for error messages.
func describe(s *scanner.Scanner, tok rune) string {
	switch tok {
	case scanner.EOF:
		return "end of line"
	case scanner.Ident:
		return "'" + s.TokenText() + "'"
	}
	return scanner.TokenString(tok)
}

// Tag is a function name registered by a directive.
type Tag struct {
	Name string
	Pos  syntax.Pos // position of the first directive naming it
}

// Set is the compilation-unit-scoped set of tagged function names.
// Each name can be consumed once.
type Set struct {
	tags     []Tag
	index    map[string]int
	consumed []bool
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add registers name. It reports false if name was already present.
func (s *Set) Add(name string, pos syntax.Pos) bool {
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = len(s.tags)
	s.tags = append(s.tags, Tag{Name: name, Pos: pos})
	s.consumed = append(s.consumed, false)
	return true
}

// Len returns the number of registered names.
func (s *Set) Len() int { return len(s.tags) }

// IsTagged reports whether name is registered and not yet consumed.
func (s *Set) IsTagged(name string) bool {
	i, ok := s.index[name]
	return ok && !s.consumed[i]
}

// Consume marks name as used. It returns true only for the first call
// on a registered name.
func (s *Set) Consume(name string) bool {
	if !s.IsTagged(name) {
		return false
	}
	s.consumed[s.index[name]] = true
	return true
}

// Unconsumed returns the registered names never consumed, in
// registration order.
func (s *Set) Unconsumed() []Tag {
	var list []Tag
	for i, t := range s.tags {
		if !s.consumed[i] {
			list = append(list, t)
		}
	}
	return list
}

// ReportUnconsumed reports a warning for every name never consumed.
func (s *Set) ReportUnconsumed(sink diag.Sink) {
	for _, t := range s.Unconsumed() {
		sink.Report(diag.Diagnostic{
			Pos:      t.Pos,
			Severity: diag.Warning,
			Msg:      "function '" + t.Name + "' named in '#pragma mpicoll check' is not defined",
		})
	}
}

// Collect parses every pragma of file and returns the resulting Set.
// Problems with the directives are reported to sink.
func Collect(file *syntax.File, sink diag.Sink) *Set {
	set := NewSet()
	for _, p := range file.Pragmas {
		d, err := Parse(p.Text)
		if d == nil && err == nil {
			continue
		}

		if p.InFunc {
			report(sink, p.Pos(), diag.Error, "'#pragma mpicoll check' is not allowed inside functions")
			continue
		}
		if err != nil {
			report(sink, p.Pos(), diag.Warning, "ignoring malformed '#pragma mpicoll': "+err.Error())
			continue
		}

		for _, name := range d.Dups {
			report(sink, p.Pos(), diag.Warning, "duplicate function name '"+name+"' in '#pragma mpicoll check'")
		}
		for _, name := range d.Names {
			set.Add(name, p.Pos())
		}
	}
	return set
}

func report(sink diag.Sink, pos syntax.Pos, sev diag.Severity, msg string) {
	sink.Report(diag.Diagnostic{Pos: pos, Severity: sev, Msg: msg})
}
