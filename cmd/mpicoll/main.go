// Package main implements the mpicoll checker entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"

	"github.com/you-not-fish/mpicoll/internal/cfgviz"
	"github.com/you-not-fish/mpicoll/internal/diag"
	"github.com/you-not-fish/mpicoll/internal/ir"
	"github.com/you-not-fish/mpicoll/internal/mpicoll"
	"github.com/you-not-fish/mpicoll/internal/passes"
	"github.com/you-not-fish/mpicoll/internal/pragma"
	"github.com/you-not-fish/mpicoll/internal/syntax"
)

// Checker flags
var (
	checkAll     = flag.Bool("all", false, "Check every function, ignoring pragmas")
	match        = flag.String("match", "exact", "Collective name matching (exact or prefix)")
	closure      = flag.String("closure", "single", "Frontier iteration (single or fixpoint)")
	emitTokens   = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST      = flag.Bool("emit-ast", false, "Output AST")
	emitCFG      = flag.Bool("emit-cfg", false, "Output the CFG of every function")
	emitAnalysis = flag.Bool("emit-analysis", false, "Output ranks, groups and frontiers of checked functions")
	dotSuffix    = flag.String("dot", "", "Write Graphviz dumps of checked functions with this file suffix")
	dotDir       = flag.String("dot-dir", ".", "Directory for Graphviz dumps")
	verify       = flag.Bool("verify", false, "Verify the CFG and analysis invariants after each stage")
	dumpFunc     = flag.String("dump-func", "", "Only dump specific function")
	dumpBefore   = flag.String("dump-before", "", "Dump CFG before stage (name or \"*\")")
	dumpAfter    = flag.String("dump-after", "", "Dump CFG after stage (name or \"*\")")
	verbose      = flag.String("v", "", "Trace topics (comma separated, e.g. mpicoll,passes,mpicoll_ranks)")
	version      = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "mpicoll %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: mpicoll [options] <file.c>...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("mpicoll version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: mpicoll [options] <file.c>...")
		os.Exit(1)
	}

	// Handle -emit-tokens
	if *emitTokens {
		os.Exit(runEach(args, runEmitTokens))
	}

	// Handle -emit-ast
	if *emitAST {
		os.Exit(runEach(args, runEmitAST))
	}

	cfg, err := configFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	os.Exit(runFiles(args, cfg))
}

// runFiles checks every file. Tracing is only set up when topics are
// given with -v.
func runFiles(files []string, cfg config) int {
	ctx := context.Background()
	if cfg.opts.verbose != "" {
		tlog.SetVerbosity(cfg.opts.verbose)
		tr := tlog.Start("mpicoll", "files", len(files))
		defer tr.Finish()
		ctx = tlog.ContextWithSpan(ctx, tr)
	}

	return runEach(files, func(filename string) int {
		return runCheck(ctx, filename, cfg)
	})
}

// options collects the driver settings that are not part of the core
// configuration.
type options struct {
	all          bool
	emitCFG      bool
	emitAnalysis bool
	dumpFunc     string
	dotSuffix    string
	dotDir       string
	verbose      string
}

// config is the complete driver configuration.
type config struct {
	check mpicoll.Config
	opts  options
}

// configFromFlags builds the configuration from the command line flags.
func configFromFlags() (config, error) {
	m, err := mpicoll.ParseMatchMode(*match)
	if err != nil {
		return config{}, err
	}
	c, err := mpicoll.ParseClosureMode(*closure)
	if err != nil {
		return config{}, err
	}

	return config{
		check: mpicoll.Config{
			Match:   m,
			Closure: c,
			Verify:  *verify,
			Passes: passes.Config{
				DumpBefore: *dumpBefore,
				DumpAfter:  *dumpAfter,
				DumpFunc:   *dumpFunc,
				Verify:     *verify,
				Out:        os.Stdout,
			},
		},
		opts: options{
			all:          *checkAll,
			emitCFG:      *emitCFG,
			emitAnalysis: *emitAnalysis,
			dumpFunc:     *dumpFunc,
			dotSuffix:    *dotSuffix,
			dotDir:       *dotDir,
			verbose:      *verbose,
		},
	}, nil
}

// runEach runs fn on every file and returns the largest exit code.
func runEach(files []string, fn func(filename string) int) int {
	code := 0
	for _, filename := range files {
		if c := fn(filename); c > code {
			code = c
		}
	}
	return code
}

// runCheck checks the tagged functions of one translation unit and prints
// diagnostics to stderr. It returns 1 on read or parse errors, CFG build
// errors and ERROR diagnostics.
func runCheck(ctx context.Context, filename string, cfg config) (code int) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "mpicoll: translation unit", "file", filename)
	defer tr.Finish("code", &code)

	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var parseErrs []string
	errh := func(pos syntax.Pos, msg string) {
		parseErrs = append(parseErrs, fmt.Sprintf("%s: %s", pos, msg))
	}

	p := syntax.NewParser(filename, f, errh)
	file := p.Parse()

	// Print parse errors
	for _, e := range parseErrs {
		fmt.Fprintln(os.Stderr, e)
	}
	if len(parseErrs) > 0 {
		return 1
	}

	printer := diag.NewPrinter(os.Stderr)
	tagged := pragma.Collect(file, printer)

	funcs, buildErrs := ir.BuildFile(file)
	for _, err := range buildErrs {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	for _, fn := range funcs {
		if cfg.opts.emitCFG && (cfg.opts.dumpFunc == "" || cfg.opts.dumpFunc == fn.Name) {
			ir.Fprint(os.Stdout, fn)
		}

		if !tagged.Consume(fn.Name) && !cfg.opts.all {
			continue
		}

		r, err := mpicoll.Check(ctx, fn, cfg.check, printer)
		if err != nil {
			printer.Report(diag.Diagnostic{
				Pos:      fn.Pos,
				Severity: diag.Warning,
				Msg:      fmt.Sprintf("mpicoll: skipping %s: %v", fn.Name, err),
			})
			continue
		}

		if cfg.opts.emitAnalysis {
			mpicoll.Fprint(os.Stdout, r, cfg.check.Classifier().Table)
		}
		if cfg.opts.dotSuffix != "" {
			if err := writeDot(r, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				code = 1
			}
		}
	}

	tagged.ReportUnconsumed(printer)

	tr.V("mpicoll").Printw("translation unit done", "funcs", len(funcs),
		"errors", printer.Count(diag.Error), "warnings", printer.Count(diag.Warning))

	if len(buildErrs) > 0 || printer.Count(diag.Error) > 0 {
		code = 1
	}
	return code
}

// writeDot writes the CFG and CFG' of a checked function as Graphviz files.
func writeDot(r *mpicoll.Result, cfg config) error {
	t := cfg.check.Classifier().Table
	label := func(b *ir.Block) string {
		if !r.Tags.Has(b.ID) {
			return ""
		}
		return t.Name(r.Tags[b.ID])
	}
	acyclic := func(b *ir.Block, i int) bool {
		return r.Acyclic.Has(b.ID, b.Succs[i].ID)
	}

	dumps := []struct {
		suffix string
		keep   cfgviz.EdgeFilter
	}{
		{cfg.opts.dotSuffix, nil},
		{cfg.opts.dotSuffix + "_acyclic", acyclic},
	}
	for _, d := range dumps {
		name := filepath.Join(cfg.opts.dotDir, cfgviz.Filename(r.Func, d.suffix))
		if err := writeFile(name, func(w io.Writer) error {
			return cfgviz.Write(w, r.Func, label, d.keep)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create dot file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close %v", name)
		}
	}()

	return write(f)
}

// runEmitAST parses the input file and outputs the AST.
func runEmitAST(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errs []string
	errh := func(pos syntax.Pos, msg string) {
		errs = append(errs, fmt.Sprintf("%s: %s", pos, msg))
	}

	p := syntax.NewParser(filename, f, errh)
	ast := p.Parse()

	// Print errors first
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}

	syntax.Fprint(os.Stdout, ast)

	if len(errs) > 0 {
		return 1
	}
	return 0
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s:%d:%d: %s", filename, line, col, msg))
	}

	s := syntax.NewScanner(filename, f, errh)

	// Print header
	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))

	for {
		s.Next()
		tok := s.Token()

		fmt.Printf("%-20s %-12s %s\n", s.Pos(), tok, formatLiteral(s.Literal()))

		if tok.IsEOF() {
			break
		}
	}

	// Print any errors
	if len(errs) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}

	return 0
}

// formatLiteral formats a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return "\"\""
	}

	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}
