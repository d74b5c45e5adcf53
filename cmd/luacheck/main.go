package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/checker"
	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/registry"
)

// main wires Extractor -> Registry -> Binder -> Checker over the
// embedded demo chunk and reports the result, proving the pipeline
// assembled in internal/ is usable end to end. File discovery and
// `.gitignore` honouring are explicitly out of scope for this example
// front-end (spec §1 non-goals carry over to every collaborator built
// on top of the core).
func main() {
	opts := config.Default()
	if path := configPathFromArgs(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "luacheck: reading %s: %s\n", path, err)
			os.Exit(1)
		}
		loaded, err := config.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "luacheck: %s\n", err)
			os.Exit(1)
		}
		opts = loaded
	}
	config.IsLSPMode = false

	chunk := demoChunk()

	extractor := annot.NewExtractor(opts.Syntax)
	blocks, extractErrs := extractor.Extract(chunk)

	ann := map[ast.Statement][]annot.Record{}
	for _, b := range blocks {
		if b.Statement != nil {
			ann[b.Statement] = b.Records
		}
	}

	fileID := registry.NewFileID(chunk.File)
	builder := registry.NewBuilder()
	builder.CollectFile(fileID, annot.TopLevelBlocks(chunk, blocks))
	reg := builder.Resolve()

	chk := checker.New(reg, opts)
	start := time.Now()
	report := chk.Check(context.Background(), chunk.File, chunk, ann)
	elapsed := time.Since(start)

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	fmt.Printf("checking %s\n\n", chunk.File)

	var diags []*diagnostics.DiagnosticError
	diags = append(diags, reg.Diagnostics...)
	diags = append(diags, report.Diagnostics...)
	for _, e := range extractErrs {
		diags = append(diags, diagnostics.New(diagnostics.InvalidAnnotation, e.Span, chunk.File, e.Message))
	}

	for _, d := range diags {
		printDiagnostic(d, color)
	}

	fmt.Println()
	fmt.Printf("%s diagnostic(s) in %s microseconds\n",
		humanize.Comma(int64(len(diags))),
		humanize.Comma(elapsed.Microseconds()))

	if hasError(diags) {
		os.Exit(1)
	}
}

// configPathFromArgs recognises exactly one flag, `-c <path>`, per the
// "kept minimal" front-end scope; anything else is ignored rather than
// rejected, since argument parsing itself is not a core concern.
func configPathFromArgs() string {
	args := os.Args[1:]
	for i, a := range args {
		if a == "-c" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasError(diags []*diagnostics.DiagnosticError) bool {
	for _, d := range diags {
		if d.Severity == diagnostics.Error {
			return true
		}
	}
	return false
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiReset  = "\x1b[0m"
)

func printDiagnostic(d *diagnostics.DiagnosticError, color bool) {
	tag := severityTag(d.Severity)
	if !color {
		fmt.Printf("%s %s: %s (%s)\n", d.Span, tag, d.Message, d.Code)
		return
	}
	fmt.Printf("%s %s%s%s: %s (%s)\n", d.Span, severityColor(d.Severity), tag, ansiReset, d.Message, d.Code)
}

func severityTag(s diagnostics.Severity) string {
	switch s {
	case diagnostics.Error:
		return "error"
	case diagnostics.Warning:
		return "warning"
	case diagnostics.Information:
		return "info"
	default:
		return "hint"
	}
}

func severityColor(s diagnostics.Severity) string {
	switch s {
	case diagnostics.Error:
		return ansiRed
	case diagnostics.Warning:
		return ansiYellow
	default:
		return ansiBlue
	}
}
