// Package diagnostics implements the closed diagnostic taxonomy of
// spec §7 and the DiagnosticError carrier, mirroring the teacher's
// internal/diagnostics.DiagnosticError (a span-carrying error consumed
// by cmd/lsp/diagnostics.go to build LSP `Diagnostic` values).
package diagnostics

import (
	"fmt"

	"github.com/takeshiD/typua/internal/token"
)

// Code is one member of the closed taxonomy in spec §7.
type Code string

const (
	AssignTypeMismatch  Code = "assign-type-mismatch"
	ParamTypeMismatch   Code = "param-type-mismatch"
	ReturnTypeMismatch  Code = "return-type-mismatch"
	FieldTypeMismatch   Code = "field-type-mismatch"
	CastTypeMismatch    Code = "cast-type-mismatch"
	UnknownName         Code = "unknown-name"
	OverloadNoMatch     Code = "overload-no-match"
	OverloadAmbiguous   Code = "overload-ambiguous"
	DuplicateDecl       Code = "duplicate-declaration"
	CyclicAlias         Code = "cyclic-alias"
	ArityMismatch       Code = "arity-mismatch"
	BudgetExceeded       Code = "typeck-budget-exceeded"
	InvalidAnnotation    Code = "invalid-annotation"
	ParseForwarded       Code = "parse-error"
)

// Severity matches the LSP-compatible set named in spec §6.
type Severity int

const (
	Error Severity = iota
	Warning
	Information
	Hint
)

// Related is one secondary span attached to a DiagnosticError, e.g. the
// other declaration in a `duplicate-declaration` pair.
type Related struct {
	Span    token.Span
	Message string
}

// DiagnosticError is both an error and the wire-format diagnostic of
// spec §6 — the core never needs a second "report type", the way the
// teacher's DiagnosticError doubles as the Go error returned from
// analysis and the payload handed to cmd/lsp/diagnostics.go.
type DiagnosticError struct {
	Code     Code
	Severity Severity
	Span     token.Span
	File     string
	Message  string
	Related  []Related
}

func (d *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", d.Span, d.Message, d.Code)
}

// New builds an Error-severity DiagnosticError.
func New(code Code, span token.Span, file, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: Error, Span: span, File: file, Message: message}
}

// FromParseError forwards a collaborating parser's failure unmodified,
// per spec §7 ("Parsing failures reported by the collaborating parser
// are forwarded unmodified").
func FromParseError(span token.Span, file, message string) *DiagnosticError {
	return New(ParseForwarded, span, file, message)
}

// key is the "line:col:code" deduplication key used by the checker's
// error set, matching analyzer.walker.errorSet in the teacher.
func (d *DiagnosticError) key() string {
	return fmt.Sprintf("%d:%d:%s", d.Span.Start.Line, d.Span.Start.Column, d.Code)
}

// Key exposes the dedup key for callers collecting diagnostics from
// multiple passes.
func (d *DiagnosticError) Key() string { return d.key() }
