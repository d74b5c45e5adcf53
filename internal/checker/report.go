// Package checker implements the Type Checker / Evaluator of spec
// §4.5: given the Binder's scope/block tree and the Type Registry, it
// infers the type of every expression, checks assignments, returns,
// calls, and field writes against expected types, narrows types at
// branches and loop joins, and emits diagnostics with precise spans.
package checker

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// TypeInfo is the type last inferred for one expression node, the unit
// hover and inlay-hint results are built from (spec §4.5 invariant 1:
// "every expression node seen by the checker is assigned exactly one
// Type").
type TypeInfo struct {
	Node ast.Node
	Type types.Type
	Span token.Span
}

// InlayHint is a synthetic type annotation for a `local` declaration
// that has no explicit @type (spec §4.5 "inlay_hints").
type InlayHint struct {
	Span token.Span // span of the whole `local` statement that declares the name
	Text string      // rendered as ": "+Text by the LSP front-end
}

// CheckReport is the complete output of one `check(file)` call (spec
// §4.5 "Operation surface").
type CheckReport struct {
	File        string
	Diagnostics []*diagnostics.DiagnosticError
	TypeInfos   []TypeInfo
	InlayHints  []InlayHint

	// byNode backs TypeOf below without forcing every caller to
	// linear-scan TypeInfos.
	byNode map[ast.Node]types.Type
}

// HoverInfo is the payload returned by hover(position).
type HoverInfo struct {
	Type types.Type
	Span token.Span
}

// Hover returns the type last inferred for the expression or symbol
// covering pos, the innermost (smallest-span) match winning when
// several nest (spec §4.5 "hover(position)").
func (r *CheckReport) Hover(pos token.Position) (*HoverInfo, bool) {
	var best *TypeInfo
	for i := range r.TypeInfos {
		ti := &r.TypeInfos[i]
		if !ti.Span.Contains(pos) {
			continue
		}
		if best == nil || spanLen(ti.Span) < spanLen(best.Span) {
			best = ti
		}
	}
	if best == nil {
		return nil, false
	}
	return &HoverInfo{Type: best.Type, Span: best.Span}, true
}

func spanLen(s token.Span) int { return s.End.Offset - s.Start.Offset }

// TypeOf looks up the inferred type of a specific node, the entry
// point cmd/luacheck and tests use instead of scanning TypeInfos.
func (r *CheckReport) TypeOf(n ast.Node) (types.Type, bool) {
	t, ok := r.byNode[n]
	return t, ok
}
