// Package binder implements the Binder of spec §4.4: it walks a parsed
// chunk producing a per-function lexical symbol table and a
// block-structured control-flow representation carrying branch and
// loop edges, sufficient for the checker's narrowing and flow-join
// logic without a full control-flow graph.
package binder

import (
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// Kind discriminates why a Symbol exists, mirroring the teacher's
// symbols.SymbolKind.
type Kind int

const (
	KindLocal Kind = iota
	KindParam
	KindVararg
	KindGlobal
	KindUpvalue
)

// Symbol is (name, declared_type, inferred_type, scope, span) of spec
// §3 "Symbol". DeclaredType is nil when the binding has no @type/@param
// annotation; InferredType is the declaration-site type the binder
// assigns and is not updated by the checker — TypeEnvironment snapshots
// carry the flow-sensitive view, this field is only the baseline.
type Symbol struct {
	Name         string
	DeclaredType types.Type
	InferredType types.Type
	Kind         Kind
	ScopeID      int
	Span         token.Span
}

// GetType returns DeclaredType if present, else InferredType — the
// baseline type a fresh TypeEnvironment entry starts from.
func (s *Symbol) GetType() types.Type {
	if s.DeclaredType != nil {
		return s.DeclaredType
	}
	return s.InferredType
}
