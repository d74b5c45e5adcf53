// Package annot implements the Annotation Extractor (spec §4.1) and the
// Type-Expression Lowerer (spec §4.2): it walks comment trivia already
// attached to the AST by the non-goal parser, recognises the LuaCATS
// directive grammar, and lowers each directive's type expressions into
// types.Type.
package annot

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// Kind discriminates the recognised directive tags of spec §3
// ("AnnotationRecord. A tagged variant for each recognised directive").
type Kind int

const (
	KindType Kind = iota
	KindParam
	KindReturn
	KindClass
	KindField
	KindAlias
	KindEnum
	KindGeneric
	KindOverload
	KindCast
	KindNodiscard
	KindDeprecated
	KindOperator
	KindVararg
	KindVisibility
	KindDiagnostic
	KindAs // inline --[[@as T]]
)

// Visibility is the payload of a KindVisibility record.
type Visibility int

const (
	VisPublic Visibility = iota
	VisPrivate
	VisProtected
	VisPackage
)

// DiagnosticAction is the payload of a KindDiagnostic record.
type DiagnosticAction int

const (
	DiagDisable DiagnosticAction = iota
	DiagEnable
	DiagPush
	DiagPop
)

// Record is one parsed directive, carrying the exact source span of the
// comment that produced it (spec §4.1 "Contract").
type Record struct {
	Kind Kind
	Span token.Span

	// Type: the lowered type (KindType, KindCast's target, KindAlias's
	// underlying type).
	Type types.Type

	// Name: the declared/annotated identifier, meaning varies by Kind
	// (param name, class name, field name, alias name, enum name,
	// overload has none, cast's target variable, operator's op symbol).
	Name string

	// Optional marks a `name?` parameter/field.
	Optional bool

	// Desc is the free-text tail of @param/@return/@field.
	Desc string

	// Parent is the `: Parent` of a @class directive, empty if absent.
	Parent string
	// Exact is the `(exact)` modifier of a @class directive.
	Exact bool

	// GenericVars is the payload of a KindGeneric record.
	GenericVars []string

	// OverloadSig is the payload of a KindOverload record.
	OverloadSig types.Function

	// CastOp is "+", "-", "-?", or "" for a plain replace, for KindCast.
	CastOp string

	// OperatorFunc is the function signature for a KindOperator record.
	OperatorFunc types.Function

	Visibility Visibility
	DiagAction DiagnosticAction
	DiagCodes  []string

	// DeprecatedMsg is the free-text message of @deprecated.
	DeprecatedMsg string
}

// Block is one maximal run of consecutive annotation comments (spec
// §4.1 "annotation block"), together with the statement (or nil, for a
// top-level/file-attached block) it was associated with.
type Block struct {
	Records   []Record
	Statement ast.Statement // nil if attached to the file itself
	Span      token.Span
}

// Error is a directive-parse failure; it never halts extraction of
// subsequent directives (spec §4.1 "Contract"). Extract sets Span to the
// whole annotation comment that failed, not to the offending token
// within it; errors returned by Lowerer.Lower carry no Span.
type Error struct {
	Span    token.Span
	Message string
}
