package binder

import (
	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/types"
)

// Binder walks a parsed chunk, declaring symbols into a scope tree and
// building the parallel BlockInfo tree the checker drives its
// flow-sensitive walk from (spec §4.4).
type Binder struct {
	nextScopeID int

	// ScopeOf maps every statement to the scope it executes in, so the
	// checker can resolve identifiers without re-deriving scope nesting.
	ScopeOf map[ast.Statement]*Scope

	// Annotations maps a statement to the annotation records the
	// Extractor attached to it (spec §4.1), consulted for @type/@param/
	// @return declared types at binding time.
	Annotations map[ast.Statement][]annot.Record

	// Functions maps every bound function literal to its own scope and
	// body block, so the checker can descend into nested function
	// bodies after finishing the enclosing one.
	Functions map[*ast.FunctionExpr]*FunctionInfo

	Global *Scope
}

// FunctionInfo is the scope and block-tree root produced for one
// function literal.
type FunctionInfo struct {
	Scope *Scope
	Body  *BlockInfo
	Recs  []annot.Record
}

// New creates a Binder. annotations may be nil if no annotation data is
// available (declared types are then left nil, for the checker to
// infer freely).
func New(annotations map[ast.Statement][]annot.Record) *Binder {
	b := &Binder{
		ScopeOf:     map[ast.Statement]*Scope{},
		Annotations: annotations,
		Functions:   map[*ast.FunctionExpr]*FunctionInfo{},
	}
	b.Global = b.newScope(ScopeGlobal, nil)
	return b
}

func (b *Binder) newScope(kind ScopeKind, outer *Scope) *Scope {
	s := newScope(b.nextScopeID, kind, outer)
	b.nextScopeID++
	return s
}

// BindChunk binds the file's top-level statements into a function-like
// scope nested directly under Global (a chunk is itself a vararg
// function in Lua), returning the resulting block tree.
func (b *Binder) BindChunk(chunk *ast.Chunk) *BlockInfo {
	fileScope := b.newScope(ScopeFunction, b.Global)
	return b.bindBlock(chunk.Body, fileScope, BlockSequential)
}

func (b *Binder) recordsFor(stmt ast.Statement) []annot.Record {
	if b.Annotations == nil {
		return nil
	}
	return b.Annotations[stmt]
}

// declaredTypeFromRecords returns the Type of the first KindType record
// in recs, if any — the @type annotation attached to a local
// declaration. Failing that, a @class record on the same block declares
// the local an instance of that class (the common `---@class Foo\nlocal
// t = {}` idiom), surfaced as an Alias the registry resolves to the
// class itself.
func declaredTypeFromRecords(recs []annot.Record) types.Type {
	for _, r := range recs {
		if r.Kind == annot.KindType {
			return r.Type
		}
	}
	for _, r := range recs {
		if r.Kind == annot.KindClass {
			return types.Alias{Name: r.Name}
		}
	}
	return nil
}

func (b *Binder) bindBlock(block *ast.Block, scope *Scope, kind BlockKind) *BlockInfo {
	info := &BlockInfo{Block: block, Scope: scope, Kind: kind}
	for _, stmt := range block.Statements {
		b.ScopeOf[stmt] = scope
		b.bindStatement(stmt, scope, info)
	}
	return info
}

func (b *Binder) bindStatement(stmt ast.Statement, scope *Scope, parent *BlockInfo) {
	switch s := stmt.(type) {
	case *ast.LocalStmt:
		// Initializer expressions are bound in the outer scope, before the
		// new names are defined — a `local x = x` initializer refers to an
		// outer x, matching Lua scoping.
		b.bindNested(scope, s.Exprs...)
		declared := declaredTypeFromRecords(b.recordsFor(stmt))
		for _, name := range s.Names {
			scope.Define(&Symbol{Name: name, Kind: KindLocal, DeclaredType: declared, InferredType: types.Unknown, Span: s.Span()})
		}

	case *ast.LocalFunctionDeclStmt:
		// Visible inside its own body for recursion (spec §4.4).
		sym := &Symbol{Name: s.Name, Kind: KindLocal, InferredType: types.Unknown, Span: s.Span()}
		scope.Define(sym)
		b.bindFunction(s.Fn, scope, b.recordsFor(stmt))

	case *ast.FunctionDeclStmt:
		b.bindFunction(s.Fn, scope, b.recordsFor(stmt))

	case *ast.AssignStmt:
		// Assignment targets that are bare identifiers with no existing
		// binding become implicit globals (spec §4.4 "A name resolved
		// without a matching local becomes a global symbol").
		for _, target := range s.Targets {
			if id, ok := target.(*ast.Identifier); ok {
				b.Resolve(scope, id.Name)
			}
		}
		b.bindNested(scope, s.Exprs...)

	case *ast.CallStmt:
		b.bindNested(scope, s.Call)

	case *ast.ReturnStmt:
		b.bindNested(scope, s.Exprs...)

	case *ast.DoStmt:
		child := b.newScope(ScopeBlock, scope)
		childInfo := b.bindBlock(s.Body, child, BlockSequential)
		parent.Branches = append(parent.Branches, childInfo)

	case *ast.IfStmt:
		for _, clause := range s.Clauses {
			b.bindNested(scope, clause.Condition)
			child := b.newScope(ScopeBlock, scope)
			childInfo := b.bindBlock(clause.Body, child, BlockBranch)
			parent.Branches = append(parent.Branches, childInfo)
		}
		if s.Else != nil {
			child := b.newScope(ScopeBlock, scope)
			childInfo := b.bindBlock(s.Else, child, BlockBranch)
			parent.Branches = append(parent.Branches, childInfo)
		}

	case *ast.WhileStmt:
		b.bindNested(scope, s.Condition)
		child := b.newScope(ScopeBlock, scope)
		childInfo := b.bindBlock(s.Body, child, BlockLoopBody)
		childInfo.IsLoop = true
		parent.Loop = childInfo
		parent.Branches = append(parent.Branches, childInfo)

	case *ast.RepeatStmt:
		// until-condition is scoped inside the body per Lua rules; the
		// checker evaluates s.Condition using childInfo.Scope.
		child := b.newScope(ScopeBlock, scope)
		childInfo := b.bindBlock(s.Body, child, BlockLoopBody)
		b.bindNested(child, s.Condition)
		childInfo.IsLoop = true
		parent.Loop = childInfo
		parent.Branches = append(parent.Branches, childInfo)

	case *ast.NumericForStmt:
		b.bindNested(scope, s.Start, s.Stop, s.Step)
		child := b.newScope(ScopeBlock, scope)
		child.Define(&Symbol{Name: s.Var, Kind: KindLocal, InferredType: types.Number, Span: s.Span()})
		childInfo := b.bindBlock(s.Body, child, BlockLoopBody)
		childInfo.IsLoop = true
		parent.Loop = childInfo
		parent.Branches = append(parent.Branches, childInfo)

	case *ast.GenericForStmt:
		b.bindNested(scope, s.Exprs...)
		child := b.newScope(ScopeBlock, scope)
		for _, name := range s.Names {
			child.Define(&Symbol{Name: name, Kind: KindLocal, InferredType: types.Unknown, Span: s.Span()})
		}
		childInfo := b.bindBlock(s.Body, child, BlockLoopBody)
		childInfo.IsLoop = true
		parent.Loop = childInfo
		parent.Branches = append(parent.Branches, childInfo)

	default:
		// BreakStmt, GotoStmt, LabelStmt carry no bindings of their own.
	}
}

// bindNested finds every function literal reachable from exprs without
// crossing into another literal's own body (that literal's statements
// make their own bindNested calls once bindFunction walks its body),
// and binds each one — the general case of "function expr anywhere a
// value is expected", not just the two function-statement forms.
func (b *Binder) bindNested(scope *Scope, exprs ...ast.Expression) {
	for _, e := range exprs {
		b.bindNestedExpr(scope, e)
	}
}

func (b *Binder) bindNestedExpr(scope *Scope, e ast.Expression) {
	switch n := e.(type) {
	case nil:
	case *ast.FunctionExpr:
		b.bindFunction(n, scope, nil)
	case *ast.BinaryExpr:
		b.bindNestedExpr(scope, n.Left)
		b.bindNestedExpr(scope, n.Right)
	case *ast.UnaryExpr:
		b.bindNestedExpr(scope, n.Operand)
	case *ast.IndexExpr:
		b.bindNestedExpr(scope, n.Target)
		b.bindNestedExpr(scope, n.Key)
	case *ast.FieldExpr:
		b.bindNestedExpr(scope, n.Target)
	case *ast.CallExpr:
		b.bindNestedExpr(scope, n.Callee)
		for _, a := range n.Args {
			b.bindNestedExpr(scope, a)
		}
	case *ast.MethodCallExpr:
		b.bindNestedExpr(scope, n.Receiver)
		for _, a := range n.Args {
			b.bindNestedExpr(scope, a)
		}
	case *ast.TableConstructorExpr:
		for _, f := range n.Fields {
			b.bindNestedExpr(scope, f.Key)
			b.bindNestedExpr(scope, f.Value)
		}
	case *ast.ParenExpr:
		b.bindNestedExpr(scope, n.Inner)
	case *ast.CastExpr:
		b.bindNestedExpr(scope, n.Inner)
	}
}

// bindFunction opens a new function scope, declares parameters (and an
// implicit `self` for method sugar, handled by the caller attaching it
// to Params already), and recurses into the body.
func (b *Binder) bindFunction(fn *ast.FunctionExpr, outer *Scope, recs []annot.Record) {
	fnScope := b.newScope(ScopeFunction, outer)
	paramTypes := paramTypesFromRecords(recs)
	for _, p := range fn.Params {
		sym := &Symbol{Name: p.Name, Kind: KindParam, InferredType: types.Unknown, Span: p.NameSpan}
		if t, ok := paramTypes[p.Name]; ok {
			sym.DeclaredType = t
		}
		fnScope.Define(sym)
	}
	if fn.HasVararg {
		fnScope.Define(&Symbol{Name: "...", Kind: KindVararg, InferredType: types.Unknown, Span: fn.Span()})
	}
	body := b.bindBlock(fn.Body, fnScope, BlockSequential)
	b.Functions[fn] = &FunctionInfo{Scope: fnScope, Body: body, Recs: recs}
}

func paramTypesFromRecords(recs []annot.Record) map[string]types.Type {
	out := map[string]types.Type{}
	for _, r := range recs {
		if r.Kind == annot.KindParam {
			t := r.Type
			if r.Optional {
				t = types.Optional(t)
			}
			out[r.Name] = t
		}
	}
	return out
}

// Resolve looks up name starting from scope, falling back to defining
// it as a fresh global — the single entry point the checker should use
// for every Identifier it type-checks (spec §4.4 "falls back to a
// global symbol").
func (b *Binder) Resolve(scope *Scope, name string) *Symbol {
	if sym, ok := scope.Find(name); ok {
		return sym
	}
	sym := &Symbol{Name: name, Kind: KindGlobal, InferredType: types.Unknown}
	b.Global.Define(sym)
	return sym
}
