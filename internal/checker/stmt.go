package checker

import (
	"fmt"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// checkBlock walks info's statements in order, applying any
// @diagnostic directives attached to each one before it is checked
// (spec §4.1 "Suppression"), threading the TypeEnvironment forward
// sequentially and consuming info.Branches in the same order the
// Binder appended them.
func (c *Checker) checkBlock(info *binder.BlockInfo, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	branchIdx := 0
	cur := env
	for _, stmt := range info.Block.Statements {
		if c.checkBudget() {
			break
		}
		c.applyDirectives(stmt)
		cur = c.checkStatement(stmt, info.Scope, cur, info.Branches, &branchIdx)
	}
	return cur
}

// checkBudget reports whether the check budget has expired, emitting
// typeck-budget-exceeded exactly once at the moment it first expires
// (spec §5 "cooperative cancellation").
func (c *Checker) checkBudget() bool {
	wasExceeded := c.bud.exceeded
	expired := c.bud.expired()
	if expired && !wasExceeded {
		c.addDiag(diagnostics.BudgetExceeded, token.Zero, "check budget exceeded")
	}
	return expired
}

func (c *Checker) checkStatement(stmt ast.Statement, scope *binder.Scope, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	switch s := stmt.(type) {
	case *ast.LocalStmt:
		return c.checkLocalStmt(s, scope, env)

	case *ast.AssignStmt:
		return c.checkAssignStmt(s, scope, env)

	case *ast.CallStmt:
		c.checkExprMulti(s.Call, scope, env)
		return env

	case *ast.DoStmt:
		child := branches[*idx]
		*idx++
		return c.checkBlock(child, env)

	case *ast.IfStmt:
		return c.checkIfStmt(s, scope, env, branches, idx)

	case *ast.WhileStmt:
		return c.checkWhileStmt(s, scope, env, branches, idx)

	case *ast.RepeatStmt:
		return c.checkRepeatStmt(s, env, branches, idx)

	case *ast.NumericForStmt:
		return c.checkNumericForStmt(s, scope, env, branches, idx)

	case *ast.GenericForStmt:
		return c.checkGenericForStmt(s, scope, env, branches, idx)

	case *ast.FunctionDeclStmt:
		return c.checkFunctionDeclStmt(s, scope, env)

	case *ast.LocalFunctionDeclStmt:
		return c.checkLocalFunctionDeclStmt(s, scope, env)

	case *ast.ReturnStmt:
		return c.checkReturnStmt(s, scope, env)

	case *ast.BreakStmt, *ast.GotoStmt, *ast.LabelStmt:
		return env
	}
	return env
}

func (c *Checker) checkLocalStmt(s *ast.LocalStmt, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	expected := make([]types.Type, len(s.Names))
	for i, name := range s.Names {
		if sym, ok := scope.FindLocal(name); ok {
			expected[i] = sym.DeclaredType
		}
	}
	vals, spans := c.exprListTypes(s.Exprs, scope, env, expected)

	for i, name := range s.Names {
		sym, _ := scope.FindLocal(name)
		var val types.Type = types.Nil
		if i < len(vals) {
			val = vals[i]
		}
		if sym.DeclaredType != nil {
			if !c.subtype(val, sym.DeclaredType) {
				span := s.Span()
				if i < len(spans) {
					span = spans[i]
				}
				c.addDiag(diagnostics.AssignTypeMismatch, span,
					fmt.Sprintf("cannot assign %s to %s (declared %s)", val.String(), name, sym.DeclaredType.String()))
			}
			env = env.With(sym, sym.DeclaredType)
		} else {
			c.hints = append(c.hints, InlayHint{Span: s.Span(), Text: val.String()})
			env = env.With(sym, val)
		}
	}
	return env
}

func (c *Checker) checkAssignStmt(s *ast.AssignStmt, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	vals, spans := c.exprListTypes(s.Exprs, scope, env, nil)

	for i, target := range s.Targets {
		var val types.Type = types.Nil
		if i < len(vals) {
			val = vals[i]
		}
		span := target.Span()
		if i < len(spans) {
			span = spans[i]
		}
		env = c.checkAssignTarget(target, val, span, scope, env)
	}
	return env
}

func (c *Checker) checkAssignTarget(target ast.Expression, val types.Type, valSpan token.Span, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	switch t := target.(type) {
	case *ast.Identifier:
		sym := c.b.Resolve(scope, t.Name)
		if sym.DeclaredType != nil {
			if !c.subtype(val, sym.DeclaredType) {
				c.addDiag(diagnostics.AssignTypeMismatch, valSpan,
					fmt.Sprintf("cannot assign %s to %s (declared %s)", val.String(), t.Name, sym.DeclaredType.String()))
			}
			return env.With(sym, sym.DeclaredType)
		}
		return env.With(sym, val)

	case *ast.FieldExpr:
		targetT := c.checkExpr(t.Target, scope, env)
		rt := c.resolveTypeAt(targetT, t.NameSpan)
		switch rv := rt.(type) {
		case types.Record:
			if ft, ok := rv.Get(t.Name); ok {
				if !c.subtype(val, ft) {
					c.addDiag(diagnostics.FieldTypeMismatch, t.NameSpan,
						fmt.Sprintf("cannot assign %s to field %s (expected %s)", val.String(), t.Name, ft.String()))
				}
			} else if rv.Sealed {
				c.addDiag(diagnostics.FieldTypeMismatch, t.NameSpan, "unknown field: "+t.Name)
			}
		case *types.Class:
			if ft, ok := classFieldLookup(rv, t.Name); ok {
				if !c.subtype(val, ft) {
					c.addDiag(diagnostics.FieldTypeMismatch, t.NameSpan,
						fmt.Sprintf("cannot assign %s to field %s (expected %s)", val.String(), t.Name, ft.String()))
				}
			} else if rv.Sealed {
				c.addDiag(diagnostics.FieldTypeMismatch, t.NameSpan, "unknown field: "+t.Name+" on "+rv.Name)
			}
		case types.Map:
			if !c.subtype(val, rv.Value) {
				c.addDiag(diagnostics.FieldTypeMismatch, t.NameSpan,
					fmt.Sprintf("cannot assign %s to map value (expected %s)", val.String(), rv.Value.String()))
			}
		}
		return env

	case *ast.IndexExpr:
		targetT := c.checkExpr(t.Target, scope, env)
		c.checkExpr(t.Key, scope, env)
		rt := c.resolveTypeAt(targetT, t.Span())
		switch rv := rt.(type) {
		case types.Array:
			if !c.subtype(val, rv.Elem) {
				c.addDiag(diagnostics.AssignTypeMismatch, valSpan,
					fmt.Sprintf("cannot assign %s to array element (expected %s)", val.String(), rv.Elem.String()))
			}
		case types.Map:
			if !c.subtype(val, rv.Value) {
				c.addDiag(diagnostics.AssignTypeMismatch, valSpan,
					fmt.Sprintf("cannot assign %s to map value (expected %s)", val.String(), rv.Value.String()))
			}
		}
		return env
	}
	return env
}

func (c *Checker) checkIfStmt(s *ast.IfStmt, scope *binder.Scope, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	var outs []*binder.TypeEnvironment
	cur := env
	for _, clause := range s.Clauses {
		thenEnv, elseEnv := c.narrowCond(clause.Condition, scope, cur)
		child := branches[*idx]
		*idx++
		outs = append(outs, c.checkBlock(child, thenEnv))
		cur = elseEnv
	}
	if s.Else != nil {
		child := branches[*idx]
		*idx++
		outs = append(outs, c.checkBlock(child, cur))
	} else {
		outs = append(outs, cur)
	}
	return binder.Join(env, outs...)
}

func (c *Checker) checkWhileStmt(s *ast.WhileStmt, scope *binder.Scope, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	thenEnv, elseEnv := c.narrowCond(s.Condition, scope, env)
	child := branches[*idx]
	*idx++

	bodyEnv := thenEnv
	for i := 0; i < 2; i++ {
		bodyEnv = c.checkBlock(child, bodyEnv)
	}
	return binder.Join(env, elseEnv, bodyEnv)
}

func (c *Checker) checkRepeatStmt(s *ast.RepeatStmt, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	child := branches[*idx]
	*idx++

	bodyEnv := env
	for i := 0; i < 2; i++ {
		bodyEnv = c.checkBlock(child, bodyEnv)
	}
	exitEnv, _ := c.narrowCond(s.Condition, child.Scope, bodyEnv)
	return binder.Join(env, exitEnv)
}

func (c *Checker) checkNumericForStmt(s *ast.NumericForStmt, scope *binder.Scope, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	c.checkExpr(s.Start, scope, env)
	c.checkExpr(s.Stop, scope, env)
	if s.Step != nil {
		c.checkExpr(s.Step, scope, env)
	}
	child := branches[*idx]
	*idx++

	bodyEnv := env
	for i := 0; i < 2; i++ {
		bodyEnv = c.checkBlock(child, bodyEnv)
	}
	return binder.Join(env, env, bodyEnv)
}

func (c *Checker) checkGenericForStmt(s *ast.GenericForStmt, scope *binder.Scope, env *binder.TypeEnvironment, branches []*binder.BlockInfo, idx *int) *binder.TypeEnvironment {
	c.exprListTypes(s.Exprs, scope, env, nil)
	child := branches[*idx]
	*idx++

	bodyEnv := env
	for i := 0; i < 2; i++ {
		bodyEnv = c.checkBlock(child, bodyEnv)
	}
	return binder.Join(env, env, bodyEnv)
}

func (c *Checker) checkFunctionDeclStmt(s *ast.FunctionDeclStmt, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	info := c.b.Functions[s.Fn]
	sig := c.checkFunctionLiteral(s.Fn, info.Recs)
	overloads := overloadRecords(info.Recs)

	switch target := s.Name.(type) {
	case *ast.Identifier:
		sym := c.b.Resolve(scope, target.Name)
		if sym.DeclaredType == nil {
			sym.DeclaredType = sig
		}
		if len(overloads) > 0 {
			c.overloads[sym] = overloads
		}
		return env.With(sym, sig)

	case *ast.FieldExpr:
		c.checkExpr(target.Target, scope, env)
		return env
	}
	return env
}

func (c *Checker) checkLocalFunctionDeclStmt(s *ast.LocalFunctionDeclStmt, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	info := c.b.Functions[s.Fn]
	sig := c.checkFunctionLiteral(s.Fn, info.Recs)
	sym := c.b.Resolve(scope, s.Name)
	if sym.DeclaredType == nil {
		sym.DeclaredType = sig
	}
	if overloads := overloadRecords(info.Recs); len(overloads) > 0 {
		c.overloads[sym] = overloads
	}
	return env.With(sym, sig)
}

func (c *Checker) checkReturnStmt(s *ast.ReturnStmt, scope *binder.Scope, env *binder.TypeEnvironment) *binder.TypeEnvironment {
	var expected []types.Type
	if c.currentReturn != nil {
		expected = c.currentReturn.Elems
	}
	vals, spans := c.exprListTypes(s.Exprs, scope, env, expected)

	if c.currentReturn != nil {
		for i, want := range c.currentReturn.Elems {
			var got types.Type = types.Nil
			if i < len(vals) {
				got = vals[i]
			}
			if !c.subtype(got, want) {
				span := c.currentReturnSpan
				if i < len(spans) {
					span = spans[i]
				}
				c.addDiag(diagnostics.ReturnTypeMismatch, span,
					fmt.Sprintf("return value %d: expected %s, got %s", i+1, want.String(), got.String()))
			}
		}
	}
	return env
}

func overloadRecords(recs []annot.Record) []types.Function {
	var out []types.Function
	for _, r := range recs {
		if r.Kind == annot.KindOverload {
			out = append(out, r.OverloadSig)
		}
	}
	return out
}
