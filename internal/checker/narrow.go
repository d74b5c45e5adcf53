package checker

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/types"
)

// narrowCond evaluates cond as a branch condition, returning the
// environment write-sets for the then and else branches (spec §4.5
// "Narrowing"). It is the sole place that records type info for
// condition expressions — callers must not also run cond through
// checkExpr.
func (c *Checker) narrowCond(cond ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) (thenEnv, elseEnv *binder.TypeEnvironment) {
	switch e := cond.(type) {
	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			th, el := c.narrowCond(e.Operand, scope, env)
			c.recordType(e, types.Boolean)
			return el, th
		}

	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpAnd:
			th1, el1 := c.narrowCond(e.Left, scope, env)
			th2, el2 := c.narrowCond(e.Right, scope, th1)
			result := c.logicalAndType(c.typeOfNode(e.Left), c.typeOfNode(e.Right))
			c.recordType(e, result)
			return th2, binder.Join(env, el1, el2)

		case ast.OpOr:
			th1, el1 := c.narrowCond(e.Left, scope, env)
			th2, el2 := c.narrowCond(e.Right, scope, el1)
			result := c.logicalOrType(c.typeOfNode(e.Left), c.typeOfNode(e.Right))
			c.recordType(e, result)
			return binder.Join(env, th1, th2), el2

		case ast.OpEq, ast.OpNeq:
			return c.narrowEquality(e, scope, env)
		}
	}

	// Bare-expression truthiness (spec §4.5: "x as a condition").
	t := c.checkExpr(cond, scope, env)
	if id, ok := cond.(*ast.Identifier); ok {
		sym := c.b.Resolve(scope, id.Name)
		return env.With(sym, types.TruthyPart(t)), env.With(sym, types.FalsyPart(t))
	}
	return env, env
}

func (c *Checker) narrowEquality(e *ast.BinaryExpr, scope *binder.Scope, env *binder.TypeEnvironment) (thenEnv, elseEnv *binder.TypeEnvironment) {
	c.checkExpr(e.Left, scope, env)
	c.checkExpr(e.Right, scope, env)
	c.recordType(e, types.Boolean)

	if sym, t, ok := c.identVsNil(e.Left, e.Right, scope, env); ok {
		return c.narrowNilEquality(e.Op, sym, t, env)
	}
	if sym, t, ok := c.identVsNil(e.Right, e.Left, scope, env); ok {
		return c.narrowNilEquality(e.Op, sym, t, env)
	}
	if sym, t, prim, ok := c.identVsTypeGuard(e.Left, e.Right, scope, env); ok {
		return c.narrowTypeGuard(e.Op, sym, t, prim, env)
	}
	if sym, t, prim, ok := c.identVsTypeGuard(e.Right, e.Left, scope, env); ok {
		return c.narrowTypeGuard(e.Op, sym, t, prim, env)
	}
	return env, env
}

func (c *Checker) narrowNilEquality(op ast.BinOp, sym *binder.Symbol, t types.Type, env *binder.TypeEnvironment) (thenEnv, elseEnv *binder.TypeEnvironment) {
	eqT, neqT := types.OnlyNil(t), types.RemoveNil(t)
	if op == ast.OpEq {
		return env.With(sym, eqT), env.With(sym, neqT)
	}
	return env.With(sym, neqT), env.With(sym, eqT)
}

func (c *Checker) narrowTypeGuard(op ast.BinOp, sym *binder.Symbol, t, prim types.Type, env *binder.TypeEnvironment) (thenEnv, elseEnv *binder.TypeEnvironment) {
	matchT, restT := narrowToMember(t, prim), removeMember(t, prim)
	if op == ast.OpEq {
		return env.With(sym, matchT), env.With(sym, restT)
	}
	return env.With(sym, restT), env.With(sym, matchT)
}

// identVsNil recognises `x == nil` / `x ~= nil` with x on either side,
// given as (a, b) where b is checked against NilLit.
func (c *Checker) identVsNil(a, b ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) (*binder.Symbol, types.Type, bool) {
	id, ok := a.(*ast.Identifier)
	if !ok {
		return nil, nil, false
	}
	if _, ok := b.(*ast.NilLit); !ok {
		return nil, nil, false
	}
	sym := c.b.Resolve(scope, id.Name)
	return sym, env.Get(sym), true
}

// typeGuardPrimitives maps the LuaCATS `type()` result string to the
// primitive it names (spec §4.5 "type(x) == \"string\"").
var typeGuardPrimitives = map[string]types.Type{
	"nil":      types.Nil,
	"boolean":  types.Boolean,
	"number":   types.Number,
	"string":   types.String,
	"function": types.Any,
	"table":    types.Any,
	"thread":   types.Thread,
	"userdata": types.Userdata,
}

// identVsTypeGuard recognises `type(x) == "kind"` with the call on a and
// the string literal on b.
func (c *Checker) identVsTypeGuard(a, b ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) (*binder.Symbol, types.Type, types.Type, bool) {
	call, ok := a.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, nil, nil, false
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Name != "type" {
		return nil, nil, nil, false
	}
	id, ok := call.Args[0].(*ast.Identifier)
	if !ok {
		return nil, nil, nil, false
	}
	lit, ok := b.(*ast.StringLit)
	if !ok {
		return nil, nil, nil, false
	}
	prim, ok := typeGuardPrimitives[lit.Value]
	if !ok {
		return nil, nil, nil, false
	}
	sym := c.b.Resolve(scope, id.Name)
	return sym, env.Get(sym), prim, true
}

// narrowToMember keeps only the disjuncts of t equal to prim, the
// then-branch of a type guard.
func narrowToMember(t, prim types.Type) types.Type {
	var out []types.Type
	for _, d := range types.Disjuncts(t) {
		if types.Equal(d, prim) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return types.Never
	}
	return types.Canon(types.Union{Members: out})
}

// removeMember drops disjuncts of t equal to prim, the else-branch of a
// type guard.
func removeMember(t, prim types.Type) types.Type {
	var out []types.Type
	for _, d := range types.Disjuncts(t) {
		if !types.Equal(d, prim) {
			out = append(out, d)
		}
	}
	return types.Canon(types.Union{Members: out})
}
