package checker

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// checkExpr infers e's type in single-value context and records it
// exactly once (spec invariant 1).
func (c *Checker) checkExpr(e ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	return c.recordType(e, c.inferExpr(e, scope, env))
}

// checkExprExpected is checkExpr but, for a table constructor, checks it
// against expected instead of inferring it freely (spec §4.5 "if an
// explicit @type ... is in scope for the target binding, that type is
// used as the expected type").
func (c *Checker) checkExprExpected(e ast.Expression, expected types.Type, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	if tc, ok := e.(*ast.TableConstructorExpr); ok && expected != nil {
		return c.recordType(tc, c.inferTableConstructor(tc, expected, scope, env))
	}
	return c.checkExpr(e, scope, env)
}

// checkExprMulti is checkExpr but preserves a call/vararg's full Tuple
// result instead of truncating to the first component (spec §4.5
// "Multi-return propagation").
func (c *Checker) checkExprMulti(e ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	switch e.(type) {
	case *ast.CallExpr, *ast.MethodCallExpr:
		return c.recordType(e, c.inferCallMulti(e, scope, env))
	default:
		return c.checkExpr(e, scope, env)
	}
}

// typeOfNode returns the type already recorded for n, or Unknown if n
// has not been checked yet.
func (c *Checker) typeOfNode(n ast.Node) types.Type {
	if t, ok := c.byNode[n]; ok {
		return t
	}
	return types.Unknown
}

func (c *Checker) inferExpr(e ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	switch n := e.(type) {
	case *ast.Identifier:
		sym := c.b.Resolve(scope, n.Name)
		return env.Get(sym)

	case *ast.NilLit:
		return types.Nil
	case *ast.BoolLit:
		return types.Boolean
	case *ast.NumberLit:
		if n.IsInt {
			return types.Integer
		}
		return types.Number
	case *ast.StringLit:
		return types.String

	case *ast.VarargExpr:
		sym, ok := scope.Find("...")
		if !ok {
			return types.Unknown
		}
		return sym.GetType()

	case *ast.ParenExpr:
		// Truncates a multi-value inner expression to its first result
		// (spec §4.5 "Multi-return propagation").
		return c.checkExpr(n.Inner, scope, env)

	case *ast.CastExpr:
		return c.inferCast(n, scope, env)

	case *ast.UnaryExpr:
		return c.inferUnary(n, scope, env)

	case *ast.BinaryExpr:
		return c.inferBinary(n, scope, env)

	case *ast.IndexExpr:
		return c.inferIndex(n, scope, env)

	case *ast.FieldExpr:
		return c.inferField(n, scope, env)

	case *ast.CallExpr, *ast.MethodCallExpr:
		t := c.inferCallMulti(e, scope, env)
		if tup, ok := t.(types.Tuple); ok {
			return tup.First()
		}
		return t

	case *ast.FunctionExpr:
		return c.checkFunctionLiteral(n, nil)

	case *ast.TableConstructorExpr:
		return c.inferTableConstructorFree(n, scope, env)
	}
	return types.Unknown
}

func (c *Checker) inferCast(n *ast.CastExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	innerT := c.checkExpr(n.Inner, scope, env)
	lowered := c.lowerInlineType(n.TypeExpr)
	if !c.subtype(innerT, lowered) && !c.subtype(lowered, innerT) {
		c.addDiag(diagnostics.CastTypeMismatch, n.TypeExprSpan,
			"cannot cast "+innerT.String()+" to "+lowered.String())
	}
	return lowered
}

func (c *Checker) inferUnary(n *ast.UnaryExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	t := c.checkExpr(n.Operand, scope, env)
	switch n.Op {
	case ast.OpNeg:
		if types.Equal(t, types.Integer) {
			return types.Integer
		}
		return types.Number
	case ast.OpNot:
		return types.Boolean
	case ast.OpLen:
		return types.Integer
	case ast.OpBNot:
		return types.Integer
	}
	return types.Unknown
}

func (c *Checker) inferBinary(n *ast.BinaryExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	switch n.Op {
	case ast.OpAnd:
		lt := c.checkExpr(n.Left, scope, env)
		rt := c.checkExpr(n.Right, scope, env)
		return c.logicalAndType(lt, rt)
	case ast.OpOr:
		lt := c.checkExpr(n.Left, scope, env)
		rt := c.checkExpr(n.Right, scope, env)
		return c.logicalOrType(lt, rt)
	}

	lt := c.checkExpr(n.Left, scope, env)
	rt := c.checkExpr(n.Right, scope, env)

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpIDiv, ast.OpMod:
		if types.Equal(lt, types.Integer) && types.Equal(rt, types.Integer) {
			return types.Integer
		}
		return types.Number
	case ast.OpDiv, ast.OpPow:
		return types.Number
	case ast.OpConcat:
		return types.String
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNeq:
		return types.Boolean
	case ast.OpBAnd, ast.OpBOr, ast.OpBXor, ast.OpShl, ast.OpShr:
		return types.Integer
	}
	return types.Unknown
}

// logicalAndType implements `and`'s result per spec §4.5: "Union(truthy-
// part(left), right)".
func (c *Checker) logicalAndType(lt, rt types.Type) types.Type {
	return types.Canon(types.Union{Members: []types.Type{types.TruthyPart(lt), rt}})
}

// logicalOrType implements `or`'s result per spec §4.5: "Union(truthy-
// part(left), falsy-part(left) ? right : empty); if left cannot be
// nil/false the result is simply left".
func (c *Checker) logicalOrType(lt, rt types.Type) types.Type {
	if !types.CanBeNilOrFalse(lt) {
		return lt
	}
	return types.Canon(types.Union{Members: []types.Type{types.TruthyPart(lt), rt}})
}

func (c *Checker) inferIndex(n *ast.IndexExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	targetT := c.checkExpr(n.Target, scope, env)
	c.checkExpr(n.Key, scope, env)
	rt := c.resolveTypeAt(targetT, n.Span())
	switch rv := rt.(type) {
	case types.Array:
		return rv.Elem
	case types.Map:
		return rv.Value
	case types.Record:
		if lit, ok := n.Key.(*ast.StringLit); ok {
			if ft, ok2 := rv.Get(lit.Value); ok2 {
				return ft
			}
		}
		return types.Any
	case *types.Class:
		if lit, ok := n.Key.(*ast.StringLit); ok {
			if ft, ok2 := classFieldLookup(rv, lit.Value); ok2 {
				return ft
			}
		}
		return types.Any
	}
	return types.Any
}

func (c *Checker) inferField(n *ast.FieldExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	targetT := c.checkExpr(n.Target, scope, env)
	rt := c.resolveTypeAt(targetT, n.NameSpan)
	switch rv := rt.(type) {
	case types.Record:
		if ft, ok := rv.Get(n.Name); ok {
			return ft
		}
		if rv.Sealed {
			c.addDiag(diagnostics.FieldTypeMismatch, n.NameSpan, "unknown field: "+n.Name)
			return types.Unknown
		}
		return types.Any
	case *types.Class:
		if ft, ok := classFieldLookup(rv, n.Name); ok {
			return ft
		}
		if mt, ok := classMethodLookup(rv, n.Name); ok {
			return mt
		}
		if rv.Sealed {
			c.addDiag(diagnostics.FieldTypeMismatch, n.NameSpan, "unknown field: "+n.Name+" on "+rv.Name)
			return types.Unknown
		}
		return types.Any
	case types.Map:
		return rv.Value
	}
	return types.Any
}

func classFieldLookup(c *types.Class, name string) (types.Type, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if t, ok := cur.Fields[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func classMethodLookup(c *types.Class, name string) (types.Type, bool) {
	for cur := c; cur != nil; cur = cur.Parent {
		if f, ok := cur.Methods[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// resolveTypeAt resolves t through any Alias indirection, reporting
// unknown-name at span if the alias cannot be resolved (spec §7 "An
// unresolved registry name produces an unknown-name at its first use
// site, never at the alias body").
func (c *Checker) resolveTypeAt(t types.Type, span token.Span) types.Type {
	t = types.Canon(t)
	for {
		a, ok := t.(types.Alias)
		if !ok {
			return t
		}
		r := c.resolver()
		if r == nil {
			return types.Unknown
		}
		resolved, ok := r.ResolveAlias(a.Name)
		if !ok {
			c.addDiag(diagnostics.UnknownName, span, "unknown name: "+a.Name)
			return types.Unknown
		}
		t = types.Canon(resolved)
	}
}

func (c *Checker) lowerInlineType(src string) types.Type {
	res := c.lowerer().LowerInline(src)
	return types.Canon(res.Type)
}
