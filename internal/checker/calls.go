package checker

import (
	"fmt"

	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// inferCallMulti types a call expression in multi-value context,
// returning the full result Tuple (spec §4.5 "Calls").
func (c *Checker) inferCallMulti(e ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	switch call := e.(type) {
	case *ast.CallExpr:
		calleeT := c.checkExpr(call.Callee, scope, env)
		argTypes, argSpans := c.checkArgsList(call.Args, scope, env)
		overloads := c.overloadsFor(call.Callee, scope)
		return c.resolveCall(calleeT, argTypes, argSpans, call.Span(), overloads)

	case *ast.MethodCallExpr:
		recvT := c.checkExpr(call.Receiver, scope, env)
		methodT := c.lookupMethod(recvT, call.Method, call.MethodSpan)
		argTypes, argSpans := c.checkArgsList(call.Args, scope, env)
		argTypes = append([]types.Type{recvT}, argTypes...)
		argSpans = append([]token.Span{call.Receiver.Span()}, argSpans...)
		return c.resolveCall(methodT, argTypes, argSpans, call.Span(), nil)
	}
	return types.Unknown
}

func (c *Checker) checkArgsList(args []ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment) ([]types.Type, []token.Span) {
	return c.exprListTypes(args, scope, env, nil)
}

// exprListTypes types exprs in order, expanding the last expression's
// Tuple (if it is a call or vararg) per spec §4.5 "Multi-return
// propagation"; expected, if non-nil, directs table-constructor
// inference at matching positions.
func (c *Checker) exprListTypes(exprs []ast.Expression, scope *binder.Scope, env *binder.TypeEnvironment, expected []types.Type) ([]types.Type, []token.Span) {
	var out []types.Type
	var spans []token.Span
	for i, e := range exprs {
		last := i == len(exprs)-1
		if last {
			switch e.(type) {
			case *ast.CallExpr, *ast.MethodCallExpr, *ast.VarargExpr:
				t := c.checkExprMulti(e, scope, env)
				if tup, ok := t.(types.Tuple); ok {
					for _, et := range tup.Elems {
						out = append(out, et)
						spans = append(spans, e.Span())
					}
					continue
				}
				out = append(out, t)
				spans = append(spans, e.Span())
				continue
			}
		}
		var exp types.Type
		if i < len(expected) {
			exp = expected[i]
		}
		out = append(out, c.checkExprExpected(e, exp, scope, env))
		spans = append(spans, e.Span())
	}
	return out, spans
}

func (c *Checker) overloadsFor(callee ast.Expression, scope *binder.Scope) []types.Function {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		return nil
	}
	sym := c.b.Resolve(scope, id.Name)
	return c.overloads[sym]
}

func (c *Checker) lookupMethod(recvT types.Type, name string, span token.Span) types.Type {
	rt := c.resolveTypeAt(recvT, span)
	switch rv := rt.(type) {
	case *types.Class:
		if mt, ok := classMethodLookup(rv, name); ok {
			return mt
		}
		if rv.Sealed {
			c.addDiag(diagnostics.FieldTypeMismatch, span, "unknown method: "+name+" on "+rv.Name)
		}
		return types.Any
	case types.Record:
		if ft, ok := rv.Get(name); ok {
			return ft
		}
		return types.Any
	}
	return types.Any
}

// resolveCall implements spec §4.5 "Calls": try overloads (if any) in
// declaration order before the primary signature, per spec §9's
// resolution of the primary-vs-overload tie.
func (c *Checker) resolveCall(calleeT types.Type, argTypes []types.Type, argSpans []token.Span, callSpan token.Span, overloads []types.Function) types.Type {
	calleeT = c.resolveTypeAt(calleeT, callSpan)
	primary, isFunc := calleeT.(types.Function)

	var candidates []types.Function
	candidates = append(candidates, overloads...)
	if isFunc {
		candidates = append(candidates, primary)
	}

	if len(candidates) == 0 {
		return types.Any // not callable under a known signature; no taxonomy code covers this
	}
	if len(candidates) == 1 {
		s, _ := c.matchCall(candidates[0], argTypes, argSpans, callSpan, true)
		return types.Canon(types.Apply(candidates[0].Returns, s))
	}

	var matchedIdx []int
	var substs []types.Subst
	for i, cand := range candidates {
		s, ok := c.matchCall(cand, argTypes, argSpans, callSpan, false)
		if ok {
			matchedIdx = append(matchedIdx, i)
			substs = append(substs, s)
		}
	}
	if len(matchedIdx) == 0 {
		c.addDiag(diagnostics.OverloadNoMatch, callSpan, "no overload accepts the given arguments")
		return types.Unknown
	}
	if len(matchedIdx) > 1 {
		c.addDiag(diagnostics.OverloadAmbiguous, callSpan, "multiple overloads match ambiguously")
	}
	chosen := candidates[matchedIdx[0]]
	return types.Canon(types.Apply(chosen.Returns, substs[0]))
}

// matchCall checks argTypes against cand's parameters (unifying generic
// variables), reporting arity-mismatch / param-type-mismatch only when
// loud — overload trials run quiet (spec §4.5 "Unification": "Failures
// within overload trials are caught silently").
func (c *Checker) matchCall(cand types.Function, argTypes []types.Type, argSpans []token.Span, callSpan token.Span, loud bool) (types.Subst, bool) {
	s := types.Subst{}
	ok := true
	n := len(cand.Params)

	for i := len(argTypes); i < n; i++ {
		if !cand.Params[i].Optional {
			if loud {
				c.addDiag(diagnostics.ArityMismatch, callSpan, "missing required argument: "+cand.Params[i].Name)
			}
			ok = false
		}
	}
	if len(argTypes) > n && cand.Vararg == nil {
		if loud {
			c.addDiag(diagnostics.ArityMismatch, callSpan, "too many arguments")
		}
		ok = false
	}

	for i := 0; i < n && i < len(argTypes); i++ {
		p := cand.Params[i]
		var err error
		s, err = types.Unify(p.Type, argTypes[i], s, c.sub, c.resolver())
		if err != nil {
			if loud {
				span := callSpan
				if i < len(argSpans) {
					span = argSpans[i]
				}
				c.addDiag(diagnostics.ParamTypeMismatch, span,
					fmt.Sprintf("argument %d: expected %s, got %s", i+1, p.Type.String(), argTypes[i].String()))
			}
			ok = false
		}
	}
	if cand.Vararg != nil {
		for i := n; i < len(argTypes); i++ {
			if !c.subtype(argTypes[i], cand.Vararg) {
				if loud {
					span := callSpan
					if i < len(argSpans) {
						span = argSpans[i]
					}
					c.addDiag(diagnostics.ParamTypeMismatch, span, "vararg argument type mismatch")
				}
				ok = false
			}
		}
	}
	return s, ok
}
