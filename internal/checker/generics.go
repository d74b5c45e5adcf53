package checker

import (
	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/types"
)

// checkFunctionLiteral builds fn's Function signature from its bound
// parameter symbols and recs' @return/@vararg/@generic records, then
// checks its body under a fresh TypeEnvironment binding each annotated
// parameter to its signature type (spec §4.5 "Functions"). Bare
// generic-variable references lower to types.Alias (the Lowerer has no
// notion of an enclosing @generic list), so names present in a @generic
// record are substituted into types.Var here, for both the body check
// and call-site unification.
func (c *Checker) checkFunctionLiteral(fn *ast.FunctionExpr, recs []annot.Record) types.Function {
	info, ok := c.b.Functions[fn]
	if !ok {
		return types.Function{}
	}

	generics := map[string]bool{}
	for _, r := range recs {
		if r.Kind == annot.KindGeneric {
			for _, v := range r.GenericVars {
				generics[v] = true
			}
		}
	}

	params := make([]types.Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		t := types.Type(types.Unknown)
		optional := false
		if sym, ok := info.Scope.FindLocal(p.Name); ok && sym.DeclaredType != nil {
			t = sym.DeclaredType
			if _, isOpt := types.AsOptional(t); isOpt {
				optional = true
			}
		}
		params = append(params, types.Param{Name: p.Name, Type: substGenericAlias(t, generics), Optional: optional})
	}

	var vararg types.Type
	for _, r := range recs {
		if r.Kind == annot.KindVararg {
			vararg = substGenericAlias(r.Type, generics)
		}
	}

	var rets []types.Type
	for _, r := range recs {
		if r.Kind == annot.KindReturn {
			rets = append(rets, substGenericAlias(r.Type, generics))
		}
	}
	retTuple := types.Tuple{Elems: rets}

	prevReturn, prevSpan := c.currentReturn, c.currentReturnSpan
	c.currentReturn = &retTuple
	c.currentReturnSpan = fn.Span()

	bodyEnv := binder.NewTypeEnvironment()
	for i, p := range fn.Params {
		if sym, ok := info.Scope.FindLocal(p.Name); ok && sym.DeclaredType != nil {
			bodyEnv = bodyEnv.With(sym, params[i].Type)
		}
	}
	c.checkBlock(info.Body, bodyEnv)

	c.currentReturn, c.currentReturnSpan = prevReturn, prevSpan

	return types.Function{Params: params, Vararg: vararg, Returns: retTuple}
}

// substGenericAlias replaces any types.Alias{Name} with types.Var{ID:
// Name} where Name is a declared @generic variable, recursing through
// every composite type form.
func substGenericAlias(t types.Type, generics map[string]bool) types.Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case types.Alias:
		if generics[v.Name] {
			return types.Var{ID: v.Name}
		}
		return v
	case types.Union:
		members := make([]types.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = substGenericAlias(m, generics)
		}
		return types.Union{Members: members}
	case types.Array:
		return types.Array{Elem: substGenericAlias(v.Elem, generics)}
	case types.Tuple:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = substGenericAlias(e, generics)
		}
		return types.Tuple{Elems: elems}
	case types.Map:
		return types.Map{Key: substGenericAlias(v.Key, generics), Value: substGenericAlias(v.Value, generics)}
	case types.Record:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = types.Field{Name: f.Name, Type: substGenericAlias(f.Type, generics)}
		}
		return types.Record{Fields: fields, Sealed: v.Sealed}
	case types.Function:
		params := make([]types.Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = types.Param{Name: p.Name, Type: substGenericAlias(p.Type, generics), Optional: p.Optional}
		}
		var vararg types.Type
		if v.Vararg != nil {
			vararg = substGenericAlias(v.Vararg, generics)
		}
		return types.Function{Params: params, Vararg: vararg, Returns: substGenericAlias(v.Returns, generics).(types.Tuple)}
	default:
		return t
	}
}
