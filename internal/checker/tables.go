package checker

import (
	"github.com/takeshiD/typua/internal/ast"
	"github.com/takeshiD/typua/internal/binder"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/types"
)

// inferTableConstructorFree infers a table constructor's shape with no
// expected type in scope (spec §4.5 "Expression typing": Record when
// every entry is a named `key = v`, Array when every entry is
// positional, Map otherwise).
func (c *Checker) inferTableConstructorFree(n *ast.TableConstructorExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	if len(n.Fields) == 0 {
		return types.Record{}
	}
	allNamed, allPositional := true, true
	for _, f := range n.Fields {
		if f.Key == nil {
			allNamed = false
		} else if _, ok := f.Key.(*ast.StringLit); ok {
			allPositional = false
		} else {
			allNamed, allPositional = false, false
		}
	}
	switch {
	case allNamed:
		return c.inferRecordFree(n, scope, env)
	case allPositional:
		return c.inferArrayFree(n, scope, env)
	default:
		return c.inferMapFree(n, scope, env)
	}
}

func (c *Checker) inferRecordFree(n *ast.TableConstructorExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	fields := make([]types.Field, 0, len(n.Fields))
	for _, f := range n.Fields {
		lit := f.Key.(*ast.StringLit)
		vt := c.checkExpr(f.Value, scope, env)
		fields = append(fields, types.Field{Name: lit.Value, Type: vt})
	}
	return types.Record{Fields: fields}
}

func (c *Checker) inferArrayFree(n *ast.TableConstructorExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	members := make([]types.Type, 0, len(n.Fields))
	for _, f := range n.Fields {
		members = append(members, c.checkExpr(f.Value, scope, env))
	}
	return types.Array{Elem: types.Canon(types.Union{Members: members})}
}

func (c *Checker) inferMapFree(n *ast.TableConstructorExpr, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	var values []types.Type
	for _, f := range n.Fields {
		if f.Key != nil {
			c.checkExpr(f.Key, scope, env)
		}
		values = append(values, c.checkExpr(f.Value, scope, env))
	}
	return types.Map{Key: types.Any, Value: types.Canon(types.Union{Members: values})}
}

// inferTableConstructor checks n against an explicit expected type —
// a declared local's @type, a parameter's declared type, or an
// @overload candidate's parameter (spec §4.5 "if an explicit type ...
// is in scope for the target binding, that type is used as the
// expected type"). Falls back to free inference for any expected shape
// the constructor cannot be checked against structurally.
func (c *Checker) inferTableConstructor(n *ast.TableConstructorExpr, expected types.Type, scope *binder.Scope, env *binder.TypeEnvironment) types.Type {
	resolved := c.resolveTypeAt(expected, n.Span())
	switch rv := resolved.(type) {
	case types.Record:
		c.checkRecordFields(n, rv.Get, rv.Sealed, scope, env)
		return rv

	case *types.Class:
		c.checkRecordFields(n, func(name string) (types.Type, bool) { return classFieldLookup(rv, name) }, rv.Sealed, scope, env)
		return rv

	case types.Array:
		for _, f := range n.Fields {
			vt := c.checkExprExpected(f.Value, rv.Elem, scope, env)
			if !c.subtype(vt, rv.Elem) {
				c.addDiag(diagnostics.AssignTypeMismatch, f.FieldSpan,
					"array element: expected "+rv.Elem.String()+", got "+vt.String())
			}
		}
		return rv

	case types.Map:
		for _, f := range n.Fields {
			if f.Key != nil {
				c.checkExpr(f.Key, scope, env)
			}
			vt := c.checkExprExpected(f.Value, rv.Value, scope, env)
			if !c.subtype(vt, rv.Value) {
				c.addDiag(diagnostics.AssignTypeMismatch, f.FieldSpan,
					"map value: expected "+rv.Value.String()+", got "+vt.String())
			}
		}
		return rv

	default:
		return c.inferTableConstructorFree(n, scope, env)
	}
}

func (c *Checker) checkRecordFields(n *ast.TableConstructorExpr, get func(string) (types.Type, bool), sealed bool, scope *binder.Scope, env *binder.TypeEnvironment) {
	for _, f := range n.Fields {
		lit, ok := f.Key.(*ast.StringLit)
		if !ok {
			if f.Key != nil {
				c.checkExpr(f.Key, scope, env)
			}
			c.checkExpr(f.Value, scope, env)
			continue
		}
		exp, known := get(lit.Value)
		vt := c.checkExprExpected(f.Value, exp, scope, env)
		if !known {
			if sealed {
				c.addDiag(diagnostics.FieldTypeMismatch, f.FieldSpan, "unknown field: "+lit.Value)
			}
			continue
		}
		if !c.subtype(vt, exp) {
			c.addDiag(diagnostics.FieldTypeMismatch, f.FieldSpan,
				"field "+lit.Value+": expected "+exp.String()+", got "+vt.String())
		}
	}
}
