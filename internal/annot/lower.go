package annot

import (
	"fmt"
	"strings"

	"github.com/takeshiD/typua/internal/config"
	"github.com/takeshiD/typua/internal/types"
)

// primitiveNames is the closed set of primitive spellings from the
// Prim production of spec §4.2's grammar. `function` and `table` are
// LuaCATS spellings that lower to the structural Function/Map-ish top
// types; `function` with no signature lowers to the unconstrained
// Function shape (any params, any returns) and `table` lowers to
// Map(Any, Any), matching how the dominant Lua language server treats
// the bare keywords.
var primitiveNames = map[string]types.Type{
	"nil":     types.Nil,
	"boolean": types.Boolean,
	"number":  types.Number,
	"string":  types.String,
	"thread":  types.Thread,
	"userdata": types.Userdata,
	"lightuserdata": types.LightUserdata,
	"unknown": types.Unknown,
	"never":   types.Never,
	"any":     types.Any,
	"table":   types.Map{Key: types.Any, Value: types.Any},
	"function": types.Function{Vararg: types.Any, Returns: types.Tuple{Elems: []types.Type{types.Any}}},
}

// Lowerer converts a captured type-expression string into types.Type
// (spec §4.2). Syntax controls whether the `integer` spelling keeps a
// distinct Integer primitive or is lowered straight to Number (spec §9
// "Open questions", resolved per SPEC_FULL.md by following
// original_source's single-Number TypeKind under dialects with no
// integer subtype).
type Lowerer struct {
	Syntax config.Syntax
}

// LowerResult carries the lowered type plus any parse diagnostics; a
// failure yields at least one Error and the type parsed so far (with
// types.Unknown where a part could not be parsed) rather than aborting
// (spec §4.1 "Failures ... do not halt extraction").
type LowerResult struct {
	Type   types.Type
	Errors []Error
}

// Lower parses src as a full type expression (the `T` production).
func (lw Lowerer) Lower(src string, baseOffset int) LowerResult {
	p := &typeParser{lex: newTypeLexer(src), syntax: lw.Syntax, base: baseOffset}
	p.advance()
	t := p.parseUnion()
	if p.tok.kind != ttEOF {
		p.errorf("unexpected trailing input %q", p.tok.text)
	}
	return LowerResult{Type: types.Canon(t), Errors: p.errs}
}

type typeParser struct {
	lex    *typeLexer
	tok    typeToken
	syntax config.Syntax
	base   int
	errs   []Error
}

func (p *typeParser) advance() { p.tok = p.lex.next() }

func (p *typeParser) errorf(format string, args ...any) {
	p.errs = append(p.errs, Error{
		Message: fmt.Sprintf(format, args...),
	})
}

// parseUnion implements `T := Atom ('|' Atom)* ['?']`.
func (p *typeParser) parseUnion() types.Type {
	first := p.parseAtomWithArraySuffix()
	members := []types.Type{first}
	for p.tok.kind == ttPipe {
		p.advance()
		members = append(members, p.parseAtomWithArraySuffix())
	}
	var result types.Type
	if len(members) == 1 {
		result = members[0]
	} else {
		result = types.Union{Members: members}
	}
	if p.tok.kind == ttQuestion {
		p.advance()
		result = types.Optional(result)
	}
	return result
}

// parseAtomWithArraySuffix implements `Array := Atom '[]'`, applied
// repeatedly so `T[][]` lowers to Array(Array(T)).
func (p *typeParser) parseAtomWithArraySuffix() types.Type {
	t := p.parseAtom()
	for p.tok.kind == ttArraySuffix {
		p.advance()
		t = types.Array{Elem: t}
	}
	return t
}

func (p *typeParser) parseAtom() types.Type {
	switch p.tok.kind {
	case ttLParen:
		p.advance()
		inner := p.parseUnion()
		if p.tok.kind == ttRParen {
			p.advance()
		} else {
			p.errorf("expected ')'")
		}
		return inner
	case ttBacktick:
		p.advance()
		if p.tok.kind != ttIdent {
			p.errorf("expected identifier after '`'")
			return types.Unknown
		}
		name := p.tok.text
		p.advance()
		if p.tok.kind == ttBacktick {
			p.advance()
		} else {
			p.errorf("expected closing '`'")
		}
		// Generic capture: the type *value* of a string argument,
		// modeled as an ordinary generic type variable (spec §4.2 "Back-
		// tick names are generic captures").
		return types.Var{ID: name}
	case ttLBracket:
		return p.parseTuple()
	case ttLBrace:
		return p.parseMapOrRecord()
	case ttIdent:
		return p.parseNameOrFun()
	default:
		p.errorf("unexpected token %q", p.tok.text)
		p.advance()
		return types.Unknown
	}
}

// parseTuple implements `Tuple := '[' T (',' T)* ']'`.
func (p *typeParser) parseTuple() types.Type {
	p.advance() // consume '['
	var elems []types.Type
	if p.tok.kind != ttRBracket {
		elems = append(elems, p.parseUnion())
		for p.tok.kind == ttComma {
			p.advance()
			elems = append(elems, p.parseUnion())
		}
	}
	if p.tok.kind == ttRBracket {
		p.advance()
	} else {
		p.errorf("expected ']'")
	}
	return types.Tuple{Elems: elems}
}

// parseMapOrRecord implements `Map := '{' '[' T ']' ':' T '}' | '{'
// Field (',' Field)* '}'`.
func (p *typeParser) parseMapOrRecord() types.Type {
	p.advance() // consume '{'
	if p.tok.kind == ttLBracket {
		p.advance()
		key := p.parseUnion()
		if p.tok.kind == ttRBracket {
			p.advance()
		} else {
			p.errorf("expected ']'")
		}
		if p.tok.kind == ttColon {
			p.advance()
		} else {
			p.errorf("expected ':'")
		}
		val := p.parseUnion()
		if p.tok.kind == ttRBrace {
			p.advance()
		} else {
			p.errorf("expected '}'")
		}
		return types.Map{Key: key, Value: val}
	}
	var fields []types.Field
	for p.tok.kind == ttIdent {
		name := p.tok.text
		p.advance()
		if p.tok.kind == ttColon {
			p.advance()
		} else {
			p.errorf("expected ':' in record field")
		}
		val := p.parseUnion()
		fields = append(fields, types.Field{Name: name, Type: val})
		if p.tok.kind == ttComma {
			p.advance()
			continue
		}
		break
	}
	if p.tok.kind == ttRBrace {
		p.advance()
	} else {
		p.errorf("expected '}'")
	}
	return types.Record{Fields: fields}
}

// parseNameOrFun implements the Name/generic-application/`fun` branches
// of Atom.
func (p *typeParser) parseNameOrFun() types.Type {
	name := p.tok.text
	p.advance()

	if name == "fun" && p.tok.kind == ttLParen {
		return p.parseFun()
	}
	if name == "integer" {
		if p.syntax.HasIntegers() {
			return types.Integer
		}
		return types.Number
	}
	if prim, ok := primitiveNames[name]; ok && p.tok.kind != ttLAngle {
		return prim
	}
	if name == "table" && p.tok.kind == ttLAngle {
		p.advance()
		key := p.parseUnion()
		var val types.Type = types.Any
		if p.tok.kind == ttComma {
			p.advance()
			val = p.parseUnion()
		}
		if p.tok.kind == ttRAngle {
			p.advance()
		} else {
			p.errorf("expected '>'")
		}
		return types.Map{Key: key, Value: val}
	}
	if p.tok.kind == ttLAngle {
		// Generic application, e.g. `List<T>`. Without registry access
		// the lowerer cannot resolve arity/kind, so it records the
		// reference as a plain Alias and discards the argument list;
		// no later pass restores the arguments.
		p.advance()
		_ = p.parseUnion()
		for p.tok.kind == ttComma {
			p.advance()
			_ = p.parseUnion()
		}
		if p.tok.kind == ttRAngle {
			p.advance()
		} else {
			p.errorf("expected '>'")
		}
	}
	return types.Alias{Name: name}
}

// parseFun implements `Fun := 'fun' '(' [Param (',' Param)*] ')' [':' T
// (',' T)*]`.
func (p *typeParser) parseFun() types.Type {
	p.advance() // consume '('
	var params []types.Param
	var vararg types.Type
	if p.tok.kind != ttRParen {
		for {
			param, isVararg, varargType := p.parseParam()
			if isVararg {
				vararg = varargType
			} else {
				params = append(params, param)
			}
			if p.tok.kind == ttComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.tok.kind == ttRParen {
		p.advance()
	} else {
		p.errorf("expected ')'")
	}
	var returns []types.Type
	if p.tok.kind == ttColon {
		p.advance()
		returns = append(returns, p.parseUnion())
		for p.tok.kind == ttComma {
			p.advance()
			returns = append(returns, p.parseUnion())
		}
	}
	return types.Function{Params: params, Vararg: vararg, Returns: types.Tuple{Elems: returns}}
}

// parseParam implements `Param := [Ident ['?'] ':'] T | '...' [':' T]`.
func (p *typeParser) parseParam() (param types.Param, isVararg bool, varargType types.Type) {
	if p.tok.kind == ttEllipsis {
		p.advance()
		varargType = types.Any
		if p.tok.kind == ttColon {
			p.advance()
			varargType = p.parseUnion()
		}
		return types.Param{}, true, varargType
	}
	// Look ahead: `Ident ['?'] ':'` prefix vs. a bare type starting with
	// an identifier (e.g. a primitive name or class name with no
	// param-name prefix).
	if p.tok.kind == ttIdent {
		name := p.tok.text
		save := *p.lex
		saveTok := p.tok
		p.advance()
		optional := false
		if p.tok.kind == ttQuestion {
			optional = true
			p.advance()
		}
		if p.tok.kind == ttColon {
			p.advance()
			t := p.parseUnion()
			return types.Param{Name: name, Type: t, Optional: optional}, false, nil
		}
		// Not a named parameter: rewind and parse as a bare type.
		*p.lex = save
		p.tok = saveTok
	}
	t := p.parseUnion()
	return types.Param{Type: t}, false, nil
}

// LowerInline parses the `--[[@as T]]` inline cast target, identical
// grammar to a plain type expression.
func (lw Lowerer) LowerInline(src string) LowerResult {
	return lw.Lower(strings.TrimSpace(src), 0)
}
