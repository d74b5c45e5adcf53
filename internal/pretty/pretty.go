// Package pretty renders types.Type values the way hover and inlay
// hints present them to an editor (spec §4.5 "State for LSP outputs"):
// single-letter names for type variables, `T?` for exactly {T, Nil}
// unions, `T[]` for arrays, `{[K]: V}` for maps, and parenthesised
// unions inside array/optional contexts.
package pretty

import "github.com/takeshiD/typua/internal/types"

// Print renders t for human consumption.
func Print(t Type) string {
	return printWithVars(t, newVarNamer())
}

// Type is a local alias so this file reads identically to the rest of
// the package without a qualified types.Type on every line.
type Type = types.Type

func printWithVars(t Type, vn *varNamer) string {
	t = types.Canon(t)
	if opt, ok := types.AsOptional(t); ok {
		return parenIfNeeded(printWithVars(opt, vn)) + "?"
	}
	switch v := t.(type) {
	case types.Var:
		return vn.name(v.ID)
	case types.Array:
		return parenIfUnion(v.Elem, vn) + "[]"
	case types.Map:
		return "{[" + printWithVars(v.Key, vn) + "]: " + printWithVars(v.Value, vn) + "}"
	case types.Union:
		s := ""
		for i, m := range v.Members {
			if i > 0 {
				s += "|"
			}
			s += parenIfUnion(m, vn)
		}
		return s
	case types.Record:
		s := "{"
		for i, f := range v.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + printWithVars(f.Type, vn)
		}
		return s + "}"
	case types.Tuple:
		s := "["
		for i, e := range v.Elems {
			if i > 0 {
				s += ", "
			}
			s += printWithVars(e, vn)
		}
		return s + "]"
	case types.Function:
		s := "fun("
		for i, p := range v.Params {
			if i > 0 {
				s += ", "
			}
			s += p.Name + ": " + printWithVars(p.Type, vn)
			if p.Optional {
				s += "?"
			}
		}
		s += ")"
		if len(v.Returns.Elems) > 0 {
			s += ": "
			for i, r := range v.Returns.Elems {
				if i > 0 {
					s += ", "
				}
				s += printWithVars(r, vn)
			}
		}
		return s
	default:
		return t.String()
	}
}

func parenIfUnion(t Type, vn *varNamer) string {
	if _, ok := types.Canon(t).(types.Union); ok {
		return "(" + printWithVars(t, vn) + ")"
	}
	return printWithVars(t, vn)
}

func parenIfNeeded(s string) string {
	if len(s) == 0 {
		return s
	}
	for _, r := range s {
		if r == '|' {
			return "(" + s + ")"
		}
		break
	}
	return s
}

// varNamer assigns sequential single-letter names (a, b, c, ..., z,
// a1, b1, ...) to type variables in first-seen order, matching the
// teacher's normalization of auto-generated type-variable names for
// deterministic, readable display (typesystem.TVar.String in test/LSP
// mode).
type varNamer struct {
	seen  map[string]string
	next  int
}

func newVarNamer() *varNamer {
	return &varNamer{seen: map[string]string{}}
}

func (v *varNamer) name(id string) string {
	if n, ok := v.seen[id]; ok {
		return n
	}
	letter := rune('a' + (v.next % 26))
	suffix := v.next / 26
	name := string(letter)
	if suffix > 0 {
		name += itoa(suffix)
	}
	v.seen[id] = name
	v.next++
	return name
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
