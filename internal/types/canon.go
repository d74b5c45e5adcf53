package types

// Canon reduces t to canonical form: nested unions flattened, members
// de-duplicated by structural equality, Any absorbing every other
// member, Never vanishing, and the surviving members sorted by a
// stable key (spec §3 "Canonical form", invariant 2: idempotent).
func Canon(t Type) Type {
	switch v := t.(type) {
	case Union:
		return canonUnion(flatten(v.Members))
	case Array:
		return Array{Elem: Canon(v.Elem)}
	case Tuple:
		elems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Canon(e)
		}
		return Tuple{Elems: elems}
	case Map:
		return Map{Key: Canon(v.Key), Value: Canon(v.Value)}
	case Record:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{f.Name, Canon(f.Type)}
		}
		return Record{Fields: fields, Sealed: v.Sealed}
	case Function:
		params := make([]Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = Param{p.Name, Canon(p.Type), p.Optional}
		}
		var vararg Type
		if v.Vararg != nil {
			vararg = Canon(v.Vararg)
		}
		return Function{Params: params, Vararg: vararg, Returns: Canon(v.Returns).(Tuple)}
	default:
		return t
	}
}

// Optional builds Union(t, Nil) in canonical form — the desugaring of
// `T?` (spec §3 "Optional(Type)").
func Optional(t Type) Type {
	return Canon(Union{Members: []Type{t, Nil}})
}

// AsOptional reports whether t canonicalizes to exactly {T, Nil} and, if
// so, returns T — used to reconstruct `T?` for pretty-printing (spec §3).
func AsOptional(t Type) (Type, bool) {
	u, ok := Canon(t).(Union)
	if !ok || len(u.Members) != 2 {
		return nil, false
	}
	if IsNil(u.Members[1]) {
		return u.Members[0], true
	}
	if IsNil(u.Members[0]) {
		return u.Members[1], true
	}
	return nil, false
}

// flatten recursively expands nested unions into one flat member list.
func flatten(members []Type) []Type {
	out := make([]Type, 0, len(members))
	for _, m := range members {
		m = Canon(m)
		if u, ok := m.(Union); ok {
			out = append(out, u.Members...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

// canonUnion de-duplicates, applies the Any-absorbs/Never-vanishes
// rules, sorts, and collapses a one-member result to a bare type.
func canonUnion(members []Type) Type {
	for _, m := range members {
		if IsAny(m) {
			return Any
		}
	}
	seen := make(map[string]bool)
	out := make([]Type, 0, len(members))
	for _, m := range members {
		if IsNever(m) {
			continue
		}
		key := m.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return Never
	}
	if len(out) == 1 {
		return out[0]
	}
	sortMembers(out)
	return Union{Members: out}
}

// Equal reports structural equality of two canonical types by their
// printed form — sufficient because canonical form is fully
// deterministic (spec §8 invariant 7).
func Equal(a, b Type) bool {
	return Canon(a).String() == Canon(b).String()
}

// TruthyPart removes Nil from t, the narrowing performed by `and`'s
// left operand and by a bare-expression condition's then-branch (spec
// §4.5 "Binary operators", "Narrowing"). The algebra has no literal
// false type, so a Boolean member is kept whole.
func TruthyPart(t Type) Type {
	t = Canon(t)
	switch v := t.(type) {
	case Union:
		var out []Type
		for _, m := range v.Members {
			if IsNil(m) {
				continue
			}
			out = append(out, m)
		}
		return canonUnion(out)
	default:
		if IsNil(t) {
			return Never
		}
		return t
	}
}

// FalsyPart keeps only Nil and Boolean — the complement of TruthyPart,
// used for the else-branch of a bare-expression condition and for
// `or`'s right-hand inclusion test (spec §4.5 "Narrowing").
func FalsyPart(t Type) Type {
	t = Canon(t)
	switch v := t.(type) {
	case Union:
		var out []Type
		for _, m := range v.Members {
			if IsNil(m) || m == Type(Boolean) {
				out = append(out, m)
			}
		}
		return canonUnion(out)
	default:
		if IsNil(t) || t == Type(Boolean) {
			return t
		}
		return Never
	}
}

// CanBeNilOrFalse reports whether t's falsy part is non-empty, i.e.
// whether a bare-expression condition on t is statically decidable
// (spec §4.5 "Logical `or`": "if left cannot be nil/false...").
func CanBeNilOrFalse(t Type) bool {
	return !IsNever(FalsyPart(t))
}

// RemoveNil drops the Nil member from a union (the `x ~= nil` narrowing
// in the then-branch, spec §4.5 "Narrowing").
func RemoveNil(t Type) Type {
	t = Canon(t)
	if u, ok := t.(Union); ok {
		var out []Type
		for _, m := range u.Members {
			if !IsNil(m) {
				out = append(out, m)
			}
		}
		return canonUnion(out)
	}
	if IsNil(t) {
		return Never
	}
	return t
}

// OnlyNil narrows t to Nil if Nil is a possible member, else Never (the
// `x == nil` then-branch narrowing, spec §4.5 "Narrowing").
func OnlyNil(t Type) Type {
	if IncludesNil(t) {
		return Nil
	}
	return Never
}

// Disjuncts returns the flattened member list of t (a single-element
// list if t is not a union), useful for "every disjunct of T" checks
// in the subtyping relation (spec §3 "T₁ ≤ U").
func Disjuncts(t Type) []Type {
	t = Canon(t)
	if u, ok := t.(Union); ok {
		return u.Members
	}
	return []Type{t}
}
