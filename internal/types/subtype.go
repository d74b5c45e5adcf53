package types

// Resolver lets the subtyping and field-lookup code see through Alias
// references without this package depending on the registry (which
// itself depends on types) — the same indirection typesystem.Resolver
// gives the teacher's Unify.
type Resolver interface {
	ResolveAlias(name string) (Type, bool)
}

// Options carries the configuration knobs from spec §6 that change the
// subtyping relation's strictness.
type Options struct {
	// CastNumberToInteger allows Number ≤ Integer, the reverse of the
	// unconditional Integer ≤ Number rule (spec §4.5 "Subtyping").
	CastNumberToInteger bool
	// WeakUnionCheck accepts T ≤ U₁|U₂ when T is compatible with *any*
	// disjunct, rather than requiring every disjunct of T to match.
	WeakUnionCheck bool
	// WeakNilCheck silently accepts an assignment from T? to T.
	WeakNilCheck bool
}

// Subtype decides sub ≤ sup under opts, resolving Alias references
// through resolver (which may be nil if no alias can appear — e.g. in
// unit tests constructing types directly).
func Subtype(sub, sup Type, opts Options, resolver Resolver) bool {
	sub = resolveAlias(Canon(sub), resolver)
	sup = resolveAlias(Canon(sup), resolver)

	if IsNever(sub) {
		return true
	}
	if IsAny(sup) || sup == Type(Unknown) {
		return true
	}
	if sub == Type(Unknown) {
		return true
	}
	if Equal(sub, sup) {
		return true
	}

	if opts.WeakNilCheck {
		if inner, ok := AsOptional(sub); ok && Subtype(inner, sup, opts, resolver) {
			return true
		}
	}

	// T₁ | T₂ ≤ U: every Tᵢ ≤ U (strict), or any Tᵢ ≤ U when
	// WeakUnionCheck relaxes the rule (spec §6 "reduce subtyping
	// strictness on unions").
	if subU, ok := sub.(Union); ok {
		if opts.WeakUnionCheck {
			for _, m := range subU.Members {
				if Subtype(m, sup, opts, resolver) {
					return true
				}
			}
			return false
		}
		for _, m := range subU.Members {
			if !Subtype(m, sup, opts, resolver) {
				return false
			}
		}
		return true
	}

	// T ≤ U₁ | U₂ | … : T need only satisfy one disjunct of U.
	if supU, ok := sup.(Union); ok {
		for _, m := range supU.Members {
			if Subtype(sub, m, opts, resolver) {
				return true
			}
		}
		return false
	}

	switch supT := sup.(type) {
	case Primitive:
		subP, ok := sub.(Primitive)
		if !ok {
			return false
		}
		if supT.Name == "number" && subP.Name == "integer" {
			return true
		}
		if supT.Name == "integer" && subP.Name == "number" && opts.CastNumberToInteger {
			return true
		}
		return false

	case Array:
		subA, ok := sub.(Array)
		if !ok {
			return false
		}
		return Subtype(subA.Elem, supT.Elem, opts, resolver)

	case Tuple:
		subT, ok := sub.(Tuple)
		if !ok || len(subT.Elems) != len(supT.Elems) {
			return false
		}
		for i := range supT.Elems {
			if !Subtype(subT.Elems[i], supT.Elems[i], opts, resolver) {
				return false
			}
		}
		return true

	case Map:
		subM, ok := sub.(Map)
		if !ok {
			return false
		}
		return Equal(subM.Key, supT.Key) && Equal(subM.Value, supT.Value)

	case Record:
		subR, ok := sub.(Record)
		if !ok {
			return false
		}
		for _, g := range supT.Fields {
			s, ok := subR.Get(g.Name)
			if !ok || !Subtype(s, g.Type, opts, resolver) {
				return false
			}
		}
		if supT.Sealed {
			for _, f := range subR.Fields {
				if _, ok := supT.Get(f.Name); !ok {
					return false
				}
			}
		}
		return true

	case Function:
		subF, ok := sub.(Function)
		if !ok {
			return false
		}
		return functionSubtype(subF, supT, opts, resolver)

	case *Class:
		subC, ok := sub.(*Class)
		if !ok {
			return false
		}
		for c := subC; c != nil; c = c.Parent {
			if c == supT || c.Name == supT.Name {
				return true
			}
		}
		return false
	}

	return false
}

// functionSubtype implements contravariant parameters / covariant
// returns, with the supertype's vararg absorbing excess actuals (spec
// §4.5 "Subtyping": "Function: contravariant in parameters...").
func functionSubtype(sub, sup Function, opts Options, resolver Resolver) bool {
	if len(sub.Params) < len(sup.Params) && sub.Vararg == nil {
		return false
	}
	for i, sp := range sup.Params {
		var subParamType Type
		if i < len(sub.Params) {
			subParamType = sub.Params[i].Type
		} else if sub.Vararg != nil {
			subParamType = sub.Vararg
		} else {
			return false
		}
		// Contravariant: the subtype's parameter must accept anything
		// the supertype's parameter accepts.
		if !Subtype(sp.Type, subParamType, opts, resolver) {
			return false
		}
	}
	if sup.Vararg != nil && sub.Vararg != nil {
		if !Subtype(sup.Vararg, sub.Vararg, opts, resolver) {
			return false
		}
	}
	return Subtype(sub.Returns, sup.Returns, opts, resolver)
}

func resolveAlias(t Type, resolver Resolver) Type {
	if resolver == nil {
		return t
	}
	for {
		a, ok := t.(Alias)
		if !ok {
			return t
		}
		resolved, ok := resolver.ResolveAlias(a.Name)
		if !ok {
			return Unknown
		}
		t = Canon(resolved)
	}
}
