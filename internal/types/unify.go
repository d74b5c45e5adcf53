package types

import "fmt"

// Subst maps type-variable names to their bound types, following the
// teacher's typesystem.Subst shape.
type Subst map[string]Type

// Apply substitutes every Var bound in s throughout t.
func Apply(t Type, s Subst) Type {
	switch v := t.(type) {
	case Var:
		if r, ok := s[v.ID]; ok {
			return r
		}
		return v
	case Union:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = Apply(m, s)
		}
		return Canon(Union{Members: members})
	case Array:
		return Array{Elem: Apply(v.Elem, s)}
	case Tuple:
		elems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Apply(e, s)
		}
		return Tuple{Elems: elems}
	case Map:
		return Map{Key: Apply(v.Key, s), Value: Apply(v.Value, s)}
	case Record:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{f.Name, Apply(f.Type, s)}
		}
		return Record{Fields: fields, Sealed: v.Sealed}
	case Function:
		params := make([]Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = Param{p.Name, Apply(p.Type, s), p.Optional}
		}
		var vararg Type
		if v.Vararg != nil {
			vararg = Apply(v.Vararg, s)
		}
		return Function{Params: params, Vararg: vararg, Returns: Apply(v.Returns, s).(Tuple)}
	default:
		return t
	}
}

// FreeVars collects the distinct Var names occurring in t.
func FreeVars(t Type) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Type)
	walk = func(t Type) {
		switch v := t.(type) {
		case Var:
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v.ID)
			}
		case Union:
			for _, m := range v.Members {
				walk(m)
			}
		case Array:
			walk(v.Elem)
		case Tuple:
			for _, e := range v.Elems {
				walk(e)
			}
		case Map:
			walk(v.Key)
			walk(v.Value)
		case Record:
			for _, f := range v.Fields {
				walk(f.Type)
			}
		case Function:
			for _, p := range v.Params {
				walk(p.Type)
			}
			if v.Vararg != nil {
				walk(v.Vararg)
			}
			walk(v.Returns)
		}
	}
	walk(t)
	return out
}

func occurs(id string, t Type) bool {
	for _, v := range FreeVars(t) {
		if v == id {
			return true
		}
	}
	return false
}

// UnifyError reports a generic-instantiation failure. Within overload
// resolution trials it is caught silently; outside it becomes a type
// mismatch diagnostic (spec §4.5 "Unification").
type UnifyError struct {
	A, B Type
	Msg  string
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.A.String(), e.B.String(), e.Msg)
}

// Unify finds a substitution making a and b equal, merging bindings
// into (and returning) s. A bare call with no pre-existing bindings
// passes an empty Subst.
func Unify(a, b Type, s Subst, opts Options, resolver Resolver) (Subst, error) {
	if s == nil {
		s = Subst{}
	}
	a = Apply(Canon(a), s)
	b = Apply(Canon(b), s)

	if av, ok := a.(Var); ok {
		return bindVar(av, b, s)
	}
	if bv, ok := b.(Var); ok {
		return bindVar(bv, a, s)
	}
	if Equal(a, b) {
		return s, nil
	}

	// Unifying a variable-free union with a concrete type: pick the
	// unique compatible member (spec §4.5 "Unification").
	if au, ok := a.(Union); ok {
		return unifyUnionMember(au, b, s, opts, resolver)
	}
	if bu, ok := b.(Union); ok {
		return unifyUnionMember(bu, a, s, opts, resolver)
	}

	switch at := a.(type) {
	case Array:
		bt, ok := b.(Array)
		if !ok {
			return s, &UnifyError{a, b, "shape mismatch"}
		}
		return Unify(at.Elem, bt.Elem, s, opts, resolver)
	case Tuple:
		bt, ok := b.(Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return s, &UnifyError{a, b, "tuple arity mismatch"}
		}
		for i := range at.Elems {
			var err error
			s, err = Unify(at.Elems[i], bt.Elems[i], s, opts, resolver)
			if err != nil {
				return s, err
			}
		}
		return s, nil
	case Map:
		bt, ok := b.(Map)
		if !ok {
			return s, &UnifyError{a, b, "shape mismatch"}
		}
		var err error
		if s, err = Unify(at.Key, bt.Key, s, opts, resolver); err != nil {
			return s, err
		}
		return Unify(at.Value, bt.Value, s, opts, resolver)
	case Function:
		bt, ok := b.(Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return s, &UnifyError{a, b, "shape mismatch"}
		}
		var err error
		for i := range at.Params {
			if s, err = Unify(at.Params[i].Type, bt.Params[i].Type, s, opts, resolver); err != nil {
				return s, err
			}
		}
		return Unify(at.Returns, bt.Returns, s, opts, resolver)
	}

	if Subtype(a, b, opts, resolver) || Subtype(b, a, opts, resolver) {
		return s, nil
	}
	return s, &UnifyError{a, b, "not unifiable"}
}

func bindVar(v Var, t Type, s Subst) (Subst, error) {
	if tv, ok := t.(Var); ok && tv.ID == v.ID {
		return s, nil
	}
	if occurs(v.ID, t) {
		return s, &UnifyError{v, t, "occurs check failed"}
	}
	next := make(Subst, len(s)+1)
	for k, val := range s {
		next[k] = val
	}
	next[v.ID] = t
	return next, nil
}

func unifyUnionMember(u Union, t Type, s Subst, opts Options, resolver Resolver) (Subst, error) {
	count := 0
	for _, m := range u.Members {
		if Equal(m, t) || Subtype(t, m, opts, resolver) {
			count++
		}
	}
	if count == 1 {
		return s, nil
	}
	if count > 1 {
		return s, &UnifyError{u, t, "ambiguous union member"}
	}
	return s, &UnifyError{u, t, "no compatible union member"}
}
