package types

import "testing"

// reflexivity and transitivity, spec §8 invariant 3.
func TestSubtypeReflexive(t *testing.T) {
	cases := []Type{Nil, Boolean, Number, Integer, String, Any, Unknown,
		Array{Elem: String}, Union{Members: []Type{Number, String}}}
	for _, c := range cases {
		if !Subtype(Canon(c), Canon(c), Options{}, nil) {
			t.Errorf("%v should be a subtype of itself", c)
		}
	}
}

func TestSubtypeTransitive(t *testing.T) {
	// Integer ≤ Number ≤ Any, so Integer ≤ Any must hold transitively.
	if !Subtype(Integer, Number, Options{}, nil) {
		t.Fatal("integer ≤ number")
	}
	if !Subtype(Number, Any, Options{}, nil) {
		t.Fatal("number ≤ any")
	}
	if !Subtype(Integer, Any, Options{}, nil) {
		t.Fatal("integer ≤ any should hold transitively")
	}
}

func TestSubtypeIntegerNumberAsymmetric(t *testing.T) {
	if !Subtype(Integer, Number, Options{}, nil) {
		t.Error("integer ≤ number unconditionally")
	}
	if Subtype(Number, Integer, Options{}, nil) {
		t.Error("number ≤ integer should fail without CastNumberToInteger")
	}
	if !Subtype(Number, Integer, Options{CastNumberToInteger: true}, nil) {
		t.Error("number ≤ integer should hold with CastNumberToInteger")
	}
}

// TestWeakUnionCheckSubDisjunction exercises the review-fixed branch:
// a union sub-type against a non-union supertype behaves differently
// under strict vs. weak mode.
func TestWeakUnionCheckSubDisjunction(t *testing.T) {
	sub := Union{Members: []Type{Number, String}}
	sup := Number

	if Subtype(sub, sup, Options{}, nil) {
		t.Error("strict mode: number|string ≤ number should fail (string doesn't satisfy number)")
	}
	if !Subtype(sub, sup, Options{WeakUnionCheck: true}, nil) {
		t.Error("weak mode: number|string ≤ number should succeed (number disjunct satisfies)")
	}
}

func TestWeakUnionCheckAllMembersSatisfy(t *testing.T) {
	sub := Union{Members: []Type{Integer, Number}}
	sup := Number
	// Every disjunct satisfies sup, so both modes should accept.
	if !Subtype(sub, sup, Options{}, nil) {
		t.Error("strict mode should accept when every disjunct already satisfies sup")
	}
	if !Subtype(sub, sup, Options{WeakUnionCheck: true}, nil) {
		t.Error("weak mode should also accept when every disjunct satisfies sup")
	}
}

// TestSupUnionHasNoWeakStrictDistinction: T ≤ U1|U2 only ever needs one
// disjunct of the supertype to accept, with or without WeakUnionCheck.
func TestSupUnionHasNoWeakStrictDistinction(t *testing.T) {
	sup := Union{Members: []Type{Number, String}}
	strict := Subtype(String, sup, Options{}, nil)
	weak := Subtype(String, sup, Options{WeakUnionCheck: true}, nil)
	if !strict || !weak {
		t.Errorf("string ≤ number|string should hold regardless of WeakUnionCheck, got strict=%v weak=%v", strict, weak)
	}
}

func TestSubtypeRecordSealedRejectsExtraField(t *testing.T) {
	sealed := Record{Fields: []Field{{Name: "x", Type: Number}}, Sealed: true}
	wide := Record{Fields: []Field{{Name: "x", Type: Number}, {Name: "y", Type: String}}}
	if Subtype(wide, sealed, Options{}, nil) {
		t.Error("a sealed record should reject a sub-record with an extra field")
	}
}

func TestSubtypeFunctionContravariantParams(t *testing.T) {
	// sup accepts a narrower param (Integer); sub must accept at least
	// as much (Number ≥ Integer), so sub's param type must be a
	// supertype of sup's param type.
	sub := Function{Params: []Param{{Name: "x", Type: Number}}, Returns: Tuple{}}
	sup := Function{Params: []Param{{Name: "x", Type: Integer}}, Returns: Tuple{}}
	if !Subtype(sub, sup, Options{}, nil) {
		t.Error("fun(number) should be a subtype of fun(integer) (contravariant params)")
	}
	if Subtype(sup, sub, Options{}, nil) {
		t.Error("fun(integer) should not be a subtype of fun(number)")
	}
}

func TestWeakNilCheck(t *testing.T) {
	opt := Optional(String)
	if Subtype(opt, String, Options{}, nil) {
		t.Error("string? ≤ string should fail without WeakNilCheck")
	}
	if !Subtype(opt, String, Options{WeakNilCheck: true}, nil) {
		t.Error("string? ≤ string should succeed with WeakNilCheck")
	}
}

type fakeResolver map[string]Type

func (f fakeResolver) ResolveAlias(name string) (Type, bool) {
	t, ok := f[name]
	return t, ok
}

func TestSubtypeResolvesAlias(t *testing.T) {
	r := fakeResolver{"Id": String}
	if !Subtype(Alias{Name: "Id"}, String, Options{}, r) {
		t.Error("Alias(Id) should resolve to string through the resolver")
	}
}
