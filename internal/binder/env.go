package binder

import "github.com/takeshiD/typua/internal/types"

// TypeEnvironment is the flow-sensitive mapping from symbol identity to
// current (possibly narrowed) type of spec §3 "TypeEnvironment": it is
// forked at branches and merged at joins by pointwise union, and is
// immutable by convention — Fork returns a new environment sharing the
// parent's backing map until a write copies it (mirroring a persistent
// map without pulling in an external library, since no example repo in
// the pack carries one).
type TypeEnvironment struct {
	parent *TypeEnvironment
	local  map[*Symbol]types.Type
}

// NewTypeEnvironment starts an empty root environment.
func NewTypeEnvironment() *TypeEnvironment {
	return &TypeEnvironment{local: map[*Symbol]types.Type{}}
}

// Get returns the current type of sym, walking to the parent
// environment if sym has not been narrowed/written in this frame, and
// finally falling back to the symbol's own declared/inferred baseline.
func (e *TypeEnvironment) Get(sym *Symbol) types.Type {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.local[sym]; ok {
			return t
		}
	}
	return sym.GetType()
}

// With returns a new environment identical to e except sym now maps to
// t — the narrowing/assignment write operation. e itself is left
// unmodified (spec §3 "immutable-by-convention").
func (e *TypeEnvironment) With(sym *Symbol, t types.Type) *TypeEnvironment {
	return &TypeEnvironment{parent: e, local: map[*Symbol]types.Type{sym: t}}
}

// WithAll returns a new environment with every (sym, type) pair in
// writes applied, for narrowing multiple symbols at once (e.g. an
// `and` chain narrowing several guards).
func (e *TypeEnvironment) WithAll(writes map[*Symbol]types.Type) *TypeEnvironment {
	if len(writes) == 0 {
		return e
	}
	local := make(map[*Symbol]types.Type, len(writes))
	for sym, t := range writes {
		local[sym] = t
	}
	return &TypeEnvironment{parent: e, local: local}
}

// Fork returns a child environment for a branch body — writes inside
// the branch do not leak to siblings or the parent until explicitly
// merged back with Join.
func (e *TypeEnvironment) Fork() *TypeEnvironment {
	return &TypeEnvironment{parent: e}
}

// flatten collects every (symbol, type) pair visible in e, nearest
// frame wins, for use by Join and by callers that need a concrete
// symbol set to merge over.
func (e *TypeEnvironment) flatten() map[*Symbol]types.Type {
	out := map[*Symbol]types.Type{}
	frames := []*TypeEnvironment{}
	for env := e; env != nil; env = env.parent {
		frames = append(frames, env)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		for sym, t := range frames[i].local {
			out[sym] = t
		}
	}
	return out
}

// Join merges branch environments back into base by pointwise union
// over every symbol any branch narrowed (spec §3 "merged at joins by
// pointwise union"). Symbols untouched by a given branch keep their
// base-environment type as that branch's contribution, so an `if`
// without an `else` still joins correctly against the unmodified
// fall-through path.
func Join(base *TypeEnvironment, branches ...*TypeEnvironment) *TypeEnvironment {
	touched := map[*Symbol]bool{}
	for _, b := range branches {
		for sym := range b.flatten() {
			touched[sym] = true
		}
	}
	if len(touched) == 0 {
		return base
	}
	merged := make(map[*Symbol]types.Type, len(touched))
	for sym := range touched {
		var acc types.Type
		for _, b := range branches {
			t := b.Get(sym)
			if acc == nil {
				acc = t
				continue
			}
			acc = types.Canon(types.Union{Members: []types.Type{acc, t}})
		}
		merged[sym] = acc
	}
	return &TypeEnvironment{parent: base, local: merged}
}
