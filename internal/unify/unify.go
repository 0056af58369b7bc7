// Package unify implements structural unification over interned types.
//
// Substitutions map generic parameter names to concrete TypeIDs and are
// applied homomorphically; unification and application are pure functions
// over the immutable interned representation.
package unify

import (
	"errors"
	"fmt"

	"paw/internal/types"
)

var (
	// ErrMismatch reports structurally incompatible concrete types.
	ErrMismatch = errors.New("type mismatch")
	// ErrArgumentCountMismatch reports call arity differing from the
	// declared parameter count.
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
	// ErrTypeInferenceFailed reports a declared type parameter that never
	// received a binding.
	ErrTypeInferenceFailed = errors.New("type inference failed")
)

// Subst maps generic parameter names to concrete types.
type Subst map[string]types.TypeID

// Unify finds a substitution making t1 and t2 equal. A bare generic
// parameter on either side binds to the other side; otherwise both sides
// must be the same variant with structurally equal payloads. On mismatch
// no partial binding is retained.
func Unify(in *types.Interner, t1, t2 types.TypeID) (Subst, error) {
	s := make(Subst)
	if err := UnifyWithSubst(in, t1, t2, s); err != nil {
		return nil, err
	}
	return s, nil
}

// UnifyWithSubst unifies t1 with t2 consulting and updating s. When a
// parameter is already bound, the candidate must be structurally equal to
// the existing binding.
func UnifyWithSubst(in *types.Interner, t1, t2 types.TypeID, s Subst) error {
	if in == nil {
		return fmt.Errorf("unify: nil interner")
	}
	a := resolve(in, t1, s)
	b := resolve(in, t2, s)
	if a == b {
		return nil
	}

	if name := in.ParamName(a); name != "" {
		return bind(in, s, name, b)
	}
	if name := in.ParamName(b); name != "" {
		return bind(in, s, name, a)
	}

	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB || ta.Kind != tb.Kind {
		return mismatch(in, a, b)
	}

	switch ta.Kind {
	case types.KindPointer:
		return UnifyWithSubst(in, ta.Elem, tb.Elem, s)
	case types.KindArray:
		if ta.Count != tb.Count {
			return mismatch(in, a, b)
		}
		return UnifyWithSubst(in, ta.Elem, tb.Elem, s)
	case types.KindInstance:
		ia, _ := in.InstanceInfo(a)
		ib, _ := in.InstanceInfo(b)
		if ia == nil || ib == nil || ia.Name != ib.Name || len(ia.Args) != len(ib.Args) {
			return mismatch(in, a, b)
		}
		for i := range ia.Args {
			if err := UnifyWithSubst(in, ia.Args[i], ib.Args[i], s); err != nil {
				return err
			}
		}
		return nil
	default:
		// Same kind but distinct TypeIDs: differing widths or names.
		return mismatch(in, a, b)
	}
}

// InferFromCall unifies each declared parameter type with the matching
// argument type and checks that every declared type parameter is bound.
func InferFromCall(in *types.Interner, typeParams []string, paramTypes, argTypes []types.TypeID) (Subst, error) {
	if len(paramTypes) != len(argTypes) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d",
			ErrArgumentCountMismatch, len(paramTypes), len(argTypes))
	}
	s := make(Subst, len(typeParams))
	for i := range paramTypes {
		if err := UnifyWithSubst(in, paramTypes[i], argTypes[i], s); err != nil {
			return nil, err
		}
	}
	for _, name := range typeParams {
		if _, ok := s[name]; !ok {
			return nil, fmt.Errorf("%w: cannot infer type parameter %q", ErrTypeInferenceFailed, name)
		}
	}
	return s, nil
}

// Apply produces a new type with every bound generic parameter replaced by
// its concrete type, recursing through pointer, array and instance
// constructors. Types without parameters are returned unchanged.
func Apply(in *types.Interner, id types.TypeID, s Subst) types.TypeID {
	if in == nil || len(s) == 0 || !in.ContainsParams(id) {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindGenericParam:
		if repl, ok := s[in.ParamName(id)]; ok && repl != types.NoTypeID {
			return repl
		}
		return id
	case types.KindPointer, types.KindArray:
		elem := Apply(in, tt.Elem, s)
		if elem == tt.Elem {
			return id
		}
		clone := tt
		clone.Elem = elem
		return in.Intern(clone)
	case types.KindInstance:
		info, ok := in.InstanceInfo(id)
		if !ok {
			return id
		}
		args := make([]types.TypeID, len(info.Args))
		changed := false
		for i, arg := range info.Args {
			args[i] = Apply(in, arg, s)
			changed = changed || args[i] != arg
		}
		if !changed {
			return id
		}
		return in.RegisterInstance(info.Name, args)
	default:
		return id
	}
}

// resolve chases a bound parameter to its binding so repeated unification
// against an already-bound parameter sees the concrete type.
func resolve(in *types.Interner, id types.TypeID, s Subst) types.TypeID {
	if name := in.ParamName(id); name != "" {
		if bound, ok := s[name]; ok && bound != types.NoTypeID {
			return bound
		}
	}
	return id
}

func bind(in *types.Interner, s Subst, name string, to types.TypeID) error {
	if existing, ok := s[name]; ok {
		if existing == to {
			return nil
		}
		return fmt.Errorf("%w: parameter %s already bound to %s, new candidate %s",
			ErrMismatch, name, types.Label(in, existing), types.Label(in, to))
	}
	s[name] = to
	return nil
}

func mismatch(in *types.Interner, a, b types.TypeID) error {
	return fmt.Errorf("%w: %s vs %s", ErrMismatch, types.Label(in, a), types.Label(in, b))
}
