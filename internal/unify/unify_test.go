package unify_test

import (
	"errors"
	"testing"

	"paw/internal/source"
	"paw/internal/types"
	"paw/internal/unify"
)

func newInterner() *types.Interner {
	return types.NewInterner(source.NewInterner())
}

func param(in *types.Interner, name string) types.TypeID {
	return in.RegisterParam(in.Strings.Intern(name))
}

func instance(in *types.Interner, name string, args ...types.TypeID) types.TypeID {
	return in.RegisterInstance(in.Strings.Intern(name), args)
}

func TestUnify_ParamBindsToConcrete(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	s, err := unify.Unify(in, tv, b.I32)
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if got := s["T"]; got != b.I32 {
		t.Errorf("T bound to %v, want i32", got)
	}

	// Binding works from either side.
	s, err = unify.Unify(in, b.I64, param(in, "U"))
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if got := s["U"]; got != b.I64 {
		t.Errorf("U bound to %v, want i64", got)
	}
}

func TestUnify_StructuralRecursion(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	ptrT := in.Intern(types.MakePointer(tv))
	ptrI32 := in.Intern(types.MakePointer(b.I32))
	s, err := unify.Unify(in, ptrT, ptrI32)
	if err != nil {
		t.Fatalf("pointer unification failed: %v", err)
	}
	if s["T"] != b.I32 {
		t.Errorf("T = %v, want i32", s["T"])
	}

	arrT := in.Intern(types.MakeArray(tv, 4))
	arrBool := in.Intern(types.MakeArray(b.Bool, 4))
	s, err = unify.Unify(in, arrT, arrBool)
	if err != nil {
		t.Fatalf("array unification failed: %v", err)
	}
	if s["T"] != b.Bool {
		t.Errorf("T = %v, want bool", s["T"])
	}

	vecT := instance(in, "Vec", tv)
	vecStr := instance(in, "Vec", b.String)
	s, err = unify.Unify(in, vecT, vecStr)
	if err != nil {
		t.Fatalf("instance unification failed: %v", err)
	}
	if s["T"] != b.String {
		t.Errorf("T = %v, want string", s["T"])
	}
}

func TestUnify_Mismatches(t *testing.T) {
	in := newInterner()
	b := in.Builtins()

	cases := []struct {
		name   string
		t1, t2 types.TypeID
	}{
		{"different_primitives", b.I32, b.Bool},
		{"different_widths", b.I32, b.I64},
		{"array_length", in.Intern(types.MakeArray(b.I32, 3)), in.Intern(types.MakeArray(b.I32, 4))},
		{"instance_base", instance(in, "Vec", b.I32), instance(in, "Box", b.I32)},
		{"instance_arity", instance(in, "Map", b.I32), instance(in, "Map", b.I32, b.I32)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := unify.Unify(in, tc.t1, tc.t2); !errors.Is(err, unify.ErrMismatch) {
				t.Errorf("Unify(%v, %v) err = %v, want ErrMismatch", tc.t1, tc.t2, err)
			}
		})
	}
}

func TestUnifyWithSubst_ConsistencyCheck(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	s := unify.Subst{}
	if err := unify.UnifyWithSubst(in, tv, b.I32, s); err != nil {
		t.Fatalf("first binding failed: %v", err)
	}
	// Same binding again is fine.
	if err := unify.UnifyWithSubst(in, tv, b.I32, s); err != nil {
		t.Fatalf("repeat binding failed: %v", err)
	}
	// A conflicting candidate fails.
	if err := unify.UnifyWithSubst(in, tv, b.Bool, s); !errors.Is(err, unify.ErrMismatch) {
		t.Errorf("conflicting binding err = %v, want ErrMismatch", err)
	}
}

func TestInferFromCall(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	s, err := unify.InferFromCall(in, []string{"T"},
		[]types.TypeID{tv, b.I32},
		[]types.TypeID{b.F64, b.I32})
	if err != nil {
		t.Fatalf("InferFromCall failed: %v", err)
	}
	if s["T"] != b.F64 {
		t.Errorf("T = %v, want f64", s["T"])
	}
}

func TestInferFromCall_ArgumentCountMismatch(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	_, err := unify.InferFromCall(in, []string{"T"},
		[]types.TypeID{tv},
		[]types.TypeID{b.I32, b.I32})
	if !errors.Is(err, unify.ErrArgumentCountMismatch) {
		t.Errorf("err = %v, want ErrArgumentCountMismatch", err)
	}
}

func TestInferFromCall_UnresolvedParam(t *testing.T) {
	in := newInterner()
	b := in.Builtins()

	// U never appears in the parameter list, so nothing can bind it.
	tv := param(in, "T")
	_, err := unify.InferFromCall(in, []string{"T", "U"},
		[]types.TypeID{tv},
		[]types.TypeID{b.I32})
	if !errors.Is(err, unify.ErrTypeInferenceFailed) {
		t.Fatalf("err = %v, want ErrTypeInferenceFailed", err)
	}
}

func TestApply(t *testing.T) {
	in := newInterner()
	b := in.Builtins()
	tv := param(in, "T")

	s := unify.Subst{"T": b.I32}

	// No parameters: identity.
	if got := unify.Apply(in, b.Bool, s); got != b.Bool {
		t.Errorf("Apply(bool) = %v, want bool", got)
	}
	// Leaf substitution.
	if got := unify.Apply(in, tv, s); got != b.I32 {
		t.Errorf("Apply(T) = %v, want i32", got)
	}
	// Recursion through constructors.
	ptrT := in.Intern(types.MakePointer(tv))
	wantPtr := in.Intern(types.MakePointer(b.I32))
	if got := unify.Apply(in, ptrT, s); got != wantPtr {
		t.Errorf("Apply(*T) = %v, want %v", got, wantPtr)
	}
	vecT := instance(in, "Vec", tv)
	wantVec := instance(in, "Vec", b.I32)
	if got := unify.Apply(in, vecT, s); got != wantVec {
		t.Errorf("Apply(Vec<T>) = %v, want %v", got, wantVec)
	}
}
