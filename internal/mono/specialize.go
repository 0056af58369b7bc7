package mono

import (
	"paw/internal/ast"
	"paw/internal/source"
	"paw/internal/types"
)

// Specialization is one generic function pinned to concrete types: the
// mangled linkage name, the concretized signature, and the scope the
// code generator uses to lower type annotations in the shared body.
type Specialization struct {
	Name   string
	Fn     *ast.FnDecl
	Params []types.TypeID // concrete, one per value parameter
	Result types.TypeID
	Scope  *TypeScope
}

// SpecializeFn concretizes fn against args. The body stays shared; only
// the type scope differs between instances, so annotations inside the
// body resolve to the instance's types.
func SpecializeFn(in *types.Interner, fn *ast.FnDecl, args []types.TypeID) Specialization {
	scope := NewBoundTypeScope(in, fn.TypeParams, args)
	params := make([]types.TypeID, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = scope.Lower(p.Type)
	}
	return Specialization{
		Name:   Mangle(in, fn.Name, args),
		Fn:     fn,
		Params: params,
		Result: scope.Lower(fn.Result),
		Scope:  scope,
	}
}

// SpecializeMethod concretizes one method of a generic struct instance.
// The receiver parameter takes the owning instance type; receivers are
// passed by value like every other aggregate.
func SpecializeMethod(in *types.Interner, owner *ast.StructDecl, method *ast.FnDecl, args []types.TypeID) Specialization {
	scope := NewBoundTypeScope(in, owner.TypeParams, args)
	ownerType := ownerInstanceType(in, owner, args)
	params := make([]types.TypeID, len(method.Params))
	for i, p := range method.Params {
		if p.IsSelf {
			params[i] = ownerType
			continue
		}
		params[i] = scope.Lower(p.Type)
	}
	return Specialization{
		Name:   MangleMethod(in, owner.Name, args, method.Name),
		Fn:     method,
		Params: params,
		Result: scope.Lower(method.Result),
		Scope:  scope,
	}
}

// SpecializeEnumMethod concretizes one method of an enum declaration.
// The receiver takes the enum type by value, like struct methods.
func SpecializeEnumMethod(in *types.Interner, owner *ast.EnumDecl, method *ast.FnDecl, args []types.TypeID) Specialization {
	scope := NewBoundTypeScope(in, owner.TypeParams, args)
	ownerType := namedOrInstance(in, owner.Name, owner.Span, args)
	params := make([]types.TypeID, len(method.Params))
	for i, p := range method.Params {
		if p.IsSelf {
			params[i] = ownerType
			continue
		}
		params[i] = scope.Lower(p.Type)
	}
	return Specialization{
		Name:   MangleMethod(in, owner.Name, args, method.Name),
		Fn:     method,
		Params: params,
		Result: scope.Lower(method.Result),
		Scope:  scope,
	}
}

func ownerInstanceType(in *types.Interner, owner *ast.StructDecl, args []types.TypeID) types.TypeID {
	return namedOrInstance(in, owner.Name, owner.Span, args)
}

func namedOrInstance(in *types.Interner, name string, span source.Span, args []types.TypeID) types.TypeID {
	nameID := in.Strings.Intern(name)
	if len(args) == 0 {
		return in.RegisterNamed(nameID, span)
	}
	return in.RegisterInstance(nameID, args)
}
