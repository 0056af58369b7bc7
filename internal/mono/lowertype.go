package mono

import (
	"paw/internal/ast"
	"paw/internal/types"
)

// TypeScope resolves type names while lowering annotations: the generic
// parameters in scope plus the declared nominal types.
type TypeScope struct {
	in     *types.Interner
	params map[string]types.TypeID
}

// NewTypeScope builds a scope over in with the given generic parameter
// names bound to fresh parameter types.
func NewTypeScope(in *types.Interner, typeParams []string) *TypeScope {
	sc := &TypeScope{in: in, params: make(map[string]types.TypeID, len(typeParams))}
	for _, name := range typeParams {
		sc.params[name] = in.RegisterParam(in.Strings.Intern(name))
	}
	return sc
}

// Lower converts a syntactic type to its interned TypeID. Unknown names
// become nominal types on first sight; layout resolution decides later
// whether they were ever declared.
func (sc *TypeScope) Lower(te *ast.TypeExpr) types.TypeID {
	if te == nil {
		return sc.in.Builtins().Void
	}
	switch te.Kind {
	case ast.TypeName:
		if id, ok := sc.params[te.Name]; ok {
			return id
		}
		if id, ok := Primitive(sc.in, te.Name); ok {
			return id
		}
		return sc.in.RegisterNamed(sc.in.Strings.Intern(te.Name), te.Span)
	case ast.TypePointer:
		return sc.in.Intern(types.MakePointer(sc.Lower(te.Elem)))
	case ast.TypeArray:
		count := te.Count
		if count == ast.ArrayNoLength {
			count = types.ArrayDynamicLength
		}
		return sc.in.Intern(types.MakeArray(sc.Lower(te.Elem), count))
	case ast.TypeInstance:
		args := make([]types.TypeID, len(te.Args))
		for i, arg := range te.Args {
			args[i] = sc.Lower(arg)
		}
		return sc.in.RegisterInstance(sc.in.Strings.Intern(te.Name), args)
	default:
		return sc.in.Builtins().Invalid
	}
}

// NewBoundTypeScope binds each name to the concrete type at the same
// position, so annotations mentioning the parameters lower straight to
// concrete types.
func NewBoundTypeScope(in *types.Interner, names []string, args []types.TypeID) *TypeScope {
	sc := &TypeScope{in: in, params: make(map[string]types.TypeID, len(names))}
	for i, name := range names {
		if i < len(args) {
			sc.params[name] = args[i]
		}
	}
	return sc
}

// LowerAll lowers a slice of type annotations.
func (sc *TypeScope) LowerAll(tes []*ast.TypeExpr) []types.TypeID {
	out := make([]types.TypeID, len(tes))
	for i, te := range tes {
		out[i] = sc.Lower(te)
	}
	return out
}

// Primitive maps a primitive type name to its builtin TypeID.
func Primitive(in *types.Interner, name string) (types.TypeID, bool) {
	b := in.Builtins()
	switch name {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "string":
		return b.String, true
	case "i8":
		return b.I8, true
	case "i16":
		return b.I16, true
	case "i32":
		return b.I32, true
	case "i64":
		return b.I64, true
	case "u8":
		return b.U8, true
	case "u16":
		return b.U16, true
	case "u32":
		return b.U32, true
	case "u64":
		return b.U64, true
	case "f32":
		return b.F32, true
	case "f64":
		return b.F64, true
	default:
		return types.NoTypeID, false
	}
}
