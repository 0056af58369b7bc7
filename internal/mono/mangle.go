// Package mono owns monomorphization: deterministic name mangling and
// the instantiation table that maps (kind, base, type args) to exactly
// one record per unique key.
package mono

import (
	"fmt"
	"strings"

	"paw/internal/types"
)

// Mangle derives the linkage name for base instantiated with args:
// the base followed by "_" + TypeName(arg) per argument in order.
// Mangle("Vec", [i32]) == "Vec_i32".
func Mangle(in *types.Interner, base string, args []types.TypeID) string {
	if len(args) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	for _, arg := range args {
		sb.WriteByte('_')
		sb.WriteString(TypeName(in, arg))
	}
	return sb.String()
}

// MangleMethod composes the owning type's mangled name with the method
// name: Vec<i32>::push becomes Vec_i32_push.
func MangleMethod(in *types.Interner, owner string, args []types.TypeID, method string) string {
	return Mangle(in, owner, args) + "_" + method
}

// TypeName renders one type as a mangled-name component. It is total:
// every kind has a spelling, including nested instances and the
// ptr_/arr_ wrappers.
func TypeName(in *types.Interner, id types.TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch tt.Kind {
	case types.KindVoid:
		return "void"
	case types.KindBool:
		return "bool"
	case types.KindChar:
		return "char"
	case types.KindString:
		return "string"
	case types.KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case types.KindUint:
		return fmt.Sprintf("u%d", tt.Width)
	case types.KindFloat:
		return fmt.Sprintf("f%d", tt.Width)
	case types.KindPointer:
		return "ptr_" + TypeName(in, tt.Elem)
	case types.KindArray:
		return "arr_" + TypeName(in, tt.Elem)
	case types.KindNamed:
		info, ok := in.NamedInfo(id)
		if !ok {
			return "invalid"
		}
		return in.Strings.MustLookup(info.Name)
	case types.KindGenericParam:
		// Unbound parameters should not survive to mangling; keep the
		// name anyway so a bad instance is greppable in output.
		return in.ParamName(id)
	case types.KindInstance:
		info, ok := in.InstanceInfo(id)
		if !ok {
			return "invalid"
		}
		return Mangle(in, in.Strings.MustLookup(info.Name), info.Args)
	default:
		return "invalid"
	}
}
