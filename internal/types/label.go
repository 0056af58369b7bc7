package types

import (
	"fmt"
	"strings"

	"paw/internal/source"
)

// Label returns a user-friendly label for a TypeID, e.g. `Vec<i32>`.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if typesIn == nil || id == NoTypeID {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("u%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", tt.Width)
	case KindPointer:
		return "*" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindArray:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.Count == ArrayDynamicLength {
			return "[" + elem + "]"
		}
		return fmt.Sprintf("[%s; %d]", elem, tt.Count)
	case KindNamed:
		info, ok := typesIn.NamedInfo(id)
		if !ok {
			return "?"
		}
		return lookupNameFallback(typesIn, info.Name)
	case KindGenericParam:
		if name := typesIn.ParamName(id); name != "" {
			return name
		}
		return "T"
	case KindInstance:
		info, ok := typesIn.InstanceInfo(id)
		if !ok {
			return "?"
		}
		parts := make([]string, len(info.Args))
		for i, arg := range info.Args {
			parts[i] = labelDepth(typesIn, arg, depth+1)
		}
		return lookupNameFallback(typesIn, info.Name) + "<" + strings.Join(parts, ", ") + ">"
	default:
		return "?"
	}
}

func lookupNameFallback(typesIn *Interner, id source.StringID) string {
	if typesIn.Strings == nil {
		return "?"
	}
	name, ok := typesIn.Strings.Lookup(id)
	if !ok || name == "" {
		return "?"
	}
	return name
}
