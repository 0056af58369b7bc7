package ast

import (
	"strings"

	"paw/internal/source"
)

// TypeExprKind enumerates syntactic type forms.
type TypeExprKind uint8

const (
	// TypeName is a bare identifier: a primitive, a declared type, or a
	// generic parameter (resolution decides which).
	TypeName TypeExprKind = iota
	// TypePointer is *T.
	TypePointer
	// TypeArray is [T] or [T; N].
	TypeArray
	// TypeInstance is Name<Args...>.
	TypeInstance
)

// TypeExpr is the syntactic form of a type annotation.
type TypeExpr struct {
	Kind  TypeExprKind
	Span  source.Span
	Name  string      // for TypeName, TypeInstance
	Elem  *TypeExpr   // for TypePointer, TypeArray
	Count uint32      // for TypeArray; ArrayNoLength when absent
	Args  []*TypeExpr // for TypeInstance
}

// ArrayNoLength marks array type syntax without an explicit length.
const ArrayNoLength = ^uint32(0)

func (t *TypeExpr) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case TypeName:
		return t.Name
	case TypePointer:
		return "*" + t.Elem.String()
	case TypeArray:
		return "[" + t.Elem.String() + "]"
	case TypeInstance:
		parts := make([]string, len(t.Args))
		for i, arg := range t.Args {
			parts[i] = arg.String()
		}
		return t.Name + "<" + strings.Join(parts, ", ") + ">"
	default:
		return "?"
	}
}
