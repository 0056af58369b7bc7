package ast

import (
	"paw/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIntLit is an integer literal.
	ExprIntLit ExprKind = iota
	// ExprFloatLit is a floating-point literal.
	ExprFloatLit
	// ExprBoolLit is true/false.
	ExprBoolLit
	// ExprCharLit is a character literal.
	ExprCharLit
	// ExprStringLit is a string literal.
	ExprStringLit
	// ExprIdent is a variable reference.
	ExprIdent
	// ExprUnary is a unary operation.
	ExprUnary
	// ExprBinary is a binary operation.
	ExprBinary
	// ExprCall is a plain call: name(args) or name<T,...>(args).
	ExprCall
	// ExprMethodCall is an instance-method call: recv.method(args).
	ExprMethodCall
	// ExprQualifiedCall is a static call: Type<Args>::method(args).
	ExprQualifiedCall
	// ExprField is a field access: object.field.
	ExprField
	// ExprIndex is an index access: object[index].
	ExprIndex
	// ExprArrayLit is [a, b, c].
	ExprArrayLit
	// ExprStructLit is Type { field: value, ... }.
	ExprStructLit
	// ExprIf is a conditional expression producing a value.
	ExprIf
	// ExprRange is start..end or start..=end (loop headers only).
	ExprRange
)

func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "IntLit"
	case ExprFloatLit:
		return "FloatLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprCharLit:
		return "CharLit"
	case ExprStringLit:
		return "StringLit"
	case ExprIdent:
		return "Ident"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprQualifiedCall:
		return "QualifiedCall"
	case ExprField:
		return "Field"
	case ExprIndex:
		return "Index"
	case ExprArrayLit:
		return "ArrayLit"
	case ExprStructLit:
		return "StructLit"
	case ExprIf:
		return "If"
	case ExprRange:
		return "Range"
	default:
		return "Unknown"
	}
}

// Expr is an expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the interface for kind-specific expression payloads.
type ExprData interface {
	exprData()
}

// IntLitData holds data for ExprIntLit.
type IntLitData struct {
	Value int64
	Text  string
}

// FloatLitData holds data for ExprFloatLit.
type FloatLitData struct {
	Value float64
	Text  string
}

// BoolLitData holds data for ExprBoolLit.
type BoolLitData struct {
	Value bool
}

// CharLitData holds data for ExprCharLit.
type CharLitData struct {
	Value rune
}

// StringLitData holds data for ExprStringLit.
type StringLitData struct {
	Value string
}

// IdentData holds data for ExprIdent.
type IdentData struct {
	Name string
}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      ExprUnaryOp
	Operand *Expr
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    ExprBinaryOp
	Left  *Expr
	Right *Expr
}

// CallData holds data for ExprCall.
type CallData struct {
	Callee   string
	TypeArgs []*TypeExpr // explicit generics, may be empty
	Args     []*Expr
}

// MethodCallData holds data for ExprMethodCall.
type MethodCallData struct {
	Recv   *Expr
	Method string
	Args   []*Expr
}

// QualifiedCallData holds data for ExprQualifiedCall.
type QualifiedCallData struct {
	TypeName string
	TypeArgs []*TypeExpr
	Method   string
	Args     []*Expr
}

// FieldData holds data for ExprField.
type FieldData struct {
	Object *Expr
	Name   string
}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elems []*Expr
}

// StructLitField is one field initializer in a struct literal.
type StructLitField struct {
	Name  string
	Value *Expr
}

// StructLitData holds data for ExprStructLit.
type StructLitData struct {
	TypeName string
	TypeArgs []*TypeExpr
	Fields   []StructLitField
}

// IfExprData holds data for ExprIf. Else may be nil; the merge then
// supplies a zero-equivalent default of the then-branch type.
type IfExprData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

// RangeData holds data for ExprRange.
type RangeData struct {
	Start     *Expr
	End       *Expr
	Inclusive bool
}

func (IntLitData) exprData()        {}
func (FloatLitData) exprData()      {}
func (BoolLitData) exprData()       {}
func (CharLitData) exprData()       {}
func (StringLitData) exprData()     {}
func (IdentData) exprData()         {}
func (UnaryData) exprData()         {}
func (BinaryData) exprData()        {}
func (CallData) exprData()          {}
func (MethodCallData) exprData()    {}
func (QualifiedCallData) exprData() {}
func (FieldData) exprData()         {}
func (IndexData) exprData()         {}
func (ArrayLitData) exprData()      {}
func (StructLitData) exprData()     {}
func (IfExprData) exprData()        {}
func (RangeData) exprData()         {}
