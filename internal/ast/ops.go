package ast

// ExprUnaryOp enumerates unary operators.
type ExprUnaryOp uint8

const (
	UnaryNeg ExprUnaryOp = iota // -x
	UnaryNot                    // !x
)

func (op ExprUnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	default:
		return "?"
	}
}

// ExprBinaryOp enumerates binary operators.
type ExprBinaryOp uint8

const (
	BinAdd ExprBinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

func (op ExprBinaryOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator yields a bool from two
// operands of the same type.
func (op ExprBinaryOp) IsComparison() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	default:
		return false
	}
}

// IsLogical reports whether the operator is a boolean connective.
func (op ExprBinaryOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

// AssignOp enumerates assignment operators.
type AssignOp uint8

const (
	AssignSet AssignOp = iota // =
	AssignAdd                 // +=
	AssignSub                 // -=
	AssignMul                 // *=
	AssignDiv                 // /=
)

func (op AssignOp) String() string {
	switch op {
	case AssignSet:
		return "="
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	case AssignMul:
		return "*="
	case AssignDiv:
		return "/="
	default:
		return "?"
	}
}

// Binary returns the arithmetic operator a compound assignment applies.
func (op AssignOp) Binary() (ExprBinaryOp, bool) {
	switch op {
	case AssignAdd:
		return BinAdd, true
	case AssignSub:
		return BinSub, true
	case AssignMul:
		return BinMul, true
	case AssignDiv:
		return BinDiv, true
	default:
		return 0, false
	}
}
