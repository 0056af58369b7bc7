package mir

import (
	"paw/internal/types"
)

// OperandKind distinguishes constants from instruction results.
type OperandKind uint8

const (
	// OperandConst is an immediate constant.
	OperandConst OperandKind = iota
	// OperandValue references an instruction result.
	OperandValue
)

// Const is an immediate. Type's kind decides which payload field holds
// the value.
type Const struct {
	Type  types.TypeID
	Int   int64
	Float float64
	Str   string
}

// Operand is a constant or a prior instruction's result.
type Operand struct {
	Kind  OperandKind
	Value ValueID
	Const Const
}

// ConstOp wraps a constant as an operand.
func ConstOp(c Const) Operand {
	return Operand{Kind: OperandConst, Const: c}
}

// ValueOp wraps an instruction result as an operand.
func ValueOp(v ValueID) Operand {
	return Operand{Kind: OperandValue, Value: v}
}

// IntConst builds an integer immediate of the given type.
func IntConst(t types.TypeID, v int64) Operand {
	return ConstOp(Const{Type: t, Int: v})
}

// BinOp enumerates arithmetic instruction operators.
type BinOp uint8

const (
	BinOpAdd BinOp = iota
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpMod
	BinOpAnd
	BinOpOr
)

func (op BinOp) String() string {
	switch op {
	case BinOpAdd:
		return "add"
	case BinOpSub:
		return "sub"
	case BinOpMul:
		return "mul"
	case BinOpDiv:
		return "sdiv"
	case BinOpMod:
		return "srem"
	case BinOpAnd:
		return "and"
	case BinOpOr:
		return "or"
	default:
		return "?"
	}
}

// CmpPred enumerates signed comparison predicates.
type CmpPred uint8

const (
	CmpEq CmpPred = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (p CmpPred) String() string {
	switch p {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpLt:
		return "slt"
	case CmpLe:
		return "sle"
	case CmpGt:
		return "sgt"
	case CmpGe:
		return "sge"
	default:
		return "?"
	}
}

// UnOp enumerates unary instruction operators.
type UnOp uint8

const (
	UnOpNeg UnOp = iota
	UnOpNot
)

func (op UnOp) String() string {
	switch op {
	case UnOpNeg:
		return "neg"
	case UnOpNot:
		return "not"
	default:
		return "?"
	}
}

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrArg materializes one incoming function argument.
	InstrArg InstrKind = iota
	// InstrLoad reads a local slot.
	InstrLoad
	// InstrStore writes a local slot.
	InstrStore
	// InstrBin is integer/float arithmetic.
	InstrBin
	// InstrCmp is a signed comparison producing a bool.
	InstrCmp
	// InstrUn is unary negate/not.
	InstrUn
	// InstrCall invokes a function by linkage name.
	InstrCall
	// InstrPhi merges one value per predecessor block.
	InstrPhi
	// InstrAggregate builds a struct or array value from parts.
	InstrAggregate
	// InstrExtract reads one element/field out of an aggregate value.
	InstrExtract
	// InstrInsert writes one element/field into an aggregate value.
	InstrInsert
)

// Instr is one non-terminator instruction. Dst is NoValueID for pure
// effects (stores, void calls).
type Instr struct {
	Kind InstrKind
	Dst  ValueID
	Type types.TypeID

	Arg       ArgInstr
	Load      LoadInstr
	Store     StoreInstr
	Bin       BinInstr
	Cmp       CmpInstr
	Un        UnInstr
	Call      CallInstr
	Phi       PhiInstr
	Aggregate AggregateInstr
	Extract   ExtractInstr
	Insert    InsertInstr
}

// ArgInstr names the incoming argument at position Index.
type ArgInstr struct {
	Index uint32
}

// LoadInstr reads Local.
type LoadInstr struct {
	Local LocalID
}

// StoreInstr writes Src into Local.
type StoreInstr struct {
	Local LocalID
	Src   Operand
}

// BinInstr applies Op to LHS and RHS.
type BinInstr struct {
	Op  BinOp
	LHS Operand
	RHS Operand
}

// CmpInstr compares LHS and RHS under Pred.
type CmpInstr struct {
	Pred CmpPred
	LHS  Operand
	RHS  Operand
}

// UnInstr applies Op to Operand.
type UnInstr struct {
	Op      UnOp
	Operand Operand
}

// CallInstr invokes Callee with Args.
type CallInstr struct {
	Callee string
	Args   []Operand
}

// PhiArc is one incoming edge of a phi.
type PhiArc struct {
	From  BlockID
	Value Operand
}

// PhiInstr selects the incoming value of the executed predecessor.
type PhiInstr struct {
	Arcs []PhiArc
}

// AggregateInstr builds an aggregate from Elems in layout order.
type AggregateInstr struct {
	Elems []Operand
}

// ExtractInstr reads one element out of an aggregate. Field accesses
// carry a constant Index plus the resolved byte Offset; array indexing
// may carry a runtime Index with Offset zero.
type ExtractInstr struct {
	Object Operand
	Index  Operand
	Offset uint32
}

// InsertInstr writes Src at Index, yielding the updated aggregate.
type InsertInstr struct {
	Object Operand
	Index  Operand
	Offset uint32
	Src    Operand
}
