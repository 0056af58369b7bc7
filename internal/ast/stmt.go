package ast

import (
	"paw/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtLet is a let binding.
	StmtLet StmtKind = iota
	// StmtAssign is assignment or compound assignment.
	StmtAssign
	// StmtReturn is a return statement.
	StmtReturn
	// StmtIf is an if/else statement.
	StmtIf
	// StmtLoop covers all loop forms.
	StmtLoop
	// StmtBreak is a break statement.
	StmtBreak
	// StmtContinue is a continue statement.
	StmtContinue
	// StmtExpr is an expression statement.
	StmtExpr
	// StmtBlock is a nested block.
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtLoop:
		return "Loop"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtExpr:
		return "Expr"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt is a statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the interface for kind-specific statement payloads.
type StmtData interface {
	stmtData()
}

// Block is an ordered statement list.
type Block struct {
	Span  source.Span
	Stmts []Stmt
}

// LetData holds data for StmtLet. Type may be nil when inferred from the
// initializer.
type LetData struct {
	Name    string
	Mutable bool
	Type    *TypeExpr
	Value   *Expr
}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target *Expr
	Op     AssignOp
	Value  *Expr
}

// ReturnData holds data for StmtReturn. Value may be nil.
type ReturnData struct {
	Value *Expr
}

// IfStmtData holds data for StmtIf. Else may be nil.
type IfStmtData struct {
	Cond *Expr
	Then *Block
	Else *Block
}

// LoopKind distinguishes the loop forms.
type LoopKind uint8

const (
	// LoopCond is `loop cond { }` / `while cond { }`.
	LoopCond LoopKind = iota
	// LoopInfinite is `loop { }`.
	LoopInfinite
	// LoopRange is `loop i in start..end { }`.
	LoopRange
)

// LoopData holds data for StmtLoop.
type LoopData struct {
	Kind LoopKind
	Cond *Expr // LoopCond
	Var  string
	// LoopRange bounds; Inclusive selects ..= semantics.
	Start     *Expr
	End       *Expr
	Inclusive bool
	Body      *Block
}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

// BlockStmtData holds data for StmtBlock.
type BlockStmtData struct {
	Block *Block
}

// BreakData holds data for StmtBreak.
type BreakData struct{}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (LetData) stmtData()       {}
func (AssignData) stmtData()    {}
func (ReturnData) stmtData()    {}
func (IfStmtData) stmtData()    {}
func (LoopData) stmtData()      {}
func (ExprStmtData) stmtData()  {}
func (BlockStmtData) stmtData() {}
func (BreakData) stmtData()     {}
func (ContinueData) stmtData()  {}
