package mir

// TermKind enumerates block terminators.
type TermKind uint8

const (
	// TermNone marks an open block still being filled.
	TermNone TermKind = iota
	// TermReturn leaves the function.
	TermReturn
	// TermBr jumps unconditionally.
	TermBr
	// TermCondBr branches on a bool operand.
	TermCondBr
)

// Terminator closes a block. Every block carries exactly one.
type Terminator struct {
	Kind TermKind

	Return ReturnTerm
	Br     BrTerm
	CondBr CondBrTerm
}

// ReturnTerm returns Value when HasValue is set.
type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// BrTerm jumps to Target.
type BrTerm struct {
	Target BlockID
}

// CondBrTerm branches to Then or Else on Cond.
type CondBrTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

// Successors returns the terminator's target blocks.
func (t Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermBr:
		return []BlockID{t.Br.Target}
	case TermCondBr:
		return []BlockID{t.CondBr.Then, t.CondBr.Else}
	default:
		return nil
	}
}
