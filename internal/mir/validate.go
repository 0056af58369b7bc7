package mir

import (
	"fmt"
)

// Validate checks the structural invariants of a generated module:
// every block terminated exactly once, every branch target in range,
// and every phi arc arriving from an actual predecessor.
func Validate(m *Module) error {
	for _, f := range m.Funcs {
		if err := ValidateFunc(f); err != nil {
			return fmt.Errorf("fn %s: %w", f.Name, err)
		}
	}
	return nil
}

// ValidateFunc checks a single function.
func ValidateFunc(f *Func) error {
	if int(f.Entry) >= len(f.Blocks) {
		return fmt.Errorf("entry bb%d out of range", f.Entry)
	}

	preds := make(map[BlockID][]BlockID)
	for i := range f.Blocks {
		b := &f.Blocks[i]
		if !b.Terminated() {
			return fmt.Errorf("bb%d is not terminated", b.ID)
		}
		for _, succ := range b.Term.Successors() {
			if int(succ) >= len(f.Blocks) {
				return fmt.Errorf("bb%d branches to out-of-range bb%d", b.ID, succ)
			}
			preds[succ] = append(preds[succ], b.ID)
		}
	}

	for i := range f.Blocks {
		b := &f.Blocks[i]
		for j := range b.Instrs {
			instr := &b.Instrs[j]
			if err := checkOperands(f, instr); err != nil {
				return fmt.Errorf("bb%d: %w", b.ID, err)
			}
			if instr.Kind != InstrPhi {
				continue
			}
			if j > 0 && b.Instrs[j-1].Kind != InstrPhi {
				return fmt.Errorf("bb%d: phi after non-phi instruction", b.ID)
			}
			for _, arc := range instr.Phi.Arcs {
				if !containsBlock(preds[b.ID], arc.From) {
					return fmt.Errorf("bb%d: phi arc from bb%d which is not a predecessor", b.ID, arc.From)
				}
			}
		}
	}
	return nil
}

func checkOperands(f *Func, instr *Instr) error {
	check := func(op Operand) error {
		if op.Kind == OperandValue && op.Value >= f.NumValues {
			return fmt.Errorf("operand references unknown value %%%d", op.Value)
		}
		return nil
	}
	var ops []Operand
	switch instr.Kind {
	case InstrStore:
		ops = []Operand{instr.Store.Src}
	case InstrBin:
		ops = []Operand{instr.Bin.LHS, instr.Bin.RHS}
	case InstrCmp:
		ops = []Operand{instr.Cmp.LHS, instr.Cmp.RHS}
	case InstrUn:
		ops = []Operand{instr.Un.Operand}
	case InstrCall:
		ops = instr.Call.Args
	case InstrAggregate:
		ops = instr.Aggregate.Elems
	case InstrExtract:
		ops = []Operand{instr.Extract.Object, instr.Extract.Index}
	case InstrInsert:
		ops = []Operand{instr.Insert.Object, instr.Insert.Index, instr.Insert.Src}
	case InstrPhi:
		for _, arc := range instr.Phi.Arcs {
			ops = append(ops, arc.Value)
		}
	}
	for _, op := range ops {
		if err := check(op); err != nil {
			return err
		}
	}
	switch instr.Kind {
	case InstrLoad:
		if int(instr.Load.Local) >= len(f.Locals) {
			return fmt.Errorf("load from unknown local %d", instr.Load.Local)
		}
	case InstrStore:
		if int(instr.Store.Local) >= len(f.Locals) {
			return fmt.Errorf("store to unknown local %d", instr.Store.Local)
		}
	}
	return nil
}

func containsBlock(blocks []BlockID, id BlockID) bool {
	for _, b := range blocks {
		if b == id {
			return true
		}
	}
	return false
}
