package mir_test

import (
	"fmt"

	"paw/internal/mir"
)

// The lowering tests check observable behavior rather than exact
// instruction text, so this file carries a tiny reference interpreter
// over the block graph.

type val struct {
	i   int64
	f   float64
	s   string
	agg []val
}

func intVal(v int64) val { return val{i: v} }

const maxSteps = 100000

// runFunc executes one function until it returns.
func runFunc(m *mir.Module, name string, args []val) (val, error) {
	f, ok := m.Func(name)
	if !ok {
		return val{}, fmt.Errorf("no function %q", name)
	}
	locals := make([]val, len(f.Locals))
	values := make([]val, f.NumValues)

	operand := func(op mir.Operand) val {
		if op.Kind == mir.OperandConst {
			return val{i: op.Const.Int, f: op.Const.Float, s: op.Const.Str}
		}
		return values[op.Value]
	}

	prev := f.Entry
	cur := f.Entry
	for step := 0; step < maxSteps; step++ {
		block := f.Block(cur)
		if block == nil {
			return val{}, fmt.Errorf("%s: block bb%d out of range", name, cur)
		}
		for _, instr := range block.Instrs {
			result, err := execInstr(m, f, instr, args, locals, values, operand, prev)
			if err != nil {
				return val{}, err
			}
			if instr.Dst != mir.NoValueID {
				values[instr.Dst] = result
			}
		}
		switch block.Term.Kind {
		case mir.TermReturn:
			if block.Term.Return.HasValue {
				return operand(block.Term.Return.Value), nil
			}
			return val{}, nil
		case mir.TermBr:
			prev, cur = cur, block.Term.Br.Target
		case mir.TermCondBr:
			prev = cur
			if operand(block.Term.CondBr.Cond).i != 0 {
				cur = block.Term.CondBr.Then
			} else {
				cur = block.Term.CondBr.Else
			}
		default:
			return val{}, fmt.Errorf("%s: bb%d has no terminator", name, cur)
		}
	}
	return val{}, fmt.Errorf("%s: did not terminate in %d steps", name, maxSteps)
}

func execInstr(m *mir.Module, f *mir.Func, instr mir.Instr, args, locals, values []val, operand func(mir.Operand) val, prev mir.BlockID) (val, error) {
	switch instr.Kind {
	case mir.InstrArg:
		if int(instr.Arg.Index) >= len(args) {
			return val{}, fmt.Errorf("%s: missing argument %d", f.Name, instr.Arg.Index)
		}
		return args[instr.Arg.Index], nil

	case mir.InstrLoad:
		return locals[instr.Load.Local], nil

	case mir.InstrStore:
		locals[instr.Store.Local] = operand(instr.Store.Src)
		return val{}, nil

	case mir.InstrBin:
		lhs, rhs := operand(instr.Bin.LHS), operand(instr.Bin.RHS)
		switch instr.Bin.Op {
		case mir.BinOpAdd:
			return val{i: lhs.i + rhs.i, f: lhs.f + rhs.f}, nil
		case mir.BinOpSub:
			return val{i: lhs.i - rhs.i, f: lhs.f - rhs.f}, nil
		case mir.BinOpMul:
			return val{i: lhs.i * rhs.i, f: lhs.f * rhs.f}, nil
		case mir.BinOpDiv:
			if rhs.i == 0 {
				return val{}, fmt.Errorf("%s: division by zero", f.Name)
			}
			return intVal(lhs.i / rhs.i), nil
		case mir.BinOpMod:
			if rhs.i == 0 {
				return val{}, fmt.Errorf("%s: division by zero", f.Name)
			}
			return intVal(lhs.i % rhs.i), nil
		case mir.BinOpAnd:
			if lhs.i != 0 && rhs.i != 0 {
				return intVal(1), nil
			}
			return intVal(0), nil
		case mir.BinOpOr:
			if lhs.i != 0 || rhs.i != 0 {
				return intVal(1), nil
			}
			return intVal(0), nil
		}
		return val{}, fmt.Errorf("%s: unknown binop", f.Name)

	case mir.InstrCmp:
		lhs, rhs := operand(instr.Cmp.LHS), operand(instr.Cmp.RHS)
		var ok bool
		switch instr.Cmp.Pred {
		case mir.CmpEq:
			ok = lhs.i == rhs.i
		case mir.CmpNe:
			ok = lhs.i != rhs.i
		case mir.CmpLt:
			ok = lhs.i < rhs.i
		case mir.CmpLe:
			ok = lhs.i <= rhs.i
		case mir.CmpGt:
			ok = lhs.i > rhs.i
		case mir.CmpGe:
			ok = lhs.i >= rhs.i
		}
		if ok {
			return intVal(1), nil
		}
		return intVal(0), nil

	case mir.InstrUn:
		v := operand(instr.Un.Operand)
		if instr.Un.Op == mir.UnOpNot {
			if v.i == 0 {
				return intVal(1), nil
			}
			return intVal(0), nil
		}
		return val{i: -v.i, f: -v.f}, nil

	case mir.InstrCall:
		callArgs := make([]val, len(instr.Call.Args))
		for i, a := range instr.Call.Args {
			callArgs[i] = operand(a)
		}
		return runFunc(m, instr.Call.Callee, callArgs)

	case mir.InstrPhi:
		for _, arc := range instr.Phi.Arcs {
			if arc.From == prev {
				return operand(arc.Value), nil
			}
		}
		return val{}, fmt.Errorf("%s: phi has no arc from bb%d", f.Name, prev)

	case mir.InstrAggregate:
		elems := make([]val, len(instr.Aggregate.Elems))
		for i, e := range instr.Aggregate.Elems {
			elems[i] = operand(e)
		}
		return val{agg: elems}, nil

	case mir.InstrExtract:
		obj := operand(instr.Extract.Object)
		idx := operand(instr.Extract.Index).i
		if idx < 0 || int(idx) >= len(obj.agg) {
			return val{}, fmt.Errorf("%s: extract index %d out of range %d", f.Name, idx, len(obj.agg))
		}
		return obj.agg[idx], nil

	case mir.InstrInsert:
		obj := operand(instr.Insert.Object)
		idx := operand(instr.Insert.Index).i
		if idx < 0 || int(idx) >= len(obj.agg) {
			return val{}, fmt.Errorf("%s: insert index %d out of range %d", f.Name, idx, len(obj.agg))
		}
		out := val{agg: append([]val(nil), obj.agg...)}
		out.agg[idx] = operand(instr.Insert.Src)
		return out, nil
	}
	return val{}, fmt.Errorf("%s: unknown instruction kind %d", f.Name, instr.Kind)
}
