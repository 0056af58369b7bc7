package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"paw/internal/types"
)

// Print writes the module as readable IR text, one function at a time.
func Print(w io.Writer, in *types.Interner, m *Module) {
	for i, f := range m.Funcs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		PrintFunc(w, in, f)
	}
}

// PrintFunc writes one function's block graph.
func PrintFunc(w io.Writer, in *types.Interner, f *Func) {
	var params []string
	for _, slot := range f.Params {
		local := f.Locals[slot]
		params = append(params, fmt.Sprintf("%s: %s", local.Name, types.Label(in, local.Type)))
	}
	fmt.Fprintf(w, "fn %s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), types.Label(in, f.Result))
	for i := range f.Blocks {
		b := &f.Blocks[i]
		fmt.Fprintf(w, "bb%d:\n", b.ID)
		for j := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", formatInstr(in, f, &b.Instrs[j]))
		}
		fmt.Fprintf(w, "  %s\n", formatTerm(&b.Term))
	}
	fmt.Fprintln(w, "}")
}

func formatInstr(in *types.Interner, f *Func, instr *Instr) string {
	dst := ""
	if instr.Dst != NoValueID {
		dst = fmt.Sprintf("%%%d = ", instr.Dst)
	}
	t := types.Label(in, instr.Type)
	switch instr.Kind {
	case InstrArg:
		return fmt.Sprintf("%sarg %d : %s", dst, instr.Arg.Index, t)
	case InstrLoad:
		return fmt.Sprintf("%sload %s : %s", dst, localName(f, instr.Load.Local), t)
	case InstrStore:
		return fmt.Sprintf("store %s, %s", localName(f, instr.Store.Local), formatOperand(instr.Store.Src))
	case InstrBin:
		return fmt.Sprintf("%s%s %s, %s : %s", dst, instr.Bin.Op, formatOperand(instr.Bin.LHS), formatOperand(instr.Bin.RHS), t)
	case InstrCmp:
		return fmt.Sprintf("%sicmp %s %s, %s", dst, instr.Cmp.Pred, formatOperand(instr.Cmp.LHS), formatOperand(instr.Cmp.RHS))
	case InstrUn:
		return fmt.Sprintf("%s%s %s : %s", dst, instr.Un.Op, formatOperand(instr.Un.Operand), t)
	case InstrCall:
		var args []string
		for _, a := range instr.Call.Args {
			args = append(args, formatOperand(a))
		}
		return fmt.Sprintf("%scall %s(%s)", dst, instr.Call.Callee, strings.Join(args, ", "))
	case InstrPhi:
		var arcs []string
		for _, arc := range instr.Phi.Arcs {
			arcs = append(arcs, fmt.Sprintf("[bb%d: %s]", arc.From, formatOperand(arc.Value)))
		}
		return fmt.Sprintf("%sphi %s : %s", dst, strings.Join(arcs, ", "), t)
	case InstrAggregate:
		var elems []string
		for _, e := range instr.Aggregate.Elems {
			elems = append(elems, formatOperand(e))
		}
		return fmt.Sprintf("%saggregate {%s} : %s", dst, strings.Join(elems, ", "), t)
	case InstrExtract:
		return fmt.Sprintf("%sextract %s[%s] +%d : %s", dst, formatOperand(instr.Extract.Object), formatOperand(instr.Extract.Index), instr.Extract.Offset, t)
	case InstrInsert:
		return fmt.Sprintf("%sinsert %s[%s] +%d, %s : %s", dst, formatOperand(instr.Insert.Object), formatOperand(instr.Insert.Index), instr.Insert.Offset, formatOperand(instr.Insert.Src), t)
	default:
		return "??"
	}
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return "ret " + formatOperand(t.Return.Value)
		}
		return "ret"
	case TermBr:
		return fmt.Sprintf("br bb%d", t.Br.Target)
	case TermCondBr:
		return fmt.Sprintf("condbr %s, bb%d, bb%d", formatOperand(t.CondBr.Cond), t.CondBr.Then, t.CondBr.Else)
	default:
		return "<unterminated>"
	}
}

func formatOperand(op Operand) string {
	if op.Kind == OperandValue {
		return "%" + strconv.FormatUint(uint64(op.Value), 10)
	}
	c := op.Const
	switch {
	case c.Str != "":
		return strconv.Quote(c.Str)
	case c.Float != 0:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	default:
		return strconv.FormatInt(c.Int, 10)
	}
}

func localName(f *Func, id LocalID) string {
	if int(id) >= len(f.Locals) {
		return "<bad local>"
	}
	return "$" + f.Locals[id].Name
}
