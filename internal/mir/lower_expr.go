package mir

import (
	"fmt"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/mono"
	"paw/internal/source"
	"paw/internal/types"
	"paw/internal/unify"
)

// lowerExpr evaluates one expression into the current block and returns
// the operand holding its value together with the value's type.
func (fl *funcLowerer) lowerExpr(expr *ast.Expr) (Operand, types.TypeID) {
	b := fl.lo.types.Builtins()
	if expr == nil {
		return fl.zeroValue(b.I32), b.I32
	}
	switch data := expr.Data.(type) {
	case ast.IntLitData:
		return IntConst(b.I32, data.Value), b.I32
	case ast.FloatLitData:
		return ConstOp(Const{Type: b.F64, Float: data.Value}), b.F64
	case ast.BoolLitData:
		v := int64(0)
		if data.Value {
			v = 1
		}
		return IntConst(b.Bool, v), b.Bool
	case ast.CharLitData:
		return IntConst(b.Char, int64(data.Value)), b.Char
	case ast.StringLitData:
		return ConstOp(Const{Type: b.String, Str: data.Value}), b.String

	case ast.IdentData:
		slot, slotType, ok := fl.lookupLocal(data.Name)
		if !ok {
			diag.Error(fl.lo.reporter, diag.GenUndefinedVariable, expr.Span,
				fmt.Sprintf("undefined variable %q", data.Name))
			return fl.zeroValue(b.I32), b.I32
		}
		v := fl.emitValue(Instr{Kind: InstrLoad, Type: slotType, Load: LoadInstr{Local: slot}})
		return ValueOp(v), slotType

	case ast.UnaryData:
		operand, operandType := fl.lowerExpr(data.Operand)
		op := UnOpNeg
		resultType := operandType
		if data.Op == ast.UnaryNot {
			op = UnOpNot
			resultType = b.Bool
		}
		v := fl.emitValue(Instr{Kind: InstrUn, Type: resultType, Un: UnInstr{Op: op, Operand: operand}})
		return ValueOp(v), resultType

	case ast.BinaryData:
		return fl.lowerBinary(data)

	case ast.CallData:
		return fl.lowerCall(expr.Span, data)

	case ast.MethodCallData:
		return fl.lowerMethodCall(expr.Span, data)

	case ast.QualifiedCallData:
		return fl.lowerQualifiedCall(expr.Span, data)

	case ast.FieldData:
		object, objectType := fl.lowerExpr(data.Object)
		field, ok := fl.lo.layouts.Field(objectType, data.Name)
		if !ok {
			diag.Error(fl.lo.reporter, diag.GenUndefinedField, expr.Span,
				fmt.Sprintf("type %s has no field %q", types.Label(fl.lo.types, objectType), data.Name))
			return fl.zeroValue(b.I32), b.I32
		}
		v := fl.emitValue(Instr{
			Kind:    InstrExtract,
			Type:    field.Type,
			Extract: ExtractInstr{Object: object, Index: IntConst(b.I32, int64(field.Index)), Offset: field.Offset},
		})
		return ValueOp(v), field.Type

	case ast.IndexData:
		object, objectType := fl.lowerExpr(data.Object)
		index, _ := fl.lowerExpr(data.Index)
		tt, ok := fl.lo.types.Lookup(objectType)
		if !ok || tt.Kind != types.KindArray {
			diag.Error(fl.lo.reporter, diag.GenInvalidContext, expr.Span,
				fmt.Sprintf("cannot index a value of type %s", types.Label(fl.lo.types, objectType)))
			return fl.zeroValue(b.I32), b.I32
		}
		v := fl.emitValue(Instr{
			Kind:    InstrExtract,
			Type:    tt.Elem,
			Extract: ExtractInstr{Object: object, Index: index},
		})
		return ValueOp(v), tt.Elem

	case ast.ArrayLitData:
		elems := make([]Operand, len(data.Elems))
		var elemType types.TypeID
		for i, e := range data.Elems {
			op, t := fl.lowerExpr(e)
			elems[i] = op
			if elemType == types.NoTypeID {
				elemType = t
			}
		}
		if elemType == types.NoTypeID {
			elemType = b.I32
		}
		arrType := fl.lo.types.Intern(types.MakeArray(elemType, uint32(len(elems))))
		v := fl.emitValue(Instr{Kind: InstrAggregate, Type: arrType, Aggregate: AggregateInstr{Elems: elems}})
		return ValueOp(v), arrType

	case ast.StructLitData:
		return fl.lowerStructLit(expr.Span, data)

	case ast.IfExprData:
		return fl.lowerIfExpr(data)

	case ast.RangeData:
		diag.Error(fl.lo.reporter, diag.GenInvalidContext, expr.Span,
			"range expressions are only valid in loop headers")
		return fl.zeroValue(b.I32), b.I32

	default:
		return fl.zeroValue(b.I32), b.I32
	}
}

func (fl *funcLowerer) lowerBinary(data ast.BinaryData) (Operand, types.TypeID) {
	b := fl.lo.types.Builtins()
	lhs, lhsType := fl.lowerExpr(data.Left)
	rhs, _ := fl.lowerExpr(data.Right)

	if data.Op.IsComparison() {
		v := fl.emitValue(Instr{
			Kind: InstrCmp,
			Type: b.Bool,
			Cmp:  CmpInstr{Pred: lowerCmpPred(data.Op), LHS: lhs, RHS: rhs},
		})
		return ValueOp(v), b.Bool
	}
	if data.Op.IsLogical() {
		op := BinOpAnd
		if data.Op == ast.BinOr {
			op = BinOpOr
		}
		v := fl.emitValue(Instr{Kind: InstrBin, Type: b.Bool, Bin: BinInstr{Op: op, LHS: lhs, RHS: rhs}})
		return ValueOp(v), b.Bool
	}

	resultType := lhsType
	if resultType == types.NoTypeID {
		resultType = b.I32
	}
	v := fl.emitValue(Instr{
		Kind: InstrBin,
		Type: resultType,
		Bin:  BinInstr{Op: lowerBinOp(data.Op), LHS: lhs, RHS: rhs},
	})
	return ValueOp(v), resultType
}

func lowerBinOp(op ast.ExprBinaryOp) BinOp {
	switch op {
	case ast.BinAdd:
		return BinOpAdd
	case ast.BinSub:
		return BinOpSub
	case ast.BinMul:
		return BinOpMul
	case ast.BinDiv:
		return BinOpDiv
	case ast.BinMod:
		return BinOpMod
	default:
		return BinOpAdd
	}
}

func lowerCmpPred(op ast.ExprBinaryOp) CmpPred {
	switch op {
	case ast.BinEq:
		return CmpEq
	case ast.BinNe:
		return CmpNe
	case ast.BinLt:
		return CmpLt
	case ast.BinLe:
		return CmpLe
	case ast.BinGt:
		return CmpGt
	default:
		return CmpGe
	}
}

// lowerCall resolves a plain call by declared name. Generic callees are
// routed to their mangled instance; an unknown name produces one
// diagnostic and a zero value so the pass keeps going.
func (fl *funcLowerer) lowerCall(span source.Span, data ast.CallData) (Operand, types.TypeID) {
	args := make([]Operand, len(data.Args))
	argTypes := make([]types.TypeID, len(data.Args))
	for i, a := range data.Args {
		args[i], argTypes[i] = fl.lowerExpr(a)
	}

	callee := data.Callee
	fn, declared := fl.lo.res.Fn(data.Callee)
	if declared && fn.IsGeneric() {
		typeArgs := fl.genericTypeArgs(fn, data.TypeArgs, argTypes)
		callee = mono.Mangle(fl.lo.types, fn.Name, typeArgs)
	}
	return fl.emitCall(span, callee, args)
}

// genericTypeArgs pins a generic callee's type arguments: explicit
// annotations win, otherwise they are re-derived from this instance's
// concrete argument types. Inference failures were already reported
// during resolution; here they only fall through to an unresolved name.
func (fl *funcLowerer) genericTypeArgs(fn *ast.FnDecl, explicit []*ast.TypeExpr, argTypes []types.TypeID) []types.TypeID {
	if len(explicit) > 0 {
		return fl.spec.Scope.LowerAll(explicit)
	}
	calleeScope := mono.NewTypeScope(fl.lo.types, fn.TypeParams)
	paramTypes := make([]types.TypeID, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = calleeScope.Lower(p.Type)
	}
	s, err := unify.InferFromCall(fl.lo.types, fn.TypeParams, paramTypes, argTypes)
	if err != nil {
		return nil
	}
	out := make([]types.TypeID, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		out[i] = s[tp]
	}
	return out
}

// lowerMethodCall synthesizes the callee from the receiver's type name
// plus the method name and passes the receiver as the first argument.
func (fl *funcLowerer) lowerMethodCall(span source.Span, data ast.MethodCallData) (Operand, types.TypeID) {
	recv, recvType := fl.lowerExpr(data.Recv)
	args := make([]Operand, 0, len(data.Args)+1)
	args = append(args, recv)
	for _, a := range data.Args {
		op, _ := fl.lowerExpr(a)
		args = append(args, op)
	}
	callee := mono.TypeName(fl.lo.types, recvType) + "_" + data.Method
	return fl.emitCall(span, callee, args)
}

// lowerQualifiedCall looks up the fully mangled instance name recorded
// for Type<Args>::method(...).
func (fl *funcLowerer) lowerQualifiedCall(span source.Span, data ast.QualifiedCallData) (Operand, types.TypeID) {
	args := make([]Operand, len(data.Args))
	for i, a := range data.Args {
		args[i], _ = fl.lowerExpr(a)
	}
	typeArgs := fl.spec.Scope.LowerAll(data.TypeArgs)
	callee := mono.MangleMethod(fl.lo.types, data.TypeName, typeArgs, data.Method)
	return fl.emitCall(span, callee, args)
}

// emitCall emits a call to a registered linkage name. Unregistered
// names yield a default zero value and exactly one diagnostic.
func (fl *funcLowerer) emitCall(span source.Span, callee string, args []Operand) (Operand, types.TypeID) {
	b := fl.lo.types.Builtins()
	sig, ok := fl.lo.sigs[callee]
	if !ok {
		diag.Error(fl.lo.reporter, diag.GenUndefinedFunction, span,
			fmt.Sprintf("call to undefined function %q", callee))
		return fl.zeroValue(b.I32), b.I32
	}
	if fl.isVoid(sig.result) {
		fl.emit(Instr{Kind: InstrCall, Call: CallInstr{Callee: callee, Args: args}})
		return fl.zeroValue(b.I32), b.Void
	}
	v := fl.emitValue(Instr{Kind: InstrCall, Type: sig.result, Call: CallInstr{Callee: callee, Args: args}})
	return ValueOp(v), sig.result
}

// lowerStructLit builds the aggregate in declared field order; fields
// the literal leaves out get zero values.
func (fl *funcLowerer) lowerStructLit(span source.Span, data ast.StructLitData) (Operand, types.TypeID) {
	b := fl.lo.types.Builtins()
	nameID := fl.lo.types.Strings.Intern(data.TypeName)
	var litType types.TypeID
	if len(data.TypeArgs) > 0 {
		litType = fl.lo.types.RegisterInstance(nameID, fl.spec.Scope.LowerAll(data.TypeArgs))
	} else {
		litType = fl.lo.types.RegisterNamed(nameID, span)
	}

	l, ok := fl.lo.layouts.Of(litType)
	if !ok {
		diag.Error(fl.lo.reporter, diag.GenInvalidContext, span,
			fmt.Sprintf("cannot resolve layout of type %s", types.Label(fl.lo.types, litType)))
		return fl.zeroValue(b.I32), b.I32
	}

	values := make(map[string]Operand, len(data.Fields))
	for _, f := range data.Fields {
		op, _ := fl.lowerExpr(f.Value)
		if _, known := fl.lo.layouts.Field(litType, f.Name); !known {
			diag.Error(fl.lo.reporter, diag.GenUndefinedField, span,
				fmt.Sprintf("type %s has no field %q", types.Label(fl.lo.types, litType), f.Name))
			continue
		}
		values[f.Name] = op
	}
	elems := make([]Operand, len(l.Fields))
	for i, f := range l.Fields {
		if op, ok := values[f.Name]; ok {
			elems[i] = op
			continue
		}
		elems[i] = fl.zeroValue(f.Type)
	}
	v := fl.emitValue(Instr{Kind: InstrAggregate, Type: litType, Aggregate: AggregateInstr{Elems: elems}})
	return ValueOp(v), litType
}

// lowerIfExpr evaluates each branch in its own block; the continuation
// block merges the two produced values with a phi. A missing else
// contributes a zero of the then-branch type.
func (fl *funcLowerer) lowerIfExpr(data ast.IfExprData) (Operand, types.TypeID) {
	cond, _ := fl.lowerExpr(data.Cond)
	thenBB := fl.newBlock()
	elseBB := fl.newBlock()
	joinBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	fl.cur = thenBB
	thenValue, thenType := fl.lowerExpr(data.Then)
	thenEnd := fl.cur
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: joinBB}})

	fl.cur = elseBB
	elseValue := fl.zeroValue(thenType)
	if data.Else != nil {
		elseValue, _ = fl.lowerExpr(data.Else)
	}
	elseEnd := fl.cur
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: joinBB}})

	fl.cur = joinBB
	v := fl.emitValue(Instr{
		Kind: InstrPhi,
		Type: thenType,
		Phi: PhiInstr{Arcs: []PhiArc{
			{From: thenEnd, Value: thenValue},
			{From: elseEnd, Value: elseValue},
		}},
	})
	return ValueOp(v), thenType
}
