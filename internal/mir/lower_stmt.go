package mir

import (
	"fmt"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/types"
)

func (fl *funcLowerer) lowerBlock(block *ast.Block) {
	fl.pushScope()
	for i := range block.Stmts {
		fl.lowerStmt(&block.Stmts[i])
	}
	fl.popScope()
}

func (fl *funcLowerer) lowerStmt(stmt *ast.Stmt) {
	switch data := stmt.Data.(type) {
	case ast.LetData:
		value, valueType := fl.lowerExpr(data.Value)
		if data.Type != nil {
			valueType = fl.spec.Scope.Lower(data.Type)
		}
		slot := fl.defineLocal(data.Name, valueType)
		fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: value}})

	case ast.AssignData:
		fl.lowerAssign(stmt, data)

	case ast.ReturnData:
		term := ReturnTerm{}
		if data.Value != nil {
			value, _ := fl.lowerExpr(data.Value)
			term = ReturnTerm{HasValue: true, Value: value}
		} else if !fl.isVoid(fl.fn.Result) {
			term = ReturnTerm{HasValue: true, Value: fl.zeroValue(fl.fn.Result)}
		}
		fl.setTerm(Terminator{Kind: TermReturn, Return: term})

	case ast.IfStmtData:
		fl.lowerIfStmt(data)

	case ast.LoopData:
		switch data.Kind {
		case ast.LoopCond:
			fl.lowerCondLoop(data)
		case ast.LoopRange:
			fl.lowerRangeLoop(data)
		case ast.LoopInfinite:
			fl.lowerInfiniteLoop(data)
		}

	case ast.ExprStmtData:
		fl.lowerExpr(data.Expr)

	case ast.BlockStmtData:
		fl.lowerBlock(data.Block)
	}

	switch stmt.Kind {
	case ast.StmtBreak:
		if len(fl.loopStack) == 0 {
			diag.Warning(fl.lo.reporter, diag.GenLoopContext, stmt.Span, "break outside of a loop has no effect")
			return
		}
		ctx := fl.loopStack[len(fl.loopStack)-1]
		fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: ctx.breakTarget}})
	case ast.StmtContinue:
		if len(fl.loopStack) == 0 {
			diag.Warning(fl.lo.reporter, diag.GenLoopContext, stmt.Span, "continue outside of a loop has no effect")
			return
		}
		ctx := fl.loopStack[len(fl.loopStack)-1]
		fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: ctx.continueTarget}})
	}
}

func (fl *funcLowerer) lowerAssign(stmt *ast.Stmt, data ast.AssignData) {
	switch target := data.Target.Data.(type) {
	case ast.IdentData:
		slot, slotType, ok := fl.lookupLocal(target.Name)
		if !ok {
			diag.Error(fl.lo.reporter, diag.GenUndefinedVariable, data.Target.Span,
				fmt.Sprintf("assignment to undefined variable %q", target.Name))
			fl.lowerExpr(data.Value)
			return
		}
		value := fl.assignValue(data, slot, slotType)
		fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: value}})

	case ast.FieldData:
		fl.lowerAggregateAssign(data, target.Object, func(objType types.TypeID) (Operand, uint32, types.TypeID, bool) {
			field, ok := fl.lo.layouts.Field(objType, target.Name)
			if !ok {
				diag.Error(fl.lo.reporter, diag.GenUndefinedField, data.Target.Span,
					fmt.Sprintf("type %s has no field %q", types.Label(fl.lo.types, objType), target.Name))
				return Operand{}, 0, types.NoTypeID, false
			}
			b := fl.lo.types.Builtins()
			return IntConst(b.I32, int64(field.Index)), field.Offset, field.Type, true
		})

	case ast.IndexData:
		fl.lowerAggregateAssign(data, target.Object, func(objType types.TypeID) (Operand, uint32, types.TypeID, bool) {
			index, _ := fl.lowerExpr(target.Index)
			tt, ok := fl.lo.types.Lookup(objType)
			if !ok || tt.Kind != types.KindArray {
				diag.Error(fl.lo.reporter, diag.GenInvalidContext, data.Target.Span,
					fmt.Sprintf("cannot index a value of type %s", types.Label(fl.lo.types, objType)))
				return Operand{}, 0, types.NoTypeID, false
			}
			return index, 0, tt.Elem, true
		})

	default:
		diag.Error(fl.lo.reporter, diag.GenInvalidContext, data.Target.Span, "invalid assignment target")
		fl.lowerExpr(data.Value)
	}
}

// lowerAggregateAssign handles `base.field = v` and `base[i] = v` when
// the base is a named local: load the aggregate, insert, store back.
func (fl *funcLowerer) lowerAggregateAssign(data ast.AssignData, object *ast.Expr, place func(types.TypeID) (Operand, uint32, types.TypeID, bool)) {
	ident, ok := object.Data.(ast.IdentData)
	if !ok {
		diag.Error(fl.lo.reporter, diag.GenInvalidContext, object.Span, "invalid assignment target")
		fl.lowerExpr(data.Value)
		return
	}
	slot, slotType, ok := fl.lookupLocal(ident.Name)
	if !ok {
		diag.Error(fl.lo.reporter, diag.GenUndefinedVariable, object.Span,
			fmt.Sprintf("assignment to undefined variable %q", ident.Name))
		fl.lowerExpr(data.Value)
		return
	}
	index, offset, elemType, ok := place(slotType)
	if !ok {
		fl.lowerExpr(data.Value)
		return
	}

	current := fl.emitValue(Instr{Kind: InstrLoad, Type: slotType, Load: LoadInstr{Local: slot}})
	value, _ := fl.lowerExpr(data.Value)
	if op, isCompound := data.Op.Binary(); isCompound {
		old := fl.emitValue(Instr{
			Kind:    InstrExtract,
			Type:    elemType,
			Extract: ExtractInstr{Object: ValueOp(current), Index: index, Offset: offset},
		})
		combined := fl.emitValue(Instr{
			Kind: InstrBin,
			Type: elemType,
			Bin:  BinInstr{Op: lowerBinOp(op), LHS: ValueOp(old), RHS: value},
		})
		value = ValueOp(combined)
	}
	updated := fl.emitValue(Instr{
		Kind:   InstrInsert,
		Type:   slotType,
		Insert: InsertInstr{Object: ValueOp(current), Index: index, Offset: offset, Src: value},
	})
	fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: ValueOp(updated)}})
}

// assignValue produces the value stored by an assignment. Compound
// forms load the current slot value first, then evaluate the
// right-hand side and apply the operator.
func (fl *funcLowerer) assignValue(data ast.AssignData, slot LocalID, slotType types.TypeID) Operand {
	op, isCompound := data.Op.Binary()
	if !isCompound {
		value, _ := fl.lowerExpr(data.Value)
		return value
	}
	current := fl.emitValue(Instr{Kind: InstrLoad, Type: slotType, Load: LoadInstr{Local: slot}})
	value, _ := fl.lowerExpr(data.Value)
	combined := fl.emitValue(Instr{
		Kind: InstrBin,
		Type: slotType,
		Bin:  BinInstr{Op: lowerBinOp(op), LHS: ValueOp(current), RHS: value},
	})
	return ValueOp(combined)
}

func (fl *funcLowerer) lowerIfStmt(data ast.IfStmtData) {
	cond, _ := fl.lowerExpr(data.Cond)
	thenBB := fl.newBlock()
	var elseBB BlockID
	joinBB := fl.newBlock()
	if data.Else != nil {
		elseBB = fl.newBlock()
	} else {
		elseBB = joinBB
	}
	fl.setTerm(Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	fl.cur = thenBB
	fl.lowerBlock(data.Then)
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: joinBB}})

	if data.Else != nil {
		fl.cur = elseBB
		fl.lowerBlock(data.Else)
		fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: joinBB}})
	}
	fl.cur = joinBB
}

// lowerCondLoop builds the three-block form: header (re-entered after
// the body), body, exit. continue targets the header.
func (fl *funcLowerer) lowerCondLoop(data ast.LoopData) {
	headerBB := fl.newBlock()
	bodyBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: headerBB}})
	fl.cur = headerBB
	cond, _ := fl.lowerExpr(data.Cond)
	fl.setTerm(Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: cond, Then: bodyBB, Else: exitBB}})

	fl.cur = bodyBB
	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: headerBB})
	fl.lowerBlock(data.Body)
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: headerBB}})

	fl.cur = exitBB
}

// lowerRangeLoop allocates the induction variable, then builds
// header/body/increment/exit blocks. Both bounds are evaluated exactly
// once before the loop is entered; mutating a bound inside the body
// does not change the trip count. Exclusive ranges compare slt,
// inclusive sle; the step is always 1. The binding is scoped to the
// loop and gone after exit.
func (fl *funcLowerer) lowerRangeLoop(data ast.LoopData) {
	start, indexType := fl.lowerExpr(data.Start)
	if indexType == types.NoTypeID {
		indexType = fl.lo.types.Builtins().I32
	}
	end, _ := fl.lowerExpr(data.End)

	fl.pushScope()
	slot := fl.defineLocal(data.Var, indexType)
	fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: start}})

	headerBB := fl.newBlock()
	bodyBB := fl.newBlock()
	incBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: headerBB}})
	fl.cur = headerBB
	pred := CmpLt
	if data.Inclusive {
		pred = CmpLe
	}
	current := fl.emitValue(Instr{Kind: InstrLoad, Type: indexType, Load: LoadInstr{Local: slot}})
	cond := fl.emitValue(Instr{
		Kind: InstrCmp,
		Type: fl.lo.types.Builtins().Bool,
		Cmp:  CmpInstr{Pred: pred, LHS: ValueOp(current), RHS: end},
	})
	fl.setTerm(Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: ValueOp(cond), Then: bodyBB, Else: exitBB}})

	fl.cur = bodyBB
	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: incBB})
	fl.lowerBlock(data.Body)
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: incBB}})

	fl.cur = incBB
	loaded := fl.emitValue(Instr{Kind: InstrLoad, Type: indexType, Load: LoadInstr{Local: slot}})
	next := fl.emitValue(Instr{
		Kind: InstrBin,
		Type: indexType,
		Bin:  BinInstr{Op: BinOpAdd, LHS: ValueOp(loaded), RHS: IntConst(indexType, 1)},
	})
	fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: ValueOp(next)}})
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: headerBB}})

	fl.popScope()
	fl.cur = exitBB
}

// lowerInfiniteLoop is a single body block branching back to itself;
// the only way out is break.
func (fl *funcLowerer) lowerInfiniteLoop(data ast.LoopData) {
	bodyBB := fl.newBlock()
	exitBB := fl.newBlock()

	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: bodyBB}})
	fl.cur = bodyBB
	fl.loopStack = append(fl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: bodyBB})
	fl.lowerBlock(data.Body)
	fl.loopStack = fl.loopStack[:len(fl.loopStack)-1]
	fl.setTerm(Terminator{Kind: TermBr, Br: BrTerm{Target: bodyBB}})

	fl.cur = exitBB
}
