package mir

import (
	"fmt"

	"fortio.org/safecast"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/layout"
	"paw/internal/mono"
	"paw/internal/types"
)

// signature is what callers need to know about a callable: parameter
// and result types under its linkage name.
type signature struct {
	params []types.TypeID
	result types.TypeID
}

// Lowerer generates the module: one Func per concrete function, in a
// single pass over the non-generic declarations plus every recorded
// instantiation.
type Lowerer struct {
	types    *types.Interner
	table    *mono.Table
	res      *mono.Resolver
	layouts  *layout.Table
	reporter diag.Reporter

	sigs map[string]signature
}

// NewLowerer wires the code generator to the resolved program.
func NewLowerer(in *types.Interner, table *mono.Table, res *mono.Resolver, layouts *layout.Table, reporter diag.Reporter) *Lowerer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lowerer{
		types:    in,
		table:    table,
		res:      res,
		layouts:  layouts,
		reporter: reporter,
		sigs:     make(map[string]signature),
	}
}

// LowerProgram generates every concrete function: non-generic free
// functions and methods as declared, generic ones once per recorded
// instantiation.
func (lo *Lowerer) LowerProgram(name string, prog *ast.Program) *Module {
	out := &Module{Name: name}

	// Register every linkage name before generating bodies, so calls
	// can resolve signatures regardless of declaration order.
	for _, decl := range prog.Decls {
		switch decl.Kind {
		case ast.DeclFn:
			lo.registerFn(decl.Fn)
		case ast.DeclStruct:
			lo.registerStructMethods(decl.Struct)
		case ast.DeclEnum:
			lo.registerEnumMethods(decl.Enum)
		}
	}
	for _, inst := range lo.table.Instances() {
		lo.registerInstance(inst)
	}

	for _, decl := range prog.Decls {
		switch decl.Kind {
		case ast.DeclFn:
			if !decl.Fn.IsGeneric() {
				spec := mono.SpecializeFn(lo.types, decl.Fn, nil)
				out.AddFunc(lo.lowerFunc(spec, nil))
			}
		case ast.DeclStruct:
			if decl.Struct.IsGeneric() {
				continue
			}
			for _, m := range decl.Struct.Methods {
				spec := mono.SpecializeMethod(lo.types, decl.Struct, m, nil)
				out.AddFunc(lo.lowerFunc(spec, decl.Struct))
			}
		case ast.DeclEnum:
			if decl.Enum.IsGeneric() {
				continue
			}
			for _, m := range decl.Enum.Methods {
				spec := mono.SpecializeEnumMethod(lo.types, decl.Enum, m, nil)
				out.AddFunc(lo.lowerFunc(spec, nil))
			}
		}
	}
	for _, inst := range lo.table.Instances() {
		switch inst.Kind {
		case mono.InstanceFn:
			fn, ok := lo.res.Fn(inst.Base)
			if !ok {
				continue
			}
			spec := mono.SpecializeFn(lo.types, fn, inst.Args)
			out.AddFunc(lo.lowerFunc(spec, nil))
		case mono.InstanceMethod:
			if st, ok := lo.res.Struct(inst.Base); ok {
				method := findMethod(st.Methods, inst.Method)
				if method == nil {
					diag.Error(lo.reporter, diag.GenUndefinedMethod, st.Span,
						fmt.Sprintf("type %s has no method %s", inst.Base, inst.Method))
					continue
				}
				spec := mono.SpecializeMethod(lo.types, st, method, inst.Args)
				out.AddFunc(lo.lowerFunc(spec, st))
				continue
			}
			if en, ok := lo.res.Enum(inst.Base); ok {
				method := findMethod(en.Methods, inst.Method)
				if method == nil {
					diag.Error(lo.reporter, diag.GenUndefinedMethod, en.Span,
						fmt.Sprintf("type %s has no method %s", inst.Base, inst.Method))
					continue
				}
				spec := mono.SpecializeEnumMethod(lo.types, en, method, inst.Args)
				out.AddFunc(lo.lowerFunc(spec, nil))
			}
		}
		// Struct instances carry no code of their own; their layouts
		// materialize on first field access.
	}
	return out
}

func findMethod(methods []*ast.FnDecl, name string) *ast.FnDecl {
	for _, m := range methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (lo *Lowerer) registerFn(fn *ast.FnDecl) {
	if fn.IsGeneric() {
		return
	}
	spec := mono.SpecializeFn(lo.types, fn, nil)
	lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
}

func (lo *Lowerer) registerStructMethods(st *ast.StructDecl) {
	if st.IsGeneric() {
		return
	}
	for _, m := range st.Methods {
		spec := mono.SpecializeMethod(lo.types, st, m, nil)
		lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
	}
}

func (lo *Lowerer) registerEnumMethods(en *ast.EnumDecl) {
	if en.IsGeneric() {
		return
	}
	for _, m := range en.Methods {
		spec := mono.SpecializeEnumMethod(lo.types, en, m, nil)
		lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
	}
}

func (lo *Lowerer) registerInstance(inst mono.Instance) {
	switch inst.Kind {
	case mono.InstanceFn:
		fn, ok := lo.res.Fn(inst.Base)
		if !ok {
			return
		}
		spec := mono.SpecializeFn(lo.types, fn, inst.Args)
		lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
	case mono.InstanceMethod:
		if st, ok := lo.res.Struct(inst.Base); ok {
			if method := findMethod(st.Methods, inst.Method); method != nil {
				spec := mono.SpecializeMethod(lo.types, st, method, inst.Args)
				lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
			}
			return
		}
		if en, ok := lo.res.Enum(inst.Base); ok {
			if method := findMethod(en.Methods, inst.Method); method != nil {
				spec := mono.SpecializeEnumMethod(lo.types, en, method, inst.Args)
				lo.sigs[spec.Name] = signature{params: spec.Params, result: spec.Result}
			}
		}
	}
}

// loopCtx records where break/continue branch inside one loop.
type loopCtx struct {
	breakTarget    BlockID
	continueTarget BlockID
}

// funcLowerer owns the block graph and symbol table of the function
// currently being generated; both are discarded afterwards.
type funcLowerer struct {
	lo   *Lowerer
	fn   *Func
	spec mono.Specialization

	cur       BlockID
	nextValue ValueID
	scopes    []map[string]LocalID
	loopStack []loopCtx
}

func (lo *Lowerer) lowerFunc(spec mono.Specialization, owner *ast.StructDecl) *Func {
	fl := &funcLowerer{
		lo: lo,
		fn: &Func{
			Name:   spec.Name,
			Span:   spec.Fn.Span,
			Result: spec.Result,
		},
		spec:      spec,
		nextValue: 1,
	}
	fl.pushScope()
	entry := fl.newBlock()
	fl.cur = entry
	fl.fn.Entry = entry

	// One slot per parameter; the incoming argument is stored into it
	// so the body can treat parameters like any other local.
	for i, p := range spec.Fn.Params {
		paramType := spec.Params[i]
		slot := fl.defineLocal(p.Name, paramType)
		fl.fn.Params = append(fl.fn.Params, slot)
		arg := fl.emitValue(Instr{Kind: InstrArg, Type: paramType, Arg: ArgInstr{Index: uint32(i)}})
		fl.emit(Instr{Kind: InstrStore, Store: StoreInstr{Local: slot, Src: ValueOp(arg)}})
	}

	if spec.Fn.Body != nil {
		fl.lowerBlock(spec.Fn.Body)
	}
	if !fl.block(fl.cur).Terminated() {
		fl.setTerm(Terminator{Kind: TermReturn, Return: fl.defaultReturn()})
	}
	fl.popScope()
	fl.fn.NumValues = fl.nextValue
	return fl.fn
}

func (fl *funcLowerer) defaultReturn() ReturnTerm {
	if fl.isVoid(fl.fn.Result) {
		return ReturnTerm{}
	}
	return ReturnTerm{HasValue: true, Value: fl.zeroValue(fl.fn.Result)}
}

func (fl *funcLowerer) isVoid(id types.TypeID) bool {
	return id == types.NoTypeID || id == fl.lo.types.Builtins().Void
}

// Blocks and emission --------------------------------------------------------

func (fl *funcLowerer) newBlock() BlockID {
	id := BlockID(safecast.MustConvert[uint32](len(fl.fn.Blocks)))
	fl.fn.Blocks = append(fl.fn.Blocks, Block{ID: id})
	return id
}

func (fl *funcLowerer) block(id BlockID) *Block {
	return &fl.fn.Blocks[id]
}

// emit appends into the current block. Instructions after the block's
// terminator are unreachable and are dropped.
func (fl *funcLowerer) emit(instr Instr) {
	b := fl.block(fl.cur)
	if b.Terminated() {
		return
	}
	b.Instrs = append(b.Instrs, instr)
}

// emitValue emits an instruction that produces a result.
func (fl *funcLowerer) emitValue(instr Instr) ValueID {
	b := fl.block(fl.cur)
	if b.Terminated() {
		return NoValueID
	}
	instr.Dst = fl.nextValue
	fl.nextValue++
	b.Instrs = append(b.Instrs, instr)
	return instr.Dst
}

func (fl *funcLowerer) setTerm(t Terminator) {
	b := fl.block(fl.cur)
	if b.Terminated() {
		return
	}
	b.Term = t
}

// Symbol table ---------------------------------------------------------------

func (fl *funcLowerer) pushScope() {
	fl.scopes = append(fl.scopes, make(map[string]LocalID))
}

func (fl *funcLowerer) popScope() {
	fl.scopes = fl.scopes[:len(fl.scopes)-1]
}

func (fl *funcLowerer) defineLocal(name string, t types.TypeID) LocalID {
	id := LocalID(safecast.MustConvert[uint32](len(fl.fn.Locals)))
	fl.fn.Locals = append(fl.fn.Locals, Local{Name: name, Type: t})
	fl.scopes[len(fl.scopes)-1][name] = id
	return id
}

func (fl *funcLowerer) lookupLocal(name string) (LocalID, types.TypeID, bool) {
	for i := len(fl.scopes) - 1; i >= 0; i-- {
		if id, ok := fl.scopes[i][name]; ok {
			return id, fl.fn.Locals[id].Type, true
		}
	}
	return NoLocalID, types.NoTypeID, false
}

// zeroValue is the safe default used for missing else-branches and
// unresolved calls.
func (fl *funcLowerer) zeroValue(t types.TypeID) Operand {
	tt, ok := fl.lo.types.Lookup(t)
	if ok && tt.Kind == types.KindFloat {
		return ConstOp(Const{Type: t, Float: 0})
	}
	if ok && tt.Kind == types.KindString {
		return ConstOp(Const{Type: t, Str: ""})
	}
	return ConstOp(Const{Type: t})
}
