package mono

import (
	"errors"
	"fmt"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/source"
	"paw/internal/types"
	"paw/internal/unify"
)

// Resolver walks every declaration once and fills the instantiation
// table: generic calls get their type arguments inferred from the call
// site, and `Type<Args>::method(...)` annotations are recorded directly.
type Resolver struct {
	types    *types.Interner
	table    *Table
	reporter diag.Reporter

	fns     map[string]*ast.FnDecl
	structs map[string]*ast.StructDecl
	enums   map[string]*ast.EnumDecl
}

// NewResolver builds a resolver that records into table.
func NewResolver(in *types.Interner, table *Table, reporter diag.Reporter) *Resolver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Resolver{
		types:    in,
		table:    table,
		reporter: reporter,
		fns:      make(map[string]*ast.FnDecl),
		structs:  make(map[string]*ast.StructDecl),
		enums:    make(map[string]*ast.EnumDecl),
	}
}

// Fn looks up a declared free function by name.
func (r *Resolver) Fn(name string) (*ast.FnDecl, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Struct looks up a declared struct by name.
func (r *Resolver) Struct(name string) (*ast.StructDecl, bool) {
	st, ok := r.structs[name]
	return st, ok
}

// Enum looks up a declared enum by name.
func (r *Resolver) Enum(name string) (*ast.EnumDecl, bool) {
	en, ok := r.enums[name]
	return en, ok
}

// Run indexes the program's declarations, then visits every function
// and method body. Only the instantiation table is mutated.
func (r *Resolver) Run(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch decl.Kind {
		case ast.DeclFn:
			r.fns[decl.Fn.Name] = decl.Fn
		case ast.DeclStruct:
			r.structs[decl.Struct.Name] = decl.Struct
		case ast.DeclEnum:
			r.enums[decl.Enum.Name] = decl.Enum
		}
	}

	for _, decl := range prog.Decls {
		switch decl.Kind {
		case ast.DeclFn:
			r.visitFn(decl.Fn, nil)
		case ast.DeclStruct:
			for _, m := range decl.Struct.Methods {
				r.visitFn(m, decl.Struct)
			}
		case ast.DeclEnum:
			for _, m := range decl.Enum.Methods {
				r.visitFn(m, nil)
			}
		}
	}
}

// fnWalker carries the per-function state of one visit: the type scope
// (generic parameters in lexical scope) and the value environment used
// to type call arguments.
type fnWalker struct {
	r     *Resolver
	scope *TypeScope
	env   []map[string]types.TypeID
}

func (r *Resolver) visitFn(fn *ast.FnDecl, owner *ast.StructDecl) {
	if fn.Body == nil {
		return
	}
	params := fn.TypeParams
	if owner != nil {
		params = append(append([]string(nil), owner.TypeParams...), fn.TypeParams...)
	}
	w := &fnWalker{r: r, scope: NewTypeScope(r.types, params)}
	w.push()
	for _, p := range fn.Params {
		if p.IsSelf {
			if owner != nil {
				w.bind(p.Name, w.ownerType(owner))
			}
			continue
		}
		w.bind(p.Name, w.scope.Lower(p.Type))
	}
	w.walkBlock(fn.Body)
	w.pop()
}

func (w *fnWalker) ownerType(owner *ast.StructDecl) types.TypeID {
	nameID := w.r.types.Strings.Intern(owner.Name)
	if len(owner.TypeParams) == 0 {
		return w.r.types.RegisterNamed(nameID, owner.Span)
	}
	args := make([]types.TypeID, len(owner.TypeParams))
	for i, tp := range owner.TypeParams {
		args[i] = w.r.types.RegisterParam(w.r.types.Strings.Intern(tp))
	}
	return w.r.types.RegisterInstance(nameID, args)
}

func (w *fnWalker) push() { w.env = append(w.env, make(map[string]types.TypeID)) }
func (w *fnWalker) pop()  { w.env = w.env[:len(w.env)-1] }

func (w *fnWalker) bind(name string, id types.TypeID) {
	w.env[len(w.env)-1][name] = id
}

func (w *fnWalker) lookup(name string) (types.TypeID, bool) {
	for i := len(w.env) - 1; i >= 0; i-- {
		if id, ok := w.env[i][name]; ok {
			return id, true
		}
	}
	return types.NoTypeID, false
}

func (w *fnWalker) walkBlock(block *ast.Block) {
	w.push()
	for i := range block.Stmts {
		w.walkStmt(&block.Stmts[i])
	}
	w.pop()
}

func (w *fnWalker) walkStmt(stmt *ast.Stmt) {
	switch data := stmt.Data.(type) {
	case ast.LetData:
		valueType := w.typeOf(data.Value)
		if data.Type != nil {
			valueType = w.scope.Lower(data.Type)
		}
		w.bind(data.Name, valueType)
	case ast.AssignData:
		w.typeOf(data.Target)
		w.typeOf(data.Value)
	case ast.ReturnData:
		if data.Value != nil {
			w.typeOf(data.Value)
		}
	case ast.IfStmtData:
		w.typeOf(data.Cond)
		w.walkBlock(data.Then)
		if data.Else != nil {
			w.walkBlock(data.Else)
		}
	case ast.LoopData:
		w.push()
		switch data.Kind {
		case ast.LoopCond:
			w.typeOf(data.Cond)
		case ast.LoopRange:
			startType := w.typeOf(data.Start)
			w.typeOf(data.End)
			if startType == types.NoTypeID {
				startType = w.r.types.Builtins().I32
			}
			w.bind(data.Var, startType)
		}
		w.walkBlock(data.Body)
		w.pop()
	case ast.ExprStmtData:
		w.typeOf(data.Expr)
	case ast.BlockStmtData:
		w.walkBlock(data.Block)
	}
}

// typeOf both types an expression and records any instantiations found
// inside it. Unknown types come back as NoTypeID; the caller decides
// whether that matters.
func (w *fnWalker) typeOf(expr *ast.Expr) types.TypeID {
	if expr == nil {
		return types.NoTypeID
	}
	b := w.r.types.Builtins()
	switch data := expr.Data.(type) {
	case ast.IntLitData:
		return b.I32
	case ast.FloatLitData:
		return b.F64
	case ast.BoolLitData:
		return b.Bool
	case ast.CharLitData:
		return b.Char
	case ast.StringLitData:
		return b.String
	case ast.IdentData:
		id, _ := w.lookup(data.Name)
		return id
	case ast.UnaryData:
		operand := w.typeOf(data.Operand)
		if data.Op == ast.UnaryNot {
			return b.Bool
		}
		return operand
	case ast.BinaryData:
		left := w.typeOf(data.Left)
		right := w.typeOf(data.Right)
		if data.Op.IsComparison() || data.Op.IsLogical() {
			return b.Bool
		}
		if left != types.NoTypeID {
			return left
		}
		return right
	case ast.CallData:
		return w.visitCall(expr.Span, data)
	case ast.MethodCallData:
		return w.visitMethodCall(data)
	case ast.QualifiedCallData:
		return w.visitQualifiedCall(data)
	case ast.FieldData:
		return w.fieldType(w.typeOf(data.Object), data.Name)
	case ast.IndexData:
		w.typeOf(data.Index)
		objType := w.typeOf(data.Object)
		if tt, ok := w.r.types.Lookup(objType); ok && tt.Kind == types.KindArray {
			return tt.Elem
		}
		return types.NoTypeID
	case ast.ArrayLitData:
		var elemType types.TypeID
		for _, elem := range data.Elems {
			t := w.typeOf(elem)
			if elemType == types.NoTypeID {
				elemType = t
			}
		}
		if elemType == types.NoTypeID {
			return types.NoTypeID
		}
		return w.r.types.Intern(types.MakeArray(elemType, uint32(len(data.Elems))))
	case ast.StructLitData:
		for _, f := range data.Fields {
			w.typeOf(f.Value)
		}
		nameID := w.r.types.Strings.Intern(data.TypeName)
		if len(data.TypeArgs) > 0 {
			args := w.scope.LowerAll(data.TypeArgs)
			if !containsParams(w.r.types, args) {
				w.r.table.RecordStruct(data.TypeName, args)
			}
			return w.r.types.RegisterInstance(nameID, args)
		}
		return w.r.types.RegisterNamed(nameID, expr.Span)
	case ast.IfExprData:
		w.typeOf(data.Cond)
		thenType := w.typeOf(data.Then)
		w.typeOf(data.Else)
		return thenType
	case ast.RangeData:
		w.typeOf(data.Start)
		w.typeOf(data.End)
		return b.I32
	default:
		return types.NoTypeID
	}
}

// visitCall records an instantiation for calls to generic functions,
// inferring type arguments from the call site unless the caller wrote
// them out.
func (w *fnWalker) visitCall(span source.Span, data ast.CallData) types.TypeID {
	argTypes := make([]types.TypeID, len(data.Args))
	for i, arg := range data.Args {
		argTypes[i] = w.typeOf(arg)
	}

	fn, ok := w.r.fns[data.Callee]
	if !ok {
		return types.NoTypeID
	}
	calleeScope := NewTypeScope(w.r.types, fn.TypeParams)
	resultType := calleeScope.Lower(fn.Result)
	if !fn.IsGeneric() {
		return resultType
	}

	if len(data.TypeArgs) > 0 {
		args := w.scope.LowerAll(data.TypeArgs)
		if !containsParams(w.r.types, args) {
			w.r.table.RecordFn(fn.Name, args)
		}
		s := make(unify.Subst, len(fn.TypeParams))
		for i, tp := range fn.TypeParams {
			if i < len(args) {
				s[tp] = args[i]
			}
		}
		return unify.Apply(w.r.types, resultType, s)
	}

	paramTypes := make([]types.TypeID, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = calleeScope.Lower(p.Type)
	}
	s, err := unify.InferFromCall(w.r.types, fn.TypeParams, paramTypes, argTypes)
	if err != nil {
		w.reportInferError(span, fn.Name, err)
		return types.NoTypeID
	}
	args := make([]types.TypeID, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		args[i] = s[tp]
	}
	if !containsParams(w.r.types, args) {
		w.r.table.RecordFn(fn.Name, args)
	}
	return unify.Apply(w.r.types, resultType, s)
}

func (w *fnWalker) reportInferError(span source.Span, callee string, err error) {
	code := diag.MonoUnifyMismatch
	switch {
	case errors.Is(err, unify.ErrArgumentCountMismatch):
		code = diag.MonoArgCountMismatch
	case errors.Is(err, unify.ErrTypeInferenceFailed):
		code = diag.MonoInferenceFailed
	}
	diag.Error(w.r.reporter, code, span,
		fmt.Sprintf("cannot instantiate %s: %v", callee, err))
}

// visitMethodCall types recv.method(...) and, when the receiver is a
// generic struct instance, records the method instantiation.
func (w *fnWalker) visitMethodCall(data ast.MethodCallData) types.TypeID {
	recvType := w.typeOf(data.Recv)
	for _, arg := range data.Args {
		w.typeOf(arg)
	}

	tt, ok := w.r.types.Lookup(recvType)
	if !ok {
		return types.NoTypeID
	}
	switch tt.Kind {
	case types.KindNamed:
		info, _ := w.r.types.NamedInfo(recvType)
		if info == nil {
			return types.NoTypeID
		}
		name := w.r.types.Strings.MustLookup(info.Name)
		return w.methodResult(name, nil, data.Method)
	case types.KindInstance:
		info, _ := w.r.types.InstanceInfo(recvType)
		if info == nil {
			return types.NoTypeID
		}
		name := w.r.types.Strings.MustLookup(info.Name)
		if !containsParams(w.r.types, info.Args) {
			w.r.table.RecordStruct(name, info.Args)
			w.r.table.RecordMethod(name, info.Args, data.Method)
		}
		return w.methodResult(name, info.Args, data.Method)
	default:
		return types.NoTypeID
	}
}

// visitQualifiedCall records Type<Args>::method(...) directly from the
// annotation: both the method instance and the owning struct instance.
func (w *fnWalker) visitQualifiedCall(data ast.QualifiedCallData) types.TypeID {
	for _, arg := range data.Args {
		w.typeOf(arg)
	}
	args := w.scope.LowerAll(data.TypeArgs)
	if len(args) > 0 && !containsParams(w.r.types, args) {
		w.r.table.RecordStruct(data.TypeName, args)
		w.r.table.RecordMethod(data.TypeName, args, data.Method)
	}
	return w.methodResult(data.TypeName, args, data.Method)
}

// methodResult looks up the declared result type of a struct method,
// substituting the owner's type parameters with args when present.
func (w *fnWalker) methodResult(typeName string, args []types.TypeID, method string) types.TypeID {
	st, ok := w.r.structs[typeName]
	if !ok {
		return types.NoTypeID
	}
	var decl *ast.FnDecl
	for _, m := range st.Methods {
		if m.Name == method {
			decl = m
			break
		}
	}
	if decl == nil {
		return types.NoTypeID
	}
	ownerScope := NewTypeScope(w.r.types, st.TypeParams)
	resultType := ownerScope.Lower(decl.Result)
	if len(args) == 0 {
		return resultType
	}
	s := make(unify.Subst, len(st.TypeParams))
	for i, tp := range st.TypeParams {
		if i < len(args) {
			s[tp] = args[i]
		}
	}
	return unify.Apply(w.r.types, resultType, s)
}

// fieldType resolves object.field against the declared struct, applying
// the instance's type arguments when the object is a generic instance.
func (w *fnWalker) fieldType(objType types.TypeID, field string) types.TypeID {
	tt, ok := w.r.types.Lookup(objType)
	if !ok {
		return types.NoTypeID
	}
	var name string
	var args []types.TypeID
	switch tt.Kind {
	case types.KindNamed:
		info, _ := w.r.types.NamedInfo(objType)
		if info == nil {
			return types.NoTypeID
		}
		name = w.r.types.Strings.MustLookup(info.Name)
	case types.KindInstance:
		info, _ := w.r.types.InstanceInfo(objType)
		if info == nil {
			return types.NoTypeID
		}
		name = w.r.types.Strings.MustLookup(info.Name)
		args = info.Args
	default:
		return types.NoTypeID
	}
	st, ok := w.r.structs[name]
	if !ok {
		return types.NoTypeID
	}
	for _, f := range st.Fields {
		if f.Name != field {
			continue
		}
		ownerScope := NewTypeScope(w.r.types, st.TypeParams)
		fieldType := ownerScope.Lower(f.Type)
		if len(args) == 0 {
			return fieldType
		}
		s := make(unify.Subst, len(st.TypeParams))
		for i, tp := range st.TypeParams {
			if i < len(args) {
				s[tp] = args[i]
			}
		}
		return unify.Apply(w.r.types, fieldType, s)
	}
	return types.NoTypeID
}

func containsParams(in *types.Interner, args []types.TypeID) bool {
	for _, arg := range args {
		if in.ContainsParams(arg) {
			return true
		}
	}
	return false
}
