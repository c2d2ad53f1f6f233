package backend

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// LLVM emits textual LLVM IR. No optimization is applied; the module is
// meant to be handed to clang or llc together with the runtime library,
// which provides the ftl_ helpers (ftl_print_* append a trailing newline,
// ftl_alloc returns zeroed storage, ftl_abort never returns).
type LLVM struct {
	// Target optionally sets the module's target triple, usually taken
	// from the project manifest. Empty leaves the triple to the toolchain.
	Target string
}

func NewLLVM(target string) *LLVM {
	return &LLVM{Target: target}
}

func (l *LLVM) Name() string { return "llvm" }

// Emit lowers ctx.Program to LLVM IR. Programs with error diagnostics are
// refused; an emitError means a front end stage broke its contract, for
// example an expression without a recorded type.
func (l *LLVM) Emit(ctx *pipeline.Context) (out []byte, err error) {
	if ctx.Program == nil {
		return nil, errors.New("llvm: no program to emit")
	}
	if ctx.HasErrors() {
		return nil, errors.New("llvm: program has errors")
	}
	defer func() {
		if r := recover(); r != nil {
			ee, ok := r.(emitError)
			if !ok {
				panic(r)
			}
			err = errors.New(ee.msg)
		}
	}()

	e := &emitter{
		ctx:     ctx,
		mod:     ir.NewModule(),
		funcs:   make(map[*symbols.Symbol]*ir.Func),
		externs: make(map[string]*ir.Func),
		runtime: make(map[string]*ir.Func),
		structs: make(map[*typesystem.Struct]*types.StructType),
		strings: make(map[string]constant.Constant),
		vars:    make(map[*symbols.Symbol]value.Value),
	}
	e.mod.TargetTriple = l.Target

	e.declare()
	e.define()
	e.emitEntry()

	return []byte(e.mod.String()), nil
}

// emitError aborts emission. Emit recovers it into its error return.
type emitError struct {
	msg string
}

// emitter holds the state of one Emit run. block is the current insertion
// point; statement lowering moves it as control flow splits and rejoins.
type emitter struct {
	ctx *pipeline.Context
	mod *ir.Module

	funcs   map[*symbols.Symbol]*ir.Func // declared functions by symbol
	externs map[string]*ir.Func           // declared externs by link name
	runtime map[string]*ir.Func           // runtime helpers by link name
	structs map[*typesystem.Struct]*types.StructType
	strings map[string]constant.Constant // interned string literals
	vars    map[*symbols.Symbol]value.Value

	fn    *ir.Func
	block *ir.Block
}

func (e *emitter) failf(format string, args ...interface{}) {
	panic(emitError{msg: "llvm: " + fmt.Sprintf(format, args...)})
}

// declare creates the module-level view of the program: struct typedefs,
// globals for top-level variables, and a header per function and extern.
// Bodies come second so calls may reference functions in any order.
func (e *emitter) declare() {
	// Members of an overload set share a source name and need distinct
	// link names; the first parameter type disambiguates, matching the
	// names the monomorphizer gives specializations.
	overloads := make(map[string]int)
	for _, stmt := range e.ctx.Program.Statements {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			overloads[fd.Name.Value]++
		}
	}

	for _, stmt := range e.ctx.Program.Statements {
		switch decl := stmt.(type) {
		case *ast.StructDeclaration:
			if st, ok := e.ctx.Structs[decl.Name.Value]; ok {
				e.structType(st)
			}
		case *ast.FunctionDeclaration:
			e.declareFunction(decl, overloads[decl.Name.Value] > 1)
		case *ast.ExternDeclaration:
			e.declareExtern(decl)
		case *ast.VarDeclStatement:
			e.declareGlobal(decl)
		}
	}
}

func (e *emitter) declareFunction(decl *ast.FunctionDeclaration, overloaded bool) {
	if len(decl.TypeParams) > 0 {
		e.failf("%s: generic function %s survived monomorphization",
			e.position(decl.Token), decl.Name.Value)
	}
	sym := e.symbolOf(decl.Name)
	ft, ok := sym.Type.(typesystem.Function)
	if !ok {
		e.failf("%s: function %s has no signature", e.position(decl.Token), decl.Name.Value)
	}
	params := make([]*ir.Param, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = ir.NewParam(p.Name.Value, e.llvmType(ft.Params[i]))
	}
	fn := e.mod.NewFunc(e.linkName(sym, ft, overloaded), e.llvmType(ft.Return), params...)
	e.funcs[sym] = fn
}

// linkName picks the symbol a function is emitted under. main is reserved
// for the synthesized entry, so a source main moves to config.UserMainFunc.
func (e *emitter) linkName(sym *symbols.Symbol, ft typesystem.Function, overloaded bool) string {
	if sym.Name == "main" {
		if len(ft.Params) == 0 {
			return config.UserMainFunc
		}
		return typesystem.Mangle(sym.Name, ft.Params[:1])
	}
	if overloaded && len(ft.Params) > 0 {
		return typesystem.Mangle(sym.Name, ft.Params[:1])
	}
	return sym.Name
}

func (e *emitter) declareExtern(decl *ast.ExternDeclaration) {
	sym := e.symbolOf(decl.Name)
	e.funcs[sym] = e.externFunc(sym)
}

// externFunc declares an extern under its source name, verbatim. Repeated
// declarations of one name must agree on the signature, since they all bind
// the same foreign symbol.
func (e *emitter) externFunc(sym *symbols.Symbol) *ir.Func {
	ft, ok := sym.Type.(typesystem.Function)
	if !ok {
		e.failf("extern %s has no signature", sym.Name)
	}
	paramTypes := make([]types.Type, len(ft.Params))
	for i, p := range ft.Params {
		paramTypes[i] = e.llvmType(p)
	}
	sig := types.NewFunc(e.llvmType(ft.Return), paramTypes...)
	if fn, ok := e.externs[sym.Name]; ok {
		if !fn.Sig.Equal(sig) {
			e.failf("conflicting declarations for extern %s", sym.Name)
		}
		return fn
	}
	params := make([]*ir.Param, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = ir.NewParam("", t)
	}
	fn := e.mod.NewFunc(sym.Name, e.llvmType(ft.Return), params...)
	e.externs[sym.Name] = fn
	return fn
}

// declareGlobal reserves a zeroed global for a top-level variable. Its
// initializer runs in the synthesized entry, in statement order, so later
// functions observe the value the program assigned.
func (e *emitter) declareGlobal(decl *ast.VarDeclStatement) {
	sym := e.symbolOf(decl.Name)
	if sym.Type == nil {
		e.failf("%s: top level variable %s has no inferred type",
			e.position(decl.Token), decl.Name.Value)
	}
	name := sym.Name
	if name == "main" {
		name = config.UserMainFunc
	}
	g := e.mod.NewGlobalDef(name, e.zeroValue(e.llvmType(sym.Type)))
	e.vars[sym] = g
}

func (e *emitter) define() {
	for _, stmt := range e.ctx.Program.Statements {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			e.defineFunction(fd)
		}
	}
}

func (e *emitter) defineFunction(decl *ast.FunctionDeclaration) {
	sym := e.symbolOf(decl.Name)
	fn := e.funcs[sym]
	e.fn = fn
	e.block = fn.NewBlock("entry")

	// Parameters live in slots so ref and assignment treat them like any
	// other variable.
	for i, p := range decl.Params {
		psym := e.symbolOf(p.Name)
		slot := e.block.NewAlloca(fn.Params[i].Typ)
		e.block.NewStore(fn.Params[i], slot)
		e.vars[psym] = slot
	}
	if decl.Body != nil {
		e.emitBlock(decl.Body)
	}
	e.terminate(fn)
	e.fn = nil
	e.block = nil
}

// terminate closes the final block of a function. A void function gets the
// implicit return; a value function only reaches here through a block the
// checker proved unreachable, every path having returned or aborted.
func (e *emitter) terminate(fn *ir.Func) {
	if e.block.Term != nil {
		return
	}
	if types.IsVoid(fn.Sig.RetType) {
		e.block.NewRet(nil)
		return
	}
	e.block.NewUnreachable()
}

// emitEntry synthesizes the C-level main: top-level statements run first in
// source order, then a zero-parameter source main if the program declares
// one, whose integer return value becomes the exit code.
func (e *emitter) emitEntry() {
	fn := e.mod.NewFunc("main", types.I32)
	e.fn = fn
	e.block = fn.NewBlock("entry")

	for _, stmt := range e.ctx.Program.Statements {
		if e.block.Term != nil {
			break
		}
		switch stmt.(type) {
		case *ast.FunctionDeclaration, *ast.ExternDeclaration, *ast.StructDeclaration:
			continue
		}
		e.emitStmt(stmt)
	}
	if e.block.Term == nil {
		e.block.NewRet(e.runUserMain())
	}
	e.fn = nil
	e.block = nil
}

func (e *emitter) runUserMain() value.Value {
	for _, stmt := range e.ctx.Program.Statements {
		fd, ok := stmt.(*ast.FunctionDeclaration)
		if !ok || fd.Name.Value != "main" || len(fd.Params) > 0 {
			continue
		}
		sym := e.symbolOf(fd.Name)
		ret := e.block.NewCall(e.funcs[sym])
		if it, ok := sym.Type.(typesystem.Function).Return.(typesystem.Int); ok {
			return e.exitCode(ret, it)
		}
		break
	}
	return constant.NewInt(types.I32, 0)
}

// exitCode converts a source main's integer return to the i32 the C runtime
// expects.
func (e *emitter) exitCode(v value.Value, t typesystem.Int) value.Value {
	switch {
	case t.Width == 32:
		return v
	case t.Width > 32:
		return e.block.NewTrunc(v, types.I32)
	case t.Signed:
		return e.block.NewSExt(v, types.I32)
	default:
		return e.block.NewZExt(v, types.I32)
	}
}

func (e *emitter) emitBlock(b *ast.BlockStatement) {
	for _, stmt := range b.Statements {
		if e.block.Term != nil {
			return // unreachable after return or error
		}
		e.emitStmt(stmt)
	}
}

func (e *emitter) emitStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		e.emitVarDecl(s)
	case *ast.AssignStatement:
		addr := e.emitAddr(s.Target)
		e.block.NewStore(e.emitExpr(s.Value), addr)
	case *ast.ExpressionStatement:
		e.emitExpr(s.Expression)
	case *ast.BlockStatement:
		e.emitBlock(s)
	case *ast.IfStatement:
		e.emitIf(s)
	case *ast.WhileStatement:
		e.emitWhile(s)
	case *ast.ForStatement:
		e.emitFor(s)
	case *ast.ReturnStatement:
		if s.Value == nil {
			e.block.NewRet(nil)
			return
		}
		e.block.NewRet(e.emitExpr(s.Value))
	case *ast.ErrorStatement:
		e.emitAbort(s)
	case *ast.PrintStatement:
		e.emitPrint(s.Value)
	case *ast.DebugStatement:
		e.emitDebug(s)
	case *ast.DelStatement:
		raw := e.block.NewBitCast(e.emitExpr(s.Target), types.I8Ptr)
		e.block.NewCall(e.runtimeFunc(config.RuntimeFreeFunc, types.Void, types.I8Ptr), raw)
	default:
		e.failf("%s: cannot lower statement %T", e.position(stmt.GetToken()), stmt)
	}
}

func (e *emitter) emitVarDecl(s *ast.VarDeclStatement) {
	sym := e.symbolOf(s.Name)
	if sym.Type == nil {
		e.failf("%s: variable %s has no type", e.position(s.Token), s.Name.Value)
	}
	slot, ok := e.vars[sym]
	if !ok {
		slot = e.newSlot(e.llvmType(sym.Type))
		e.vars[sym] = slot
	}
	if s.Value == nil {
		e.block.NewStore(e.zeroValue(e.llvmType(sym.Type)), slot)
		return
	}
	e.block.NewStore(e.emitExpr(s.Value), slot)
}

func (e *emitter) emitIf(s *ast.IfStatement) {
	cond := e.emitExpr(s.Condition)
	then := e.fn.NewBlock("")
	var els *ir.Block
	if s.Alternative != nil {
		els = e.fn.NewBlock("")
	}
	done := e.fn.NewBlock("")
	if els == nil {
		els = done
	}
	e.block.NewCondBr(cond, then, els)

	e.block = then
	e.emitBlock(s.Consequence)
	if e.block.Term == nil {
		e.block.NewBr(done)
	}
	if s.Alternative != nil {
		e.block = els
		e.emitStmt(s.Alternative)
		if e.block.Term == nil {
			e.block.NewBr(done)
		}
	}
	e.block = done
}

func (e *emitter) emitWhile(s *ast.WhileStatement) {
	cond := e.fn.NewBlock("")
	body := e.fn.NewBlock("")
	done := e.fn.NewBlock("")

	e.block.NewBr(cond)
	e.block = cond
	e.block.NewCondBr(e.emitExpr(s.Condition), body, done)

	e.block = body
	e.emitBlock(s.Body)
	if e.block.Term == nil {
		e.block.NewBr(cond)
	}
	e.block = done
}

// emitFor lowers both loop forms over a fixed-size array. The iterable's
// address is taken once; the binding is refreshed from it (or from the
// index itself for `of`) at the top of every iteration.
func (e *emitter) emitFor(s *ast.ForStatement) {
	arrT, ok := e.typeOf(s.Iterable).(typesystem.Array)
	if !ok {
		e.failf("%s: for iterable is not an array", e.position(s.Token))
	}
	arr := e.addrOrSpill(s.Iterable)

	idx := e.newSlot(types.I64)
	e.block.NewStore(constant.NewInt(types.I64, 0), idx)

	bsym := e.symbolOf(s.Binding)
	slot := e.newSlot(e.llvmType(bsym.Type))
	e.vars[bsym] = slot

	cond := e.fn.NewBlock("")
	body := e.fn.NewBlock("")
	done := e.fn.NewBlock("")

	e.block.NewBr(cond)
	e.block = cond
	i := e.block.NewLoad(types.I64, idx)
	e.block.NewCondBr(e.block.NewICmp(enum.IPredSLT, i, constant.NewInt(types.I64, arrT.Size)), body, done)

	e.block = body
	iv := e.block.NewLoad(types.I64, idx)
	if s.ByIndex {
		e.block.NewStore(iv, slot)
	} else {
		ptr := e.block.NewGetElementPtr(e.llvmType(arrT), arr, constant.NewInt(types.I32, 0), iv)
		e.block.NewStore(e.block.NewLoad(e.llvmType(arrT.Elem), ptr), slot)
	}
	e.emitBlock(s.Body)
	if e.block.Term == nil {
		next := e.block.NewAdd(e.block.NewLoad(types.I64, idx), constant.NewInt(types.I64, 1))
		e.block.NewStore(next, idx)
		e.block.NewBr(cond)
	}
	e.block = done
}

func (e *emitter) emitAbort(s *ast.ErrorStatement) {
	msg := "error"
	if s.Message != nil {
		msg = s.Message.Value
	}
	abort := e.runtimeFunc(config.RuntimeAbortFunc, types.Void, types.I8Ptr)
	e.block.NewCall(abort, e.stringConstant(e.position(s.Token)+": "+msg))
	e.block.NewUnreachable()
}

func (e *emitter) emitPrint(val ast.Expression) {
	v := e.emitExpr(val)
	switch t := e.typeOf(val).(type) {
	case typesystem.Int:
		if t.Signed {
			fn := e.runtimeFunc(config.RuntimePrintIntFunc, types.Void, types.I64)
			e.block.NewCall(fn, e.widen(v, t))
			return
		}
		fn := e.runtimeFunc(config.RuntimePrintUintFunc, types.Void, types.I64)
		e.block.NewCall(fn, e.widen(v, t))
	case typesystem.Float:
		if t.Width == 32 {
			v = e.block.NewFPExt(v, types.Double)
		}
		e.block.NewCall(e.runtimeFunc(config.RuntimePrintFloatFunc, types.Void, types.Double), v)
	case typesystem.Bool:
		e.block.NewCall(e.runtimeFunc(config.RuntimePrintBoolFunc, types.Void, types.I1), v)
	case typesystem.Str:
		e.block.NewCall(e.runtimeFunc(config.RuntimePrintStrFunc, types.Void, types.I8Ptr), v)
	default:
		e.failf("%s: cannot print a value of type %s", e.position(val.GetToken()), t)
	}
}

// emitDebug prints like print does, prefixed with the statement's source
// position. Non-string values go through the same ftl_str_from helpers the
// str prelude uses, so the whole line prints as one string.
func (e *emitter) emitDebug(s *ast.DebugStatement) {
	prefix := e.stringConstant(e.position(s.Token) + ": ")
	v := e.emitExpr(s.Value)
	t := e.typeOf(s.Value)

	str := v
	if _, ok := t.(typesystem.Str); !ok {
		conv := e.runtimeFunc(config.RuntimeStrConvPrefix+t.String(), types.I8Ptr, e.llvmType(t))
		str = e.block.NewCall(conv, v)
	}
	concat := e.runtimeFunc(config.RuntimeStrConcatFunc, types.I8Ptr, types.I8Ptr, types.I8Ptr)
	line := e.block.NewCall(concat, prefix, str)
	e.block.NewCall(e.runtimeFunc(config.RuntimePrintStrFunc, types.Void, types.I8Ptr), line)
}

func (e *emitter) emitExpr(expr ast.Expression) value.Value {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		switch t := e.typeOf(n).(type) {
		case typesystem.Int:
			return constant.NewInt(e.intType(t), n.Value)
		case typesystem.Float:
			return constant.NewFloat(e.floatType(t), float64(n.Value))
		}
	case *ast.FloatLiteral:
		if t, ok := e.typeOf(n).(typesystem.Float); ok {
			return constant.NewFloat(e.floatType(t), n.Value)
		}
	case *ast.BooleanLiteral:
		if n.Value {
			return constant.True
		}
		return constant.False
	case *ast.StringLiteral:
		return e.stringConstant(n.Value)
	case *ast.NilLiteral:
		if pt, ok := e.llvmType(e.typeOf(n)).(*types.PointerType); ok {
			return constant.NewNull(pt)
		}
	case *ast.Identifier:
		sym := e.symbolOf(n)
		slot, ok := e.vars[sym]
		if !ok {
			e.failf("%s: %s does not name a variable", e.position(n.Token), n.Value)
		}
		return e.block.NewLoad(e.llvmType(e.typeOf(n)), slot)
	case *ast.BinaryExpression:
		return e.emitBinary(n)
	case *ast.UnaryExpression:
		return e.emitUnary(n)
	case *ast.CallExpression:
		return e.emitCall(n)
	case *ast.FieldAccessExpression:
		return e.emitField(n)
	case *ast.IndexExpression:
		return e.emitIndex(n)
	case *ast.CastExpression:
		return e.convert(e.emitExpr(n.Value), e.typeOf(n.Value), e.typeOf(n), n.Token)
	case *ast.RefExpression:
		return e.emitAddr(n.Operand)
	case *ast.DerefExpression:
		return e.block.NewLoad(e.llvmType(e.typeOf(n)), e.emitExpr(n.Operand))
	case *ast.AllocExpression:
		return e.emitAlloc(n)
	case *ast.NewExpression:
		return e.emitNew(n)
	}
	e.failf("%s: cannot lower expression %T", e.position(expr.GetToken()), expr)
	return nil
}

func (e *emitter) emitBinary(n *ast.BinaryExpression) value.Value {
	lt := e.typeOf(n.Left)
	l := e.emitExpr(n.Left)
	r := e.emitExpr(n.Right)

	switch n.Operator {
	case "+":
		if isStr(lt) {
			concat := e.runtimeFunc(config.RuntimeStrConcatFunc, types.I8Ptr, types.I8Ptr, types.I8Ptr)
			return e.block.NewCall(concat, l, r)
		}
		if isFloat(lt) {
			return e.block.NewFAdd(l, r)
		}
		return e.block.NewAdd(l, r)
	case "-":
		if isFloat(lt) {
			return e.block.NewFSub(l, r)
		}
		return e.block.NewSub(l, r)
	case "*":
		if isFloat(lt) {
			return e.block.NewFMul(l, r)
		}
		return e.block.NewMul(l, r)
	case "/":
		if isFloat(lt) {
			return e.block.NewFDiv(l, r)
		}
		if isSigned(lt) {
			return e.block.NewSDiv(l, r)
		}
		return e.block.NewUDiv(l, r)
	case "mod":
		if isSigned(lt) {
			return e.block.NewSRem(l, r)
		}
		return e.block.NewURem(l, r)
	case "shl":
		return e.block.NewShl(l, e.intMatch(r, l.Type()))
	case "shr":
		amount := e.intMatch(r, l.Type())
		if isSigned(lt) {
			return e.block.NewAShr(l, amount)
		}
		return e.block.NewLShr(l, amount)
	case "and", "bitand":
		return e.block.NewAnd(l, r)
	case "or", "bitor":
		return e.block.NewOr(l, r)
	case "xor", "bitxor":
		return e.block.NewXor(l, r)
	case "==":
		return e.emitEquality(false, lt, l, r)
	case "=/=":
		return e.emitEquality(true, lt, l, r)
	case "<", "<=", ">", ">=":
		return e.emitComparison(n.Operator, lt, l, r)
	}
	e.failf("%s: cannot lower operator %s", e.position(n.Token), n.Operator)
	return nil
}

func (e *emitter) emitEquality(negated bool, lt typesystem.Type, l, r value.Value) value.Value {
	if isStr(lt) {
		equals := e.runtimeFunc(config.RuntimeStrEqualsFunc, types.I1, types.I8Ptr, types.I8Ptr)
		eq := e.block.NewCall(equals, l, r)
		if negated {
			return e.block.NewXor(eq, constant.True)
		}
		return eq
	}
	if isFloat(lt) {
		pred := enum.FPredOEQ
		if negated {
			pred = enum.FPredONE
		}
		return e.block.NewFCmp(pred, l, r)
	}
	// A typed pointer may be compared against any (and nil is any), so the
	// sides can disagree on the pointee.
	if typesystem.IsPointerLike(lt) && !l.Type().Equal(r.Type()) {
		r = e.block.NewBitCast(r, l.Type())
	}
	pred := enum.IPredEQ
	if negated {
		pred = enum.IPredNE
	}
	return e.block.NewICmp(pred, l, r)
}

func (e *emitter) emitComparison(op string, lt typesystem.Type, l, r value.Value) value.Value {
	if isFloat(lt) {
		preds := map[string]enum.FPred{
			"<": enum.FPredOLT, "<=": enum.FPredOLE,
			">": enum.FPredOGT, ">=": enum.FPredOGE,
		}
		return e.block.NewFCmp(preds[op], l, r)
	}
	var preds map[string]enum.IPred
	if isSigned(lt) {
		preds = map[string]enum.IPred{
			"<": enum.IPredSLT, "<=": enum.IPredSLE,
			">": enum.IPredSGT, ">=": enum.IPredSGE,
		}
	} else {
		preds = map[string]enum.IPred{
			"<": enum.IPredULT, "<=": enum.IPredULE,
			">": enum.IPredUGT, ">=": enum.IPredUGE,
		}
	}
	return e.block.NewICmp(preds[op], l, r)
}

func (e *emitter) emitUnary(n *ast.UnaryExpression) value.Value {
	v := e.emitExpr(n.Operand)
	switch n.Operator {
	case "-":
		if isFloat(e.typeOf(n)) {
			return e.block.NewFNeg(v)
		}
		if it, ok := v.Type().(*types.IntType); ok {
			return e.block.NewSub(constant.NewInt(it, 0), v)
		}
	case "not":
		return e.block.NewXor(v, constant.True)
	}
	e.failf("%s: cannot lower unary operator %s", e.position(n.Token), n.Operator)
	return nil
}

func (e *emitter) emitCall(n *ast.CallExpression) value.Value {
	sym := e.symbolOf(n.Function)
	callee := e.callee(sym)
	args := make([]value.Value, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = e.emitExpr(a)
	}
	return e.block.NewCall(callee, args...)
}

// callee resolves the function a call binds to, declaring str conversion
// helpers and manifest externs on first use.
func (e *emitter) callee(sym *symbols.Symbol) *ir.Func {
	if fn, ok := e.funcs[sym]; ok {
		return fn
	}
	if sym.Kind != symbols.ExternSymbol {
		e.failf("call to undeclared function %s", sym.Name)
	}
	ft, ok := sym.Type.(typesystem.Function)
	if !ok {
		e.failf("extern %s has no signature", sym.Name)
	}

	var fn *ir.Func
	if sym.Node == nil && sym.Name == config.StrConvFuncName {
		// Prelude conversion: one runtime helper per source type.
		fn = e.runtimeFunc(config.RuntimeStrConvPrefix+ft.Params[0].String(),
			types.I8Ptr, e.llvmType(ft.Params[0]))
	} else {
		fn = e.externFunc(sym)
	}
	e.funcs[sym] = fn
	return fn
}

func (e *emitter) emitField(n *ast.FieldAccessExpression) value.Value {
	st, ok := e.typeOf(n.Object).(*typesystem.Struct)
	if !ok {
		e.failf("%s: field access on a non-struct value", e.position(n.Token))
	}
	field, idx := st.Field(n.Field.Value)
	if field == nil {
		e.failf("%s: %s has no field %s", e.position(n.Token), st.Name, n.Field.Value)
	}
	if addr := e.tryAddr(n.Object); addr != nil {
		ptr := e.block.NewGetElementPtr(e.structType(st), addr,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(idx)))
		return e.block.NewLoad(e.llvmType(field.Type), ptr)
	}
	return e.block.NewExtractValue(e.emitExpr(n.Object), uint64(idx))
}

func (e *emitter) emitIndex(n *ast.IndexExpression) value.Value {
	arrT, ok := e.typeOf(n.Object).(typesystem.Array)
	if !ok {
		e.failf("%s: index into a non-array value", e.position(n.Token))
	}
	base := e.addrOrSpill(n.Object)
	ptr := e.block.NewGetElementPtr(e.llvmType(arrT), base,
		constant.NewInt(types.I32, 0), e.emitExpr(n.Index))
	return e.block.NewLoad(e.llvmType(arrT.Elem), ptr)
}

// convert lowers a checked cast. The checker admits identity, numeric, and
// pointer-like casts only; a same-width signedness change is a plain
// reinterpretation.
func (e *emitter) convert(v value.Value, from, to typesystem.Type, tok token.Token) value.Value {
	if from.Equals(to) {
		return v
	}
	tt := e.llvmType(to)
	switch f := from.(type) {
	case typesystem.Int:
		switch t := to.(type) {
		case typesystem.Int:
			switch {
			case f.Width == t.Width:
				return v
			case f.Width > t.Width:
				return e.block.NewTrunc(v, tt)
			case f.Signed:
				return e.block.NewSExt(v, tt)
			default:
				return e.block.NewZExt(v, tt)
			}
		case typesystem.Float:
			if f.Signed {
				return e.block.NewSIToFP(v, tt)
			}
			return e.block.NewUIToFP(v, tt)
		}
	case typesystem.Float:
		switch t := to.(type) {
		case typesystem.Int:
			if t.Signed {
				return e.block.NewFPToSI(v, tt)
			}
			return e.block.NewFPToUI(v, tt)
		case typesystem.Float:
			if f.Width > t.Width {
				return e.block.NewFPTrunc(v, tt)
			}
			return e.block.NewFPExt(v, tt)
		}
	}
	if typesystem.IsPointerLike(from) && typesystem.IsPointerLike(to) {
		return e.block.NewBitCast(v, tt)
	}
	e.failf("%s: cannot lower cast %s as %s", e.position(tok), from, to)
	return nil
}

func (e *emitter) emitAlloc(n *ast.AllocExpression) value.Value {
	pt, ok := e.typeOf(n).(typesystem.Pointer)
	if !ok {
		e.failf("%s: alloc does not yield a pointer", e.position(n.Token))
	}
	elem := e.llvmType(pt.Elem)
	alloc := e.runtimeFunc(config.RuntimeAllocFunc, types.I8Ptr, types.I64)
	raw := e.block.NewCall(alloc, e.sizeOf(elem))
	return e.block.NewBitCast(raw, types.NewPointer(elem))
}

// sizeOf computes a type's allocation size with the null-base gep idiom,
// keeping the emitter free of target data layout knowledge.
func (e *emitter) sizeOf(t types.Type) value.Value {
	end := e.block.NewGetElementPtr(t, constant.NewNull(types.NewPointer(t)), constant.NewInt(types.I32, 1))
	return e.block.NewPtrToInt(end, types.I64)
}

func (e *emitter) emitNew(n *ast.NewExpression) value.Value {
	st, ok := e.typeOf(n).(*typesystem.Struct)
	if !ok {
		e.failf("%s: new does not yield a struct", e.position(n.Token))
	}
	var agg value.Value = constant.NewZeroInitializer(e.structType(st))
	for i, arg := range n.Arguments {
		agg = e.block.NewInsertValue(agg, e.emitExpr(arg), uint64(i))
	}
	return agg
}

// tryAddr resolves an lvalue to its address without loading: variables to
// their slot, field and index chains to element pointers, deref to the
// pointer value itself. Non-addressable expressions return nil, with
// nothing emitted.
func (e *emitter) tryAddr(expr ast.Expression) value.Value {
	switch n := expr.(type) {
	case *ast.Identifier:
		if slot, ok := e.vars[e.symbolOf(n)]; ok {
			return slot
		}
	case *ast.FieldAccessExpression:
		st, ok := e.typeOf(n.Object).(*typesystem.Struct)
		if !ok {
			return nil
		}
		field, idx := st.Field(n.Field.Value)
		if field == nil {
			return nil
		}
		base := e.tryAddr(n.Object)
		if base == nil {
			return nil
		}
		return e.block.NewGetElementPtr(e.structType(st), base,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(idx)))
	case *ast.IndexExpression:
		arrT, ok := e.typeOf(n.Object).(typesystem.Array)
		if !ok {
			return nil
		}
		base := e.tryAddr(n.Object)
		if base == nil {
			return nil
		}
		return e.block.NewGetElementPtr(e.llvmType(arrT), base,
			constant.NewInt(types.I32, 0), e.emitExpr(n.Index))
	case *ast.DerefExpression:
		return e.emitExpr(n.Operand)
	}
	return nil
}

func (e *emitter) emitAddr(expr ast.Expression) value.Value {
	addr := e.tryAddr(expr)
	if addr == nil {
		e.failf("%s: expression is not assignable", e.position(expr.GetToken()))
	}
	return addr
}

// addrOrSpill returns a pointer to the expression's value: its own storage
// when addressable, otherwise a fresh slot holding a copy. Aggregates need
// this because element pointers only exist for values in memory.
func (e *emitter) addrOrSpill(expr ast.Expression) value.Value {
	if addr := e.tryAddr(expr); addr != nil {
		return addr
	}
	v := e.emitExpr(expr)
	slot := e.newSlot(v.Type())
	e.block.NewStore(v, slot)
	return slot
}

// newSlot reserves stack for one value. Allocas always land in the entry
// block so a declaration inside a loop reuses its slot instead of growing
// the stack every iteration.
func (e *emitter) newSlot(t types.Type) value.Value {
	return e.fn.Blocks[0].NewAlloca(t)
}

// runtimeFunc declares a runtime library helper on first use.
func (e *emitter) runtimeFunc(name string, ret types.Type, params ...types.Type) *ir.Func {
	if fn, ok := e.runtime[name]; ok {
		return fn
	}
	ps := make([]*ir.Param, len(params))
	for i, t := range params {
		ps[i] = ir.NewParam("", t)
	}
	fn := e.mod.NewFunc(name, ret, ps...)
	e.runtime[name] = fn
	return fn
}

// stringConstant interns a NUL-terminated global for a string literal and
// returns its i8* view. Equal literals share one global.
func (e *emitter) stringConstant(s string) constant.Constant {
	if c, ok := e.strings[s]; ok {
		return c
	}
	g := e.mod.NewGlobalDef(fmt.Sprintf("_str_%d", len(e.strings)), constant.NewCharArrayFromString(s+"\x00"))
	g.Immutable = true
	c := constant.NewBitCast(g, types.I8Ptr)
	e.strings[s] = c
	return c
}

// llvmType maps a front end type to its lowering: sized ints map directly,
// str and any are opaque byte pointers, structs become named typedefs.
func (e *emitter) llvmType(t typesystem.Type) types.Type {
	switch t := t.(type) {
	case typesystem.Int:
		return e.intType(t)
	case typesystem.Float:
		return e.floatType(t)
	case typesystem.Bool:
		return types.I1
	case typesystem.Str:
		return types.I8Ptr
	case typesystem.Nothing:
		return types.Void
	case typesystem.Any:
		return types.I8Ptr
	case typesystem.Pointer:
		return types.NewPointer(e.llvmType(t.Elem))
	case typesystem.Array:
		return types.NewArray(uint64(t.Size), e.llvmType(t.Elem))
	case *typesystem.Struct:
		return e.structType(t)
	}
	e.failf("cannot lower type %s", t)
	return nil
}

func (e *emitter) intType(t typesystem.Int) *types.IntType {
	switch t.Width {
	case 8:
		return types.I8
	case 16:
		return types.I16
	case 32:
		return types.I32
	default:
		return types.I64
	}
}

func (e *emitter) floatType(t typesystem.Float) *types.FloatType {
	if t.Width == 32 {
		return types.Float
	}
	return types.Double
}

// structType interns the named typedef for a struct. The typedef is
// registered before its fields are lowered so pointer-recursive structs
// terminate.
func (e *emitter) structType(st *typesystem.Struct) *types.StructType {
	if t, ok := e.structs[st]; ok {
		return t
	}
	t := types.NewStruct()
	e.mod.NewTypeDef(st.Name, t)
	e.structs[st] = t
	for _, f := range st.Fields {
		t.Fields = append(t.Fields, e.llvmType(f.Type))
	}
	return t
}

// zeroValue builds the zero constant of a lowered type: literal zeros for
// scalars, the zeroinitializer token for aggregates.
func (e *emitter) zeroValue(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(t)
}

// widen extends an integer to the i64 the runtime print helpers take,
// respecting source signedness.
func (e *emitter) widen(v value.Value, t typesystem.Int) value.Value {
	if t.Width == 64 {
		return v
	}
	if t.Signed {
		return e.block.NewSExt(v, types.I64)
	}
	return e.block.NewZExt(v, types.I64)
}

// intMatch brings an integer to the given width. Shift amounts may carry
// any integer type in the source while llvm wants both operands to agree.
func (e *emitter) intMatch(v value.Value, to types.Type) value.Value {
	from, ok := v.Type().(*types.IntType)
	target, ok2 := to.(*types.IntType)
	if !ok || !ok2 || from.BitSize == target.BitSize {
		return v
	}
	if from.BitSize > target.BitSize {
		return e.block.NewTrunc(v, target)
	}
	return e.block.NewZExt(v, target)
}

// typeOf looks up the type the checker recorded for an expression.
func (e *emitter) typeOf(expr ast.Expression) typesystem.Type {
	t := e.ctx.TypeOf(expr)
	if t == nil {
		e.failf("%s: no type recorded for expression", e.position(expr.GetToken()))
	}
	return t
}

func (e *emitter) symbolOf(ident *ast.Identifier) *symbols.Symbol {
	sym := e.ctx.SymbolOf(ident)
	if sym == nil {
		e.failf("%s: unresolved identifier %s", e.position(ident.Token), ident.Value)
	}
	return sym
}

// position renders a token position the way diagnostics do, with the file
// prefix when the driver recorded one.
func (e *emitter) position(tok token.Token) string {
	if e.ctx.SourcePath != "" {
		return fmt.Sprintf("%s:%d:%d", e.ctx.SourcePath, tok.Line, tok.Column)
	}
	return fmt.Sprintf("%d:%d", tok.Line, tok.Column)
}

func isFloat(t typesystem.Type) bool {
	_, ok := t.(typesystem.Float)
	return ok
}

func isStr(t typesystem.Type) bool {
	_, ok := t.(typesystem.Str)
	return ok
}

func isSigned(t typesystem.Type) bool {
	it, ok := t.(typesystem.Int)
	return ok && it.Signed
}
