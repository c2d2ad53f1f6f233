package resolver

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// walker is the body-resolution pass. It tracks the current scope while
// visiting, binds identifier uses into ctx.Resolutions, and resolves type
// annotations into ctx.ResolvedTypes.
type walker struct {
	ctx   *pipeline.Context
	scope *symbols.SymbolTable
}

func (w *walker) report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	w.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

func (w *walker) VisitProgram(n *ast.Program) {
	for _, stmt := range n.Statements {
		switch stmt := stmt.(type) {
		case *ast.FunctionDeclaration:
			w.resolveFunctionBody(stmt, nil)
		case *ast.ExternDeclaration, *ast.StructDeclaration:
			// handled by the collection pass, nothing left to walk
		default:
			stmt.Accept(w)
		}
	}
}

// resolveFunctionBody resolves a function's parameters and statements in a
// fresh function scope. Parameters and the body's top level share that
// scope, so a body variable cannot reuse a parameter name. bindings, when
// non-nil, overrides type parameters with concrete types for specialized
// clones.
func (w *walker) resolveFunctionBody(fn *ast.FunctionDeclaration, bindings map[string]typesystem.Type) {
	outer := w.scope
	w.scope = symbols.NewEnclosedSymbolTable(w.ctx.GlobalScope, symbols.ScopeFunction)
	defer func() { w.scope = outer }()

	for name, t := range bindings {
		w.scope.Insert(&symbols.Symbol{
			Name: name,
			Kind: symbols.TypeParamSymbol,
			Type: t,
		})
	}
	for _, tp := range fn.TypeParams {
		if len(w.scope.LookupLocal(tp.Value)) > 0 {
			continue // duplicate, reported during collection
		}
		w.scope.Insert(&symbols.Symbol{
			Name: tp.Value,
			Kind: symbols.TypeParamSymbol,
			Type: typesystem.Generic{Name: tp.Value},
			Decl: tp.Token,
		})
	}
	for _, param := range fn.Params {
		w.declareVariable(param.Name, w.resolveType(param.Type), 0, param)
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.Statements {
			stmt.Accept(w)
		}
	}
}

// declareVariable inserts a variable symbol into the current scope,
// reporting a redeclaration when the scope already holds the name. The
// type may be nil for declarations whose type the desugarer infers later.
func (w *walker) declareVariable(name *ast.Identifier, t typesystem.Type, flags symbols.SymbolFlags, node ast.Node) {
	if len(w.scope.LookupLocal(name.Value)) > 0 {
		w.report(diagnostics.ErrR002, name.Token, name.Value)
		return
	}
	sym := &symbols.Symbol{
		Name:  name.Value,
		Kind:  symbols.VariableSymbol,
		Type:  t,
		Decl:  name.Token,
		Flags: flags | nameFlags(name.Value),
		Node:  node,
	}
	w.scope.Insert(sym)
	w.ctx.Resolutions[name] = sym
}

func (w *walker) VisitVarDeclStatement(n *ast.VarDeclStatement) {
	var declared typesystem.Type
	if n.DeclaredType != nil {
		declared = w.resolveType(n.DeclaredType)
	}
	if n.Value != nil {
		// The initializer sees the enclosing scope, not the new name.
		n.Value.Accept(w)
	}
	var flags symbols.SymbolFlags
	if n.Constant {
		flags = symbols.FlagConstant
	}
	w.declareVariable(n.Name, declared, flags, n)
}

func (w *walker) VisitAssignStatement(n *ast.AssignStatement) {
	if n.Target != nil {
		n.Target.Accept(w)
	}
	if n.Value != nil {
		n.Value.Accept(w)
	}
}

func (w *walker) VisitExpressionStatement(n *ast.ExpressionStatement) {
	if n.Expression != nil {
		n.Expression.Accept(w)
	}
}

func (w *walker) VisitBlockStatement(n *ast.BlockStatement) {
	outer := w.scope
	w.scope = symbols.NewEnclosedSymbolTable(outer, symbols.ScopeBlock)
	defer func() { w.scope = outer }()

	for _, stmt := range n.Statements {
		stmt.Accept(w)
	}
}

func (w *walker) VisitIfStatement(n *ast.IfStatement) {
	if n.Condition != nil {
		n.Condition.Accept(w)
	}
	if n.Consequence != nil {
		n.Consequence.Accept(w)
	}
	if n.Alternative != nil {
		n.Alternative.Accept(w)
	}
}

func (w *walker) VisitWhileStatement(n *ast.WhileStatement) {
	if n.Condition != nil {
		n.Condition.Accept(w)
	}
	if n.Body != nil {
		n.Body.Accept(w)
	}
}

// VisitForStatement resolves the iterable in the enclosing scope, then
// binds the loop variable in a scope shared with the body, mirroring how
// parameters share the function scope. The binding's element type is
// inferred later from the iterable.
func (w *walker) VisitForStatement(n *ast.ForStatement) {
	if n.Iterable != nil {
		n.Iterable.Accept(w)
	}

	outer := w.scope
	w.scope = symbols.NewEnclosedSymbolTable(outer, symbols.ScopeBlock)
	defer func() { w.scope = outer }()

	if n.Binding != nil {
		w.declareVariable(n.Binding, nil, 0, n)
	}
	if n.Body != nil {
		for _, stmt := range n.Body.Statements {
			stmt.Accept(w)
		}
	}
}

func (w *walker) VisitReturnStatement(n *ast.ReturnStatement) {
	if n.Value != nil {
		n.Value.Accept(w)
	}
}

func (w *walker) VisitErrorStatement(n *ast.ErrorStatement) {}

func (w *walker) VisitPrintStatement(n *ast.PrintStatement) {
	if n.Value != nil {
		n.Value.Accept(w)
	}
}

func (w *walker) VisitDebugStatement(n *ast.DebugStatement) {
	if n.Value != nil {
		n.Value.Accept(w)
	}
}

func (w *walker) VisitDelStatement(n *ast.DelStatement) {
	if n.Target != nil {
		n.Target.Accept(w)
	}
}

// Declarations nested inside a block were rejected by the parser; their
// bodies are not resolved, so a stray nested def cannot leak names into
// the surrounding function. Top-level declarations are dispatched by
// VisitProgram and the collection pass instead.
func (w *walker) VisitFunctionDeclaration(n *ast.FunctionDeclaration) {}
func (w *walker) VisitExternDeclaration(n *ast.ExternDeclaration)     {}
func (w *walker) VisitStructDeclaration(n *ast.StructDeclaration)     {}
func (w *walker) VisitParameter(n *ast.Parameter)                     {}

func (w *walker) VisitIdentifier(n *ast.Identifier) {
	syms := w.scope.Lookup(n.Value)
	if len(syms) == 0 {
		w.report(diagnostics.ErrR001, n.Token, n.Value)
		return
	}
	// Overloaded names bind to their first declaration here; call selection
	// rebinds once argument types are known.
	w.ctx.Resolutions[n] = syms[0]
}

func (w *walker) VisitIntegerLiteral(n *ast.IntegerLiteral) {}
func (w *walker) VisitFloatLiteral(n *ast.FloatLiteral)     {}
func (w *walker) VisitBooleanLiteral(n *ast.BooleanLiteral) {}
func (w *walker) VisitStringLiteral(n *ast.StringLiteral)   {}
func (w *walker) VisitNilLiteral(n *ast.NilLiteral)         {}

func (w *walker) VisitInterpolatedString(n *ast.InterpolatedString) {
	for i := range n.Segments {
		if ident := n.Segments[i].Ident; ident != nil {
			ident.Accept(w)
		}
	}
}

func (w *walker) VisitBinaryExpression(n *ast.BinaryExpression) {
	if n.Left != nil {
		n.Left.Accept(w)
	}
	if n.Right != nil {
		n.Right.Accept(w)
	}
}

func (w *walker) VisitUnaryExpression(n *ast.UnaryExpression) {
	if n.Operand != nil {
		n.Operand.Accept(w)
	}
}

func (w *walker) VisitCallExpression(n *ast.CallExpression) {
	if n.Function != nil {
		n.Function.Accept(w)
	}
	for _, arg := range n.TypeArgs {
		w.resolveType(arg)
	}
	for _, arg := range n.Arguments {
		arg.Accept(w)
	}
}

// VisitMethodCallExpression resolves the receiver and arguments only. The
// callee is selected by first-parameter type during desugaring, once the
// receiver's type is known.
func (w *walker) VisitMethodCallExpression(n *ast.MethodCallExpression) {
	if n.Receiver != nil {
		n.Receiver.Accept(w)
	}
	for _, arg := range n.Arguments {
		arg.Accept(w)
	}
}

// VisitFieldAccessExpression resolves the object only; field names are
// checked against the struct's field list once types are known.
func (w *walker) VisitFieldAccessExpression(n *ast.FieldAccessExpression) {
	if n.Object != nil {
		n.Object.Accept(w)
	}
}

func (w *walker) VisitIndexExpression(n *ast.IndexExpression) {
	if n.Object != nil {
		n.Object.Accept(w)
	}
	if n.Index != nil {
		n.Index.Accept(w)
	}
}

func (w *walker) VisitCastExpression(n *ast.CastExpression) {
	if n.Value != nil {
		n.Value.Accept(w)
	}
	w.resolveType(n.TargetType)
}

func (w *walker) VisitRefExpression(n *ast.RefExpression) {
	if n.Operand != nil {
		n.Operand.Accept(w)
	}
}

func (w *walker) VisitDerefExpression(n *ast.DerefExpression) {
	if n.Operand != nil {
		n.Operand.Accept(w)
	}
}

func (w *walker) VisitAllocExpression(n *ast.AllocExpression) {
	w.resolveType(n.TargetType)
}

func (w *walker) VisitNewExpression(n *ast.NewExpression) {
	if n.TypeName != nil {
		w.resolveStructName(n.TypeName)
	}
	for _, arg := range n.Arguments {
		arg.Accept(w)
	}
}

// resolveStructName binds the target of a new expression, which must name a
// struct visible in the current scope.
func (w *walker) resolveStructName(name *ast.Identifier) {
	syms := w.scope.Lookup(name.Value)
	if len(syms) == 0 || syms[0].Kind != symbols.StructSymbol {
		w.report(diagnostics.ErrR004, name.Token, name.Value)
		return
	}
	w.ctx.Resolutions[name] = syms[0]
}

func (w *walker) VisitNamedType(n *ast.NamedType)     { w.resolveType(n) }
func (w *walker) VisitPointerType(n *ast.PointerType) { w.resolveType(n) }
func (w *walker) VisitArrayType(n *ast.ArrayType)     { w.resolveType(n) }

// resolveType resolves a surface type expression against the current scope
// and records the result in ctx.ResolvedTypes. It always recomputes: the
// same annotation may be resolved again under the monomorphizer's concrete
// bindings, and the latest resolution wins. nil means the expression was
// reported as unresolvable.
func (w *walker) resolveType(t ast.TypeExpr) typesystem.Type {
	if t == nil {
		return nil
	}
	resolved := w.resolveTypeExpr(t)
	if resolved != nil {
		w.ctx.ResolvedTypes[t] = resolved
	}
	return resolved
}

func (w *walker) resolveTypeExpr(t ast.TypeExpr) typesystem.Type {
	switch t := t.(type) {
	case *ast.NamedType:
		if prim, ok := typesystem.Primitive(t.Name); ok {
			return prim
		}
		if syms := w.scope.Lookup(t.Name); len(syms) == 1 {
			switch syms[0].Kind {
			case symbols.StructSymbol, symbols.TypeParamSymbol:
				return syms[0].Type
			}
		}
		w.report(diagnostics.ErrR004, t.Token, t.Name)
		return nil

	case *ast.PointerType:
		elem := w.resolveType(t.Elem)
		if elem == nil {
			return nil
		}
		return typesystem.Pointer{Elem: elem}

	case *ast.ArrayType:
		elem := w.resolveType(t.Elem)
		if elem == nil {
			return nil
		}
		var size int64
		if t.Size != nil {
			size = t.Size.Value
		}
		return typesystem.Array{Elem: elem, Size: size}

	default:
		return nil
	}
}
