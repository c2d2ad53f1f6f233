// Package desugar lowers the parser's surface constructs into the core forms
// the checker and the backends understand. It runs after resolution and
// rewrites the AST in place:
//
//   - receiver.f(args) becomes f(receiver, args), selected by the receiver's
//     type against f's overload set
//   - operators with a struct or pointer operand become calls to their
//     reserved overload names (== to __equals, + to __plus, and so on);
//     primitive operand pairs always keep builtin semantics
//   - x =/= y becomes not __equals(x, y)
//   - "a" + x wraps x in its str conversion when x is not already a str
//   - interpolated strings fold into left-associated + concatenation
//
// Selection needs operand types before the checker has run, so the desugarer
// carries a local type synthesizer that follows the checker's rules without
// reporting, and fills the types of inferred var declarations in statement
// order as a side effect. Generic function bodies are left untouched; the
// monomorphizer desugars each specialization once its types are concrete.
package desugar

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// binaryOverloadNames maps binary operators to their reserved overload
// names. Operators missing here (logic, bitwise, shifts) cannot be
// overloaded. =/= is not listed because it desugars through __equals.
var binaryOverloadNames = map[string]string{
	"==":  "__equals",
	"+":   "__plus",
	"-":   "__minus",
	"*":   "__times",
	"/":   "__divide",
	"mod": "__mod",
	"<":   "__less",
	"<=":  "__less_equal",
	">":   "__greater",
	">=":  "__greater_equal",
}

var unaryOverloadNames = map[string]string{
	"-":   "__negate",
	"not": "__not",
}

// Desugarer rewrites one resolved program. Create one with New and call Run
// once; the monomorphizer reuses it through RewriteFunction for specialized
// clones.
type Desugarer struct {
	ctx   *pipeline.Context
	table *OverloadTable
}

func New(ctx *pipeline.Context) *Desugarer {
	return &Desugarer{ctx: ctx, table: NewOverloadTable(ctx.GlobalScope)}
}

// Run rewrites every top-level statement and non-generic function body in
// source order.
func (d *Desugarer) Run() {
	if d.ctx.Program == nil {
		return
	}
	for _, stmt := range d.ctx.Program.Statements {
		switch stmt := stmt.(type) {
		case *ast.FunctionDeclaration:
			if len(stmt.TypeParams) > 0 {
				continue
			}
			d.RewriteFunction(stmt)
		case *ast.ExternDeclaration, *ast.StructDeclaration:
			// signatures only, nothing to rewrite
		default:
			d.rewriteStmt(stmt)
		}
	}
}

// RewriteFunction rewrites one function body. The monomorphizer calls it on
// specialized clones after re-resolving them with concrete type bindings.
func (d *Desugarer) RewriteFunction(fn *ast.FunctionDeclaration) {
	if fn.Body == nil {
		return
	}
	for _, stmt := range fn.Body.Statements {
		d.rewriteStmt(stmt)
	}
}

func (d *Desugarer) report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	d.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

func (d *Desugarer) rewriteStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		s.Value = d.rewriteExpr(s.Value)
		d.fillInferredType(s)
	case *ast.AssignStatement:
		s.Target = d.rewriteExpr(s.Target)
		s.Value = d.rewriteExpr(s.Value)
	case *ast.ExpressionStatement:
		s.Expression = d.rewriteExpr(s.Expression)
	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			d.rewriteStmt(inner)
		}
	case *ast.IfStatement:
		s.Condition = d.rewriteExpr(s.Condition)
		if s.Consequence != nil {
			d.rewriteStmt(s.Consequence)
		}
		if s.Alternative != nil {
			d.rewriteStmt(s.Alternative)
		}
	case *ast.WhileStatement:
		s.Condition = d.rewriteExpr(s.Condition)
		if s.Body != nil {
			d.rewriteStmt(s.Body)
		}
	case *ast.ForStatement:
		s.Iterable = d.rewriteExpr(s.Iterable)
		d.fillBindingType(s)
		if s.Body != nil {
			d.rewriteStmt(s.Body)
		}
	case *ast.ReturnStatement:
		s.Value = d.rewriteExpr(s.Value)
	case *ast.PrintStatement:
		s.Value = d.rewriteExpr(s.Value)
	case *ast.DebugStatement:
		s.Value = d.rewriteExpr(s.Value)
	case *ast.DelStatement:
		s.Target = d.rewriteExpr(s.Target)
	}
}

// fillInferredType gives a var declared without a type annotation the type
// of its initializer. Later statements read it back through the symbol, so
// declarations must be rewritten in statement order.
func (d *Desugarer) fillInferredType(s *ast.VarDeclStatement) {
	sym := d.ctx.Resolutions[s.Name]
	if sym == nil || sym.Type != nil || s.Value == nil {
		return
	}
	sym.Type = d.typeOf(s.Value)
}

// fillBindingType types a for loop's binding: the iterable's element type
// for in, int for of.
func (d *Desugarer) fillBindingType(s *ast.ForStatement) {
	sym := d.ctx.Resolutions[s.Binding]
	if sym == nil || sym.Type != nil {
		return
	}
	if s.ByIndex {
		sym.Type = typesystem.Int{Width: 64, Signed: true}
		return
	}
	if arr, ok := d.typeOf(s.Iterable).(typesystem.Array); ok {
		sym.Type = arr.Elem
	}
}

// rewriteExpr rewrites expr's children first and then expr itself, returning
// the replacement node. Nodes that need no rewrite are returned unchanged.
func (d *Desugarer) rewriteExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		e.Left = d.rewriteExpr(e.Left)
		e.Right = d.rewriteExpr(e.Right)
		return d.rewriteBinary(e)
	case *ast.UnaryExpression:
		e.Operand = d.rewriteExpr(e.Operand)
		return d.rewriteUnary(e)
	case *ast.CallExpression:
		for i := range e.Arguments {
			e.Arguments[i] = d.rewriteExpr(e.Arguments[i])
		}
		d.rebindOverloadedCall(e)
		return e
	case *ast.MethodCallExpression:
		e.Receiver = d.rewriteExpr(e.Receiver)
		for i := range e.Arguments {
			e.Arguments[i] = d.rewriteExpr(e.Arguments[i])
		}
		return d.rewriteMethodCall(e)
	case *ast.FieldAccessExpression:
		e.Object = d.rewriteExpr(e.Object)
		return e
	case *ast.IndexExpression:
		e.Object = d.rewriteExpr(e.Object)
		e.Index = d.rewriteExpr(e.Index)
		return e
	case *ast.CastExpression:
		e.Value = d.rewriteExpr(e.Value)
		return e
	case *ast.RefExpression:
		e.Operand = d.rewriteExpr(e.Operand)
		return e
	case *ast.DerefExpression:
		e.Operand = d.rewriteExpr(e.Operand)
		return e
	case *ast.InterpolatedString:
		return d.rewriteInterpolation(e)
	case *ast.NewExpression:
		for i := range e.Arguments {
			e.Arguments[i] = d.rewriteExpr(e.Arguments[i])
		}
		return e
	default:
		// literals, identifiers, alloc
		return expr
	}
}

// rewriteBinary decides whether a binary operator stays builtin or becomes
// an overload call. Overload lookup triggers only when at least one operand
// is a struct or pointer; a pair covered by neither an overload nor a
// builtin rule is an error here, where the operand types are first known.
func (d *Desugarer) rewriteBinary(e *ast.BinaryExpression) ast.Expression {
	lt := d.typeOf(e.Left)
	rt := d.typeOf(e.Right)
	if lt == nil || rt == nil {
		return e // an operand already failed upstream
	}

	if e.Operator == "+" && (isStr(lt) || isStr(rt)) {
		return d.rewriteConcat(e, lt, rt)
	}

	if !overloadable(lt) && !overloadable(rt) {
		return e
	}

	op := e.Operator
	negate := false
	if op == "=/=" {
		op = "=="
		negate = true
	}
	var sym *symbols.Symbol
	if name := binaryOverloadNames[op]; name != "" {
		sym = d.table.BinaryOverload(name, lt, rt)
	}
	if sym == nil {
		if _, builtin := typesystem.BinaryOpType(e.Operator, lt, rt); builtin {
			return e // pointer equality and friends stay builtin
		}
		d.report(diagnostics.ErrT007, e.Token, e.Operator, lt, rt)
		return e
	}

	call := d.makeCall(e.Token, binaryOverloadNames[op], sym, e.Left, e.Right)
	if negate {
		return &ast.UnaryExpression{Token: e.Token, Operator: "not", Operand: call}
	}
	return call
}

// rewriteConcat handles string concatenation: the non-str operand is wrapped
// in its str conversion. Primitive conversions come from the prelude; struct
// and pointer operands need a user-defined str overload.
func (d *Desugarer) rewriteConcat(e *ast.BinaryExpression, lt, rt typesystem.Type) ast.Expression {
	if !isStr(lt) {
		conv := d.strConversion(e.Left, lt)
		if conv == nil {
			d.report(diagnostics.ErrT007, e.Token, e.Operator, lt, rt)
			return e
		}
		e.Left = conv
	}
	if !isStr(rt) {
		conv := d.strConversion(e.Right, rt)
		if conv == nil {
			d.report(diagnostics.ErrT007, e.Token, e.Operator, lt, rt)
			return e
		}
		e.Right = conv
	}
	return e
}

func (d *Desugarer) rewriteUnary(e *ast.UnaryExpression) ast.Expression {
	t := d.typeOf(e.Operand)
	if t == nil || !overloadable(t) {
		return e
	}
	name := unaryOverloadNames[e.Operator]
	var sym *symbols.Symbol
	if name != "" {
		sym = d.table.UnaryOverload(name, t)
	}
	if sym == nil {
		if _, builtin := typesystem.UnaryOpType(e.Operator, t); builtin {
			return e
		}
		d.report(diagnostics.ErrT005, e.Token, name, t)
		return e
	}
	return d.makeCall(e.Token, name, sym, e.Operand)
}

// rewriteMethodCall turns receiver.f(args) into f(receiver, args). The
// callee is the overload of f whose first parameter type matches the
// receiver; zero candidates and several equally generic candidates are
// errors.
func (d *Desugarer) rewriteMethodCall(e *ast.MethodCallExpression) ast.Expression {
	recv := d.typeOf(e.Receiver)
	if recv == nil {
		return e // receiver failed upstream, the context already has errors
	}
	sym, ambiguous := d.table.SelectByFirstParam(e.Name.Value, recv)
	if ambiguous {
		d.report(diagnostics.ErrT006, e.Name.Token, e.Name.Value, recv)
		return e
	}
	if sym == nil {
		d.report(diagnostics.ErrT005, e.Name.Token, e.Name.Value, recv)
		return e
	}
	d.ctx.Resolutions[e.Name] = sym

	args := make([]ast.Expression, 0, len(e.Arguments)+1)
	args = append(args, e.Receiver)
	args = append(args, e.Arguments...)
	return &ast.CallExpression{Token: e.Token, Function: e.Name, Arguments: args}
}

// rebindOverloadedCall narrows the resolver's provisional binding of an
// overloaded callee to the overload selected by the first argument's type.
// Calls through non-overloaded names keep their binding.
func (d *Desugarer) rebindOverloadedCall(e *ast.CallExpression) {
	if e.Function == nil {
		return
	}
	sym := d.ctx.Resolutions[e.Function]
	if sym == nil || !sym.IsCallable() {
		return // locals shadowing a function are the checker's problem
	}
	if len(d.table.Candidates(e.Function.Value)) < 2 {
		return
	}
	var argType typesystem.Type
	if len(e.Arguments) > 0 {
		argType = d.typeOf(e.Arguments[0])
		if argType == nil {
			return
		}
	}
	selected, ambiguous := d.table.SelectByFirstParam(e.Function.Value, argType)
	if ambiguous {
		d.report(diagnostics.ErrT006, e.Function.Token, e.Function.Value, argType)
		return
	}
	if selected == nil {
		d.report(diagnostics.ErrT005, e.Function.Token, e.Function.Value, argType)
		return
	}
	d.ctx.Resolutions[e.Function] = selected
}

// rewriteInterpolation folds an interpolated string into +-concatenation of
// its segments. Non-str identifier segments go through their str conversion
// first.
func (d *Desugarer) rewriteInterpolation(e *ast.InterpolatedString) ast.Expression {
	var result ast.Expression
	for i := range e.Segments {
		seg := &e.Segments[i]
		var piece ast.Expression
		if seg.Ident == nil {
			piece = &ast.StringLiteral{Token: e.Token, Value: seg.Text}
		} else {
			t := d.typeOf(seg.Ident)
			if t == nil {
				return e // unresolved segment, reported upstream
			}
			piece = seg.Ident
			if !isStr(t) {
				conv := d.strConversion(piece, t)
				if conv == nil {
					d.report(diagnostics.ErrT005, seg.Ident.Token, config.StrConvFuncName, t)
					return e
				}
				piece = conv
			}
		}
		if result == nil {
			result = piece
		} else {
			result = &ast.BinaryExpression{Token: e.Token, Left: result, Operator: "+", Right: piece}
		}
	}
	if result == nil {
		return &ast.StringLiteral{Token: e.Token, Value: ""}
	}
	return result
}

// strConversion wraps expr in a call to the str conversion taking t, nil
// when no usable conversion is declared.
func (d *Desugarer) strConversion(expr ast.Expression, t typesystem.Type) ast.Expression {
	sym, ambiguous := d.table.SelectByFirstParam(config.StrConvFuncName, t)
	if sym == nil || ambiguous {
		return nil
	}
	if fn, ok := sym.Type.(typesystem.Function); !ok || len(fn.Params) != 1 {
		return nil
	}
	return d.makeCall(expr.GetToken(), config.StrConvFuncName, sym, expr)
}

// makeCall builds a call to sym with a freshly bound callee identifier
// positioned at the construct it replaces.
func (d *Desugarer) makeCall(at token.Token, name string, sym *symbols.Symbol, args ...ast.Expression) *ast.CallExpression {
	callee := &ast.Identifier{
		Token: token.Token{Type: token.IDENT, Lexeme: name, Line: at.Line, Column: at.Column},
		Value: name,
	}
	d.ctx.Resolutions[callee] = sym
	return &ast.CallExpression{Token: at, Function: callee, Arguments: args}
}

// overloadable reports whether an operand of type t participates in operator
// overload lookup.
func overloadable(t typesystem.Type) bool {
	return typesystem.IsStruct(t) || typesystem.IsPointerLike(t)
}

func isStr(t typesystem.Type) bool {
	_, ok := t.(typesystem.Str)
	return ok
}
