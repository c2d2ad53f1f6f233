package checker

import (
	"fmt"
	"math"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// checkExpr types an expression and records the result in ctx.Types. The
// expected type only influences literal adoption; it never coerces. A nil
// result means the subtree is invalid and was already reported, so callers
// skip their own check and move on.
func (c *Checker) checkExpr(expr ast.Expression, expected typesystem.Type) typesystem.Type {
	if expr == nil {
		return nil
	}
	var t typesystem.Type
	switch e := expr.(type) {
	case *ast.Identifier:
		t = c.checkIdentifier(e)
	case *ast.IntegerLiteral:
		t = c.checkIntegerLiteral(e, expected)
	case *ast.FloatLiteral:
		t = c.checkFloatLiteral(e, expected)
	case *ast.BooleanLiteral:
		t = typesystem.Bool{}
	case *ast.StringLiteral:
		t = typesystem.Str{}
	case *ast.InterpolatedString:
		t = c.checkInterpolated(e)
	case *ast.NilLiteral:
		t = typesystem.Any{}
	case *ast.BinaryExpression:
		t = c.checkBinary(e)
	case *ast.UnaryExpression:
		t = c.checkUnary(e, expected)
	case *ast.CallExpression:
		t = c.checkCall(e)
	case *ast.MethodCallExpression:
		// only survives a failed desugar; check the pieces for coverage
		c.checkValue(e.Receiver, nil)
		c.checkArguments(e.Arguments)
	case *ast.FieldAccessExpression:
		t = c.checkFieldAccess(e)
	case *ast.IndexExpression:
		t = c.checkIndex(e)
	case *ast.CastExpression:
		t = c.checkCast(e)
	case *ast.RefExpression:
		t = c.checkRef(e)
	case *ast.DerefExpression:
		t = c.checkDeref(e)
	case *ast.AllocExpression:
		t = c.checkAlloc(e)
	case *ast.NewExpression:
		t = c.checkNew(e)
	}
	if t != nil {
		c.ctx.Types[expr] = t
	}
	return t
}

// checkValue checks an expression in value position, where a nothing call is
// an error.
func (c *Checker) checkValue(expr ast.Expression, expected typesystem.Type) typesystem.Type {
	t := c.checkExpr(expr, expected)
	if t != nil && typesystem.IsNothing(t) {
		c.report(diagnostics.ErrT003, expr.GetToken(), valueName(expr))
		return nil
	}
	return t
}

// expectValue checks an expression that must have exactly the wanted type.
func (c *Checker) expectValue(expr ast.Expression, want typesystem.Type) {
	got := c.checkValue(expr, want)
	if got == nil || want == nil {
		return
	}
	if !got.Equals(want) {
		c.report(diagnostics.ErrT001, expr.GetToken(), want, got)
	}
}

func (c *Checker) checkArguments(args []ast.Expression) {
	for _, arg := range args {
		c.checkValue(arg, nil)
	}
}

func (c *Checker) checkIdentifier(e *ast.Identifier) typesystem.Type {
	sym := c.ctx.Resolutions[e]
	if sym == nil {
		return nil // undeclared, already reported
	}
	if sym.Kind != symbols.VariableSymbol {
		c.report(diagnostics.ErrT001, e.Token, "a value", describeSymbol(sym))
		return nil
	}
	return sym.Type
}

func (c *Checker) checkIntegerLiteral(e *ast.IntegerLiteral, expected typesystem.Type) typesystem.Type {
	switch want := expected.(type) {
	case typesystem.Int:
		if !intFits(e.Value, want) {
			c.report(diagnostics.ErrT008, e.Token, literalText(e), want)
			return nil
		}
		return want
	case typesystem.Float:
		return want
	}
	return typesystem.Int{Width: 64, Signed: true}
}

func (c *Checker) checkFloatLiteral(e *ast.FloatLiteral, expected typesystem.Type) typesystem.Type {
	if want, ok := expected.(typesystem.Float); ok {
		return want
	}
	return typesystem.Float{Width: 64}
}

// checkInterpolated only runs when desugaring failed partway; segments are
// checked so their errors surface, the result is still a str.
func (c *Checker) checkInterpolated(e *ast.InterpolatedString) typesystem.Type {
	for _, seg := range e.Segments {
		if seg.Ident != nil {
			c.checkValue(seg.Ident, nil)
		}
	}
	return typesystem.Str{}
}

// checkBinary types the builtin operators that survive desugaring. Literal
// operands adopt the other side's numeric type. Struct and pointer operand
// failures were already reported by the desugarer and stay silent here.
func (c *Checker) checkBinary(e *ast.BinaryExpression) typesystem.Type {
	lt := c.checkValue(e.Left, nil)
	rt := c.checkValue(e.Right, lt)
	if lt != nil && rt != nil && !lt.Equals(rt) && literalAdopts(e.Left, rt) {
		lt = c.checkValue(e.Left, rt)
	}
	if lt == nil || rt == nil {
		return nil
	}
	if t, ok := typesystem.BinaryOpType(e.Operator, lt, rt); ok {
		return t
	}
	if overloadable(lt) || overloadable(rt) {
		return nil
	}
	c.report(diagnostics.ErrT007, e.Token, e.Operator, lt, rt)
	return nil
}

func (c *Checker) checkUnary(e *ast.UnaryExpression, expected typesystem.Type) typesystem.Type {
	if e.Operator == "-" {
		if lit, ok := e.Operand.(*ast.IntegerLiteral); ok {
			return c.checkNegatedLiteral(e, lit, expected)
		}
	}
	var operandExpected typesystem.Type
	if e.Operator == "-" && typesystem.IsNumeric(expected) {
		operandExpected = expected
	}
	t := c.checkValue(e.Operand, operandExpected)
	if t == nil {
		return nil
	}
	if res, ok := typesystem.UnaryOpType(e.Operator, t); ok {
		return res
	}
	if overloadable(t) {
		return nil // desugarer reported the missing overload
	}
	if e.Operator == "not" {
		c.report(diagnostics.ErrT001, e.Operand.GetToken(), typesystem.Bool{}, t)
	} else {
		c.report(diagnostics.ErrT001, e.Operand.GetToken(), "a numeric type", t)
	}
	return nil
}

// checkNegatedLiteral ranges -literal as one number so that the most negative
// value of a width is accepted even though its positive form is not.
func (c *Checker) checkNegatedLiteral(e *ast.UnaryExpression, lit *ast.IntegerLiteral, expected typesystem.Type) typesystem.Type {
	var t typesystem.Type
	switch want := expected.(type) {
	case typesystem.Int:
		if !intFits(-lit.Value, want) {
			c.report(diagnostics.ErrT008, lit.Token, "-"+literalText(lit), want)
			return nil
		}
		t = want
	case typesystem.Float:
		t = want
	default:
		t = typesystem.Int{Width: 64, Signed: true}
	}
	c.ctx.Types[lit] = t
	return t
}

func (c *Checker) checkCall(e *ast.CallExpression) typesystem.Type {
	if e.Function == nil {
		return nil
	}
	sym := c.ctx.Resolutions[e.Function]
	if sym == nil {
		c.checkArguments(e.Arguments)
		return nil
	}
	if !sym.IsCallable() {
		c.report(diagnostics.ErrT001, e.Function.Token, "a function", describeSymbol(sym))
		c.checkArguments(e.Arguments)
		return nil
	}
	fn, ok := sym.Type.(typesystem.Function)
	if !ok {
		c.checkArguments(e.Arguments)
		return nil
	}
	if len(fn.TypeParams) > 0 {
		return c.checkGenericCall(e, sym.Name, fn)
	}
	if len(e.Arguments) != len(fn.Params) {
		c.report(diagnostics.ErrT009, e.Token, sym.Name, len(fn.Params), len(e.Arguments))
		c.checkArguments(e.Arguments)
		return fn.Return
	}
	for i, arg := range e.Arguments {
		c.expectValue(arg, fn.Params[i])
	}
	return fn.Return
}

func (c *Checker) checkGenericCall(e *ast.CallExpression, name string, fn typesystem.Function) typesystem.Type {
	subst, ok := c.TypeArguments(e, fn, name)
	if !ok {
		c.checkArguments(e.Arguments)
		return nil
	}
	params := make([]typesystem.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = typesystem.Substitute(p, subst)
	}
	ret := typesystem.Substitute(fn.Return, subst)
	if len(e.Arguments) != len(params) {
		c.report(diagnostics.ErrT009, e.Token, name, len(params), len(e.Arguments))
		c.checkArguments(e.Arguments)
		return ret
	}
	for i, arg := range e.Arguments {
		c.expectValue(arg, params[i])
	}
	return ret
}

// TypeArguments derives the substitution for a generic call, either from
// explicit type arguments or by inference from the argument types as they
// stand, literals included with their defaults: plus(1, 2.5) is a conflict
// between int and float, not a float call. Conflicts report M001, unbound
// parameters M003. The monomorphizer re-derives substitutions through this
// method; repeated reports collapse in the diagnostic dedup.
func (c *Checker) TypeArguments(e *ast.CallExpression, fn typesystem.Function, name string) (typesystem.Subst, bool) {
	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(fn.TypeParams) {
			c.report(diagnostics.ErrT009, e.Token, name, len(fn.TypeParams), len(e.TypeArgs))
			return nil, false
		}
		subst := make(typesystem.Subst, len(e.TypeArgs))
		for i, arg := range e.TypeArgs {
			t := c.ctx.ResolvedTypes[arg]
			if t == nil {
				return nil, false // unknown type name, already reported
			}
			subst[fn.TypeParams[i]] = t
		}
		return subst, true
	}

	args := make([]typesystem.Type, len(e.Arguments))
	for i, arg := range e.Arguments {
		args[i] = c.checkValue(arg, nil)
	}
	subst, conflict, missing := typesystem.InferTypeArgs(fn.TypeParams, fn.Params, args)
	if conflict != nil {
		c.report(diagnostics.ErrM001, e.Token, conflict.Param, conflict.First, conflict.Second)
		return nil, false
	}
	if len(missing) > 0 {
		for _, param := range missing {
			c.report(diagnostics.ErrM003, e.Token, param, name)
		}
		return nil, false
	}
	return subst, true
}

func (c *Checker) checkFieldAccess(e *ast.FieldAccessExpression) typesystem.Type {
	t := c.checkValue(e.Object, nil)
	if t == nil || e.Field == nil {
		return nil
	}
	st, ok := t.(*typesystem.Struct)
	if !ok {
		c.report(diagnostics.ErrT001, e.Object.GetToken(), "a struct", t)
		return nil
	}
	field, _ := st.Field(e.Field.Value)
	if field == nil {
		c.report(diagnostics.ErrR003, e.Field.Token, st.Name, e.Field.Value)
		return nil
	}
	return field.Type
}

func (c *Checker) checkIndex(e *ast.IndexExpression) typesystem.Type {
	t := c.checkValue(e.Object, nil)
	arr, isArray := t.(typesystem.Array)
	if t != nil && !isArray {
		c.report(diagnostics.ErrT001, e.Object.GetToken(), "an array", t)
	}
	idx := c.checkValue(e.Index, typesystem.Int{Width: 64, Signed: true})
	if idx != nil && !typesystem.IsInteger(idx) {
		c.report(diagnostics.ErrT001, e.Index.GetToken(), "an integer", idx)
	}
	if !isArray {
		return nil
	}
	return arr.Elem
}

func (c *Checker) checkCast(e *ast.CastExpression) typesystem.Type {
	vt := c.checkValue(e.Value, nil)
	target := c.ctx.ResolvedTypes[e.TargetType]
	if target == nil {
		return nil // unknown type name, already reported
	}
	if vt == nil {
		return target
	}
	if !typesystem.CastAllowed(vt, target) {
		c.report(diagnostics.ErrT002, e.Token, vt, target)
	}
	// the expression's type is the target either way; downstream checks
	// should not cascade off a bad cast
	return target
}

func (c *Checker) checkRef(e *ast.RefExpression) typesystem.Type {
	t := c.checkValue(e.Operand, nil)
	if t == nil {
		return nil
	}
	if !addressable(c.ctx.Resolutions, e.Operand) {
		c.report(diagnostics.ErrT001, e.Token, "an addressable expression", t)
		return nil
	}
	return typesystem.Pointer{Elem: t}
}

func (c *Checker) checkDeref(e *ast.DerefExpression) typesystem.Type {
	t := c.checkValue(e.Operand, nil)
	if t == nil {
		return nil
	}
	p, ok := t.(typesystem.Pointer)
	if !ok {
		// any included: deref through any needs an explicit cast first
		c.report(diagnostics.ErrT001, e.Operand.GetToken(), "a pointer", t)
		return nil
	}
	return p.Elem
}

func (c *Checker) checkAlloc(e *ast.AllocExpression) typesystem.Type {
	target := c.ctx.ResolvedTypes[e.TargetType]
	if target == nil {
		return nil
	}
	return typesystem.Pointer{Elem: target}
}

func (c *Checker) checkNew(e *ast.NewExpression) typesystem.Type {
	if e.TypeName == nil {
		return nil
	}
	sym := c.ctx.Resolutions[e.TypeName]
	if sym == nil {
		c.checkArguments(e.Arguments)
		return nil
	}
	st, ok := sym.Type.(*typesystem.Struct)
	if !ok {
		c.report(diagnostics.ErrT001, e.TypeName.Token, "a struct type", describeSymbol(sym))
		c.checkArguments(e.Arguments)
		return nil
	}
	if len(e.Arguments) != len(st.Fields) {
		c.report(diagnostics.ErrT009, e.Token, st.Name, len(st.Fields), len(e.Arguments))
		c.checkArguments(e.Arguments)
		return st
	}
	for i, arg := range e.Arguments {
		c.expectValue(arg, st.Fields[i].Type)
	}
	return st
}

// ---------- helpers ----------

func overloadable(t typesystem.Type) bool {
	return typesystem.IsStruct(t) || typesystem.IsPointerLike(t)
}

// literalAdopts reports whether the expression is a bare literal that can
// take on the given type instead of its default.
func literalAdopts(expr ast.Expression, t typesystem.Type) bool {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return typesystem.IsNumeric(t)
	case *ast.FloatLiteral:
		_, ok := t.(typesystem.Float)
		return ok
	case *ast.UnaryExpression:
		if e.Operator != "-" {
			return false
		}
		return literalAdopts(e.Operand, t)
	}
	return false
}

// addressable reports whether ref may take the operand's address: a
// variable, a field or index chain rooted in one, or a deref.
func addressable(resolutions map[*ast.Identifier]*symbols.Symbol, expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		sym := resolutions[e]
		return sym != nil && sym.Kind == symbols.VariableSymbol
	case *ast.FieldAccessExpression:
		return addressable(resolutions, e.Object)
	case *ast.IndexExpression:
		return addressable(resolutions, e.Object)
	case *ast.DerefExpression:
		return true
	}
	return false
}

func intFits(v int64, t typesystem.Int) bool {
	if t.Signed {
		switch t.Width {
		case 8:
			return v >= math.MinInt8 && v <= math.MaxInt8
		case 16:
			return v >= math.MinInt16 && v <= math.MaxInt16
		case 32:
			return v >= math.MinInt32 && v <= math.MaxInt32
		default:
			return true
		}
	}
	if v < 0 {
		return false
	}
	switch t.Width {
	case 8:
		return v <= math.MaxUint8
	case 16:
		return v <= math.MaxUint16
	case 32:
		return v <= math.MaxUint32
	default:
		return true
	}
}

func literalText(lit *ast.IntegerLiteral) string {
	if lit.Token.Lexeme != "" {
		return lit.Token.Lexeme
	}
	return fmt.Sprintf("%d", lit.Value)
}

func valueName(expr ast.Expression) string {
	if call, ok := expr.(*ast.CallExpression); ok && call.Function != nil {
		return call.Function.Value
	}
	return expr.TokenLiteral()
}

func describeSymbol(sym *symbols.Symbol) string {
	switch sym.Kind {
	case symbols.FunctionSymbol, symbols.ExternSymbol:
		return fmt.Sprintf("the function %q", sym.Name)
	case symbols.StructSymbol:
		return fmt.Sprintf("the type %q", sym.Name)
	case symbols.TypeParamSymbol:
		return fmt.Sprintf("the type parameter %q", sym.Name)
	}
	return sym.Kind.String()
}
