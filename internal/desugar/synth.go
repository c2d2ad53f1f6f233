package desugar

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// typeOf is the desugarer's local type synthesizer. It follows the rules the
// checker applies later but never reports; nil means the type is not yet
// known, which turns the rewrite touching that node into a no-op. Children
// are synthesized after they were rewritten, so operator nodes seen here are
// the ones that stayed builtin.
func (d *Desugarer) typeOf(expr ast.Expression) typesystem.Type {
	switch e := expr.(type) {
	case *ast.Identifier:
		if sym := d.ctx.Resolutions[e]; sym != nil {
			return sym.Type
		}
		return nil
	case *ast.IntegerLiteral:
		return typesystem.Int{Width: 64, Signed: true}
	case *ast.FloatLiteral:
		return typesystem.Float{Width: 64}
	case *ast.BooleanLiteral:
		return typesystem.Bool{}
	case *ast.StringLiteral:
		return typesystem.Str{}
	case *ast.InterpolatedString:
		return typesystem.Str{}
	case *ast.NilLiteral:
		return typesystem.Any{}
	case *ast.BinaryExpression:
		lt, rt := d.binaryOperandTypes(e)
		if t, ok := typesystem.BinaryOpType(e.Operator, lt, rt); ok {
			return t
		}
		return nil
	case *ast.UnaryExpression:
		if t, ok := typesystem.UnaryOpType(e.Operator, d.typeOf(e.Operand)); ok {
			return t
		}
		return nil
	case *ast.CallExpression:
		return d.callResultType(e)
	case *ast.FieldAccessExpression:
		if st, ok := d.typeOf(e.Object).(*typesystem.Struct); ok && e.Field != nil {
			if field, _ := st.Field(e.Field.Value); field != nil {
				return field.Type
			}
		}
		return nil
	case *ast.IndexExpression:
		if arr, ok := d.typeOf(e.Object).(typesystem.Array); ok {
			return arr.Elem
		}
		return nil
	case *ast.CastExpression:
		return d.ctx.ResolvedTypes[e.TargetType]
	case *ast.RefExpression:
		if t := d.typeOf(e.Operand); t != nil {
			return typesystem.Pointer{Elem: t}
		}
		return nil
	case *ast.DerefExpression:
		if p, ok := d.typeOf(e.Operand).(typesystem.Pointer); ok {
			return p.Elem
		}
		return nil
	case *ast.AllocExpression:
		if t := d.ctx.ResolvedTypes[e.TargetType]; t != nil {
			return typesystem.Pointer{Elem: t}
		}
		return nil
	case *ast.NewExpression:
		if e.TypeName != nil {
			if sym := d.ctx.Resolutions[e.TypeName]; sym != nil {
				return sym.Type
			}
		}
		return nil
	default:
		// MethodCallExpression only survives a failed rewrite
		return nil
	}
}

// binaryOperandTypes synthesizes both operand types and approximates the
// checker's literal adoption: a bare numeric literal takes the other
// operand's numeric type so that x + 1 synthesizes to x's type.
func (d *Desugarer) binaryOperandTypes(e *ast.BinaryExpression) (typesystem.Type, typesystem.Type) {
	lt, rt := d.typeOf(e.Left), d.typeOf(e.Right)
	if lt == nil || rt == nil || lt.Equals(rt) {
		return lt, rt
	}
	if literalAdopts(e.Left, rt) {
		return rt, rt
	}
	if literalAdopts(e.Right, lt) {
		return lt, lt
	}
	return lt, rt
}

// literalAdopts reports whether expr is a numeric literal that may take type
// t from its context: integer literals adopt any numeric type, float
// literals only float widths. Range checking stays with the checker.
func literalAdopts(expr ast.Expression, t typesystem.Type) bool {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return typesystem.IsNumeric(t)
	case *ast.FloatLiteral:
		_, isFloat := t.(typesystem.Float)
		return isFloat
	case *ast.UnaryExpression:
		return e.Operator == "-" && literalAdopts(e.Operand, t)
	}
	return false
}

// callResultType types a resolved call, substituting inferred type arguments
// for generic callees so var declarations reading generic calls still infer
// concrete types before monomorphization.
func (d *Desugarer) callResultType(e *ast.CallExpression) typesystem.Type {
	if e.Function == nil {
		return nil
	}
	sym := d.ctx.Resolutions[e.Function]
	if sym == nil || !sym.IsCallable() {
		return nil
	}
	fn, ok := sym.Type.(typesystem.Function)
	if !ok {
		return nil
	}
	if len(fn.TypeParams) == 0 {
		return fn.Return
	}
	subst := d.typeArgsFor(e, fn)
	if subst == nil {
		return nil
	}
	ret := typesystem.Substitute(fn.Return, subst)
	if typesystem.ContainsGeneric(ret) {
		return nil
	}
	return ret
}

// typeArgsFor derives a generic call's substitution from explicit type
// arguments or, failing that, from the argument types. nil means the
// substitution is incomplete; the checker reports the reason.
func (d *Desugarer) typeArgsFor(e *ast.CallExpression, fn typesystem.Function) typesystem.Subst {
	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(fn.TypeParams) {
			return nil
		}
		s := make(typesystem.Subst, len(e.TypeArgs))
		for i, arg := range e.TypeArgs {
			t := d.ctx.ResolvedTypes[arg]
			if t == nil {
				return nil
			}
			s[fn.TypeParams[i]] = t
		}
		return s
	}
	args := make([]typesystem.Type, len(e.Arguments))
	for i, arg := range e.Arguments {
		args[i] = d.typeOf(arg)
	}
	s, conflict, missing := typesystem.InferTypeArgs(fn.TypeParams, fn.Params, args)
	if conflict != nil || len(missing) > 0 {
		return nil
	}
	return s
}
