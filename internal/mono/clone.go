package mono

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
)

// cloneFunction deep-copies a function declaration so a specialization can
// be resolved, desugared, and checked without touching the generic original.
// Every node comes out fresh: the resolution and type maps key on node
// identity, and two specializations of one function must not share entries.
func cloneFunction(fn *ast.FunctionDeclaration) *ast.FunctionDeclaration {
	out := &ast.FunctionDeclaration{
		Token:      fn.Token,
		Name:       cloneIdent(fn.Name),
		ReturnType: cloneTypeExpr(fn.ReturnType),
		Body:       cloneBlock(fn.Body),
	}
	for _, tp := range fn.TypeParams {
		out.TypeParams = append(out.TypeParams, cloneIdent(tp))
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, cloneParameter(p))
	}
	return out
}

func cloneIdent(id *ast.Identifier) *ast.Identifier {
	if id == nil {
		return nil
	}
	return &ast.Identifier{Token: id.Token, Value: id.Value}
}

func cloneParameter(p *ast.Parameter) *ast.Parameter {
	if p == nil {
		return nil
	}
	return &ast.Parameter{Token: p.Token, Name: cloneIdent(p.Name), Type: cloneTypeExpr(p.Type)}
}

func cloneBlock(block *ast.BlockStatement) *ast.BlockStatement {
	if block == nil {
		return nil
	}
	out := &ast.BlockStatement{Token: block.Token}
	for _, stmt := range block.Statements {
		out.Statements = append(out.Statements, cloneStmt(stmt))
	}
	return out
}

func cloneStmt(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		return &ast.VarDeclStatement{
			Token:        s.Token,
			Name:         cloneIdent(s.Name),
			DeclaredType: cloneTypeExpr(s.DeclaredType),
			Value:        cloneExpr(s.Value),
			Constant:     s.Constant,
		}
	case *ast.AssignStatement:
		return &ast.AssignStatement{Token: s.Token, Target: cloneExpr(s.Target), Value: cloneExpr(s.Value)}
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: s.Token, Expression: cloneExpr(s.Expression)}
	case *ast.BlockStatement:
		return cloneBlock(s)
	case *ast.IfStatement:
		out := &ast.IfStatement{Token: s.Token, Condition: cloneExpr(s.Condition), Consequence: cloneBlock(s.Consequence)}
		if s.Alternative != nil {
			out.Alternative = cloneStmt(s.Alternative)
		}
		return out
	case *ast.WhileStatement:
		return &ast.WhileStatement{Token: s.Token, Condition: cloneExpr(s.Condition), Body: cloneBlock(s.Body)}
	case *ast.ForStatement:
		return &ast.ForStatement{
			Token:    s.Token,
			Binding:  cloneIdent(s.Binding),
			ByIndex:  s.ByIndex,
			Iterable: cloneExpr(s.Iterable),
			Body:     cloneBlock(s.Body),
		}
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{Token: s.Token, Value: cloneExpr(s.Value)}
	case *ast.ErrorStatement:
		out := &ast.ErrorStatement{Token: s.Token}
		if s.Message != nil {
			out.Message = &ast.StringLiteral{Token: s.Message.Token, Value: s.Message.Value}
		}
		return out
	case *ast.PrintStatement:
		return &ast.PrintStatement{Token: s.Token, Value: cloneExpr(s.Value)}
	case *ast.DebugStatement:
		return &ast.DebugStatement{Token: s.Token, Value: cloneExpr(s.Value)}
	case *ast.DelStatement:
		return &ast.DelStatement{Token: s.Token, Target: cloneExpr(s.Target)}
	}
	// declarations cannot nest inside bodies
	return stmt
}

func cloneExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return cloneIdent(e)
	case *ast.IntegerLiteral:
		return &ast.IntegerLiteral{Token: e.Token, Value: e.Value}
	case *ast.FloatLiteral:
		return &ast.FloatLiteral{Token: e.Token, Value: e.Value}
	case *ast.BooleanLiteral:
		return &ast.BooleanLiteral{Token: e.Token, Value: e.Value}
	case *ast.StringLiteral:
		return &ast.StringLiteral{Token: e.Token, Value: e.Value}
	case *ast.InterpolatedString:
		out := &ast.InterpolatedString{Token: e.Token}
		for _, seg := range e.Segments {
			out.Segments = append(out.Segments, ast.StringSegment{Text: seg.Text, Ident: cloneIdent(seg.Ident)})
		}
		return out
	case *ast.NilLiteral:
		return &ast.NilLiteral{Token: e.Token}
	case *ast.BinaryExpression:
		return &ast.BinaryExpression{Token: e.Token, Left: cloneExpr(e.Left), Operator: e.Operator, Right: cloneExpr(e.Right)}
	case *ast.UnaryExpression:
		return &ast.UnaryExpression{Token: e.Token, Operator: e.Operator, Operand: cloneExpr(e.Operand)}
	case *ast.CallExpression:
		out := &ast.CallExpression{Token: e.Token, Function: cloneIdent(e.Function)}
		for _, arg := range e.TypeArgs {
			out.TypeArgs = append(out.TypeArgs, cloneTypeExpr(arg))
		}
		for _, arg := range e.Arguments {
			out.Arguments = append(out.Arguments, cloneExpr(arg))
		}
		return out
	case *ast.MethodCallExpression:
		out := &ast.MethodCallExpression{Token: e.Token, Receiver: cloneExpr(e.Receiver), Name: cloneIdent(e.Name)}
		for _, arg := range e.Arguments {
			out.Arguments = append(out.Arguments, cloneExpr(arg))
		}
		return out
	case *ast.FieldAccessExpression:
		return &ast.FieldAccessExpression{Token: e.Token, Object: cloneExpr(e.Object), Field: cloneIdent(e.Field)}
	case *ast.IndexExpression:
		return &ast.IndexExpression{Token: e.Token, Object: cloneExpr(e.Object), Index: cloneExpr(e.Index)}
	case *ast.CastExpression:
		return &ast.CastExpression{Token: e.Token, Value: cloneExpr(e.Value), TargetType: cloneTypeExpr(e.TargetType)}
	case *ast.RefExpression:
		return &ast.RefExpression{Token: e.Token, Operand: cloneExpr(e.Operand)}
	case *ast.DerefExpression:
		return &ast.DerefExpression{Token: e.Token, Operand: cloneExpr(e.Operand)}
	case *ast.AllocExpression:
		return &ast.AllocExpression{Token: e.Token, TargetType: cloneTypeExpr(e.TargetType)}
	case *ast.NewExpression:
		out := &ast.NewExpression{Token: e.Token, TypeName: cloneIdent(e.TypeName)}
		for _, arg := range e.Arguments {
			out.Arguments = append(out.Arguments, cloneExpr(arg))
		}
		return out
	}
	return expr
}

func cloneTypeExpr(te ast.TypeExpr) ast.TypeExpr {
	switch t := te.(type) {
	case nil:
		return nil
	case *ast.NamedType:
		return &ast.NamedType{Token: t.Token, Name: t.Name}
	case *ast.PointerType:
		return &ast.PointerType{Token: t.Token, Elem: cloneTypeExpr(t.Elem)}
	case *ast.ArrayType:
		out := &ast.ArrayType{Token: t.Token, Elem: cloneTypeExpr(t.Elem)}
		if t.Size != nil {
			out.Size = &ast.IntegerLiteral{Token: t.Size.Token, Value: t.Size.Value}
		}
		return out
	}
	return te
}
