package mono

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
)

// walkStmt calls visit on every expression under stmt, children before
// parents. Call-site rewriting and the post-run concreteness sweep both ride
// on it.
func walkStmt(stmt ast.Statement, visit func(ast.Expression)) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		walkExpr(s.Value, visit)
	case *ast.AssignStatement:
		walkExpr(s.Target, visit)
		walkExpr(s.Value, visit)
	case *ast.ExpressionStatement:
		walkExpr(s.Expression, visit)
	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			walkStmt(inner, visit)
		}
	case *ast.IfStatement:
		walkExpr(s.Condition, visit)
		if s.Consequence != nil {
			walkStmt(s.Consequence, visit)
		}
		if s.Alternative != nil {
			walkStmt(s.Alternative, visit)
		}
	case *ast.WhileStatement:
		walkExpr(s.Condition, visit)
		if s.Body != nil {
			walkStmt(s.Body, visit)
		}
	case *ast.ForStatement:
		walkExpr(s.Iterable, visit)
		if s.Body != nil {
			walkStmt(s.Body, visit)
		}
	case *ast.ReturnStatement:
		walkExpr(s.Value, visit)
	case *ast.PrintStatement:
		walkExpr(s.Value, visit)
	case *ast.DebugStatement:
		walkExpr(s.Value, visit)
	case *ast.DelStatement:
		walkExpr(s.Target, visit)
	}
}

func walkExpr(expr ast.Expression, visit func(ast.Expression)) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.InterpolatedString:
		for _, seg := range e.Segments {
			if seg.Ident != nil {
				walkExpr(seg.Ident, visit)
			}
		}
	case *ast.BinaryExpression:
		walkExpr(e.Left, visit)
		walkExpr(e.Right, visit)
	case *ast.UnaryExpression:
		walkExpr(e.Operand, visit)
	case *ast.CallExpression:
		for _, arg := range e.Arguments {
			walkExpr(arg, visit)
		}
	case *ast.MethodCallExpression:
		walkExpr(e.Receiver, visit)
		for _, arg := range e.Arguments {
			walkExpr(arg, visit)
		}
	case *ast.FieldAccessExpression:
		walkExpr(e.Object, visit)
	case *ast.IndexExpression:
		walkExpr(e.Object, visit)
		walkExpr(e.Index, visit)
	case *ast.CastExpression:
		walkExpr(e.Value, visit)
	case *ast.RefExpression:
		walkExpr(e.Operand, visit)
	case *ast.DerefExpression:
		walkExpr(e.Operand, visit)
	case *ast.NewExpression:
		for _, arg := range e.Arguments {
			walkExpr(arg, visit)
		}
	}
	visit(expr)
}
