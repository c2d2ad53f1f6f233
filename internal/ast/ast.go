// Package ast defines the syntax tree produced by the parser. Nodes form a
// tree with exclusive ownership; every node carries the token it starts at
// for diagnostics. Printers traverse via Accept/Visitor, the analysis stages
// via type switches.
package ast

import (
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	Accept(v Visitor)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// TypeExpr is a Node that represents a type annotation as written in the
// source. The resolver turns TypeExprs into typesystem types.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Program is the root node of every AST the parser produces.
type Program struct {
	File       string // source file path, empty for in-memory input
	Statements []Statement
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Statements) == 0 {
		return token.Token{}
	}
	return p.Statements[0].GetToken()
}

// Visitor is implemented by tree consumers that need full dispatch, such as
// the pretty printer.
type Visitor interface {
	VisitProgram(n *Program)

	VisitVarDeclStatement(n *VarDeclStatement)
	VisitAssignStatement(n *AssignStatement)
	VisitExpressionStatement(n *ExpressionStatement)
	VisitBlockStatement(n *BlockStatement)
	VisitIfStatement(n *IfStatement)
	VisitWhileStatement(n *WhileStatement)
	VisitForStatement(n *ForStatement)
	VisitReturnStatement(n *ReturnStatement)
	VisitErrorStatement(n *ErrorStatement)
	VisitPrintStatement(n *PrintStatement)
	VisitDebugStatement(n *DebugStatement)
	VisitDelStatement(n *DelStatement)
	VisitFunctionDeclaration(n *FunctionDeclaration)
	VisitExternDeclaration(n *ExternDeclaration)
	VisitStructDeclaration(n *StructDeclaration)
	VisitParameter(n *Parameter)

	VisitIdentifier(n *Identifier)
	VisitIntegerLiteral(n *IntegerLiteral)
	VisitFloatLiteral(n *FloatLiteral)
	VisitBooleanLiteral(n *BooleanLiteral)
	VisitStringLiteral(n *StringLiteral)
	VisitInterpolatedString(n *InterpolatedString)
	VisitNilLiteral(n *NilLiteral)
	VisitBinaryExpression(n *BinaryExpression)
	VisitUnaryExpression(n *UnaryExpression)
	VisitCallExpression(n *CallExpression)
	VisitMethodCallExpression(n *MethodCallExpression)
	VisitFieldAccessExpression(n *FieldAccessExpression)
	VisitIndexExpression(n *IndexExpression)
	VisitCastExpression(n *CastExpression)
	VisitRefExpression(n *RefExpression)
	VisitDerefExpression(n *DerefExpression)
	VisitAllocExpression(n *AllocExpression)
	VisitNewExpression(n *NewExpression)

	VisitNamedType(n *NamedType)
	VisitPointerType(n *PointerType)
	VisitArrayType(n *ArrayType)
}
