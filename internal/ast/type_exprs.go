package ast

import (
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// NamedType is a type written as a plain name: int, str, Person, or a type
// parameter inside a generic function.
type NamedType struct {
	Token token.Token
	Name  string
}

func (nt *NamedType) Accept(v Visitor)     { v.VisitNamedType(nt) }
func (nt *NamedType) typeExprNode()        {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// PointerType is "ptr T".
type PointerType struct {
	Token token.Token // the 'ptr' token
	Elem  TypeExpr
}

func (pt *PointerType) Accept(v Visitor)     { v.VisitPointerType(pt) }
func (pt *PointerType) typeExprNode()        {}
func (pt *PointerType) TokenLiteral() string { return pt.Token.Lexeme }
func (pt *PointerType) GetToken() token.Token {
	if pt == nil {
		return token.Token{}
	}
	return pt.Token
}

// ArrayType is "arr<T, N>".
type ArrayType struct {
	Token token.Token // the 'arr' token
	Elem  TypeExpr
	Size  *IntegerLiteral
}

func (at *ArrayType) Accept(v Visitor)     { v.VisitArrayType(at) }
func (at *ArrayType) typeExprNode()        {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token {
	if at == nil {
		return token.Token{}
	}
	return at.Token
}
