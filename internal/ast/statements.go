package ast

import (
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// VarDeclStatement declares a variable or constant.
// var a: int = 42, var a = 42, var a: int, const pi = 3.14
type VarDeclStatement struct {
	Token        token.Token // the 'var' or 'const' token
	Name         *Identifier
	DeclaredType TypeExpr   // nil when the type is inferred
	Value        Expression // nil when only declared
	Constant     bool
}

func (vd *VarDeclStatement) Accept(v Visitor)     { v.VisitVarDeclStatement(vd) }
func (vd *VarDeclStatement) statementNode()       {}
func (vd *VarDeclStatement) TokenLiteral() string { return vd.Token.Lexeme }
func (vd *VarDeclStatement) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// AssignStatement writes a value through an lvalue.
// a = 1, p.name = "x", a @ 0 = 2, deref p = 3
type AssignStatement struct {
	Token  token.Token // the '=' token
	Target Expression
	Value  Expression
}

func (as *AssignStatement) Accept(v Visitor)     { v.VisitAssignStatement(as) }
func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

// ExpressionStatement is an expression in statement position, usually a call.
type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) Accept(v Visitor)     { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement is a brace-delimited statement list with its own scope.
type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) Accept(v Visitor)     { v.VisitBlockStatement(bs) }
func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// IfStatement with optional else branch. Alternative is either a
// *BlockStatement or another *IfStatement (else if).
type IfStatement struct {
	Token       token.Token // the 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) Accept(v Visitor)     { v.VisitIfStatement(is) }
func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) Accept(v Visitor)     { v.VisitWhileStatement(ws) }
func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// ForStatement iterates an array. "for x in a" binds the elements,
// "for i of a" binds the integer indices.
type ForStatement struct {
	Token    token.Token // the 'for' token
	Binding  *Identifier
	ByIndex  bool // true for 'of', false for 'in'
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) Accept(v Visitor)     { v.VisitForStatement(fs) }
func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// ReturnStatement with an optional value.
type ReturnStatement struct {
	Token token.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) Accept(v Visitor)     { v.VisitReturnStatement(rs) }
func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ErrorStatement is the language-level abort primitive: error "message".
// It is not a compiler diagnostic; the backend lowers it to a runtime abort
// carrying the literal message and position.
type ErrorStatement struct {
	Token   token.Token // the 'error' token
	Message *StringLiteral
}

func (es *ErrorStatement) Accept(v Visitor)     { v.VisitErrorStatement(es) }
func (es *ErrorStatement) statementNode()       {}
func (es *ErrorStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ErrorStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// PrintStatement: print expr.
type PrintStatement struct {
	Token token.Token // the 'print' token
	Value Expression
}

func (ps *PrintStatement) Accept(v Visitor)     { v.VisitPrintStatement(ps) }
func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) GetToken() token.Token {
	if ps == nil {
		return token.Token{}
	}
	return ps.Token
}

// DebugStatement: debug expr. Like print but the backend includes the source
// position in the output.
type DebugStatement struct {
	Token token.Token // the 'debug' token
	Value Expression
}

func (ds *DebugStatement) Accept(v Visitor)     { v.VisitDebugStatement(ds) }
func (ds *DebugStatement) statementNode()       {}
func (ds *DebugStatement) TokenLiteral() string { return ds.Token.Lexeme }
func (ds *DebugStatement) GetToken() token.Token {
	if ds == nil {
		return token.Token{}
	}
	return ds.Token
}

// DelStatement frees a heap allocation: del p.
type DelStatement struct {
	Token  token.Token // the 'del' token
	Target Expression
}

func (ds *DelStatement) Accept(v Visitor)     { v.VisitDelStatement(ds) }
func (ds *DelStatement) statementNode()       {}
func (ds *DelStatement) TokenLiteral() string { return ds.Token.Lexeme }
func (ds *DelStatement) GetToken() token.Token {
	if ds == nil {
		return token.Token{}
	}
	return ds.Token
}

// Parameter is a typed name in a function signature or struct field list.
type Parameter struct {
	Token token.Token // the name token
	Name  *Identifier
	Type  TypeExpr
}

func (p *Parameter) Accept(v Visitor)     { v.VisitParameter(p) }
func (p *Parameter) TokenLiteral() string { return p.Token.Lexeme }
func (p *Parameter) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDeclaration defines a function, generic when TypeParams is
// non-empty.
// def add(x: int, y: int): int { return x + y }
// def plus<T>(first: T, second: T): T { return first + second }
type FunctionDeclaration struct {
	Token      token.Token // the 'def' token
	Name       *Identifier
	TypeParams []*Identifier
	Params     []*Parameter
	ReturnType TypeExpr // nil means nothing
	Body       *BlockStatement
}

func (fd *FunctionDeclaration) Accept(v Visitor)     { v.VisitFunctionDeclaration(fd) }
func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// ExternDeclaration binds a name to an external symbol resolved by the
// linker, never by this pipeline.
// extern putchar(char: int): int
type ExternDeclaration struct {
	Token      token.Token // the 'extern' token
	Name       *Identifier
	Params     []*Parameter
	ReturnType TypeExpr // nil means nothing
}

func (ed *ExternDeclaration) Accept(v Visitor)     { v.VisitExternDeclaration(ed) }
func (ed *ExternDeclaration) statementNode()       {}
func (ed *ExternDeclaration) TokenLiteral() string { return ed.Token.Lexeme }
func (ed *ExternDeclaration) GetToken() token.Token {
	if ed == nil {
		return token.Token{}
	}
	return ed.Token
}

// StructDeclaration defines a nominal struct type with ordered fields.
// struct Person(name: str, age: uint8)
type StructDeclaration struct {
	Token  token.Token // the 'struct' token
	Name   *Identifier
	Fields []*Parameter
}

func (sd *StructDeclaration) Accept(v Visitor)     { v.VisitStructDeclaration(sd) }
func (sd *StructDeclaration) statementNode()       {}
func (sd *StructDeclaration) TokenLiteral() string { return sd.Token.Lexeme }
func (sd *StructDeclaration) GetToken() token.Token {
	if sd == nil {
		return token.Token{}
	}
	return sd.Token
}
