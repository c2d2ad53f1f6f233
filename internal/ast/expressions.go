package ast

import (
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// Identifier is a name in expression position.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)     { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// IntegerLiteral is a decimal integer literal. The checker decides its width
// from context; the default is int.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) Accept(v Visitor)     { v.VisitIntegerLiteral(il) }
func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// FloatLiteral is a floating point literal, recognized by its '.'.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) Accept(v Visitor)     { v.VisitFloatLiteral(fl) }
func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) Accept(v Visitor)     { v.VisitBooleanLiteral(bl) }
func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

// StringLiteral is a string without interpolation. Value holds the decoded
// content.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Accept(v Visitor)     { v.VisitStringLiteral(sl) }
func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// StringSegment is one piece of an interpolated string: either literal text
// or an {identifier} span.
type StringSegment struct {
	Text  string
	Ident *Identifier // nil for text segments
}

// InterpolatedString is a string literal with embedded {identifier} spans.
// The desugarer folds it into str conversions and concatenation.
type InterpolatedString struct {
	Token    token.Token
	Segments []StringSegment
}

func (is *InterpolatedString) Accept(v Visitor)     { v.VisitInterpolatedString(is) }
func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Lexeme }
func (is *InterpolatedString) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// NilLiteral is the nil pointer literal. Its type is any.
type NilLiteral struct {
	Token token.Token
}

func (nl *NilLiteral) Accept(v Visitor)     { v.VisitNilLiteral(nl) }
func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NilLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}

// BinaryExpression applies an infix operator. After desugaring, only
// builtin primitive operators remain as BinaryExpressions.
type BinaryExpression struct {
	Token    token.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) Accept(v Visitor)     { v.VisitBinaryExpression(be) }
func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BinaryExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// UnaryExpression applies a prefix operator: not x, -x.
type UnaryExpression struct {
	Token    token.Token // the operator token
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) Accept(v Visitor)     { v.VisitUnaryExpression(ue) }
func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Lexeme }
func (ue *UnaryExpression) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

// CallExpression calls a named function. TypeArgs holds explicit generic
// type arguments; when empty the monomorphizer infers them from the
// argument types.
type CallExpression struct {
	Token     token.Token // the '(' token
	Function  *Identifier
	TypeArgs  []TypeExpr
	Arguments []Expression
}

func (ce *CallExpression) Accept(v Visitor)     { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// MethodCallExpression is the associated-call sugar receiver.f(args) as
// parsed. The desugarer rewrites it into a CallExpression with the receiver
// as first argument; none survive past desugaring.
type MethodCallExpression struct {
	Token     token.Token // the '.' token
	Receiver  Expression
	Name      *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) Accept(v Visitor)     { v.VisitMethodCallExpression(mc) }
func (mc *MethodCallExpression) expressionNode()      {}
func (mc *MethodCallExpression) TokenLiteral() string { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// FieldAccessExpression reads a struct field: p.name.
type FieldAccessExpression struct {
	Token  token.Token // the '.' token
	Object Expression
	Field  *Identifier
}

func (fa *FieldAccessExpression) Accept(v Visitor)     { v.VisitFieldAccessExpression(fa) }
func (fa *FieldAccessExpression) expressionNode()      {}
func (fa *FieldAccessExpression) TokenLiteral() string { return fa.Token.Lexeme }
func (fa *FieldAccessExpression) GetToken() token.Token {
	if fa == nil {
		return token.Token{}
	}
	return fa.Token
}

// IndexExpression indexes an array: a @ i.
type IndexExpression struct {
	Token  token.Token // the '@' token
	Object Expression
	Index  Expression
}

func (ie *IndexExpression) Accept(v Visitor)     { v.VisitIndexExpression(ie) }
func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// CastExpression converts between types from the allowed cast table:
// x as float.
type CastExpression struct {
	Token      token.Token // the 'as' token
	Value      Expression
	TargetType TypeExpr
}

func (ce *CastExpression) Accept(v Visitor)     { v.VisitCastExpression(ce) }
func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CastExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// RefExpression takes the address of an lvalue: ref x yields ptr T.
type RefExpression struct {
	Token   token.Token // the 'ref' token
	Operand Expression
}

func (re *RefExpression) Accept(v Visitor)     { v.VisitRefExpression(re) }
func (re *RefExpression) expressionNode()      {}
func (re *RefExpression) TokenLiteral() string { return re.Token.Lexeme }
func (re *RefExpression) GetToken() token.Token {
	if re == nil {
		return token.Token{}
	}
	return re.Token
}

// DerefExpression reads through a pointer: deref p yields T for p: ptr T.
type DerefExpression struct {
	Token   token.Token // the 'deref' token
	Operand Expression
}

func (de *DerefExpression) Accept(v Visitor)     { v.VisitDerefExpression(de) }
func (de *DerefExpression) expressionNode()      {}
func (de *DerefExpression) TokenLiteral() string { return de.Token.Lexeme }
func (de *DerefExpression) GetToken() token.Token {
	if de == nil {
		return token.Token{}
	}
	return de.Token
}

// AllocExpression allocates heap memory for a type: alloc int yields
// ptr int. Paired with del.
type AllocExpression struct {
	Token      token.Token // the 'alloc' token
	TargetType TypeExpr
}

func (ae *AllocExpression) Accept(v Visitor)     { v.VisitAllocExpression(ae) }
func (ae *AllocExpression) expressionNode()      {}
func (ae *AllocExpression) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AllocExpression) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// NewExpression constructs a struct value with positional field values:
// new Person("Linus", 42).
type NewExpression struct {
	Token     token.Token // the 'new' token
	TypeName  *Identifier
	Arguments []Expression
}

func (ne *NewExpression) Accept(v Visitor)     { v.VisitNewExpression(ne) }
func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Lexeme }
func (ne *NewExpression) GetToken() token.Token {
	if ne == nil {
		return token.Token{}
	}
	return ne.Token
}
