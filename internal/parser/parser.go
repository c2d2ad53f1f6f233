// Package parser builds the untyped AST from the token stream. It is a
// recursive-descent parser with Pratt-style expression parsing; syntax
// errors resynchronize at the next statement boundary so one run collects
// as many independent problems as possible.
package parser

import (
	"strings"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// Operator precedence, low to high. Postfix call and field access bind
// tightest; @ sits one step below them so index chains stay
// left-associative while a call or field access is still a valid index
// operand (a @ f(i) indexes with the call result). The as cast binds
// tighter than binary arithmetic but looser than unary operators.
const (
	_ int = iota
	LOWEST
	LOGIC_OR   // or, xor
	LOGIC_AND  // and
	EQUALITY   // ==, =/=
	RELATIONAL // <, >, <=, >=
	BITWISE    // bitand, bitor, bitxor
	SHIFT      // shl, shr
	SUM        // +, -
	PRODUCT    // *, /, mod
	CAST       // as
	PREFIX     // not, unary -, ref, deref
	INDEX      // @
	POSTFIX    // call, field access
)

var precedences = map[token.Type]int{
	token.OR:       LOGIC_OR,
	token.XOR:      LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       EQUALITY,
	token.NOT_EQ:   EQUALITY,
	token.LT:       RELATIONAL,
	token.GT:       RELATIONAL,
	token.LT_EQ:    RELATIONAL,
	token.GT_EQ:    RELATIONAL,
	token.BITAND:   BITWISE,
	token.BITOR:    BITWISE,
	token.BITXOR:   BITWISE,
	token.SHL:      SHIFT,
	token.SHR:      SHIFT,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.MOD:      PRODUCT,
	token.AS:       CAST,
	token.AT:       INDEX,
	token.DOT:      POSTFIX,
	token.LPAREN:   POSTFIX,
}

// maxTypeArgLookahead bounds the token window scanned to tell a generic
// call f<int>(x) apart from a less-than comparison.
const maxTypeArgLookahead = 32

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	stream *lexer.TokenStream
	ctx    *pipeline.Context

	curToken  token.Token
	peekToken token.Token

	depth           int
	inDepthRecovery bool

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(stream *lexer.TokenStream, ctx *pipeline.Context) *Parser {
	p := &Parser{stream: stream, ctx: ctx}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:   p.parseIdentifier,
		token.INT:     p.parseIntegerLiteral,
		token.FLOAT:   p.parseFloatLiteral,
		token.STRING:  p.parseStringLiteral,
		token.TRUE:    p.parseBooleanLiteral,
		token.FALSE:   p.parseBooleanLiteral,
		token.NIL:     p.parseNilLiteral,
		token.LPAREN:  p.parseGroupedExpression,
		token.MINUS:   p.parsePrefixExpression,
		token.NOT:     p.parsePrefixExpression,
		token.REF:     p.parseRefExpression,
		token.DEREF:   p.parseDerefExpression,
		token.ALLOC:   p.parseAllocExpression,
		token.NEW:     p.parseNewExpression,
		token.ILLEGAL: p.parseIllegalToken,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.MOD:      p.parseBinaryExpression,
		token.SHL:      p.parseBinaryExpression,
		token.SHR:      p.parseBinaryExpression,
		token.BITAND:   p.parseBinaryExpression,
		token.BITOR:    p.parseBinaryExpression,
		token.BITXOR:   p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NOT_EQ:   p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.LT_EQ:    p.parseBinaryExpression,
		token.GT_EQ:    p.parseBinaryExpression,
		token.AND:      p.parseBinaryExpression,
		token.OR:       p.parseBinaryExpression,
		token.XOR:      p.parseBinaryExpression,
		token.AS:       p.parseCastExpression,
		token.AT:       p.parseIndexExpression,
		token.DOT:      p.parseDotExpression,
		token.LPAREN:   p.parseCallExpression,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// ParseProgram parses the whole translation unit. It never returns nil;
// on syntax errors the program holds whatever statements survived and the
// context holds the diagnostics.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.RBRACE) {
			p.addError(diagnostics.ErrP001, p.curToken, describeToken(p.curToken), "a statement")
			p.nextToken()
			continue
		}

		var stmt ast.Statement
		switch p.curToken.Type {
		case token.DEF, token.EXTERN, token.STRUCT:
			stmt = p.parseDeclaration()
		default:
			stmt = p.parseStatement()
		}
		if stmt == nil {
			p.skipToStatementBoundary()
			continue
		}
		program.Statements = append(program.Statements, stmt)

		if !p.expectStatementEnd() {
			p.skipToStatementBoundary()
			continue
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances onto the peek token when it has the expected type and
// reports a syntax error otherwise.
func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(diagnostics.ErrP001, p.peekToken, describeToken(p.peekToken), describeType(t))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// skipPeekNewlines elides newline tokens in positions where the grammar
// allows a line break: inside parentheses and type-argument lists.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// expectStatementEnd checks that the token after a finished statement is a
// statement boundary, without consuming it.
func (p *Parser) expectStatementEnd() bool {
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return true
	}
	p.addError(diagnostics.ErrP001, p.peekToken, describeToken(p.peekToken), "end of statement")
	return false
}

// skipToStatementBoundary advances to the next newline, semicolon, closing
// brace, or end of input. Error recovery: everything up to the boundary
// belongs to the statement that failed to parse.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.SEMICOLON) &&
		!p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) addError(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	p.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

func (p *Parser) noPrefixParseFnError() {
	p.addError(diagnostics.ErrP001, p.curToken, describeToken(p.curToken), "an expression")
}

// describeToken names a token for diagnostics: `token "+"` for anything
// with a lexeme, and a phrase for the invisible kinds.
func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	case token.STRING:
		return "string literal"
	default:
		return `token "` + tok.Lexeme + `"`
	}
}

// describeType names an expected token type for diagnostics.
func describeType(t token.Type) string {
	switch t {
	case token.IDENT:
		return "an identifier"
	case token.INT:
		return "an integer literal"
	case token.FLOAT:
		return "a float literal"
	case token.STRING:
		return "a string literal"
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	default:
		return `"` + strings.ToLower(string(t)) + `"`
	}
}
