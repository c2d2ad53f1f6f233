package parser

import (
	"strconv"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > config.MaxExpressionDepth {
		if !p.inDepthRecovery {
			p.addError(diagnostics.ErrP003, p.curToken)
			p.inDepthRecovery = true
			p.skipToStatementBoundary()
			p.inDepthRecovery = false
		}
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		nextExp := infix(leftExp)
		if nextExp == nil {
			return nil
		}
		leftExp = nextExp
	}

	return leftExp
}

// parseIdentifier parses a name in expression position. A following '<'
// that scans as a type-argument list followed by '(' makes it a generic
// call; otherwise the '<' is left for the relational operator.
func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.LT) && p.looksLikeGenericCall() {
		return p.parseGenericCall(ident)
	}
	return ident
}

// looksLikeGenericCall scans a bounded window past the '<' after an
// identifier. It accepts only tokens that can appear in a type-argument
// list and requires the matching '>' to be followed by '('. A relational
// chain like a < b > (c) that happens to fit this shape parses as a
// generic call; parenthesize the comparison to override.
func (p *Parser) looksLikeGenericCall() bool {
	depth := 1
	for i := 0; i < maxTypeArgLookahead; i++ {
		tok := p.stream.PeekAt(i)
		switch tok.Type {
		case token.LT:
			depth++
		case token.GT:
			depth--
			if depth == 0 {
				return p.stream.PeekAt(i+1).Type == token.LPAREN
			}
		case token.IDENT, token.PTR, token.ARR, token.COMMA, token.INT, token.NEWLINE:
			// plausible inside a type-argument list
		default:
			return false
		}
	}
	return false
}

// parseGenericCall parses f<type, ...>(args). curToken is the function
// name, peekToken the '<'.
func (p *Parser) parseGenericCall(fn *ast.Identifier) ast.Expression {
	p.nextToken() // the '<'

	call := &ast.CallExpression{Function: fn}
	for {
		p.skipPeekNewlines()
		p.nextToken()
		typeArg := p.parseTypeExpression()
		if typeArg == nil {
			return nil
		}
		call.TypeArgs = append(call.TypeArgs, typeArg)
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.GT) {
		return nil
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	call.Token = p.curToken
	call.Arguments = p.parseCallArguments()
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Lexeme, 10, 64)
	if err != nil {
		p.addError(diagnostics.ErrT008, p.curToken, p.curToken.Lexeme, "int")
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
	if err != nil {
		p.addError(diagnostics.ErrT008, p.curToken, p.curToken.Lexeme, "float")
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

// parseIllegalToken swallows tokens the lexer already reported on, so a
// single bad character does not also produce a syntax error.
func (p *Parser) parseIllegalToken() ast.Expression {
	return nil
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.UnaryExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expr.Operand = p.parseExpression(PREFIX)
	if expr.Operand == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseRefExpression() ast.Expression {
	expr := &ast.RefExpression{Token: p.curToken}
	p.nextToken()
	expr.Operand = p.parseExpression(PREFIX)
	if expr.Operand == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseDerefExpression() ast.Expression {
	expr := &ast.DerefExpression{Token: p.curToken}
	p.nextToken()
	expr.Operand = p.parseExpression(PREFIX)
	if expr.Operand == nil {
		return nil
	}
	return expr
}

// parseAllocExpression parses alloc T, which yields a ptr T into the heap.
func (p *Parser) parseAllocExpression() ast.Expression {
	expr := &ast.AllocExpression{Token: p.curToken}
	p.nextToken()
	expr.TargetType = p.parseTypeExpression()
	if expr.TargetType == nil {
		return nil
	}
	return expr
}

// parseNewExpression parses new Struct(args) with positional field values.
func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.TypeName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	expr.Arguments = p.parseCallArguments()
	if expr.Arguments == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	// A line may break after a binary operator.
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseCastExpression parses left as Type.
func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	expr := &ast.CastExpression{Token: p.curToken, Value: left}
	p.nextToken()
	expr.TargetType = p.parseTypeExpression()
	if expr.TargetType == nil {
		return nil
	}
	return expr
}

// parseIndexExpression parses left @ index. The index operand is parsed at
// the @ level, so chains are left-associative and a call or field access
// may serve as the index without parentheses.
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Object: left}
	p.nextToken()
	expr.Index = p.parseExpression(INDEX)
	if expr.Index == nil {
		return nil
	}
	return expr
}

// parseDotExpression parses field access left.name, or the associated-call
// sugar left.name(args) when a parenthesis follows the name.
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	dotToken := p.curToken

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.peekTokenIs(token.LPAREN) {
		return &ast.FieldAccessExpression{Token: dotToken, Object: left, Field: name}
	}

	p.nextToken() // the '('
	call := &ast.MethodCallExpression{Token: dotToken, Receiver: left, Name: name}
	call.Arguments = p.parseCallArguments()
	if call.Arguments == nil {
		return nil
	}
	return call
}

// parseCallExpression parses left(args). FTL has no function values, so
// only a bare name can be called.
func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	fn, ok := left.(*ast.Identifier)
	if !ok {
		p.addError(diagnostics.ErrP001, p.curToken, describeToken(p.curToken), "an operator")
		return nil
	}

	call := &ast.CallExpression{Token: p.curToken, Function: fn}
	call.Arguments = p.parseCallArguments()
	if call.Arguments == nil {
		return nil
	}
	return call
}

// parseCallArguments parses the argument list after an already-consumed
// '('. curToken must be the parenthesis; on success curToken is left on
// the closing one. Returns a non-nil empty slice for an empty list and nil
// on a syntax error.
func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // the ','
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	p.skipCurNewlines()

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) skipCurNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}
