package parser

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR, token.CONST:
		return p.parseVarDeclStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.ERROR:
		return p.parseErrorStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.DEBUG:
		return p.parseDebugStatement()
	case token.DEL:
		return p.parseDelStatement()
	case token.LBRACE:
		block := p.parseBlockStatement()
		if block == nil {
			return nil
		}
		return block
	case token.DEF, token.EXTERN, token.STRUCT:
		// Still parsed so recovery skips the whole declaration instead of
		// resynchronizing inside its body; later stages ignore nested
		// declarations.
		p.addError(diagnostics.ErrP002, p.curToken, p.curToken.Lexeme)
		return p.parseDeclaration()
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseDeclaration() ast.Statement {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseFunctionDeclaration()
	case token.EXTERN:
		return p.parseExternDeclaration()
	case token.STRUCT:
		return p.parseStructDeclaration()
	default:
		return nil
	}
}

// parseVarDeclStatement parses var/const declarations:
// var a: int, var a = 42, var a: int = 42, const pi = 3.14
func (p *Parser) parseVarDeclStatement() ast.Statement {
	stmt := &ast.VarDeclStatement{Token: p.curToken, Constant: p.curTokenIs(token.CONST)}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken() // the ':'
		p.nextToken()
		stmt.DeclaredType = p.parseTypeExpression()
		if stmt.DeclaredType == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken() // the '='
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	if stmt.DeclaredType == nil && stmt.Value == nil {
		p.addError(diagnostics.ErrP001, p.peekToken, describeToken(p.peekToken), `":" or "="`)
		return nil
	}
	return stmt
}

// parseExpressionOrAssignStatement parses a statement that starts with an
// expression. A following '=' makes it an assignment; the target must be an
// lvalue (identifier, field access, index, or deref).
func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	startToken := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if !p.peekTokenIs(token.ASSIGN) {
		return &ast.ExpressionStatement{Token: startToken, Expression: expr}
	}

	p.nextToken() // the '='
	stmt := &ast.AssignStatement{Token: p.curToken, Target: expr}
	if !isLValue(expr) {
		p.addError(diagnostics.ErrP007, p.curToken)
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func isLValue(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.FieldAccessExpression, *ast.IndexExpression, *ast.DerefExpression:
		return true
	}
	return false
}

// parseBlockStatement parses { stmt* }. curToken must be the opening brace;
// on success curToken is left on the closing brace.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			p.skipToStatementBoundary()
			continue
		}
		block.Statements = append(block.Statements, stmt)

		if !p.expectStatementEnd() {
			p.skipToStatementBoundary()
			continue
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError(diagnostics.ErrP001, p.curToken, describeToken(p.curToken), `"}"`)
		return nil
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()
	if stmt.Consequence == nil {
		return nil
	}

	// "else" and "else if" continue on the closing brace's line.
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			alt := p.parseBlockStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForStatement parses both iteration forms: "for x in a" binds the
// elements of a, "for i of a" binds the integer indices.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Binding = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	switch p.peekToken.Type {
	case token.IN:
		stmt.ByIndex = false
	case token.OF:
		stmt.ByIndex = true
	default:
		p.addError(diagnostics.ErrP001, p.peekToken, describeToken(p.peekToken), `"in" or "of"`)
		return nil
	}
	p.nextToken() // the 'in' or 'of'

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.SEMICOLON) ||
		p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseErrorStatement parses the language-level abort: error "message".
// The message must be a plain string literal.
func (p *Parser) parseErrorStatement() ast.Statement {
	stmt := &ast.ErrorStatement{Token: p.curToken}

	if !p.expectPeek(token.STRING) {
		return nil
	}
	msg := p.parseStringLiteral()
	if msg == nil {
		return nil
	}
	lit, ok := msg.(*ast.StringLiteral)
	if !ok {
		p.addError(diagnostics.ErrP005, p.curToken, "not allowed in an error message")
		return nil
	}
	stmt.Message = lit
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDebugStatement() ast.Statement {
	stmt := &ast.DebugStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDelStatement() ast.Statement {
	stmt := &ast.DelStatement{Token: p.curToken}
	p.nextToken()
	stmt.Target = p.parseExpression(LOWEST)
	if stmt.Target == nil {
		return nil
	}
	return stmt
}

// parseFunctionDeclaration parses
// def name<T, U>(a: int, b: T): ret { ... }
// The type parameter list and the return type are optional; an absent
// return type means nothing.
func (p *Parser) parseFunctionDeclaration() ast.Statement {
	decl := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		decl.TypeParams = p.parseTypeParams()
		if decl.TypeParams == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	decl.Params = p.parseParameterList()
	if decl.Params == nil {
		return nil
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken() // the ':'
		p.nextToken()
		decl.ReturnType = p.parseTypeExpression()
		if decl.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	decl.Body = p.parseBlockStatement()
	if decl.Body == nil {
		return nil
	}
	return decl
}

// parseExternDeclaration parses extern name(params): ret with no body. The
// symbol is bound by the linker, never by this pipeline.
func (p *Parser) parseExternDeclaration() ast.Statement {
	decl := &ast.ExternDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	decl.Params = p.parseParameterList()
	if decl.Params == nil {
		return nil
	}

	if p.peekTokenIs(token.COLON) {
		p.nextToken() // the ':'
		p.nextToken()
		decl.ReturnType = p.parseTypeExpression()
		if decl.ReturnType == nil {
			return nil
		}
	}
	return decl
}

// parseStructDeclaration parses struct Name(field: type, ...).
func (p *Parser) parseStructDeclaration() ast.Statement {
	decl := &ast.StructDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	decl.Fields = p.parseParameterList()
	if decl.Fields == nil {
		return nil
	}
	return decl
}

// parseTypeParams parses <T, U> after a function name. curToken must be the
// opening '<'; on success curToken is left on the '>'.
func (p *Parser) parseTypeParams() []*ast.Identifier {
	var params []*ast.Identifier
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.GT) {
		return nil
	}
	return params
}

// parseParameterList parses (name: type, ...) for function signatures and
// struct field lists. curToken must be the opening parenthesis; on success
// curToken is left on the closing one. Newlines inside the list and a
// trailing comma are allowed.
func (p *Parser) parseParameterList() []*ast.Parameter {
	params := []*ast.Parameter{}

	p.skipPeekNewlines()
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.Parameter{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		param.Type = p.parseTypeExpression()
		if param.Type == nil {
			return nil
		}
		params = append(params, param)

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
	return params
}
