package parser

import (
	"fmt"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// parseTypeExpression parses a type annotation starting at curToken:
// a plain name, ptr T, or arr<T, N>. On success curToken is left on the
// last token of the type.
func (p *Parser) parseTypeExpression() ast.TypeExpr {
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

	switch p.curToken.Type {
	case token.IDENT:
		return &ast.NamedType{Token: p.curToken, Name: p.curToken.Lexeme}

	case token.PTR:
		ptrType := &ast.PointerType{Token: p.curToken}
		p.nextToken()
		ptrType.Elem = p.parseTypeExpression()
		if ptrType.Elem == nil {
			return nil
		}
		return ptrType

	case token.ARR:
		arrType := &ast.ArrayType{Token: p.curToken}
		if !p.expectPeek(token.LT) {
			return nil
		}
		p.skipPeekNewlines()
		p.nextToken()
		arrType.Elem = p.parseTypeExpression()
		if arrType.Elem == nil {
			return nil
		}
		if !p.expectPeek(token.COMMA) {
			return nil
		}
		p.skipPeekNewlines()
		if !p.expectPeek(token.INT) {
			return nil
		}
		size := p.parseIntegerLiteral()
		if size == nil {
			return nil
		}
		arrType.Size = size.(*ast.IntegerLiteral)
		if !p.expectPeek(token.GT) {
			return nil
		}
		return arrType

	default:
		p.addError(diagnostics.ErrP004, p.curToken, describeToken(p.curToken))
		return nil
	}
}

// ParseTypeString parses a standalone type written as text, like the type
// strings in the project manifest's externs table.
func ParseTypeString(src string) (ast.TypeExpr, error) {
	ctx := pipeline.NewContext(src)
	p := New(lexer.NewTokenStream(lexer.New(src)), ctx)

	typeExpr := p.parseTypeExpression()
	if diags := ctx.SortedDiagnostics(); len(diags) > 0 {
		return nil, diags[0]
	}
	if typeExpr == nil {
		return nil, fmt.Errorf("empty type")
	}

	p.skipPeekNewlines()
	if !p.peekTokenIs(token.EOF) {
		return nil, fmt.Errorf("unexpected %s after type", describeToken(p.peekToken))
	}
	return typeExpr, nil
}
