package lexer

import (
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// TokenStream is a peekable, forward-only view over a fully lexed token
// slice. Reads past the end keep returning the final EOF token.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// NewTokenStream drains l into a TokenStream.
func NewTokenStream(l *Lexer) *TokenStream {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return &TokenStream{tokens: tokens}
}

// FromTokens wraps an already-lexed token slice. A terminating EOF token is
// appended when missing.
func FromTokens(tokens []token.Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	return &TokenStream{tokens: tokens}
}

// Next returns the next token and advances.
func (ts *TokenStream) Next() token.Token {
	tok := ts.at(ts.pos)
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Peek returns the next token without advancing.
func (ts *TokenStream) Peek() token.Token {
	return ts.at(ts.pos)
}

// PeekAt returns the token n positions past the next one; PeekAt(0) is Peek.
func (ts *TokenStream) PeekAt(n int) token.Token {
	return ts.at(ts.pos + n)
}

// Tokens returns the underlying token slice.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}

func (ts *TokenStream) at(i int) token.Token {
	if i >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[i]
}
