// Package lexer turns FTL source text into tokens. Lexing never aborts: an
// unrecognized character or unterminated string produces a diagnostic plus
// an ILLEGAL token and scanning continues, so later stages can still report
// their own findings in the same run.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	diags []*diagnostics.Diagnostic
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Diagnostics returns the lexical errors collected so far.
func (l *Lexer) Diagnostics() []*diagnostics.Diagnostic {
	return l.diags
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

// NextToken scans and returns the next token. The stream is finite and ends
// with an explicit EOF token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startLine, startCol, startOff := l.line, l.column, l.position

	var tok token.Token
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Line: startLine, Column: startCol, Offset: startOff}
	case '\n':
		tok = l.newToken(token.NEWLINE, "\n", startLine, startCol, startOff)
	case '=':
		// =, ==, =/=
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.EQ, "==", startLine, startCol, startOff)
		} else if l.peekChar() == '/' && l.peekChar2() == '=' {
			l.readChar()
			l.readChar()
			tok = l.newToken(token.NOT_EQ, "=/=", startLine, startCol, startOff)
		} else {
			tok = l.newToken(token.ASSIGN, "=", startLine, startCol, startOff)
		}
	case '+':
		tok = l.newToken(token.PLUS, "+", startLine, startCol, startOff)
	case '-':
		tok = l.newToken(token.MINUS, "-", startLine, startCol, startOff)
	case '*':
		tok = l.newToken(token.ASTERISK, "*", startLine, startCol, startOff)
	case '/':
		tok = l.newToken(token.SLASH, "/", startLine, startCol, startOff)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.LT_EQ, "<=", startLine, startCol, startOff)
		} else {
			tok = l.newToken(token.LT, "<", startLine, startCol, startOff)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.newToken(token.GT_EQ, ">=", startLine, startCol, startOff)
		} else {
			tok = l.newToken(token.GT, ">", startLine, startCol, startOff)
		}
	case '@':
		tok = l.newToken(token.AT, "@", startLine, startCol, startOff)
	case ',':
		tok = l.newToken(token.COMMA, ",", startLine, startCol, startOff)
	case ':':
		tok = l.newToken(token.COLON, ":", startLine, startCol, startOff)
	case ';':
		tok = l.newToken(token.SEMICOLON, ";", startLine, startCol, startOff)
	case '.':
		tok = l.newToken(token.DOT, ".", startLine, startCol, startOff)
	case '(':
		tok = l.newToken(token.LPAREN, "(", startLine, startCol, startOff)
	case ')':
		tok = l.newToken(token.RPAREN, ")", startLine, startCol, startOff)
	case '{':
		tok = l.newToken(token.LBRACE, "{", startLine, startCol, startOff)
	case '}':
		tok = l.newToken(token.RBRACE, "}", startLine, startCol, startOff)
	case '"':
		return l.readString(startLine, startCol, startOff)
	default:
		if isLetter(l.ch) {
			lexeme := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Line: startLine, Column: startCol, Offset: startOff}
		}
		if isDigit(l.ch) {
			return l.readNumber(startLine, startCol, startOff)
		}
		tok = l.newToken(token.ILLEGAL, string(l.ch), startLine, startCol, startOff)
		l.diags = append(l.diags, diagnostics.NewError(diagnostics.ErrL001, tok, string(l.ch)))
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(tokenType token.Type, lexeme string, line, col, off int) token.Token {
	return token.Token{Type: tokenType, Lexeme: lexeme, Line: line, Column: col, Offset: off}
}

// readString scans a string literal and returns its raw body with escape
// sequences and interpolation spans intact; the parser decodes both. The
// literal ends at the closing quote; a newline or end of input before it is
// an unterminated string.
func (l *Lexer) readString(line, col, off int) token.Token {
	bodyStart := l.position + 1
	for {
		l.readChar()
		if l.ch == '\\' {
			l.readChar() // the escaped character, whatever it is
			if l.ch == 0 {
				break
			}
			continue
		}
		if l.ch == '"' || l.ch == '\n' || l.ch == 0 {
			break
		}
	}

	bodyEnd := l.position
	if bodyEnd > len(l.input) {
		bodyEnd = len(l.input)
	}
	tok := token.Token{Type: token.STRING, Lexeme: l.input[bodyStart:bodyEnd], Line: line, Column: col, Offset: off}

	if l.ch != '"' {
		tok.Type = token.ILLEGAL
		l.diags = append(l.diags, diagnostics.NewError(diagnostics.ErrL002, tok))
		// Leave the newline or EOF for the next scan.
		return tok
	}

	l.readChar() // consume closing quote
	return tok
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber scans a decimal integer or, when a '.' with a following digit
// appears, a float. Width validation is the checker's job.
func (l *Lexer) readNumber(line, col, off int) token.Token {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	tokType := token.INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokType = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return token.Token{Type: tokType, Lexeme: l.input[position:l.position], Line: line, Column: col, Offset: off}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		// Comments run from # to end of line and are discarded; the newline
		// itself still becomes a token.
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
