package parser

import (
	"fmt"
	"strings"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/token"
)

// parseStringLiteral decodes the raw body the lexer captured. Strings with
// {identifier} spans become InterpolatedStrings for the desugarer; plain
// strings collapse to a StringLiteral with escapes resolved.
func (p *Parser) parseStringLiteral() ast.Expression {
	strTok := p.curToken

	segments, ok := p.decodeStringBody(strTok)
	if !ok {
		return nil
	}

	for _, seg := range segments {
		if seg.Ident != nil {
			return &ast.InterpolatedString{Token: strTok, Segments: segments}
		}
	}

	var text strings.Builder
	for _, seg := range segments {
		text.WriteString(seg.Text)
	}
	return &ast.StringLiteral{Token: strTok, Value: text.String()}
}

// decodeStringBody resolves escape sequences and splits out {identifier}
// interpolation spans. Recognized escapes are \n \t \\ \" and \{ for a
// literal brace; an unknown escape is reported and kept as its bare
// character. A malformed interpolation span fails the whole literal.
func (p *Parser) decodeStringBody(strTok token.Token) ([]ast.StringSegment, bool) {
	raw := strTok.Lexeme
	var segments []ast.StringSegment
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			segments = append(segments, ast.StringSegment{Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
			if i >= len(raw) {
				p.addError(diagnostics.ErrP006, strTok, `\`)
				return segments, false
			}
			switch raw[i] {
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			case '\\':
				text.WriteByte('\\')
			case '"':
				text.WriteByte('"')
			case '{':
				text.WriteByte('{')
			default:
				p.addError(diagnostics.ErrP006, strTok, `\`+string(raw[i]))
				text.WriteByte(raw[i])
			}
		case '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				p.addError(diagnostics.ErrP005, strTok, `missing closing "}"`)
				return nil, false
			}
			name := raw[i+1 : i+1+end]
			if !isIdentifier(name) {
				p.addError(diagnostics.ErrP005, strTok, fmt.Sprintf("%q is not an identifier", name))
				return nil, false
			}
			flushText()
			segments = append(segments, ast.StringSegment{Ident: &ast.Identifier{
				Token: token.Token{
					Type:   token.IDENT,
					Lexeme: name,
					Line:   strTok.Line,
					Column: strTok.Column + i + 2,
					Offset: strTok.Offset + i + 2,
				},
				Value: name,
			}})
			i += end + 1
		default:
			text.WriteByte(raw[i])
		}
	}

	flushText()
	return segments, true
}

func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c >= 0x80
		digit := '0' <= c && c <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}
