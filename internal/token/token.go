// Package token defines the lexical tokens of FTL and their source positions.
package token

// Type identifies the lexical class of a token.
type Type string

// Token is a single lexical unit. Tokens are immutable once produced by the
// lexer; positions are 1-based for line/column and 0-based for Offset.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
	Column int
	Offset int
}

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"
	NEWLINE Type = "NEWLINE"

	// Identifiers and literals
	IDENT  Type = "IDENT"
	INT    Type = "INT"
	FLOAT  Type = "FLOAT"
	STRING Type = "STRING"

	// Operators
	ASSIGN   Type = "="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	EQ       Type = "=="
	NOT_EQ   Type = "=/="
	LT       Type = "<"
	GT       Type = ">"
	LT_EQ    Type = "<="
	GT_EQ    Type = ">="
	AT       Type = "@"

	// Delimiters
	COMMA     Type = ","
	COLON     Type = ":"
	SEMICOLON Type = ";"
	DOT       Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACE    Type = "{"
	RBRACE    Type = "}"

	// Declaration keywords
	DEF    Type = "DEF"
	EXTERN Type = "EXTERN"
	VAR    Type = "VAR"
	CONST  Type = "CONST"
	STRUCT Type = "STRUCT"
	ENUM   Type = "ENUM"

	// Type keywords
	PTR Type = "PTR"
	ARR Type = "ARR"

	// Control keywords
	IF     Type = "IF"
	ELSE   Type = "ELSE"
	WHILE  Type = "WHILE"
	FOR    Type = "FOR"
	IN     Type = "IN"
	OF     Type = "OF"
	RETURN Type = "RETURN"

	// Memory keywords
	REF     Type = "REF"
	DEREF   Type = "DEREF"
	ALLOC   Type = "ALLOC"
	DEL     Type = "DEL"
	NEW     Type = "NEW"
	DEFAULT Type = "DEFAULT"
	NIL     Type = "NIL"

	// Word operators
	AND    Type = "AND"
	OR     Type = "OR"
	XOR    Type = "XOR"
	NOT    Type = "NOT"
	MOD    Type = "MOD"
	SHL    Type = "SHL"
	SHR    Type = "SHR"
	BITAND Type = "BITAND"
	BITOR  Type = "BITOR"
	BITXOR Type = "BITXOR"
	AS     Type = "AS"

	// Builtin statement keywords
	ERROR Type = "ERROR"
	PRINT Type = "PRINT"
	DEBUG Type = "DEBUG"

	// Boolean literals
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"
)

var keywords = map[string]Type{
	"def":     DEF,
	"extern":  EXTERN,
	"var":     VAR,
	"const":   CONST,
	"struct":  STRUCT,
	"enum":    ENUM,
	"ptr":     PTR,
	"arr":     ARR,
	"if":      IF,
	"else":    ELSE,
	"while":   WHILE,
	"for":     FOR,
	"in":      IN,
	"of":      OF,
	"return":  RETURN,
	"ref":     REF,
	"deref":   DEREF,
	"alloc":   ALLOC,
	"del":     DEL,
	"new":     NEW,
	"default": DEFAULT,
	"nil":     NIL,
	"and":     AND,
	"or":      OR,
	"xor":     XOR,
	"not":     NOT,
	"mod":     MOD,
	"shl":     SHL,
	"shr":     SHR,
	"bitand":  BITAND,
	"bitor":   BITOR,
	"bitxor":  BITXOR,
	"as":      AS,
	"error":   ERROR,
	"print":   PRINT,
	"debug":   DEBUG,
	"true":    TRUE,
	"false":   FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT if it is not a
// reserved word.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is a reserved word.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// StatementStart reports whether t can begin a statement. The parser uses
// this to resynchronize after a syntax error.
func StatementStart(t Type) bool {
	switch t {
	case VAR, CONST, DEF, EXTERN, STRUCT, IF, WHILE, FOR, RETURN, ERROR, PRINT, DEBUG, DEL:
		return true
	}
	return false
}
