package pipeline

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// ExternSignature is an extern function supplied by the project manifest
// rather than by an extern declaration in the source. Types are surface
// strings; the resolver parses and resolves them.
type ExternSignature struct {
	Name    string
	Params  []string
	Returns string
}

// Context carries one translation unit through the pipeline. Stages only
// write the artifacts they own and never mutate a later stage's output.
type Context struct {
	// Inputs
	SourcePath      string
	Source          string
	ManifestExterns []ExternSignature

	// Lexer
	Tokens []token.Token

	// Parser
	Program *ast.Program

	// Resolver
	GlobalScope   *symbols.SymbolTable
	Structs       map[string]*typesystem.Struct
	Resolutions   map[*ast.Identifier]*symbols.Symbol
	ResolvedTypes map[ast.TypeExpr]typesystem.Type

	// Desugarer / Checker
	Types map[ast.Expression]typesystem.Type

	Diagnostics []*diagnostics.Diagnostic
}

// NewContext creates a Context for the given source text.
func NewContext(source string) *Context {
	return &Context{
		Source:        source,
		Structs:       make(map[string]*typesystem.Struct),
		Resolutions:   make(map[*ast.Identifier]*symbols.Symbol),
		ResolvedTypes: make(map[ast.TypeExpr]typesystem.Type),
		Types:         make(map[ast.Expression]typesystem.Type),
	}
}

// AddDiagnostic records d, dropping it only when a byte-for-byte identical
// diagnostic at the same position was already recorded.
func (c *Context) AddDiagnostic(d *diagnostics.Diagnostic) {
	for _, existing := range c.Diagnostics {
		if existing.Code == d.Code &&
			existing.Severity == d.Severity &&
			existing.Token.Line == d.Token.Line &&
			existing.Token.Column == d.Token.Column &&
			existing.Message == d.Message {
			return
		}
	}
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// True means the typed AST must not be handed to a backend.
func (c *Context) HasErrors() bool {
	return diagnostics.HasErrors(c.Diagnostics)
}

// SortedDiagnostics returns the diagnostics ordered by source position,
// stable for diagnostics raised at the same token.
func (c *Context) SortedDiagnostics() []*diagnostics.Diagnostic {
	sorted := make([]*diagnostics.Diagnostic, len(c.Diagnostics))
	copy(sorted, c.Diagnostics)
	diagnostics.Sort(sorted)
	return sorted
}

// TypeOf returns the checked type of expr, nil when the expression failed
// checking or was never reached.
func (c *Context) TypeOf(expr ast.Expression) typesystem.Type {
	return c.Types[expr]
}

// SymbolOf returns the symbol an identifier was bound to, nil when
// resolution failed.
func (c *Context) SymbolOf(ident *ast.Identifier) *symbols.Symbol {
	return c.Resolutions[ident]
}
