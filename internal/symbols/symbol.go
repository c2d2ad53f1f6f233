// Package symbols implements the scoped symbol tables the resolver builds
// and the later stages consult. A symbol lives in exactly one scope; lookups
// in a child scope fall back to the parent, so inner declarations shadow
// outer ones without mutating them.
package symbols

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	FunctionSymbol
	StructSymbol
	ExternSymbol
	TypeParamSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case FunctionSymbol:
		return "function"
	case StructSymbol:
		return "struct"
	case ExternSymbol:
		return "extern"
	case TypeParamSymbol:
		return "type parameter"
	default:
		return "symbol"
	}
}

// SymbolFlags record lexical conventions. They are metadata only; nothing in
// the pipeline enforces them.
type SymbolFlags uint8

const (
	FlagConstant SymbolFlags = 1 << iota // declared with const
	FlagPrivate                          // name starts with underscore
)

// Symbol is a named declaration. Type is nil for variables whose type is
// still to be inferred; the desugarer fills it in statement order.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Type  typesystem.Type
	Decl  token.Token // declaration site
	Flags SymbolFlags
	Node  ast.Node // declaring node; *ast.FunctionDeclaration for functions
}

// FirstParamType returns the first parameter type of a function or extern
// symbol, or nil for zero-parameter and non-function symbols. Overload sets
// and associated-call selection key on it.
func (s *Symbol) FirstParamType() typesystem.Type {
	fn, ok := s.Type.(typesystem.Function)
	if !ok || len(fn.Params) == 0 {
		return nil
	}
	return fn.Params[0]
}

// IsCallable reports whether the symbol can appear as a call target.
func (s *Symbol) IsCallable() bool {
	return s.Kind == FunctionSymbol || s.Kind == ExternSymbol
}

// IsGeneric reports whether the symbol is a generic function.
func (s *Symbol) IsGeneric() bool {
	fn, ok := s.Type.(typesystem.Function)
	return ok && len(fn.TypeParams) > 0
}
