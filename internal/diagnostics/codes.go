package diagnostics

// ErrorCode identifies a diagnostic kind. The letter prefix names the stage
// that raises it: L lexer, P parser, R resolver, T desugarer/checker,
// M monomorphizer, X internal invariant.
type ErrorCode string

const (
	// Lexical
	ErrL001 ErrorCode = "L001" // invalid character
	ErrL002 ErrorCode = "L002" // unterminated string literal

	// Syntax
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // declaration not at top level
	ErrP003 ErrorCode = "P003" // expression nesting too deep
	ErrP004 ErrorCode = "P004" // malformed type
	ErrP005 ErrorCode = "P005" // malformed string interpolation
	ErrP006 ErrorCode = "P006" // invalid escape sequence
	ErrP007 ErrorCode = "P007" // invalid assignment target

	// Resolution
	ErrR001 ErrorCode = "R001" // undeclared name
	ErrR002 ErrorCode = "R002" // redeclaration in the same scope
	ErrR003 ErrorCode = "R003" // unknown struct field
	ErrR004 ErrorCode = "R004" // unknown type name
	ErrR005 ErrorCode = "R005" // struct contains itself by value

	// Types
	ErrT001 ErrorCode = "T001" // type mismatch
	ErrT002 ErrorCode = "T002" // invalid cast
	ErrT003 ErrorCode = "T003" // nothing used in value position
	ErrT004 ErrorCode = "T004" // return does not match declared return type
	ErrT005 ErrorCode = "T005" // no associated function for receiver
	ErrT006 ErrorCode = "T006" // ambiguous associated call
	ErrT007 ErrorCode = "T007" // no applicable operator
	ErrT008 ErrorCode = "T008" // literal out of range for its type
	ErrT009 ErrorCode = "T009" // wrong number of arguments

	// Monomorphization
	ErrM001 ErrorCode = "M001" // conflicting type arguments
	ErrM002 ErrorCode = "M002" // unbounded generic instantiation
	ErrM003 ErrorCode = "M003" // type argument cannot be inferred

	// Internal
	ErrX001 ErrorCode = "X001" // front end invariant violated
)

// messages maps codes to their format strings. Arguments are supplied by the
// stage raising the diagnostic.
var messages = map[ErrorCode]string{
	ErrL001: "invalid character %q",
	ErrL002: "unterminated string literal",

	ErrP001: "unexpected %s, expected %s",
	ErrP002: "%s declarations are only allowed at the top level",
	ErrP003: "expression nesting too deep",
	ErrP004: "malformed type: unexpected %s",
	ErrP005: "malformed string interpolation: %s",
	ErrP006: "invalid escape sequence %q in string literal",
	ErrP007: "cannot assign to this expression",

	ErrR001: "undeclared name %q",
	ErrR002: "%q is already declared in this scope",
	ErrR003: "struct %s has no field %q",
	ErrR004: "unknown type name %q",
	ErrR005: "struct %s contains itself by value through field %q",

	ErrT001: "type mismatch: expected %s, got %s",
	ErrT002: "invalid cast from %s to %s",
	ErrT003: "function %q returns nothing and cannot be used as a value",
	ErrT004: "return type mismatch: function %q returns %s, got %s",
	ErrT005: "no function %q takes %s as its first parameter",
	ErrT006: "ambiguous call to %q for receiver type %s",
	ErrT007: "no applicable operator %q for %s and %s",
	ErrT008: "literal %s out of range for %s",
	ErrT009: "wrong number of arguments to %q: expected %d, got %d",

	ErrM001: "conflicting types for type parameter %s: %s and %s",
	ErrM002: "generic instantiation of %q does not terminate",
	ErrM003: "cannot infer a type for type parameter %s of %q",

	ErrX001: "internal error: %s",
}

// stageNames maps a code's letter prefix to the pipeline stage it belongs to.
var stageNames = map[byte]string{
	'L': "lexer",
	'P': "parser",
	'R': "resolver",
	'T': "checker",
	'M': "monomorphizer",
	'X': "internal",
}
