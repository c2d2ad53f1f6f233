package config

const SourceFileExt = ".ftl"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".ftl", ".fortytwo"}

// ManifestFileName is the project manifest looked up next to the source
// when --project is not given.
const ManifestFileName = "ftl.yaml"

// MaxExpressionDepth caps expression nesting in the parser before it gives
// up with a diagnostic instead of exhausting the goroutine stack.
const MaxExpressionDepth = 256

// MaxInstantiationDepth caps the active generic instantiation chain in the
// monomorphizer. Exceeding it means the chain does not terminate.
const MaxInstantiationDepth = 64

// StrConvFuncName is the reserved conversion convention: a function named
// str taking one parameter of type T converts T values for string
// concatenation and interpolation.
const StrConvFuncName = "str"

// Runtime abort and print symbols the backend lowers builtin statements to.
// Everything prefixed ftl_ is reserved for the runtime library.
const (
	RuntimeAbortFunc      = "ftl_abort"
	RuntimePrintIntFunc   = "ftl_print_int"
	RuntimePrintUintFunc  = "ftl_print_uint"
	RuntimePrintFloatFunc = "ftl_print_float"
	RuntimePrintBoolFunc  = "ftl_print_bool"
	RuntimePrintStrFunc   = "ftl_print_str"
	RuntimeAllocFunc      = "ftl_alloc"
	RuntimeFreeFunc       = "ftl_free"
	RuntimeStrConcatFunc  = "ftl_str_concat"
	RuntimeStrEqualsFunc  = "ftl_str_equals"
)

// RuntimeStrConvPrefix prefixes the per-type conversion helpers that calls
// to the str prelude lower to, e.g. ftl_str_from_int for str(x: int).
const RuntimeStrConvPrefix = "ftl_str_from_"

// UserMainFunc is the link name of a source-level main function. The C
// level main is synthesized by the backend so top-level statements run
// before control reaches it.
const UserMainFunc = "ftl_main"
