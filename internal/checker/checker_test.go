package checker

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/desugar"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/parser"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/resolver"
)

// checkSource runs input through the front end up to and including the
// checker, failing the test when an earlier stage already rejects it.
func checkSource(t *testing.T, input string) *pipeline.Context {
	t.Helper()
	ctx := pipeline.NewContext(input)
	lexer.NewProcessor().Process(ctx)
	parser.NewProcessor().Process(ctx)
	resolver.NewProcessor().Process(ctx)
	desugar.NewProcessor().Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("input failed before checking:\n%s\ninput: %s", diagnosticList(ctx), input)
	}
	New(ctx).Run()
	return ctx
}

func diagnosticList(ctx *pipeline.Context) string {
	var msgs []string
	for _, d := range ctx.SortedDiagnostics() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

// expectCheckError asserts that checking input raises code and returns the
// first matching diagnostic.
func expectCheckError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	ctx := checkSource(t, input)
	for _, d := range ctx.Diagnostics {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got:\n%s\ninput: %s", code, diagnosticList(ctx), input)
	return nil
}

// expectCleanCheck asserts that checking input records no diagnostics.
func expectCleanCheck(t *testing.T, input string) *pipeline.Context {
	t.Helper()
	ctx := checkSource(t, input)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("expected no diagnostics, got:\n%s\ninput: %s", diagnosticList(ctx), input)
	}
	return ctx
}

// varValueType returns the recorded type of the i-th top-level statement's
// initializer, which must be a var declaration.
func varValueType(t *testing.T, ctx *pipeline.Context, i int) string {
	t.Helper()
	if i >= len(ctx.Program.Statements) {
		t.Fatalf("program has only %d statements", len(ctx.Program.Statements))
	}
	decl, ok := ctx.Program.Statements[i].(*ast.VarDeclStatement)
	if !ok {
		t.Fatalf("statement %d is a %T, not a var declaration", i, ctx.Program.Statements[i])
	}
	typ := ctx.Types[decl.Value]
	if typ == nil {
		t.Fatalf("no type recorded for the initializer of %s", decl.Name.Value)
	}
	return typ.String()
}

// ---------------------------------------------------------------------------
// Literals and declarations
// ---------------------------------------------------------------------------

func TestLiteralAdoptsDeclaredIntType(t *testing.T) {
	ctx := expectCleanCheck(t, `var a: int8 = 100`)
	if got := varValueType(t, ctx, 0); got != "int8" {
		t.Errorf("literal was recorded as %s, want int8", got)
	}
}

func TestLiteralOutOfRangeForDeclaredType(t *testing.T) {
	d := expectCheckError(t, `var a: int8 = 200`, diagnostics.ErrT008)
	if !strings.Contains(d.Message, "200") || !strings.Contains(d.Message, "int8") {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestMostNegativeLiteralFits(t *testing.T) {
	expectCleanCheck(t, `var a: int8 = -128`)
}

func TestNegativeLiteralOutOfRange(t *testing.T) {
	expectCheckError(t, `var a: int8 = -129`, diagnostics.ErrT008)
}

func TestUnsignedRejectsNegativeLiteral(t *testing.T) {
	expectCheckError(t, `var a: uint8 = -1`, diagnostics.ErrT008)
}

func TestIntLiteralAdoptsFloat(t *testing.T) {
	ctx := expectCleanCheck(t, `var f: float = 1`)
	if got := varValueType(t, ctx, 0); got != "float" {
		t.Errorf("literal was recorded as %s, want float", got)
	}
}

func TestFloatLiteralNeverNarrowsToInt(t *testing.T) {
	expectCheckError(t, `var i: int = 2.5`, diagnostics.ErrT001)
}

func TestInferredVarDefaultsToInt(t *testing.T) {
	expectCheckError(t, `
var a = 1
var b: int16 = a
`, diagnostics.ErrT001)
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

func TestBinaryLiteralAdoptsOtherOperand(t *testing.T) {
	expectCleanCheck(t, `
def f(a: uint8): uint8 {
    return a + 1
}
`)
}

func TestMixedIntWidthsRejected(t *testing.T) {
	expectCheckError(t, `
def f(a: int8, b: int16) {
    var c = a + b
}
`, diagnostics.ErrT007)
}

func TestIntPlusFloatVariablesRejected(t *testing.T) {
	expectCheckError(t, `
var a = 1
var b = 2.5
var c = a + b
`, diagnostics.ErrT007)
}

func TestIntPlusBoolRejected(t *testing.T) {
	expectCheckError(t, `var x = 1 + true`, diagnostics.ErrT007)
}

func TestComparisonYieldsBool(t *testing.T) {
	expectCleanCheck(t, `var b: bool = 1 < 2`)
}

func TestStringRelationalRejected(t *testing.T) {
	expectCheckError(t, `var b = "a" < "b"`, diagnostics.ErrT007)
}

func TestStringEqualityIsBuiltin(t *testing.T) {
	expectCleanCheck(t, `var b: bool = "a" == "b"`)
}

func TestNotRequiresBool(t *testing.T) {
	expectCheckError(t, `var x = not 1`, diagnostics.ErrT001)
}

func TestUnaryMinusRequiresNumeric(t *testing.T) {
	expectCheckError(t, `var x = -true`, diagnostics.ErrT001)
}

func TestShiftCountMayDifferInWidth(t *testing.T) {
	expectCleanCheck(t, `
def f(x: int, n: uint8): int {
    return x shl n
}
`)
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

func TestIfConditionMustBeBool(t *testing.T) {
	expectCheckError(t, `
if 1 {
    print 1
}
`, diagnostics.ErrT001)
}

func TestWhileConditionMustBeBool(t *testing.T) {
	expectCheckError(t, `
while "yes" {
    print 1
}
`, diagnostics.ErrT001)
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

func TestCallArityMismatch(t *testing.T) {
	d := expectCheckError(t, `
def f(a: int): int {
    return a
}
var x = f(1, 2)
`, diagnostics.ErrT009)
	if !strings.Contains(d.Message, "expected 1, got 2") {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestCallArgumentTypeMismatch(t *testing.T) {
	expectCheckError(t, `
def f(a: int): int {
    return a
}
var x = f("nope")
`, diagnostics.ErrT001)
}

func TestCallArgumentLiteralAdopts(t *testing.T) {
	expectCleanCheck(t, `
def f(n: int8): int8 {
    return n
}
var x = f(100)
`)
}

func TestCallingNonFunction(t *testing.T) {
	expectCheckError(t, `
var x = 1
var y = x(2)
`, diagnostics.ErrT001)
}

func TestFunctionUsedAsValue(t *testing.T) {
	expectCheckError(t, `
def g(): int {
    return 1
}
var h = g
`, diagnostics.ErrT001)
}

// ---------------------------------------------------------------------------
// nothing in value position
// ---------------------------------------------------------------------------

func TestNothingCallInValuePosition(t *testing.T) {
	d := expectCheckError(t, `
def act() {
    print 1
}
var x = act()
`, diagnostics.ErrT003)
	if !strings.Contains(d.Message, `"act"`) {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestNothingCallAsStatementIsFine(t *testing.T) {
	expectCleanCheck(t, `
def act() {
    print 1
}
act()
`)
}

func TestPrintRejectsNothingCall(t *testing.T) {
	expectCheckError(t, `
def act() {
    print 1
}
print act()
`, diagnostics.ErrT003)
}

// ---------------------------------------------------------------------------
// Returns
// ---------------------------------------------------------------------------

func TestReturnTypeMismatch(t *testing.T) {
	expectCheckError(t, `
def f(): int {
    return "nope"
}
`, diagnostics.ErrT004)
}

func TestBareReturnFromTypedFunction(t *testing.T) {
	expectCheckError(t, `
def f(): int {
    return
}
`, diagnostics.ErrT004)
}

func TestValueReturnFromNothingFunction(t *testing.T) {
	expectCheckError(t, `
def f() {
    return 1
}
`, diagnostics.ErrT004)
}

func TestMissingReturnOnSomePath(t *testing.T) {
	expectCheckError(t, `
def f(b: bool): int {
    if b {
        return 1
    }
}
`, diagnostics.ErrT004)
}

func TestReturnInBothBranches(t *testing.T) {
	expectCleanCheck(t, `
def f(b: bool): int {
    if b {
        return 1
    } else {
        return 2
    }
}
`)
}

func TestErrorAbortCountsAsReturn(t *testing.T) {
	expectCleanCheck(t, `
def f(b: bool): int {
    if b {
        return 1
    } else {
        error "unsupported"
    }
}
`)
}

func TestReturningLoopIsStillConservative(t *testing.T) {
	// the analysis does not reason about loop conditions, even while true
	expectCheckError(t, `
def f(): int {
    while true {
        return 1
    }
}
`, diagnostics.ErrT004)
}

func TestReturnLiteralAdoptsDeclaredType(t *testing.T) {
	expectCleanCheck(t, `
def f(): int8 {
    return 100
}
`)
}

// ---------------------------------------------------------------------------
// Structs and fields
// ---------------------------------------------------------------------------

func TestFieldAccessOnNonStruct(t *testing.T) {
	expectCheckError(t, `
var x = 1
var y = x.name
`, diagnostics.ErrT001)
}

func TestUnknownStructField(t *testing.T) {
	d := expectCheckError(t, `
struct Person(name: str)
def f(p: Person) {
    print p.age
}
`, diagnostics.ErrR003)
	if !strings.Contains(d.Message, "Person") || !strings.Contains(d.Message, `"age"`) {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestNewArityMismatch(t *testing.T) {
	expectCheckError(t, `
struct Person(name: str, age: int)
var p = new Person("ada")
`, diagnostics.ErrT009)
}

func TestNewFieldTypeMismatch(t *testing.T) {
	expectCheckError(t, `
struct Person(name: str, age: int)
var p = new Person(42, "ada")
`, diagnostics.ErrT001)
}

func TestNewFieldLiteralAdopts(t *testing.T) {
	expectCleanCheck(t, `
struct Person(age: uint8)
var p = new Person(200)
`)
}

func TestPrintRejectsStructValue(t *testing.T) {
	expectCheckError(t, `
struct Person(age: int)
var p = new Person(3)
print p
`, diagnostics.ErrT001)
}

// ---------------------------------------------------------------------------
// Arrays and indexing
// ---------------------------------------------------------------------------

func TestIndexElementType(t *testing.T) {
	expectCleanCheck(t, `
def first(a: arr str): str {
    return a @ 0
}
`)
}

func TestIndexNonArray(t *testing.T) {
	expectCheckError(t, `
var x = 1
var y = x @ 0
`, diagnostics.ErrT001)
}

func TestIndexRequiresInteger(t *testing.T) {
	expectCheckError(t, `
def f(a: arr int): int {
    return a @ true
}
`, diagnostics.ErrT001)
}

func TestForRequiresArray(t *testing.T) {
	expectCheckError(t, `
for x in 1 {
    print x
}
`, diagnostics.ErrT001)
}

func TestForElementBinding(t *testing.T) {
	expectCleanCheck(t, `
def f(words: arr str) {
    for w in words {
        print w
    }
}
`)
}

func TestForIndexBindingIsInt(t *testing.T) {
	expectCleanCheck(t, `
def f(words: arr str) {
    for i of words {
        var j: int = i
        print j
    }
}
`)
}

// ---------------------------------------------------------------------------
// Casts, pointers, memory
// ---------------------------------------------------------------------------

func TestFloatToIntCast(t *testing.T) {
	expectCleanCheck(t, `var x: int = 3.7 as int`)
}

func TestInvalidCast(t *testing.T) {
	expectCheckError(t, `var x = "s" as int`, diagnostics.ErrT002)
}

func TestNilNeedsCastToPointer(t *testing.T) {
	expectCheckError(t, `var p: ptr int = nil`, diagnostics.ErrT001)
}

func TestNilCastToPointer(t *testing.T) {
	expectCleanCheck(t, `var p: ptr int = nil as ptr int`)
}

func TestRefYieldsPointer(t *testing.T) {
	expectCleanCheck(t, `
var x = 1
var p: ptr int = ref x
`)
}

func TestRefRequiresAddressable(t *testing.T) {
	d := expectCheckError(t, `var p = ref 42`, diagnostics.ErrT001)
	if !strings.Contains(d.Message, "addressable") {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestRefThroughField(t *testing.T) {
	expectCleanCheck(t, `
struct Point(x: int)
def f(p: Point): ptr int {
    return ref p.x
}
`)
}

func TestDerefNonPointer(t *testing.T) {
	expectCheckError(t, `
var x = 1
var y = deref x
`, diagnostics.ErrT001)
}

func TestDerefAnyRequiresCast(t *testing.T) {
	expectCheckError(t, `
def f(a: any) {
    var x = deref a
}
`, diagnostics.ErrT001)
}

func TestAllocYieldsPointer(t *testing.T) {
	expectCleanCheck(t, `
var p: ptr float = alloc float
del p
`)
}

func TestDelRequiresPointer(t *testing.T) {
	expectCheckError(t, `del 1`, diagnostics.ErrT001)
}

// ---------------------------------------------------------------------------
// Generic calls
// ---------------------------------------------------------------------------

func TestGenericCallInfersFromArguments(t *testing.T) {
	expectCleanCheck(t, `
def id<T>(x: T): T {
    return x
}
var a: int = id(42)
`)
}

func TestGenericResultTypeChecked(t *testing.T) {
	expectCheckError(t, `
def id<T>(x: T): T {
    return x
}
var b: str = id(42)
`, diagnostics.ErrT001)
}

func TestConflictingTypeArguments(t *testing.T) {
	d := expectCheckError(t, `
def pair<T>(a: T, b: T): T {
    return a
}
var x = pair(1, 2.5)
`, diagnostics.ErrM001)
	if !strings.Contains(d.Message, "int") || !strings.Contains(d.Message, "float") {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestExplicitTypeArguments(t *testing.T) {
	expectCleanCheck(t, `
def id<T>(x: T): T {
    return x
}
var c: float = id<float>(1)
`)
}

func TestExplicitTypeArgumentCountMismatch(t *testing.T) {
	expectCheckError(t, `
def id<T>(x: T): T {
    return x
}
var x = id<int, float>(1)
`, diagnostics.ErrT009)
}

func TestGenericCallArityMismatch(t *testing.T) {
	expectCheckError(t, `
def id<T>(x: T): T {
    return x
}
var x = id(1, 2)
`, diagnostics.ErrT009)
}

func TestUninferrableTypeParameter(t *testing.T) {
	d := expectCheckError(t, `
def fresh<T>(): ptr T {
    return alloc T
}
var p = fresh()
`, diagnostics.ErrM003)
	if !strings.Contains(d.Message, "T") || !strings.Contains(d.Message, `"fresh"`) {
		t.Errorf("unhelpful message: %s", d.Message)
	}
}

func TestExplicitArgumentForUninferrable(t *testing.T) {
	expectCleanCheck(t, `
def fresh<T>(): ptr T {
    return alloc T
}
var p: ptr int = fresh<int>()
`)
}

func TestGenericBodyNotCheckedDirectly(t *testing.T) {
	// bodies are only checked per specialization; an uncalled generic
	// function raises nothing even if some instantiations would
	expectCleanCheck(t, `
def double<T>(x: T): T {
    return x + x
}
`)
}

// ---------------------------------------------------------------------------
// Scopes
// ---------------------------------------------------------------------------

func TestShadowedNameChecksAgainstInnerType(t *testing.T) {
	expectCleanCheck(t, `
var x = 1
if true {
    var x = "inner"
    var y: str = x
    print y
}
var z: int = x
`)
}

// ---------------------------------------------------------------------------
// Corpus
// ---------------------------------------------------------------------------

// TestDiagnosticCorpus pairs each <name>.ftl in the archive with a
// <name>.want listing the expected diagnostic codes in source order,
// whitespace separated and empty for clean programs.
func TestDiagnosticCorpus(t *testing.T) {
	archive, err := txtar.ParseFile(filepath.Join("testdata", "diagnostics.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	sources := map[string]string{}
	wants := map[string]string{}
	for _, file := range archive.Files {
		switch {
		case strings.HasSuffix(file.Name, ".ftl"):
			sources[strings.TrimSuffix(file.Name, ".ftl")] = string(file.Data)
		case strings.HasSuffix(file.Name, ".want"):
			wants[strings.TrimSuffix(file.Name, ".want")] = string(file.Data)
		}
	}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		want, ok := wants[name]
		if !ok {
			t.Errorf("%s.ftl has no %s.want entry", name, name)
			continue
		}
		source := sources[name]
		t.Run(name, func(t *testing.T) {
			ctx := pipeline.NewContext(source)
			lexer.NewProcessor().Process(ctx)
			parser.NewProcessor().Process(ctx)
			resolver.NewProcessor().Process(ctx)
			desugar.NewProcessor().Process(ctx)
			New(ctx).Run()

			var got []string
			for _, d := range ctx.SortedDiagnostics() {
				got = append(got, string(d.Code))
			}
			if gotJoined, wantJoined := strings.Join(got, " "), strings.Join(strings.Fields(want), " "); gotJoined != wantJoined {
				t.Errorf("diagnostic codes [%s], want [%s]\n%s", gotJoined, wantJoined, diagnosticList(ctx))
			}
		})
	}
}
