package mono

import (
	"strings"
	"testing"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/checker"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/desugar"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/parser"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/resolver"
)

// monoSource runs input through the front end and monomorphizes it, failing
// the test when an earlier stage already rejects the input.
func monoSource(t *testing.T, input string) (*pipeline.Context, *Mono) {
	t.Helper()
	ctx := pipeline.NewContext(input)
	lexer.NewProcessor().Process(ctx)
	parser.NewProcessor().Process(ctx)
	resolver.NewProcessor().Process(ctx)
	desugar.NewProcessor().Process(ctx)
	checker.NewProcessor().Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("input failed before monomorphization:\n%s\ninput: %s", diagnosticList(ctx), input)
	}
	m := New(ctx)
	m.Run()
	return ctx, m
}

func diagnosticList(ctx *pipeline.Context) string {
	var msgs []string
	for _, d := range ctx.SortedDiagnostics() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

func expectCleanMono(t *testing.T, input string) (*pipeline.Context, *Mono) {
	t.Helper()
	ctx, m := monoSource(t, input)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("expected no diagnostics, got:\n%s\ninput: %s", diagnosticList(ctx), input)
	}
	return ctx, m
}

func expectMonoError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	ctx, _ := monoSource(t, input)
	for _, d := range ctx.Diagnostics {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got:\n%s\ninput: %s", code, diagnosticList(ctx), input)
	return nil
}

func findFunction(t *testing.T, ctx *pipeline.Context, name string) *ast.FunctionDeclaration {
	t.Helper()
	for _, stmt := range ctx.Program.Statements {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && fn.Name.Value == name {
			return fn
		}
	}
	t.Fatalf("no function %s in program", name)
	return nil
}

// varCall digs the i-th top-level statement's initializer out as a call.
func varCall(t *testing.T, ctx *pipeline.Context, i int) *ast.CallExpression {
	t.Helper()
	decl, ok := ctx.Program.Statements[i].(*ast.VarDeclStatement)
	if !ok {
		t.Fatalf("statement %d is a %T, not a var declaration", i, ctx.Program.Statements[i])
	}
	call, ok := decl.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("initializer of %s is a %T, not a call", decl.Name.Value, decl.Value)
	}
	return call
}

// ---------------------------------------------------------------------------
// Call rewriting
// ---------------------------------------------------------------------------

func TestGenericCallRewrittenToSpecialization(t *testing.T) {
	ctx, m := expectCleanMono(t, `
def id<T>(x: T): T {
    return x
}
var a: int = id(42)
`)
	call := varCall(t, ctx, 0)
	if call.Function.Value != "id__int" {
		t.Errorf("call was rewritten to %q, want id__int", call.Function.Value)
	}
	sym := ctx.SymbolOf(call.Function)
	if sym == nil {
		t.Fatal("rewritten call is unbound")
	}
	if got := sym.Type.String(); got != "def(int): int" {
		t.Errorf("specialization has type %s", got)
	}
	if len(m.Instantiations()) != 1 {
		t.Errorf("expected one instantiation, got %d", len(m.Instantiations()))
	}
	findFunction(t, ctx, "id__int")
}

func TestEachTypeTupleGetsItsOwnSpecialization(t *testing.T) {
	ctx, m := expectCleanMono(t, `
def plus<T>(first: T, second: T): T {
    return first + second
}
var i = plus(1, 2)
var f = plus(1.5, 2.5)
`)
	decls := m.Instantiations()
	if len(decls) != 2 {
		t.Fatalf("expected two instantiations, got %d", len(decls))
	}
	if decls[0].Name.Value != "plus__int" || decls[1].Name.Value != "plus__float" {
		t.Errorf("instantiations are %s and %s", decls[0].Name.Value, decls[1].Name.Value)
	}
	findFunction(t, ctx, "plus__int")
	findFunction(t, ctx, "plus__float")
}

func TestSameTupleReusesTheInstance(t *testing.T) {
	ctx, m := expectCleanMono(t, `
def id<T>(x: T): T {
    return x
}
var a: int = id(1)
var b: int = id(2)
`)
	if len(m.Instantiations()) != 1 {
		t.Fatalf("expected one instantiation, got %d", len(m.Instantiations()))
	}
	first := ctx.SymbolOf(varCall(t, ctx, 0).Function)
	second := ctx.SymbolOf(varCall(t, ctx, 1).Function)
	if first == nil || first != second {
		t.Error("both call sites should bind the same specialization symbol")
	}
}

func TestGenericDeclarationsAreRemoved(t *testing.T) {
	ctx, _ := expectCleanMono(t, `
def id<T>(x: T): T {
    return x
}
var a: int = id(42)
`)
	for _, stmt := range ctx.Program.Statements {
		fn, ok := stmt.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if len(fn.TypeParams) > 0 {
			t.Errorf("generic declaration %s survived", fn.Name.Value)
		}
		if fn.Name.Value == "id" {
			t.Error("the generic original should have been dropped")
		}
	}
}

func TestExplicitTypeArgumentsAreConsumed(t *testing.T) {
	ctx, _ := expectCleanMono(t, `
def id<T>(x: T): T {
    return x
}
var c: float = id<float>(1)
`)
	call := varCall(t, ctx, 0)
	if call.Function.Value != "id__float" {
		t.Errorf("call was rewritten to %q, want id__float", call.Function.Value)
	}
	if len(call.TypeArgs) != 0 {
		t.Error("type arguments should be cleared after rewriting")
	}
}

func TestNestedGenericCallsShareTheInstance(t *testing.T) {
	ctx, m := expectCleanMono(t, `
def id<T>(x: T): T {
    return x
}
var a: int = id(id(42))
`)
	if len(m.Instantiations()) != 1 {
		t.Fatalf("expected one instantiation, got %d", len(m.Instantiations()))
	}
	outer := varCall(t, ctx, 0)
	inner, ok := outer.Arguments[0].(*ast.CallExpression)
	if !ok {
		t.Fatal("inner call disappeared")
	}
	if outer.Function.Value != "id__int" || inner.Function.Value != "id__int" {
		t.Errorf("calls were rewritten to %q and %q", outer.Function.Value, inner.Function.Value)
	}
}

// ---------------------------------------------------------------------------
// Per-instantiation semantics
// ---------------------------------------------------------------------------

func TestSpecializationBodyIsChecked(t *testing.T) {
	expectMonoError(t, `
struct Person(name: str)

def double<T>(x: T): T {
    return x + x
}

var p = double(new Person("ada"))
`, diagnostics.ErrT007)
}

func TestSpecializationBodyUsesOperatorOverload(t *testing.T) {
	ctx, _ := expectCleanMono(t, `
struct Vec(x: int)

def __plus(a: Vec, b: Vec): Vec {
    return new Vec(a.x + b.x)
}

def double<T>(v: T): T {
    return v + v
}

var d = double(new Vec(1))
`)
	clone := findFunction(t, ctx, "double__Vec")
	ret, ok := clone.Body.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("clone body starts with %T", clone.Body.Statements[0])
	}
	call, ok := ret.Value.(*ast.CallExpression)
	if !ok || call.Function.Value != "__plus" {
		t.Errorf("v + v in the Vec clone should desugar to __plus, got %v", ret.Value)
	}
}

func TestSelfRecursionOverSameTupleTerminates(t *testing.T) {
	ctx, m := expectCleanMono(t, `
def echo<T>(x: T): T {
    return echo(x)
}
var a: int = echo(1)
`)
	if len(m.Instantiations()) != 1 {
		t.Fatalf("expected one instantiation, got %d", len(m.Instantiations()))
	}
	clone := findFunction(t, ctx, "echo__int")
	ret := clone.Body.Statements[0].(*ast.ReturnStatement)
	call, ok := ret.Value.(*ast.CallExpression)
	if !ok || call.Function.Value != "echo__int" {
		t.Errorf("the recursive call should point at the specialization, got %v", ret.Value)
	}
}

func TestUnboundedInstantiationChainIsCut(t *testing.T) {
	ctx := pipeline.NewContext(`
def grow<T>(x: T) {
    grow(ref x)
}
grow(1)
`)
	lexer.NewProcessor().Process(ctx)
	parser.NewProcessor().Process(ctx)
	resolver.NewProcessor().Process(ctx)
	desugar.NewProcessor().Process(ctx)
	checker.NewProcessor().Process(ctx)
	if ctx.HasErrors() {
		t.Fatalf("input failed before monomorphization:\n%s", diagnosticList(ctx))
	}
	m := New(ctx)
	m.Run()

	found := false
	for _, d := range ctx.Diagnostics {
		if d.Code == diagnostics.ErrM002 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected M002, got:\n%s", diagnosticList(ctx))
	}
	if len(m.Instantiations()) != config.MaxInstantiationDepth {
		t.Errorf("chain was cut after %d instantiations, want %d",
			len(m.Instantiations()), config.MaxInstantiationDepth)
	}
}

func TestFailedInferenceLeavesNoInstances(t *testing.T) {
	ctx := pipeline.NewContext(`
def pair<T>(a: T, b: T): T {
    return a
}
var x = pair(1, 2.5)
`)
	lexer.NewProcessor().Process(ctx)
	parser.NewProcessor().Process(ctx)
	resolver.NewProcessor().Process(ctx)
	desugar.NewProcessor().Process(ctx)
	checker.NewProcessor().Process(ctx)
	m := New(ctx)
	m.Run()

	if len(m.Instantiations()) != 0 {
		t.Errorf("conflicting inference still produced %d instantiations", len(m.Instantiations()))
	}
	found := false
	for _, d := range ctx.Diagnostics {
		if d.Code == diagnostics.ErrM001 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected M001, got:\n%s", diagnosticList(ctx))
	}
}
