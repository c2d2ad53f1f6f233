package parser

import (
	"strings"
	"testing"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// parseSource lexes and parses input. Diagnostics stay on the context for
// the caller to inspect.
func parseSource(input string) *pipeline.Context {
	ctx := pipeline.NewContext(input)
	lexer.NewProcessor().Process(ctx)
	NewProcessor().Process(ctx)
	return ctx
}

// parseClean fails the test on any diagnostic.
func parseClean(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := parseSource(input)
	if len(ctx.Diagnostics) > 0 {
		t.Fatalf("parse failed:\n%s\ninput: %s", diagnosticList(ctx), input)
	}
	return ctx.Program
}

func diagnosticList(ctx *pipeline.Context) string {
	var msgs []string
	for _, d := range ctx.SortedDiagnostics() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

// expectParseError asserts that parsing input produces at least one
// diagnostic with the given code and returns the first match.
func expectParseError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	ctx := parseSource(input)
	for _, d := range ctx.Diagnostics {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got:\n%s\ninput: %s", code, diagnosticList(ctx), input)
	return nil
}

func onlyStatement(t *testing.T, prog *ast.Program) ast.Statement {
	t.Helper()
	if len(prog.Statements) != 1 {
		t.Fatalf("program has %d statements, want 1", len(prog.Statements))
	}
	return prog.Statements[0]
}

// printedExpression parses a print statement and returns its expression.
func printedExpression(t *testing.T, expr string) ast.Expression {
	t.Helper()
	stmt := onlyStatement(t, parseClean(t, "print "+expr))
	pr, ok := stmt.(*ast.PrintStatement)
	if !ok {
		t.Fatalf("statement is %T, want print", stmt)
	}
	return pr.Value
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func TestVarDeclarationForms(t *testing.T) {
	tests := []struct {
		input     string
		constant  bool
		withType  bool
		withValue bool
	}{
		{"var a: int", false, true, false},
		{"var a = 42", false, false, true},
		{"var a: int = 42", false, true, true},
		{"const pi = 3.14", true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stmt := onlyStatement(t, parseClean(t, tt.input))
			decl, ok := stmt.(*ast.VarDeclStatement)
			if !ok {
				t.Fatalf("statement is %T, want var declaration", stmt)
			}
			if decl.Constant != tt.constant {
				t.Errorf("Constant = %v, want %v", decl.Constant, tt.constant)
			}
			if (decl.DeclaredType != nil) != tt.withType {
				t.Errorf("DeclaredType present = %v, want %v", decl.DeclaredType != nil, tt.withType)
			}
			if (decl.Value != nil) != tt.withValue {
				t.Errorf("Value present = %v, want %v", decl.Value != nil, tt.withValue)
			}
		})
	}
}

func TestVarRequiresTypeOrValue(t *testing.T) {
	expectParseError(t, "var x\n", diagnostics.ErrP001)
}

func TestFunctionDeclaration(t *testing.T) {
	prog := parseClean(t, `
def add(a: int, b: int): int {
    return a + b
}
`)
	decl, ok := onlyStatement(t, prog).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("statement is %T, want function declaration", prog.Statements[0])
	}
	if decl.Name.Value != "add" {
		t.Errorf("name = %q, want add", decl.Name.Value)
	}
	if len(decl.Params) != 2 || decl.Params[0].Name.Value != "a" || decl.Params[1].Name.Value != "b" {
		t.Fatalf("params = %v, want a and b", decl.Params)
	}
	ret, ok := decl.ReturnType.(*ast.NamedType)
	if !ok || ret.Name != "int" {
		t.Errorf("return type = %v, want int", decl.ReturnType)
	}
	if len(decl.Body.Statements) != 1 {
		t.Errorf("body has %d statements, want 1", len(decl.Body.Statements))
	}
}

func TestFunctionTypeParams(t *testing.T) {
	prog := parseClean(t, `
def pair<T, U>(a: T, b: U) {
    print a
}
`)
	decl := onlyStatement(t, prog).(*ast.FunctionDeclaration)
	if len(decl.TypeParams) != 2 || decl.TypeParams[0].Value != "T" || decl.TypeParams[1].Value != "U" {
		t.Errorf("type params = %v, want T and U", decl.TypeParams)
	}
	if decl.ReturnType != nil {
		t.Errorf("return type = %v, want none", decl.ReturnType)
	}
}

func TestExternDeclaration(t *testing.T) {
	prog := parseClean(t, "extern putchar(c: int)\nextern getchar(): int\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	put := prog.Statements[0].(*ast.ExternDeclaration)
	if put.Name.Value != "putchar" || len(put.Params) != 1 || put.ReturnType != nil {
		t.Errorf("putchar = %+v, want one param and no return type", put)
	}
	get := prog.Statements[1].(*ast.ExternDeclaration)
	if get.Name.Value != "getchar" || len(get.Params) != 0 || get.ReturnType == nil {
		t.Errorf("getchar = %+v, want no params and a return type", get)
	}
}

func TestStructDeclaration(t *testing.T) {
	prog := parseClean(t, "struct Point(x: int, y: float)")
	decl := onlyStatement(t, prog).(*ast.StructDeclaration)
	if decl.Name.Value != "Point" {
		t.Errorf("name = %q, want Point", decl.Name.Value)
	}
	if len(decl.Fields) != 2 || decl.Fields[0].Name.Value != "x" || decl.Fields[1].Name.Value != "y" {
		t.Errorf("fields = %v, want x and y", decl.Fields)
	}
}

func TestParameterListAllowsNewlinesAndTrailingComma(t *testing.T) {
	parseClean(t, `
struct Node(
    value: int,
    next: ptr Node,
)
`)
}

func TestNestedDeclarationReported(t *testing.T) {
	expectParseError(t, `
def f() {
    struct S(x: int)
}
`, diagnostics.ErrP002)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestIfElseChain(t *testing.T) {
	prog := parseClean(t, `
if a {
    print 1
} else if b {
    print 2
} else {
    print 3
}
`)
	first := onlyStatement(t, prog).(*ast.IfStatement)
	second, ok := first.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternative is %T, want a chained if", first.Alternative)
	}
	if _, ok := second.Alternative.(*ast.BlockStatement); !ok {
		t.Fatalf("final alternative is %T, want a block", second.Alternative)
	}
}

func TestWhileStatement(t *testing.T) {
	prog := parseClean(t, `
while n < 10 {
    n = n + 1
}
`)
	stmt := onlyStatement(t, prog).(*ast.WhileStatement)
	if _, ok := stmt.Condition.(*ast.BinaryExpression); !ok {
		t.Errorf("condition is %T, want a comparison", stmt.Condition)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Errorf("body has %d statements, want 1", len(stmt.Body.Statements))
	}
}

func TestForBindsElementsOrIndices(t *testing.T) {
	prog := parseClean(t, `
for x in xs {
    print x
}
for i of xs {
    print i
}
`)
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	in := prog.Statements[0].(*ast.ForStatement)
	if in.ByIndex || in.Binding.Value != "x" {
		t.Errorf("for-in = %+v, want element binding x", in)
	}
	of := prog.Statements[1].(*ast.ForStatement)
	if !of.ByIndex || of.Binding.Value != "i" {
		t.Errorf("for-of = %+v, want index binding i", of)
	}
}

func TestForRequiresInOrOf(t *testing.T) {
	d := expectParseError(t, "for x through xs {\n}\n", diagnostics.ErrP001)
	if !strings.Contains(d.Message, `"in" or "of"`) {
		t.Errorf("message = %q, want it to name in/of", d.Message)
	}
}

func TestReturnForms(t *testing.T) {
	prog := parseClean(t, `
def f() {
    return
}
def g(): int {
    return 42
}
`)
	bare := prog.Statements[0].(*ast.FunctionDeclaration).Body.Statements[0].(*ast.ReturnStatement)
	if bare.Value != nil {
		t.Errorf("bare return has value %v", bare.Value)
	}
	valued := prog.Statements[1].(*ast.FunctionDeclaration).Body.Statements[0].(*ast.ReturnStatement)
	if valued.Value == nil {
		t.Error("valued return lost its expression")
	}
}

func TestAssignmentTargets(t *testing.T) {
	for _, input := range []string{
		"x = 1",
		"p.x = 1",
		"a@0 = 1",
		"deref p = 1",
	} {
		stmt := onlyStatement(t, parseClean(t, input))
		if _, ok := stmt.(*ast.AssignStatement); !ok {
			t.Errorf("%q parsed as %T, want assignment", input, stmt)
		}
	}
}

func TestInvalidAssignmentTargets(t *testing.T) {
	expectParseError(t, "f() = 1\n", diagnostics.ErrP007)
	expectParseError(t, "1 = 2\n", diagnostics.ErrP007)
	expectParseError(t, "a + b = 2\n", diagnostics.ErrP007)
}

func TestErrorStatementTakesPlainString(t *testing.T) {
	stmt := onlyStatement(t, parseClean(t, `error "out of range"`))
	errStmt := stmt.(*ast.ErrorStatement)
	if errStmt.Message.Value != "out of range" {
		t.Errorf("message = %q", errStmt.Message.Value)
	}
	// Interpolation cannot appear in an abort message.
	expectParseError(t, `error "bad {x}"`, diagnostics.ErrP005)
}

func TestSemicolonSeparatesStatements(t *testing.T) {
	prog := parseClean(t, "var a = 1; print a")
	if len(prog.Statements) != 2 {
		t.Errorf("got %d statements, want 2", len(prog.Statements))
	}
}

func TestStatementsMustEndAtLineBreak(t *testing.T) {
	d := expectParseError(t, "print 1 print 2\n", diagnostics.ErrP001)
	if !strings.Contains(d.Message, "end of statement") {
		t.Errorf("message = %q, want end-of-statement complaint", d.Message)
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestArithmeticPrecedence(t *testing.T) {
	expr := printedExpression(t, "1 + 2 * 3")
	sum, ok := expr.(*ast.BinaryExpression)
	if !ok || sum.Operator != "+" {
		t.Fatalf("top is %v, want +", expr)
	}
	product, ok := sum.Right.(*ast.BinaryExpression)
	if !ok || product.Operator != "*" {
		t.Fatalf("right of + is %v, want *", sum.Right)
	}
}

func TestLogicalPrecedence(t *testing.T) {
	// or is looser than and, which is looser than comparison.
	expr := printedExpression(t, "a < b and c or d")
	or, ok := expr.(*ast.BinaryExpression)
	if !ok || or.Operator != "or" {
		t.Fatalf("top is %v, want or", expr)
	}
	and, ok := or.Left.(*ast.BinaryExpression)
	if !ok || and.Operator != "and" {
		t.Fatalf("left of or is %v, want and", or.Left)
	}
	if lt, ok := and.Left.(*ast.BinaryExpression); !ok || lt.Operator != "<" {
		t.Fatalf("left of and is %v, want <", and.Left)
	}
}

func TestCastBindsTighterThanArithmetic(t *testing.T) {
	expr := printedExpression(t, "x as int + 1")
	sum, ok := expr.(*ast.BinaryExpression)
	if !ok || sum.Operator != "+" {
		t.Fatalf("top is %v, want +", expr)
	}
	if _, ok := sum.Left.(*ast.CastExpression); !ok {
		t.Fatalf("left of + is %T, want the cast", sum.Left)
	}
}

func TestUnaryBindsTighterThanProduct(t *testing.T) {
	expr := printedExpression(t, "-a * b")
	product, ok := expr.(*ast.BinaryExpression)
	if !ok || product.Operator != "*" {
		t.Fatalf("top is %v, want *", expr)
	}
	if _, ok := product.Left.(*ast.UnaryExpression); !ok {
		t.Fatalf("left of * is %T, want unary minus", product.Left)
	}
}

func TestIndexChainsAreLeftAssociative(t *testing.T) {
	expr := printedExpression(t, "a@i@j")
	outer, ok := expr.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("top is %T, want index", expr)
	}
	if _, ok := outer.Object.(*ast.IndexExpression); !ok {
		t.Fatalf("object is %T, want the inner index", outer.Object)
	}
}

func TestGenericCallDisambiguation(t *testing.T) {
	expr := printedExpression(t, "max<int>(3, 4)")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("got %T, want a call", expr)
	}
	if len(call.TypeArgs) != 1 || len(call.Arguments) != 2 {
		t.Errorf("call = %d type args, %d args, want 1 and 2", len(call.TypeArgs), len(call.Arguments))
	}

	// Without a following '(', the angle brackets stay comparisons.
	cmp := printedExpression(t, "a < b > c")
	top, ok := cmp.(*ast.BinaryExpression)
	if !ok || top.Operator != ">" {
		t.Fatalf("got %v, want a > chain", cmp)
	}

	// With one, the shape scans as a generic call.
	rescan := printedExpression(t, "a < b > (c)")
	if _, ok := rescan.(*ast.CallExpression); !ok {
		t.Fatalf("got %T, want a generic call", rescan)
	}
}

func TestNestedTypeArguments(t *testing.T) {
	expr := printedExpression(t, "first<arr<int, 3>>(xs)")
	call, ok := expr.(*ast.CallExpression)
	if !ok || len(call.TypeArgs) != 1 {
		t.Fatalf("got %v, want a call with one type argument", expr)
	}
	if _, ok := call.TypeArgs[0].(*ast.ArrayType); !ok {
		t.Errorf("type arg is %T, want an array type", call.TypeArgs[0])
	}
}

func TestFieldAccessAndMethodCall(t *testing.T) {
	if _, ok := printedExpression(t, "p.x").(*ast.FieldAccessExpression); !ok {
		t.Error("p.x did not parse as field access")
	}
	call, ok := printedExpression(t, "p.norm()").(*ast.MethodCallExpression)
	if !ok {
		t.Fatal("p.norm() did not parse as method call")
	}
	if call.Name.Value != "norm" || len(call.Arguments) != 0 {
		t.Errorf("call = %+v, want norm with no arguments", call)
	}
}

func TestOnlyNamesAreCallable(t *testing.T) {
	expectParseError(t, "print (a + b)(1)\n", diagnostics.ErrP001)
}

func TestTrailingCommaInArguments(t *testing.T) {
	call := printedExpression(t, "f(1, 2,)").(*ast.CallExpression)
	if len(call.Arguments) != 2 {
		t.Errorf("got %d arguments, want 2", len(call.Arguments))
	}
}

func TestNewlinesInsideParentheses(t *testing.T) {
	parseClean(t, "print (1 +\n    2)\n")
	parseClean(t, "print f(\n    1,\n    2,\n)\n")
}

func TestMemoryExpressions(t *testing.T) {
	if _, ok := printedExpression(t, "ref x").(*ast.RefExpression); !ok {
		t.Error("ref x did not parse as ref")
	}
	if _, ok := printedExpression(t, "deref p").(*ast.DerefExpression); !ok {
		t.Error("deref p did not parse as deref")
	}
	alloc, ok := printedExpression(t, "alloc arr<int, 8>").(*ast.AllocExpression)
	if !ok {
		t.Fatal("alloc did not parse")
	}
	if _, ok := alloc.TargetType.(*ast.ArrayType); !ok {
		t.Errorf("alloc target is %T, want array type", alloc.TargetType)
	}
	newExpr, ok := printedExpression(t, "new Point(1, 2)").(*ast.NewExpression)
	if !ok {
		t.Fatal("new did not parse")
	}
	if newExpr.TypeName.Value != "Point" || len(newExpr.Arguments) != 2 {
		t.Errorf("new = %+v, want Point with two arguments", newExpr)
	}
}

// ---------------------------------------------------------------------------
// String literals
// ---------------------------------------------------------------------------

func TestStringEscapes(t *testing.T) {
	lit, ok := printedExpression(t, `"a\nb\t\{c\"\\"`).(*ast.StringLiteral)
	if !ok {
		t.Fatal("string did not parse as a plain literal")
	}
	if want := "a\nb\t{c\"\\"; lit.Value != want {
		t.Errorf("value = %q, want %q", lit.Value, want)
	}
}

func TestInterpolatedString(t *testing.T) {
	expr := printedExpression(t, `"n is {n}!"`)
	interp, ok := expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("got %T, want an interpolated string", expr)
	}
	if len(interp.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(interp.Segments))
	}
	if interp.Segments[0].Text != "n is " || interp.Segments[2].Text != "!" {
		t.Errorf("text segments = %q, %q", interp.Segments[0].Text, interp.Segments[2].Text)
	}
	if interp.Segments[1].Ident == nil || interp.Segments[1].Ident.Value != "n" {
		t.Errorf("interpolation segment = %+v, want identifier n", interp.Segments[1])
	}
}

func TestEscapedBraceIsNotInterpolation(t *testing.T) {
	lit, ok := printedExpression(t, `"a \{b} c"`).(*ast.StringLiteral)
	if !ok {
		t.Fatal("escaped brace still produced an interpolated string")
	}
	if want := "a {b} c"; lit.Value != want {
		t.Errorf("value = %q, want %q", lit.Value, want)
	}
}

func TestInvalidEscape(t *testing.T) {
	expectParseError(t, `print "a\q"`+"\n", diagnostics.ErrP006)
}

func TestMalformedInterpolation(t *testing.T) {
	expectParseError(t, `print "a{b"`+"\n", diagnostics.ErrP005)
	expectParseError(t, `print "a{1 + 2}"`+"\n", diagnostics.ErrP005)
}

// ---------------------------------------------------------------------------
// Error recovery
// ---------------------------------------------------------------------------

func TestRecoveryAtStatementBoundaries(t *testing.T) {
	ctx := parseSource("var = 1\nprint 2\nvar = 3\n")

	count := 0
	for _, d := range ctx.Diagnostics {
		if d.Code == diagnostics.ErrP001 {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d P001 diagnostics, want 2:\n%s", count, diagnosticList(ctx))
	}
	if len(ctx.Program.Statements) != 1 {
		t.Fatalf("recovered program has %d statements, want the print alone", len(ctx.Program.Statements))
	}
	if _, ok := ctx.Program.Statements[0].(*ast.PrintStatement); !ok {
		t.Errorf("surviving statement is %T, want print", ctx.Program.Statements[0])
	}
}

func TestIllegalCharacterDoesNotCascade(t *testing.T) {
	ctx := parseSource("var x = $\n")
	if len(ctx.Diagnostics) != 1 || ctx.Diagnostics[0].Code != diagnostics.ErrL001 {
		t.Errorf("got:\n%s\nwant a single L001", diagnosticList(ctx))
	}
}

func TestStrayClosingBrace(t *testing.T) {
	expectParseError(t, "}\n", diagnostics.ErrP001)
}

func TestExpressionDepthLimit(t *testing.T) {
	depth := config.MaxExpressionDepth + 10
	input := "print " + strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth) + "\n"

	d := expectParseError(t, input, diagnostics.ErrP003)
	if d.Severity != diagnostics.SeverityError {
		t.Errorf("P003 severity = %v, want error", d.Severity)
	}
}

func TestParserAlwaysProducesProgram(t *testing.T) {
	ctx := parseSource("def f( {\n")
	if ctx.Program == nil {
		t.Fatal("program is nil after a syntax error")
	}
	if !ctx.HasErrors() {
		t.Fatal("expected syntax errors")
	}
}
