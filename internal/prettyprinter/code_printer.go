// Package prettyprinter renders an AST back to FTL source text. Output is
// canonical: four-space indent, one statement per line, and only the
// parentheses the surrounding precedence requires, so printing a parsed
// program and reparsing the output yields a structurally identical tree.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
)

// Binary operator precedence, mirroring the parser's table so the printer
// drops exactly the parentheses the grammar already implies.
var operatorPrecedence = map[string]int{
	"or":     1,
	"xor":    1,
	"and":    2,
	"==":     3,
	"=/=":    3,
	"<":      4,
	">":      4,
	"<=":     4,
	">=":     4,
	"bitand": 5,
	"bitor":  5,
	"bitxor": 5,
	"shl":    6,
	"shr":    6,
	"+":      7,
	"-":      7,
	"*":      8,
	"/":      8,
	"mod":    8,
}

// Levels for the non-binary forms, continuing the table above.
const (
	lowestPrec  = 0
	castPrec    = 9  // as
	prefixPrec  = 10 // not, unary -, ref, deref
	indexPrec   = 11 // @
	postfixPrec = 12 // call, field access
	atomPrec    = 13 // literals, names, self-delimiting forms
)

func getPrecedence(op string) int {
	if prec, ok := operatorPrecedence[op]; ok {
		return prec
	}
	return atomPrec
}

// nodePrec returns the precedence at which expr binds as a whole.
func nodePrec(expr ast.Expression) int {
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		return getPrecedence(e.Operator)
	case *ast.CastExpression:
		return castPrec
	case *ast.UnaryExpression, *ast.RefExpression, *ast.DerefExpression:
		return prefixPrec
	case *ast.IndexExpression:
		return indexPrec
	case *ast.FieldAccessExpression, *ast.MethodCallExpression:
		return postfixPrec
	default:
		return atomPrec
	}
}

// parenthesized reports whether expr printed at parentPrec gets wrapped.
// isRight marks the right operand of a binary or index expression; every
// FTL operator associates left, so an equal-precedence right operand keeps
// its parentheses.
func parenthesized(expr ast.Expression, parentPrec int, isRight bool) bool {
	prec := nodePrec(expr)
	return prec < parentPrec || (prec == parentPrec && isRight)
}

// CodePrinter renders AST nodes as FTL source text.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders program as formatted FTL source.
func Print(program *ast.Program) string {
	p := NewCodePrinter()
	program.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// printExpr prints expr, parenthesizing it only when parentPrec requires.
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		prec := getPrecedence(e.Operator)
		needParens := parenthesized(expr, parentPrec, isRight)
		if needParens {
			p.write("(")
		}
		if e.Operator == ">" && scansAsGenericCall(e) {
			// The parser reads "a < b > (c)" as the generic call a<b>(c);
			// parenthesizing the comparison makes the text read back as
			// written.
			p.write("(")
			p.printExpr(e.Left, lowestPrec, false)
			p.write(")")
		} else {
			p.printExpr(e.Left, prec, false)
		}
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.UnaryExpression:
		needParens := prefixPrec < parentPrec
		if needParens {
			p.write("(")
		}
		p.write(e.Operator)
		if e.Operator != "-" {
			p.write(" ")
		}
		p.printExpr(e.Operand, prefixPrec, false)
		if needParens {
			p.write(")")
		}
	case *ast.RefExpression:
		needParens := prefixPrec < parentPrec
		if needParens {
			p.write("(")
		}
		p.write("ref ")
		p.printExpr(e.Operand, prefixPrec, false)
		if needParens {
			p.write(")")
		}
	case *ast.DerefExpression:
		needParens := prefixPrec < parentPrec
		if needParens {
			p.write("(")
		}
		p.write("deref ")
		p.printExpr(e.Operand, prefixPrec, false)
		if needParens {
			p.write(")")
		}
	case *ast.CastExpression:
		needParens := castPrec < parentPrec
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Value, castPrec, false)
		p.write(" as ")
		p.printType(e.TargetType)
		if needParens {
			p.write(")")
		}
	case *ast.IndexExpression:
		needParens := parenthesized(expr, parentPrec, isRight)
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Object, indexPrec, false)
		p.write(" @ ")
		p.printExpr(e.Index, indexPrec, true)
		if needParens {
			p.write(")")
		}
	case *ast.FieldAccessExpression:
		p.printExpr(e.Object, postfixPrec, false)
		p.write(".")
		p.write(e.Field.Value)
	case *ast.MethodCallExpression:
		p.printExpr(e.Receiver, postfixPrec, false)
		p.write(".")
		p.write(e.Name.Value)
		p.printArguments(e.Arguments)
	default:
		expr.Accept(p)
	}
}

// scansAsGenericCall reports whether the printed form of a ">" comparison
// would hit the parser's generic-call lookahead: "a < b > (c)" scans as the
// call a<b>(c). That takes a "<" left operand whose right side prints as a
// lone name or integer, a "<" left side ending in a bare identifier, and a
// parenthesis directly after the ">". Any lower-precedence left operand is
// already parenthesized and cannot scan that way.
func scansAsGenericCall(e *ast.BinaryExpression) bool {
	lt, ok := e.Left.(*ast.BinaryExpression)
	if !ok || lt.Operator != "<" {
		return false
	}
	switch lt.Right.(type) {
	case *ast.Identifier, *ast.IntegerLiteral:
	default:
		return false
	}
	return endsInBareIdent(lt.Left, getPrecedence(lt.Operator), false) &&
		opensWithParen(e.Right, getPrecedence(e.Operator), true)
}

// endsInBareIdent reports whether the last token of expr printed at
// parentPrec is an identifier in expression position.
func endsInBareIdent(expr ast.Expression, parentPrec int, isRight bool) bool {
	if parenthesized(expr, parentPrec, isRight) {
		return false
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		return true
	case *ast.BinaryExpression:
		return endsInBareIdent(e.Right, getPrecedence(e.Operator), true)
	case *ast.UnaryExpression:
		return endsInBareIdent(e.Operand, prefixPrec, false)
	case *ast.RefExpression:
		return endsInBareIdent(e.Operand, prefixPrec, false)
	case *ast.DerefExpression:
		return endsInBareIdent(e.Operand, prefixPrec, false)
	case *ast.IndexExpression:
		return endsInBareIdent(e.Index, indexPrec, true)
	default:
		return false
	}
}

// opensWithParen reports whether the printed form of expr at parentPrec
// starts with "(".
func opensWithParen(expr ast.Expression, parentPrec int, isRight bool) bool {
	if parenthesized(expr, parentPrec, isRight) {
		return true
	}
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		return opensWithParen(e.Left, getPrecedence(e.Operator), false)
	case *ast.CastExpression:
		return opensWithParen(e.Value, castPrec, false)
	case *ast.IndexExpression:
		return opensWithParen(e.Object, indexPrec, false)
	case *ast.FieldAccessExpression:
		return opensWithParen(e.Object, postfixPrec, false)
	case *ast.MethodCallExpression:
		return opensWithParen(e.Receiver, postfixPrec, false)
	default:
		return false
	}
}

func (p *CodePrinter) printArguments(args []ast.Expression) {
	p.write("(")
	for i, arg := range args {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(arg, lowestPrec, false)
	}
	p.write(")")
}

func (p *CodePrinter) printType(t ast.TypeExpr) {
	if t == nil {
		p.write("<???>")
		return
	}
	t.Accept(p)
}

// escapeString re-encodes decoded string content with the escapes the lexer
// understands. A brace must go back to \{ so it does not reopen an
// interpolation span.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '{':
			b.WriteString(`\{`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isDeclaration reports whether stmt is a declaration that gets blank lines
// around it at the top level.
func isDeclaration(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.FunctionDeclaration, *ast.ExternDeclaration, *ast.StructDeclaration:
		return true
	}
	return false
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, stmt := range n.Statements {
		if i > 0 && (isDeclaration(stmt) || isDeclaration(n.Statements[i-1])) {
			p.writeln()
		}
		stmt.Accept(p)
		p.writeln()
	}
}

// ---------- statements ----------

func (p *CodePrinter) VisitVarDeclStatement(n *ast.VarDeclStatement) {
	if n.Constant {
		p.write("const ")
	} else {
		p.write("var ")
	}
	p.write(n.Name.Value)
	if n.DeclaredType != nil {
		p.write(": ")
		p.printType(n.DeclaredType)
	}
	if n.Value != nil {
		p.write(" = ")
		p.printExpr(n.Value, lowestPrec, false)
	}
}

func (p *CodePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.printExpr(n.Target, lowestPrec, false)
	p.write(" = ")
	p.printExpr(n.Value, lowestPrec, false)
}

func (p *CodePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.printExpr(n.Expression, lowestPrec, false)
}

func (p *CodePrinter) VisitBlockStatement(n *ast.BlockStatement) {
	p.write("{\n")
	p.indent++
	for _, stmt := range n.Statements {
		p.writeIndent()
		stmt.Accept(p)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitIfStatement(n *ast.IfStatement) {
	p.write("if ")
	p.printExpr(n.Condition, lowestPrec, false)
	p.write(" ")
	n.Consequence.Accept(p)
	if n.Alternative != nil {
		// "else" and "else if" continue on the closing brace's line.
		p.write(" else ")
		n.Alternative.Accept(p)
	}
}

func (p *CodePrinter) VisitWhileStatement(n *ast.WhileStatement) {
	p.write("while ")
	p.printExpr(n.Condition, lowestPrec, false)
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitForStatement(n *ast.ForStatement) {
	p.write("for ")
	p.write(n.Binding.Value)
	if n.ByIndex {
		p.write(" of ")
	} else {
		p.write(" in ")
	}
	p.printExpr(n.Iterable, lowestPrec, false)
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.write("return")
	if n.Value != nil {
		p.write(" ")
		p.printExpr(n.Value, lowestPrec, false)
	}
}

func (p *CodePrinter) VisitErrorStatement(n *ast.ErrorStatement) {
	p.write("error ")
	n.Message.Accept(p)
}

func (p *CodePrinter) VisitPrintStatement(n *ast.PrintStatement) {
	p.write("print ")
	p.printExpr(n.Value, lowestPrec, false)
}

func (p *CodePrinter) VisitDebugStatement(n *ast.DebugStatement) {
	p.write("debug ")
	p.printExpr(n.Value, lowestPrec, false)
}

func (p *CodePrinter) VisitDelStatement(n *ast.DelStatement) {
	p.write("del ")
	p.printExpr(n.Target, lowestPrec, false)
}

// ---------- declarations ----------

func (p *CodePrinter) VisitFunctionDeclaration(n *ast.FunctionDeclaration) {
	p.write("def ")
	p.write(n.Name.Value)
	if len(n.TypeParams) > 0 {
		p.write("<")
		for i, tp := range n.TypeParams {
			if i > 0 {
				p.write(", ")
			}
			p.write(tp.Value)
		}
		p.write(">")
	}
	p.printParameterList(n.Params)
	if n.ReturnType != nil {
		p.write(": ")
		p.printType(n.ReturnType)
	}
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitExternDeclaration(n *ast.ExternDeclaration) {
	p.write("extern ")
	p.write(n.Name.Value)
	p.printParameterList(n.Params)
	if n.ReturnType != nil {
		p.write(": ")
		p.printType(n.ReturnType)
	}
}

func (p *CodePrinter) VisitStructDeclaration(n *ast.StructDeclaration) {
	p.write("struct ")
	p.write(n.Name.Value)
	p.printParameterList(n.Fields)
}

// printParameterList prints (name: type, ...). Four or more parameters go
// one per line with aligned colons.
func (p *CodePrinter) printParameterList(params []*ast.Parameter) {
	if len(params) <= 3 {
		p.write("(")
		for i, param := range params {
			if i > 0 {
				p.write(", ")
			}
			param.Accept(p)
		}
		p.write(")")
		return
	}

	maxNameLen := 0
	for _, param := range params {
		if len(param.Name.Value) > maxNameLen {
			maxNameLen = len(param.Name.Value)
		}
	}
	p.write("(\n")
	p.indent++
	for i, param := range params {
		p.writeIndent()
		p.write(param.Name.Value)
		for j := len(param.Name.Value); j < maxNameLen; j++ {
			p.write(" ")
		}
		p.write(": ")
		p.printType(param.Type)
		if i < len(params)-1 {
			p.write(",")
		}
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write(")")
}

func (p *CodePrinter) VisitParameter(n *ast.Parameter) {
	p.write(n.Name.Value)
	p.write(": ")
	p.printType(n.Type)
}

// ---------- expressions ----------

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	p.write(strconv.FormatInt(n.Value, 10))
}

func (p *CodePrinter) VisitFloatLiteral(n *ast.FloatLiteral) {
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	// The lexer only recognizes a float by its dot.
	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	p.write(s)
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	if n.Value {
		p.write("true")
	} else {
		p.write("false")
	}
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write(`"`)
	p.write(escapeString(n.Value))
	p.write(`"`)
}

func (p *CodePrinter) VisitInterpolatedString(n *ast.InterpolatedString) {
	p.write(`"`)
	for _, seg := range n.Segments {
		if seg.Ident != nil {
			p.write("{")
			p.write(seg.Ident.Value)
			p.write("}")
			continue
		}
		p.write(escapeString(seg.Text))
	}
	p.write(`"`)
}

func (p *CodePrinter) VisitNilLiteral(n *ast.NilLiteral) {
	p.write("nil")
}

// The operator forms delegate to printExpr; when a node is accepted
// directly it prints in lowest-precedence context.

func (p *CodePrinter) VisitBinaryExpression(n *ast.BinaryExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitUnaryExpression(n *ast.UnaryExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitCastExpression(n *ast.CastExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitIndexExpression(n *ast.IndexExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitFieldAccessExpression(n *ast.FieldAccessExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitMethodCallExpression(n *ast.MethodCallExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitRefExpression(n *ast.RefExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitDerefExpression(n *ast.DerefExpression) {
	p.printExpr(n, lowestPrec, false)
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.write(n.Function.Value)
	if len(n.TypeArgs) > 0 {
		p.write("<")
		for i, arg := range n.TypeArgs {
			if i > 0 {
				p.write(", ")
			}
			p.printType(arg)
		}
		p.write(">")
	}
	p.printArguments(n.Arguments)
}

func (p *CodePrinter) VisitNewExpression(n *ast.NewExpression) {
	p.write("new ")
	p.write(n.TypeName.Value)
	p.printArguments(n.Arguments)
}

func (p *CodePrinter) VisitAllocExpression(n *ast.AllocExpression) {
	p.write("alloc ")
	p.printType(n.TargetType)
}

// ---------- type expressions ----------

func (p *CodePrinter) VisitNamedType(n *ast.NamedType) {
	p.write(n.Name)
}

func (p *CodePrinter) VisitPointerType(n *ast.PointerType) {
	p.write("ptr ")
	p.printType(n.Elem)
}

func (p *CodePrinter) VisitArrayType(n *ast.ArrayType) {
	p.write("arr<")
	p.printType(n.Elem)
	p.write(", ")
	n.Size.Accept(p)
	p.write(">")
}
