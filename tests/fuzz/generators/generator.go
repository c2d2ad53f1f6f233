// Package generators produces random fortytwo-lang programs for the fuzz
// targets. Generated code is syntactically valid but deliberately not type
// correct: the parser and formatter targets only care about the grammar, and
// semantic garbage exercises the diagnostic paths of the later stages.
package generators

import (
	"fmt"
	"math/rand"
	"strings"
)

// RandomSource abstracts where generation choices come from: a seeded PRNG
// for reproducible corpora, or fuzz input bytes so the fuzzer can steer the
// generator.
type RandomSource interface {
	Intn(n int) int
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource consumes a byte slice. Exhausted input yields zeros, which
// keeps generation total on short fuzz inputs.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

const (
	MaxExprDepth  = 4
	MaxStmtDepth  = 4
	MaxStatements = 5
)

var (
	varNames    = []string{"x", "y", "z", "n", "total"}
	funcNames   = []string{"f", "g", "compute", "describe"}
	structNames = []string{"Point", "Pair", "Node"}
	stringPool  = []string{"hi", "hello world", "a b c", "done"}
	binaryOps   = []string{
		"+", "-", "*", "/", "mod", "shl", "shr",
		"==", "=/=", "<", "<=", ">", ">=",
		"and", "or", "xor", "bitand", "bitor", "bitxor",
	}
)

// Generator produces random fortytwo-lang source text.
type Generator struct {
	src   RandomSource
	depth int
}

func New(seed int64) *Generator {
	return &Generator{src: RandSource{rand.New(rand.NewSource(seed))}}
}

func NewFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}}
}

func (g *Generator) pick(pool []string) string {
	return pool[g.src.Intn(len(pool))]
}

// GenerateProgram emits declarations first, then loose top-level statements,
// mirroring how real programs are laid out.
func (g *Generator) GenerateProgram() string {
	var b strings.Builder
	if g.src.Intn(3) == 0 {
		b.WriteString(g.structDecl())
	}
	if g.src.Intn(3) == 0 {
		b.WriteString(g.externDecl())
	}
	for i, n := 0, g.src.Intn(2)+1; i < n; i++ {
		b.WriteString(g.funcDecl())
	}
	for i, n := 0, g.src.Intn(MaxStatements); i < n; i++ {
		b.WriteString(g.noise(""))
		b.WriteString(g.statement(""))
	}
	return b.String()
}

func (g *Generator) structDecl() string {
	n := g.src.Intn(3) + 1
	fields := make([]string, n)
	for i := range fields {
		fields[i] = fmt.Sprintf("%s%d: %s", g.pick(varNames), i, g.typeExpr(1))
	}
	return fmt.Sprintf("struct %s(%s)\n", g.pick(structNames), strings.Join(fields, ", "))
}

func (g *Generator) externDecl() string {
	params := ""
	if g.src.Intn(2) == 0 {
		params = fmt.Sprintf("%s: %s", g.pick(varNames), g.typeExpr(1))
	}
	ret := ""
	if g.src.Intn(2) == 0 {
		ret = ": " + g.typeExpr(1)
	}
	return fmt.Sprintf("extern %s(%s)%s\n", g.pick(funcNames), params, ret)
}

func (g *Generator) funcDecl() string {
	var b strings.Builder
	b.WriteString("def ")
	b.WriteString(g.pick(funcNames))
	if g.src.Intn(4) == 0 {
		b.WriteString("<T>")
	}
	b.WriteString("(")
	if g.src.Intn(2) == 0 {
		fmt.Fprintf(&b, "%s: %s", g.pick(varNames), g.typeExpr(1))
	}
	b.WriteString(")")
	if g.src.Intn(2) == 0 {
		b.WriteString(": ")
		b.WriteString(g.typeExpr(1))
	}
	b.WriteString(" ")
	b.WriteString(g.block(""))
	b.WriteString("\n")
	return b.String()
}

// block renders "{...}" without a trailing newline so statements can splice
// an else branch onto the closing brace line.
func (g *Generator) block(indent string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, n := 0, g.src.Intn(MaxStatements); i < n; i++ {
		b.WriteString(g.statement(indent + "    "))
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func (g *Generator) statement(indent string) string {
	if g.depth >= MaxStmtDepth {
		return indent + "print " + g.expr(0) + "\n"
	}
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(14) {
	case 0:
		return fmt.Sprintf("%svar %s = %s\n", indent, g.pick(varNames), g.expr(0))
	case 1:
		return fmt.Sprintf("%svar %s: %s\n", indent, g.pick(varNames), g.typeExpr(1))
	case 2:
		return fmt.Sprintf("%sconst %s = %s\n", indent, g.pick(varNames), g.expr(0))
	case 3:
		return fmt.Sprintf("%s%s = %s\n", indent, g.lvalue(), g.expr(0))
	case 4:
		s := fmt.Sprintf("%sif %s %s", indent, g.expr(0), g.block(indent))
		if g.src.Intn(3) == 0 {
			s += " else " + g.block(indent)
		}
		return s + "\n"
	case 5:
		return fmt.Sprintf("%swhile %s %s\n", indent, g.expr(0), g.block(indent))
	case 6:
		kw := "in"
		if g.src.Intn(2) == 0 {
			kw = "of"
		}
		return fmt.Sprintf("%sfor %s %s %s %s\n", indent, g.pick(varNames), kw, g.expr(0), g.block(indent))
	case 7:
		if g.src.Intn(3) == 0 {
			return indent + "return\n"
		}
		return fmt.Sprintf("%sreturn %s\n", indent, g.expr(0))
	case 8:
		return fmt.Sprintf("%sdebug %s\n", indent, g.expr(0))
	case 9:
		return fmt.Sprintf("%serror %q\n", indent, g.pick(stringPool))
	case 10:
		return fmt.Sprintf("%sdel %s\n", indent, g.pick(varNames))
	case 11:
		return fmt.Sprintf("%s%s(%s)\n", indent, g.pick(funcNames), g.expr(0))
	case 12:
		return fmt.Sprintf("%s%s\n", indent, g.block(indent))
	default:
		return fmt.Sprintf("%sprint %s\n", indent, g.expr(0))
	}
}

func (g *Generator) lvalue() string {
	v := g.pick(varNames)
	switch g.src.Intn(4) {
	case 0:
		return v + "." + g.pick(varNames)
	case 1:
		return fmt.Sprintf("%s@%d", v, g.src.Intn(8))
	case 2:
		return "deref " + v
	default:
		return v
	}
}

func (g *Generator) expr(depth int) string {
	if depth >= MaxExprDepth {
		return g.atom()
	}
	switch g.src.Intn(12) {
	case 0:
		return fmt.Sprintf("(%s %s %s)", g.expr(depth+1), g.pick(binaryOps), g.expr(depth+1))
	case 1:
		return fmt.Sprintf("(%s %s)", g.pick([]string{"not", "-"}), g.atom())
	case 2:
		return fmt.Sprintf("%s(%s)", g.pick(funcNames), g.expr(depth+1))
	case 3:
		return fmt.Sprintf("%s<%s>(%s)", g.pick(funcNames), g.typeExpr(1), g.expr(depth+1))
	case 4:
		return fmt.Sprintf("%s.%s()", g.pick(varNames), g.pick(funcNames))
	case 5:
		return fmt.Sprintf("%s.%s", g.pick(varNames), g.pick(varNames))
	case 6:
		return fmt.Sprintf("(%s as %s)", g.expr(depth+1), g.typeExpr(1))
	case 7:
		return "(ref " + g.pick(varNames) + ")"
	case 8:
		return "alloc " + g.typeExpr(1)
	case 9:
		return fmt.Sprintf("new %s(%s)", g.pick(structNames), g.expr(depth+1))
	case 10:
		return fmt.Sprintf("(%s@%s)", g.pick(varNames), g.atom())
	default:
		return g.atom()
	}
}

func (g *Generator) atom() string {
	switch g.src.Intn(8) {
	case 0, 1:
		return fmt.Sprintf("%d", g.src.Intn(100))
	case 2:
		return g.pick([]string{"1.5", "0.25", "3.0"})
	case 3:
		return g.pick([]string{"true", "false"})
	case 4:
		return "nil"
	case 5:
		return fmt.Sprintf("%q", g.pick(stringPool))
	case 6:
		return fmt.Sprintf("\"n is {%s}\"", g.pick(varNames))
	default:
		return g.pick(varNames)
	}
}

func (g *Generator) typeExpr(depth int) string {
	if depth <= 0 {
		return g.pick([]string{"int", "float", "bool", "str"})
	}
	switch g.src.Intn(7) {
	case 0:
		return "ptr " + g.typeExpr(depth-1)
	case 1:
		return fmt.Sprintf("arr<%s, %d>", g.typeExpr(depth-1), g.src.Intn(8)+1)
	case 2:
		return g.pick(structNames)
	default:
		return g.pick([]string{"int", "int16", "uint32", "float", "float32", "bool", "str"})
	}
}

// noise occasionally inserts blank lines or a comment, which the lexer must
// absorb without affecting the tree.
func (g *Generator) noise(indent string) string {
	if g.src.Intn(8) != 0 {
		return ""
	}
	if g.src.Intn(2) == 0 {
		return "\n"
	}
	return indent + "# " + g.pick(stringPool) + "\n"
}
