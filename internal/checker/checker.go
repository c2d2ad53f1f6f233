// Package checker verifies the desugared program and records the type of
// every expression into the context. Inference is local and never
// generalizes: literals default to int and float, adopt an expected numeric
// type when they fit, and everything else follows declarations.
//
// The checker assumes the desugarer ran: associated calls are plain calls,
// operators with struct or pointer operands were either rewritten or already
// reported, and inferred var symbols carry their types. Generic function
// bodies are skipped; the monomorphizer checks each specialization with its
// concrete types.
package checker

import (
	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// Checker verifies one program. Create one with New and call Run once; the
// monomorphizer reuses it through CheckFunction for specialized clones.
type Checker struct {
	ctx *pipeline.Context
	fn  *ast.FunctionDeclaration // enclosing function, nil at top level
}

func New(ctx *pipeline.Context) *Checker {
	return &Checker{ctx: ctx}
}

// Run checks every top-level statement and non-generic function body.
func (c *Checker) Run() {
	if c.ctx.Program == nil {
		return
	}
	for _, stmt := range c.ctx.Program.Statements {
		switch stmt := stmt.(type) {
		case *ast.FunctionDeclaration:
			if len(stmt.TypeParams) > 0 {
				continue
			}
			c.CheckFunction(stmt)
		case *ast.ExternDeclaration, *ast.StructDeclaration:
			// signatures were resolved, nothing to run
		default:
			c.checkStmt(stmt)
		}
	}
}

// CheckFunction checks one function body against its signature. The
// monomorphizer calls it on specialized clones after resolution and
// desugaring.
func (c *Checker) CheckFunction(fn *ast.FunctionDeclaration) {
	prev := c.fn
	c.fn = fn
	defer func() { c.fn = prev }()

	if fn.Body != nil {
		for _, stmt := range fn.Body.Statements {
			c.checkStmt(stmt)
		}
	}
	c.checkFunctionReturns(fn)
}

func (c *Checker) report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	c.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

func (c *Checker) checkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDeclStatement:
		c.checkVarDecl(s)
	case *ast.AssignStatement:
		targetType := c.checkExpr(s.Target, nil)
		if s.Value == nil {
			return
		}
		if targetType != nil {
			c.expectValue(s.Value, targetType)
		} else {
			c.checkValue(s.Value, nil)
		}
	case *ast.ExpressionStatement:
		// the one position where a nothing call is fine
		c.checkExpr(s.Expression, nil)
	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			c.checkStmt(inner)
		}
	case *ast.IfStatement:
		c.expectCondition(s.Condition)
		if s.Consequence != nil {
			c.checkStmt(s.Consequence)
		}
		if s.Alternative != nil {
			c.checkStmt(s.Alternative)
		}
	case *ast.WhileStatement:
		c.expectCondition(s.Condition)
		if s.Body != nil {
			c.checkStmt(s.Body)
		}
	case *ast.ForStatement:
		c.checkFor(s)
	case *ast.ReturnStatement:
		c.checkReturn(s)
	case *ast.ErrorStatement:
		// the message is a plain literal, nothing to check
	case *ast.PrintStatement:
		c.checkPrintable(s.Value)
	case *ast.DebugStatement:
		c.checkPrintable(s.Value)
	case *ast.DelStatement:
		if t := c.checkValue(s.Target, nil); t != nil {
			if _, ok := t.(typesystem.Pointer); !ok {
				c.report(diagnostics.ErrT001, s.Target.GetToken(), "a pointer", t)
			}
		}
	}
}

func (c *Checker) checkVarDecl(s *ast.VarDeclStatement) {
	sym := c.ctx.Resolutions[s.Name]
	var want typesystem.Type
	if sym != nil {
		want = sym.Type
	}
	if s.Value == nil {
		return
	}
	if want != nil {
		c.expectValue(s.Value, want)
		return
	}
	// The desugarer could not synthesize the initializer; check it anyway
	// and take its type if one emerges.
	t := c.checkValue(s.Value, nil)
	if sym != nil && sym.Type == nil {
		sym.Type = t
	}
}

func (c *Checker) checkFor(s *ast.ForStatement) {
	t := c.checkValue(s.Iterable, nil)
	arr, isArray := t.(typesystem.Array)
	if t != nil && !isArray {
		c.report(diagnostics.ErrT001, s.Iterable.GetToken(), "an array", t)
	}
	if sym := c.ctx.Resolutions[s.Binding]; sym != nil && sym.Type == nil {
		if s.ByIndex {
			sym.Type = typesystem.Int{Width: 64, Signed: true}
		} else if isArray {
			sym.Type = arr.Elem
		}
	}
	if s.Body != nil {
		c.checkStmt(s.Body)
	}
}

func (c *Checker) checkReturn(s *ast.ReturnStatement) {
	want := c.returnType()
	name := c.functionName()
	if s.Value == nil {
		if want != nil && !typesystem.IsNothing(want) {
			c.report(diagnostics.ErrT004, s.Token, name, want, typesystem.Nothing{})
		}
		return
	}
	if want == nil {
		c.checkValue(s.Value, nil)
		return
	}
	if typesystem.IsNothing(want) {
		if got := c.checkValue(s.Value, nil); got != nil {
			c.report(diagnostics.ErrT004, s.Token, name, want, got)
		}
		return
	}
	if got := c.checkValue(s.Value, want); got != nil && !got.Equals(want) {
		c.report(diagnostics.ErrT004, s.Token, name, want, got)
	}
}

func (c *Checker) checkPrintable(value ast.Expression) {
	t := c.checkValue(value, nil)
	if t == nil {
		return
	}
	switch t.(type) {
	case typesystem.Int, typesystem.Float, typesystem.Bool, typesystem.Str:
	default:
		c.report(diagnostics.ErrT001, value.GetToken(), "a printable type", t)
	}
}

func (c *Checker) expectCondition(cond ast.Expression) {
	if cond == nil {
		return
	}
	if t := c.checkValue(cond, typesystem.Bool{}); t != nil && !t.Equals(typesystem.Bool{}) {
		c.report(diagnostics.ErrT001, cond.GetToken(), typesystem.Bool{}, t)
	}
}

// returnType is the declared return type of the enclosing function. Top
// level counts as a nothing function. nil means the annotation failed to
// resolve, which suppresses return checks instead of cascading.
func (c *Checker) returnType() typesystem.Type {
	if c.fn == nil || c.fn.ReturnType == nil {
		return typesystem.Nothing{}
	}
	return c.ctx.ResolvedTypes[c.fn.ReturnType]
}

func (c *Checker) functionName() string {
	if c.fn == nil {
		return "main"
	}
	return c.fn.Name.Value
}

// checkFunctionReturns verifies that a function declaring a return type
// returns on every path. if/else counts when both arms return; error aborts
// count as returns; loops never do.
func (c *Checker) checkFunctionReturns(fn *ast.FunctionDeclaration) {
	if fn.ReturnType == nil || fn.Body == nil {
		return
	}
	want := c.ctx.ResolvedTypes[fn.ReturnType]
	if want == nil || typesystem.IsNothing(want) {
		return
	}
	if !blockAlwaysReturns(fn.Body) {
		c.report(diagnostics.ErrT004, fn.Name.Token, fn.Name.Value, want, typesystem.Nothing{})
	}
}

func blockAlwaysReturns(block *ast.BlockStatement) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Statements {
		if stmtAlwaysReturns(stmt) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.ErrorStatement:
		return true
	case *ast.BlockStatement:
		return blockAlwaysReturns(s)
	case *ast.IfStatement:
		if s.Alternative == nil {
			return false
		}
		return blockAlwaysReturns(s.Consequence) && stmtAlwaysReturns(s.Alternative)
	}
	return false
}
