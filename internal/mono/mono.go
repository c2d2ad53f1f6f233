// Package mono monomorphizes generic functions. Every call to a generic
// function is rewritten to call a specialization named after its concrete
// type argument tuple (plus with T=int becomes plus__int), and the
// specialization's body is cloned from the generic original, re-resolved
// with the type parameters bound, desugared, and checked like any other
// function. Instantiation is cached per tuple, so recursion over the same
// types terminates; a chain that keeps producing new tuples is cut off at a
// depth cap. Generic declarations are removed from the program once every
// call site points at a specialization.
package mono

import (
	"fmt"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/checker"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/desugar"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/resolver"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// Mono drives monomorphization over one checked program.
type Mono struct {
	ctx      *pipeline.Context
	resolver *resolver.Resolver
	desugar  *desugar.Desugarer
	checker  *checker.Checker
	cache    map[string]*instance
	order    []*instance
}

// instance is one specialization: the concrete clone and its symbol.
type instance struct {
	decl *ast.FunctionDeclaration
	sym  *symbols.Symbol
}

func New(ctx *pipeline.Context) *Mono {
	return &Mono{
		ctx:      ctx,
		resolver: resolver.New(ctx),
		desugar:  desugar.New(ctx),
		checker:  checker.New(ctx),
		cache:    map[string]*instance{},
	}
}

// Run rewrites every generic call reachable from concrete code, appends the
// specializations, and drops the generic originals. When the program is
// otherwise clean it finishes with a sweep asserting that no generic type
// survived.
func (m *Mono) Run() {
	if m.ctx.Program == nil {
		return
	}
	for _, stmt := range m.ctx.Program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			if len(s.TypeParams) > 0 {
				continue
			}
			if s.Body != nil {
				m.rewriteCalls(s.Body, 0)
			}
		case *ast.ExternDeclaration, *ast.StructDeclaration:
		default:
			m.rewriteCalls(stmt, 0)
		}
	}
	m.removeGenerics()
	if !m.ctx.HasErrors() {
		m.verifyConcrete()
	}
}

// Instantiations returns the specializations in creation order.
func (m *Mono) Instantiations() []*ast.FunctionDeclaration {
	decls := make([]*ast.FunctionDeclaration, len(m.order))
	for i, inst := range m.order {
		decls[i] = inst.decl
	}
	return decls
}

func (m *Mono) report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	m.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

// rewriteCalls redirects every generic call under stmt to a specialization.
// depth counts the active instantiation chain, not lexical nesting.
func (m *Mono) rewriteCalls(stmt ast.Statement, depth int) {
	walkStmt(stmt, func(expr ast.Expression) {
		if call, ok := expr.(*ast.CallExpression); ok {
			m.rewriteCall(call, depth)
		}
	})
}

func (m *Mono) rewriteCall(e *ast.CallExpression, depth int) {
	if e.Function == nil {
		return
	}
	sym := m.ctx.Resolutions[e.Function]
	if sym == nil || !sym.IsGeneric() {
		return
	}
	fn, ok := sym.Type.(typesystem.Function)
	if !ok {
		return
	}
	subst, ok := m.checker.TypeArguments(e, fn, sym.Name)
	if !ok {
		return // inference failed, reported during checking
	}
	args := make([]typesystem.Type, len(fn.TypeParams))
	for i, name := range fn.TypeParams {
		args[i] = subst[name]
	}
	inst := m.instantiate(sym, args, e.Token, depth)
	if inst == nil {
		return
	}
	e.Function.Value = inst.sym.Name
	e.Function.Token.Lexeme = inst.sym.Name
	e.TypeArgs = nil
	m.ctx.Resolutions[e.Function] = inst.sym
}

// instantiate returns the specialization of sym for the given type argument
// tuple, creating it on first use. The cache entry is published before the
// clone's body is processed, so self-recursion over the same tuple resolves
// to the instance under construction instead of looping.
func (m *Mono) instantiate(sym *symbols.Symbol, args []typesystem.Type, at token.Token, depth int) *instance {
	key := typesystem.Key(sym.Name, args)
	if inst, ok := m.cache[key]; ok {
		return inst
	}
	if depth >= config.MaxInstantiationDepth {
		m.report(diagnostics.ErrM002, at, sym.Name)
		return nil
	}
	decl, ok := sym.Node.(*ast.FunctionDeclaration)
	if !ok {
		return nil
	}
	fn, ok := sym.Type.(typesystem.Function)
	if !ok {
		return nil
	}

	clone := cloneFunction(decl)
	clone.TypeParams = nil
	mangled := typesystem.Mangle(sym.Name, args)
	clone.Name.Value = mangled
	clone.Name.Token.Lexeme = mangled

	subst := make(typesystem.Subst, len(fn.TypeParams))
	bindings := make(map[string]typesystem.Type, len(fn.TypeParams))
	for i, name := range fn.TypeParams {
		subst[name] = args[i]
		bindings[name] = args[i]
	}
	specType, ok := typesystem.Substitute(sym.Type, subst).(typesystem.Function)
	if !ok {
		return nil
	}
	spec := &symbols.Symbol{
		Name: mangled,
		Kind: symbols.FunctionSymbol,
		Type: specType,
		Decl: clone.Name.Token,
		Node: clone,
	}
	inst := &instance{decl: clone, sym: spec}
	m.cache[key] = inst
	m.order = append(m.order, inst)
	m.ctx.GlobalScope.Insert(spec)
	m.ctx.Resolutions[clone.Name] = spec

	m.resolver.ResolveFunction(clone, bindings)
	m.desugar.RewriteFunction(clone)
	m.checker.CheckFunction(clone)
	if clone.Body != nil {
		m.rewriteCalls(clone.Body, depth+1)
	}
	return inst
}

// removeGenerics drops generic declarations and appends the specializations
// in creation order.
func (m *Mono) removeGenerics() {
	out := make([]ast.Statement, 0, len(m.ctx.Program.Statements)+len(m.order))
	for _, stmt := range m.ctx.Program.Statements {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && len(fn.TypeParams) > 0 {
			continue
		}
		out = append(out, stmt)
	}
	for _, inst := range m.order {
		out = append(out, inst.decl)
	}
	m.ctx.Program.Statements = out
}

// verifyConcrete sweeps the monomorphized program for expressions still
// typed with a generic placeholder. Finding one on a clean program is a
// front end bug, not a user error.
func (m *Mono) verifyConcrete() {
	for _, stmt := range m.ctx.Program.Statements {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok {
			if fn.Body == nil {
				continue
			}
			m.sweepStmt(fn.Body)
			continue
		}
		m.sweepStmt(stmt)
	}
}

func (m *Mono) sweepStmt(stmt ast.Statement) {
	walkStmt(stmt, func(expr ast.Expression) {
		t := m.ctx.Types[expr]
		if t != nil && typesystem.ContainsGeneric(t) {
			m.report(diagnostics.ErrX001, expr.GetToken(),
				fmt.Sprintf("expression typed %s survived monomorphization", t))
		}
	})
}
