// Package resolver binds names to symbols and surface type expressions to
// typesystem values. It runs two passes over a parsed program: a collection
// pass that fills the global scope with structs, functions, and externs so
// bodies may reference them in any order, and a body walk that binds every
// identifier use to its declaration.
//
// The resolver never mutates the AST. Its outputs are the context's
// GlobalScope, Structs, Resolutions, and ResolvedTypes, which the desugarer,
// the checker, and the monomorphizer consult.
package resolver

import (
	"strings"

	"github.com/linuskmr/fortytwo-lang/internal/ast"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/parser"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/token"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// Resolver binds a program's names. Create one with New and call Run once;
// the monomorphizer reuses it through ResolveFunction for specialized
// function clones.
type Resolver struct {
	ctx *pipeline.Context
}

func New(ctx *pipeline.Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// Run resolves ctx.Program. The global scope is rebuilt from scratch, so
// running twice over the same program produces equal bindings.
func (r *Resolver) Run() {
	r.ctx.GlobalScope = symbols.NewSymbolTable()
	r.ctx.Structs = make(map[string]*typesystem.Struct)
	if r.ctx.Program == nil {
		return
	}

	r.declareStructs()
	r.resolveStructFields()
	r.checkStructCycles()
	r.declarePrelude()
	r.declareManifestExterns()
	r.declareFunctions()

	w := &walker{ctx: r.ctx, scope: r.ctx.GlobalScope}
	r.ctx.Program.Accept(w)
}

// ResolveFunction binds the body of fn against the current global scope.
// The monomorphizer calls it on specialized clones with bindings mapping
// the original type parameter names to concrete types; with nil bindings
// type parameters resolve to their Generic placeholders, which is what Run
// does for every top-level function.
func (r *Resolver) ResolveFunction(fn *ast.FunctionDeclaration, bindings map[string]typesystem.Type) {
	w := &walker{ctx: r.ctx, scope: r.ctx.GlobalScope}
	w.resolveFunctionBody(fn, bindings)
}

func (r *Resolver) report(code diagnostics.ErrorCode, tok token.Token, args ...interface{}) {
	r.ctx.AddDiagnostic(diagnostics.NewError(code, tok, args...))
}

// declareStructs interns a Struct type for every top-level struct
// declaration so later signatures and fields may reference it, including
// recursively through ptr. Field lists are filled in a second step once
// every struct name is known.
func (r *Resolver) declareStructs() {
	for _, stmt := range r.ctx.Program.Statements {
		decl, ok := stmt.(*ast.StructDeclaration)
		if !ok {
			continue
		}
		name := decl.Name.Value
		if _, isPrimitive := typesystem.Primitive(name); isPrimitive {
			r.report(diagnostics.ErrR002, decl.Name.Token, name)
			continue
		}
		if len(r.ctx.GlobalScope.LookupLocal(name)) > 0 {
			r.report(diagnostics.ErrR002, decl.Name.Token, name)
			continue
		}
		st := &typesystem.Struct{Name: name}
		r.ctx.Structs[name] = st
		sym := &symbols.Symbol{
			Name:  name,
			Kind:  symbols.StructSymbol,
			Type:  st,
			Decl:  decl.Name.Token,
			Flags: nameFlags(name),
			Node:  decl,
		}
		r.ctx.GlobalScope.Insert(sym)
		r.ctx.Resolutions[decl.Name] = sym
	}
}

// resolveStructFields fills the interned struct types with their resolved
// field lists. A field whose type cannot be resolved degrades to any so one
// bad annotation does not cascade into unknown-field diagnostics on every
// use of the struct.
func (r *Resolver) resolveStructFields() {
	w := &walker{ctx: r.ctx, scope: r.ctx.GlobalScope}
	for _, stmt := range r.ctx.Program.Statements {
		decl, ok := stmt.(*ast.StructDeclaration)
		if !ok {
			continue
		}
		if r.ctx.Resolutions[decl.Name] == nil {
			continue // redeclaration, the first declaration owns the type
		}
		st := r.ctx.Structs[decl.Name.Value]
		fields := make([]typesystem.StructField, 0, len(decl.Fields))
		seen := make(map[string]bool, len(decl.Fields))
		for _, field := range decl.Fields {
			fieldName := field.Name.Value
			if seen[fieldName] {
				r.report(diagnostics.ErrR002, field.Name.Token, fieldName)
				continue
			}
			seen[fieldName] = true
			fieldType := w.resolveType(field.Type)
			if fieldType == nil {
				fieldType = typesystem.Any{}
			}
			fields = append(fields, typesystem.StructField{Name: fieldName, Type: fieldType})
		}
		st.Fields = fields
	}
}

// checkStructCycles rejects structs that contain themselves by value.
// A ptr field breaks a cycle; struct and arr fields do not.
func (r *Resolver) checkStructCycles() {
	for _, stmt := range r.ctx.Program.Statements {
		decl, ok := stmt.(*ast.StructDeclaration)
		if !ok || r.ctx.Resolutions[decl.Name] == nil {
			continue
		}
		st := r.ctx.Structs[decl.Name.Value]
		for _, field := range st.Fields {
			seen := map[*typesystem.Struct]bool{st: true}
			if reachesByValue(field.Type, st, seen) {
				r.report(diagnostics.ErrR005, decl.Name.Token, st.Name, field.Name)
				break
			}
		}
	}
}

// reachesByValue reports whether t embeds target without an intervening
// pointer. seen keeps the walk from looping through cycles that do not
// involve target.
func reachesByValue(t typesystem.Type, target *typesystem.Struct, seen map[*typesystem.Struct]bool) bool {
	switch t := t.(type) {
	case *typesystem.Struct:
		if t == target {
			return true
		}
		if seen[t] {
			return false
		}
		seen[t] = true
		for _, field := range t.Fields {
			if reachesByValue(field.Type, target, seen) {
				return true
			}
		}
	case typesystem.Array:
		return reachesByValue(t.Elem, target, seen)
	}
	return false
}

// declarePrelude inserts the str conversion functions the runtime library
// provides. They make "n = " + 1 and interpolation work on primitive
// operands; struct operands still need a user-defined str overload.
func (r *Resolver) declarePrelude() {
	for _, t := range preludeConversions() {
		r.ctx.GlobalScope.Insert(&symbols.Symbol{
			Name: config.StrConvFuncName,
			Kind: symbols.ExternSymbol,
			Type: typesystem.Function{Params: []typesystem.Type{t}, Return: typesystem.Str{}},
		})
	}
}

// preludeConversions lists the parameter types of the runtime's str
// conversions, one per distinct primitive representation.
func preludeConversions() []typesystem.Type {
	types := []typesystem.Type{
		typesystem.Bool{},
		typesystem.Float{Width: 32},
		typesystem.Float{Width: 64},
	}
	for _, width := range []uint8{8, 16, 32, 64} {
		types = append(types,
			typesystem.Int{Width: width, Signed: true},
			typesystem.Int{Width: width, Signed: false},
		)
	}
	return types
}

// declareManifestExterns turns the project manifest's extern entries into
// extern symbols. Their types are parsed from surface strings after structs
// are interned, so a manifest signature may mention user structs.
func (r *Resolver) declareManifestExterns() {
	w := &walker{ctx: r.ctx, scope: r.ctx.GlobalScope}
	for _, sig := range r.ctx.ManifestExterns {
		params := make([]typesystem.Type, 0, len(sig.Params))
		usable := true
		for _, src := range sig.Params {
			t := r.manifestType(w, src)
			if t == nil {
				usable = false
				break
			}
			params = append(params, t)
		}
		var ret typesystem.Type = typesystem.Nothing{}
		if usable && sig.Returns != "" {
			ret = r.manifestType(w, sig.Returns)
			usable = ret != nil
		}
		if !usable {
			continue
		}
		fnType := typesystem.Function{Params: params, Return: ret}
		if r.redeclared(sig.Name, fnType, token.Token{}) {
			continue
		}
		r.ctx.GlobalScope.Insert(&symbols.Symbol{
			Name: sig.Name,
			Kind: symbols.ExternSymbol,
			Type: fnType,
		})
	}
}

// manifestType parses and resolves one manifest type string. nil means the
// string was reported as unusable.
func (r *Resolver) manifestType(w *walker, src string) typesystem.Type {
	expr, err := parser.ParseTypeString(src)
	if err != nil {
		r.report(diagnostics.ErrR004, token.Token{}, src)
		return nil
	}
	return w.resolveType(expr)
}

// declareFunctions inserts a symbol for every top-level def and extern so
// bodies may call forward and a name may carry an overload set.
func (r *Resolver) declareFunctions() {
	for _, stmt := range r.ctx.Program.Statements {
		switch decl := stmt.(type) {
		case *ast.FunctionDeclaration:
			r.declareFunction(decl)
		case *ast.ExternDeclaration:
			r.declareExtern(decl)
		}
	}
}

func (r *Resolver) declareFunction(decl *ast.FunctionDeclaration) {
	fnType := r.signatureType(decl.TypeParams, decl.Params, decl.ReturnType)
	if r.redeclared(decl.Name.Value, fnType, decl.Name.Token) {
		return
	}
	sym := &symbols.Symbol{
		Name:  decl.Name.Value,
		Kind:  symbols.FunctionSymbol,
		Type:  fnType,
		Decl:  decl.Name.Token,
		Flags: nameFlags(decl.Name.Value),
		Node:  decl,
	}
	r.ctx.GlobalScope.Insert(sym)
	r.ctx.Resolutions[decl.Name] = sym
}

func (r *Resolver) declareExtern(decl *ast.ExternDeclaration) {
	fnType := r.signatureType(nil, decl.Params, decl.ReturnType)
	if r.redeclared(decl.Name.Value, fnType, decl.Name.Token) {
		return
	}
	sym := &symbols.Symbol{
		Name:  decl.Name.Value,
		Kind:  symbols.ExternSymbol,
		Type:  fnType,
		Decl:  decl.Name.Token,
		Flags: nameFlags(decl.Name.Value),
		Node:  decl,
	}
	r.ctx.GlobalScope.Insert(sym)
	r.ctx.Resolutions[decl.Name] = sym
}

// signatureType resolves a declaration's surface signature. Type parameters
// resolve to Generic placeholders inside the parameter and return types.
func (r *Resolver) signatureType(typeParams []*ast.Identifier, params []*ast.Parameter, returnType ast.TypeExpr) typesystem.Function {
	sigScope := symbols.NewEnclosedSymbolTable(r.ctx.GlobalScope, symbols.ScopeFunction)
	var names []string
	for _, tp := range typeParams {
		if len(sigScope.LookupLocal(tp.Value)) > 0 {
			r.report(diagnostics.ErrR002, tp.Token, tp.Value)
			continue
		}
		names = append(names, tp.Value)
		sigScope.Insert(&symbols.Symbol{
			Name: tp.Value,
			Kind: symbols.TypeParamSymbol,
			Type: typesystem.Generic{Name: tp.Value},
			Decl: tp.Token,
		})
	}

	w := &walker{ctx: r.ctx, scope: sigScope}
	paramTypes := make([]typesystem.Type, 0, len(params))
	for _, param := range params {
		t := w.resolveType(param.Type)
		if t == nil {
			t = typesystem.Any{}
		}
		paramTypes = append(paramTypes, t)
	}
	var ret typesystem.Type = typesystem.Nothing{}
	if returnType != nil {
		if t := w.resolveType(returnType); t != nil {
			ret = t
		}
	}
	return typesystem.Function{TypeParams: names, Params: paramTypes, Return: ret}
}

// redeclared reports and returns true when name is already taken in the
// global scope by a non-callable symbol or by a callable with the same
// first parameter type. Distinct first parameter types form an overload
// set and coexist.
func (r *Resolver) redeclared(name string, fnType typesystem.Function, at token.Token) bool {
	for _, existing := range r.ctx.GlobalScope.LookupLocal(name) {
		if !existing.IsCallable() || sameFirstParam(existing.FirstParamType(), firstParam(fnType)) {
			r.report(diagnostics.ErrR002, at, name)
			return true
		}
	}
	return false
}

func firstParam(fn typesystem.Function) typesystem.Type {
	if len(fn.Params) == 0 {
		return nil
	}
	return fn.Params[0]
}

func sameFirstParam(a, b typesystem.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// nameFlags derives the metadata flags a name's spelling implies.
func nameFlags(name string) symbols.SymbolFlags {
	if strings.HasPrefix(name, "_") {
		return symbols.FlagPrivate
	}
	return 0
}
