package desugar

import (
	"github.com/linuskmr/fortytwo-lang/internal/symbols"
	"github.com/linuskmr/fortytwo-lang/internal/typesystem"
)

// OverloadTable answers the selection queries desugaring needs against the
// global scope: which overload of a name takes a given first parameter type,
// and which user function implements an operator for a given operand pair.
type OverloadTable struct {
	scope *symbols.SymbolTable
}

func NewOverloadTable(scope *symbols.SymbolTable) *OverloadTable {
	return &OverloadTable{scope: scope}
}

// Candidates returns the callable declarations of name.
func (t *OverloadTable) Candidates(name string) []*symbols.Symbol {
	var callable []*symbols.Symbol
	for _, sym := range t.scope.Lookup(name) {
		if sym.IsCallable() {
			callable = append(callable, sym)
		}
	}
	return callable
}

// SelectByFirstParam picks the overload of name whose first parameter type
// matches first. An exact match always wins; failing that, a single generic
// candidate whose first parameter can bind first is selected, and several
// such candidates are ambiguous. first may be nil to select a zero-parameter
// overload.
func (t *OverloadTable) SelectByFirstParam(name string, first typesystem.Type) (sym *symbols.Symbol, ambiguous bool) {
	var generic []*symbols.Symbol
	for _, candidate := range t.Candidates(name) {
		paramType := candidate.FirstParamType()
		if paramType == nil || first == nil {
			if paramType == nil && first == nil {
				return candidate, false
			}
			continue
		}
		if typesystem.ContainsGeneric(paramType) {
			if bindable(paramType, first) {
				generic = append(generic, candidate)
			}
			continue
		}
		if paramType.Equals(first) {
			return candidate, false
		}
	}
	switch len(generic) {
	case 0:
		return nil, false
	case 1:
		return generic[0], false
	default:
		return nil, true
	}
}

// BinaryOverload finds the user implementation of a binary operator: a
// concrete two-parameter function under the operator's reserved name whose
// parameters equal the operand types. Generic functions never implement
// operators directly; inside a specialization the substituted operand types
// select a concrete overload like anywhere else.
func (t *OverloadTable) BinaryOverload(name string, left, right typesystem.Type) *symbols.Symbol {
	for _, sym := range t.Candidates(name) {
		fn, ok := sym.Type.(typesystem.Function)
		if !ok || len(fn.TypeParams) > 0 || len(fn.Params) != 2 {
			continue
		}
		if fn.Params[0].Equals(left) && fn.Params[1].Equals(right) {
			return sym
		}
	}
	return nil
}

// UnaryOverload finds the user implementation of a unary operator.
func (t *OverloadTable) UnaryOverload(name string, operand typesystem.Type) *symbols.Symbol {
	for _, sym := range t.Candidates(name) {
		fn, ok := sym.Type.(typesystem.Function)
		if !ok || len(fn.TypeParams) > 0 || len(fn.Params) != 1 {
			continue
		}
		if fn.Params[0].Equals(operand) {
			return sym
		}
	}
	return nil
}

// bindable reports whether a parameter type mentioning type parameters can
// bind an argument of type arg with a complete, conflict-free substitution.
func bindable(param, arg typesystem.Type) bool {
	names := typesystem.GenericNames(param)
	s, conflict, missing := typesystem.InferTypeArgs(names, []typesystem.Type{param}, []typesystem.Type{arg})
	if conflict != nil || len(missing) > 0 {
		return false
	}
	return typesystem.Substitute(param, s).Equals(arg)
}
