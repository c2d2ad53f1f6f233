package symbols

type ScopeType int

const (
	ScopeGlobal ScopeType = iota
	ScopeFunction
	ScopeBlock
)

// SymbolTable is one scope. store maps a name to its declarations: variables
// hold exactly one entry, top-level functions may hold several (an overload
// set keyed by first parameter type; the resolver enforces that rule).
type SymbolTable struct {
	store     map[string][]*Symbol
	outer     *SymbolTable
	scopeType ScopeType
}

// NewSymbolTable creates an empty global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		store:     make(map[string][]*Symbol),
		scopeType: ScopeGlobal,
	}
}

// NewEnclosedSymbolTable creates a child scope of outer.
func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	st := NewSymbolTable()
	st.outer = outer
	st.scopeType = scopeType
	return st
}

// Outer returns the parent scope, nil for the global scope.
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

// ScopeType returns the kind of this scope.
func (s *SymbolTable) ScopeType() ScopeType {
	return s.scopeType
}

// IsGlobal reports whether this is the global scope.
func (s *SymbolTable) IsGlobal() bool {
	return s.outer == nil
}

// Insert adds a symbol to this scope without any conflict checking; the
// resolver decides what counts as a redeclaration.
func (s *SymbolTable) Insert(sym *Symbol) {
	s.store[sym.Name] = append(s.store[sym.Name], sym)
}

// LookupLocal returns the declarations for name in this scope only.
func (s *SymbolTable) LookupLocal(name string) []*Symbol {
	return s.store[name]
}

// Lookup returns the declarations for name, walking outward until a scope
// declares it. Inner declarations fully shadow outer ones.
func (s *SymbolTable) Lookup(name string) []*Symbol {
	for scope := s; scope != nil; scope = scope.outer {
		if syms, ok := scope.store[name]; ok {
			return syms
		}
	}
	return nil
}

// LookupSingle returns the sole declaration of name, or nil when the name is
// undeclared or overloaded.
func (s *SymbolTable) LookupSingle(name string) *Symbol {
	syms := s.Lookup(name)
	if len(syms) != 1 {
		return nil
	}
	return syms[0]
}

// Names returns every name declared directly in this scope.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.store))
	for name := range s.store {
		names = append(names, name)
	}
	return names
}
