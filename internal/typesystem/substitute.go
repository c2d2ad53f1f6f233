package typesystem

import (
	"fmt"
	"strings"
)

// Subst maps type parameter names to concrete types.
type Subst map[string]Type

// Substitute replaces every Generic occurrence in t according to s. Types
// without generics are returned unchanged.
func Substitute(t Type, s Subst) Type {
	if t == nil || len(s) == 0 {
		return t
	}
	switch v := t.(type) {
	case Generic:
		if replacement, ok := s[v.Name]; ok {
			return replacement
		}
		return v
	case Pointer:
		return Pointer{Elem: Substitute(v.Elem, s)}
	case Array:
		return Array{Elem: Substitute(v.Elem, s), Size: v.Size}
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Substitute(p, s)
		}
		return Function{Params: params, Return: Substitute(v.Return, s)}
	default:
		return t
	}
}

// GenericNames lists the type parameter names t mentions, in first-use order.
func GenericNames(t Type) []string {
	var names []string
	collectGenericNames(t, &names)
	return names
}

func collectGenericNames(t Type, names *[]string) {
	switch v := t.(type) {
	case Generic:
		for _, n := range *names {
			if n == v.Name {
				return
			}
		}
		*names = append(*names, v.Name)
	case Pointer:
		collectGenericNames(v.Elem, names)
	case Array:
		collectGenericNames(v.Elem, names)
	case Function:
		for _, p := range v.Params {
			collectGenericNames(p, names)
		}
		if v.Return != nil {
			collectGenericNames(v.Return, names)
		}
	}
}

// TypeArgConflict describes two incompatible bindings inferred for one type
// parameter.
type TypeArgConflict struct {
	Param    string
	First    Type
	Second   Type
	ArgIndex int
}

// InferTypeArgs unifies the parameter types of a generic signature with the
// concrete argument types at a call site and returns the binding for each
// type parameter. A parameter bound to two different types is a conflict;
// a parameter that no argument mentions is reported in missing.
func InferTypeArgs(typeParams []string, params []Type, args []Type) (Subst, *TypeArgConflict, []string) {
	s := make(Subst, len(typeParams))
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		if conflict := bindTypeArg(params[i], args[i], s, i); conflict != nil {
			return nil, conflict, nil
		}
	}
	var missing []string
	for _, name := range typeParams {
		if _, ok := s[name]; !ok {
			missing = append(missing, name)
		}
	}
	return s, nil, missing
}

func bindTypeArg(param, arg Type, s Subst, argIndex int) *TypeArgConflict {
	if param == nil || arg == nil {
		return nil
	}
	switch p := param.(type) {
	case Generic:
		if bound, ok := s[p.Name]; ok {
			if !bound.Equals(arg) {
				return &TypeArgConflict{Param: p.Name, First: bound, Second: arg, ArgIndex: argIndex}
			}
			return nil
		}
		s[p.Name] = arg
		return nil
	case Pointer:
		if a, ok := arg.(Pointer); ok {
			return bindTypeArg(p.Elem, a.Elem, s, argIndex)
		}
	case Array:
		if a, ok := arg.(Array); ok {
			return bindTypeArg(p.Elem, a.Elem, s, argIndex)
		}
	}
	return nil
}

// Mangle derives the backend-visible name of a specialization from the
// generic function's name and its concrete type arguments, for example
// plus__int or swap__ptr_float.
func Mangle(name string, args []Type) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, sanitize(a.String()))
	}
	return strings.Join(parts, "__")
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == ',':
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// Key builds the instantiation cache key for a generic function and an
// ordered tuple of concrete type arguments.
func Key(name string, args []Type) string {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(strs, ", "))
}
