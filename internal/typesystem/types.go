// Package typesystem defines FTL's types and the operations the pipeline
// performs on them: equality, cast legality, generic substitution, and
// type-argument inference.
//
// Primitives, pointers, and arrays compare structurally; structs compare
// nominally by name. Generic is a placeholder that must not survive
// monomorphization.
package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in the system.
type Type interface {
	String() string
	Equals(other Type) bool
}

// Int is a sized integer type. Width is one of 8, 16, 32, 64.
type Int struct {
	Width  uint8
	Signed bool
}

// Float is a sized floating point type. Width is 32 or 64.
type Float struct {
	Width uint8
}

// Bool is the boolean type.
type Bool struct{}

// Str is the string type provided by the runtime library.
type Str struct{}

// Nothing is the absence of a value. Functions without a declared return
// type return Nothing.
type Nothing struct{}

// Any is the untyped pointer. It participates only in pointer casts and
// extern signatures.
type Any struct{}

// Pointer is a typed pointer, written "ptr T".
type Pointer struct {
	Elem Type
}

// Array is a fixed-size array, written "arr<T, N>".
type Array struct {
	Elem Type
	Size int64
}

// StructField is a named field of a struct type.
type StructField struct {
	Name string
	Type Type
}

// Struct is a nominal struct type. The resolver interns one *Struct per
// declaration so that field lists stay shared and consistent.
type Struct struct {
	Name   string
	Fields []StructField
}

// Generic is a type parameter placeholder inside a generic function. The
// monomorphizer eliminates every occurrence.
type Generic struct {
	Name string
}

// Function is the type of a function or extern declaration. Return is never
// nil; functions without a declared return type carry Nothing.
type Function struct {
	TypeParams []string
	Params     []Type
	Return     Type
}

func (t Int) String() string {
	if t.Width == 64 {
		if t.Signed {
			return "int"
		}
		return "uint"
	}
	if t.Signed {
		return fmt.Sprintf("int%d", t.Width)
	}
	return fmt.Sprintf("uint%d", t.Width)
}

func (t Float) String() string {
	if t.Width == 64 {
		return "float"
	}
	return fmt.Sprintf("float%d", t.Width)
}

func (Bool) String() string    { return "bool" }
func (Str) String() string     { return "str" }
func (Nothing) String() string { return "nothing" }
func (Any) String() string     { return "any" }

func (t Pointer) String() string { return "ptr " + t.Elem.String() }

func (t Array) String() string {
	return fmt.Sprintf("arr<%s, %d>", t.Elem.String(), t.Size)
}

func (t *Struct) String() string { return t.Name }

func (t Generic) String() string { return t.Name }

func (t Function) String() string {
	var sb strings.Builder
	sb.WriteString("def")
	if len(t.TypeParams) > 0 {
		sb.WriteString("<")
		sb.WriteString(strings.Join(t.TypeParams, ", "))
		sb.WriteString(">")
	}
	sb.WriteString("(")
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if t.Return != nil && !IsNothing(t.Return) {
		sb.WriteString(": ")
		sb.WriteString(t.Return.String())
	}
	return sb.String()
}

func (t Int) Equals(other Type) bool {
	o, ok := other.(Int)
	return ok && o.Width == t.Width && o.Signed == t.Signed
}

func (t Float) Equals(other Type) bool {
	o, ok := other.(Float)
	return ok && o.Width == t.Width
}

func (Bool) Equals(other Type) bool {
	_, ok := other.(Bool)
	return ok
}

func (Str) Equals(other Type) bool {
	_, ok := other.(Str)
	return ok
}

func (Nothing) Equals(other Type) bool {
	_, ok := other.(Nothing)
	return ok
}

func (Any) Equals(other Type) bool {
	_, ok := other.(Any)
	return ok
}

func (t Pointer) Equals(other Type) bool {
	o, ok := other.(Pointer)
	return ok && t.Elem.Equals(o.Elem)
}

func (t Array) Equals(other Type) bool {
	o, ok := other.(Array)
	return ok && t.Size == o.Size && t.Elem.Equals(o.Elem)
}

// Equals on structs is nominal: two struct types are the same type exactly
// when they come from the same declaration name.
func (t *Struct) Equals(other Type) bool {
	o, ok := other.(*Struct)
	return ok && o.Name == t.Name
}

func (t Generic) Equals(other Type) bool {
	o, ok := other.(Generic)
	return ok && o.Name == t.Name
}

func (t Function) Equals(other Type) bool {
	o, ok := other.(Function)
	if !ok || len(o.Params) != len(t.Params) || len(o.TypeParams) != len(t.TypeParams) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return t.Return.Equals(o.Return)
}

// Field returns the named field and its position, or nil and -1.
func (t *Struct) Field(name string) (*StructField, int) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], i
		}
	}
	return nil, -1
}

// primitives maps surface type names to their types. "int", "uint" and
// "float" are canonical spellings of the 64-bit widths. Struct names are
// looked up separately by the resolver.
var primitives = map[string]Type{
	"int":     Int{Width: 64, Signed: true},
	"int8":    Int{Width: 8, Signed: true},
	"int16":   Int{Width: 16, Signed: true},
	"int32":   Int{Width: 32, Signed: true},
	"int64":   Int{Width: 64, Signed: true},
	"uint":    Int{Width: 64, Signed: false},
	"uint8":   Int{Width: 8, Signed: false},
	"uint16":  Int{Width: 16, Signed: false},
	"uint32":  Int{Width: 32, Signed: false},
	"uint64":  Int{Width: 64, Signed: false},
	"float":   Float{Width: 64},
	"float32": Float{Width: 32},
	"float64": Float{Width: 64},
	"bool":    Bool{},
	"str":     Str{},
	"nothing": Nothing{},
	"any":     Any{},
}

// Primitive resolves a surface type name to a primitive type.
func Primitive(name string) (Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// IsNumeric reports whether t is an integer or float type.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case Int, Float:
		return true
	}
	return false
}

// IsInteger reports whether t is an integer type of any width.
func IsInteger(t Type) bool {
	_, ok := t.(Int)
	return ok
}

// IsNothing reports whether t is the nothing type.
func IsNothing(t Type) bool {
	_, ok := t.(Nothing)
	return ok
}

// IsPointerLike reports whether t is a typed pointer or any.
func IsPointerLike(t Type) bool {
	switch t.(type) {
	case Pointer, Any:
		return true
	}
	return false
}

// IsStruct reports whether t is a struct type.
func IsStruct(t Type) bool {
	_, ok := t.(*Struct)
	return ok
}

// ContainsGeneric reports whether t mentions a type parameter anywhere.
func ContainsGeneric(t Type) bool {
	switch v := t.(type) {
	case Generic:
		return true
	case Pointer:
		return ContainsGeneric(v.Elem)
	case Array:
		return ContainsGeneric(v.Elem)
	case Function:
		for _, p := range v.Params {
			if ContainsGeneric(p) {
				return true
			}
		}
		return v.Return != nil && ContainsGeneric(v.Return)
	}
	return false
}
