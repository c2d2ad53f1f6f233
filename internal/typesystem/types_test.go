package typesystem

import (
	"testing"
)

func TestTypeStrings(t *testing.T) {
	point := &Struct{Name: "Point"}

	tests := []struct {
		typ  Type
		want string
	}{
		{Int{Width: 64, Signed: true}, "int"},
		{Int{Width: 64, Signed: false}, "uint"},
		{Int{Width: 8, Signed: true}, "int8"},
		{Int{Width: 16, Signed: false}, "uint16"},
		{Float{Width: 64}, "float"},
		{Float{Width: 32}, "float32"},
		{Bool{}, "bool"},
		{Str{}, "str"},
		{Nothing{}, "nothing"},
		{Any{}, "any"},
		{Pointer{Elem: Int{Width: 64, Signed: true}}, "ptr int"},
		{Pointer{Elem: Pointer{Elem: Bool{}}}, "ptr ptr bool"},
		{Array{Elem: Float{Width: 64}, Size: 3}, "arr<float, 3>"},
		{point, "Point"},
		{Generic{Name: "T"}, "T"},
		{Function{Params: []Type{Int{Width: 64, Signed: true}}, Return: Nothing{}}, "def(int)"},
		{Function{TypeParams: []string{"T"}, Params: []Type{Generic{Name: "T"}}, Return: Generic{Name: "T"}}, "def<T>(T): T"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEquals(t *testing.T) {
	intT := Int{Width: 64, Signed: true}
	uintT := Int{Width: 64, Signed: false}
	int32T := Int{Width: 32, Signed: true}

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same int", intT, Int{Width: 64, Signed: true}, true},
		{"signedness matters", intT, uintT, false},
		{"width matters", intT, int32T, false},
		{"int is not float", intT, Float{Width: 64}, false},
		{"float widths", Float{Width: 32}, Float{Width: 64}, false},
		{"pointer elem", Pointer{Elem: intT}, Pointer{Elem: intT}, true},
		{"pointer elem differs", Pointer{Elem: intT}, Pointer{Elem: uintT}, false},
		{"pointer is not any", Pointer{Elem: intT}, Any{}, false},
		{"array size matters", Array{Elem: intT, Size: 3}, Array{Elem: intT, Size: 4}, false},
		{"array same", Array{Elem: intT, Size: 3}, Array{Elem: intT, Size: 3}, true},
		{"generic by name", Generic{Name: "T"}, Generic{Name: "T"}, true},
		{"generic name differs", Generic{Name: "T"}, Generic{Name: "U"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("%s.Equals(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// Struct equality is nominal: the field lists play no part.
func TestStructEqualityIsNominal(t *testing.T) {
	a := &Struct{Name: "Point", Fields: []StructField{{Name: "x", Type: Int{Width: 64, Signed: true}}}}
	b := &Struct{Name: "Point"}
	c := &Struct{Name: "Vec", Fields: a.Fields}

	if !a.Equals(b) {
		t.Error("structs with the same name must be equal")
	}
	if a.Equals(c) {
		t.Error("structs with different names must not be equal")
	}
}

func TestStructField(t *testing.T) {
	point := &Struct{Name: "Point", Fields: []StructField{
		{Name: "x", Type: Int{Width: 64, Signed: true}},
		{Name: "y", Type: Float{Width: 64}},
	}}

	field, idx := point.Field("y")
	if field == nil || idx != 1 {
		t.Fatalf("Field(y) = %v, %d, want the float field at 1", field, idx)
	}
	if !field.Type.Equals(Float{Width: 64}) {
		t.Errorf("Field(y).Type = %s, want float", field.Type)
	}

	if field, idx := point.Field("z"); field != nil || idx != -1 {
		t.Errorf("Field(z) = %v, %d, want nil, -1", field, idx)
	}
}

func TestPrimitive(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"int", Int{Width: 64, Signed: true}},
		{"int64", Int{Width: 64, Signed: true}},
		{"uint8", Int{Width: 8, Signed: false}},
		{"float", Float{Width: 64}},
		{"float64", Float{Width: 64}},
		{"bool", Bool{}},
		{"str", Str{}},
		{"nothing", Nothing{}},
		{"any", Any{}},
	}
	for _, tt := range tests {
		got, ok := Primitive(tt.name)
		if !ok {
			t.Errorf("Primitive(%q) not found", tt.name)
			continue
		}
		if !got.Equals(tt.want) {
			t.Errorf("Primitive(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, ok := Primitive("Point"); ok {
		t.Error("struct names must not resolve as primitives")
	}
}

func TestContainsGeneric(t *testing.T) {
	intT := Int{Width: 64, Signed: true}

	tests := []struct {
		typ  Type
		want bool
	}{
		{intT, false},
		{Generic{Name: "T"}, true},
		{Pointer{Elem: Generic{Name: "T"}}, true},
		{Pointer{Elem: intT}, false},
		{Array{Elem: Pointer{Elem: Generic{Name: "U"}}, Size: 2}, true},
		{Function{Params: []Type{intT}, Return: Generic{Name: "T"}}, true},
		{Function{Params: []Type{intT}, Return: Nothing{}}, false},
	}
	for _, tt := range tests {
		if got := ContainsGeneric(tt.typ); got != tt.want {
			t.Errorf("ContainsGeneric(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
