package typesystem

import (
	"testing"
)

func TestBinaryOpType(t *testing.T) {
	intT := Int{Width: 64, Signed: true}
	uintT := Int{Width: 64, Signed: false}
	u8 := Int{Width: 8, Signed: false}
	floatT := Float{Width: 64}
	point := &Struct{Name: "Point"}

	tests := []struct {
		name        string
		op          string
		left, right Type
		want        Type
		ok          bool
	}{
		{"int addition", "+", intT, intT, intT, true},
		{"string concatenation", "+", Str{}, Str{}, Str{}, true},
		{"mixed widths rejected", "+", intT, u8, nil, false},
		{"mixed signedness rejected", "-", intT, uintT, nil, false},
		{"int float rejected", "*", intT, floatT, nil, false},
		{"float division", "/", floatT, floatT, floatT, true},
		{"mod on integers", "mod", u8, u8, u8, true},
		{"mod on floats rejected", "mod", floatT, floatT, nil, false},
		{"shift amount may differ in width", "shl", intT, u8, intT, true},
		{"shift on float rejected", "shr", floatT, intT, nil, false},
		{"bitand", "bitand", uintT, uintT, uintT, true},
		{"bitor on bool rejected", "bitor", Bool{}, Bool{}, nil, false},
		{"logical and", "and", Bool{}, Bool{}, Bool{}, true},
		{"logical xor", "xor", Bool{}, Bool{}, Bool{}, true},
		{"and on ints rejected", "and", intT, intT, nil, false},
		{"numeric equality", "==", intT, intT, Bool{}, true},
		{"string equality", "==", Str{}, Str{}, Bool{}, true},
		{"bool inequality", "=/=", Bool{}, Bool{}, Bool{}, true},
		{"pointer equality", "==", Pointer{Elem: intT}, Pointer{Elem: intT}, Bool{}, true},
		{"pointer vs any", "==", Pointer{Elem: intT}, Any{}, Bool{}, true},
		{"unrelated pointers rejected", "==", Pointer{Elem: intT}, Pointer{Elem: floatT}, nil, false},
		{"struct equality has no builtin", "==", point, point, nil, false},
		{"comparison", "<", intT, intT, Bool{}, true},
		{"comparison on strings has no builtin", "<", Str{}, Str{}, nil, false},
		{"nil operand", "+", nil, intT, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BinaryOpType(tt.op, tt.left, tt.right)
			if ok != tt.ok {
				t.Fatalf("BinaryOpType(%q) ok = %v, want %v", tt.op, ok, tt.ok)
			}
			if ok && !got.Equals(tt.want) {
				t.Errorf("BinaryOpType(%q) = %s, want %s", tt.op, got, tt.want)
			}
		})
	}
}

func TestUnaryOpType(t *testing.T) {
	intT := Int{Width: 64, Signed: true}

	if got, ok := UnaryOpType("-", intT); !ok || !got.Equals(intT) {
		t.Errorf("-int = %v, %v, want int", got, ok)
	}
	if got, ok := UnaryOpType("-", Float{Width: 32}); !ok || !got.Equals(Float{Width: 32}) {
		t.Errorf("-float32 = %v, %v, want float32", got, ok)
	}
	if _, ok := UnaryOpType("-", Bool{}); ok {
		t.Error("-bool must not have a builtin")
	}
	if got, ok := UnaryOpType("not", Bool{}); !ok || !got.Equals(Bool{}) {
		t.Errorf("not bool = %v, %v, want bool", got, ok)
	}
	if _, ok := UnaryOpType("not", intT); ok {
		t.Error("not int must not have a builtin")
	}
}

func TestCastAllowed(t *testing.T) {
	intT := Int{Width: 64, Signed: true}
	u8 := Int{Width: 8, Signed: false}
	floatT := Float{Width: 64}
	ptrInt := Pointer{Elem: intT}
	ptrFloat := Pointer{Elem: floatT}

	tests := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"identity", Str{}, Str{}, true},
		{"int to float", intT, floatT, true},
		{"float to int", floatT, intT, true},
		{"int narrowing", intT, u8, true},
		{"bool to int rejected", Bool{}, intT, false},
		{"int to str rejected", intT, Str{}, false},
		{"pointer to pointer", ptrInt, ptrFloat, true},
		{"pointer to any", ptrInt, Any{}, true},
		{"any to pointer", Any{}, ptrInt, true},
		{"pointer to int rejected", ptrInt, intT, false},
		{"int to pointer rejected", intT, ptrInt, false},
		{"nil operand", nil, intT, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CastAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("CastAllowed(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
