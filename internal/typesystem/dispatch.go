package typesystem

// Built-in operator dispatch. The desugarer consults these tables to decide
// whether an operator stays a primitive operation or is rewritten to a
// user-defined overload call; the checker consults them to type the
// operations that stayed primitive.

// BinaryOpType returns the result type of a built-in binary operator applied
// to operands of the given types. ok is false when no built-in rule covers
// the pair.
func BinaryOpType(op string, left, right Type) (Type, bool) {
	if left == nil || right == nil {
		return nil, false
	}
	switch op {
	case "+":
		if isStr(left) && isStr(right) {
			return Str{}, true
		}
		return sameNumeric(left, right)
	case "-", "*", "/":
		return sameNumeric(left, right)
	case "mod":
		return sameInteger(left, right)
	case "shl", "shr":
		// The shift amount may be any integer type.
		if IsInteger(left) && IsInteger(right) {
			return left, true
		}
		return nil, false
	case "bitand", "bitor", "bitxor":
		return sameInteger(left, right)
	case "and", "or", "xor":
		if isBool(left) && isBool(right) {
			return Bool{}, true
		}
		return nil, false
	case "==", "=/=":
		return equalityType(left, right)
	case "<", "<=", ">", ">=":
		if _, ok := sameNumeric(left, right); ok {
			return Bool{}, true
		}
		return nil, false
	}
	return nil, false
}

// UnaryOpType returns the result type of a built-in unary operator.
func UnaryOpType(op string, operand Type) (Type, bool) {
	if operand == nil {
		return nil, false
	}
	switch op {
	case "-":
		if IsNumeric(operand) {
			return operand, true
		}
	case "not":
		if isBool(operand) {
			return Bool{}, true
		}
	}
	return nil, false
}

func sameNumeric(left, right Type) (Type, bool) {
	if IsNumeric(left) && IsNumeric(right) && left.Equals(right) {
		return left, true
	}
	return nil, false
}

func sameInteger(left, right Type) (Type, bool) {
	if IsInteger(left) && IsInteger(right) && left.Equals(right) {
		return left, true
	}
	return nil, false
}

// equalityType covers == and =/= between primitives and between pointers.
// nil carries type any, so pointers compare against any without a cast.
func equalityType(left, right Type) (Type, bool) {
	switch {
	case isBool(left) && isBool(right):
		return Bool{}, true
	case isStr(left) && isStr(right):
		return Bool{}, true
	case IsPointerLike(left) && IsPointerLike(right):
		if left.Equals(right) || isAny(left) || isAny(right) {
			return Bool{}, true
		}
		return nil, false
	default:
		if _, ok := sameNumeric(left, right); ok {
			return Bool{}, true
		}
		return nil, false
	}
}

func isStr(t Type) bool {
	_, ok := t.(Str)
	return ok
}

func isBool(t Type) bool {
	_, ok := t.(Bool)
	return ok
}

func isAny(t Type) bool {
	_, ok := t.(Any)
	return ok
}
