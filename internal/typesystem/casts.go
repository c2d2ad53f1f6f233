package typesystem

// CastAllowed implements the explicit cast table for "expr as Type":
// numeric to numeric, pointer to pointer, and any to any pointer type and
// back. Casting a type to itself is always allowed. Everything else is
// rejected.
func CastAllowed(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Equals(to) {
		return true
	}
	if IsNumeric(from) && IsNumeric(to) {
		return true
	}
	switch from.(type) {
	case Pointer:
		return IsPointerLike(to)
	case Any:
		return IsPointerLike(to)
	}
	return false
}
