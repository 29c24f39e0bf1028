// Package kind defines the compile-time type tags of the expression
// language: the set of value shapes the compiler's type stack tracks and
// the interpreter's runtime stack cells are laid out around.
package kind

// ValueKind is the compile-time type of an expression, a slot on the
// compiler's type stack, or the declared type of an output socket.
//
// Booleans are not a distinct runtime kind: a Bool-declared variable or
// output is represented as Int on the compiler's type stack and the
// interpreter's runtime stack, compressing to 0/1 only at the variable
// load and the final output boundary.
type ValueKind uint8

const (
	// Float is a 32-bit IEEE-754 scalar.
	Float ValueKind = iota
	// Int is a 32-bit signed scalar. Bool variables and comparisons also
	// produce Int at runtime.
	Int
	// Vec is three consecutive Float cells, pushed and popped in (x, y, z)
	// order.
	Vec
	// Bool is only ever a declared kind: a variable's declared kind (loaded
	// by VarBool, which immediately produces an Int) or a program's
	// declared output kind (which compresses the top Int cell to 0/1). It
	// never appears as an entry on the compiler's type stack.
	Bool
)

func (k ValueKind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Vec:
		return "vec"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cells reports the number of runtime stack cells a value of this kind
// occupies: 1 for every scalar kind, 3 for Vec.
func (k ValueKind) Cells() int {
	if k == Vec {
		return 3
	}
	return 1
}

// IsScalar reports whether k is Float or Int (the two kinds eligible for
// implicit widening and for multi-argument overload resolution that
// excludes Vec).
func (k ValueKind) IsScalar() bool {
	return k == Float || k == Int
}
