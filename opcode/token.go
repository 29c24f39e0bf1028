package opcode

import "math"

// Token is one element of an infix stream or a compiled postfix Program: an
// Op plus a 32-bit immediate whose meaning depends on the Op.
//
//   - ConstInt:  Imm is the literal value.
//   - ConstFloat: Imm is the bit pattern of the literal, via math.Float32bits.
//   - VarFloat/VarInt/VarBool/VarVec: Imm is the variable's index into the
//     host's VariableArrays.
//   - GetMemberVec: Imm is the stack-top-relative cell offset (2/1/0 for
//     x/y/z).
//   - ConvIntFloat/ConvFloatInt: Imm is the stack-top-relative cell offset of
//     the cell to convert in place.
//   - every other Op: Imm is unused and zero.
type Token struct {
	Op  Op
	Imm int32
}

// Int returns the token as a literal int Token.
func Int(v int32) Token {
	return Token{Op: ConstInt, Imm: v}
}

// Float returns the token as a literal float Token, storing v's bit pattern
// in Imm the way the original reinterpret_casts a float onto an int slot.
func Float(v float32) Token {
	return Token{Op: ConstFloat, Imm: int32(math.Float32bits(v))}
}

// FloatValue decodes a ConstFloat token's immediate back to float32.
func (t Token) FloatValue() float32 {
	return math.Float32frombits(uint32(t.Imm))
}

// Var returns a variable-load token of the given kind for variable index idx.
func Var(k Op, idx int32) Token {
	return Token{Op: k, Imm: idx}
}

// Offset returns a postfix-only token (member access or conversion) carrying
// a stack-top-relative cell offset.
func Offset(op Op, offset int32) Token {
	return Token{Op: op, Imm: offset}
}
