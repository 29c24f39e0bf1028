// Package vm implements the third pipeline stage: a flat, untagged
// stack-based interpreter that executes a compiled postfix Program over one
// host-supplied row (or a batch of rows) at a time.
package vm

import (
	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

// MaxStackCells bounds the runtime stack's depth in 32-bit cells. It mirrors
// the reference implementation's MAX_STACK constant: the compiler rejects
// any expression whose peak stack depth would exceed it, so the interpreter
// can use a fixed-size array with no bounds checks or heap allocation.
const MaxStackCells = 100

// Program is the compiled form of an expression: a flat postfix instruction
// list, the peak runtime stack depth it requires (in cells), and the
// declared kind of the single value it leaves behind.
type Program struct {
	Code      []opcode.Token
	StackSize int
	Output    kind.ValueKind
}
