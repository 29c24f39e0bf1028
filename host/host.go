// Package host defines the plain Go interfaces a host application
// implements to plug its own row storage into the interpreter, and a
// batch-evaluation helper built on top of vm.Evaluate. None of these
// interfaces use embedding or inheritance — each is a flat method set a
// host's existing column storage can satisfy directly.
package host

import (
	"github.com/nodeforge/exprlang/cpubatch"
	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/vm"
)

// VariableArrays is the batch-wide variable source: column-major accessors
// indexed by (variable index, row index).
type VariableArrays interface {
	Float(varIdx, row int) float32
	Int(varIdx, row int) int32
	Bool(varIdx, row int) bool
	Vec(varIdx, row int) [3]float32
}

// RowMask selects which rows of a batch are active; EvaluateBatch skips any
// row for which Active returns false, leaving OutputBuffer untouched for it.
type RowMask interface {
	Active(row int) bool
}

// AllRows is a RowMask that activates every row.
type AllRows struct{}

// Active always reports true.
func (AllRows) Active(int) bool { return true }

// OutputBuffer receives one Program's results, one row at a time. Only the
// method matching the Program's declared Output kind is ever called.
type OutputBuffer interface {
	SetFloat(row int, v float32)
	SetInt(row int, v int32)
	SetBool(row int, v bool)
	SetVec(row int, v [3]float32)
}

// rowView adapts one row of a VariableArrays into a vm.Row.
type rowView struct {
	arrays VariableArrays
	row    int
}

func (r rowView) Float(idx int) float32    { return r.arrays.Float(idx, r.row) }
func (r rowView) Int(idx int) int32        { return r.arrays.Int(idx, r.row) }
func (r rowView) Bool(idx int) bool        { return r.arrays.Bool(idx, r.row) }
func (r rowView) Vec(idx int) [3]float32   { return r.arrays.Vec(idx, r.row) }

// EvaluateBatch runs p once per active row in [0, rows), writing each
// result into out. Rows are walked in cpubatch.Stride()-sized chunks: a
// pure-Go loop-unroll hint sized off the host CPU's vector width, not an
// actual SIMD kernel, but it keeps the inner loop's working set predictable
// across chunk boundaries the way the reference engine's batch operators
// do.
func EvaluateBatch(p *vm.Program, arrays VariableArrays, mask RowMask, out OutputBuffer, rows int) {
	stride := cpubatch.Stride()
	for base := 0; base < rows; base += stride {
		end := base + stride
		if end > rows {
			end = rows
		}
		for row := base; row < end; row++ {
			if !mask.Active(row) {
				continue
			}
			res := vm.Evaluate(p, rowView{arrays: arrays, row: row})
			switch p.Output {
			case kind.Float:
				out.SetFloat(row, res.Float)
			case kind.Int:
				out.SetInt(row, res.Int)
			case kind.Bool:
				out.SetBool(row, res.Bool)
			case kind.Vec:
				out.SetVec(row, res.Vec)
			}
		}
	}
}
