package vm

import (
	"testing"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

type noRow struct{}

func (noRow) Float(int) float32    { return 0 }
func (noRow) Int(int) int32        { return 0 }
func (noRow) Bool(int) bool        { return false }
func (noRow) Vec(int) [3]float32   { return [3]float32{} }

func TestDotOfOrthogonalUnitVectors(t *testing.T) {
	p := &Program{
		Output: kind.Float,
		Code: []opcode.Token{
			opcode.Float(1), opcode.Float(0), opcode.Float(0),
			opcode.Float(0), opcode.Float(1), opcode.Float(0),
			{Op: opcode.Dot},
		},
	}
	res := Evaluate(p, noRow{})
	if res.Float != 0 {
		t.Fatalf("orthogonal unit vectors should dot to 0, got %v", res.Float)
	}
}

func TestSignOfNegativeFloat(t *testing.T) {
	p := &Program{
		Output: kind.Int,
		Code: []opcode.Token{
			opcode.Float(-5),
			{Op: opcode.SignFloat},
		},
	}
	res := Evaluate(p, noRow{})
	if res.Int != -1 {
		t.Fatalf("sign(-5) should be -1, got %d", res.Int)
	}
}

func TestCompareVecWithinEpsilon(t *testing.T) {
	p := &Program{
		Output: kind.Bool,
		Code: []opcode.Token{
			opcode.Float(0), opcode.Float(0), opcode.Float(0),
			opcode.Float(0.01), opcode.Float(0), opcode.Float(0),
			opcode.Float(0.1),
			{Op: opcode.CompareVec},
		},
	}
	res := Evaluate(p, noRow{})
	if !res.Bool {
		t.Fatal("points 0.01 apart should compare equal within epsilon 0.1")
	}
}

func TestCompareVecIsPerComponentAnd(t *testing.T) {
	// a=(1,0,0), b=(0,1,0), eps=1: each axis delta is exactly 1, so a
	// per-component AND says equal even though the Euclidean distance
	// between the points (sqrt(2)) exceeds eps.
	p := &Program{
		Output: kind.Bool,
		Code: []opcode.Token{
			opcode.Float(1), opcode.Float(0), opcode.Float(0),
			opcode.Float(0), opcode.Float(1), opcode.Float(0),
			opcode.Float(1),
			{Op: opcode.CompareVec},
		},
	}
	res := Evaluate(p, noRow{})
	if !res.Bool {
		t.Fatal("compare_vec must AND per-component compares, not test Euclidean distance")
	}
}

func TestFracUsesTruncNotFloor(t *testing.T) {
	p := &Program{
		Output: kind.Float,
		Code: []opcode.Token{
			opcode.Float(-1.5),
			{Op: opcode.Frac},
		},
	}
	res := Evaluate(p, noRow{})
	if res.Float != -0.5 {
		t.Fatalf("frac(-1.5) should be -0.5 (x - trunc(x)), got %v", res.Float)
	}
}

func TestConvIntFloatInPlace(t *testing.T) {
	p := &Program{
		Output: kind.Float,
		Code: []opcode.Token{
			opcode.Int(2),
			opcode.Offset(opcode.ConvIntFloat, 0),
		},
	}
	res := Evaluate(p, noRow{})
	if res.Float != 2.0 {
		t.Fatalf("got %v, want 2.0", res.Float)
	}
}
