package compile

import (
	"testing"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
	"github.com/nodeforge/exprlang/opcode"
	"github.com/nodeforge/exprlang/vm"
)

type vecRow struct{ v [3]float32 }

func (vecRow) Float(int) float32  { return 0 }
func (vecRow) Int(int) int32      { return 0 }
func (vecRow) Bool(int) bool      { return false }
func (r vecRow) Vec(int) [3]float32 { return r.v }

// TestMemberAccessSelectsDistinctComponents guards against the resolved
// GetMemberVec token losing its member-offset immediate during overload
// resolution, which would collapse .x/.y/.z into always selecting the same
// component.
func TestMemberAccessSelectsDistinctComponents(t *testing.T) {
	vars := []lang.Variable{{Name: "v", Kind: kind.Vec}}
	row := vecRow{v: [3]float32{1, 2, 3}}

	cases := map[string]float32{"v.x": 1, "v.y": 2, "v.z": 3}
	for src, want := range cases {
		p, err := Compile(src, vars, kind.Float)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		res := vm.Evaluate(p, row)
		if res.Float != want {
			t.Fatalf("%s: got %v, want %v", src, res.Float, want)
		}
	}
}

func TestOutputCoercionVecToScalarAndScalarToVec(t *testing.T) {
	vars := []lang.Variable{{Name: "x", Kind: kind.Int}}

	// Vec -> Float coercion reduces to .x.
	p, err := Compile("vec(5, 6, 7)", nil, kind.Float)
	if err != nil {
		t.Fatal(err)
	}
	if res := vm.Evaluate(p, vecRow{}); res.Float != 5 {
		t.Fatalf("vec->float coercion: got %v, want 5", res.Float)
	}

	// Int scalar -> Vec coercion zero-pads y and z.
	p, err = Compile("x", vars, kind.Vec)
	if err != nil {
		t.Fatal(err)
	}
	row := intRow{x: 9}
	res := vm.Evaluate(p, row)
	if res.Vec != [3]float32{9, 0, 0} {
		t.Fatalf("int->vec coercion: got %v, want {9 0 0}", res.Vec)
	}
}

type intRow struct{ x int32 }

func (r intRow) Float(int) float32    { return 0 }
func (r intRow) Int(int) int32        { return r.x }
func (r intRow) Bool(int) bool        { return false }
func (r intRow) Vec(int) [3]float32   { return [3]float32{} }

func TestStackSizeAccountsForOutputCoercion(t *testing.T) {
	vars := []lang.Variable{{Name: "x", Kind: kind.Int}}
	p, err := Compile("x", vars, kind.Vec)
	if err != nil {
		t.Fatal(err)
	}
	if p.StackSize < 3 {
		t.Fatalf("stack size must account for the zero-padded vec, got %d", p.StackSize)
	}
}

func TestPrecedenceWorkedExample(t *testing.T) {
	// -x^2 == -(x^2), from the worked examples: ^ binds tighter than unary -.
	vars := []lang.Variable{{Name: "x", Kind: kind.Float}}
	p, err := Compile("-x^2", vars, kind.Float)
	if err != nil {
		t.Fatal(err)
	}
	res := vm.Evaluate(p, floatRow{x: 3})
	if res.Float != -9 {
		t.Fatalf("-x^2 with x=3: got %v, want -9", res.Float)
	}
}

type floatRow struct{ x float32 }

func (r floatRow) Float(int) float32  { return r.x }
func (r floatRow) Int(int) int32      { return 0 }
func (r floatRow) Bool(int) bool      { return false }
func (r floatRow) Vec(int) [3]float32 { return [3]float32{} }

func TestMismatchedParenReportsError(t *testing.T) {
	if _, err := Compile("(1 + 2", nil, kind.Float); err == nil {
		t.Fatal("expected an unclosed-parenthesis error")
	}
	if _, err := Compile("1 + 2)", nil, kind.Float); err == nil {
		t.Fatal("expected an unmatched-close-paren error")
	}
}

func TestWrongArityReportsError(t *testing.T) {
	if _, err := Compile("sqrt(1, 2)", nil, kind.Float); err == nil {
		t.Fatal("expected a wrong-arity error")
	}
}

func TestIntWidensToFloatAcrossBinaryOp(t *testing.T) {
	vars := []lang.Variable{{Name: "x", Kind: kind.Float}, {Name: "y", Kind: kind.Int}}
	p, err := Compile("x + y", vars, kind.Float)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tok := range p.Code {
		if tok.Op == opcode.ConvIntFloat {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a ConvIntFloat token widening the Int operand")
	}
}
