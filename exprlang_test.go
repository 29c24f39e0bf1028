package exprlang_test

import (
	"math"
	"testing"

	"github.com/nodeforge/exprlang"
)

type row map[string]interface{}

func (r row) index(vars []exprlang.Variable, name string) int {
	for i, v := range vars {
		if v.Name == name {
			return i
		}
	}
	panic("unknown variable " + name)
}

type rowAdapter struct {
	vars []exprlang.Variable
	vals row
}

func (r rowAdapter) Float(idx int) float32 {
	return r.vals[r.vars[idx].Name].(float32)
}
func (r rowAdapter) Int(idx int) int32 {
	return r.vals[r.vars[idx].Name].(int32)
}
func (r rowAdapter) Bool(idx int) bool {
	return r.vals[r.vars[idx].Name].(bool)
}
func (r rowAdapter) Vec(idx int) [3]float32 {
	return r.vals[r.vars[idx].Name].([3]float32)
}

func eval(t *testing.T, expr string, vars []exprlang.Variable, vals row, output exprlang.ValueKind) exprlang.Program {
	t.Helper()
	prog, err := exprlang.Compile(expr, vars, output)
	if err != nil {
		t.Fatalf("compile %q: %v", expr, err)
	}
	return *prog
}

// TestWorkedExamples exercises the six canonical scenarios: an integer
// arithmetic expression, unary-minus-vs-power precedence, the
// if() ternary, vector length, division by zero, and a named-constant
// expression.
func TestWorkedExamples(t *testing.T) {
	t.Run("x + y * 2", func(t *testing.T) {
		vars := []exprlang.Variable{{Name: "x", Kind: exprlang.Int}, {Name: "y", Kind: exprlang.Int}}
		prog := eval(t, "x + y * 2", vars, nil, exprlang.Int)
		res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"x": int32(3), "y": int32(4)}})
		if res.Int != 11 {
			t.Fatalf("got %d, want 11", res.Int)
		}
	})

	t.Run("-x^2 == -(x^2)", func(t *testing.T) {
		vars := []exprlang.Variable{{Name: "x", Kind: exprlang.Int}}
		prog := eval(t, "-x^2", vars, nil, exprlang.Int)
		res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"x": int32(3)}})
		if res.Int != -9 {
			t.Fatalf("got %d, want -9", res.Int)
		}
	})

	t.Run("if(a>b,a,b)", func(t *testing.T) {
		vars := []exprlang.Variable{{Name: "a", Kind: exprlang.Int}, {Name: "b", Kind: exprlang.Int}}
		prog := eval(t, "if(a>b,a,b)", vars, nil, exprlang.Int)
		res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"a": int32(7), "b": int32(2)}})
		if res.Int != 7 {
			t.Fatalf("got %d, want 7", res.Int)
		}
	})

	t.Run("length(vec(3,4,0))", func(t *testing.T) {
		prog := eval(t, "length(vec(3,4,0))", nil, nil, exprlang.Float)
		res := exprlang.Evaluate(&prog, rowAdapter{vals: row{}})
		if res.Float != 5 {
			t.Fatalf("got %v, want 5", res.Float)
		}
	})

	t.Run("(x+1)/0 == 0", func(t *testing.T) {
		vars := []exprlang.Variable{{Name: "x", Kind: exprlang.Float}}
		prog := eval(t, "(x+1)/0", vars, nil, exprlang.Float)
		res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"x": float32(5)}})
		if res.Float != 0 {
			t.Fatalf("got %v, want 0", res.Float)
		}
	})

	t.Run("pi*r*r", func(t *testing.T) {
		vars := []exprlang.Variable{{Name: "r", Kind: exprlang.Float}}
		prog := eval(t, "pi*r*r", vars, nil, exprlang.Float)
		res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"r": float32(2)}})
		want := float32(12.566370614)
		if math.Abs(float64(res.Float-want)) > 1e-4 {
			t.Fatalf("got %v, want %v", res.Float, want)
		}
	})
}

func TestVectorMemberAccessSum(t *testing.T) {
	vars := []exprlang.Variable{{Name: "v", Kind: exprlang.Vec}}
	prog := eval(t, "v.x + v.y + v.z", vars, nil, exprlang.Float)
	res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"v": [3]float32{1, 2, 3}}})
	if res.Float != 6 {
		t.Fatalf("got %v, want 6", res.Float)
	}
}

func TestBoolOutputCompression(t *testing.T) {
	vars := []exprlang.Variable{{Name: "x", Kind: exprlang.Int}}
	prog := eval(t, "x > 0", vars, nil, exprlang.Bool)
	res := exprlang.Evaluate(&prog, rowAdapter{vars: vars, vals: row{"x": int32(5)}})
	if !res.Bool {
		t.Fatalf("got false, want true")
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		"1 +",
		"(1 + 2",
		"sqrt(1,2)",
		"unknownvar + 1",
		"vec(1,2) + 1",
	}
	for _, expr := range cases {
		if _, err := exprlang.Compile(expr, nil, exprlang.Float); err == nil {
			t.Errorf("expected error compiling %q", expr)
		}
	}
}

func TestCachedCompiler(t *testing.T) {
	cc := exprlang.NewCachedCompiler(4)
	vars := []exprlang.Variable{{Name: "x", Kind: exprlang.Int}}
	p1, err := cc.Compile("x + 1", vars, exprlang.Int)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := cc.Compile("x + 1", vars, exprlang.Int)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Fatalf("expected cached Program pointer to be reused")
	}
}
