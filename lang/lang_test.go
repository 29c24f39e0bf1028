package lang

import (
	"testing"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

func ops(items []Item) []opcode.Op {
	out := make([]opcode.Op, len(items))
	for i, it := range items {
		out[i] = it.Tok.Op
	}
	return out
}

func TestParseBasicArithmetic(t *testing.T) {
	items, err := Parse("1 + 2 * 3", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []opcode.Op{opcode.ConstInt, opcode.AddFloat, opcode.ConstInt, opcode.MulFloat, opcode.ConstInt}
	got := ops(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSpecialConstantsPriorityOverVariables(t *testing.T) {
	vars := []Variable{{Name: "pi", Kind: kind.Float}}
	items, err := Parse("pi", vars)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Tok.Op != opcode.ConstFloat {
		t.Fatalf("expected pi to resolve to the builtin constant, got %v", items[0].Tok.Op)
	}
}

func TestEqualsWart(t *testing.T) {
	items, err := Parse("x = 1", []Variable{{Name: "x", Kind: kind.Int}})
	if err != nil {
		t.Fatal(err)
	}
	if items[1].Tok.Op != opcode.EqFloat {
		t.Fatalf("expected '=' to parse as equality, got %v", items[1].Tok.Op)
	}
}

func TestBooleanWordOperators(t *testing.T) {
	vars := []Variable{{Name: "a", Kind: kind.Int}, {Name: "b", Kind: kind.Int}}
	for _, src := range []string{"a and b", "a AND b", "a && b"} {
		items, err := Parse(src, vars)
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if items[1].Tok.Op != opcode.AndInt {
			t.Fatalf("%q: expected AndInt, got %v", src, items[1].Tok.Op)
		}
	}
}

func TestMemberAccessOffsets(t *testing.T) {
	vars := []Variable{{Name: "v", Kind: kind.Vec}}
	items, err := Parse("v.x + v.y + v.z", vars)
	if err != nil {
		t.Fatal(err)
	}
	var offsets []int32
	for _, it := range items {
		if it.Tok.Op == opcode.GetMemberVec {
			offsets = append(offsets, it.Tok.Imm)
		}
	}
	if len(offsets) != 3 || offsets[0] != 2 || offsets[1] != 1 || offsets[2] != 0 {
		t.Fatalf("unexpected member offsets: %v", offsets)
	}
}

func TestUnknownVariableError(t *testing.T) {
	if _, err := Parse("nope + 1", nil); err == nil {
		t.Fatal("expected an error for an unknown variable")
	}
}

func TestFunctionNameRequiresCall(t *testing.T) {
	// "min" with no following '(' must fail as an unknown variable, not be
	// silently treated as a function reference.
	if _, err := Parse("min + 1", nil); err == nil {
		t.Fatal("expected an error: 'min' is not a variable and isn't called")
	}
}

func TestNumberLiteralIntVsFloat(t *testing.T) {
	items, err := Parse("3 3.0", nil)
	if err == nil {
		t.Fatalf("adjacent operands with no operator should fail to parse, got %v", items)
	}

	items, err = Parse("3", nil)
	if err != nil || items[0].Tok.Op != opcode.ConstInt {
		t.Fatalf("expected bare 3 to be ConstInt: items=%v err=%v", items, err)
	}

	items, err = Parse("3.0", nil)
	if err != nil || items[0].Tok.Op != opcode.ConstFloat {
		t.Fatalf("expected 3.0 to be ConstFloat: items=%v err=%v", items, err)
	}
}
