package opcode

import "testing"

func TestPrecedenceOrdering(t *testing.T) {
	// Mirrors the worked example: power binds tighter than unary minus,
	// which binds tighter than multiplicative, which binds tighter than
	// additive, which binds tighter than relational, equality, and boolean
	// operators, in that order.
	if !(PowFloat.Precedence() > NegFloat.Precedence()) {
		t.Fatal("^ must bind tighter than unary -")
	}
	if !(NegFloat.Precedence() > MulFloat.Precedence()) {
		t.Fatal("unary - must bind tighter than *")
	}
	if !(MulFloat.Precedence() > AddFloat.Precedence()) {
		t.Fatal("* must bind tighter than +")
	}
	if !(AddFloat.Precedence() > GtFloat.Precedence()) {
		t.Fatal("+ must bind tighter than >")
	}
	if !(GtFloat.Precedence() > EqFloat.Precedence()) {
		t.Fatal("> must bind tighter than ==")
	}
	if !(EqFloat.Precedence() > AndInt.Precedence()) {
		t.Fatal("== must bind tighter than &&")
	}
	if !(AndInt.Precedence() > OrInt.Precedence()) {
		t.Fatal("&& must bind tighter than ||")
	}
	if !(GetMemberVec.Precedence() > PowFloat.Precedence()) {
		t.Fatal("member access must bind tighter than ^")
	}
}

func TestStringNames(t *testing.T) {
	if AddFloat.String() != "OP_ADD_F" {
		t.Fatalf("got %q", AddFloat.String())
	}
	if Op(255).String() != "invalid-op" {
		t.Fatalf("got %q", Op(255).String())
	}
}

func TestFunctionArities(t *testing.T) {
	if MakeVec.Arity() != 3 {
		t.Fatalf("vec() should take 3 arguments, got %d", MakeVec.Arity())
	}
	if Sqrt.Arity() != 1 {
		t.Fatalf("sqrt() should take 1 argument, got %d", Sqrt.Arity())
	}
	if IfFloat.Arity() != 3 {
		t.Fatalf("if() should take 3 arguments, got %d", IfFloat.Arity())
	}
}
