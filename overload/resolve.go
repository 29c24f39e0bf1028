// Package overload implements the compiler's monomorphization step: it maps
// a generic Op (always the Float-typed variant, as emitted by the parser)
// plus the actual compile-time kinds of its operands onto a concrete typed
// Op, together with the set of operand positions that must be widened from
// Int to Float first.
//
// The resolution order for every family below is grounded on the reference
// node_geo_expression.cc perform_type_conversion overloads: try an exact
// match first, then widen whichever operand doesn't already match the
// other's kind, and only widen everything to Float as a last resort. Vec
// never participates in widening — a Vec operand either matches another Vec
// exactly or the combination is a type error.
package overload

import (
	"fmt"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

// Resolution is the outcome of resolving a generic Op against its operands'
// actual kinds: the typed Op to emit, and which logical operand positions
// (0-based, in push order) need a ConvIntFloat inserted first.
type Resolution struct {
	Op    opcode.Op
	Widen [3]bool
}

// UnsupportedTypesError mirrors the reference implementation's
// unsupported_type_error: it names the operator and the operand kinds that
// had no viable overload, with a tiered diagnostic (Vec mixed with non-Vec
// operands, Vec operands only, or any other kind mismatch).
type UnsupportedTypesError struct {
	Op    opcode.Op
	Kinds []kind.ValueKind
}

func (e *UnsupportedTypesError) Error() string {
	hasVec, hasScalar := false, false
	for _, k := range e.Kinds {
		hasVec = hasVec || k == kind.Vec
		hasScalar = hasScalar || k != kind.Vec
	}
	detail := "incorrect argument type"
	if hasVec && hasScalar {
		detail = "cannot mix vector and non-vector types"
	} else if hasVec {
		detail = "cannot perform this operation on a vector"
	}
	return fmt.Sprintf("%s: %s %v", e.Op, detail, e.Kinds)
}

func unsupported(op opcode.Op, kinds ...kind.ValueKind) error {
	return &UnsupportedTypesError{Op: op, Kinds: kinds}
}

// scalarBinary implements the 4-tier resolution order collapsed to the
// Float/Int case: exact Float/Float, exact Int/Int, widen the Int side when
// the other is Float. Any Vec operand is rejected by the caller before this
// is reached.
func scalarBinary(ff, ii opcode.Op, l, r kind.ValueKind) (Resolution, error) {
	switch {
	case l == kind.Float && r == kind.Float:
		return Resolution{Op: ff}, nil
	case l == kind.Int && r == kind.Int:
		return Resolution{Op: ii}, nil
	case l == kind.Int && r == kind.Float:
		return Resolution{Op: ff, Widen: [3]bool{true}}, nil
	case l == kind.Float && r == kind.Int:
		return Resolution{Op: ff, Widen: [3]bool{false, true}}, nil
	default:
		return Resolution{}, unsupported(ff, l, r)
	}
}

// ResolveUnary resolves a unary operator (negation, boolean not, or a
// single-kind-overloaded function like abs/sign) against its operand kind.
func ResolveUnary(generic opcode.Op, arg kind.ValueKind) (Resolution, error) {
	switch generic {
	case opcode.NegFloat:
		switch arg {
		case kind.Float:
			return Resolution{Op: opcode.NegFloat}, nil
		case kind.Int:
			return Resolution{Op: opcode.NegInt}, nil
		case kind.Vec:
			return Resolution{Op: opcode.NegVec}, nil
		}
		return Resolution{}, unsupported(generic, arg)

	case opcode.AbsFloat:
		switch arg {
		case kind.Float:
			return Resolution{Op: opcode.AbsFloat}, nil
		case kind.Int:
			return Resolution{Op: opcode.AbsInt}, nil
		}
		return Resolution{}, unsupported(generic, arg)

	case opcode.SignFloat:
		switch arg {
		case kind.Float:
			return Resolution{Op: opcode.SignFloat}, nil
		case kind.Int:
			return Resolution{Op: opcode.SignInt}, nil
		}
		return Resolution{}, unsupported(generic, arg)

	case opcode.Not, opcode.NotFunc:
		if arg != kind.Int {
			return Resolution{}, unsupported(generic, arg)
		}
		return Resolution{Op: generic}, nil

	default:
		// Fixed-signature unary: exactly one declared arg kind in the op
		// table, Int widens to Float if that's what's declared, Vec never
		// widens.
		declared := generic.ArgKind(0)
		if arg == declared {
			return Resolution{Op: generic}, nil
		}
		if declared == kind.Float && arg == kind.Int {
			return Resolution{Op: generic, Widen: [3]bool{true}}, nil
		}
		return Resolution{}, unsupported(generic, arg)
	}
}

// ResolveBinary resolves a binary operator against its two operand kinds.
func ResolveBinary(generic opcode.Op, l, r kind.ValueKind) (Resolution, error) {
	switch generic {
	case opcode.AddFloat, opcode.SubFloat:
		ii, vv := opcode.AddInt, opcode.AddVec
		if generic == opcode.SubFloat {
			ii, vv = opcode.SubInt, opcode.SubVec
		}
		if l == kind.Vec || r == kind.Vec {
			if l == kind.Vec && r == kind.Vec {
				return Resolution{Op: vv}, nil
			}
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(generic, ii, l, r)

	case opcode.MulFloat:
		switch {
		case l == kind.Vec && r == kind.Vec:
			return Resolution{}, unsupported(generic, l, r)
		case l == kind.Vec && r.IsScalar():
			if r == kind.Int {
				return Resolution{Op: opcode.MulVecFloat, Widen: [3]bool{false, true}}, nil
			}
			return Resolution{Op: opcode.MulVecFloat}, nil
		case r == kind.Vec && l.IsScalar():
			if l == kind.Int {
				return Resolution{Op: opcode.MulFloatVec, Widen: [3]bool{true}}, nil
			}
			return Resolution{Op: opcode.MulFloatVec}, nil
		case l == kind.Vec || r == kind.Vec:
			return Resolution{}, unsupported(generic, l, r)
		default:
			return scalarBinary(opcode.MulFloat, opcode.MulInt, l, r)
		}

	case opcode.DivFloat:
		switch {
		case l == kind.Vec && r == kind.Int:
			return Resolution{Op: opcode.DivVecFloat, Widen: [3]bool{false, true}}, nil
		case l == kind.Vec && r == kind.Float:
			return Resolution{Op: opcode.DivVecFloat}, nil
		case l == kind.Vec || r == kind.Vec:
			return Resolution{}, unsupported(generic, l, r)
		default:
			return scalarBinary(opcode.DivFloat, opcode.DivInt, l, r)
		}

	case opcode.PowFloat:
		if l == kind.Vec || r == kind.Vec {
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(opcode.PowFloat, opcode.PowInt, l, r)

	case opcode.ModFloat:
		if l == kind.Vec || r == kind.Vec {
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(opcode.ModFloat, opcode.ModInt, l, r)

	case opcode.EqFloat, opcode.NeFloat:
		ii, vv := opcode.EqInt, opcode.EqVec
		if generic == opcode.NeFloat {
			ii, vv = opcode.NeInt, opcode.NeVec
		}
		if l == kind.Vec || r == kind.Vec {
			if l == kind.Vec && r == kind.Vec {
				return Resolution{Op: vv}, nil
			}
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(generic, ii, l, r)

	case opcode.GtFloat, opcode.GeFloat, opcode.LtFloat, opcode.LeFloat:
		var ii opcode.Op
		switch generic {
		case opcode.GtFloat:
			ii = opcode.GtInt
		case opcode.GeFloat:
			ii = opcode.GeInt
		case opcode.LtFloat:
			ii = opcode.LtInt
		default:
			ii = opcode.LeInt
		}
		if l == kind.Vec || r == kind.Vec {
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(generic, ii, l, r)

	case opcode.AndInt, opcode.OrInt:
		if l != kind.Int || r != kind.Int {
			return Resolution{}, unsupported(generic, l, r)
		}
		return Resolution{Op: generic}, nil

	case opcode.MinFloat, opcode.MaxFloat:
		ii := opcode.MinInt
		if generic == opcode.MaxFloat {
			ii = opcode.MaxInt
		}
		if l == kind.Vec || r == kind.Vec {
			return Resolution{}, unsupported(generic, l, r)
		}
		return scalarBinary(generic, ii, l, r)

	case opcode.Atan2, opcode.Log, opcode.PowFunc:
		// Fixed float/float signature: each arg widens independently.
		var res Resolution
		res.Op = generic
		ok := true
		for idx, k := range [2]kind.ValueKind{l, r} {
			switch k {
			case kind.Float:
			case kind.Int:
				res.Widen[idx] = true
			default:
				ok = false
			}
		}
		if !ok {
			return Resolution{}, unsupported(generic, l, r)
		}
		return res, nil

	case opcode.Dot, opcode.Cross:
		if l != kind.Vec || r != kind.Vec {
			return Resolution{}, unsupported(generic, l, r)
		}
		return Resolution{Op: generic}, nil

	default:
		return Resolution{}, unsupported(generic, l, r)
	}
}

// ResolveIf resolves the generic if(cond, a, b) call: cond must already be
// Int, and a/b are resolved the same way as a binary pair — exact match,
// then widen whichever side is Int when the other is Float.
func ResolveIf(cond, a, b kind.ValueKind) (Resolution, error) {
	if cond != kind.Int {
		return Resolution{}, unsupported(opcode.IfFloat, cond, a, b)
	}
	switch {
	case a == kind.Vec && b == kind.Vec:
		return Resolution{Op: opcode.IfVec}, nil
	case a == kind.Vec || b == kind.Vec:
		return Resolution{}, unsupported(opcode.IfFloat, cond, a, b)
	case a == kind.Float && b == kind.Float:
		return Resolution{Op: opcode.IfFloat}, nil
	case a == kind.Int && b == kind.Int:
		return Resolution{Op: opcode.IfInt}, nil
	case a == kind.Int && b == kind.Float:
		return Resolution{Op: opcode.IfFloat, Widen: [3]bool{false, true, false}}, nil
	case a == kind.Float && b == kind.Int:
		return Resolution{Op: opcode.IfFloat, Widen: [3]bool{false, false, true}}, nil
	default:
		return Resolution{}, unsupported(opcode.IfFloat, cond, a, b)
	}
}

// ResolveCompare resolves the generic compare(a, b, epsilon) call: a and b
// must agree on Float or Vec (widening a scalar Int to Float if needed),
// and epsilon always widens from Int to Float independently.
func ResolveCompare(a, b, eps kind.ValueKind) (Resolution, error) {
	epsWiden := false
	switch eps {
	case kind.Float:
	case kind.Int:
		epsWiden = true
	default:
		return Resolution{}, unsupported(opcode.Compare, a, b, eps)
	}

	switch {
	case a == kind.Vec && b == kind.Vec:
		return Resolution{Op: opcode.CompareVec, Widen: [3]bool{false, false, epsWiden}}, nil
	case a == kind.Vec || b == kind.Vec:
		return Resolution{}, unsupported(opcode.Compare, a, b, eps)
	case a == kind.Float && b == kind.Float:
		return Resolution{Op: opcode.Compare, Widen: [3]bool{false, false, epsWiden}}, nil
	case a == kind.Int && b == kind.Int:
		return Resolution{Op: opcode.Compare, Widen: [3]bool{true, true, epsWiden}}, nil
	case a == kind.Int && b == kind.Float:
		return Resolution{Op: opcode.Compare, Widen: [3]bool{true, false, epsWiden}}, nil
	case a == kind.Float && b == kind.Int:
		return Resolution{Op: opcode.Compare, Widen: [3]bool{false, true, epsWiden}}, nil
	default:
		return Resolution{}, unsupported(opcode.Compare, a, b, eps)
	}
}

// ResolveMakeVec resolves vec(x, y, z): every argument is Float, Int
// operands widen independently, Vec operands are rejected.
func ResolveMakeVec(x, y, z kind.ValueKind) (Resolution, error) {
	res := Resolution{Op: opcode.MakeVec}
	for idx, k := range [3]kind.ValueKind{x, y, z} {
		switch k {
		case kind.Float:
		case kind.Int:
			res.Widen[idx] = true
		default:
			return Resolution{}, unsupported(opcode.MakeVec, x, y, z)
		}
	}
	return res, nil
}
