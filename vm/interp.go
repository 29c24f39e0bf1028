package vm

import (
	"math"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

// Row is the per-row variable source an Evaluate call reads from: one
// accessor per runtime variable kind, indexed by the variable index baked
// into the compiled Program's VarFloat/VarInt/VarBool/VarVec tokens.
type Row interface {
	Float(idx int) float32
	Int(idx int) int32
	Bool(idx int) bool
	Vec(idx int) [3]float32
}

// Result is the decoded value a Program evaluation produced. Only the field
// matching Program.Output is meaningful.
type Result struct {
	Kind  kind.ValueKind
	Float float32
	Int   int32
	Vec   [3]float32
	Bool  bool
}

// stack is the untagged runtime stack: one machine word per scalar cell,
// three per Vec, read and written with the declared kind the compiler
// already proved correct — there is no runtime type tag, matching the
// reference interpreter's reinterpret_cast-based RuntimeStack.
type stack struct {
	cells [MaxStackCells]uint32
	sp    int
}

func (s *stack) pushF(v float32) {
	s.cells[s.sp] = math.Float32bits(v)
	s.sp++
}

func (s *stack) pushI(v int32) {
	s.cells[s.sp] = uint32(v)
	s.sp++
}

func (s *stack) pushVec(v [3]float32) {
	s.pushF(v[0])
	s.pushF(v[1])
	s.pushF(v[2])
}

func (s *stack) popF() float32 {
	s.sp--
	return math.Float32frombits(s.cells[s.sp])
}

func (s *stack) popI() int32 {
	s.sp--
	return int32(s.cells[s.sp])
}

func (s *stack) popVec() [3]float32 {
	z := s.popF()
	y := s.popF()
	x := s.popF()
	return [3]float32{x, y, z}
}

// convIntFloat converts the cell `offset` cells below the current top from
// int32 to float32 bit pattern in place, without moving sp; convFloatInt
// does the reverse.
func (s *stack) convIntFloat(offset int32) {
	i := s.sp - 1 - int(offset)
	s.cells[i] = math.Float32bits(float32(int32(s.cells[i])))
}

func (s *stack) convFloatInt(offset int32) {
	i := s.sp - 1 - int(offset)
	s.cells[i] = uint32(int32(math.Float32frombits(s.cells[i])))
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func sign32(f float32) int32 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func signInt(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// intPow computes a**b for non-negative integer b by repeated squaring;
// negative exponents have no integral result and yield 0, matching the
// div-by-zero-yields-0 convention used throughout this interpreter.
func intPow(a, b int32) int32 {
	if b < 0 {
		return 0
	}
	result := int32(1)
	base := a
	for b > 0 {
		if b&1 == 1 {
			result *= base
		}
		base *= base
		b >>= 1
	}
	return result
}

// Evaluate executes p against a single row, returning the decoded result.
func Evaluate(p *Program, row Row) Result {
	var s stack
	for _, t := range p.Code {
		switch t.Op {
		case opcode.ConstFloat:
			s.pushF(t.FloatValue())
		case opcode.ConstInt:
			s.pushI(t.Imm)
		case opcode.VarFloat:
			s.pushF(row.Float(int(t.Imm)))
		case opcode.VarInt:
			s.pushI(row.Int(int(t.Imm)))
		case opcode.VarBool:
			s.pushI(boolToInt(row.Bool(int(t.Imm))))
		case opcode.VarVec:
			s.pushVec(row.Vec(int(t.Imm)))

		case opcode.NegFloat:
			s.pushF(-s.popF())
		case opcode.NegInt:
			s.pushI(-s.popI())
		case opcode.NegVec:
			v := s.popVec()
			s.pushVec([3]float32{-v[0], -v[1], -v[2]})
		case opcode.Not, opcode.NotFunc:
			s.pushI(boolToInt(s.popI() == 0))

		case opcode.AddFloat:
			b, a := s.popF(), s.popF()
			s.pushF(a + b)
		case opcode.AddInt:
			b, a := s.popI(), s.popI()
			s.pushI(a + b)
		case opcode.AddVec:
			b, a := s.popVec(), s.popVec()
			s.pushVec([3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]})
		case opcode.SubFloat:
			b, a := s.popF(), s.popF()
			s.pushF(a - b)
		case opcode.SubInt:
			b, a := s.popI(), s.popI()
			s.pushI(a - b)
		case opcode.SubVec:
			b, a := s.popVec(), s.popVec()
			s.pushVec([3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]})

		case opcode.MulFloat:
			b, a := s.popF(), s.popF()
			s.pushF(a * b)
		case opcode.MulInt:
			b, a := s.popI(), s.popI()
			s.pushI(a * b)
		case opcode.MulFloatVec:
			b, a := s.popVec(), s.popF()
			s.pushVec([3]float32{a * b[0], a * b[1], a * b[2]})
		case opcode.MulVecFloat:
			b, a := s.popF(), s.popVec()
			s.pushVec([3]float32{a[0] * b, a[1] * b, a[2] * b})

		case opcode.DivFloat:
			b, a := s.popF(), s.popF()
			if b == 0 {
				s.pushF(0)
			} else {
				s.pushF(a / b)
			}
		case opcode.DivInt:
			b, a := s.popI(), s.popI()
			if b == 0 {
				s.pushI(0)
			} else {
				s.pushI(a / b)
			}
		case opcode.DivVecFloat:
			b, a := s.popF(), s.popVec()
			if b == 0 {
				s.pushVec([3]float32{0, 0, 0})
			} else {
				s.pushVec([3]float32{a[0] / b, a[1] / b, a[2] / b})
			}

		case opcode.PowFloat, opcode.PowFunc:
			b, a := s.popF(), s.popF()
			s.pushF(float32(math.Pow(float64(a), float64(b))))
		case opcode.PowInt:
			b, a := s.popI(), s.popI()
			s.pushI(intPow(a, b))

		case opcode.ModFloat:
			b, a := s.popF(), s.popF()
			if b == 0 {
				s.pushF(0)
			} else {
				s.pushF(float32(math.Mod(float64(a), float64(b))))
			}
		case opcode.ModInt:
			b, a := s.popI(), s.popI()
			if b == 0 {
				s.pushI(0)
			} else {
				s.pushI(a % b)
			}

		case opcode.EqFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a == b))
		case opcode.EqInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a == b))
		case opcode.EqVec:
			b, a := s.popVec(), s.popVec()
			s.pushI(boolToInt(a == b))
		case opcode.NeFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a != b))
		case opcode.NeInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a != b))
		case opcode.NeVec:
			b, a := s.popVec(), s.popVec()
			s.pushI(boolToInt(a != b))

		case opcode.GtFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a > b))
		case opcode.GtInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a > b))
		case opcode.GeFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a >= b))
		case opcode.GeInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a >= b))
		case opcode.LtFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a < b))
		case opcode.LtInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a < b))
		case opcode.LeFloat:
			b, a := s.popF(), s.popF()
			s.pushI(boolToInt(a <= b))
		case opcode.LeInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a <= b))

		case opcode.AndInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a != 0 && b != 0))
		case opcode.OrInt:
			b, a := s.popI(), s.popI()
			s.pushI(boolToInt(a != 0 || b != 0))

		case opcode.GetMemberVec:
			off := int(t.Imm)
			v := math.Float32frombits(s.cells[s.sp-1-off])
			s.sp -= 3
			s.pushF(v)

		case opcode.Sqrt:
			s.pushF(float32(math.Sqrt(float64(s.popF()))))
		case opcode.Sin:
			s.pushF(float32(math.Sin(float64(s.popF()))))
		case opcode.Cos:
			s.pushF(float32(math.Cos(float64(s.popF()))))
		case opcode.Tan:
			s.pushF(float32(math.Tan(float64(s.popF()))))
		case opcode.Asin:
			s.pushF(float32(math.Asin(float64(s.popF()))))
		case opcode.Acos:
			s.pushF(float32(math.Acos(float64(s.popF()))))
		case opcode.Atan:
			s.pushF(float32(math.Atan(float64(s.popF()))))
		case opcode.Atan2:
			b, a := s.popF(), s.popF()
			s.pushF(float32(math.Atan2(float64(a), float64(b))))

		case opcode.MinFloat:
			b, a := s.popF(), s.popF()
			if a < b {
				s.pushF(a)
			} else {
				s.pushF(b)
			}
		case opcode.MinInt:
			b, a := s.popI(), s.popI()
			if a < b {
				s.pushI(a)
			} else {
				s.pushI(b)
			}
		case opcode.MaxFloat:
			b, a := s.popF(), s.popF()
			if a > b {
				s.pushF(a)
			} else {
				s.pushF(b)
			}
		case opcode.MaxInt:
			b, a := s.popI(), s.popI()
			if a > b {
				s.pushI(a)
			} else {
				s.pushI(b)
			}

		case opcode.AbsFloat:
			v := s.popF()
			if v < 0 {
				v = -v
			}
			s.pushF(v)
		case opcode.AbsInt:
			v := s.popI()
			if v < 0 {
				v = -v
			}
			s.pushI(v)
		case opcode.SignFloat:
			s.pushI(sign32(s.popF()))
		case opcode.SignInt:
			s.pushI(signInt(s.popI()))

		case opcode.ToRadians:
			s.pushF(s.popF() * (math.Pi / 180))
		case opcode.ToDegrees:
			s.pushF(s.popF() * (180 / math.Pi))

		case opcode.MakeVec:
			z, y, x := s.popF(), s.popF(), s.popF()
			s.pushVec([3]float32{x, y, z})

		case opcode.Log:
			base, v := s.popF(), s.popF()
			s.pushF(float32(math.Log(float64(v)) / math.Log(float64(base))))
		case opcode.Ln:
			s.pushF(float32(math.Log(float64(s.popF()))))
		case opcode.Exp:
			s.pushF(float32(math.Exp(float64(s.popF()))))

		case opcode.IfFloat:
			b, a, cond := s.popF(), s.popF(), s.popI()
			if cond != 0 {
				s.pushF(a)
			} else {
				s.pushF(b)
			}
		case opcode.IfInt:
			b, a, cond := s.popI(), s.popI(), s.popI()
			if cond != 0 {
				s.pushI(a)
			} else {
				s.pushI(b)
			}
		case opcode.IfVec:
			b, a, cond := s.popVec(), s.popVec(), s.popI()
			if cond != 0 {
				s.pushVec(a)
			} else {
				s.pushVec(b)
			}

		case opcode.Ceil:
			s.pushF(float32(math.Ceil(float64(s.popF()))))
		case opcode.Floor:
			s.pushF(float32(math.Floor(float64(s.popF()))))
		case opcode.Frac:
			v := s.popF()
			s.pushF(v - float32(math.Trunc(float64(v))))
		case opcode.Round:
			s.pushF(float32(math.Round(float64(s.popF()))))
		case opcode.Trunc:
			s.pushF(float32(math.Trunc(float64(s.popF()))))

		case opcode.Compare:
			eps, b, a := s.popF(), s.popF(), s.popF()
			d := a - b
			if d < 0 {
				d = -d
			}
			s.pushI(boolToInt(d <= eps))
		case opcode.CompareVec:
			eps, b, a := s.popF(), s.popVec(), s.popVec()
			cx := a[0] - b[0]
			if cx < 0 {
				cx = -cx
			}
			cy := a[1] - b[1]
			if cy < 0 {
				cy = -cy
			}
			cz := a[2] - b[2]
			if cz < 0 {
				cz = -cz
			}
			s.pushI(boolToInt(cx <= eps && cy <= eps && cz <= eps))

		case opcode.Dot:
			b, a := s.popVec(), s.popVec()
			s.pushF(vecDot(a, b))
		case opcode.Cross:
			b, a := s.popVec(), s.popVec()
			s.pushVec([3]float32{
				a[1]*b[2] - a[2]*b[1],
				a[2]*b[0] - a[0]*b[2],
				a[0]*b[1] - a[1]*b[0],
			})
		case opcode.Normalize:
			a := s.popVec()
			l := vecLength(a)
			if l == 0 {
				s.pushVec([3]float32{0, 0, 0})
			} else {
				s.pushVec([3]float32{a[0] / l, a[1] / l, a[2] / l})
			}
		case opcode.Length:
			s.pushF(vecLength(s.popVec()))
		case opcode.Length2:
			a := s.popVec()
			s.pushF(vecDot(a, a))

		case opcode.ConvIntFloat:
			s.convIntFloat(t.Imm)
		case opcode.ConvFloatInt:
			s.convFloatInt(t.Imm)
		}
	}

	switch p.Output {
	case kind.Float:
		return Result{Kind: kind.Float, Float: s.popF()}
	case kind.Int:
		return Result{Kind: kind.Int, Int: s.popI()}
	case kind.Bool:
		return Result{Kind: kind.Bool, Bool: s.popI() != 0}
	case kind.Vec:
		return Result{Kind: kind.Vec, Vec: s.popVec()}
	default:
		return Result{}
	}
}

func vecSub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func vecDot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vecLength(a [3]float32) float32 {
	return float32(math.Sqrt(float64(vecDot(a, a))))
}
