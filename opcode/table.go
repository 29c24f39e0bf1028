package opcode

import "github.com/nodeforge/exprlang/kind"

// Record is the static, fixed per-Op metadata the compiler and interpreter
// both consult: a flat table beats a nested conditional, per spec, so that
// adding a type (e.g. a future RGBA kind) only means extending this table
// and the overload table in package overload.
type Record struct {
	Name       string
	Precedence int
	Result     kind.ValueKind
	Arity      int
	Arg        [3]kind.ValueKind
}

const (
	precOr       = -3
	precAnd      = -2
	precEquality = -1
	precRelation = 0
	precAddSub   = 1
	precMulDiv   = 2
	precUnary    = 7
	precPow      = 8
	precTight    = 9 // member access, function calls
)

var f = kind.Float
var i = kind.Int
var v = kind.Vec

var records = [opCount]Record{
	None: {"NONE", 0, kind.Float, 0, [3]kind.ValueKind{}},

	ConstFloat: {"CONST_FLOAT", 0, f, 0, [3]kind.ValueKind{}},
	ConstInt:   {"CONST_INT", 0, i, 0, [3]kind.ValueKind{}},

	VarFloat: {"VAR_FLOAT", 0, f, 0, [3]kind.ValueKind{}},
	VarInt:   {"VAR_INT", 0, i, 0, [3]kind.ValueKind{}},
	VarBool:  {"VAR_BOOL", 0, i, 0, [3]kind.ValueKind{}},
	VarVec:   {"VAR_VEC", 0, v, 0, [3]kind.ValueKind{}},

	LParen: {"LPAREN", 0, kind.Float, 0, [3]kind.ValueKind{}},
	RParen: {"RPAREN", 0, kind.Float, 0, [3]kind.ValueKind{}},
	Comma:  {"COMMA", 0, kind.Float, 0, [3]kind.ValueKind{}},

	NegFloat: {"OP_NEG_F", precUnary, f, 1, [3]kind.ValueKind{f}},
	NegInt:   {"OP_NEG_I", precUnary, i, 1, [3]kind.ValueKind{i}},
	NegVec:   {"OP_NEG_V", precUnary, v, 1, [3]kind.ValueKind{v}},
	Not:      {"OP_NOT", precUnary, i, 1, [3]kind.ValueKind{i}},

	AddFloat: {"OP_ADD_F", precAddSub, f, 2, [3]kind.ValueKind{f, f}},
	AddInt:   {"OP_ADD_I", precAddSub, i, 2, [3]kind.ValueKind{i, i}},
	AddVec:   {"OP_ADD_V", precAddSub, v, 2, [3]kind.ValueKind{v, v}},
	SubFloat: {"OP_SUB_F", precAddSub, f, 2, [3]kind.ValueKind{f, f}},
	SubInt:   {"OP_SUB_I", precAddSub, i, 2, [3]kind.ValueKind{i, i}},
	SubVec:   {"OP_SUB_V", precAddSub, v, 2, [3]kind.ValueKind{v, v}},

	MulFloat:    {"OP_MUL_F", precMulDiv, f, 2, [3]kind.ValueKind{f, f}},
	MulInt:      {"OP_MUL_I", precMulDiv, i, 2, [3]kind.ValueKind{i, i}},
	MulFloatVec: {"OP_MUL_FV", precMulDiv, v, 2, [3]kind.ValueKind{f, v}},
	MulVecFloat: {"OP_MUL_VF", precMulDiv, v, 2, [3]kind.ValueKind{v, f}},

	DivFloat:    {"OP_DIV_F", precMulDiv, f, 2, [3]kind.ValueKind{f, f}},
	DivInt:      {"OP_DIV_I", precMulDiv, i, 2, [3]kind.ValueKind{i, i}},
	DivVecFloat: {"OP_DIV_VF", precMulDiv, v, 2, [3]kind.ValueKind{v, f}},

	PowFloat: {"OP_POW_F", precPow, f, 2, [3]kind.ValueKind{f, f}},
	PowInt:   {"OP_POW_I", precPow, i, 2, [3]kind.ValueKind{i, i}},

	ModFloat: {"OP_MOD_F", precMulDiv, f, 2, [3]kind.ValueKind{f, f}},
	ModInt:   {"OP_MOD_I", precMulDiv, i, 2, [3]kind.ValueKind{i, i}},

	EqFloat: {"OP_EQ_F", precEquality, i, 2, [3]kind.ValueKind{f, f}},
	EqInt:   {"OP_EQ_I", precEquality, i, 2, [3]kind.ValueKind{i, i}},
	EqVec:   {"OP_EQ_V", precEquality, i, 2, [3]kind.ValueKind{v, v}},
	NeFloat: {"OP_NE_F", precEquality, i, 2, [3]kind.ValueKind{f, f}},
	NeInt:   {"OP_NE_I", precEquality, i, 2, [3]kind.ValueKind{i, i}},
	NeVec:   {"OP_NE_V", precEquality, i, 2, [3]kind.ValueKind{v, v}},

	GtFloat: {"OP_GT_F", precRelation, i, 2, [3]kind.ValueKind{f, f}},
	GtInt:   {"OP_GT_I", precRelation, i, 2, [3]kind.ValueKind{i, i}},
	GeFloat: {"OP_GE_F", precRelation, i, 2, [3]kind.ValueKind{f, f}},
	GeInt:   {"OP_GE_I", precRelation, i, 2, [3]kind.ValueKind{i, i}},
	LtFloat: {"OP_LT_F", precRelation, i, 2, [3]kind.ValueKind{f, f}},
	LtInt:   {"OP_LT_I", precRelation, i, 2, [3]kind.ValueKind{i, i}},
	LeFloat: {"OP_LE_F", precRelation, i, 2, [3]kind.ValueKind{f, f}},
	LeInt:   {"OP_LE_I", precRelation, i, 2, [3]kind.ValueKind{i, i}},

	AndInt: {"OP_AND", precAnd, i, 2, [3]kind.ValueKind{i, i}},
	OrInt:  {"OP_OR", precOr, i, 2, [3]kind.ValueKind{i, i}},

	GetMemberVec: {"OP_MEMBER_V", precTight, f, 1, [3]kind.ValueKind{v}},

	Sqrt:  {"FN_SQRT", precTight, f, 1, [3]kind.ValueKind{f}},
	Sin:   {"FN_SIN", precTight, f, 1, [3]kind.ValueKind{f}},
	Cos:   {"FN_COS", precTight, f, 1, [3]kind.ValueKind{f}},
	Tan:   {"FN_TAN", precTight, f, 1, [3]kind.ValueKind{f}},
	Asin:  {"FN_ASIN", precTight, f, 1, [3]kind.ValueKind{f}},
	Acos:  {"FN_ACOS", precTight, f, 1, [3]kind.ValueKind{f}},
	Atan:  {"FN_ATAN", precTight, f, 1, [3]kind.ValueKind{f}},
	Atan2: {"FN_ATAN2", precTight, f, 2, [3]kind.ValueKind{f, f}},

	MinFloat: {"FN_MIN_F", precTight, f, 2, [3]kind.ValueKind{f, f}},
	MinInt:   {"FN_MIN_I", precTight, i, 2, [3]kind.ValueKind{i, i}},
	MaxFloat: {"FN_MAX_F", precTight, f, 2, [3]kind.ValueKind{f, f}},
	MaxInt:   {"FN_MAX_I", precTight, i, 2, [3]kind.ValueKind{i, i}},

	AbsFloat:  {"FN_ABS_F", precTight, f, 1, [3]kind.ValueKind{f}},
	AbsInt:    {"FN_ABS_I", precTight, i, 1, [3]kind.ValueKind{i}},
	SignFloat: {"FN_SIGN_F", precTight, i, 1, [3]kind.ValueKind{f}},
	SignInt:   {"FN_SIGN_I", precTight, i, 1, [3]kind.ValueKind{i}},

	ToRadians: {"FN_TO_RADIANS", precTight, f, 1, [3]kind.ValueKind{f}},
	ToDegrees: {"FN_TO_DEGREES", precTight, f, 1, [3]kind.ValueKind{f}},
	MakeVec:   {"FN_VEC", precTight, v, 3, [3]kind.ValueKind{f, f, f}},
	NotFunc:   {"FN_NOT", precTight, i, 1, [3]kind.ValueKind{i}},

	Log:     {"FN_LOG", precTight, f, 2, [3]kind.ValueKind{f, f}},
	Ln:      {"FN_LN", precTight, f, 1, [3]kind.ValueKind{f}},
	PowFunc: {"FN_POW", precTight, f, 2, [3]kind.ValueKind{f, f}},
	Exp:     {"FN_EXP", precTight, f, 1, [3]kind.ValueKind{f}},

	IfFloat: {"FN_IF_F", precTight, f, 3, [3]kind.ValueKind{i, f, f}},
	IfInt:   {"FN_IF_I", precTight, i, 3, [3]kind.ValueKind{i, i, i}},
	IfVec:   {"FN_IF_V", precTight, v, 3, [3]kind.ValueKind{i, v, v}},

	Ceil:  {"FN_CEIL", precTight, f, 1, [3]kind.ValueKind{f}},
	Floor: {"FN_FLOOR", precTight, f, 1, [3]kind.ValueKind{f}},
	Frac:  {"FN_FRAC", precTight, f, 1, [3]kind.ValueKind{f}},
	Round: {"FN_ROUND", precTight, f, 1, [3]kind.ValueKind{f}},
	Trunc: {"FN_TRUNC", precTight, f, 1, [3]kind.ValueKind{f}},

	Compare:    {"FN_COMPARE", precTight, i, 3, [3]kind.ValueKind{f, f, f}},
	CompareVec: {"FN_COMPARE_V", precTight, i, 3, [3]kind.ValueKind{v, v, f}},

	Dot:       {"FN_DOT", precTight, f, 2, [3]kind.ValueKind{v, v}},
	Cross:     {"FN_CROSS", precTight, v, 2, [3]kind.ValueKind{v, v}},
	Normalize: {"FN_NORMALIZE", precTight, v, 1, [3]kind.ValueKind{v}},
	Length:    {"FN_LENGTH", precTight, f, 1, [3]kind.ValueKind{v}},
	Length2:   {"FN_LENGTH2", precTight, f, 1, [3]kind.ValueKind{v}},

	ConvIntFloat: {"CONV_I2F", precTight, f, 1, [3]kind.ValueKind{i}},
	ConvFloatInt: {"CONV_F2I", precTight, i, 1, [3]kind.ValueKind{f}},
}

// Info returns op's static record.
func Info(op Op) Record {
	return records[op]
}

// Precedence returns op's Shunting-Yard precedence.
func (op Op) Precedence() int {
	return records[op].Precedence
}

// Result returns the ValueKind op leaves on the compile-time type stack.
func (op Op) Result() kind.ValueKind {
	return records[op].Result
}

// Arity returns the number of stack arguments op consumes.
func (op Op) Arity() int {
	return records[op].Arity
}

// ArgKind returns the declared kind of op's i'th argument (0-based).
func (op Op) ArgKind(i int) kind.ValueKind {
	return records[op].Arg[i]
}
