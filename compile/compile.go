// Package compile implements the second pipeline stage: a Shunting-Yard
// compiler that turns the lang package's infix token stream into a postfix
// vm.Program, threading a compile-time type stack alongside the operator
// stack so every operator and function call is resolved to a concrete typed
// opcode.Op (via package overload) as soon as it is emitted, with implicit
// Int->Float conversions inserted where needed and a final coercion to the
// declared output kind.
package compile

import (
	"github.com/nodeforge/exprlang/exprerr"
	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
	"github.com/nodeforge/exprlang/opcode"
	"github.com/nodeforge/exprlang/overload"
	"github.com/nodeforge/exprlang/vm"
)

// opEntry is one entry of the operator stack: either a real operator/
// function token, or a paren boundary marker (tok.Op == opcode.LParen).
type opEntry struct {
	tok opcode.Token
	pos int
}

// frame tracks one open '(' — whether it began a function call, which
// function, and how many comma-separated arguments have been seen so far.
type frame struct {
	isCall  bool
	fn      opcode.Op
	fnPos   int
	argSeen int
}

type compiler struct {
	ops     []opEntry
	frames  []frame
	types   []kind.ValueKind
	code    []opcode.Token
	cells   int
	peak    int
	lastFn  bool // true if the previous item pushed a function token awaiting '('
}

// Compile compiles source against the given variable signature into a
// Program that produces outputKind.
func Compile(source string, vars []lang.Variable, outputKind kind.ValueKind) (*vm.Program, error) {
	items, err := lang.Parse(source, vars)
	if err != nil {
		return nil, err
	}
	c := &compiler{}
	for _, it := range items {
		if err := c.step(it); err != nil {
			return nil, err
		}
	}
	if len(c.frames) > 0 {
		return nil, exprerr.Syntax(exprerr.UnclosedParen, c.frames[len(c.frames)-1].fnPos, "unclosed parenthesis")
	}
	if err := c.flushAll(); err != nil {
		return nil, err
	}
	if len(c.types) != 1 {
		return nil, exprerr.Syntax(exprerr.ExpectedOperand, 0, "expression does not reduce to a single value")
	}
	if err := c.coerceOutput(outputKind); err != nil {
		return nil, err
	}
	if c.peak > vm.MaxStackCells {
		return nil, exprerr.Syntax(exprerr.StackOverflow, 0, "expression exceeds maximum stack depth of %d cells", vm.MaxStackCells)
	}
	return &vm.Program{Code: c.code, StackSize: c.peak, Output: outputKind}, nil
}

func (c *compiler) step(it lang.Item) error {
	op := it.Tok.Op
	wasFn := c.lastFn
	c.lastFn = false

	switch {
	case op.IsOperand():
		c.pushValue(it.Tok)
		return nil

	case op == opcode.LParen:
		return c.openParen(it, wasFn)

	case op == opcode.RParen:
		return c.closeParen(it.Pos)

	case op == opcode.Comma:
		return c.comma(it.Pos)

	case op.IsOperatorOrFunction():
		if op.IsFunction() {
			if err := c.pushRaw(it); err != nil {
				return err
			}
			c.lastFn = true
			return nil
		}
		return c.pushOperator(it)

	default:
		return exprerr.Syntax(exprerr.ExpectedOperator, it.Pos, "unexpected token")
	}
}

// pushRaw pushes a function token onto the operator stack after popping any
// operators ahead of it that bind at least as tight, without resolving it —
// functions are only ever resolved at their matching ')'.
func (c *compiler) pushRaw(it lang.Item) error {
	if err := c.popWhileTighter(it.Tok.Op); err != nil {
		return err
	}
	c.ops = append(c.ops, opEntry{tok: it.Tok, pos: it.Pos})
	return nil
}

// pushOperator handles a true operator or GetMemberVec: pop anything on the
// operator stack that binds at least as tight (strictly tighter, or equal
// and left-associative), emitting each as it's popped, then push cur.
func (c *compiler) pushOperator(it lang.Item) error {
	if err := c.popWhileTighter(it.Tok.Op); err != nil {
		return err
	}
	c.ops = append(c.ops, opEntry{tok: it.Tok, pos: it.Pos})
	return nil
}

func isRightAssoc(op opcode.Op) bool {
	return op == opcode.PowFloat
}

func (c *compiler) popWhileTighter(cur opcode.Op) error {
	for len(c.ops) > 0 {
		top := c.ops[len(c.ops)-1]
		if top.tok.Op == opcode.LParen {
			break
		}
		if top.tok.Op.IsFunction() {
			break // functions only pop at ')'
		}
		topPrec := top.tok.Op.Precedence()
		curPrec := cur.Precedence()
		if topPrec > curPrec || (topPrec == curPrec && !isRightAssoc(cur)) {
			c.ops = c.ops[:len(c.ops)-1]
			if err := c.resolveAndEmit(top); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func (c *compiler) openParen(it lang.Item, isCall bool) error {
	c.ops = append(c.ops, opEntry{tok: opcode.Token{Op: opcode.LParen}, pos: it.Pos})
	fn := opcode.None
	if isCall {
		fn = c.ops[len(c.ops)-2].tok.Op
	}
	c.frames = append(c.frames, frame{isCall: isCall, fn: fn, fnPos: it.Pos})
	return nil
}

func (c *compiler) comma(pos int) error {
	if len(c.frames) == 0 || !c.frames[len(c.frames)-1].isCall {
		return exprerr.Syntax(exprerr.ExpectedOperand, pos, "comma outside a function call")
	}
	if err := c.popToParen(pos); err != nil {
		return err
	}
	c.frames[len(c.frames)-1].argSeen++
	return nil
}

func (c *compiler) closeParen(pos int) error {
	if err := c.popToParen(pos); err != nil {
		return err
	}
	// discard the LParen boundary itself
	c.ops = c.ops[:len(c.ops)-1]
	if len(c.frames) == 0 {
		return exprerr.Syntax(exprerr.UnclosedParen, pos, "unmatched ')'")
	}
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	if !f.isCall {
		return nil
	}
	argc := f.argSeen + 1
	// pop the pending function token itself
	if len(c.ops) == 0 || c.ops[len(c.ops)-1].tok.Op != f.fn {
		return exprerr.Syntax(exprerr.WrongArity, f.fnPos, "malformed call to %s", f.fn)
	}
	fnEntry := c.ops[len(c.ops)-1]
	c.ops = c.ops[:len(c.ops)-1]
	return c.resolveCall(fnEntry, argc)
}

// popToParen pops and emits every operator down to (but not including) the
// nearest LParen boundary.
func (c *compiler) popToParen(pos int) error {
	for len(c.ops) > 0 && c.ops[len(c.ops)-1].tok.Op != opcode.LParen {
		top := c.ops[len(c.ops)-1]
		c.ops = c.ops[:len(c.ops)-1]
		if err := c.resolveAndEmit(top); err != nil {
			return err
		}
	}
	if len(c.ops) == 0 {
		return exprerr.Syntax(exprerr.UnclosedParen, pos, "mismatched parenthesis")
	}
	return nil
}

func (c *compiler) flushAll() error {
	for len(c.ops) > 0 {
		top := c.ops[len(c.ops)-1]
		if top.tok.Op == opcode.LParen {
			return exprerr.Syntax(exprerr.UnclosedParen, top.pos, "unmatched '('")
		}
		c.ops = c.ops[:len(c.ops)-1]
		if err := c.resolveAndEmit(top); err != nil {
			return err
		}
	}
	return nil
}

// resolveAndEmit resolves a true unary/binary operator (or GetMemberVec)
// against the current type stack and emits it.
func (c *compiler) resolveAndEmit(e opEntry) error {
	op := e.tok.Op
	arity := op.Arity()
	if len(c.types) < arity {
		return exprerr.Syntax(exprerr.ExpectedOperand, e.pos, "%s is missing an operand", op)
	}
	args := c.popTypes(arity)

	var res overload.Resolution
	var err error
	switch arity {
	case 1:
		res, err = overload.ResolveUnary(op, args[0])
	case 2:
		res, err = overload.ResolveBinary(op, args[0], args[1])
	default:
		return exprerr.Syntax(exprerr.WrongArgumentTypes, e.pos, "internal: bad operator arity")
	}
	if err != nil {
		return exprerr.Type(exprerr.WrongArgumentTypes, e.pos, "%v", err)
	}
	return c.emitResolved(res, e.tok.Imm, args, e.pos)
}

// resolveCall resolves a finished function call against argc popped operand
// kinds.
func (c *compiler) resolveCall(e opEntry, argc int) error {
	op := e.tok.Op
	if argc != op.Arity() {
		return exprerr.Syntax(exprerr.WrongArity, e.pos, "%s expects %d argument(s), got %d", op, op.Arity(), argc)
	}
	if len(c.types) < argc {
		return exprerr.Syntax(exprerr.ExpectedOperand, e.pos, "%s is missing an argument", op)
	}
	args := c.popTypes(argc)

	var res overload.Resolution
	var err error
	switch op {
	case opcode.IfFloat:
		res, err = overload.ResolveIf(args[0], args[1], args[2])
	case opcode.Compare:
		res, err = overload.ResolveCompare(args[0], args[1], args[2])
	case opcode.MakeVec:
		res, err = overload.ResolveMakeVec(args[0], args[1], args[2])
	default:
		switch argc {
		case 1:
			res, err = overload.ResolveUnary(op, args[0])
		case 2:
			res, err = overload.ResolveBinary(op, args[0], args[1])
		default:
			return exprerr.Syntax(exprerr.WrongArgumentTypes, e.pos, "internal: bad function arity")
		}
	}
	if err != nil {
		return exprerr.Type(exprerr.WrongArgumentTypes, e.pos, "%v", err)
	}
	return c.emitResolved(res, 0, args, e.pos)
}

// emitResolved inserts any required Int->Float widenings (computed against
// the pre-conversion cell layout, deepest argument first) then the resolved
// operator, and updates the type stack. imm carries through the original
// token's immediate (used only by GetMemberVec's member offset; every other
// operator and function is parsed with a zero immediate).
func (c *compiler) emitResolved(res overload.Resolution, imm int32, args []kind.ValueKind, pos int) error {
	for j := 0; j < len(args); j++ {
		if !res.Widen[j] {
			continue
		}
		offset := int32(0)
		for k := j + 1; k < len(args); k++ {
			offset += int32(args[k].Cells())
		}
		c.code = append(c.code, opcode.Offset(opcode.ConvIntFloat, offset))
	}
	c.code = append(c.code, opcode.Token{Op: res.Op, Imm: imm})

	for _, a := range args {
		c.cells -= a.Cells()
	}
	result := res.Op.Result()
	c.cells += result.Cells()
	if c.cells > vm.MaxStackCells {
		return exprerr.Syntax(exprerr.StackOverflow, pos, "expression exceeds maximum stack depth of %d cells", vm.MaxStackCells)
	}
	if c.cells > c.peak {
		c.peak = c.cells
	}
	c.types = append(c.types, result)
	return nil
}

// popTypes pops n kinds off the type stack, in original push (argument)
// order: the first element of the returned slice is the earliest-pushed
// (deepest / leftmost) argument.
func (c *compiler) popTypes(n int) []kind.ValueKind {
	args := make([]kind.ValueKind, n)
	for k := n - 1; k >= 0; k-- {
		last := len(c.types) - 1
		args[k] = c.types[last]
		c.types = c.types[:last]
	}
	return args
}

func (c *compiler) pushValue(tok opcode.Token) {
	c.code = append(c.code, tok)
	k := operandKind(tok.Op)
	c.types = append(c.types, k)
	c.cells += k.Cells()
	if c.cells > c.peak {
		c.peak = c.cells
	}
}

func operandKind(op opcode.Op) kind.ValueKind {
	switch op {
	case opcode.ConstFloat, opcode.VarFloat:
		return kind.Float
	case opcode.ConstInt, opcode.VarInt, opcode.VarBool:
		return kind.Int
	case opcode.VarVec:
		return kind.Vec
	default:
		return kind.Float
	}
}

// coerceOutput applies the final coercion from the expression's computed
// kind to the host-declared output kind, per the reference engine's
// output_op_or_function table:
//   - Vec -> scalar: reduce to .x via GetMemberVec(2) first, then fall
//     through to the scalar-to-scalar rule below.
//   - Int -> Float: widen via ConvIntFloat(0).
//   - Float -> Int/Bool: narrow via ConvFloatInt(0).
//   - scalar -> Vec: zero-pad with two ConstFloat(0) so the runtime stack
//     holds (x, 0, 0).
//   - Bool's underlying representation is Int, so Int -> Bool and
//     Bool -> Int both need no conversion code at all.
func (c *compiler) coerceOutput(want kind.ValueKind) error {
	got := c.types[0]

	if got == kind.Vec && want != kind.Vec {
		c.code = append(c.code, opcode.Offset(opcode.GetMemberVec, 2))
		c.cells -= 2
		got = kind.Float
	}

	switch want {
	case kind.Float:
		if got == kind.Int {
			c.code = append(c.code, opcode.Offset(opcode.ConvIntFloat, 0))
		}
		return nil
	case kind.Int, kind.Bool:
		if got == kind.Float {
			c.code = append(c.code, opcode.Offset(opcode.ConvFloatInt, 0))
		}
		return nil
	case kind.Vec:
		if got == kind.Vec {
			return nil
		}
		if got == kind.Int {
			c.code = append(c.code, opcode.Offset(opcode.ConvIntFloat, 0))
		}
		c.code = append(c.code, opcode.Float(0), opcode.Float(0))
		c.cells += 2
		if c.cells > c.peak {
			c.peak = c.cells
		}
		return nil
	}
	return exprerr.Type(exprerr.CannotCoerceOutput, 0, "cannot coerce result of kind %s to declared output kind %s", got, want)
}
