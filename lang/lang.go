// Package lang implements the first stage of the pipeline: a combined
// lexer/parser that scans expression source text into a left-to-right
// infix stream of opcode.Token, resolving identifiers against the host's
// declared variables as it goes. It never reorders by precedence — that is
// package compile's job — so the emitted stream mirrors the source text
// exactly, one Item per lexeme.
package lang

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/nodeforge/exprlang/exprerr"
	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/opcode"
)

// Variable is one entry of the host-declared variable signature an
// expression is compiled against.
type Variable struct {
	Name string
	Kind kind.ValueKind
}

// Item is one element of the infix stream: a Token plus the byte offset in
// the source it was scanned from, for error reporting.
type Item struct {
	Tok opcode.Token
	Pos int
}

// funcSpec names a builtin function or operator alias recognized by name.
type funcSpec struct {
	op opcode.Op
}

// functions is the case-insensitive name table, including every alias the
// reference implementation recognizes (sine, squareroot, arcsine, ...).
var functions = map[string]funcSpec{
	"sqrt":        {opcode.Sqrt},
	"squareroot":  {opcode.Sqrt},
	"sin":         {opcode.Sin},
	"sine":        {opcode.Sin},
	"cos":         {opcode.Cos},
	"cosine":      {opcode.Cos},
	"tan":         {opcode.Tan},
	"tangent":     {opcode.Tan},
	"asin":        {opcode.Asin},
	"arcsine":     {opcode.Asin},
	"acos":        {opcode.Acos},
	"arccosine":   {opcode.Acos},
	"atan":        {opcode.Atan},
	"arctangent":  {opcode.Atan},
	"atan2":       {opcode.Atan2},
	"min":         {opcode.MinFloat},
	"minimum":     {opcode.MinFloat},
	"max":         {opcode.MaxFloat},
	"maximum":     {opcode.MaxFloat},
	"abs":         {opcode.AbsFloat},
	"absolute":    {opcode.AbsFloat},
	"sign":        {opcode.SignFloat},
	"to_radians":  {opcode.ToRadians},
	"radians":     {opcode.ToRadians},
	"to_degrees":  {opcode.ToDegrees},
	"degrees":     {opcode.ToDegrees},
	"vec":         {opcode.MakeVec},
	"vector":      {opcode.MakeVec},
	"not":         {opcode.NotFunc},
	"log":         {opcode.Log},
	"logarithm":   {opcode.Log},
	"ln":          {opcode.Ln},
	"pow":         {opcode.PowFunc},
	"power":       {opcode.PowFunc},
	"exp":         {opcode.Exp},
	"exponential": {opcode.Exp},
	"if":          {opcode.IfFloat},
	"ceil":        {opcode.Ceil},
	"floor":       {opcode.Floor},
	"frac":        {opcode.Frac},
	"fraction":    {opcode.Frac},
	"round":       {opcode.Round},
	"trunc":       {opcode.Trunc},
	"truncate":    {opcode.Trunc},
	"compare":     {opcode.Compare},
	"dot":         {opcode.Dot},
	"cross":       {opcode.Cross},
	"normalize":   {opcode.Normalize},
	"length":      {opcode.Length},
	"length2":     {opcode.Length2},
}

// operatorState distinguishes "an operand is expected next" from "an
// infix/postfix operator is expected next", the same disambiguation the
// reference scanner keeps to tell unary minus from binary minus and to spot
// a bare function name used where an operand was expected.
type operatorState bool

const (
	expectOperand  operatorState = false
	expectOperator operatorState = true
)

// operandLexemes are the prefix operators valid only in expectOperand state.
var operandLexemes = []struct {
	text string
	op   opcode.Op
}{
	{"-", opcode.NegFloat},
	{"!", opcode.Not},
}

// operatorLexemes lists binary-operator lexemes in the reference scanner's
// exact recognition order: 1-char arithmetic first, then 2-char comparisons
// and boolean symbols, then the remaining 1-char comparisons (including the
// '='-as-'==' wart), then the word-form "and"/"AND" last.
var operatorLexemes = []struct {
	text string
	op   opcode.Op
}{
	{"+", opcode.AddFloat},
	{"-", opcode.SubFloat},
	{"*", opcode.MulFloat},
	{"/", opcode.DivFloat},
	{"%", opcode.ModFloat},
	{"^", opcode.PowFloat},
	{"or", opcode.OrInt},
	{"OR", opcode.OrInt},
	{"||", opcode.OrInt},
	{"&&", opcode.AndInt},
	{"==", opcode.EqFloat},
	{"!=", opcode.NeFloat},
	{">=", opcode.GeFloat},
	{"<=", opcode.LeFloat},
	{">", opcode.GtFloat},
	{"<", opcode.LtFloat},
	{"=", opcode.EqFloat},
	{"and", opcode.AndInt},
	{"AND", opcode.AndInt},
}

var memberOffset = map[byte]int32{'x': 2, 'y': 1, 'z': 0}

type scanner struct {
	src  string
	pos  int
	vars []Variable
}

// Parse tokenizes source against the given variable signature, returning
// the infix stream in source order.
func Parse(source string, vars []Variable) ([]Item, error) {
	s := &scanner{src: source, vars: vars}
	var out []Item
	state := expectOperand

	for {
		s.skipSpace()
		if s.atEnd() {
			break
		}
		start := s.pos
		c := s.src[s.pos]

		switch {
		case c == '(':
			s.pos++
			out = append(out, Item{opcode.Token{Op: opcode.LParen}, start})
			// '(' opens either a grouping or a call; an operand is
			// expected next either way.
			state = expectOperand

		case c == ')':
			s.pos++
			out = append(out, Item{opcode.Token{Op: opcode.RParen}, start})
			state = expectOperator

		case c == ',':
			if state != expectOperator {
				return nil, exprerr.Syntax(exprerr.ExpectedOperand, start, "unexpected comma")
			}
			s.pos++
			out = append(out, Item{opcode.Token{Op: opcode.Comma}, start})
			state = expectOperand

		case c == '.' && state == expectOperator:
			s.pos++
			if s.atEnd() {
				return nil, exprerr.Syntax(exprerr.UnexpectedEnd, start, "expected x, y, or z after '.'")
			}
			m := s.src[s.pos]
			off, ok := memberOffset[m]
			if !ok {
				return nil, exprerr.Syntax(exprerr.ExpectedOperator, start, "unknown vector member %q", m)
			}
			s.pos++
			out = append(out, Item{opcode.Offset(opcode.GetMemberVec, off), start})
			// result of member access is a scalar operand already produced;
			// an operator is still expected next.

		case state == expectOperand && (isDigit(c) || (c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]))):
			tok, err := s.scanNumber()
			if err != nil {
				return nil, err
			}
			out = append(out, Item{tok, start})
			state = expectOperator

		case state == expectOperand && isIdentStart(c):
			tok, err := s.scanIdentOperand()
			if err != nil {
				return nil, err
			}
			out = append(out, Item{tok, start})
			state = expectOperator

		case state == expectOperand:
			lex, op, ok := matchLexeme(s.src[s.pos:], operandLexemes)
			if !ok {
				return nil, exprerr.Syntax(exprerr.ExpectedOperand, start, "expected an operand")
			}
			s.pos += len(lex)
			out = append(out, Item{opcode.Token{Op: op}, start})
			// unary operators keep state == expectOperand: their own
			// operand still follows.

		default: // state == expectOperator
			lex, op, ok := matchLexeme(s.src[s.pos:], operatorLexemes)
			if !ok {
				return nil, exprerr.Syntax(exprerr.ExpectedOperator, start, "expected an operator")
			}
			if isWordLexeme(lex) && !s.wordBoundaryAfter(len(lex)) {
				return nil, exprerr.Syntax(exprerr.ExpectedOperator, start, "expected an operator")
			}
			s.pos += len(lex)
			out = append(out, Item{opcode.Token{Op: op}, start})
			state = expectOperand
		}
	}

	if state == expectOperand {
		return nil, exprerr.Syntax(exprerr.UnexpectedEnd, s.pos, "expression ends with an operator")
	}
	return out, nil
}

func isWordLexeme(s string) bool {
	return s == "or" || s == "OR" || s == "and" || s == "AND"
}

func (s *scanner) wordBoundaryAfter(n int) bool {
	if s.pos+n >= len(s.src) {
		return true
	}
	c := s.src[s.pos+n]
	return !isIdentPart(c)
}

func matchLexeme(rest string, table []struct {
	text string
	op   opcode.Op
}) (string, opcode.Op, bool) {
	for _, e := range table {
		if strings.HasPrefix(rest, e.text) {
			return e.text, e.op, true
		}
	}
	return "", 0, false
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) skipSpace() {
	for !s.atEnd() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// scanNumber implements parse_number's longest-match rule: scan every digit
// run plus at most one '.', and if there was no '.' the literal is an Int,
// otherwise a Float. An integer literal that overflows int32 is reported as
// invalid rather than silently wrapping.
func (s *scanner) scanNumber() (opcode.Token, error) {
	start := s.pos
	sawDot := false
	for !s.atEnd() {
		c := s.src[s.pos]
		if isDigit(c) {
			s.pos++
			continue
		}
		if c == '.' && !sawDot && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]) {
			sawDot = true
			s.pos++
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	if !sawDot {
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return opcode.Token{}, exprerr.Syntax(exprerr.InvalidNumber, start, "invalid integer literal %q", text)
		}
		return opcode.Int(int32(v)), nil
	}
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return opcode.Token{}, exprerr.Syntax(exprerr.InvalidNumber, start, "invalid float literal %q", text)
	}
	return opcode.Float(float32(v)), nil
}

// scanIdentOperand scans an identifier in operand position and resolves it,
// in priority order, as: the special constants pi/tau (case-insensitive,
// checked first so a host can never shadow them), a function call (the
// identifier is immediately followed by '(', modulo whitespace), or a
// declared variable.
func (s *scanner) scanIdentOperand() (opcode.Token, error) {
	start := s.pos
	for !s.atEnd() && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]
	lower := strings.ToLower(name)

	switch lower {
	case "pi":
		return opcode.Float(float32(3.14159265358979323846)), nil
	case "tau":
		return opcode.Float(float32(2 * 3.14159265358979323846)), nil
	}

	if spec, ok := functions[lower]; ok && s.peekIsCall() {
		return opcode.Token{Op: spec.op}, nil
	}

	for idx, v := range s.vars {
		if v.Name != name {
			continue
		}
		switch v.Kind {
		case kind.Float:
			return opcode.Var(opcode.VarFloat, int32(idx)), nil
		case kind.Int:
			return opcode.Var(opcode.VarInt, int32(idx)), nil
		case kind.Bool:
			return opcode.Var(opcode.VarBool, int32(idx)), nil
		case kind.Vec:
			return opcode.Var(opcode.VarVec, int32(idx)), nil
		}
	}
	return opcode.Token{}, exprerr.Syntax(exprerr.UnknownVariable, start, "unknown variable %q%s", name, suggestVariables(s.vars))
}

// suggestVariables renders a deterministic, alphabetically sorted "did you
// mean" clause naming every declared variable, so an UnknownVariable error
// doesn't depend on the host's variable declaration order.
func suggestVariables(vars []Variable) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	slices.Sort(names)
	return " (declared variables: " + strings.Join(names, ", ") + ")"
}

// peekIsCall reports whether the next non-space character is '(', the
// signal that the identifier just scanned names a function call rather
// than a variable reference.
func (s *scanner) peekIsCall() bool {
	p := s.pos
	for p < len(s.src) && (s.src[p] == ' ' || s.src[p] == '\t') {
		p++
	}
	return p < len(s.src) && s.src[p] == '('
}
