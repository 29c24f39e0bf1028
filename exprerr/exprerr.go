// Package exprerr defines the structured error type shared by the lexer,
// parser, compiler, and host-binding layer, in the spirit of the teacher's
// expr.SyntaxError/expr.TypeError pair: a closed Kind enum plus a byte
// offset into the source, so a caller can report a single first-failure
// diagnostic without string-matching.
package exprerr

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a compile-time failure.
type Kind uint8

const (
	UnexpectedEnd Kind = iota
	ExpectedOperand
	ExpectedOperator
	UnknownFunction
	UnknownVariable
	UnclosedParen
	ExpectedComma
	InvalidNumber
	WrongArity
	WrongArgumentTypes
	StackOverflow
	CannotCoerceOutput
)

func (k Kind) String() string {
	switch k {
	case UnexpectedEnd:
		return "unexpected end of expression"
	case ExpectedOperand:
		return "expected operand"
	case ExpectedOperator:
		return "expected operator"
	case UnknownFunction:
		return "unknown function"
	case UnknownVariable:
		return "unknown variable"
	case UnclosedParen:
		return "unclosed parenthesis"
	case ExpectedComma:
		return "expected comma"
	case InvalidNumber:
		return "invalid number literal"
	case WrongArity:
		return "wrong number of arguments"
	case WrongArgumentTypes:
		return "wrong argument types"
	case StackOverflow:
		return "expression too complex"
	case CannotCoerceOutput:
		return "result cannot be coerced to the declared output type"
	default:
		return "unknown error"
	}
}

// Error is the single error type returned anywhere in the compile pipeline.
// Every Error carries a correlation ID so a host application can thread it
// through its own logs even though the error itself never does any logging.
type Error struct {
	Kind Kind
	Msg  string
	Pos  int
	ID   uuid.UUID
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at offset %d: %s (id=%s)", e.Kind, e.Pos, e.Msg, e.ID)
	}
	return fmt.Sprintf("%s: %s (id=%s)", e.Kind, e.Msg, e.ID)
}

func newf(k Kind, pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Pos: pos, ID: uuid.New()}
}

// Syntax builds a position-carrying syntax-class error: anything the lexer
// or parser raises, plus the compiler's structural failures (unbalanced
// parentheses, missing operands, wrong argument count, stack overflow).
func Syntax(k Kind, pos int, format string, args ...interface{}) *Error {
	return newf(k, pos, format, args...)
}

// Type builds a compiler type-resolution error: no overload for the given
// argument kinds, or an output that cannot be coerced.
func Type(k Kind, pos int, format string, args ...interface{}) *Error {
	return newf(k, pos, format, args...)
}
