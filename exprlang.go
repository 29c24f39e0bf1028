// Package exprlang is the embeddable expression language's public surface:
// Compile turns source text into a reusable vm.Program, Evaluate runs one
// against a single row, and EvaluateBatch runs one across many rows.
package exprlang

import (
	"github.com/nodeforge/exprlang/compile"
	"github.com/nodeforge/exprlang/exprerr"
	"github.com/nodeforge/exprlang/host"
	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
	"github.com/nodeforge/exprlang/progcache"
	"github.com/nodeforge/exprlang/vm"
)

// Variable names one entry of the signature an expression is compiled
// against: a name usable in source text and the kind it's bound to.
type Variable = lang.Variable

// ValueKind re-exports package kind's type tag for callers that only need
// the public surface.
type ValueKind = kind.ValueKind

const (
	Float = kind.Float
	Int   = kind.Int
	Bool  = kind.Bool
	Vec   = kind.Vec
)

// Program is a compiled expression, ready to evaluate repeatedly.
type Program = vm.Program

// Row is a single-row variable source; see vm.Row.
type Row = vm.Row

// Compile lexes, parses, and compiles source against vars, producing a
// Program that yields a value of kind output. The returned error, if any,
// is always an *exprerr.Error.
func Compile(source string, vars []Variable, output ValueKind) (*Program, error) {
	return compile.Compile(source, vars, output)
}

// Evaluate runs p against a single row and returns the decoded result.
func Evaluate(p *Program, row Row) vm.Result {
	return vm.Evaluate(p, row)
}

// EvaluateBatch runs p once per active row of a columnar variable source,
// writing each result into out.
func EvaluateBatch(p *Program, arrays host.VariableArrays, mask host.RowMask, out host.OutputBuffer, rows int) {
	host.EvaluateBatch(p, arrays, mask, out, rows)
}

// CachedCompiler wraps Compile with an in-memory LRU so repeatedly compiling
// the same (source, vars, output) signature — the common case for a node
// graph re-evaluated every frame — only lexes/parses/compiles on a miss.
type CachedCompiler struct {
	mem *progcache.Memory
}

// NewCachedCompiler builds a CachedCompiler backed by an in-memory LRU of
// the given capacity.
func NewCachedCompiler(capacity int) *CachedCompiler {
	return &CachedCompiler{mem: progcache.NewMemory(capacity)}
}

// Compile returns a cached Program if one exists for this exact signature,
// compiling and caching it otherwise.
func (c *CachedCompiler) Compile(source string, vars []Variable, output ValueKind) (*Program, error) {
	if p, ok := c.mem.Get(source, vars, output); ok {
		return p, nil
	}
	p, err := compile.Compile(source, vars, output)
	if err != nil {
		return nil, err
	}
	c.mem.Put(source, vars, output, p)
	return p, nil
}

// Kind of error every Compile failure carries.
type ErrorKind = exprerr.Kind

const (
	ErrUnexpectedEnd       = exprerr.UnexpectedEnd
	ErrExpectedOperand     = exprerr.ExpectedOperand
	ErrExpectedOperator    = exprerr.ExpectedOperator
	ErrUnknownFunction     = exprerr.UnknownFunction
	ErrUnknownVariable     = exprerr.UnknownVariable
	ErrUnclosedParen       = exprerr.UnclosedParen
	ErrExpectedComma       = exprerr.ExpectedComma
	ErrInvalidNumber       = exprerr.InvalidNumber
	ErrWrongArity          = exprerr.WrongArity
	ErrWrongArgumentTypes  = exprerr.WrongArgumentTypes
	ErrStackOverflow       = exprerr.StackOverflow
	ErrCannotCoerceOutput  = exprerr.CannotCoerceOutput
)
