package compile

import (
	"testing"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
)

var fuzzVars = []lang.Variable{
	{Name: "x", Kind: kind.Float},
	{Name: "y", Kind: kind.Int},
	{Name: "v", Kind: kind.Vec},
	{Name: "b", Kind: kind.Bool},
}

func addQueries(f *testing.F) {
	seeds := []string{
		"x + y * 2",
		"-x^2",
		"if(x>y, x, y)",
		"length(vec(x, y, 0))",
		"(x+1)/0",
		"pi*x*x",
		"v.x + v.y + v.z",
		"sqrt(x) + ln(x) - exp(x)",
		"compare(x, y, 0.01)",
		"b and x > 0",
		"min(x, y) + max(x, y)",
		"",
		"(((",
		"1 + + +",
		"sqrt(",
		"vec(1,2,3,4)",
	}
	for _, s := range seeds {
		f.Add(s)
	}
}

// FuzzCompile checks that no input, however malformed, ever panics the
// lexer, parser, or compiler — every failure must surface as a returned
// *exprerr.Error instead.
func FuzzCompile(f *testing.F) {
	addQueries(f)
	f.Fuzz(func(t *testing.T, src string) {
		_, _ = Compile(src, fuzzVars, kind.Float)
	})
}
