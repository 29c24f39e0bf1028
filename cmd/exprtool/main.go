// Command exprtool compiles and evaluates a single expression against a
// variable manifest read from a YAML file, in the spirit of the teacher's
// small single-purpose cmd/ utilities (cmd/dump, cmd/k8s-peers): a flat
// main.go, stdlib flag parsing, and a *log.Logger threaded through via
// functional options rather than a global.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/nodeforge/exprlang"
)

type option func(*tool)

type tool struct {
	logger *log.Logger
}

func withLogger(l *log.Logger) option {
	return func(t *tool) { t.logger = l }
}

func newTool(opts ...option) *tool {
	t := &tool{logger: log.New(os.Stderr, "exprtool: ", log.LstdFlags)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// manifestVar is one entry of the YAML variable manifest: a declared name,
// kind, and the value to evaluate against.
type manifestVar struct {
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Float float32   `json:"float,omitempty"`
	Int   int32     `json:"int,omitempty"`
	Bool  bool      `json:"bool,omitempty"`
	Vec   []float32 `json:"vec,omitempty"`
}

type manifest struct {
	Variables []manifestVar `json:"variables"`
	Output    string        `json:"output"`
}

// row adapts a decoded manifest into a vm.Row / exprlang.Row.
type row struct {
	vars []manifestVar
}

func (r row) Float(idx int) float32  { return r.vars[idx].Float }
func (r row) Int(idx int) int32      { return r.vars[idx].Int }
func (r row) Bool(idx int) bool      { return r.vars[idx].Bool }
func (r row) Vec(idx int) [3]float32 {
	v := r.vars[idx].Vec
	var out [3]float32
	copy(out[:], v)
	return out
}

func parseKind(s string) (exprlang.ValueKind, error) {
	switch s {
	case "float":
		return exprlang.Float, nil
	case "int":
		return exprlang.Int, nil
	case "bool":
		return exprlang.Bool, nil
	case "vec":
		return exprlang.Vec, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

func (t *tool) run(exprSrc, manifestPath string) error {
	id := uuid.New()
	t.logger.Printf("request %s: compiling expression", id)

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("request %s: read manifest: %w", id, err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("request %s: parse manifest: %w", id, err)
	}

	vars := make([]exprlang.Variable, len(m.Variables))
	for i, v := range m.Variables {
		k, err := parseKind(v.Kind)
		if err != nil {
			return fmt.Errorf("request %s: variable %q: %w", id, v.Name, err)
		}
		vars[i] = exprlang.Variable{Name: v.Name, Kind: k}
	}
	output, err := parseKind(m.Output)
	if err != nil {
		return fmt.Errorf("request %s: output: %w", id, err)
	}

	prog, err := exprlang.Compile(exprSrc, vars, output)
	if err != nil {
		return fmt.Errorf("request %s: compile: %w", id, err)
	}
	t.logger.Printf("request %s: compiled, stack depth %d cells", id, prog.StackSize)

	result := exprlang.Evaluate(prog, row{vars: m.Variables})
	switch output {
	case exprlang.Float:
		fmt.Println(result.Float)
	case exprlang.Int:
		fmt.Println(result.Int)
	case exprlang.Bool:
		fmt.Println(result.Bool)
	case exprlang.Vec:
		fmt.Println(result.Vec)
	}
	return nil
}

func main() {
	manifestPath := flag.String("vars", "", "path to a YAML variable manifest")
	exprSrc := flag.String("expr", "", "expression source text")
	flag.Parse()

	if *manifestPath == "" || *exprSrc == "" {
		fmt.Fprintln(os.Stderr, "usage: exprtool -vars vars.yaml -expr 'x + y * 2'")
		os.Exit(2)
	}

	t := newTool(withLogger(log.New(os.Stderr, "exprtool: ", log.LstdFlags)))
	if err := t.run(*exprSrc, *manifestPath); err != nil {
		t.logger.Fatal(err)
	}
}
