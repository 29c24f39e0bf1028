package progcache

import (
	"path/filepath"
	"testing"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
	"github.com/nodeforge/exprlang/opcode"
	"github.com/nodeforge/exprlang/vm"
)

func sampleProgram() *vm.Program {
	return &vm.Program{
		Output:    kind.Float,
		StackSize: 2,
		Code: []opcode.Token{
			opcode.Float(1),
			opcode.Float(2),
			{Op: opcode.AddFloat},
		},
	}
}

func TestMemoryGetPut(t *testing.T) {
	m := NewMemory(2)
	vars := []lang.Variable{{Name: "x", Kind: kind.Float}}
	if _, ok := m.Get("x+1", vars, kind.Float); ok {
		t.Fatal("expected miss on empty cache")
	}
	p := sampleProgram()
	m.Put("x+1", vars, kind.Float, p)
	got, ok := m.Get("x+1", vars, kind.Float)
	if !ok || got != p {
		t.Fatalf("expected cached Program back, got %v %v", got, ok)
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemory(1)
	vars := []lang.Variable{{Name: "x", Kind: kind.Float}}
	m.Put("a", vars, kind.Float, sampleProgram())
	m.Put("b", vars, kind.Float, sampleProgram())
	if _, ok := m.Get("a", vars, kind.Float); ok {
		t.Fatal("expected 'a' to have been evicted")
	}
	if _, ok := m.Get("b", vars, kind.Float); !ok {
		t.Fatal("expected 'b' to remain cached")
	}
}

func TestDiskRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "progcache")
	d, err := NewDisk(dir)
	if err != nil {
		t.Fatal(err)
	}
	vars := []lang.Variable{{Name: "x", Kind: kind.Float}}
	p := sampleProgram()
	if err := d.Put("x+1", vars, kind.Float, p); err != nil {
		t.Fatal(err)
	}
	got, ok := d.Get("x+1", vars, kind.Float)
	if !ok {
		t.Fatal("expected a disk cache hit")
	}
	if got.StackSize != p.StackSize || got.Output != p.Output || len(got.Code) != len(p.Code) {
		t.Fatalf("round-tripped program mismatch: %+v vs %+v", got, p)
	}
	for i := range got.Code {
		if got.Code[i] != p.Code[i] {
			t.Fatalf("token %d mismatch: %+v vs %+v", i, got.Code[i], p.Code[i])
		}
	}
}
