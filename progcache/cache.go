// Package progcache caches compiled vm.Programs so a host evaluating the
// same expression text against the same variable signature repeatedly (the
// common case for a node graph evaluated over many rows, or re-evaluated
// across frames) doesn't pay the lex/parse/compile cost each time.
//
// Two tiers: an in-memory LRU keyed by a fast siphash of (source, variable
// signature, output kind), and an optional on-disk tier keyed by a
// collision-resistant blake2b-256 hash of the same content, holding
// zstd-compressed serialized Programs for reuse across process restarts.
package progcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dchest/siphash"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"

	"github.com/nodeforge/exprlang/kind"
	"github.com/nodeforge/exprlang/lang"
	"github.com/nodeforge/exprlang/opcode"
	"github.com/nodeforge/exprlang/vm"
)

// sipK0/sipK1 form a fixed, compiled-in key: the in-memory cache never needs
// to be collision-resistant against an adversary, only fast and well
// distributed, so an arbitrary fixed key is fine.
var sipK0, sipK1 uint64 = 0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9

func signatureBytes(source string, vars []lang.Variable, output kind.ValueKind) []byte {
	var buf bytes.Buffer
	buf.WriteString(source)
	buf.WriteByte(0)
	for _, v := range vars {
		buf.WriteString(v.Name)
		buf.WriteByte(byte(v.Kind))
	}
	buf.WriteByte(byte(output))
	return buf.Bytes()
}

func memKey(sig []byte) uint64 {
	return siphash.Hash(sipK0, sipK1, sig)
}

func diskKey(sig []byte) [32]byte {
	return blake2b.Sum256(sig)
}

type memEntry struct {
	prog     *vm.Program
	lastUsed uint64
}

// Memory is a bounded in-memory LRU of compiled Programs.
type Memory struct {
	mu       sync.Mutex
	cap      int
	clock    uint64
	entries  map[uint64]*memEntry
}

// NewMemory creates an in-memory cache holding at most capacity Programs; a
// capacity of zero or less leaves the cache unbounded.
func NewMemory(capacity int) *Memory {
	return &Memory{cap: capacity, entries: make(map[uint64]*memEntry)}
}

// Get looks up a compiled Program by source/signature/output.
func (m *Memory) Get(source string, vars []lang.Variable, output kind.ValueKind) (*vm.Program, bool) {
	key := memKey(signatureBytes(source, vars, output))
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	m.clock++
	e.lastUsed = m.clock
	return e.prog, true
}

// Put inserts a compiled Program, evicting the least-recently-used entry if
// the cache is at capacity.
func (m *Memory) Put(source string, vars []lang.Variable, output kind.ValueKind, prog *vm.Program) {
	key := memKey(signatureBytes(source, vars, output))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock++
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.cap && m.cap > 0 {
		m.evictOldest()
	}
	m.entries[key] = &memEntry{prog: prog, lastUsed: m.clock}
}

func (m *Memory) evictOldest() {
	type kv struct {
		key      uint64
		lastUsed uint64
	}
	all := make([]kv, 0, len(m.entries))
	for k, e := range m.entries {
		all = append(all, kv{k, e.lastUsed})
	}
	slices.SortFunc(all, func(a, b kv) bool { return a.lastUsed < b.lastUsed })
	if len(all) > 0 {
		delete(m.entries, all[0].key)
	}
}

// Disk is an on-disk cache of zstd-compressed serialized Programs, content
// addressed by a blake2b-256 hash of the compile signature.
type Disk struct {
	dir string
}

// NewDisk opens (creating if necessary) an on-disk cache rooted at dir.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("progcache: create cache dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) path(key [32]byte) string {
	return filepath.Join(d.dir, fmt.Sprintf("%x.prog.zst", key))
}

// Get loads and decompresses a cached Program, if present.
func (d *Disk) Get(source string, vars []lang.Variable, output kind.ValueKind) (*vm.Program, bool) {
	key := diskKey(signatureBytes(source, vars, output))
	raw, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}
	prog, err := decode(raw)
	if err != nil {
		return nil, false
	}
	return prog, true
}

// Put compresses and persists prog under its compile signature's hash.
func (d *Disk) Put(source string, vars []lang.Variable, output kind.ValueKind, prog *vm.Program) error {
	key := diskKey(signatureBytes(source, vars, output))
	raw, err := encode(prog)
	if err != nil {
		return err
	}
	tmp := d.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.path(key))
}

// encode serializes a Program (stack size, output kind, token count, then
// one 5-byte record per token) and zstd-compresses the result.
func encode(p *vm.Program) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(p.StackSize))
	buf.WriteByte(byte(p.Output))
	binary.Write(&buf, binary.BigEndian, uint32(len(p.Code)))
	for _, t := range p.Code {
		buf.WriteByte(byte(t.Op))
		binary.Write(&buf, binary.BigEndian, t.Imm)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("progcache: new zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

func decode(compressed []byte) (*vm.Program, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("progcache: new zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("progcache: decompress: %w", err)
	}

	r := bytes.NewReader(raw)
	var stackSize uint32
	if err := binary.Read(r, binary.BigEndian, &stackSize); err != nil {
		return nil, err
	}
	outputByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	code := make([]opcode.Token, count)
	for i := range code {
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var imm int32
		if err := binary.Read(r, binary.BigEndian, &imm); err != nil {
			return nil, err
		}
		code[i] = opcode.Token{Op: opcode.Op(opByte), Imm: imm}
	}
	if r.Len() != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return &vm.Program{Code: code, StackSize: int(stackSize), Output: kind.ValueKind(outputByte)}, nil
}
