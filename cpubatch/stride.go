// Package cpubatch picks a batch-evaluation chunk size from the host CPU's
// vector width. It does not implement any actual SIMD kernel — the
// interpreter's opcode loop stays pure Go — but sizing the chunk to the
// machine's native lane width keeps each chunk's working set resident in
// cache the way a real vectorized evaluator's batch stride would.
package cpubatch

import "golang.org/x/sys/cpu"

// Stride returns the number of rows EvaluateBatch processes per chunk.
func Stride() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 64
	case cpu.X86.HasAVX2:
		return 32
	case cpu.ARM64.HasASIMD:
		return 16
	default:
		return 8
	}
}
