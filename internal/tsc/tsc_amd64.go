//go:build amd64

// Package tsc provides the single-instruction hardware time-stamp-counter
// read primitive the rest of this module builds on.
package tsc

import "sync/atomic"

// Read returns the current value of the CPU's time-stamp counter.
//
// Implemented in tsc_amd64.s as a bare RDTSC, with no LFENCE/serializing
// prefix: ordering against surrounding atomic operations is the caller's
// responsibility (see ReadOrdered), matching the library's own requirement
// that the TSC read compose with an external full barrier rather than
// carry one itself.
func Read() uint64

// Supported reports whether this platform exposes a usable TSC read.
func Supported() bool {
	return true
}

var fenceVar atomic.Uint32

// Fence performs a full compiler-and-hardware memory barrier, the Go
// analog of the C original's __sync_synchronize(). A locked
// read-modify-write is a full fence on amd64; this gives a subsequent
// Read() the ordering guarantee the concurrent probe algorithm requires
// against a preceding atomic load.
func Fence() {
	fenceVar.Add(1)
}

// ReadOrdered performs Fence() followed by Read(), matching the
// "atomic-acquire-load of seq_counter, full barrier, TSC read" sequence
// the concurrent probe algorithm requires.
func ReadOrdered() uint64 {
	Fence()
	return Read()
}
