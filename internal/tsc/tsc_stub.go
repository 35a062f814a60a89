//go:build !amd64

package tsc

import "errors"

// ErrTSCNotSupported is the value Read and ReadOrdered panic with on
// platforms without a usable TSC read primitive.
var ErrTSCNotSupported = errors.New("tsc: TSC read requires amd64 architecture")

// Read panics on non-amd64 platforms. Callers must check Supported()
// before using this package; the library itself never calls Read without
// first checking Supported() and surfacing ErrTSCNotSupported instead.
func Read() uint64 {
	panic(ErrTSCNotSupported)
}

// Supported reports whether this platform exposes a usable TSC read.
func Supported() bool {
	return false
}

// Fence is a no-op stand-in on platforms without Read.
func Fence() {}

// ReadOrdered panics on non-amd64 platforms, for the same reason as Read.
func ReadOrdered() uint64 {
	panic(ErrTSCNotSupported)
}
