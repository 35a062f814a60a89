// Package wtmlib evaluates the trustworthiness of a CPU's hardware
// time-stamp counter across a machine's CPUs and calibrates a fast
// tick-to-nanosecond conversion for it.
//
// The package does not read the TSC for its own sake — that's a single
// instruction — it decides whether the counter can be trusted as a shared
// wall-clock source and builds the arithmetic needed to convert ticks to
// nanoseconds without a division on the hot path.
package wtmlib

import "errors"

// ErrGenericFailure covers allocation failures, OS-call failures, worker
// lifecycle failures, and measurement-arithmetic bounds that were violated
// for reasons unrelated to TSC behavior (e.g. a restore-affinity call that
// failed after an otherwise successful evaluation).
var ErrGenericFailure = errors.New("wtmlib: generic failure")

// ErrTSCInconsistency is returned when observed counter behavior violates a
// required invariant: a decrease on one CPU outside of suspected wrap, a
// skew exceeding the signed 64-bit bound, time appearing to flow at
// different rates across CPUs, or an empty skew-range intersection.
var ErrTSCInconsistency = errors.New("wtmlib: TSC inconsistency detected")

// ErrPoorStatistics is returned when measurements completed successfully
// but did not exhibit enough structure to trust the statistical gate: too
// few independent skew-range estimations, or too few full loops across all
// CPUs in the monotonicity walk.
var ErrPoorStatistics = errors.New("wtmlib: statistical significance criteria not met")

// ErrTSCNotSupported is returned on platforms without a usable TSC read
// primitive. Every operation that depends on reading the counter fails
// with this error wrapped into ErrGenericFailure.
var ErrTSCNotSupported = errors.New("wtmlib: TSC is not supported on this platform")
