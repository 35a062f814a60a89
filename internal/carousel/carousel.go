// Package carousel implements the CPU-Switching reliability path: a
// single thread migrating across CPUs in a fixed cyclic order, recording
// TSC values, from which serial skew and monotonicity are derived.
package carousel

import (
	"fmt"

	"github.com/randomizedcoder/wtmlib/internal/affinity"
	"github.com/randomizedcoder/wtmlib/internal/sampling"
	"github.com/randomizedcoder/wtmlib/internal/tsc"
)

// Collect migrates the calling thread across cpus in order, for rounds
// round-trips, recording one TSC sample per (round, CPU) pair, then pins
// back to cpus[0] and takes one closing sample after the last round.
//
// samples[c] has length rounds+1 for c == 0 and length rounds for every
// other CPU index, matching samples[0][N] being the carousel's closing
// marker.
//
// The calling goroutine must already have called runtime.LockOSThread;
// Collect does not unlock it, since the caller owns the surrounding
// snapshot/restore bracket.
func Collect(cpus []int, rounds int, lineSize int) (*sampling.PerCPUBuffers, error) {
	if len(cpus) == 0 {
		return nil, fmt.Errorf("carousel: no CPUs to visit")
	}

	lengths := make([]int, len(cpus))
	for c := range cpus {
		lengths[c] = rounds
	}
	lengths[0] = rounds + 1

	maxLen := 0
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}
	buf := sampling.NewPerCPUBuffers(len(cpus), maxLen, lineSize)

	for r := 0; r < rounds; r++ {
		for c, cpu := range cpus {
			if err := affinity.Pin(cpu); err != nil {
				return nil, fmt.Errorf("carousel: round %d, CPU index %d: %w", r, c, err)
			}
			buf.For(c)[r] = tsc.Read()
		}
	}

	if err := affinity.Pin(cpus[0]); err != nil {
		return nil, fmt.Errorf("carousel: closing sample: %w", err)
	}
	buf.For(0)[rounds] = tsc.Read()

	return buf, nil
}

// Samples trims a carousel's per-CPU buffer to the length that
// component expects for CPU index c (rounds+1 for c==0, rounds for
// everyone else), discarding the cache-line padding slack.
func Samples(buf *sampling.PerCPUBuffers, c, rounds int) []uint64 {
	n := rounds
	if c == 0 {
		n = rounds + 1
	}
	return buf.For(c)[:n]
}
