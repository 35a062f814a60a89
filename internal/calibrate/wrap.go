package calibrate

import "math"

// EstimateWrapSeconds implements SPEC_FULL.md 4.14: pin the calling
// thread to each of cpus in turn, read the TSC, and report the number
// of seconds before the earliest wrap — the wrap time of whichever CPU
// currently holds the largest TSC value.
//
// pin is called once per CPU; the affinity.Pin used by the library
// builds a fresh one-CPU mask on each call.
func EstimateWrapSeconds(cpus []int, pin func(cpu int) error, readTSC func() uint64, mult uint64, shift uint, remainderLength uint, remainderBitmask uint64, nsecsPerModulus uint64) (uint64, error) {
	var maxTSC uint64
	for _, cpu := range cpus {
		if err := pin(cpu); err != nil {
			return 0, err
		}
		v := readTSC()
		if v > maxTSC {
			maxTSC = v
		}
	}

	remaining := math.MaxUint64 - maxTSC
	whole := (remaining >> remainderLength) * nsecsPerModulus
	rem := ((remaining & remainderBitmask) * mult) >> shift
	nsecs := whole + rem

	return nsecs / 1_000_000_000, nil
}
