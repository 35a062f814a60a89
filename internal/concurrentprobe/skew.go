package concurrentprobe

import (
	"fmt"
	"math"

	"github.com/randomizedcoder/wtmlib/internal/carousel"
)

// DeltaRange computes the concurrent skew range between a base CPU's
// probe array and another CPU's probe array, both already sorted by
// seq_num (as Collect's Result guarantees). It implements SPEC_FULL.md
// 4.9: scan consecutive pairs of base probes as windows, and for every
// "other" sub-sequence strictly enclosed by a window, derive and
// intersect a bound.
//
// rangeCountThreshold is the statistical gate: if fewer windows contained
// an enclosed "other" probe than the threshold, ErrPoorStatistics is
// returned instead of a range.
func DeltaRange(base, other []Probe, rangeCountThreshold uint64) (carousel.SkewRange, error) {
	if err := checkStuckCounter(base); err != nil {
		return carousel.SkewRange{}, err
	}
	if err := checkStuckCounter(other); err != nil {
		return carousel.SkewRange{}, err
	}

	running := carousel.SkewRange{Min: math.MinInt64, Max: math.MaxInt64}

	otherIdx := 0
	windowsWithData := uint64(0)

	for i := 0; i+1 < len(base); i++ {
		p1 := base[i]
		p2 := base[i+1]

		first := -1
		last := -1
		for otherIdx < len(other) && other[otherIdx].SeqNum < p2.SeqNum {
			if other[otherIdx].SeqNum > p1.SeqNum {
				if first == -1 {
					first = otherIdx
				}
				last = otherIdx
			}
			otherIdx++
		}

		if first == -1 {
			continue
		}
		windowsWithData++

		T1 := other[first].TSCVal
		T2 := other[last].TSCVal
		t1 := p1.TSCVal
		t2 := p2.TSCVal

		if err := checkTimeFlowsConsistently(t1, t2, T1, T2); err != nil {
			return carousel.SkewRange{}, err
		}

		upper, err := signedDiff(T1, t1)
		if err != nil {
			return carousel.SkewRange{}, err
		}
		lower, err := signedDiff(T2, t2)
		if err != nil {
			return carousel.SkewRange{}, err
		}

		window := carousel.SkewRange{Min: lower, Max: upper}
		running, err = running.Intersect(window)
		if err != nil {
			return carousel.SkewRange{}, err
		}
	}

	if windowsWithData < rangeCountThreshold {
		return carousel.SkewRange{}, errPoorStatistics{
			reason: fmt.Sprintf("only %d of %d required independent skew-range estimations found", windowsWithData, rangeCountThreshold),
		}
	}

	return running, nil
}

// checkStuckCounter rejects a CPU whose first and last probe carry the
// same TSC value, the sign of a counter that never advanced across the
// whole collection window (wtmlib_CheckTSCProbesConsistency).
func checkStuckCounter(probes []Probe) error {
	if len(probes) >= 2 && probes[0].TSCVal == probes[len(probes)-1].TSCVal {
		return &carousel.ErrInconsistent{Reason: "first and last probe's TSC values are equal (stuck counter)"}
	}
	return nil
}

// checkTimeFlowsConsistently rejects the case where the base CPU's
// elapsed ticks between p1 and p2 are smaller than the other CPU's
// elapsed ticks between its first and last enclosed probe — "time
// appears to flow at different rates", a TSC inconsistency.
func checkTimeFlowsConsistently(t1, t2, T1, T2 uint64) error {
	if t2 < t1 || T2 < T1 {
		return &carousel.ErrInconsistent{Reason: "base or other TSC values decrease within a window"}
	}
	if t2-t1 < T2-T1 {
		return &carousel.ErrInconsistent{Reason: "time appears to flow at different rates across CPUs"}
	}
	return nil
}

func signedDiff(a, b uint64) (int64, error) {
	if a >= b {
		d := a - b
		if d > math.MaxInt64 {
			return 0, &carousel.ErrInconsistent{Reason: "skew magnitude exceeds the signed 64-bit bound"}
		}
		return int64(d), nil
	}
	d := b - a
	if d > math.MaxInt64 {
		return 0, &carousel.ErrInconsistent{Reason: "skew magnitude exceeds the signed 64-bit bound"}
	}
	return -int64(d), nil
}

// errPoorStatistics is returned by DeltaRange when the statistical gate
// fails. The root package maps it to ErrPoorStatistics.
type errPoorStatistics struct {
	reason string
}

func (e errPoorStatistics) Error() string {
	return fmt.Sprintf("concurrentprobe: poor statistics: %s", e.reason)
}

// IsPoorStatistics reports whether err was produced by a statistical
// gate failure in this package.
func IsPoorStatistics(err error) bool {
	_, ok := err.(errPoorStatistics)
	return ok
}
