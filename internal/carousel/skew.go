package carousel

import (
	"fmt"
	"math"
)

// SkewRange is an inclusive [Min, Max] bound on (TSC on the other CPU) -
// (TSC on the base CPU) at one instant.
type SkewRange struct {
	Min int64
	Max int64
}

// ErrInconsistent is returned wrapped whenever the carousel data violates
// a required invariant: a same-CPU decrease, a stuck counter, a skew
// magnitude past the signed 64-bit bound, or an empty range intersection.
type ErrInconsistent struct {
	Reason string
}

func (e *ErrInconsistent) Error() string {
	return fmt.Sprintf("carousel: TSC inconsistency: %s", e.Reason)
}

// CheckConsistency runs the two prechecks the original performs before
// computing a skew range: same-CPU samples must never decrease, and the
// first and last sample on any CPU must not be equal (a stuck counter).
// base has length rounds+1; other has length rounds.
func CheckConsistency(base, other []uint64) error {
	if err := checkNonDecreasing(base); err != nil {
		return err
	}
	if err := checkNonDecreasing(other); err != nil {
		return err
	}

	if len(base) >= 2 && base[0] == base[len(base)-1] {
		return &ErrInconsistent{Reason: "base CPU's first and last samples are equal (stuck counter)"}
	}
	if len(other) >= 2 && other[0] == other[len(other)-1] {
		return &ErrInconsistent{Reason: "other CPU's first and last samples are equal (stuck counter)"}
	}
	return nil
}

func checkNonDecreasing(samples []uint64) error {
	for i := 1; i < len(samples); i++ {
		if samples[i] < samples[i-1] {
			return &ErrInconsistent{Reason: fmt.Sprintf("samples at index %d and %d decrease (%d then %d)", i-1, i, samples[i-1], samples[i])}
		}
	}
	return nil
}

// DeltaRange computes the serial skew range for a two-CPU carousel of N
// rounds: base has length N+1, other has length N. For each round i,
// base[i] and base[i+1] bracket other[i] in time, so the skew must
// satisfy other[i]-base[i+1] <= delta <= other[i]-base[i].
func DeltaRange(base, other []uint64) (SkewRange, error) {
	if err := CheckConsistency(base, other); err != nil {
		return SkewRange{}, err
	}

	n := len(other)
	if len(base) != n+1 {
		return SkewRange{}, fmt.Errorf("carousel: base length %d does not match other length %d + 1", len(base), n)
	}

	running := SkewRange{Min: math.MinInt64, Max: math.MaxInt64}

	for i := 0; i < n; i++ {
		t1 := base[i]
		t2 := base[i+1]
		given := other[i]

		boundMin, err := signedDiff(given, t2)
		if err != nil {
			return SkewRange{}, err
		}
		boundMax, err := signedDiff(given, t1)
		if err != nil {
			return SkewRange{}, err
		}

		if boundMin > running.Min {
			running.Min = boundMin
		}
		if boundMax < running.Max {
			running.Max = boundMax
		}
		if running.Min > running.Max {
			return SkewRange{}, &ErrInconsistent{Reason: fmt.Sprintf("empty skew-range intersection at round %d", i)}
		}
	}

	return running, nil
}

// signedDiff computes a-b as a signed 64-bit value, rejecting magnitudes
// that would not fit (a possible sign of TSC wrap).
func signedDiff(a, b uint64) (int64, error) {
	if a >= b {
		d := a - b
		if d > math.MaxInt64 {
			return 0, &ErrInconsistent{Reason: "skew magnitude exceeds the signed 64-bit bound"}
		}
		return int64(d), nil
	}
	d := b - a
	if d > math.MaxInt64 {
		return 0, &ErrInconsistent{Reason: "skew magnitude exceeds the signed 64-bit bound"}
	}
	return -int64(d), nil
}

// Length returns Max - Min, the "estimated maximum shift between TSC
// counters running on different CPUs" reported to callers.
func (r SkewRange) Length() int64 {
	return r.Max - r.Min
}

// Intersect narrows r by other, returning an error if the result would be
// empty.
func (r SkewRange) Intersect(other SkewRange) (SkewRange, error) {
	out := SkewRange{Min: r.Min, Max: r.Max}
	if other.Min > out.Min {
		out.Min = other.Min
	}
	if other.Max < out.Max {
		out.Max = other.Max
	}
	if out.Min > out.Max {
		return SkewRange{}, &ErrInconsistent{Reason: "empty skew-range intersection"}
	}
	return out, nil
}
