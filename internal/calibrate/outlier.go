package calibrate

import "math"

// FilteredAverage implements SPEC_FULL.md 4.12: compute an incremental
// mean and corrected sample variance over samples using Welford's
// recurrence, reject samples farther than one standard deviation from
// the mean, and average the retained samples using a shifted sum to
// avoid overflow.
func FilteredAverage(samples []uint64) uint64 {
	if len(samples) == 0 {
		return 0
	}
	if len(samples) == 1 {
		return samples[0]
	}

	mean := 0.0
	s := 0.0
	for i, v := range samples {
		delta := float64(v) - mean
		mean += delta / float64(i+1)
		s += delta * (float64(v) - mean)
	}

	n := float64(len(samples))
	var sigma float64
	if n > 1 {
		sigma = math.Sqrt(s / (n - 1))
	} else {
		sigma = math.Sqrt(s)
	}

	min := samples[0]
	for _, v := range samples {
		if v < min {
			min = v
		}
	}

	var sum uint64
	var count uint64
	for _, v := range samples {
		dist := math.Abs(float64(v) - mean)
		if dist > sigma {
			continue
		}
		sum += v - min
		count++
	}

	if count == 0 {
		// Every sample was rejected. In exact arithmetic at least one
		// sample always lies within one sample standard deviation of the
		// mean, so this only guards against floating-point rounding;
		// fall back to the unfiltered mean.
		sum = 0
		for _, v := range samples {
			sum += v - min
		}
		count = uint64(len(samples))
	}

	return sum/count + min
}
