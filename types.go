package wtmlib

// Reliability is the result of a TSC reliability evaluation, serial or
// concurrent. On error the zero value is returned.
type Reliability struct {
	// SkewRangeLength is the estimated maximum shift between TSC
	// counters running on different CPUs: max - min of the enclosing
	// range, the union of the intersected skew ranges of every
	// (base CPU, other CPU) pair.
	SkewRangeLength int64

	// IsMonotonic reports whether TSC values measured one after another,
	// possibly on different CPUs, were observed to never decrease. A
	// false value is data, not a failure.
	IsMonotonic bool
}

// Calibration is the result of a successful TSC-to-nanoseconds
// calibration.
type Calibration struct {
	Params ConversionParams

	// SecsBeforeWrap is the estimated number of seconds before the TSC
	// of the CPU with the highest observed value wraps, measured from
	// that value.
	SecsBeforeWrap uint64
}
