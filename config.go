package wtmlib

import "time"

// Config holds the tunables that were compile-time constants in the
// original C library. DefaultConfig returns the original's values;
// callers may override any field per-call.
type Config struct {
	// CarouselSkewRounds is the number of round trips the calling thread
	// makes across a 2-CPU carousel when calculating an enclosing skew
	// range.
	CarouselSkewRounds int

	// CarouselMonotonicityRounds is the number of round trips the calling
	// thread makes across all permitted CPUs when evaluating serial
	// monotonicity.
	CarouselMonotonicityRounds int

	// ProbeWaitTime is how long probe workers are allowed to run before
	// the controller cancels them.
	ProbeWaitTime time.Duration

	// ProbeCompletionCheckPeriod is how often the controller polls
	// workers for completion. Must be strictly less than
	// ProbeWaitAfterCancel.
	ProbeCompletionCheckPeriod time.Duration

	// ProbeWaitAfterCancel is how long the controller waits for
	// cancelled workers to finish before abandoning them.
	ProbeWaitAfterCancel time.Duration

	// SkewDeltaRangeCountThreshold is the minimum number of independent
	// skew-range estimations required for a concurrent skew result to be
	// trusted.
	SkewDeltaRangeCountThreshold uint64

	// SkewProbesPerCPU is the number of CAS-ordered probes collected on
	// each CPU when calculating a concurrent skew range.
	SkewProbesPerCPU uint64

	// MonotonicityProbesPerCPU is the number of CAS-ordered probes
	// collected on each CPU when evaluating concurrent monotonicity.
	MonotonicityProbesPerCPU uint64

	// FullLoopCountThreshold is the minimum number of non-overlapping
	// full loops required for a positive concurrent monotonicity verdict
	// to be trusted.
	FullLoopCountThreshold uint64

	// TSCPerSecSampleCount is the number of independent ticks-per-second
	// measurements taken during calibration.
	TSCPerSecSampleCount int

	// TimePeriodToMatchWithTSC is the window matched against a TSC delta
	// when measuring ticks per second.
	TimePeriodToMatchWithTSC time.Duration

	// TimeConversionModulus is the time horizon, in seconds, that governs
	// the accuracy budget of the multiply-shift conversion.
	TimeConversionModulus uint64
}

// DefaultConfig returns the tunables used by the original C library
// (wtmlib_config.h), translated into Go types.
func DefaultConfig() Config {
	return Config{
		CarouselSkewRounds:           100,
		CarouselMonotonicityRounds:   100,
		ProbeWaitTime:                300 * time.Second,
		ProbeCompletionCheckPeriod:   1 * time.Second,
		ProbeWaitAfterCancel:         10 * time.Second,
		SkewDeltaRangeCountThreshold: 10,
		SkewProbesPerCPU:             1000,
		MonotonicityProbesPerCPU:     1000,
		FullLoopCountThreshold:       10,
		TSCPerSecSampleCount:         30,
		TimePeriodToMatchWithTSC:     500 * time.Millisecond,
		TimeConversionModulus:        10,
	}
}
