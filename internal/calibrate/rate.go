// Package calibrate measures how fast the TSC ticks, denoises repeated
// measurements, builds the multiply-shift conversion parameters, and
// estimates time-to-wrap.
package calibrate

import (
	"errors"
	"fmt"
	"math"
	"time"
	_ "unsafe" // for go:linkname
)

//go:linkname nanotime runtime.nanotime
func nanotime() int64

// ErrInconsistent marks a TSC-inconsistency failure raised during
// calibration: a non-increasing TSC reading, or a delta too large to
// convert without overflow.
var ErrInconsistent = errors.New("calibrate: TSC inconsistency detected")

// TSCPerSecond measures how many TSC ticks occur during window,
// matching SPEC_FULL.md 4.11: read system time then TSC, loop until
// window has elapsed, and validate the TSC moved forward by a safe
// amount.
func TSCPerSecond(window time.Duration, readTSC func() uint64) (uint64, error) {
	t0 := nanotime()
	x0 := readTSC()

	var t1 int64
	var x1 uint64
	for {
		t1 = nanotime()
		x1 = readTSC()
		if t1-t0 >= window.Nanoseconds() {
			break
		}
	}

	if x1 <= x0 {
		return 0, fmt.Errorf("%w: TSC did not advance during the measurement window", ErrInconsistent)
	}
	delta := x1 - x0
	if delta > math.MaxUint64/1_000_000_000 {
		return 0, fmt.Errorf("%w: TSC delta too large to scale to ticks-per-second without overflow", ErrInconsistent)
	}

	elapsed := t1 - t0
	if elapsed <= 0 {
		return 0, fmt.Errorf("%w: non-positive elapsed time measured", ErrInconsistent)
	}

	return delta * 1_000_000_000 / uint64(elapsed), nil
}
