package wtmlib

// ConversionParams is the multiply-shift conversion table produced by
// calibration: the constants needed to turn a raw TSC tick delta into a
// nanosecond count without a division on the hot path.
type ConversionParams struct {
	// Mult is the multiplier applied to the remainder part of a tick
	// count.
	Mult uint64

	// Shift is the right-shift applied after multiplying the remainder
	// by Mult.
	Shift uint

	// TSCRemainderLength is the number of low bits of a tick count that
	// make up the "remainder" (the part smaller than one TSC modulus).
	TSCRemainderLength uint

	// TSCRemainderBitmask is (1 << TSCRemainderLength) - 1, used to
	// extract the remainder bits of a tick count.
	TSCRemainderBitmask uint64

	// NsecsPerTSCModulus is the nanosecond count corresponding to one
	// full TSC modulus (1 << TSCRemainderLength ticks).
	NsecsPerTSCModulus uint64

	// TSCTicksPerSec is the measured (denoised) TSC frequency the other
	// fields were derived from.
	TSCTicksPerSec uint64
}

// TSCToNsec converts a tick delta to a nanosecond count using only
// integer multiply, add, and shift. It does not allocate, lock, or make a
// system call, and is safe to call from any goroutine without
// synchronization.
//
// ns = (ticks >> L) * N + ((ticks & mask) * mult) >> shift
func (cp ConversionParams) TSCToNsec(ticks uint64) uint64 {
	whole := (ticks >> cp.TSCRemainderLength) * cp.NsecsPerTSCModulus
	remainder := ((ticks & cp.TSCRemainderBitmask) * cp.Mult) >> cp.Shift
	return whole + remainder
}
