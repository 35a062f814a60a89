package calibrate

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// BuildConversionParams implements SPEC_FULL.md 4.13, matching spec.md's
// worked example (scenario 1): given a measured tick rate and a
// configured time-conversion modulus, derive the multiply-shift
// parameters used by ConversionParams.TSCToNsec.
//
// modulusSeconds is the time-conversion modulus: the horizon over which
// the multiply-shift approximation is guaranteed accurate. tscPerSec is
// the calibrated tick rate (see TSCPerSecond).
func BuildConversionParams(tscPerSec, modulusSeconds uint64) (params rawParams, err error) {
	if tscPerSec == 0 {
		return rawParams{}, fmt.Errorf("%w: zero tick rate", ErrInconsistent)
	}
	if modulusSeconds == 0 {
		return rawParams{}, fmt.Errorf("%w: zero time-conversion modulus", ErrInconsistent)
	}

	// Reject if M*tsc_per_sec itself overflows u64, before it's ever used
	// to compute a bound or a shift.
	hi, tscWorthOfModulus := bits.Mul64(tscPerSec, modulusSeconds)
	if hi != 0 {
		return rawParams{}, fmt.Errorf("%w: tscPerSec*modulusSeconds overflowed uint64", ErrInconsistent)
	}

	modulusNsec := modulusSeconds * 1_000_000_000

	multBound := math.MaxUint64 / tscWorthOfModulus

	// factor_bound = mult_bound*tsc_per_sec/1e9, carried in arbitrary
	// precision since mult_bound*tsc_per_sec can exceed uint64 range.
	factorBoundBig := new(big.Int).Mul(
		new(big.Int).SetUint64(multBound),
		new(big.Int).SetUint64(tscPerSec),
	)
	factorBoundBig.Div(factorBoundBig, big.NewInt(1_000_000_000))
	if !factorBoundBig.IsUint64() {
		return rawParams{}, fmt.Errorf("%w: factor bound overflowed uint64", ErrInconsistent)
	}
	factorBound := factorBoundBig.Uint64()

	shift := bits.Len64(factorBound) - 1
	factor := uint64(1) << uint(shift)

	// factor*modulusNsec can exceed uint64 range for large moduli; carry
	// the product in arbitrary precision and divide back down before
	// truncating to uint64.
	bigFactor := new(big.Int).SetUint64(factor)
	bigModulusNsec := new(big.Int).SetUint64(modulusNsec)
	bigTSCWorth := new(big.Int).SetUint64(tscWorthOfModulus)

	multBig := new(big.Int).Mul(bigFactor, bigModulusNsec)
	multBig.Div(multBig, bigTSCWorth)
	if !multBig.IsUint64() {
		return rawParams{}, fmt.Errorf("%w: multiply-shift parameter overflowed uint64", ErrInconsistent)
	}
	mult := multBig.Uint64()
	if mult > multBound {
		return rawParams{}, fmt.Errorf("%w: derived mult %d exceeds bound %d", ErrInconsistent, mult, multBound)
	}

	remainderLength := bits.Len64(tscWorthOfModulus) - 1
	tscModulus := uint64(1) << uint(remainderLength)
	remainderBitmask := tscModulus - 1

	nsecsBig := new(big.Int).Mul(new(big.Int).SetUint64(tscModulus), new(big.Int).SetUint64(mult))
	nsecsBig.Rsh(nsecsBig, uint(shift))
	if !nsecsBig.IsUint64() {
		return rawParams{}, fmt.Errorf("%w: nsecs-per-modulus overflowed uint64", ErrInconsistent)
	}

	return rawParams{
		Mult:               mult,
		Shift:              uint(shift),
		TSCRemainderLength: uint(remainderLength),
		TSCRemainderBitmask: remainderBitmask,
		NsecsPerTSCModulus: nsecsBig.Uint64(),
	}, nil
}

// rawParams mirrors the exported wtmlib.ConversionParams shape without
// importing the root package (which would create an import cycle since
// the root package calls into this one).
type rawParams struct {
	Mult                uint64
	Shift               uint
	TSCRemainderLength  uint
	TSCRemainderBitmask uint64
	NsecsPerTSCModulus  uint64
}
