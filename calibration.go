package wtmlib

import (
	"context"
	"fmt"
	"runtime"

	"github.com/randomizedcoder/wtmlib/internal/affinity"
	"github.com/randomizedcoder/wtmlib/internal/calibrate"
	"github.com/randomizedcoder/wtmlib/internal/tsc"
)

// GetTSCToNsecConversionParams measures the TSC's tick rate, denoises the
// measurement across several independent samples, builds the
// multiply-shift conversion table, and estimates how long remains before
// the counter of the permitted CPU holding the largest TSC value wraps.
func GetTSCToNsecConversionParams(ctx context.Context, cfg Config) (Calibration, error) {
	if !tsc.Supported() {
		return Calibration{}, fmt.Errorf("%w: %w", ErrGenericFailure, ErrTSCNotSupported)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	state, cpus, err := snapshotPermittedCPUs()
	if err != nil {
		return Calibration{}, err
	}

	result, err := func() (Calibration, error) {
		samples := make([]uint64, cfg.TSCPerSecSampleCount)
		for i := range samples {
			if err := ctx.Err(); err != nil {
				return Calibration{}, classify(err)
			}
			rate, err := calibrate.TSCPerSecond(cfg.TimePeriodToMatchWithTSC, tsc.ReadOrdered)
			if err != nil {
				return Calibration{}, classify(err)
			}
			samples[i] = rate
		}

		goldenRate := calibrate.FilteredAverage(samples)

		raw, err := calibrate.BuildConversionParams(goldenRate, cfg.TimeConversionModulus)
		if err != nil {
			return Calibration{}, classify(err)
		}

		params := ConversionParams{
			Mult:                raw.Mult,
			Shift:               raw.Shift,
			TSCRemainderLength:  raw.TSCRemainderLength,
			TSCRemainderBitmask: raw.TSCRemainderBitmask,
			NsecsPerTSCModulus:  raw.NsecsPerTSCModulus,
			TSCTicksPerSec:      goldenRate,
		}

		secsBeforeWrap, err := calibrate.EstimateWrapSeconds(cpus, affinity.Pin, tsc.Read,
			params.Mult, params.Shift, params.TSCRemainderLength, params.TSCRemainderBitmask, params.NsecsPerTSCModulus)
		if err != nil {
			return Calibration{}, classify(err)
		}

		return Calibration{Params: params, SecsBeforeWrap: secsBeforeWrap}, nil
	}()

	if rerr := affinity.Restore(state); rerr != nil && err == nil {
		return Calibration{}, fmt.Errorf("%w: couldn't restore initial process state: %v", ErrGenericFailure, rerr)
	}
	if err != nil {
		return Calibration{}, err
	}
	return result, nil
}
