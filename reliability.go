package wtmlib

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/randomizedcoder/wtmlib/internal/affinity"
	"github.com/randomizedcoder/wtmlib/internal/calibrate"
	"github.com/randomizedcoder/wtmlib/internal/carousel"
	"github.com/randomizedcoder/wtmlib/internal/concurrentprobe"
	"github.com/randomizedcoder/wtmlib/internal/tsc"
)

// EvalTSCReliabilityCPUSwitching evaluates TSC reliability by migrating
// one thread across CPUs in a fixed cyclic order (the "CPU-Switching"
// carousel): an enclosing skew range against a base CPU, and serial
// monotonicity across a full pass of all permitted CPUs.
func EvalTSCReliabilityCPUSwitching(ctx context.Context, cfg Config) (Reliability, error) {
	if !tsc.Supported() {
		return Reliability{}, fmt.Errorf("%w: %w", ErrGenericFailure, ErrTSCNotSupported)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	state, cpus, err := snapshotPermittedCPUs()
	if err != nil {
		return Reliability{}, err
	}

	result, err := func() (Reliability, error) {
		if err := ctx.Err(); err != nil {
			return Reliability{}, classify(err)
		}

		skewLen, err := serialEnclosingRange(cpus, state.InitialCPU, cfg.CarouselSkewRounds, state.CacheLineSize)
		if err != nil {
			return Reliability{}, classify(err)
		}

		isMonotonic, err := serialMonotonicity(cpus, cfg.CarouselMonotonicityRounds, state.CacheLineSize)
		if err != nil {
			return Reliability{}, classify(err)
		}

		return Reliability{SkewRangeLength: skewLen, IsMonotonic: isMonotonic}, nil
	}()

	// Always attempt to restore affinity, even when the core computation
	// already failed: unlike the original (which skips the restore step
	// on an early failure), leaving the calling goroutine's OS thread
	// pinned indefinitely is a worse failure mode than a second error.
	if rerr := affinity.Restore(state); rerr != nil && err == nil {
		return Reliability{}, fmt.Errorf("%w: couldn't restore initial process state: %v", ErrGenericFailure, rerr)
	}
	if err != nil {
		return Reliability{}, err
	}
	return result, nil
}

// serialEnclosingRange runs a 2-CPU carousel between the base CPU (the
// thread's initial CPU, matching wtmlib_EvalTSCReliabilityCPUSW's use of
// ps_state.initial_cpu) and every other permitted CPU, taking the union
// of each pairwise delta range's bounds as the final enclosing range.
func serialEnclosingRange(cpus []int, base, rounds, lineSize int) (int64, error) {
	if len(cpus) < 2 {
		// Nothing to compare the base CPU against; the shift is trivially
		// zero-width.
		return 0, nil
	}

	haveBound := false
	var lower, upper int64

	for _, other := range cpus {
		if other == base {
			continue
		}
		buf, err := carousel.Collect([]int{base, other}, rounds, lineSize)
		if err != nil {
			return 0, err
		}

		baseSamples := carousel.Samples(buf, 0, rounds)
		otherSamples := carousel.Samples(buf, 1, rounds)

		r, err := carousel.DeltaRange(baseSamples, otherSamples)
		if err != nil {
			return 0, err
		}

		if !haveBound || r.Min < lower {
			lower = r.Min
		}
		if !haveBound || r.Max > upper {
			upper = r.Max
		}
		haveBound = true
	}

	return upper - lower, nil
}

// serialMonotonicity runs one carousel across every permitted CPU and
// checks non-decrease across the whole pass.
func serialMonotonicity(cpus []int, rounds, lineSize int) (bool, error) {
	buf, err := carousel.Collect(cpus, rounds, lineSize)
	if err != nil {
		return false, err
	}

	rows := make([][]uint64, len(cpus))
	for c := range cpus {
		rows[c] = carousel.Samples(buf, c, rounds)
	}

	return carousel.IsMonotonic(rows, rounds), nil
}

// EvalTSCReliabilityCASOrderedProbes evaluates TSC reliability using one
// worker goroutine per CPU, coordinated via a shared CAS-incremented
// sequence counter instead of thread migration.
func EvalTSCReliabilityCASOrderedProbes(ctx context.Context, cfg Config) (Reliability, error) {
	if !tsc.Supported() {
		return Reliability{}, fmt.Errorf("%w: %w", ErrGenericFailure, ErrTSCNotSupported)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	state, cpus, err := snapshotPermittedCPUs()
	if err != nil {
		return Reliability{}, err
	}

	budgets := concurrentprobe.Budgets{
		WaitTime:              cfg.ProbeWaitTime,
		CompletionCheckPeriod: cfg.ProbeCompletionCheckPeriod,
		WaitAfterCancel:       cfg.ProbeWaitAfterCancel,
	}

	result, err := func() (Reliability, error) {
		if err := ctx.Err(); err != nil {
			return Reliability{}, classify(err)
		}

		skewLen, err := concurrentEnclosingRange(cpus, state.InitialCPU, int(cfg.SkewProbesPerCPU), cfg.SkewDeltaRangeCountThreshold, budgets)
		if err != nil {
			return Reliability{}, classify(err)
		}

		isMonotonic, err := concurrentMonotonicity(cpus, int(cfg.MonotonicityProbesPerCPU), cfg.FullLoopCountThreshold, budgets)
		if err != nil {
			return Reliability{}, classify(err)
		}

		return Reliability{SkewRangeLength: skewLen, IsMonotonic: isMonotonic}, nil
	}()

	if rerr := affinity.Restore(state); rerr != nil && err == nil {
		return Reliability{}, fmt.Errorf("%w: couldn't restore initial process state: %v", ErrGenericFailure, rerr)
	}
	if err != nil {
		return Reliability{}, err
	}
	return result, nil
}

func concurrentEnclosingRange(cpus []int, base, probesPerWorker int, threshold uint64, budgets concurrentprobe.Budgets) (int64, error) {
	if len(cpus) < 2 {
		return 0, nil
	}

	haveBound := false
	var lower, upper int64

	for _, other := range cpus {
		if other == base {
			continue
		}
		res, err := concurrentprobe.Collect([]int{base, other}, probesPerWorker, budgets)
		if err != nil {
			return 0, err
		}

		r, err := concurrentprobe.DeltaRange(res.PerCPU[0], res.PerCPU[1], threshold)
		if err != nil {
			return 0, err
		}

		if !haveBound || r.Min < lower {
			lower = r.Min
		}
		if !haveBound || r.Max > upper {
			upper = r.Max
		}
		haveBound = true
	}

	return upper - lower, nil
}

func concurrentMonotonicity(cpus []int, probesPerWorker int, fullLoopThreshold uint64, budgets concurrentprobe.Budgets) (bool, error) {
	res, err := concurrentprobe.Collect(cpus, probesPerWorker, budgets)
	if err != nil {
		return false, err
	}

	return monotonicVerdict(concurrentprobe.IsMonotonic(res.PerCPU), fullLoopThreshold)
}

// monotonicVerdict applies the statistical-significance gate only to a
// positive monotonicity verdict: a real decrease is conclusive regardless
// of how many full loops were observed before it, matching
// wtmlib_IsProbeSequenceMonotonic's `is_monotonic &&` gating.
func monotonicVerdict(mr concurrentprobe.MonotonicResult, fullLoopThreshold uint64) (bool, error) {
	if !mr.IsMonotonic {
		return false, nil
	}
	if err := concurrentprobe.CheckStatisticalSignificance(mr, fullLoopThreshold); err != nil {
		return false, err
	}
	return true, nil
}

// snapshotPermittedCPUs takes a process-state snapshot and resolves it
// to the ordered list of CPU indices the calling thread is permitted to
// run on.
func snapshotPermittedCPUs() (affinity.State, []int, error) {
	state, err := affinity.Snapshot()
	if err != nil {
		return affinity.State{}, nil, fmt.Errorf("%w: couldn't obtain process/system state: %v", ErrGenericFailure, err)
	}

	cpus := affinity.PermittedCPUs(state.InitialCPUSet, state.NumCPUs)
	if len(cpus) == 0 {
		return affinity.State{}, nil, fmt.Errorf("%w: no permitted CPUs reported", ErrGenericFailure)
	}
	return state, cpus, nil
}

// classify maps an internal error to the package's exported error
// taxonomy (SPEC_FULL.md 7).
func classify(err error) error {
	if err == nil {
		return nil
	}

	var inconsistent *carousel.ErrInconsistent
	if errors.As(err, &inconsistent) {
		return fmt.Errorf("%w: %v", ErrTSCInconsistency, err)
	}
	if concurrentprobe.IsPoorStatistics(err) {
		return fmt.Errorf("%w: %v", ErrPoorStatistics, err)
	}
	if errors.Is(err, calibrate.ErrInconsistent) {
		return fmt.Errorf("%w: %v", ErrTSCInconsistency, err)
	}

	return fmt.Errorf("%w: %v", ErrGenericFailure, err)
}
