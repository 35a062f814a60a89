package concurrentprobe

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/wtmlib/internal/cancel"
)

// Budgets groups the lifecycle controller's timing configuration.
type Budgets struct {
	WaitTime              time.Duration
	CompletionCheckPeriod time.Duration
	WaitAfterCancel       time.Duration
}

// Result is what a successful Collect call hands back to the skew and
// monotonicity analyzers: one drained, seq_num-ordered probe slice per
// CPU, in the same order as the cpus slice passed to Collect.
type Result struct {
	PerCPU [][]Probe
}

// Collect starts one worker per CPU in cpus, rendezvouses them, lets each
// collect probesPerWorker probes under a shared CAS-ordered sequence
// counter, and joins them within the given budgets. It implements
// SPEC_FULL.md 4.8 end to end.
func Collect(cpus []int, probesPerWorker int, budgets Budgets) (Result, error) {
	numWorkers := len(cpus)

	if numWorkers == 0 {
		return Result{}, fmt.Errorf("concurrentprobe: no CPUs to probe")
	}
	if probesPerWorker > 0 && uint64(numWorkers) > (^uint64(0))/uint64(probesPerWorker) {
		return Result{}, fmt.Errorf("concurrentprobe: num_workers * probes_per_worker overflows uint64")
	}

	var seq atomic.Uint64
	var ready atomic.Int32
	canceler := cancel.NewAtomic()

	stores := make([]*ProbeStore, numWorkers)
	for i := range stores {
		stores[i] = NewProbeStore(probesPerWorker)
	}

	done := make([]chan error, numWorkers)
	started := 0
	var startErr error

	for i, cpu := range cpus {
		done[i] = make(chan error, 1)
		args := workerArgs{
			cpu:        cpu,
			numWorkers: numWorkers,
			probes:     probesPerWorker,
			seq:        &seq,
			ready:      &ready,
			canceler:   canceler,
			store:      stores[i],
		}

		ch := done[i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					startErr = fmt.Errorf("concurrentprobe: panic starting worker for CPU %d: %v", cpu, r)
				}
			}()
			go func() {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				ch <- runWorker(args)
			}()
			started++
		}()

		if startErr != nil {
			break
		}
	}

	partialStart := started < numWorkers
	if partialStart {
		canceler.Cancel()
	}

	outcome := join(done[:started], budgets.WaitTime, budgets.CompletionCheckPeriod, false)

	if outcome.anyRunning() {
		canceler.Cancel()
		afterCancel := join(outcome.remaining, budgets.WaitAfterCancel, budgets.CompletionCheckPeriod, true)
		outcome.merge(afterCancel)
	}

	if partialStart || len(outcome.workerErrors) > 0 || len(outcome.notJoined) > 0 || len(outcome.detached) > 0 {
		return Result{}, fmt.Errorf("concurrentprobe: %s", describeFailure(started, numWorkers, outcome))
	}

	result := Result{PerCPU: make([][]Probe, numWorkers)}
	for i, s := range stores {
		result.PerCPU[i] = s.Drain()
	}
	return result, nil
}

type joinOutcome struct {
	remaining    []chan error
	workerErrors []error
	notJoined    []int
	detached     []int
}

func (o *joinOutcome) anyRunning() bool {
	return len(o.remaining) > 0
}

func (o *joinOutcome) merge(other joinOutcome) {
	o.remaining = other.remaining
	o.workerErrors = append(o.workerErrors, other.workerErrors...)
	o.notJoined = other.notJoined
	o.detached = append(o.detached, other.detached...)
}

// join polls the given done channels with a non-blocking try-join every
// checkPeriod, until budget elapses or everything has reported in.
// isSecondPass controls whether an unreported worker at the end is
// counted as "detached" (second pass) or left as "remaining" for the
// caller to decide whether to cancel and run a second pass. Cancellation
// itself is the caller's responsibility (Collect cancels before the
// second pass); join only ever waits and classifies.
func join(chans []chan error, budget, checkPeriod time.Duration, isSecondPass bool) joinOutcome {
	pending := make(map[int]chan error, len(chans))
	for i, ch := range chans {
		pending[i] = ch
	}

	deadline := time.Now().Add(budget)
	var out joinOutcome

	for len(pending) > 0 && time.Now().Before(deadline) {
		for i, ch := range pending {
			select {
			case err := <-ch:
				if err != nil {
					out.workerErrors = append(out.workerErrors, err)
				}
				delete(pending, i)
			default:
			}
		}
		if len(pending) == 0 {
			break
		}
		time.Sleep(checkPeriod)
	}

	for i, ch := range pending {
		if isSecondPass {
			out.detached = append(out.detached, i)
		} else {
			out.notJoined = append(out.notJoined, i)
			out.remaining = append(out.remaining, ch)
		}
	}

	return out
}

func describeFailure(started, total int, outcome joinOutcome) string {
	var b strings.Builder
	if started < total {
		fmt.Fprintf(&b, "only %d of %d workers started; ", started, total)
	}
	if len(outcome.workerErrors) > 0 {
		fmt.Fprintf(&b, "%d worker(s) reported errors; ", len(outcome.workerErrors))
	}
	if len(outcome.detached) > 0 {
		fmt.Fprintf(&b, "%d worker(s) did not finish after cancellation and were abandoned; ", len(outcome.detached))
	}
	if b.Len() == 0 {
		return "worker lifecycle failure"
	}
	return strings.TrimSuffix(b.String(), "; ")
}
