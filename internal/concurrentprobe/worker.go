package concurrentprobe

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/randomizedcoder/wtmlib/internal/affinity"
	"github.com/randomizedcoder/wtmlib/internal/cancel"
	"github.com/randomizedcoder/wtmlib/internal/tsc"
)

// workerArgs is the read-only (after construction) argument block handed
// to each worker goroutine. The seq and ready counters are non-owning
// back-references: their lifetime is the lifecycle controller's call
// frame, which outlives every worker by construction (it blocks until
// join or abandonment).
type workerArgs struct {
	cpu        int
	numWorkers int
	probes     int
	seq        *atomic.Uint64
	ready      *atomic.Int32
	canceler   cancel.Canceler
	store      *ProbeStore
}

// runWorker pins the calling goroutine's OS thread to its assigned CPU,
// rendezvouses with its siblings via the shared ready counter, then
// repeatedly reads an acquire-ordered seq_counter, fences, reads TSC, and
// publishes the probe via compare-and-swap — the algorithm in
// SPEC_FULL.md 4.7.
//
// It must run on its own locked OS thread: callers spawn it as
//
//	go func() {
//	    runtime.LockOSThread()
//	    defer runtime.UnlockOSThread()
//	    runWorker(...)
//	}()
func runWorker(args workerArgs) error {
	if err := affinity.Pin(args.cpu); err != nil {
		return fmt.Errorf("concurrentprobe: worker for CPU %d: %w", args.cpu, err)
	}

	args.ready.Add(1)
	for args.ready.Load() != int32(args.numWorkers) {
		runtime.Gosched()
	}

	for i := 0; i < args.probes; i++ {
		if args.canceler.Done() {
			return nil
		}

		for {
			s := args.seq.Load()
			t := tsc.ReadOrdered()
			if args.seq.CompareAndSwap(s, s+1) {
				args.store.Push(Probe{TSCVal: t, SeqNum: s})
				break
			}
		}
	}

	return nil
}
