package combined_test

import (
	"context"
	"testing"

	"github.com/randomizedcoder/wtmlib/internal/cancel"
	"github.com/randomizedcoder/wtmlib/internal/queue"
)

var sinkInt int
var sinkBool bool

// ============================================================================
// Combined cancel + probe-pipeline benchmarks
// ============================================================================
//
// The concurrent probe workers (internal/concurrentprobe) poll a shared
// AtomicCanceler in their hot loop and push probes into a per-CPU SPSC
// ring that the lifecycle controller drains once they have joined. These
// benchmarks measure each of the two primitives on its own, side by side
// with the baseline it was chosen over.

// BenchmarkCombined_CancelPoll_Standard measures a context-based
// cancellation check alone, the baseline internal/concurrentprobe did not
// choose for its hot loop.
func BenchmarkCombined_CancelPoll_Standard(b *testing.B) {
	ctx := cancel.NewContext(context.Background())
	b.ReportAllocs()
	b.ResetTimer()

	var cancelled bool
	for i := 0; i < b.N; i++ {
		cancelled = ctx.Done()
	}
	sinkBool = cancelled
}

// BenchmarkCombined_CancelPoll_Optimized measures the AtomicCanceler
// every concurrent probe worker actually polls between probes.
func BenchmarkCombined_CancelPoll_Optimized(b *testing.B) {
	c := cancel.NewAtomic()
	b.ReportAllocs()
	b.ResetTimer()

	var cancelled bool
	for i := 0; i < b.N; i++ {
		cancelled = c.Done()
	}
	sinkBool = cancelled
}

// ============================================================================
// Pipeline benchmarks (producer/consumer), mirroring ProbeStore's own
// single-producer/single-consumer usage: one CPU's worker pushes probes,
// the lifecycle controller drains them after join.
// ============================================================================

// BenchmarkPipeline_Channel benchmarks a 2-goroutine SPSC pipeline using
// buffered channels, the baseline ProbeStore did not choose.
func BenchmarkPipeline_Channel(b *testing.B) {
	q := queue.NewChannel[int](1024)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			default:
				q.Pop()
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for !q.Push(i) {
			// Spin until push succeeds
		}
	}

	b.StopTimer()
	close(done)
}

// BenchmarkPipeline_RingBuffer benchmarks a 2-goroutine SPSC pipeline
// using the lock-free ring buffer ProbeStore is built on.
func BenchmarkPipeline_RingBuffer(b *testing.B) {
	q := queue.NewRingBuffer[int](1024)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			default:
				q.Pop()
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for !q.Push(i) {
			// Spin until push succeeds
		}
	}

	b.StopTimer()
	close(done)
}
