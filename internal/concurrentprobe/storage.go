package concurrentprobe

import (
	"github.com/randomizedcoder/wtmlib/internal/queue"
)

// ProbeStore is the pre-allocated, SPSC probe buffer for one CPU's
// worker: the worker is the sole producer (Push), and the lifecycle
// controller is the sole consumer (Drain, called only after the worker
// has joined). Built directly on internal/queue.RingBuffer[Probe], which
// already carries the cache-line padding this component needs around its
// head/tail atomics.
type ProbeStore struct {
	ring *queue.RingBuffer[Probe]
}

// NewProbeStore allocates a store with room for at least capacity
// probes (rounded up to a power of 2 by RingBuffer).
func NewProbeStore(capacity int) *ProbeStore {
	return &ProbeStore{ring: queue.NewRingBuffer[Probe](capacity)}
}

// Push records a probe. Called only by the CPU's own worker goroutine.
func (s *ProbeStore) Push(p Probe) bool {
	return s.ring.Push(p)
}

// Drain removes and returns every probe currently stored, in FIFO
// (and therefore seq_num) order. Called only after the producing worker
// has joined.
func (s *ProbeStore) Drain() []Probe {
	out := make([]Probe, 0, s.ring.Len())
	for {
		p, ok := s.ring.Pop()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}
