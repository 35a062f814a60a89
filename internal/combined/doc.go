// Package combined benchmarks the cancellation, queueing, and ring-buffer
// primitives the concurrent probe workers (internal/concurrentprobe) are
// built on, each next to its baseline, and cross-checks the chosen SPSC
// ring against go-lock-free-ring's sharded MPSC design.
package combined
