// Package concurrentprobe implements the CAS-Ordered-Probes reliability
// path: one worker per permitted CPU concurrently samples TSC while a
// shared atomic sequence counter imposes a total order across workers.
package concurrentprobe

// Probe is a single (tsc_val, seq_num) sample. seq_num is the value read
// from the shared sequence counter immediately before the TSC read that
// produced tsc_val; the counter is advanced by compare-and-swap, so no
// two probes across any worker can share a seq_num.
type Probe struct {
	TSCVal uint64
	SeqNum uint64
}
