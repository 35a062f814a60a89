package concurrentprobe_test

import (
	"testing"

	"github.com/randomizedcoder/wtmlib/internal/concurrentprobe"
)

func TestIsMonotonicTrueWithFullLoops(t *testing.T) {
	// 3 CPUs, interleaved perfectly round-robin starting from CPU 0,
	// for enough rounds to exceed a small full-loop threshold.
	const cpus = 3
	const rounds = 5

	perCPU := make([][]concurrentprobe.Probe, cpus)
	tsc := uint64(1000)
	seq := uint64(0)
	for r := 0; r < rounds; r++ {
		for c := 0; c < cpus; c++ {
			perCPU[c] = append(perCPU[c], concurrentprobe.Probe{TSCVal: tsc, SeqNum: seq})
			tsc++
			seq++
		}
	}

	result := concurrentprobe.IsMonotonic(perCPU)
	if !result.IsMonotonic {
		t.Fatal("expected monotonic=true")
	}
	// The origin CPU (CPU 0, which produced seq_num=0) is visited once
	// per round; a full loop is the span between two consecutive visits
	// to it, so rounds visits yield rounds-1 complete loops.
	wantLoops := uint64(rounds - 1)
	if result.FullLoops != wantLoops {
		t.Fatalf("expected %d full loops, got %d", wantLoops, result.FullLoops)
	}
}

func TestIsMonotonicFalseOnDecrease(t *testing.T) {
	perCPU := [][]concurrentprobe.Probe{
		{{TSCVal: 100, SeqNum: 0}, {TSCVal: 50, SeqNum: 2}},
		{{TSCVal: 200, SeqNum: 1}, {TSCVal: 300, SeqNum: 3}},
	}

	result := concurrentprobe.IsMonotonic(perCPU)
	if result.IsMonotonic {
		t.Fatal("expected monotonic=false")
	}
}
