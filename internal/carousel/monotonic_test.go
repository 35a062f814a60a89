package carousel_test

import (
	"testing"

	"github.com/randomizedcoder/wtmlib/internal/carousel"
)

func TestIsMonotonicTrue(t *testing.T) {
	// 2 CPUs, 3 rounds, plus closing sample on CPU 0.
	buf := [][]uint64{
		{1, 10, 20, 40}, // CPU 0, rounds+1
		{5, 15, 25},     // CPU 1, rounds
	}
	if !carousel.IsMonotonic(buf, 3) {
		t.Fatal("expected monotonic=true")
	}
}

func TestIsMonotonicFalseOnDecrease(t *testing.T) {
	buf := [][]uint64{
		{1, 10, 20, 40},
		{5, 3, 25}, // decreases from round 0 to round 1
	}
	if carousel.IsMonotonic(buf, 3) {
		t.Fatal("expected monotonic=false")
	}
}

func TestIsMonotonicFalseOnClosingSample(t *testing.T) {
	buf := [][]uint64{
		{1, 10, 20, 5}, // closing sample decreases
		{5, 15, 25},
	}
	if carousel.IsMonotonic(buf, 3) {
		t.Fatal("expected monotonic=false due to closing sample")
	}
}

func TestIsMonotonicSingleCPU(t *testing.T) {
	buf := [][]uint64{
		{1, 2},
	}
	if !carousel.IsMonotonic(buf, 1) {
		t.Fatal("expected monotonic=true for a single-CPU system")
	}
}
