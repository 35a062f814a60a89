// Command wtmdemo exercises all three top-level wtmlib operations and
// finishes with an accuracy check comparing the resulting conversion
// formula against the system clock over a short busy loop.
//
// Usage:
//
//	go run ./cmd/wtmdemo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/randomizedcoder/wtmlib"
	"github.com/randomizedcoder/wtmlib/internal/tsc"
)

const usecsToLoopFor = 2_547_291

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the three operations")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := wtmlib.DefaultConfig()

	fmt.Println("Evaluating TSC reliability (all needed data is collected using a " +
		"single thread \"jumping\" from one CPU to another)...")
	if reliability, err := wtmlib.EvalTSCReliabilityCPUSwitching(ctx, cfg); err != nil {
		printEvalFailure(err)
	} else {
		printReliability(reliability)
	}

	fmt.Println("Evaluating TSC reliability (all needed data is collected by " +
		"concurrently running goroutines; one goroutine per available CPU. " +
		"Measurements are sequentially ordered using CAS)...")
	if reliability, err := wtmlib.EvalTSCReliabilityCASOrderedProbes(ctx, cfg); err != nil {
		printEvalFailure(err)
	} else {
		printReliability(reliability)
	}

	fmt.Println("Getting TSC-to-nanoseconds conversion parameters...")
	calib, err := wtmlib.GetTSCToNsecConversionParams(ctx, cfg)
	if err != nil {
		printEvalFailure(err)
		os.Exit(0)
	}
	printCalibration(calib)

	runAccuracyCheck(calib.Params)
}

func printEvalFailure(err error) {
	fmt.Print("\tEvaluation failed. ")
	switch {
	case errors.Is(err, wtmlib.ErrTSCInconsistency):
		fmt.Printf("Major TSC inconsistency detected: %v\n\n", err)
	case errors.Is(err, wtmlib.ErrPoorStatistics):
		fmt.Printf("Statistical significance criteria are not met: %v\n\n", err)
	case errors.Is(err, wtmlib.ErrGenericFailure):
		fmt.Printf("%v\n\n", err)
	default:
		fmt.Printf("Unexpected error type: %v\n\n", err)
	}
}

func printReliability(r wtmlib.Reliability) {
	fmt.Printf("\tEstimated maximum shift between TSC counters running on different CPUs: %d\n", r.SkewRangeLength)
	monotonic := "DO NOT"
	if r.IsMonotonic {
		monotonic = "DO"
	}
	fmt.Printf("\tTSC values measured successively on same or different CPUs %s monotonically increase\n\n", monotonic)
}

func printCalibration(c wtmlib.Calibration) {
	fmt.Printf("\tNanoseconds per TSC modulus: %d\n", c.Params.NsecsPerTSCModulus)
	fmt.Printf("\tLength of TSC remainder in bits: %d\n", c.Params.TSCRemainderLength)
	fmt.Printf("\tBitmask used to extract TSC remainder: %016x\n", c.Params.TSCRemainderBitmask)
	fmt.Printf("\tMultiplicator: %d\n", c.Params.Mult)
	fmt.Printf("\tShift: %d\n", c.Params.Shift)
	fmt.Printf("\tTSC ticks per second: %d\n", c.Params.TSCTicksPerSec)
	fmt.Printf("\tSeconds before the earliest TSC wrap: %d\n\n", c.SecsBeforeWrap)
}

// runAccuracyCheck busy-loops for about usecsToLoopFor microseconds,
// timing the loop with both the system clock and a raw TSC delta, then
// reports what the conversion formula says the TSC delta is worth.
func runAccuracyCheck(params wtmlib.ConversionParams) {
	if !tsc.Supported() {
		fmt.Println("TSC not supported on this platform; skipping accuracy check.")
		return
	}

	fmt.Printf("Now looping for approximately %d microseconds and measuring "+
		"the elapsed time using both system and wtmlib means...\n", usecsToLoopFor)

	start := time.Now()
	startTSC := tsc.Read()

	var endTSC uint64
	for time.Since(start) < usecsToLoopFor*time.Microsecond {
		endTSC = tsc.Read()
	}
	elapsed := time.Since(start)

	if endTSC < startTSC {
		fmt.Println("\tError. End TSC value is smaller than start TSC value")
		return
	}

	fmt.Printf("\t%d nanoseconds passed according to the system clock\n", elapsed.Nanoseconds())
	fmt.Printf("\t%d nanoseconds passed according to wtmlib\n", params.TSCToNsec(endTSC-startTSC))
}
