package wtmlib_test

import (
	"testing"
	"time"

	"github.com/randomizedcoder/wtmlib"
)

func TestDefaultConfigCheckPeriodIsShorterThanWaitAfterCancel(t *testing.T) {
	cfg := wtmlib.DefaultConfig()
	if cfg.ProbeCompletionCheckPeriod >= cfg.ProbeWaitAfterCancel {
		t.Fatalf("check period (%s) must be strictly less than wait-after-cancel (%s)",
			cfg.ProbeCompletionCheckPeriod, cfg.ProbeWaitAfterCancel)
	}
}

func TestDefaultConfigPositiveDurations(t *testing.T) {
	cfg := wtmlib.DefaultConfig()
	durations := []time.Duration{
		cfg.ProbeWaitTime,
		cfg.ProbeCompletionCheckPeriod,
		cfg.ProbeWaitAfterCancel,
		cfg.TimePeriodToMatchWithTSC,
	}
	for _, d := range durations {
		if d <= 0 {
			t.Fatalf("expected a positive duration, got %s", d)
		}
	}
}

func TestDefaultConfigRoundCounts(t *testing.T) {
	cfg := wtmlib.DefaultConfig()
	if cfg.CarouselSkewRounds <= 0 || cfg.CarouselMonotonicityRounds <= 0 {
		t.Fatal("expected positive carousel round counts")
	}
	if cfg.TSCPerSecSampleCount <= 0 {
		t.Fatal("expected a positive calibration sample count")
	}
	if cfg.TimeConversionModulus == 0 {
		t.Fatal("expected a non-zero time-conversion modulus")
	}
}
