package engine

import (
	"math"
	"testing"
)

func unconstrained() [Slots]float64 {
	var obs [Slots]float64
	for i := range obs {
		obs[i] = Missing()
	}
	obs[0], obs[1] = 100, 100
	return obs
}

func sumPriors(scenarios []scenario) float64 {
	var k kahanSum
	for _, s := range scenarios {
		k = k.add(s.prob)
	}
	return k.value()
}

func TestGenerateFluctuating_PriorsSumToOneWhenUnconstrained(t *testing.T) {
	s := generateFluctuating(unconstrained(), 100, 0)
	if got := sumPriors(s); math.Abs(got-1) > 1e-9 {
		t.Errorf("sum(prior) = %v, want ~1 (%d branches)", got, len(s))
	}
}

func TestGenerateLargeSpike_PriorsSumToOneWhenUnconstrained(t *testing.T) {
	s := generateLargeSpike(unconstrained(), 100, 0)
	if got := sumPriors(s); math.Abs(got-1) > 1e-9 {
		t.Errorf("sum(prior) = %v, want ~1 (%d branches)", got, len(s))
	}
}

func TestGenerateDecreasing_SingleScenarioNoHiddenParams(t *testing.T) {
	s := generateDecreasing(unconstrained(), 100, 0)
	if len(s) != 1 {
		t.Fatalf("len = %d, want 1", len(s))
	}
	if math.Abs(s[0].prob-1) > 1e-9 {
		t.Errorf("prob = %v, want ~1", s[0].prob)
	}
}

func TestGenerateSmallSpike_PriorsSumToOneWhenUnconstrained(t *testing.T) {
	s := generateSmallSpike(unconstrained(), 100, 0)
	if got := sumPriors(s); math.Abs(got-1) > 1e-9 {
		t.Errorf("sum(prior) = %v, want ~1 (%d branches)", got, len(s))
	}
}

func TestGenerateFluctuating_AllBranchesCoverAllSlots(t *testing.T) {
	for _, s := range generateFluctuating(unconstrained(), 100, 0) {
		for i, mm := range s.prices {
			if mm.Min > mm.Max {
				t.Fatalf("slot %d: min %d > max %d", i, mm.Min, mm.Max)
			}
		}
	}
}

func TestPeakPhase_RefutesOutOfRangeMiddleObservation(t *testing.T) {
	obs := unconstrained()
	obs[5] = 1 // far below any plausible peak-middle rate
	// A peak starting at slot 4 has its middle slot at 5.
	c := newGenCtx(obs, 100, 0)
	if got := peakPhase(c, 4, 1.4*m, 2.0*m); got != 0 {
		t.Fatalf("peakPhase with middle slot 5 = 1: prob = %v, want 0", got)
	}
}

func TestMixPatterns_AppliesTransitionRow(t *testing.T) {
	obs := unconstrained()
	branches := mixPatterns(obs, 100, 0, 0)
	row := transitionRow(0)
	var totals [4]float64
	for _, s := range branches {
		totals[s.pattern] += s.prob
	}
	for i := 0; i < 4; i++ {
		if math.Abs(totals[i]-row[i]) > 1e-6 {
			t.Errorf("pattern %d total = %v, want %v (transition row)", i, totals[i], row[i])
		}
	}
}

func TestMixPatterns_UnknownPreviousUsesSteadyState(t *testing.T) {
	obs := unconstrained()
	branches := mixPatterns(obs, 100, 0, UnknownPattern)
	var totals [4]float64
	for _, s := range branches {
		totals[s.pattern] += s.prob
	}
	want := steadyStateRow
	for i := 0; i < 4; i++ {
		if math.Abs(totals[i]-want[i]) > 1e-3 {
			t.Errorf("pattern %d total = %v, want ~%v", i, totals[i], want[i])
		}
	}
}
