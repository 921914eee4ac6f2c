package engine

const m = RateMultiplier

// generateFluctuating enumerates Pattern 0 (FLUCTUATING): high1, dec1,
// high2, dec2, high3 phases over hidden dec1Len/high1Len/high3Len, each
// combination weighted by its uniform prior 1/(2*7*(7-high1Len)).
func generateFluctuating(obs [Slots]float64, buy float64, fudge int) []scenario {
	var out []scenario
	for dec1Len := 2; dec1Len <= 3; dec1Len++ {
		dec2Len := 5 - dec1Len
		for high1Len := 0; high1Len <= 6; high1Len++ {
			for high3Len := 0; high3Len <= 6-high1Len; high3Len++ {
				high2Len := 7 - high1Len - high3Len
				total := high1Len + dec1Len + high2Len + dec2Len + high3Len
				if total != 12 {
					panic("fluctuating: phase length invariant violated")
				}

				prior := 1.0 / (2 * 7 * float64(7-high1Len))
				c := newGenCtx(obs, buy, fudge)
				prob := prior
				slot := 2

				if high1Len > 0 {
					prob *= iidPhaseUniform(c, slot, high1Len, 0.9*m, 1.4*m)
					if prob == 0 {
						continue
					}
				}
				slot += high1Len

				prob *= decreasingPhase(c, slot, dec1Len, 0.6*m, 0.8*m, 0.04*m, 0.10*m)
				if prob == 0 {
					continue
				}
				slot += dec1Len

				if high2Len > 0 {
					prob *= iidPhaseUniform(c, slot, high2Len, 0.9*m, 1.4*m)
					if prob == 0 {
						continue
					}
				}
				slot += high2Len

				prob *= decreasingPhase(c, slot, dec2Len, 0.6*m, 0.8*m, 0.04*m, 0.10*m)
				if prob == 0 {
					continue
				}
				slot += dec2Len

				if high3Len > 0 {
					prob *= iidPhaseUniform(c, slot, high3Len, 0.9*m, 1.4*m)
					if prob == 0 {
						continue
					}
				}

				out = append(out, scenario{pattern: int(PatternFluctuating), prices: c.prices, prob: prob})
			}
		}
	}
	return out
}

// generateLargeSpike enumerates Pattern 1 (LARGE_SPIKE): a decay up to the
// hidden peakStart, five fixed-band spike slots, then a uniform fill,
// weighted by the uniform prior 1/7 over peakStart.
func generateLargeSpike(obs [Slots]float64, buy float64, fudge int) []scenario {
	var out []scenario
	for peakStart := 3; peakStart <= 9; peakStart++ {
		c := newGenCtx(obs, buy, fudge)
		prob := 1.0 / 7.0
		slot := 2

		decLen := peakStart - 2
		if decLen > 0 {
			prob *= decreasingPhase(c, slot, decLen, 0.85*m, 0.9*m, 0.03*m, 0.05*m)
			if prob == 0 {
				continue
			}
		}
		slot += decLen

		bands := []rateRange{
			{0.9 * m, 1.4 * m},
			{1.4 * m, 2.0 * m},
			{2.0 * m, 6.0 * m},
			{1.4 * m, 2.0 * m},
			{0.9 * m, 1.4 * m},
		}
		prob *= iidPhase(c, slot, bands)
		if prob == 0 {
			continue
		}
		slot += len(bands)

		fillLen := Slots - slot
		if fillLen > 0 {
			prob *= iidPhaseUniform(c, slot, fillLen, 0.4*m, 0.9*m)
			if prob == 0 {
				continue
			}
		}

		out = append(out, scenario{pattern: int(PatternLargeSpike), prices: c.prices, prob: prob})
	}
	return out
}

// generateDecreasing enumerates Pattern 2 (DECREASING): a single decay
// over slots 2..13. No hidden parameters.
func generateDecreasing(obs [Slots]float64, buy float64, fudge int) []scenario {
	c := newGenCtx(obs, buy, fudge)
	prob := decreasingPhase(c, 2, Slots-2, 0.85*m, 0.9*m, 0.03*m, 0.05*m)
	if prob == 0 {
		return nil
	}
	return []scenario{{pattern: int(PatternDecreasing), prices: c.prices, prob: prob}}
}

// generateSmallSpike enumerates Pattern 3 (SMALL_SPIKE): a decay up to the
// hidden peakStart, two i.i.d. slots, a three-slot peak, then an optional
// trailing decay, weighted by the uniform prior 1/8 over peakStart.
func generateSmallSpike(obs [Slots]float64, buy float64, fudge int) []scenario {
	var out []scenario
	for peakStart := 2; peakStart <= 9; peakStart++ {
		c := newGenCtx(obs, buy, fudge)
		prob := 1.0 / 8.0
		slot := 2

		decLen := peakStart - 2
		if decLen > 0 {
			prob *= decreasingPhase(c, slot, decLen, 0.4*m, 0.9*m, 0.03*m, 0.05*m)
			if prob == 0 {
				continue
			}
		}
		slot += decLen

		prob *= iidPhaseUniform(c, slot, 2, 0.9*m, 1.4*m)
		if prob == 0 {
			continue
		}
		slot += 2

		prob *= peakPhase(c, slot, 1.4*m, 2.0*m)
		if prob == 0 {
			continue
		}
		slot += 3

		secondLen := Slots - slot
		if secondLen > 0 {
			prob *= decreasingPhase(c, slot, secondLen, 0.4*m, 0.9*m, 0.03*m, 0.05*m)
			if prob == 0 {
				continue
			}
		}

		out = append(out, scenario{pattern: int(PatternSmallSpike), prices: c.prices, prob: prob})
	}
	return out
}

// patternGenerators is the lexicographic, pattern-index-ordered list of
// all four generators, used by the inference driver's pattern-mixing step.
var patternGenerators = [4]func([Slots]float64, float64, int) []scenario{
	generateFluctuating,
	generateLargeSpike,
	generateDecreasing,
	generateSmallSpike,
}
