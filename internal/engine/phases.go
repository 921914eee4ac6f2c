package engine

import "math"

// genCtx is the shared, per-scenario state threaded through the phase
// generators of a single pattern branch: the observation vector, the
// hypothesized buy price, the current fudge factor, and the price
// envelope buffer being built up slot by slot.
type genCtx struct {
	obs    [Slots]float64
	buy    float64
	fudge  int
	prices [Slots]MinMax
}

// newGenCtx seeds slots 0 and 1 (the buy price) and returns a fresh
// per-branch context.
func newGenCtx(obs [Slots]float64, buy float64, fudge int) *genCtx {
	c := &genCtx{obs: obs, buy: buy, fudge: fudge}
	b := int(buy)
	c.prices[0] = MinMax{b, b}
	c.prices[1] = MinMax{b, b}
	return c
}

// accepts reports whether observation p is within the fudge-widened
// envelope [minPred-F, maxPred+F].
func (c *genCtx) accepts(p float64, minPred, maxPred int) bool {
	f := float64(c.fudge)
	return float64(minPred)-f <= p && p <= float64(maxPred)+f
}

// iidPhase models `length(bands)` consecutive i.i.d.-uniform slots
// starting at start, each with its own scaled rate band. It returns the
// branch's multiplicative probability contribution (0 means refuted).
func iidPhase(c *genCtx, start int, bands []rateRange) float64 {
	prob := 1.0
	for i, band := range bands {
		slot := start + i
		obsP := c.obs[slot]
		minPred := predictedPrice(band[0], c.buy)
		maxPred := predictedPrice(band[1], c.buy)

		if IsMissing(obsP) {
			c.prices[slot] = MinMax{minPred, maxPred}
			continue
		}

		if !c.accepts(obsP, minPred, maxPred) {
			return 0
		}
		clamped := clamp(obsP, float64(minPred), float64(maxPred))
		real := rateRange{minRate(clamped, c.buy), maxRate(clamped, c.buy)}
		prob *= intersectLength(band, real) / band.length()
		if prob == 0 {
			return 0
		}
		c.prices[slot] = MinMax{int(obsP), int(obsP)}
	}
	return prob
}

// iidPhaseUniform is iidPhase with the same rate band repeated over
// `length` consecutive slots.
func iidPhaseUniform(c *genCtx, start, length int, rateMin, rateMax float64) float64 {
	bands := make([]rateRange, length)
	for i := range bands {
		bands[i] = rateRange{rateMin, rateMax}
	}
	return iidPhase(c, start, bands)
}

// decreasingPhase models a correlated decay: an initial rate drawn
// uniformly from [startRateMin, startRateMax], then at each of `length`
// consecutive slots starting at start, emits a price and subtracts a
// uniform decrement from [decayMin, decayMax] (all scaled rates).
func decreasingPhase(c *genCtx, start, length int, startRateMin, startRateMax, decayMin, decayMax float64) float64 {
	p := newPDF(startRateMin, startRateMax, true)
	prob := 1.0
	for i := 0; i < length; i++ {
		slot := start + i
		envMin, envMax := p.minValue(), p.maxValue()
		minPred := predictedPrice(envMin, c.buy)
		maxPred := predictedPrice(envMax, c.buy)

		obsP := c.obs[slot]
		if IsMissing(obsP) {
			c.prices[slot] = MinMax{minPred, maxPred}
		} else {
			if !c.accepts(obsP, minPred, maxPred) {
				return 0
			}
			clamped := clamp(obsP, float64(minPred), float64(maxPred))
			real := rateRange{minRate(clamped, c.buy), maxRate(clamped, c.buy)}
			prob *= p.rangeLimit(real)
			if prob == 0 {
				return 0
			}
			c.prices[slot] = MinMax{int(obsP), int(obsP)}
		}
		p.decay(decayMin, decayMax)
	}
	return prob
}

// peakPhase models the three-slot nested-uniform "peak" structure
// occupying slots [start, start+1, start+2], with outer rate range
// [rateMin, rateMax] (scaled): the middle slot draws the outer rate
// directly, the two flanking slots each draw uniformly between rateMin
// and the middle's realized rate.
func peakPhase(c *genCtx, start int, rateMin, rateMax float64) float64 {
	midSlot := start + 1
	leftSlot := start
	rightSlot := start + 2

	outer := rateRange{rateMin, rateMax}
	narrowed := outer
	prob := 1.0

	midObs := c.obs[midSlot]
	if !IsMissing(midObs) {
		minPred := predictedPrice(outer[0], c.buy)
		maxPred := predictedPrice(outer[1], c.buy)
		if !c.accepts(midObs, minPred, maxPred) {
			return 0
		}
		clamped := clamp(midObs, float64(minPred), float64(maxPred))
		real := rateRange{minRate(clamped, c.buy), maxRate(clamped, c.buy)}
		prob *= intersectLength(outer, real) / outer.length()
		if prob == 0 {
			return 0
		}
		nr, ok := intersect(outer, real)
		if !ok {
			return 0
		}
		narrowed = nr
	}

	cConst := rateMin
	a, b := narrowed[0], narrowed[1]
	z1 := a - cConst
	z2 := b - cConst

	// F(t, Z) per spec.md §4.4.3: the CDF-like helper for the nested
	// uniform-on-uniform peak distribution.
	fFunc := func(t, z float64) float64 {
		if t <= 0 {
			return 0
		}
		if z < t {
			return z
		}
		return t - t*(math.Log(t)-math.Log(z))
	}
	pY := func(t float64) float64 {
		if z2 == z1 {
			return 0
		}
		return (fFunc(t-cConst, z2) - fFunc(t-cConst, z1)) / (z2 - z1)
	}

	for _, slot := range [2]int{leftSlot, rightSlot} {
		obsP := c.obs[slot]
		if IsMissing(obsP) {
			continue
		}
		minPred := predictedPrice(rateMin, c.buy) - 1
		maxPred := predictedPrice(rateMax, c.buy) - 1
		if !c.accepts(obsP, minPred, maxPred) {
			return 0
		}
		clamped := clamp(obsP, float64(minPred), float64(maxPred))
		adjusted := clamped + 1 // inverts the -1 applied during price emission
		rate2 := rateRange{minRate(adjusted, c.buy), maxRate(adjusted, c.buy)}
		contribution := pY(rate2[1]) - pY(rate2[0])
		prob *= contribution
		if prob <= 0 {
			return 0
		}
	}

	leftMM := c.prices[leftSlot]
	if !IsMissing(c.obs[leftSlot]) {
		v := int(c.obs[leftSlot])
		leftMM = MinMax{v, v}
	} else {
		leftMM = MinMax{predictedPrice(rateMin, c.buy) - 1, predictedPrice(rateMax, c.buy) - 1}
	}
	c.prices[leftSlot] = leftMM

	var midMM MinMax
	if !IsMissing(midObs) {
		v := int(midObs)
		midMM = MinMax{v, v}
	} else {
		midMM = MinMax{leftMM.Min, predictedPrice(rateMax, c.buy)}
	}
	c.prices[midSlot] = midMM

	var rightMM MinMax
	if !IsMissing(c.obs[rightSlot]) {
		v := int(c.obs[rightSlot])
		rightMM = MinMax{v, v}
	} else {
		rightMM = MinMax{predictedPrice(rateMin, c.buy) - 1, midMM.Max - 1}
	}
	c.prices[rightSlot] = rightMM

	return prob
}
