package engine

import "math"

// pdf is a piecewise-uniform discrete density over the integer partition
// [valueStart, valueStart+1), ..., [valueEnd-1, valueEnd) of the scaled
// rate axis. prob[i] is the probability mass in bin i. An invalid pdf
// (a refuted branch) has valueStart == valueEnd == 0 and an empty prob.
type pdf struct {
	valueStart int
	valueEnd   int
	prob       []float64
}

// invalidPDF returns the canonical "this branch is refuted" pdf.
func invalidPDF() pdf {
	return pdf{}
}

// newPDF constructs a pdf over [a, b]. When uniform is true, mass is
// spread uniformly over [a, b] across the integer bin partition; otherwise
// the same bins are returned zero-filled (no mass).
func newPDF(a, b float64, uniform bool) pdf {
	valueStart := int(math.Floor(a))
	valueEnd := int(math.Ceil(b))
	n := valueEnd - valueStart
	if n < 0 {
		n = 0
	}
	prob := make([]float64, n)
	if uniform {
		width := b - a
		full := rateRange{a, b}
		for i := 0; i < n; i++ {
			bin := rateRange{float64(valueStart + i), float64(valueStart + i + 1)}
			prob[i] = intersectLength(bin, full) / width
		}
	}
	return pdf{valueStart: valueStart, valueEnd: valueEnd, prob: prob}
}

// minValue and maxValue report the pdf's current support bounds.
func (p *pdf) minValue() float64 { return float64(p.valueStart) }
func (p *pdf) maxValue() float64 { return float64(p.valueEnd) }

// rangeLimit clips the pdf to r, renormalizes, and returns the probability
// mass that lay in r under the prior pdf (i.e. the sum before
// renormalization). A no-op call (r spanning the full support) returns 1
// and leaves prob unchanged up to rounding.
func (p *pdf) rangeLimit(r rateRange) float64 {
	start := math.Max(r[0], float64(p.valueStart))
	end := math.Min(r[1], float64(p.valueEnd))
	if start >= end {
		*p = invalidPDF()
		return 0
	}

	clipped := rateRange{start, end}
	startI := int(math.Floor(start))
	endI := int(math.Ceil(end))

	n := endI - startI
	newProb := make([]float64, n)
	var mass kahanSum
	for v := startI; v < endI; v++ {
		origIdx := v - p.valueStart
		var val float64
		if origIdx >= 0 && origIdx < len(p.prob) {
			val = p.prob[origIdx]
		}
		bin := rateRange{float64(v), float64(v + 1)}
		w := intersectLength(bin, clipped)
		m := val * w
		newProb[v-startI] = m
		mass = mass.add(m)
	}

	total := mass.value()
	if total != 0 {
		for i := range newProb {
			newProb[i] /= total
		}
	}

	p.valueStart = startI
	p.valueEnd = endI
	p.prob = newProb
	return total
}

// decay convolves the pdf with a uniform distribution on [min, max]
// (rounded to the nearest integer) and replaces the variable X with
// X - U[min,max]. Mass is preserved by construction; no renormalization
// is performed.
func (p *pdf) decay(min, max float64) {
	minR := int(math.Round(min))
	maxR := int(math.Round(max))
	maxY := maxR - minR

	if maxY == 0 {
		// Zero-width decay is a pure translation: leave prob unchanged.
		p.valueStart -= maxR
		p.valueEnd -= minR
		return
	}

	maxX := len(p.prob)
	pfx := compensatedPrefixSum(p.prob)

	newLen := maxX + maxY
	newProb := make([]float64, newLen)
	for i := 0; i < newLen; i++ {
		lo := i - maxY
		if lo < 0 {
			lo = 0
		}
		hi := i
		if hi > maxX-1 {
			hi = maxX - 1
		}
		if lo > hi {
			newProb[i] = 0
			continue
		}

		sum := prefixRangeSum(pfx, lo, hi+1)
		if lo == i-maxY {
			sum -= 0.5 * p.prob[lo]
		}
		if hi == i {
			sum -= 0.5 * p.prob[hi]
		}
		newProb[i] = sum / float64(maxY)
	}

	p.valueStart -= maxR
	p.valueEnd -= minR
	p.prob = newProb
}
