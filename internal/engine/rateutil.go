package engine

import "math"

// rateRange is a closed-open numeric interval [lo, hi) over the scaled
// rate axis. Degenerate lo == hi is allowed and has length 0.
type rateRange [2]float64

func (r rateRange) length() float64 {
	return r[1] - r[0]
}

// intersect returns the overlap of a and b, or (zero, false) if they do
// not overlap.
func intersect(a, b rateRange) (rateRange, bool) {
	if a[0] > b[1] || a[1] < b[0] {
		return rateRange{}, false
	}
	return rateRange{math.Max(a[0], b[0]), math.Min(a[1], b[1])}, true
}

// intersectLength returns the length of the overlap of a and b, or 0 when
// they do not overlap.
func intersectLength(a, b rateRange) float64 {
	r, ok := intersect(a, b)
	if !ok {
		return 0
	}
	return r.length()
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// kahanSum accumulates terms using Neumaier's enhancement of Kahan
// summation: sum holds the running total and c holds the running
// compensation. value() returns the corrected total.
type kahanSum struct {
	sum float64
	c   float64
}

// add returns the result of accumulating cur into k.
func (k kahanSum) add(cur float64) kahanSum {
	t := k.sum + cur
	var c float64
	if math.Abs(k.sum) >= math.Abs(cur) {
		c = (k.sum - t) + cur
	} else {
		c = (cur - t) + k.sum
	}
	return kahanSum{sum: t, c: k.c + c}
}

// value returns the compensated total.
func (k kahanSum) value() float64 {
	return k.sum + k.c
}

// compensatedSum sums terms with Neumaier compensation.
func compensatedSum(terms []float64) float64 {
	var k kahanSum
	for _, t := range terms {
		k = k.add(t)
	}
	return k.value()
}

// compensatedPrefixSum returns prefix sums pfx where pfx[0] is the zero
// pair and pfx[i] is the compensated running total of terms[:i]. Ranges
// are recovered via prefixRangeSum, which subtracts both components to
// preserve compensation.
func compensatedPrefixSum(terms []float64) []kahanSum {
	pfx := make([]kahanSum, len(terms)+1)
	var k kahanSum
	pfx[0] = k
	for i, t := range terms {
		k = k.add(t)
		pfx[i+1] = k
	}
	return pfx
}

// prefixRangeSum returns the compensated sum of terms[lo:hi] given the
// prefix sums produced by compensatedPrefixSum.
func prefixRangeSum(pfx []kahanSum, lo, hi int) float64 {
	sum := pfx[hi].sum - pfx[lo].sum
	c := pfx[hi].c - pfx[lo].c
	return sum + c
}

// intCeil matches the reverse-engineered game's 32-bit float rounding: it
// is trunc(x + 0.99999), not ceil(x).
func intCeil(x float64) int {
	return int(math.Trunc(x + 0.99999))
}

// minRate returns the smallest scaled rate consistent with an observed
// price p at buy price b.
func minRate(p, buy float64) float64 {
	return RateMultiplier * (p - 0.99999) / buy
}

// maxRate returns the largest scaled rate consistent with an observed
// price p at buy price b.
func maxRate(p, buy float64) float64 {
	return RateMultiplier * (p + 0.00001) / buy
}

// predictedPrice converts a scaled rate back to a bin-ceiling price.
func predictedPrice(rate, buy float64) int {
	return intCeil(rate * buy / RateMultiplier)
}
