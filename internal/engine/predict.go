package engine

import "sort"

// AnalyzePossibilities is the engine's entry point. Given a (possibly
// partial) week of observations, whether this is the player's first-ever
// participation, and the previous week's pattern (UnknownPattern if
// unknown), it enumerates every internally-consistent scenario, scores it
// against the observations, normalizes, aggregates, and ranks the result.
//
// The first element of the returned slice is always the synthetic ALL
// aggregate row.
func AnalyzePossibilities(obs [Slots]float64, firstBuy bool, previousPattern int) []PredictionResult {
	var scenarios []scenario
	for fudge := 0; fudge <= MaxFudgeFactor; fudge++ {
		scenarios = generateAll(obs, firstBuy, previousPattern, fudge)
		if len(scenarios) > 0 {
			break
		}
	}
	return finalize(scenarios)
}

// generateAll runs buy-price enumeration (when firstBuy or the buy slot is
// missing) followed by pattern mixing, at a fixed fudge factor.
func generateAll(obs [Slots]float64, firstBuy bool, previousPattern int, fudge int) []scenario {
	if firstBuy || IsMissing(obs[0]) {
		var out []scenario
		for buy := BuyPriceMin; buy <= BuyPriceMax; buy++ {
			candidate := obs
			candidate[0] = float64(buy)
			candidate[1] = float64(buy)
			if firstBuy {
				// First-week promotional constraint: ignores previousPattern
				// entirely and only Pattern 3 is generated, with no
				// transition-prior weighting (preserved verbatim per the
				// source's own first-buy branch).
				out = append(out, generateSmallSpike(candidate, float64(buy), fudge)...)
			} else {
				out = append(out, mixPatterns(candidate, float64(buy), fudge, previousPattern)...)
			}
		}
		return out
	}
	return mixPatterns(obs, obs[0], fudge, previousPattern)
}

// mixPatterns runs all four pattern generators and multiplies each yielded
// probability by the transition-prior row for previousPattern.
func mixPatterns(obs [Slots]float64, buy float64, fudge int, previousPattern int) []scenario {
	row := transitionRow(previousPattern)
	var out []scenario
	for i, gen := range patternGenerators {
		branch := gen(obs, buy, fudge)
		for j := range branch {
			branch[j].prob *= row[i]
		}
		out = append(out, branch...)
	}
	return out
}

// finalize normalizes, computes week aggregates and category totals,
// ranks, and prepends the synthetic ALL row.
func finalize(scenarios []scenario) []PredictionResult {
	if len(scenarios) == 0 {
		return []PredictionResult{aggregateRow(nil)}
	}

	var totalSum kahanSum
	for _, s := range scenarios {
		totalSum = totalSum.add(s.prob)
	}
	total := totalSum.value()
	if total == 0 {
		return []PredictionResult{aggregateRow(nil)}
	}

	results := make([]PredictionResult, len(scenarios))
	var catTotals [4]float64
	for i, s := range scenarios {
		p := s.prob / total
		gmin, gmax := weekAggregate(s.prices)
		results[i] = PredictionResult{
			PatternNumber:         s.pattern,
			PatternName:           Pattern(s.pattern).String(),
			Prices:                s.prices,
			Probability:           p,
			WeekGuaranteedMinimum: gmin,
			WeekMax:               gmax,
		}
		catTotals[s.pattern] += p
	}
	for i := range results {
		results[i].CategoryTotalProbability = catTotals[results[i].PatternNumber]
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CategoryTotalProbability != results[j].CategoryTotalProbability {
			return results[i].CategoryTotalProbability > results[j].CategoryTotalProbability
		}
		return results[i].Probability > results[j].Probability
	})

	out := make([]PredictionResult, 0, len(results)+1)
	out = append(out, aggregateRow(results))
	out = append(out, results...)
	return out
}

// weekAggregate walks prices[2:] collecting (min,max) pairs that are
// ranges (min != max); a scalar slot (min == max) appearing after any
// collected ranges discards them and restarts the walk, modeling "the
// player missed a day and the trailing prefix is stale". If no ranges
// survive, the final slot's (min,max) is used.
func weekAggregate(prices [Slots]MinMax) (int, int) {
	var mins, maxs []int
	for i := 2; i < Slots; i++ {
		mm := prices[i]
		if mm.Min != mm.Max {
			mins = append(mins, mm.Min)
			maxs = append(maxs, mm.Max)
			continue
		}
		if len(mins) > 0 {
			mins = nil
			maxs = nil
		}
	}
	if len(mins) == 0 {
		last := prices[Slots-1]
		return last.Min, last.Max
	}
	gmin, gmax := mins[0], maxs[0]
	for i := 1; i < len(mins); i++ {
		if mins[i] > gmin {
			gmin = mins[i]
		}
		if maxs[i] > gmax {
			gmax = maxs[i]
		}
	}
	return gmin, gmax
}

// aggregateRow builds the synthetic ALL row: per-slot min/max spanning
// every scenario, and week guaranteed-minimum/max spanning every
// scenario's own aggregate.
func aggregateRow(results []PredictionResult) PredictionResult {
	row := PredictionResult{PatternNumber: int(PatternAll), PatternName: PatternAll.String()}
	for i := 0; i < Slots; i++ {
		row.Prices[i] = MinMax{Min: 999, Max: 0}
	}
	if len(results) == 0 {
		for i := 0; i < Slots; i++ {
			row.Prices[i] = MinMax{}
		}
		return row
	}

	gmin, gmax := results[0].WeekGuaranteedMinimum, results[0].WeekMax
	for _, r := range results {
		for i := 0; i < Slots; i++ {
			if r.Prices[i].Min < row.Prices[i].Min {
				row.Prices[i].Min = r.Prices[i].Min
			}
			if r.Prices[i].Max > row.Prices[i].Max {
				row.Prices[i].Max = r.Prices[i].Max
			}
		}
		if r.WeekGuaranteedMinimum < gmin {
			gmin = r.WeekGuaranteedMinimum
		}
		if r.WeekMax > gmax {
			gmax = r.WeekMax
		}
	}
	row.WeekGuaranteedMinimum = gmin
	row.WeekMax = gmax
	return row
}
