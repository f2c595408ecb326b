package factors

import (
	"fmt"
	"strings"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/weighting"
)

// Consistency scores how reliably the player clears (or stays under) the line
// over the most recent games, capped at the configured recency window:
// recency-weighted hit rate (60%), floor/ceiling bound contribution (25%),
// weighted mean vs line (15%).
//
// OVER uses the floor (minimum value); UNDER uses the ceiling (maximum) with
// the symmetric bound and mean formulas.
func Consistency(rows []model.WeightedRow, market model.Market, line float64, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.Consistency

	if len(rows) == 0 {
		return neutral(NameConsistency, weight, "No game log data available.")
	}

	// Drop zero-weight rows; prefer non-OT games when enough remain.
	var valid []model.WeightedRow
	for _, r := range rows {
		if r.Weight > 0 {
			valid = append(valid, r)
		}
	}
	var nonOT []model.WeightedRow
	for _, r := range valid {
		if !r.Overtime {
			nonOT = append(nonOT, r)
		}
	}
	if len(nonOT) >= 5 {
		valid = nonOT
	}
	if len(valid) > len(cfg.RecencyWeights) {
		valid = valid[:len(cfg.RecencyWeights)]
	}
	if len(valid) == 0 {
		return neutral(NameConsistency, weight, "Insufficient data after context filtering.")
	}

	values := make([]float64, len(valid))
	for i := range valid {
		values[i] = market.Value(&valid[i].GameLogRow)
	}

	// Normalise the recency weights over however many games we have.
	recency := cfg.RecencyWeights
	if len(values) < len(recency) {
		recency = recency[:len(values)]
	}
	wSum := 0.0
	for _, w := range recency {
		wSum += w
	}

	var hitRate, weightedMean float64
	hitCount := 0
	for i, v := range values {
		w := recency[i] / wSum
		if hit(v, line, side) {
			hitRate += w
			hitCount++
		}
		weightedMean += w * v
	}

	// Bound contribution: floor vs line for OVER, ceiling vs line for UNDER.
	bound := values[0]
	for _, v := range values[1:] {
		if side == model.SideUnder {
			if v > bound {
				bound = v
			}
		} else if v < bound {
			bound = v
		}
	}
	var boundContrib float64
	switch {
	case line <= 0:
		boundContrib = 0.0
	case side == model.SideUnder:
		if bound <= line {
			boundContrib = 1.0
		} else {
			boundContrib = clamp(line/bound, 0.0, 1.0)
		}
	default:
		if bound >= line {
			boundContrib = 1.0
		} else {
			boundContrib = clamp(bound/line, 0.0, 1.0)
		}
	}

	meanContrib := avgContribution(weightedMean, line, side)

	score := round1(clamp((0.60*hitRate+0.25*boundContrib+0.15*meanContrib)*100.0, 0.0, 100.0))

	effSample := weighting.EffectiveSample(valid)
	confidence := weighting.Confidence(effSample, cfg.MinSample.Consistency)

	boundLabel := "Floor"
	boundVerdict := "above line"
	boundOK := bound >= line
	if side == model.SideUnder {
		boundLabel = "Ceiling"
		boundVerdict = "below line"
		boundOK = bound <= line
	}
	mark := "✗ not " + boundVerdict
	if boundOK {
		mark = "✓ " + boundVerdict
	}

	valsStr := make([]string, len(values))
	for i, v := range values {
		valsStr[i] = fmt.Sprintf("%.1f", v)
	}
	evidence := []string{
		fmt.Sprintf("Last %d games: %s", len(values), strings.Join(valsStr, ", ")),
		fmt.Sprintf("%d/%d %s %g (line)", hitCount, len(values), hitVerb(side), line),
		fmt.Sprintf("%s=%.1f %s", boundLabel, bound, mark),
		fmt.Sprintf("Weighted hit rate: %.0f%%", hitRate*100),
	}
	if confidence < 1.0 {
		evidence = append(evidence, lowConfidenceNote(effSample, cfg.MinSample.Consistency))
	}

	return model.FactorResult{
		Name:     NameConsistency,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"values":        values,
			"bound":         bound,
			"hit_rate":      hitRate,
			"hits":          hitCount,
			"total":         len(values),
			"weighted_mean": weightedMean,
		},
		Confidence: confidence,
	}
}

func hitVerb(side model.Side) string {
	if side == model.SideUnder {
		return "stayed below"
	}
	return "exceeded"
}
