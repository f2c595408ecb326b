package factors

import (
	"fmt"
	"strings"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/weighting"
)

// HomeAway filters the log to games at tonight's location type and scores
// hit rate (60%) plus average-vs-line (40%) on that split.
func HomeAway(fullLog []model.GameLogRow, market model.Market, line float64, tonightHome bool, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.HomeAway
	location := "Away"
	if tonightHome {
		location = "Home"
	}
	name := location + " Performance"

	if len(fullLog) == 0 {
		return neutral(name, weight, "No location data available.")
	}

	var filtered []model.WeightedRow
	for _, r := range model.SortLogByDateDesc(fullLog) {
		if r.Home() == tonightHome {
			filtered = append(filtered, model.WeightedRow{GameLogRow: r, Weight: 1.0})
		}
	}
	if len(filtered) == 0 {
		return neutral(name, weight, fmt.Sprintf("No %s game data available.", strings.ToLower(location)))
	}

	values := make([]float64, len(filtered))
	hitCount := 0
	sum := 0.0
	for i := range filtered {
		v := market.Value(&filtered[i].GameLogRow)
		values[i] = v
		if hit(v, line, side) {
			hitCount++
		}
		sum += v
	}
	hitRate := float64(hitCount) / float64(len(values))
	avg := sum / float64(len(values))

	avgScore := avgContribution(avg, line, side)
	score := round1(clamp((0.6*hitRate+0.4*avgScore)*100, 0.0, 100.0))

	effSample := weighting.EffectiveSample(filtered)
	confidence := weighting.Confidence(effSample, cfg.MinSample.HomeAway)

	shown := values
	if len(shown) > 10 {
		shown = shown[:10]
	}
	valsStr := make([]string, len(shown))
	for i, v := range shown {
		valsStr[i] = fmt.Sprintf("%.1f", v)
	}
	evidence := []string{
		fmt.Sprintf("%s games this season: %d/%d %s (line: %g)", location, hitCount, len(values), hitVerb(side), line),
		fmt.Sprintf("%s avg: %.1f", location, avg),
		"Values: " + strings.Join(valsStr, ", "),
	}
	if confidence < 1.0 {
		evidence = append(evidence, lowConfidenceNote(effSample, cfg.MinSample.HomeAway))
	}

	return model.FactorResult{
		Name:     name,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"values":   values,
			"avg":      avg,
			"hit_rate": hitRate,
			"location": location,
		},
		Confidence: confidence,
	}
}
