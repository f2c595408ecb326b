package grader

import (
	"fmt"
	"math"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

const neutralScore = 50.0

// CompositeScore reduces factor results into one 0–100 value score. Each
// factor's score is first pulled toward the neutral midpoint in proportion to
// (1 − confidence), so a factor with no data contributes exactly the neutral
// value instead of biasing the composite.
func CompositeScore(results []model.FactorResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var total, totalWeight float64
	for _, f := range results {
		effective := f.Score*f.Confidence + neutralScore*(1-f.Confidence)
		total += effective * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	return math.Round(total/totalWeight*10) / 10
}

// Recommendation thresholds, descending. The first threshold the score meets
// or exceeds wins.
var recommendationTable = []struct {
	Threshold float64
	Label     string
}{
	{80.0, model.StrongValue},
	{65.0, model.GoodValue},
	{50.0, model.MarginalValue},
	{0.0, model.PoorValue},
}

// Recommend maps a value score to its recommendation label.
func Recommend(score float64) string {
	for _, r := range recommendationTable {
		if score >= r.Threshold {
			return r.Label
		}
	}
	return model.PoorValue
}

// DetectSuspiciousLine flags lines that sit far from the season average in
// either direction: far below looks like a trap the book expects action on,
// far above is unusually hard. No flag when either input is non-positive.
func DetectSuspiciousLine(line, seasonAvg float64, cfg *config.Config) (bool, string) {
	if seasonAvg <= 0 || line <= 0 {
		return false, ""
	}

	diffPct := (seasonAvg - line) / line

	if diffPct > cfg.SuspiciousEasy {
		return true, fmt.Sprintf(
			"Line (%g) is %.0f%% below season avg (%.1f) — may be a trap line, verify manually",
			line, diffPct*100, seasonAvg)
	}
	if diffPct < -cfg.SuspiciousHard {
		return true, fmt.Sprintf(
			"Line (%g) is %.0f%% above season avg (%.1f) — unusually high, verify manually",
			line, -diffPct*100, seasonAvg)
	}
	return false, ""
}
