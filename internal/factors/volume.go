package factors

import (
	"fmt"
	"math"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

// Volume measures whether a player's minutes and usage support the line:
// minutes trend (40%) blended with a market-specific usage rate (60%):
// FGA rate for scoring markets, 3PA rate for the threes market, assists per
// 36 minutes for assist markets, minutes only otherwise.
//
// The UNDER score is 100 minus the OVER score: low volume means fewer
// chances to exceed the line.
func Volume(fullLog []model.GameLogRow, market model.Market, line float64, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.Volume

	if len(fullLog) == 0 {
		return neutral(NameVolume, weight, "No game log data — volume context unavailable")
	}

	sorted := model.SortLogByDateDesc(fullLog)
	evidence := []string{}

	// Minutes trend (40%): recent-5-game MPG scored on an absolute scale,
	// penalised when clearly below the season average.
	recentMPG := meanMinutes(sorted, 5)
	seasonMPG := meanMinutes(sorted, len(sorted))

	mpgScore := clamp((recentMPG-15.0)*5.0, 15.0, 100.0)
	declining := seasonMPG > 0 && recentMPG < seasonMPG*0.85
	if declining {
		mpgScore *= 0.80
	}
	trend := ""
	if declining {
		trend = " ↓ (declining)"
	}
	evidence = append(evidence, fmt.Sprintf("Recent MPG: %.1f (season avg: %.1f)%s", recentMPG, seasonMPG, trend))

	// Usage rate (60%), market-specific. Defaults to the minutes score for
	// markets without a sharper metric.
	usageScore := mpgScore
	switch {
	case market.ScoringMarket():
		fga := meanOver(sorted, 10, func(r *model.GameLogRow) float64 { return r.FGA })
		usageScore = clamp(fga/15.0*80.0, 10.0, 100.0)
		evidence = append(evidence, fmt.Sprintf("FGA rate (last 10 games): %.1f/game", fga))
	case market == model.MarketThrees:
		fg3a := meanOver(sorted, 10, func(r *model.GameLogRow) float64 { return r.FG3A })
		usageScore = clamp(fg3a/6.0*80.0, 10.0, 100.0)
		evidence = append(evidence, fmt.Sprintf("3PA rate (last 10 games): %.1f/game", fg3a))
	case market.AssistMarket():
		astRecent := meanOver(sorted, 10, func(r *model.GameLogRow) float64 { return r.Assists })
		minRecent := meanMinutes(sorted, 10)
		if minRecent > 0 {
			astPer36 := astRecent / minRecent * 36.0
			usageScore = clamp(astPer36/8.0*80.0, 10.0, 100.0)
			evidence = append(evidence, fmt.Sprintf("AST per 36 min: %.1f (recent avg %.1f AST in %.0f MPG)", astPer36, astRecent, minRecent))
		} else {
			evidence = append(evidence, "AST rate unavailable (no minutes data)")
		}
	}

	overScore := round1(clamp(0.40*mpgScore+0.60*usageScore, 0.0, 100.0))
	score := overScore
	if side == model.SideUnder {
		score = round1(100.0 - overScore)
		evidence = append(evidence, "Low volume favours UNDER — high minutes/usage would work against it")
	}

	confidence := math.Min(1.0, float64(len(sorted))/10.0)

	return model.FactorResult{
		Name:     NameVolume,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"recent_mpg":  recentMPG,
			"season_mpg":  seasonMPG,
			"mpg_score":   round1(mpgScore),
			"usage_score": round1(usageScore),
			"side":        string(side),
		},
		Confidence: confidence,
	}
}

func meanMinutes(rows []model.GameLogRow, n int) float64 {
	return meanOver(rows, n, func(r *model.GameLogRow) float64 { return r.Minutes })
}

func meanOver(rows []model.GameLogRow, n int, extract func(*model.GameLogRow) float64) float64 {
	if len(rows) == 0 {
		return 0.0
	}
	if n > len(rows) {
		n = len(rows)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += extract(&rows[i])
	}
	return sum / float64(n)
}
