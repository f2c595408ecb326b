package factors

import (
	"fmt"
	"math"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/weighting"
)

// SeasonAvg compares the season per-game average to the line, with role-change
// detection: when the rolling recent-window average diverges from the full
// season average by more than the configured threshold, the rolling average
// becomes the primary signal.
func SeasonAvg(fullLog []model.GameLogRow, market model.Market, line float64, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.SeasonAvg

	if len(fullLog) == 0 {
		return neutral(NameSeasonAvg, weight, "No season data available.")
	}

	sorted := model.SortLogByDateDesc(fullLog)
	gamesPlayed := len(sorted)

	fullAvg := 0.0
	for i := range sorted {
		fullAvg += market.Value(&sorted[i])
	}
	fullAvg /= float64(gamesPlayed)

	rolling := sorted
	if len(rolling) > cfg.RoleChangeWindow {
		rolling = rolling[:cfg.RoleChangeWindow]
	}
	rollingAvg := fullAvg
	if len(rolling) >= 5 {
		rollingAvg = 0.0
		for i := range rolling {
			rollingAvg += market.Value(&rolling[i])
		}
		rollingAvg /= float64(len(rolling))
	}

	roleChanged := false
	primaryAvg := fullAvg
	if fullAvg > 0 && math.Abs(rollingAvg-fullAvg)/fullAvg > cfg.RoleChangeThreshold {
		roleChanged = true
		primaryAvg = rollingAvg
	}

	var score float64
	switch {
	case line <= 0:
		score = neutralScore
	case side == model.SideUnder:
		if primaryAvg <= line {
			score = math.Min(100.0, 50.0+(line-primaryAvg)/line*100)
		} else {
			score = math.Max(0.0, 50.0-(primaryAvg-line)/line*100)
		}
	default:
		if primaryAvg >= line {
			score = math.Min(100.0, 50.0+(primaryAvg-line)/line*100)
		} else {
			score = math.Max(0.0, 50.0-(line-primaryAvg)/line*100)
		}
	}
	score = round1(score)

	confidence := weighting.Confidence(float64(gamesPlayed), cfg.MinSample.SeasonAvg)

	var verdict string
	if side == model.SideUnder {
		if primaryAvg <= line {
			verdict = fmt.Sprintf("✓ avg below line — favours UNDER (%.1f vs %g)", primaryAvg, line)
		} else {
			verdict = fmt.Sprintf("✗ avg above line — works against UNDER (%.1f vs %g)", primaryAvg, line)
		}
	} else {
		if primaryAvg >= line {
			verdict = fmt.Sprintf("✓ avg above line (%.1f vs %g)", primaryAvg, line)
		} else {
			verdict = fmt.Sprintf("✗ avg below line (%.1f vs %g)", primaryAvg, line)
		}
	}

	var evidence []string
	if roleChanged {
		evidence = append(evidence, fmt.Sprintf("Role change detected — season avg %.1f vs recent %.1f (using last %d games)",
			fullAvg, rollingAvg, cfg.RoleChangeWindow))
	}
	evidence = append(evidence,
		fmt.Sprintf("Season avg: %.1f (%d games) | Using: %.1f | Line: %g", fullAvg, gamesPlayed, primaryAvg, line),
		verdict,
	)
	if confidence < 1.0 {
		evidence = append(evidence, fmt.Sprintf("Low confidence — %d games played (need %d)", gamesPlayed, cfg.MinSample.SeasonAvg))
	}

	return model.FactorResult{
		Name:     NameSeasonAvg,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"full_season_avg": fullAvg,
			"rolling_avg":     rollingAvg,
			"primary_avg":     primaryAvg,
			"games_played":    gamesPlayed,
			"role_changed":    roleChanged,
		},
		Confidence: confidence,
	}
}
