package factors

import (
	"fmt"
	"math"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

// BlowoutInputs are the game-level signals feeding the blowout-risk factor.
type BlowoutInputs struct {
	Spread         float64 // absolute point spread
	HasSpread      bool
	H2HAvgMargin   float64
	TeamWinMargin  float64 // player team's average winning margin
	TeamIsFavorite bool
	IsStarter      bool
}

// Blowout estimates the risk that this game gets out of hand early and
// starters sit. Risk combines spread (50%), H2H margin history (30%) and
// team scoring-margin style (20%), each normalised by the spread constant.
//
// OVER loses score above the risk cutoff via a role/market-specific penalty.
// UNDER is not a mirror: its score rises linearly with risk from a 50
// baseline, keeping zero risk at the neutral point.
func Blowout(in BlowoutInputs, market model.Market, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.BlowoutRisk
	bc := cfg.Blowout

	if !in.HasSpread && in.H2HAvgMargin == 0 {
		return neutral(NameBlowout, weight, "Spread unavailable — blowout risk unknown, using neutral score")
	}

	evidence := []string{}

	spreadAbs := 0.0
	if in.HasSpread {
		spreadAbs = math.Abs(in.Spread)
	}
	spreadRisk := math.Min(1.0, spreadAbs/bc.SpreadNormaliser)
	h2hRisk := math.Min(1.0, math.Abs(in.H2HAvgMargin)/bc.SpreadNormaliser)
	styleRisk := math.Min(1.0, math.Max(0.0, in.TeamWinMargin)/bc.SpreadNormaliser)
	if in.TeamWinMargin > 0 {
		evidence = append(evidence, fmt.Sprintf("Team avg win margin: +%.1f", in.TeamWinMargin))
	}

	risk := 0.50*spreadRisk + 0.30*h2hRisk + 0.20*styleRisk

	if in.HasSpread {
		evidence = append(evidence, fmt.Sprintf("Spread: %+.1f → spread risk: %.0f%%", in.Spread, spreadRisk*100))
	} else {
		evidence = append(evidence, "Spread unavailable — using H2H and team style only")
	}
	evidence = append(evidence,
		fmt.Sprintf("H2H avg margin: %+.1f → H2H risk: %.0f%%", in.H2HAvgMargin, h2hRisk*100),
		fmt.Sprintf("Combined blowout risk: %.0f%%", risk*100),
	)

	var score float64
	penaltyApplied := risk > bc.RiskCutoff
	if penaltyApplied {
		var penalty float64
		var role string
		switch {
		case market.NonCounting():
			penalty = bc.PenaltyNonCounting
			role = "non-counting"
		case !in.IsStarter:
			penalty = bc.PenaltyBench
			role = "bench"
		case in.TeamIsFavorite:
			penalty = bc.PenaltyFavorite
			role = "starter"
		default:
			penalty = bc.PenaltyUnderdog
			role = "starter"
		}
		score = round1((1.0 - penalty) * 100)
		evidence = append(evidence, fmt.Sprintf("⚠️ High blowout risk (%.0f%%) — %s penalty: -%.0f%%", risk*100, role, penalty*100))
	} else {
		score = round1((1.0 - risk*0.3) * 100) // mild penalty at low risk
		evidence = append(evidence, fmt.Sprintf("Blowout risk within acceptable range (%.0f%%)", risk*100))
	}

	if side == model.SideUnder {
		score = round1(math.Min(100.0, 50.0+risk*40.0))
		evidence = append(evidence, fmt.Sprintf("UNDER: blowout risk %.0f%% → favours UNDER (starters may sit early, fewer stats)", risk*100))
	}

	return model.FactorResult{
		Name:     NameBlowout,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"blowout_risk":    risk,
			"spread":          in.Spread,
			"has_spread":      in.HasSpread,
			"h2h_avg_margin":  in.H2HAvgMargin,
			"penalty_applied": penaltyApplied,
		},
		Confidence: 1.0,
	}
}
