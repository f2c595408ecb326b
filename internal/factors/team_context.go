package factors

import (
	"fmt"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

// TeamContext scores the team situation around tonight's game: recent W/L
// form blended with league pace rank and a rest/fatigue adjustment.
//
// Pace inverts for UNDER (slow pace means fewer possessions, which favours
// the under); fatigue is a bonus for UNDER and a penalty for OVER, extra rest
// the reverse.
func TeamContext(form model.TeamForm, pace model.PaceRank, side model.Side, cfg *config.Config) model.FactorResult {
	weight := cfg.Weights.TeamContext

	evidence := []string{}
	score := neutralScore

	total := form.Wins + form.Losses
	if total > 0 {
		formScore := float64(form.Wins) / float64(total) * 100
		score = 0.5*score + 0.5*formScore
		evidence = append(evidence, fmt.Sprintf("Recent form: %dW-%dL (last %d games), streak: %s",
			form.Wins, form.Losses, total, form.Streak))
	} else {
		evidence = append(evidence, "Recent form: no data")
	}

	if pace.Valid {
		const nTeams = 30
		paceLabel := "slow"
		if pace.Rank <= 10 {
			paceLabel = "fast"
		} else if pace.Rank <= 20 {
			paceLabel = "mid"
		}
		// Rank 1 = fastest → near 100 for OVER; rank 30 = slowest → near 0.
		overPaceScore := float64(nTeams-pace.Rank) / float64(nTeams-1) * 100
		paceScore := overPaceScore
		note := ""
		if side == model.SideUnder {
			paceScore = 100.0 - overPaceScore
			if pace.Rank > 20 {
				note = " — slow pace favours UNDER"
			}
		}
		evidence = append(evidence, fmt.Sprintf("Pace: %.1f (rank %d/30 — %s)%s", pace.Pace, pace.Rank, paceLabel, note))
		score = 0.6*score + 0.4*paceScore
	} else {
		evidence = append(evidence, "Pace data unavailable")
	}

	switch {
	case form.BackToBack:
		if side == model.SideUnder {
			score = clamp(score*1.10, 0, 100)
			evidence = append(evidence, "B2B tonight — fatigue favours UNDER (fewer stat opportunities)")
		} else {
			score *= 0.85
			evidence = append(evidence, "⚠️ Playing on back-to-back (rest penalty applied)")
		}
	case form.GamesInLast4 >= 3:
		if side == model.SideUnder {
			score = clamp(score*1.05, 0, 100)
			evidence = append(evidence, fmt.Sprintf("Heavy schedule (%d games in 4 nights) — slight UNDER boost", form.GamesInLast4))
		} else {
			score *= 0.90
			evidence = append(evidence, fmt.Sprintf("⚠️ Heavy schedule (%d games in 4 nights) — fatigue penalty", form.GamesInLast4))
		}
	case form.RestDays >= 2:
		if side == model.SideOver {
			score = clamp(score*1.05, 0, 100)
			evidence = append(evidence, fmt.Sprintf("Well-rested (%d days off) — slight OVER boost", form.RestDays))
		} else {
			score *= 0.95
			evidence = append(evidence, fmt.Sprintf("Well-rested (%d days off) — slightly works against UNDER", form.RestDays))
		}
	default:
		plural := "s"
		if form.RestDays == 1 {
			plural = ""
		}
		evidence = append(evidence, fmt.Sprintf("Normal rest (%d day%s off) ✓", form.RestDays, plural))
	}

	score = round1(clamp(score, 0.0, 100.0))

	return model.FactorResult{
		Name:     NameTeamContext,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"wins":            form.Wins,
			"losses":          form.Losses,
			"streak":          form.Streak,
			"back_to_back":    form.BackToBack,
			"rest_days":       form.RestDays,
			"games_in_last_4": form.GamesInLast4,
		},
		Confidence: 1.0,
	}
}
