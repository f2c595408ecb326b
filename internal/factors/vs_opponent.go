package factors

import (
	"fmt"
	"strings"

	"PropScout/internal/config"
	"PropScout/internal/model"
	"PropScout/internal/weighting"
)

// VsOpponent scores the player's head-to-head history against tonight's
// opponent: weighted hit rate (60%) plus average-vs-line margin (40%),
// blended 80/20 with the team-level H2H record. With no individual matchup
// history it falls back to the team record alone at confidence 0.2.
func VsOpponent(fullLog []model.GameLogRow, market model.Market, line float64, side model.Side,
	opponent, currentTeam string, teamH2H model.TeamH2H, cfg *config.Config) model.FactorResult {

	weight := cfg.Weights.VsOpponent
	name := "vs " + opponent

	h2h := weighting.FilterVsOpponent(fullLog, opponent, currentTeam, cfg)
	if len(h2h) == 0 {
		return model.FactorResult{
			Name:   name,
			Score:  round1(teamH2HScore(teamH2H)),
			Weight: weight,
			Evidence: []string{
				fmt.Sprintf("No individual matchup history vs %s.", opponent),
				teamH2HEvidence(teamH2H, opponent),
			},
			Data:       map[string]any{"team_h2h": teamH2H},
			Confidence: 0.2,
		}
	}

	totalWeight := weighting.EffectiveSample(h2h)
	if totalWeight == 0 {
		return neutral(name, weight, fmt.Sprintf("No usable matchup data vs %s.", opponent))
	}

	values := make([]float64, len(h2h))
	var hitRate, weightedAvg float64
	hitCount := 0
	for i := range h2h {
		v := market.Value(&h2h[i].GameLogRow)
		values[i] = v
		if hit(v, line, side) {
			hitRate += h2h[i].Weight
			hitCount++
		}
		weightedAvg += v * h2h[i].Weight
	}
	hitRate /= totalWeight
	weightedAvg /= totalWeight

	avgScore := avgContribution(weightedAvg, line, side)
	score := (0.6*hitRate + 0.4*avgScore) * 100.0

	// Team-level H2H adds matchup context the individual stats miss.
	score = 0.80*score + 0.20*teamH2HScore(teamH2H)
	score = round1(clamp(score, 0.0, 100.0))

	confidence := weighting.Confidence(totalWeight, cfg.MinSample.VsOpponent)

	valsStr := make([]string, len(values))
	for i, v := range values {
		valsStr[i] = fmt.Sprintf("%.1f", v)
	}
	evidence := []string{
		fmt.Sprintf("vs %s: %d game(s), avg %.1f, %d/%d %s", opponent, len(values), weightedAvg, hitCount, len(values), hitVerb(side)),
		"Values: " + strings.Join(valsStr, ", "),
		teamH2HEvidence(teamH2H, opponent),
	}
	if confidence < 1.0 {
		evidence = append(evidence, lowConfidenceNote(totalWeight, cfg.MinSample.VsOpponent))
	}

	return model.FactorResult{
		Name:     name,
		Score:    score,
		Weight:   weight,
		Evidence: evidence,
		Data: map[string]any{
			"values":       values,
			"weighted_avg": weightedAvg,
			"hit_rate":     hitRate,
			"team_h2h":     teamH2H,
		},
		Confidence: confidence,
	}
}

// teamH2HScore converts a team H2H record into a 0–100 score:
// win rate (70%) plus margin contribution (30%).
func teamH2HScore(rec model.TeamH2H) float64 {
	if rec.Games == 0 {
		return neutralScore
	}
	winRate := float64(rec.Wins) / float64(rec.Games)
	marginContrib := clamp(0.5+rec.AvgMargin/20.0, 0.0, 1.0)
	return round1((0.7*winRate + 0.3*marginContrib) * 100)
}

func teamH2HEvidence(rec model.TeamH2H, opponent string) string {
	if rec.Games == 0 {
		return fmt.Sprintf("Team H2H vs %s: no data", opponent)
	}
	return fmt.Sprintf("Team H2H vs %s: %dW-%dL in %d games, avg margin %+.1f",
		opponent, rec.Wins, rec.Losses, rec.Games, rec.AvgMargin)
}
