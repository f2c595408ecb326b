package factors

import (
	"fmt"
	"strings"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

// High-usage players whose absence shifts teammate and opponent stat
// opportunities the most. A usage-rate lookup would be better; this keyword
// heuristic avoids another provider round trip per prop.
var highUsageKeywords = []string{
	"harden", "doncic", "curry", "james", "giannis", "embiid",
	"jokic", "durant", "tatum", "mitchell", "brown", "young",
	"booker", "lillard", "george", "westbrook", "fox", "lavine",
}

// Injury scores the injury situation around this prop. The player's own
// OUT/DOUBTFUL status is a hard exclude (Data["avoid"]=true); milder statuses
// scale the score by severity. Star teammate and opponent absences shift the
// score by fixed deltas whose sign inverts for UNDER.
func Injury(playerName, playerTeam, opponent string, market model.Market, side model.Side,
	reports []model.InjuryReport, cfg *config.Config) model.FactorResult {

	weight := cfg.Weights.Injury

	status := model.PlayerStatus(playerName, reports)
	if model.Unavailable(status) {
		return model.FactorResult{
			Name:   NameInjury,
			Score:  0.0,
			Weight: weight,
			Evidence: []string{
				fmt.Sprintf("⚠️ %s is %s — DO NOT BET this prop", playerName, strings.ToUpper(status)),
			},
			Data:       map[string]any{"player_status": status, "avoid": true},
			Confidence: 1.0,
		}
	}

	evidence := []string{}
	score := 75.0 // baseline: player healthy, no relevant injuries

	if status != "" {
		severity := model.SeverityScore(status)
		score *= severity
		evidence = append(evidence, fmt.Sprintf("%s: %s (%.0f%% health)", playerName, strings.ToUpper(status), severity*100))
	} else {
		evidence = append(evidence, playerName+": healthy ✓")
	}

	direction := 1.0
	if side == model.SideUnder {
		direction = -1.0
	}

	score += direction * teammateImpact(playerName, market, model.TeamInjuries(playerTeam, reports), &evidence)
	score += direction * opponentImpact(market, model.TeamInjuries(opponent, reports), &evidence)

	score = round1(clamp(score, 0.0, 100.0))

	return model.FactorResult{
		Name:       NameInjury,
		Score:      score,
		Weight:     weight,
		Evidence:   evidence,
		Data:       map[string]any{"player_status": status, "avoid": false},
		Confidence: 1.0,
	}
}

// Avoid reports whether the injury factor ruled the player out entirely.
func Avoid(f model.FactorResult) bool {
	avoid, _ := f.Data["avoid"].(bool)
	return avoid
}

func isStar(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range highUsageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// teammateImpact estimates how star teammate absences shift the player's
// counting stats: a primary scorer out means more scoring load but fewer set
// plays.
func teammateImpact(playerName string, market model.Market, injuries []model.InjuryReport, evidence *[]string) float64 {
	impact := 0.0
	for _, inj := range injuries {
		if strings.EqualFold(inj.PlayerName, playerName) {
			continue
		}
		if !model.Unavailable(inj.Status) || !isStar(inj.PlayerName) {
			continue
		}
		switch {
		case market.AssistMarket():
			impact -= 5
			*evidence = append(*evidence, fmt.Sprintf("Teammate %s (%s) — fewer set plays, assists may drop", inj.PlayerName, inj.Status))
		case market.ScoringMarket():
			impact += 8
			*evidence = append(*evidence, fmt.Sprintf("Teammate %s (%s) — increased scoring load +", inj.PlayerName, inj.Status))
		default:
			*evidence = append(*evidence, fmt.Sprintf("Teammate %s (%s)", inj.PlayerName, inj.Status))
		}
	}
	return impact
}

// opponentImpact credits a weakened opposing defence for stat-accumulation
// markets.
func opponentImpact(market model.Market, injuries []model.InjuryReport, evidence *[]string) float64 {
	impact := 0.0
	for _, inj := range injuries {
		if !model.Unavailable(inj.Status) || !isStar(inj.PlayerName) {
			continue
		}
		if market.ScoringMarket() || market.AssistMarket() || market == model.MarketRebounds {
			impact += 7
			*evidence = append(*evidence, fmt.Sprintf("Opponent %s (%s) — defence weakened +", inj.PlayerName, strings.ToUpper(inj.Status)))
		}
	}
	return impact
}
