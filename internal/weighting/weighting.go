// Package weighting attaches context relevance weights to game log rows so
// downstream factors compute weighted statistics instead of treating every
// historical game as equally relevant.
//
// Home/away filtering is intentionally not applied here: the consistency
// factor needs all games, and the home/away factor does its own location
// filtering.
package weighting

import (
	"PropScout/internal/config"
	"PropScout/internal/model"
)

const dayHours = 24

// Apply attaches a context weight to every row: team-transfer weighting
// always, back-to-back weighting only when tonight is a B2B. Rows come back
// sorted most recent first. An empty log returns nil rather than an error.
func Apply(rows []model.GameLogRow, currentTeam string, tonightB2B bool, cfg *config.Config) []model.WeightedRow {
	if len(rows) == 0 {
		return nil
	}

	sorted := model.SortLogByDateDesc(rows)
	out := make([]model.WeightedRow, len(sorted))
	for i, r := range sorted {
		out[i] = model.WeightedRow{GameLogRow: r, Weight: 1.0}
	}

	applyTeamWeights(out, currentTeam, cfg)
	if tonightB2B {
		applyB2BWeights(out, cfg.Context)
	}
	return out
}

// applyTeamWeights down-weights games the player logged for a previous team.
// With enough current-team games the previous-team rows are zeroed entirely;
// otherwise (mid-season trade) they are kept at a small weight so a
// just-traded player still has a usable sample.
func applyTeamWeights(rows []model.WeightedRow, currentTeam string, cfg *config.Config) {
	currentCount := 0
	for i := range rows {
		if rows[i].Team() == currentTeam {
			currentCount++
		}
	}

	for i := range rows {
		current := rows[i].Team() == currentTeam
		switch {
		case current:
			rows[i].Weight = cfg.Context.CurrentTeam
		case currentCount >= cfg.MinCurrentTeamGames:
			rows[i].Weight = 0.0
		default:
			rows[i].Weight = cfg.Context.PreviousTeam
		}
	}
}

// applyB2BWeights keeps full weight on rows that were themselves the second
// night of a back-to-back and down-weights the rest. A row is a B2B when the
// next-most-recent entry is exactly one calendar day before it.
func applyB2BWeights(rows []model.WeightedRow, cw config.ContextWeights) {
	for i := range rows {
		isB2B := false
		if i < len(rows)-1 {
			gap := rows[i].Date.Sub(rows[i+1].Date).Hours() / dayHours
			if gap < 0 {
				gap = -gap
			}
			isB2B = int(gap+0.5) == 1
		}
		if isB2B {
			rows[i].Weight *= cw.B2BTonightB2B
		} else {
			rows[i].Weight *= cw.NormalRestB2B
		}
	}
}

// FilterVsOpponent slices the log to games against tonight's opponent and
// layers season-recency weighting on top. Matchups logged under a different
// team are discounted hard once the player has a current-team H2H sample.
func FilterVsOpponent(rows []model.GameLogRow, opponent, currentTeam string, cfg *config.Config) []model.WeightedRow {
	if len(rows) == 0 {
		return nil
	}

	sorted := model.SortLogByDateDesc(rows)
	var h2h []model.WeightedRow
	for _, r := range sorted {
		if r.Against(opponent) {
			h2h = append(h2h, model.WeightedRow{GameLogRow: r, Weight: 1.0})
		}
	}
	if len(h2h) == 0 {
		return nil
	}

	currentCount := 0
	for i := range h2h {
		if h2h[i].Team() == currentTeam {
			currentCount++
		}
	}
	for i := range h2h {
		if h2h[i].Team() == currentTeam {
			continue
		}
		if currentCount >= 2 {
			h2h[i].Weight *= 0.05 // prior-team H2H is almost irrelevant
		} else {
			h2h[i].Weight *= cfg.Context.PreviousTeam
		}
	}

	applySeasonRecency(h2h, cfg.Context)
	return h2h
}

// applySeasonRecency weights H2H rows by how recent the season is, using
// 365/730-day cutoffs from the most recent entry as season boundaries.
func applySeasonRecency(rows []model.WeightedRow, cw config.ContextWeights) {
	maxDate := rows[0].Date
	for _, r := range rows {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	for i := range rows {
		daysAgo := int(maxDate.Sub(rows[i].Date).Hours() / dayHours)
		switch {
		case daysAgo <= 365:
			rows[i].Weight *= cw.VsOpponentCurrent
		case daysAgo <= 730:
			rows[i].Weight *= cw.VsOpponentLastSzn
		default:
			rows[i].Weight *= cw.VsOpponentOlder
		}
	}
}

// EffectiveSample returns the weight-adjusted sample size: a row weighted
// 0.5 counts as half a game.
func EffectiveSample(rows []model.WeightedRow) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Weight
	}
	return total
}

// Confidence converts an effective sample into a 0–1 multiplier. Below
// minSample the downstream factor score is blended toward neutral.
func Confidence(effectiveSample float64, minSample int) float64 {
	if minSample <= 0 {
		return 1.0
	}
	c := effectiveSample / float64(minSample)
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0.0
	}
	return c
}
