// Package factors holds the eight independent scoring functions. Each factor
// is a pure function over contextual data, a line, and a side, returning a
// 0–100 score with a confidence weight. A factor with insufficient or missing
// data returns a neutral score with confidence 0 rather than failing, so the
// composite scorer can blend it away.
package factors

import (
	"fmt"
	"math"

	"PropScout/internal/model"
)

const neutralScore = 50.0

// Factor display names, also used to pick scores out of a result list.
const (
	NameConsistency = "Consistency"
	NameHomeAway    = "Home/Away"
	NameInjury      = "Injury Context"
	NameTeamContext = "Team Context"
	NameSeasonAvg   = "Season Average"
	NameBlowout     = "Blowout Risk"
	NameVolume      = "Volume & Usage"
)

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func neutral(name string, weight float64, reason string) model.FactorResult {
	return model.FactorResult{
		Name:       name,
		Score:      neutralScore,
		Weight:     weight,
		Evidence:   []string{reason},
		Data:       map[string]any{},
		Confidence: 0.0,
	}
}

// hit applies the strict-inequality hit test. A value exactly on the line is
// neither an over-hit nor an under-hit.
func hit(value, line float64, side model.Side) bool {
	if side == model.SideUnder {
		return value < line
	}
	return value > line
}

// avgContribution converts a weighted average's margin against the line into
// a 0–1 contribution: 0.5 when the average sits on the line, rising with
// favourable margin. Mirrored for UNDER.
func avgContribution(avg, line float64, side model.Side) float64 {
	if line <= 0 {
		return 0.5
	}
	var margin float64
	if side == model.SideUnder {
		margin = math.Max(0.0, (line-avg)/line)
	} else {
		margin = math.Max(0.0, (avg-line)/line)
	}
	return math.Min(1.0, 0.5+margin)
}

func lowConfidenceNote(effective float64, need int) string {
	return fmt.Sprintf("Low confidence — %.1f effective games (need %d)", effective, need)
}
