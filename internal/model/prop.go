package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlayerProp identifies a specific betting line for one player. Sourced from
// the odds provider and treated as an opaque immutable value by the core.
type PlayerProp struct {
	PlayerName  string
	NBAPlayerID int
	Market      Market
	Line        float64
	OverOdds    decimal.Decimal
	UnderOdds   decimal.Decimal
	Bookmaker   string
	Preferred   bool // true when the line came from the preferred bookmaker
	Game        NBAGame
}

// Odds returns the decimal odds for the given side. Falls back to the over
// price when the under price is missing or malformed.
func (p *PlayerProp) Odds(side Side) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if side == SideUnder && p.UnderOdds.GreaterThan(one) {
		return p.UnderOdds
	}
	return p.OverOdds
}

// Injury status vocabulary. Raw provider vocabularies are normalised to this
// set before reaching the core.
const (
	StatusOut          = "out"
	StatusDoubtful     = "doubtful"
	StatusQuestionable = "questionable"
	StatusProbable     = "probable"
)

// InjuryReport is one player's entry on the league injury report.
type InjuryReport struct {
	PlayerName string
	Team       string
	Status     string
}

// Unavailable reports whether the status rules the player out of slips.
func Unavailable(status string) bool {
	return status == StatusOut || status == StatusDoubtful
}

// SeverityScore maps an injury status to a health multiplier.
// 0.0 = confirmed out, 1.0 = no injury.
func SeverityScore(status string) float64 {
	switch status {
	case StatusOut:
		return 0.0
	case StatusDoubtful:
		return 0.1
	case StatusQuestionable:
		return 0.5
	case StatusProbable:
		return 0.9
	default:
		return 1.0
	}
}

// PlayerStatus looks up a player's status in the report list. Matching is
// case-insensitive on the full name. Empty string means not listed (healthy).
func PlayerStatus(playerName string, reports []InjuryReport) string {
	want := strings.ToLower(strings.TrimSpace(playerName))
	for _, r := range reports {
		if strings.ToLower(strings.TrimSpace(r.PlayerName)) == want {
			return r.Status
		}
	}
	return ""
}

// TeamInjuries returns all reports for one team.
func TeamInjuries(teamAbbr string, reports []InjuryReport) []InjuryReport {
	var out []InjuryReport
	for _, r := range reports {
		if strings.EqualFold(r.Team, teamAbbr) {
			out = append(out, r)
		}
	}
	return out
}
