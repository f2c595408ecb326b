package model

import (
	"sort"
	"strings"
	"time"
)

// GameLogRow is one player-game record. Rows are immutable once fetched;
// context weighting produces derived WeightedRow values instead of mutating
// the source log.
type GameLogRow struct {
	Date       time.Time
	Matchup    string // "TOR vs. SAS" (home) or "TOR @ SAS" (away)
	Minutes    float64
	Points     float64
	Rebounds   float64
	Assists    float64
	ThreesMade float64
	Blocks     float64
	Steals     float64
	Turnovers  float64
	FGA        float64
	FG3A       float64
	Overtime   bool // minutes > 40 proxy, set at fetch time
}

// Team extracts the player's own team abbreviation from the matchup string.
// The first token is always the player's team.
func (r *GameLogRow) Team() string {
	for _, sep := range []string{" vs. ", " @ "} {
		if i := strings.Index(r.Matchup, sep); i >= 0 {
			return strings.ToUpper(strings.TrimSpace(r.Matchup[:i]))
		}
	}
	if len(r.Matchup) >= 3 {
		return strings.ToUpper(r.Matchup[:3])
	}
	return strings.ToUpper(r.Matchup)
}

// Home reports whether the row was a home game ("vs." matchup).
func (r *GameLogRow) Home() bool {
	return strings.Contains(r.Matchup, " vs. ")
}

// Against reports whether the matchup names the given opponent abbreviation.
func (r *GameLogRow) Against(opponent string) bool {
	return strings.Contains(strings.ToUpper(r.Matchup), strings.ToUpper(opponent))
}

// WeightedRow is a game log row with its context relevance weight attached.
type WeightedRow struct {
	GameLogRow
	Weight float64 // 0.0–1.0
}

// SortLogByDateDesc returns a copy of rows sorted most recent first.
func SortLogByDateDesc(rows []GameLogRow) []GameLogRow {
	out := make([]GameLogRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
