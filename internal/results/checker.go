// Package results grades saved slip legs against final box scores and
// resolves slip outcomes once every leg is settled.
package results

import (
	"fmt"
	"log"
	"strings"

	"PropScout/internal/model"
	"PropScout/internal/store"
)

// BoxScoreSource supplies final stat lines for a game date, keyed by
// lowercased player full name.
type BoxScoreSource interface {
	BoxScores(date string) map[string]model.GameLogRow
}

// Checker settles unresolved legs and slips.
type Checker struct {
	scores BoxScoreSource
	db     store.Store
}

// New creates a Checker.
func New(scores BoxScoreSource, db store.Store) *Checker {
	return &Checker{scores: scores, db: db}
}

// Summary reports what one check pass settled.
type Summary struct {
	Checked       int `json:"checked"`
	Hit           int `json:"hit"`
	Miss          int `json:"miss"`
	NoData        int `json:"no_data"`
	SlipsResolved int `json:"slips_resolved"`
}

// CheckLeg grades one leg against the box scores. The bool is false when the
// player has no stat line (did not play, or a name mismatch).
//
// The hit test is strictly directional: a stat landing exactly on the line
// is neither an over-hit nor an under-hit, and settles as a push.
func CheckLeg(playerName string, market model.Market, line float64, side model.Side, scores map[string]model.GameLogRow) (string, bool) {
	row, ok := scores[strings.ToLower(strings.TrimSpace(playerName))]
	if !ok || !market.Known() {
		return "", false
	}

	actual := market.Value(&row)
	switch {
	case side == model.SideOver && actual > line:
		return store.LegHit, true
	case side == model.SideUnder && actual < line:
		return store.LegHit, true
	case actual == line:
		return store.LegPush, true
	}
	return store.LegMiss, true
}

// CheckDate grades every unresolved leg whose slip predates the given game
// date, then resolves slips where all legs are settled: any miss is a LOSS,
// all hits is a WIN, and hits plus pushes only is a VOID.
func (c *Checker) CheckDate(date string) (*Summary, error) {
	scores := c.scores.BoxScores(date)
	if len(scores) == 0 {
		return nil, fmt.Errorf("no box scores available for %s", date)
	}

	slips, err := c.db.UnresolvedSlips()
	if err != nil {
		return nil, fmt.Errorf("load unresolved slips: %w", err)
	}

	sum := &Summary{}
	for _, slip := range slips {
		allSettled := true
		anyMiss := false
		anyPush := false

		for _, leg := range slip.Legs {
			result := leg.Result
			if result == "" {
				var ok bool
				result, ok = CheckLeg(leg.PlayerName, model.Market(leg.Market), leg.Line, model.Side(leg.Side), scores)
				if !ok {
					sum.NoData++
					allSettled = false
					continue
				}
				if err := c.db.RecordLegResult(leg.ID, result); err != nil {
					return nil, fmt.Errorf("record leg %d: %w", leg.ID, err)
				}
				sum.Checked++
				switch result {
				case store.LegHit:
					sum.Hit++
				case store.LegMiss:
					sum.Miss++
				}
			}
			switch result {
			case store.LegMiss:
				anyMiss = true
			case store.LegPush:
				anyPush = true
			}
		}

		// A single miss loses the slip even with unsettled legs remaining.
		outcome := ""
		switch {
		case anyMiss:
			outcome = store.OutcomeLoss
		case allSettled && anyPush:
			outcome = store.OutcomeVoid
		case allSettled:
			outcome = store.OutcomeWin
		}
		if outcome != "" {
			if err := c.db.RecordOutcome(slip.ID, outcome, slip.Stake); err != nil {
				return nil, fmt.Errorf("resolve slip %d: %w", slip.ID, err)
			}
			sum.SlipsResolved++
		}
	}

	log.Printf("[INFO] results check %s: %d legs settled (%d hit, %d miss), %d slips resolved",
		date, sum.Checked, sum.Hit, sum.Miss, sum.SlipsResolved)
	return sum, nil
}
