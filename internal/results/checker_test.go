package results

import (
	"testing"

	"PropScout/internal/model"
	"PropScout/internal/store"
)

type fakeScores map[string]model.GameLogRow

func (f fakeScores) BoxScores(date string) map[string]model.GameLogRow { return f }

// fakeStore embeds Noop and overrides just what the checker touches.
type fakeStore struct {
	store.Noop
	slips      []store.SavedSlip
	legResults map[int64]string
	outcomes   map[int64]string
}

func newFakeStore(slips []store.SavedSlip) *fakeStore {
	return &fakeStore{
		slips:      slips,
		legResults: make(map[int64]string),
		outcomes:   make(map[int64]string),
	}
}

func (f *fakeStore) UnresolvedSlips() ([]store.SavedSlip, error) { return f.slips, nil }

func (f *fakeStore) RecordLegResult(legID int64, result string) error {
	f.legResults[legID] = result
	return nil
}

func (f *fakeStore) RecordOutcome(slipID int64, outcome string, stake float64) error {
	f.outcomes[slipID] = outcome
	return nil
}

func TestCheckLeg(t *testing.T) {
	scores := fakeScores{
		"jayson tatum": {Points: 28, Rebounds: 9, Assists: 5},
	}

	cases := []struct {
		name   string
		player string
		market model.Market
		line   float64
		side   model.Side
		want   string
		ok     bool
	}{
		{"over hit", "Jayson Tatum", model.MarketPoints, 24.5, model.SideOver, store.LegHit, true},
		{"over miss", "Jayson Tatum", model.MarketPoints, 30.5, model.SideOver, store.LegMiss, true},
		{"under hit", "Jayson Tatum", model.MarketPoints, 30.5, model.SideUnder, store.LegHit, true},
		{"under miss", "Jayson Tatum", model.MarketPoints, 24.5, model.SideUnder, store.LegMiss, true},
		{"over push on exact line", "Jayson Tatum", model.MarketPoints, 28, model.SideOver, store.LegPush, true},
		{"under push on exact line", "Jayson Tatum", model.MarketPoints, 28, model.SideUnder, store.LegPush, true},
		{"combined market sums components", "Jayson Tatum", model.MarketPtsRebAst, 41.5, model.SideOver, store.LegHit, true},
		{"combined market push", "Jayson Tatum", model.MarketPtsReb, 37, model.SideOver, store.LegPush, true},
		{"player did not play", "Al Horford", model.MarketPoints, 10.5, model.SideOver, "", false},
		{"case-insensitive name match", "JAYSON TATUM", model.MarketPoints, 24.5, model.SideOver, store.LegHit, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := CheckLeg(c.player, c.market, c.line, c.side, scores)
			if ok != c.ok || got != c.want {
				t.Errorf("CheckLeg = (%q, %v), want (%q, %v)", got, ok, c.want, c.ok)
			}
		})
	}
}

func TestCheckDate_AllHitsWins(t *testing.T) {
	db := newFakeStore([]store.SavedSlip{{
		ID:    1,
		Stake: 10,
		Legs: []store.SavedLeg{
			{ID: 11, PlayerName: "Jayson Tatum", Market: "player_points", Line: 24.5, Side: "over"},
			{ID: 12, PlayerName: "Bam Adebayo", Market: "player_rebounds", Line: 8.5, Side: "over"},
		},
	}})
	c := New(fakeScores{
		"jayson tatum": {Points: 28},
		"bam adebayo":  {Rebounds: 12},
	}, db)

	sum, err := c.CheckDate("2026-01-30")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Hit != 2 || sum.Miss != 0 || sum.SlipsResolved != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if db.outcomes[1] != store.OutcomeWin {
		t.Errorf("expected WIN, got %q", db.outcomes[1])
	}
}

func TestCheckDate_AnyMissLosesEvenWithUnsettledLegs(t *testing.T) {
	db := newFakeStore([]store.SavedSlip{{
		ID: 2,
		Legs: []store.SavedLeg{
			{ID: 21, PlayerName: "Jayson Tatum", Market: "player_points", Line: 30.5, Side: "over"},
			{ID: 22, PlayerName: "Injured Guy", Market: "player_points", Line: 10.5, Side: "over"},
		},
	}})
	c := New(fakeScores{"jayson tatum": {Points: 28}}, db)

	sum, err := c.CheckDate("2026-01-30")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Miss != 1 || sum.NoData != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if db.outcomes[2] != store.OutcomeLoss {
		t.Errorf("a missed leg loses the slip regardless of unsettled legs, got %q", db.outcomes[2])
	}
}

func TestCheckDate_PushVoidsOtherwiseWinningSlip(t *testing.T) {
	db := newFakeStore([]store.SavedSlip{{
		ID: 3,
		Legs: []store.SavedLeg{
			{ID: 31, PlayerName: "Jayson Tatum", Market: "player_points", Line: 24.5, Side: "over"},
			{ID: 32, PlayerName: "Bam Adebayo", Market: "player_rebounds", Line: 12, Side: "over"},
		},
	}})
	c := New(fakeScores{
		"jayson tatum": {Points: 28},
		"bam adebayo":  {Rebounds: 12},
	}, db)

	if _, err := c.CheckDate("2026-01-30"); err != nil {
		t.Fatal(err)
	}
	if db.outcomes[3] != store.OutcomeVoid {
		t.Errorf("hits plus a push must void, got %q", db.outcomes[3])
	}
}

func TestCheckDate_UnsettledSlipStaysOpen(t *testing.T) {
	db := newFakeStore([]store.SavedSlip{{
		ID: 4,
		Legs: []store.SavedLeg{
			{ID: 41, PlayerName: "Jayson Tatum", Market: "player_points", Line: 24.5, Side: "over"},
			{ID: 42, PlayerName: "Scratched Player", Market: "player_points", Line: 10.5, Side: "over"},
		},
	}})
	c := New(fakeScores{"jayson tatum": {Points: 28}}, db)

	sum, err := c.CheckDate("2026-01-30")
	if err != nil {
		t.Fatal(err)
	}
	if sum.SlipsResolved != 0 {
		t.Fatalf("slip with a pending leg must stay open: %+v", sum)
	}
	if _, resolved := db.outcomes[4]; resolved {
		t.Error("no outcome should be recorded for an open slip")
	}
}

func TestCheckDate_NoBoxScores(t *testing.T) {
	c := New(fakeScores{}, newFakeStore(nil))
	if _, err := c.CheckDate("2026-01-30"); err == nil {
		t.Fatal("expected an error when no box scores exist for the date")
	}
}

func TestCheckDate_SkipsAlreadySettledLegs(t *testing.T) {
	db := newFakeStore([]store.SavedSlip{{
		ID: 5,
		Legs: []store.SavedLeg{
			{ID: 51, PlayerName: "Jayson Tatum", Market: "player_points", Line: 24.5, Side: "over", Result: store.LegHit},
			{ID: 52, PlayerName: "Bam Adebayo", Market: "player_rebounds", Line: 8.5, Side: "over"},
		},
	}})
	c := New(fakeScores{
		"jayson tatum": {Points: 2}, // would be a miss if re-checked
		"bam adebayo":  {Rebounds: 12},
	}, db)

	sum, err := c.CheckDate("2026-01-30")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Checked != 1 {
		t.Fatalf("only the open leg should be checked, got %d", sum.Checked)
	}
	if db.outcomes[5] != store.OutcomeWin {
		t.Errorf("expected WIN from the stored HIT plus the new hit, got %q", db.outcomes[5])
	}
}
