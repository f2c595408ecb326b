package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"PropScout/internal/factors"
	"PropScout/internal/model"
)

func TestFactorScoreDynamicNames(t *testing.T) {
	results := []model.FactorResult{
		{Name: factors.NameConsistency, Score: 91.0},
		{Name: "vs MIA", Score: 72.5},
		{Name: "Home Performance", Score: 88.5},
		{Name: factors.NameInjury, Score: 75.0},
	}

	tests := []struct {
		name string
		want float64
	}{
		{factors.NameConsistency, 91.0},
		{"vs Opponent", 72.5},
		{factors.NameHomeAway, 88.5},
		{factors.NameInjury, 75.0},
		{factors.NameVolume, 0},
	}
	for _, tt := range tests {
		if got := factorScore(results, tt.name); got != tt.want {
			t.Errorf("factorScore(%q) = %g, want %g", tt.name, got, tt.want)
		}
	}

	away := []model.FactorResult{{Name: "Away Performance", Score: 41.0}}
	if got := factorScore(away, factors.NameHomeAway); got != 41.0 {
		t.Errorf("factorScore away split = %g, want 41.0", got)
	}
}

func TestSaveSlipPersistsLocationScore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	vp := &model.ValuedProp{
		Prop: model.PlayerProp{
			PlayerName: "Jayson Tatum",
			Market:     model.MarketPoints,
			Line:       27.5,
			OverOdds:   decimal.NewFromFloat(1.9),
			Bookmaker:  "paddypower",
			Preferred:  true,
		},
		Side:       model.SideOver,
		ValueScore: 81.0,
		Factors: []model.FactorResult{
			{Name: factors.NameConsistency, Score: 90.0},
			{Name: "vs MIA", Score: 70.0},
			{Name: "Home Performance", Score: 88.5},
		},
	}
	slip := &model.BetSlip{
		Legs:         []model.BetLeg{{Prop: vp, Side: model.SideOver, Odds: decimal.NewFromFloat(1.9)}},
		CombinedOdds: decimal.NewFromFloat(1.9),
		TargetOdds:   decimal.NewFromFloat(2.0),
		TotalValue:   81.0,
	}

	slipID, err := s.SaveSlip(slip, 0, "")
	if err != nil {
		t.Fatal(err)
	}

	var homeAway, vsOpp float64
	err = s.db.QueryRow(
		"SELECT score_home_away, score_vs_opponent FROM slip_legs WHERE slip_id = ?", slipID,
	).Scan(&homeAway, &vsOpp)
	if err != nil {
		t.Fatal(err)
	}
	if homeAway != 88.5 {
		t.Errorf("score_home_away = %g, want 88.5", homeAway)
	}
	if vsOpp != 70.0 {
		t.Errorf("score_vs_opponent = %g, want 70.0", vsOpp)
	}
}
