package model

import "testing"

func TestMarketValue(t *testing.T) {
	row := GameLogRow{Points: 28, Rebounds: 9, Assists: 5, ThreesMade: 4, Blocks: 1, Steals: 2, Turnovers: 3}

	cases := []struct {
		market Market
		want   float64
	}{
		{MarketPoints, 28},
		{MarketRebounds, 9},
		{MarketAssists, 5},
		{MarketThrees, 4},
		{MarketBlocks, 1},
		{MarketSteals, 2},
		{MarketTurnovers, 3},
		{MarketPtsRebAst, 42},
		{MarketPtsReb, 37},
		{MarketPtsAst, 33},
		{MarketRebAst, 14},
	}
	for _, c := range cases {
		if got := c.market.Value(&row); got != c.want {
			t.Errorf("%s.Value = %g, want %g", c.market, got, c.want)
		}
	}
}

func TestMarketOverlaps(t *testing.T) {
	cases := []struct {
		a, b Market
		want bool
	}{
		{MarketPoints, MarketPoints, true},
		{MarketPtsRebAst, MarketPoints, true},
		{MarketPoints, MarketPtsRebAst, true},
		{MarketPtsReb, MarketRebounds, true},
		{MarketRebAst, MarketPoints, false},
		{MarketPoints, MarketRebounds, false},
		{MarketThrees, MarketPoints, false},
	}
	for _, c := range cases {
		if got := c.a.Overlaps(c.b); got != c.want {
			t.Errorf("%s.Overlaps(%s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestMarketKnown(t *testing.T) {
	if !MarketPoints.Known() {
		t.Error("player_points must be known")
	}
	if Market("player_double_double").Known() {
		t.Error("unsupported market must not be known")
	}
}

func TestGameLogRowTeamAndHome(t *testing.T) {
	home := GameLogRow{Matchup: "BOS vs. MIA"}
	away := GameLogRow{Matchup: "BOS @ MIA"}

	if home.Team() != "BOS" || away.Team() != "BOS" {
		t.Errorf("Team() should be the first token: %q / %q", home.Team(), away.Team())
	}
	if !home.Home() || away.Home() {
		t.Error("vs. means home, @ means away")
	}
	if !home.Against("MIA") || home.Against("DEN") {
		t.Error("Against should match the opponent in the matchup")
	}
}
