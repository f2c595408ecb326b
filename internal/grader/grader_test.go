package grader

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PropScout/internal/model"
)

type fakeLogs struct {
	rows []model.GameLogRow
	team string
}

func (f *fakeLogs) PlayerGameLog(playerID int, season string) []model.GameLogRow { return f.rows }
func (f *fakeLogs) PlayerCurrentTeam(playerID int) string                        { return f.team }

type fakeTeams struct{}

func (fakeTeams) RecentForm(teamID int, season string) model.TeamForm {
	return model.TeamForm{Wins: 3, Losses: 2, Streak: "W1", RestDays: 2}
}
func (fakeTeams) H2HRecord(teamID int, opponentAbbr, season string) model.TeamH2H {
	return model.TeamH2H{Wins: 1, Losses: 1, Games: 2, AvgMargin: 2.0}
}
func (fakeTeams) AvgWinMargin(teamID int, season string) float64 { return 8.0 }
func (fakeTeams) PaceRank(teamID int, season string) model.PaceRank {
	return model.PaceRank{Pace: 100.0, Rank: 15, Valid: true}
}

type fakeSpreads struct{}

func (fakeSpreads) GameSpread(eventID string) (float64, bool) { return -4.5, true }

func gameLogRows(n int, points float64) []model.GameLogRow {
	base := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	rows := make([]model.GameLogRow, n)
	for i := range rows {
		rows[i] = model.GameLogRow{
			Date:    base.AddDate(0, 0, -2*i),
			Matchup: "BOS vs. MIA",
			Minutes: 34,
			Points:  points,
			FGA:     18,
		}
	}
	return rows
}

func testProp() model.PlayerProp {
	return model.PlayerProp{
		PlayerName:  "Jayson Tatum",
		NBAPlayerID: 1628369,
		Market:      model.MarketPoints,
		Line:        20.5,
		OverOdds:    decimal.NewFromFloat(1.85),
		UnderOdds:   decimal.NewFromFloat(1.95),
		Bookmaker:   "paddypower",
		Preferred:   true,
		Game: model.NBAGame{
			GameID:      "0022600500",
			HomeTeam:    "BOS",
			AwayTeam:    "MIA",
			HomeTeamID:  1610612738,
			AwayTeamID:  1610612748,
			GameDate:    "2026-01-31",
			OddsEventID: "evt1",
		},
	}
}

func testGrader(t *testing.T, logs *fakeLogs) *Grader {
	t.Helper()
	return New(testConfig(t), logs, fakeTeams{}, fakeSpreads{})
}

func TestGrade_HealthyPlayer(t *testing.T) {
	g := testGrader(t, &fakeLogs{rows: gameLogRows(10, 26), team: "BOS"})

	vp := g.Grade(testProp(), model.SideOver, nil, "2025-26")
	if vp == nil {
		t.Fatal("expected a graded prop")
	}
	if vp.ValueScore <= 0 || vp.ValueScore > 100 {
		t.Fatalf("value score out of range: %g", vp.ValueScore)
	}
	if len(vp.Factors) != 8 {
		t.Errorf("expected 8 factor results, got %d", len(vp.Factors))
	}
	if vp.Recommendation == "" {
		t.Error("expected a recommendation label")
	}
	if vp.Opponent != "MIA" || !vp.TonightHome {
		t.Errorf("context wrong: opponent=%q home=%v", vp.Opponent, vp.TonightHome)
	}
}

func TestGrade_OutPlayerIsAbandoned(t *testing.T) {
	g := testGrader(t, &fakeLogs{rows: gameLogRows(10, 26), team: "BOS"})
	injuries := []model.InjuryReport{
		{PlayerName: "Jayson Tatum", Team: "BOS", Status: model.StatusOut},
	}

	if vp := g.Grade(testProp(), model.SideOver, injuries, "2025-26"); vp != nil {
		t.Fatalf("OUT player must be abandoned, got score %g", vp.ValueScore)
	}
}

func TestGrade_ShortLogIsAbandoned(t *testing.T) {
	g := testGrader(t, &fakeLogs{rows: gameLogRows(3, 26), team: "BOS"})

	if vp := g.Grade(testProp(), model.SideOver, nil, "2025-26"); vp != nil {
		t.Fatal("fewer games than the minimum must abandon the prop")
	}
}

func TestGrade_UnknownMarketIsAbandoned(t *testing.T) {
	g := testGrader(t, &fakeLogs{rows: gameLogRows(10, 26), team: "BOS"})

	prop := testProp()
	prop.Market = "player_double_double"
	if vp := g.Grade(prop, model.SideOver, nil, "2025-26"); vp != nil {
		t.Fatal("unknown market must abandon the prop")
	}
}

func TestGrade_SuspiciousLineFlagged(t *testing.T) {
	g := testGrader(t, &fakeLogs{rows: gameLogRows(12, 28), team: "BOS"})

	prop := testProp()
	prop.Line = 15.5 // far below a 28-point average
	vp := g.Grade(prop, model.SideOver, nil, "2025-26")
	if vp == nil {
		t.Fatal("expected a graded prop")
	}
	if !vp.SuspiciousLine {
		t.Errorf("line well below the season average should be flagged (avg=%g)", vp.SeasonAvg)
	}
	if vp.SuspiciousReason == "" {
		t.Error("flagged line needs a reason")
	}
}

func TestResolveTeam_RosterSourceWins(t *testing.T) {
	// Log says LAL (stale pre-trade rows) but the roster source says MIA.
	rows := gameLogRows(10, 26)
	for i := range rows {
		rows[i].Matchup = "LAL vs. DEN"
	}
	g := testGrader(t, &fakeLogs{rows: rows, team: "MIA"})

	prop := testProp()
	if team := g.resolveTeam(&prop, rows); team != "MIA" {
		t.Errorf("roster source should win, got %q", team)
	}
}

func TestResolveTeam_LogFallback(t *testing.T) {
	rows := gameLogRows(10, 26)
	g := testGrader(t, &fakeLogs{rows: rows, team: ""})

	prop := testProp()
	if team := g.resolveTeam(&prop, rows); team != "BOS" {
		t.Errorf("log scan should find BOS, got %q", team)
	}
}
