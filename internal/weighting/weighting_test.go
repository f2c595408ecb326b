package weighting

import (
	"path/filepath"
	"testing"
	"time"

	"PropScout/internal/config"
	"PropScout/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func logRow(daysAgo int, team string) model.GameLogRow {
	base := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	return model.GameLogRow{
		Date:    base.AddDate(0, 0, -daysAgo),
		Matchup: team + " vs. MIA",
		Points:  20,
	}
}

func TestApply_PreviousTeamZeroedWithEnoughCurrentGames(t *testing.T) {
	cfg := testConfig(t)

	var rows []model.GameLogRow
	for i := 0; i < 16; i++ {
		rows = append(rows, logRow(i*2, "BOS"))
	}
	for i := 0; i < 4; i++ {
		rows = append(rows, logRow(100+i*2, "LAL"))
	}

	out := Apply(rows, "BOS", false, cfg)
	for _, r := range out {
		if r.Team() == "LAL" && r.Weight != 0.0 {
			t.Errorf("previous-team row should be zeroed, weight=%g", r.Weight)
		}
		if r.Team() == "BOS" && r.Weight != 1.0 {
			t.Errorf("current-team row should keep full weight, weight=%g", r.Weight)
		}
	}
}

func TestApply_MidSeasonTradeKeepsSmallPreviousWeight(t *testing.T) {
	cfg := testConfig(t)

	var rows []model.GameLogRow
	for i := 0; i < 5; i++ {
		rows = append(rows, logRow(i*2, "BOS"))
	}
	for i := 0; i < 10; i++ {
		rows = append(rows, logRow(30+i*2, "LAL"))
	}

	out := Apply(rows, "BOS", false, cfg)
	for _, r := range out {
		if r.Team() == "LAL" && r.Weight != cfg.Context.PreviousTeam {
			t.Errorf("just-traded player's old games get weight %g, got %g", cfg.Context.PreviousTeam, r.Weight)
		}
	}
}

func TestApply_B2BWeighting(t *testing.T) {
	cfg := testConfig(t)

	// Most recent game was the second night of a back-to-back; the rest had
	// normal rest.
	rows := []model.GameLogRow{
		logRow(10, "BOS"),
		logRow(11, "BOS"),
		logRow(14, "BOS"),
		logRow(17, "BOS"),
	}

	out := Apply(rows, "BOS", true, cfg)
	if out[0].Weight != cfg.Context.B2BTonightB2B {
		t.Errorf("B2B row should keep weight %g, got %g", cfg.Context.B2BTonightB2B, out[0].Weight)
	}
	if out[1].Weight != cfg.Context.NormalRestB2B {
		t.Errorf("normal-rest row should be down-weighted to %g, got %g", cfg.Context.NormalRestB2B, out[1].Weight)
	}
}

func TestApply_NoB2BWeightingOnNormalRest(t *testing.T) {
	cfg := testConfig(t)
	rows := []model.GameLogRow{logRow(10, "BOS"), logRow(11, "BOS")}

	out := Apply(rows, "BOS", false, cfg)
	for _, r := range out {
		if r.Weight != 1.0 {
			t.Errorf("rest weighting must not apply when tonight is not a B2B, weight=%g", r.Weight)
		}
	}
}

func TestApply_EmptyLog(t *testing.T) {
	if out := Apply(nil, "BOS", false, testConfig(t)); out != nil {
		t.Errorf("expected nil for empty log, got %d rows", len(out))
	}
}

func TestFilterVsOpponent(t *testing.T) {
	cfg := testConfig(t)

	rows := []model.GameLogRow{
		{Date: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), Matchup: "BOS vs. MIA"},
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Matchup: "BOS @ DEN"},
		{Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Matchup: "BOS @ MIA"},
		{Date: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), Matchup: "BOS vs. MIA"},
	}

	out := FilterVsOpponent(rows, "MIA", "BOS", cfg)
	if len(out) != 3 {
		t.Fatalf("expected 3 MIA games, got %d", len(out))
	}
	if out[0].Weight != cfg.Context.VsOpponentCurrent {
		t.Errorf("this season's H2H should weigh %g, got %g", cfg.Context.VsOpponentCurrent, out[0].Weight)
	}
	if out[1].Weight != cfg.Context.VsOpponentLastSzn {
		t.Errorf("last season's H2H should weigh %g, got %g", cfg.Context.VsOpponentLastSzn, out[1].Weight)
	}
	if out[2].Weight != cfg.Context.VsOpponentOlder {
		t.Errorf("older H2H should weigh %g, got %g", cfg.Context.VsOpponentOlder, out[2].Weight)
	}
}

func TestFilterVsOpponent_NoMatchups(t *testing.T) {
	cfg := testConfig(t)
	rows := []model.GameLogRow{logRow(5, "BOS")}
	if out := FilterVsOpponent(rows, "DEN", "BOS", cfg); out != nil {
		t.Errorf("expected nil when the player never faced the opponent, got %d rows", len(out))
	}
}

func TestEffectiveSampleAndConfidence(t *testing.T) {
	rows := []model.WeightedRow{{Weight: 1.0}, {Weight: 0.5}, {Weight: 0.0}}
	if got := EffectiveSample(rows); got != 1.5 {
		t.Errorf("expected effective sample 1.5, got %g", got)
	}

	cases := []struct {
		eff  float64
		min  int
		want float64
	}{
		{10, 5, 1.0},
		{2.5, 5, 0.5},
		{0, 5, 0.0},
		{3, 0, 1.0},
	}
	for _, c := range cases {
		if got := Confidence(c.eff, c.min); got != c.want {
			t.Errorf("Confidence(%g, %d) = %g, want %g", c.eff, c.min, got, c.want)
		}
	}
}
