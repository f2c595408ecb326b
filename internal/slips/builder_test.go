package slips

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

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

func prop(player, gameID string, market model.Market, odds float64, score float64) *model.ValuedProp {
	return &model.ValuedProp{
		Prop: model.PlayerProp{
			PlayerName: player,
			Market:     market,
			Line:       20.5,
			OverOdds:   decimal.NewFromFloat(odds),
			Bookmaker:  "paddypower",
			Preferred:  true,
			Game:       model.NBAGame{GameID: gameID, HomeTeam: "BOS", AwayTeam: "MIA"},
		},
		Side:       model.SideOver,
		ValueScore: score,
	}
}

func TestBuild_ExactTargetCombination(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player B", "g2", model.MarketAssists, 2.0, 75),
		prop("Player C", "g3", model.MarketRebounds, 2.0, 70),
	}

	slips := b.Build(props, decimal.NewFromFloat(8.0), Options{})
	if len(slips) != 1 {
		t.Fatalf("expected exactly one 3-leg slip, got %d", len(slips))
	}
	s := slips[0]
	if len(s.Legs) != 3 {
		t.Fatalf("expected 3 legs, got %d", len(s.Legs))
	}
	if !s.CombinedOdds.Equal(decimal.NewFromFloat(8.0)) {
		t.Errorf("expected combined odds 8.0, got %s", s.CombinedOdds)
	}
	if s.TotalValue != 75.0 {
		t.Errorf("expected average leg value 75.0, got %g", s.TotalValue)
	}
	if s.Correlated {
		t.Error("legs from three games must not be correlated")
	}
	if s.Summary == "" {
		t.Error("expected a summary line")
	}
}

func TestBuild_ToleranceBand(t *testing.T) {
	b := New(testConfig(t))
	// 3.0 * 3.0 = 9.0 vs target 5.0: 80% off, outside the 20% band. The
	// 2-leg minimum blocks shrinking further and 27.0 is far worse.
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 3.0, 80),
		prop("Player B", "g2", model.MarketAssists, 3.0, 75),
		prop("Player C", "g3", model.MarketRebounds, 3.0, 70),
	}

	if slips := b.Build(props, decimal.NewFromFloat(5.0), Options{}); len(slips) != 0 {
		t.Fatalf("no combination lands within tolerance, got %d slips", len(slips))
	}
}

func TestBuild_MinScoreFilter(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player B", "g2", model.MarketAssists, 2.0, 75),
		prop("Player C", "g3", model.MarketRebounds, 2.0, 45), // below default 50
	}

	if slips := b.Build(props, decimal.NewFromFloat(8.0), Options{}); len(slips) != 0 {
		t.Fatal("the low-score prop is ineligible, so no 3-leg slip should exist")
	}

	// Raising the pool with an explicit lower threshold restores the combo.
	slips := b.Build(props, decimal.NewFromFloat(8.0), Options{MinScore: 40})
	if len(slips) != 1 {
		t.Fatalf("expected 1 slip with relaxed threshold, got %d", len(slips))
	}
}

func TestBuild_RejectsOverAndUnderOnSameLine(t *testing.T) {
	b := New(testConfig(t))
	under := prop("Player A", "g1", model.MarketPoints, 2.0, 75)
	under.Side = model.SideUnder
	under.Prop.UnderOdds = decimal.NewFromFloat(2.0)
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		under,
		prop("Player B", "g2", model.MarketAssists, 2.0, 70),
	}

	if slips := b.Build(props, decimal.NewFromFloat(8.0), Options{}); len(slips) != 0 {
		t.Fatalf("over+under on the same line must be rejected, got %d slips", len(slips))
	}
}

func TestBuild_RejectsComboWithComponentMarket(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player A", "g1", model.MarketPtsRebAst, 2.0, 75),
		prop("Player B", "g2", model.MarketAssists, 2.0, 70),
	}

	if slips := b.Build(props, decimal.NewFromFloat(8.0), Options{}); len(slips) != 0 {
		t.Fatal("a combined market next to its component must be rejected")
	}
}

func TestBuild_AllowsDisjointMarketsSamePlayer(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player A", "g1", model.MarketRebounds, 2.0, 75),
		prop("Player B", "g2", model.MarketAssists, 2.0, 70),
	}

	slips := b.Build(props, decimal.NewFromFloat(8.0), Options{})
	if len(slips) != 1 {
		t.Fatalf("points and rebounds do not overlap, expected 1 slip, got %d", len(slips))
	}
	if !slips[0].Correlated {
		t.Error("two legs from the same game must be marked correlated")
	}
}

func TestBuild_MaxTwoLegsPerPlayer(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketThrees, 2.0, 80),
		prop("Player A", "g1", model.MarketSteals, 2.0, 75),
		prop("Player A", "g1", model.MarketBlocks, 2.0, 70),
	}

	if slips := b.Build(props, decimal.NewFromFloat(8.0), Options{}); len(slips) != 0 {
		t.Fatal("three legs on one player must be rejected")
	}
}

func TestBuild_DeduplicatesAcrossBookmakers(t *testing.T) {
	b := New(testConfig(t))
	dup := prop("Player A", "g1", model.MarketPoints, 2.0, 78)
	dup.Prop.Bookmaker = "unibet"
	dup.Prop.Preferred = false
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		dup,
		prop("Player B", "g2", model.MarketAssists, 2.0, 75),
		prop("Player C", "g3", model.MarketRebounds, 2.0, 70),
	}

	slips := b.Build(props, decimal.NewFromFloat(8.0), Options{})
	seen := make(map[string]int)
	for _, s := range slips {
		seen[identityKey(&s)]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("slip %q returned %d times", key, n)
		}
	}
}

func TestBuild_PinnedLegCount(t *testing.T) {
	b := New(testConfig(t))
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player B", "g2", model.MarketAssists, 2.0, 75),
		prop("Player C", "g3", model.MarketRebounds, 2.0, 70),
		prop("Player D", "g4", model.MarketThrees, 2.0, 65),
	}

	slips := b.Build(props, decimal.NewFromFloat(4.0), Options{Legs: 2})
	if len(slips) == 0 {
		t.Fatal("expected 2-leg slips at target 4.0")
	}
	for _, s := range slips {
		if len(s.Legs) != 2 {
			t.Errorf("pinned leg count ignored: got %d legs", len(s.Legs))
		}
	}
}

func TestBuild_BookmakerFilter(t *testing.T) {
	cfg := testConfig(t)
	b := New(cfg)
	other := prop("Player C", "g3", model.MarketRebounds, 2.0, 70)
	other.Prop.Bookmaker = "unibet"
	other.Prop.Preferred = false
	props := []*model.ValuedProp{
		prop("Player A", "g1", model.MarketPoints, 2.0, 80),
		prop("Player B", "g2", model.MarketAssists, 2.0, 75),
		other,
	}

	// Preferred-book filter drops the unibet leg, leaving no 3-leg combo.
	if slips := b.Build(props, decimal.NewFromFloat(8.0), Options{Bookmaker: cfg.Providers.PreferredBookmaker}); len(slips) != 0 {
		t.Fatal("expected no slip once the non-preferred leg is filtered out")
	}
}

func TestBuild_EmptyPool(t *testing.T) {
	b := New(testConfig(t))
	if slips := b.Build(nil, decimal.NewFromFloat(5.0), Options{}); slips != nil {
		t.Fatalf("expected nil for an empty pool, got %d slips", len(slips))
	}
}
