package factors

import (
	"testing"

	"PropScout/internal/model"
)

func TestInjury_OutPlayerIsHardExclude(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Jayson Tatum", Team: "BOS", Status: model.StatusOut},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, reports, cfg)
	if !Avoid(f) {
		t.Fatal("OUT player must be flagged avoid")
	}
	if f.Score != 0.0 {
		t.Errorf("expected score 0 for OUT player, got %g", f.Score)
	}
}

func TestInjury_DoubtfulPlayerIsHardExclude(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Jayson Tatum", Team: "BOS", Status: model.StatusDoubtful},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, reports, cfg)
	if !Avoid(f) {
		t.Fatal("DOUBTFUL player must be flagged avoid")
	}
}

func TestInjury_QuestionableScalesScore(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Jayson Tatum", Team: "BOS", Status: model.StatusQuestionable},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, reports, cfg)
	if Avoid(f) {
		t.Fatal("questionable must not be a hard exclude")
	}
	if f.Score != 37.5 {
		t.Errorf("expected 75 * 0.5 = 37.5, got %g", f.Score)
	}
}

func TestInjury_HealthyBaseline(t *testing.T) {
	cfg := testConfig(t)
	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, nil, cfg)
	if f.Score != 75.0 {
		t.Errorf("expected baseline 75, got %g", f.Score)
	}
}

func TestInjury_StarTeammateOutBoostsScoringOver(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Jaylen Brown", Team: "BOS", Status: model.StatusOut},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, reports, cfg)
	if f.Score != 83.0 {
		t.Errorf("expected 75 + 8 scoring load boost, got %g", f.Score)
	}
}

func TestInjury_StarTeammateOutCutsAssists(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Jaylen Brown", Team: "BOS", Status: model.StatusOut},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketAssists, model.SideOver, reports, cfg)
	if f.Score != 70.0 {
		t.Errorf("expected 75 - 5 for assists with star out, got %g", f.Score)
	}
}

func TestInjury_ImpactSignInvertsForUnder(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Nikola Jokic", Team: "DEN", Status: model.StatusOut},
	}

	over := Injury("Jayson Tatum", "BOS", "DEN", model.MarketPoints, model.SideOver, reports, cfg)
	under := Injury("Jayson Tatum", "BOS", "DEN", model.MarketPoints, model.SideUnder, reports, cfg)
	if over.Score != 82.0 {
		t.Errorf("expected 75 + 7 weakened defence, got %g", over.Score)
	}
	if under.Score != 68.0 {
		t.Errorf("expected 75 - 7 for UNDER, got %g", under.Score)
	}
}

func TestInjury_NonStarAbsenceIgnored(t *testing.T) {
	cfg := testConfig(t)
	reports := []model.InjuryReport{
		{PlayerName: "Luke Kornet", Team: "BOS", Status: model.StatusOut},
	}

	f := Injury("Jayson Tatum", "BOS", "MIA", model.MarketPoints, model.SideOver, reports, cfg)
	if f.Score != 75.0 {
		t.Errorf("bench absence must not move the score, got %g", f.Score)
	}
}
