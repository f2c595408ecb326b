package grader

import (
	"path/filepath"
	"strings"
	"testing"

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

func TestCompositeScore_FullConfidence(t *testing.T) {
	results := []model.FactorResult{
		{Score: 80, Weight: 0.6, Confidence: 1.0},
		{Score: 40, Weight: 0.4, Confidence: 1.0},
	}
	// 80*0.6 + 40*0.4 = 64
	if got := CompositeScore(results); got != 64.0 {
		t.Errorf("expected 64.0, got %g", got)
	}
}

func TestCompositeScore_ZeroConfidenceIsNeutral(t *testing.T) {
	results := []model.FactorResult{
		{Score: 95, Weight: 0.5, Confidence: 0.0},
		{Score: 5, Weight: 0.5, Confidence: 0.0},
	}
	if got := CompositeScore(results); got != 50.0 {
		t.Errorf("zero-confidence factors must compose to neutral 50, got %g", got)
	}
}

func TestCompositeScore_PartialConfidenceBlends(t *testing.T) {
	results := []model.FactorResult{
		{Score: 90, Weight: 1.0, Confidence: 0.5},
	}
	// 90*0.5 + 50*0.5 = 70
	if got := CompositeScore(results); got != 70.0 {
		t.Errorf("expected 70.0, got %g", got)
	}
}

func TestCompositeScore_Empty(t *testing.T) {
	if got := CompositeScore(nil); got != 0.0 {
		t.Errorf("expected 0.0 for no factors, got %g", got)
	}
}

func TestRecommend_Tiers(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{92.0, model.StrongValue},
		{80.0, model.StrongValue},
		{79.9, model.GoodValue},
		{65.0, model.GoodValue},
		{64.9, model.MarginalValue},
		{50.0, model.MarginalValue},
		{49.9, model.PoorValue},
		{0.0, model.PoorValue},
	}
	for _, c := range cases {
		if got := Recommend(c.score); got != c.want {
			t.Errorf("Recommend(%g) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestDetectSuspiciousLine(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		name       string
		line       float64
		seasonAvg  float64
		suspicious bool
		contains   string
	}{
		{"line far below average", 10.5, 15.0, true, "below season avg"},
		{"line far above average", 22.5, 15.0, true, "above season avg"},
		{"line near average", 15.5, 15.0, false, ""},
		{"exactly at threshold", 13.0, 16.9, false, ""},
		{"no season average", 10.5, 0, false, ""},
		{"no line", 0, 15.0, false, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, reason := DetectSuspiciousLine(c.line, c.seasonAvg, cfg)
			if got != c.suspicious {
				t.Fatalf("suspicious = %v, want %v (reason %q)", got, c.suspicious, reason)
			}
			if c.contains != "" && !strings.Contains(reason, c.contains) {
				t.Errorf("reason %q missing %q", reason, c.contains)
			}
		})
	}
}
