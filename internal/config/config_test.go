package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Slips.MinLegs != 2 || cfg.Slips.MaxLegs != 6 {
		t.Errorf("unexpected leg bounds: %d-%d", cfg.Slips.MinLegs, cfg.Slips.MaxLegs)
	}
	if cfg.MinGamesPlayed != 5 {
		t.Errorf("expected min games 5, got %d", cfg.MinGamesPlayed)
	}
	if cfg.Providers.PreferredBookmaker != "paddypower" {
		t.Errorf("unexpected preferred bookmaker %q", cfg.Providers.PreferredBookmaker)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "season: \"2024-25\"\nslips:\n  min_legs: 3\n  max_legs: 4\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Season != "2024-25" {
		t.Errorf("expected season 2024-25, got %q", cfg.Season)
	}
	if cfg.Slips.MinLegs != 3 || cfg.Slips.MaxLegs != 4 {
		t.Errorf("expected leg bounds 3-4, got %d-%d", cfg.Slips.MinLegs, cfg.Slips.MaxLegs)
	}
	// Untouched sections still get defaults.
	if cfg.Slips.OddsTolerance != 0.20 {
		t.Errorf("expected default tolerance, got %g", cfg.Slips.OddsTolerance)
	}
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	sum := DefaultWeights().Sum()
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("default weights sum to %.6f, want 1.0", sum)
	}
}

func TestValidate_RejectsBadWeights(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Weights.Consistency = 0.50
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for weights not summing to 1.0")
	}
}

func TestValidate_RejectsBadRecencyWeights(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.RecencyWeights = []float64{0.5, 0.4}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for recency weights not summing to 1.0")
	}
}

func TestCurrentSeason(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-11-15", "2025-26"},
		{"2026-02-10", "2025-26"},
		{"2026-06-20", "2025-26"},
		{"2026-10-21", "2026-27"},
		{"2029-12-31", "2029-30"},
	}
	for _, c := range cases {
		d, err := time.Parse("2006-01-02", c.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := CurrentSeason(d); got != c.want {
			t.Errorf("CurrentSeason(%s) = %q, want %q", c.date, got, c.want)
		}
	}
}
