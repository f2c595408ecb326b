package nbastats

import (
	"testing"
	"time"
)

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"38:30", 38.5},
		{"24:00", 24.0},
		{"0:45", 0.75},
		{"36", 36.0},
		{"", 0},
		{"DNP", 0},
	}
	for _, c := range cases {
		if got := parseMinutes(c.in); got != c.want {
			t.Errorf("parseMinutes(%q) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestParseGameDate(t *testing.T) {
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"Apr 01, 2025",
		"APR 01, 2025",
		"2025-04-01",
		"2025-04-01T00:00:00",
	}
	for _, in := range cases {
		if got := parseGameDate(in); !got.Equal(want) {
			t.Errorf("parseGameDate(%q) = %v, want %v", in, got, want)
		}
	}

	if got := parseGameDate("not a date"); !got.IsZero() {
		t.Errorf("expected zero time for garbage input, got %v", got)
	}
}

func TestTeamAbbr(t *testing.T) {
	if got := TeamAbbr(1610612738); got != "BOS" {
		t.Errorf("expected BOS, got %q", got)
	}
	if got := TeamAbbr(42); got != "" {
		t.Errorf("unknown team ID should map to empty, got %q", got)
	}
}
