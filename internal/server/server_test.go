package server

import (
	"testing"
)

func TestParseOdds(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5/1", "6", false},
		{"6/4", "2.5", false},
		{"10/11", "1.9091", false},
		{"+400", "5", false},
		{"-150", "1.6667", false},
		{"2.50", "2.5", false},
		{" 3.0 ", "3", false},
		{"1.0", "", true},
		{"0.5", "", true},
		{"5/0", "", true},
		{"+0", "", true},
		{"-0", "", true},
		{"evens", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseOdds(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("ParseOdds(%q) = %s, want error", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOdds(%q): %v", c.in, err)
			}
			if got.String() != c.want {
				t.Errorf("ParseOdds(%q) = %s, want %s", c.in, got, c.want)
			}
		})
	}
}
