package notifier

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"/status", "/status", true},
		{"  /refresh  ", "/refresh", true},
		{"/props@PropScoutBot", "/props", true},
		{"/props@PropScoutBot 10", "/props 10", true},
		{"hello there", "", false},
		{"", "", false},
		{"status", "", false},
	}
	for _, tt := range tests {
		got, ok := parseCommand(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseCommand(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}
