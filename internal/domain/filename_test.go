package domain

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		deckName string
		want     string
	}{
		{"My Deck", "my_deck"},
		{"Niv-Mizzet, Parun EDH", "nivmizzet_parun_edh"},
		{"UPPER case 123", "upper_case_123"},
		{"päth/../escape", "pthescape"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.deckName); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.deckName, got, tt.want)
		}
	}
}
