package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestParseBoard(t *testing.T) {
	tests := []struct {
		label string
		want  Board
	}{
		{"main", BoardMain},
		{"mainboard", BoardMain},
		{"side", BoardSide},
		{"Sideboard", BoardSide},
		{"maybe", BoardMaybe},
		{"Maybeboard", BoardMaybe},
		{"commander", BoardCommanders},
		{"Commanders", BoardCommanders},
		{"  commanders  ", BoardCommanders},
		{"something else", BoardMain},
	}
	for _, tt := range tests {
		if got := ParseBoard(tt.label); got != tt.want {
			t.Errorf("ParseBoard(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func testDeck() *Deck {
	deck := &Deck{Source: "A", ID: "1", Name: "Test"}
	deck.AddCard(BoardMain, CardLine{Quantity: 4, Name: "Lightning Bolt"})
	deck.AddCard(BoardMain, CardLine{Quantity: 2, Name: "Counterspell"})
	deck.AddCard(BoardSide, CardLine{Quantity: 1, Name: "Pyroblast"})
	deck.AddCard(BoardMaybe, CardLine{Quantity: 1, Name: "Ponder"})
	deck.AddCard(BoardCommanders, CardLine{Quantity: 1, Name: "Niv-Mizzet, Parun"})
	return deck
}

func TestMainDeck_ExcludesCommandersByDefault(t *testing.T) {
	deck := testDeck()
	main := deck.MainDeck(false)
	if len(main) != 2 {
		t.Fatalf("expected 2 main deck cards, got %d", len(main))
	}

	withCommanders := deck.MainDeck(true)
	if len(withCommanders) != 3 {
		t.Fatalf("expected 3 cards with commanders, got %d", len(withCommanders))
	}
	if withCommanders[2].Name != "Niv-Mizzet, Parun" {
		t.Errorf("expected commander appended last, got %s", withCommanders[2].Name)
	}
}

func TestSideboard_Concatenates(t *testing.T) {
	deck := testDeck()

	side := deck.Sideboard(true, false)
	want := []string{"Pyroblast", "Niv-Mizzet, Parun"}
	if got := lineNames(side); !reflect.DeepEqual(got, want) {
		t.Errorf("Sideboard(true, false) = %v, want %v", got, want)
	}

	side = deck.Sideboard(true, true)
	want = []string{"Pyroblast", "Niv-Mizzet, Parun", "Ponder"}
	if got := lineNames(side); !reflect.DeepEqual(got, want) {
		t.Errorf("Sideboard(true, true) = %v, want %v", got, want)
	}
}

func TestSideboard_NeverDeduplicates(t *testing.T) {
	deck := &Deck{}
	deck.AddCard(BoardSide, CardLine{Quantity: 1, Name: "Sol Ring"})
	deck.AddCard(BoardMaybe, CardLine{Quantity: 1, Name: "Sol Ring"})

	side := deck.Sideboard(true, true)
	if len(side) != 2 {
		t.Fatalf("expected both copies kept, got %d lines", len(side))
	}
}

func TestAllCardNames_DistinctInZoneOrder(t *testing.T) {
	deck := testDeck()
	deck.AddCard(BoardSide, CardLine{Quantity: 1, Name: "Lightning Bolt"})

	want := []string{"Lightning Bolt", "Counterspell", "Pyroblast", "Ponder", "Niv-Mizzet, Parun"}
	if got := deck.AllCardNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllCardNames() = %v, want %v", got, want)
	}
}

func TestLatest_EmptyListing(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Error("expected no latest deck for empty listing")
	}
}

func TestLatest_FirstMaximumWins(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updates := []DeckUpdate{
		{DeckID: "a", UpdatedAt: base},
		{DeckID: "b", UpdatedAt: base.Add(time.Hour)},
		{DeckID: "c", UpdatedAt: base.Add(time.Hour)},
	}

	latest, ok := Latest(updates)
	if !ok {
		t.Fatal("expected a latest deck")
	}
	if latest.DeckID != "b" {
		t.Errorf("expected first of the tied decks, got %s", latest.DeckID)
	}
}

func TestFrontFaceName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Delver of Secrets // Insectile Aberration", "Delver of Secrets"},
		{"Lightning Bolt", "Lightning Bolt"},
		{"Fire // Ice", "Fire"},
	}
	for _, tt := range tests {
		if got := FrontFaceName(tt.name); got != tt.want {
			t.Errorf("FrontFaceName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func lineNames(lines []CardLine) []string {
	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.Name
	}
	return names
}
