package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseTappedOutLines(t *testing.T) {
	text := "4 Lightning Bolt (M11) 146\n" +
		"1 Kess, Dissident Mage (C17)\n" +
		"not a card line\n"

	lines := parseTappedOutLines(text)
	if len(lines) != 2 {
		t.Fatalf("expected 2 parsed lines, got %d", len(lines))
	}
	if lines[0].Quantity != 4 || lines[0].Name != "Lightning Bolt" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Quantity != 1 || lines[1].Name != "Kess, Dissident Mage" {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestAgeStringToTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		text string
		want time.Time
	}{
		{"Updated a few seconds ago.", now},
		{"Updated 1 minute ago.", now.Add(-time.Minute)},
		{"Updated 3 hours ago.", now.Add(-3 * time.Hour)},
		{"Updated 2 days ago.", now.Add(-48 * time.Hour)},
		{"Updated 1 month ago.", now.Add(-28 * 24 * time.Hour)},
		{"Updated 2 years ago.", now.Add(-2 * 365 * 24 * time.Hour)},
		{"something unrecognized", now},
	}
	for _, tt := range tests {
		if got := ageStringToTime(tt.text, now); !got.Equal(tt.want) {
			t.Errorf("ageStringToTime(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

const tappedOutDeckHTML = `<html>
<head>
<meta property="og:title" content="MTG DECK: Kess Storm">
<meta property="og:description" content="storm combo">
</head>
<body>
<div class="board-col">
<h3>Commander (1)</h3>
<ul><li><span class="card"><a data-name="Kess, Dissident Mage">Kess</a></span></li></ul>
</div>
<textarea id="mtga-textarea">1 Kess, Dissident Mage (C17) 1
4 Brainstorm (MMQ) 61

1 Red Elemental Blast (LEA) 1</textarea>
</body>
</html>`

func TestTappedOut_FetchDeck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mtg-decks/kess-storm/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, tappedOutDeckHTML)
	}))
	defer server.Close()

	to := &TappedOut{urlBase: server.URL}
	deck, err := to.FetchDeck(context.Background(), "kess-storm")
	if err != nil {
		t.Fatalf("FetchDeck failed: %v", err)
	}

	if deck.Name != "Kess Storm" || deck.Description != "storm combo" {
		t.Errorf("unexpected deck header: %q %q", deck.Name, deck.Description)
	}
	if len(deck.Commanders) != 1 || deck.Commanders[0].Name != "Kess, Dissident Mage" {
		t.Errorf("expected the commander moved out of the main deck, got %v", deck.Commanders)
	}
	if len(deck.Main) != 1 || deck.Main[0].Name != "Brainstorm" {
		t.Errorf("unexpected main zone: %v", deck.Main)
	}
	if len(deck.Side) != 1 || deck.Side[0].Name != "Red Elemental Blast" {
		t.Errorf("unexpected side zone: %v", deck.Side)
	}
}

const tappedOutListingHTML = `<html><body>
<div class="contents">graph</div>
<div class="contents"><h3 class="name"><a href="/mtg-decks/kess-storm/">Kess Storm</a></h3></div>
<div class="contents"><h5> Updated 2 days ago. </h5></div>
<div class="contents">graph</div>
<div class="contents"><h3 class="name"><a href="/mtg-decks/burn/">Burn</a></h3></div>
<div class="contents"><h5> Updated 1 hour ago. </h5></div>
</body></html>`

func TestTappedOut_ListDecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tappedOutListingHTML)
	}))
	defer server.Close()

	to := &TappedOut{urlBase: server.URL}
	updates, err := to.ListDecks(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListDecks failed: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 decks, got %d", len(updates))
	}
	if updates[0].DeckID != "kess-storm" || updates[1].DeckID != "burn" {
		t.Errorf("unexpected deck ids: %v", updates)
	}
	if !updates[0].UpdatedAt.Before(updates[1].UpdatedAt) {
		t.Error("expected the deck updated 2 days ago to be older than the one from 1 hour ago")
	}
}
