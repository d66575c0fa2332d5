package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const archidektDeckJSON = `{
	"name": "Kess Storm",
	"description": "spellslinger",
	"cards": [
		{"quantity": 1, "categories": ["Commander"], "card": {"oracleCard": {"name": "Kess, Dissident Mage", "layout": "normal"}}},
		{"quantity": 4, "categories": [], "card": {"oracleCard": {"name": "Brainstorm", "layout": "normal"}}},
		{"quantity": 1, "categories": ["Sideboard"], "card": {"oracleCard": {"name": "Red Elemental Blast", "layout": "normal"}}},
		{"quantity": 1, "categories": ["Maybeboard"], "card": {"oracleCard": {"name": "Ponder", "layout": "normal"}}}
	]
}`

func TestArchidekt_FetchDeck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/123/small/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, archidektDeckJSON)
	}))
	defer server.Close()

	a := &Archidekt{urlBase: server.URL}
	deck, err := a.FetchDeck(context.Background(), "123")
	if err != nil {
		t.Fatalf("FetchDeck failed: %v", err)
	}

	if deck.Name != "Kess Storm" || deck.Description != "spellslinger" {
		t.Errorf("unexpected deck header: %q %q", deck.Name, deck.Description)
	}
	if deck.Source != "A" || deck.ID != "123" {
		t.Errorf("unexpected deck identity: %s %s", deck.Source, deck.ID)
	}
	if len(deck.Commanders) != 1 || deck.Commanders[0].Name != "Kess, Dissident Mage" {
		t.Errorf("expected the Commander category in the commander zone, got %v", deck.Commanders)
	}
	if len(deck.Main) != 1 || deck.Main[0].Quantity != 4 {
		t.Errorf("expected uncategorized cards in the main zone, got %v", deck.Main)
	}
	if len(deck.Side) != 1 || deck.Side[0].Name != "Red Elemental Blast" {
		t.Errorf("expected the Sideboard category in the side zone, got %v", deck.Side)
	}
	if len(deck.Maybe) != 1 || deck.Maybe[0].Name != "Ponder" {
		t.Errorf("expected the Maybeboard category in the maybe zone, got %v", deck.Maybe)
	}
}

func TestArchidekt_ListDecksPaginates(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"next": "%s/cards/?owner=alice&page=2", "results": [
				{"id": 1, "updatedAt": "2024-03-01T12:00:00Z"}
			]}`, server.URL)
		case "2":
			fmt.Fprint(w, `{"next": null, "results": [
				{"id": 2, "updatedAt": "2024-03-02T12:00:00Z"}
			]}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	a := &Archidekt{urlBase: server.URL}
	updates, err := a.ListDecks(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListDecks failed: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected 2 decks across pages, got %d", len(updates))
	}
	if updates[0].DeckID != "1" || updates[1].DeckID != "2" {
		t.Errorf("unexpected deck ids: %v", updates)
	}
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !updates[0].UpdatedAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, updates[0].UpdatedAt)
	}
}

func TestArchidekt_VerifyUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("owner") == "alice" {
			fmt.Fprint(w, `{"next": null, "results": [{"id": 1, "updatedAt": "2024-03-01T12:00:00Z"}]}`)
			return
		}
		fmt.Fprint(w, `{"next": null, "results": []}`)
	}))
	defer server.Close()

	a := &Archidekt{urlBase: server.URL}

	found, err := a.VerifyUser(context.Background(), "alice")
	if err != nil || !found {
		t.Errorf("expected alice verified, got %v %v", found, err)
	}
	found, err = a.VerifyUser(context.Background(), "nobody")
	if err != nil || found {
		t.Errorf("expected nobody rejected, got %v %v", found, err)
	}
}
