package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const moxfieldDeckJSON = `{
	"name": "Murktide Tempo",
	"description": "izzet",
	"mainboard": {"Murktide Regent": {"quantity": 4, "card": {"layout": "normal"}}},
	"sideboard": {"Blood Moon": {"quantity": 2, "card": {"layout": "normal"}}},
	"maybeboard": {"Ponder": {"quantity": 1, "card": {"layout": "normal"}}},
	"commanders": {}
}`

func TestMoxfield_FetchDeck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/decks/all/abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, moxfieldDeckJSON)
	}))
	defer server.Close()

	m := &Moxfield{urlBase: server.URL}
	deck, err := m.FetchDeck(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FetchDeck failed: %v", err)
	}

	if deck.Name != "Murktide Tempo" || deck.Source != "M" {
		t.Errorf("unexpected deck header: %q %q", deck.Name, deck.Source)
	}
	if len(deck.Main) != 1 || deck.Main[0].Quantity != 4 || deck.Main[0].Name != "Murktide Regent" {
		t.Errorf("unexpected main zone: %v", deck.Main)
	}
	if len(deck.Side) != 1 || deck.Side[0].Name != "Blood Moon" {
		t.Errorf("unexpected side zone: %v", deck.Side)
	}
	if len(deck.Maybe) != 1 || deck.Maybe[0].Name != "Ponder" {
		t.Errorf("unexpected maybe zone: %v", deck.Maybe)
	}
	if len(deck.Commanders) != 0 {
		t.Errorf("expected no commanders, got %v", deck.Commanders)
	}
}

func TestMoxfield_ListDecksPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageNumber") {
		case "1":
			fmt.Fprint(w, `{"totalPages": 2, "data": [{"publicId": "a", "lastUpdatedAtUtc": "2024-03-01T12:00:00Z"}]}`)
		case "2":
			fmt.Fprint(w, `{"totalPages": 2, "data": [{"publicId": "b", "lastUpdatedAtUtc": "2024-03-02T12:00:00Z"}]}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("pageNumber"))
		}
	}))
	defer server.Close()

	m := &Moxfield{urlBase: server.URL}
	updates, err := m.ListDecks(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListDecks failed: %v", err)
	}
	if len(updates) != 2 || updates[0].DeckID != "a" || updates[1].DeckID != "b" {
		t.Errorf("expected both pages listed, got %v", updates)
	}
}

func TestMoxfield_VerifyUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/users/alice" {
			fmt.Fprint(w, `{"userName": "alice"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	m := &Moxfield{urlBase: server.URL}

	found, err := m.VerifyUser(context.Background(), "alice")
	if err != nil || !found {
		t.Errorf("expected alice verified, got %v %v", found, err)
	}
	found, err = m.VerifyUser(context.Background(), "nobody")
	if err != nil || found {
		t.Errorf("expected nobody rejected, got %v %v", found, err)
	}
}
