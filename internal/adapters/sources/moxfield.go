package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

const (
	moxfieldURLBase      = "https://api.moxfield.com"
	moxfieldListPageSize = 100
)

// Moxfield reads decks from moxfield.com.
type Moxfield struct {
	urlBase string
}

var _ ports.Source = (*Moxfield)(nil)

// NewMoxfield returns the Moxfield source adapter.
func NewMoxfield() *Moxfield { return &Moxfield{urlBase: moxfieldURLBase} }

func (m *Moxfield) Name() string  { return "Moxfield" }
func (m *Moxfield) Short() string { return "M" }

// moxfieldBoard maps card names to entries within one Moxfield board.
type moxfieldBoard map[string]struct {
	Quantity int `json:"quantity"`
	Card     struct {
		Layout string `json:"layout"`
	} `json:"card"`
}

type moxfieldDeck struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Mainboard   moxfieldBoard `json:"mainboard"`
	Sideboard   moxfieldBoard `json:"sideboard"`
	Maybeboard  moxfieldBoard `json:"maybeboard"`
	Commanders  moxfieldBoard `json:"commanders"`
}

// FetchDeck downloads a deck; Moxfield's boards map onto zones directly.
func (m *Moxfield) FetchDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	var raw moxfieldDeck
	url := fmt.Sprintf("%s/v2/decks/all/%s", m.urlBase, deckID)
	if err := getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	deck := &domain.Deck{
		Source:      m.Short(),
		ID:          deckID,
		Name:        raw.Name,
		Description: raw.Description,
	}
	addMoxfieldBoard(deck, domain.BoardMain, raw.Mainboard)
	addMoxfieldBoard(deck, domain.BoardSide, raw.Sideboard)
	addMoxfieldBoard(deck, domain.BoardMaybe, raw.Maybeboard)
	addMoxfieldBoard(deck, domain.BoardCommanders, raw.Commanders)
	log.Debug().Str("deck", deck.Name).Str("id", deckID).Msg("downloaded Moxfield deck")
	return deck, nil
}

func addMoxfieldBoard(deck *domain.Deck, board domain.Board, cards moxfieldBoard) {
	for name, entry := range cards {
		deck.AddCard(board, domain.CardLine{Quantity: entry.Quantity, Name: name})
	}
}

type moxfieldListing struct {
	TotalPages int `json:"totalPages"`
	Data       []struct {
		PublicID         string `json:"publicId"`
		LastUpdatedAtUTC string `json:"lastUpdatedAtUtc"`
	} `json:"data"`
}

// ListDecks pages through the user's public decks up to the page count
// reported by the first response.
func (m *Moxfield) ListDecks(ctx context.Context, user string) ([]domain.DeckUpdate, error) {
	var updates []domain.DeckUpdate
	for page := 1; ; page++ {
		var listing moxfieldListing
		url := fmt.Sprintf("%s/v2/users/%s/decks?pageSize=%d&pageNumber=%d",
			m.urlBase, url.PathEscape(user), moxfieldListPageSize, page)
		if err := getJSON(ctx, url, &listing); err != nil {
			return nil, err
		}
		for _, deck := range listing.Data {
			updated, err := time.Parse(time.RFC3339, deck.LastUpdatedAtUTC)
			if err != nil {
				updated = time.Time{}
			}
			updates = append(updates, domain.DeckUpdate{
				Source:    m.Short(),
				DeckID:    deck.PublicID,
				UpdatedAt: updated,
			})
		}
		if page >= listing.TotalPages {
			break
		}
	}
	return updates, nil
}

// VerifyUser checks the account exists via the user endpoint.
func (m *Moxfield) VerifyUser(ctx context.Context, user string) (bool, error) {
	resp, err := get(ctx, fmt.Sprintf("%s/v1/users/%s", m.urlBase, url.PathEscape(user)))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
