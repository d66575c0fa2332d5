package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

// The Archidekt API rejects double slashes, so paths are joined without
// a trailing separator on the base.
const archidektURLBase = "https://archidekt.com/api/decks"

// Archidekt reads decks from archidekt.com.
type Archidekt struct {
	urlBase string
}

var _ ports.Source = (*Archidekt)(nil)

// NewArchidekt returns the Archidekt source adapter.
func NewArchidekt() *Archidekt { return &Archidekt{urlBase: archidektURLBase} }

func (a *Archidekt) Name() string  { return "Archidekt" }
func (a *Archidekt) Short() string { return "A" }

type archidektDeck struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cards       []struct {
		Quantity   int      `json:"quantity"`
		Categories []string `json:"categories"`
		Card       struct {
			OracleCard struct {
				Name   string `json:"name"`
				Layout string `json:"layout"`
			} `json:"oracleCard"`
		} `json:"card"`
	} `json:"cards"`
}

// FetchDeck downloads a deck through the small deck endpoint, mapping
// Archidekt's free-form card categories onto zones.
func (a *Archidekt) FetchDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	var raw archidektDeck
	url := fmt.Sprintf("%s/%s/small/?format=json", a.urlBase, deckID)
	if err := getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	deck := &domain.Deck{
		Source:      a.Short(),
		ID:          deckID,
		Name:        raw.Name,
		Description: raw.Description,
	}
	for _, card := range raw.Cards {
		deck.AddCard(archidektBoard(card.Categories), domain.CardLine{
			Quantity: card.Quantity,
			Name:     card.Card.OracleCard.Name,
		})
	}
	log.Debug().Str("deck", deck.Name).Str("id", deckID).Msg("downloaded Archidekt deck")
	return deck, nil
}

// archidektBoard picks a zone from a card's category list. The first
// recognized category wins; everything else is main deck.
func archidektBoard(categories []string) domain.Board {
	for _, c := range categories {
		switch c {
		case "Commander":
			return domain.BoardCommanders
		case "Maybeboard":
			return domain.BoardMaybe
		case "Sideboard":
			return domain.BoardSide
		}
	}
	return domain.BoardMain
}

type archidektListing struct {
	Next    string `json:"next"`
	Results []struct {
		ID        int64  `json:"id"`
		UpdatedAt string `json:"updatedAt"`
	} `json:"results"`
}

// ListDecks pages through the owner's public decks until the listing
// reports no next page.
func (a *Archidekt) ListDecks(ctx context.Context, user string) ([]domain.DeckUpdate, error) {
	return a.listDecks(ctx, user, true)
}

func (a *Archidekt) listDecks(ctx context.Context, user string, allPages bool) ([]domain.DeckUpdate, error) {
	var updates []domain.DeckUpdate
	next := fmt.Sprintf("%s/cards/?owner=%s&ownerexact=true", a.urlBase, url.QueryEscape(user))
	for next != "" {
		var page archidektListing
		if err := getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		for _, deck := range page.Results {
			updated, err := time.Parse(time.RFC3339, deck.UpdatedAt)
			if err != nil {
				updated = time.Time{}
			}
			updates = append(updates, domain.DeckUpdate{
				Source:    a.Short(),
				DeckID:    strconv.FormatInt(deck.ID, 10),
				UpdatedAt: updated,
			})
		}
		if !allPages {
			break
		}
		// Archidekt sometimes returns http links; force https to avoid a
		// redirect on every page.
		next = strings.Replace(page.Next, "http://archidekt.com", "https://archidekt.com", 1)
	}
	return updates, nil
}

// VerifyUser checks the first listing page for at least one public deck.
func (a *Archidekt) VerifyUser(ctx context.Context, user string) (bool, error) {
	updates, err := a.listDecks(ctx, user, false)
	if err != nil {
		return false, err
	}
	return len(updates) > 0, nil
}
