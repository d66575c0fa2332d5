package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

const deckstatsURLBase = "https://deckstats.net"

// Deckstats reads decks from deckstats.net. The site needs an owner id
// alongside the deck id, so deck IDs here are composite:
// "SAVED_ID&owner_id=OWNER_ID".
type Deckstats struct {
	urlBase string
}

var _ ports.Source = (*Deckstats)(nil)

// NewDeckstats returns the Deckstats source adapter.
func NewDeckstats() *Deckstats { return &Deckstats{urlBase: deckstatsURLBase} }

func (d *Deckstats) Name() string  { return "Deckstats" }
func (d *Deckstats) Short() string { return "D" }

type deckstatsCard struct {
	Amount      int    `json:"amount"`
	Name        string `json:"name"`
	IsCommander bool   `json:"isCommander"`
}

type deckstatsDeck struct {
	Name     string `json:"name"`
	Sections []struct {
		Cards []deckstatsCard `json:"cards"`
	} `json:"sections"`
	Sideboard  []deckstatsCard `json:"sideboard"`
	Maybeboard []deckstatsCard `json:"maybeboard"`
}

// FetchDeck downloads a deck through the saved-deck API endpoint.
func (d *Deckstats) FetchDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	var raw deckstatsDeck
	// deckID already carries the owner_id pair, so it is appended as-is.
	url := fmt.Sprintf("%s/api.php/?action=get_deck&id_type=saved&response_type=json&id=%s",
		d.urlBase, deckID)
	if err := getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	deck := &domain.Deck{
		Source: d.Short(),
		ID:     deckID,
		Name:   raw.Name,
	}
	for _, section := range raw.Sections {
		for _, card := range section.Cards {
			board := domain.BoardMain
			if card.IsCommander {
				board = domain.BoardCommanders
			}
			deck.AddCard(board, domain.CardLine{Quantity: card.Amount, Name: card.Name})
		}
	}
	for _, card := range raw.Sideboard {
		deck.AddCard(domain.BoardSide, domain.CardLine{Quantity: card.Amount, Name: card.Name})
	}
	for _, card := range raw.Maybeboard {
		deck.AddCard(domain.BoardMaybe, domain.CardLine{Quantity: card.Amount, Name: card.Name})
	}
	log.Debug().Str("deck", deck.Name).Str("id", deckID).Msg("downloaded Deckstats deck")
	return deck, nil
}

var deckstatsOwnerRegexp = regexp.MustCompile(`^https://deckstats\.net/decks/(\d+)`)

// userID resolves a user name to the numeric owner id via the member
// search page, which has no JSON counterpart.
func (d *Deckstats) userID(ctx context.Context, user string) (string, error) {
	searchURL := fmt.Sprintf("%s/members/search/?search_name=%s", d.urlBase, url.QueryEscape(user))
	resp, err := get(ctx, searchURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %s", searchURL, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing member search page: %w", err)
	}

	href, ok := doc.Find("a.member_name").First().Attr("href")
	if !ok {
		return "", fmt.Errorf("no Deckstats member found for %s", user)
	}
	m := deckstatsOwnerRegexp.FindStringSubmatch(strings.TrimSpace(href))
	if m == nil {
		return "", fmt.Errorf("unexpected Deckstats member link %s", href)
	}
	return m[1], nil
}

type deckstatsFolder struct {
	Folder *struct {
		Decks []struct {
			SavedID int64 `json:"saved_id"`
			Updated int64 `json:"updated"`
			Added   int64 `json:"added"`
		} `json:"decks"`
		DecksCurrentPage int `json:"decks_current_page"`
		DecksPerPage     int `json:"decks_per_page"`
		DecksTotal       int `json:"decks_total"`
	} `json:"folder"`
}

// ListDecks pages through the user's root deck folder.
func (d *Deckstats) ListDecks(ctx context.Context, user string) ([]domain.DeckUpdate, error) {
	ownerID, err := d.userID(ctx, user)
	if err != nil {
		return nil, err
	}

	var updates []domain.DeckUpdate
	for page := 1; ; page++ {
		var data deckstatsFolder
		url := fmt.Sprintf("%s/api.php?decks_page=%d&owner_id=%s&action=user_folder_get&result_type=%s",
			d.urlBase, page, ownerID,
			url.QueryEscape("folder;decks;parent_tree;subfolders"))
		if err := getJSON(ctx, url, &data); err != nil {
			return nil, err
		}
		if data.Folder == nil {
			break
		}
		for _, deck := range data.Folder.Decks {
			updated := deck.Updated
			if updated == 0 {
				updated = deck.Added
			}
			updates = append(updates, domain.DeckUpdate{
				Source:    d.Short(),
				DeckID:    fmt.Sprintf("%d&owner_id=%s", deck.SavedID, ownerID),
				UpdatedAt: time.Unix(updated, 0),
			})
		}
		if data.Folder.DecksCurrentPage*data.Folder.DecksPerPage >= data.Folder.DecksTotal {
			break
		}
	}
	return updates, nil
}

// VerifyUser checks that the member search finds the user at all.
func (d *Deckstats) VerifyUser(ctx context.Context, user string) (bool, error) {
	if _, err := d.userID(ctx, user); err != nil {
		return false, nil
	}
	return true, nil
}
