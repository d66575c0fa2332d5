package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"decksync/internal/domain"
	"decksync/internal/ports"
)

const tappedOutURLBase = "https://tappedout.net"

// TappedOut reads decks from tappedout.net. None of the site's export
// formats carry the deck name, description or commander markers, so both
// the deck page and the listing are scraped from HTML.
type TappedOut struct {
	urlBase string
}

var _ ports.Source = (*TappedOut)(nil)

// NewTappedOut returns the Tapped Out source adapter.
func NewTappedOut() *TappedOut { return &TappedOut{urlBase: tappedOutURLBase} }

func (t *TappedOut) Name() string  { return "Tapped Out" }
func (t *TappedOut) Short() string { return "T" }

// Lines in the Arena export look like "4 Lightning Bolt (M11) 146".
var tappedOutLineRegexp = regexp.MustCompile(`^(\d+) (.*) \(.*\)( \d+)?$`)

// FetchDeck scrapes a deck page, reading the card list from the embedded
// Arena export and the commanders from the board columns.
func (t *TappedOut) FetchDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	doc, err := t.document(ctx, fmt.Sprintf("%s/mtg-decks/%s/", t.urlBase, deckID))
	if err != nil {
		return nil, err
	}

	commanders := make(map[string]bool)
	doc.Find("div.board-col > h3").Each(func(_ int, h3 *goquery.Selection) {
		if !strings.Contains(h3.Text(), "Commander") {
			return
		}
		h3.NextAllFiltered("ul").First().Find("span.card > a").Each(func(_ int, a *goquery.Selection) {
			if name, ok := a.Attr("data-name"); ok {
				commanders[name] = true
			}
		})
	})

	name, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	name = strings.TrimPrefix(name, "MTG DECK: ")
	description, _ := doc.Find(`meta[property="og:description"]`).Attr("content")

	deck := &domain.Deck{
		Source:      t.Short(),
		ID:          deckID,
		Name:        name,
		Description: description,
	}

	mainText, sideText, _ := strings.Cut(doc.Find("#mtga-textarea").Text(), "\n\n")
	for _, line := range parseTappedOutLines(mainText) {
		if commanders[line.Name] {
			deck.AddCard(domain.BoardCommanders, line)
		} else {
			deck.AddCard(domain.BoardMain, line)
		}
	}
	for _, line := range parseTappedOutLines(sideText) {
		deck.AddCard(domain.BoardSide, line)
	}

	log.Debug().Str("deck", deck.Name).Str("id", deckID).Msg("downloaded Tapped Out deck")
	return deck, nil
}

func parseTappedOutLines(text string) []domain.CardLine {
	var lines []domain.CardLine
	for _, raw := range strings.Split(text, "\n") {
		m := tappedOutLineRegexp.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		lines = append(lines, domain.CardLine{Quantity: qty, Name: m[2]})
	}
	return lines
}

var tappedOutHrefIDRegexp = regexp.MustCompile(`/([^/]+)/$`)

// ListDecks scrapes the user's deck listing pages. Update times are
// approximate: the site only shows coarse "Updated N days ago" strings.
func (t *TappedOut) ListDecks(ctx context.Context, user string) ([]domain.DeckUpdate, error) {
	return t.listDecks(ctx, user, true)
}

func (t *TappedOut) listDecks(ctx context.Context, user string, allPages bool) ([]domain.DeckUpdate, error) {
	base := fmt.Sprintf("%s/users/%s/mtg-decks/", t.urlBase, url.PathEscape(user))
	doc, err := t.document(ctx, base)
	if err != nil {
		return nil, err
	}

	pages := 1
	if allPages {
		text := doc.Find("ul.pagination li").Last().Find("a.page-btn").Text()
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && n > 1 {
			pages = n
		}
	}

	var updates []domain.DeckUpdate
	for page := 1; page <= pages; page++ {
		if page > 1 {
			doc, err = t.document(ctx, fmt.Sprintf("%s?page=%d", base, page))
			if err != nil {
				return nil, err
			}
		}
		updates = append(updates, t.parseListing(doc)...)
	}
	return updates, nil
}

// parseListing walks the deck entries of one listing page. Each entry is
// three div.contents: a colour graph, the name block, and the details
// block.
func (t *TappedOut) parseListing(doc *goquery.Document) []domain.DeckUpdate {
	var updates []domain.DeckUpdate
	divs := doc.Find("div.contents")
	for i := 0; i+2 < divs.Length(); i += 3 {
		nameDiv := divs.Eq(i + 1)
		detailsDiv := divs.Eq(i + 2)

		href, ok := nameDiv.Find("h3.name > a").Attr("href")
		if !ok {
			continue
		}
		m := tappedOutHrefIDRegexp.FindStringSubmatch(href)
		if m == nil {
			continue
		}

		updated := time.Now()
		detailsDiv.Find("h5").EachWithBreak(func(_ int, h5 *goquery.Selection) bool {
			text := strings.TrimSpace(h5.Text())
			if strings.Contains(text, "Updated") {
				updated = ageStringToTime(text, time.Now())
				return false
			}
			return true
		})

		updates = append(updates, domain.DeckUpdate{
			Source:    t.Short(),
			DeckID:    m[1],
			UpdatedAt: updated,
		})
	}
	return updates
}

// VerifyUser checks the first listing page for at least one public deck.
func (t *TappedOut) VerifyUser(ctx context.Context, user string) (bool, error) {
	updates, err := t.listDecks(ctx, user, false)
	if err != nil {
		return false, err
	}
	return len(updates) > 0, nil
}

func (t *TappedOut) document(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %s", url, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: parsing page: %w", url, err)
	}
	return doc, nil
}

var ageRegexp = regexp.MustCompile(`Updated (\d+) (minute|hour|day|month|year)s? ago\.`)

// ageStringToTime converts the site's relative age strings to an
// approximate absolute time.
func ageStringToTime(text string, now time.Time) time.Time {
	if strings.Contains(text, "a few seconds ago") {
		return now
	}
	m := ageRegexp.FindStringSubmatch(text)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	var unit time.Duration
	switch m[2] {
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "month":
		unit = 28 * 24 * time.Hour
	case "year":
		unit = 365 * 24 * time.Hour
	}
	return now.Add(-time.Duration(n) * unit)
}
